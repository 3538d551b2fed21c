// Package planning serves the planning HTTP API: current state, risk,
// on-demand optimization and simulation, bin replay and the plan log.
package planning

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/kilianp07/dockflow/core/model"
	"github.com/kilianp07/dockflow/core/planlog"
	"github.com/kilianp07/dockflow/core/simulator"
	"github.com/kilianp07/dockflow/infra/logger"
)

// Backend answers the API queries.
type Backend interface {
	State(ctx context.Context) ([]model.BinRecord, error)
	Risk(ctx context.Context) (map[string]model.RiskAssessment, error)
	// Optimize plans against the stored state. When commit is true the plan
	// is logged and published like a scheduled cycle.
	Optimize(ctx context.Context, commit bool) (model.RebalancingPlan, *simulator.Evaluation, error)
	Simulate(ctx context.Context, plan model.RebalancingPlan) (simulator.Evaluation, error)
	// Replay returns the stored bins in [start, end).
	Replay(ctx context.Context, start, end time.Time) ([]model.BinRecord, error)
}

// DefaultReplaySpan is used by /api/replay when end is omitted.
const DefaultReplaySpan = time.Hour

// OptimizeResponse is returned by POST /api/optimize.
type OptimizeResponse struct {
	Plan       model.RebalancingPlan `json:"plan"`
	Evaluation *simulator.Evaluation `json:"evaluation,omitempty"`
}

// SimulateRequest is the body of POST /api/simulate.
type SimulateRequest struct {
	Moves []model.PlannedMove `json:"moves"`
}

// NewRouter wires every endpoint. plans may be nil, in which case
// /api/plans is not served. A non-empty token is required as a bearer token.
func NewRouter(b Backend, plans planlog.Store, token string) http.Handler {
	log := logger.New("api")
	mux := http.NewServeMux()
	mux.HandleFunc("/api/state", get(func(w http.ResponseWriter, r *http.Request) {
		states, err := b.State(r.Context())
		if err != nil {
			fail(w, log, err)
			return
		}
		if states == nil {
			states = []model.BinRecord{}
		}
		writeJSON(w, http.StatusOK, states)
	}))
	mux.HandleFunc("/api/risk", get(func(w http.ResponseWriter, r *http.Request) {
		risk, err := b.Risk(r.Context())
		if err != nil {
			fail(w, log, err)
			return
		}
		out := make([]model.RiskAssessment, 0, len(risk))
		for _, a := range risk {
			out = append(out, a)
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].Risk != out[j].Risk {
				return out[i].Risk > out[j].Risk
			}
			return out[i].StationID < out[j].StationID
		})
		writeJSON(w, http.StatusOK, out)
	}))
	mux.HandleFunc("/api/optimize", post(func(w http.ResponseWriter, r *http.Request) {
		commit := r.URL.Query().Get("commit") == "true"
		plan, ev, err := b.Optimize(r.Context(), commit)
		if err != nil {
			fail(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, OptimizeResponse{Plan: plan, Evaluation: ev})
	}))
	mux.HandleFunc("/api/simulate", post(func(w http.ResponseWriter, r *http.Request) {
		var req SimulateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid body: "+err.Error(), http.StatusBadRequest)
			return
		}
		for _, m := range req.Moves {
			if m.Quantity <= 0 || m.DonorStationID == "" || m.ReceiverStationID == "" || m.DonorStationID == m.ReceiverStationID {
				http.Error(w, "invalid move", http.StatusBadRequest)
				return
			}
		}
		plan := model.RebalancingPlan{ID: "simulation", Status: model.StatusPlan, Moves: req.Moves}
		ev, err := b.Simulate(r.Context(), plan)
		if err != nil {
			fail(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, ev)
	}))
	mux.HandleFunc("/api/replay", get(func(w http.ResponseWriter, r *http.Request) {
		params := r.URL.Query()
		start, err := time.Parse(time.RFC3339, params.Get("start"))
		if err != nil {
			http.Error(w, "invalid start", http.StatusBadRequest)
			return
		}
		end := start.Add(DefaultReplaySpan)
		if s := params.Get("end"); s != "" {
			if end, err = time.Parse(time.RFC3339, s); err != nil || !end.After(start) {
				http.Error(w, "invalid end", http.StatusBadRequest)
				return
			}
		}
		bins, err := b.Replay(r.Context(), start, end)
		if err != nil {
			fail(w, log, err)
			return
		}
		if bins == nil {
			bins = []model.BinRecord{}
		}
		writeJSON(w, http.StatusOK, bins)
	}))
	if plans != nil {
		mux.Handle("/api/plans", NewLogHandler(plans))
	}
	return RequireToken(token, mux)
}

// RequireToken rejects requests without "Authorization: Bearer <token>".
// An empty token disables the check.
func RequireToken(token string, next http.Handler) http.Handler {
	if token == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func get(h http.HandlerFunc) http.HandlerFunc  { return method(http.MethodGet, h) }
func post(h http.HandlerFunc) http.HandlerFunc { return method(http.MethodPost, h) }

func method(m string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != m {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

func fail(w http.ResponseWriter, log logger.Logger, err error) {
	log.Errorf("request failed: %v", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
