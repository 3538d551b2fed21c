package planning

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kilianp07/dockflow/core/model"
	"github.com/kilianp07/dockflow/core/planlog"
	"github.com/kilianp07/dockflow/core/simulator"
)

type fakeBackend struct {
	states    []model.BinRecord
	risk      map[string]model.RiskAssessment
	committed bool
	simulated model.RebalancingPlan
	replayed  [2]time.Time
	err       error
}

func (f *fakeBackend) State(context.Context) ([]model.BinRecord, error) { return f.states, f.err }

func (f *fakeBackend) Risk(context.Context) (map[string]model.RiskAssessment, error) {
	return f.risk, f.err
}

func (f *fakeBackend) Optimize(_ context.Context, commit bool) (model.RebalancingPlan, *simulator.Evaluation, error) {
	f.committed = commit
	if f.err != nil {
		return model.RebalancingPlan{}, nil, f.err
	}
	return model.NoPlan("p1", model.ReasonNoCandidates, time.Time{}), nil, nil
}

func (f *fakeBackend) Simulate(_ context.Context, plan model.RebalancingPlan) (simulator.Evaluation, error) {
	f.simulated = plan
	return simulator.Evaluation{Baseline: 20, WithPlan: 5, Accepted: true}, f.err
}

func (f *fakeBackend) Replay(_ context.Context, start, end time.Time) ([]model.BinRecord, error) {
	f.replayed = [2]time.Time{start, end}
	return f.states, f.err
}

type memStore struct{ recs []planlog.Record }

func (m *memStore) Append(_ context.Context, r planlog.Record) error {
	m.recs = append(m.recs, r)
	return nil
}

func (m *memStore) Query(_ context.Context, q planlog.Query) ([]planlog.Record, error) {
	var res []planlog.Record
	for _, r := range m.recs {
		if q.Match(r) {
			res = append(res, r)
		}
	}
	return res, nil
}

func (m *memStore) Close() error { return nil }

func do(t *testing.T, h http.Handler, method, target string, body []byte, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRouter_State(t *testing.T) {
	b := &fakeBackend{states: []model.BinRecord{{StationID: "A", BikesAvailable: model.IntPtr(3)}}}
	h := NewRouter(b, nil, "")
	rr := do(t, h, http.MethodGet, "/api/state", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out []model.BinRecord
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 || out[0].StationID != "A" {
		t.Fatalf("unexpected state %#v", out)
	}
	if rr := do(t, h, http.MethodPost, "/api/state", nil, ""); rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 got %d", rr.Code)
	}
}

func TestRouter_RiskSortedByUrgency(t *testing.T) {
	b := &fakeBackend{risk: map[string]model.RiskAssessment{
		"A": {StationID: "A", Risk: 0.2},
		"B": {StationID: "B", Risk: 1},
		"C": {StationID: "C", Risk: 0.2},
	}}
	rr := do(t, NewRouter(b, nil, ""), http.MethodGet, "/api/risk", nil, "")
	var out []model.RiskAssessment
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 3 || out[0].StationID != "B" || out[1].StationID != "A" || out[2].StationID != "C" {
		t.Fatalf("unexpected order %#v", out)
	}
}

func TestRouter_Optimize(t *testing.T) {
	b := &fakeBackend{}
	h := NewRouter(b, nil, "")
	rr := do(t, h, http.MethodPost, "/api/optimize?commit=true", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	if !b.committed {
		t.Fatalf("commit flag not forwarded")
	}
	var out OptimizeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Plan.Status != model.StatusNoPlan || out.Plan.Reason == nil || *out.Plan.Reason != model.ReasonNoCandidates {
		t.Fatalf("unexpected plan %#v", out.Plan)
	}

	b.err = errors.New("db down")
	if rr := do(t, h, http.MethodPost, "/api/optimize", nil, ""); rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rr.Code)
	}
}

func TestRouter_Simulate(t *testing.T) {
	b := &fakeBackend{}
	h := NewRouter(b, nil, "")
	body := []byte(`{"moves":[{"donor_station_id":"A","receiver_station_id":"B","quantity":3,"truck":1}]}`)
	rr := do(t, h, http.MethodPost, "/api/simulate", body, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	if len(b.simulated.Moves) != 1 || b.simulated.Moves[0].Quantity != 3 {
		t.Fatalf("plan not forwarded: %#v", b.simulated)
	}
	var ev simulator.Evaluation
	if err := json.Unmarshal(rr.Body.Bytes(), &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !ev.Accepted || ev.Baseline != 20 {
		t.Fatalf("unexpected evaluation %#v", ev)
	}

	bad := []byte(`{"moves":[{"donor_station_id":"A","receiver_station_id":"A","quantity":3}]}`)
	if rr := do(t, h, http.MethodPost, "/api/simulate", bad, ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}
	if rr := do(t, h, http.MethodPost, "/api/simulate", []byte("{"), ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}
}

func TestLogHandler_AuthAndFilters(t *testing.T) {
	store := &memStore{}
	ts := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	_ = store.Append(context.Background(), planlog.Record{
		Timestamp: ts,
		Plan: model.RebalancingPlan{ID: "p1", Status: model.StatusPlan, Moves: []model.PlannedMove{
			{CandidateMove: model.CandidateMove{DonorStationID: "A", ReceiverStationID: "B", Quantity: 2}, Truck: 1},
		}},
	})
	_ = store.Append(context.Background(), planlog.Record{Timestamp: ts.Add(time.Minute), Plan: model.NoPlan("p2", model.ReasonNoImprovement, ts)})
	h := NewRouter(&fakeBackend{}, store, "tok")

	rr := do(t, h, http.MethodGet, "/api/plans?station_id=B", nil, "tok")
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out []planlog.Record
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != 1 || out[0].Plan.ID != "p1" {
		t.Fatalf("expected p1, got %#v", out)
	}

	rr = do(t, h, http.MethodGet, "/api/plans?status=no_plan&start=2024-06-01T08:00:30Z", nil, "tok")
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != 1 || out[0].Plan.ID != "p2" {
		t.Fatalf("expected p2, got %#v", out)
	}

	rr = do(t, h, http.MethodGet, "/api/plans?format=csv", nil, "tok")
	if ct := rr.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("content type %q", ct)
	}
	if !strings.Contains(rr.Body.String(), "p1,plan,,1,A,B,2") {
		t.Fatalf("csv row missing: %s", rr.Body.String())
	}
	if rr := do(t, h, http.MethodGet, "/api/plans?format=xml", nil, "tok"); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}

	if rr := do(t, h, http.MethodGet, "/api/plans?status=maybe", nil, "tok"); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}
	if rr := do(t, h, http.MethodGet, "/api/plans", nil, ""); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}
	if rr := do(t, h, http.MethodGet, "/api/state", nil, "wrong"); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}
}

func TestReplay(t *testing.T) {
	start := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	b := &fakeBackend{states: []model.BinRecord{{StationID: "A", TS: start}}}
	h := NewRouter(b, nil, "")

	rr := do(t, h, http.MethodGet, "/api/replay?start=2024-05-01T08:00:00Z", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	if !b.replayed[0].Equal(start) || !b.replayed[1].Equal(start.Add(DefaultReplaySpan)) {
		t.Fatalf("unexpected window %v", b.replayed)
	}
	var bins []model.BinRecord
	if err := json.Unmarshal(rr.Body.Bytes(), &bins); err != nil || len(bins) != 1 {
		t.Fatalf("bins %v err %v", bins, err)
	}

	rr = do(t, h, http.MethodGet, "/api/replay?start=2024-05-01T08:00:00Z&end=2024-05-01T08:30:00Z", nil, "")
	if rr.Code != http.StatusOK || !b.replayed[1].Equal(start.Add(30*time.Minute)) {
		t.Fatalf("explicit end not honoured: %d %v", rr.Code, b.replayed)
	}

	for _, q := range []string{"", "?start=yesterday", "?start=2024-05-01T08:00:00Z&end=2024-05-01T07:00:00Z"} {
		if rr := do(t, h, http.MethodGet, "/api/replay"+q, nil, ""); rr.Code != http.StatusBadRequest {
			t.Fatalf("%q: expected 400 got %d", q, rr.Code)
		}
	}
}
