package planning

import (
	"net/http"
	"strconv"
	"time"

	"github.com/kilianp07/dockflow/core/model"
	"github.com/kilianp07/dockflow/core/planlog"
	"github.com/kilianp07/dockflow/pkg/export"
)

// NewLogHandler exposes the plan log via GET /api/plans. Supported query
// parameters are start and end (RFC3339), station_id, status, limit and
// format (json or csv).
func NewLogHandler(store planlog.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		params := r.URL.Query()
		q := planlog.Query{StationID: params.Get("station_id")}
		for name, dst := range map[string]*time.Time{"start": &q.Start, "end": &q.End} {
			if s := params.Get(name); s != "" {
				t, err := time.Parse(time.RFC3339, s)
				if err != nil {
					http.Error(w, "invalid "+name, http.StatusBadRequest)
					return
				}
				*dst = t
			}
		}
		if st := params.Get("status"); st != "" {
			status := model.PlanStatus(st)
			if status != model.StatusPlan && status != model.StatusNoPlan {
				http.Error(w, "invalid status", http.StatusBadRequest)
				return
			}
			q.Status = status
		}
		if s := params.Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			q.Limit = n
		}
		format, err := export.ParseFormat(params.Get("format"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", format.ContentType())
		_ = export.Write(w, format, records)
	})
}
