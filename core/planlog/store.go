// Package planlog keeps an audit trail of planning cycles. Records are
// appended once per cycle and can be queried by time range, station and
// status.
package planlog

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/kilianp07/dockflow/core/model"
)

// Record captures one planning decision and its simulated outcome.
type Record struct {
	Timestamp time.Time             `json:"timestamp"`
	Plan      model.RebalancingPlan `json:"plan"`
	// Evaluation is nil when the plan was not simulated.
	Evaluation *Evaluation `json:"evaluation,omitempty"`
	Published  bool        `json:"published"`
}

// Evaluation summarises the simulated effect of a plan.
type Evaluation struct {
	BaselineMinutes int  `json:"baseline_failure_minutes"`
	WithPlanMinutes int  `json:"with_plan_failure_minutes"`
	Accepted        bool `json:"accepted"`
}

// Query defines filters for retrieving records. Zero values match all.
type Query struct {
	Start     time.Time
	End       time.Time
	StationID string
	Status    model.PlanStatus
	Limit     int
}

// Store persists records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// Match reports whether rec satisfies q, ignoring Limit.
func (q Query) Match(rec Record) bool {
	if !q.Start.IsZero() && rec.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && rec.Timestamp.After(q.End) {
		return false
	}
	if q.Status != "" && rec.Plan.Status != q.Status {
		return false
	}
	if q.StationID != "" && !slices.Contains(rec.Plan.StationIDs(), q.StationID) {
		return false
	}
	return true
}

func (q Query) full(n int) bool { return q.Limit > 0 && n >= q.Limit }

// scan decodes JSON lines from r, appending matches to out. Malformed lines
// are skipped.
func scan(r io.Reader, q Query, out []Record) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if q.full(len(out)) {
			break
		}
		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			continue
		}
		if q.Match(rec) {
			out = append(out, rec)
		}
	}
	if err := scanner.Err(); err != nil {
		return out, fmt.Errorf("scan plan log: %w", err)
	}
	return out, nil
}
