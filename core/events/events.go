package events

import (
	"time"

	"github.com/kilianp07/dockflow/core/model"
)

// Event is any event carried by the planning bus.
type Event interface {
	EventTime() time.Time
}

// IngestEvent is emitted after a snapshot has been derived and stored.
type IngestEvent struct {
	Stations   int
	Bins       int
	Unreliable int
	FeedTS     time.Time
	Duration   time.Duration
	Time       time.Time
}

// FeedEvent reports the freshness of a feed. Err is set when the poll failed.
type FeedEvent struct {
	Feed       string
	LagSeconds float64
	Stale      bool
	Err        error
	Time       time.Time
}

// RiskEvent carries the assessments computed for a planning cycle.
type RiskEvent struct {
	Assessments []model.RiskAssessment
	Time        time.Time
}

// PlanEvent is emitted for every planning cycle, accepted or not.
type PlanEvent struct {
	Plan            model.RebalancingPlan
	BaselineMinutes int
	WithPlanMinutes int
	Evaluated       bool
	Duration        time.Duration
	Time            time.Time
}

// PublishEvent reports the delivery of a plan to the fleet.
type PublishEvent struct {
	PlanID string
	Topic  string
	Err    error
	Time   time.Time
}

func (e IngestEvent) EventTime() time.Time  { return e.Time }
func (e FeedEvent) EventTime() time.Time    { return e.Time }
func (e RiskEvent) EventTime() time.Time    { return e.Time }
func (e PlanEvent) EventTime() time.Time    { return e.Time }
func (e PublishEvent) EventTime() time.Time { return e.Time }
