package metrics

import "time"

// PlanRecord describes one planning cycle.
type PlanRecord struct {
	PlanID          string
	Status          string
	Reason          string
	Moves           int
	Quantity        int
	TravelMinutes   int
	BaselineMinutes int
	WithPlanMinutes int
	Evaluated       bool
	Duration        time.Duration
	Time            time.Time
}

// MetricsSink records planning cycles. Sinks may also implement any of the
// optional recorder interfaces below.
type MetricsSink interface {
	RecordPlan(rec PlanRecord) error
}

// IngestRecord describes one ingestion cycle.
type IngestRecord struct {
	Stations   int
	Bins       int
	Unreliable int
	FeedTS     time.Time
	Duration   time.Duration
	Time       time.Time
}

// IngestRecorder records ingestion cycles.
type IngestRecorder interface {
	RecordIngest(rec IngestRecord) error
}

// FeedRecord is the freshness of one feed at poll time.
type FeedRecord struct {
	Feed       string
	LagSeconds float64
	Stale      bool
	Error      string
	Time       time.Time
}

// FeedRecorder records feed freshness and poll failures.
type FeedRecorder interface {
	RecordFeed(rec FeedRecord) error
}

// StationRisk is the risk of one station at a planning cycle.
type StationRisk struct {
	StationID          string
	Risk               float64
	Drift              float64
	MinutesToThreshold *float64
	Time               time.Time
}

// RiskRecorder records station risk.
type RiskRecorder interface {
	RecordRisk(recs []StationRisk) error
}

// PublishRecord is the delivery result of a plan publication.
type PublishRecord struct {
	PlanID string
	Topic  string
	OK     bool
	Error  string
	Time   time.Time
}

// PublishRecorder records plan publications.
type PublishRecorder interface {
	RecordPublish(rec PublishRecord) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordPlan(PlanRecord) error       { return nil }
func (NopSink) RecordIngest(IngestRecord) error   { return nil }
func (NopSink) RecordFeed(FeedRecord) error       { return nil }
func (NopSink) RecordRisk([]StationRisk) error    { return nil }
func (NopSink) RecordPublish(PublishRecord) error { return nil }
