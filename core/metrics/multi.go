package metrics

import "errors"

// MultiSink fans records out to several sinks. Optional recorders are only
// called on sinks implementing them.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordPlan forwards to every sink and joins their errors.
func (m *MultiSink) RecordPlan(rec PlanRecord) error {
	var errs []error
	for _, s := range m.Sinks {
		errs = append(errs, s.RecordPlan(rec))
	}
	return errors.Join(errs...)
}

func (m *MultiSink) RecordIngest(rec IngestRecord) error {
	return forward(m.Sinks, func(r IngestRecorder) error { return r.RecordIngest(rec) })
}

func (m *MultiSink) RecordFeed(rec FeedRecord) error {
	return forward(m.Sinks, func(r FeedRecorder) error { return r.RecordFeed(rec) })
}

func (m *MultiSink) RecordRisk(recs []StationRisk) error {
	return forward(m.Sinks, func(r RiskRecorder) error { return r.RecordRisk(recs) })
}

func (m *MultiSink) RecordPublish(rec PublishRecord) error {
	return forward(m.Sinks, func(r PublishRecorder) error { return r.RecordPublish(rec) })
}

func forward[R any](sinks []MetricsSink, call func(R) error) error {
	var errs []error
	for _, s := range sinks {
		if r, ok := s.(R); ok {
			errs = append(errs, call(r))
		}
	}
	return errors.Join(errs...)
}
