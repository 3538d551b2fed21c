package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/dockflow/core/metrics"
)

// PromSink exposes planning and ingestion activity as Prometheus metrics.
type PromSink struct {
	plans        *prometheus.CounterVec
	moves        prometheus.Counter
	bikesMoved   prometheus.Counter
	planDuration prometheus.Histogram
	failure      *prometheus.GaugeVec
	bins         *prometheus.CounterVec
	feedLag      *prometheus.GaugeVec
	feedErrors   *prometheus.CounterVec
	risk         *prometheus.GaugeVec
	publishes    *prometheus.CounterVec
}

// NewPromSink registers metrics on the default Prometheus registerer. The
// endpoint is served separately by StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on reg, reusing collectors that
// are already registered. A nil registerer defaults to the global one.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		plans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dockflow_plans_total",
			Help: "Planning cycles by outcome",
		}, []string{"status", "reason"}),
		moves: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dockflow_plan_moves_total",
			Help: "Truck moves planned",
		}),
		bikesMoved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dockflow_plan_bikes_total",
			Help: "Bikes scheduled for transfer",
		}),
		planDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dockflow_plan_duration_seconds",
			Help:    "Time spent computing a plan",
			Buckets: prometheus.DefBuckets,
		}),
		failure: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dockflow_projected_failure_minutes",
			Help: "Projected failure minutes of the last evaluated plan",
		}, []string{"scenario"}),
		bins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dockflow_bins_written_total",
			Help: "Derived bins written to the store",
		}, []string{"reliable"}),
		feedLag: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dockflow_feed_lag_seconds",
			Help: "Age of the last accepted feed",
		}, []string{"feed"}),
		feedErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dockflow_feed_errors_total",
			Help: "Skipped feed polls",
		}, []string{"feed"}),
		risk: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dockflow_station_risk",
			Help: "Latest risk of each station",
		}, []string{"station_id"}),
		publishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dockflow_plan_publications_total",
			Help: "Plan publications by result",
		}, []string{"result"}),
	}
	var err error
	if s.plans, err = register(reg, s.plans); err != nil {
		return nil, err
	}
	if s.moves, err = register(reg, s.moves); err != nil {
		return nil, err
	}
	if s.bikesMoved, err = register(reg, s.bikesMoved); err != nil {
		return nil, err
	}
	if s.planDuration, err = register(reg, s.planDuration); err != nil {
		return nil, err
	}
	if s.failure, err = register(reg, s.failure); err != nil {
		return nil, err
	}
	if s.bins, err = register(reg, s.bins); err != nil {
		return nil, err
	}
	if s.feedLag, err = register(reg, s.feedLag); err != nil {
		return nil, err
	}
	if s.feedErrors, err = register(reg, s.feedErrors); err != nil {
		return nil, err
	}
	if s.risk, err = register(reg, s.risk); err != nil {
		return nil, err
	}
	if s.publishes, err = register(reg, s.publishes); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordPlan counts the cycle outcome and its moves.
func (s *PromSink) RecordPlan(r coremetrics.PlanRecord) error {
	s.plans.WithLabelValues(r.Status, r.Reason).Inc()
	s.moves.Add(float64(r.Moves))
	s.bikesMoved.Add(float64(r.Quantity))
	s.planDuration.Observe(r.Duration.Seconds())
	if r.Evaluated {
		s.failure.WithLabelValues("baseline").Set(float64(r.BaselineMinutes))
		s.failure.WithLabelValues("with_plan").Set(float64(r.WithPlanMinutes))
	}
	return nil
}

// RecordIngest counts written bins split by reliability.
func (s *PromSink) RecordIngest(r coremetrics.IngestRecord) error {
	s.bins.WithLabelValues("true").Add(float64(r.Bins - r.Unreliable))
	s.bins.WithLabelValues("false").Add(float64(r.Unreliable))
	return nil
}

// RecordFeed sets the feed lag, or counts the failure.
func (s *PromSink) RecordFeed(r coremetrics.FeedRecord) error {
	if r.Error != "" {
		s.feedErrors.WithLabelValues(r.Feed).Inc()
		return nil
	}
	s.feedLag.WithLabelValues(r.Feed).Set(r.LagSeconds)
	return nil
}

// RecordRisk sets the per-station risk gauge.
func (s *PromSink) RecordRisk(recs []coremetrics.StationRisk) error {
	for _, r := range recs {
		s.risk.WithLabelValues(r.StationID).Set(r.Risk)
	}
	return nil
}

// RecordPublish counts publications.
func (s *PromSink) RecordPublish(r coremetrics.PublishRecord) error {
	result := "ok"
	if !r.OK {
		result = "error"
	}
	s.publishes.WithLabelValues(result).Inc()
	return nil
}
