package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/dockflow/core/events"
	coremetrics "github.com/kilianp07/dockflow/core/metrics"
	"github.com/kilianp07/dockflow/core/model"
	"github.com/kilianp07/dockflow/internal/eventbus"
)

func TestPromSink_RecordsThroughCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	now := time.Now()
	plan := model.RebalancingPlan{ID: "p", Status: model.StatusPlan, Moves: []model.PlannedMove{
		{CandidateMove: model.CandidateMove{DonorStationID: "a", ReceiverStationID: "b", Quantity: 3}, TravelMinutes: 5},
	}}
	require.NoError(t, Record(sink, events.PlanEvent{Plan: plan, Evaluated: true, BaselineMinutes: 20, WithPlanMinutes: 5, Time: now}))
	require.NoError(t, Record(sink, events.PlanEvent{Plan: model.NoPlan("q", model.ReasonNoCandidates, now), Time: now}))
	require.NoError(t, Record(sink, events.IngestEvent{Bins: 10, Unreliable: 2, Time: now}))
	require.NoError(t, Record(sink, events.FeedEvent{Feed: "station_status", LagSeconds: 42, Time: now}))
	require.NoError(t, Record(sink, events.FeedEvent{Feed: "station_status", Err: errors.New("stale"), Time: now}))
	require.NoError(t, Record(sink, events.RiskEvent{Assessments: []model.RiskAssessment{{StationID: "a", Risk: 0.75}}, Time: now}))
	require.NoError(t, Record(sink, events.PublishEvent{PlanID: "p", Err: errors.New("offline"), Time: now}))

	assert.Equal(t, 1.0, testutil.ToFloat64(sink.plans.WithLabelValues("plan", "")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.plans.WithLabelValues("no_plan", "no_candidates")))
	assert.Equal(t, 3.0, testutil.ToFloat64(sink.bikesMoved))
	assert.Equal(t, 20.0, testutil.ToFloat64(sink.failure.WithLabelValues("baseline")))
	assert.Equal(t, 8.0, testutil.ToFloat64(sink.bins.WithLabelValues("true")))
	assert.Equal(t, 42.0, testutil.ToFloat64(sink.feedLag.WithLabelValues("station_status")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.feedErrors.WithLabelValues("station_status")))
	assert.Equal(t, 0.75, testutil.ToFloat64(sink.risk.WithLabelValues("a")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.publishes.WithLabelValues("error")))
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	second, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	require.NoError(t, second.RecordPlan(coremetricsPlan("plan")))
	assert.Equal(t, 1.0, testutil.ToFloat64(first.plans.WithLabelValues("plan", "")))
}

func TestStartEventCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	bus := eventbus.NewTyped[events.Event]()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartEventCollector(ctx, bus, sink)
	require.Eventually(t, func() bool { return bus.Subscribers() == 1 }, time.Second, 10*time.Millisecond)

	bus.Publish(events.IngestEvent{Bins: 4, Time: time.Now()})
	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(sink.bins.WithLabelValues("true")) == 4
	}, time.Second, 10*time.Millisecond)
}

func coremetricsPlan(status string) coremetrics.PlanRecord {
	return coremetrics.PlanRecord{Status: status, Time: time.Now()}
}
