package metrics

import (
	"context"

	"github.com/kilianp07/dockflow/core/events"
	coremetrics "github.com/kilianp07/dockflow/core/metrics"
	"github.com/kilianp07/dockflow/infra/logger"
	"github.com/kilianp07/dockflow/internal/eventbus"
)

// StartEventCollector subscribes to the bus and records every event on sink.
// It stops when the context is canceled or the bus is closed.
func StartEventCollector(ctx context.Context, bus *eventbus.TypedBus[events.Event], sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	log := logger.New("metrics-collector")
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := Record(sink, ev); err != nil {
					log.Warnf("record %T: %v", ev, err)
				}
			}
		}
	}()
}

// Record converts a bus event to its metrics record. Events the sink has no
// recorder for are ignored.
func Record(sink coremetrics.MetricsSink, ev events.Event) error {
	switch e := ev.(type) {
	case events.PlanEvent:
		rec := coremetrics.PlanRecord{
			PlanID:          e.Plan.ID,
			Status:          string(e.Plan.Status),
			Moves:           len(e.Plan.Moves),
			Quantity:        e.Plan.TotalQuantity(),
			BaselineMinutes: e.BaselineMinutes,
			WithPlanMinutes: e.WithPlanMinutes,
			Evaluated:       e.Evaluated,
			Duration:        e.Duration,
			Time:            e.Time,
		}
		if e.Plan.Reason != nil {
			rec.Reason = string(*e.Plan.Reason)
		}
		for _, m := range e.Plan.Moves {
			rec.TravelMinutes += m.TravelMinutes
		}
		return sink.RecordPlan(rec)
	case events.IngestEvent:
		if r, ok := sink.(coremetrics.IngestRecorder); ok {
			return r.RecordIngest(coremetrics.IngestRecord{
				Stations:   e.Stations,
				Bins:       e.Bins,
				Unreliable: e.Unreliable,
				FeedTS:     e.FeedTS,
				Duration:   e.Duration,
				Time:       e.Time,
			})
		}
	case events.FeedEvent:
		if r, ok := sink.(coremetrics.FeedRecorder); ok {
			rec := coremetrics.FeedRecord{Feed: e.Feed, LagSeconds: e.LagSeconds, Stale: e.Stale, Time: e.Time}
			if e.Err != nil {
				rec.Error = e.Err.Error()
			}
			return r.RecordFeed(rec)
		}
	case events.RiskEvent:
		if r, ok := sink.(coremetrics.RiskRecorder); ok {
			recs := make([]coremetrics.StationRisk, len(e.Assessments))
			for i, a := range e.Assessments {
				recs[i] = coremetrics.StationRisk{
					StationID:          a.StationID,
					Risk:               a.Risk,
					Drift:              a.Drift,
					MinutesToThreshold: a.MinutesToThreshold,
					Time:               e.Time,
				}
			}
			return r.RecordRisk(recs)
		}
	case events.PublishEvent:
		if r, ok := sink.(coremetrics.PublishRecorder); ok {
			rec := coremetrics.PublishRecord{PlanID: e.PlanID, Topic: e.Topic, OK: e.Err == nil, Time: e.Time}
			if e.Err != nil {
				rec.Error = e.Err.Error()
			}
			return r.RecordPublish(rec)
		}
	}
	return nil
}
