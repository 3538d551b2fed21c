package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/dockflow/core/metrics"
	"github.com/kilianp07/dockflow/infra/logger"
)

// InfluxSink writes planning and ingestion records to InfluxDB.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// InfluxConfig locates the InfluxDB bucket.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// NewInfluxSink creates a sink for the given endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings InfluxDB and returns a NopSink when the
// health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

func (s *InfluxSink) write(points ...*write.Point) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, points...)
}

// RecordPlan writes a plan_cycle point.
func (s *InfluxSink) RecordPlan(r coremetrics.PlanRecord) error {
	p := write.NewPointWithMeasurement("plan_cycle").
		AddTag("status", r.Status).
		AddTag("component", "planner")
	if r.Reason != "" {
		p = p.AddTag("reason", r.Reason)
	}
	p = p.AddField("plan_id", r.PlanID).
		AddField("moves", r.Moves).
		AddField("quantity", r.Quantity).
		AddField("travel_minutes", r.TravelMinutes).
		AddField("duration_ms", round3(r.Duration.Seconds()*1000))
	if r.Evaluated {
		p = p.AddField("baseline_failure_minutes", r.BaselineMinutes).
			AddField("with_plan_failure_minutes", r.WithPlanMinutes)
	}
	return s.write(p.SetTime(r.Time))
}

// RecordIngest writes an ingest_cycle point.
func (s *InfluxSink) RecordIngest(r coremetrics.IngestRecord) error {
	p := write.NewPointWithMeasurement("ingest_cycle").
		AddTag("component", "ingest").
		AddField("stations", r.Stations).
		AddField("bins", r.Bins).
		AddField("unreliable", r.Unreliable).
		AddField("feed_ts", r.FeedTS.Unix()).
		AddField("duration_ms", round3(r.Duration.Seconds()*1000)).
		SetTime(r.Time)
	return s.write(p)
}

// RecordFeed writes a feed_status point.
func (s *InfluxSink) RecordFeed(r coremetrics.FeedRecord) error {
	p := write.NewPointWithMeasurement("feed_status").
		AddTag("feed", r.Feed).
		AddField("lag_seconds", round3(r.LagSeconds)).
		AddField("stale", r.Stale)
	if r.Error != "" {
		p = p.AddField("error", r.Error)
	}
	return s.write(p.SetTime(r.Time))
}

// RecordRisk writes one station_risk point per station.
func (s *InfluxSink) RecordRisk(recs []coremetrics.StationRisk) error {
	if len(recs) == 0 {
		return nil
	}
	points := make([]*write.Point, 0, len(recs))
	for _, r := range recs {
		p := write.NewPointWithMeasurement("station_risk").
			AddTag("station_id", r.StationID).
			AddField("risk", round3(r.Risk)).
			AddField("drift", round3(r.Drift))
		if r.MinutesToThreshold != nil && !math.IsInf(*r.MinutesToThreshold, 0) {
			p = p.AddField("minutes_to_threshold", round3(*r.MinutesToThreshold))
		}
		points = append(points, p.SetTime(r.Time))
	}
	return s.write(points...)
}

// RecordPublish writes a plan_publication point.
func (s *InfluxSink) RecordPublish(r coremetrics.PublishRecord) error {
	p := write.NewPointWithMeasurement("plan_publication").
		AddTag("topic", r.Topic).
		AddTag("ok", strconv.FormatBool(r.OK)).
		AddField("plan_id", r.PlanID)
	if r.Error != "" {
		p = p.AddField("error", r.Error)
	}
	return s.write(p.SetTime(r.Time))
}

// Close releases the client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
