package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/dockflow/core/metrics"
	"github.com/kilianp07/dockflow/core/model"
)

type capture struct {
	mu     sync.Mutex
	bodies []string
}

func (c *capture) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		c.mu.Lock()
		c.bodies = append(c.bodies, strings.TrimSpace(string(data)))
		c.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func line(p *write.Point) string {
	return strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
}

func TestInfluxSink_RecordPlan(t *testing.T) {
	c := &capture{}
	srv := c.server(t)
	sink := NewInfluxSink(InfluxConfig{URL: srv.URL, Token: "token", Org: "org", Bucket: "bucket"})
	now := time.Now()
	rec := coremetrics.PlanRecord{
		PlanID:          "p1",
		Status:          "plan",
		Moves:           1,
		Quantity:        3,
		TravelMinutes:   5,
		BaselineMinutes: 30,
		WithPlanMinutes: 10,
		Evaluated:       true,
		Duration:        2 * time.Millisecond,
		Time:            now,
	}
	if err := sink.RecordPlan(rec); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("plan_cycle").
		AddTag("status", "plan").
		AddTag("component", "planner").
		AddField("plan_id", "p1").
		AddField("moves", 1).
		AddField("quantity", 3).
		AddField("travel_minutes", 5).
		AddField("duration_ms", 2.0).
		AddField("baseline_failure_minutes", 30).
		AddField("with_plan_failure_minutes", 10).
		SetTime(now)
	if len(c.bodies) != 1 || c.bodies[0] != line(p) {
		t.Errorf("unexpected body: %#v", c.bodies)
	}
}

func TestInfluxSink_RecordRisk(t *testing.T) {
	c := &capture{}
	srv := c.server(t)
	sink := NewInfluxSink(InfluxConfig{URL: srv.URL + "/api/v2/write", Org: "org", Bucket: "bucket"})
	now := time.Now()
	recs := []coremetrics.StationRisk{
		{StationID: "a", Risk: 0.5, Drift: -1.25, MinutesToThreshold: model.FloatPtr(37.5), Time: now},
		{StationID: "b", Time: now},
	}
	if err := sink.RecordRisk(recs); err != nil {
		t.Fatalf("record: %v", err)
	}
	p1 := write.NewPointWithMeasurement("station_risk").
		AddTag("station_id", "a").
		AddField("risk", 0.5).
		AddField("drift", -1.25).
		AddField("minutes_to_threshold", 37.5).
		SetTime(now)
	p2 := write.NewPointWithMeasurement("station_risk").
		AddTag("station_id", "b").
		AddField("risk", 0.0).
		AddField("drift", 0.0).
		SetTime(now)
	want := line(p1) + "\n" + line(p2)
	if len(c.bodies) != 1 || c.bodies[0] != want {
		t.Errorf("unexpected body: %#v", c.bodies)
	}
}

func TestInfluxSink_RecordFeedError(t *testing.T) {
	c := &capture{}
	srv := c.server(t)
	sink := NewInfluxSink(InfluxConfig{URL: srv.URL, Org: "org", Bucket: "bucket"})
	now := time.Now()
	if err := sink.RecordFeed(coremetrics.FeedRecord{Feed: "station_status", Error: "not advanced", Time: now}); err != nil {
		t.Fatalf("record: %v", err)
	}
	p := write.NewPointWithMeasurement("feed_status").
		AddTag("feed", "station_status").
		AddField("lag_seconds", 0.0).
		AddField("stale", false).
		AddField("error", "not advanced").
		SetTime(now)
	if len(c.bodies) != 1 || c.bodies[0] != line(p) {
		t.Errorf("unexpected body: %#v", c.bodies)
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(InfluxConfig{URL: srv.URL + "/api/v2/write", Token: "tok", Org: "org", Bucket: "bucket"})
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
