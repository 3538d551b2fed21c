package metrics

import (
	"errors"
	"testing"
)

type recordSink struct {
	plans  int
	feeds  int
	failOn string
}

func (r *recordSink) RecordPlan(PlanRecord) error {
	r.plans++
	if r.failOn == "plan" {
		return errors.New("plan failed")
	}
	return nil
}

func (r *recordSink) RecordFeed(FeedRecord) error {
	r.feeds++
	return nil
}

// planOnly implements no optional recorder.
type planOnly struct{ plans int }

func (p *planOnly) RecordPlan(PlanRecord) error {
	p.plans++
	return nil
}

// TestMultiSink ensures records are forwarded to every capable sink.
func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &planOnly{}
	m := NewMultiSink(s1, s2)
	if err := m.RecordPlan(PlanRecord{}); err != nil {
		t.Fatalf("record plan: %v", err)
	}
	if err := m.RecordFeed(FeedRecord{}); err != nil {
		t.Fatalf("record feed: %v", err)
	}
	if err := m.RecordRisk(nil); err != nil {
		t.Fatalf("record risk: %v", err)
	}
	if s1.plans != 1 || s2.plans != 1 || s1.feeds != 1 {
		t.Fatalf("records not forwarded: %+v %+v", s1, s2)
	}
}

func TestMultiSink_ErrorsDoNotStopFanout(t *testing.T) {
	s1 := &recordSink{failOn: "plan"}
	s2 := &planOnly{}
	if err := NewMultiSink(s1, s2).RecordPlan(PlanRecord{}); err == nil {
		t.Fatal("expected error")
	}
	if s2.plans != 1 {
		t.Fatal("second sink skipped")
	}
}
