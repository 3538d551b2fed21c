package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/dockflow/core/events"
	"github.com/kilianp07/dockflow/core/logger"
	"github.com/kilianp07/dockflow/core/model"
	coremon "github.com/kilianp07/dockflow/core/monitoring"
	coremqtt "github.com/kilianp07/dockflow/core/mqtt"
	"github.com/kilianp07/dockflow/core/nowcast"
	"github.com/kilianp07/dockflow/core/optimizer"
	"github.com/kilianp07/dockflow/core/planlog"
	"github.com/kilianp07/dockflow/core/simulator"
	"github.com/kilianp07/dockflow/core/store"
	"github.com/kilianp07/dockflow/internal/eventbus"
)

// Planner runs planning cycles: risk, optimization, simulated acceptance,
// then logging and publication.
type Planner struct {
	runner     store.Runner
	opt        *optimizer.Optimizer
	plans      planlog.Store
	publisher  coremqtt.Publisher
	ackTimeout time.Duration
	bus        *eventbus.TypedBus[events.Event]
	window     time.Duration
	log        logger.Logger
	now        func() time.Time
}

// PlannerOptions holds the optional collaborators of a Planner.
type PlannerOptions struct {
	Plans      planlog.Store
	Publisher  coremqtt.Publisher
	AckTimeout time.Duration
	Bus        *eventbus.TypedBus[events.Event]
	// Window bounds the bins read for risk assessment.
	Window time.Duration
}

func NewPlanner(r store.Runner, opt *optimizer.Optimizer, o PlannerOptions, log logger.Logger) *Planner {
	if o.Window <= 0 {
		o.Window = time.Duration(opt.Config().WindowMinutes) * time.Minute
	}
	return &Planner{
		runner:     r,
		opt:        opt,
		plans:      o.Plans,
		publisher:  o.Publisher,
		ackTimeout: o.AckTimeout,
		bus:        o.Bus,
		window:     o.Window,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Outcome is the result of a planning cycle.
type Outcome struct {
	Plan       model.RebalancingPlan           `json:"plan"`
	Evaluation *simulator.Evaluation           `json:"evaluation,omitempty"`
	Risk       map[string]model.RiskAssessment `json:"risk"`
	Published  bool                            `json:"published"`
}

// CycleData is the stored state a cycle plans against.
type CycleData struct {
	States   []model.BinRecord
	Stations map[string]model.StationInfo
	Risk     map[string]model.RiskAssessment
	At       time.Time
}

// Load reads the latest state, station metadata and recent bins, and
// assesses risk.
func (p *Planner) Load(ctx context.Context) (CycleData, error) {
	at := p.now()
	states, err := store.FetchLatestState(ctx, p.runner)
	if err != nil {
		return CycleData{}, fmt.Errorf("fetch latest state: %w", err)
	}
	stations, err := store.FetchStations(ctx, p.runner)
	if err != nil {
		return CycleData{}, fmt.Errorf("fetch stations: %w", err)
	}
	since := at.Add(-p.window)
	if len(states) > 0 {
		// Anchor on the newest stored bin so replays of old data still see a window.
		newest := states[0].TS
		for _, s := range states {
			if s.TS.After(newest) {
				newest = s.TS
			}
		}
		since = newest.Add(-p.window)
	}
	bins, err := store.FetchLatestBins(ctx, p.runner, since)
	if err != nil {
		return CycleData{}, fmt.Errorf("fetch bins: %w", err)
	}
	return CycleData{
		States:   states,
		Stations: stations,
		Risk:     nowcast.AssessAll(bins, nowcast.DefaultWindow),
		At:       at,
	}, nil
}

// Propose plans against the stored state without side effects.
func (p *Planner) Propose(ctx context.Context) (Outcome, error) {
	data, err := p.Load(ctx)
	if err != nil {
		return Outcome{}, err
	}
	return p.Decide(data), nil
}

// Decide optimizes and simulates. A plan that does not strictly lower the
// simulated failure minutes becomes no_plan/no_improvement.
func (p *Planner) Decide(data CycleData) Outcome {
	plan := p.opt.Plan(optimizer.Input{States: data.States, Stations: data.Stations, Risk: data.Risk, At: data.At})
	out := Outcome{Plan: plan, Risk: data.Risk}
	if plan.Status != model.StatusPlan {
		return out
	}
	ev := p.Evaluate(data, plan)
	out.Evaluation = &ev
	if !ev.Accepted {
		out.Plan = model.NoPlan(plan.ID, model.ReasonNoImprovement, plan.CreatedAt)
	}
	return out
}

// Evaluate simulates plan over the planning horizon using projected drift.
func (p *Planner) Evaluate(data CycleData, plan model.RebalancingPlan) simulator.Evaluation {
	cfg := p.opt.Config()
	states, reliable := simulator.StatesFromRecords(data.States)
	projected := nowcast.ProjectDeltas(data.Risk, cfg.HorizonMinutes/cfg.BinMinutes)
	return simulator.Evaluate(states, projected, plan, reliable, cfg.BinMinutes)
}

// Cycle runs a full planning cycle: propose, log, publish, report.
func (p *Planner) Cycle(ctx context.Context) (Outcome, error) {
	start := time.Now()
	data, err := p.Load(ctx)
	if err != nil {
		return Outcome{}, err
	}
	p.emitRisk(data)
	out := p.Decide(data)

	if out.Plan.Status == model.StatusPlan {
		out.Published = p.publish(ctx, out.Plan)
	}
	if p.plans != nil {
		rec := planlog.Record{Timestamp: data.At, Plan: out.Plan, Published: out.Published}
		if out.Evaluation != nil {
			rec.Evaluation = &planlog.Evaluation{
				BaselineMinutes: out.Evaluation.Baseline,
				WithPlanMinutes: out.Evaluation.WithPlan,
				Accepted:        out.Evaluation.Accepted,
			}
		}
		if err := p.plans.Append(ctx, rec); err != nil {
			p.log.Errorf("plan log append: %v", err)
			coremon.Report("planlog", err)
		}
	}

	pe := events.PlanEvent{Plan: out.Plan, Duration: time.Since(start), Time: p.now()}
	if out.Evaluation != nil {
		pe.Evaluated = true
		pe.BaselineMinutes = out.Evaluation.Baseline
		pe.WithPlanMinutes = out.Evaluation.WithPlan
	}
	p.emit(pe)

	if out.Plan.Reason != nil {
		p.log.Infof("plan %s: %s (%s)", out.Plan.ID, out.Plan.Status, *out.Plan.Reason)
	} else {
		p.log.Infof("plan %s: %d moves, %d bikes", out.Plan.ID, len(out.Plan.Moves), out.Plan.TotalQuantity())
	}
	return out, nil
}

func (p *Planner) publish(ctx context.Context, plan model.RebalancingPlan) bool {
	if p.publisher == nil {
		return false
	}
	ids, err := p.publisher.PublishPlan(ctx, plan)
	p.emit(events.PublishEvent{PlanID: plan.ID, Topic: "plans", Err: err, Time: p.now()})
	if err != nil {
		p.log.Errorf("publish plan %s: %v", plan.ID, err)
		return false
	}
	if p.ackTimeout > 0 {
		acked := 0
		for _, id := range ids {
			ok, err := p.publisher.WaitForAck(id, p.ackTimeout)
			if ok {
				acked++
				continue
			}
			if errors.Is(err, coremqtt.ErrAckTimeout) {
				p.log.Warnf("move %s of plan %s not acknowledged", id, plan.ID)
			}
		}
		p.log.Infof("plan %s: %d/%d moves acknowledged", plan.ID, acked, len(ids))
	}
	return true
}

func (p *Planner) emitRisk(data CycleData) {
	if p.bus == nil {
		return
	}
	list := make([]model.RiskAssessment, 0, len(data.Risk))
	for _, a := range data.Risk {
		list = append(list, a)
	}
	p.bus.Publish(events.RiskEvent{Assessments: list, Time: data.At})
}

func (p *Planner) emit(ev events.Event) {
	if p.bus != nil {
		p.bus.Publish(ev)
	}
}
