package scenarios

import (
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/dockflow/app"
	"github.com/kilianp07/dockflow/core/model"
	"github.com/kilianp07/dockflow/core/nowcast"
	"github.com/kilianp07/dockflow/core/optimizer"
	"github.com/kilianp07/dockflow/core/simulator"
	"github.com/kilianp07/dockflow/infra/logger"
)

var defaultStart = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

// Result is the outcome of a scenario run.
type Result struct {
	Plan       model.RebalancingPlan           `json:"plan"`
	Evaluation *simulator.Evaluation           `json:"evaluation,omitempty"`
	Risk       map[string]model.RiskAssessment `json:"risk"`
}

// Run plans and simulates the scenario. With fixed moves the optimizer is
// bypassed and the moves are only evaluated.
func Run(sc *Scenario) (Result, error) {
	opt, err := optimizer.New(sc.Planner.ToConfig())
	if err != nil {
		return Result{}, err
	}
	planner := app.NewPlanner(nil, opt, app.PlannerOptions{}, logger.NopLogger{})
	data := cycleData(sc)

	if len(sc.Moves) == 0 {
		out := planner.Decide(data)
		return Result{Plan: out.Plan, Evaluation: out.Evaluation, Risk: out.Risk}, nil
	}

	plan := model.RebalancingPlan{ID: sc.Name, Status: model.StatusPlan, CreatedAt: data.At}
	for i, m := range sc.Moves {
		truck := m.Truck
		if truck == 0 {
			truck = i + 1
		}
		plan.Moves = append(plan.Moves, model.PlannedMove{
			CandidateMove: model.CandidateMove{DonorStationID: m.Donor, ReceiverStationID: m.Receiver, Quantity: m.Quantity},
			Truck:         truck,
		})
	}
	ev := planner.Evaluate(data, plan)
	if !ev.Accepted {
		plan = model.NoPlan(plan.ID, model.ReasonNoImprovement, data.At)
	}
	return Result{Plan: plan, Evaluation: &ev, Risk: data.Risk}, nil
}

// cycleData builds the latest state of every station and a bin history from
// its deltas.
func cycleData(sc *Scenario) app.CycleData {
	start := sc.Start
	if start.IsZero() {
		start = defaultStart
	}
	data := app.CycleData{Stations: map[string]model.StationInfo{}, At: start}
	var history []model.BinRecord
	for _, s := range sc.Stations {
		capacity := s.Capacity
		latest := model.BinRecord{
			StationID:      s.ID,
			TS:             start,
			BikesAvailable: model.IntPtr(s.Bikes),
			DocksAvailable: model.IntPtr(capacity - s.Bikes),
			Capacity:       model.IntPtr(capacity),
			CapacitySource: model.CapacityStatusSum,
			IsReliable:     s.IsReliable(),
		}
		if !latest.IsReliable {
			r := model.ReasonDisabled
			latest.ReliabilityReason = &r
		}
		// Walk the deltas backwards to recover earlier inventories.
		bikes := s.Bikes
		for i := len(s.Deltas) - 1; i >= 0; i-- {
			rec := latest
			rec.TS = start.Add(-time.Duration(len(s.Deltas)-1-i) * model.BinDuration)
			rec.BikesAvailable = model.IntPtr(bikes)
			rec.DeltaBikes = model.IntPtr(s.Deltas[i])
			history = append(history, rec)
			bikes -= s.Deltas[i]
		}
		if len(s.Deltas) == 0 {
			history = append(history, latest)
		} else {
			latest.DeltaBikes = model.IntPtr(s.Deltas[len(s.Deltas)-1])
		}
		data.States = append(data.States, latest)
		data.Stations[s.ID] = model.StationInfo{
			StationID: s.ID,
			Lat:       model.FloatPtr(s.Lat),
			Lon:       model.FloatPtr(s.Lon),
			Capacity:  model.IntPtr(capacity),
		}
	}
	data.Risk = nowcast.AssessAll(history, nowcast.DefaultWindow)
	return data
}

// Check compares a result with the scenario expectations and reports every
// mismatch.
func Check(sc *Scenario, res Result) error {
	exp := sc.Expected
	var errs []error
	if exp.Status != "" && string(res.Plan.Status) != exp.Status {
		errs = append(errs, fmt.Errorf("status: got %s want %s", res.Plan.Status, exp.Status))
	}
	if exp.Reason != "" {
		got := ""
		if res.Plan.Reason != nil {
			got = string(*res.Plan.Reason)
		}
		if got != exp.Reason {
			errs = append(errs, fmt.Errorf("reason: got %q want %q", got, exp.Reason))
		}
	}
	if exp.Moves != nil && len(res.Plan.Moves) != *exp.Moves {
		errs = append(errs, fmt.Errorf("moves: got %d want %d", len(res.Plan.Moves), *exp.Moves))
	}
	if exp.Accepted != nil {
		got := res.Evaluation != nil && res.Evaluation.Accepted
		if got != *exp.Accepted {
			errs = append(errs, fmt.Errorf("accepted: got %v want %v", got, *exp.Accepted))
		}
	}
	if exp.MaxWithPlan != nil && res.Evaluation != nil && res.Evaluation.WithPlan > *exp.MaxWithPlan {
		errs = append(errs, fmt.Errorf("with_plan_failure_minutes: got %d want <= %d", res.Evaluation.WithPlan, *exp.MaxWithPlan))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	return nil
}
