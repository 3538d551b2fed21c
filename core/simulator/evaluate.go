package simulator

import "github.com/kilianp07/dockflow/core/model"

// Evaluation compares the projected failure minutes with and without a plan.
type Evaluation struct {
	Baseline int                    `json:"baseline_failure_minutes"`
	WithPlan int                    `json:"with_plan_failure_minutes"`
	Accepted bool                   `json:"accepted"`
	Steps    map[string][]StepState `json:"steps"`
}

// Evaluate replays projected deltas over a common horizon, once from the
// current states and once after the plan's moves are applied. Stations with
// shorter sequences are padded with zero deltas. The plan is accepted only
// when it strictly reduces failure minutes.
func Evaluate(states map[string]StepState, projected map[string][]int, plan model.RebalancingPlan, reliable map[string]bool, binMinutes int) Evaluation {
	horizon := 1
	for _, seq := range projected {
		horizon = max(horizon, len(seq))
	}
	padded := make(map[string][]int, len(states))
	for id := range states {
		seq := make([]int, horizon)
		copy(seq, projected[id])
		padded[id] = seq
	}

	baseline := ReplayDeltas(states, padded)

	start := make(map[string]StepState, len(states))
	for id, s := range states {
		start[id] = s
	}
	for id, steps := range ApplyInterventions(states, PlanAdjustments(plan)) {
		last := steps[len(steps)-1]
		last.TS = states[id].TS
		start[id] = last
	}
	withPlan := ReplayDeltas(start, padded)

	ev := Evaluation{
		Baseline: ScoreSteps(baseline, reliable, binMinutes),
		WithPlan: ScoreSteps(withPlan, reliable, binMinutes),
		Steps:    withPlan,
	}
	ev.Accepted = len(plan.Moves) > 0 && ev.WithPlan < ev.Baseline
	return ev
}
