package simulator

import (
	"github.com/kilianp07/dockflow/core/model"
)

// AdvanceStep applies one delta. StationID and TS are carried through.
func AdvanceStep(state StepState, delta int) StepState {
	state.BikesAvailable = ClampInventory(state.BikesAvailable+delta, state.Capacity)
	return state
}

// ReplayDeltas advances every station through its own delta sequence and
// returns one state per delta. Each step lands one bin after the previous
// one. Stations without a starting state are ignored.
func ReplayDeltas(states map[string]StepState, deltas map[string][]int) map[string][]StepState {
	return run(states, deltas)
}

// ApplyInterventions feeds per-station adjustments through the same stepping
// as ReplayDeltas.
func ApplyInterventions(states map[string]StepState, adjustments map[string][]int) map[string][]StepState {
	return run(states, adjustments)
}

func run(states map[string]StepState, seqs map[string][]int) map[string][]StepState {
	out := make(map[string][]StepState, len(seqs))
	for id, seq := range seqs {
		cur, ok := states[id]
		if !ok {
			continue
		}
		steps := make([]StepState, 0, len(seq))
		for _, d := range seq {
			cur = AdvanceStep(cur, d)
			cur.TS = cur.TS.Add(model.BinDuration)
			steps = append(steps, cur)
		}
		out[id] = steps
	}
	return out
}

// PlanAdjustments converts plan moves into one adjustment per move for the
// stations involved: minus the quantity at the donor, plus at the receiver.
func PlanAdjustments(plan model.RebalancingPlan) map[string][]int {
	adj := make(map[string][]int)
	for _, m := range plan.Moves {
		adj[m.DonorStationID] = append(adj[m.DonorStationID], -m.Quantity)
		adj[m.ReceiverStationID] = append(adj[m.ReceiverStationID], m.Quantity)
	}
	return adj
}
