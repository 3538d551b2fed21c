package model

import "time"

// CandidateMove is a hypothetical transfer of bikes between two stations.
type CandidateMove struct {
	DonorStationID    string `json:"donor_station_id"`
	ReceiverStationID string `json:"receiver_station_id"`
	Quantity          int    `json:"quantity"`
}

// PlanStatus is the outcome of a planning cycle.
type PlanStatus string

const (
	StatusPlan   PlanStatus = "plan"
	StatusNoPlan PlanStatus = "no_plan"
)

// PlanReason explains a no_plan outcome.
type PlanReason string

const (
	ReasonNoCandidates  PlanReason = "no_candidates"
	ReasonNoImprovement PlanReason = "no_improvement"
)

// PlannedMove is a selected move with its travel estimate.
type PlannedMove struct {
	CandidateMove
	Truck          int     `json:"truck"`
	DistanceMeters float64 `json:"distance_meters"`
	TravelMinutes  int     `json:"travel_minutes"`
	Score          float64 `json:"score"`
}

// RebalancingPlan is the optimizer output. Reason is set iff Status is
// StatusNoPlan, and a plan with StatusPlan always carries at least one move.
type RebalancingPlan struct {
	ID        string        `json:"id"`
	Status    PlanStatus    `json:"status"`
	Reason    *PlanReason   `json:"reason"`
	Moves     []PlannedMove `json:"moves"`
	CreatedAt time.Time     `json:"created_at"`
}

// NoPlan builds a no_plan outcome with the given reason.
func NoPlan(id string, reason PlanReason, at time.Time) RebalancingPlan {
	r := reason
	return RebalancingPlan{ID: id, Status: StatusNoPlan, Reason: &r, Moves: []PlannedMove{}, CreatedAt: at}
}

// StationIDs returns every station touched by the plan.
func (p RebalancingPlan) StationIDs() []string {
	ids := make([]string, 0, 2*len(p.Moves))
	for _, m := range p.Moves {
		ids = append(ids, m.DonorStationID, m.ReceiverStationID)
	}
	return ids
}

// TotalQuantity sums the bikes moved by the plan.
func (p RebalancingPlan) TotalQuantity() int {
	var n int
	for _, m := range p.Moves {
		n += m.Quantity
	}
	return n
}
