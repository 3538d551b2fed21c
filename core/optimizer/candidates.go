package optimizer

import "github.com/kilianp07/dockflow/core/model"

// BuildCandidates pairs every donor with every receiver at a fixed quantity.
// Donors are iterated outer, receivers inner, and a station is never paired
// with itself.
func BuildCandidates(donorIDs, receiverIDs []string, quantity int) []model.CandidateMove {
	out := make([]model.CandidateMove, 0, len(donorIDs)*len(receiverIDs))
	for _, d := range donorIDs {
		for _, r := range receiverIDs {
			if d == r {
				continue
			}
			out = append(out, model.CandidateMove{DonorStationID: d, ReceiverStationID: r, Quantity: quantity})
		}
	}
	return out
}

// IsWithinCapacity reports whether 0 <= quantity <= capacity.
func IsWithinCapacity(quantity, capacity int) bool {
	return quantity >= 0 && quantity <= capacity
}

// HasFeasiblePlan reports whether any candidate survived filtering.
func HasFeasiblePlan(candidateCount int) bool {
	return candidateCount > 0
}
