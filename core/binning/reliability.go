package binning

import "github.com/kilianp07/dockflow/core/model"

// ReliabilityResult is the trust verdict of a derived bin. Reason is nil iff
// IsReliable is true.
type ReliabilityResult struct {
	IsReliable bool
	Reason     *model.ReliabilityReason
}

// MarkReliable returns a reliable verdict.
func MarkReliable() ReliabilityResult {
	return ReliabilityResult{IsReliable: true}
}

// MarkUnreliable returns an unreliable verdict with the given reason.
func MarkUnreliable(reason model.ReliabilityReason) ReliabilityResult {
	r := reason
	return ReliabilityResult{Reason: &r}
}

// AssessStatus grades one status row. The first matching reason wins, in
// this order: offline, disabled, status_invalid, capacity_missing.
func AssessStatus(row model.StatusRow, capacity CapacityResult) ReliabilityResult {
	if row.IsInstalled != nil && !*row.IsInstalled {
		return MarkUnreliable(model.ReasonOffline)
	}
	if row.IsRenting != nil && row.IsReturning != nil && !*row.IsRenting && !*row.IsReturning {
		return MarkUnreliable(model.ReasonDisabled)
	}
	if invalidCount(row.BikesAvailable) || invalidCount(row.DocksAvailable) {
		return MarkUnreliable(model.ReasonStatusInvalid)
	}
	if !capacity.Reliable {
		return MarkUnreliable(model.ReasonCapacityMissing)
	}
	return MarkReliable()
}

func invalidCount(v *int) bool {
	return v == nil || *v < 0
}
