package nowcast

import "math"

const (
	// ImminentMinutes and above-zero projections under it are maximal risk.
	ImminentMinutes = 15.0
	// RelaxedMinutes and longer projections carry no risk.
	RelaxedMinutes = 60.0
)

// ProjectedMinutesToThreshold extrapolates linearly how long it takes current
// to reach zero at driftPerBin. It returns nil when there is no trend.
//
// The per-bin rate is used as-is, without converting bins to minutes.
func ProjectedMinutesToThreshold(current, driftPerBin float64) *float64 {
	if driftPerBin == 0 {
		return nil
	}
	m := -current / driftPerBin
	return &m
}

// RiskFromMinutes maps a projection onto the [0,1] urgency curve: 1 at or
// under ImminentMinutes, 0 at or over RelaxedMinutes, linear in between.
func RiskFromMinutes(minutes *float64) float64 {
	if minutes == nil {
		return 0
	}
	m := *minutes
	if m <= ImminentMinutes {
		return 1
	}
	if m >= RelaxedMinutes {
		return 0
	}
	r := (RelaxedMinutes - m) / (RelaxedMinutes - ImminentMinutes)
	return math.Max(0, math.Min(1, r))
}
