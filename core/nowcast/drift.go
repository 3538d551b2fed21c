// Package nowcast projects short-term station risk from recent bin deltas.
package nowcast

import "gonum.org/v1/gonum/stat"

// DefaultWindow is the number of trailing bins used for drift, about 30
// minutes with 5-minute bins.
const DefaultWindow = 6

// NetDrift is the arithmetic mean of deltas, 0 for an empty sequence.
func NetDrift(deltas []int) float64 {
	if len(deltas) == 0 {
		return 0
	}
	xs := make([]float64, len(deltas))
	for i, d := range deltas {
		xs[i] = float64(d)
	}
	return stat.Mean(xs, nil)
}

// WindowedDrift is the mean of the last window deltas. A non-positive window
// yields 0.
func WindowedDrift(deltas []int, window int) float64 {
	if window <= 0 {
		return 0
	}
	if len(deltas) > window {
		deltas = deltas[len(deltas)-window:]
	}
	return NetDrift(deltas)
}
