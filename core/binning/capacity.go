package binning

import "github.com/kilianp07/dockflow/core/model"

// CapacityResult is the effective capacity of a station for one bin.
type CapacityResult struct {
	Capacity *int
	Source   model.CapacitySource
	Reliable bool
}

// EffectiveCapacity applies the capacity trust policy. A positive live sum of
// bikes and docks is authoritative. Otherwise a positive configured station
// capacity is used as a lower-trust fallback. Otherwise capacity is unknown.
func EffectiveCapacity(bikes, docks, stationCapacity *int) CapacityResult {
	if bikes != nil && docks != nil {
		if total := *bikes + *docks; total > 0 {
			return CapacityResult{Capacity: model.IntPtr(total), Source: model.CapacityStatusSum, Reliable: true}
		}
	}
	if stationCapacity != nil && *stationCapacity > 0 {
		return CapacityResult{Capacity: model.IntPtr(*stationCapacity), Source: model.CapacityStationInfo}
	}
	return CapacityResult{Source: model.CapacityMissing}
}
