// Package simulator replays observed deltas and planned interventions over
// station inventories and scores the resulting trajectories.
package simulator

import (
	"time"

	"github.com/kilianp07/dockflow/core/model"
)

// StepState is the inventory of one station at one step.
type StepState struct {
	StationID      string    `json:"station_id"`
	TS             time.Time `json:"ts"`
	BikesAvailable int       `json:"bikes_available"`
	Capacity       int       `json:"capacity"`
}

// Empty reports whether no bike can be rented.
func (s StepState) Empty() bool { return s.BikesAvailable <= 0 }

// Full reports whether no bike can be returned.
func (s StepState) Full() bool { return s.BikesAvailable >= s.Capacity }

// ClampInventory bounds value to [0, capacity].
func ClampInventory(value, capacity int) int {
	if value < 0 {
		return 0
	}
	if value > capacity {
		return capacity
	}
	return value
}

// StatesFromRecords builds step states from the latest bin of each station.
// Records without an inventory or a capacity are skipped. The second map
// carries each station's reliability flag.
func StatesFromRecords(records []model.BinRecord) (map[string]StepState, map[string]bool) {
	states := make(map[string]StepState, len(records))
	reliable := make(map[string]bool, len(records))
	for _, r := range records {
		if r.BikesAvailable == nil || r.Capacity == nil {
			continue
		}
		if prev, ok := states[r.StationID]; ok && !r.TS.After(prev.TS) {
			continue
		}
		states[r.StationID] = StepState{
			StationID:      r.StationID,
			TS:             r.TS,
			BikesAvailable: ClampInventory(*r.BikesAvailable, *r.Capacity),
			Capacity:       *r.Capacity,
		}
		reliable[r.StationID] = r.IsReliable
	}
	return states, reliable
}
