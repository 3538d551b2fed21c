package optimizer

import (
	"math"
	"sort"

	"github.com/kilianp07/dockflow/core/model"
)

// Classification splits stations around the target fill band.
type Classification struct {
	Donors    []string
	Receivers []string
	// Surplus is the number of bikes a donor holds above the band.
	Surplus map[string]int
	// Need is the number of bikes a receiver lacks below the band.
	Need map[string]int
}

// Band returns the lower and upper inventory bounds for capacity.
func Band(capacity int, alpha, beta float64) (int, int) {
	lo := int(math.Ceil(alpha * float64(capacity)))
	hi := int(math.Floor(beta * float64(capacity)))
	return lo, hi
}

// Classify finds donors above the band and receivers below it. Only
// reliable stations with a known capacity of at least cfg.MinCapacity take
// part. When a station appears more than once, the latest record is used.
func Classify(states []model.BinRecord, cfg Config) Classification {
	latest := make(map[string]model.BinRecord, len(states))
	for _, s := range states {
		if prev, ok := latest[s.StationID]; ok && prev.TS.After(s.TS) {
			continue
		}
		latest[s.StationID] = s
	}
	c := Classification{Surplus: map[string]int{}, Need: map[string]int{}}
	for id, s := range latest {
		if !s.IsReliable || s.Capacity == nil || s.BikesAvailable == nil {
			continue
		}
		if *s.Capacity < cfg.MinCapacity {
			continue
		}
		lo, hi := Band(*s.Capacity, cfg.Alpha, cfg.Beta)
		bikes := *s.BikesAvailable
		switch {
		case bikes > hi:
			c.Donors = append(c.Donors, id)
			c.Surplus[id] = bikes - hi
		case bikes < lo:
			c.Receivers = append(c.Receivers, id)
			c.Need[id] = lo - bikes
		}
	}
	sort.Strings(c.Donors)
	sort.Strings(c.Receivers)
	return c
}
