// Package optimizer selects truck rebalancing moves between stations.
package optimizer

import (
	"fmt"

	"github.com/kilianp07/dockflow/core/factory"
)

// Config bounds a planning cycle.
type Config struct {
	HorizonMinutes int `json:"horizon_minutes"`
	// WindowMinutes bounds how far back risk assessment reads bins,
	// HorizonMinutes when zero.
	WindowMinutes int     `json:"window_minutes"`
	Trucks        int     `json:"trucks"`
	Capacity      int     `json:"capacity"`
	Quantity      int     `json:"quantity"`
	SpeedKMH      float64 `json:"speed_kmh"`
	BinMinutes    int     `json:"bin_minutes"`
	// Alpha and Beta delimit the target fill band as fractions of capacity.
	Alpha       float64 `json:"alpha"`
	Beta        float64 `json:"beta"`
	MinCapacity int     `json:"min_capacity"`
	// Scorer selects the candidate cost strategy, "zero" when empty.
	Scorer factory.ModuleConfig `json:"scorer"`
}

// SetDefaults fills zero values.
func (c *Config) SetDefaults() {
	if c.HorizonMinutes == 0 {
		c.HorizonMinutes = 60
	}
	if c.WindowMinutes == 0 {
		c.WindowMinutes = c.HorizonMinutes
	}
	if c.Trucks == 0 {
		c.Trucks = 1
	}
	if c.Capacity == 0 {
		c.Capacity = 20
	}
	if c.Quantity == 0 {
		c.Quantity = 3
	}
	if c.SpeedKMH == 0 {
		c.SpeedKMH = DefaultSpeedKMH
	}
	if c.BinMinutes == 0 {
		c.BinMinutes = 5
	}
	if c.Alpha == 0 {
		c.Alpha = 0.2
	}
	if c.Beta == 0 {
		c.Beta = 0.8
	}
	if c.MinCapacity == 0 {
		c.MinCapacity = 5
	}
	if c.Scorer.Type == "" {
		c.Scorer.Type = "zero"
	}
}

// Validate checks the planner bounds.
func (c Config) Validate() error {
	switch {
	case c.HorizonMinutes <= 0:
		return fmt.Errorf("planner: horizon_minutes must be positive")
	case c.WindowMinutes < 0:
		return fmt.Errorf("planner: window_minutes must not be negative")
	case c.Trucks <= 0:
		return fmt.Errorf("planner: trucks must be positive")
	case c.Capacity <= 0:
		return fmt.Errorf("planner: capacity must be positive")
	case c.Quantity <= 0:
		return fmt.Errorf("planner: quantity must be positive")
	case c.SpeedKMH <= 0:
		return fmt.Errorf("planner: speed_kmh must be positive")
	case c.BinMinutes <= 0:
		return fmt.Errorf("planner: bin_minutes must be positive")
	case c.Alpha < 0 || c.Beta > 1 || c.Alpha >= c.Beta:
		return fmt.Errorf("planner: invalid band alpha=%v beta=%v", c.Alpha, c.Beta)
	case c.MinCapacity < 0:
		return fmt.Errorf("planner: min_capacity must not be negative")
	}
	return nil
}
