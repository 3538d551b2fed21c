// Package scenarios loads YAML rebalancing scenarios and runs them through
// the planner and simulator.
package scenarios

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/dockflow/core/factory"
	"github.com/kilianp07/dockflow/core/model"
	"github.com/kilianp07/dockflow/core/optimizer"
)

// StationDef describes one station at the start of the scenario. Deltas are
// the observed per-bin bike changes leading up to it, oldest first.
type StationDef struct {
	ID       string  `yaml:"id"`
	Capacity int     `yaml:"capacity"`
	Bikes    int     `yaml:"bikes"`
	Lat      float64 `yaml:"lat"`
	Lon      float64 `yaml:"lon"`
	Reliable *bool   `yaml:"reliable,omitempty"`
	Deltas   []int   `yaml:"deltas,omitempty"`
}

// IsReliable defaults to true.
func (s StationDef) IsReliable() bool { return s.Reliable == nil || *s.Reliable }

// PlannerDef overrides planner settings. Zero values keep the defaults.
type PlannerDef struct {
	HorizonMinutes int     `yaml:"horizon_minutes"`
	Trucks         int     `yaml:"trucks"`
	Capacity       int     `yaml:"capacity"`
	Quantity       int     `yaml:"quantity"`
	Alpha          float64 `yaml:"alpha"`
	Beta           float64 `yaml:"beta"`
	Scorer         string  `yaml:"scorer"`
}

func (p PlannerDef) ToConfig() optimizer.Config {
	return optimizer.Config{
		HorizonMinutes: p.HorizonMinutes,
		Trucks:         p.Trucks,
		Capacity:       p.Capacity,
		Quantity:       p.Quantity,
		Alpha:          p.Alpha,
		Beta:           p.Beta,
		Scorer:         factory.ModuleConfig{Type: p.Scorer},
	}
}

// MoveDef is a fixed move to simulate instead of optimizing.
type MoveDef struct {
	Donor    string `yaml:"donor"`
	Receiver string `yaml:"receiver"`
	Quantity int    `yaml:"quantity"`
	Truck    int    `yaml:"truck,omitempty"`
}

// Expected lists the assertions checked after a run. Nil fields are not
// checked.
type Expected struct {
	Status      string `yaml:"status"`
	Reason      string `yaml:"reason,omitempty"`
	Moves       *int   `yaml:"moves,omitempty"`
	Accepted    *bool  `yaml:"accepted,omitempty"`
	MaxWithPlan *int   `yaml:"max_with_plan,omitempty"`
}

type Scenario struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description,omitempty"`
	Start       time.Time    `yaml:"start,omitempty"`
	Planner     PlannerDef   `yaml:"planner,omitempty"`
	Stations    []StationDef `yaml:"stations"`
	Moves       []MoveDef    `yaml:"moves,omitempty"`
	Expected    Expected     `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &sc, nil
}

// Validate checks station definitions and fixed moves.
func (sc Scenario) Validate() error {
	if len(sc.Stations) == 0 {
		return fmt.Errorf("scenario %q has no stations", sc.Name)
	}
	seen := map[string]bool{}
	for _, s := range sc.Stations {
		if s.ID == "" || seen[s.ID] {
			return fmt.Errorf("station id %q missing or duplicated", s.ID)
		}
		seen[s.ID] = true
		if s.Capacity <= 0 || s.Bikes < 0 || s.Bikes > s.Capacity {
			return fmt.Errorf("station %s: bikes %d outside capacity %d", s.ID, s.Bikes, s.Capacity)
		}
	}
	for _, m := range sc.Moves {
		if !seen[m.Donor] || !seen[m.Receiver] || m.Donor == m.Receiver || m.Quantity <= 0 {
			return fmt.Errorf("invalid move %s->%s (%d)", m.Donor, m.Receiver, m.Quantity)
		}
	}
	switch model.PlanStatus(sc.Expected.Status) {
	case "", model.StatusPlan, model.StatusNoPlan:
	default:
		return fmt.Errorf("unknown expected status %q", sc.Expected.Status)
	}
	return nil
}
