package optimizer

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/dockflow/core/model"
)

// Input is the data for one planning cycle.
type Input struct {
	// States holds the latest bin per station.
	States   []model.BinRecord
	Stations map[string]model.StationInfo
	Risk     map[string]model.RiskAssessment
	At       time.Time
}

// Optimizer builds rebalancing plans.
type Optimizer struct {
	cfg    Config
	scorer Scorer
	newID  func() string
}

// New creates an optimizer, resolving cfg.Scorer from the built-in registry.
func New(cfg Config) (*Optimizer, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	scorer, err := NewScorerRegistry().Create(cfg.Scorer)
	if err != nil {
		return nil, err
	}
	return &Optimizer{cfg: cfg, scorer: scorer, newID: uuid.NewString}, nil
}

// NewWithScorer creates an optimizer with an explicit scoring strategy.
func NewWithScorer(cfg Config, scorer Scorer) *Optimizer {
	cfg.SetDefaults()
	if scorer == nil {
		scorer = ZeroScorer{}
	}
	return &Optimizer{cfg: cfg, scorer: scorer, newID: uuid.NewString}
}

// Config returns the effective configuration.
func (o *Optimizer) Config() Config { return o.cfg }

type option struct {
	move  model.PlannedMove
	tie   TieBreakerScore
	order int
}

// better orders by cost, then by tie-breaker, then by candidate order.
func (a option) better(b option) bool {
	if a.move.Score != b.move.Score {
		return a.move.Score < b.move.Score
	}
	if a.tie != b.tie {
		return PickBetter(b.tie, a.tie) == a.tie
	}
	return a.order < b.order
}

// Plan selects up to cfg.Trucks moves, one per truck, never reusing a
// station. An empty candidate set yields no_plan/no_candidates.
func (o *Optimizer) Plan(in Input) model.RebalancingPlan {
	at := in.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	id := o.newID()

	cls := Classify(in.States, o.cfg)
	cands := o.feasible(BuildCandidates(cls.Donors, cls.Receivers, o.cfg.Quantity), cls)
	if !HasFeasiblePlan(len(cands)) {
		return model.NoPlan(id, model.ReasonNoCandidates, at)
	}

	travel := func(c model.CandidateMove) (float64, int) {
		d := o.distance(in.Stations, c.DonorStationID, c.ReceiverStationID)
		return d, TravelTimeBins(d, o.cfg.SpeedKMH, o.cfg.BinMinutes) * o.cfg.BinMinutes
	}
	scorer := o.scorer
	if cs, ok := scorer.(ContextScorer); ok {
		minutes := func(c model.CandidateMove) int {
			_, m := travel(c)
			return m
		}
		scorer = cs.WithContext(ScoreContext{Risk: in.Risk, TravelMinutes: minutes})
	}

	scored := ScoreCandidates(cands, scorer)
	opts := make([]option, len(scored))
	for i, sc := range scored {
		dist, minutes := travel(sc.CandidateMove)
		opts[i] = option{
			move: model.PlannedMove{
				CandidateMove:  sc.CandidateMove,
				DistanceMeters: dist,
				TravelMinutes:  minutes,
				Score:          sc.Score,
			},
			tie:   TieBreakerScore{Moves: 1, TravelMinutes: minutes, Quantity: sc.Quantity},
			order: i,
		}
	}
	sort.SliceStable(opts, func(i, j int) bool { return opts[i].better(opts[j]) })

	used := map[string]bool{}
	moves := make([]model.PlannedMove, 0, o.cfg.Trucks)
	for _, op := range opts {
		if len(moves) == o.cfg.Trucks {
			break
		}
		if used[op.move.DonorStationID] || used[op.move.ReceiverStationID] {
			continue
		}
		used[op.move.DonorStationID] = true
		used[op.move.ReceiverStationID] = true
		m := op.move
		m.Truck = len(moves) + 1
		moves = append(moves, m)
	}
	return model.RebalancingPlan{ID: id, Status: model.StatusPlan, Moves: moves, CreatedAt: at}
}

// feasible trims each candidate to what donor, receiver and truck allow and
// drops the ones left with nothing to move.
func (o *Optimizer) feasible(cands []model.CandidateMove, cls Classification) []model.CandidateMove {
	out := cands[:0]
	for _, c := range cands {
		q := min(c.Quantity, cls.Surplus[c.DonorStationID], cls.Need[c.ReceiverStationID], o.cfg.Capacity)
		if q <= 0 || !IsWithinCapacity(q, o.cfg.Capacity) {
			continue
		}
		c.Quantity = q
		out = append(out, c)
	}
	return out
}

func (o *Optimizer) distance(stations map[string]model.StationInfo, from, to string) float64 {
	a, okA := stations[from]
	b, okB := stations[to]
	if !okA || !okB || a.Lat == nil || a.Lon == nil || b.Lat == nil || b.Lon == nil {
		return 0
	}
	return ProjectedDistanceMeters(*a.Lon, *a.Lat, *b.Lon, *b.Lat)
}
