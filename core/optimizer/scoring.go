package optimizer

import (
	"fmt"

	"github.com/kilianp07/dockflow/core/factory"
	"github.com/kilianp07/dockflow/core/model"
)

// Scorer attaches a cost to a candidate. Lower is better.
type Scorer interface {
	Score(model.CandidateMove) float64
}

// ScoreContext is the per-cycle data a scorer may consult.
type ScoreContext struct {
	Risk          map[string]model.RiskAssessment
	TravelMinutes func(model.CandidateMove) int
}

// ContextScorer is implemented by scorers that need the planning cycle data.
type ContextScorer interface {
	Scorer
	WithContext(ScoreContext) Scorer
}

// ZeroScorer costs every candidate the same, leaving selection to the
// tie-break.
type ZeroScorer struct{}

func (ZeroScorer) Score(model.CandidateMove) float64 { return 0 }

// RiskScorer favours moves that relieve urgent stations and penalises
// travel. Both stations' risk lower the cost.
type RiskScorer struct {
	RiskWeight   float64 `json:"risk_weight"`
	TravelWeight float64 `json:"travel_weight"`

	ctx ScoreContext
}

func (s RiskScorer) Score(c model.CandidateMove) float64 {
	var cost float64
	if s.ctx.TravelMinutes != nil {
		cost += s.TravelWeight * float64(s.ctx.TravelMinutes(c))
	}
	urgency := s.ctx.Risk[c.ReceiverStationID].Risk + s.ctx.Risk[c.DonorStationID].Risk
	return cost - s.RiskWeight*urgency*float64(c.Quantity)
}

// WithContext returns a copy bound to the cycle data.
func (s RiskScorer) WithContext(ctx ScoreContext) Scorer {
	s.ctx = ctx
	return s
}

// ScoredCandidate is a candidate with its cost.
type ScoredCandidate struct {
	model.CandidateMove
	Score float64
}

// ScoreCandidates scores each candidate, preserving order.
func ScoreCandidates(cands []model.CandidateMove, scorer Scorer) []ScoredCandidate {
	if scorer == nil {
		scorer = ZeroScorer{}
	}
	out := make([]ScoredCandidate, len(cands))
	for i, c := range cands {
		out[i] = ScoredCandidate{CandidateMove: c, Score: scorer.Score(c)}
	}
	return out
}

// NewScorerRegistry returns a registry with the built-in scorers.
func NewScorerRegistry() *factory.Registry[Scorer] {
	reg := factory.NewRegistry[Scorer]()
	_ = reg.Register("zero", func(map[string]any) (Scorer, error) {
		return ZeroScorer{}, nil
	})
	_ = reg.Register("risk", func(conf map[string]any) (Scorer, error) {
		s := RiskScorer{RiskWeight: 10, TravelWeight: 1}
		if err := factory.Decode(conf, &s); err != nil {
			return nil, fmt.Errorf("risk scorer: %w", err)
		}
		return s, nil
	})
	return reg
}
