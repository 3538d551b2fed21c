package app

import (
	"context"
	"time"

	"github.com/kilianp07/dockflow/core/model"
	"github.com/kilianp07/dockflow/core/simulator"
	"github.com/kilianp07/dockflow/core/store"
)

// apiBackend serves the planning API from a Planner.
type apiBackend struct {
	p *Planner
}

func (b apiBackend) State(ctx context.Context) ([]model.BinRecord, error) {
	return store.FetchLatestState(ctx, b.p.runner)
}

func (b apiBackend) Risk(ctx context.Context) (map[string]model.RiskAssessment, error) {
	data, err := b.p.Load(ctx)
	if err != nil {
		return nil, err
	}
	return data.Risk, nil
}

func (b apiBackend) Optimize(ctx context.Context, commit bool) (model.RebalancingPlan, *simulator.Evaluation, error) {
	var (
		out Outcome
		err error
	)
	if commit {
		out, err = b.p.Cycle(ctx)
	} else {
		out, err = b.p.Propose(ctx)
	}
	if err != nil {
		return model.RebalancingPlan{}, nil, err
	}
	return out.Plan, out.Evaluation, nil
}

func (b apiBackend) Simulate(ctx context.Context, plan model.RebalancingPlan) (simulator.Evaluation, error) {
	data, err := b.p.Load(ctx)
	if err != nil {
		return simulator.Evaluation{}, err
	}
	return b.p.Evaluate(data, plan), nil
}

func (b apiBackend) Replay(ctx context.Context, start, end time.Time) ([]model.BinRecord, error) {
	return store.FetchReplayBins(ctx, b.p.runner, start, end)
}
