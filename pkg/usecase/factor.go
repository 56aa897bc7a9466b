package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tyche/pkg/domain/interfaces"
	"github.com/secmon-lab/tyche/pkg/domain/model"
	"github.com/secmon-lab/tyche/pkg/domain/types"
	"github.com/secmon-lab/tyche/pkg/utils/logging"
)

const (
	// factorStep scales volatility into the per-update random step
	factorStep = 0.1
	// factorDrift is the per-update bias of a trending factor
	factorDrift = 0.005
)

func drift(trend types.Trend) float64 {
	switch trend {
	case types.TrendIncreasing:
		return factorDrift
	case types.TrendDecreasing, types.TrendImproving:
		return -factorDrift
	default:
		return 0
	}
}

// evolve moves f one step along its trend and records the new value in its history
func evolve(f *model.RiskFactor, src interfaces.RandomSource, e *Engine) {
	delta := (src.Float64()-0.5)*f.Volatility*factorStep + drift(f.Trend)
	now := e.now()

	f.Value = model.Clamp01(f.Value + delta)
	if f.History == nil {
		f.History = model.NewHistory(e.cfg.HistoryCapacity)
	}
	f.History.Append(model.HistoryPoint{Timestamp: now, Value: f.Value})
	f.UpdatedAt = now
}

// UpdateFactor evolves a single factor and commits it.
// It waits for an in-flight cycle or perturbation analysis to finish first.
func (e *Engine) UpdateFactor(ctx context.Context, id types.FactorID) (*model.RiskFactor, error) {
	e.cycleMu.Lock()
	defer e.cycleMu.Unlock()
	return e.updateFactor(ctx, id)
}

func (e *Engine) updateFactor(ctx context.Context, id types.FactorID) (*model.RiskFactor, error) {
	f, err := e.repo.Factor().Get(ctx, id)
	if err != nil {
		return nil, e.factorLookupError(err, id)
	}

	evolve(f, e.evolution, e)

	e.viewMu.Lock()
	defer e.viewMu.Unlock()
	if err := e.repo.Factor().Put(ctx, f); err != nil {
		return nil, goerr.Wrap(err, "failed to store factor", goerr.V(FactorIDKey, id))
	}
	return f.Clone(), nil
}

// UpdateFactors evolves the given factors, or every factor when ids is empty.
// Unknown IDs are reported individually and do not stop the others.
func (e *Engine) UpdateFactors(ctx context.Context, ids ...types.FactorID) ([]*model.RiskFactor, map[types.FactorID]error, error) {
	e.cycleMu.Lock()
	defer e.cycleMu.Unlock()
	return e.updateFactors(ctx, ids...)
}

// updateFactors requires cycleMu
func (e *Engine) updateFactors(ctx context.Context, ids ...types.FactorID) ([]*model.RiskFactor, map[types.FactorID]error, error) {
	all, err := e.repo.Factor().List(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to list factors")
	}

	targets := all
	failures := map[types.FactorID]error{}
	if len(ids) > 0 {
		byID := make(map[types.FactorID]*model.RiskFactor, len(all))
		for _, f := range all {
			byID[f.ID] = f
		}
		targets = make([]*model.RiskFactor, 0, len(ids))
		for _, id := range ids {
			f, ok := byID[id]
			if !ok {
				failures[id] = goerr.Wrap(ErrFactorNotFound, "cannot update factor", goerr.V(FactorIDKey, id))
				logging.From(ctx).Warn("Skipping unknown factor", "factor_id", id)
				continue
			}
			targets = append(targets, f)
		}
	}

	for _, f := range targets {
		evolve(f, e.evolution, e)
	}

	e.viewMu.Lock()
	defer e.viewMu.Unlock()
	for _, f := range targets {
		if err := e.repo.Factor().Put(ctx, f); err != nil {
			return nil, failures, goerr.Wrap(err, "failed to store factor", goerr.V(FactorIDKey, f.ID))
		}
	}

	updated := make([]*model.RiskFactor, len(targets))
	for i, f := range targets {
		updated[i] = f.Clone()
	}
	return updated, failures, nil
}

func (e *Engine) factorStage(ctx context.Context, report *model.CycleReport) error {
	updated, _, err := e.updateFactors(ctx)
	if err != nil {
		return err
	}
	e.publish(ctx, types.EventFactorsUpdated, report.CycleID, updated)
	return nil
}

func (e *Engine) factorLookupError(err error, id types.FactorID) error {
	if errors.Is(err, interfaces.ErrNotFound) {
		return goerr.Wrap(ErrFactorNotFound, "risk factor not found", goerr.V(FactorIDKey, id))
	}
	return goerr.Wrap(err, "failed to get factor", goerr.V(FactorIDKey, id))
}
