package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tyche/pkg/domain/model"
	"github.com/secmon-lab/tyche/pkg/domain/types"
)

type factorRepository struct {
	mu      sync.RWMutex
	factors map[types.FactorID]*model.RiskFactor
}

func newFactorRepository() *factorRepository {
	return &factorRepository{
		factors: make(map[types.FactorID]*model.RiskFactor),
	}
}

func (r *factorRepository) Put(ctx context.Context, factor *model.RiskFactor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := factor.Clone()
	if stored.History == nil {
		stored.History = model.NewHistory(model.DefaultHistoryCapacity)
	}
	r.factors[factor.ID] = stored
	return nil
}

func (r *factorRepository) Get(ctx context.Context, id types.FactorID) (*model.RiskFactor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factor, exists := r.factors[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "factor not found", goerr.V("factor_id", id))
	}

	// Return a copy to prevent external modification
	return factor.Clone(), nil
}

func (r *factorRepository) List(ctx context.Context) ([]*model.RiskFactor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factors := make([]*model.RiskFactor, 0, len(r.factors))
	for _, factor := range r.factors {
		factors = append(factors, factor.Clone())
	}
	sort.Slice(factors, func(i, j int) bool { return factors[i].ID < factors[j].ID })

	return factors, nil
}

func (r *factorRepository) SetValue(ctx context.Context, id types.FactorID, value float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	factor, exists := r.factors[id]
	if !exists {
		return goerr.Wrap(ErrNotFound, "factor not found", goerr.V("factor_id", id))
	}
	factor.Value = value
	return nil
}

func (r *factorRepository) Snapshot(ctx context.Context, ids []types.FactorID) (model.FactorSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make(model.FactorSnapshot, len(ids))
	for _, id := range ids {
		if factor, exists := r.factors[id]; exists {
			snapshot[id] = factor.Value
		}
	}
	return snapshot, nil
}

func (r *factorRepository) Restore(ctx context.Context, snapshot model.FactorSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Verify every ID first so a restore never leaves values half written
	for id := range snapshot {
		if _, exists := r.factors[id]; !exists {
			return goerr.Wrap(ErrNotFound, "cannot restore unknown factor", goerr.V("factor_id", id))
		}
	}
	for id, value := range snapshot {
		r.factors[id].Value = value
	}
	return nil
}

func (r *factorRepository) SetCorrelations(ctx context.Context, correlations map[types.FactorID]map[types.FactorID]float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, factor := range r.factors {
		next := make(map[types.FactorID]float64, len(correlations[id]))
		for other, coefficient := range correlations[id] {
			next[other] = coefficient
		}
		factor.Correlations = next
	}
	return nil
}
