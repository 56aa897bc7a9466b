package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tyche/pkg/domain/model"
	"github.com/secmon-lab/tyche/pkg/domain/types"
)

type predictorRepository struct {
	mu         sync.RWMutex
	predictors map[types.PredictorID]*model.PredictiveModel
}

func newPredictorRepository() *predictorRepository {
	return &predictorRepository{
		predictors: make(map[types.PredictorID]*model.PredictiveModel),
	}
}

func (r *predictorRepository) Put(ctx context.Context, m *model.PredictiveModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.predictors[m.ID] = m.Clone()
	return nil
}

func (r *predictorRepository) Get(ctx context.Context, id types.PredictorID) (*model.PredictiveModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, exists := r.predictors[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "predictive model not found", goerr.V("predictor_id", id))
	}
	return m.Clone(), nil
}

func (r *predictorRepository) List(ctx context.Context) ([]*model.PredictiveModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	predictors := make([]*model.PredictiveModel, 0, len(r.predictors))
	for _, m := range r.predictors {
		predictors = append(predictors, m.Clone())
	}
	sort.Slice(predictors, func(i, j int) bool { return predictors[i].ID < predictors[j].ID })

	return predictors, nil
}

func (r *predictorRepository) Record(ctx context.Context, p model.Prediction, limit int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, exists := r.predictors[p.ModelID]
	if !exists {
		return goerr.Wrap(ErrNotFound, "predictive model not found", goerr.V("predictor_id", p.ModelID))
	}
	m.Record(p, limit)
	return nil
}
