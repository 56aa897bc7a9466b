package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tyche/pkg/domain/model"
	"github.com/secmon-lab/tyche/pkg/domain/types"
)

type riskModelRepository struct {
	mu     sync.RWMutex
	models map[types.ModelID]*model.RiskModel
}

func newRiskModelRepository() *riskModelRepository {
	return &riskModelRepository{
		models: make(map[types.ModelID]*model.RiskModel),
	}
}

func (r *riskModelRepository) Put(ctx context.Context, m *model.RiskModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.models[m.ID] = m.Clone()
	return nil
}

func (r *riskModelRepository) Get(ctx context.Context, id types.ModelID) (*model.RiskModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, exists := r.models[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "risk model not found", goerr.V("model_id", id))
	}
	return m.Clone(), nil
}

func (r *riskModelRepository) List(ctx context.Context) ([]*model.RiskModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	models := make([]*model.RiskModel, 0, len(r.models))
	for _, m := range r.models {
		models = append(models, m.Clone())
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })

	return models, nil
}

func (r *riskModelRepository) CommitScores(ctx context.Context, updates []model.ScoreUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range updates {
		if _, exists := r.models[u.ModelID]; !exists {
			return goerr.Wrap(ErrNotFound, "risk model not found", goerr.V("model_id", u.ModelID))
		}
	}

	for _, u := range updates {
		m := r.models[u.ModelID]
		m.PreviousScore = m.CurrentScore
		m.CurrentScore = u.Score
		if m.LastCalculation.IsZero() {
			m.Trend = types.TrendStable
		} else {
			m.Trend = types.TrendOf(m.PreviousScore, m.CurrentScore)
		}
		m.LastCalculation = u.Calculated
	}
	return nil
}
