package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tyche/pkg/domain/interfaces"
	"github.com/secmon-lab/tyche/pkg/domain/model"
	"github.com/secmon-lab/tyche/pkg/domain/types"
)

// RiskOverview returns all models with the latest executive snapshot
func (e *Engine) RiskOverview(ctx context.Context) (*model.RiskOverview, error) {
	e.viewMu.RLock()
	defer e.viewMu.RUnlock()

	models, err := e.repo.RiskModel().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risk models")
	}

	overview := &model.RiskOverview{
		OverallScore: overallScore(models),
		Models:       models,
		Executive:    e.executive.Clone(),
	}
	if e.executive != nil {
		overview.BusinessImpact = e.executive.BusinessImpact
	}
	return overview, nil
}

// RiskFactors returns every factor ordered by ID
func (e *Engine) RiskFactors(ctx context.Context) ([]*model.RiskFactor, error) {
	e.viewMu.RLock()
	defer e.viewMu.RUnlock()

	factors, err := e.repo.Factor().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list factors")
	}
	return factors, nil
}

// RiskFactor returns a single factor
func (e *Engine) RiskFactor(ctx context.Context, id types.FactorID) (*model.RiskFactor, error) {
	e.viewMu.RLock()
	defer e.viewMu.RUnlock()

	f, err := e.repo.Factor().Get(ctx, id)
	if err != nil {
		return nil, e.factorLookupError(err, id)
	}
	return f, nil
}

// FactorHistory returns up to n most recent observations of a factor, oldest first
func (e *Engine) FactorHistory(ctx context.Context, id types.FactorID, n int) ([]model.HistoryPoint, error) {
	f, err := e.RiskFactor(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.History == nil {
		return []model.HistoryPoint{}, nil
	}
	if n <= 0 {
		return f.History.Points(), nil
	}
	return f.History.Last(n), nil
}

// RiskModel returns a single model
func (e *Engine) RiskModel(ctx context.Context, id types.ModelID) (*model.RiskModel, error) {
	e.viewMu.RLock()
	defer e.viewMu.RUnlock()

	m, err := e.repo.RiskModel().Get(ctx, id)
	if err != nil {
		return nil, e.modelLookupError(err, id)
	}
	return m, nil
}

// RiskModels returns every model ordered by ID
func (e *Engine) RiskModels(ctx context.Context) ([]*model.RiskModel, error) {
	e.viewMu.RLock()
	defer e.viewMu.RUnlock()

	models, err := e.repo.RiskModel().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risk models")
	}
	return models, nil
}

// TopRisks returns the n highest scoring models; ties are broken by model ID
func (e *Engine) TopRisks(ctx context.Context, n int) ([]model.RankedRisk, error) {
	models, err := e.RiskModels(ctx)
	if err != nil {
		return nil, err
	}
	return rankRisks(models, n), nil
}

// PredictiveAnalysis returns predictive models with their rolling predictions and the
// latest quantitative analysis
func (e *Engine) PredictiveAnalysis(ctx context.Context) (*model.PredictiveAnalysis, error) {
	e.viewMu.RLock()
	defer e.viewMu.RUnlock()

	predictors, err := e.repo.Predictor().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list predictive models")
	}
	return &model.PredictiveAnalysis{
		Models:       predictors,
		Quantitative: e.quantitative.Clone(),
	}, nil
}

// Predictor returns a single predictive model
func (e *Engine) Predictor(ctx context.Context, id types.PredictorID) (*model.PredictiveModel, error) {
	e.viewMu.RLock()
	defer e.viewMu.RUnlock()

	p, err := e.repo.Predictor().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrPredictorNotFound, "predictive model not found", goerr.V(PredictorIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get predictive model", goerr.V(PredictorIDKey, id))
	}
	return p, nil
}

// BusinessAssets returns every asset with its current risk level and cost breakdown
func (e *Engine) BusinessAssets(ctx context.Context) ([]*model.BusinessAsset, error) {
	e.viewMu.RLock()
	defer e.viewMu.RUnlock()

	assets, err := e.repo.Asset().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list assets")
	}
	return assets, nil
}

// TotalBusinessImpact aggregates value and potential loss over all assets
func (e *Engine) TotalBusinessImpact(ctx context.Context) (model.BusinessImpact, error) {
	assets, err := e.BusinessAssets(ctx)
	if err != nil {
		return model.BusinessImpact{}, err
	}
	return totalBusinessImpact(assets), nil
}

// CorrelationAnalysis returns the latest factor correlations ordered by strength
func (e *Engine) CorrelationAnalysis(ctx context.Context) []model.Correlation {
	e.viewMu.RLock()
	defer e.viewMu.RUnlock()

	return append([]model.Correlation{}, e.correlations...)
}

// ExecutiveMetrics returns the latest executive snapshot, nil before the first cycle
func (e *Engine) ExecutiveMetrics(ctx context.Context) *model.ExecutiveMetrics {
	e.viewMu.RLock()
	defer e.viewMu.RUnlock()

	return e.executive.Clone()
}

// QuantitativeAnalysis returns the latest quantitative snapshot, nil before the first cycle
func (e *Engine) QuantitativeAnalysis(ctx context.Context) *model.QuantitativeAnalysis {
	e.viewMu.RLock()
	defer e.viewMu.RUnlock()

	return e.quantitative.Clone()
}

// LastReport returns the report of the most recent cycle, nil before the first cycle
func (e *Engine) LastReport() *model.CycleReport {
	e.viewMu.RLock()
	defer e.viewMu.RUnlock()

	return e.lastReport
}
