package usecase

import (
	"context"
	"errors"
	"math"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tyche/pkg/domain/interfaces"
	"github.com/secmon-lab/tyche/pkg/domain/model"
	"github.com/secmon-lab/tyche/pkg/domain/types"
	"github.com/secmon-lab/tyche/pkg/service/stats"
	"github.com/secmon-lab/tyche/pkg/utils/logging"
)

type factorIndex map[types.FactorID]*model.RiskFactor

func indexFactors(factors []*model.RiskFactor) factorIndex {
	idx := make(factorIndex, len(factors))
	for _, f := range factors {
		idx[f.ID] = f
	}
	return idx
}

// rawScore is Σ weight·value. Missing factors contribute 0 and produce a warning.
func rawScore(m *model.RiskModel, factors factorIndex) (float64, []model.DataQualityWarning) {
	var raw float64
	var warnings []model.DataQualityWarning
	for _, id := range m.FactorIDs() {
		f, ok := factors[id]
		if !ok {
			warnings = append(warnings, model.DataQualityWarning{
				ModelID:  m.ID,
				FactorID: id,
				Message:  "referenced factor does not exist",
			})
			continue
		}
		raw += m.Weights[id] * f.Value
	}
	return model.Finite(raw), warnings
}

// weightedVolatility averages the volatility of the present factors by weight
func weightedVolatility(m *model.RiskModel, factors factorIndex) float64 {
	var sum, weights float64
	for id, w := range m.Weights {
		if f, ok := factors[id]; ok {
			sum += w * f.Volatility
			weights += w
		}
	}
	if weights == 0 {
		return 0
	}
	return sum / weights
}

type scorer struct {
	cfg ScoringConfig
}

// adjust applies the methodology of m to raw
func (s *scorer) adjust(m *model.RiskModel, raw float64, factors factorIndex, src interfaces.RandomSource) float64 {
	switch m.Methodology {
	case types.MethodologyFAIR:
		var a float64
		if s.cfg.Noise {
			a = stats.Uniform(src, -s.cfg.FAIRBound, s.cfg.FAIRBound)
		} else {
			a = s.cfg.FAIRBound * (1 - 2*m.Confidence)
			a = math.Max(-s.cfg.FAIRBound, math.Min(s.cfg.FAIRBound, a))
		}
		return raw * (1 + a)

	case types.MethodologyMonteCarlo:
		return raw * stats.MeanLogNormal(src, s.cfg.MonteCarloSigma, s.cfg.MonteCarloSamples)

	case types.MethodologyVaR:
		confidence := m.Confidence
		if confidence <= 0 {
			confidence = s.cfg.VaRConfidence
		}
		vol := weightedVolatility(m, factors)
		return raw * (1 + vol*math.Sqrt(s.cfg.VaRHorizonDays/365)*stats.ZScore(confidence))

	case types.MethodologyRCSA:
		return raw * s.cfg.RCSAFactor

	case types.MethodologyTiered:
		var multiplier float64
		if s.cfg.Noise {
			multiplier = stats.Uniform(src, s.cfg.TieredMin, s.cfg.TieredMax)
		} else {
			multiplier = s.cfg.TieredMin + (s.cfg.TieredMax-s.cfg.TieredMin)*model.Clamp01(raw)
		}
		return raw * multiplier

	case types.MethodologyScenario:
		var total float64
		for _, sc := range m.Scenarios {
			total += sc.Probability * raw * sc.ImpactMultiplier
		}
		return total

	default:
		return raw
	}
}

// score computes the adjusted score of m against factors
func (s *scorer) score(m *model.RiskModel, factors factorIndex, src interfaces.RandomSource) model.ScoreResult {
	raw, warnings := rawScore(m, factors)
	return model.ScoreResult{
		ModelID:  m.ID,
		Raw:      raw,
		Score:    model.Clamp01(model.Finite(s.adjust(m, raw, factors, src))),
		Warnings: warnings,
	}
}

// scoreAll scores every model against the current factors and returns results in model order
func (e *Engine) scoreAll(ctx context.Context, src interfaces.RandomSource) ([]*model.RiskModel, []model.ScoreResult, error) {
	factors, err := e.repo.Factor().List(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to list factors")
	}
	models, err := e.repo.RiskModel().List(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to list risk models")
	}

	s := &scorer{cfg: e.cfg.Scoring}
	idx := indexFactors(factors)
	results := make([]model.ScoreResult, len(models))
	for i, m := range models {
		results[i] = s.score(m, idx, src)
	}
	return models, results, nil
}

// overallOf is the mean of the given scores
func overallOf(results []model.ScoreResult) float64 {
	scores := make([]float64, len(results))
	for i, r := range results {
		scores[i] = r.Score
	}
	return model.Clamp01(stats.Mean(scores))
}

// ComputeScore scores a single model against the current factors without committing
func (e *Engine) ComputeScore(ctx context.Context, id types.ModelID) (*model.ScoreResult, error) {
	e.viewMu.RLock()
	defer e.viewMu.RUnlock()

	m, err := e.repo.RiskModel().Get(ctx, id)
	if err != nil {
		return nil, e.modelLookupError(err, id)
	}
	factors, err := e.repo.Factor().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list factors")
	}

	s := &scorer{cfg: e.cfg.Scoring}
	result := s.score(m, indexFactors(factors), e.sampling)
	return &result, nil
}

// RawScore returns the weighted sum of m before the methodology adjustment
func (e *Engine) RawScore(ctx context.Context, id types.ModelID) (float64, error) {
	e.viewMu.RLock()
	defer e.viewMu.RUnlock()

	m, err := e.repo.RiskModel().Get(ctx, id)
	if err != nil {
		return 0, e.modelLookupError(err, id)
	}
	factors, err := e.repo.Factor().List(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to list factors")
	}

	raw, _ := rawScore(m, indexFactors(factors))
	return raw, nil
}

// ComputeAll recomputes every model and commits all scores in one step.
// It waits for an in-flight cycle or perturbation analysis to finish first.
func (e *Engine) ComputeAll(ctx context.Context) ([]model.ScoreResult, error) {
	e.cycleMu.Lock()
	defer e.cycleMu.Unlock()
	return e.computeAll(ctx)
}

func (e *Engine) computeAll(ctx context.Context) ([]model.ScoreResult, error) {
	_, results, err := e.scoreAll(ctx, e.sampling)
	if err != nil {
		return nil, err
	}

	now := e.now()
	updates := make([]model.ScoreUpdate, len(results))
	for i, r := range results {
		updates[i] = model.ScoreUpdate{ModelID: r.ModelID, Score: r.Score, Calculated: now}
		for _, w := range r.Warnings {
			logging.From(ctx).Warn("Data quality warning",
				"model_id", w.ModelID,
				"factor_id", w.FactorID,
				"message", w.Message)
		}
	}

	e.viewMu.Lock()
	defer e.viewMu.Unlock()
	if err := e.repo.RiskModel().CommitScores(ctx, updates); err != nil {
		return nil, goerr.Wrap(err, "failed to commit scores")
	}
	return results, nil
}

func (e *Engine) scoreStage(ctx context.Context, report *model.CycleReport) error {
	results, err := e.computeAll(ctx)
	if err != nil {
		return err
	}
	for _, r := range results {
		report.Warnings = append(report.Warnings, r.Warnings...)
	}

	models, err := e.repo.RiskModel().List(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to list risk models")
	}
	e.publish(ctx, types.EventScoresUpdated, report.CycleID, models)
	return nil
}

func (e *Engine) modelLookupError(err error, id types.ModelID) error {
	if errors.Is(err, interfaces.ErrNotFound) {
		return goerr.Wrap(ErrModelNotFound, "risk model not found", goerr.V(ModelIDKey, id))
	}
	return goerr.Wrap(err, "failed to get risk model", goerr.V(ModelIDKey, id))
}
