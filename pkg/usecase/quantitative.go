package usecase

import (
	"context"
	"math"
	"sort"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tyche/pkg/domain/model"
	"github.com/secmon-lab/tyche/pkg/domain/types"
	"github.com/secmon-lab/tyche/pkg/service/stats"
	"github.com/secmon-lab/tyche/pkg/utils/logging"
)

// intervalZ maps confidence interval levels to their two-sided z multipliers
var intervalZ = []struct {
	level float64
	z     float64
}{
	{0.95, 1.96},
	{0.99, 2.58},
}

// ConfidenceKey formats a confidence level the way VaR results are keyed
func ConfidenceKey(c float64) string {
	return strconv.FormatFloat(c, 'f', -1, 64)
}

// withPerturbation runs fn with exclusive access to committed state. Values of the
// given factors are captured first and written back on every exit path, including
// panics, which are converted to ErrPerturbationPanic.
func (e *Engine) withPerturbation(ctx context.Context, ids []types.FactorID, fn func(ctx context.Context) error) (err error) {
	e.viewMu.Lock()
	defer e.viewMu.Unlock()

	snapshot, err := e.repo.Factor().Snapshot(ctx, ids)
	if err != nil {
		return goerr.Wrap(err, "failed to snapshot factors")
	}

	defer func() {
		if r := recover(); r != nil {
			logging.From(ctx).Error("Perturbation panicked, restoring factors", "panic", r)
			err = goerr.Wrap(ErrPerturbationPanic, "perturbation aborted", goerr.V("panic", r))
		}
		if restoreErr := e.restore(ctx, snapshot); restoreErr != nil {
			err = restoreErr
		}
	}()

	return fn(ctx)
}

// restore writes snapshot back and verifies every value is bit-identical
func (e *Engine) restore(ctx context.Context, snapshot model.FactorSnapshot) error {
	if err := e.repo.Factor().Restore(ctx, snapshot); err != nil {
		return goerr.Wrap(ErrRestorationFailure, "failed to write back factor values", goerr.V("cause", err.Error()))
	}

	ids := make([]types.FactorID, 0, len(snapshot))
	for id := range snapshot {
		ids = append(ids, id)
	}
	after, err := e.repo.Factor().Snapshot(ctx, ids)
	if err != nil {
		return goerr.Wrap(ErrRestorationFailure, "failed to verify factor values", goerr.V("cause", err.Error()))
	}
	for id, want := range snapshot {
		got, ok := after[id]
		if !ok || math.Float64bits(got) != math.Float64bits(want) {
			return goerr.Wrap(ErrRestorationFailure, "factor value differs after restore",
				goerr.V(FactorIDKey, id), goerr.V("want", want), goerr.V("got", got))
		}
	}
	return nil
}

// override forces factor values inside a perturbation scope
func (e *Engine) override(ctx context.Context, values map[types.FactorID]float64) error {
	ids := make([]types.FactorID, 0, len(values))
	for id := range values {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		if err := e.repo.Factor().SetValue(ctx, id, values[id]); err != nil {
			return goerr.Wrap(err, "failed to override factor", goerr.V(FactorIDKey, id))
		}
	}
	if e.afterOverride != nil {
		e.afterOverride()
	}
	return nil
}

// evaluate scores every model with a fresh perturbation source
func (e *Engine) evaluate(ctx context.Context) ([]*model.RiskModel, []model.ScoreResult, error) {
	return e.scoreAll(ctx, e.perturbSource())
}

func (e *Engine) sensitivity(ctx context.Context) ([]model.SensitivityResult, error) {
	factors, err := e.repo.Factor().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list factors")
	}

	results := make([]model.SensitivityResult, 0, len(factors))
	for _, f := range factors {
		var result model.SensitivityResult
		err := e.withPerturbation(ctx, []types.FactorID{f.ID}, func(ctx context.Context) error {
			current, err := e.repo.Factor().Get(ctx, f.ID)
			if err != nil {
				return goerr.Wrap(err, "failed to get factor")
			}

			_, baseline, err := e.evaluate(ctx)
			if err != nil {
				return err
			}

			perturbed := model.Clamp01(current.Value * (1 + e.cfg.SensitivityShift))
			if err := e.override(ctx, map[types.FactorID]float64{f.ID: perturbed}); err != nil {
				return err
			}

			_, shifted, err := e.evaluate(ctx)
			if err != nil {
				return err
			}

			baseScore, shiftedScore := overallOf(baseline), overallOf(shifted)
			var delta float64
			if baseScore != 0 {
				delta = model.Finite((shiftedScore - baseScore) / baseScore)
			}
			result = model.SensitivityResult{
				FactorID:       f.ID,
				BaselineValue:  current.Value,
				PerturbedValue: perturbed,
				BaselineScore:  baseScore,
				PerturbedScore: shiftedScore,
				Delta:          delta,
			}
			return nil
		})
		if err != nil {
			return nil, goerr.Wrap(err, "sensitivity analysis failed", goerr.V(FactorIDKey, f.ID))
		}
		results = append(results, result)
	}

	sort.SliceStable(results, func(i, j int) bool {
		di, dj := math.Abs(results[i].Delta), math.Abs(results[j].Delta)
		if di != dj {
			return di > dj
		}
		return results[i].FactorID < results[j].FactorID
	})
	return results, nil
}

func (e *Engine) stress(ctx context.Context, scenario model.StressScenario) (*model.StressResult, error) {
	factors, err := e.repo.Factor().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list factors")
	}
	ids := make([]types.FactorID, len(factors))
	known := make(map[types.FactorID]bool, len(factors))
	for i, f := range factors {
		ids[i] = f.ID
		known[f.ID] = true
	}

	result := &model.StressResult{Name: scenario.Name}
	overrides := make(map[types.FactorID]float64, len(scenario.Overrides))
	for id, v := range scenario.Overrides {
		if !known[id] {
			result.Skipped = append(result.Skipped, id.String())
			continue
		}
		overrides[id] = model.Clamp01(v)
	}
	sort.Strings(result.Skipped)
	if len(result.Skipped) > 0 {
		logging.From(ctx).Warn("Stress scenario references unknown factors",
			"scenario", scenario.Name, "factors", result.Skipped)
	}

	err = e.withPerturbation(ctx, ids, func(ctx context.Context) error {
		_, baseline, err := e.evaluate(ctx)
		if err != nil {
			return err
		}
		if err := e.override(ctx, overrides); err != nil {
			return err
		}
		_, stressed, err := e.evaluate(ctx)
		if err != nil {
			return err
		}

		result.BaselineScore = overallOf(baseline)
		result.StressedScore = overallOf(stressed)
		result.Delta = result.StressedScore - result.BaselineScore

		impacts := make([]model.ModelImpact, len(baseline))
		for i := range baseline {
			impacts[i] = model.ModelImpact{
				ModelID:       baseline[i].ModelID,
				BaselineScore: baseline[i].Score,
				StressedScore: stressed[i].Score,
				Delta:         stressed[i].Score - baseline[i].Score,
			}
		}
		sort.SliceStable(impacts, func(i, j int) bool {
			if impacts[i].Delta != impacts[j].Delta {
				return impacts[i].Delta > impacts[j].Delta
			}
			return impacts[i].ModelID < impacts[j].ModelID
		})
		if len(impacts) > e.cfg.StressTopN {
			impacts = impacts[:e.cfg.StressTopN]
		}
		result.TopImpacted = impacts
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "stress test failed", goerr.V(ScenarioKey, scenario.Name))
	}
	return result, nil
}

// losses derives expected and unexpected loss from per-model loss contributions
func losses(models []*model.RiskModel) (expected, variance, unexpected float64, clamped bool) {
	contributions := make([]float64, len(models))
	for i, m := range models {
		contributions[i] = m.CurrentScore * m.ImpactWeight
	}
	expected = stats.Sum(contributions)
	variance = stats.PopVariance(contributions)

	radicand := variance - expected*expected
	if radicand < 0 {
		radicand, clamped = 0, true
	}
	return expected, variance, math.Sqrt(radicand), clamped
}

// portfolioVolatility is the configured volatility, or the mean factor volatility when unset
func (e *Engine) portfolioVolatility(factors []*model.RiskFactor) float64 {
	if e.cfg.PortfolioVolatility > 0 {
		return e.cfg.PortfolioVolatility
	}
	vols := make([]float64, len(factors))
	for i, f := range factors {
		vols[i] = f.Volatility
	}
	return stats.Mean(vols)
}

// analyze computes the full quantitative analysis from committed state
func (e *Engine) analyze(ctx context.Context) (*model.QuantitativeAnalysis, error) {
	factors, err := e.repo.Factor().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list factors")
	}
	models, err := e.repo.RiskModel().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risk models")
	}
	assets, err := e.repo.Asset().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list assets")
	}

	analysis := &model.QuantitativeAnalysis{
		VaR:          make(map[string]float64, len(e.cfg.VaRConfidences)),
		CalculatedAt: e.now(),
	}
	for _, a := range assets {
		analysis.TotalAssetValue += a.Value
	}
	analysis.Volatility = e.portfolioVolatility(factors)
	for _, c := range e.cfg.VaRConfidences {
		analysis.VaR[ConfidenceKey(c)] = model.Finite(stats.ValueAtRisk(analysis.TotalAssetValue, analysis.Volatility, c))
	}

	analysis.ExpectedLoss, analysis.LossVariance, analysis.UnexpectedLoss, analysis.UnexpectedLossClamped = losses(models)
	if analysis.UnexpectedLossClamped {
		logging.From(ctx).Warn("Loss variance is below squared expected loss, unexpected loss clamped to zero",
			"expected_loss", analysis.ExpectedLoss,
			"loss_variance", analysis.LossVariance)
	}
	for _, iz := range intervalZ {
		analysis.ConfidenceIntervals = append(analysis.ConfidenceIntervals, model.ConfidenceInterval{
			Level: iz.level,
			Lower: analysis.ExpectedLoss - iz.z*analysis.UnexpectedLoss,
			Upper: analysis.ExpectedLoss + iz.z*analysis.UnexpectedLoss,
		})
	}

	if analysis.Sensitivity, err = e.sensitivity(ctx); err != nil {
		return nil, err
	}

	for _, scenario := range e.StressScenarios() {
		result, err := e.stress(ctx, scenario)
		if err != nil {
			return nil, err
		}
		analysis.StressTests = append(analysis.StressTests, *result)
	}

	return analysis, nil
}

func (e *Engine) quantitativeStage(ctx context.Context, report *model.CycleReport) error {
	analysis, err := e.analyze(ctx)
	if err != nil {
		return err
	}

	e.viewMu.Lock()
	e.quantitative = analysis
	e.viewMu.Unlock()

	e.publish(ctx, types.EventQuantitativeAnalysisUpdated, report.CycleID, analysis.Clone())
	return nil
}

// StressScenarios returns the registered stress scenarios
func (e *Engine) StressScenarios() []model.StressScenario {
	e.viewMu.RLock()
	defer e.viewMu.RUnlock()

	out := make([]model.StressScenario, len(e.scenarios))
	for i, s := range e.scenarios {
		overrides := make(map[types.FactorID]float64, len(s.Overrides))
		for id, v := range s.Overrides {
			overrides[id] = v
		}
		s.Overrides = overrides
		out[i] = s
	}
	return out
}

// StressTest runs a named stress scenario against the current state.
// It waits for an in-flight cycle to finish first.
func (e *Engine) StressTest(ctx context.Context, name string) (*model.StressResult, error) {
	if !e.initialized.Load() {
		return nil, goerr.Wrap(ErrNotInitialized, "cannot run stress test")
	}

	var scenario *model.StressScenario
	for _, s := range e.StressScenarios() {
		if s.Name == name {
			scenario = &s
			break
		}
	}
	if scenario == nil {
		return nil, goerr.Wrap(ErrScenarioNotFound, "unknown stress scenario", goerr.V(ScenarioKey, name))
	}

	e.cycleMu.Lock()
	defer e.cycleMu.Unlock()
	return e.stress(ctx, *scenario)
}

// Sensitivity runs the per-factor sensitivity analysis against the current state.
// It waits for an in-flight cycle to finish first.
func (e *Engine) Sensitivity(ctx context.Context) ([]model.SensitivityResult, error) {
	if !e.initialized.Load() {
		return nil, goerr.Wrap(ErrNotInitialized, "cannot run sensitivity analysis")
	}

	e.cycleMu.Lock()
	defer e.cycleMu.Unlock()
	return e.sensitivity(ctx)
}
