package usecase

import (
	"context"
	"math"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tyche/pkg/domain/interfaces"
	"github.com/secmon-lab/tyche/pkg/domain/model"
	"github.com/secmon-lab/tyche/pkg/domain/types"
	"github.com/secmon-lab/tyche/pkg/service/stats"
)

// forecastInput is the state a forecast is derived from
type forecastInput struct {
	overall float64
	trend   []float64
	factors factorIndex
}

type forecaster struct {
	cfg PredictionConfig
	src interfaces.RandomSource
}

func (f *forecaster) forecast(p *model.PredictiveModel, in forecastInput) float64 {
	var v float64
	switch p.Algorithm {
	case types.AlgorithmTimeSeries:
		v = f.timeSeries(p, in)
	case types.AlgorithmEnsemble:
		v = f.ensemble(p, in)
	case types.AlgorithmMonteCarlo:
		v = f.monteCarlo(in)
	case types.AlgorithmBayesian:
		v = f.bayesian(p, in)
	default:
		v = in.overall
	}
	return model.Clamp01(model.Finite(v))
}

// timeSeries extrapolates a linear trend with a seasonal term and bounded noise
func (f *forecaster) timeSeries(p *model.PredictiveModel, in forecastInput) float64 {
	series := append(append([]float64(nil), in.trend...), in.overall)
	if len(series) < 3 {
		if mean := meanHistory(referenced(p, in.factors)); len(mean) > len(series) {
			series = mean
		}
	}

	alpha, beta := stats.LinearTrend(series)
	t := float64(len(series) - 1 + f.cfg.HorizonSteps)
	value := alpha + beta*t
	if f.cfg.SeasonalPeriod > 0 {
		value += f.cfg.SeasonalAmplitude * math.Sin(2*math.Pi*t/f.cfg.SeasonalPeriod)
	}
	return value + stats.Uniform(f.src, -f.cfg.NoiseBound, f.cfg.NoiseBound)
}

// ensemble averages weak estimators that each look at one random factor
func (f *forecaster) ensemble(p *model.PredictiveModel, in forecastInput) float64 {
	factors := referenced(p, in.factors)
	if len(factors) == 0 {
		return in.overall
	}

	estimates := make([]float64, f.cfg.Estimators)
	for i := range estimates {
		pick := factors[int(f.src.Float64()*float64(len(factors)))%len(factors)]
		switch {
		case pick.Value > f.cfg.HighThreshold:
			estimates[i] = in.overall + f.cfg.EstimatorStep
		case pick.Value < f.cfg.LowThreshold:
			estimates[i] = in.overall - f.cfg.EstimatorStep
		default:
			estimates[i] = in.overall + stats.Uniform(f.src, -f.cfg.EstimatorStep/5, f.cfg.EstimatorStep/5)
		}
	}
	return stats.Mean(estimates)
}

// monteCarlo reports the upper percentile of log-normally shocked overall scores
func (f *forecaster) monteCarlo(in forecastInput) float64 {
	draws := make([]float64, f.cfg.Samples)
	for i := range draws {
		draws[i] = in.overall * stats.LogNormal(f.src, f.cfg.SampleSigma)
	}
	return stats.Percentile(draws, f.cfg.Percentile)
}

// bayesian is a single-step posterior with the overall score as prior and
// the share of elevated factors as likelihood
func (f *forecaster) bayesian(p *model.PredictiveModel, in forecastInput) float64 {
	factors := referenced(p, in.factors)
	if len(factors) == 0 {
		return in.overall
	}

	var high int
	for _, factor := range factors {
		if factor.Value > f.cfg.HighThreshold {
			high++
		}
	}
	likelihood := float64(high) / float64(len(factors))
	prior := in.overall

	denominator := likelihood*prior + (1-likelihood)*(1-prior)
	if denominator == 0 {
		return prior
	}
	return likelihood * prior / denominator
}

// referenced returns the predictor's factors, or every factor when it names none
func referenced(p *model.PredictiveModel, factors factorIndex) []*model.RiskFactor {
	var out []*model.RiskFactor
	if len(p.FactorIDs) == 0 {
		for _, f := range factors {
			out = append(out, f)
		}
		sortFactors(out)
		return out
	}
	for _, id := range p.FactorIDs {
		if f, ok := factors[id]; ok {
			out = append(out, f)
		}
	}
	return out
}

// meanHistory averages the histories of factors over their common recent window
func meanHistory(factors []*model.RiskFactor) []float64 {
	if len(factors) == 0 {
		return nil
	}
	n := math.MaxInt
	for _, f := range factors {
		if f.History == nil {
			return nil
		}
		n = min(n, f.History.Len())
	}
	if n == 0 {
		return nil
	}

	mean := make([]float64, n)
	for _, f := range factors {
		for i, p := range f.History.Last(n) {
			mean[i] += p.Value / float64(len(factors))
		}
	}
	return mean
}

// GeneratePredictions produces one forecast per predictive model and records it.
// It waits for an in-flight cycle or perturbation analysis to finish first.
func (e *Engine) GeneratePredictions(ctx context.Context) ([]model.Prediction, error) {
	e.cycleMu.Lock()
	defer e.cycleMu.Unlock()
	return e.generatePredictions(ctx)
}

func (e *Engine) generatePredictions(ctx context.Context) ([]model.Prediction, error) {
	factors, err := e.repo.Factor().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list factors")
	}
	models, err := e.repo.RiskModel().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risk models")
	}
	predictors, err := e.repo.Predictor().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list predictive models")
	}

	e.viewMu.RLock()
	trend := append([]float64(nil), e.trend...)
	e.viewMu.RUnlock()

	in := forecastInput{
		overall: overallScore(models),
		trend:   trend,
		factors: indexFactors(factors),
	}
	fc := &forecaster{cfg: e.cfg.Prediction, src: e.sampling}

	now := e.now()
	predictions := make([]model.Prediction, 0, len(predictors))
	for _, p := range predictors {
		predictions = append(predictions, model.Prediction{
			ID:         model.NewPredictionID(),
			ModelID:    p.ID,
			Timestamp:  now,
			TargetDate: now.Add(horizonOf(p)),
			Value:      fc.forecast(p, in),
			Confidence: p.Accuracy,
			Algorithm:  p.Algorithm,
		})
	}

	e.viewMu.Lock()
	defer e.viewMu.Unlock()
	for _, pred := range predictions {
		if err := e.repo.Predictor().Record(ctx, pred, e.cfg.PredictionBuffer); err != nil {
			return nil, goerr.Wrap(err, "failed to record prediction", goerr.V(PredictorIDKey, pred.ModelID))
		}
	}
	return predictions, nil
}

func horizonOf(p *model.PredictiveModel) time.Duration {
	if p.Horizon > 0 {
		return p.Horizon
	}
	return 24 * time.Hour
}

func (e *Engine) predictionStage(ctx context.Context, report *model.CycleReport) error {
	predictions, err := e.generatePredictions(ctx)
	if err != nil {
		return err
	}
	e.publish(ctx, types.EventPredictionsGenerated, report.CycleID, predictions)
	return nil
}
