package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/tyche/pkg/domain/model"
	"github.com/secmon-lab/tyche/pkg/domain/types"
	"github.com/secmon-lab/tyche/pkg/usecase"
)

func factorWithHistory(id types.FactorID, values ...float64) *model.RiskFactor {
	h := model.NewHistory(len(values) + 1)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, v := range values {
		h.Append(model.HistoryPoint{Timestamp: base.Add(time.Duration(i) * time.Minute), Value: v})
	}
	value := 0.0
	if len(values) > 0 {
		value = values[len(values)-1]
	}
	return &model.RiskFactor{ID: id, Value: value, History: h}
}

func TestCorrelate(t *testing.T) {
	factors := []*model.RiskFactor{
		factorWithHistory("a", 0.1, 0.2, 0.3, 0.4),
		factorWithHistory("b", 0.2, 0.4, 0.6, 0.8),
		factorWithHistory("c", 0.9, 0.7, 0.8, 0.6),
		factorWithHistory("d", 0.5),
	}

	list, matrix := usecase.Correlate(factors)
	gt.Array(t, list).Length(6)

	for id, row := range matrix {
		_, self := row[id]
		gt.Bool(t, self).False()
		for other, r := range row {
			gt.Value(t, matrix[other][id]).Equal(r)
		}
	}

	gt.Bool(t, near(matrix["a"]["b"], 1, 1e-12)).True()
	gt.Value(t, matrix["a"]["d"]).Equal(0.0)

	gt.Value(t, list[0].FactorA).Equal(types.FactorID("a"))
	gt.Value(t, list[0].FactorB).Equal(types.FactorID("b"))
	gt.Value(t, list[0].Band).Equal(types.CorrelationStrong)
	gt.Number(t, list[0].SampleSize).Equal(4)
	for _, c := range list {
		if c.FactorB == "d" {
			gt.Number(t, c.SampleSize).Equal(0)
			gt.Value(t, c.Coefficient).Equal(0.0)
		}
	}
	last := list[len(list)-1]
	gt.Value(t, last.Band).Equal(types.CorrelationWeak)
}

func TestEngine_CorrelationAnalysis(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	gt.Array(t, e.CorrelationAnalysis(ctx)).Length(0)

	for i := 0; i < 3; i++ {
		_, err := e.RunCycle(ctx)
		gt.NoError(t, err).Required()
	}

	// 4 factors yield 6 distinct pairs
	gt.Array(t, e.CorrelationAnalysis(ctx)).Length(6)

	f, err := e.RiskFactor(ctx, "threat_landscape")
	gt.NoError(t, err).Required()
	gt.Number(t, len(f.Correlations)).Equal(3)
	_, self := f.Correlations["threat_landscape"]
	gt.Bool(t, self).False()
}

func TestRankRisks(t *testing.T) {
	models := []*model.RiskModel{
		{ID: "c", CurrentScore: 0.5},
		{ID: "a", CurrentScore: 0.5},
		{ID: "b", CurrentScore: 0.9},
		{ID: "d", CurrentScore: 0.1},
	}

	ranked := usecase.RankRisks(models, 3)
	gt.Array(t, ranked).Length(3)
	gt.Value(t, ranked[0].ModelID).Equal(types.ModelID("b"))
	gt.Value(t, ranked[1].ModelID).Equal(types.ModelID("a"))
	gt.Value(t, ranked[2].ModelID).Equal(types.ModelID("c"))

	gt.Array(t, usecase.RankRisks(models, 10)).Length(4)
	gt.Array(t, usecase.RankRisks(models, 0)).Length(0)
}

func TestTrendBuffer(t *testing.T) {
	var buf []float64
	for _, v := range []float64{0.2, 0.22, 0.25, 0.3} {
		buf = usecase.PushTrend(buf, v, 3)
	}
	gt.Value(t, buf).Equal([]float64{0.22, 0.25, 0.3})
	gt.Value(t, usecase.TrendOfBuffer(buf)).Equal(types.TrendIncreasing)
	gt.Value(t, usecase.TrendOfBuffer([]float64{0.5, 0.52})).Equal(types.TrendStable)
	gt.Value(t, usecase.TrendOfBuffer([]float64{0.5})).Equal(types.TrendStable)
	gt.Value(t, usecase.TrendOfBuffer([]float64{0.5, 0.4})).Equal(types.TrendDecreasing)
}

func TestAssetRiskLevel(t *testing.T) {
	models := []*model.RiskModel{
		{ID: "cyber_a", Domain: types.DomainCyber, CurrentScore: 0.6},
		{ID: "cyber_b", Domain: types.DomainCyber, CurrentScore: 0.4},
		{ID: "fin", Domain: types.DomainFinancial, CurrentScore: 0.9},
	}

	critical := &model.BusinessAsset{Criticality: types.CriticalityCritical, Domains: []types.Domain{types.DomainCyber}}
	gt.Bool(t, near(usecase.AssetRiskLevel(critical, models, 0.2), 0.625, 1e-12)).True()

	low := &model.BusinessAsset{Criticality: types.CriticalityLow}
	gt.Bool(t, near(usecase.AssetRiskLevel(low, models, 0.6), 0.3, 1e-12)).True()

	uncovered := &model.BusinessAsset{Criticality: types.CriticalityHigh, Domains: []types.Domain{types.DomainStrategic}}
	gt.Bool(t, near(usecase.AssetRiskLevel(uncovered, models, 0.6), 0.6, 1e-12)).True()

	capped := &model.BusinessAsset{Criticality: types.CriticalityCritical, Domains: []types.Domain{types.DomainFinancial}}
	gt.Value(t, usecase.AssetRiskLevel(capped, models, 0)).Equal(1.0)
}

func TestTotalBusinessImpact(t *testing.T) {
	impact := usecase.TotalBusinessImpact([]*model.BusinessAsset{
		{Value: 600000, CurrentRiskLevel: 0.5},
		{Value: 400000, CurrentRiskLevel: 0.25},
	})
	gt.Value(t, impact.TotalAssetValue).Equal(1_000_000.0)
	gt.Value(t, impact.PotentialLoss).Equal(400_000.0)
	gt.Bool(t, near(impact.RiskPercentage, 40, 1e-9)).True()

	empty := usecase.TotalBusinessImpact(nil)
	gt.Value(t, empty.RiskPercentage).Equal(0.0)
}

func TestEngine_BusinessAssets(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	_, err := e.RunCycle(ctx)
	gt.NoError(t, err).Required()

	assets, err := e.BusinessAssets(ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, assets).Length(2)
	for _, a := range assets {
		gt.Bool(t, a.CurrentRiskLevel > 0 && a.CurrentRiskLevel <= 1).True()
		gt.Bool(t, near(a.Costs.Total(), a.Value*a.CurrentRiskLevel, 1e-6)).True()
	}

	impact, err := e.TotalBusinessImpact(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, impact).Equal(e.ExecutiveMetrics(ctx).BusinessImpact)
}

func TestForecast(t *testing.T) {
	cfg := usecase.DefaultEngineConfig().Prediction
	src := constSource{u: 0.5}

	t.Run("time series extrapolates the trend", func(t *testing.T) {
		flat := cfg
		flat.SeasonalAmplitude = 0
		flat.NoiseBound = 0
		p := &model.PredictiveModel{Algorithm: types.AlgorithmTimeSeries}
		v := usecase.Forecast(flat, src, p, 0.4, []float64{0.1, 0.2, 0.3}, nil)
		gt.Bool(t, near(v, 0.5, 1e-9)).True()
	})

	t.Run("time series falls back to factor history", func(t *testing.T) {
		flat := cfg
		flat.SeasonalAmplitude = 0
		flat.NoiseBound = 0
		p := &model.PredictiveModel{Algorithm: types.AlgorithmTimeSeries, FactorIDs: []types.FactorID{"a", "b"}}
		factors := []*model.RiskFactor{
			factorWithHistory("a", 0.1, 0.2, 0.3),
			factorWithHistory("b", 0.3, 0.4, 0.5),
		}
		v := usecase.Forecast(flat, src, p, 0.9, nil, factors)
		gt.Bool(t, near(v, 0.5, 1e-9)).True()
	})

	t.Run("ensemble nudges towards elevated factors", func(t *testing.T) {
		p := &model.PredictiveModel{Algorithm: types.AlgorithmEnsemble}
		factors := []*model.RiskFactor{{ID: "a", Value: 0.9}, {ID: "b", Value: 0.8}}
		v := usecase.Forecast(cfg, src, p, 0.5, nil, factors)
		gt.Bool(t, near(v, 0.55, 1e-9)).True()

		calm := []*model.RiskFactor{{ID: "a", Value: 0.1}}
		v = usecase.Forecast(cfg, src, p, 0.5, nil, calm)
		gt.Bool(t, near(v, 0.45, 1e-9)).True()
	})

	t.Run("monte carlo reports the upper tail", func(t *testing.T) {
		p := &model.PredictiveModel{Algorithm: types.AlgorithmMonteCarlo}
		v := usecase.Forecast(cfg, src, p, 0.5, nil, nil)
		// every draw is the median multiplier
		gt.Bool(t, near(v, 0.5*0.98019867, 1e-6)).True()
		gt.Value(t, usecase.Forecast(cfg, src, p, 0, nil, nil)).Equal(0.0)
	})

	t.Run("bayesian posterior", func(t *testing.T) {
		p := &model.PredictiveModel{Algorithm: types.AlgorithmBayesian}
		factors := []*model.RiskFactor{
			{ID: "a", Value: 0.9}, {ID: "b", Value: 0.8}, {ID: "c", Value: 0.75}, {ID: "d", Value: 0.2},
		}
		v := usecase.Forecast(cfg, src, p, 0.6, nil, factors)
		gt.Bool(t, near(v, 0.45/0.55, 1e-9)).True()

		gt.Value(t, usecase.Forecast(cfg, src, p, 0.6, nil, nil)).Equal(0.6)
	})
}
