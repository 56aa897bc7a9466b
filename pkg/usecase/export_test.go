package usecase

import (
	"github.com/secmon-lab/tyche/pkg/domain/interfaces"
	"github.com/secmon-lab/tyche/pkg/domain/model"
)

// Internal helpers exported for testing
var (
	RawScore            = rawScore
	Correlate           = correlate
	Losses              = losses
	RankRisks           = rankRisks
	AssetRiskLevel      = assetRiskLevel
	TotalBusinessImpact = totalBusinessImpact
	PushTrend           = pushTrend
	TrendOfBuffer       = trendOf
	IndexFactors        = indexFactors
)

// SetAfterOverride installs a hook that runs inside a perturbation scope once overrides are applied
func SetAfterOverride(e *Engine, hook func()) {
	e.afterOverride = hook
}

// Adjust applies the methodology adjustment of m
func Adjust(cfg ScoringConfig, m *model.RiskModel, raw float64, factors []*model.RiskFactor, src interfaces.RandomSource) float64 {
	s := &scorer{cfg: cfg}
	return s.adjust(m, raw, indexFactors(factors), src)
}

// Forecast runs one predictive model against the given state
func Forecast(cfg PredictionConfig, src interfaces.RandomSource, p *model.PredictiveModel, overall float64, trend []float64, factors []*model.RiskFactor) float64 {
	f := &forecaster{cfg: cfg, src: src}
	return f.forecast(p, forecastInput{
		overall: overall,
		trend:   trend,
		factors: indexFactors(factors),
	})
}
