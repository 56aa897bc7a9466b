package usecase

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tyche/pkg/domain/model"
)

// ScoringConfig tunes the methodology adjustments
type ScoringConfig struct {
	// Noise draws the FAIR and tiered adjustments at random instead of deriving them
	Noise             bool
	FAIRBound         float64
	MonteCarloSamples int
	MonteCarloSigma   float64
	VaRHorizonDays    float64
	VaRConfidence     float64
	TieredMin         float64
	TieredMax         float64
	RCSAFactor        float64
}

// PredictionConfig tunes the forecasting archetypes
type PredictionConfig struct {
	HorizonSteps      int
	SeasonalAmplitude float64
	SeasonalPeriod    float64
	NoiseBound        float64
	Estimators        int
	EstimatorStep     float64
	HighThreshold     float64
	LowThreshold      float64
	Samples           int
	SampleSigma       float64
	Percentile        float64
}

// EngineConfig holds every tuning knob of the engine
type EngineConfig struct {
	Interval            time.Duration
	HistoryCapacity     int
	PredictionBuffer    int
	TrendBuffer         int
	TopRisks            int
	VaRConfidences      []float64
	PortfolioVolatility float64
	SensitivityShift    float64
	StressTopN          int
	Scoring             ScoringConfig
	Prediction          PredictionConfig
}

// DefaultEngineConfig returns the configuration used when nothing is overridden
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Interval:         30 * time.Second,
		HistoryCapacity:  model.DefaultHistoryCapacity,
		PredictionBuffer: model.DefaultPredictionBuffer,
		TrendBuffer:      model.DefaultTrendBuffer,
		TopRisks:         5,
		VaRConfidences:   []float64{0.95, 0.99},
		SensitivityShift: 0.10,
		StressTopN:       3,
		Scoring: ScoringConfig{
			FAIRBound:         0.10,
			MonteCarloSamples: 1000,
			MonteCarloSigma:   0.2,
			VaRHorizonDays:    10,
			VaRConfidence:     0.95,
			TieredMin:         0.85,
			TieredMax:         1.15,
			RCSAFactor:        0.95,
		},
		Prediction: PredictionConfig{
			HorizonSteps:      1,
			SeasonalAmplitude: 0.02,
			SeasonalPeriod:    12,
			NoiseBound:        0.01,
			Estimators:        100,
			EstimatorStep:     0.05,
			HighThreshold:     0.7,
			LowThreshold:      0.3,
			Samples:           1000,
			SampleSigma:       0.2,
			Percentile:        0.95,
		},
	}
}

// Validate checks the configuration for values the engine cannot work with
func (c EngineConfig) Validate() error {
	if c.Interval <= 0 {
		return goerr.New("interval must be positive", goerr.V("interval", c.Interval))
	}
	if c.HistoryCapacity <= 0 || c.PredictionBuffer <= 0 || c.TrendBuffer <= 0 {
		return goerr.New("buffer capacities must be positive",
			goerr.V("history", c.HistoryCapacity),
			goerr.V("predictions", c.PredictionBuffer),
			goerr.V("trend", c.TrendBuffer))
	}
	if len(c.VaRConfidences) < 2 {
		return goerr.New("at least two VaR confidence levels are required", goerr.V("levels", c.VaRConfidences))
	}
	for _, level := range c.VaRConfidences {
		if level <= 0 || level >= 1 {
			return goerr.New("VaR confidence must be within (0,1)", goerr.V("level", level))
		}
	}
	if c.PortfolioVolatility < 0 {
		return goerr.New("portfolio volatility must not be negative", goerr.V("volatility", c.PortfolioVolatility))
	}
	if c.Scoring.TieredMin > c.Scoring.TieredMax {
		return goerr.New("tiered range is inverted",
			goerr.V("min", c.Scoring.TieredMin), goerr.V("max", c.Scoring.TieredMax))
	}
	if c.Scoring.MonteCarloSamples <= 0 || c.Prediction.Samples <= 0 || c.Prediction.Estimators <= 0 {
		return goerr.New("sample counts must be positive")
	}
	if c.Prediction.LowThreshold > c.Prediction.HighThreshold {
		return goerr.New("prediction thresholds are inverted",
			goerr.V("low", c.Prediction.LowThreshold), goerr.V("high", c.Prediction.HighThreshold))
	}
	if c.Prediction.Percentile <= 0 || c.Prediction.Percentile > 1 {
		return goerr.New("prediction percentile must be within (0,1]", goerr.V("percentile", c.Prediction.Percentile))
	}
	return nil
}
