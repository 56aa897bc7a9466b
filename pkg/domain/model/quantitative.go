package model

import (
	"time"

	"github.com/secmon-lab/tyche/pkg/domain/types"
)

// ConfidenceInterval is a symmetric interval around the expected loss
type ConfidenceInterval struct {
	Level float64 `json:"level"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// SensitivityResult is the relative change of the overall score when one factor is perturbed
type SensitivityResult struct {
	FactorID       types.FactorID `json:"factor_id"`
	BaselineValue  float64        `json:"baseline_value"`
	PerturbedValue float64        `json:"perturbed_value"`
	BaselineScore  float64        `json:"baseline_score"`
	PerturbedScore float64        `json:"perturbed_score"`
	Delta          float64        `json:"delta"`
}

// ModelImpact is the score movement of one model under stress
type ModelImpact struct {
	ModelID       types.ModelID `json:"model_id"`
	BaselineScore float64       `json:"baseline_score"`
	StressedScore float64       `json:"stressed_score"`
	Delta         float64       `json:"delta"`
}

// StressResult is the outcome of one named stress scenario
type StressResult struct {
	Name          string        `json:"name"`
	BaselineScore float64       `json:"baseline_score"`
	StressedScore float64       `json:"stressed_score"`
	Delta         float64       `json:"delta"`
	TopImpacted   []ModelImpact `json:"top_impacted"`
	Skipped       []string      `json:"skipped,omitempty"`
}

// StressScenario forces factor values to stress the model set
type StressScenario struct {
	Name        string
	Description string
	Overrides   map[types.FactorID]float64
}

// QuantitativeAnalysis is the loss estimation snapshot, recomputed every cycle
type QuantitativeAnalysis struct {
	TotalAssetValue       float64              `json:"total_asset_value"`
	Volatility            float64              `json:"volatility"`
	VaR                   map[string]float64   `json:"var"`
	ExpectedLoss          float64              `json:"expected_loss"`
	LossVariance          float64              `json:"loss_variance"`
	UnexpectedLoss        float64              `json:"unexpected_loss"`
	UnexpectedLossClamped bool                 `json:"unexpected_loss_clamped"`
	ConfidenceIntervals   []ConfidenceInterval `json:"confidence_intervals"`
	Sensitivity           []SensitivityResult  `json:"sensitivity"`
	StressTests           []StressResult       `json:"stress_tests"`
	CalculatedAt          time.Time            `json:"calculated_at"`
}

// Clone returns a deep copy of the snapshot
func (q *QuantitativeAnalysis) Clone() *QuantitativeAnalysis {
	if q == nil {
		return nil
	}
	c := *q
	c.VaR = make(map[string]float64, len(q.VaR))
	for k, v := range q.VaR {
		c.VaR[k] = v
	}
	c.ConfidenceIntervals = append([]ConfidenceInterval(nil), q.ConfidenceIntervals...)
	c.Sensitivity = append([]SensitivityResult(nil), q.Sensitivity...)
	c.StressTests = make([]StressResult, len(q.StressTests))
	for i, s := range q.StressTests {
		s.TopImpacted = append([]ModelImpact(nil), s.TopImpacted...)
		s.Skipped = append([]string(nil), s.Skipped...)
		c.StressTests[i] = s
	}
	return &c
}

// PredictiveAnalysis bundles predictive models with the latest quantitative analysis
type PredictiveAnalysis struct {
	Models       []*PredictiveModel
	Quantitative *QuantitativeAnalysis
}
