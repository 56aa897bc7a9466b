package model

import (
	"time"

	"github.com/secmon-lab/tyche/pkg/domain/types"
)

// DefaultTrendBuffer is the number of overall scores kept for trend detection
const DefaultTrendBuffer = 10

// Thresholds are the executive risk limits compared against the overall score
type Thresholds struct {
	Tolerance float64 `json:"tolerance"`
	Appetite  float64 `json:"appetite"`
}

// DefaultThresholds returns the thresholds used when the catalog sets none
func DefaultThresholds() Thresholds {
	return Thresholds{Tolerance: 0.7, Appetite: 0.5}
}

// RankedRisk is one entry of the top risks list
type RankedRisk struct {
	ModelID types.ModelID `json:"model_id"`
	Name    string        `json:"name"`
	Domain  types.Domain  `json:"domain"`
	Score   float64       `json:"score"`
	Trend   types.Trend   `json:"trend"`
}

// ExecutiveMetrics is the executive summary snapshot, recomputed every cycle
type ExecutiveMetrics struct {
	OverallScore      float64        `json:"overall_score"`
	Thresholds        Thresholds     `json:"thresholds"`
	ToleranceBreached bool           `json:"tolerance_breached"`
	AppetiteExceeded  bool           `json:"appetite_exceeded"`
	TopRisks          []RankedRisk   `json:"top_risks"`
	Trend             types.Trend    `json:"trend"`
	BusinessImpact    BusinessImpact `json:"business_impact"`
	CalculatedAt      time.Time      `json:"calculated_at"`
}

// Clone returns a deep copy of the snapshot
func (m *ExecutiveMetrics) Clone() *ExecutiveMetrics {
	if m == nil {
		return nil
	}
	c := *m
	c.TopRisks = append([]RankedRisk(nil), m.TopRisks...)
	return &c
}

// RiskOverview is the dashboard view over models and executive metrics
type RiskOverview struct {
	OverallScore   float64
	Models         []*RiskModel
	Executive      *ExecutiveMetrics
	BusinessImpact BusinessImpact
}
