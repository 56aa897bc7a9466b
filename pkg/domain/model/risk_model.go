package model

import (
	"sort"
	"time"

	"github.com/secmon-lab/tyche/pkg/domain/types"
)

// Scenario is one weighted outcome of a scenario-analysis model
type Scenario struct {
	Name             string  `json:"name"`
	Probability      float64 `json:"probability"`
	ImpactMultiplier float64 `json:"impact_multiplier"`
}

// RiskModel is a weighted composite of risk factors scored under a methodology
type RiskModel struct {
	ID              types.ModelID
	Name            string
	Domain          types.Domain
	Weights         map[types.FactorID]float64
	Methodology     types.Methodology
	Confidence      float64
	ImpactWeight    float64
	Scenarios       []Scenario
	CurrentScore    float64
	PreviousScore   float64
	Trend           types.Trend
	LastCalculation time.Time
}

// FactorIDs returns the referenced factor IDs in lexical order
func (m *RiskModel) FactorIDs() []types.FactorID {
	ids := make([]types.FactorID, 0, len(m.Weights))
	for id := range m.Weights {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Clone returns a deep copy of the model
func (m *RiskModel) Clone() *RiskModel {
	c := *m
	c.Weights = make(map[types.FactorID]float64, len(m.Weights))
	for k, v := range m.Weights {
		c.Weights[k] = v
	}
	c.Scenarios = append([]Scenario(nil), m.Scenarios...)
	return &c
}

// ScoreUpdate is the committed result of one model recomputation
type ScoreUpdate struct {
	ModelID    types.ModelID
	Score      float64
	Calculated time.Time
}

// DataQualityWarning reports a model referencing a factor that does not exist
type DataQualityWarning struct {
	ModelID  types.ModelID  `json:"model_id"`
	FactorID types.FactorID `json:"factor_id"`
	Message  string         `json:"message"`
}

// ScoreResult is the outcome of scoring a single model
type ScoreResult struct {
	ModelID  types.ModelID
	Raw      float64
	Score    float64
	Warnings []DataQualityWarning
}
