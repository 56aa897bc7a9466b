package http

import (
	"time"

	"github.com/secmon-lab/tyche/pkg/domain/model"
)

type factorResponse struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Domain       string             `json:"domain"`
	Value        float64            `json:"value"`
	Trend        string             `json:"trend"`
	Volatility   float64            `json:"volatility"`
	HistorySize  int                `json:"history_size"`
	Correlations map[string]float64 `json:"correlations"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

type modelResponse struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	Domain          string             `json:"domain"`
	Methodology     string             `json:"methodology"`
	Weights         map[string]float64 `json:"weights"`
	Confidence      float64            `json:"confidence"`
	ImpactWeight    float64            `json:"impact_weight"`
	Scenarios       []model.Scenario   `json:"scenarios,omitempty"`
	CurrentScore    float64            `json:"current_score"`
	PreviousScore   float64            `json:"previous_score"`
	Trend           string             `json:"trend"`
	LastCalculation time.Time          `json:"last_calculation"`
}

type predictorResponse struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Algorithm   string             `json:"algorithm"`
	Accuracy    float64            `json:"accuracy"`
	Horizon     string             `json:"horizon"`
	FactorIDs   []string           `json:"factor_ids"`
	Predictions []model.Prediction `json:"predictions"`
}

type assetResponse struct {
	ID               string              `json:"id"`
	Name             string              `json:"name"`
	Type             string              `json:"type"`
	Criticality      string              `json:"criticality"`
	Value            float64             `json:"value"`
	RegulatoryTags   []string            `json:"regulatory_tags"`
	Dependencies     []string            `json:"dependencies"`
	Domains          []string            `json:"domains"`
	CurrentRiskLevel float64             `json:"current_risk_level"`
	Costs            model.CostBreakdown `json:"costs"`
}

type overviewResponse struct {
	OverallScore   float64                 `json:"overall_score"`
	Models         []modelResponse         `json:"models"`
	Executive      *model.ExecutiveMetrics `json:"executive"`
	BusinessImpact model.BusinessImpact    `json:"business_impact"`
}

type predictiveResponse struct {
	Models       []predictorResponse         `json:"models"`
	Quantitative *model.QuantitativeAnalysis `json:"quantitative"`
}

type assetsResponse struct {
	Assets         []assetResponse      `json:"assets"`
	BusinessImpact model.BusinessImpact `json:"business_impact"`
}

type cycleResponse struct {
	CycleID    string                     `json:"cycle_id"`
	StartedAt  time.Time                  `json:"started_at"`
	FinishedAt time.Time                  `json:"finished_at"`
	Errors     map[string]string          `json:"errors"`
	Warnings   []model.DataQualityWarning `json:"warnings"`
}

func toFactorResponse(f *model.RiskFactor) factorResponse {
	resp := factorResponse{
		ID:           f.ID.String(),
		Name:         f.Name,
		Domain:       f.Domain.String(),
		Value:        f.Value,
		Trend:        f.Trend.String(),
		Volatility:   f.Volatility,
		Correlations: make(map[string]float64, len(f.Correlations)),
		UpdatedAt:    f.UpdatedAt,
	}
	if f.History != nil {
		resp.HistorySize = f.History.Len()
	}
	for id, r := range f.Correlations {
		resp.Correlations[id.String()] = r
	}
	return resp
}

func toModelResponse(m *model.RiskModel) modelResponse {
	weights := make(map[string]float64, len(m.Weights))
	for id, w := range m.Weights {
		weights[id.String()] = w
	}
	return modelResponse{
		ID:              m.ID.String(),
		Name:            m.Name,
		Domain:          m.Domain.String(),
		Methodology:     m.Methodology.String(),
		Weights:         weights,
		Confidence:      m.Confidence,
		ImpactWeight:    m.ImpactWeight,
		Scenarios:       m.Scenarios,
		CurrentScore:    m.CurrentScore,
		PreviousScore:   m.PreviousScore,
		Trend:           m.Trend.String(),
		LastCalculation: m.LastCalculation,
	}
}

func toModelResponses(models []*model.RiskModel) []modelResponse {
	resp := make([]modelResponse, len(models))
	for i, m := range models {
		resp[i] = toModelResponse(m)
	}
	return resp
}

func toPredictorResponse(p *model.PredictiveModel) predictorResponse {
	factorIDs := make([]string, len(p.FactorIDs))
	for i, id := range p.FactorIDs {
		factorIDs[i] = id.String()
	}
	predictions := p.Predictions
	if predictions == nil {
		predictions = []model.Prediction{}
	}
	return predictorResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Algorithm:   p.Algorithm.String(),
		Accuracy:    p.Accuracy,
		Horizon:     p.Horizon.String(),
		FactorIDs:   factorIDs,
		Predictions: predictions,
	}
}

func toAssetResponse(a *model.BusinessAsset) assetResponse {
	deps := make([]string, len(a.Dependencies))
	for i, id := range a.Dependencies {
		deps[i] = id.String()
	}
	domains := make([]string, len(a.Domains))
	for i, d := range a.Domains {
		domains[i] = d.String()
	}
	tags := a.RegulatoryTags
	if tags == nil {
		tags = []string{}
	}
	return assetResponse{
		ID:               a.ID.String(),
		Name:             a.Name,
		Type:             a.Type,
		Criticality:      a.Criticality.String(),
		Value:            a.Value,
		RegulatoryTags:   tags,
		Dependencies:     deps,
		Domains:          domains,
		CurrentRiskLevel: a.CurrentRiskLevel,
		Costs:            a.Costs,
	}
}

func toCycleResponse(r *model.CycleReport) cycleResponse {
	resp := cycleResponse{
		CycleID:    string(r.CycleID),
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Errors:     make(map[string]string, len(r.Errors)),
		Warnings:   r.Warnings,
	}
	for stage, err := range r.Errors {
		resp.Errors[stage] = err.Error()
	}
	if resp.Warnings == nil {
		resp.Warnings = []model.DataQualityWarning{}
	}
	return resp
}
