package model

import "github.com/secmon-lab/tyche/pkg/domain/types"

// Fixed proportional weights of an asset's potential loss per cost bucket
const (
	CostWeightDirect      = 0.40
	CostWeightIndirect    = 0.25
	CostWeightOpportunity = 0.15
	CostWeightRegulatory  = 0.10
	CostWeightReputation  = 0.10
)

// CostBreakdown splits an asset's potential loss into cost buckets
type CostBreakdown struct {
	Direct      float64 `json:"direct"`
	Indirect    float64 `json:"indirect"`
	Opportunity float64 `json:"opportunity"`
	Regulatory  float64 `json:"regulatory"`
	Reputation  float64 `json:"reputation"`
}

// NewCostBreakdown distributes potentialLoss over the buckets
func NewCostBreakdown(potentialLoss float64) CostBreakdown {
	return CostBreakdown{
		Direct:      potentialLoss * CostWeightDirect,
		Indirect:    potentialLoss * CostWeightIndirect,
		Opportunity: potentialLoss * CostWeightOpportunity,
		Regulatory:  potentialLoss * CostWeightRegulatory,
		Reputation:  potentialLoss * CostWeightReputation,
	}
}

// Total returns the sum of all buckets
func (c CostBreakdown) Total() float64 {
	return c.Direct + c.Indirect + c.Opportunity + c.Regulatory + c.Reputation
}

// BusinessAsset is a monetized asset exposed to business risk
type BusinessAsset struct {
	ID               types.AssetID
	Name             string
	Type             string
	Criticality      types.Criticality
	Value            float64
	RegulatoryTags   []string
	Dependencies     []types.AssetID
	Domains          []types.Domain
	CurrentRiskLevel float64
	Costs            CostBreakdown
}

// Clone returns a deep copy of the asset
func (a *BusinessAsset) Clone() *BusinessAsset {
	c := *a
	c.RegulatoryTags = append([]string(nil), a.RegulatoryTags...)
	c.Dependencies = append([]types.AssetID(nil), a.Dependencies...)
	c.Domains = append([]types.Domain(nil), a.Domains...)
	return &c
}

// BusinessImpact aggregates monetary exposure over all assets
type BusinessImpact struct {
	TotalAssetValue float64 `json:"total_asset_value"`
	PotentialLoss   float64 `json:"potential_loss"`
	RiskPercentage  float64 `json:"risk_percentage"`
}
