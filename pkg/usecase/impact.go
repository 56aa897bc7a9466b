package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tyche/pkg/domain/model"
	"github.com/secmon-lab/tyche/pkg/domain/types"
	"github.com/secmon-lab/tyche/pkg/service/stats"
)

// assetRiskLevel is the mean score of the models covering the asset's domains,
// scaled by criticality. Assets without domains use the overall score.
func assetRiskLevel(asset *model.BusinessAsset, models []*model.RiskModel, overall float64) float64 {
	base := overall
	if len(asset.Domains) > 0 {
		domains := make(map[types.Domain]bool, len(asset.Domains))
		for _, d := range asset.Domains {
			domains[d] = true
		}
		var scores []float64
		for _, m := range models {
			if domains[m.Domain] {
				scores = append(scores, m.CurrentScore)
			}
		}
		if len(scores) > 0 {
			base = stats.Mean(scores)
		}
	}
	return model.Clamp01(base * asset.Criticality.Weight())
}

// totalBusinessImpact aggregates value and potential loss over assets
func totalBusinessImpact(assets []*model.BusinessAsset) model.BusinessImpact {
	var impact model.BusinessImpact
	for _, a := range assets {
		impact.TotalAssetValue += a.Value
		impact.PotentialLoss += a.Value * a.CurrentRiskLevel
	}
	if impact.TotalAssetValue > 0 {
		impact.RiskPercentage = impact.PotentialLoss / impact.TotalAssetValue * 100
	}
	return impact
}

// UpdateBusinessImpact recomputes every asset's risk level and cost breakdown
// from the committed model scores and returns the aggregate impact
func (e *Engine) UpdateBusinessImpact(ctx context.Context) (model.BusinessImpact, error) {
	e.cycleMu.Lock()
	defer e.cycleMu.Unlock()
	return e.updateBusinessImpact(ctx)
}

func (e *Engine) updateBusinessImpact(ctx context.Context) (model.BusinessImpact, error) {
	models, err := e.repo.RiskModel().List(ctx)
	if err != nil {
		return model.BusinessImpact{}, goerr.Wrap(err, "failed to list risk models")
	}
	assets, err := e.repo.Asset().List(ctx)
	if err != nil {
		return model.BusinessImpact{}, goerr.Wrap(err, "failed to list assets")
	}

	overall := overallScore(models)
	for _, a := range assets {
		a.CurrentRiskLevel = assetRiskLevel(a, models, overall)
		a.Costs = model.NewCostBreakdown(a.Value * a.CurrentRiskLevel)
	}

	e.viewMu.Lock()
	defer e.viewMu.Unlock()
	for _, a := range assets {
		if err := e.repo.Asset().Put(ctx, a); err != nil {
			return model.BusinessImpact{}, goerr.Wrap(err, "failed to store asset", goerr.V("asset_id", a.ID))
		}
	}
	return totalBusinessImpact(assets), nil
}
