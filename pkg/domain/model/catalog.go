package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tyche/pkg/domain/types"
)

// Catalog is the seed set an engine is initialized with
type Catalog struct {
	Thresholds      Thresholds
	Factors         []*RiskFactor
	Models          []*RiskModel
	Assets          []*BusinessAsset
	Predictors      []*PredictiveModel
	StressScenarios []StressScenario
}

// Validate checks every entry and rejects duplicate IDs
func (c *Catalog) Validate() error {
	if c.Thresholds.Appetite < 0 || c.Thresholds.Appetite > 1 || c.Thresholds.Tolerance < 0 || c.Thresholds.Tolerance > 1 {
		return goerr.Wrap(ErrOutOfRange, "thresholds must be within [0,1]",
			goerr.V("tolerance", c.Thresholds.Tolerance), goerr.V("appetite", c.Thresholds.Appetite))
	}

	factorIDs := make(map[types.FactorID]bool)
	for _, f := range c.Factors {
		if err := ValidateFactor(f); err != nil {
			return goerr.Wrap(err, "invalid factor")
		}
		if factorIDs[f.ID] {
			return goerr.Wrap(ErrDuplicateID, "duplicate factor ID", goerr.V(FactorIDKey, f.ID))
		}
		factorIDs[f.ID] = true
	}

	modelIDs := make(map[types.ModelID]bool)
	for _, m := range c.Models {
		if err := ValidateModel(m); err != nil {
			return goerr.Wrap(err, "invalid model")
		}
		if modelIDs[m.ID] {
			return goerr.Wrap(ErrDuplicateID, "duplicate model ID", goerr.V(ModelIDKey, m.ID))
		}
		modelIDs[m.ID] = true
	}

	assetIDs := make(map[types.AssetID]bool)
	for _, a := range c.Assets {
		if err := ValidateAsset(a); err != nil {
			return goerr.Wrap(err, "invalid asset")
		}
		if assetIDs[a.ID] {
			return goerr.Wrap(ErrDuplicateID, "duplicate asset ID", goerr.V(AssetIDKey, a.ID))
		}
		assetIDs[a.ID] = true
	}

	predictorIDs := make(map[types.PredictorID]bool)
	for _, p := range c.Predictors {
		if err := ValidatePredictor(p); err != nil {
			return goerr.Wrap(err, "invalid predictor")
		}
		if predictorIDs[p.ID] {
			return goerr.Wrap(ErrDuplicateID, "duplicate predictor ID", goerr.V(PredictorIDKey, p.ID))
		}
		predictorIDs[p.ID] = true
	}

	scenarioNames := make(map[string]bool)
	for _, s := range c.StressScenarios {
		if s.Name == "" {
			return goerr.New("stress scenario name is required")
		}
		if scenarioNames[s.Name] {
			return goerr.Wrap(ErrDuplicateID, "duplicate stress scenario", goerr.V(ScenarioKey, s.Name))
		}
		scenarioNames[s.Name] = true
		for id, v := range s.Overrides {
			if v < 0 || v > 1 {
				return goerr.Wrap(ErrOutOfRange, "stress override must be within [0,1]",
					goerr.V(ScenarioKey, s.Name), goerr.V(FactorIDKey, id), goerr.V(ValueKey, v))
			}
		}
	}

	return nil
}
