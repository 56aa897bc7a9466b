package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tyche/pkg/domain/types"
)

// ValidateFactor checks a seed factor
func ValidateFactor(f *RiskFactor) error {
	if err := f.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid factor ID")
	}
	if !f.Domain.IsValid() {
		return goerr.Wrap(ErrInvalidEnum, "invalid factor domain", goerr.V(FactorIDKey, f.ID), goerr.V(ValueKey, f.Domain))
	}
	if !f.Trend.Normalize().IsValid() {
		return goerr.Wrap(ErrInvalidEnum, "invalid factor trend", goerr.V(FactorIDKey, f.ID), goerr.V(ValueKey, f.Trend))
	}
	if f.Value < 0 || f.Value > 1 {
		return goerr.Wrap(ErrOutOfRange, "factor value must be within [0,1]", goerr.V(FactorIDKey, f.ID), goerr.V(ValueKey, f.Value))
	}
	if f.Volatility < 0 {
		return goerr.Wrap(ErrOutOfRange, "factor volatility must not be negative", goerr.V(FactorIDKey, f.ID), goerr.V(ValueKey, f.Volatility))
	}
	return nil
}

// ValidateModel checks a risk model's weights, methodology and scenarios
func ValidateModel(m *RiskModel) error {
	if err := m.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid model ID")
	}
	if !m.Domain.IsValid() {
		return goerr.Wrap(ErrInvalidEnum, "invalid model domain", goerr.V(ModelIDKey, m.ID), goerr.V(ValueKey, m.Domain))
	}
	if !m.Methodology.IsValid() {
		return goerr.Wrap(ErrInvalidEnum, "invalid methodology", goerr.V(ModelIDKey, m.ID), goerr.V(ValueKey, m.Methodology))
	}
	if m.Confidence < 0 || m.Confidence > 1 {
		return goerr.Wrap(ErrOutOfRange, "model confidence must be within [0,1]", goerr.V(ModelIDKey, m.ID), goerr.V(ValueKey, m.Confidence))
	}
	if m.ImpactWeight < 0 {
		return goerr.Wrap(ErrOutOfRange, "impact weight must not be negative", goerr.V(ModelIDKey, m.ID), goerr.V(ValueKey, m.ImpactWeight))
	}

	weights := make([]float64, 0, len(m.Weights))
	for id, w := range m.Weights {
		if err := id.Validate(); err != nil {
			return goerr.Wrap(err, "invalid weighted factor ID", goerr.V(ModelIDKey, m.ID))
		}
		if w < 0 {
			return goerr.Wrap(ErrOutOfRange, "weight must not be negative", goerr.V(ModelIDKey, m.ID), goerr.V(FactorIDKey, id))
		}
		weights = append(weights, w)
	}
	if !SumsToOne(weights...) {
		return goerr.Wrap(ErrWeightsNotNormalized, "invalid model weights", goerr.V(ModelIDKey, m.ID), goerr.V(SumKey, sum(weights)))
	}

	if m.Methodology == types.MethodologyScenario && len(m.Scenarios) == 0 {
		return goerr.Wrap(ErrMissingScenarios, "invalid scenario model", goerr.V(ModelIDKey, m.ID))
	}
	if len(m.Scenarios) > 0 {
		probs := make([]float64, len(m.Scenarios))
		for i, s := range m.Scenarios {
			if s.Probability < 0 || s.Probability > 1 {
				return goerr.Wrap(ErrOutOfRange, "scenario probability must be within [0,1]", goerr.V(ModelIDKey, m.ID), goerr.V(ScenarioKey, s.Name))
			}
			if s.ImpactMultiplier < 0 {
				return goerr.Wrap(ErrOutOfRange, "impact multiplier must not be negative", goerr.V(ModelIDKey, m.ID), goerr.V(ScenarioKey, s.Name))
			}
			probs[i] = s.Probability
		}
		if !SumsToOne(probs...) {
			return goerr.Wrap(ErrProbabilitiesNotNormalized, "invalid scenarios", goerr.V(ModelIDKey, m.ID), goerr.V(SumKey, sum(probs)))
		}
	}
	return nil
}

// ValidateAsset checks a business asset
func ValidateAsset(a *BusinessAsset) error {
	if err := a.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid asset ID")
	}
	if !a.Criticality.IsValid() {
		return goerr.Wrap(ErrInvalidEnum, "invalid criticality", goerr.V(AssetIDKey, a.ID), goerr.V(ValueKey, a.Criticality))
	}
	if a.Value < 0 {
		return goerr.Wrap(ErrOutOfRange, "asset value must not be negative", goerr.V(AssetIDKey, a.ID), goerr.V(ValueKey, a.Value))
	}
	for _, d := range a.Domains {
		if !d.IsValid() {
			return goerr.Wrap(ErrInvalidEnum, "invalid asset domain", goerr.V(AssetIDKey, a.ID), goerr.V(ValueKey, d))
		}
	}
	return nil
}

// ValidatePredictor checks a predictive model
func ValidatePredictor(p *PredictiveModel) error {
	if err := p.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid predictor ID")
	}
	if !p.Algorithm.IsValid() {
		return goerr.Wrap(ErrInvalidEnum, "invalid algorithm", goerr.V(PredictorIDKey, p.ID), goerr.V(ValueKey, p.Algorithm))
	}
	if p.Accuracy < 0 || p.Accuracy > 1 {
		return goerr.Wrap(ErrOutOfRange, "accuracy must be within [0,1]", goerr.V(PredictorIDKey, p.ID), goerr.V(ValueKey, p.Accuracy))
	}
	if p.Horizon < 0 {
		return goerr.Wrap(ErrOutOfRange, "horizon must not be negative", goerr.V(PredictorIDKey, p.ID))
	}
	return nil
}

func sum(values []float64) float64 {
	var s float64
	for _, v := range values {
		s += v
	}
	return s
}
