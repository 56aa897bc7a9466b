package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/tyche/pkg/domain/model"
	"github.com/secmon-lab/tyche/pkg/domain/types"
)

// Catalog is the seed catalog file
type Catalog struct {
	Thresholds Thresholds  `toml:"thresholds"`
	Factors    []Factor    `toml:"factor"`
	Models     []Model     `toml:"model"`
	Assets     []Asset     `toml:"asset"`
	Predictors []Predictor `toml:"predictor"`
	Stress     []Stress    `toml:"stress"`
}

// Thresholds are the executive limits. Zero values keep the defaults.
type Thresholds struct {
	Tolerance float64 `toml:"tolerance"`
	Appetite  float64 `toml:"appetite"`
}

// Factor represents a risk factor entry
type Factor struct {
	ID         string  `toml:"id"`
	Name       string  `toml:"name"`
	Domain     string  `toml:"domain"`
	Value      float64 `toml:"value"`
	Trend      string  `toml:"trend"`
	Volatility float64 `toml:"volatility"`
}

// Validate checks if the Factor is valid
func (f *Factor) Validate() error {
	id := types.FactorID(f.ID)
	if err := id.Validate(); err != nil {
		return goerr.Wrap(err, "invalid factor ID")
	}
	if f.Name == "" {
		return goerr.Wrap(ErrMissingName, "factor name is required", goerr.V(IDKey, f.ID))
	}
	return nil
}

// Scenario represents one outcome of a scenario-analysis model
type Scenario struct {
	Name             string  `toml:"name"`
	Probability      float64 `toml:"probability"`
	ImpactMultiplier float64 `toml:"impact_multiplier"`
}

// Model represents a risk model entry
type Model struct {
	ID           string             `toml:"id"`
	Name         string             `toml:"name"`
	Domain       string             `toml:"domain"`
	Methodology  string             `toml:"methodology"`
	Confidence   float64            `toml:"confidence"`
	ImpactWeight float64            `toml:"impact_weight"`
	Weights      map[string]float64 `toml:"weights"`
	Scenarios    []Scenario         `toml:"scenario"`
}

// Validate checks if the Model is valid
func (m *Model) Validate() error {
	id := types.ModelID(m.ID)
	if err := id.Validate(); err != nil {
		return goerr.Wrap(err, "invalid model ID")
	}
	if m.Name == "" {
		return goerr.Wrap(ErrMissingName, "model name is required", goerr.V(IDKey, m.ID))
	}
	if len(m.Weights) == 0 {
		return goerr.Wrap(ErrInvalidConfig, "model requires at least one weighted factor", goerr.V(IDKey, m.ID))
	}
	return nil
}

// Asset represents a business asset entry
type Asset struct {
	ID             string   `toml:"id"`
	Name           string   `toml:"name"`
	Type           string   `toml:"type"`
	Criticality    string   `toml:"criticality"`
	Value          float64  `toml:"value"`
	RegulatoryTags []string `toml:"regulatory_tags"`
	Dependencies   []string `toml:"dependencies"`
	Domains        []string `toml:"domains"`
}

// Validate checks if the Asset is valid
func (a *Asset) Validate() error {
	id := types.AssetID(a.ID)
	if err := id.Validate(); err != nil {
		return goerr.Wrap(err, "invalid asset ID")
	}
	if a.Name == "" {
		return goerr.Wrap(ErrMissingName, "asset name is required", goerr.V(IDKey, a.ID))
	}
	for _, dep := range a.Dependencies {
		if err := types.AssetID(dep).Validate(); err != nil {
			return goerr.Wrap(err, "invalid asset dependency", goerr.V(IDKey, a.ID))
		}
	}
	return nil
}

// Predictor represents a predictive model entry
type Predictor struct {
	ID        string   `toml:"id"`
	Name      string   `toml:"name"`
	Algorithm string   `toml:"algorithm"`
	Accuracy  float64  `toml:"accuracy"`
	Horizon   string   `toml:"horizon"`
	Factors   []string `toml:"factors"`
}

// Validate checks if the Predictor is valid
func (p *Predictor) Validate() error {
	id := types.PredictorID(p.ID)
	if err := id.Validate(); err != nil {
		return goerr.Wrap(err, "invalid predictor ID")
	}
	if p.Name == "" {
		return goerr.Wrap(ErrMissingName, "predictor name is required", goerr.V(IDKey, p.ID))
	}
	if _, err := p.horizon(); err != nil {
		return err
	}
	for _, f := range p.Factors {
		if err := types.FactorID(f).Validate(); err != nil {
			return goerr.Wrap(err, "invalid predictor factor", goerr.V(IDKey, p.ID))
		}
	}
	return nil
}

func (p *Predictor) horizon() (time.Duration, error) {
	if p.Horizon == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(p.Horizon)
	if err != nil {
		return 0, goerr.Wrap(ErrInvalidDuration, "invalid predictor horizon",
			goerr.V(IDKey, p.ID), goerr.V(ValueKey, p.Horizon))
	}
	return d, nil
}

// Stress represents a named stress scenario
type Stress struct {
	Name        string             `toml:"name"`
	Description string             `toml:"description"`
	Overrides   map[string]float64 `toml:"overrides"`
}

// Validate checks if the Stress scenario is valid
func (s *Stress) Validate() error {
	if s.Name == "" {
		return goerr.Wrap(ErrMissingName, "stress scenario name is required")
	}
	if len(s.Overrides) == 0 {
		return goerr.Wrap(ErrInvalidConfig, "stress scenario requires at least one override", goerr.V(IDKey, s.Name))
	}
	return nil
}

// Validate checks every section of the file, then the converted catalog
func (c *Catalog) Validate() error {
	for i := range c.Factors {
		if err := c.Factors[i].Validate(); err != nil {
			return goerr.Wrap(err, "invalid factor", goerr.V(SectionKey, "factor"), goerr.V(IndexKey, i))
		}
	}
	for i := range c.Models {
		if err := c.Models[i].Validate(); err != nil {
			return goerr.Wrap(err, "invalid model", goerr.V(SectionKey, "model"), goerr.V(IndexKey, i))
		}
	}
	for i := range c.Assets {
		if err := c.Assets[i].Validate(); err != nil {
			return goerr.Wrap(err, "invalid asset", goerr.V(SectionKey, "asset"), goerr.V(IndexKey, i))
		}
	}
	for i := range c.Predictors {
		if err := c.Predictors[i].Validate(); err != nil {
			return goerr.Wrap(err, "invalid predictor", goerr.V(SectionKey, "predictor"), goerr.V(IndexKey, i))
		}
	}
	for i := range c.Stress {
		if err := c.Stress[i].Validate(); err != nil {
			return goerr.Wrap(err, "invalid stress scenario", goerr.V(SectionKey, "stress"), goerr.V(IndexKey, i))
		}
	}

	if err := c.ToModel().Validate(); err != nil {
		return goerr.Wrap(err, "invalid catalog")
	}
	return nil
}

// LoadCatalog reads and validates a TOML catalog file
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "catalog file not found", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read catalog file", goerr.V(ConfigPathKey, path))
	}

	var catalog Catalog
	if err := toml.Unmarshal(data, &catalog); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse catalog file",
			goerr.V(ConfigPathKey, path), goerr.V("error", err.Error()))
	}

	if err := catalog.Validate(); err != nil {
		return nil, goerr.Wrap(err, "catalog validation failed", goerr.V(ConfigPathKey, path))
	}

	return &catalog, nil
}

// ToModel converts the file representation to the domain catalog.
// Call Validate first; malformed durations convert to zero.
func (c *Catalog) ToModel() *model.Catalog {
	catalog := &model.Catalog{
		Thresholds: model.Thresholds{
			Tolerance: c.Thresholds.Tolerance,
			Appetite:  c.Thresholds.Appetite,
		},
		Factors:         make([]*model.RiskFactor, len(c.Factors)),
		Models:          make([]*model.RiskModel, len(c.Models)),
		Assets:          make([]*model.BusinessAsset, len(c.Assets)),
		Predictors:      make([]*model.PredictiveModel, len(c.Predictors)),
		StressScenarios: make([]model.StressScenario, len(c.Stress)),
	}

	for i, f := range c.Factors {
		catalog.Factors[i] = &model.RiskFactor{
			ID:         types.FactorID(f.ID),
			Name:       f.Name,
			Domain:     types.Domain(f.Domain),
			Value:      f.Value,
			Trend:      types.Trend(f.Trend).Normalize(),
			Volatility: f.Volatility,
		}
	}

	for i, m := range c.Models {
		weights := make(map[types.FactorID]float64, len(m.Weights))
		for id, w := range m.Weights {
			weights[types.FactorID(id)] = w
		}
		scenarios := make([]model.Scenario, len(m.Scenarios))
		for j, s := range m.Scenarios {
			scenarios[j] = model.Scenario{
				Name:             s.Name,
				Probability:      s.Probability,
				ImpactMultiplier: s.ImpactMultiplier,
			}
		}
		catalog.Models[i] = &model.RiskModel{
			ID:           types.ModelID(m.ID),
			Name:         m.Name,
			Domain:       types.Domain(m.Domain),
			Methodology:  types.Methodology(m.Methodology),
			Confidence:   m.Confidence,
			ImpactWeight: m.ImpactWeight,
			Weights:      weights,
			Scenarios:    scenarios,
		}
	}

	for i, a := range c.Assets {
		deps := make([]types.AssetID, len(a.Dependencies))
		for j, d := range a.Dependencies {
			deps[j] = types.AssetID(d)
		}
		domains := make([]types.Domain, len(a.Domains))
		for j, d := range a.Domains {
			domains[j] = types.Domain(d)
		}
		catalog.Assets[i] = &model.BusinessAsset{
			ID:             types.AssetID(a.ID),
			Name:           a.Name,
			Type:           a.Type,
			Criticality:    types.Criticality(a.Criticality),
			Value:          a.Value,
			RegulatoryTags: append([]string(nil), a.RegulatoryTags...),
			Dependencies:   deps,
			Domains:        domains,
		}
	}

	for i, p := range c.Predictors {
		horizon, _ := p.horizon()
		factorIDs := make([]types.FactorID, len(p.Factors))
		for j, f := range p.Factors {
			factorIDs[j] = types.FactorID(f)
		}
		catalog.Predictors[i] = &model.PredictiveModel{
			ID:        types.PredictorID(p.ID),
			Name:      p.Name,
			Algorithm: types.Algorithm(p.Algorithm),
			Accuracy:  p.Accuracy,
			Horizon:   horizon,
			FactorIDs: factorIDs,
		}
	}

	for i, s := range c.Stress {
		overrides := make(map[types.FactorID]float64, len(s.Overrides))
		for id, v := range s.Overrides {
			overrides[types.FactorID(id)] = v
		}
		catalog.StressScenarios[i] = model.StressScenario{
			Name:        s.Name,
			Description: s.Description,
			Overrides:   overrides,
		}
	}

	return catalog
}
