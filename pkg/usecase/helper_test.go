package usecase_test

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/tyche/pkg/domain/model"
	"github.com/secmon-lab/tyche/pkg/domain/types"
	"github.com/secmon-lab/tyche/pkg/repository/memory"
	"github.com/secmon-lab/tyche/pkg/usecase"
)

// constSource always returns the same draws
type constSource struct {
	u float64
}

func (c constSource) Float64() float64     { return c.u }
func (c constSource) NormFloat64() float64 { return 0 }

func near(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

// recorder collects published events
type recorder struct {
	mu     sync.Mutex
	events []model.Event
}

func (r *recorder) Notify(ctx context.Context, event model.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) types() []types.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]types.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

// testCatalog has zero-volatility, stable factors so cycles leave values unchanged
func testCatalog() *model.Catalog {
	return &model.Catalog{
		Thresholds: model.Thresholds{Tolerance: 0.9, Appetite: 0.3},
		Factors: []*model.RiskFactor{
			{ID: "threat_landscape", Name: "Threat landscape", Domain: types.DomainCyber, Value: 0.75},
			{ID: "patch_latency", Name: "Patch latency", Domain: types.DomainCyber, Value: 0.4},
			{ID: "liquidity", Name: "Liquidity", Domain: types.DomainFinancial, Value: 0.3},
			{ID: "vendor_health", Name: "Vendor health", Domain: types.DomainThirdParty, Value: 0.6},
		},
		Models: []*model.RiskModel{
			{
				ID:           "cyber_exposure",
				Name:         "Cyber exposure",
				Domain:       types.DomainCyber,
				Methodology:  types.MethodologyRCSA,
				Confidence:   0.8,
				ImpactWeight: 200000,
				Weights:      map[types.FactorID]float64{"threat_landscape": 0.6, "patch_latency": 0.4},
			},
			{
				ID:           "breach_scenarios",
				Name:         "Breach scenarios",
				Domain:       types.DomainCyber,
				Methodology:  types.MethodologyScenario,
				ImpactWeight: 150000,
				Weights:      map[types.FactorID]float64{"threat_landscape": 1},
				Scenarios: []model.Scenario{
					{Name: "base", Probability: 0.7, ImpactMultiplier: 1},
					{Name: "severe", Probability: 0.3, ImpactMultiplier: 1.2},
				},
			},
			{
				ID:           "liquidity_risk",
				Name:         "Liquidity risk",
				Domain:       types.DomainFinancial,
				Methodology:  types.MethodologyFAIR,
				Confidence:   0.5,
				ImpactWeight: 300000,
				Weights:      map[types.FactorID]float64{"liquidity": 1},
			},
			{
				ID:           "supplier_risk",
				Name:         "Supplier risk",
				Domain:       types.DomainThirdParty,
				Methodology:  types.MethodologyMonteCarlo,
				ImpactWeight: 100000,
				Weights:      map[types.FactorID]float64{"vendor_health": 0.7, "retired_factor": 0.3},
			},
		},
		Assets: []*model.BusinessAsset{
			{ID: "payments", Name: "Payments", Criticality: types.CriticalityCritical, Value: 600000, Domains: []types.Domain{types.DomainCyber}},
			{ID: "treasury", Name: "Treasury", Criticality: types.CriticalityMedium, Value: 400000, Domains: []types.Domain{types.DomainFinancial}},
		},
		Predictors: []*model.PredictiveModel{
			{ID: "trend_forecast", Algorithm: types.AlgorithmTimeSeries, Accuracy: 0.8, Horizon: time.Hour},
			{ID: "ensemble_forecast", Algorithm: types.AlgorithmEnsemble, Accuracy: 0.7, Horizon: time.Hour},
			{ID: "tail_forecast", Algorithm: types.AlgorithmMonteCarlo, Accuracy: 0.6, Horizon: time.Hour},
			{ID: "posterior", Algorithm: types.AlgorithmBayesian, Accuracy: 0.65, Horizon: time.Hour, FactorIDs: []types.FactorID{"threat_landscape", "patch_latency"}},
		},
		StressScenarios: []model.StressScenario{
			{Name: "threat_surge", Overrides: map[types.FactorID]float64{"threat_landscape": 0.95}},
			{Name: "vendor_collapse", Overrides: map[types.FactorID]float64{"vendor_health": 1, "unknown_factor": 0.5}},
		},
	}
}

func newTestEngine(t *testing.T, opts ...usecase.EngineOption) *usecase.Engine {
	t.Helper()
	cfg := usecase.DefaultEngineConfig()
	cfg.PortfolioVolatility = 0.2
	cfg.Scoring.MonteCarloSamples = 200
	cfg.Prediction.Samples = 200

	base := []usecase.EngineOption{usecase.WithConfig(cfg), usecase.WithSeed(7)}
	e := usecase.NewEngine(memory.New(), append(base, opts...)...)
	gt.NoError(t, e.Init(context.Background(), testCatalog())).Required()
	return e
}

// factorState captures values bit for bit along with history lengths
func factorState(t *testing.T, e *usecase.Engine) map[types.FactorID][2]uint64 {
	t.Helper()
	factors, err := e.RiskFactors(context.Background())
	gt.NoError(t, err).Required()
	state := make(map[types.FactorID][2]uint64, len(factors))
	for _, f := range factors {
		state[f.ID] = [2]uint64{math.Float64bits(f.Value), uint64(f.History.Len())}
	}
	return state
}
