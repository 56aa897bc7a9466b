package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	httpctrl "github.com/secmon-lab/tyche/pkg/controller/http"
	"github.com/secmon-lab/tyche/pkg/domain/model"
	"github.com/secmon-lab/tyche/pkg/domain/types"
	"github.com/secmon-lab/tyche/pkg/repository/memory"
	"github.com/secmon-lab/tyche/pkg/service/metrics"
	"github.com/secmon-lab/tyche/pkg/usecase"
)

func testCatalog() *model.Catalog {
	return &model.Catalog{
		Factors: []*model.RiskFactor{
			{ID: "threat_landscape", Name: "Threat landscape", Domain: types.DomainCyber, Value: 0.75},
			{ID: "liquidity", Name: "Liquidity", Domain: types.DomainFinancial, Value: 0.3},
		},
		Models: []*model.RiskModel{
			{
				ID:           "cyber_exposure",
				Name:         "Cyber exposure",
				Domain:       types.DomainCyber,
				Methodology:  types.MethodologyRCSA,
				ImpactWeight: 200000,
				Weights:      map[types.FactorID]float64{"threat_landscape": 1},
			},
			{
				ID:           "liquidity_risk",
				Name:         "Liquidity risk",
				Domain:       types.DomainFinancial,
				Methodology:  types.MethodologyFAIR,
				ImpactWeight: 300000,
				Weights:      map[types.FactorID]float64{"liquidity": 1},
			},
		},
		Assets: []*model.BusinessAsset{
			{ID: "payments", Name: "Payments", Criticality: types.CriticalityHigh, Value: 1000000, Domains: []types.Domain{types.DomainCyber}},
		},
		Predictors: []*model.PredictiveModel{
			{ID: "trend_forecast", Algorithm: types.AlgorithmTimeSeries, Accuracy: 0.8},
		},
		StressScenarios: []model.StressScenario{
			{Name: "threat_surge", Overrides: map[types.FactorID]float64{"threat_landscape": 0.95}},
		},
	}
}

func setupServer(t *testing.T, opts ...httpctrl.Options) (*httptest.Server, *usecase.Engine) {
	t.Helper()
	cfg := usecase.DefaultEngineConfig()
	cfg.Scoring.MonteCarloSamples = 100
	cfg.Prediction.Samples = 100

	engine := usecase.NewEngine(memory.New(), usecase.WithConfig(cfg), usecase.WithSeed(11))
	gt.NoError(t, engine.Init(context.Background(), testCatalog())).Required()

	srv := httptest.NewServer(httpctrl.New(engine, opts...))
	t.Cleanup(srv.Close)
	return srv, engine
}

func doRequest(t *testing.T, method, url string, out any) int {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	gt.NoError(t, err).Required()
	resp, err := http.DefaultClient.Do(req)
	gt.NoError(t, err).Required()
	defer resp.Body.Close()

	if out != nil && resp.StatusCode == http.StatusOK {
		gt.NoError(t, json.NewDecoder(resp.Body).Decode(out)).Required()
	}
	return resp.StatusCode
}

func TestServer_Health(t *testing.T) {
	srv, _ := setupServer(t)
	var body map[string]string
	gt.Value(t, doRequest(t, http.MethodGet, srv.URL+"/health", &body)).Equal(http.StatusOK)
	gt.Value(t, body["status"]).Equal("ok")
}

func TestServer_CycleAndQueries(t *testing.T) {
	srv, _ := setupServer(t)

	var cycle struct {
		CycleID string            `json:"cycle_id"`
		Errors  map[string]string `json:"errors"`
	}
	gt.Value(t, doRequest(t, http.MethodPost, srv.URL+"/api/cycle", &cycle)).Equal(http.StatusOK)
	gt.String(t, cycle.CycleID).NotEqual("")
	gt.Value(t, len(cycle.Errors)).Equal(0)

	t.Run("factors", func(t *testing.T) {
		var factors []struct {
			ID    string  `json:"id"`
			Value float64 `json:"value"`
		}
		gt.Value(t, doRequest(t, http.MethodGet, srv.URL+"/api/factors", &factors)).Equal(http.StatusOK)
		gt.Array(t, factors).Length(2)
		gt.Value(t, factors[0].ID).Equal("liquidity")
	})

	t.Run("factor history", func(t *testing.T) {
		var points []model.HistoryPoint
		gt.Value(t, doRequest(t, http.MethodGet, srv.URL+"/api/factors/threat_landscape/history?n=1", &points)).Equal(http.StatusOK)
		gt.Array(t, points).Length(1)
	})

	t.Run("model", func(t *testing.T) {
		var m struct {
			ID           string  `json:"id"`
			Methodology  string  `json:"methodology"`
			CurrentScore float64 `json:"current_score"`
		}
		gt.Value(t, doRequest(t, http.MethodGet, srv.URL+"/api/models/cyber_exposure", &m)).Equal(http.StatusOK)
		gt.Value(t, m.Methodology).Equal("rcsa")
		gt.Number(t, m.CurrentScore).Greater(0)
	})

	t.Run("top risks", func(t *testing.T) {
		var risks []model.RankedRisk
		gt.Value(t, doRequest(t, http.MethodGet, srv.URL+"/api/top-risks?n=1", &risks)).Equal(http.StatusOK)
		gt.Array(t, risks).Length(1)
	})

	t.Run("overview", func(t *testing.T) {
		var overview struct {
			Models    []json.RawMessage       `json:"models"`
			Executive *model.ExecutiveMetrics `json:"executive"`
		}
		gt.Value(t, doRequest(t, http.MethodGet, srv.URL+"/api/overview", &overview)).Equal(http.StatusOK)
		gt.Array(t, overview.Models).Length(2)
		gt.Value(t, overview.Executive).NotNil()
	})

	t.Run("predictions", func(t *testing.T) {
		var analysis struct {
			Models []struct {
				ID          string             `json:"id"`
				Predictions []model.Prediction `json:"predictions"`
			} `json:"models"`
		}
		gt.Value(t, doRequest(t, http.MethodGet, srv.URL+"/api/predictions", &analysis)).Equal(http.StatusOK)
		gt.Array(t, analysis.Models).Length(1)
		gt.Array(t, analysis.Models[0].Predictions).Length(1)
	})

	t.Run("assets", func(t *testing.T) {
		var assets struct {
			Assets         []json.RawMessage    `json:"assets"`
			BusinessImpact model.BusinessImpact `json:"business_impact"`
		}
		gt.Value(t, doRequest(t, http.MethodGet, srv.URL+"/api/assets", &assets)).Equal(http.StatusOK)
		gt.Array(t, assets.Assets).Length(1)
		gt.Value(t, assets.BusinessImpact.TotalAssetValue).Equal(1000000.0)
	})

	t.Run("correlations", func(t *testing.T) {
		var correlations []model.Correlation
		gt.Value(t, doRequest(t, http.MethodGet, srv.URL+"/api/correlations", &correlations)).Equal(http.StatusOK)
	})

	t.Run("quantitative", func(t *testing.T) {
		var q model.QuantitativeAnalysis
		gt.Value(t, doRequest(t, http.MethodGet, srv.URL+"/api/quantitative", &q)).Equal(http.StatusOK)
		gt.Map(t, q.VaR).HasKey("0.95")
	})
}

func TestServer_StressAndSensitivity(t *testing.T) {
	srv, engine := setupServer(t)
	_, err := engine.RunCycle(context.Background())
	gt.NoError(t, err).Required()

	var result model.StressResult
	gt.Value(t, doRequest(t, http.MethodPost, srv.URL+"/api/stress/threat_surge", &result)).Equal(http.StatusOK)
	gt.Value(t, result.Name).Equal("threat_surge")
	gt.Number(t, result.Delta).Greater(0)

	f, err := engine.RiskFactor(context.Background(), "threat_landscape")
	gt.NoError(t, err).Required()
	gt.Value(t, f.Value).Equal(0.75)

	var sensitivity []model.SensitivityResult
	gt.Value(t, doRequest(t, http.MethodPost, srv.URL+"/api/sensitivity", &sensitivity)).Equal(http.StatusOK)
	gt.Array(t, sensitivity).Length(2)

	gt.Value(t, doRequest(t, http.MethodPost, srv.URL+"/api/stress/unknown", nil)).Equal(http.StatusNotFound)
}

func TestServer_ErrorStatus(t *testing.T) {
	srv, _ := setupServer(t)

	gt.Value(t, doRequest(t, http.MethodGet, srv.URL+"/api/factors/missing", nil)).Equal(http.StatusNotFound)
	gt.Value(t, doRequest(t, http.MethodGet, srv.URL+"/api/models/missing", nil)).Equal(http.StatusNotFound)
	gt.Value(t, doRequest(t, http.MethodGet, srv.URL+"/api/factors/threat_landscape/history?n=abc", nil)).Equal(http.StatusBadRequest)
	gt.Value(t, doRequest(t, http.MethodGet, srv.URL+"/api/top-risks?n=-1", nil)).Equal(http.StatusBadRequest)
}

type busyEngine struct {
	httpctrl.Engine
}

func (busyEngine) RunCycle(ctx context.Context) (*model.CycleReport, error) {
	return nil, goerr.Wrap(usecase.ErrCycleInProgress, "cycle skipped")
}

func TestServer_CycleConflict(t *testing.T) {
	srv := httptest.NewServer(httpctrl.New(busyEngine{}))
	defer srv.Close()

	gt.Value(t, doRequest(t, http.MethodPost, srv.URL+"/api/cycle", nil)).Equal(http.StatusConflict)
}

func TestServer_Metrics(t *testing.T) {
	registry := metrics.New()
	registry.OverallScore.Set(0.42)
	srv, _ := setupServer(t, httpctrl.WithMetrics(registry.Handler()))

	resp, err := http.Get(srv.URL + "/metrics")
	gt.NoError(t, err).Required()
	defer resp.Body.Close()
	gt.Value(t, resp.StatusCode).Equal(http.StatusOK)
}
