package metrics_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/secmon-lab/tyche/pkg/domain/model"
	"github.com/secmon-lab/tyche/pkg/domain/types"
	"github.com/secmon-lab/tyche/pkg/service/metrics"
)

func TestObserveStage(t *testing.T) {
	r := metrics.New()

	r.ObserveStage("models", 5*time.Millisecond, nil)
	r.ObserveStage("models", 7*time.Millisecond, errors.New("boom"))
	r.ObserveStage("correlation", time.Millisecond, nil)

	gt.Value(t, testutil.ToFloat64(r.StageErrors.WithLabelValues("models"))).Equal(1.0)
	gt.Value(t, testutil.CollectAndCount(r.StageDuration)).Equal(3)
}

func TestNotify(t *testing.T) {
	r := metrics.New()
	ctx := context.Background()

	r.Notify(ctx, model.Event{
		Type: types.EventFactorsUpdated,
		Payload: []*model.RiskFactor{
			{ID: "threat_landscape", Domain: types.DomainCyber, Value: 0.75},
		},
	})
	r.Notify(ctx, model.Event{
		Type: types.EventScoresUpdated,
		Payload: []*model.RiskModel{
			{ID: "cyber_risk", Domain: types.DomainCyber, CurrentScore: 0.61},
		},
	})
	r.Notify(ctx, model.Event{
		Type: types.EventExecutiveMetricsUpdated,
		Payload: &model.ExecutiveMetrics{
			OverallScore:      0.72,
			ToleranceBreached: true,
			BusinessImpact:    model.BusinessImpact{PotentialLoss: 250000},
		},
	})
	r.Notify(ctx, model.Event{
		Type: types.EventQuantitativeAnalysisUpdated,
		Payload: &model.QuantitativeAnalysis{
			VaR:          map[string]float64{"0.95": 329000},
			ExpectedLoss: 1200,
		},
	})
	r.Notify(ctx, model.Event{Type: types.EventEngineStarted})

	gt.Value(t, testutil.ToFloat64(r.FactorValue.WithLabelValues("threat_landscape", "cyber"))).Equal(0.75)
	gt.Value(t, testutil.ToFloat64(r.ModelScore.WithLabelValues("cyber_risk", "cyber"))).Equal(0.61)
	gt.Value(t, testutil.ToFloat64(r.OverallScore)).Equal(0.72)
	gt.Value(t, testutil.ToFloat64(r.ThresholdBreached.WithLabelValues("tolerance"))).Equal(1.0)
	gt.Value(t, testutil.ToFloat64(r.ThresholdBreached.WithLabelValues("appetite"))).Equal(0.0)
	gt.Value(t, testutil.ToFloat64(r.BusinessImpact)).Equal(250000.0)
	gt.Value(t, testutil.ToFloat64(r.ValueAtRisk.WithLabelValues("0.95"))).Equal(329000.0)
	gt.Value(t, testutil.ToFloat64(r.ExpectedLoss)).Equal(1200.0)
	gt.Value(t, testutil.ToFloat64(r.Events.WithLabelValues("engine_started"))).Equal(1.0)
}

func TestHandler(t *testing.T) {
	r := metrics.New()
	r.OverallScore.Set(0.5)

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	gt.NoError(t, err).Required()
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	gt.NoError(t, err).Required()
	gt.Value(t, resp.StatusCode).Equal(http.StatusOK)
	gt.String(t, string(body)).Contains("tyche_overall_risk_score 0.5")
}

func TestNewRegistriesAreIndependent(t *testing.T) {
	a := metrics.New()
	b := metrics.New()
	a.OverallScore.Set(0.9)
	gt.Value(t, testutil.ToFloat64(b.OverallScore)).Equal(0.0)
}
