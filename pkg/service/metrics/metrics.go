package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/secmon-lab/tyche/pkg/domain/model"
	"github.com/secmon-lab/tyche/pkg/utils/logging"
)

const namespace = "tyche"

// Stage results used as label values
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Registry holds the Prometheus collectors exported by the engine.
// It implements interfaces.Subscriber and its ObserveStage method matches usecase.StageObserver.
type Registry struct {
	reg *prometheus.Registry

	StageDuration *prometheus.HistogramVec
	StageErrors   *prometheus.CounterVec
	Events        *prometheus.CounterVec

	OverallScore      prometheus.Gauge
	ThresholdBreached *prometheus.GaugeVec
	BusinessImpact    prometheus.Gauge
	ModelScore        *prometheus.GaugeVec
	FactorValue       *prometheus.GaugeVec
	ValueAtRisk       *prometheus.GaugeVec
	ExpectedLoss      prometheus.Gauge
	UnexpectedLoss    prometheus.Gauge
}

// New creates a registry with all collectors registered on a dedicated prometheus.Registry
func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),

		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Duration of each cycle stage in seconds",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
			},
			[]string{"stage", "result"},
		),
		StageErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stage_errors_total",
				Help:      "Total number of failed cycle stages",
			},
			[]string{"stage"},
		),
		Events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Total number of engine notifications by type",
			},
			[]string{"type"},
		),
		OverallScore: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "overall_risk_score",
				Help:      "Impact-weighted overall risk score (0.0 to 1.0)",
			},
		),
		ThresholdBreached: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "threshold_breached",
				Help:      "Whether the overall score is above the threshold (1) or not (0)",
			},
			[]string{"threshold"},
		),
		BusinessImpact: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "business_impact_total",
				Help:      "Total potential business loss across assets",
			},
		),
		ModelScore: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "model_score",
				Help:      "Current score of each risk model",
			},
			[]string{"model_id", "domain"},
		),
		FactorValue: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "factor_value",
				Help:      "Current value of each risk factor",
			},
			[]string{"factor_id", "domain"},
		),
		ValueAtRisk: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "value_at_risk",
				Help:      "Parametric value at risk by confidence level",
			},
			[]string{"confidence"},
		),
		ExpectedLoss: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "expected_loss",
				Help:      "Expected loss over all risk models",
			},
		),
		UnexpectedLoss: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "unexpected_loss",
				Help:      "Unexpected loss over all risk models",
			},
		),
	}

	r.reg.MustRegister(
		r.StageDuration,
		r.StageErrors,
		r.Events,
		r.OverallScore,
		r.ThresholdBreached,
		r.BusinessImpact,
		r.ModelScore,
		r.FactorValue,
		r.ValueAtRisk,
		r.ExpectedLoss,
		r.UnexpectedLoss,
	)

	return r
}

// Gatherer returns the underlying registry
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler serves the registry in the Prometheus exposition format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// ObserveStage records the duration and outcome of one cycle stage
func (r *Registry) ObserveStage(stage string, elapsed time.Duration, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultError
		r.StageErrors.WithLabelValues(stage).Inc()
	}
	r.StageDuration.WithLabelValues(stage, result).Observe(elapsed.Seconds())
}

// Notify updates gauges from the event payload
func (r *Registry) Notify(ctx context.Context, event model.Event) {
	r.Events.WithLabelValues(event.Type.String()).Inc()

	switch payload := event.Payload.(type) {
	case []*model.RiskFactor:
		for _, f := range payload {
			r.FactorValue.WithLabelValues(f.ID.String(), f.Domain.String()).Set(f.Value)
		}
	case []*model.RiskModel:
		for _, m := range payload {
			r.ModelScore.WithLabelValues(m.ID.String(), m.Domain.String()).Set(m.CurrentScore)
		}
	case *model.ExecutiveMetrics:
		r.OverallScore.Set(payload.OverallScore)
		r.ThresholdBreached.WithLabelValues("tolerance").Set(boolGauge(payload.ToleranceBreached))
		r.ThresholdBreached.WithLabelValues("appetite").Set(boolGauge(payload.AppetiteExceeded))
		r.BusinessImpact.Set(payload.BusinessImpact.PotentialLoss)
	case *model.QuantitativeAnalysis:
		for confidence, v := range payload.VaR {
			r.ValueAtRisk.WithLabelValues(confidence).Set(v)
		}
		r.ExpectedLoss.Set(payload.ExpectedLoss)
		r.UnexpectedLoss.Set(payload.UnexpectedLoss)
	default:
		logging.From(ctx).Debug("event carries no metrics", "type", event.Type)
	}
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
