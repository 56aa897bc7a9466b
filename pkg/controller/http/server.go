package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/tyche/pkg/domain/model"
	"github.com/secmon-lab/tyche/pkg/domain/types"
)

// Engine is the analytics surface served over HTTP
type Engine interface {
	RiskOverview(ctx context.Context) (*model.RiskOverview, error)
	RiskFactors(ctx context.Context) ([]*model.RiskFactor, error)
	RiskFactor(ctx context.Context, id types.FactorID) (*model.RiskFactor, error)
	FactorHistory(ctx context.Context, id types.FactorID, n int) ([]model.HistoryPoint, error)
	RiskModels(ctx context.Context) ([]*model.RiskModel, error)
	RiskModel(ctx context.Context, id types.ModelID) (*model.RiskModel, error)
	TopRisks(ctx context.Context, n int) ([]model.RankedRisk, error)
	PredictiveAnalysis(ctx context.Context) (*model.PredictiveAnalysis, error)
	BusinessAssets(ctx context.Context) ([]*model.BusinessAsset, error)
	TotalBusinessImpact(ctx context.Context) (model.BusinessImpact, error)
	CorrelationAnalysis(ctx context.Context) []model.Correlation
	ExecutiveMetrics(ctx context.Context) *model.ExecutiveMetrics
	QuantitativeAnalysis(ctx context.Context) *model.QuantitativeAnalysis
	RunCycle(ctx context.Context) (*model.CycleReport, error)
	StressTest(ctx context.Context, name string) (*model.StressResult, error)
	Sensitivity(ctx context.Context) ([]model.SensitivityResult, error)
}

type Server struct {
	router  *chi.Mux
	engine  Engine
	metrics http.Handler
}

type Options func(*Server)

// WithMetrics exposes h at /metrics
func WithMetrics(h http.Handler) Options {
	return func(s *Server) {
		s.metrics = h
	}
}

func New(engine Engine, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		engine: engine,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(withLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/overview", s.overviewHandler)
		r.Get("/factors", s.factorsHandler)
		r.Get("/factors/{id}", s.factorHandler)
		r.Get("/factors/{id}/history", s.factorHistoryHandler)
		r.Get("/models", s.modelsHandler)
		r.Get("/models/{id}", s.modelHandler)
		r.Get("/top-risks", s.topRisksHandler)
		r.Get("/predictions", s.predictionsHandler)
		r.Get("/assets", s.assetsHandler)
		r.Get("/correlations", s.correlationsHandler)
		r.Get("/executive", s.executiveHandler)
		r.Get("/quantitative", s.quantitativeHandler)

		r.Post("/cycle", s.cycleHandler)
		r.Post("/stress/{name}", s.stressHandler)
		r.Post("/sensitivity", s.sensitivityHandler)
	})

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
