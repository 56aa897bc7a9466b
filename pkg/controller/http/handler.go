package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tyche/pkg/domain/model"
	"github.com/secmon-lab/tyche/pkg/domain/types"
	"github.com/secmon-lab/tyche/pkg/usecase"
	"github.com/secmon-lab/tyche/pkg/utils/errutil"
	"github.com/secmon-lab/tyche/pkg/utils/safe"
)

// ErrInvalidParameter is returned for malformed path or query parameters
var ErrInvalidParameter = goerr.New("invalid parameter")

// statusOf maps engine errors to HTTP status codes
func statusOf(err error) int {
	switch {
	case errors.Is(err, ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrFactorNotFound),
		errors.Is(err, usecase.ErrModelNotFound),
		errors.Is(err, usecase.ErrPredictorNotFound),
		errors.Is(err, usecase.ErrScenarioNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrCycleInProgress):
		return http.StatusConflict
	case errors.Is(err, usecase.ErrNotInitialized),
		errors.Is(err, usecase.ErrEngineStopped):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	safe.Write(r.Context(), w, data)
}

// intQuery parses an optional integer query parameter
func intQuery(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, goerr.Wrap(ErrInvalidParameter, "query parameter must be a non-negative integer",
			goerr.V("name", name), goerr.V("value", raw))
	}
	return n, nil
}

func factorID(r *http.Request) (types.FactorID, error) {
	id := types.FactorID(chi.URLParam(r, "id"))
	if err := id.Validate(); err != nil {
		return "", goerr.Wrap(ErrInvalidParameter, "invalid factor ID", goerr.V("id", id))
	}
	return id, nil
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, map[string]string{"status": "ok"})
}

func (s *Server) overviewHandler(w http.ResponseWriter, r *http.Request) {
	overview, err := s.engine.RiskOverview(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, overviewResponse{
		OverallScore:   overview.OverallScore,
		Models:         toModelResponses(overview.Models),
		Executive:      overview.Executive,
		BusinessImpact: overview.BusinessImpact,
	})
}

func (s *Server) factorsHandler(w http.ResponseWriter, r *http.Request) {
	factors, err := s.engine.RiskFactors(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := make([]factorResponse, len(factors))
	for i, f := range factors {
		resp[i] = toFactorResponse(f)
	}
	writeJSON(w, r, resp)
}

func (s *Server) factorHandler(w http.ResponseWriter, r *http.Request) {
	id, err := factorID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	f, err := s.engine.RiskFactor(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, toFactorResponse(f))
}

func (s *Server) factorHistoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := factorID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	n, err := intQuery(r, "n", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	points, err := s.engine.FactorHistory(r.Context(), id, n)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, points)
}

func (s *Server) modelsHandler(w http.ResponseWriter, r *http.Request) {
	models, err := s.engine.RiskModels(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, toModelResponses(models))
}

func (s *Server) modelHandler(w http.ResponseWriter, r *http.Request) {
	id := types.ModelID(chi.URLParam(r, "id"))
	if err := id.Validate(); err != nil {
		writeError(w, r, goerr.Wrap(ErrInvalidParameter, "invalid model ID", goerr.V("id", id)))
		return
	}
	m, err := s.engine.RiskModel(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, toModelResponse(m))
}

func (s *Server) topRisksHandler(w http.ResponseWriter, r *http.Request) {
	n, err := intQuery(r, "n", 5)
	if err != nil {
		writeError(w, r, err)
		return
	}
	risks, err := s.engine.TopRisks(r.Context(), n)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if risks == nil {
		risks = []model.RankedRisk{}
	}
	writeJSON(w, r, risks)
}

func (s *Server) predictionsHandler(w http.ResponseWriter, r *http.Request) {
	analysis, err := s.engine.PredictiveAnalysis(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := predictiveResponse{
		Models:       make([]predictorResponse, len(analysis.Models)),
		Quantitative: analysis.Quantitative,
	}
	for i, p := range analysis.Models {
		resp.Models[i] = toPredictorResponse(p)
	}
	writeJSON(w, r, resp)
}

func (s *Server) assetsHandler(w http.ResponseWriter, r *http.Request) {
	assets, err := s.engine.BusinessAssets(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	impact, err := s.engine.TotalBusinessImpact(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := assetsResponse{
		Assets:         make([]assetResponse, len(assets)),
		BusinessImpact: impact,
	}
	for i, a := range assets {
		resp.Assets[i] = toAssetResponse(a)
	}
	writeJSON(w, r, resp)
}

func (s *Server) correlationsHandler(w http.ResponseWriter, r *http.Request) {
	correlations := s.engine.CorrelationAnalysis(r.Context())
	if correlations == nil {
		correlations = []model.Correlation{}
	}
	writeJSON(w, r, correlations)
}

func (s *Server) executiveHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, s.engine.ExecutiveMetrics(r.Context()))
}

func (s *Server) quantitativeHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, s.engine.QuantitativeAnalysis(r.Context()))
}

func (s *Server) cycleHandler(w http.ResponseWriter, r *http.Request) {
	report, err := s.engine.RunCycle(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, toCycleResponse(report))
}

func (s *Server) stressHandler(w http.ResponseWriter, r *http.Request) {
	result, err := s.engine.StressTest(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, result)
}

func (s *Server) sensitivityHandler(w http.ResponseWriter, r *http.Request) {
	results, err := s.engine.Sensitivity(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if results == nil {
		results = []model.SensitivityResult{}
	}
	writeJSON(w, r, results)
}
