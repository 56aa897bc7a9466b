package usecase

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for use case layer
var (
	// Not found errors
	ErrFactorNotFound    = goerr.New("risk factor not found")
	ErrModelNotFound     = goerr.New("risk model not found")
	ErrPredictorNotFound = goerr.New("predictive model not found")
	ErrScenarioNotFound  = goerr.New("stress scenario not found")

	// Lifecycle errors
	ErrCycleInProgress = goerr.New("recomputation cycle already in progress")
	ErrEngineStopped   = goerr.New("engine is stopped")
	ErrNotInitialized  = goerr.New("engine is not initialized")

	// Perturbation errors
	ErrRestorationFailure = goerr.New("failed to restore factor values after perturbation")
	ErrPerturbationPanic  = goerr.New("panic during perturbation")
)

// Context keys for error values
const (
	FactorIDKey    = "factor_id"
	ModelIDKey     = "model_id"
	PredictorIDKey = "predictor_id"
	ScenarioKey    = "scenario"
	StageKey       = "stage"
	CycleIDKey     = "cycle_id"
)
