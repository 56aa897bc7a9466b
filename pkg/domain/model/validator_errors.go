package model

import "github.com/m-mizutani/goerr/v2"

// Validation errors
var (
	ErrWeightsNotNormalized       = goerr.New("model weights must sum to 1")
	ErrProbabilitiesNotNormalized = goerr.New("scenario probabilities must sum to 1")
	ErrOutOfRange                 = goerr.New("value out of range")
	ErrDuplicateID                = goerr.New("duplicate ID")
	ErrInvalidEnum                = goerr.New("invalid enumeration value")
	ErrMissingScenarios           = goerr.New("scenario methodology requires at least one scenario")
)

// Context keys for error values
const (
	FactorIDKey    = "factor_id"
	ModelIDKey     = "model_id"
	AssetIDKey     = "asset_id"
	PredictorIDKey = "predictor_id"
	ScenarioKey    = "scenario"
	ValueKey       = "value"
	SumKey         = "sum"
)
