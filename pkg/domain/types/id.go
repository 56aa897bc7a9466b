package types

import (
	"regexp"

	"github.com/m-mizutani/goerr/v2"
)

var idPattern = regexp.MustCompile(`^[a-z0-9]+([_-][a-z0-9]+)*$`)

// ErrInvalidID is returned when an identifier is empty or malformed
var ErrInvalidID = goerr.New("invalid ID")

// FactorID identifies a primitive risk indicator
type FactorID string

// Validate checks if the FactorID is valid
func (id FactorID) Validate() error {
	return validateID("factor", string(id))
}

// String returns the string representation of FactorID
func (id FactorID) String() string {
	return string(id)
}

// ModelID identifies a weighted composite risk model
type ModelID string

// Validate checks if the ModelID is valid
func (id ModelID) Validate() error {
	return validateID("model", string(id))
}

// String returns the string representation of ModelID
func (id ModelID) String() string {
	return string(id)
}

// AssetID identifies a business asset
type AssetID string

// Validate checks if the AssetID is valid
func (id AssetID) Validate() error {
	return validateID("asset", string(id))
}

// String returns the string representation of AssetID
func (id AssetID) String() string {
	return string(id)
}

// PredictorID identifies a predictive model
type PredictorID string

// Validate checks if the PredictorID is valid
func (id PredictorID) Validate() error {
	return validateID("predictor", string(id))
}

// String returns the string representation of PredictorID
func (id PredictorID) String() string {
	return string(id)
}

func validateID(kind, id string) error {
	if id == "" {
		return goerr.Wrap(ErrInvalidID, kind+" ID cannot be empty")
	}
	if !idPattern.MatchString(id) {
		return goerr.Wrap(ErrInvalidID, kind+" ID must be lowercase alphanumeric with hyphens or underscores", goerr.V("id", id))
	}
	return nil
}
