package types

import "fmt"

// Algorithm is the forecasting archetype of a predictive model
type Algorithm string

const (
	AlgorithmTimeSeries Algorithm = "time-series"
	AlgorithmEnsemble   Algorithm = "ensemble"
	AlgorithmMonteCarlo Algorithm = "monte-carlo"
	AlgorithmBayesian   Algorithm = "bayesian"
)

// IsValid checks if the algorithm is valid
func (a Algorithm) IsValid() bool {
	switch a {
	case AlgorithmTimeSeries,
		AlgorithmEnsemble,
		AlgorithmMonteCarlo,
		AlgorithmBayesian:
		return true
	default:
		return false
	}
}

// String returns the string representation of the algorithm
func (a Algorithm) String() string {
	return string(a)
}

// ParseAlgorithm parses a string into an Algorithm
func ParseAlgorithm(s string) (Algorithm, error) {
	a := Algorithm(s)
	if !a.IsValid() {
		return "", fmt.Errorf("invalid algorithm: %s", s)
	}
	return a, nil
}
