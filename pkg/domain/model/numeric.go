package model

import "math"

// Clamp01 bounds v to [0,1]. NaN becomes 0.
func Clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// Finite resolves NaN and ±Inf to 0
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// SumTolerance is the allowed deviation when weights or probabilities must sum to 1
const SumTolerance = 1e-6

// SumsToOne reports whether values add up to 1 within SumTolerance
func SumsToOne(values ...float64) bool {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return math.Abs(sum-1) <= SumTolerance
}
