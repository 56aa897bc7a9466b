package types

import "math"

// CorrelationBand classifies the strength of a correlation coefficient
type CorrelationBand string

const (
	CorrelationStrong   CorrelationBand = "strong"
	CorrelationModerate CorrelationBand = "moderate"
	CorrelationWeak     CorrelationBand = "weak"
)

// BandOf returns the band for coefficient r
func BandOf(r float64) CorrelationBand {
	abs := math.Abs(r)
	switch {
	case abs > 0.7:
		return CorrelationStrong
	case abs > 0.3:
		return CorrelationModerate
	default:
		return CorrelationWeak
	}
}
