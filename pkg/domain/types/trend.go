package types

import "fmt"

// Trend is the direction a factor or score is moving in
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendImproving  Trend = "improving"
	TrendStable     Trend = "stable"
)

// IsValid checks if the trend is valid
func (t Trend) IsValid() bool {
	switch t {
	case TrendIncreasing,
		TrendDecreasing,
		TrendImproving,
		TrendStable:
		return true
	default:
		return false
	}
}

// Normalize returns the trend, treating empty as TrendStable
func (t Trend) Normalize() Trend {
	if t == "" {
		return TrendStable
	}
	return t
}

// String returns the string representation of the trend
func (t Trend) String() string {
	return string(t)
}

// ParseTrend parses a string into a Trend
func ParseTrend(s string) (Trend, error) {
	t := Trend(s).Normalize()
	if !t.IsValid() {
		return "", fmt.Errorf("invalid trend: %s", s)
	}
	return t, nil
}

// TrendThreshold is the minimum absolute change that counts as movement
const TrendThreshold = 0.05

// TrendOf classifies the change from previous to current
func TrendOf(previous, current float64) Trend {
	delta := current - previous
	switch {
	case delta > TrendThreshold:
		return TrendIncreasing
	case delta < -TrendThreshold:
		return TrendDecreasing
	default:
		return TrendStable
	}
}
