package types

import "fmt"

// Criticality ranks how essential a business asset is
type Criticality string

const (
	CriticalityLow      Criticality = "low"
	CriticalityMedium   Criticality = "medium"
	CriticalityHigh     Criticality = "high"
	CriticalityCritical Criticality = "critical"
)

// IsValid checks if the criticality is valid
func (c Criticality) IsValid() bool {
	switch c {
	case CriticalityLow,
		CriticalityMedium,
		CriticalityHigh,
		CriticalityCritical:
		return true
	default:
		return false
	}
}

// Weight returns the multiplier applied to an asset's risk level
func (c Criticality) Weight() float64 {
	switch c {
	case CriticalityLow:
		return 0.5
	case CriticalityMedium:
		return 0.75
	case CriticalityCritical:
		return 1.25
	default:
		return 1.0
	}
}

// String returns the string representation of the criticality
func (c Criticality) String() string {
	return string(c)
}

// ParseCriticality parses a string into a Criticality
func ParseCriticality(s string) (Criticality, error) {
	c := Criticality(s)
	if !c.IsValid() {
		return "", fmt.Errorf("invalid criticality: %s", s)
	}
	return c, nil
}
