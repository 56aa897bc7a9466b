package types

import "fmt"

// Methodology is the technique adjusting a raw weighted score into a model's reported score
type Methodology string

const (
	MethodologyFAIR       Methodology = "fair"
	MethodologyMonteCarlo Methodology = "monte-carlo"
	MethodologyVaR        Methodology = "var"
	MethodologyRCSA       Methodology = "rcsa"
	MethodologyTiered     Methodology = "tiered"
	MethodologyScenario   Methodology = "scenario"
)

// AllMethodologies returns all valid methodologies
func AllMethodologies() []Methodology {
	return []Methodology{
		MethodologyFAIR,
		MethodologyMonteCarlo,
		MethodologyVaR,
		MethodologyRCSA,
		MethodologyTiered,
		MethodologyScenario,
	}
}

// IsValid checks if the methodology is valid
func (m Methodology) IsValid() bool {
	switch m {
	case MethodologyFAIR,
		MethodologyMonteCarlo,
		MethodologyVaR,
		MethodologyRCSA,
		MethodologyTiered,
		MethodologyScenario:
		return true
	default:
		return false
	}
}

// IsStochastic reports whether the adjustment draws random samples
func (m Methodology) IsStochastic() bool {
	return m == MethodologyMonteCarlo
}

// String returns the string representation of the methodology
func (m Methodology) String() string {
	return string(m)
}

// ParseMethodology parses a string into a Methodology
func ParseMethodology(s string) (Methodology, error) {
	m := Methodology(s)
	if !m.IsValid() {
		return "", fmt.Errorf("invalid methodology: %s", s)
	}
	return m, nil
}
