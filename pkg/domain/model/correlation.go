package model

import "github.com/secmon-lab/tyche/pkg/domain/types"

// Correlation is the Pearson coefficient between two factor histories
type Correlation struct {
	FactorA     types.FactorID        `json:"factor_a"`
	FactorB     types.FactorID        `json:"factor_b"`
	Coefficient float64               `json:"coefficient"`
	Band        types.CorrelationBand `json:"band"`
	SampleSize  int                   `json:"sample_size"`
}
