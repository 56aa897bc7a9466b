package usecase

import (
	"context"
	"math"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tyche/pkg/domain/model"
	"github.com/secmon-lab/tyche/pkg/domain/types"
	"github.com/secmon-lab/tyche/pkg/service/stats"
)

// correlate computes the Pearson coefficient of every distinct factor pair.
// Each pair is computed once and shared by both directions.
func correlate(factors []*model.RiskFactor) ([]model.Correlation, map[types.FactorID]map[types.FactorID]float64) {
	matrix := make(map[types.FactorID]map[types.FactorID]float64, len(factors))
	for _, f := range factors {
		matrix[f.ID] = map[types.FactorID]float64{}
	}

	values := make([][]float64, len(factors))
	for i, f := range factors {
		if f.History != nil {
			values[i] = f.History.Values()
		}
	}

	var list []model.Correlation
	for i := 0; i < len(factors); i++ {
		for j := i + 1; j < len(factors); j++ {
			r, n := stats.Pearson(values[i], values[j])
			a, b := factors[i].ID, factors[j].ID
			matrix[a][b] = r
			matrix[b][a] = r
			list = append(list, model.Correlation{
				FactorA:     a,
				FactorB:     b,
				Coefficient: r,
				Band:        types.BandOf(r),
				SampleSize:  n,
			})
		}
	}

	sortCorrelations(list)
	return list, matrix
}

// sortCorrelations orders by |r| descending, then by factor IDs
func sortCorrelations(list []model.Correlation) {
	sort.SliceStable(list, func(i, j int) bool {
		ai, aj := math.Abs(list[i].Coefficient), math.Abs(list[j].Coefficient)
		if ai != aj {
			return ai > aj
		}
		if list[i].FactorA != list[j].FactorA {
			return list[i].FactorA < list[j].FactorA
		}
		return list[i].FactorB < list[j].FactorB
	})
}

func (e *Engine) correlationStage(ctx context.Context, report *model.CycleReport) error {
	factors, err := e.repo.Factor().List(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to list factors")
	}

	list, matrix := correlate(factors)

	e.viewMu.Lock()
	if err := e.repo.Factor().SetCorrelations(ctx, matrix); err != nil {
		e.viewMu.Unlock()
		return goerr.Wrap(err, "failed to store correlations")
	}
	e.correlations = list
	e.viewMu.Unlock()

	e.publish(ctx, types.EventCorrelationUpdated, report.CycleID, append([]model.Correlation(nil), list...))
	return nil
}
