// Package stats holds the numerical routines shared by the analyzers.
package stats

import (
	"math"
	"sort"

	"github.com/secmon-lab/tyche/pkg/domain/interfaces"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var zscoreTable = map[float64]float64{
	0.90: 1.282,
	0.95: 1.645,
	0.99: 2.326,
}

// ZScore returns the one-sided standard normal quantile for confidence c.
// Common levels use the fixed table; others fall back to the exact quantile.
// Confidence outside (0,1) yields 0.
func ZScore(c float64) float64 {
	for level, z := range zscoreTable {
		if math.Abs(level-c) < 1e-9 {
			return z
		}
	}
	if c <= 0 || c >= 1 || math.IsNaN(c) {
		return 0
	}
	return distuv.UnitNormal.Quantile(c)
}

// ValueAtRisk is the parametric VaR of total exposed value at confidence c
func ValueAtRisk(total, volatility, c float64) float64 {
	return total * volatility * ZScore(c)
}

// Pearson returns the correlation coefficient of x and y and the sample size.
// Histories of different lengths are not comparable and yield (0, 0).
// Fewer than two points or zero variance yield 0.
func Pearson(x, y []float64) (float64, int) {
	if len(x) != len(y) {
		return 0, 0
	}
	n := len(x)
	if n < 2 {
		return 0, n
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, n
	}
	return math.Max(-1, math.Min(1, r)), n
}

// LinearTrend fits values against their index with ordinary least squares
// and returns the intercept and slope
func LinearTrend(values []float64) (alpha, beta float64) {
	switch len(values) {
	case 0:
		return 0, 0
	case 1:
		return values[0], 0
	}
	xs := make([]float64, len(values))
	for i := range xs {
		xs[i] = float64(i)
	}
	alpha, beta = stat.LinearRegression(xs, values, nil, false)
	if math.IsNaN(alpha) || math.IsNaN(beta) {
		return stat.Mean(values, nil), 0
	}
	return alpha, beta
}

// Percentile returns the empirical p-quantile of values
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// Mean returns the arithmetic mean, 0 for an empty slice
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// PopVariance returns the population variance, 0 for an empty slice
func PopVariance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.PopVariance(values, nil)
}

// Sum adds values
func Sum(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return floats.Sum(values)
}

// LogNormal samples a log-normal multiplier with mean 1 and shape sigma by inverse transform
func LogNormal(src interfaces.RandomSource, sigma float64) float64 {
	dist := distuv.LogNormal{Mu: -sigma * sigma / 2, Sigma: sigma}
	u := src.Float64()
	if u <= 0 {
		u = math.SmallestNonzeroFloat64
	}
	return dist.Quantile(u)
}

// MeanLogNormal averages n log-normal multipliers
func MeanLogNormal(src interfaces.RandomSource, sigma float64, n int) float64 {
	if n <= 0 {
		return 1
	}
	draws := make([]float64, n)
	for i := range draws {
		draws[i] = LogNormal(src, sigma)
	}
	return stat.Mean(draws, nil)
}

// Uniform maps a draw from src onto [lo, hi)
func Uniform(src interfaces.RandomSource, lo, hi float64) float64 {
	return lo + (hi-lo)*src.Float64()
}
