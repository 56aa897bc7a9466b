package usecase

import (
	"context"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tyche/pkg/domain/model"
	"github.com/secmon-lab/tyche/pkg/domain/types"
	"github.com/secmon-lab/tyche/pkg/service/stats"
	"github.com/secmon-lab/tyche/pkg/utils/logging"
)

// overallScore is the mean of the committed model scores
func overallScore(models []*model.RiskModel) float64 {
	scores := make([]float64, len(models))
	for i, m := range models {
		scores[i] = m.CurrentScore
	}
	return model.Clamp01(stats.Mean(scores))
}

// rankRisks orders models by score descending, breaking ties by ID, and truncates to n
func rankRisks(models []*model.RiskModel, n int) []model.RankedRisk {
	ranked := make([]model.RankedRisk, len(models))
	for i, m := range models {
		ranked[i] = model.RankedRisk{
			ModelID: m.ID,
			Name:    m.Name,
			Domain:  m.Domain,
			Score:   m.CurrentScore,
			Trend:   m.Trend,
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].ModelID < ranked[j].ModelID
	})
	if n >= 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

func sortFactors(factors []*model.RiskFactor) {
	sort.Slice(factors, func(i, j int) bool { return factors[i].ID < factors[j].ID })
}

// pushTrend appends v to buf keeping at most capacity values
func pushTrend(buf []float64, v float64, capacity int) []float64 {
	buf = append(buf, v)
	if over := len(buf) - capacity; over > 0 {
		buf = append([]float64(nil), buf[over:]...)
	}
	return buf
}

// trendOf compares the newest with the oldest buffered score
func trendOf(buf []float64) types.Trend {
	if len(buf) < 2 {
		return types.TrendStable
	}
	return types.TrendOf(buf[0], buf[len(buf)-1])
}

func (e *Engine) executiveStage(ctx context.Context, report *model.CycleReport) error {
	impact, err := e.updateBusinessImpact(ctx)
	if err != nil {
		return err
	}

	models, err := e.repo.RiskModel().List(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to list risk models")
	}
	overall := overallScore(models)

	e.viewMu.Lock()
	thresholds := e.thresholds
	previous := e.executive
	e.trend = pushTrend(e.trend, overall, e.cfg.TrendBuffer)
	metrics := &model.ExecutiveMetrics{
		OverallScore:      overall,
		Thresholds:        thresholds,
		ToleranceBreached: overall > thresholds.Tolerance,
		AppetiteExceeded:  overall > thresholds.Appetite,
		TopRisks:          rankRisks(models, e.cfg.TopRisks),
		Trend:             trendOf(e.trend),
		BusinessImpact:    impact,
		CalculatedAt:      e.now(),
	}
	e.executive = metrics
	e.viewMu.Unlock()

	if previous == nil || previous.ToleranceBreached != metrics.ToleranceBreached || previous.AppetiteExceeded != metrics.AppetiteExceeded {
		logging.From(ctx).Info("Risk threshold state changed",
			"overall_score", overall,
			"tolerance_breached", metrics.ToleranceBreached,
			"appetite_exceeded", metrics.AppetiteExceeded)
	}

	e.publish(ctx, types.EventExecutiveMetricsUpdated, report.CycleID, metrics.Clone())
	return nil
}
