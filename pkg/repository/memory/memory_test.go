package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/tyche/pkg/domain/model"
	"github.com/secmon-lab/tyche/pkg/domain/types"
	"github.com/secmon-lab/tyche/pkg/repository/memory"
)

func TestFactorRepository(t *testing.T) {
	ctx := context.Background()
	repo := memory.New().Factor()

	gt.NoError(t, repo.Put(ctx, &model.RiskFactor{ID: "b_factor", Value: 0.2})).Required()
	gt.NoError(t, repo.Put(ctx, &model.RiskFactor{ID: "a_factor", Value: 0.9})).Required()

	t.Run("list is ordered and history allocated", func(t *testing.T) {
		factors, err := repo.List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, factors).Length(2)
		gt.Value(t, factors[0].ID).Equal(types.FactorID("a_factor"))
		gt.Value(t, factors[0].History).NotNil()
	})

	t.Run("get returns a copy", func(t *testing.T) {
		f, err := repo.Get(ctx, "a_factor")
		gt.NoError(t, err).Required()
		f.Value = 0
		again, err := repo.Get(ctx, "a_factor")
		gt.NoError(t, err).Required()
		gt.Value(t, again.Value).Equal(0.9)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.Get(ctx, "missing")
		gt.Error(t, err).Is(memory.ErrNotFound)
		gt.Error(t, repo.SetValue(ctx, "missing", 0.1)).Is(memory.ErrNotFound)
	})

	t.Run("snapshot and restore", func(t *testing.T) {
		snap, err := repo.Snapshot(ctx, []types.FactorID{"a_factor", "missing"})
		gt.NoError(t, err).Required()
		gt.Number(t, len(snap)).Equal(1)

		gt.NoError(t, repo.SetValue(ctx, "a_factor", 0.95)).Required()
		f, _ := repo.Get(ctx, "a_factor")
		gt.Value(t, f.Value).Equal(0.95)
		gt.Number(t, f.History.Len()).Equal(0)

		gt.NoError(t, repo.Restore(ctx, snap)).Required()
		f, _ = repo.Get(ctx, "a_factor")
		gt.Value(t, f.Value).Equal(0.9)
	})

	t.Run("restore rejects unknown factors without partial writes", func(t *testing.T) {
		err := repo.Restore(ctx, model.FactorSnapshot{"a_factor": 0.1, "missing": 0.3})
		gt.Error(t, err).Is(memory.ErrNotFound)
		f, _ := repo.Get(ctx, "a_factor")
		gt.Value(t, f.Value).Equal(0.9)
	})

	t.Run("correlations", func(t *testing.T) {
		gt.NoError(t, repo.SetCorrelations(ctx, map[types.FactorID]map[types.FactorID]float64{
			"a_factor": {"b_factor": 0.5},
			"b_factor": {"a_factor": 0.5},
		})).Required()
		f, _ := repo.Get(ctx, "b_factor")
		gt.Value(t, f.Correlations["a_factor"]).Equal(0.5)
	})
}

func TestRiskModelRepository_CommitScores(t *testing.T) {
	ctx := context.Background()
	repo := memory.New().RiskModel()
	gt.NoError(t, repo.Put(ctx, &model.RiskModel{ID: "cyber", Weights: map[types.FactorID]float64{"a": 1}})).Required()

	now := time.Now()
	gt.NoError(t, repo.CommitScores(ctx, []model.ScoreUpdate{{ModelID: "cyber", Score: 0.4, Calculated: now}})).Required()
	m, err := repo.Get(ctx, "cyber")
	gt.NoError(t, err).Required()
	gt.Value(t, m.CurrentScore).Equal(0.4)
	gt.Value(t, m.Trend).Equal(types.TrendStable)

	gt.NoError(t, repo.CommitScores(ctx, []model.ScoreUpdate{{ModelID: "cyber", Score: 0.6, Calculated: now}})).Required()
	m, _ = repo.Get(ctx, "cyber")
	gt.Value(t, m.PreviousScore).Equal(0.4)
	gt.Value(t, m.CurrentScore).Equal(0.6)
	gt.Value(t, m.Trend).Equal(types.TrendIncreasing)

	err = repo.CommitScores(ctx, []model.ScoreUpdate{{ModelID: "cyber", Score: 0.1}, {ModelID: "missing", Score: 0.2}})
	gt.Error(t, err).Is(memory.ErrNotFound)
	m, _ = repo.Get(ctx, "cyber")
	gt.Value(t, m.CurrentScore).Equal(0.6)
}

func TestPredictorRepository_Record(t *testing.T) {
	ctx := context.Background()
	repo := memory.New().Predictor()
	gt.NoError(t, repo.Put(ctx, &model.PredictiveModel{ID: "trend", Algorithm: types.AlgorithmTimeSeries})).Required()

	for i := 0; i < 12; i++ {
		gt.NoError(t, repo.Record(ctx, model.Prediction{ModelID: "trend", Value: float64(i)}, 10)).Required()
	}
	m, err := repo.Get(ctx, "trend")
	gt.NoError(t, err).Required()
	gt.Array(t, m.Predictions).Length(10)

	gt.Error(t, repo.Record(ctx, model.Prediction{ModelID: "missing"}, 10)).Is(memory.ErrNotFound)
}

func TestAssetRepository(t *testing.T) {
	ctx := context.Background()
	repo := memory.New().Asset()
	gt.NoError(t, repo.Put(ctx, &model.BusinessAsset{ID: "payments", Value: 100})).Required()

	assets, err := repo.List(ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, assets).Length(1)

	_, err = repo.Get(ctx, "ledger")
	gt.Error(t, err).Is(memory.ErrNotFound)
}
