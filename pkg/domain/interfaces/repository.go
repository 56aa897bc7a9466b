package interfaces

import (
	"context"

	"github.com/secmon-lab/tyche/pkg/domain/model"
	"github.com/secmon-lab/tyche/pkg/domain/types"
)

// Repository defines the interface for engine state storage
type Repository interface {
	Factor() FactorRepository
	RiskModel() RiskModelRepository
	Asset() AssetRepository
	Predictor() PredictorRepository
}

// FactorRepository stores risk factors. Returned factors are copies.
type FactorRepository interface {
	// Put registers or replaces a factor
	Put(ctx context.Context, factor *model.RiskFactor) error

	// Get retrieves a factor by ID
	Get(ctx context.Context, id types.FactorID) (*model.RiskFactor, error)

	// List retrieves all factors ordered by ID
	List(ctx context.Context) ([]*model.RiskFactor, error)

	// SetValue overrides the current value only. History, trend and correlations are untouched.
	SetValue(ctx context.Context, id types.FactorID, value float64) error

	// Snapshot captures the current values of the given factors.
	// Unknown IDs are omitted from the snapshot.
	Snapshot(ctx context.Context, ids []types.FactorID) (model.FactorSnapshot, error)

	// Restore writes back values captured by Snapshot
	Restore(ctx context.Context, snapshot model.FactorSnapshot) error

	// SetCorrelations replaces the correlation map of every factor in one step
	SetCorrelations(ctx context.Context, correlations map[types.FactorID]map[types.FactorID]float64) error
}

// RiskModelRepository stores risk models. Returned models are copies.
type RiskModelRepository interface {
	Put(ctx context.Context, m *model.RiskModel) error
	Get(ctx context.Context, id types.ModelID) (*model.RiskModel, error)
	// List retrieves all models ordered by ID
	List(ctx context.Context) ([]*model.RiskModel, error)
	// CommitScores applies every update at once, shifting current scores to previous
	CommitScores(ctx context.Context, updates []model.ScoreUpdate) error
}

// AssetRepository stores business assets. Returned assets are copies.
type AssetRepository interface {
	Put(ctx context.Context, asset *model.BusinessAsset) error
	Get(ctx context.Context, id types.AssetID) (*model.BusinessAsset, error)
	List(ctx context.Context) ([]*model.BusinessAsset, error)
}

// PredictorRepository stores predictive models and their rolling predictions
type PredictorRepository interface {
	Put(ctx context.Context, m *model.PredictiveModel) error
	Get(ctx context.Context, id types.PredictorID) (*model.PredictiveModel, error)
	List(ctx context.Context) ([]*model.PredictiveModel, error)
	// Record appends a prediction, keeping at most limit entries
	Record(ctx context.Context, p model.Prediction, limit int) error
}
