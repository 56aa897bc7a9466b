package memory

import (
	"github.com/secmon-lab/tyche/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	factor    *factorRepository
	riskModel *riskModelRepository
	asset     *assetRepository
	predictor *predictorRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		factor:    newFactorRepository(),
		riskModel: newRiskModelRepository(),
		asset:     newAssetRepository(),
		predictor: newPredictorRepository(),
	}
}

func (m *Memory) Factor() interfaces.FactorRepository {
	return m.factor
}

func (m *Memory) RiskModel() interfaces.RiskModelRepository {
	return m.riskModel
}

func (m *Memory) Asset() interfaces.AssetRepository {
	return m.asset
}

func (m *Memory) Predictor() interfaces.PredictorRepository {
	return m.predictor
}
