package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/secmon-lab/tyche/pkg/domain/types"
)

// DefaultPredictionBuffer is the number of past predictions a model keeps
const DefaultPredictionBuffer = 10

// Prediction is one forecast produced by a predictive model
type Prediction struct {
	ID         string            `json:"id"`
	ModelID    types.PredictorID `json:"model_id"`
	Timestamp  time.Time         `json:"timestamp"`
	TargetDate time.Time         `json:"target_date"`
	Value      float64           `json:"value"`
	Confidence float64           `json:"confidence"`
	Algorithm  types.Algorithm   `json:"algorithm"`
}

// NewPredictionID generates a new UUID v7 prediction ID
func NewPredictionID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// PredictiveModel forecasts the overall risk score with a given algorithm archetype
type PredictiveModel struct {
	ID          types.PredictorID
	Name        string
	Algorithm   types.Algorithm
	Accuracy    float64
	Horizon     time.Duration
	FactorIDs   []types.FactorID
	Predictions []Prediction
}

// Record appends p, keeping at most limit predictions
func (m *PredictiveModel) Record(p Prediction, limit int) {
	if limit <= 0 {
		limit = DefaultPredictionBuffer
	}
	m.Predictions = append(m.Predictions, p)
	if over := len(m.Predictions) - limit; over > 0 {
		m.Predictions = append([]Prediction(nil), m.Predictions[over:]...)
	}
}

// Latest returns the most recent prediction
func (m *PredictiveModel) Latest() (Prediction, bool) {
	if len(m.Predictions) == 0 {
		return Prediction{}, false
	}
	return m.Predictions[len(m.Predictions)-1], true
}

// Clone returns a deep copy of the model
func (m *PredictiveModel) Clone() *PredictiveModel {
	c := *m
	c.FactorIDs = append([]types.FactorID(nil), m.FactorIDs...)
	c.Predictions = append([]Prediction(nil), m.Predictions...)
	return &c
}
