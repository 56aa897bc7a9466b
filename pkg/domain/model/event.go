package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/secmon-lab/tyche/pkg/domain/types"
)

// CycleID identifies one recomputation cycle
type CycleID string

// NewCycleID generates a new UUID v7 CycleID
func NewCycleID() CycleID {
	return CycleID(uuid.Must(uuid.NewV7()).String())
}

// Event is a notification published by the engine. Payload holds a copy of the
// snapshot relevant to Type, so subscribers may keep it.
type Event struct {
	Type      types.EventType
	CycleID   CycleID
	Timestamp time.Time
	Payload   any
}

// CycleReport summarizes one recomputation cycle
type CycleReport struct {
	CycleID    CycleID
	StartedAt  time.Time
	FinishedAt time.Time
	Errors     map[string]error
	Warnings   []DataQualityWarning
}

// HasErrors reports whether any stage failed
func (r *CycleReport) HasErrors() bool {
	return len(r.Errors) > 0
}
