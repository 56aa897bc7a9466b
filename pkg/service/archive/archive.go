package archive

import (
	"context"
	"encoding/json"
	"path"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tyche/pkg/domain/model"
	"github.com/secmon-lab/tyche/pkg/domain/types"
	"github.com/secmon-lab/tyche/pkg/utils/async"
	"github.com/secmon-lab/tyche/pkg/utils/logging"
)

// Storage persists a single object
type Storage interface {
	Put(ctx context.Context, path string, data []byte) error
}

// Dispatcher runs an upload, normally on a separate goroutine
type Dispatcher func(ctx context.Context, handler func(ctx context.Context) error)

// Record is the JSON envelope stored for each archived snapshot
type Record struct {
	CycleID   model.CycleID   `json:"cycle_id"`
	Kind      types.EventType `json:"kind"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   any             `json:"payload"`
}

// archived lists the events whose payloads are stored
var archived = map[types.EventType]bool{
	types.EventCorrelationUpdated:          true,
	types.EventPredictionsGenerated:        true,
	types.EventExecutiveMetricsUpdated:     true,
	types.EventQuantitativeAnalysisUpdated: true,
}

// Archiver stores cycle snapshots as JSON objects. It implements interfaces.Subscriber.
type Archiver struct {
	storage  Storage
	prefix   string
	dispatch Dispatcher
}

// Option configures an Archiver
type Option func(*Archiver)

// WithPrefix sets the object path prefix
func WithPrefix(prefix string) Option {
	return func(a *Archiver) {
		a.prefix = prefix
	}
}

// WithDispatcher replaces async.Dispatch
func WithDispatcher(d Dispatcher) Option {
	return func(a *Archiver) {
		a.dispatch = d
	}
}

// New creates an Archiver writing to storage
func New(storage Storage, opts ...Option) *Archiver {
	a := &Archiver{
		storage:  storage,
		dispatch: async.Dispatch,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ObjectPath returns <prefix>/yyyy/mm/dd/<cycleID>-<kind>.json for the event, using its UTC date
func (a *Archiver) ObjectPath(cycleID model.CycleID, kind types.EventType, ts time.Time) string {
	ts = ts.UTC()
	return path.Join(a.prefix, ts.Format("2006"), ts.Format("01"), ts.Format("02"),
		string(cycleID)+"-"+kind.String()+".json")
}

// Notify archives cycle snapshots; engine lifecycle events and unlisted kinds are ignored
func (a *Archiver) Notify(ctx context.Context, event model.Event) {
	if !archived[event.Type] || event.CycleID == "" {
		return
	}

	data, err := json.Marshal(Record{
		CycleID:   event.CycleID,
		Kind:      event.Type,
		Timestamp: event.Timestamp,
		Payload:   event.Payload,
	})
	if err != nil {
		logging.From(ctx).Error("failed to marshal archive record", "error", err, "kind", event.Type)
		return
	}

	objectPath := a.ObjectPath(event.CycleID, event.Type, event.Timestamp)
	a.dispatch(ctx, func(ctx context.Context) error {
		if err := a.storage.Put(ctx, objectPath, data); err != nil {
			return goerr.Wrap(err, "failed to archive snapshot", goerr.V("path", objectPath))
		}
		logging.From(ctx).Debug("snapshot archived", "path", objectPath)
		return nil
	})
}
