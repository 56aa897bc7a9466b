package interfaces

import (
	"context"

	"github.com/secmon-lab/tyche/pkg/domain/model"
)

// Subscriber receives engine notifications. Notify must not block for long;
// the engine calls subscribers synchronously after each stage commits.
type Subscriber interface {
	Notify(ctx context.Context, event model.Event)
}

// SubscriberFunc adapts a function to Subscriber
type SubscriberFunc func(ctx context.Context, event model.Event)

// Notify calls f(ctx, event)
func (f SubscriberFunc) Notify(ctx context.Context, event model.Event) {
	f(ctx, event)
}
