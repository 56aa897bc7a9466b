package async

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tyche/pkg/utils/errutil"
	"github.com/secmon-lab/tyche/pkg/utils/logging"
)

// ErrPanic wraps a value recovered from a dispatched handler
var ErrPanic = goerr.New("panic in async handler")

// Dispatch runs handler in a new goroutine so a slow sink never blocks the caller.
// The handler gets a background context carrying the caller's logger. Errors and
// panics are logged and reported through errutil.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	bgCtx := logging.With(context.Background(), logging.From(ctx))

	go func() {
		defer func() {
			if r := recover(); r != nil {
				_ = errutil.Handle(bgCtx, goerr.Wrap(ErrPanic, "recovered", goerr.V("panic", r)), "async handler panicked")
			}
		}()

		if err := handler(bgCtx); err != nil {
			_ = errutil.Handle(bgCtx, err, "async handler failed")
		}
	}()
}
