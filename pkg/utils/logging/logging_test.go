package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/tyche/pkg/utils/logging"
)

func TestFrom(t *testing.T) {
	t.Run("falls back to default logger", func(t *testing.T) {
		gt.Value(t, logging.From(context.Background())).Equal(logging.Default())
	})

	t.Run("returns logger bound to context", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		ctx := logging.With(context.Background(), logger)

		logging.From(ctx).Info("hello", "factor_id", "threat_landscape")
		gt.String(t, buf.String()).Contains("factor_id=threat_landscape")
	})
}

func TestSetDefault(t *testing.T) {
	orig := logging.Default()
	defer logging.SetDefault(orig)

	var buf bytes.Buffer
	logging.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	logging.Default().Warn("breach")
	gt.String(t, buf.String()).Contains("breach")

	// nil is ignored
	logging.SetDefault(nil)
	gt.Value(t, logging.Default()).NotNil()
}
