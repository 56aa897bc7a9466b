package config_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/tyche/pkg/cli/config"
)

func TestSlack_Configure(t *testing.T) {
	t.Run("disabled without token", func(t *testing.T) {
		cfg := config.NewSlackForTest("", "")
		gt.Bool(t, cfg.IsConfigured()).False()
		n, err := cfg.Configure()
		gt.NoError(t, err)
		gt.Value(t, n).Nil()
	})

	t.Run("token requires channel", func(t *testing.T) {
		_, err := config.NewSlackForTest("xoxb-test", "").Configure()
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})

	t.Run("configured", func(t *testing.T) {
		n, err := config.NewSlackForTest("xoxb-test", "C123").Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, n).NotNil()
	})
}
