package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tyche/pkg/service/slack"
	"github.com/urfave/cli/v3"
)

type Slack struct {
	botToken  string
	channelID string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token (for threshold alerts)",
			Category:    "Slack",
			Destination: &x.botToken,
			Sources:     cli.EnvVars("TYCHE_SLACK_BOT_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "slack-channel-id",
			Usage:       "Slack channel ID receiving threshold alerts",
			Category:    "Slack",
			Destination: &x.channelID,
			Sources:     cli.EnvVars("TYCHE_SLACK_CHANNEL_ID"),
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
		slog.String("channel-id", x.channelID),
	)
}

// IsConfigured checks if Slack alerts are enabled
func (x *Slack) IsConfigured() bool {
	return x.botToken != ""
}

// Configure creates the alert notifier, or nil when Slack is not configured
func (x *Slack) Configure(opts ...slack.Option) (*slack.Notifier, error) {
	if !x.IsConfigured() {
		return nil, nil
	}
	if x.channelID == "" {
		return nil, goerr.Wrap(ErrInvalidConfig, "--slack-channel-id is required with --slack-bot-token")
	}

	svc, err := slack.New(x.botToken, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize slack service")
	}
	return slack.NewNotifier(svc, x.channelID), nil
}
