package slack

import (
	"context"

	"github.com/slack-go/slack"
)

// Service provides the subset of the Slack API used for risk alerts
type Service interface {
	// PostMessage posts a Block Kit message to a channel and returns the message timestamp.
	// The text parameter is used as a fallback for notifications.
	PostMessage(ctx context.Context, channelID string, blocks []slack.Block, text string) (string, error)
}

// Transition is a change of the executive threshold state
type Transition string

const (
	TransitionToleranceBreached  Transition = "tolerance_breached"
	TransitionToleranceRecovered Transition = "tolerance_recovered"
	TransitionAppetiteExceeded   Transition = "appetite_exceeded"
	TransitionAppetiteRecovered  Transition = "appetite_recovered"
)

// Emoji returns the emoji shown in alert headers
func (t Transition) Emoji() string {
	switch t {
	case TransitionToleranceBreached:
		return ":rotating_light:"
	case TransitionAppetiteExceeded:
		return ":warning:"
	default:
		return ":white_check_mark:"
	}
}

// Title returns a human readable label
func (t Transition) Title() string {
	switch t {
	case TransitionToleranceBreached:
		return "Risk tolerance breached"
	case TransitionToleranceRecovered:
		return "Risk back within tolerance"
	case TransitionAppetiteExceeded:
		return "Risk appetite exceeded"
	case TransitionAppetiteRecovered:
		return "Risk back within appetite"
	}
	return string(t)
}
