package slack

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tyche/pkg/domain/model"
	"github.com/secmon-lab/tyche/pkg/domain/types"
	"github.com/secmon-lab/tyche/pkg/utils/async"
	"github.com/secmon-lab/tyche/pkg/utils/logging"
	"github.com/slack-go/slack"
)

// Dispatcher runs a send function, normally on a separate goroutine
type Dispatcher func(ctx context.Context, handler func(ctx context.Context) error)

// Notifier posts an alert when the executive metrics cross the tolerance or appetite threshold.
// It implements interfaces.Subscriber.
type Notifier struct {
	svc      Service
	channel  string
	dispatch Dispatcher

	mu       sync.Mutex
	breached bool
	exceeded bool
}

// NotifierOption configures a Notifier
type NotifierOption func(*Notifier)

// WithDispatcher replaces async.Dispatch
func WithDispatcher(d Dispatcher) NotifierOption {
	return func(n *Notifier) {
		n.dispatch = d
	}
}

// NewNotifier creates a breach alert notifier posting to channel
func NewNotifier(svc Service, channel string, opts ...NotifierOption) *Notifier {
	n := &Notifier{
		svc:      svc,
		channel:  channel,
		dispatch: async.Dispatch,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Notify handles executive metrics events and ignores the rest
func (n *Notifier) Notify(ctx context.Context, event model.Event) {
	if event.Type != types.EventExecutiveMetricsUpdated {
		return
	}
	metrics, ok := event.Payload.(*model.ExecutiveMetrics)
	if !ok || metrics == nil {
		return
	}

	transitions := n.transitions(metrics)
	if len(transitions) == 0 {
		return
	}

	blocks := buildAlertBlocks(event.CycleID, metrics, transitions)
	text := fallbackText(metrics, transitions)
	n.dispatch(ctx, func(ctx context.Context) error {
		ts, err := n.svc.PostMessage(ctx, n.channel, blocks, text)
		if err != nil {
			return goerr.Wrap(err, "failed to post risk alert", goerr.V("cycle_id", event.CycleID))
		}
		logging.From(ctx).Info("risk alert posted", "channel", n.channel, "ts", ts, "cycle_id", event.CycleID)
		return nil
	})
}

// transitions compares metrics against the last seen state and records the new state
func (n *Notifier) transitions(metrics *model.ExecutiveMetrics) []Transition {
	n.mu.Lock()
	defer n.mu.Unlock()

	var result []Transition
	if metrics.ToleranceBreached != n.breached {
		if metrics.ToleranceBreached {
			result = append(result, TransitionToleranceBreached)
		} else {
			result = append(result, TransitionToleranceRecovered)
		}
	}
	if metrics.AppetiteExceeded != n.exceeded {
		if metrics.AppetiteExceeded {
			result = append(result, TransitionAppetiteExceeded)
		} else {
			result = append(result, TransitionAppetiteRecovered)
		}
	}
	n.breached = metrics.ToleranceBreached
	n.exceeded = metrics.AppetiteExceeded
	return result
}

func buildAlertBlocks(cycleID model.CycleID, metrics *model.ExecutiveMetrics, transitions []Transition) []slack.Block {
	head := transitions[0]
	blocks := []slack.Block{
		slack.NewHeaderBlock(
			slack.NewTextBlockObject(slack.PlainTextType, head.Emoji()+" "+head.Title(), true, false),
		),
	}

	fields := []*slack.TextBlockObject{
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Overall score*\n%.3f", metrics.OverallScore), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Trend*\n%s", metrics.Trend), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Tolerance*\n%.2f", metrics.Thresholds.Tolerance), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Appetite*\n%.2f", metrics.Thresholds.Appetite), false, false),
	}
	blocks = append(blocks, slack.NewSectionBlock(nil, fields, nil))

	if len(metrics.TopRisks) > 0 {
		lines := make([]string, len(metrics.TopRisks))
		for i, r := range metrics.TopRisks {
			lines[i] = fmt.Sprintf("%d. *%s* (%s) %.3f %s", i+1, r.Name, r.Domain, r.Score, r.Trend)
		}
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, "*Top risks*\n"+strings.Join(lines, "\n"), false, false),
			nil, nil,
		))
	}

	contextParts := make([]string, 0, len(transitions)+1)
	for _, t := range transitions {
		contextParts = append(contextParts, t.Title())
	}
	if cycleID != "" {
		contextParts = append(contextParts, fmt.Sprintf("Cycle: `%s`", cycleID))
	}
	blocks = append(blocks, slack.NewContextBlock("",
		slack.NewTextBlockObject(slack.MarkdownType, strings.Join(contextParts, "  |  "), false, false),
	))

	return blocks
}

func fallbackText(metrics *model.ExecutiveMetrics, transitions []Transition) string {
	titles := make([]string, len(transitions))
	for i, t := range transitions {
		titles[i] = t.Title()
	}
	return fmt.Sprintf("%s (overall score %.3f)", strings.Join(titles, ", "), metrics.OverallScore)
}
