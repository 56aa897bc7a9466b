package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/secmon-lab/tyche/pkg/utils/logging"
)

// Runner executes one recomputation cycle
type Runner interface {
	Run(ctx context.Context) error
}

// RunnerFunc adapts a function to Runner
type RunnerFunc func(ctx context.Context) error

// Run calls f(ctx)
func (f RunnerFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Ticker delivers ticks. It matches the subset of *time.Ticker the scheduler uses.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct {
	t *time.Ticker
}

func (t *timeTicker) C() <-chan time.Time { return t.t.C }
func (t *timeTicker) Stop()               { t.t.Stop() }

// SchedulerOption configures a Scheduler
type SchedulerOption func(*Scheduler)

// WithTicker replaces the wall-clock ticker, e.g. with a manually driven one in tests
func WithTicker(newTicker func(time.Duration) Ticker) SchedulerOption {
	return func(s *Scheduler) {
		s.newTicker = newTicker
	}
}

// WithSkipError marks an error returned by the runner as an expected skip.
// Matching errors are logged at INFO instead of ERROR.
func WithSkipError(err error) SchedulerOption {
	return func(s *Scheduler) {
		s.skipErrs = append(s.skipErrs, err)
	}
}

// Scheduler runs the recomputation cycle on a fixed interval
//
// Architecture assumptions:
// - Single scheduler per engine; cycles never overlap
// - Failed cycles are logged and retried on the next tick
type Scheduler struct {
	runner    Runner
	interval  time.Duration
	newTicker func(time.Duration) Ticker
	skipErrs  []error

	startOnce sync.Once
	stopOnce  sync.Once
	started   bool
	mu        sync.Mutex
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewScheduler creates a scheduler calling runner every interval
func NewScheduler(runner Runner, interval time.Duration, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		runner:   runner,
		interval: interval,
		newTicker: func(d time.Duration) Ticker {
			return &timeTicker{t: time.NewTicker(d)}
		},
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins the background loop. An initial cycle runs immediately,
// then one per tick. Start does not block.
func (s *Scheduler) Start(ctx context.Context) error {
	s.startOnce.Do(func() {
		s.mu.Lock()
		s.started = true
		s.mu.Unlock()

		logging.From(ctx).Info("Scheduler starting", "interval", s.interval.String())
		go s.run(ctx)
	})
	return nil
}

// Trigger runs one cycle immediately on the caller's goroutine
func (s *Scheduler) Trigger(ctx context.Context) error {
	return s.runner.Run(ctx)
}

// Stop signals the loop to stop and waits for an in-flight cycle to complete.
// Stop is safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)

		s.mu.Lock()
		started := s.started
		s.mu.Unlock()
		if started {
			<-s.doneCh
		}
		logging.Default().Info("Scheduler stopped")
	})
}

// run is the main loop (runs in goroutine)
func (s *Scheduler) run(ctx context.Context) {
	defer close(s.doneCh)

	s.tick(ctx)

	ticker := s.newTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C():
			s.tick(ctx)

		case <-s.stopCh:
			logging.From(ctx).Info("Scheduler received stop signal")
			return

		case <-ctx.Done():
			logging.From(ctx).Info("Scheduler context cancelled")
			return
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	// A stop request wins over a pending tick
	select {
	case <-s.stopCh:
		return
	default:
	}

	if err := s.runner.Run(ctx); err != nil {
		for _, skip := range s.skipErrs {
			if errors.Is(err, skip) {
				logging.From(ctx).Info("Cycle skipped", "reason", err.Error())
				return
			}
		}
		// Log error but keep the schedule
		logging.From(ctx).Error("Cycle failed (will retry next interval)", "error", err.Error())
	}
}
