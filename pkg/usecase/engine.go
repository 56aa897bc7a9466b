package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tyche/pkg/domain/interfaces"
	"github.com/secmon-lab/tyche/pkg/domain/model"
	"github.com/secmon-lab/tyche/pkg/domain/types"
	"github.com/secmon-lab/tyche/pkg/service/random"
	"github.com/secmon-lab/tyche/pkg/service/worker"
	"github.com/secmon-lab/tyche/pkg/utils/errutil"
	"github.com/secmon-lab/tyche/pkg/utils/logging"
)

// Stage names, in execution order
const (
	StageFactors      = "factors"
	StageModels       = "models"
	StageCorrelation  = "correlation"
	StagePredictions  = "predictions"
	StageExecutive    = "executive"
	StageQuantitative = "quantitative"
)

// StageObserver is called after every cycle stage with its duration and outcome
type StageObserver func(stage string, elapsed time.Duration, err error)

// Engine owns the analytics state and runs the recomputation cycle.
//
// Locking:
// - cycleMu serializes cycles, exported mutators and on-demand perturbation analyses
// - viewMu guards committed state; queries take the read side, commits and perturbations the write side
type Engine struct {
	repo interfaces.Repository
	cfg  EngineConfig
	now  func() time.Time

	evolution     interfaces.RandomSource
	sampling      interfaces.RandomSource
	perturbSource func() interfaces.RandomSource

	subscribers   []interfaces.Subscriber
	observer      StageObserver
	schedulerOpts []worker.SchedulerOption

	initialized atomic.Bool
	running     atomic.Bool
	stopped     atomic.Bool
	cycleMu     sync.Mutex
	viewMu      sync.RWMutex

	// guarded by viewMu
	thresholds   model.Thresholds
	scenarios    []model.StressScenario
	correlations []model.Correlation
	trend        []float64
	executive    *model.ExecutiveMetrics
	quantitative *model.QuantitativeAnalysis
	lastReport   *model.CycleReport

	lifecycleMu sync.Mutex
	scheduler   *worker.Scheduler
	stopOnce    sync.Once

	// afterOverride runs inside a perturbation scope once overrides are applied
	afterOverride func()
}

type EngineOption func(*Engine)

// WithConfig replaces the default configuration
func WithConfig(cfg EngineConfig) EngineOption {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithSeed seeds the factor evolution, sampling and perturbation sources
func WithSeed(seed uint64) EngineOption {
	return func(e *Engine) {
		e.evolution = random.New(seed)
		e.sampling = random.New(seed + 1)
		e.perturbSource = random.NewFactory(seed + 2)
	}
}

// WithEvolutionSource sets the randomness driving factor updates
func WithEvolutionSource(src interfaces.RandomSource) EngineOption {
	return func(e *Engine) {
		e.evolution = src
	}
}

// WithSamplingSource sets the randomness used by stochastic methodologies and forecasts
func WithSamplingSource(src interfaces.RandomSource) EngineOption {
	return func(e *Engine) {
		e.sampling = src
	}
}

// WithPerturbationSource sets the factory for sources used by sensitivity and stress runs.
// Every call must return a source yielding the same sequence.
func WithPerturbationSource(factory func() interfaces.RandomSource) EngineOption {
	return func(e *Engine) {
		e.perturbSource = factory
	}
}

// WithSubscribers registers notification subscribers
func WithSubscribers(subs ...interfaces.Subscriber) EngineOption {
	return func(e *Engine) {
		e.subscribers = append(e.subscribers, subs...)
	}
}

// WithStageObserver registers a callback receiving stage timings
func WithStageObserver(observer StageObserver) EngineOption {
	return func(e *Engine) {
		e.observer = observer
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// WithSchedulerOptions passes options to the scheduler created by Start
func WithSchedulerOptions(opts ...worker.SchedulerOption) EngineOption {
	return func(e *Engine) {
		e.schedulerOpts = append(e.schedulerOpts, opts...)
	}
}

// NewEngine creates an engine over repo. Call Init before running cycles.
func NewEngine(repo interfaces.Repository, opts ...EngineOption) *Engine {
	seed := uint64(time.Now().UnixNano())
	e := &Engine{
		repo:          repo,
		cfg:           DefaultEngineConfig(),
		now:           time.Now,
		evolution:     random.New(seed),
		sampling:      random.New(seed + 1),
		perturbSource: random.NewFactory(seed + 2),
		thresholds:    model.DefaultThresholds(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Config returns the active configuration
func (e *Engine) Config() EngineConfig {
	return e.cfg
}

// Init registers the seed catalog. Validation failures abort initialization.
func (e *Engine) Init(ctx context.Context, catalog *model.Catalog) error {
	if err := e.cfg.Validate(); err != nil {
		return goerr.Wrap(err, "invalid engine configuration")
	}
	if err := catalog.Validate(); err != nil {
		return goerr.Wrap(err, "invalid catalog")
	}

	e.viewMu.Lock()
	defer e.viewMu.Unlock()

	now := e.now()
	for _, seed := range catalog.Factors {
		f := seed.Clone()
		f.Trend = f.Trend.Normalize()
		f.History = model.NewHistory(e.cfg.HistoryCapacity)
		f.History.Append(model.HistoryPoint{Timestamp: now, Value: f.Value})
		f.Correlations = map[types.FactorID]float64{}
		f.UpdatedAt = now
		if err := e.repo.Factor().Put(ctx, f); err != nil {
			return goerr.Wrap(err, "failed to register factor", goerr.V(FactorIDKey, f.ID))
		}
	}

	for _, seed := range catalog.Models {
		m := seed.Clone()
		m.CurrentScore, m.PreviousScore = 0, 0
		m.Trend = types.TrendStable
		m.LastCalculation = time.Time{}
		if err := e.repo.RiskModel().Put(ctx, m); err != nil {
			return goerr.Wrap(err, "failed to register risk model", goerr.V(ModelIDKey, m.ID))
		}
	}

	for _, seed := range catalog.Assets {
		if err := e.repo.Asset().Put(ctx, seed); err != nil {
			return goerr.Wrap(err, "failed to register asset", goerr.V("asset_id", seed.ID))
		}
	}

	for _, seed := range catalog.Predictors {
		p := seed.Clone()
		p.Predictions = nil
		if err := e.repo.Predictor().Put(ctx, p); err != nil {
			return goerr.Wrap(err, "failed to register predictive model", goerr.V(PredictorIDKey, p.ID))
		}
	}

	if catalog.Thresholds != (model.Thresholds{}) {
		e.thresholds = catalog.Thresholds
	}
	e.scenarios = make([]model.StressScenario, len(catalog.StressScenarios))
	for i, s := range catalog.StressScenarios {
		overrides := make(map[types.FactorID]float64, len(s.Overrides))
		for id, v := range s.Overrides {
			overrides[id] = v
		}
		s.Overrides = overrides
		e.scenarios[i] = s
	}

	e.initialized.Store(true)
	logging.From(ctx).Info("Engine initialized",
		"factors", len(catalog.Factors),
		"models", len(catalog.Models),
		"assets", len(catalog.Assets),
		"predictors", len(catalog.Predictors),
		"stress_scenarios", len(catalog.StressScenarios))

	return nil
}

type stage struct {
	name string
	run  func(ctx context.Context, report *model.CycleReport) error
}

func (e *Engine) stages() []stage {
	return []stage{
		{StageFactors, e.factorStage},
		{StageModels, e.scoreStage},
		{StageCorrelation, e.correlationStage},
		{StagePredictions, e.predictionStage},
		{StageExecutive, e.executiveStage},
		{StageQuantitative, e.quantitativeStage},
	}
}

// RunCycle runs every stage once in order. A failing stage is logged and recorded
// in the report; later stages still run on the best available state.
// ErrCycleInProgress is returned when another cycle is running.
func (e *Engine) RunCycle(ctx context.Context) (*model.CycleReport, error) {
	if !e.initialized.Load() {
		return nil, goerr.Wrap(ErrNotInitialized, "cannot run cycle")
	}
	if e.stopped.Load() {
		return nil, goerr.Wrap(ErrEngineStopped, "cannot run cycle")
	}
	if !e.running.CompareAndSwap(false, true) {
		return nil, goerr.Wrap(ErrCycleInProgress, "cycle skipped")
	}
	defer e.running.Store(false)

	e.cycleMu.Lock()
	defer e.cycleMu.Unlock()

	report := &model.CycleReport{
		CycleID:   model.NewCycleID(),
		StartedAt: e.now(),
		Errors:    map[string]error{},
	}
	logger := logging.From(ctx).With("cycle_id", report.CycleID)
	ctx = logging.With(ctx, logger)

	for _, st := range e.stages() {
		e.runStage(ctx, report, st)
	}
	report.FinishedAt = e.now()

	e.viewMu.Lock()
	e.lastReport = report
	e.viewMu.Unlock()

	if report.HasErrors() {
		logger.Warn("Cycle completed with errors",
			"failed_stages", len(report.Errors),
			"warnings", len(report.Warnings),
			"duration", report.FinishedAt.Sub(report.StartedAt).String())
	} else {
		logger.Debug("Cycle completed",
			"warnings", len(report.Warnings),
			"duration", report.FinishedAt.Sub(report.StartedAt).String())
	}

	return report, nil
}

// IsRunning reports whether a cycle is in flight
func (e *Engine) IsRunning() bool {
	return e.running.Load()
}

func (e *Engine) runStage(ctx context.Context, report *model.CycleReport, st stage) {
	started := time.Now()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = goerr.New("panic in cycle stage", goerr.V("panic", r))
			}
		}()
		return st.run(ctx, report)
	}()

	if e.observer != nil {
		e.observer(st.name, time.Since(started), err)
	}

	if err != nil {
		wrapped := goerr.Wrap(err, "cycle stage failed",
			goerr.V(StageKey, st.name),
			goerr.V(CycleIDKey, report.CycleID))
		report.Errors[st.name] = errutil.Handle(ctx, wrapped, "cycle stage failed")
	}
}

func (e *Engine) publish(ctx context.Context, eventType types.EventType, cycleID model.CycleID, payload any) {
	event := model.Event{
		Type:      eventType,
		CycleID:   cycleID,
		Timestamp: e.now(),
		Payload:   payload,
	}

	for _, sub := range e.subscribers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logging.From(ctx).Error("subscriber panicked", "event", eventType, "panic", r)
				}
			}()
			sub.Notify(ctx, event)
		}()
	}
}

// Start launches the scheduler. Calling Start on a running engine is a no-op.
func (e *Engine) Start(ctx context.Context) error {
	e.lifecycleMu.Lock()
	defer e.lifecycleMu.Unlock()

	if e.stopped.Load() {
		return goerr.Wrap(ErrEngineStopped, "cannot start engine")
	}
	if !e.initialized.Load() {
		return goerr.Wrap(ErrNotInitialized, "cannot start engine")
	}
	if e.scheduler != nil {
		return nil
	}

	runner := worker.RunnerFunc(func(ctx context.Context) error {
		_, err := e.RunCycle(ctx)
		return err
	})
	opts := append([]worker.SchedulerOption{
		worker.WithSkipError(ErrCycleInProgress),
		worker.WithSkipError(ErrEngineStopped),
	}, e.schedulerOpts...)
	e.scheduler = worker.NewScheduler(runner, e.cfg.Interval, opts...)

	e.publish(ctx, types.EventEngineStarted, "", nil)
	return e.scheduler.Start(ctx)
}

// Stop halts future cycles and waits for an in-flight cycle to complete. Stop is idempotent.
func (e *Engine) Stop(ctx context.Context) {
	e.stopOnce.Do(func() {
		e.stopped.Store(true)

		e.lifecycleMu.Lock()
		scheduler := e.scheduler
		e.lifecycleMu.Unlock()

		if scheduler != nil {
			scheduler.Stop()
		}

		// Wait for a cycle started outside the scheduler
		e.cycleMu.Lock()
		e.cycleMu.Unlock()

		e.publish(ctx, types.EventEngineStopped, "", nil)
		logging.From(ctx).Info("Engine stopped")
	})
}
