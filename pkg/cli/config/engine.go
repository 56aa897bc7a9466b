package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tyche/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// Engine holds the engine tuning flags
type Engine struct {
	catalogPath         string
	interval            time.Duration
	seed                uint64
	seedSet             bool
	scoreNoise          bool
	portfolioVolatility float64
	historyCapacity     int
	topRisks            int
	varConfidences      []float64
	monteCarloSamples   int
	sensitivityShift    float64
	stressTopN          int
}

func (x *Engine) Flags() []cli.Flag {
	defaults := usecase.DefaultEngineConfig()
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "catalog",
			Aliases:     []string{"c"},
			Usage:       "Path to the TOML risk catalog",
			Category:    "Engine",
			Required:    true,
			Sources:     cli.EnvVars("TYCHE_CATALOG"),
			Destination: &x.catalogPath,
		},
		&cli.DurationFlag{
			Name:        "interval",
			Usage:       "Recomputation interval",
			Category:    "Engine",
			Value:       defaults.Interval,
			Sources:     cli.EnvVars("TYCHE_INTERVAL"),
			Destination: &x.interval,
		},
		&cli.Uint64Flag{
			Name:     "seed",
			Usage:    "Random seed for reproducible runs (time based when unset)",
			Category: "Engine",
			Sources:  cli.EnvVars("TYCHE_SEED"),
			Action: func(_ context.Context, _ *cli.Command, v uint64) error {
				x.seed = v
				x.seedSet = true
				return nil
			},
		},
		&cli.BoolFlag{
			Name:        "score-noise",
			Usage:       "Draw FAIR and tiered adjustments at random instead of deriving them",
			Category:    "Engine",
			Sources:     cli.EnvVars("TYCHE_SCORE_NOISE"),
			Destination: &x.scoreNoise,
		},
		&cli.FloatFlag{
			Name:        "portfolio-volatility",
			Usage:       "Portfolio volatility for VaR (0 derives it from the models)",
			Category:    "Engine",
			Sources:     cli.EnvVars("TYCHE_PORTFOLIO_VOLATILITY"),
			Destination: &x.portfolioVolatility,
		},
		&cli.IntFlag{
			Name:        "history-capacity",
			Usage:       "Number of observations kept per factor",
			Category:    "Engine",
			Value:       defaults.HistoryCapacity,
			Sources:     cli.EnvVars("TYCHE_HISTORY_CAPACITY"),
			Destination: &x.historyCapacity,
		},
		&cli.IntFlag{
			Name:        "top-risks",
			Usage:       "Number of models in the executive top risks list",
			Category:    "Engine",
			Value:       defaults.TopRisks,
			Sources:     cli.EnvVars("TYCHE_TOP_RISKS"),
			Destination: &x.topRisks,
		},
		&cli.FloatSliceFlag{
			Name:        "var-confidence",
			Usage:       "VaR confidence levels",
			Category:    "Engine",
			Value:       defaults.VaRConfidences,
			Sources:     cli.EnvVars("TYCHE_VAR_CONFIDENCE"),
			Destination: &x.varConfidences,
		},
		&cli.IntFlag{
			Name:        "monte-carlo-samples",
			Usage:       "Sample count of Monte Carlo scoring",
			Category:    "Engine",
			Value:       defaults.Scoring.MonteCarloSamples,
			Sources:     cli.EnvVars("TYCHE_MONTE_CARLO_SAMPLES"),
			Destination: &x.monteCarloSamples,
		},
		&cli.FloatFlag{
			Name:        "sensitivity-shift",
			Usage:       "Relative factor shift used by sensitivity analysis",
			Category:    "Engine",
			Value:       defaults.SensitivityShift,
			Sources:     cli.EnvVars("TYCHE_SENSITIVITY_SHIFT"),
			Destination: &x.sensitivityShift,
		},
		&cli.IntFlag{
			Name:        "stress-top-n",
			Usage:       "Number of most impacted models reported per stress scenario",
			Category:    "Engine",
			Value:       defaults.StressTopN,
			Sources:     cli.EnvVars("TYCHE_STRESS_TOP_N"),
			Destination: &x.stressTopN,
		},
	}
}

func (x Engine) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("catalog", x.catalogPath),
		slog.Duration("interval", x.interval),
		slog.Bool("score_noise", x.scoreNoise),
		slog.Any("var_confidences", x.varConfidences),
	}
	if x.seedSet {
		attrs = append(attrs, slog.Uint64("seed", x.seed))
	}
	return slog.GroupValue(attrs...)
}

// CatalogPath returns the catalog file path
func (x *Engine) CatalogPath() string {
	return x.catalogPath
}

// Configure builds the engine configuration and seed options
func (x *Engine) Configure() (usecase.EngineConfig, []usecase.EngineOption, error) {
	cfg := usecase.DefaultEngineConfig()
	if x.interval > 0 {
		cfg.Interval = x.interval
	}
	if x.historyCapacity > 0 {
		cfg.HistoryCapacity = x.historyCapacity
	}
	if x.topRisks > 0 {
		cfg.TopRisks = x.topRisks
	}
	if len(x.varConfidences) > 0 {
		cfg.VaRConfidences = append([]float64(nil), x.varConfidences...)
	}
	if x.monteCarloSamples > 0 {
		cfg.Scoring.MonteCarloSamples = x.monteCarloSamples
	}
	if x.sensitivityShift > 0 {
		cfg.SensitivityShift = x.sensitivityShift
	}
	if x.stressTopN > 0 {
		cfg.StressTopN = x.stressTopN
	}
	cfg.Scoring.Noise = x.scoreNoise
	cfg.PortfolioVolatility = x.portfolioVolatility

	if err := cfg.Validate(); err != nil {
		return cfg, nil, goerr.Wrap(ErrInvalidConfig, "invalid engine configuration", goerr.V("error", err.Error()))
	}

	opts := []usecase.EngineOption{usecase.WithConfig(cfg)}
	if x.seedSet {
		opts = append(opts, usecase.WithSeed(x.seed))
	}
	return cfg, opts, nil
}
