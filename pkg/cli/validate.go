package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/tyche/pkg/cli/config"
	"github.com/secmon-lab/tyche/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// ErrCycleFailed is returned by validate when a dry cycle has failing stages
var ErrCycleFailed = goerr.New("dry cycle failed")

func cmdValidate() *cli.Command {
	var engineCfg config.Engine

	return &cli.Command{
		Name:  "validate",
		Usage: "Validate the catalog and run one dry cycle",
		Flags: engineCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.From(ctx)

			engine, err := newEngine(ctx, &engineCfg)
			if err != nil {
				return err
			}

			report, err := engine.RunCycle(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to run dry cycle")
			}

			for _, w := range report.Warnings {
				logger.Warn("Model references unknown factor",
					"model_id", w.ModelID,
					"factor_id", w.FactorID,
				)
			}

			if report.HasErrors() {
				stages := make([]string, 0, len(report.Errors))
				for st := range report.Errors {
					stages = append(stages, st)
				}
				return goerr.Wrap(ErrCycleFailed, "catalog is not usable", goerr.V("stages", stages))
			}

			logger.Info("Catalog is valid",
				"path", engineCfg.CatalogPath(),
				"warnings", len(report.Warnings),
			)
			return nil
		},
	}
}
