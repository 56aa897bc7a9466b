package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/tyche/pkg/cli/config"
	"github.com/secmon-lab/tyche/pkg/domain/interfaces"
	"github.com/secmon-lab/tyche/pkg/domain/model"
	"github.com/secmon-lab/tyche/pkg/usecase"
	"github.com/secmon-lab/tyche/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdRun() *cli.Command {
	var cycles int
	var engineCfg config.Engine
	var slackCfg config.Slack
	var archiveCfg config.Archive

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "cycles",
			Aliases:     []string{"n"},
			Usage:       "Number of cycles to run",
			Value:       1,
			Sources:     cli.EnvVars("TYCHE_CYCLES"),
			Destination: &cycles,
		},
	}
	flags = append(flags, engineCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, archiveCfg.Flags()...)

	return &cli.Command{
		Name:  "run",
		Usage: "Run a fixed number of cycles and print the executive summary",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if cycles < 1 {
				return goerr.New("cycles must be positive", goerr.V("cycles", cycles))
			}

			var subscribers []interfaces.Subscriber
			notifier, err := slackCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure slack alerts")
			}
			if notifier != nil {
				subscribers = append(subscribers, notifier)
			}

			archiver, closeArchive, err := archiveCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure archive")
			}
			defer closeArchive()
			if archiver != nil {
				subscribers = append(subscribers, archiver)
			}

			engine, err := newEngine(ctx, &engineCfg, usecase.WithSubscribers(subscribers...))
			if err != nil {
				return err
			}

			var report *model.CycleReport
			for i := range cycles {
				report, err = engine.RunCycle(ctx)
				if err != nil {
					return goerr.Wrap(err, "failed to run cycle", goerr.V("cycle", i+1))
				}
				logging.From(ctx).Info("Cycle finished",
					"cycle", i+1,
					"cycle_id", report.CycleID,
					"failed_stages", len(report.Errors),
				)
			}

			printSummary(os.Stdout, report, engine.ExecutiveMetrics(ctx), engine.QuantitativeAnalysis(ctx))
			return nil
		},
	}
}

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	alertColor  = color.New(color.FgRed, color.Bold)
	warnColor   = color.New(color.FgYellow)
	okColor     = color.New(color.FgGreen)
)

// printSummary writes the executive view of the last cycle
func printSummary(w io.Writer, report *model.CycleReport, exec *model.ExecutiveMetrics, quant *model.QuantitativeAnalysis) {
	if report != nil {
		headerColor.Fprintf(w, "Cycle %s\n", report.CycleID)
	}

	if exec != nil {
		scoreColor := okColor
		switch {
		case exec.ToleranceBreached:
			scoreColor = alertColor
		case exec.AppetiteExceeded:
			scoreColor = warnColor
		}
		fmt.Fprint(w, "Overall risk score: ")
		scoreColor.Fprintf(w, "%.3f", exec.OverallScore)
		fmt.Fprintf(w, " (tolerance %.2f, appetite %.2f, trend %s)\n",
			exec.Thresholds.Tolerance, exec.Thresholds.Appetite, exec.Trend)
		fmt.Fprintf(w, "Potential loss: %.2f of %.2f (%.1f%%)\n",
			exec.BusinessImpact.PotentialLoss, exec.BusinessImpact.TotalAssetValue, exec.BusinessImpact.RiskPercentage)

		if len(exec.TopRisks) > 0 {
			headerColor.Fprintln(w, "Top risks")
			for i, r := range exec.TopRisks {
				fmt.Fprintf(w, "  %d. %-32s %-12s %.3f %s\n", i+1, r.Name, r.Domain, r.Score, r.Trend)
			}
		}
	}

	if quant != nil {
		headerColor.Fprintln(w, "Loss estimation")
		keys := make([]string, 0, len(quant.VaR))
		for k := range quant.VaR {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "  VaR %-6s %.2f\n", k, quant.VaR[k])
		}
		fmt.Fprintf(w, "  Expected loss   %.2f\n", quant.ExpectedLoss)
		fmt.Fprintf(w, "  Unexpected loss %.2f", quant.UnexpectedLoss)
		if quant.UnexpectedLossClamped {
			warnColor.Fprint(w, " (clamped)")
		}
		fmt.Fprintln(w)
	}

	if report != nil && report.HasErrors() {
		stages := make([]string, 0, len(report.Errors))
		for st := range report.Errors {
			stages = append(stages, st)
		}
		slices.Sort(stages)
		alertColor.Fprintln(w, "Failed stages")
		for _, st := range stages {
			fmt.Fprintf(w, "  %s: %v\n", st, report.Errors[st])
		}
	}
}
