package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/secmon-lab/tyche/pkg/cli/config"
	httpctrl "github.com/secmon-lab/tyche/pkg/controller/http"
	"github.com/secmon-lab/tyche/pkg/domain/interfaces"
	"github.com/secmon-lab/tyche/pkg/service/metrics"
	"github.com/secmon-lab/tyche/pkg/usecase"
	"github.com/secmon-lab/tyche/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 10 * time.Second

func cmdServe() *cli.Command {
	var addr string
	var engineCfg config.Engine
	var slackCfg config.Slack
	var archiveCfg config.Archive

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("TYCHE_ADDR"),
			Destination: &addr,
		},
	}

	// Add shared config flags
	flags = append(flags, engineCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, archiveCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Run the engine on its interval and serve the HTTP API",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			registry := metrics.New()
			subscribers := []interfaces.Subscriber{registry}

			notifier, err := slackCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure slack alerts")
			}
			if notifier != nil {
				subscribers = append(subscribers, notifier)
				logging.Default().Info("Slack alerts enabled", "slack", slackCfg)
			}

			archiver, closeArchive, err := archiveCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure archive")
			}
			defer closeArchive()
			if archiver != nil {
				subscribers = append(subscribers, archiver)
				logging.Default().Info("Snapshot archive enabled", "archive", archiveCfg)
			}

			engine, err := newEngine(ctx, &engineCfg,
				usecase.WithSubscribers(subscribers...),
				usecase.WithStageObserver(registry.ObserveStage),
			)
			if err != nil {
				return err
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(engine, httpctrl.WithMetrics(registry.Handler())),
				ReadHeaderTimeout: 30 * time.Second,
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := engine.Start(ctx); err != nil {
				return goerr.Wrap(err, "failed to start engine")
			}

			eg, ctx := errgroup.WithContext(ctx)
			eg.Go(func() error {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return goerr.Wrap(err, "failed to start server")
				}
				return nil
			})
			eg.Go(func() error {
				<-ctx.Done()
				logging.Default().Info("Shutting down")

				// Stop the engine first so no cycle runs against a closing server
				engine.Stop(context.Background())

				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			})

			return eg.Wait()
		},
	}
}
