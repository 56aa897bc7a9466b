package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tyche/pkg/service/archive"
	"github.com/secmon-lab/tyche/pkg/utils/logging"
	"github.com/urfave/cli/v3"
	"google.golang.org/api/option"
)

// Archive configures the Cloud Storage snapshot archive
type Archive struct {
	bucket          string
	prefix          string
	endpoint        string
	credentialsFile string
}

func (x *Archive) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "archive-bucket",
			Usage:       "Cloud Storage bucket receiving cycle snapshots",
			Category:    "Archive",
			Destination: &x.bucket,
			Sources:     cli.EnvVars("TYCHE_ARCHIVE_BUCKET"),
		},
		&cli.StringFlag{
			Name:        "archive-prefix",
			Usage:       "Object path prefix for cycle snapshots",
			Category:    "Archive",
			Value:       "tyche",
			Destination: &x.prefix,
			Sources:     cli.EnvVars("TYCHE_ARCHIVE_PREFIX"),
		},
		&cli.StringFlag{
			Name:        "archive-endpoint",
			Usage:       "Cloud Storage endpoint (for emulators); disables authentication",
			Category:    "Archive",
			Destination: &x.endpoint,
			Sources:     cli.EnvVars("TYCHE_ARCHIVE_ENDPOINT"),
		},
		&cli.StringFlag{
			Name:        "archive-credentials",
			Usage:       "Service account key file for Cloud Storage",
			Category:    "Archive",
			Destination: &x.credentialsFile,
			Sources:     cli.EnvVars("TYCHE_ARCHIVE_CREDENTIALS"),
		},
	}
}

func (x Archive) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("bucket", x.bucket),
		slog.String("prefix", x.prefix),
		slog.String("endpoint", x.endpoint),
	)
}

// IsConfigured checks if archiving is enabled
func (x *Archive) IsConfigured() bool {
	return x.bucket != ""
}

// ClientOptions returns the Cloud Storage client options derived from the flags
func (x *Archive) ClientOptions() []option.ClientOption {
	var opts []option.ClientOption
	if x.endpoint != "" {
		opts = append(opts, option.WithEndpoint(x.endpoint), option.WithoutAuthentication())
	} else if x.credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(x.credentialsFile))
	}
	return opts
}

// Configure creates the archiver, or nil when no bucket is set. The returned function closes the client.
func (x *Archive) Configure(ctx context.Context) (*archive.Archiver, func(), error) {
	if !x.IsConfigured() {
		return nil, func() {}, nil
	}

	store, err := archive.NewGCS(ctx, x.bucket, x.ClientOptions()...)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to initialize archive storage")
	}

	closer := func() {
		if err := store.Close(); err != nil {
			logging.Default().Error("failed to close archive storage", "error", err)
		}
	}
	return archive.New(store, archive.WithPrefix(x.prefix)), closer, nil
}
