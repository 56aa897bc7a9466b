package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tyche/pkg/cli/config"
	"github.com/secmon-lab/tyche/pkg/repository/memory"
	"github.com/secmon-lab/tyche/pkg/usecase"
	"github.com/secmon-lab/tyche/pkg/utils/logging"
)

// newEngine loads the catalog and returns an initialized engine over an in-memory repository
func newEngine(ctx context.Context, engineCfg *config.Engine, opts ...usecase.EngineOption) (*usecase.Engine, error) {
	catalog, err := config.LoadCatalog(engineCfg.CatalogPath())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load catalog")
	}

	_, engineOpts, err := engineCfg.Configure()
	if err != nil {
		return nil, err
	}

	logging.From(ctx).Debug("Engine configured", "engine", engineCfg)

	engine := usecase.NewEngine(memory.New(), append(engineOpts, opts...)...)
	if err := engine.Init(ctx, catalog.ToModel()); err != nil {
		return nil, goerr.Wrap(err, "failed to initialize engine")
	}

	return engine, nil
}
