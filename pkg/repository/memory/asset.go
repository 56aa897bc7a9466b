package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tyche/pkg/domain/model"
	"github.com/secmon-lab/tyche/pkg/domain/types"
)

type assetRepository struct {
	mu     sync.RWMutex
	assets map[types.AssetID]*model.BusinessAsset
}

func newAssetRepository() *assetRepository {
	return &assetRepository{
		assets: make(map[types.AssetID]*model.BusinessAsset),
	}
}

func (r *assetRepository) Put(ctx context.Context, asset *model.BusinessAsset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.assets[asset.ID] = asset.Clone()
	return nil
}

func (r *assetRepository) Get(ctx context.Context, id types.AssetID) (*model.BusinessAsset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	asset, exists := r.assets[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "asset not found", goerr.V("asset_id", id))
	}
	return asset.Clone(), nil
}

func (r *assetRepository) List(ctx context.Context) ([]*model.BusinessAsset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	assets := make([]*model.BusinessAsset, 0, len(r.assets))
	for _, asset := range r.assets {
		assets = append(assets, asset.Clone())
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].ID < assets[j].ID })

	return assets, nil
}
