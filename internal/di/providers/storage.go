package providers

import (
	"github.com/samber/do/v2"

	"github.com/inkshelfapp/inkshelf-server/internal/assets"
	"github.com/inkshelfapp/inkshelf-server/internal/config"
	"github.com/inkshelfapp/inkshelf-server/internal/logger"
)

// ProvideBlobStore provides the on-disk asset store.
func ProvideBlobStore(i do.Injector) (*assets.DiskStore, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	blobs, err := assets.NewDiskStore(cfg.Assets.BasePath, cfg.Assets.PublicBaseURL)
	if err != nil {
		return nil, err
	}

	log.Info("Asset store initialized",
		"path", cfg.Assets.BasePath,
		"base_url", cfg.Assets.PublicBaseURL,
	)

	return blobs, nil
}
