package providers

import (
	"github.com/samber/do/v2"

	"github.com/inkshelfapp/inkshelf-server/internal/assets"
	"github.com/inkshelfapp/inkshelf-server/internal/config"
	"github.com/inkshelfapp/inkshelf-server/internal/logger"
	"github.com/inkshelfapp/inkshelf-server/internal/service"
)

// ProvideCascader provides the deletion cascade coordinator shared by
// the book and author services.
func ProvideCascader(i do.Injector) (*service.Cascader, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	blobs := do.MustInvoke[*assets.DiskStore](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCascader(storeHandle.Store, blobs, log.Logger), nil
}

// ProvideBookService provides the book lifecycle service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	blobs := do.MustInvoke[*assets.DiskStore](i)
	cascade := do.MustInvoke[*service.Cascader](i)
	log := do.MustInvoke[*logger.Logger](i)
	cfg := do.MustInvoke[*config.Config](i)

	return service.NewBookService(storeHandle.Store, blobs, cascade, log.Logger, cfg.Catalog.PageSize), nil
}

// ProvideAuthorService provides the author service.
func ProvideAuthorService(i do.Injector) (*service.AuthorService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	blobs := do.MustInvoke[*assets.DiskStore](i)
	cascade := do.MustInvoke[*service.Cascader](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthorService(storeHandle.Store, blobs, cascade, log.Logger), nil
}

// ProvideCategoryService provides the category service.
func ProvideCategoryService(i do.Injector) (*service.CategoryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCategoryService(storeHandle.Store, log.Logger), nil
}

// ProvideShoppingService provides the cart, favorites, and order service.
func ProvideShoppingService(i do.Injector) (*service.ShoppingService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewShoppingService(storeHandle.Store, log.Logger), nil
}
