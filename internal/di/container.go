// Package di provides dependency injection configuration for the Inkshelf server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/inkshelfapp/inkshelf-server/internal/config"
	"github.com/inkshelfapp/inkshelf-server/internal/di/providers"
	"github.com/inkshelfapp/inkshelf-server/internal/logger"
	"github.com/inkshelfapp/inkshelf-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideBlobStore)

	// Business services
	do.Provide(injector, providers.ProvideCascader)
	do.Provide(injector, providers.ProvideBookService)
	do.Provide(injector, providers.ProvideAuthorService)
	do.Provide(injector, providers.ProvideCategoryService)
	do.Provide(injector, providers.ProvideShoppingService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}

	// Business services
	_ = do.MustInvoke[*service.BookService](injector)
	_ = do.MustInvoke[*service.AuthorService](injector)
	_ = do.MustInvoke[*service.CategoryService](injector)
	_ = do.MustInvoke[*service.ShoppingService](injector)

	// HTTP server comes up last so every dependency is live first.
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}

	return nil
}
