// Package di wires the service's dependencies with samber/do.
package di

import (
	"github.com/samber/do/v2"

	"libraryadmin/internal/book"
	"libraryadmin/internal/config"
	"libraryadmin/internal/di/providers"
	"libraryadmin/internal/lending"
	"libraryadmin/internal/logger"
	"libraryadmin/internal/student"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage
	do.Provide(injector, providers.ProvideStore)

	// Metadata
	do.Provide(injector, providers.ProvideOpenLibraryClient)

	// Business services
	do.Provide(injector, providers.ProvideBookService)
	do.Provide(injector, providers.ProvideStudentService)
	do.Provide(injector, providers.ProvideLendingService)

	// Server
	do.Provide(injector, providers.ProvideRateLimiter)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap resolves every provider so configuration and connection errors
// surface before the process starts waiting for signals.
func Bootstrap(injector do.Injector) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*book.Service](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*student.Service](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*lending.Service](injector); err != nil {
		return err
	}
	_, err := do.Invoke[*providers.HTTPServerHandle](injector)
	return err
}
