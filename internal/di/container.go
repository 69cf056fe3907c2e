// Package di provides dependency injection configuration for the love letters server.
package di

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"

	"github.com/loveletters/loveletters-server/internal/config"
	"github.com/loveletters/loveletters-server/internal/di/providers"
	"github.com/loveletters/loveletters-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
// args are the command-line arguments without the program name.
func NewContainer(args []string) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ConfigProvider(args))
	do.Provide(injector, providers.ProvideLogger)

	// Storage and search
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSearch)

	// Business services
	do.Provide(injector, providers.ProvideLetterService)

	// HTTP
	do.Provide(injector, providers.ProvideRateLimiter)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services. The search index is brought up to
// date before the HTTP server starts accepting requests.
func Bootstrap(ctx context.Context, injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if _, err := do.Invoke[*providers.LoggerHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	if _, err := do.Invoke[*providers.SearchHandle](injector); err != nil {
		return fmt.Errorf("open search index: %w", err)
	}
	if _, err := do.Invoke[*service.LetterService](injector); err != nil {
		return err
	}

	if err := providers.ReindexSearch(ctx, injector); err != nil {
		return fmt.Errorf("reindex search: %w", err)
	}

	if _, err := do.Invoke[*providers.RateLimiterHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return fmt.Errorf("start http server: %w", err)
	}

	return nil
}
