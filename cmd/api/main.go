// Package main provides the entry point for the love letters server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/loveletters/loveletters-server/internal/di"
	"github.com/loveletters/loveletters-server/internal/di/providers"
)

func main() {
	injector := di.NewContainer(os.Args[1:])

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := di.Bootstrap(ctx, injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap server: %v\n", err)
		_ = injector.Shutdown()
		os.Exit(1)
	}

	log := do.MustInvoke[*providers.LoggerHandle](injector)

	<-ctx.Done()

	log.Info("Shutting down server gracefully...")

	// The container shuts down in reverse dependency order: HTTP server,
	// rate limiter, services, search index, store, then the log file.
	if err := injector.Shutdown(); err != nil {
		fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", err)
		os.Exit(1)
	}
}
