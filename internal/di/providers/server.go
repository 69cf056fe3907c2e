package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/loveletters/loveletters-server/internal/api"
	"github.com/loveletters/loveletters-server/internal/config"
	"github.com/loveletters/loveletters-server/internal/ratelimit"
	"github.com/loveletters/loveletters-server/internal/service"
)

// Version is reported by the API banner and the OpenAPI document.
var Version = "1.0.0"

// ProvideLetterService provides the letter service.
func ProvideLetterService(i do.Injector) (*service.LetterService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	searchHandle := do.MustInvoke[*SearchHandle](i)
	log := do.MustInvoke[*LoggerHandle](i)

	return service.NewLetterService(storeHandle.Store, searchHandle.Service, log.Logger.Logger), nil
}

// RateLimiterHandle wraps the per-IP limiter so its cleanup goroutine stops
// on shutdown. The limiter is nil when rate limiting is disabled.
type RateLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *RateLimiterHandle) Shutdown() error {
	if h.KeyedRateLimiter != nil {
		h.Stop()
	}
	return nil
}

// ProvideRateLimiter provides the per-IP limiter for /api/ routes.
func ProvideRateLimiter(i do.Injector) (*RateLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*LoggerHandle](i)

	if !cfg.RateLimit.Enabled {
		log.Info("Rate limiting disabled by configuration")
		return &RateLimiterHandle{}, nil
	}

	limiter := ratelimit.NewPerWindow(cfg.RateLimit.Requests, cfg.RateLimit.Window, cfg.RateLimit.Burst)
	log.Info("Rate limiting enabled",
		"requests", cfg.RateLimit.Requests,
		"window", cfg.RateLimit.Window,
		"burst", cfg.RateLimit.Burst,
	)
	return &RateLimiterHandle{KeyedRateLimiter: limiter}, nil
}

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer builds the API handler and starts listening in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*LoggerHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	searchHandle := do.MustInvoke[*SearchHandle](i)
	limiter := do.MustInvoke[*RateLimiterHandle](i)
	letterService := do.MustInvoke[*service.LetterService](i)

	handler := api.NewServer(storeHandle.Store, &api.Services{
		Letters: letterService,
		Search:  searchHandle.Service,
	}, api.Options{
		Version:      Version,
		ExposeErrors: !cfg.App.IsProduction(),
		CORSOrigins:  cfg.CORS.Origins,
		RateLimiter:  limiter.KeyedRateLimiter,
	}, log.Logger.Logger)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
