package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/target/eventhub/config"
	httpx "github.com/target/eventhub/internal/http"
)

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// StartHTTPServer creates and starts the HTTP server.
// Returns the server for graceful shutdown and a channel that receives at
// most one error if the listener fails.
func StartHTTPServer(cfg *HTTPServerConfig) (*http.Server, <-chan error) {
	errCh := make(chan error, 1)
	if cfg == nil {
		close(errCh)
		return nil, errCh
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	handler := BuildHTTPHandler(httpx.RouterServices{
		Auth:         cfg.Services.Auth,
		Bootstrap:    cfg.Services.Bootstrap,
		Events:       cfg.Services.Events,
		Profiles:     cfg.Services.Profiles,
		Dashboard:    cfg.Services.Dashboard,
		Calendar:     cfg.Services.Calendar,
		Health:       cfg.Services.Health,
		CookieDomain: appCfg.HTTP.CookieDomain,
		Logger:       logger,
	})

	server := newServer(handler, appCfg.HTTP.Addr)
	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	return server, errCh
}

// BuildHTTPHandler wraps the router with the standard middleware chain.
// Order: Recover -> Logging -> Router.
func BuildHTTPHandler(services httpx.RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := httpx.NewRouter(services)
	h = httpx.Logging(logger)(h)
	h = httpx.Recover(logger)(h)
	return h
}

func newServer(handler http.Handler, addr string) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	Context context.Context
	Server  *http.Server
	Logger  *slog.Logger
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("shutting down HTTP server")
	}

	if err := cfg.Server.Shutdown(cfg.Context); err != nil {
		return err
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("HTTP server stopped")
	}

	return nil
}
