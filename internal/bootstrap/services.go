package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/target/eventhub/config"
	"github.com/target/eventhub/internal/calendar"
	"github.com/target/eventhub/internal/data"
	"github.com/target/eventhub/internal/domain/authflow"
	httpx "github.com/target/eventhub/internal/http"
	"github.com/target/eventhub/internal/observability/statsd"
	"github.com/target/eventhub/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Auth          *service.AuthService
	Bootstrap     *service.SessionBootstrap
	Events        *service.EventService
	Profiles      *service.ProfileService
	Dashboard     *service.DashboardService
	Calendar      *calendar.Exporter
	Health        map[string]httpx.HealthCheck
	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	// Sink is never nil; it discards metrics when emission is disabled.
	Sink          statsd.Sink
	client        *statsd.Client
	MetricsConfig config.ObservabilityMetricsConfig
}

// Close flushes and closes the statsd client when one was opened.
func (o ObservabilityContainer) Close() error {
	if o.client == nil {
		return nil
	}
	return o.client.Close()
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// buildObservability configures the metrics sink.
func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	obs := ObservabilityContainer{Sink: statsd.Noop{}, MetricsConfig: cfg.Metrics}
	if !cfg.Metrics.IsEnabled() {
		return obs
	}

	client, err := statsd.NewClient(statsd.Config{
		Enabled:       true,
		Address:       cfg.Metrics.StatsdAddress,
		Prefix:        cfg.Metrics.Prefix,
		GlobalTags:    cfg.Metrics.Tags,
		FlushInterval: cfg.Metrics.FlushInterval,
		Logger:        logger,
	})
	if err != nil {
		logger.Error("failed to initialise statsd client", "error", err)
		return obs
	}
	obs.Sink = client
	obs.client = client
	return obs
}

// buildHealthChecks reports the dependencies the process actually holds.
func buildHealthChecks(db *sql.DB, redisClient redis.UniversalClient) map[string]httpx.HealthCheck {
	checks := make(map[string]httpx.HealthCheck, 2)
	if db != nil {
		checks["postgres"] = db.PingContext
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	return checks
}

// NewServices wires repositories and services for the configured backends.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps require an AppConfig")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	obs := buildObservability(logger, cfg.Observability)

	records, err := BuildRecordClient(RecordClientConfig{
		Backend: cfg.Backend,
		DB:      deps.DB,
		Metrics: obs.Sink,
		Logger:  logger,
	})
	if err != nil {
		return ServiceContainer{}, err
	}

	auth, err := BuildAuthService(AuthConfig{
		Auth:        cfg.Auth,
		RedisClient: deps.RedisClient,
		Metrics:     obs.Sink,
		Logger:      logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build auth service: %w", err)
	}

	events := service.MustNewEventService(service.EventServiceOptions{
		Repo:   data.NewEventRepo(records, cfg.Backend.EventsTable),
		Logger: logger,
	})

	return ServiceContainer{
		Auth: auth,
		Bootstrap: service.NewSessionBootstrap(service.SessionBootstrapOptions{
			Auth:     auth,
			Resolver: authflow.Resolver{PreserveReturnPath: cfg.Auth.PreserveReturnPath},
			Metrics:  obs.Sink,
			Logger:   logger,
		}),
		Events: events,
		Profiles: service.NewProfileService(service.ProfileServiceOptions{
			Repo:   data.NewProfileRepo(records, cfg.Backend.ProfilesTable),
			Logger: logger,
		}),
		Dashboard: service.NewDashboardService(service.DashboardServiceOptions{Events: events}),
		Calendar: calendar.NewExporter(calendar.Options{
			BaseURL: cfg.HTTP.BaseURL,
		}),
		Health:        buildHealthChecks(deps.DB, deps.RedisClient),
		Observability: obs,
	}, nil
}

// ServiceOrchestrationConfig contains what RunServicesWithShutdown needs.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// RunServicesWithShutdown starts the HTTP server and blocks until a shutdown
// signal arrives or the server fails.
func RunServicesWithShutdown(ctx context.Context, cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	server, errCh := StartHTTPServer(&HTTPServerConfig{
		Config:   cfg.Config,
		Services: cfg.Services,
		Logger:   logger,
	})

	return waitForShutdown(shutdownConfig{
		ctx:     ctx,
		quit:    quit,
		errCh:   errCh,
		server:  server,
		timeout: cfg.Config.HTTP.ShutdownTimeout,
		logger:  logger,
	})
}

// shutdownConfig contains dependencies for graceful shutdown.
type shutdownConfig struct {
	ctx     context.Context
	quit    <-chan os.Signal
	errCh   <-chan error
	server  *http.Server
	timeout time.Duration
	logger  *slog.Logger
}

// waitForShutdown waits for a shutdown signal, context cancellation or
// server error, then stops the server.
func waitForShutdown(cfg shutdownConfig) error {
	select {
	case sig := <-cfg.quit:
		cfg.logger.Info("shutting down services", "signal", sig.String())
		return gracefulStop(cfg)
	case <-cfg.ctx.Done():
		cfg.logger.Info("shutting down services", "reason", cfg.ctx.Err())
		return gracefulStop(cfg)
	case err := <-cfg.errCh:
		cfg.logger.Error("service error", "error", err)
		if stopErr := gracefulStop(cfg); stopErr != nil {
			cfg.logger.Error("graceful stop failed", "error", stopErr)
		}
		return err
	}
}

func gracefulStop(cfg shutdownConfig) error {
	timeout := cfg.timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	// The parent context may already be canceled; shutdown gets its own budget.
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(cfg.ctx), timeout)
	defer cancel()

	return ShutdownHTTPServer(ShutdownConfig{
		Context: shutdownCtx,
		Server:  cfg.server,
		Logger:  cfg.logger,
	})
}
