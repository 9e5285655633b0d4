package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/target/eventhub/config"
	"github.com/target/eventhub/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger(os.Getenv("LOG_LEVEL"))
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}
	logger = bootstrap.InitLogger(cfg.LogLevel)

	logStartupInfo(ctx, logger, &cfg)

	db, redisClient, err := initInfrastructure(ctx, &cfg, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer func() {
			if cerr := db.Close(); cerr != nil {
				logger.ErrorContext(ctx, "close database failed", "error", cerr)
			}
		}()
	}
	defer func() {
		if cerr := redisClient.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close redis failed", "error", cerr)
		}
	}()

	if db != nil {
		if cfg.Postgres.RunMigrationsOnStart {
			if err = bootstrap.RunMigrations(ctx, db, logger); err != nil {
				return err
			}
		} else {
			logger.InfoContext(ctx, "skipping database migrations on startup", "reason", "disabled via config")
		}
	}

	services, err := bootstrap.NewServices(&bootstrap.ServiceDeps{
		Config:      &cfg,
		DB:          db,
		RedisClient: redisClient,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := services.Observability.Close(); cerr != nil {
			logger.WarnContext(ctx, "close metrics client failed", "error", cerr)
		}
	}()

	return bootstrap.RunServicesWithShutdown(ctx, &bootstrap.ServiceOrchestrationConfig{
		Config:   &cfg,
		Services: services,
		Logger:   logger,
	})
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	attrs := []any{
		"addr", cfg.HTTP.Addr,
		"auth_mode", cfg.Auth.Mode,
		"backend_mode", cfg.Backend.Mode,
		"dev", cfg.IsDev,
	}
	if cfg.UsesPostgres() {
		attrs = append(attrs,
			"db_host", cfg.Postgres.Host,
			"db_port", cfg.Postgres.Port,
			"db_name", cfg.Postgres.Name,
		)
	} else {
		attrs = append(attrs, "backend_url", cfg.Backend.URL)
	}
	logger.InfoContext(ctx, "starting eventhub service", attrs...)
}

// initInfrastructure connects shared dependencies used by the service runtime.
// The database is only opened for the postgres record backend.
//
//nolint:ireturn // returning redis.UniversalClient keeps sentinel/cluster support flexible.
func initInfrastructure(
	ctx context.Context,
	cfg *config.AppConfig,
	logger *slog.Logger,
) (*sql.DB, redis.UniversalClient, error) {
	var db *sql.DB
	if cfg.UsesPostgres() {
		var err error
		db, err = bootstrap.ConnectDB(ctx, bootstrap.DatabaseConfig{
			DBConfig: cfg.Postgres,
			Logger:   logger,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect db: %w", err)
		}
	}

	redisClient, err := bootstrap.ConnectRedis(ctx, bootstrap.DatabaseConfig{
		RedisConfig: cfg.Redis,
		Logger:      logger,
	})
	if err != nil {
		if db == nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		if cerr := db.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close database after redis connect failure", "error", cerr)
			return nil, nil, fmt.Errorf("connect redis: %w", errors.Join(err, fmt.Errorf("close database: %w", cerr)))
		}
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}

	return db, redisClient, nil
}
