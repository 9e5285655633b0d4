package bootstrap

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/target/eventhub/config"
	"github.com/target/eventhub/internal/adapters/hostedbackend"
	"github.com/target/eventhub/internal/data"
	"github.com/target/eventhub/internal/observability/metrics"
	"github.com/target/eventhub/internal/observability/statsd"
	"github.com/target/eventhub/internal/ports"
)

// hostedReadRetries bounds retries of idempotent reads against the hosted service.
const hostedReadRetries = 2

// RecordClientConfig selects and instruments the record backend.
type RecordClientConfig struct {
	Backend config.BackendConfig
	DB      *sql.DB
	Metrics statsd.Sink
	Logger  *slog.Logger
}

// BuildRecordClient returns the record backend for the configured mode,
// wrapped so every call reports latency and outcome.
//
//nolint:ireturn // the backend is chosen by configuration.
func BuildRecordClient(cfg RecordClientConfig) (ports.RecordClient, error) {
	var inner ports.RecordClient
	switch cfg.Backend.Mode {
	case config.BackendModeHosted:
		client, err := hostedbackend.NewClient(hostedbackend.Config{
			BaseURL:     cfg.Backend.URL,
			ProjectID:   cfg.Backend.ProjectID,
			PublicKey:   cfg.Backend.PublicKey,
			Timeout:     cfg.Backend.Timeout,
			FieldSuffix: cfg.Backend.FieldSuffix,
			RetryLimit:  hostedReadRetries,
			Logger:      cfg.Logger,
		})
		if err != nil {
			return nil, fmt.Errorf("hosted backend: %w", err)
		}
		inner = client
	case config.BackendModePostgres:
		if cfg.DB == nil {
			return nil, errors.New("postgres backend requires a database connection")
		}
		inner = data.NewRecordStore(cfg.DB)
	default:
		return nil, fmt.Errorf("unsupported backend mode %q", cfg.Backend.Mode)
	}

	if cfg.Metrics == nil {
		return inner, nil
	}
	return metrics.InstrumentRecordClient(inner, cfg.Metrics, string(cfg.Backend.Mode)), nil
}
