package config

import (
	"strings"
	"time"
)

// ObservabilityConfig groups metrics settings.
type ObservabilityConfig struct {
	Metrics ObservabilityMetricsConfig
}

func (c *ObservabilityConfig) Sanitize() {
	c.Metrics.Sanitize()
}

// ObservabilityMetricsConfig controls StatsD emission. Metrics are buffered
// and sent every FlushInterval.
type ObservabilityMetricsConfig struct {
	Enabled       bool              `env:"OBSERVABILITY_METRICS_ENABLED"        envDefault:"false"`
	StatsdAddress string            `env:"OBSERVABILITY_METRICS_STATSD_ADDRESS" envDefault:"127.0.0.1:8125"`
	Prefix        string            `env:"OBSERVABILITY_METRICS_PREFIX"         envDefault:"eventhub"`
	FlushInterval time.Duration     `env:"OBSERVABILITY_METRICS_FLUSH_INTERVAL" envDefault:"1s"`
	Tags          map[string]string `env:"OBSERVABILITY_METRICS_TAGS"`
}

// Sanitize disables emission when no address remains after trimming.
func (c *ObservabilityMetricsConfig) Sanitize() {
	c.StatsdAddress = strings.TrimSpace(c.StatsdAddress)
	c.Prefix = strings.Trim(strings.TrimSpace(c.Prefix), ".")
	if c.StatsdAddress == "" {
		c.Enabled = false
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = time.Second
	}
}

func (c *ObservabilityMetricsConfig) IsEnabled() bool {
	return c.Enabled && c.StatsdAddress != ""
}
