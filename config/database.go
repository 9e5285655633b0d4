package config

import "time"

// DBConfig describes the PostgreSQL record store. It is only read when
// BACKEND_MODE=postgres.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"eventhub"`
	Password string `env:"PASSWORD" envDefault:"eventhub"`
	Name     string `env:"NAME"     envDefault:"eventhub"`
	// SSLMode is passed through as the sslmode URL parameter; production should use "require".
	SSLMode string `env:"SSL_MODE" envDefault:"disable"`

	MaxOpenConns    int           `env:"MAX_OPEN_CONNS"     envDefault:"25"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS"     envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME"  envDefault:"5m"`

	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// Sanitize keeps pool settings usable when the environment carries zero or negative values.
func (c *DBConfig) Sanitize() {
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 25
	}
	if c.MaxIdleConns < 0 || c.MaxIdleConns > c.MaxOpenConns {
		c.MaxIdleConns = c.MaxOpenConns
	}
	if c.ConnMaxLifetime <= 0 {
		c.ConnMaxLifetime = 5 * time.Minute
	}
}

// RedisConfig selects the session store deployment: a single node by
// default, or sentinel/cluster when the matching flag is set.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}
