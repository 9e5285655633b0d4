package config

import (
	"fmt"
	"strings"
	"time"
)

// BackendMode selects where event and profile records are stored.
type BackendMode string

const (
	// BackendModeHosted stores records in the hosted record service.
	BackendModeHosted BackendMode = "hosted"
	// BackendModePostgres stores records in the local PostgreSQL database.
	BackendModePostgres BackendMode = "postgres"
)

// UnmarshalText implements encoding.TextUnmarshaler for BackendMode.
func (b *BackendMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "hosted", "postgres":
		*b = BackendMode(v)
		return nil
	default:
		return fmt.Errorf("invalid BackendMode: %q (valid options: hosted, postgres)", v)
	}
}

// BackendConfig configures the record backend.
type BackendConfig struct {
	Mode BackendMode `env:"MODE" envDefault:"postgres"`

	// URL, ProjectID and PublicKey are used when Mode=hosted.
	URL       string        `env:"URL"`
	ProjectID string        `env:"PROJECT_ID"`
	PublicKey string        `env:"PUBLIC_KEY"`
	Timeout   time.Duration `env:"TIMEOUT" envDefault:"10s"`
	// FieldSuffix is appended to custom field names on the hosted service (e.g. "_c").
	FieldSuffix string `env:"FIELD_SUFFIX"`

	EventsTable   string `env:"EVENTS_TABLE"   envDefault:"events"`
	ProfilesTable string `env:"PROFILES_TABLE" envDefault:"profiles"`
}

// Sanitize applies guardrails to backend configuration values.
func (b *BackendConfig) Sanitize() {
	b.URL = strings.TrimRight(strings.TrimSpace(b.URL), "/")
	b.FieldSuffix = strings.TrimSpace(b.FieldSuffix)
	if b.Timeout <= 0 {
		b.Timeout = 10 * time.Second
	}
	if b.EventsTable == "" {
		b.EventsTable = "events"
	}
	if b.ProfilesTable == "" {
		b.ProfilesTable = "profiles"
	}
}

// Validate reports configuration that cannot work at runtime.
func (b *BackendConfig) Validate() error {
	if b.Mode == BackendModeHosted && (b.URL == "" || b.ProjectID == "") {
		return fmt.Errorf("backend mode %q requires BACKEND_URL and BACKEND_PROJECT_ID", b.Mode)
	}
	return nil
}
