package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeOAuth uses OAuth/OIDC for authentication.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeMock uses mock/dev authentication (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oauth", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oauth, mock)", v)
	}
}

// OAuthConfig contains OAuth/OIDC configuration.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"     envDefault:"eventhub"`
	ClientSecret string `env:"CLIENT_SECRET" envDefault:"eventhub"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email groups"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
}

// DevAuthConfig controls mock/dev authentication identity.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	UserID    string   `env:"USER_ID"    envDefault:"dev-user"`
	Email     string   `env:"EMAIL"      envDefault:"dev@example.com"`
	FirstName string   `env:"FIRST_NAME" envDefault:"Dev"`
	LastName  string   `env:"LAST_NAME"  envDefault:"User"`
	Groups    []string `env:"GROUPS"     envDefault:"organizers" envSeparator:";"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which authentication provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oauth"`

	OAuth OAuthConfig `envPrefix:"OAUTH_"`

	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// AdminGroup is the identity provider group granted the admin role.
	AdminGroup string `env:"ADMIN_GROUP" envDefault:"admins"`

	// UserGroup is the identity provider group granted the user role.
	// Empty means every authenticated identity is a user.
	UserGroup string `env:"USER_GROUP"`

	// SessionTTL bounds how long a login stays valid.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"8h"`

	// PreserveReturnPath makes unauthenticated visits to protected pages
	// carry ?redirect=<path> to /login instead of a bare /login.
	PreserveReturnPath bool `env:"AUTH_PRESERVE_RETURN_PATH" envDefault:"false"`
}

// Sanitize applies guardrails to authentication configuration values.
func (a *AuthConfig) Sanitize() {
	if a.SessionTTL <= 0 {
		a.SessionTTL = 8 * time.Hour
	}
	a.AdminGroup = strings.TrimSpace(a.AdminGroup)
	a.UserGroup = strings.TrimSpace(a.UserGroup)
}
