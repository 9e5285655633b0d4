package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/target/eventhub/config"
	"github.com/target/eventhub/internal/adapters/authroles"
	"github.com/target/eventhub/internal/adapters/devauth"
	"github.com/target/eventhub/internal/adapters/oidc"
	redisadapter "github.com/target/eventhub/internal/adapters/redis"
	"github.com/target/eventhub/internal/observability/statsd"
	"github.com/target/eventhub/internal/ports"
	"github.com/target/eventhub/internal/service"
)

const sessionKeyPrefix = "eventhub:session:"

// AuthConfig contains configuration for auth service.
type AuthConfig struct {
	Auth        config.AuthConfig
	RedisClient redis.UniversalClient
	Metrics     statsd.Sink
	Logger      *slog.Logger
}

// BuildAuthService creates an auth service for the configured auth mode.
// Sessions live in Redis in both modes.
func BuildAuthService(cfg AuthConfig) (*service.AuthService, error) {
	if cfg.RedisClient == nil {
		return nil, errors.New("auth requires a redis client for sessions")
	}

	provider, err := buildAuthProvider(cfg.Auth)
	if err != nil {
		return nil, err
	}
	if cfg.Logger != nil {
		cfg.Logger.Info("auth configured", "mode", cfg.Auth.Mode, "session_ttl", cfg.Auth.SessionTTL)
	}

	return service.NewAuthService(service.AuthServiceOptions{
		Provider: provider,
		Sessions: redisadapter.NewSessionStoreWithOptions(redisadapter.SessionStoreOptions{
			Client: cfg.RedisClient,
			Prefix: sessionKeyPrefix,
		}),
		Roles: authroles.StaticRoleMapper{
			AdminGroup: cfg.Auth.AdminGroup,
			UserGroup:  cfg.Auth.UserGroup,
		},
		SessionTTL: cfg.Auth.SessionTTL,
		Metrics:    cfg.Metrics,
		Logger:     cfg.Logger,
	}), nil
}

//nolint:ireturn // the provider is chosen by configuration.
func buildAuthProvider(cfg config.AuthConfig) (ports.AuthProvider, error) {
	switch cfg.Mode {
	case config.AuthModeMock:
		prov, err := devauth.NewProvider(devauth.Config{
			UserID:          cfg.DevAuth.UserID,
			Email:           cfg.DevAuth.Email,
			FirstName:       cfg.DevAuth.FirstName,
			LastName:        cfg.DevAuth.LastName,
			Groups:          cfg.DevAuth.Groups,
			SessionDuration: cfg.SessionTTL,
		})
		if err != nil {
			return nil, fmt.Errorf("dev auth provider: %w", err)
		}
		return prov, nil

	case config.AuthModeOAuth:
		oauth := cfg.OAuth
		if oauth.DiscoveryURL == "" || oauth.ClientID == "" || oauth.ClientSecret == "" {
			return nil, errors.New("oauth auth mode requires OAUTH_DISCOVERY_URL, OAUTH_CLIENT_ID and OAUTH_CLIENT_SECRET")
		}
		prov, err := oidc.NewProvider(oidc.ProviderConfig{
			ClientID:     oauth.ClientID,
			ClientSecret: oauth.ClientSecret,
			RedirectURL:  oauth.RedirectURL,
			Scope:        oauth.Scope,
			DiscoveryURL: oauth.DiscoveryURL,
		})
		if err != nil {
			return nil, fmt.Errorf("oidc provider: %w", err)
		}
		return prov, nil

	default:
		return nil, fmt.Errorf("unsupported auth mode %q", cfg.Mode)
	}
}
