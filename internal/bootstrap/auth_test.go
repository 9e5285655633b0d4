package bootstrap

import (
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/eventhub/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRedis(t *testing.T) redis.UniversalClient {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func mockAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		Mode:       config.AuthModeMock,
		AdminGroup: "admins",
		DevAuth: config.DevAuthConfig{
			UserID:    "dev",
			Email:     "dev@example.com",
			FirstName: "Dev",
			LastName:  "User",
			Groups:    []string{"admins"},
		},
	}
}

func TestBuildAuthService_MockMode(t *testing.T) {
	svc, err := BuildAuthService(AuthConfig{
		Auth:        mockAuthConfig(),
		RedisClient: newTestRedis(t),
		Logger:      discardLogger(),
	})
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestBuildAuthService_Errors(t *testing.T) {
	redisClient := newTestRedis(t)

	tests := []struct {
		name    string
		cfg     AuthConfig
		wantErr string
	}{
		{
			name:    "no redis",
			cfg:     AuthConfig{Auth: mockAuthConfig()},
			wantErr: "redis",
		},
		{
			name: "dev identity incomplete",
			cfg: AuthConfig{
				Auth:        config.AuthConfig{Mode: config.AuthModeMock},
				RedisClient: redisClient,
			},
			wantErr: "dev auth",
		},
		{
			name: "oauth without discovery url",
			cfg: AuthConfig{
				Auth: config.AuthConfig{
					Mode:  config.AuthModeOAuth,
					OAuth: config.OAuthConfig{ClientID: "id", ClientSecret: "secret"},
				},
				RedisClient: redisClient,
			},
			wantErr: "OAUTH_DISCOVERY_URL",
		},
		{
			name: "unknown mode",
			cfg: AuthConfig{
				Auth:        config.AuthConfig{Mode: "saml"},
				RedisClient: redisClient,
			},
			wantErr: `unsupported auth mode "saml"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := BuildAuthService(tt.cfg)
			require.Error(t, err)
			assert.Nil(t, svc)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
