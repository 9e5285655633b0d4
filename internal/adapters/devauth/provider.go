// Package devauth provides a simple, config-driven AuthProvider for local development.
package devauth

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/target/eventhub/internal/domain/auth"
	"github.com/target/eventhub/internal/ports"
)

// Config controls the dev auth provider behavior.
// UserID and Email are required; the rest may be empty.
type Config struct {
	UserID          string
	Email           string
	FirstName       string
	LastName        string
	Groups          []string
	SessionDuration time.Duration // default 8h when zero
}

// Provider implements ports.AuthProvider for local development.
// It short-circuits the OAuth flow by redirecting back to our own callback
// with locally generated state and nonce.
// Exchange ignores the code and returns the configured identity.
type Provider struct {
	identity        domainauth.Identity
	sessionDuration time.Duration
	now             func() time.Time
}

// NewProvider constructs a dev auth provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.UserID == "" {
		return nil, errors.New("dev auth: UserID is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	dur := cfg.SessionDuration
	if dur == 0 {
		dur = 8 * time.Hour
	}
	return &Provider{
		identity: domainauth.Identity{
			UserID:    cfg.UserID,
			Email:     cfg.Email,
			FirstName: cfg.FirstName,
			LastName:  cfg.LastName,
			Groups:    append([]string(nil), cfg.Groups...),
		},
		sessionDuration: dur,
		now:             time.Now,
	}, nil
}

// Begin returns a local callback URL with a fresh state and nonce.
func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	state := uuid.NewString()
	nonce := uuid.NewString()

	// The standard handler expects GET /auth/callback?code=...&state=...
	q := url.Values{}
	q.Set("code", "dev")
	q.Set("state", state)
	if in.Signup {
		q.Set("signup", "1")
	}
	return "/auth/callback?" + q.Encode(), state, nonce, nil
}

// Exchange ignores the provided code/state/nonce (validation handled by handler) and returns the dev identity.
func (p *Provider) Exchange(_ context.Context, _ ports.ExchangeInput) (domainauth.Identity, error) {
	id := p.identity
	id.Groups = append([]string(nil), p.identity.Groups...)
	id.ExpiresAt = p.now().Add(p.sessionDuration)
	return id, nil
}
