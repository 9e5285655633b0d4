// Package ports declares the boundaries between services and their adapters:
// identity providers, the session store, role mapping and the record backend.
package ports

import (
	"context"
	"errors"

	domainauth "github.com/target/eventhub/internal/domain/auth"
)

// BeginInput starts a sign-in. RedirectURL is where the user lands afterwards.
type BeginInput struct {
	RedirectURL string
	Signup      bool
}

// ExchangeInput carries the callback code with the state and nonce issued by Begin.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// AuthProvider runs the redirect-based sign-in against an identity provider.
type AuthProvider interface {
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// ErrSessionNotFound is returned by SessionStore.Get for unknown or evicted IDs.
var ErrSessionNotFound = errors.New("session not found")

type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	// Delete is a no-op for unknown IDs.
	Delete(ctx context.Context, id string) error
}

// RoleMapper turns provider groups into a role.
type RoleMapper interface {
	Map(groups []string) domainauth.Role
}
