// Package auth provides in-memory doubles for the auth ports.
package auth

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	domainauth "github.com/target/eventhub/internal/domain/auth"
	"github.com/target/eventhub/internal/ports"
)

var (
	_ ports.AuthProvider = (*MockAuthProvider)(nil)
	_ ports.SessionStore = (*MemorySessionStore)(nil)
	_ ports.RoleMapper   = StaticRoleMapper{}
)

// ErrNotFound is what MemorySessionStore.Get returns for unknown IDs.
var ErrNotFound = ports.ErrSessionNotFound

const defaultAuthURL = "https://mock-idp/auth"

func defaultIdentity() domainauth.Identity {
	return domainauth.Identity{
		UserID:    "mock-user-1",
		FirstName: "Mock",
		LastName:  "User",
		Email:     "mock.user@example.com",
		Groups:    []string{"organizers"},
	}
}

// MockAuthProvider hands out numbered state/nonce pairs ("state-1", "nonce-1", ...)
// and signs in DefaultUser. BeginFunc and ExchangeFunc override either step.
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error)

	AuthURL     string
	StatePrefix string
	NoncePrefix string
	DefaultUser domainauth.Identity

	// LastBegin is the input of the most recent Begin call.
	LastBegin ports.BeginInput

	mu     sync.Mutex
	begins int
}

func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{DefaultUser: defaultIdentity()}
}

func (m *MockAuthProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}

	m.mu.Lock()
	m.begins++
	n := m.begins
	m.LastBegin = in
	m.mu.Unlock()

	authURL := cmp.Or(m.AuthURL, defaultAuthURL)
	if in.Signup {
		authURL += "?prompt=create"
	}
	state := fmt.Sprintf("%s-%d", cmp.Or(m.StatePrefix, "state"), n)
	nonce := fmt.Sprintf("%s-%d", cmp.Or(m.NoncePrefix, "nonce"), n)
	return authURL, state, nonce, nil
}

// Exchange returns DefaultUser (or the built-in identity when it is unset)
// expiring an hour from now.
func (m *MockAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}
	id := m.DefaultUser
	if id.UserID == "" {
		id = defaultIdentity()
	}
	id.ExpiresAt = time.Now().Add(time.Hour)
	return id, nil
}

// MemorySessionStore keeps sessions in a map. GetErr and DeleteErr, when
// set, are returned without touching the map.
type MemorySessionStore struct {
	GetErr    error
	DeleteErr error

	mu       sync.Mutex
	sessions map[string]domainauth.Session
	deletes  int
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: map[string]domainauth.Session{}}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	if m.GetErr != nil {
		return domainauth.Session{}, m.GetErr
	}
	m.mu.Lock()
	sess, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return domainauth.Session{}, ErrNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	if id == "" {
		return nil
	}
	m.mu.Lock()
	m.deletes++
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

func (m *MemorySessionStore) Has(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[id]
	return ok
}

// Deletes counts Delete calls with a non-empty ID.
func (m *MemorySessionStore) Deletes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deletes
}

// StaticRoleMapper is a strict mapper: identities in neither group are guests.
type StaticRoleMapper struct {
	AdminGroup string
	UserGroup  string
}

func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	switch {
	case m.AdminGroup != "" && slices.Contains(groups, m.AdminGroup):
		return domainauth.RoleAdmin
	case m.UserGroup != "" && slices.Contains(groups, m.UserGroup):
		return domainauth.RoleUser
	default:
		return domainauth.RoleGuest
	}
}
