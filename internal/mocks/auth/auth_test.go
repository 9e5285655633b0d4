package auth

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/eventhub/internal/domain/auth"
	"github.com/target/eventhub/internal/ports"
)

func TestMockAuthProvider_Begin(t *testing.T) {
	ctx := context.Background()
	p := NewMockAuthProvider()

	url, state, nonce, err := p.Begin(ctx, ports.BeginInput{RedirectURL: "/events"})
	require.NoError(t, err)
	assert.Equal(t, "https://mock-idp/auth", url)
	assert.Equal(t, "state-1", state)
	assert.Equal(t, "nonce-1", nonce)

	url, state, _, err = p.Begin(ctx, ports.BeginInput{RedirectURL: "/", Signup: true})
	require.NoError(t, err)
	assert.Equal(t, "https://mock-idp/auth?prompt=create", url)
	assert.Equal(t, "state-2", state)
	assert.True(t, p.LastBegin.Signup)

	custom := &MockAuthProvider{AuthURL: "https://idp/login", StatePrefix: "s", NoncePrefix: "n"}
	url, state, nonce, err = custom.Begin(ctx, ports.BeginInput{})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://idp/login", "s-1", "n-1"}, []string{url, state, nonce})
}

func TestMockAuthProvider_BeginConcurrent(t *testing.T) {
	p := NewMockAuthProvider()
	var wg sync.WaitGroup
	states := make(chan string, 20)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, s, _, _ := p.Begin(context.Background(), ports.BeginInput{})
			states <- s
		}()
	}
	wg.Wait()
	close(states)

	seen := map[string]bool{}
	for s := range states {
		assert.False(t, seen[s], "duplicate state %s", s)
		seen[s] = true
	}
}

func TestMockAuthProvider_Exchange(t *testing.T) {
	ctx := context.Background()

	id, err := (&MockAuthProvider{}).Exchange(ctx, ports.ExchangeInput{})
	require.NoError(t, err)
	assert.Equal(t, "mock-user-1", id.UserID)
	assert.False(t, id.ExpiresAt.IsZero())

	p := &MockAuthProvider{DefaultUser: domainauth.Identity{UserID: "grace", Groups: []string{"admins"}}}
	id, err = p.Exchange(ctx, ports.ExchangeInput{})
	require.NoError(t, err)
	assert.Equal(t, "grace", id.UserID)
	assert.Equal(t, []string{"admins"}, id.Groups)

	boom := errors.New("idp down")
	p.ExchangeFunc = func(context.Context, ports.ExchangeInput) (domainauth.Identity, error) {
		return domainauth.Identity{}, boom
	}
	_, err = p.Exchange(ctx, ports.ExchangeInput{})
	assert.ErrorIs(t, err, boom)
}

func TestMemorySessionStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()

	require.Error(t, store.Save(ctx, domainauth.Session{}))
	require.NoError(t, store.Save(ctx, domainauth.Session{ID: "s1", UserID: "u1"}))
	assert.True(t, store.Has("s1"))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)

	require.NoError(t, store.Delete(ctx, ""))
	require.NoError(t, store.Delete(ctx, "s1"))
	assert.False(t, store.Has("s1"))
	assert.Equal(t, 1, store.Deletes())
}

func TestMemorySessionStore_InjectedErrors(t *testing.T) {
	boom := errors.New("redis unavailable")
	store := NewMemorySessionStore()
	store.GetErr = boom
	store.DeleteErr = boom

	_, err := store.Get(context.Background(), "s1")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, store.Delete(context.Background(), "s1"), boom)
	assert.Zero(t, store.Deletes())
}

func TestStaticRoleMapper(t *testing.T) {
	m := StaticRoleMapper{AdminGroup: "admins", UserGroup: "organizers"}
	tests := []struct {
		groups []string
		want   domainauth.Role
	}{
		{[]string{"organizers", "admins"}, domainauth.RoleAdmin},
		{[]string{"organizers"}, domainauth.RoleUser},
		{[]string{"visitors"}, domainauth.RoleGuest},
		{nil, domainauth.RoleGuest},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, m.Map(tt.groups), "%v", tt.groups)
	}
	assert.Equal(t, domainauth.RoleGuest, StaticRoleMapper{}.Map([]string{""}))
}
