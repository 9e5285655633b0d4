package httpx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	domainauth "github.com/target/eventhub/internal/domain/auth"
)

func TestSessionFrom(t *testing.T) {
	s, ok := SessionFrom(context.Background())
	assert.False(t, ok)
	assert.Nil(t, s)

	sess := &domainauth.Session{ID: "abc", UserID: "user-1", Role: domainauth.RoleUser}
	ctx := WithSession(context.Background(), sess)
	s, ok = SessionFrom(ctx)
	assert.True(t, ok)
	assert.Same(t, sess, s)
	assert.Same(t, sess, CurrentSession(ctx))
}

func TestWithSession_NilKeepsContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, ctx, WithSession(ctx, nil))
	assert.Nil(t, CurrentSession(ctx))
}

func TestSessionFrom_TypedNil(t *testing.T) {
	var nilSession *domainauth.Session
	ctx := context.WithValue(context.Background(), sessionKey{}, nilSession)
	_, ok := SessionFrom(ctx)
	assert.False(t, ok)
}
