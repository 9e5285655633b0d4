// Package redis provides Redis-based adapters for eventhub.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/target/eventhub/internal/domain/auth"
	"github.com/target/eventhub/internal/ports"
)

const defaultSessionPrefix = "eventhub:session:"

// ErrNotFound is returned when a session is not found.
var ErrNotFound = ports.ErrSessionNotFound

// SessionStoreOptions configures a SessionStore.
type SessionStoreOptions struct {
	Client redis.UniversalClient
	// Prefix namespaces session keys; defaults to "eventhub:session:".
	Prefix string
	// Now overrides the clock used for expiry checks.
	Now func() time.Time
}

// SessionStore is a Redis-based session store for production use.
// Keys expire with the session, so Redis drops stale sessions on its own.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewSessionStore creates a new Redis-based session store.
func NewSessionStore(client redis.UniversalClient) *SessionStore {
	return NewSessionStoreWithOptions(SessionStoreOptions{Client: client})
}

// NewSessionStoreWithOptions creates a Redis session store from opts.
func NewSessionStoreWithOptions(opts SessionStoreOptions) *SessionStore {
	s := &SessionStore{client: opts.Client, prefix: opts.Prefix, now: opts.Now}
	if s.prefix == "" {
		s.prefix = defaultSessionPrefix
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *SessionStore) key(id string) string { return s.prefix + id }

// Save stores sess until its ExpiresAt.
func (s *SessionStore) Save(ctx context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}

	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return errors.New("session is expired")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sess.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Get loads a live session. Missing and expired sessions return ErrNotFound.
func (s *SessionStore) Get(ctx context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, ErrNotFound
	}

	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domainauth.Session{}, ErrNotFound
	}
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("redis get: %w", err)
	}

	var sess domainauth.Session
	if unmarshalErr := json.Unmarshal(data, &sess); unmarshalErr != nil {
		return domainauth.Session{}, fmt.Errorf("unmarshal session: %w", unmarshalErr)
	}

	// Key TTLs are second-granular; the stored expiry is authoritative.
	if sess.Expired(s.now()) {
		if deleteErr := s.Delete(ctx, id); deleteErr != nil {
			return domainauth.Session{}, fmt.Errorf("cleanup expired session: %w", deleteErr)
		}
		return domainauth.Session{}, ErrNotFound
	}

	return sess, nil
}

// Delete removes a session. Deleting an unknown ID is not an error.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
