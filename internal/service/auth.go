package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/target/eventhub/internal/data"
	domainauth "github.com/target/eventhub/internal/domain/auth"
	"github.com/target/eventhub/internal/observability/metrics"
	"github.com/target/eventhub/internal/observability/statsd"
	"github.com/target/eventhub/internal/ports"
)

// DefaultSessionTTL applies when neither the options nor the identity bound a session.
const DefaultSessionTTL = 8 * time.Hour

// ErrSessionExpired is returned by GetSession for a session past its expiry.
var ErrSessionExpired = errors.New("session expired")

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider ports.AuthProvider
	Sessions ports.SessionStore
	Roles    ports.RoleMapper

	// SessionTTL caps how long a new session lives. The IdP token expiry wins when it is sooner.
	SessionTTL   time.Duration
	TimeProvider data.TimeProvider
	Metrics      statsd.Sink
	Logger       *slog.Logger
}

// AuthService orchestrates authentication flows by coordinating provider, role mapping, and session persistence.
type AuthService struct {
	provider ports.AuthProvider
	sessions ports.SessionStore
	roles    ports.RoleMapper

	ttl     time.Duration
	clock   data.TimeProvider
	metrics statsd.Sink
	logger  *slog.Logger
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	if opts.TimeProvider == nil {
		opts.TimeProvider = &data.RealTimeProvider{}
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultSessionTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		provider: opts.Provider,
		sessions: opts.Sessions,
		roles:    opts.Roles,
		ttl:      opts.SessionTTL,
		clock:    opts.TimeProvider,
		metrics:  opts.Metrics,
		logger:   logger.With("component", "auth_service"),
	}
}

// BeginLoginResult contains the result of beginning a login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginLogin initiates an authentication flow and returns the provider auth URL with state and nonce.
// Signup asks the provider for its account creation screen.
func (s *AuthService) BeginLogin(ctx context.Context, redirectURL string, signup bool) (*BeginLoginResult, error) {
	if redirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	input := ports.BeginInput{RedirectURL: redirectURL, Signup: signup}
	authURL, state, nonce, err := s.provider.Begin(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}

	return &BeginLoginResult{
		AuthURL: authURL,
		State:   state,
		Nonce:   nonce,
	}, nil
}

// CompleteLoginInput groups parameters for completing a login flow.
type CompleteLoginInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteLoginResult contains the result of completing a login flow.
type CompleteLoginResult struct {
	Session domainauth.Session
}

// CompleteLogin completes an authentication flow by exchanging the code for an identity,
// mapping roles, and persisting a session.
func (s *AuthService) CompleteLogin(ctx context.Context, input CompleteLoginInput) (*CompleteLoginResult, error) {
	res, err := s.completeLogin(ctx, input)
	if err != nil {
		metrics.EmitLogin(s.metrics, metrics.ResultError, err)
		return nil, err
	}
	metrics.EmitLogin(s.metrics, metrics.ResultSuccess, nil)
	return res, nil
}

func (s *AuthService) completeLogin(ctx context.Context, input CompleteLoginInput) (*CompleteLoginResult, error) {
	if input.Code == "" {
		return nil, errors.New("authorization code is required")
	}
	if input.State == "" {
		return nil, errors.New("state parameter is required")
	}
	if input.Nonce == "" {
		return nil, errors.New("nonce parameter is required")
	}

	identity, err := s.provider.Exchange(ctx, ports.ExchangeInput{
		Code:  input.Code,
		State: input.State,
		Nonce: input.Nonce,
	})
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	if identity.UserID == "" {
		return nil, errors.New("identity has no subject")
	}

	session := domainauth.Session{
		ID:        generateSessionID(),
		UserID:    identity.UserID,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
		Email:     identity.Email,
		Role:      s.roles.Map(identity.Groups),
		ExpiresAt: s.sessionExpiry(identity.ExpiresAt),
	}

	if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
		return nil, fmt.Errorf("save session: %w", saveErr)
	}

	s.logger.InfoContext(ctx, "login completed", "user_id", session.UserID, "role", session.Role)
	return &CompleteLoginResult{Session: session}, nil
}

func (s *AuthService) sessionExpiry(tokenExpiry time.Time) time.Time {
	limit := s.clock.Now().Add(s.ttl)
	if !tokenExpiry.IsZero() && tokenExpiry.Before(limit) {
		return tokenExpiry
	}
	return limit
}

// GetSession retrieves a live session by ID. Missing sessions wrap
// ports.ErrSessionNotFound; expired ones are deleted and reported as ErrSessionExpired.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, errors.New("session ID is required")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if session.Expired(s.clock.Now()) {
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return nil, errors.Join(ErrSessionExpired, fmt.Errorf("delete session: %w", deleteErr))
		}
		return nil, ErrSessionExpired
	}

	return &session, nil
}

// IsSignedOut reports whether err from GetSession means there is simply no live session.
func IsSignedOut(err error) bool {
	return errors.Is(err, ports.ErrSessionNotFound) || errors.Is(err, ErrSessionExpired)
}

// Logout removes a session.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

// generateSessionID creates a random, URL-safe session ID.
func generateSessionID() string {
	return uuid.New().String()
}
