package service

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/singleflight"

	domainauth "github.com/target/eventhub/internal/domain/auth"
	"github.com/target/eventhub/internal/domain/authflow"
	"github.com/target/eventhub/internal/observability/metrics"
	"github.com/target/eventhub/internal/observability/statsd"
)

// SessionBootstrapOptions groups dependencies for SessionBootstrap.
type SessionBootstrapOptions struct {
	Auth     *AuthService
	Resolver authflow.Resolver
	Metrics  statsd.Sink
	Logger   *slog.Logger
}

// SessionBootstrap runs the authentication check performed on every page
// load: it loads the visitor's session, asks the resolver where to go, and
// applies the resulting session action.
type SessionBootstrap struct {
	auth     *AuthService
	resolver authflow.Resolver
	metrics  statsd.Sink
	logger   *slog.Logger
	group    singleflight.Group
}

// ActionKeep leaves the session and the current page untouched. It is
// returned when the session store fails, never by the resolver.
const ActionKeep authflow.ActionKind = "keep"

// Decision is a resolved navigation. Session is set only for SetUser.
type Decision struct {
	NavigateTo string              `json:"navigate_to"`
	Action     authflow.ActionKind `json:"action"`
	Session    *domainauth.Session `json:"session,omitempty"`
}

// NewSessionBootstrap constructs a SessionBootstrap.
func NewSessionBootstrap(opts SessionBootstrapOptions) *SessionBootstrap {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionBootstrap{
		auth:     opts.Auth,
		resolver: opts.Resolver,
		metrics:  opts.Metrics,
		logger:   logger.With("component", "session_bootstrap"),
	}
}

// Resolve decides where the visitor holding sessionID goes from nav.
// Concurrent calls for the same session and location share one resolution.
// The only error returned is ctx's.
func (b *SessionBootstrap) Resolve(
	ctx context.Context,
	sessionID string,
	nav authflow.NavigationContext,
) (Decision, error) {
	key := sessionID + "\x00" + nav.CurrentPath + "\x00" + nav.RedirectParam
	ch := b.group.DoChan(key, func() (any, error) {
		return b.resolve(context.WithoutCancel(ctx), sessionID, nav), nil
	})

	select {
	case <-ctx.Done():
		return Decision{}, ctx.Err()
	case res := <-ch:
		return res.Val.(Decision), nil
	}
}

func (b *SessionBootstrap) resolve(ctx context.Context, sessionID string, nav authflow.NavigationContext) Decision {
	outcome, err := b.outcome(ctx, sessionID)
	if err != nil {
		b.logger.WarnContext(ctx, "session lookup failed, keeping session",
			"path", nav.CurrentPath,
			"error", err,
		)
		metrics.EmitResolution(b.metrics, metrics.ResolutionMetric{
			Action:     string(ActionKeep),
			StoreError: true,
		})
		return Decision{NavigateTo: nav.CurrentPath, Action: ActionKeep}
	}

	result := b.resolver.Resolve(nav, outcome)
	decision := Decision{NavigateTo: result.NavigateTo, Action: result.Action.Kind}
	switch result.Action.Kind {
	case authflow.ActionSetUser:
		decision.Session = result.Action.User
	case authflow.ActionClearUser:
		b.clearUser(ctx, sessionID)
	}

	metrics.EmitResolution(b.metrics, metrics.ResolutionMetric{
		Action:     string(result.Action.Kind),
		Redirected: result.NavigateTo != nav.CurrentPath,
	})
	b.logger.DebugContext(ctx, "navigation resolved",
		"path", nav.CurrentPath,
		"navigate_to", decision.NavigateTo,
		"action", decision.Action,
	)
	return decision
}

// outcome loads the session. A non-nil error means the store could not
// answer and the visitor's sign-in state is unknown.
func (b *SessionBootstrap) outcome(ctx context.Context, sessionID string) (authflow.Outcome, error) {
	if sessionID == "" || b.auth == nil {
		return authflow.Unauthenticated(), nil
	}
	sess, err := b.auth.GetSession(ctx, sessionID)
	if err == nil {
		return authflow.Authenticated(*sess), nil
	}
	if !IsSignedOut(err) {
		return authflow.Outcome{}, err
	}
	if isJoined(err) {
		b.logger.WarnContext(ctx, "expired session cleanup failed", "error", err)
	}
	return authflow.Unauthenticated(), nil
}

func (b *SessionBootstrap) clearUser(ctx context.Context, sessionID string) {
	if sessionID == "" || b.auth == nil {
		return
	}
	if err := b.auth.Logout(ctx, sessionID); err != nil {
		b.logger.WarnContext(ctx, "clear session failed", "error", err)
	}
}

// isJoined reports whether err carries more than one cause, such as an
// expired session whose cleanup also failed.
func isJoined(err error) bool {
	var multi interface{ Unwrap() []error }
	return errors.As(err, &multi)
}
