package httpx

import (
	"context"

	domainauth "github.com/target/eventhub/internal/domain/auth"
)

type sessionKey struct{}

// WithSession attaches the signed-in session to ctx. A nil session leaves ctx as is.
func WithSession(ctx context.Context, session *domainauth.Session) context.Context {
	if session == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, session)
}

// SessionFrom returns the session attached by WithSession.
func SessionFrom(ctx context.Context) (*domainauth.Session, bool) {
	session, ok := ctx.Value(sessionKey{}).(*domainauth.Session)
	return session, ok && session != nil
}

// CurrentSession is SessionFrom without the flag; it returns nil for anonymous requests.
func CurrentSession(ctx context.Context) *domainauth.Session {
	session, _ := SessionFrom(ctx)
	return session
}
