package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/target/eventhub/internal/domain/auth"
	"github.com/target/eventhub/internal/service"
)

// RequestIDHeader carries the per-request correlation ID. An incoming value is
// reused so IDs survive a proxy hop.
const RequestIDHeader = "X-Request-ID"

// Logging logs one line per request and tags the response with a request ID.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := r.Header.Get(RequestIDHeader)
			if reqID == "" || len(reqID) > 128 {
				reqID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, reqID)

			ww := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(ww, r)

			level := slog.LevelInfo
			if ww.Status() >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.LogAttrs(r.Context(), level, "http",
				slog.String("request_id", reqID),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.bytes),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusRecorder) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// Status is 200 when the handler never wrote a header.
func (w *statusRecorder) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func (w *statusRecorder) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Recover turns a handler panic into a 500 JSON error. http.ErrAbortHandler is
// re-raised so the server can drop the connection.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				logger.ErrorContext(r.Context(), "panic",
					slog.Any("error", rec),
					slog.String("path", r.URL.Path),
					slog.String("method", r.Method),
					slog.String("stack", string(debug.Stack())))
				WriteError(w, ErrorParams{
					Code:    http.StatusInternalServerError,
					ErrCode: "internal_error",
					Err:     errors.New("internal server error"),
				})
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth returns a middleware that requires a signed-in, non-guest session.
// Missing or expired sessions get 401; guests get 403.
func RequireAuth(authSvc AuthServiceInterface, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := getSessionFromRequest(r, authSvc, logger)
			if session == nil {
				WriteError(w, ErrorParams{
					Code:    http.StatusUnauthorized,
					ErrCode: "authentication_required",
					Err:     errors.New("authentication required"),
				})
				return
			}
			if session.IsGuest() {
				WriteError(w, ErrorParams{
					Code:    http.StatusForbidden,
					ErrCode: "insufficient_permissions",
					Err:     errors.New("insufficient permissions"),
				})
				return
			}

			ctx := WithSession(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth adds the session to the request context when one is present.
func OptionalAuth(authSvc AuthServiceInterface, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if session := getSessionFromRequest(r, authSvc, logger); session != nil {
				r = r.WithContext(WithSession(r.Context(), session))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// getSessionFromRequest retrieves and validates a session from the request cookie.
func getSessionFromRequest(r *http.Request, authSvc AuthServiceInterface, logger *slog.Logger) *domainauth.Session {
	sessionCookie, err := r.Cookie(SessionCookieName)
	if err != nil || sessionCookie.Value == "" {
		return nil
	}

	session, err := authSvc.GetSession(r.Context(), sessionCookie.Value)
	if err != nil {
		if !service.IsSignedOut(err) && logger != nil {
			logger.WarnContext(r.Context(), "session lookup failed", "error", err)
		}
		return nil
	}

	return session
}
