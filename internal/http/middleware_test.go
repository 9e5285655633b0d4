package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/eventhub/internal/domain/auth"
	"github.com/target/eventhub/internal/ports"
)

func bufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestLogging_RecordsStatusAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	h := Logging(bufferLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events", nil))

	reqID := rec.Header().Get(RequestIDHeader)
	require.NotEmpty(t, reqID)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "http", line["msg"])
	assert.Equal(t, reqID, line["request_id"])
	assert.InDelta(t, http.StatusTeapot, line["status"], 0)
	assert.InDelta(t, 5, line["bytes"], 0)
	assert.Equal(t, "/events", line["path"])
}

func TestLogging_ReusesIncomingRequestID(t *testing.T) {
	var buf bytes.Buffer
	h := Logging(bufferLogger(&buf))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "upstream-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "upstream-42", rec.Header().Get(RequestIDHeader))
	assert.Contains(t, buf.String(), `"status":200`)
}

func TestRecover_WritesJSONError(t *testing.T) {
	var buf bytes.Buffer
	h := Recover(bufferLogger(&buf))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal_error","message":"internal server error"}`, rec.Body.String())
	assert.Contains(t, buf.String(), "boom")
}

func TestRecover_RepanicsOnAbort(t *testing.T) {
	h := Recover(slog.New(slog.DiscardHandler))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name   string
		cookie string
		lookup func(context.Context, string) (*domainauth.Session, error)
		status int
	}{
		{name: "no cookie", status: http.StatusUnauthorized},
		{
			name:   "unknown session",
			cookie: "gone",
			lookup: func(context.Context, string) (*domainauth.Session, error) {
				return nil, ports.ErrSessionNotFound
			},
			status: http.StatusUnauthorized,
		},
		{
			name:   "guest",
			cookie: "guest-1",
			lookup: func(_ context.Context, id string) (*domainauth.Session, error) {
				return &domainauth.Session{ID: id, Role: domainauth.RoleGuest, ExpiresAt: time.Now().Add(time.Hour)}, nil
			},
			status: http.StatusForbidden,
		},
		{name: "member", cookie: "sess-1", status: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAuthService{getSessionFunc: tt.lookup}
			var seen *domainauth.Session
			h := RequireAuth(svc, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = CurrentSession(r.Context())
				w.WriteHeader(http.StatusNoContent)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusNoContent {
				require.NotNil(t, seen)
				assert.Equal(t, tt.cookie, seen.ID)
			}
		})
	}
}

func TestOptionalAuth_PassesAnonymousThrough(t *testing.T) {
	svc := &mockAuthService{getSessionFunc: func(context.Context, string) (*domainauth.Session, error) {
		return nil, ports.ErrSessionNotFound
	}}
	called := false
	h := OptionalAuth(svc, nil)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		called = true
		assert.Nil(t, CurrentSession(r.Context()))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "stale"})
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, called)
}
