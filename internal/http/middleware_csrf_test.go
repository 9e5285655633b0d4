package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func csrfTestHandler() http.Handler {
	return CSRFProtection(CSRFConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(GetCSRFToken(r)))
	}))
}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestCSRFProtection_GetIssuesToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	w := httptest.NewRecorder()

	csrfTestHandler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	resp := w.Result()
	defer resp.Body.Close()
	cookie := findCookie(resp, DefaultCSRFCookieName)
	require.NotNil(t, cookie)
	assert.NotEmpty(t, cookie.Value)
	assert.False(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, cookie.Value, w.Body.String(), "token is exposed to the handler")
}

func TestCSRFProtection_ExistingTokenIsReused(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: "existing"})
	w := httptest.NewRecorder()

	csrfTestHandler().ServeHTTP(w, req)

	resp := w.Result()
	defer resp.Body.Close()
	assert.Nil(t, findCookie(resp, DefaultCSRFCookieName))
	assert.Equal(t, "existing", w.Body.String())
}

func TestCSRFProtection_Writes(t *testing.T) {
	tests := []struct {
		name   string
		method string
		cookie string
		header string
		want   int
	}{
		{name: "post without token", method: http.MethodPost, want: http.StatusForbidden},
		{name: "post with cookie only", method: http.MethodPost, cookie: "tok", want: http.StatusForbidden},
		{name: "put with mismatched header", method: http.MethodPut, cookie: "tok", header: "other", want: http.StatusForbidden},
		{name: "delete with matching header", method: http.MethodDelete, cookie: "tok", header: "tok", want: http.StatusOK},
		{name: "post with matching header", method: http.MethodPost, cookie: "tok", header: "tok", want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/events", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set(DefaultCSRFHeaderName, tt.header)
			}
			w := httptest.NewRecorder()

			csrfTestHandler().ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusForbidden {
				assert.Contains(t, w.Body.String(), `"error":"csrf_failed"`)
			}
		})
	}
}

func TestCSRFProtection_SafeMethodsExempt(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace} {
		t.Run(method, func(t *testing.T) {
			req := httptest.NewRequest(method, "/api/events", nil)
			w := httptest.NewRecorder()
			csrfTestHandler().ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestIsForwardedHTTPS(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.False(t, isForwardedHTTPS(req))
	req.Header.Set("X-Forwarded-Proto", "http, HTTPS")
	assert.True(t, isForwardedHTTPS(req))
}

func TestCSRFConfig_ApplyDefaults(t *testing.T) {
	cfg := CSRFConfig{CookieDomain: "events.example.com"}
	cfg.applyDefaults()
	assert.Equal(t, CSRFConfig{
		CookieName:   DefaultCSRFCookieName,
		HeaderName:   DefaultCSRFHeaderName,
		CookieDomain: "events.example.com",
		TokenLength:  DefaultCSRFTokenLength,
	}, cfg)

	custom := CSRFConfig{CookieName: "xsrf", HeaderName: "X-Xsrf", TokenLength: 16}
	custom.applyDefaults()
	assert.Equal(t, "xsrf", custom.CookieName)
	assert.Equal(t, "X-Xsrf", custom.HeaderName)
	assert.Equal(t, 16, custom.TokenLength)
}
