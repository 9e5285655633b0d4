package httpx

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const (
	// DefaultCSRFCookieName is the default name for the CSRF cookie.
	DefaultCSRFCookieName = "csrf_token"
	// DefaultCSRFHeaderName is the default name for the CSRF header (canonical form).
	DefaultCSRFHeaderName = "X-Csrf-Token"
	// DefaultCSRFTokenLength is the default length of the CSRF token in bytes.
	DefaultCSRFTokenLength = 32
)

// CSRFConfig holds configuration for CSRF protection middleware.
type CSRFConfig struct {
	// CookieName is the name of the CSRF cookie (default: "csrf_token")
	CookieName string
	// HeaderName is the name of the CSRF header to check (default: "X-Csrf-Token")
	HeaderName string
	// CookieDomain is the domain for the CSRF cookie
	CookieDomain string
	// TokenLength is the length of the CSRF token in bytes (default: 32)
	TokenLength int
}

func (cfg *CSRFConfig) applyDefaults() {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCSRFCookieName
	}
	if cfg.HeaderName == "" {
		cfg.HeaderName = DefaultCSRFHeaderName
	}
	if cfg.TokenLength == 0 {
		cfg.TokenLength = DefaultCSRFTokenLength
	}
}

// CSRFProtection guards state-changing JSON API calls with the double-submit
// cookie pattern. A token cookie readable by the page script is issued on any
// request that lacks one; POST, PUT, PATCH and DELETE must echo it in the
// X-Csrf-Token header.
func CSRFProtection(cfg CSRFConfig) func(http.Handler) http.Handler {
	cfg.applyDefaults()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := getCSRFToken(r, cfg.CookieName)
			if token == "" {
				var err error
				token, err = generateCSRFToken(cfg.TokenLength)
				if err != nil {
					WriteError(w, ErrorParams{
						Code:    http.StatusInternalServerError,
						ErrCode: "csrf_unavailable",
						Err:     err,
					})
					return
				}
				setCSRFCookie(w, r, csrfCookieParams{
					Name:   cfg.CookieName,
					Domain: cfg.CookieDomain,
					Token:  token,
				})
			}

			r = r.WithContext(setCSRFTokenInContext(r.Context(), token))

			if requiresCSRFValidation(r.Method) && !validCSRFHeader(r, token, cfg.HeaderName) {
				WriteError(w, ErrorParams{
					Code:    http.StatusForbidden,
					ErrCode: "csrf_failed",
					Err:     errors.New("CSRF token validation failed"),
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// requiresCSRFValidation returns true if the HTTP method requires CSRF validation.
// Safe methods (GET, HEAD, OPTIONS, TRACE) are exempt.
func requiresCSRFValidation(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return false
	default:
		return true
	}
}

func getCSRFToken(r *http.Request, cookieName string) string {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// generateCSRFToken fails closed: no predictable fallback token.
func generateCSRFToken(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("csrf token generation failed: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

type csrfCookieParams struct {
	Name   string
	Domain string
	Token  string
}

func setCSRFCookie(w http.ResponseWriter, r *http.Request, params csrfCookieParams) {
	http.SetCookie(w, &http.Cookie{
		Name:     params.Name,
		Value:    params.Token,
		Path:     "/",
		Domain:   params.Domain,
		HttpOnly: false, // read by the page script
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteStrictMode,
		MaxAge:   3600 * 12,
	})
}

// isForwardedHTTPS checks if the request was forwarded over HTTPS.
// Handles comma-separated values in X-Forwarded-Proto header.
func isForwardedHTTPS(r *http.Request) bool {
	xfProto := r.Header.Get("X-Forwarded-Proto")
	if xfProto == "" {
		return false
	}
	for _, proto := range strings.Split(xfProto, ",") {
		if strings.EqualFold(strings.TrimSpace(proto), "https") {
			return true
		}
	}
	return false
}

// validCSRFHeader compares the header token with the cookie in constant time.
func validCSRFHeader(r *http.Request, cookieToken, headerName string) bool {
	headerToken := r.Header.Get(headerName)
	if cookieToken == "" || headerToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(headerToken), []byte(cookieToken)) == 1
}

type csrfTokenKey struct{}

func setCSRFTokenInContext(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, csrfTokenKey{}, token)
}

// GetCSRFToken retrieves the CSRF token from the request context.
func GetCSRFToken(r *http.Request) string {
	if token, ok := r.Context().Value(csrfTokenKey{}).(string); ok {
		return token
	}
	return ""
}
