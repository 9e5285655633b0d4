package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/target/eventhub/internal/domain/auth"
	"github.com/target/eventhub/internal/domain/authflow"
	"github.com/target/eventhub/internal/service"
)

// AuthServiceInterface defines the interface for auth service operations.
type AuthServiceInterface interface {
	BeginLogin(ctx context.Context, redirectURL string, signup bool) (*service.BeginLoginResult, error)
	CompleteLogin(ctx context.Context, input service.CompleteLoginInput) (*service.CompleteLoginResult, error)
	GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc          AuthServiceInterface
	CookieDomain string
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Login handles the login initiation endpoint.
// GET /auth/login?redirect_uri=<optional_redirect>.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	h.begin(w, r, false)
}

// Signup starts the same flow on the provider's account creation screen.
// GET /auth/signup?redirect_uri=<optional_redirect>.
func (h *AuthHandlers) Signup(w http.ResponseWriter, r *http.Request) {
	h.begin(w, r, true)
}

func (h *AuthHandlers) begin(w http.ResponseWriter, r *http.Request, signup bool) {
	redirectURI := safeRedirectPath(r.URL.Query().Get("redirect_uri"))

	result, err := h.Svc.BeginLogin(r.Context(), redirectURI, signup)
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "login_failed",
			Err:     err,
		})
		return
	}

	h.setOAuthCookies(w, r, oauthCookieParams{State: result.State, Nonce: result.Nonce, RedirectURI: redirectURI})
	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

// Callback handles the OAuth callback endpoint.
// GET /auth/callback?code=<code>&state=<state>.
//
// On success the browser lands on the /callback page, which the session
// bootstrap resolves to the post-login destination.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if providerErr := q.Get("error"); providerErr != "" {
		h.clearOAuthCookies(w, r)
		h.logger().WarnContext(r.Context(), "identity provider returned an error",
			"error", providerErr,
			"description", q.Get("error_description"),
		)
		http.Redirect(w, r, "/error?reason="+url.QueryEscape(providerErr), http.StatusFound)
		return
	}

	code := q.Get("code")
	state := q.Get("state")
	if code == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_code",
			Err:     errors.New("authorization code is required"),
		})
		return
	}
	if state == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_state",
			Err:     errors.New("state parameter is required"),
		})
		return
	}

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value != state {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_state",
			Err:     errors.New("invalid or missing state parameter"),
		})
		return
	}
	nonceCookie, err := r.Cookie(nonceCookieName)
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_nonce",
			Err:     errors.New("missing nonce parameter"),
		})
		return
	}

	result, err := h.Svc.CompleteLogin(r.Context(), service.CompleteLoginInput{
		Code:  code,
		State: state,
		Nonce: nonceCookie.Value,
	})
	if err != nil {
		h.logger().WarnContext(r.Context(), "login completion failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "login_completion_failed",
			Err:     err,
		})
		return
	}

	h.setSessionCookie(w, r, result.Session)
	h.clearCookie(w, r, stateCookieName)
	h.clearCookie(w, r, nonceCookieName)

	http.Redirect(w, r, callbackTarget(h.getPostLoginRedirect(w, r)), http.StatusFound)
}

// callbackTarget builds the /callback page URL that carries target as ?redirect=.
func callbackTarget(target string) string {
	if target == "" || target == defaultPostLoginTarget {
		return callbackPagePath
	}
	q := url.Values{}
	q.Set(authflow.RedirectParam, target)
	return callbackPagePath + "?" + q.Encode()
}

// Logout handles the logout endpoint.
// POST|GET /auth/logout.
//
// The visitor always ends up signed out on /login, even when the session
// store could not delete the server-side session.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if sessionCookie, err := r.Cookie(SessionCookieName); err == nil {
		if logoutErr := h.Svc.Logout(r.Context(), sessionCookie.Value); logoutErr != nil {
			h.logger().WarnContext(r.Context(), "logout failed", "error", logoutErr)
		}
	}

	h.clearCookie(w, r, SessionCookieName)

	if wantsJSON(r) {
		WriteJSON(w, http.StatusOK, map[string]string{
			"status":      "success",
			"redirect_to": authflow.LoginPath,
		})
		return
	}

	http.Redirect(w, r, authflow.LoginPath, http.StatusFound)
}

// Status returns the current authentication status.
// GET /api/auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	sessionCookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		WriteJSON(w, http.StatusOK, map[string]any{
			"authenticated": false,
		})
		return
	}

	session, err := h.Svc.GetSession(r.Context(), sessionCookie.Value)
	if err != nil {
		if !service.IsSignedOut(err) {
			h.logger().WarnContext(r.Context(), "session lookup failed", "error", err)
		}
		h.clearCookie(w, r, SessionCookieName)
		WriteJSON(w, http.StatusOK, map[string]any{
			"authenticated": false,
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user": map[string]any{
			"id":           session.UserID,
			"first_name":   session.FirstName,
			"last_name":    session.LastName,
			"display_name": session.DisplayName(),
			"email":        session.Email,
			"role":         session.Role,
		},
		"expires_at": session.ExpiresAt,
	})
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest")
}

func isSecureRequest(r *http.Request) bool {
	return r.TLS != nil || isForwardedHTTPS(r)
}

// clearCookie clears a cookie by setting it to expire immediately.
// It mirrors key attributes (Secure, Path, Domain, SameSite) used when setting cookies
// to maximize compatibility across browsers during deletion.
func (h *AuthHandlers) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	expireCookie(w, r, h.CookieDomain, name)
}

func expireCookie(w http.ResponseWriter, r *http.Request, domain, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   domain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandlers) clearOAuthCookies(w http.ResponseWriter, r *http.Request) {
	h.clearCookie(w, r, stateCookieName)
	h.clearCookie(w, r, nonceCookieName)
	h.clearCookie(w, r, postLoginRedirectName)
}

type oauthCookieParams struct {
	State       string
	Nonce       string
	RedirectURI string
}

// setOAuthCookies stores OAuth state, nonce, and the post-login redirect in short-lived cookies.
func (h *AuthHandlers) setOAuthCookies(w http.ResponseWriter, r *http.Request, p oauthCookieParams) {
	for name, value := range map[string]string{
		stateCookieName:       p.State,
		nonceCookieName:       p.Nonce,
		postLoginRedirectName: p.RedirectURI,
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/",
			Domain:   h.CookieDomain,
			HttpOnly: true,
			Secure:   isSecureRequest(r),
			SameSite: http.SameSiteLaxMode,
			MaxAge:   oauthCookieMaxAgeSecs,
		})
	}
}

// setSessionCookie writes the session cookie based on the session's expiry.
func (h *AuthHandlers) setSessionCookie(w http.ResponseWriter, r *http.Request, s domainauth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    s.ID,
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(time.Until(s.ExpiresAt).Seconds()),
	})
}

// getPostLoginRedirect returns the post-login redirect path and clears the cookie.
func (h *AuthHandlers) getPostLoginRedirect(w http.ResponseWriter, r *http.Request) string {
	redirectCookie, err := r.Cookie(postLoginRedirectName)
	if err != nil {
		return defaultPostLoginTarget
	}
	h.clearCookie(w, r, postLoginRedirectName)
	return safeRedirectPath(redirectCookie.Value)
}

// safeRedirectPath ensures the provided redirect is a same-origin relative path
// starting with "/" and not an absolute URL. Returns "/" when invalid.
func safeRedirectPath(candidate string) string {
	if !isLocalPath(candidate) {
		return defaultPostLoginTarget
	}
	return candidate
}

// isLocalPath reports whether candidate stays on this site.
func isLocalPath(candidate string) bool {
	if candidate == "" || strings.HasPrefix(candidate, "//") || strings.Contains(candidate, `\`) {
		return false
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return false
	}
	return true
}
