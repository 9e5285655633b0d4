package httpx

import (
	"bytes"
	"context"
	_ "embed"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	domainauth "github.com/target/eventhub/internal/domain/auth"
	"github.com/target/eventhub/internal/domain/authflow"
	"github.com/target/eventhub/internal/service"
)

//go:embed web/shell.html
var shellHTML string

var shellTemplate = template.Must(template.New("shell").Parse(shellHTML))

// SessionResolver runs the per-page authentication check.
type SessionResolver interface {
	Resolve(ctx context.Context, sessionID string, nav authflow.NavigationContext) (service.Decision, error)
}

// PageHandlers serves the browser routes. Every page load is resolved
// through the session bootstrap before anything is rendered.
type PageHandlers struct {
	Bootstrap    SessionResolver
	CookieDomain string
	Logger       *slog.Logger
}

func (h *PageHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type shellData struct {
	Title     string
	Path      string
	CSRFToken string
	User      *domainauth.Session
	State     shellState
}

type shellState struct {
	Path   string              `json:"path"`
	Action authflow.ActionKind `json:"action"`
	User   *shellUser          `json:"user,omitempty"`
}

type shellUser struct {
	ID          string          `json:"id"`
	DisplayName string          `json:"display_name"`
	Email       string          `json:"email"`
	Role        domainauth.Role `json:"role"`
}

// Page resolves the visitor's navigation and either redirects or renders the shell.
func (h *PageHandlers) Page(w http.ResponseWriter, r *http.Request) {
	sessionID := sessionIDFromRequest(r)

	decision, err := h.Bootstrap.Resolve(r.Context(), sessionID, authflow.NewNavigationContext(r.URL))
	if err != nil {
		// The only failure is the request's own context ending.
		h.logger().DebugContext(r.Context(), "page resolution abandoned", "error", err)
		return
	}

	if decision.Action == authflow.ActionClearUser && sessionID != "" {
		expireCookie(w, r, h.CookieDomain, SessionCookieName)
	}

	if target, redirect := h.redirectTarget(r, decision); redirect {
		http.Redirect(w, r, target, http.StatusFound)
		return
	}

	h.render(w, r, decision)
}

// redirectTarget reports where to send the browser, if anywhere. Targets
// that would leave the site are replaced by the landing page for the action.
func (h *PageHandlers) redirectTarget(r *http.Request, d service.Decision) (string, bool) {
	target, replaced := localTarget(d)
	if replaced {
		h.logger().WarnContext(r.Context(), "refusing off-site redirect", "target", d.NavigateTo)
	}
	if target == r.URL.Path || target == r.URL.RequestURI() {
		return "", false
	}
	return target, true
}

// localTarget returns d.NavigateTo, or the landing page for d's action when
// the target is not a path on this site. Kept sessions fall back to the root.
func localTarget(d service.Decision) (string, bool) {
	if isLocalPath(d.NavigateTo) {
		return d.NavigateTo, false
	}
	switch d.Action {
	case authflow.ActionSetUser:
		return authflow.DashboardPath, true
	case service.ActionKeep:
		return "/", true
	}
	return authflow.LoginPath, true
}

func (h *PageHandlers) render(w http.ResponseWriter, r *http.Request, d service.Decision) {
	data := shellData{
		Title:     pageTitle(r.URL.Path),
		Path:      r.URL.Path,
		CSRFToken: GetCSRFToken(r),
		User:      d.Session,
		State:     shellState{Path: r.URL.Path, Action: d.Action},
	}
	if d.Session != nil {
		data.State.User = &shellUser{
			ID:          d.Session.UserID,
			DisplayName: d.Session.DisplayName(),
			Email:       d.Session.Email,
			Role:        d.Session.Role,
		}
	}

	var buf bytes.Buffer
	if err := shellTemplate.Execute(&buf, data); err != nil {
		h.logger().ErrorContext(r.Context(), "render page shell", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func sessionIDFromRequest(r *http.Request) string {
	if c, err := r.Cookie(SessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

func pageTitle(path string) string {
	first, _, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	if title, ok := pageTitles[first]; ok {
		return title
	}
	return "EventHub"
}

// ResolveSession returns the navigation decision as JSON for client-side routing.
// GET /api/session/resolve?path=<path>&redirect=<optional>.
func (h *PageHandlers) ResolveSession(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	path := q.Get("path")
	if path == "" {
		path = "/"
	}
	nav := authflow.NavigationContext{
		CurrentPath:   path,
		CurrentQuery:  map[string]string{},
		RedirectParam: q.Get(authflow.RedirectParam),
	}
	if nav.RedirectParam != "" {
		nav.CurrentQuery[authflow.RedirectParam] = nav.RedirectParam
	}

	sessionID := sessionIDFromRequest(r)

	decision, err := h.Bootstrap.Resolve(r.Context(), sessionID, nav)
	if err != nil {
		writeServiceError(w, err, "resolve_failed")
		return
	}
	if decision.Action == authflow.ActionClearUser && sessionID != "" {
		expireCookie(w, r, h.CookieDomain, SessionCookieName)
	}
	decision.NavigateTo, _ = localTarget(decision)
	WriteJSON(w, http.StatusOK, decision)
}
