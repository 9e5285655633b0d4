// Package authflow decides where a visitor goes after the authentication
// check that runs on every page load, and whether their session is kept.
// It is pure: no I/O, no shared state.
package authflow

import (
	"net/url"
	"strings"

	domainauth "github.com/target/eventhub/internal/domain/auth"
)

// DashboardPath is where authenticated users land when no better target exists.
const DashboardPath = "/dashboard"

// LoginPath is the entry point of the authentication flow.
const LoginPath = "/login"

// RedirectParam is the query parameter carrying the post-login destination.
const RedirectParam = "redirect"

// authPageMarkers classify a path as part of the authentication flow.
// Matching is substring containment, not path-segment comparison.
var authPageMarkers = []string{
	"/login",
	"/signup",
	"/callback",
	"/error",
	"/prompt-password",
	"/reset-password",
}

// authFlowWords are checked without a leading slash when an unauthenticated
// visitor on an auth page carries a redirect parameter.
var authFlowWords = []string{
	"error",
	"signup",
	"login",
	"callback",
	"prompt-password",
	"reset-password",
}

// NavigationContext is the location at the time authentication was checked.
type NavigationContext struct {
	CurrentPath  string
	CurrentQuery map[string]string
	// RedirectParam is the value of ?redirect=. Empty means absent.
	RedirectParam string
}

// NewNavigationContext builds a context from a request URL.
func NewNavigationContext(u *url.URL) NavigationContext {
	if u == nil {
		return NavigationContext{CurrentPath: "/"}
	}
	values := u.Query()
	query := make(map[string]string, len(values))
	for k := range values {
		query[k] = values.Get(k)
	}
	return NavigationContext{
		CurrentPath:   u.Path,
		CurrentQuery:  query,
		RedirectParam: values.Get(RedirectParam),
	}
}

// Outcome is the result of an authentication attempt.
// A nil User means the visitor is unauthenticated.
type Outcome struct {
	User *domainauth.Session
}

// Authenticated wraps a user into an Outcome.
func Authenticated(user domainauth.Session) Outcome {
	return Outcome{User: &user}
}

// Unauthenticated is the outcome for a visitor without a valid session.
func Unauthenticated() Outcome {
	return Outcome{}
}

// IsAuthenticated reports whether the outcome carries a user.
func (o Outcome) IsAuthenticated() bool { return o.User != nil }

// ActionKind names the session transition a Result recommends.
type ActionKind string

const (
	ActionSetUser   ActionKind = "set_user"
	ActionClearUser ActionKind = "clear_user"
)

// SessionAction is either SetUser (with User populated) or ClearUser.
type SessionAction struct {
	Kind ActionKind
	User *domainauth.Session
}

// Result tells the caller what to do with the session and where to go next.
// Callers apply Action first, then navigate to NavigateTo, exactly once.
type Result struct {
	NavigateTo string
	Action     SessionAction
}

// Resolver computes post-authentication navigation. The zero value applies
// the rules literally.
type Resolver struct {
	// PreserveReturnPath sends unauthenticated visitors on ordinary pages to
	// /login?redirect=<path> rather than a bare /login.
	PreserveReturnPath bool
}

// Resolve applies the zero-value Resolver.
func Resolve(nav NavigationContext, outcome Outcome) Result {
	return Resolver{}.Resolve(nav, outcome)
}

// Resolve maps a location and an authentication outcome to a Result.
// It never fails.
func (r Resolver) Resolve(nav NavigationContext, outcome Outcome) Result {
	path := nav.CurrentPath
	if path == "" {
		path = "/"
	}
	redirect := nav.RedirectParam
	onAuthPage := IsAuthPage(path)

	if outcome.IsAuthenticated() {
		set := SessionAction{Kind: ActionSetUser, User: outcome.User}
		switch {
		case redirect != "":
			return Result{NavigateTo: redirect, Action: set}
		case onAuthPage, path == LoginPath, path == "/signup":
			return Result{NavigateTo: DashboardPath, Action: set}
		default:
			return Result{NavigateTo: path, Action: set}
		}
	}

	clear := SessionAction{Kind: ActionClearUser}
	switch {
	case !onAuthPage:
		return Result{NavigateTo: r.loginTarget(path), Action: clear}
	case redirect != "":
		if containsAny(path, authFlowWords) {
			return Result{NavigateTo: path, Action: clear}
		}
		return Result{NavigateTo: LoginPath + "?" + RedirectParam + "=" + redirect, Action: clear}
	default:
		return Result{NavigateTo: path, Action: clear}
	}
}

// loginTarget picks the sign-in page for an unauthenticated visitor on an
// ordinary page. The redirect value is appended verbatim.
func (r Resolver) loginTarget(path string) string {
	switch {
	case strings.Contains(path, "signup"):
		return "/signup?" + RedirectParam + "=" + path
	case strings.Contains(path, "login"), r.PreserveReturnPath:
		return LoginPath + "?" + RedirectParam + "=" + path
	default:
		return LoginPath
	}
}

// IsAuthPage reports whether path belongs to the authentication flow.
func IsAuthPage(path string) bool {
	return containsAny(path, authPageMarkers)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
