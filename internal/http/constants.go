package httpx

// Cookie names shared by the auth handlers and middleware.
const (
	SessionCookieName      = "session_id"
	stateCookieName        = "oauth_state"
	nonceCookieName        = "oauth_nonce"
	postLoginRedirectName  = "post_login_redirect"
	oauthCookieMaxAgeSecs  = 600
	callbackPagePath       = "/callback"
	defaultPostLoginTarget = "/"
)

// Page titles rendered into the shell, keyed by the first path segment.
var pageTitles = map[string]string{ //nolint:gochecknoglobals // read-only lookup table
	"":                "Discover Events",
	"events":          "Events",
	"about":           "About",
	"login":           "Sign In",
	"signup":          "Create Account",
	"callback":        "Signing In",
	"error":           "Sign-in Error",
	"prompt-password": "Set Password",
	"reset-password":  "Reset Password",
	"dashboard":       "Dashboard",
	"my-events":       "My Events",
	"create-event":    "Create Event",
	"edit-event":      "Edit Event",
	"profile":         "Profile",
}

// pageRoutes are the browser routes served through the session bootstrap.
var pageRoutes = []string{ //nolint:gochecknoglobals // read-only route table
	"GET /{$}",
	"GET /events",
	"GET /events/{id}",
	"GET /about",
	"GET /login",
	"GET /signup",
	"GET /callback",
	"GET /error",
	"GET /prompt-password/{rest...}",
	"GET /reset-password/{rest...}",
	"GET /dashboard",
	"GET /my-events",
	"GET /create-event",
	"GET /edit-event/{id}",
	"GET /profile",
}
