// Package httpx provides HTTP handlers, middleware and routing for the EventHub server.
package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/target/eventhub/internal/calendar"
	"github.com/target/eventhub/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth      *service.AuthService
	Bootstrap *service.SessionBootstrap
	Events    *service.EventService
	Profiles  *service.ProfileService
	Dashboard *service.DashboardService
	Calendar  *calendar.Exporter
	// Health checks reported by /healthz, keyed by dependency name.
	Health       map[string]HealthCheck
	CookieDomain string
	Logger       *slog.Logger
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	csrf := CSRFProtection(CSRFConfig{CookieDomain: services.CookieDomain})
	member := func(h http.Handler) http.Handler {
		return RequireAuth(services.Auth, logger)(csrf(h))
	}

	authHandlers := &AuthHandlers{Svc: services.Auth, CookieDomain: services.CookieDomain, Logger: logger}
	pageHandlers := &PageHandlers{Bootstrap: services.Bootstrap, CookieDomain: services.CookieDomain, Logger: logger}
	eventHandlers := &EventHandlers{Svc: services.Events, Calendar: services.Calendar, Logger: logger}

	registerAuthRoutes(mux, authHandlers, pageHandlers)
	registerEventRoutes(mux, eventHandlers, member)
	registerAccountRoutes(mux, accountHandlers{
		Profiles:  &ProfileHandlers{Svc: services.Profiles},
		Dashboard: &DashboardHandlers{Svc: services.Dashboard},
		Events:    eventHandlers,
	}, member)
	registerPageRoutes(mux, csrf(http.HandlerFunc(pageHandlers.Page)))

	health := healthHandler(services.Health)
	mux.Handle("GET /healthz", health)
	mux.Handle("HEAD /healthz", health)
	mux.HandleFunc("/api/", apiNotFound)

	return mux
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers, pages *PageHandlers) {
	mux.HandleFunc("GET /auth/login", h.Login)
	mux.HandleFunc("GET /auth/signup", h.Signup)
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/logout", h.Logout)
	mux.HandleFunc("GET /api/auth/status", h.Status)
	mux.HandleFunc("GET /api/session/resolve", pages.ResolveSession)
}

// crudRoutes describes a resource whose reads are public and whose writes
// pass through Write.
type crudRoutes struct {
	Base    string
	Create  http.HandlerFunc
	List    http.HandlerFunc
	GetByID http.HandlerFunc
	Update  http.HandlerFunc
	Delete  http.HandlerFunc
	Write   func(http.Handler) http.Handler
}

func registerCRUD(mux *http.ServeMux, cfg crudRoutes) {
	if cfg.Base == "" {
		panic("registerCRUD: Base must not be empty") //nolint:forbidigo // Fail fast during server setup.
	}
	if cfg.Create == nil ||
		cfg.List == nil ||
		cfg.GetByID == nil ||
		cfg.Update == nil ||
		cfg.Delete == nil ||
		cfg.Write == nil {
		panic("registerCRUD: nil handler for base " + cfg.Base) //nolint:forbidigo // Fail fast during server setup.
	}

	mux.Handle("GET "+cfg.Base, cfg.List)
	mux.Handle("GET "+cfg.Base+"/{id}", cfg.GetByID)
	mux.Handle("POST "+cfg.Base, cfg.Write(cfg.Create))
	mux.Handle("PUT "+cfg.Base+"/{id}", cfg.Write(cfg.Update))
	mux.Handle("DELETE "+cfg.Base+"/{id}", cfg.Write(cfg.Delete))
}

func registerEventRoutes(mux *http.ServeMux, h *EventHandlers, member func(http.Handler) http.Handler) {
	registerCRUD(mux, crudRoutes{
		Base:    "/api/events",
		Create:  h.Create,
		List:    h.List,
		GetByID: h.GetByID,
		Update:  h.Update,
		Delete:  h.Delete,
		Write:   member,
	})
	mux.HandleFunc("GET /api/events/featured", h.Featured)
	mux.HandleFunc("GET /api/events/calendar.ics", h.CalendarFeed)
	mux.HandleFunc("GET /api/events/{id}/ics", h.EventICS)
}

type accountHandlers struct {
	Profiles  *ProfileHandlers
	Dashboard *DashboardHandlers
	Events    *EventHandlers
}

func registerAccountRoutes(mux *http.ServeMux, h accountHandlers, member func(http.Handler) http.Handler) {
	mux.Handle("GET /api/my-events", member(http.HandlerFunc(h.Events.MyEvents)))
	mux.Handle("GET /api/profile", member(http.HandlerFunc(h.Profiles.Get)))
	mux.Handle("PUT /api/profile", member(http.HandlerFunc(h.Profiles.Update)))
	mux.Handle("GET /api/dashboard", member(http.HandlerFunc(h.Dashboard.Summary)))
}

func registerPageRoutes(mux *http.ServeMux, page http.Handler) {
	for _, pattern := range pageRoutes {
		mux.Handle(pattern, page)
	}
}

func apiNotFound(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: errors.New("no such endpoint")})
}
