package httpx

import (
	"net/http"

	"github.com/target/eventhub/internal/domain/model"
	"github.com/target/eventhub/internal/service"
)

// ProfileHandlers serves the signed-in user's profile.
type ProfileHandlers struct {
	Svc *service.ProfileService
}

// Get handles GET /api/profile.
func (h *ProfileHandlers) Get(w http.ResponseWriter, r *http.Request) {
	profile, err := h.Svc.Get(r.Context(), CurrentSession(r.Context()))
	if err != nil {
		writeServiceError(w, err, "get_failed")
		return
	}
	WriteJSON(w, http.StatusOK, profile)
}

// Update handles PUT /api/profile.
func (h *ProfileHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateProfileRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	profile, err := h.Svc.Update(r.Context(), CurrentSession(r.Context()), req)
	if err != nil {
		writeServiceError(w, err, "update_failed")
		return
	}
	WriteJSON(w, http.StatusOK, profile)
}

// DashboardHandlers serves the signed-in landing summary.
type DashboardHandlers struct {
	Svc *service.DashboardService
}

// Summary handles GET /api/dashboard.
func (h *DashboardHandlers) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Svc.Summary(r.Context(), CurrentSession(r.Context()))
	if err != nil {
		writeServiceError(w, err, "dashboard_failed")
		return
	}
	WriteJSON(w, http.StatusOK, summary)
}
