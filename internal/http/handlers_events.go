package httpx

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/target/eventhub/internal/calendar"
	"github.com/target/eventhub/internal/domain/model"
	"github.com/target/eventhub/internal/service"
)

const (
	maxEventListLimit = 200
	feedLimit         = 200
	icsContentType    = "text/calendar; charset=utf-8"
)

// EventHandlers provides HTTP handlers for event-related operations.
type EventHandlers struct {
	Svc      *service.EventService
	Calendar *calendar.Exporter
	Logger   *slog.Logger
}

func (h *EventHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// List handles GET /api/events?category=&q=&featured=&upcoming=&limit=&offset=.
func (h *EventHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, model.DefaultEventPageSize, maxEventListLimit)
	q := r.URL.Query()
	opts := model.EventListOptions{
		Limit:    limit,
		Offset:   offset,
		Search:   q.Get("q"),
		Category: q.Get("category"),
		Featured: parseBoolQuery(r, "featured"),
	}
	if upcoming := parseBoolQuery(r, "upcoming"); upcoming != nil {
		opts.Upcoming = *upcoming
	}

	events, err := h.Svc.List(r.Context(), opts)
	if err != nil {
		writeServiceError(w, err, "list_failed")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"events": events,
		"limit":  limit,
		"offset": offset,
	})
}

// Featured handles GET /api/events/featured?limit=.
func (h *EventHandlers) Featured(w http.ResponseWriter, r *http.Request) {
	events, err := h.Svc.Featured(r.Context(), parseIntQuery(r, "limit", 0))
	if err != nil {
		writeServiceError(w, err, "list_failed")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"events": events})
}

// GetByID handles GET /api/events/{id}.
func (h *EventHandlers) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	event, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "get_failed")
		return
	}
	WriteJSON(w, http.StatusOK, event)
}

// Create handles POST /api/events. The caller becomes the owner.
func (h *EventHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEventRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	event, err := h.Svc.Create(r.Context(), CurrentSession(r.Context()), &req)
	if err != nil {
		writeServiceError(w, err, "create_failed")
		return
	}

	WriteJSON(w, http.StatusCreated, event)
}

// Update handles PUT /api/events/{id}.
func (h *EventHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req model.UpdateEventRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	event, err := h.Svc.Update(r.Context(), CurrentSession(r.Context()), id, req)
	if err != nil {
		writeServiceError(w, err, "update_failed")
		return
	}

	WriteJSON(w, http.StatusOK, event)
}

// Delete handles DELETE /api/events/{id}.
func (h *EventHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Svc.Delete(r.Context(), CurrentSession(r.Context()), id); err != nil {
		writeServiceError(w, err, "delete_failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MyEvents handles GET /api/my-events.
func (h *EventHandlers) MyEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.Svc.MyEvents(r.Context(), CurrentSession(r.Context()))
	if err != nil {
		writeServiceError(w, err, "list_failed")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"events": events})
}

// EventICS handles GET /api/events/{id}/ics.
func (h *EventHandlers) EventICS(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	event, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "get_failed")
		return
	}
	body, err := h.Calendar.EventICS(*event)
	if err != nil {
		writeServiceError(w, err, "calendar_failed")
		return
	}
	writeICS(w, fmt.Sprintf("event-%d.ics", id), body)
}

// CalendarFeed handles GET /api/events/calendar.ics with upcoming events.
// An optional category narrows the feed.
func (h *EventHandlers) CalendarFeed(w http.ResponseWriter, r *http.Request) {
	opts := model.EventListOptions{
		Upcoming: true,
		Limit:    feedLimit,
		Category: strings.TrimSpace(r.URL.Query().Get("category")),
	}
	events, err := h.Svc.List(r.Context(), opts)
	if err != nil {
		writeServiceError(w, err, "list_failed")
		return
	}
	h.logger().DebugContext(r.Context(), "calendar feed", "events", len(events))
	writeICS(w, "eventhub.ics", h.Calendar.FeedICS(events))
}

func writeICS(w http.ResponseWriter, filename, body string) {
	w.Header().Set("Content-Type", icsContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}
