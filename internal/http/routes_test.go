package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/target/eventhub/internal/calendar"
	"github.com/target/eventhub/internal/domain/authflow"
	"github.com/target/eventhub/internal/domain/model"
	apperrors "github.com/target/eventhub/internal/errors"
	"github.com/target/eventhub/internal/mocks"
	authmocks "github.com/target/eventhub/internal/mocks/auth"
	"github.com/target/eventhub/internal/service"
)

type routerFixture struct {
	handler http.Handler
	events  *mocks.MockEventRepository
	store   *authmocks.MemorySessionStore
}

func newRouterFixture(t *testing.T) routerFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockEventRepository(ctrl)
	auth, store := newTestAuth(t)

	handler := NewRouter(RouterServices{
		Auth: auth,
		Bootstrap: service.NewSessionBootstrap(service.SessionBootstrapOptions{
			Auth:     auth,
			Resolver: authflow.Resolver{},
		}),
		Events:   service.MustNewEventService(service.EventServiceOptions{Repo: repo}),
		Calendar: calendar.NewExporter(calendar.Options{BaseURL: "https://events.example.com"}),
	})
	return routerFixture{handler: handler, events: repo, store: store}
}

func (f routerFixture) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

// memberRequest carries a live session and a matching CSRF token.
func (f routerFixture) memberRequest(t *testing.T, method, target, body string) *http.Request {
	t.Helper()
	saveSession(t, f.store, "sess-1")
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "sess-1"})
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: "tok"})
	req.Header.Set(DefaultCSRFHeaderName, "tok")
	return req
}

func sampleEvent(id int64) *model.Event {
	return &model.Event{
		ID:        id,
		Name:      "Jazz Night",
		Date:      "2026-11-02",
		Time:      "19:30",
		Location:  "Blue Room",
		Category:  "music",
		Status:    model.EventStatusPublished,
		Organizer: "Ada Lovelace",
		OwnerID:   "user-1",
	}
}

func TestRouter_ListEvents(t *testing.T) {
	f := newRouterFixture(t)
	featured := true
	f.events.EXPECT().List(gomock.Any(), model.EventListOptions{
		Limit:    10,
		Offset:   20,
		Search:   "jazz",
		Category: "music",
		Featured: &featured,
	}).Return([]*model.Event{sampleEvent(1)}, nil)

	w := f.serve(httptest.NewRequest(http.MethodGet, "/api/events?q=jazz&category=music&featured=true&limit=10&offset=20", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Jazz Night"`)
	assert.Contains(t, w.Body.String(), `"limit":10`)
	assert.Contains(t, w.Body.String(), `"offset":20`)
}

func TestRouter_GetEvent(t *testing.T) {
	f := newRouterFixture(t)

	t.Run("found", func(t *testing.T) {
		f.events.EXPECT().GetByID(gomock.Any(), int64(7)).Return(sampleEvent(7), nil)
		w := f.serve(httptest.NewRequest(http.MethodGet, "/api/events/7", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"Id":7`)
	})

	t.Run("missing", func(t *testing.T) {
		f.events.EXPECT().GetByID(gomock.Any(), int64(8)).Return(nil, apperrors.NotFoundf("event %d not found", 8))
		w := f.serve(httptest.NewRequest(http.MethodGet, "/api/events/8", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), `"error":"not_found"`)
	})

	t.Run("bad id", func(t *testing.T) {
		w := f.serve(httptest.NewRequest(http.MethodGet, "/api/events/abc", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"error":"invalid_path"`)
	})
}

func TestRouter_CreateEventRequiresSession(t *testing.T) {
	f := newRouterFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(`{"name":"x","date":"2026-11-02"}`))

	w := f.serve(req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"error":"authentication_required"`)
}

func TestRouter_CreateEventRequiresCSRF(t *testing.T) {
	f := newRouterFixture(t)
	req := f.memberRequest(t, http.MethodPost, "/api/events", `{"name":"x","date":"2026-11-02"}`)
	req.Header.Del(DefaultCSRFHeaderName)

	w := f.serve(req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), `"error":"csrf_failed"`)
}

func TestRouter_CreateEvent(t *testing.T) {
	f := newRouterFixture(t)
	f.events.EXPECT().
		Create(gomock.Any(), "user-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, ownerID string, req *model.CreateEventRequest) (*model.Event, error) {
			assert.Equal(t, "Ada Lovelace", req.Organizer)
			assert.Equal(t, model.EventStatusDraft, req.Status)
			return &model.Event{ID: 42, Name: req.Name, Date: req.Date, OwnerID: ownerID, Status: req.Status}, nil
		})

	w := f.serve(f.memberRequest(t, http.MethodPost, "/api/events", `{"name":"Book Club","date":"2026-12-01"}`))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"Id":42`)
	assert.Contains(t, w.Body.String(), `"owner_id":"user-1"`)
}

func TestRouter_CreateEventValidation(t *testing.T) {
	f := newRouterFixture(t)

	t.Run("bad date", func(t *testing.T) {
		w := f.serve(f.memberRequest(t, http.MethodPost, "/api/events", `{"name":"Book Club","date":"12/01/2026"}`))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"error":"validation_failed"`)
	})

	t.Run("unknown field", func(t *testing.T) {
		w := f.serve(f.memberRequest(t, http.MethodPost, "/api/events", `{"title":"Book Club"}`))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"error":"invalid_json"`)
	})
}

func TestRouter_DeleteEvent(t *testing.T) {
	f := newRouterFixture(t)

	t.Run("owner", func(t *testing.T) {
		f.events.EXPECT().GetByID(gomock.Any(), int64(3)).Return(sampleEvent(3), nil)
		f.events.EXPECT().Delete(gomock.Any(), int64(3)).Return(true, nil)

		w := f.serve(f.memberRequest(t, http.MethodDelete, "/api/events/3", ""))
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("not owner", func(t *testing.T) {
		other := sampleEvent(4)
		other.OwnerID = "user-2"
		f.events.EXPECT().GetByID(gomock.Any(), int64(4)).Return(other, nil)

		w := f.serve(f.memberRequest(t, http.MethodDelete, "/api/events/4", ""))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), `"error":"insufficient_permissions"`)
	})
}

func TestRouter_MyEvents(t *testing.T) {
	f := newRouterFixture(t)
	f.events.EXPECT().
		List(gomock.Any(), model.EventListOptions{OwnerID: "user-1", Limit: model.DefaultEventPageSize}).
		Return([]*model.Event{sampleEvent(1)}, nil)

	w := f.serve(f.memberRequest(t, http.MethodGet, "/api/my-events", ""))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"events":[`)
}

func TestRouter_FeaturedTakesPrecedenceOverID(t *testing.T) {
	f := newRouterFixture(t)
	featured := true
	f.events.EXPECT().
		List(gomock.Any(), model.EventListOptions{Featured: &featured, Limit: service.DefaultFeaturedLimit}).
		Return(nil, nil)

	w := f.serve(httptest.NewRequest(http.MethodGet, "/api/events/featured", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_EventICS(t *testing.T) {
	f := newRouterFixture(t)
	f.events.EXPECT().GetByID(gomock.Any(), int64(5)).Return(sampleEvent(5), nil)

	w := f.serve(httptest.NewRequest(http.MethodGet, "/api/events/5/ics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, icsContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="event-5.ics"`, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Body.String(), "BEGIN:VCALENDAR")
	assert.Contains(t, w.Body.String(), "SUMMARY:Jazz Night")
}

func TestRouter_CalendarFeed(t *testing.T) {
	f := newRouterFixture(t)
	f.events.EXPECT().
		List(gomock.Any(), model.EventListOptions{Upcoming: true, Limit: feedLimit, Category: "music"}).
		Return([]*model.Event{sampleEvent(1), sampleEvent(2)}, nil)

	w := f.serve(httptest.NewRequest(http.MethodGet, "/api/events/calendar.ics?category=music", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, strings.Count(w.Body.String(), "BEGIN:VEVENT"))
}

func TestRouter_BackendErrors(t *testing.T) {
	f := newRouterFixture(t)
	f.events.EXPECT().List(gomock.Any(), gomock.Any()).
		Return(nil, apperrors.Wrap(errors.New("dial tcp: refused"), apperrors.ErrCodeUnavailable, "backend unavailable"))

	w := f.serve(httptest.NewRequest(http.MethodGet, "/api/events", nil))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), `"error":"backend_unavailable"`)
}

func TestRouter_UnknownAPIPath(t *testing.T) {
	f := newRouterFixture(t)

	w := f.serve(httptest.NewRequest(http.MethodGet, "/api/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"error":"not_found"`)
}

func TestRouter_PagesAndHealth(t *testing.T) {
	f := newRouterFixture(t)

	w := f.serve(httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, authflow.LoginPath, w.Header().Get("Location"))

	w = f.serve(httptest.NewRequest(http.MethodGet, "/about", nil))
	assert.Equal(t, http.StatusFound, w.Code)

	w = f.serve(httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.serve(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err     error
		status  int
		errCode string
	}{
		{apperrors.Validation("bad"), http.StatusBadRequest, "validation_failed"},
		{apperrors.NotFound("gone"), http.StatusNotFound, "not_found"},
		{apperrors.Unauthorized("who"), http.StatusUnauthorized, "authentication_required"},
		{apperrors.Forbidden("no"), http.StatusForbidden, "insufficient_permissions"},
		{apperrors.Conflict("dup"), http.StatusConflict, "conflict"},
		{apperrors.Wrap(errors.New("x"), apperrors.ErrCodeForeignKey, "fk"), http.StatusConflict, "conflict"},
		{apperrors.Wrap(errors.New("x"), apperrors.ErrCodeUnavailable, "down"), http.StatusBadGateway, "backend_unavailable"},
		{apperrors.Wrap(errors.New("x"), apperrors.ErrCodeTimeout, "slow"), http.StatusGatewayTimeout, "timeout"},
		{fmt.Errorf("list: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "timeout"},
		{errors.New("boom"), http.StatusInternalServerError, "fallback"},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			status, code := statusForError(tt.err, "fallback")
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.errCode, code)
		})
	}
}
