package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/target/eventhub/internal/core"
	domainauth "github.com/target/eventhub/internal/domain/auth"
	"github.com/target/eventhub/internal/domain/model"
	apperrors "github.com/target/eventhub/internal/errors"
)

// DefaultFeaturedLimit bounds the featured list when the caller passes no limit.
const DefaultFeaturedLimit = 6

// EventServiceOptions groups dependencies for EventService.
type EventServiceOptions struct {
	Repo   core.EventRepository // Required: event repository
	Logger *slog.Logger         // Optional: structured logger
}

// EventService provides business logic for event operations.
//
// Reads are public. Writes need a signed-in, non-guest session, and only the
// owner of an event or an admin may change or remove it.
type EventService struct {
	repo   core.EventRepository
	logger *slog.Logger
}

// NewEventService constructs a new EventService.
func NewEventService(opts EventServiceOptions) (*EventService, error) {
	if opts.Repo == nil {
		return nil, errors.New("EventRepository is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &EventService{
		repo:   opts.Repo,
		logger: logger.With("component", "event_service"),
	}, nil
}

// MustNewEventService constructs a new EventService and panics on error.
// Use this when you're certain the options are valid (e.g., in main.go).
func MustNewEventService(opts EventServiceOptions) *EventService {
	svc, err := NewEventService(opts)
	if err != nil {
		//nolint:forbidigo // Must constructor fails fast during startup wiring when configuration is invalid
		panic(fmt.Sprintf("failed to create EventService: %v", err))
	}
	return svc
}

// List returns events matching opts ordered by date ascending.
func (s *EventService) List(ctx context.Context, opts model.EventListOptions) ([]*model.Event, error) {
	opts.Normalize()
	return s.repo.List(ctx, opts)
}

// Get returns one event.
func (s *EventService) Get(ctx context.Context, id int64) (*model.Event, error) {
	if id <= 0 {
		return nil, apperrors.ValidationField("id", "event id must be positive")
	}
	return s.repo.GetByID(ctx, id)
}

// Featured returns featured events, soonest first.
func (s *EventService) Featured(ctx context.Context, limit int) ([]*model.Event, error) {
	if limit <= 0 {
		limit = DefaultFeaturedLimit
	}
	featured := true
	return s.List(ctx, model.EventListOptions{Featured: &featured, Limit: limit})
}

// ByCategory returns events in category.
func (s *EventService) ByCategory(ctx context.Context, category string, limit int) ([]*model.Event, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, apperrors.ValidationField("category", "category is required")
	}
	return s.List(ctx, model.EventListOptions{Category: category, Limit: limit})
}

// MyEvents returns the events created by actor.
func (s *EventService) MyEvents(ctx context.Context, actor *domainauth.Session) ([]*model.Event, error) {
	if err := requireMember(actor); err != nil {
		return nil, err
	}
	return s.List(ctx, model.EventListOptions{OwnerID: actor.UserID, Limit: model.DefaultEventPageSize})
}

// Create stores a new event owned by actor. Organizer defaults to the actor's name.
func (s *EventService) Create(
	ctx context.Context,
	actor *domainauth.Session,
	req *model.CreateEventRequest,
) (*model.Event, error) {
	if err := requireMember(actor); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, apperrors.Validation("event is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if strings.TrimSpace(req.Organizer) == "" {
		req.Organizer = actor.DisplayName()
	}

	event, err := s.repo.Create(ctx, actor.UserID, req)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "event created", "event_id", event.ID, "owner_id", actor.UserID)
	return event, nil
}

// Update patches an event the actor may edit.
func (s *EventService) Update(
	ctx context.Context,
	actor *domainauth.Session,
	id int64,
	req model.UpdateEventRequest,
) (*model.Event, error) {
	if err := requireMember(actor); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if _, err := s.editable(ctx, actor, id); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, req)
}

// Delete removes an event the actor may edit.
func (s *EventService) Delete(ctx context.Context, actor *domainauth.Session, id int64) error {
	if err := requireMember(actor); err != nil {
		return err
	}
	if _, err := s.editable(ctx, actor, id); err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.NotFoundf("event %d not found", id)
	}
	s.logger.InfoContext(ctx, "event deleted", "event_id", id, "actor", actor.UserID)
	return nil
}

func (s *EventService) editable(ctx context.Context, actor *domainauth.Session, id int64) (*model.Event, error) {
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanEdit(actor, event) {
		return nil, apperrors.Forbidden("only the organizer or an admin can change this event")
	}
	return event, nil
}

// CanEdit reports whether actor may change event.
func CanEdit(actor *domainauth.Session, event *model.Event) bool {
	if actor == nil || event == nil {
		return false
	}
	return actor.IsAdmin() || event.OwnedBy(actor.UserID)
}

// requireMember rejects anonymous visitors and guests.
func requireMember(actor *domainauth.Session) error {
	if actor == nil || actor.UserID == "" {
		return apperrors.Unauthorized("sign in to continue")
	}
	if actor.IsGuest() {
		return apperrors.Forbidden("guest accounts cannot manage events")
	}
	return nil
}
