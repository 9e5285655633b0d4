package core

import (
	"context"

	"github.com/target/eventhub/internal/domain/model"
)

// EventRepository defines the interface for event data operations.
type EventRepository interface {
	Create(ctx context.Context, ownerID string, req *model.CreateEventRequest) (*model.Event, error)
	GetByID(ctx context.Context, id int64) (*model.Event, error)
	// List returns events ordered by date ascending, filtered by opts.
	List(ctx context.Context, opts model.EventListOptions) ([]*model.Event, error)
	Update(ctx context.Context, id int64, req model.UpdateEventRequest) (*model.Event, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// ProfileRepository defines the interface for profile data operations.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*model.Profile, error)
	// Upsert creates the profile when none exists for p.UserID, otherwise patches it.
	Upsert(ctx context.Context, p model.Profile) (*model.Profile, error)
}
