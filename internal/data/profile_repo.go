package data

import (
	"context"
	"strings"

	"github.com/target/eventhub/internal/domain/model"
	"github.com/target/eventhub/internal/domain/record"
	apperrors "github.com/target/eventhub/internal/errors"
	"github.com/target/eventhub/internal/ports"
)

// ProfileRepo provides record-backend operations for user profiles.
type ProfileRepo struct {
	records *RecordRepo[model.Profile]
}

// NewProfileRepo creates a new ProfileRepo over the given table.
func NewProfileRepo(client ports.RecordClient, table string) *ProfileRepo {
	return &ProfileRepo{
		records: NewRecordRepo[model.Profile](RecordRepoOptions{
			Client: client,
			Table:  table,
			Fields: model.ProfileFields,
		}),
	}
}

// GetByUserID returns the profile owned by userID.
func (r *ProfileRepo) GetByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.Validation("user id is required")
	}
	found, err := r.records.FindBy(ctx, model.ProfileFieldUserID, userID, record.Paging{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, apperrors.NotFoundf("profile for user %s not found", userID)
	}
	return found[0], nil
}

// Upsert creates the profile when none exists for p.UserID, otherwise replaces its fields.
func (r *ProfileRepo) Upsert(ctx context.Context, p model.Profile) (*model.Profile, error) {
	existing, err := r.GetByUserID(ctx, p.UserID)
	switch {
	case apperrors.IsNotFound(err):
		return r.records.Create(ctx, p.Record())
	case err != nil:
		return nil, err
	}
	return r.records.Update(ctx, existing.ID, p.Record())
}
