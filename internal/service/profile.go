package service

import (
	"context"
	"log/slog"

	"github.com/target/eventhub/internal/core"
	domainauth "github.com/target/eventhub/internal/domain/auth"
	"github.com/target/eventhub/internal/domain/model"
	apperrors "github.com/target/eventhub/internal/errors"
)

// ProfileServiceOptions groups dependencies for ProfileService.
type ProfileServiceOptions struct {
	Repo   core.ProfileRepository
	Logger *slog.Logger
}

// ProfileService reads and edits the signed-in user's profile.
type ProfileService struct {
	repo   core.ProfileRepository
	logger *slog.Logger
}

// NewProfileService constructs a new ProfileService.
func NewProfileService(opts ProfileServiceOptions) *ProfileService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileService{repo: opts.Repo, logger: logger.With("component", "profile_service")}
}

// Get returns the actor's stored profile, or one derived from the session
// when nothing has been saved yet.
func (s *ProfileService) Get(ctx context.Context, actor *domainauth.Session) (*model.Profile, error) {
	if actor == nil || actor.UserID == "" {
		return nil, apperrors.Unauthorized("sign in to continue")
	}
	p, err := s.repo.GetByUserID(ctx, actor.UserID)
	if apperrors.IsNotFound(err) {
		derived := profileFromSession(actor)
		return &derived, nil
	}
	return p, err
}

// Update applies req to the actor's profile, creating it on first save.
func (s *ProfileService) Update(
	ctx context.Context,
	actor *domainauth.Session,
	req model.UpdateProfileRequest,
) (*model.Profile, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	current, err := s.Get(ctx, actor)
	if err != nil {
		return nil, err
	}
	req.Apply(current)
	current.UserID = actor.UserID

	saved, err := s.repo.Upsert(ctx, *current)
	if err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "profile saved", "user_id", actor.UserID)
	return saved, nil
}

func profileFromSession(sess *domainauth.Session) model.Profile {
	return model.Profile{
		UserID:      sess.UserID,
		DisplayName: sess.DisplayName(),
		Email:       sess.Email,
	}
}
