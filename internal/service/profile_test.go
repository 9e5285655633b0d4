package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/target/eventhub/internal/domain/model"
	apperrors "github.com/target/eventhub/internal/errors"
	"github.com/target/eventhub/internal/mocks"
	"github.com/target/eventhub/internal/testutil"
)

func newProfileService(t *testing.T) (*ProfileService, *mocks.MockProfileRepository) {
	t.Helper()
	repo := mocks.NewMockProfileRepository(gomock.NewController(t))
	return NewProfileService(ProfileServiceOptions{Repo: repo}), repo
}

func TestProfileService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("stored profile", func(t *testing.T) {
		svc, repo := newProfileService(t)
		stored := &model.Profile{ID: 4, UserID: "user-1", DisplayName: "Ada L.", Bio: "Composer"}
		repo.EXPECT().GetByUserID(ctx, "user-1").Return(stored, nil)

		got, err := svc.Get(ctx, organizer())
		require.NoError(t, err)
		assert.Equal(t, stored, got)
	})

	t.Run("derived from session", func(t *testing.T) {
		svc, repo := newProfileService(t)
		repo.EXPECT().GetByUserID(ctx, "user-1").Return(nil, apperrors.NotFound("profile for user user-1 not found"))

		sess := organizer()
		sess.Email = "ada@example.com"
		got, err := svc.Get(ctx, sess)
		require.NoError(t, err)
		assert.Equal(t, &model.Profile{UserID: "user-1", DisplayName: "Ada Lovelace", Email: "ada@example.com"}, got)
	})

	t.Run("anonymous", func(t *testing.T) {
		svc, _ := newProfileService(t)
		_, err := svc.Get(ctx, nil)
		assert.True(t, apperrors.IsUnauthorized(err))
	})

	t.Run("backend unavailable", func(t *testing.T) {
		svc, repo := newProfileService(t)
		unavailable := apperrors.Wrap(assert.AnError, apperrors.ErrCodeUnavailable, "fetch profiles")
		repo.EXPECT().GetByUserID(ctx, "user-1").Return(nil, unavailable)
		_, err := svc.Get(ctx, organizer())
		assert.Equal(t, apperrors.ErrCodeUnavailable, apperrors.GetCode(err))
	})
}

func TestProfileService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("first save creates from session", func(t *testing.T) {
		svc, repo := newProfileService(t)
		repo.EXPECT().GetByUserID(ctx, "user-1").Return(nil, apperrors.NotFound("missing"))
		repo.EXPECT().Upsert(ctx, model.Profile{UserID: "user-1", DisplayName: "Ada Lovelace", Bio: "Composer"}).
			Return(&model.Profile{ID: 1, UserID: "user-1", DisplayName: "Ada Lovelace", Bio: "Composer"}, nil)

		got, err := svc.Update(ctx, organizer(), model.UpdateProfileRequest{Bio: testutil.StringPtr("Composer")})
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.ID)
	})

	t.Run("existing profile is patched", func(t *testing.T) {
		svc, repo := newProfileService(t)
		repo.EXPECT().GetByUserID(ctx, "user-1").
			Return(&model.Profile{ID: 2, UserID: "user-1", DisplayName: "Ada", Location: "London"}, nil)
		repo.EXPECT().Upsert(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, p model.Profile) (*model.Profile, error) {
				assert.Equal(t, "Countess", p.DisplayName)
				assert.Equal(t, "London", p.Location)
				return &p, nil
			})

		_, err := svc.Update(ctx, organizer(), model.UpdateProfileRequest{DisplayName: testutil.StringPtr(" Countess ")})
		require.NoError(t, err)
	})

	t.Run("invalid request", func(t *testing.T) {
		svc, _ := newProfileService(t)
		_, err := svc.Update(ctx, organizer(), model.UpdateProfileRequest{Email: testutil.StringPtr("not-an-email")})
		assert.True(t, apperrors.IsValidation(err))
	})
}
