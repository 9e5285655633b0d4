package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/target/eventhub/internal/domain/auth"
	"github.com/target/eventhub/internal/domain/model"
	apperrors "github.com/target/eventhub/internal/errors"
	"github.com/target/eventhub/internal/mocks"
	"github.com/target/eventhub/internal/testutil"
)

func organizer() *domainauth.Session {
	return &domainauth.Session{ID: "s-1", UserID: "user-1", FirstName: "Ada", LastName: "Lovelace", Role: domainauth.RoleUser}
}

func newEventService(t *testing.T) (*EventService, *mocks.MockEventRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockEventRepository(ctrl)
	return MustNewEventService(EventServiceOptions{Repo: repo}), repo
}

func TestNewEventService(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockEventRepository(ctrl)

	t.Run("success", func(t *testing.T) {
		svc, err := NewEventService(EventServiceOptions{Repo: repo})
		require.NoError(t, err)
		assert.Equal(t, repo, svc.repo)
		assert.NotNil(t, svc.logger)
	})

	t.Run("success with logger", func(t *testing.T) {
		svc, err := NewEventService(EventServiceOptions{Repo: repo, Logger: slog.Default()})
		require.NoError(t, err)
		assert.NotNil(t, svc.logger)
	})

	t.Run("missing repo", func(t *testing.T) {
		svc, err := NewEventService(EventServiceOptions{})
		require.Error(t, err)
		assert.Nil(t, svc)
		assert.Contains(t, err.Error(), "EventRepository is required")
	})

	t.Run("must panics", func(t *testing.T) {
		assert.Panics(t, func() { MustNewEventService(EventServiceOptions{}) })
	})
}

func TestEventService_List_NormalizesOptions(t *testing.T) {
	svc, repo := newEventService(t)
	ctx := context.Background()

	repo.EXPECT().List(ctx, model.EventListOptions{Limit: model.DefaultEventPageSize, Search: "jazz"}).
		Return([]*model.Event{{ID: 1, Name: "Jazz Night"}}, nil)

	got, err := svc.List(ctx, model.EventListOptions{Search: "  jazz ", Offset: -3})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestEventService_Get(t *testing.T) {
	svc, repo := newEventService(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, 0)
	assert.True(t, apperrors.IsValidation(err))

	repo.EXPECT().GetByID(ctx, int64(4)).Return(nil, apperrors.NotFound("event 4 not found"))
	_, err = svc.Get(ctx, 4)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestEventService_FeaturedAndCategory(t *testing.T) {
	svc, repo := newEventService(t)
	ctx := context.Background()

	repo.EXPECT().List(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, opts model.EventListOptions) ([]*model.Event, error) {
			require.NotNil(t, opts.Featured)
			assert.True(t, *opts.Featured)
			assert.Equal(t, DefaultFeaturedLimit, opts.Limit)
			return nil, nil
		})
	_, err := svc.Featured(ctx, 0)
	require.NoError(t, err)

	repo.EXPECT().List(ctx, model.EventListOptions{Category: "music", Limit: model.DefaultEventPageSize}).Return(nil, nil)
	_, err = svc.ByCategory(ctx, " music ", 0)
	require.NoError(t, err)

	_, err = svc.ByCategory(ctx, " ", 0)
	assert.True(t, apperrors.IsValidation(err))
}

func TestEventService_MyEvents(t *testing.T) {
	svc, repo := newEventService(t)
	ctx := context.Background()

	_, err := svc.MyEvents(ctx, nil)
	assert.True(t, apperrors.IsUnauthorized(err))

	repo.EXPECT().List(ctx, model.EventListOptions{OwnerID: "user-1", Limit: model.DefaultEventPageSize}).
		Return([]*model.Event{{ID: 9, OwnerID: "user-1"}}, nil)
	got, err := svc.MyEvents(ctx, organizer())
	require.NoError(t, err)
	assert.Equal(t, int64(9), got[0].ID)
}

func TestEventService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults organizer to actor", func(t *testing.T) {
		svc, repo := newEventService(t)
		req := testutil.NewEventRequest().Build()
		req.Organizer = ""

		repo.EXPECT().Create(ctx, "user-1", gomock.Any()).DoAndReturn(
			func(_ context.Context, owner string, r *model.CreateEventRequest) (*model.Event, error) {
				assert.Equal(t, "Ada Lovelace", r.Organizer)
				return &model.Event{ID: 3, Name: r.Name, OwnerID: owner}, nil
			})

		got, err := svc.Create(ctx, organizer(), req)
		require.NoError(t, err)
		assert.Equal(t, int64(3), got.ID)
	})

	t.Run("invalid request is a validation error", func(t *testing.T) {
		svc, _ := newEventService(t)
		req := testutil.NewEventRequest().WithDate("next friday").Build()

		_, err := svc.Create(ctx, organizer(), req)
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
		assert.Contains(t, err.Error(), "YYYY-MM-DD")
	})

	t.Run("guest is forbidden", func(t *testing.T) {
		svc, _ := newEventService(t)
		guest := organizer()
		guest.Role = domainauth.RoleGuest

		_, err := svc.Create(ctx, guest, testutil.NewEventRequest().Build())
		assert.True(t, apperrors.IsForbidden(err))
	})

	t.Run("anonymous is unauthorized", func(t *testing.T) {
		svc, _ := newEventService(t)
		_, err := svc.Create(ctx, nil, testutil.NewEventRequest().Build())
		assert.True(t, apperrors.IsUnauthorized(err))
	})

	t.Run("nil request", func(t *testing.T) {
		svc, _ := newEventService(t)
		_, err := svc.Create(ctx, organizer(), nil)
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestEventService_Update(t *testing.T) {
	ctx := context.Background()
	name := "Late Jazz"

	tests := []struct {
		name    string
		actor   *domainauth.Session
		owner   string
		wantErr func(error) bool
	}{
		{name: "owner", actor: organizer(), owner: "user-1"},
		{name: "admin", actor: &domainauth.Session{UserID: "root", Role: domainauth.RoleAdmin}, owner: "user-1"},
		{name: "stranger", actor: &domainauth.Session{UserID: "user-2", Role: domainauth.RoleUser}, owner: "user-1", wantErr: apperrors.IsForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newEventService(t)
			req := model.UpdateEventRequest{Name: testutil.StringPtr(name)}

			repo.EXPECT().GetByID(ctx, int64(5)).Return(&model.Event{ID: 5, OwnerID: tt.owner}, nil)
			if tt.wantErr == nil {
				repo.EXPECT().Update(ctx, int64(5), gomock.Any()).Return(&model.Event{ID: 5, Name: name}, nil)
			}

			got, err := svc.Update(ctx, tt.actor, 5, req)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, tt.wantErr(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, name, got.Name)
		})
	}

	t.Run("empty patch", func(t *testing.T) {
		svc, _ := newEventService(t)
		_, err := svc.Update(ctx, organizer(), 5, model.UpdateEventRequest{})
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("missing event", func(t *testing.T) {
		svc, repo := newEventService(t)
		repo.EXPECT().GetByID(ctx, int64(8)).Return(nil, apperrors.NotFound("event 8 not found"))
		_, err := svc.Update(ctx, organizer(), 8, model.UpdateEventRequest{Name: testutil.StringPtr(name)})
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestEventService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("owner deletes", func(t *testing.T) {
		svc, repo := newEventService(t)
		gomock.InOrder(
			repo.EXPECT().GetByID(ctx, int64(2)).Return(&model.Event{ID: 2, OwnerID: "user-1"}, nil),
			repo.EXPECT().Delete(ctx, int64(2)).Return(true, nil),
		)
		require.NoError(t, svc.Delete(ctx, organizer(), 2))
	})

	t.Run("vanished between read and delete", func(t *testing.T) {
		svc, repo := newEventService(t)
		repo.EXPECT().GetByID(ctx, int64(2)).Return(&model.Event{ID: 2, OwnerID: "user-1"}, nil)
		repo.EXPECT().Delete(ctx, int64(2)).Return(false, nil)
		assert.True(t, apperrors.IsNotFound(svc.Delete(ctx, organizer(), 2)))
	})

	t.Run("backend failure", func(t *testing.T) {
		svc, repo := newEventService(t)
		boom := errors.New("boom")
		repo.EXPECT().GetByID(ctx, int64(2)).Return(&model.Event{ID: 2, OwnerID: "user-1"}, nil)
		repo.EXPECT().Delete(ctx, int64(2)).Return(false, boom)
		assert.ErrorIs(t, svc.Delete(ctx, organizer(), 2), boom)
	})

	t.Run("stranger forbidden", func(t *testing.T) {
		svc, repo := newEventService(t)
		repo.EXPECT().GetByID(ctx, int64(2)).Return(&model.Event{ID: 2, OwnerID: "someone"}, nil)
		assert.True(t, apperrors.IsForbidden(svc.Delete(ctx, organizer(), 2)))
	})
}

func TestCanEdit(t *testing.T) {
	event := &model.Event{OwnerID: "user-1"}
	assert.True(t, CanEdit(organizer(), event))
	assert.True(t, CanEdit(&domainauth.Session{UserID: "x", Role: domainauth.RoleAdmin}, event))
	assert.False(t, CanEdit(&domainauth.Session{UserID: "x"}, event))
	assert.False(t, CanEdit(nil, event))
	assert.False(t, CanEdit(organizer(), &model.Event{}))
}
