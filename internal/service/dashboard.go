package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	domainauth "github.com/target/eventhub/internal/domain/auth"
	"github.com/target/eventhub/internal/domain/model"
	apperrors "github.com/target/eventhub/internal/errors"
)

const dashboardUpcomingLimit = 10

// DashboardServiceOptions groups dependencies for DashboardService.
type DashboardServiceOptions struct {
	Events *EventService
}

// DashboardService assembles the signed-in landing page.
type DashboardService struct {
	events *EventService
}

// NewDashboardService constructs a new DashboardService.
func NewDashboardService(opts DashboardServiceOptions) *DashboardService {
	return &DashboardService{events: opts.Events}
}

// Summary fetches the actor's events, featured events and upcoming events concurrently.
func (s *DashboardService) Summary(ctx context.Context, actor *domainauth.Session) (*model.DashboardSummary, error) {
	if actor == nil || actor.UserID == "" {
		return nil, apperrors.Unauthorized("sign in to continue")
	}

	var mine, featured, upcoming []*model.Event
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		mine, err = s.events.List(gctx, model.EventListOptions{OwnerID: actor.UserID, Limit: model.DefaultEventPageSize})
		if err != nil {
			return fmt.Errorf("my events: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		featured, err = s.events.Featured(gctx, 0)
		if err != nil {
			return fmt.Errorf("featured events: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		upcoming, err = s.events.List(gctx, model.EventListOptions{Upcoming: true, Limit: dashboardUpcomingLimit})
		if err != nil {
			return fmt.Errorf("upcoming events: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &model.DashboardSummary{
		MyEvents:     derefEvents(mine),
		Featured:     derefEvents(featured),
		Upcoming:     derefEvents(upcoming),
		MyEventCount: len(mine),
	}
	for _, e := range mine {
		switch e.Status {
		case model.EventStatusPublished:
			summary.PublishedCount++
		case model.EventStatusDraft:
			summary.DraftCount++
		}
	}
	return summary, nil
}

func derefEvents(in []*model.Event) []model.Event {
	out := make([]model.Event, 0, len(in))
	for _, e := range in {
		if e != nil {
			out = append(out, *e)
		}
	}
	return out
}
