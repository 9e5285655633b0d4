package data

import (
	"context"
	"errors"

	"github.com/target/eventhub/internal/domain/model"
	"github.com/target/eventhub/internal/domain/record"
	"github.com/target/eventhub/internal/ports"
)

// EventRepo provides record-backend operations for events.
type EventRepo struct {
	records      *RecordRepo[model.Event]
	timeProvider TimeProvider
}

// NewEventRepo creates a new EventRepo over the given table.
func NewEventRepo(client ports.RecordClient, table string) *EventRepo {
	return NewEventRepoWithTimeProvider(client, table, &RealTimeProvider{})
}

// NewEventRepoWithTimeProvider creates a new EventRepo with a custom time provider (useful for tests).
func NewEventRepoWithTimeProvider(client ports.RecordClient, table string, tp TimeProvider) *EventRepo {
	return &EventRepo{
		records: NewRecordRepo[model.Event](RecordRepoOptions{
			Client: client,
			Table:  table,
			Fields: model.EventFields,
			DefaultOrder: []record.Order{
				{Field: model.EventFieldDate, Direction: record.Asc},
				{Field: model.EventFieldTime, Direction: record.Asc},
			},
		}),
		timeProvider: tp,
	}
}

// Create inserts a new event owned by ownerID.
func (r *EventRepo) Create(ctx context.Context, ownerID string, req *model.CreateEventRequest) (*model.Event, error) {
	if req == nil {
		return nil, errors.New("create event request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return r.records.Create(ctx, req.Record(ownerID))
}

// GetByID fetches one event.
func (r *EventRepo) GetByID(ctx context.Context, id int64) (*model.Event, error) {
	return r.records.Get(ctx, id)
}

// List returns events matching opts, ordered by date then time.
func (r *EventRepo) List(ctx context.Context, opts model.EventListOptions) ([]*model.Event, error) {
	opts.Normalize()
	return r.records.List(ctx, r.buildQuery(opts))
}

func (r *EventRepo) buildQuery(opts model.EventListOptions) record.Query {
	q := record.Query{Paging: record.Paging{Limit: opts.Limit, Offset: opts.Offset}}
	if opts.Search != "" {
		q.Where = append(q.Where, record.Where(model.EventFieldName, record.Contains, opts.Search))
	}
	if opts.Category != "" {
		q.Where = append(q.Where, record.Where(model.EventFieldCategory, record.EqualTo, opts.Category))
	}
	if opts.Featured != nil {
		q.Where = append(q.Where, record.Where(model.EventFieldFeatured, record.EqualTo, *opts.Featured))
	}
	if opts.OwnerID != "" {
		q.Where = append(q.Where, record.Where(model.EventFieldOwnerID, record.EqualTo, opts.OwnerID))
	}
	if opts.Upcoming {
		from := opts.FromDate
		if from == "" {
			from = r.timeProvider.Now().Format(model.EventDateLayout)
		}
		q.Where = append(q.Where, record.Where(model.EventFieldDate, record.GreaterThanOrEqualTo, from))
	}
	return q
}

// Update patches an event with the fields set on req.
func (r *EventRepo) Update(ctx context.Context, id int64, req model.UpdateEventRequest) (*model.Event, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return r.records.Update(ctx, id, req.Record())
}

// Delete removes an event, reporting whether it existed.
func (r *EventRepo) Delete(ctx context.Context, id int64) (bool, error) {
	return r.records.Delete(ctx, id)
}
