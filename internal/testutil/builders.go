package testutil

import (
	"github.com/target/eventhub/internal/domain/model"
)

// EventRequestBuilder provides a fluent interface for building CreateEventRequest objects for testing.
type EventRequestBuilder struct {
	req model.CreateEventRequest
}

// NewEventRequest creates a new EventRequestBuilder with sensible defaults.
func NewEventRequest() *EventRequestBuilder {
	return &EventRequestBuilder{
		req: model.CreateEventRequest{
			Name:     "Jazz Night",
			Date:     "2026-11-02",
			Time:     "19:30",
			Location: "Blue Room",
			Category: "music",
			Capacity: 120,
			Price:    15,
			Status:   model.EventStatusPublished,
		},
	}
}

// WithName sets the event name.
func (b *EventRequestBuilder) WithName(name string) *EventRequestBuilder {
	b.req.Name = name
	return b
}

// WithDate sets the event date (YYYY-MM-DD).
func (b *EventRequestBuilder) WithDate(date string) *EventRequestBuilder {
	b.req.Date = date
	return b
}

// WithCategory sets the event category.
func (b *EventRequestBuilder) WithCategory(category string) *EventRequestBuilder {
	b.req.Category = category
	return b
}

// WithStatus sets the event status.
func (b *EventRequestBuilder) WithStatus(status model.EventStatus) *EventRequestBuilder {
	b.req.Status = status
	return b
}

// Featured marks the event as featured.
func (b *EventRequestBuilder) Featured() *EventRequestBuilder {
	b.req.Featured = true
	return b
}

// Build returns a copy of the request.
func (b *EventRequestBuilder) Build() *model.CreateEventRequest {
	req := b.req
	return &req
}
