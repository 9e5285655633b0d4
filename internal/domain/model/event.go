//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/target/eventhub/internal/domain/record"
)

const (
	maxEventNameLen = 255

	// EventDateLayout is the storage format of Event.Date.
	EventDateLayout = "2006-01-02"
	// EventTimeLayout is the storage format of Event.Time.
	EventTimeLayout = "15:04"

	// DefaultEventPageSize is used when a list request does not set a limit.
	DefaultEventPageSize = 50
	maxEventPageSize     = 200
)

// Record keys for events.
const (
	EventFieldName        = "name"
	EventFieldDescription = "description"
	EventFieldDate        = "date"
	EventFieldTime        = "time"
	EventFieldLocation    = "location"
	EventFieldCategory    = "category"
	EventFieldCapacity    = "capacity"
	EventFieldPrice       = "price"
	EventFieldStatus      = "status"
	EventFieldFeatured    = "featured"
	EventFieldImageURL    = "image_url"
	EventFieldOrganizer   = "organizer"
	EventFieldOwnerID     = "owner_id"
	EventFieldTags        = "tags"
)

// EventFields lists the writable event keys in display order.
var EventFields = []string{
	EventFieldName,
	EventFieldDescription,
	EventFieldDate,
	EventFieldTime,
	EventFieldLocation,
	EventFieldCategory,
	EventFieldCapacity,
	EventFieldPrice,
	EventFieldStatus,
	EventFieldFeatured,
	EventFieldImageURL,
	EventFieldOrganizer,
	EventFieldOwnerID,
	EventFieldTags,
}

// EventStatus is the publication state of an event.
type EventStatus string

const (
	EventStatusDraft     EventStatus = "Draft"
	EventStatusPublished EventStatus = "Published"
	EventStatusCancelled EventStatus = "Cancelled"
)

// Valid reports whether the status is supported.
func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusDraft, EventStatusPublished, EventStatusCancelled:
		return true
	default:
		return false
	}
}

// ParseEventStatus matches case-insensitively and defaults to Draft when empty.
func ParseEventStatus(value string) (EventStatus, bool) {
	v := strings.TrimSpace(value)
	if v == "" {
		return EventStatusDraft, true
	}
	for _, s := range []EventStatus{EventStatusDraft, EventStatusPublished, EventStatusCancelled} {
		if strings.EqualFold(v, string(s)) {
			return s, true
		}
	}
	return "", false
}

// Event is a listed happening.
type Event struct {
	ID          int64       `json:"Id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Date        string      `json:"date"`
	Time        string      `json:"time,omitempty"`
	Location    string      `json:"location,omitempty"`
	Category    string      `json:"category,omitempty"`
	Capacity    int         `json:"capacity,omitempty"`
	Price       float64     `json:"price"`
	Status      EventStatus `json:"status"`
	Featured    bool        `json:"featured"`
	ImageURL    string      `json:"image_url,omitempty"`
	Organizer   string      `json:"organizer,omitempty"`
	OwnerID     string      `json:"owner_id,omitempty"`
	Tags        string      `json:"tags,omitempty"`
}

// StartsAt combines Date and Time in loc. A missing time means midnight.
func (e Event) StartsAt(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	if e.Time == "" {
		return time.ParseInLocation(EventDateLayout, e.Date, loc)
	}
	return time.ParseInLocation(EventDateLayout+" "+EventTimeLayout, e.Date+" "+e.Time, loc)
}

// TagList splits the comma-separated tag string.
func (e Event) TagList() []string {
	var out []string
	for _, t := range strings.Split(e.Tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// OwnedBy reports whether userID created the event.
func (e Event) OwnedBy(userID string) bool {
	return e.OwnerID != "" && e.OwnerID == userID
}

// EventListOptions controls paging and filtering for listing events.
// Notes:
// - Search matches name by substring.
// - Category and Featured match exactly.
// - Upcoming keeps events dated on or after FromDate.
type EventListOptions struct {
	Limit    int
	Offset   int
	Search   string
	Category string
	Featured *bool
	OwnerID  string
	Upcoming bool
	FromDate string
}

// Normalize clamps paging and trims filters.
func (o *EventListOptions) Normalize() {
	if o.Limit <= 0 {
		o.Limit = DefaultEventPageSize
	}
	if o.Limit > maxEventPageSize {
		o.Limit = maxEventPageSize
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	o.Search = strings.TrimSpace(o.Search)
	o.Category = strings.TrimSpace(o.Category)
}

// CreateEventRequest represents parameters to create an Event.
type CreateEventRequest struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Date        string      `json:"date"`
	Time        string      `json:"time,omitempty"`
	Location    string      `json:"location,omitempty"`
	Category    string      `json:"category,omitempty"`
	Capacity    int         `json:"capacity,omitempty"`
	Price       float64     `json:"price,omitempty"`
	Status      EventStatus `json:"status,omitempty"`
	Featured    bool        `json:"featured,omitempty"`
	ImageURL    string      `json:"image_url,omitempty"`
	Organizer   string      `json:"organizer,omitempty"`
	Tags        string      `json:"tags,omitempty"`
}

// Validate validates CreateEventRequest and normalizes Status.
func (r *CreateEventRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if err := validateEventName(r.Name); err != nil {
		return err
	}
	if err := validateEventDate(r.Date); err != nil {
		return err
	}
	if err := validateEventTime(r.Time); err != nil {
		return err
	}
	if r.Capacity < 0 {
		return errors.New("capacity cannot be negative")
	}
	if r.Price < 0 {
		return errors.New("price cannot be negative")
	}
	status, ok := ParseEventStatus(string(r.Status))
	if !ok {
		return fmt.Errorf("invalid status %q", r.Status)
	}
	r.Status = status
	return nil
}

// Record converts the request to backend fields owned by ownerID.
func (r *CreateEventRequest) Record(ownerID string) record.Record {
	return record.Record{
		EventFieldName:        r.Name,
		EventFieldDescription: r.Description,
		EventFieldDate:        r.Date,
		EventFieldTime:        r.Time,
		EventFieldLocation:    r.Location,
		EventFieldCategory:    r.Category,
		EventFieldCapacity:    r.Capacity,
		EventFieldPrice:       r.Price,
		EventFieldStatus:      string(r.Status),
		EventFieldFeatured:    r.Featured,
		EventFieldImageURL:    r.ImageURL,
		EventFieldOrganizer:   r.Organizer,
		EventFieldOwnerID:     ownerID,
		EventFieldTags:        r.Tags,
	}
}

// UpdateEventRequest represents parameters to update an Event.
type UpdateEventRequest struct {
	Name        *string      `json:"name,omitempty"`
	Description *string      `json:"description,omitempty"`
	Date        *string      `json:"date,omitempty"`
	Time        *string      `json:"time,omitempty"`
	Location    *string      `json:"location,omitempty"`
	Category    *string      `json:"category,omitempty"`
	Capacity    *int         `json:"capacity,omitempty"`
	Price       *float64     `json:"price,omitempty"`
	Status      *EventStatus `json:"status,omitempty"`
	Featured    *bool        `json:"featured,omitempty"`
	ImageURL    *string      `json:"image_url,omitempty"`
	Organizer   *string      `json:"organizer,omitempty"`
	Tags        *string      `json:"tags,omitempty"`
}

// Validate ensures at least one field is set and values are sane.
func (r *UpdateEventRequest) Validate() error {
	patch := r.Record()
	if len(patch) == 0 {
		return errors.New("at least one field must be updated")
	}
	if r.Name != nil {
		n := strings.TrimSpace(*r.Name)
		if err := validateEventName(n); err != nil {
			return err
		}
		*r.Name = n
	}
	if r.Date != nil {
		if err := validateEventDate(*r.Date); err != nil {
			return err
		}
	}
	if r.Time != nil {
		if err := validateEventTime(*r.Time); err != nil {
			return err
		}
	}
	if r.Capacity != nil && *r.Capacity < 0 {
		return errors.New("capacity cannot be negative")
	}
	if r.Price != nil && *r.Price < 0 {
		return errors.New("price cannot be negative")
	}
	if r.Status != nil {
		status, ok := ParseEventStatus(string(*r.Status))
		if !ok {
			return fmt.Errorf("invalid status %q", *r.Status)
		}
		*r.Status = status
	}
	return nil
}

// Record returns only the fields set on the request.
func (r *UpdateEventRequest) Record() record.Record {
	patch := record.Record{}
	setIf(patch, EventFieldName, r.Name)
	setIf(patch, EventFieldDescription, r.Description)
	setIf(patch, EventFieldDate, r.Date)
	setIf(patch, EventFieldTime, r.Time)
	setIf(patch, EventFieldLocation, r.Location)
	setIf(patch, EventFieldCategory, r.Category)
	setIf(patch, EventFieldCapacity, r.Capacity)
	setIf(patch, EventFieldPrice, r.Price)
	if r.Status != nil {
		patch[EventFieldStatus] = string(*r.Status)
	}
	setIf(patch, EventFieldFeatured, r.Featured)
	setIf(patch, EventFieldImageURL, r.ImageURL)
	setIf(patch, EventFieldOrganizer, r.Organizer)
	setIf(patch, EventFieldTags, r.Tags)
	return patch
}

func setIf[T any](rec record.Record, key string, v *T) {
	if v != nil {
		rec[key] = *v
	}
}

func validateEventName(name string) error {
	if name == "" {
		return errors.New("name is required and cannot be empty")
	}
	if utf8.RuneCountInString(name) > maxEventNameLen {
		return errors.New("name cannot exceed 255 characters")
	}
	return nil
}

func validateEventDate(v string) error {
	if strings.TrimSpace(v) == "" {
		return errors.New("date is required")
	}
	if _, err := time.Parse(EventDateLayout, v); err != nil {
		return errors.New("date must be formatted as YYYY-MM-DD")
	}
	return nil
}

func validateEventTime(v string) error {
	if v == "" {
		return nil
	}
	if _, err := time.Parse(EventTimeLayout, v); err != nil {
		return errors.New("time must be formatted as HH:MM")
	}
	return nil
}
