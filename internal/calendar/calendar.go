// Package calendar exports events as iCalendar documents and imports events
// from them.
package calendar

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/target/eventhub/internal/domain/model"
)

const (
	defaultProductID = "-//EventHub//Events//EN"
	defaultDuration  = 2 * time.Hour
	defaultOrganizer = "events@eventhub.local"
)

// Options configures an Exporter.
type Options struct {
	// BaseURL is the public site root used for event links and stable UIDs.
	BaseURL string
	// Location interprets event dates and times. Defaults to UTC.
	Location *time.Location
	// Duration is the assumed length of events that carry a start time.
	Duration time.Duration
	// Name labels feeds in calendar clients.
	Name string
	// OrganizerEmail is the mailbox attached to ORGANIZER; the organizer name travels as CN.
	OrganizerEmail string
	Now            func() time.Time
}

// Exporter renders events as iCalendar.
type Exporter struct {
	baseURL  string
	loc      *time.Location
	duration time.Duration
	name     string
	mailbox  string
	now      func() time.Time
}

// NewExporter builds an Exporter from opts.
func NewExporter(opts Options) *Exporter {
	e := &Exporter{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		loc:      opts.Location,
		duration: opts.Duration,
		name:     opts.Name,
		mailbox:  opts.OrganizerEmail,
		now:      opts.Now,
	}
	if e.loc == nil {
		e.loc = time.UTC
	}
	if e.duration <= 0 {
		e.duration = defaultDuration
	}
	if e.name == "" {
		e.name = "EventHub"
	}
	if e.mailbox == "" {
		e.mailbox = defaultOrganizer
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// EventICS renders a single event.
func (x *Exporter) EventICS(event model.Event) (string, error) {
	cal := x.newCalendar(event.Name)
	if err := x.addEvent(cal, event); err != nil {
		return "", err
	}
	return cal.Serialize(), nil
}

// FeedICS renders events as one calendar. Events with unusable dates are skipped.
func (x *Exporter) FeedICS(events []*model.Event) string {
	cal := x.newCalendar(x.name)
	for _, e := range events {
		if e == nil {
			continue
		}
		_ = x.addEvent(cal, *e)
	}
	return cal.Serialize()
}

// UID returns the stable iCalendar UID of an event.
func (x *Exporter) UID(id int64) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(x.eventURL(id))).String()
}

func (x *Exporter) newCalendar(name string) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(defaultProductID)
	cal.SetXWRCalName(name)
	return cal
}

func (x *Exporter) addEvent(cal *ical.Calendar, event model.Event) error {
	start, err := event.StartsAt(x.loc)
	if err != nil {
		return fmt.Errorf("event %d: %w", event.ID, err)
	}

	ve := cal.AddEvent(x.UID(event.ID))
	ve.SetDtStampTime(x.now())
	if event.Time == "" {
		ve.SetAllDayStartAt(start)
		ve.SetAllDayEndAt(start.AddDate(0, 0, 1))
	} else {
		ve.SetStartAt(start)
		ve.SetEndAt(start.Add(x.duration))
	}
	ve.SetSummary(event.Name)
	if event.Description != "" {
		ve.SetDescription(event.Description)
	}
	if event.Location != "" {
		ve.SetLocation(event.Location)
	}
	if event.Category != "" {
		ve.SetProperty(ical.ComponentPropertyCategories, event.Category)
	}
	if event.Organizer != "" {
		ve.SetOrganizer(x.mailbox, ical.WithCN(event.Organizer))
	}
	if x.baseURL != "" {
		ve.SetURL(x.eventURL(event.ID))
	}
	ve.SetStatus(statusOf(event.Status))
	return nil
}

func (x *Exporter) eventURL(id int64) string {
	return fmt.Sprintf("%s/events/%d", x.baseURL, id)
}

func statusOf(s model.EventStatus) ical.ObjectStatus {
	switch s {
	case model.EventStatusPublished:
		return ical.ObjectStatusConfirmed
	case model.EventStatusCancelled:
		return ical.ObjectStatusCancelled
	default:
		return ical.ObjectStatusTentative
	}
}

// ParseICS reads VEVENTs from r as create requests in loc. Events without a
// summary or start are skipped.
func ParseICS(r io.Reader, loc *time.Location) ([]model.CreateEventRequest, error) {
	if loc == nil {
		loc = time.UTC
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read ics: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse ics: %w", err)
	}

	out := make([]model.CreateEventRequest, 0, len(cal.Events()))
	for _, ve := range cal.Events() {
		req, ok := fromVEvent(ve, loc)
		if ok {
			out = append(out, req)
		}
	}
	return out, nil
}

func fromVEvent(ve *ical.VEvent, loc *time.Location) (model.CreateEventRequest, bool) {
	var req model.CreateEventRequest
	req.Name = propValue(ve, ical.ComponentPropertySummary)
	if req.Name == "" {
		return req, false
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return req, false
	}
	allDay := !strings.Contains(dtStart.Value, "T")

	var start time.Time
	var err error
	if allDay {
		start, err = ve.GetAllDayStartAt()
	} else {
		start, err = ve.GetStartAt()
	}
	if err != nil {
		return req, false
	}
	if allDay {
		req.Date = start.Format(model.EventDateLayout)
	} else {
		start = start.In(loc)
		req.Date = start.Format(model.EventDateLayout)
		req.Time = start.Format(model.EventTimeLayout)
	}

	req.Description = propValue(ve, ical.ComponentPropertyDescription)
	req.Location = propValue(ve, ical.ComponentPropertyLocation)
	if cats := propValue(ve, ical.ComponentPropertyCategories); cats != "" {
		req.Category = strings.TrimSpace(strings.Split(cats, ",")[0])
	}
	req.Organizer = organizerName(ve.GetProperty(ical.ComponentPropertyOrganizer))
	req.Status = statusFrom(propValue(ve, ical.ComponentPropertyStatus))
	return req, true
}

func propValue(ve *ical.VEvent, prop ical.ComponentProperty) string {
	if p := ve.GetProperty(prop); p != nil {
		return strings.TrimSpace(p.Value)
	}
	return ""
}

func organizerName(p *ical.IANAProperty) string {
	if p == nil {
		return ""
	}
	if cn, ok := p.ICalParameters["CN"]; ok && len(cn) > 0 && cn[0] != "" {
		return cn[0]
	}
	v := strings.TrimSpace(p.Value)
	if len(v) > len("mailto:") && strings.EqualFold(v[:len("mailto:")], "mailto:") {
		return v[len("mailto:"):]
	}
	return v
}

func statusFrom(v string) model.EventStatus {
	switch strings.ToUpper(v) {
	case string(ical.ObjectStatusConfirmed):
		return model.EventStatusPublished
	case string(ical.ObjectStatusCancelled):
		return model.EventStatusCancelled
	default:
		return model.EventStatusDraft
	}
}
