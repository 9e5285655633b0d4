// Package devseed loads sample events and profiles into a record backend.
package devseed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/target/eventhub/internal/calendar"
	"github.com/target/eventhub/internal/core"
	"github.com/target/eventhub/internal/domain/model"
)

// DefaultOwnerID owns seeded events whose entry names no owner.
const DefaultOwnerID = "seed"

// File is the YAML seed document.
//
//	owner: dev-user
//	events:
//	  - name: Jazz Night
//	    date: 2026-11-02
//	    time: "19:30"
//	    status: Published
//	profiles:
//	  - user_id: dev-user
//	    display_name: Dev User
type File struct {
	Owner    string         `yaml:"owner"`
	Events   []EventEntry   `yaml:"events"`
	Profiles []ProfileEntry `yaml:"profiles"`
}

// EventEntry is one seeded event.
type EventEntry struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Date        string  `yaml:"date"`
	Time        string  `yaml:"time"`
	Location    string  `yaml:"location"`
	Category    string  `yaml:"category"`
	Capacity    int     `yaml:"capacity"`
	Price       float64 `yaml:"price"`
	Status      string  `yaml:"status"`
	Featured    bool    `yaml:"featured"`
	ImageURL    string  `yaml:"image_url"`
	Organizer   string  `yaml:"organizer"`
	Tags        string  `yaml:"tags"`
	Owner       string  `yaml:"owner"`
}

// ProfileEntry is one seeded profile.
type ProfileEntry struct {
	UserID      string `yaml:"user_id"`
	DisplayName string `yaml:"display_name"`
	Email       string `yaml:"email"`
	Bio         string `yaml:"bio"`
	Location    string `yaml:"location"`
	AvatarURL   string `yaml:"avatar_url"`
	Interests   string `yaml:"interests"`
}

// Request converts the entry to a create request.
func (e EventEntry) Request() *model.CreateEventRequest {
	return &model.CreateEventRequest{
		Name:        e.Name,
		Description: e.Description,
		Date:        e.Date,
		Time:        e.Time,
		Location:    e.Location,
		Category:    e.Category,
		Capacity:    e.Capacity,
		Price:       e.Price,
		Status:      model.EventStatus(e.Status),
		Featured:    e.Featured,
		ImageURL:    e.ImageURL,
		Organizer:   e.Organizer,
		Tags:        e.Tags,
	}
}

// Profile converts the entry to a profile.
func (p ProfileEntry) Profile() model.Profile {
	return model.Profile{
		UserID:      strings.TrimSpace(p.UserID),
		DisplayName: p.DisplayName,
		Email:       p.Email,
		Bio:         p.Bio,
		Location:    p.Location,
		AvatarURL:   p.AvatarURL,
		Interests:   p.Interests,
	}
}

// Parse decodes a seed document. Unknown keys are rejected so typos surface.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return &f, nil
}

// LoadFile reads and parses the seed document at path.
func LoadFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer fh.Close()
	return Parse(fh)
}

// Repos bundles the repositories seeding writes through.
type Repos struct {
	Events   core.EventRepository
	Profiles core.ProfileRepository
}

// Stats counts what a seeding run wrote.
type Stats struct {
	Events   int
	Profiles int
	Failures int
}

// Run writes every event and profile in f. Invalid entries are logged and
// counted; the run keeps going and reports the failure count as an error.
func Run(ctx context.Context, repos Repos, f *File, logger *slog.Logger) (Stats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "devseed")

	var stats Stats
	if f == nil {
		return stats, nil
	}

	owner := strings.TrimSpace(f.Owner)
	if owner == "" {
		owner = DefaultOwnerID
	}

	for i, entry := range f.Events {
		eventOwner := owner
		if o := strings.TrimSpace(entry.Owner); o != "" {
			eventOwner = o
		}
		if err := seedEvent(ctx, repos.Events, eventOwner, entry.Request()); err != nil {
			logger.ErrorContext(ctx, "failed to seed event", "index", i, "name", entry.Name, "error", err)
			stats.Failures++
			continue
		}
		stats.Events++
	}

	for i, entry := range f.Profiles {
		p := entry.Profile()
		if p.UserID == "" {
			logger.ErrorContext(ctx, "failed to seed profile", "index", i, "error", "user_id is required")
			stats.Failures++
			continue
		}
		if _, err := repos.Profiles.Upsert(ctx, p); err != nil {
			logger.ErrorContext(ctx, "failed to seed profile", "user_id", p.UserID, "error", err)
			stats.Failures++
			continue
		}
		stats.Profiles++
	}

	logger.InfoContext(ctx, "seed complete", "events", stats.Events, "profiles", stats.Profiles, "failures", stats.Failures)
	if stats.Failures > 0 {
		return stats, fmt.Errorf("%d seed errors; check logs", stats.Failures)
	}
	return stats, nil
}

// ImportICS creates one event per VEVENT in r, owned by ownerID.
func ImportICS(
	ctx context.Context,
	events core.EventRepository,
	r io.Reader,
	ownerID string,
	loc *time.Location,
) (int, error) {
	reqs, err := calendar.ParseICS(r, loc)
	if err != nil {
		return 0, err
	}
	if ownerID == "" {
		ownerID = DefaultOwnerID
	}

	created := 0
	var errs []error
	for i := range reqs {
		if err := seedEvent(ctx, events, ownerID, &reqs[i]); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", reqs[i].Name, err))
			continue
		}
		created++
	}
	return created, errors.Join(errs...)
}

func seedEvent(ctx context.Context, repo core.EventRepository, ownerID string, req *model.CreateEventRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	_, err := repo.Create(ctx, ownerID, req)
	return err
}
