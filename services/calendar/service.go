package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"watchdeck/models"
	"watchdeck/services/spoiler"
)

var ErrCatalogUnavailable = errors.New("catalog unavailable")

// CatalogSource is the slice of the catalog client the calendar needs.
type CatalogSource interface {
	FetchReleasesForMonth(ctx context.Context, year int, month time.Month) ([]models.Release, error)
}

// SettingsSource yields per-user preferences merged with server defaults.
type SettingsSource interface {
	GetWithDefaults(userID string) (models.UserSettings, error)
}

// InteractionSource is the read-only view of the interaction store.
type InteractionSource interface {
	Get(userID, key string) (*models.Interaction, error)
}

// Entry is one release annotated for rendering: watched state, the spoiler
// verdict, and the image the consumer should actually show.
type Entry struct {
	models.Release
	InteractionKey string           `json:"interactionKey"`
	Watched        bool             `json:"watched"`
	Spoiler        spoiler.Decision `json:"spoiler"`
	ImageURL       string           `json:"imageUrl,omitempty"`
}

// Day is one date bucket in display order.
type Day struct {
	Date    string  `json:"date"`
	Entries []Entry `json:"entries"`
}

// MonthView is the aggregated calendar for one month.
type MonthView struct {
	Year  int   `json:"year"`
	Month int   `json:"month"`
	Days  []Day `json:"days"`
}

// Service composes the catalog month feed with per-user filters, watched
// state, and the spoiler policy into day buckets for the HTTP surface.
type Service struct {
	catalog      CatalogSource
	settings     SettingsSource
	interactions InteractionSource
	location     *time.Location
}

func NewService(catalog CatalogSource, settings SettingsSource, interactions InteractionSource, location *time.Location) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		catalog:      catalog,
		settings:     settings,
		interactions: interactions,
		location:     location,
	}
}

// Month fetches the month's releases and builds the annotated view for one
// user. Reveal flags are ephemeral client state and never reach this path, so
// every evaluation runs with an empty reveal.
func (s *Service) Month(ctx context.Context, userID string, year int, month time.Month) (MonthView, error) {
	prefs, err := s.settings.GetWithDefaults(userID)
	if err != nil {
		return MonthView{}, fmt.Errorf("load user settings: %w", err)
	}

	releases, err := s.catalog.FetchReleasesForMonth(ctx, year, month)
	if err != nil {
		return MonthView{}, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	filters := Filters{
		HideTheatrical: prefs.Calendar.HideTheatrical,
		IgnoreSpecials: prefs.Calendar.IgnoreSpecials,
		HiddenShowIDs:  prefs.Hidden.Set(),
		ShowHidden:     prefs.Calendar.ShowHidden,
		Location:       s.location,
	}

	buckets := Aggregate(releases, filters)

	view := MonthView{Year: year, Month: int(month), Days: make([]Day, 0, len(buckets))}
	for _, date := range SortedDates(buckets) {
		day := Day{Date: date, Entries: make([]Entry, 0, len(buckets[date]))}
		for _, release := range buckets[date] {
			entry, err := s.annotate(userID, release, prefs.Spoilers)
			if err != nil {
				return MonthView{}, err
			}
			day.Entries = append(day.Entries, entry)
		}
		view.Days = append(view.Days, day)
	}

	return view, nil
}

func (s *Service) annotate(userID string, release models.Release, cfg models.SpoilerConfig) (Entry, error) {
	key := release.InteractionKey()
	interaction, err := s.interactions.Get(userID, key)
	if err != nil {
		return Entry{}, fmt.Errorf("load interaction %s: %w", key, err)
	}

	decision := spoiler.Evaluate(release, interaction, cfg, models.RevealState{})
	return Entry{
		Release:        release,
		InteractionKey: key,
		Watched:        interaction != nil && interaction.IsWatched,
		Spoiler:        decision,
		ImageURL:       spoiler.ImageURL(release, decision),
	}, nil
}
