package models

import (
	"fmt"
	"time"
)

// ReminderScope is the granularity a notification request applies to.
type ReminderScope string

const (
	ReminderScopeAll             ReminderScope = "all"
	ReminderScopeEpisode         ReminderScope = "episode"
	ReminderScopeMovieTheatrical ReminderScope = "movie_theatrical"
	ReminderScopeMovieDigital    ReminderScope = "movie_digital"
)

// IsMovieScope reports whether the scope targets one of a movie's release
// windows.
func (s ReminderScope) IsMovieScope() bool {
	return s == ReminderScopeMovieTheatrical || s == ReminderScopeMovieDigital
}

// Reminder is a user request to be notified about a release.
type Reminder struct {
	ShowID        int           `json:"showId"`
	MediaType     string        `json:"mediaType"` // "movie" | "tv"
	Scope         ReminderScope `json:"scope"`
	EpisodeSeason int           `json:"episodeSeason,omitempty"`
	EpisodeNumber int           `json:"episodeNumber,omitempty"`
	OffsetMinutes int           `json:"offsetMinutes"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// DuplicateKey returns the equivalence-class key used for duplicate
// detection. Any theatrical or digital reminder on a movie collapses into a
// single class per title, so a user cannot hold both windows at once.
func (r Reminder) DuplicateKey() string {
	switch {
	case r.Scope == ReminderScopeEpisode:
		return fmt.Sprintf("episode-%d-%d-%d", r.ShowID, r.EpisodeSeason, r.EpisodeNumber)
	case r.Scope.IsMovieScope():
		return fmt.Sprintf("movie-%d", r.ShowID)
	default:
		return fmt.Sprintf("all-%d", r.ShowID)
	}
}
