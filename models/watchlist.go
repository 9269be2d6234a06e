package models

import (
	"strconv"
	"time"
)

// WatchlistItem represents a show or movie the user follows. Followed items
// form the universe the calendar and reminder surfaces operate on.
type WatchlistItem struct {
	ShowID     int        `json:"showId"`
	MediaType  string     `json:"mediaType"` // movie | series
	Name       string     `json:"name"`
	Year       int        `json:"year,omitempty"`
	PosterURL  string     `json:"posterUrl,omitempty"`
	AddedAt    time.Time  `json:"addedAt"`
	SyncSource string     `json:"syncSource,omitempty"` // e.g., "import:<jobId>" for imported rows
	SyncedAt   *time.Time `json:"syncedAt,omitempty"`
}

// WatchlistUpsert captures data required to insert or update a watchlist item.
type WatchlistUpsert struct {
	ShowID     int        `json:"showId"`
	MediaType  string     `json:"mediaType"`
	Name       string     `json:"name"`
	Year       int        `json:"year,omitempty"`
	PosterURL  string     `json:"posterUrl,omitempty"`
	SyncSource string     `json:"syncSource,omitempty"`
	SyncedAt   *time.Time `json:"syncedAt,omitempty"`
}

// Key returns a stable identifier combining media type and show ID.
func (w WatchlistUpsert) Key() string {
	return w.MediaType + ":" + strconv.Itoa(w.ShowID)
}

// Key returns a stable identifier combining media type and show ID.
func (w WatchlistItem) Key() string {
	return w.MediaType + ":" + strconv.Itoa(w.ShowID)
}
