package models

import (
	"fmt"
	"time"
)

// ReleaseType distinguishes a movie's two release windows.
type ReleaseType string

const (
	ReleaseTypeTheatrical ReleaseType = "theatrical"
	ReleaseTypeDigital    ReleaseType = "digital"
)

// Release is a single schedulable unit: one TV episode or one movie release
// event. Instances come from the catalog client and are never mutated, only
// re-fetched.
type Release struct {
	ShowID        int         `json:"showId"`
	ShowTitle     string      `json:"showTitle,omitempty"`
	Title         string      `json:"title,omitempty"`
	Overview      string      `json:"overview,omitempty"`
	SeasonNumber  *int        `json:"seasonNumber,omitempty"`
	EpisodeNumber *int        `json:"episodeNumber,omitempty"`
	IsMovie       bool        `json:"isMovie"`
	ReleaseType   ReleaseType `json:"releaseType,omitempty"`
	AirDate       time.Time   `json:"airDate"`
	StillURL      string      `json:"stillUrl,omitempty"`
	PosterURL     string      `json:"posterUrl,omitempty"`
	BannerURL     string      `json:"bannerUrl,omitempty"`
}

// EpisodeInteractionKey builds the canonical identity string for an episode.
func EpisodeInteractionKey(showID, season, episode int) string {
	return fmt.Sprintf("episode-%d-%d-%d", showID, season, episode)
}

// MovieInteractionKey builds the canonical identity string for a movie.
func MovieInteractionKey(showID int) string {
	return fmt.Sprintf("movie-%d", showID)
}

// InteractionKey returns the canonical identity string joining this release
// to its watched-state record. Two releases with equal (showId, season,
// episode, isMovie) always map to the same key.
func (r Release) InteractionKey() string {
	if r.IsMovie {
		return MovieInteractionKey(r.ShowID)
	}
	season, episode := 0, 0
	if r.SeasonNumber != nil {
		season = *r.SeasonNumber
	}
	if r.EpisodeNumber != nil {
		episode = *r.EpisodeNumber
	}
	return EpisodeInteractionKey(r.ShowID, season, episode)
}

// IsSpecial reports whether the release is a season-0 ("specials") episode.
func (r Release) IsSpecial() bool {
	return !r.IsMovie && r.SeasonNumber != nil && *r.SeasonNumber == 0
}
