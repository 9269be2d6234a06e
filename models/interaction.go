package models

import "time"

// MediaType classifies an interaction's subject.
type MediaType string

const (
	MediaTypeMovie   MediaType = "movie"
	MediaTypeEpisode MediaType = "episode"
)

// Interaction is the persisted watched/unwatched fact for one release.
// Interactions are created on first toggle or bulk-mark and never deleted,
// only flipped back to unwatched.
type Interaction struct {
	Key           string    `json:"key"`
	ShowID        int       `json:"showId"`
	MediaType     MediaType `json:"mediaType"`
	SeasonNumber  int       `json:"seasonNumber,omitempty"`
	EpisodeNumber int       `json:"episodeNumber,omitempty"`
	IsWatched     bool      `json:"isWatched"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// InteractionRef identifies the release an interaction belongs to. It carries
// just enough to derive the canonical key and seed a new record.
type InteractionRef struct {
	ShowID        int  `json:"showId"`
	SeasonNumber  int  `json:"seasonNumber,omitempty"`
	EpisodeNumber int  `json:"episodeNumber,omitempty"`
	IsMovie       bool `json:"isMovie,omitempty"`
}

// Key returns the canonical interaction key for the referenced release.
func (r InteractionRef) Key() string {
	if r.IsMovie {
		return MovieInteractionKey(r.ShowID)
	}
	return EpisodeInteractionKey(r.ShowID, r.SeasonNumber, r.EpisodeNumber)
}

// MediaType returns the interaction media type for the referenced release.
func (r InteractionRef) MediaType() MediaType {
	if r.IsMovie {
		return MediaTypeMovie
	}
	return MediaTypeEpisode
}

// SeriesProgress is how far a user has progressed through a series, derived
// from watched episode interactions. Zero values mean nothing watched yet.
type SeriesProgress struct {
	MaxSeason  int `json:"maxSeason"`
	MaxEpisode int `json:"maxEpisode"`
}

// ReplacementMode controls how a spoiler-blocked image degrades.
type ReplacementMode string

const (
	ReplacementModeBlur   ReplacementMode = "blur"
	ReplacementModeBanner ReplacementMode = "banner"
)

// SpoilerConfig is the user's spoiler-sensitivity configuration, passed as an
// immutable value into every policy evaluation.
type SpoilerConfig struct {
	Images          bool            `json:"images"`
	Title           bool            `json:"title"`
	Overview        bool            `json:"overview"`
	IncludeMovies   bool            `json:"includeMovies"`
	ReplacementMode ReplacementMode `json:"replacementMode"`
}

// RevealState holds the ephemeral per-row reveal flags. Once a field is
// revealed it stays revealed for the lifetime of the UI row; reveal state is
// never persisted and never written back into watched state.
type RevealState struct {
	Image    bool `json:"image"`
	Title    bool `json:"title"`
	Overview bool `json:"overview"`
}
