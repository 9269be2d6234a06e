package bulksync

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"watchdeck/models"
)

var ErrInvalidImportFormat = errors.New("invalid import format")

// ImportIdentity names the profile the document was exported from.
type ImportIdentity struct {
	Name       string `json:"name"`
	ExportedAt string `json:"exportedAt,omitempty"`
}

// ImportedShow is one tracked show or movie in the document.
type ImportedShow struct {
	ShowID    int    `json:"showId"`
	MediaType string `json:"mediaType"` // movie | series
	Name      string `json:"name"`
	Year      int    `json:"year,omitempty"`
	PosterURL string `json:"posterUrl,omitempty"`
}

// ImportedWatched is one watched fact to replay into the interaction store.
type ImportedWatched struct {
	ShowID        int  `json:"showId"`
	SeasonNumber  int  `json:"seasonNumber,omitempty"`
	EpisodeNumber int  `json:"episodeNumber,omitempty"`
	IsMovie       bool `json:"isMovie,omitempty"`
}

// ImportDocument is an externally produced profile export: an identity, the
// shows the profile follows, and the watched history to replay.
type ImportDocument struct {
	Identity ImportIdentity    `json:"identity"`
	Shows    []ImportedShow    `json:"shows"`
	Watched  []ImportedWatched `json:"watched"`
}

// ImportPreview is shown to the user before they confirm a replay.
type ImportPreview struct {
	ProfileName string `json:"profileName"`
	Shows       int    `json:"shows"`
	Items       int    `json:"items"`
	Estimate    string `json:"estimate"`
}

// ParseImport strictly decodes and validates an import document. Validation
// runs in full before any mutation so a malformed document can never leave a
// half-applied profile behind.
func ParseImport(data []byte) (ImportDocument, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var doc ImportDocument
	if err := dec.Decode(&doc); err != nil {
		return ImportDocument{}, fmt.Errorf("%w: %v", ErrInvalidImportFormat, err)
	}
	if dec.More() {
		return ImportDocument{}, fmt.Errorf("%w: trailing data", ErrInvalidImportFormat)
	}

	if err := doc.validate(); err != nil {
		return ImportDocument{}, err
	}
	return doc, nil
}

func (d ImportDocument) validate() error {
	if strings.TrimSpace(d.Identity.Name) == "" {
		return fmt.Errorf("%w: missing identity name", ErrInvalidImportFormat)
	}
	for i, show := range d.Shows {
		if show.ShowID <= 0 {
			return fmt.Errorf("%w: shows[%d] has no show id", ErrInvalidImportFormat, i)
		}
		if show.MediaType != "movie" && show.MediaType != "series" {
			return fmt.Errorf("%w: shows[%d] has media type %q", ErrInvalidImportFormat, i, show.MediaType)
		}
		if strings.TrimSpace(show.Name) == "" {
			return fmt.Errorf("%w: shows[%d] has no name", ErrInvalidImportFormat, i)
		}
	}
	for i, watched := range d.Watched {
		if watched.ShowID <= 0 {
			return fmt.Errorf("%w: watched[%d] has no show id", ErrInvalidImportFormat, i)
		}
		if !watched.IsMovie && (watched.SeasonNumber < 0 || watched.EpisodeNumber <= 0) {
			return fmt.Errorf("%w: watched[%d] has invalid episode coordinates", ErrInvalidImportFormat, i)
		}
	}
	return nil
}

// WorkItems converts the watched history into engine work items. The item
// count is the job total for progress reporting.
func (d ImportDocument) WorkItems() []models.WorkItem {
	items := make([]models.WorkItem, 0, len(d.Watched))
	for _, watched := range d.Watched {
		items = append(items, models.WorkItem{
			ShowID:        watched.ShowID,
			SeasonNumber:  watched.SeasonNumber,
			EpisodeNumber: watched.EpisodeNumber,
			IsMovie:       watched.IsMovie,
			Watched:       true,
		})
	}
	return items
}

// Preview summarizes the document and the expected runtime without mutating
// anything.
func Preview(doc ImportDocument, batchSize int, delay time.Duration) ImportPreview {
	items := len(doc.Watched)
	return ImportPreview{
		ProfileName: doc.Identity.Name,
		Shows:       len(doc.Shows),
		Items:       items,
		Estimate:    FormatEstimate(EstimateDuration(items, batchSize, delay)),
	}
}
