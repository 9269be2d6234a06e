package models

import "time"

// SyncJobState describes a bulk-sync job's lifecycle.
type SyncJobState string

const (
	SyncJobStateRunning SyncJobState = "running"
	SyncJobStateDone    SyncJobState = "done"
	SyncJobStateFailed  SyncJobState = "failed"
)

// SyncJob is the ephemeral progress tracker for one bulk operation. Jobs are
// created when an import or mark-history run starts and discarded with the
// process; they are never persisted across restarts.
type SyncJob struct {
	ID        string       `json:"id"`
	Total     int          `json:"total"`
	Current   int          `json:"current"`
	State     SyncJobState `json:"state"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	StartedAt time.Time    `json:"startedAt"`
}

// WorkItem is one watched-state mutation for the bulk-sync engine to apply.
// Movies leave season and episode at zero.
type WorkItem struct {
	ShowID        int  `json:"showId"`
	SeasonNumber  int  `json:"seasonNumber,omitempty"`
	EpisodeNumber int  `json:"episodeNumber,omitempty"`
	IsMovie       bool `json:"isMovie,omitempty"`
	Watched       bool `json:"watched"`
}

// Ref converts the work item into an interaction reference.
func (w WorkItem) Ref() InteractionRef {
	return InteractionRef{
		ShowID:        w.ShowID,
		SeasonNumber:  w.SeasonNumber,
		EpisodeNumber: w.EpisodeNumber,
		IsMovie:       w.IsMovie,
	}
}
