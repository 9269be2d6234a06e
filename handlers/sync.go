package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"watchdeck/models"
	"watchdeck/services/bulksync"
)

type syncService interface {
	MarkPreviousWatched(ctx context.Context, userID string, showID, upToSeason, upToEpisode int) (string, error)
	PreviewImport(data []byte) (bulksync.ImportPreview, error)
	StartImport(userID string, data []byte) (string, error)
	Job(id string) (models.SyncJob, error)
	Cancel(id string) error
}

var _ syncService = (*bulksync.Service)(nil)

type SyncHandler struct {
	Service syncService
	Users   userDirectory
}

func NewSyncHandler(service syncService, users userDirectory) *SyncHandler {
	return &SyncHandler{Service: service, Users: users}
}

type markPreviousRequest struct {
	ShowID      int `json:"showId"`
	UpToSeason  int `json:"upToSeason"`
	UpToEpisode int `json:"upToEpisode"`
}

// MarkPreviousWatched kicks off a background job marking everything up to
// and including the given episode as watched.
func (h *SyncHandler) MarkPreviousWatched(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.Users)
	if !ok {
		return
	}

	var req markPreviousRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	jobID, err := h.Service.MarkPreviousWatched(r.Context(), userID, req.ShowID, req.UpToSeason, req.UpToEpisode)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"jobId": jobID})
}

// PreviewImport validates an export document and reports what a full import
// would do, without touching any state.
func (h *SyncHandler) PreviewImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	preview, err := h.Service.PreviewImport(data)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, preview)
}

// Import validates the document and starts an import job. Nothing is
// mutated when validation fails.
func (h *SyncHandler) Import(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.Users)
	if !ok {
		return
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	jobID, err := h.Service.StartImport(userID, data)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"jobId": jobID})
}

type jobResponse struct {
	models.SyncJob
	Percent int `json:"percent"`
}

func (h *SyncHandler) Job(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["jobId"]

	job, err := h.Service.Job(jobID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, jobResponse{
		SyncJob: job,
		Percent: bulksync.Percent(job.Current, job.Total),
	})
}

func (h *SyncHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["jobId"]

	if err := h.Service.Cancel(jobID); err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *SyncHandler) writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, bulksync.ErrInvalidImportFormat),
		errors.Is(err, bulksync.ErrShowIDRequired),
		errors.Is(err, bulksync.ErrNothingToSync):
		status = http.StatusBadRequest
	case errors.Is(err, bulksync.ErrJobNotFound):
		status = http.StatusNotFound
	}
	http.Error(w, err.Error(), status)
}
