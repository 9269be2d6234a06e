package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"watchdeck/models"
	"watchdeck/services/interactions"
)

type interactionService interface {
	Toggle(userID string, ref models.InteractionRef) (models.Interaction, error)
	SetWatched(userID string, ref models.InteractionRef, watched bool) (models.Interaction, error)
	Get(userID, key string) (*models.Interaction, error)
	List(userID string) ([]models.Interaction, error)
	ProgressFor(userID string, showID int) (models.SeriesProgress, error)
}

var _ interactionService = (*interactions.Service)(nil)

// interactionPayload carries a release reference plus the optional watched
// value for set requests.
type interactionPayload struct {
	ShowID        int   `json:"showId"`
	SeasonNumber  int   `json:"seasonNumber"`
	EpisodeNumber int   `json:"episodeNumber"`
	IsMovie       bool  `json:"isMovie"`
	Watched       *bool `json:"watched"`
}

func (p interactionPayload) ref() models.InteractionRef {
	return models.InteractionRef{
		ShowID:        p.ShowID,
		SeasonNumber:  p.SeasonNumber,
		EpisodeNumber: p.EpisodeNumber,
		IsMovie:       p.IsMovie,
	}
}

type InteractionsHandler struct {
	Service interactionService
	Users   userDirectory
}

func NewInteractionsHandler(service interactionService, users userDirectory) *InteractionsHandler {
	return &InteractionsHandler{Service: service, Users: users}
}

func (h *InteractionsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.Users)
	if !ok {
		return
	}

	records, err := h.Service.List(userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, records)
}

func (h *InteractionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.Users)
	if !ok {
		return
	}

	key := strings.TrimSpace(mux.Vars(r)["key"])
	if key == "" {
		http.Error(w, "interaction key is required", http.StatusBadRequest)
		return
	}

	record, err := h.Service.Get(userID, key)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if record == nil {
		http.Error(w, "interaction not found", http.StatusNotFound)
		return
	}

	writeJSON(w, record)
}

func (h *InteractionsHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.Users)
	if !ok {
		return
	}

	payload, ok := h.decodePayload(w, r)
	if !ok {
		return
	}

	record, err := h.Service.Toggle(userID, payload.ref())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, record)
}

func (h *InteractionsHandler) SetWatched(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.Users)
	if !ok {
		return
	}

	payload, ok := h.decodePayload(w, r)
	if !ok {
		return
	}
	if payload.Watched == nil {
		http.Error(w, "watched is required", http.StatusBadRequest)
		return
	}

	record, err := h.Service.SetWatched(userID, payload.ref(), *payload.Watched)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, record)
}

func (h *InteractionsHandler) Progress(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.Users)
	if !ok {
		return
	}

	showID, err := strconv.Atoi(mux.Vars(r)["showID"])
	if err != nil || showID <= 0 {
		http.Error(w, "show id is required", http.StatusBadRequest)
		return
	}

	progress, err := h.Service.ProgressFor(userID, showID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, progress)
}

func (h *InteractionsHandler) decodePayload(w http.ResponseWriter, r *http.Request) (interactionPayload, bool) {
	var payload interactionPayload
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return interactionPayload{}, false
	}
	if payload.ShowID <= 0 {
		http.Error(w, "show id is required", http.StatusBadRequest)
		return interactionPayload{}, false
	}
	return payload, true
}

func (h *InteractionsHandler) writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, interactions.ErrUserIDRequired):
		status = http.StatusBadRequest
	case errors.Is(err, interactions.ErrShowIDRequired):
		status = http.StatusBadRequest
	}
	http.Error(w, err.Error(), status)
}
