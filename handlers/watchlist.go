package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"watchdeck/models"
	"watchdeck/services/watchlist"
)

type watchlistService interface {
	List(userID string) ([]models.WatchlistItem, error)
	Upsert(userID string, input models.WatchlistUpsert) (models.WatchlistItem, error)
	Remove(userID, mediaType string, showID int) (bool, error)
}

var _ watchlistService = (*watchlist.Service)(nil)

type WatchlistHandler struct {
	Service watchlistService
	Users   userDirectory
}

func NewWatchlistHandler(service watchlistService, users userDirectory) *WatchlistHandler {
	return &WatchlistHandler{Service: service, Users: users}
}

func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.Users)
	if !ok {
		return
	}

	items, err := h.Service.List(userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, items)
}

func (h *WatchlistHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.Users)
	if !ok {
		return
	}

	var input models.WatchlistUpsert
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	item, err := h.Service.Upsert(userID, input)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, item)
}

func (h *WatchlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.Users)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	showID, err := strconv.Atoi(vars["showId"])
	if err != nil {
		http.Error(w, "invalid show id", http.StatusBadRequest)
		return
	}

	removed, err := h.Service.Remove(userID, vars["mediaType"], showID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if !removed {
		http.Error(w, "watchlist item not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *WatchlistHandler) writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, watchlist.ErrShowIDRequired),
		errors.Is(err, watchlist.ErrMediaTypeRequired),
		errors.Is(err, watchlist.ErrUserIDRequired):
		status = http.StatusBadRequest
	}
	http.Error(w, err.Error(), status)
}
