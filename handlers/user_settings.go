package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"watchdeck/models"
	"watchdeck/services/usersettings"
)

type userSettingsService interface {
	GetWithDefaults(userID string) (models.UserSettings, error)
	UpdateSpoilers(userID string, cfg models.SpoilerConfig) (models.UserSettings, error)
	UpdateCalendar(userID string, prefs models.CalendarPrefs) (models.UserSettings, error)
	HideShow(userID string, showID int) (models.UserSettings, error)
	UnhideShow(userID string, showID int) (models.UserSettings, error)
}

var _ userSettingsService = (*usersettings.Service)(nil)

type UserSettingsHandler struct {
	Service userSettingsService
	Users   userDirectory
}

func NewUserSettingsHandler(service userSettingsService, users userDirectory) *UserSettingsHandler {
	return &UserSettingsHandler{Service: service, Users: users}
}

func (h *UserSettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.Users)
	if !ok {
		return
	}

	settings, err := h.Service.GetWithDefaults(userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, settings)
}

func (h *UserSettingsHandler) UpdateSpoilers(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.Users)
	if !ok {
		return
	}

	var cfg models.SpoilerConfig
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	settings, err := h.Service.UpdateSpoilers(userID, cfg)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, settings)
}

func (h *UserSettingsHandler) UpdateCalendar(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.Users)
	if !ok {
		return
	}

	var prefs models.CalendarPrefs
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&prefs); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	settings, err := h.Service.UpdateCalendar(userID, prefs)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, settings)
}

func (h *UserSettingsHandler) HideShow(w http.ResponseWriter, r *http.Request) {
	h.toggleHidden(w, r, h.Service.HideShow)
}

func (h *UserSettingsHandler) UnhideShow(w http.ResponseWriter, r *http.Request) {
	h.toggleHidden(w, r, h.Service.UnhideShow)
}

func (h *UserSettingsHandler) toggleHidden(w http.ResponseWriter, r *http.Request, apply func(string, int) (models.UserSettings, error)) {
	userID, ok := requireUser(w, r, h.Users)
	if !ok {
		return
	}

	showID, err := strconv.Atoi(mux.Vars(r)["showId"])
	if err != nil {
		http.Error(w, "invalid show id", http.StatusBadRequest)
		return
	}

	settings, err := apply(userID, showID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, settings)
}

func (h *UserSettingsHandler) writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, usersettings.ErrInvalidReplacement),
		errors.Is(err, usersettings.ErrShowIDRequired),
		errors.Is(err, usersettings.ErrUserIDRequired):
		status = http.StatusBadRequest
	}
	http.Error(w, err.Error(), status)
}
