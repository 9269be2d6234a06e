package handlers

import (
	"encoding/json"
	"net/http"

	"watchdeck/config"
)

type settingsStore interface {
	Load() (config.Settings, error)
	Save(settings config.Settings) error
}

var _ settingsStore = (*config.Manager)(nil)

// SettingsHandler exposes the instance-wide configuration. Per-user
// preferences live under the user settings routes instead.
type SettingsHandler struct {
	Store settingsStore
}

func NewSettingsHandler(store settingsStore) *SettingsHandler {
	return &SettingsHandler{Store: store}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Store.Load()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, settings)
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var settings config.Settings
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&settings); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Store.Save(settings); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	saved, err := h.Store.Load()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, saved)
}
