package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"watchdeck/models"
	"watchdeck/services/reminders"
)

type reminderService interface {
	Resolve(userID string, req reminders.Request) (models.Reminder, bool, error)
	List(userID string) ([]models.Reminder, error)
	Delete(userID string, req reminders.Request) error
}

var _ reminderService = (*reminders.Service)(nil)

type RemindersHandler struct {
	Service reminderService
	Users   userDirectory
}

func NewRemindersHandler(service reminderService, users userDirectory) *RemindersHandler {
	return &RemindersHandler{Service: service, Users: users}
}

func (h *RemindersHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.Users)
	if !ok {
		return
	}

	list, err := h.Service.List(userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, list)
}

func (h *RemindersHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.Users)
	if !ok {
		return
	}

	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	reminder, alreadyExists, err := h.Service.Resolve(userID, req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	status := http.StatusCreated
	if alreadyExists {
		status = http.StatusConflict
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(struct {
		Reminder      models.Reminder `json:"reminder"`
		AlreadyExists bool            `json:"alreadyExists"`
	}{reminder, alreadyExists})
}

func (h *RemindersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.Users)
	if !ok {
		return
	}

	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(userID, req); err != nil {
		if errors.Is(err, reminders.ErrReminderNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *RemindersHandler) decodeRequest(w http.ResponseWriter, r *http.Request) (reminders.Request, bool) {
	var req reminders.Request
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return reminders.Request{}, false
	}
	return req, true
}

func (h *RemindersHandler) writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, reminders.ErrShowIDRequired),
		errors.Is(err, reminders.ErrInvalidScope),
		errors.Is(err, reminders.ErrEpisodeRequired),
		errors.Is(err, reminders.ErrUserIDRequired):
		status = http.StatusBadRequest
	}
	http.Error(w, err.Error(), status)
}
