package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"watchdeck/handlers"
	"watchdeck/models"
	"watchdeck/services/reminders"
)

type fakeReminderService struct {
	reminder models.Reminder
	exists   bool
	list     []models.Reminder
	err      error
}

func (f *fakeReminderService) Resolve(userID string, req reminders.Request) (models.Reminder, bool, error) {
	if f.err != nil {
		return models.Reminder{}, false, f.err
	}
	return f.reminder, f.exists, nil
}

func (f *fakeReminderService) List(userID string) ([]models.Reminder, error) {
	return f.list, f.err
}

func (f *fakeReminderService) Delete(userID string, req reminders.Request) error {
	return f.err
}

func TestRemindersHandler_Create(t *testing.T) {
	svc := &fakeReminderService{
		reminder: models.Reminder{ShowID: 42, MediaType: "tv", Scope: models.ReminderScopeAll},
	}
	handler := handlers.NewRemindersHandler(svc, fakeUserDirectory{})

	body := []byte(`{"showId":42,"scope":"all"}`)
	req := httptest.NewRequest(http.MethodPost, "/users/default/reminders", bytes.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"userID": "default"})
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}

	var response struct {
		Reminder      models.Reminder `json:"reminder"`
		AlreadyExists bool            `json:"alreadyExists"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.AlreadyExists {
		t.Fatal("expected a fresh reminder")
	}
	if response.Reminder.ShowID != 42 {
		t.Fatalf("unexpected reminder %+v", response.Reminder)
	}
}

func TestRemindersHandler_CreateDuplicateConflicts(t *testing.T) {
	svc := &fakeReminderService{
		reminder: models.Reminder{ShowID: 42, Scope: models.ReminderScopeAll},
		exists:   true,
	}
	handler := handlers.NewRemindersHandler(svc, fakeUserDirectory{})

	body := []byte(`{"showId":42,"scope":"all"}`)
	req := httptest.NewRequest(http.MethodPost, "/users/default/reminders", bytes.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"userID": "default"})
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("unexpected status %d", rec.Code)
	}

	var response struct {
		AlreadyExists bool `json:"alreadyExists"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !response.AlreadyExists {
		t.Fatal("expected alreadyExists in response")
	}
}

func TestRemindersHandler_CreateInvalidScope(t *testing.T) {
	svc := &fakeReminderService{err: reminders.ErrInvalidScope}
	handler := handlers.NewRemindersHandler(svc, fakeUserDirectory{})

	body := []byte(`{"showId":42,"scope":"sideways"}`)
	req := httptest.NewRequest(http.MethodPost, "/users/default/reminders", bytes.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"userID": "default"})
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}

func TestRemindersHandler_DeleteMissing(t *testing.T) {
	svc := &fakeReminderService{err: reminders.ErrReminderNotFound}
	handler := handlers.NewRemindersHandler(svc, fakeUserDirectory{})

	body := []byte(`{"showId":42,"scope":"all"}`)
	req := httptest.NewRequest(http.MethodDelete, "/users/default/reminders", bytes.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"userID": "default"})
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}
