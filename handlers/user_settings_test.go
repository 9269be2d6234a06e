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
	"watchdeck/services/usersettings"
)

type fakeUserSettingsService struct {
	settings models.UserSettings
	err      error

	lastSpoilers models.SpoilerConfig
	hidden       []int
}

func (f *fakeUserSettingsService) GetWithDefaults(userID string) (models.UserSettings, error) {
	return f.settings, f.err
}

func (f *fakeUserSettingsService) UpdateSpoilers(userID string, cfg models.SpoilerConfig) (models.UserSettings, error) {
	if f.err != nil {
		return models.UserSettings{}, f.err
	}
	f.lastSpoilers = cfg
	f.settings.Spoilers = cfg
	return f.settings, nil
}

func (f *fakeUserSettingsService) UpdateCalendar(userID string, prefs models.CalendarPrefs) (models.UserSettings, error) {
	if f.err != nil {
		return models.UserSettings{}, f.err
	}
	f.settings.Calendar = prefs
	return f.settings, nil
}

func (f *fakeUserSettingsService) HideShow(userID string, showID int) (models.UserSettings, error) {
	if f.err != nil {
		return models.UserSettings{}, f.err
	}
	f.hidden = append(f.hidden, showID)
	f.settings.Hidden.ShowIDs = f.hidden
	return f.settings, nil
}

func (f *fakeUserSettingsService) UnhideShow(userID string, showID int) (models.UserSettings, error) {
	return f.settings, f.err
}

func TestUserSettingsHandler_UpdateSpoilers(t *testing.T) {
	svc := &fakeUserSettingsService{}
	handler := handlers.NewUserSettingsHandler(svc, fakeUserDirectory{})

	body := []byte(`{"images":true,"title":true,"overview":false,"includeMovies":true,"replacementMode":"banner"}`)
	req := httptest.NewRequest(http.MethodPut, "/users/default/settings/spoilers", bytes.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"userID": "default"})
	rec := httptest.NewRecorder()

	handler.UpdateSpoilers(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastSpoilers.ReplacementMode != models.ReplacementModeBanner {
		t.Fatalf("unexpected config forwarded: %+v", svc.lastSpoilers)
	}

	var settings models.UserSettings
	if err := json.Unmarshal(rec.Body.Bytes(), &settings); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !settings.Spoilers.IncludeMovies {
		t.Fatalf("unexpected settings %+v", settings)
	}
}

func TestUserSettingsHandler_UpdateSpoilersInvalidMode(t *testing.T) {
	svc := &fakeUserSettingsService{err: usersettings.ErrInvalidReplacement}
	handler := handlers.NewUserSettingsHandler(svc, fakeUserDirectory{})

	body := []byte(`{"replacementMode":"pixelate"}`)
	req := httptest.NewRequest(http.MethodPut, "/users/default/settings/spoilers", bytes.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"userID": "default"})
	rec := httptest.NewRecorder()

	handler.UpdateSpoilers(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}

func TestUserSettingsHandler_HideShow(t *testing.T) {
	svc := &fakeUserSettingsService{}
	handler := handlers.NewUserSettingsHandler(svc, fakeUserDirectory{})

	req := httptest.NewRequest(http.MethodPost, "/users/default/settings/hidden/42", nil)
	req = mux.SetURLVars(req, map[string]string{"userID": "default", "showId": "42"})
	rec := httptest.NewRecorder()

	handler.HideShow(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if len(svc.hidden) != 1 || svc.hidden[0] != 42 {
		t.Fatalf("unexpected hidden list %v", svc.hidden)
	}
}

func TestUserSettingsHandler_HideShowInvalidID(t *testing.T) {
	handler := handlers.NewUserSettingsHandler(&fakeUserSettingsService{}, fakeUserDirectory{})

	req := httptest.NewRequest(http.MethodPost, "/users/default/settings/hidden/abc", nil)
	req = mux.SetURLVars(req, map[string]string{"userID": "default", "showId": "abc"})
	rec := httptest.NewRecorder()

	handler.HideShow(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}
