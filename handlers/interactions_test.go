package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"watchdeck/handlers"
	"watchdeck/models"
)

type fakeUserDirectory struct {
	missing bool
}

func (f fakeUserDirectory) Exists(id string) bool { return !f.missing }

type fakeInteractionService struct {
	record   models.Interaction
	stored   *models.Interaction
	progress models.SeriesProgress
	err      error

	lastRef     models.InteractionRef
	lastWatched bool
}

func (f *fakeInteractionService) Toggle(userID string, ref models.InteractionRef) (models.Interaction, error) {
	f.lastRef = ref
	return f.record, f.err
}

func (f *fakeInteractionService) SetWatched(userID string, ref models.InteractionRef, watched bool) (models.Interaction, error) {
	f.lastRef = ref
	f.lastWatched = watched
	return f.record, f.err
}

func (f *fakeInteractionService) Get(userID, key string) (*models.Interaction, error) {
	return f.stored, f.err
}

func (f *fakeInteractionService) List(userID string) ([]models.Interaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []models.Interaction{f.record}, nil
}

func (f *fakeInteractionService) ProgressFor(userID string, showID int) (models.SeriesProgress, error) {
	return f.progress, f.err
}

func TestInteractionsHandler_Toggle(t *testing.T) {
	svc := &fakeInteractionService{
		record: models.Interaction{
			Key:       models.EpisodeInteractionKey(42, 2, 5),
			ShowID:    42,
			MediaType: models.MediaTypeEpisode,
			IsWatched: true,
			UpdatedAt: time.Now().UTC(),
		},
	}
	handler := handlers.NewInteractionsHandler(svc, fakeUserDirectory{})

	body, _ := json.Marshal(map[string]any{"showId": 42, "seasonNumber": 2, "episodeNumber": 5})
	req := httptest.NewRequest(http.MethodPost, "/users/default/interactions/toggle", bytes.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"userID": "default"})
	rec := httptest.NewRecorder()

	handler.Toggle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastRef.ShowID != 42 || svc.lastRef.SeasonNumber != 2 || svc.lastRef.EpisodeNumber != 5 {
		t.Fatalf("unexpected ref forwarded: %+v", svc.lastRef)
	}

	var response models.Interaction
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !response.IsWatched {
		t.Fatal("expected watched interaction in response")
	}
}

func TestInteractionsHandler_ToggleRejectsUnknownFields(t *testing.T) {
	handler := handlers.NewInteractionsHandler(&fakeInteractionService{}, fakeUserDirectory{})

	req := httptest.NewRequest(http.MethodPost, "/users/default/interactions/toggle",
		bytes.NewReader([]byte(`{"showId":42,"surprise":true}`)))
	req = mux.SetURLVars(req, map[string]string{"userID": "default"})
	rec := httptest.NewRecorder()

	handler.Toggle(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}

func TestInteractionsHandler_SetWatchedRequiresWatched(t *testing.T) {
	handler := handlers.NewInteractionsHandler(&fakeInteractionService{}, fakeUserDirectory{})

	body := []byte(`{"showId":42,"isMovie":true}`)
	req := httptest.NewRequest(http.MethodPut, "/users/default/interactions", bytes.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"userID": "default"})
	rec := httptest.NewRecorder()

	handler.SetWatched(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}

func TestInteractionsHandler_SetWatchedForwardsValue(t *testing.T) {
	svc := &fakeInteractionService{}
	handler := handlers.NewInteractionsHandler(svc, fakeUserDirectory{})

	body := []byte(`{"showId":42,"isMovie":true,"watched":false}`)
	req := httptest.NewRequest(http.MethodPut, "/users/default/interactions", bytes.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"userID": "default"})
	rec := httptest.NewRecorder()

	handler.SetWatched(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastWatched {
		t.Fatal("expected watched=false forwarded to service")
	}
	if !svc.lastRef.IsMovie {
		t.Fatal("expected movie ref forwarded to service")
	}
}

func TestInteractionsHandler_GetNotFound(t *testing.T) {
	handler := handlers.NewInteractionsHandler(&fakeInteractionService{}, fakeUserDirectory{})

	req := httptest.NewRequest(http.MethodGet, "/users/default/interactions/movie-7", nil)
	req = mux.SetURLVars(req, map[string]string{"userID": "default", "key": "movie-7"})
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}

func TestInteractionsHandler_Progress(t *testing.T) {
	svc := &fakeInteractionService{progress: models.SeriesProgress{MaxSeason: 3, MaxEpisode: 4}}
	handler := handlers.NewInteractionsHandler(svc, fakeUserDirectory{})

	req := httptest.NewRequest(http.MethodGet, "/users/default/shows/42/progress", nil)
	req = mux.SetURLVars(req, map[string]string{"userID": "default", "showID": "42"})
	rec := httptest.NewRecorder()

	handler.Progress(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}

	var progress models.SeriesProgress
	if err := json.Unmarshal(rec.Body.Bytes(), &progress); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if progress.MaxSeason != 3 || progress.MaxEpisode != 4 {
		t.Fatalf("unexpected progress %+v", progress)
	}
}

func TestInteractionsHandler_UnknownUser(t *testing.T) {
	handler := handlers.NewInteractionsHandler(&fakeInteractionService{}, fakeUserDirectory{missing: true})

	req := httptest.NewRequest(http.MethodGet, "/users/ghost/interactions", nil)
	req = mux.SetURLVars(req, map[string]string{"userID": "ghost"})
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}
