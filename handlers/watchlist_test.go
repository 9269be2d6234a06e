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

type fakeWatchlistService struct {
	items   []models.WatchlistItem
	item    models.WatchlistItem
	removed bool
	err     error

	lastUpsert models.WatchlistUpsert
}

func (f *fakeWatchlistService) List(userID string) ([]models.WatchlistItem, error) {
	return f.items, f.err
}

func (f *fakeWatchlistService) Upsert(userID string, input models.WatchlistUpsert) (models.WatchlistItem, error) {
	f.lastUpsert = input
	return f.item, f.err
}

func (f *fakeWatchlistService) Remove(userID, mediaType string, showID int) (bool, error) {
	return f.removed, f.err
}

func TestWatchlistHandler_List(t *testing.T) {
	svc := &fakeWatchlistService{
		items: []models.WatchlistItem{
			{ShowID: 42, MediaType: "tv", Name: "Show", AddedAt: time.Now().UTC()},
		},
	}
	handler := handlers.NewWatchlistHandler(svc, fakeUserDirectory{})

	req := httptest.NewRequest(http.MethodGet, "/users/default/watchlist", nil)
	req = mux.SetURLVars(req, map[string]string{"userID": "default"})
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}

	var items []models.WatchlistItem
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(items) != 1 || items[0].ShowID != 42 {
		t.Fatalf("unexpected items %+v", items)
	}
}

func TestWatchlistHandler_Upsert(t *testing.T) {
	svc := &fakeWatchlistService{item: models.WatchlistItem{ShowID: 42, MediaType: "tv"}}
	handler := handlers.NewWatchlistHandler(svc, fakeUserDirectory{})

	body := []byte(`{"showId":42,"mediaType":"tv","name":"Show"}`)
	req := httptest.NewRequest(http.MethodPost, "/users/default/watchlist", bytes.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"userID": "default"})
	rec := httptest.NewRecorder()

	handler.Upsert(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastUpsert.ShowID != 42 || svc.lastUpsert.Name != "Show" {
		t.Fatalf("unexpected upsert forwarded: %+v", svc.lastUpsert)
	}
}

func TestWatchlistHandler_RemoveNotFound(t *testing.T) {
	svc := &fakeWatchlistService{removed: false}
	handler := handlers.NewWatchlistHandler(svc, fakeUserDirectory{})

	req := httptest.NewRequest(http.MethodDelete, "/users/default/watchlist/tv/42", nil)
	req = mux.SetURLVars(req, map[string]string{"userID": "default", "mediaType": "tv", "showId": "42"})
	rec := httptest.NewRecorder()

	handler.Remove(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}

func TestWatchlistHandler_RemoveInvalidShowID(t *testing.T) {
	handler := handlers.NewWatchlistHandler(&fakeWatchlistService{}, fakeUserDirectory{})

	req := httptest.NewRequest(http.MethodDelete, "/users/default/watchlist/tv/abc", nil)
	req = mux.SetURLVars(req, map[string]string{"userID": "default", "mediaType": "tv", "showId": "abc"})
	rec := httptest.NewRecorder()

	handler.Remove(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}
