package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"watchdeck/handlers"
	"watchdeck/models"
	"watchdeck/services/bulksync"
)

type fakeSyncService struct {
	jobID   string
	preview bulksync.ImportPreview
	job     models.SyncJob
	err     error
}

func (f *fakeSyncService) MarkPreviousWatched(ctx context.Context, userID string, showID, upToSeason, upToEpisode int) (string, error) {
	return f.jobID, f.err
}

func (f *fakeSyncService) PreviewImport(data []byte) (bulksync.ImportPreview, error) {
	return f.preview, f.err
}

func (f *fakeSyncService) StartImport(userID string, data []byte) (string, error) {
	return f.jobID, f.err
}

func (f *fakeSyncService) Job(id string) (models.SyncJob, error) {
	return f.job, f.err
}

func (f *fakeSyncService) Cancel(id string) error {
	return f.err
}

func TestSyncHandler_MarkPreviousWatched(t *testing.T) {
	svc := &fakeSyncService{jobID: "job-1"}
	handler := handlers.NewSyncHandler(svc, fakeUserDirectory{})

	body := []byte(`{"showId":42,"upToSeason":2,"upToEpisode":5}`)
	req := httptest.NewRequest(http.MethodPost, "/users/default/sync/mark-previous", bytes.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"userID": "default"})
	rec := httptest.NewRecorder()

	handler.MarkPreviousWatched(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}

	var response map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["jobId"] != "job-1" {
		t.Fatalf("unexpected response %v", response)
	}
}

func TestSyncHandler_MarkPreviousWatchedNothingToSync(t *testing.T) {
	svc := &fakeSyncService{err: bulksync.ErrNothingToSync}
	handler := handlers.NewSyncHandler(svc, fakeUserDirectory{})

	body := []byte(`{"showId":42,"upToSeason":1,"upToEpisode":0}`)
	req := httptest.NewRequest(http.MethodPost, "/users/default/sync/mark-previous", bytes.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"userID": "default"})
	rec := httptest.NewRecorder()

	handler.MarkPreviousWatched(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}

func TestSyncHandler_ImportInvalidDocument(t *testing.T) {
	svc := &fakeSyncService{err: bulksync.ErrInvalidImportFormat}
	handler := handlers.NewSyncHandler(svc, fakeUserDirectory{})

	req := httptest.NewRequest(http.MethodPost, "/users/default/sync/import", bytes.NewReader([]byte(`{}`)))
	req = mux.SetURLVars(req, map[string]string{"userID": "default"})
	rec := httptest.NewRecorder()

	handler.Import(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}

func TestSyncHandler_PreviewImport(t *testing.T) {
	svc := &fakeSyncService{
		preview: bulksync.ImportPreview{ProfileName: "alice", Shows: 2, Items: 3, Estimate: "1 second"},
	}
	handler := handlers.NewSyncHandler(svc, fakeUserDirectory{})

	req := httptest.NewRequest(http.MethodPost, "/sync/import/preview", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()

	handler.PreviewImport(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}

	var preview bulksync.ImportPreview
	if err := json.Unmarshal(rec.Body.Bytes(), &preview); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if preview.Items != 3 || preview.Estimate != "1 second" {
		t.Fatalf("unexpected preview %+v", preview)
	}
}

func TestSyncHandler_JobIncludesPercent(t *testing.T) {
	svc := &fakeSyncService{
		job: models.SyncJob{ID: "job-1", Total: 10, Current: 4},
	}
	handler := handlers.NewSyncHandler(svc, fakeUserDirectory{})

	req := httptest.NewRequest(http.MethodGet, "/sync/jobs/job-1", nil)
	req = mux.SetURLVars(req, map[string]string{"jobId": "job-1"})
	rec := httptest.NewRecorder()

	handler.Job(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}

	var response struct {
		ID      string `json:"id"`
		Percent int    `json:"percent"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Percent != 40 {
		t.Fatalf("unexpected percent %d", response.Percent)
	}
}

func TestSyncHandler_JobNotFound(t *testing.T) {
	svc := &fakeSyncService{err: bulksync.ErrJobNotFound}
	handler := handlers.NewSyncHandler(svc, fakeUserDirectory{})

	req := httptest.NewRequest(http.MethodGet, "/sync/jobs/missing", nil)
	req = mux.SetURLVars(req, map[string]string{"jobId": "missing"})
	rec := httptest.NewRecorder()

	handler.Job(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}
