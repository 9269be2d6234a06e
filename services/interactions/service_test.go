package interactions

import (
	"testing"

	"watchdeck/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(t.TempDir())
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func episodeRef(showID, season, episode int) models.InteractionRef {
	return models.InteractionRef{ShowID: showID, SeasonNumber: season, EpisodeNumber: episode}
}

func TestToggleCreatesWatchedRecord(t *testing.T) {
	svc := newTestService(t)

	record, err := svc.Toggle("u1", episodeRef(42, 1, 3))
	if err != nil {
		t.Fatalf("Toggle returned error: %v", err)
	}
	if !record.IsWatched {
		t.Fatal("expected first toggle to mark the episode watched")
	}
	if record.Key != "episode-42-1-3" {
		t.Fatalf("unexpected key %q", record.Key)
	}
	if record.MediaType != models.MediaTypeEpisode {
		t.Fatalf("unexpected media type %q", record.MediaType)
	}

	record, err = svc.Toggle("u1", episodeRef(42, 1, 3))
	if err != nil {
		t.Fatalf("second Toggle returned error: %v", err)
	}
	if record.IsWatched {
		t.Fatal("expected second toggle to clear the watched flag")
	}
}

func TestToggleMovieUsesMovieKey(t *testing.T) {
	svc := newTestService(t)

	record, err := svc.Toggle("u1", models.InteractionRef{ShowID: 7, IsMovie: true})
	if err != nil {
		t.Fatalf("Toggle returned error: %v", err)
	}
	if record.Key != "movie-7" {
		t.Fatalf("unexpected key %q", record.Key)
	}
	if record.MediaType != models.MediaTypeMovie {
		t.Fatalf("unexpected media type %q", record.MediaType)
	}
}

func TestSetWatchedRoundTrip(t *testing.T) {
	svc := newTestService(t)

	// Establish a baseline: S1E3 watched, so progress starts at (1,3).
	if _, err := svc.SetWatched("u1", episodeRef(11, 1, 3), true); err != nil {
		t.Fatalf("SetWatched returned error: %v", err)
	}
	before, err := svc.ProgressFor("u1", 11)
	if err != nil {
		t.Fatalf("ProgressFor returned error: %v", err)
	}
	if before.MaxSeason != 1 || before.MaxEpisode != 3 {
		t.Fatalf("unexpected baseline progress %+v", before)
	}

	ref := episodeRef(11, 2, 4)

	if _, err := svc.SetWatched("u1", ref, true); err != nil {
		t.Fatalf("SetWatched(true) returned error: %v", err)
	}
	watched, err := svc.IsWatched("u1", ref.Key())
	if err != nil {
		t.Fatalf("IsWatched returned error: %v", err)
	}
	if !watched {
		t.Fatal("expected episode to be watched")
	}

	if _, err := svc.SetWatched("u1", ref, false); err != nil {
		t.Fatalf("SetWatched(false) returned error: %v", err)
	}
	watched, err = svc.IsWatched("u1", ref.Key())
	if err != nil {
		t.Fatalf("IsWatched returned error: %v", err)
	}
	if watched {
		t.Fatal("expected episode to be unwatched again")
	}

	// Flipping back restores the pre-mutation progress.
	after, err := svc.ProgressFor("u1", 11)
	if err != nil {
		t.Fatalf("ProgressFor returned error: %v", err)
	}
	if after != before {
		t.Fatalf("progress must return to %+v after the flip, got %+v", before, after)
	}
}

func TestProgressForHigherSeasonOutranksEpisode(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.SetWatched("u1", episodeRef(5, 2, 5), true); err != nil {
		t.Fatalf("SetWatched returned error: %v", err)
	}
	if _, err := svc.SetWatched("u1", episodeRef(5, 1, 9), true); err != nil {
		t.Fatalf("SetWatched returned error: %v", err)
	}

	progress, err := svc.ProgressFor("u1", 5)
	if err != nil {
		t.Fatalf("ProgressFor returned error: %v", err)
	}
	if progress.MaxSeason != 2 || progress.MaxEpisode != 5 {
		t.Fatalf("expected progress S2E5, got S%dE%d", progress.MaxSeason, progress.MaxEpisode)
	}
}

func TestProgressForIgnoresUnwatchedAndMovies(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.SetWatched("u1", episodeRef(5, 3, 1), false); err != nil {
		t.Fatalf("SetWatched returned error: %v", err)
	}
	if _, err := svc.SetWatched("u1", models.InteractionRef{ShowID: 5, IsMovie: true}, true); err != nil {
		t.Fatalf("SetWatched returned error: %v", err)
	}

	progress, err := svc.ProgressFor("u1", 5)
	if err != nil {
		t.Fatalf("ProgressFor returned error: %v", err)
	}
	if progress.MaxSeason != 0 || progress.MaxEpisode != 0 {
		t.Fatalf("expected zero progress, got S%dE%d", progress.MaxSeason, progress.MaxEpisode)
	}
}

func TestInteractionsPersistAcrossReload(t *testing.T) {
	dir := t.TempDir()

	svc, err := NewService(dir)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	if _, err := svc.SetWatched("u1", episodeRef(9, 1, 1), true); err != nil {
		t.Fatalf("SetWatched returned error: %v", err)
	}

	reloaded, err := NewService(dir)
	if err != nil {
		t.Fatalf("reload returned error: %v", err)
	}
	watched, err := reloaded.IsWatched("u1", "episode-9-1-1")
	if err != nil {
		t.Fatalf("IsWatched returned error: %v", err)
	}
	if !watched {
		t.Fatal("expected watched state to survive a reload")
	}
}

func TestUserScopingIsolatesRecords(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.SetWatched("u1", episodeRef(3, 1, 1), true); err != nil {
		t.Fatalf("SetWatched returned error: %v", err)
	}

	watched, err := svc.IsWatched("u2", "episode-3-1-1")
	if err != nil {
		t.Fatalf("IsWatched returned error: %v", err)
	}
	if watched {
		t.Fatal("expected u2 to have no watched state")
	}

	records, err := svc.List("u2")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty list for u2, got %d records", len(records))
	}
}
