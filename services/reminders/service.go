package reminders

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"watchdeck/models"
)

var (
	ErrStorageDirRequired = errors.New("storage directory not provided")
	ErrUserIDRequired     = errors.New("user id is required")
	ErrShowIDRequired     = errors.New("show id is required")
	ErrInvalidScope       = errors.New("invalid reminder scope")
	ErrEpisodeRequired    = errors.New("episode number is required")
	ErrReminderNotFound   = errors.New("reminder not found")
)

// Request is an incoming reminder creation ask, before canonicalization.
type Request struct {
	ShowID        int                  `json:"showId"`
	MediaType     string               `json:"mediaType"`
	Scope         models.ReminderScope `json:"scope"`
	EpisodeSeason int                  `json:"episodeSeason"`
	EpisodeNumber int                  `json:"episodeNumber"`
	OffsetMinutes int                  `json:"offsetMinutes"`
}

// Service holds per-user reminder lists. Resolution canonicalizes incoming
// requests and rejects duplicates rather than merging them; callers inspect
// the alreadyExists flag instead of an error.
type Service struct {
	mu        sync.RWMutex
	path      string
	reminders map[string][]models.Reminder // userID -> reminders
}

func NewService(storageDir string) (*Service, error) {
	if strings.TrimSpace(storageDir) == "" {
		return nil, ErrStorageDirRequired
	}

	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create reminders dir: %w", err)
	}

	svc := &Service{
		path:      filepath.Join(storageDir, "reminders.json"),
		reminders: make(map[string][]models.Reminder),
	}

	if err := svc.load(); err != nil {
		return nil, err
	}

	return svc, nil
}

// Canonicalize normalizes a request into the reminder it would create.
// Season 0 is never a specific-episode target: specials do not have a stable
// "point in progress", so such requests collapse to a whole-series reminder.
func Canonicalize(req Request) (models.Reminder, error) {
	if req.ShowID <= 0 {
		return models.Reminder{}, ErrShowIDRequired
	}

	scope := req.Scope
	switch scope {
	case models.ReminderScopeAll, models.ReminderScopeEpisode,
		models.ReminderScopeMovieTheatrical, models.ReminderScopeMovieDigital:
	default:
		return models.Reminder{}, ErrInvalidScope
	}

	reminder := models.Reminder{
		ShowID:        req.ShowID,
		MediaType:     req.MediaType,
		Scope:         scope,
		OffsetMinutes: req.OffsetMinutes,
	}
	if reminder.MediaType == "" {
		if scope.IsMovieScope() {
			reminder.MediaType = "movie"
		} else {
			reminder.MediaType = "tv"
		}
	}

	if scope == models.ReminderScopeEpisode {
		if req.EpisodeSeason == 0 {
			reminder.Scope = models.ReminderScopeAll
		} else {
			if req.EpisodeNumber < 1 {
				return models.Reminder{}, ErrEpisodeRequired
			}
			reminder.EpisodeSeason = req.EpisodeSeason
			reminder.EpisodeNumber = req.EpisodeNumber
		}
	}

	return reminder, nil
}

// Resolve canonicalizes the request and appends it unless an equivalent
// reminder already exists. Duplicates are reported, never merged.
func (s *Service) Resolve(userID string, req Request) (models.Reminder, bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.Reminder{}, false, ErrUserIDRequired
	}

	reminder, err := Canonicalize(req)
	if err != nil {
		return models.Reminder{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := reminder.DuplicateKey()
	for _, existing := range s.reminders[userID] {
		if existing.DuplicateKey() == key {
			return existing, true, nil
		}
	}

	reminder.CreatedAt = time.Now().UTC()
	s.reminders[userID] = append(s.reminders[userID], reminder)

	if err := s.saveLocked(); err != nil {
		return models.Reminder{}, false, err
	}

	return reminder, false, nil
}

// List returns the user's reminders in creation order.
func (s *Service) List(userID string) ([]models.Reminder, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserIDRequired
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.reminders[userID]
	out := make([]models.Reminder, len(stored))
	copy(out, stored)
	return out, nil
}

// Delete removes the reminder matching the duplicate class of the request.
func (s *Service) Delete(userID string, req Request) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrUserIDRequired
	}

	reminder, err := Canonicalize(req)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := reminder.DuplicateKey()
	stored := s.reminders[userID]
	for i, existing := range stored {
		if existing.DuplicateKey() == key {
			s.reminders[userID] = append(stored[:i:i], stored[i+1:]...)
			return s.saveLocked()
		}
	}

	return ErrReminderNotFound
}

func (s *Service) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.reminders = make(map[string][]models.Reminder)
		return nil
	}
	if err != nil {
		return fmt.Errorf("open reminders: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read reminders: %w", err)
	}
	if len(data) == 0 {
		s.reminders = make(map[string][]models.Reminder)
		return nil
	}

	var stored map[string][]models.Reminder
	if err := json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("decode reminders: %w", err)
	}

	s.reminders = make(map[string][]models.Reminder, len(stored))
	for userID, list := range stored {
		userID = strings.TrimSpace(userID)
		if userID == "" {
			continue
		}
		s.reminders[userID] = list
	}

	return nil
}

func (s *Service) saveLocked() error {
	tmp := s.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create reminders temp file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.reminders); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode reminders: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("sync reminders: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close reminders temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace reminders file: %w", err)
	}

	return nil
}
