package interactions

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"watchdeck/models"
)

var (
	ErrStorageDirRequired = errors.New("storage directory not provided")
	ErrUserIDRequired     = errors.New("user id is required")
	ErrShowIDRequired     = errors.New("show id is required")
)

// Service is the source of truth for watched/unwatched state. Records are
// keyed by the canonical interaction key and owned exclusively by this
// service; the calendar and the spoiler policy only read them. All writes go
// through one mutex, so concurrent callers are serialized rather than racing.
type Service struct {
	mu           sync.RWMutex
	path         string
	interactions map[string]map[string]models.Interaction // userID -> key -> interaction
}

// NewService constructs an interaction store backed by a JSON file on disk.
func NewService(storageDir string) (*Service, error) {
	if strings.TrimSpace(storageDir) == "" {
		return nil, ErrStorageDirRequired
	}

	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create interactions dir: %w", err)
	}

	svc := &Service{
		path:         filepath.Join(storageDir, "interactions.json"),
		interactions: make(map[string]map[string]models.Interaction),
	}

	if err := svc.load(); err != nil {
		return nil, err
	}

	return svc, nil
}

// Toggle flips the watched flag for the referenced release. When no record
// exists yet it is created already watched. Callers that need "set to true"
// regardless of current state should use SetWatched instead.
func (s *Service) Toggle(userID string, ref models.InteractionRef) (models.Interaction, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.Interaction{}, ErrUserIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	perUser := s.ensureUserLocked(userID)

	key := ref.Key()
	record, exists := perUser[key]
	if !exists {
		record = newInteraction(ref)
		record.IsWatched = true
	} else {
		record.IsWatched = !record.IsWatched
	}
	record.UpdatedAt = time.Now().UTC()
	perUser[key] = record

	if err := s.saveLocked(); err != nil {
		return models.Interaction{}, err
	}

	return record, nil
}

// SetWatched creates or updates the record for the referenced release,
// setting the watched flag exactly.
func (s *Service) SetWatched(userID string, ref models.InteractionRef, watched bool) (models.Interaction, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.Interaction{}, ErrUserIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	perUser := s.ensureUserLocked(userID)

	key := ref.Key()
	record, exists := perUser[key]
	if !exists {
		record = newInteraction(ref)
	}
	record.IsWatched = watched
	record.UpdatedAt = time.Now().UTC()
	perUser[key] = record

	if err := s.saveLocked(); err != nil {
		return models.Interaction{}, err
	}

	return record, nil
}

// Get returns the interaction stored under the given key, or nil when the
// release has never been interacted with.
func (s *Service) Get(userID, key string) (*models.Interaction, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserIDRequired
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	perUser, ok := s.interactions[userID]
	if !ok {
		return nil, nil
	}

	record, ok := perUser[key]
	if !ok {
		return nil, nil
	}

	return &record, nil
}

// IsWatched reports whether the key is currently marked watched.
func (s *Service) IsWatched(userID, key string) (bool, error) {
	record, err := s.Get(userID, key)
	if err != nil {
		return false, err
	}
	return record != nil && record.IsWatched, nil
}

// List returns all interactions for the user sorted by most recent update
// first.
func (s *Service) List(userID string) ([]models.Interaction, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserIDRequired
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]models.Interaction, 0)
	if perUser, ok := s.interactions[userID]; ok {
		records = make([]models.Interaction, 0, len(perUser))
		for _, record := range perUser {
			records = append(records, record)
		}
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].UpdatedAt.Equal(records[j].UpdatedAt) {
			return records[i].Key < records[j].Key
		}
		return records[i].UpdatedAt.After(records[j].UpdatedAt)
	})

	return records, nil
}

// ProgressFor scans the user's watched episode interactions for the show and
// returns the greatest (season, episode) pair. A higher season always
// outranks any episode number in a lower season. Returns the zero progress
// when nothing is watched.
func (s *Service) ProgressFor(userID string, showID int) (models.SeriesProgress, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.SeriesProgress{}, ErrUserIDRequired
	}
	if showID <= 0 {
		return models.SeriesProgress{}, ErrShowIDRequired
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var progress models.SeriesProgress
	perUser, ok := s.interactions[userID]
	if !ok {
		return progress, nil
	}

	for _, record := range perUser {
		if record.ShowID != showID || !record.IsWatched || record.MediaType != models.MediaTypeEpisode {
			continue
		}
		if record.SeasonNumber > progress.MaxSeason ||
			(record.SeasonNumber == progress.MaxSeason && record.EpisodeNumber > progress.MaxEpisode) {
			progress.MaxSeason = record.SeasonNumber
			progress.MaxEpisode = record.EpisodeNumber
		}
	}

	return progress, nil
}

func newInteraction(ref models.InteractionRef) models.Interaction {
	record := models.Interaction{
		Key:       ref.Key(),
		ShowID:    ref.ShowID,
		MediaType: ref.MediaType(),
	}
	if !ref.IsMovie {
		record.SeasonNumber = ref.SeasonNumber
		record.EpisodeNumber = ref.EpisodeNumber
	}
	return record
}

func (s *Service) ensureUserLocked(userID string) map[string]models.Interaction {
	perUser, ok := s.interactions[userID]
	if !ok {
		perUser = make(map[string]models.Interaction)
		s.interactions[userID] = perUser
	}
	return perUser
}

func (s *Service) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.interactions = make(map[string]map[string]models.Interaction)
		return nil
	}
	if err != nil {
		return fmt.Errorf("open interactions: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read interactions: %w", err)
	}
	if len(data) == 0 {
		s.interactions = make(map[string]map[string]models.Interaction)
		return nil
	}

	var stored map[string]map[string]models.Interaction
	if err := json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("decode interactions: %w", err)
	}

	s.interactions = make(map[string]map[string]models.Interaction, len(stored))
	for userID, perUser := range stored {
		userID = strings.TrimSpace(userID)
		if userID == "" {
			continue
		}
		records := make(map[string]models.Interaction, len(perUser))
		for key, record := range perUser {
			if record.Key == "" {
				record.Key = key
			}
			records[key] = record
		}
		s.interactions[userID] = records
	}

	return nil
}

func (s *Service) saveLocked() error {
	tmp := s.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create interactions temp file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.interactions); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode interactions: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("sync interactions: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close interactions temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace interactions file: %w", err)
	}

	return nil
}
