package usersettings

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

	"watchdeck/models"
)

var (
	ErrStorageDirRequired = errors.New("storage directory not provided")
	ErrUserIDRequired     = errors.New("user id is required")
	ErrShowIDRequired     = errors.New("show id is required")
	ErrInvalidReplacement = errors.New("invalid replacement mode")
)

// Service stores per-user preference overrides. A user without a stored
// record sees the instance defaults; the first write seeds their record from
// those defaults so later partial updates have a complete base.
type Service struct {
	mu       sync.RWMutex
	path     string
	defaults models.UserSettings
	settings map[string]models.UserSettings
}

func NewService(storageDir string, defaults models.UserSettings) (*Service, error) {
	if strings.TrimSpace(storageDir) == "" {
		return nil, ErrStorageDirRequired
	}

	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create user settings dir: %w", err)
	}

	svc := &Service{
		path:     filepath.Join(storageDir, "user_settings.json"),
		defaults: defaults,
		settings: make(map[string]models.UserSettings),
	}

	if err := svc.load(); err != nil {
		return nil, err
	}

	return svc, nil
}

// GetWithDefaults returns the user's settings, falling back to the instance
// defaults when nothing is stored.
func (s *Service) GetWithDefaults(userID string) (models.UserSettings, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.UserSettings{}, ErrUserIDRequired
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if stored, ok := s.settings[userID]; ok {
		return stored, nil
	}
	return s.defaults, nil
}

// UpdateSpoilers replaces the user's spoiler configuration.
func (s *Service) UpdateSpoilers(userID string, cfg models.SpoilerConfig) (models.UserSettings, error) {
	switch cfg.ReplacementMode {
	case models.ReplacementModeBlur, models.ReplacementModeBanner:
	default:
		return models.UserSettings{}, ErrInvalidReplacement
	}

	return s.update(userID, func(settings *models.UserSettings) {
		settings.Spoilers = cfg
	})
}

// UpdateCalendar replaces the user's calendar preferences.
func (s *Service) UpdateCalendar(userID string, prefs models.CalendarPrefs) (models.UserSettings, error) {
	return s.update(userID, func(settings *models.UserSettings) {
		settings.Calendar = prefs
	})
}

// HideShow adds a show to the user's calendar blacklist.
func (s *Service) HideShow(userID string, showID int) (models.UserSettings, error) {
	if showID <= 0 {
		return models.UserSettings{}, ErrShowIDRequired
	}

	return s.update(userID, func(settings *models.UserSettings) {
		for _, id := range settings.Hidden.ShowIDs {
			if id == showID {
				return
			}
		}
		settings.Hidden.ShowIDs = append(settings.Hidden.ShowIDs, showID)
		sort.Ints(settings.Hidden.ShowIDs)
	})
}

// UnhideShow removes a show from the user's calendar blacklist.
func (s *Service) UnhideShow(userID string, showID int) (models.UserSettings, error) {
	if showID <= 0 {
		return models.UserSettings{}, ErrShowIDRequired
	}

	return s.update(userID, func(settings *models.UserSettings) {
		ids := settings.Hidden.ShowIDs
		for i, id := range ids {
			if id == showID {
				settings.Hidden.ShowIDs = append(ids[:i:i], ids[i+1:]...)
				return
			}
		}
	})
}

func (s *Service) update(userID string, mutate func(*models.UserSettings)) (models.UserSettings, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.UserSettings{}, ErrUserIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	settings, ok := s.settings[userID]
	if !ok {
		settings = s.defaults
	}
	mutate(&settings)
	s.settings[userID] = settings

	if err := s.saveLocked(); err != nil {
		return models.UserSettings{}, err
	}

	return settings, nil
}

func (s *Service) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.settings = make(map[string]models.UserSettings)
		return nil
	}
	if err != nil {
		return fmt.Errorf("open user settings: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read user settings: %w", err)
	}
	if len(data) == 0 {
		s.settings = make(map[string]models.UserSettings)
		return nil
	}

	var stored map[string]models.UserSettings
	if err := json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("decode user settings: %w", err)
	}

	s.settings = make(map[string]models.UserSettings, len(stored))
	for userID, settings := range stored {
		userID = strings.TrimSpace(userID)
		if userID == "" {
			continue
		}
		s.settings[userID] = settings
	}

	return nil
}

func (s *Service) saveLocked() error {
	tmp := s.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create user settings temp file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.settings); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode user settings: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("sync user settings: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close user settings temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace user settings file: %w", err)
	}

	return nil
}
