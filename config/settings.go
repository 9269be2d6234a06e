package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"watchdeck/models"
)

// Settings represents the application configuration persisted to disk.
type Settings struct {
	Server   ServerSettings       `json:"server"`
	Catalog  CatalogSettings      `json:"catalog"`
	Calendar CalendarSettings     `json:"calendar"`
	Spoilers models.SpoilerConfig `json:"spoilers"`
	Sync     SyncSettings         `json:"sync"`
	Cache    CacheSettings        `json:"cache"`
	Log      LogConfig            `json:"log"`
}

type ServerSettings struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// CatalogSettings configures the upstream content catalog API.
type CatalogSettings struct {
	TMDBAPIKey        string `json:"tmdbApiKey"`
	Language          string `json:"language"`
	RequestTimeoutSec int    `json:"requestTimeoutSec"`
}

// CalendarSettings controls the calendar's day bucketing and the instance
// defaults for its visibility filters. Day boundaries are computed in the
// configured display timezone so they stay stable regardless of where a
// viewer connects from.
type CalendarSettings struct {
	Timezone       string `json:"timezone"`
	HideTheatrical bool   `json:"hideTheatrical"`
	IgnoreSpecials bool   `json:"ignoreSpecials"`
}

// SyncSettings is the single tunable for the bulk-sync pacing policy. The
// delay is a flat inter-batch interval, not a backoff.
type SyncSettings struct {
	BatchSize         int `json:"batchSize"`
	InterBatchDelayMs int `json:"interBatchDelayMs"`
}

type CacheSettings struct {
	Directory string `json:"directory"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	File       string `json:"file"`
	Level      string `json:"level"`
	MaxSize    int    `json:"maxSize"`
	MaxAge     int    `json:"maxAge"`
	MaxBackups int    `json:"maxBackups"`
	Compress   bool   `json:"compress"`
}

// DefaultSettings returns sane defaults for a fresh install.
func DefaultSettings() Settings {
	return Settings{
		Server:  ServerSettings{Host: "0.0.0.0", Port: 7878},
		Catalog: CatalogSettings{TMDBAPIKey: "", Language: "en", RequestTimeoutSec: 15},
		Calendar: CalendarSettings{
			Timezone:       "America/New_York",
			HideTheatrical: false,
			IgnoreSpecials: false,
		},
		Spoilers: models.SpoilerConfig{
			Images:          true,
			Title:           true,
			Overview:        true,
			IncludeMovies:   false,
			ReplacementMode: models.ReplacementModeBlur,
		},
		Sync:  SyncSettings{BatchSize: 4, InterBatchDelayMs: 500},
		Cache: CacheSettings{Directory: "cache"},
		Log: LogConfig{
			File:       "cache/logs/backend.log",
			Level:      "info",
			MaxSize:    50,   // 50 MB per file
			MaxBackups: 3,    // keep 3 old files
			MaxAge:     7,    // 7 days
			Compress:   true, // compress old files
		},
	}
}

// Manager loads and persists settings to a JSON file.
type Manager struct {
	path string
}

func NewManager(configPath string) *Manager {
	return &Manager{path: configPath}
}

// EnsureDir ensures parent directory exists.
func (m *Manager) EnsureDir() error {
	dir := filepath.Dir(m.path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Load reads settings.json from disk or creates defaults if missing.
func (m *Manager) Load() (Settings, error) {
	if m.path == "" {
		return Settings{}, errors.New("config path not set")
	}
	if _, err := os.Stat(m.path); errors.Is(err, fs.ErrNotExist) {
		defaults := DefaultSettings()
		if err := m.Save(defaults); err != nil {
			return Settings{}, err
		}
		return defaults, nil
	}
	f, err := os.Open(m.path)
	if err != nil {
		return Settings{}, err
	}
	defer f.Close()

	settings := DefaultSettings()
	dec := json.NewDecoder(f)
	if err := dec.Decode(&settings); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}

	normalize(&settings)
	return settings, nil
}

// Save writes settings to disk atomically.
func (m *Manager) Save(settings Settings) error {
	if m.path == "" {
		return errors.New("config path not set")
	}
	if err := m.EnsureDir(); err != nil {
		return err
	}

	normalize(&settings)

	tmp := m.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create settings temp file: %w", err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(settings); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode settings: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("sync settings: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close settings temp file: %w", err)
	}

	if err := os.Rename(tmp, m.path); err != nil {
		return fmt.Errorf("replace settings file: %w", err)
	}

	return nil
}

// UserDefaults projects the instance-wide settings into the per-user
// settings shape, used when a profile has no overrides stored.
func (s Settings) UserDefaults() models.UserSettings {
	return models.UserSettings{
		Spoilers: s.Spoilers,
		Calendar: models.CalendarPrefs{
			HideTheatrical: s.Calendar.HideTheatrical,
			IgnoreSpecials: s.Calendar.IgnoreSpecials,
		},
	}
}

func normalize(s *Settings) {
	if s.Catalog.Language == "" {
		s.Catalog.Language = "en"
	}
	if s.Catalog.RequestTimeoutSec <= 0 {
		s.Catalog.RequestTimeoutSec = 15
	}
	if s.Calendar.Timezone == "" {
		s.Calendar.Timezone = "America/New_York"
	}
	if s.Sync.BatchSize <= 0 {
		s.Sync.BatchSize = 4
	}
	if s.Sync.InterBatchDelayMs <= 0 {
		s.Sync.InterBatchDelayMs = 500
	}
	if s.Spoilers.ReplacementMode == "" {
		s.Spoilers.ReplacementMode = models.ReplacementModeBlur
	}
	if s.Cache.Directory == "" {
		s.Cache.Directory = "cache"
	}
}
