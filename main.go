package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"watchdeck/api"
	"watchdeck/config"
	"watchdeck/handlers"
	"watchdeck/services/bulksync"
	"watchdeck/services/calendar"
	"watchdeck/services/catalog"
	"watchdeck/services/dispatch"
	"watchdeck/services/interactions"
	"watchdeck/services/reminders"
	"watchdeck/services/users"
	"watchdeck/services/usersettings"
	"watchdeck/services/watchlist"

	"github.com/gorilla/mux"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	portOverride := flag.Int("port", 0, "override server port from config")
	flag.Parse()

	fmt.Println("🚀 watchdeck Backend Starting...")

	configPath := os.Getenv("WATCHDECK_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("cache", "settings.json")
	}

	cfgManager := config.NewManager(configPath)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	// Set up file logging with rotation
	if settings.Log.File != "" {
		logDir := filepath.Dir(settings.Log.File)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			log.Printf("Warning: could not create log directory %s: %v", logDir, err)
		} else {
			fileWriter := &lumberjack.Logger{
				Filename:   settings.Log.File,
				MaxSize:    settings.Log.MaxSize,
				MaxBackups: settings.Log.MaxBackups,
				MaxAge:     settings.Log.MaxAge,
				Compress:   settings.Log.Compress,
			}
			multiWriter := io.MultiWriter(os.Stdout, fileWriter)
			log.SetOutput(multiWriter)
			log.SetFlags(log.LstdFlags | log.Lshortfile)
			log.Printf("Logging to file: %s", settings.Log.File)
		}
	}

	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	storageDir := settings.Cache.Directory

	usersSvc, err := users.NewService(storageDir)
	if err != nil {
		log.Fatalf("failed to init users service: %v", err)
	}

	interactionsSvc, err := interactions.NewService(storageDir)
	if err != nil {
		log.Fatalf("failed to init interactions service: %v", err)
	}

	userSettingsSvc, err := usersettings.NewService(storageDir, settings.UserDefaults())
	if err != nil {
		log.Fatalf("failed to init user settings service: %v", err)
	}

	watchlistSvc, err := watchlist.NewService(storageDir)
	if err != nil {
		log.Fatalf("failed to init watchlist service: %v", err)
	}

	remindersSvc, err := reminders.NewService(storageDir)
	if err != nil {
		log.Fatalf("failed to init reminders service: %v", err)
	}

	httpc := &http.Client{Timeout: time.Duration(settings.Catalog.RequestTimeoutSec) * time.Second}
	catalogClient := catalog.NewClient(settings.Catalog.TMDBAPIKey, settings.Catalog.Language, httpc)
	if settings.Catalog.TMDBAPIKey == "" {
		log.Println("⚠️ No TMDB API key configured; calendar and sync will be unavailable until one is set")
	}

	location, err := time.LoadLocation(settings.Calendar.Timezone)
	if err != nil {
		log.Printf("Warning: invalid calendar timezone %q, falling back to UTC", settings.Calendar.Timezone)
		location = time.UTC
	}

	calendarSvc := calendar.NewService(catalogClient, userSettingsSvc, interactionsSvc, location)

	syncEngine := bulksync.NewEngine(
		catalogClient,
		interactionsSvc,
		settings.Sync.BatchSize,
		time.Duration(settings.Sync.InterBatchDelayMs)*time.Millisecond,
	)
	syncSvc := bulksync.NewService(syncEngine, catalogClient, watchlistSvc)

	dispatcher := dispatch.NewService(usersSvc, remindersSvc, catalogClient, nil, time.Hour)
	dispatchCtx, cancelDispatch := context.WithCancel(context.Background())
	if err := dispatcher.Start(dispatchCtx); err != nil {
		log.Printf("Warning: reminder dispatcher failed to start: %v", err)
	}

	router := mux.NewRouter()
	api.Register(
		router,
		handlers.NewSettingsHandler(cfgManager),
		handlers.NewUsersHandler(usersSvc),
		handlers.NewUserSettingsHandler(userSettingsSvc, usersSvc),
		handlers.NewInteractionsHandler(interactionsSvc, usersSvc),
		handlers.NewCalendarHandler(calendarSvc, usersSvc),
		handlers.NewWatchlistHandler(watchlistSvc, usersSvc),
		handlers.NewRemindersHandler(remindersSvc, usersSvc),
		handlers.NewSyncHandler(syncSvc, usersSvc),
	)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("🛑 Shutdown signal received, cleaning up...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	cancelDispatch()
	if err := dispatcher.Stop(shutdownCtx); err != nil {
		log.Printf("Warning: reminder dispatcher shutdown: %v", err)
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Warning: HTTP server shutdown: %v", err)
	}

	log.Println("✅ Shutdown complete")
}
