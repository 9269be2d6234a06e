package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"watchdeck/handlers"
)

// corsMiddleware handles CORS for API routes
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// handleOptions handles OPTIONS requests for CORS preflight
func handleOptions(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// Register mounts API endpoints onto the provided router.
func Register(
	r *mux.Router,
	settingsHandler *handlers.SettingsHandler,
	usersHandler *handlers.UsersHandler,
	userSettingsHandler *handlers.UserSettingsHandler,
	interactionsHandler *handlers.InteractionsHandler,
	calendarHandler *handlers.CalendarHandler,
	watchlistHandler *handlers.WatchlistHandler,
	remindersHandler *handlers.RemindersHandler,
	syncHandler *handlers.SyncHandler,
) {
	api := r.PathPrefix("/api").Subrouter()
	api.Use(corsMiddleware)

	// Instance settings
	api.HandleFunc("/settings", settingsHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/settings", settingsHandler.Update).Methods(http.MethodPut)
	api.HandleFunc("/settings", handleOptions).Methods(http.MethodOptions)

	// Profiles
	api.HandleFunc("/users", usersHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/users", usersHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/users", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/users/{userID}", usersHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID}", usersHandler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/users/{userID}", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/users/{userID}/name", usersHandler.Rename).Methods(http.MethodPut)
	api.HandleFunc("/users/{userID}/name", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/users/{userID}/color", usersHandler.SetColor).Methods(http.MethodPut)
	api.HandleFunc("/users/{userID}/color", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/users/{userID}/pin", usersHandler.SetPin).Methods(http.MethodPut)
	api.HandleFunc("/users/{userID}/pin", usersHandler.ClearPin).Methods(http.MethodDelete)
	api.HandleFunc("/users/{userID}/pin", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/users/{userID}/pin/verify", usersHandler.VerifyPin).Methods(http.MethodPost)
	api.HandleFunc("/users/{userID}/pin/verify", handleOptions).Methods(http.MethodOptions)

	// Per-user settings
	api.HandleFunc("/users/{userID}/settings", userSettingsHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID}/settings", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/users/{userID}/settings/spoilers", userSettingsHandler.UpdateSpoilers).Methods(http.MethodPut)
	api.HandleFunc("/users/{userID}/settings/spoilers", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/users/{userID}/settings/calendar", userSettingsHandler.UpdateCalendar).Methods(http.MethodPut)
	api.HandleFunc("/users/{userID}/settings/calendar", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/users/{userID}/settings/hidden/{showId}", userSettingsHandler.HideShow).Methods(http.MethodPost)
	api.HandleFunc("/users/{userID}/settings/hidden/{showId}", userSettingsHandler.UnhideShow).Methods(http.MethodDelete)
	api.HandleFunc("/users/{userID}/settings/hidden/{showId}", handleOptions).Methods(http.MethodOptions)

	// Watched-state interactions
	api.HandleFunc("/users/{userID}/interactions", interactionsHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID}/interactions", interactionsHandler.SetWatched).Methods(http.MethodPut)
	api.HandleFunc("/users/{userID}/interactions", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/users/{userID}/interactions/toggle", interactionsHandler.Toggle).Methods(http.MethodPost)
	api.HandleFunc("/users/{userID}/interactions/toggle", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/users/{userID}/interactions/{key}", interactionsHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID}/interactions/{key}", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/users/{userID}/shows/{showID}/progress", interactionsHandler.Progress).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID}/shows/{showID}/progress", handleOptions).Methods(http.MethodOptions)

	// Calendar
	api.HandleFunc("/users/{userID}/calendar/{year}/{month}", calendarHandler.Month).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID}/calendar/{year}/{month}", handleOptions).Methods(http.MethodOptions)

	// Watchlist
	api.HandleFunc("/users/{userID}/watchlist", watchlistHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID}/watchlist", watchlistHandler.Upsert).Methods(http.MethodPost)
	api.HandleFunc("/users/{userID}/watchlist", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/users/{userID}/watchlist/{mediaType}/{showId}", watchlistHandler.Remove).Methods(http.MethodDelete)
	api.HandleFunc("/users/{userID}/watchlist/{mediaType}/{showId}", handleOptions).Methods(http.MethodOptions)

	// Reminders
	api.HandleFunc("/users/{userID}/reminders", remindersHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID}/reminders", remindersHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/users/{userID}/reminders", remindersHandler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/users/{userID}/reminders", handleOptions).Methods(http.MethodOptions)

	// Bulk sync
	api.HandleFunc("/users/{userID}/sync/mark-previous", syncHandler.MarkPreviousWatched).Methods(http.MethodPost)
	api.HandleFunc("/users/{userID}/sync/mark-previous", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/sync/import/preview", syncHandler.PreviewImport).Methods(http.MethodPost)
	api.HandleFunc("/sync/import/preview", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/users/{userID}/sync/import", syncHandler.Import).Methods(http.MethodPost)
	api.HandleFunc("/users/{userID}/sync/import", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/sync/jobs/{jobId}", syncHandler.Job).Methods(http.MethodGet)
	api.HandleFunc("/sync/jobs/{jobId}", syncHandler.Cancel).Methods(http.MethodDelete)
	api.HandleFunc("/sync/jobs/{jobId}", handleOptions).Methods(http.MethodOptions)
}
