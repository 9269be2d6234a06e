package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

// userDirectory is the minimal view of the profile service the other
// handlers need for route validation.
type userDirectory interface {
	Exists(id string) bool
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// requireUser extracts the profile from the route and rejects requests for
// unknown profiles.
func requireUser(w http.ResponseWriter, r *http.Request, users userDirectory) (string, bool) {
	userID := strings.TrimSpace(mux.Vars(r)["userID"])
	if userID == "" {
		http.Error(w, "user id is required", http.StatusBadRequest)
		return "", false
	}

	if users != nil && !users.Exists(userID) {
		http.Error(w, "user not found", http.StatusNotFound)
		return "", false
	}

	return userID, true
}
