package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"watchdeck/services/calendar"
)

type calendarService interface {
	Month(ctx context.Context, userID string, year int, month time.Month) (calendar.MonthView, error)
}

var _ calendarService = (*calendar.Service)(nil)

type CalendarHandler struct {
	Service calendarService
	Users   userDirectory
}

func NewCalendarHandler(service calendarService, users userDirectory) *CalendarHandler {
	return &CalendarHandler{Service: service, Users: users}
}

func (h *CalendarHandler) Month(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.Users)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	year, err := strconv.Atoi(vars["year"])
	if err != nil || year < 1900 || year > 2200 {
		http.Error(w, "invalid year", http.StatusBadRequest)
		return
	}
	month, err := strconv.Atoi(vars["month"])
	if err != nil || month < 1 || month > 12 {
		http.Error(w, "invalid month", http.StatusBadRequest)
		return
	}

	view, err := h.Service.Month(r.Context(), userID, year, time.Month(month))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, calendar.ErrCatalogUnavailable) {
			status = http.StatusBadGateway
		}
		http.Error(w, err.Error(), status)
		return
	}

	writeJSON(w, view)
}
