package google

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/familyhub/familyhub/internal/rest"
	"github.com/familyhub/familyhub/pkg/event"
)

type CalendarItemDto struct {
	Id      string `json:"id"`
	Summary string `json:"summary"`
	Primary bool   `json:"primary"`
}

type ImportResultDto struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

type Handler struct {
	service Service
}

func NewHandler(s Service) *Handler {
	return &Handler{s}
}

// ListCalendars godoc
// @Summary List the Google calendars of the user
// @Tags Google
// @Produce json
// @Success 200 {array} CalendarItemDto
// @Failure 403 "Google authorization required"
// @Router /api/integrations/google/calendars [get]
// @Security XUserId
func (h *Handler) ListCalendars(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	calendars, err := h.service.ListCalendars(r.Context())
	if err != nil {
		if errors.Is(err, ErrUnathenticated) {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	calendarItems := make([]CalendarItemDto, 0, len(calendars))
	for _, c := range calendars {
		calendarItems = append(calendarItems, toCalendarItemDto(c))
	}

	if err := json.NewEncoder(w).Encode(calendarItems); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// ImportEvents godoc
// @Summary Import events from a Google calendar
// @Description Importing the same range again updates the events instead of duplicating them
// @Tags Google
// @Produce json
// @Param calendarId query string true "Google calendar id"
// @Param from query string true "Range start (RFC3339)"
// @Param to query string true "Range end (RFC3339)"
// @Success 200 {object} ImportResultDto
// @Failure 400 {object} rest.ErrorResponse "Invalid parameters"
// @Failure 403 "Google authorization required"
// @Router /api/integrations/google/import [post]
// @Security XUserId
func (h *Handler) ImportEvents(w http.ResponseWriter, r *http.Request) {
	calendarId := r.URL.Query().Get("calendarId")
	if calendarId == "" {
		rest.WriteError(w, http.StatusBadRequest, "Missing calendarId parameter", "")
		return
	}
	from, to, ok := event.ParseRange(w, r)
	if !ok {
		return
	}

	result, err := h.service.ImportEvents(r.Context(), calendarId, from, to)
	if err != nil {
		if errors.Is(err, ErrUnathenticated) {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ImportResultDto{
		Created: result.Created,
		Updated: result.Updated,
		Skipped: result.Skipped,
	}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toCalendarItemDto(ci CalendarItem) CalendarItemDto {
	return CalendarItemDto{
		Id:      ci.ID,
		Summary: ci.Summary,
		Primary: ci.Primary,
	}
}
