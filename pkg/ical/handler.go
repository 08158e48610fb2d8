package ical

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/familyhub/familyhub/internal/rest"
	"github.com/familyhub/familyhub/pkg/event"
	log "github.com/sirupsen/logrus"
)

const maxCalendarSize = 5 << 20

type ImportResultDTO struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Export godoc
// @Summary Export events as an iCalendar file
// @Description Recurring events are exported once with their recurrence rule
// @Tags iCalendar
// @Produce text/calendar
// @Param from query string true "Range start (RFC3339)"
// @Param to query string true "Range end (RFC3339)"
// @Success 200 {string} string "iCalendar document"
// @Failure 400 {object} rest.ErrorResponse "Invalid range"
// @Router /api/ical/export [get]
// @Security XUserId
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	from, to, ok := event.ParseRange(w, r)
	if !ok {
		return
	}
	log.Tracef("Exporting events from %s to %s", from, to)

	calendar, err := h.service.Export(r.Context(), from, to)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="family-calendar.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, calendar); err != nil {
		log.Errorf("failed to write calendar: %v", err)
	}
}

// Import godoc
// @Summary Import events from an iCalendar file
// @Description Accepts the file as a multipart field "file" or as a text/calendar body.
// @Description Importing the same file again updates the events instead of duplicating them.
// @Tags iCalendar
// @Accept multipart/form-data
// @Accept text/calendar
// @Produce json
// @Param file formData file false "iCalendar file"
// @Success 200 {object} ImportResultDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid calendar file"
// @Router /api/ical/import [post]
// @Security XUserId
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCalendarSize)

	var body io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxCalendarSize); err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid calendar file", err.Error())
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid calendar file", "missing 'file' field")
			return
		}
		defer file.Close()
		body = file
	}

	result, err := h.service.Import(r.Context(), body)
	if err != nil {
		if errors.Is(err, ErrInvalidCalendar) {
			rest.WriteError(w, http.StatusBadRequest, "Invalid calendar file", err.Error())
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ImportResultDTO{
		Created: result.Created,
		Updated: result.Updated,
		Skipped: result.Skipped,
	}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
