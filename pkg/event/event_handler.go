package event

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/familyhub/familyhub/internal/rest"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type EventDTO struct {
	Uid         string `json:"uid"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	AssignedTo  string `json:"assignedTo,omitempty"`
	Color       string `json:"color,omitempty"`
	Recurrence  string `json:"recurrence,omitempty"`
}

type OccurrenceDTO struct {
	Id          string `json:"id"`
	EventUid    string `json:"eventUid"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	AssignedTo  string `json:"assignedTo,omitempty"`
	Color       string `json:"color,omitempty"`
	Recurring   bool   `json:"recurring"`
}

type Handler struct {
	eventService Service
}

func NewHandler(eventService Service) *Handler {
	return &Handler{eventService: eventService}
}

// ListEvents godoc
// @Summary List event occurrences in a time range
// @Description Recurring events are expanded into their occurrences
// @Tags Event
// @Produce json
// @Param from query string true "Range start (RFC3339)"
// @Param to query string true "Range end (RFC3339)"
// @Success 200 {array} OccurrenceDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid range"
// @Router /api/event [get]
// @Security XUserId
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	from, to, ok := ParseRange(w, r)
	if !ok {
		return
	}
	log.Tracef("Listing events from %s to %s", from, to)

	occurrences, err := h.eventService.List(r.Context(), from, to)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeOccurrences(w, occurrences)
}

// GetUpcoming godoc
// @Summary List the next upcoming event occurrences
// @Tags Event
// @Produce json
// @Param limit query int false "Maximum number of occurrences (default 5)"
// @Success 200 {array} OccurrenceDTO
// @Router /api/event/upcoming [get]
// @Security XUserId
func (h *Handler) GetUpcoming(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	limit := DefaultUpcomingLimit
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil || parsed <= 0 {
			rest.WriteError(w, http.StatusBadRequest, "Invalid limit", "limit must be a positive number")
			return
		}
		limit = parsed
	}

	occurrences, err := h.eventService.GetUpcoming(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeOccurrences(w, occurrences)
}

// GetEvent godoc
// @Summary Get an event
// @Tags Event
// @Produce json
// @Param eventUid path string true "Event UID"
// @Success 200 {object} EventDTO
// @Failure 404 {string} string "Not found"
// @Router /api/event/{eventUid} [get]
// @Security XUserId
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	event, err := h.eventService.Get(r.Context(), mux.Vars(r)["eventUid"])
	if err != nil {
		handleError(w, err)
		return
	}
	if err := json.NewEncoder(w).Encode(eventToDTO(event)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// CreateEvent godoc
// @Summary Create an event
// @Tags Event
// @Accept json
// @Produce json
// @Param event body EventDTO true "Event"
// @Success 201 {object} EventDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Router /api/event [post]
// @Security XUserId
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	event, ok := decodeEvent(w, r)
	if !ok {
		return
	}
	log.Debugf("Creating event: %+v", event)

	created, err := h.eventService.Create(r.Context(), event)
	if err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(eventToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// UpdateEvent godoc
// @Summary Update an event
// @Tags Event
// @Accept json
// @Produce json
// @Param eventUid path string true "Event UID"
// @Param event body EventDTO true "Event"
// @Success 200 {object} EventDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Failure 404 {string} string "Not found"
// @Router /api/event/{eventUid} [put]
// @Security XUserId
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	event, ok := decodeEvent(w, r)
	if !ok {
		return
	}
	event.UID = mux.Vars(r)["eventUid"]

	updated, err := h.eventService.Update(r.Context(), event)
	if err != nil {
		handleError(w, err)
		return
	}
	if err := json.NewEncoder(w).Encode(eventToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deleting a recurring event removes all of its occurrences
// @Tags Event
// @Param eventUid path string true "Event UID"
// @Success 204 "No Content"
// @Failure 404 {string} string "Not found"
// @Router /api/event/{eventUid} [delete]
// @Security XUserId
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.eventService.Delete(r.Context(), mux.Vars(r)["eventUid"]); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ParseRange reads the from and to query parameters (RFC3339). It writes a 400 response
// and returns false when they are missing or invalid.
func ParseRange(w http.ResponseWriter, r *http.Request) (from, to time.Time, ok bool) {
	from, err := time.Parse(time.RFC3339, r.URL.Query().Get("from"))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid from parameter", "Expected RFC3339 format")
		return time.Time{}, time.Time{}, false
	}
	to, err = time.Parse(time.RFC3339, r.URL.Query().Get("to"))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid to parameter", "Expected RFC3339 format")
		return time.Time{}, time.Time{}, false
	}
	if to.Before(from) {
		rest.WriteError(w, http.StatusBadRequest, "Invalid range", "to must not be before from")
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func decodeEvent(w http.ResponseWriter, r *http.Request) (Event, bool) {
	var dto EventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", "")
		return Event{}, false
	}
	startTime, err := time.Parse(time.RFC3339, dto.StartTime)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid start time", "Expected RFC3339 format")
		return Event{}, false
	}
	endTime, err := time.Parse(time.RFC3339, dto.EndTime)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid end time", "Expected RFC3339 format")
		return Event{}, false
	}
	return Event{
		Title:       dto.Title,
		Description: dto.Description,
		Location:    dto.Location,
		StartTime:   startTime,
		EndTime:     endTime,
		AssignedTo:  dto.AssignedTo,
		Color:       dto.Color,
		Recurrence:  dto.Recurrence,
	}, true
}

func handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidEvent):
		rest.WriteError(w, http.StatusBadRequest, "Invalid event", err.Error())
	case errors.Is(err, ErrEventNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeOccurrences(w http.ResponseWriter, occurrences []Occurrence) {
	dtos := make([]OccurrenceDTO, 0, len(occurrences))
	for _, occurrence := range occurrences {
		dtos = append(dtos, OccurrenceDTO{
			Id:          occurrence.Id,
			EventUid:    occurrence.Event.UID,
			Title:       occurrence.Event.Title,
			Description: occurrence.Event.Description,
			Location:    occurrence.Event.Location,
			StartTime:   occurrence.Start.Format(time.RFC3339),
			EndTime:     occurrence.End.Format(time.RFC3339),
			AssignedTo:  occurrence.Event.AssignedTo,
			Color:       occurrence.Event.Color,
			Recurring:   occurrence.Recurring,
		})
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func eventToDTO(event Event) EventDTO {
	return EventDTO{
		Uid:         event.UID,
		Title:       event.Title,
		Description: event.Description,
		Location:    event.Location,
		StartTime:   event.StartTime.Format(time.RFC3339),
		EndTime:     event.EndTime.Format(time.RFC3339),
		AssignedTo:  event.AssignedTo,
		Color:       event.Color,
		Recurrence:  event.Recurrence,
	}
}
