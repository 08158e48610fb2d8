package calendar

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/familyhub/familyhub/internal/rest"
	log "github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

type RectDTO struct {
	Top          float64 `json:"top"`
	Height       float64 `json:"height"`
	LeftPercent  float64 `json:"leftPercent"`
	WidthPercent float64 `json:"widthPercent"`
}

type ItemDTO struct {
	Id              string   `json:"id"`
	EventUid        string   `json:"eventUid"`
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	Location        string   `json:"location,omitempty"`
	Start           string   `json:"start"`
	End             string   `json:"end"`
	AssignedTo      string   `json:"assignedTo,omitempty"`
	AssigneeName    string   `json:"assigneeName,omitempty"`
	Color           string   `json:"color"`
	TextColor       string   `json:"textColor"`
	Recurring       bool     `json:"recurring"`
	ContinuesBefore bool     `json:"continuesBefore"`
	ContinuesAfter  bool     `json:"continuesAfter"`
	Rect            *RectDTO `json:"rect,omitempty"`
}

type DayDTO struct {
	Date  string    `json:"date"`
	Items []ItemDTO `json:"items"`
}

type DayViewDTO struct {
	DayDTO
	PixelsPerHour float64 `json:"pixelsPerHour"`
}

type WeekViewDTO struct {
	Start         string   `json:"start"`
	Days          []DayDTO `json:"days"`
	PixelsPerHour float64  `json:"pixelsPerHour"`
}

type MonthDayDTO struct {
	DayDTO
	InMonth bool `json:"inMonth"`
	IsToday bool `json:"isToday"`
}

type MonthViewDTO struct {
	Month string          `json:"month"`
	Weeks [][]MonthDayDTO `json:"weeks"`
}

type Handler struct {
	calendar *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{s}
}

// GetDay godoc
// @Summary Day view of the calendar
// @Description Events of the day with their position on the time grid
// @Tags Calendar
// @Produce json
// @Param date query string false "Day (YYYY-MM-DD), today by default"
// @Success 200 {object} DayViewDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid date"
// @Router /api/calendar/day [get]
// @Security XUserId
func (h *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	date, ok := h.parseDate(w, r)
	if !ok {
		return
	}
	view, err := h.calendar.Day(r.Context(), date)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, DayViewDTO{DayDTO: dayToDTO(view.Day), PixelsPerHour: view.PixelsPerHour})
}

// GetWeek godoc
// @Summary Week view of the calendar
// @Description Seven days starting at the user's first day of the week
// @Tags Calendar
// @Produce json
// @Param date query string false "Any day of the week (YYYY-MM-DD), today by default"
// @Success 200 {object} WeekViewDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid date"
// @Router /api/calendar/week [get]
// @Security XUserId
func (h *Handler) GetWeek(w http.ResponseWriter, r *http.Request) {
	date, ok := h.parseDate(w, r)
	if !ok {
		return
	}
	view, err := h.calendar.Week(r.Context(), date)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	dto := WeekViewDTO{
		Start:         view.Start.Format(dateLayout),
		Days:          make([]DayDTO, 0, len(view.Days)),
		PixelsPerHour: view.PixelsPerHour,
	}
	for _, day := range view.Days {
		dto.Days = append(dto.Days, dayToDTO(day))
	}
	writeJSON(w, dto)
}

// GetMonth godoc
// @Summary Month view of the calendar
// @Tags Calendar
// @Produce json
// @Param date query string false "Any day of the month (YYYY-MM-DD), today by default"
// @Success 200 {object} MonthViewDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid date"
// @Router /api/calendar/month [get]
// @Security XUserId
func (h *Handler) GetMonth(w http.ResponseWriter, r *http.Request) {
	date, ok := h.parseDate(w, r)
	if !ok {
		return
	}
	view, err := h.calendar.Month(r.Context(), date)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	dto := MonthViewDTO{Month: view.Month.Format("2006-01"), Weeks: make([][]MonthDayDTO, 0, len(view.Weeks))}
	for _, week := range view.Weeks {
		weekDTO := make([]MonthDayDTO, 0, len(week))
		for _, day := range week {
			weekDTO = append(weekDTO, MonthDayDTO{DayDTO: dayToDTO(day.Day), InMonth: day.InMonth, IsToday: day.IsToday})
		}
		dto.Weeks = append(dto.Weeks, weekDTO)
	}
	writeJSON(w, dto)
}

// parseDate reads the date query parameter. Without it the current date in the
// user's time zone is used.
func (h *Handler) parseDate(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	dateString := r.URL.Query().Get("date")
	if dateString == "" {
		return h.calendar.today(r.Context()), true
	}
	date, err := time.Parse(dateLayout, dateString)
	if err != nil {
		log.Debugf("invalid date %q: %v", dateString, err)
		rest.WriteError(w, http.StatusBadRequest, "Invalid date format", "'date' must be in YYYY-MM-DD format")
		return time.Time{}, false
	}
	return date, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func dayToDTO(day Day) DayDTO {
	dto := DayDTO{Date: day.Date.Format(dateLayout), Items: make([]ItemDTO, 0, len(day.Items))}
	for _, item := range day.Items {
		itemDTO := ItemDTO{
			Id:              item.Id,
			EventUid:        item.EventUid,
			Title:           item.Title,
			Description:     item.Description,
			Location:        item.Location,
			Start:           item.Start.Format(time.RFC3339),
			End:             item.End.Format(time.RFC3339),
			AssignedTo:      item.AssignedTo,
			AssigneeName:    item.AssigneeName,
			Color:           item.Color,
			TextColor:       item.TextColor,
			Recurring:       item.Recurring,
			ContinuesBefore: item.ContinuesBefore(),
			ContinuesAfter:  item.ContinuesAfter(),
		}
		if item.Rect != nil {
			itemDTO.Rect = &RectDTO{
				Top:          item.Rect.Top,
				Height:       item.Rect.Height,
				LeftPercent:  item.Rect.LeftPercent,
				WidthPercent: item.Rect.WidthPercent,
			}
		}
		dto.Items = append(dto.Items, itemDTO)
	}
	return dto
}
