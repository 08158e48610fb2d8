package overview

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/familyhub/familyhub/internal/rest"
)

type AssigneeTimeDTO struct {
	Name     string `json:"name"`
	Color    string `json:"color"`
	Duration int    `json:"duration"`
}

type EventSummaryDTO struct {
	Id           string `json:"id"`
	EventUid     string `json:"eventUid"`
	Title        string `json:"title"`
	Start        string `json:"start"`
	End          string `json:"end"`
	AssigneeName string `json:"assigneeName,omitempty"`
	Color        string `json:"color"`
	TextColor    string `json:"textColor"`
}

type DailyOverviewDTO struct {
	Date      string            `json:"date"`
	IsToday   bool              `json:"isToday"`
	Events    []EventSummaryDTO `json:"events"`
	Assignees []AssigneeTimeDTO `json:"assignees"`
	TotalTime int               `json:"totalTime"`
}

type WeeklyOverviewDTO struct {
	StartDate string             `json:"startDate"`
	EndDate   string             `json:"endDate"`
	Days      []DailyOverviewDTO `json:"days"`
	Assignees []AssigneeTimeDTO  `json:"assignees"`
	TotalTime int                `json:"totalTime"`
}

type Handler struct {
	overviewService Service
	csvRenderer     Renderer
}

func NewHandler(overviewService Service, csvRenderer Renderer) *Handler {
	return &Handler{overviewService, csvRenderer}
}

// GetWeeklyOverview godoc
// @Summary Weekly overview of the family schedule
// @Description Events per day and the scheduled time of every family member. Durations are in seconds.
// @Tags Overview
// @Produce json
// @Produce text/csv
// @Param date query string false "Any day of the week (YYYY-MM-DD), today by default"
// @Success 200 {object} WeeklyOverviewDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid date"
// @Router /api/overview/weekly [get]
// @Security XUserId
func (handler *Handler) GetWeeklyOverview(w http.ResponseWriter, r *http.Request) {
	date := time.Now()
	if dateString := r.URL.Query().Get("date"); dateString != "" {
		parsed, err := time.Parse("2006-01-02", dateString)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid date format", "'date' must be in YYYY-MM-DD format")
			return
		}
		date = parsed
	}

	overview, err := handler.overviewService.GetWeeklyOverview(r.Context(), date)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if r.Header.Get("Accept") == "text/csv" {
		csv, err := handler.csvRenderer.RenderOverview(overview)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="overview-`+overview.StartDate.Format("2006-01-02")+`.csv"`)
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(csv)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(convertToJsonResponse(overview)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func convertToJsonResponse(overview WeeklyOverview) WeeklyOverviewDTO {
	days := make([]DailyOverviewDTO, 0, len(overview.Days))
	for _, day := range overview.Days {
		events := make([]EventSummaryDTO, 0, len(day.Events))
		for _, e := range day.Events {
			events = append(events, EventSummaryDTO{
				Id:           e.Id,
				EventUid:     e.EventUid,
				Title:        e.Title,
				Start:        e.Start.Format(time.RFC3339),
				End:          e.End.Format(time.RFC3339),
				AssigneeName: e.AssigneeName,
				Color:        e.Color,
				TextColor:    e.TextColor,
			})
		}
		days = append(days, DailyOverviewDTO{
			Date:      day.Date.Format("2006-01-02"),
			IsToday:   day.IsToday,
			Events:    events,
			Assignees: assigneesToDTO(day.Assignees),
			TotalTime: int(day.TotalTime.Seconds()),
		})
	}

	return WeeklyOverviewDTO{
		StartDate: overview.StartDate.Format("2006-01-02"),
		EndDate:   overview.EndDate.Format("2006-01-02"),
		Days:      days,
		Assignees: assigneesToDTO(overview.Assignees),
		TotalTime: int(overview.TotalTime.Seconds()),
	}
}

func assigneesToDTO(times []AssigneeTime) []AssigneeTimeDTO {
	dtos := make([]AssigneeTimeDTO, 0, len(times))
	for _, t := range times {
		dtos = append(dtos, AssigneeTimeDTO{Name: t.Name, Color: t.Color, Duration: int(t.Duration.Seconds())})
	}
	return dtos
}
