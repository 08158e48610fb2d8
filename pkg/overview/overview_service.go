package overview

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/familyhub/familyhub/internal/utils"
	"github.com/familyhub/familyhub/pkg/calendar"
	"github.com/familyhub/familyhub/pkg/colors"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	// GetWeeklyOverview summarizes the week containing date.
	GetWeeklyOverview(ctx context.Context, date time.Time) (WeeklyOverview, error)
}

// WeekProvider returns the calendar week containing date.
type WeekProvider func(ctx context.Context, date time.Time) (calendar.WeekView, error)

type ServiceImpl struct {
	week  WeekProvider
	clock utils.Clock
}

func NewService(week WeekProvider) *ServiceImpl {
	return &ServiceImpl{week: week, clock: &utils.SystemClock{}}
}

func (s *ServiceImpl) GetWeeklyOverview(ctx context.Context, date time.Time) (WeeklyOverview, error) {
	week, err := s.week(ctx, date)
	if err != nil {
		return WeeklyOverview{}, err
	}

	now := s.clock.Now()
	overview := WeeklyOverview{
		StartDate: week.Start,
		EndDate:   week.Start.AddDate(0, 0, len(week.Days)),
		Days:      make([]DailyOverview, 0, len(week.Days)),
	}
	weekly := make(map[string]*AssigneeTime)

	for _, day := range week.Days {
		daily := DailyOverview{
			Date:    day.Date,
			IsToday: !now.Before(day.Date) && now.Before(day.Date.AddDate(0, 0, 1)),
			Events:  make([]EventSummary, 0, len(day.Items)),
		}
		byAssignee := make(map[string]*AssigneeTime)
		for _, item := range day.Items {
			daily.Events = append(daily.Events, EventSummary{
				Id:           item.Id,
				EventUid:     item.EventUid,
				Title:        item.Title,
				Start:        item.Start,
				End:          item.End,
				AssigneeName: item.AssigneeName,
				Color:        item.Color,
				TextColor:    item.TextColor,
			})

			duration := item.End.Sub(item.Start)
			name, color := assignee(item)
			addTime(byAssignee, name, color, duration)
			addTime(weekly, name, color, duration)
			daily.TotalTime += duration
		}
		daily.Assignees = sortedTimes(byAssignee)
		overview.TotalTime += daily.TotalTime
		overview.Days = append(overview.Days, daily)
	}
	overview.Assignees = sortedTimes(weekly)

	log.Tracef("Weekly overview from %s: %d assignees, total %s", overview.StartDate, len(overview.Assignees), overview.TotalTime)
	return overview, nil
}

func assignee(item calendar.Item) (name string, color string) {
	if item.AssigneeName == "" {
		return Unassigned, colors.Gray
	}
	if item.AssigneeColor == "" {
		return item.AssigneeName, colors.Gray
	}
	return item.AssigneeName, item.AssigneeColor
}

func addTime(times map[string]*AssigneeTime, name string, color string, duration time.Duration) {
	if t, ok := times[name]; ok {
		t.Duration += duration
		return
	}
	times[name] = &AssigneeTime{Name: name, Color: color, Duration: duration}
}

func sortedTimes(times map[string]*AssigneeTime) []AssigneeTime {
	result := make([]AssigneeTime, 0, len(times))
	for _, t := range times {
		result = append(result, *t)
	}
	slices.SortFunc(result, func(a, b AssigneeTime) int {
		if (a.Name == Unassigned) != (b.Name == Unassigned) {
			if a.Name == Unassigned {
				return 1
			}
			return -1
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return result
}
