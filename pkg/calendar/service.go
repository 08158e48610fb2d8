package calendar

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/familyhub/familyhub/internal/utils"
	"github.com/familyhub/familyhub/pkg/colors"
	"github.com/familyhub/familyhub/pkg/event"
	"github.com/familyhub/familyhub/pkg/family"
	"github.com/familyhub/familyhub/pkg/layout"
	"github.com/familyhub/familyhub/pkg/user"
	log "github.com/sirupsen/logrus"
)

// Service builds the day, week and month views of the current user's calendar.
// Only the calendar date of the date arguments is used; days are computed in the
// user's time zone.
type Service struct {
	occurrences OccurrencesProvider
	members     MembersProvider
	engine      layout.Engine
	clock       utils.Clock
}

func NewService(occurrences OccurrencesProvider, members MembersProvider, engine layout.Engine) *Service {
	return &Service{
		occurrences: occurrences,
		members:     members,
		engine:      engine,
		clock:       utils.SystemClock{},
	}
}

func (s *Service) Day(ctx context.Context, date time.Time) (DayView, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return DayView{}, fmt.Errorf("failed to get current user: %w", err)
	}
	dayStart := startOfDay(date, currentUser.Settings.Location())

	days, err := s.collectDays(ctx, dayStart, 1)
	if err != nil {
		return DayView{}, err
	}
	layoutDay(s.engine, &days[0])
	return DayView{Day: days[0], PixelsPerHour: s.engine.PixelsPerHour}, nil
}

func (s *Service) Week(ctx context.Context, date time.Time) (WeekView, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return WeekView{}, fmt.Errorf("failed to get current user: %w", err)
	}
	loc := currentUser.Settings.Location()
	weekStart := currentUser.Settings.WeekStart(startOfDay(date, loc))

	days, err := s.collectDays(ctx, weekStart, 7)
	if err != nil {
		return WeekView{}, err
	}

	segments := make([]layout.Event, 0)
	for _, day := range days {
		for _, item := range day.Items {
			segments = append(segments, layoutEvent(item))
		}
	}
	for i, dayLayout := range s.engine.ComputeWeekLayout(segments, weekStart) {
		for j := range days[i].Items {
			if rect, ok := dayLayout.Rects[days[i].Items[j].Id]; ok {
				days[i].Items[j].Rect = &rect
			}
		}
	}
	return WeekView{Start: weekStart, Days: days, PixelsPerHour: s.engine.PixelsPerHour}, nil
}

// Month returns whole weeks covering the month of date. Days of the neighbouring months
// filling the first and last week have InMonth set to false.
func (s *Service) Month(ctx context.Context, date time.Time) (MonthView, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return MonthView{}, fmt.Errorf("failed to get current user: %w", err)
	}
	loc := currentUser.Settings.Location()
	month := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, loc)
	gridStart := currentUser.Settings.WeekStart(month)
	nextMonth := month.AddDate(0, 1, 0)
	dayCount := daysBetween(gridStart, nextMonth)
	dayCount += (7 - dayCount%7) % 7

	days, err := s.collectDays(ctx, gridStart, dayCount)
	if err != nil {
		return MonthView{}, err
	}

	today := s.today(ctx)
	view := MonthView{Month: month, Weeks: make([][]MonthDay, 0, dayCount/7)}
	for i, day := range days {
		if i%7 == 0 {
			view.Weeks = append(view.Weeks, make([]MonthDay, 0, 7))
		}
		week := len(view.Weeks) - 1
		view.Weeks[week] = append(view.Weeks[week], MonthDay{
			Day:     day,
			InMonth: day.Date.Month() == month.Month(),
			IsToday: day.Date.Equal(today),
		})
	}
	return view, nil
}

// collectDays returns count consecutive days starting at first with the occurrences
// overlapping each of them.
func (s *Service) collectDays(ctx context.Context, first time.Time, count int) ([]Day, error) {
	last := first.AddDate(0, 0, count)
	occurrences, err := s.occurrences(ctx, first, last)
	if err != nil {
		log.Errorf("failed to list events: %v", err)
		return nil, err
	}
	members, err := s.members(ctx)
	if err != nil {
		log.Errorf("failed to list family members: %v", err)
		return nil, err
	}
	membersByUid := make(map[string]family.FamilyMember, len(members))
	for _, member := range members {
		membersByUid[member.Uid] = member
	}

	days := make([]Day, count)
	for i := range days {
		dayStart := first.AddDate(0, 0, i)
		dayEnd := first.AddDate(0, 0, i+1)
		days[i] = Day{Date: dayStart, Items: make([]Item, 0)}
		for _, occurrence := range occurrences {
			if !occurrence.Start.Before(dayEnd) || !occurrence.End.After(dayStart) {
				continue
			}
			days[i].Items = append(days[i].Items, toItem(occurrence, dayStart, dayEnd, membersByUid))
		}
		slices.SortStableFunc(days[i].Items, func(a, b Item) int {
			if c := a.Start.Compare(b.Start); c != 0 {
				return c
			}
			return a.End.Compare(b.End)
		})
	}
	return days, nil
}

func toItem(occurrence event.Occurrence, dayStart, dayEnd time.Time, members map[string]family.FamilyMember) Item {
	e := occurrence.Event
	loc := dayStart.Location()
	item := Item{
		Id:           occurrence.Id,
		EventUid:     e.UID,
		Title:        e.Title,
		Description:  e.Description,
		Location:     e.Location,
		Start:        later(occurrence.Start, dayStart).In(loc),
		End:          earlier(occurrence.End, dayEnd).In(loc),
		EventStart:   occurrence.Start.In(loc),
		EventEnd:     occurrence.End.In(loc),
		AssignedTo:   e.AssignedTo,
		AssigneeName: e.AssignedTo,
		Recurring:    occurrence.Recurring,
	}

	memberColor := ""
	if member, ok := members[e.AssignedTo]; ok {
		item.AssigneeName = member.Name
		item.AssigneeColor = member.Color
		memberColor = member.Color
	}
	item.Color = e.Color
	if item.Color == "" {
		item.Color = colors.EventColor(e.Title, memberColor)
	}
	item.TextColor = colors.TextColorFor(item.Color)
	return item
}

func layoutDay(engine layout.Engine, day *Day) {
	segments := make([]layout.Event, 0, len(day.Items))
	for _, item := range day.Items {
		segments = append(segments, layoutEvent(item))
	}
	rects := engine.ComputeDayLayout(segments)
	for i := range day.Items {
		if rect, ok := rects[day.Items[i].Id]; ok {
			day.Items[i].Rect = &rect
		}
	}
}

func layoutEvent(item Item) layout.Event {
	return layout.Event{ID: item.Id, Start: item.Start, End: item.End, AssignedTo: item.AssignedTo}
}

func startOfDay(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
}

func daysBetween(from, to time.Time) int {
	days := 0
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		days++
	}
	return days
}

func later(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earlier(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

// today returns the current date in the user's time zone.
func (s *Service) today(ctx context.Context) time.Time {
	loc := time.UTC
	if currentUser, err := user.CurrentUser(ctx); err == nil {
		loc = currentUser.Settings.Location()
	}
	return startOfDay(s.clock.Now().In(loc), loc)
}
