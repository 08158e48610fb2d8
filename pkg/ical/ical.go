package ical

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/familyhub/familyhub/internal/utils"
	"github.com/familyhub/familyhub/pkg/event"
	"github.com/familyhub/familyhub/pkg/user"
	log "github.com/sirupsen/logrus"
)

const (
	productId      = "-//Family Hub//Family Calendar//EN"
	calendarName   = "Family Hub"
	externalPrefix = "ical:"

	localTimestampFormat = "20060102T150405"

	assigneeProperty     = ics.ComponentProperty("X-FAMILYHUB-ASSIGNED-TO")
	colorProperty        = ics.ComponentProperty("COLOR")
	recurrenceIdProperty = ics.ComponentProperty("RECURRENCE-ID")
)

var ErrInvalidCalendar = errors.New("invalid calendar file")

var errRecurrenceOverride = errors.New("overrides of single occurrences are not supported")

type Service struct {
	events event.Service
	clock  utils.Clock
}

func NewService(events event.Service) *Service {
	return &Service{events: events, clock: utils.SystemClock{}}
}

// Export writes the events with occurrences in [from, to) as an iCalendar document.
// Recurring events are written once with their RRULE, anchored in the user's time zone
// so that clients expand them across DST changes the same way.
func (s *Service) Export(ctx context.Context, from, to time.Time) (string, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get current user: %w", err)
	}

	occurrences, err := s.events.List(ctx, from, to)
	if err != nil {
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productId)
	cal.SetXWRCalName(calendarName)

	loc := currentUser.Settings.Location()
	now := s.clock.Now()
	exported := make(map[string]bool, len(occurrences))
	for _, occurrence := range occurrences {
		if exported[occurrence.Event.UID] {
			continue
		}
		exported[occurrence.Event.UID] = true
		addEvent(cal, occurrence.Event, loc, now)
	}
	log.Debugf("Exported %d events", len(exported))

	return cal.Serialize(), nil
}

func addEvent(cal *ics.Calendar, e event.Event, loc *time.Location, now time.Time) {
	uid := e.UID
	if strings.HasPrefix(e.ExternalId, externalPrefix) {
		uid = strings.TrimPrefix(e.ExternalId, externalPrefix)
	}

	ve := cal.AddEvent(uid)
	ve.SetDtStampTime(now)
	if !e.CreatedAt.IsZero() {
		ve.SetCreatedTime(e.CreatedAt)
	}
	if !e.UpdatedAt.IsZero() {
		ve.SetModifiedAt(e.UpdatedAt)
	}
	rule := e.RecurrenceRule()
	if rule != "" && loc != time.UTC {
		ve.SetProperty(ics.ComponentPropertyDtStart, e.StartTime.In(loc).Format(localTimestampFormat), ics.WithTZID(loc.String()))
		ve.SetProperty(ics.ComponentPropertyDtEnd, e.EndTime.In(loc).Format(localTimestampFormat), ics.WithTZID(loc.String()))
	} else {
		ve.SetStartAt(e.StartTime)
		ve.SetEndAt(e.EndTime)
	}
	ve.SetSummary(e.Title)
	if e.Description != "" {
		ve.SetDescription(e.Description)
	}
	if e.Location != "" {
		ve.SetLocation(e.Location)
	}
	if rule != "" {
		ve.SetProperty(ics.ComponentPropertyRrule, rule)
	}
	if e.AssignedTo != "" {
		ve.SetProperty(assigneeProperty, e.AssignedTo)
	}
	if e.Color != "" {
		ve.SetProperty(colorProperty, e.Color)
	}
}

// Import stores the events of an iCalendar document. Events already imported from the
// same UID are updated. Events that cannot be represented are skipped.
func (s *Service) Import(ctx context.Context, r io.Reader) (event.ImportResult, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return event.ImportResult{}, fmt.Errorf("failed to get current user: %w", err)
	}

	cal, err := ics.ParseCalendar(r)
	if err != nil {
		log.Debugf("failed to parse calendar: %v", err)
		return event.ImportResult{}, fmt.Errorf("%w: %v", ErrInvalidCalendar, err)
	}

	loc := currentUser.Settings.Location()
	vevents := cal.Events()
	events := make([]event.Event, 0, len(vevents))
	skipped := 0
	for _, ve := range vevents {
		e, err := toEvent(ve, loc)
		if err != nil {
			log.Debugf("skipping calendar event: %v", err)
			skipped++
			continue
		}
		events = append(events, e)
	}

	result, err := s.events.Import(ctx, events)
	if err != nil {
		return event.ImportResult{}, err
	}
	result.Skipped += skipped
	log.Infof("Imported calendar: %d created, %d updated, %d skipped", result.Created, result.Updated, result.Skipped)
	return result, nil
}

func toEvent(ve *ics.VEvent, loc *time.Location) (event.Event, error) {
	uid := propertyValue(ve, ics.ComponentPropertyUniqueId)
	if uid == "" {
		return event.Event{}, errors.New("missing UID")
	}
	if ve.GetProperty(recurrenceIdProperty) != nil {
		return event.Event{}, fmt.Errorf("event %s: %w", uid, errRecurrenceOverride)
	}

	start, end, err := eventTimes(ve, loc)
	if err != nil {
		return event.Event{}, fmt.Errorf("event %s: %w", uid, err)
	}

	return event.Event{
		Title:       propertyValue(ve, ics.ComponentPropertySummary),
		Description: propertyValue(ve, ics.ComponentPropertyDescription),
		Location:    propertyValue(ve, ics.ComponentPropertyLocation),
		StartTime:   start,
		EndTime:     end,
		AssignedTo:  propertyValue(ve, assigneeProperty),
		Color:       propertyValue(ve, colorProperty),
		Recurrence:  propertyValue(ve, ics.ComponentPropertyRrule),
		ExternalId:  externalPrefix + uid,
	}, nil
}

// eventTimes reads DTSTART and DTEND. All-day events span whole days in loc.
// A missing DTEND means one day for all-day events and one hour otherwise.
func eventTimes(ve *ics.VEvent, loc *time.Location) (time.Time, time.Time, error) {
	dtStart := ve.GetProperty(ics.ComponentPropertyDtStart)
	if dtStart == nil {
		return time.Time{}, time.Time{}, errors.New("missing DTSTART")
	}

	if isAllDay(dtStart) {
		start, err := time.ParseInLocation("20060102", strings.TrimSpace(dtStart.Value), loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid DTSTART: %w", err)
		}
		end := start.AddDate(0, 0, 1)
		if dtEnd := ve.GetProperty(ics.ComponentPropertyDtEnd); dtEnd != nil {
			if parsed, err := time.ParseInLocation("20060102", strings.TrimSpace(dtEnd.Value), loc); err == nil && parsed.After(start) {
				end = parsed
			}
		}
		return start, end, nil
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid DTSTART: %w", err)
	}
	end, err := ve.GetEndAt()
	if err != nil || !end.After(start) {
		end = start.Add(time.Hour)
	}
	return start, end, nil
}

func isAllDay(dtStart *ics.IANAProperty) bool {
	if values, ok := dtStart.ICalParameters["VALUE"]; ok && len(values) > 0 && strings.EqualFold(values[0], "DATE") {
		return true
	}
	return !strings.Contains(dtStart.Value, "T")
}

func propertyValue(ve *ics.VEvent, property ics.ComponentProperty) string {
	if p := ve.GetProperty(property); p != nil {
		return strings.TrimSpace(p.Value)
	}
	return ""
}
