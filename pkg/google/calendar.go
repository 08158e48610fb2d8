package google

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/familyhub/familyhub/pkg/event"
	log "github.com/sirupsen/logrus"
	gcal "google.golang.org/api/calendar/v3"
)

var ErrUnathenticated = errors.New("user is unauthenticated, authentication is required")

const externalPrefix = "google:"

// Calendar reads the events of one Google calendar.
type Calendar struct {
	service    *gcal.Service
	calendarId string
}

func newGoogleCalendar(service *gcal.Service, calendarId string) *Calendar {
	return &Calendar{
		service:    service,
		calendarId: calendarId,
	}
}

// GetEvents returns the events overlapping [from, to). Recurring Google events are
// expanded by Google into single instances. All-day events span whole days in loc.
func (c *Calendar) GetEvents(ctx context.Context, from time.Time, to time.Time, loc *time.Location) ([]event.Event, error) {
	events := make([]event.Event, 0)
	pageToken := ""
	for {
		call := c.service.Events.List(c.calendarId).
			Context(ctx).
			TimeMin(from.Format(time.RFC3339)).
			TimeMax(to.Format(time.RFC3339)).
			SingleEvents(true).
			OrderBy("startTime")
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		googleEvents, err := call.Do()
		if err != nil {
			err := fmt.Errorf("unable to retrieve events from Google Calendar: %w", err)
			log.Error(err)
			return nil, err
		}

		events = append(events, googleEventsToEvents(googleEvents.Items, loc)...)
		pageToken = googleEvents.NextPageToken
		if pageToken == "" {
			return events, nil
		}
	}
}

func googleEventsToEvents(googleEvents []*gcal.Event, loc *time.Location) []event.Event {
	events := make([]event.Event, 0, len(googleEvents))
	for _, item := range googleEvents {
		if item.Status == "cancelled" {
			continue
		}
		startTime, endTime, err := eventTimes(item, loc)
		if err != nil {
			log.Warnf("ignoring Google event %s (%s): %v", item.Id, item.Summary, err)
			continue
		}

		events = append(events, event.Event{
			Title:       item.Summary,
			Description: item.Description,
			Location:    item.Location,
			StartTime:   startTime,
			EndTime:     endTime,
			ExternalId:  externalPrefix + item.Id,
		})
	}
	return events
}

func eventTimes(item *gcal.Event, loc *time.Location) (time.Time, time.Time, error) {
	if item.Start == nil || item.End == nil {
		return time.Time{}, time.Time{}, errors.New("missing start or end")
	}
	start, err := parseEventDateTime(item.Start, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseEventDateTime(item.End, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func parseEventDateTime(dt *gcal.EventDateTime, loc *time.Location) (time.Time, error) {
	if dt.DateTime != "" {
		return time.Parse(time.RFC3339, dt.DateTime)
	}
	if dt.Date != "" {
		return time.ParseInLocation("2006-01-02", dt.Date, loc)
	}
	return time.Time{}, errors.New("empty date")
}
