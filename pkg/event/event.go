package event

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

var ErrInvalidEvent = errors.New("invalid event")

type Event struct {
	Id          int
	UID         string
	Title       string
	Description string
	Location    string
	StartTime   time.Time
	EndTime     time.Time
	// AssignedTo is the uid of a family member or a free label like "Everyone".
	AssignedTo string
	// Color overrides the color derived from the title and assignee when set.
	Color string
	// Recurrence is an RRULE ("FREQ=WEEKLY;BYDAY=MO,WE") or one of the presets
	// daily, weekly, monthly, yearly. Empty for single events.
	Recurrence string
	// ExternalId identifies events imported from another calendar, so that
	// importing again updates them instead of creating duplicates.
	ExternalId string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (e Event) IsRecurring() bool {
	return strings.TrimSpace(e.Recurrence) != ""
}

func (e Event) Duration() time.Duration {
	return e.EndTime.Sub(e.StartTime)
}

func (e Event) Validate() error {
	if n := utf8.RuneCountInString(e.Title); n < 1 || n > 200 {
		return fmt.Errorf("%w: title must be between 1 and 200 characters", ErrInvalidEvent)
	}
	if utf8.RuneCountInString(e.Description) > 1000 {
		return fmt.Errorf("%w: description must be at most 1000 characters", ErrInvalidEvent)
	}
	if utf8.RuneCountInString(e.Location) > 200 {
		return fmt.Errorf("%w: location must be at most 200 characters", ErrInvalidEvent)
	}
	if e.StartTime.IsZero() || e.EndTime.IsZero() {
		return fmt.Errorf("%w: start and end time are required", ErrInvalidEvent)
	}
	if !e.EndTime.After(e.StartTime) {
		return fmt.Errorf("%w: end time must be after start time", ErrInvalidEvent)
	}
	if n := utf8.RuneCountInString(e.Color); e.Color != "" && (n < 3 || n > 20) {
		return fmt.Errorf("%w: color must be between 3 and 20 characters", ErrInvalidEvent)
	}
	if e.IsRecurring() {
		if _, err := parseRecurrence(e.Recurrence, e.StartTime); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidEvent, err)
		}
	}
	return nil
}

// Occurrence is a single appearance of an event on the calendar. Single events have
// exactly one occurrence sharing the event's UID; every occurrence of a recurring
// event is identified by the event UID and its start time.
type Occurrence struct {
	Id        string
	Event     Event
	Start     time.Time
	End       time.Time
	Recurring bool
}

func occurrenceId(uid string, start time.Time) string {
	return uid + "/" + start.UTC().Format(time.RFC3339)
}

// ParseOccurrenceId splits an occurrence id into the event UID and, for occurrences of
// recurring events, the occurrence start.
func ParseOccurrenceId(id string) (uid string, start time.Time, err error) {
	uid, startString, found := strings.Cut(id, "/")
	if !found {
		return uid, time.Time{}, nil
	}
	start, err = time.Parse(time.RFC3339, startString)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("invalid occurrence id %q: %w", id, err)
	}
	return uid, start, nil
}
