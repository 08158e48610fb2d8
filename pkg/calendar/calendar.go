package calendar

import (
	"context"
	"time"

	"github.com/familyhub/familyhub/pkg/event"
	"github.com/familyhub/familyhub/pkg/family"
	"github.com/familyhub/familyhub/pkg/layout"
)

// OccurrencesProvider lists the event occurrences overlapping [from, to).
type OccurrencesProvider func(ctx context.Context, from, to time.Time) ([]event.Occurrence, error)

// MembersProvider lists the family members of the current user.
type MembersProvider func(ctx context.Context) ([]family.FamilyMember, error)

// Item is an event occurrence as shown on one day of the calendar. Occurrences spanning
// several days produce one item per day, clipped to that day.
type Item struct {
	Id          string
	EventUid    string
	Title       string
	Description string
	Location    string
	// Start and End are clipped to the day.
	Start time.Time
	End   time.Time
	// EventStart and EventEnd are the bounds of the whole occurrence.
	EventStart time.Time
	EventEnd   time.Time
	AssignedTo string
	// AssigneeName is the family member name, or AssignedTo when it is a free label.
	AssigneeName string
	// AssigneeColor is the color of the assigned family member, empty for free labels.
	AssigneeColor string
	Color         string
	TextColor     string
	Recurring     bool
	// Rect is set in the day and week views only.
	Rect *layout.Rect
}

func (i Item) ContinuesBefore() bool {
	return i.EventStart.Before(i.Start)
}

func (i Item) ContinuesAfter() bool {
	return i.EventEnd.After(i.End)
}

type Day struct {
	Date  time.Time
	Items []Item
}

type DayView struct {
	Day
	PixelsPerHour float64
}

type WeekView struct {
	Start         time.Time
	Days          []Day
	PixelsPerHour float64
}

type MonthDay struct {
	Day
	InMonth bool
	IsToday bool
}

type MonthView struct {
	Month time.Time
	Weeks [][]MonthDay
}
