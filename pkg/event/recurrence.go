package event

import (
	"fmt"
	"slices"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/teambition/rrule-go"
)

const maxOccurrencesPerEvent = 5000

var recurrencePresets = map[string]rrule.Frequency{
	"daily":   rrule.DAILY,
	"weekly":  rrule.WEEKLY,
	"monthly": rrule.MONTHLY,
	"yearly":  rrule.YEARLY,
}

// parseRecurrence builds the rule of a recurring event starting at start.
// Occurrences keep the wall-clock time of start in its location across DST changes.
func parseRecurrence(recurrence string, start time.Time) (*rrule.RRule, error) {
	recurrence = strings.TrimSpace(recurrence)
	if freq, ok := recurrencePresets[strings.ToLower(recurrence)]; ok {
		return rrule.NewRRule(rrule.ROption{Freq: freq, Dtstart: start})
	}

	option, err := rrule.StrToROption(strings.TrimPrefix(recurrence, "RRULE:"))
	if err != nil {
		return nil, fmt.Errorf("invalid recurrence %q: %w", recurrence, err)
	}
	option.Dtstart = start
	rule, err := rrule.NewRRule(*option)
	if err != nil {
		return nil, fmt.Errorf("invalid recurrence %q: %w", recurrence, err)
	}
	return rule, nil
}

// RecurrenceRule returns the recurrence as an RRULE value without the "RRULE:" prefix,
// with presets spelled out. Empty for single events.
func (e Event) RecurrenceRule() string {
	recurrence := strings.TrimSpace(e.Recurrence)
	if _, ok := recurrencePresets[strings.ToLower(recurrence)]; ok {
		return "FREQ=" + strings.ToUpper(recurrence)
	}
	return strings.TrimPrefix(recurrence, "RRULE:")
}

// Occurrences returns the occurrences of the event overlapping [from, to).
// Recurring events are expanded in loc, so that a weekly 9:00 event stays at 9:00
// local time.
func (e Event) Occurrences(from, to time.Time, loc *time.Location) []Occurrence {
	if !e.IsRecurring() {
		if e.StartTime.Before(to) && e.EndTime.After(from) {
			return []Occurrence{{Id: e.UID, Event: e, Start: e.StartTime.In(loc), End: e.EndTime.In(loc)}}
		}
		return nil
	}

	rule, err := parseRecurrence(e.Recurrence, e.StartTime.In(loc))
	if err != nil {
		log.Errorf("failed to expand event %s: %v", e.UID, err)
		return nil
	}

	duration := e.Duration()
	starts := rule.Between(from.Add(-duration), to, true)
	if len(starts) > maxOccurrencesPerEvent {
		log.Warnf("event %s has %d occurrences in range, truncating", e.UID, len(starts))
		starts = starts[:maxOccurrencesPerEvent]
	}

	occurrences := make([]Occurrence, 0, len(starts))
	for _, start := range starts {
		end := start.Add(duration)
		if !start.Before(to) || !end.After(from) {
			continue
		}
		occurrences = append(occurrences, Occurrence{
			Id:        occurrenceId(e.UID, start),
			Event:     e,
			Start:     start,
			End:       end,
			Recurring: true,
		})
	}
	return occurrences
}

// expandAll expands events into occurrences overlapping [from, to), ordered by start, then end.
func expandAll(events []Event, from, to time.Time, loc *time.Location) []Occurrence {
	occurrences := make([]Occurrence, 0, len(events))
	for _, e := range events {
		occurrences = append(occurrences, e.Occurrences(from, to, loc)...)
	}
	slices.SortStableFunc(occurrences, func(a, b Occurrence) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		return a.End.Compare(b.End)
	})
	return occurrences
}
