package layout

import "time"

// DayLayout is the layout of one day of a week view.
type DayLayout struct {
	Date   time.Time
	Events []Event
	Rects  map[string]Rect
}

// ComputeWeekLayout buckets events by the calendar day of their start, in the
// location of weekStart, and lays out each of the seven days starting at
// weekStart's day. Event times are converted to that location before they are
// mapped onto the grid. Events starting outside the week are ignored; splitting
// multi-day events into per-day segments is up to the caller.
func (e Engine) ComputeWeekLayout(events []Event, weekStart time.Time) []DayLayout {
	loc := weekStart.Location()
	first := time.Date(weekStart.Year(), weekStart.Month(), weekStart.Day(), 0, 0, 0, 0, loc)

	days := make([]DayLayout, 7)
	for i := range days {
		days[i].Date = first.AddDate(0, 0, i)
	}
	for _, event := range events {
		event.Start = event.Start.In(loc)
		event.End = event.End.In(loc)
		idx := dayIndex(first, event.Start)
		if idx < 0 || idx >= len(days) {
			continue
		}
		days[idx].Events = append(days[idx].Events, event)
	}
	for i := range days {
		days[i].Rects = e.ComputeDayLayout(days[i].Events)
	}
	return days
}

// ComputeWeekLayout lays out a week with the given scale and the default minimum height.
func ComputeWeekLayout(events []Event, weekStart time.Time, pixelsPerHour float64) []DayLayout {
	return NewEngine(pixelsPerHour, DefaultMinEventHeight).ComputeWeekLayout(events, weekStart)
}

// dayIndex counts calendar days from first to t, ignoring the wall-clock time.
func dayIndex(first time.Time, t time.Time) int {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	start := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, time.UTC)
	return int(day.Sub(start).Hours() / 24)
}
