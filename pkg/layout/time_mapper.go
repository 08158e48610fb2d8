package layout

import "time"

// MapTime converts t to a vertical offset on the track of the calendar day of dayStart.
//
// The offset is computed from the wall-clock hour and minute of t, not from
// elapsed time, so a DST switch during the day does not shift events.
// A t on a later day maps to the end of the track, a t on an earlier day to 0.
func (e Engine) MapTime(t time.Time, dayStart time.Time) float64 {
	t = t.In(dayStart.Location())
	switch compareDates(t, dayStart) {
	case -1:
		return 0
	case 1:
		return 24 * e.PixelsPerHour
	}
	hours := float64(t.Hour()) + float64(t.Minute())/60
	return hours * e.PixelsPerHour
}

// MapDuration returns the height of [start, end) on the track of start's day,
// never smaller than the minimum event height.
func (e Engine) MapDuration(start time.Time, end time.Time) float64 {
	height := e.MapTime(end, start) - e.MapTime(start, start)
	if height < e.MinEventHeight {
		return e.MinEventHeight
	}
	return height
}

// MapTime maps t with the given scale.
func MapTime(t time.Time, dayStart time.Time, pixelsPerHour float64) float64 {
	return NewEngine(pixelsPerHour, DefaultMinEventHeight).MapTime(t, dayStart)
}

// MapDuration maps [start, end) with the given scale and the default minimum height.
func MapDuration(start time.Time, end time.Time, pixelsPerHour float64) float64 {
	return NewEngine(pixelsPerHour, DefaultMinEventHeight).MapDuration(start, end)
}

func compareDates(a time.Time, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC).Compare(time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC))
}
