// Package layout places the events of a day on a vertical time grid.
//
// Events that overlap in time are laid out side by side in columns, events
// that do not overlap anything use the full width of the day track. All
// functions are pure: they never mutate their input and always return freshly
// allocated results, so they are safe to call concurrently.
package layout

import "time"

const (
	// DefaultPixelsPerHour is the vertical scale of the day track.
	DefaultPixelsPerHour = 80.0
	// DefaultMinEventHeight keeps zero and very short events clickable.
	DefaultMinEventHeight = 20.0
)

// Event is the read-only input of the layout engine.
type Event struct {
	ID         string
	Start      time.Time
	End        time.Time
	AssignedTo string // used for coloring only
}

// Rect is the visual bounding box of an event on the day track.
type Rect struct {
	EventID      string
	Top          float64 // pixels from midnight
	Height       float64 // pixels
	LeftPercent  float64 // 0-100
	WidthPercent float64 // 0-100
}

// Engine carries the scale constants of the day track.
type Engine struct {
	PixelsPerHour  float64
	MinEventHeight float64
}

// NewEngine returns an Engine, falling back to the defaults for non-positive values.
func NewEngine(pixelsPerHour float64, minEventHeight float64) Engine {
	if pixelsPerHour <= 0 {
		pixelsPerHour = DefaultPixelsPerHour
	}
	if minEventHeight <= 0 {
		minEventHeight = DefaultMinEventHeight
	}
	return Engine{PixelsPerHour: pixelsPerHour, MinEventHeight: minEventHeight}
}

// ComputeDayLayout returns the layout of events belonging to a single day,
// keyed by event ID. Deciding which events belong to the day is up to the caller.
//
// Events with End <= Start are not rejected, they get the minimum height.
// Duplicate IDs are a caller error: the result then holds one of the rects.
func (e Engine) ComputeDayLayout(events []Event) map[string]Rect {
	rects := make(map[string]Rect, len(events))
	for _, cluster := range GroupOverlapping(events) {
		slots := AssignSlots(cluster)
		for _, event := range cluster {
			slot := slots[event.ID]
			width := 100 / float64(slot.ColumnCount)
			rects[event.ID] = Rect{
				EventID:      event.ID,
				Top:          e.MapTime(event.Start, event.Start),
				Height:       e.MapDuration(event.Start, event.End),
				LeftPercent:  float64(slot.Column) * width,
				WidthPercent: width,
			}
		}
	}
	return rects
}

// ComputeDayLayout lays out events with the given scale and the default minimum height.
func ComputeDayLayout(events []Event, pixelsPerHour float64) map[string]Rect {
	return NewEngine(pixelsPerHour, DefaultMinEventHeight).ComputeDayLayout(events)
}
