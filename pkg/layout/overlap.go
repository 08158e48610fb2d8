package layout

import (
	"slices"
	"time"
)

// Cluster is a maximal group of events connected by pairwise overlap.
type Cluster []Event

// Overlaps reports whether the half-open intervals of a and b intersect.
// Events touching at an endpoint do not overlap.
func Overlaps(a Event, b Event) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// GroupOverlapping partitions events into clusters of directly or
// transitively overlapping events, ordered by start time.
// Events with equal start keep their input order.
func GroupOverlapping(events []Event) []Cluster {
	clusters := make([]Cluster, 0)
	if len(events) == 0 {
		return clusters
	}

	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b Event) int {
		return a.Start.Compare(b.Start)
	})

	current := Cluster{sorted[0]}
	runningEnd := sorted[0].End
	for _, event := range sorted[1:] {
		if event.Start.Before(runningEnd) {
			current = append(current, event)
			runningEnd = later(runningEnd, event.End)
			continue
		}
		clusters = append(clusters, current)
		current = Cluster{event}
		runningEnd = event.End
	}
	return append(clusters, current)
}

func later(a time.Time, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
