package layout

import (
	"slices"
	"time"
)

// Slot is the horizontal lane of an event within its cluster.
type Slot struct {
	Column      int
	ColumnCount int
}

// AssignSlots places the events of a cluster into columns so that no two
// overlapping events share a column, using as few columns as the deepest
// overlap requires. Every event of the cluster gets the same ColumnCount.
func AssignSlots(cluster Cluster) map[string]Slot {
	sorted := slices.Clone(cluster)
	slices.SortStableFunc(sorted, func(a, b Event) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		return a.End.Compare(b.End)
	})

	columnEnds := make([]time.Time, 0, 4)
	columns := make([]int, len(sorted))
	for i, event := range sorted {
		column := freeColumn(columnEnds, event.Start)
		if column < 0 {
			column = len(columnEnds)
			columnEnds = append(columnEnds, event.End)
		} else {
			columnEnds[column] = event.End
		}
		columns[i] = column
	}

	slots := make(map[string]Slot, len(sorted))
	for i, event := range sorted {
		slots[event.ID] = Slot{Column: columns[i], ColumnCount: len(columnEnds)}
	}
	return slots
}

// freeColumn returns the lowest column whose last event ended by start, or -1.
func freeColumn(columnEnds []time.Time, start time.Time) int {
	for i, end := range columnEnds {
		if !end.After(start) {
			return i
		}
	}
	return -1
}
