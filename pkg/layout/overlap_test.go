package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(cluster Cluster) []string {
	result := make([]string, len(cluster))
	for i, ev := range cluster {
		result[i] = ev.ID
	}
	return result
}

func TestOverlaps(t *testing.T) {
	assert.True(t, Overlaps(event("a", 9, 0, 10, 0), event("b", 9, 30, 10, 30)))
	assert.True(t, Overlaps(event("a", 9, 0, 12, 0), event("b", 10, 0, 11, 0)))
	assert.False(t, Overlaps(event("a", 9, 0, 10, 0), event("b", 10, 0, 11, 0)))
	assert.False(t, Overlaps(event("a", 11, 0, 12, 0), event("b", 9, 0, 10, 0)))
}

func TestGroupOverlapping(t *testing.T) {

	t.Run("should return no clusters for no events", func(t *testing.T) {
		clusters := GroupOverlapping([]Event{})

		require.NotNil(t, clusters)
		assert.Empty(t, clusters)
	})

	t.Run("should return a single cluster for a single event", func(t *testing.T) {
		clusters := GroupOverlapping([]Event{event("a", 9, 0, 10, 0)})

		require.Len(t, clusters, 1)
		assert.Equal(t, []string{"a"}, ids(clusters[0]))
	})

	t.Run("should connect events transitively", func(t *testing.T) {
		// given
		events := []Event{
			event("C", 10, 15, 10, 45),
			event("B", 9, 30, 10, 0),
			event("A", 9, 0, 11, 0),
			event("D", 11, 0, 12, 0),
		}

		// when
		clusters := GroupOverlapping(events)

		// then
		require.Len(t, clusters, 2)
		assert.Equal(t, []string{"A", "B", "C"}, ids(clusters[0]))
		assert.Equal(t, []string{"D"}, ids(clusters[1]))
	})

	t.Run("should keep input order of events starting together", func(t *testing.T) {
		events := []Event{event("second", 9, 0, 9, 30), event("first", 9, 0, 11, 0)}

		clusters := GroupOverlapping(events)

		require.Len(t, clusters, 1)
		assert.Equal(t, []string{"second", "first"}, ids(clusters[0]))
	})

	t.Run("should split at a gap after a long event", func(t *testing.T) {
		// given
		events := []Event{
			event("long", 8, 0, 12, 0),
			event("inside", 9, 0, 9, 30),
			event("after", 12, 0, 13, 0),
		}

		// when
		clusters := GroupOverlapping(events)

		// then
		require.Len(t, clusters, 2)
		assert.Equal(t, []string{"long", "inside"}, ids(clusters[0]))
	})
}

func TestAssignSlots(t *testing.T) {

	t.Run("should reuse the lowest free column", func(t *testing.T) {
		// given
		cluster := Cluster{
			event("A", 9, 0, 11, 0),
			event("B", 9, 0, 9, 30),
			event("C", 9, 15, 10, 0),
			event("D", 9, 30, 10, 30),
		}

		// when
		slots := AssignSlots(cluster)

		// then
		assert.Equal(t, Slot{Column: 0, ColumnCount: 3}, slots["B"])
		assert.Equal(t, Slot{Column: 1, ColumnCount: 3}, slots["A"])
		assert.Equal(t, Slot{Column: 2, ColumnCount: 3}, slots["C"])
		assert.Equal(t, Slot{Column: 0, ColumnCount: 3}, slots["D"])
	})

	t.Run("should order events starting together by end", func(t *testing.T) {
		cluster := Cluster{event("long", 9, 0, 12, 0), event("short", 9, 0, 10, 0)}

		slots := AssignSlots(cluster)

		assert.Equal(t, 0, slots["short"].Column)
		assert.Equal(t, 1, slots["long"].Column)
	})

	t.Run("should use ten columns for ten simultaneous events", func(t *testing.T) {
		cluster := make(Cluster, 10)
		for i := range cluster {
			cluster[i] = event(string(rune('a'+i)), 9, 0, 10, 0)
		}

		slots := AssignSlots(cluster)

		for i, ev := range cluster {
			assert.Equal(t, Slot{Column: i, ColumnCount: 10}, slots[ev.ID])
		}
	})
}
