package event_bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_Publish(t *testing.T) {

	t.Run("should call handlers in subscription order", func(t *testing.T) {
		// given
		bus := NewEventBus()
		var calls []int
		for i := 1; i <= 5; i++ {
			bus.Subscribe("test", func(e Event) error {
				calls = append(calls, i)
				return nil
			})
		}

		// when
		err := bus.Publish(NewEvent(context.Background(), "test", nil))

		// then
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3, 4, 5}, calls)
	})

	t.Run("should keep calling handlers after a failure", func(t *testing.T) {
		// given
		bus := NewEventBus()
		handlerErr := errors.New("failed")
		called := false
		bus.Subscribe("test", func(e Event) error { return handlerErr })
		bus.Subscribe("test", func(e Event) error { panic("boom") })
		bus.Subscribe("test", func(e Event) error {
			called = true
			return nil
		})

		// when
		err := bus.Publish(NewEvent(context.Background(), "test", nil))

		// then
		assert.ErrorIs(t, err, handlerErr)
		assert.ErrorContains(t, err, "2 handler(s) failed")
		assert.True(t, called)
	})

	t.Run("should not call unsubscribed handlers", func(t *testing.T) {
		bus := NewEventBus()
		called := false
		unsubscribe := bus.Subscribe("test", func(e Event) error {
			called = true
			return nil
		})

		unsubscribe()
		err := bus.Publish(NewEvent(context.Background(), "test", nil))

		require.NoError(t, err)
		assert.False(t, called)
	})

	t.Run("should not publish with a cancelled context", func(t *testing.T) {
		bus := NewEventBus()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := bus.Publish(NewEvent(ctx, "test", nil))

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestSubscribeTyped(t *testing.T) {
	// given
	bus := NewEventBus()
	var received []FamilyMemberDeleted
	SubscribeTyped[FamilyMemberDeleted](bus, FamilyMemberDeletedType, func(e EventT[FamilyMemberDeleted]) error {
		received = append(received, e.Data)
		return nil
	})

	// when
	require.NoError(t, bus.Publish(NewEvent(context.Background(), FamilyMemberDeletedType, FamilyMemberDeleted{Uid: "m-1", Name: "Anna"})))
	require.NoError(t, bus.Publish(NewEvent(context.Background(), FamilyMemberDeletedType, "not a member")))

	// then
	assert.Equal(t, []FamilyMemberDeleted{{Uid: "m-1", Name: "Anna"}}, received)
}
