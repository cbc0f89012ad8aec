package event_bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_Publish(t *testing.T) {
	t.Run("delivers to handlers in subscription order", func(t *testing.T) {
		bus := NewEventBus()
		var calls []int
		for i := 1; i <= 5; i++ {
			bus.Subscribe(BranchCreatedEvent, func(e Event) error {
				calls = append(calls, i)
				return nil
			})
		}

		err := bus.Publish(NewEvent(context.Background(), BranchCreatedEvent, BranchCreated{Id: 1}))

		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3, 4, 5}, calls)
	})

	t.Run("collects handler errors and recovers panics", func(t *testing.T) {
		bus := NewEventBus()
		reached := false
		bus.Subscribe(TimingsSavedEvent, func(e Event) error { return errors.New("boom") })
		bus.Subscribe(TimingsSavedEvent, func(e Event) error { panic("bad handler") })
		bus.Subscribe(TimingsSavedEvent, func(e Event) error {
			reached = true
			return nil
		})

		err := bus.Publish(NewEvent(context.Background(), TimingsSavedEvent, TimingsSaved{BranchId: 1}))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "2 handler(s) failed")
		assert.Contains(t, err.Error(), "boom")
		assert.Contains(t, err.Error(), "bad handler")
		assert.True(t, reached)
	})

	t.Run("does not deliver when context is cancelled", func(t *testing.T) {
		bus := NewEventBus()
		called := false
		bus.Subscribe(BranchCreatedEvent, func(e Event) error {
			called = true
			return nil
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := bus.Publish(NewEvent(ctx, BranchCreatedEvent, BranchCreated{}))

		require.ErrorIs(t, err, context.Canceled)
		assert.False(t, called)
	})

	t.Run("unsubscribe removes only that handler", func(t *testing.T) {
		bus := NewEventBus()
		first, second := 0, 0
		unsubscribe := bus.Subscribe(BranchCreatedEvent, func(e Event) error {
			first++
			return nil
		})
		bus.Subscribe(BranchCreatedEvent, func(e Event) error {
			second++
			return nil
		})

		unsubscribe()
		require.NoError(t, bus.Publish(NewEvent(context.Background(), BranchCreatedEvent, nil)))

		assert.Equal(t, 0, first)
		assert.Equal(t, 1, second)
	})
}

func TestSubscribeTyped(t *testing.T) {
	bus := NewEventBus()
	var received []BranchCreated
	SubscribeTyped[BranchCreated](bus, BranchCreatedEvent, func(e EventT[BranchCreated]) error {
		received = append(received, e.Data)
		return nil
	})

	require.NoError(t, bus.Publish(NewEvent(context.Background(), BranchCreatedEvent, BranchCreated{Id: 3, Name: "Central"})))
	require.NoError(t, bus.Publish(NewEvent(context.Background(), BranchCreatedEvent, "not a branch")))
	require.NoError(t, bus.Publish(NewEvent(context.Background(), BranchCreatedEvent, nil)))

	require.Len(t, received, 1)
	assert.Equal(t, "Central", received[0].Name)
}
