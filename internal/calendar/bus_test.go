package calendar

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBusFanOut(t *testing.T) {
	bus := NewMemoryBus()
	ctx := context.Background()

	ch1, unsub1, err := bus.Subscribe(ctx)
	require.NoError(t, err)
	defer unsub1()
	ch2, unsub2, err := bus.Subscribe(ctx)
	require.NoError(t, err)
	defer unsub2()

	require.NoError(t, bus.Publish(ctx, Message{Type: MessageAuthSuccess}))

	assert.Equal(t, MessageAuthSuccess, (<-ch1).Type)
	assert.Equal(t, MessageAuthSuccess, (<-ch2).Type)
}

func TestMemoryBusUnsubscribeClosesChannel(t *testing.T) {
	bus := NewMemoryBus()
	ctx := context.Background()

	ch, unsub, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	unsub()
	unsub() // idempotent

	_, ok := <-ch
	assert.False(t, ok)

	// Publishing after unsubscribe reaches nobody and does not panic.
	require.NoError(t, bus.Publish(ctx, Message{Type: MessageAuthError, Error: "x"}))
}

func TestMemoryBusDropsWhenSubscriberIsFull(t *testing.T) {
	bus := NewMemoryBus()
	ctx := context.Background()

	ch, unsub, err := bus.Subscribe(ctx)
	require.NoError(t, err)
	defer unsub()

	// Overfill the buffer; Publish must never block.
	for i := 0; i < 10; i++ {
		require.NoError(t, bus.Publish(ctx, Message{Type: MessageAuthSuccess}))
	}
	assert.Equal(t, cap(ch), len(ch))
}
