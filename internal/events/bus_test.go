package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishFansOut(t *testing.T) {
	bus := NewBus()
	a := bus.Subscribe()
	b := bus.Subscribe()

	bus.Publish(New(TypeSystemStatus, map[string]bool{"connected": true}))

	for _, ch := range []chan Event{a, b} {
		select {
		case evt := <-ch:
			assert.Equal(t, TypeSystemStatus, evt.Type)
			assert.False(t, evt.Timestamp.IsZero())
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive event")
		}
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe()
	bus.Unsubscribe(ch)

	_, open := <-ch
	assert.False(t, open)

	// Double unsubscribe is a no-op, not a double close.
	bus.Unsubscribe(ch)

	// Publishing with no subscribers left must not panic.
	bus.Publish(New(TypeHeartbeat, nil))
}

func TestPublishNeverBlocksOnSlowSubscriber(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Overflow the subscriber buffer; extra events are dropped.
		for i := 0; i < 500; i++ {
			bus.Publish(New(TypeTradeEvent, i))
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
	require.Equal(t, 100, len(ch))
}
