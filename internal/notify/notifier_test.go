package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastDeliversToAllSubscribers(t *testing.T) {
	n := New()
	_, ch1 := n.Subscribe()
	_, ch2 := n.Subscribe()

	n.Broadcast(Event{Symbol: "BTCUSD"})

	ev1 := <-ch1
	ev2 := <-ch2
	assert.Equal(t, "BTCUSD", ev1.Symbol)
	assert.Equal(t, "BTCUSD", ev2.Symbol)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	n := New()
	id, ch := n.Subscribe()
	n.Unsubscribe(id)

	n.Broadcast(Event{Symbol: "BTCUSD"})

	_, open := <-ch
	assert.False(t, open, "channel should be closed after unsubscribe")
}

func TestDeadSubscriberIsDroppedNotBlocked(t *testing.T) {
	n := New()
	id, ch := n.Subscribe()

	for i := 0; i < subscriberBuffer+5; i++ {
		n.Broadcast(Event{Symbol: "BTCUSD"})
	}

	require.Equal(t, 0, n.Count(), "a subscriber whose buffer filled must be dropped")

	// Draining the channel should still see the buffered events then close.
	count := 0
	for range ch {
		count++
	}
	assert.Equal(t, subscriberBuffer, count)
	_ = id
}

func TestEventOrderPerSubscriberMatchesBroadcastOrder(t *testing.T) {
	n := New()
	_, ch := n.Subscribe()

	for i := 0; i < 5; i++ {
		n.Broadcast(Event{Symbol: string(rune('A' + i))})
	}

	for i := 0; i < 5; i++ {
		ev := <-ch
		assert.Equal(t, string(rune('A'+i)), ev.Symbol)
	}
}
