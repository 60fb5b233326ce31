package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/meatline/meatline/internal/dto"
)

func TestHubDeliversToAllSubscribers(t *testing.T) {
	hub := NewHub(zap.NewNop())

	first, cancelFirst := hub.Subscribe(4)
	second, cancelSecond := hub.Subscribe(4)
	defer cancelFirst()
	defer cancelSecond()

	hub.Publish(Event{Type: EventInsert, Order: dto.OrderResponse{ID: 42, Number: "ORD-1"}})

	for _, ch := range []<-chan Event{first, second} {
		select {
		case got := <-ch:
			assert.Equal(t, EventInsert, got.Type)
			assert.Equal(t, int64(42), got.Order.ID)
			assert.False(t, got.At.IsZero())
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub(zap.NewNop())

	ch, cancel := hub.Subscribe(1)
	require.Equal(t, 1, hub.Subscribers())

	cancel()
	assert.Equal(t, 0, hub.Subscribers())

	_, open := <-ch
	assert.False(t, open)

	// Idempotent.
	cancel()
}

func TestHubSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	hub := NewHub(zap.NewNop())

	ch, cancel := hub.Subscribe(1)
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			hub.Publish(Event{Type: EventUpdate, Order: dto.OrderResponse{ID: int64(i)}})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on slow subscriber")
	}

	// The first event is buffered, the rest were dropped.
	got := <-ch
	assert.Equal(t, int64(0), got.Order.ID)
}
