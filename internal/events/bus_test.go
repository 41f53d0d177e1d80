package events

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversToMatchingSubscriber(t *testing.T) {
	b := New()
	var mu sync.Mutex
	var got Event
	done := make(chan struct{})

	b.Subscribe(TradeExecuted, func(ev Event) {
		mu.Lock()
		got = ev
		mu.Unlock()
		close(done)
	})

	b.Publish(NewEvent(TradeExecuted, "executor", map[string]any{"symbol": "BTCUSDT"}))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("subscriber was never invoked")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, TradeExecuted, got.Type)
	assert.Equal(t, "executor", got.Source)
	assert.Equal(t, "BTCUSDT", got.Payload["symbol"])
	assert.False(t, got.Timestamp.IsZero())
}

func TestPublishDoesNotDeliverToOtherTopics(t *testing.T) {
	b := New()
	called := make(chan struct{}, 1)
	b.Subscribe(ErrorOccurred, func(Event) { called <- struct{}{} })

	b.Publish(NewEvent(TradeRejected, "risk", nil))

	select {
	case <-called:
		t.Fatal("subscriber for a different topic should not fire")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscribeAllReceivesEveryTopic(t *testing.T) {
	b := New()
	var count int32
	var mu sync.Mutex
	done := make(chan struct{})

	b.SubscribeAll(func(Event) {
		mu.Lock()
		count++
		n := count
		mu.Unlock()
		if n == 2 {
			close(done)
		}
	})

	b.Publish(NewEvent(CandleReceived, "feed", nil))
	b.Publish(NewEvent(PositionOpened, "positions", nil))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("all-topic subscriber did not see both events")
	}
}

func TestPublishRecoversFromSubscriberPanic(t *testing.T) {
	b := New()
	safe := make(chan struct{})

	b.Subscribe(ErrorOccurred, func(Event) {
		panic("boom")
	})
	b.Subscribe(ErrorOccurred, func(Event) {
		close(safe)
	})

	require.NotPanics(t, func() {
		b.Publish(NewEvent(ErrorOccurred, "test", nil))
	})

	select {
	case <-safe:
	case <-time.After(time.Second):
		t.Fatal("sibling subscriber should still run after another panics")
	}
}
