// Package events implements the pub/sub bus exposed for observability and
// decoupling, trimmed from the teacher's internal/events/bus.go (whose
// SaaS-era topic list spanned chains, billing, and dashboard state) down
// to the exact thirteen topics this system defines, and made panic-safe
// per core/events.py's handler-exception-swallowing design.
package events

import (
	"sync"
	"time"
)

// Type identifies an event topic.
type Type string

const (
	CandleReceived       Type = "CANDLE_RECEIVED"
	TrendDetected        Type = "TREND_DETECTED"
	EntrySignal          Type = "ENTRY_SIGNAL"
	ExitSignal           Type = "EXIT_SIGNAL"
	AIAdvisory           Type = "AI_ADVISORY"
	RiskValidation       Type = "RISK_VALIDATION"
	TradeExecuted        Type = "TRADE_EXECUTED"
	TradeRejected        Type = "TRADE_REJECTED"
	PositionOpened       Type = "POSITION_OPENED"
	PositionClosed       Type = "POSITION_CLOSED"
	CircuitBreakerTripped Type = "CIRCUIT_BREAKER_TRIPPED"
	CircuitBreakerReset  Type = "CIRCUIT_BREAKER_RESET"
	ErrorOccurred        Type = "ERROR_OCCURRED"
)

// Event carries a topic, timestamp, a free-form payload, and the
// component that emitted it.
type Event struct {
	Type      Type
	Timestamp time.Time
	Payload   map[string]any
	Source    string
}

// Subscriber handles one event. A panic inside a Subscriber is recovered
// and discarded by Publish — it must never break the dispatch chain for
// other subscribers.
type Subscriber func(Event)

// Bus is a thread-safe pub/sub dispatcher. The subscriber list is
// expected to be written at init time only; Publish iterates a stable
// snapshot taken under a read lock.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[Type][]Subscriber
	allSubs     []Subscriber
}

// New constructs an empty bus.
func New() *Bus {
	return &Bus{subscribers: make(map[Type][]Subscriber)}
}

// Subscribe registers a handler for one topic.
func (b *Bus) Subscribe(t Type, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[t] = append(b.subscribers[t], sub)
}

// SubscribeAll registers a handler invoked for every topic.
func (b *Bus) SubscribeAll(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.allSubs = append(b.allSubs, sub)
}

// Publish dispatches ev to every matching subscriber and every
// all-topic subscriber, each isolated in its own goroutine with a
// recover guard so one misbehaving handler cannot affect another or the
// caller.
func (b *Bus) Publish(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	if ev.Source == "" {
		ev.Source = "unknown"
	}

	b.mu.RLock()
	topicSubs := append([]Subscriber(nil), b.subscribers[ev.Type]...)
	allSubs := append([]Subscriber(nil), b.allSubs...)
	b.mu.RUnlock()

	for _, sub := range topicSubs {
		go dispatch(sub, ev)
	}
	for _, sub := range allSubs {
		go dispatch(sub, ev)
	}
}

func dispatch(sub Subscriber, ev Event) {
	defer func() {
		_ = recover()
	}()
	sub(ev)
}

// NewEvent constructs a topic-tagged event with the given source component.
func NewEvent(t Type, source string, payload map[string]any) Event {
	return Event{Type: t, Timestamp: time.Now().UTC(), Payload: payload, Source: source}
}
