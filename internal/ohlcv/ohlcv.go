// Package ohlcv defines the Candle type and a bounded FIFO buffer of
// candles, grounded on paid_trading_bot/data/ohlcv_buffer.py's deque-backed
// buffer.
package ohlcv

import (
	"sync"
	"time"

	"tradecore/internal/xerrors"
)

// Candle is one OHLCV bar. Immutable once constructed, matching the
// original's frozen dataclass.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// FromRaw builds a Candle from a [ts_ms, o, h, l, c, v] tuple the way
// data/ingestion.py converts raw exchange rows.
func FromRaw(tsMillis int64, open, high, low, close, volume float64) Candle {
	return Candle{
		Timestamp: time.UnixMilli(tsMillis).UTC(),
		Open:      open,
		High:      high,
		Low:       low,
		Close:     close,
		Volume:    volume,
	}
}

// Buffer is a bounded, thread-safe FIFO of candles. The oldest candle is
// evicted once Append would exceed maxLen.
type Buffer struct {
	mu      sync.RWMutex
	candles []Candle
	maxLen  int
}

// NewBuffer constructs a buffer holding at most maxLen candles.
func NewBuffer(maxLen int) (*Buffer, error) {
	if maxLen <= 0 {
		return nil, xerrors.NewConfigurationError("maxLen", "must be > 0")
	}
	return &Buffer{candles: make([]Candle, 0, maxLen), maxLen: maxLen}, nil
}

// Append adds a single candle, evicting the oldest if the buffer is full.
func (b *Buffer) Append(c Candle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.appendLocked(c)
}

// Extend appends a sequence of candles in order.
func (b *Buffer) Extend(cs []Candle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range cs {
		b.appendLocked(c)
	}
}

func (b *Buffer) appendLocked(c Candle) {
	if len(b.candles) == b.maxLen {
		copy(b.candles, b.candles[1:])
		b.candles = b.candles[:len(b.candles)-1]
	}
	b.candles = append(b.candles, c)
}

// Snapshot returns a defensive copy of every candle currently buffered,
// oldest first.
func (b *Buffer) Snapshot() []Candle {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Candle, len(b.candles))
	copy(out, b.candles)
	return out
}

// Latest returns the most recently appended candle, or (Candle{}, false)
// if the buffer is empty.
func (b *Buffer) Latest() (Candle, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.candles) == 0 {
		return Candle{}, false
	}
	return b.candles[len(b.candles)-1], true
}

// Len reports how many candles are currently buffered.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.candles)
}

// Closes extracts the close prices from a candle slice, oldest first.
func Closes(cs []Candle) []float64 {
	out := make([]float64, len(cs))
	for i, c := range cs {
		out[i] = c.Close
	}
	return out
}

// Highs extracts the high prices from a candle slice, oldest first.
func Highs(cs []Candle) []float64 {
	out := make([]float64, len(cs))
	for i, c := range cs {
		out[i] = c.High
	}
	return out
}

// Lows extracts the low prices from a candle slice, oldest first.
func Lows(cs []Candle) []float64 {
	out := make([]float64, len(cs))
	for i, c := range cs {
		out[i] = c.Low
	}
	return out
}
