// Package position owns the lifecycle of open trades: creation from a
// filled entry, tracking the running highest/lowest excursion, applying
// exit signals (including the TP1 breakeven stop move), and exposing
// read-only snapshots plus aggregate win/loss stats. Grounded on
// state/position_manager.py, adapted to the richer staged-exit Position
// the original's single-take-profit dataclass does not model, and on the
// teacher's internal/orders package for the Go map-of-positions,
// mutex-guarded idiom.
package position

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Side is the direction of a position.
type Side string

const (
	Long  Side = "LONG"
	Short Side = "SHORT"
)

// Status is the lifecycle stage of a position.
type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

// Position is a single open (or closed) trade. Mutated only by the
// Manager that owns it; every other component holds it by read-only
// value or pointer-to-const-in-practice.
type Position struct {
	ID            string
	Symbol        string
	Side          Side
	EntryPrice    float64
	Size          float64
	StopLoss      float64
	TakeProfit1   float64
	TakeProfit2   float64
	EntryATR      float64
	OpenedAt      time.Time
	TP1Hit        bool
	HighestPrice  float64
	LowestPrice   float64
	Status        Status
	ExitPrice     float64
	ExitTime      time.Time
	ExitReason    string
	PnLPercent    float64
	RemainingSize float64
}

// New constructs an OPEN position from a filled entry, seeding the
// highest/lowest excursion trackers at the entry price.
func New(symbol string, side Side, entryPrice, size, stopLoss, tp1, tp2, entryATR float64, openedAt time.Time) *Position {
	return &Position{
		ID:            uuid.NewString(),
		Symbol:        symbol,
		Side:          side,
		EntryPrice:    entryPrice,
		Size:          size,
		RemainingSize: size,
		StopLoss:      stopLoss,
		TakeProfit1:   tp1,
		TakeProfit2:   tp2,
		EntryATR:      entryATR,
		OpenedAt:      openedAt,
		HighestPrice:  entryPrice,
		LowestPrice:   entryPrice,
		Status:        StatusOpen,
	}
}

// UpdateExcursion advances the monotonic highest/lowest trackers. Must be
// called before exit evaluation on the same tick, per the orchestrator's
// ordering guarantee.
func (p *Position) UpdateExcursion(currentPrice float64) {
	if currentPrice > p.HighestPrice {
		p.HighestPrice = currentPrice
	}
	if currentPrice < p.LowestPrice {
		p.LowestPrice = currentPrice
	}
}

// Manager owns the registry of live positions, guarding it with a mutex so
// the orchestrator's single-writer tick and any read-side snapshot caller
// never race.
type Manager struct {
	mu                sync.RWMutex
	positions         map[string]*Position
	closed            []*Position
	consecutiveLosses int
}

// NewManager builds an empty registry.
func NewManager() *Manager {
	return &Manager{positions: make(map[string]*Position)}
}

// Open registers a newly filled position.
func (m *Manager) Open(p *Position) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions[p.ID] = p
}

// Get returns the live position by ID, or (nil, false).
func (m *Manager) Get(id string) (*Position, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.positions[id]
	return p, ok
}

// OpenPositions returns a defensive copy of every position currently OPEN.
func (m *Manager) OpenPositions() []Position {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Position, 0, len(m.positions))
	for _, p := range m.positions {
		out = append(out, *p)
	}
	return out
}

// Count reports how many positions are currently open.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.positions)
}

// ApplyPartialExit records a TP1 partial close: trims RemainingSize by
// sizePercent, marks TP1Hit, and moves the stop to breakeven (entry
// price), per the spec's resolution of the source's inconsistent
// breakeven handling.
func (m *Manager) ApplyPartialExit(id string, sizePercent float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.positions[id]
	if !ok {
		return fmt.Errorf("position: unknown id %q", id)
	}
	p.RemainingSize -= p.Size * (sizePercent / 100.0)
	if p.RemainingSize < 0 {
		p.RemainingSize = 0
	}
	p.TP1Hit = true
	p.StopLoss = p.EntryPrice
	return nil
}

// Close fully closes a position at exitPrice for reason, computing
// realized PnL against the full entry size, and moves it out of the live
// registry into closed history.
func (m *Manager) Close(id string, exitPrice float64, reason string, exitTime time.Time) (*Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.positions[id]
	if !ok {
		return nil, fmt.Errorf("position: unknown id %q", id)
	}

	p.Status = StatusClosed
	p.ExitPrice = exitPrice
	p.ExitTime = exitTime
	p.ExitReason = reason
	p.PnLPercent = pnlPercent(p.Side, p.EntryPrice, exitPrice)

	// A zero-PnL close leaves the streak unchanged; only a strict loss
	// extends it and any gain resets it.
	switch {
	case p.PnLPercent < 0:
		m.consecutiveLosses++
	case p.PnLPercent > 0:
		m.consecutiveLosses = 0
	}

	delete(m.positions, id)
	m.closed = append(m.closed, p)
	return p, nil
}

// ConsecutiveLosses reports the current losing streak length, feeding the
// Hard Risk Validator and the advisory Governor's consecutive_losses
// input.
func (m *Manager) ConsecutiveLosses() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.consecutiveLosses
}

func pnlPercent(side Side, entry, exit float64) float64 {
	if entry == 0 {
		return 0
	}
	switch side {
	case Long:
		return (exit - entry) / entry * 100.0
	default:
		return (entry - exit) / entry * 100.0
	}
}

// Stats summarizes closed-trade performance, mirroring the original's
// get_stats (win/loss counts and win rate).
type Stats struct {
	TotalClosed int
	Wins        int
	Losses      int
	WinRate     float64
	TotalPnL    float64
}

// GetStats aggregates every closed position's outcome. Supplements
// spec.md's component table (Position Manager covers "P&L" tracking) with
// the original's get_stats surface, which the distilled spec names but
// does not detail.
func (m *Manager) GetStats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var s Stats
	s.TotalClosed = len(m.closed)
	for _, p := range m.closed {
		s.TotalPnL += p.PnLPercent
		if p.PnLPercent > 0 {
			s.Wins++
		} else if p.PnLPercent < 0 {
			s.Losses++
		}
	}
	if s.TotalClosed > 0 {
		s.WinRate = float64(s.Wins) / float64(s.TotalClosed) * 100.0
	}
	return s
}
