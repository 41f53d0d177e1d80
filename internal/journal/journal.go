// Package journal implements the Trade State Journal: an append-only
// record of closed trades plus daily statistics and bot runtime state,
// snapshotted to disk as one JSON document and reloaded at startup.
// Grounded on original_source/src/state/trade_state.py's TradeState,
// translated from its eager load/save-on-every-mutation design into a
// mutex-guarded struct with an injectable Store.
package journal

import (
	"context"
	"sync"
	"time"
)

// TradeRecord is one completed trade, matching spec.md §6's on-disk
// TradeRecord shape exactly.
type TradeRecord struct {
	TradeID    string    `json:"trade_id"`
	Symbol     string    `json:"symbol"`
	Side       string    `json:"side"`
	EntryPrice float64   `json:"entry_price"`
	ExitPrice  float64   `json:"exit_price"`
	Amount     float64   `json:"amount"`
	EntryTime  time.Time `json:"entry_time"`
	ExitTime   time.Time `json:"exit_time"`
	ExitReason string    `json:"exit_reason"`
	PnLPercent float64   `json:"pnl_percent"`
	PnLAmount  float64   `json:"pnl_amount"`
	Fees       float64   `json:"fees"`
}

// DailyStats summarizes one UTC calendar day of trading.
type DailyStats struct {
	Trades int     `json:"trades"`
	PnL    float64 `json:"pnl"`
	Wins   int     `json:"wins"`
	Losses int     `json:"losses"`
}

// ErrorEntry is one logged runtime error, bounded to the most recent
// errorHistoryLimit entries.
type ErrorEntry struct {
	Time  time.Time `json:"time"`
	Error string    `json:"error"`
}

const errorHistoryLimit = 100

// BotState is runtime metadata about the process itself.
type BotState struct {
	StartedAt   time.Time    `json:"started_at"`
	LastRun     *time.Time   `json:"last_run"`
	TotalTrades int          `json:"total_trades"`
	Errors      []ErrorEntry `json:"errors"`
}

// Snapshot is the full on-disk document: trades, per-day stats, and
// bot state, matching spec.md §6's JSON shape verbatim.
type Snapshot struct {
	Trades     []TradeRecord         `json:"trades"`
	DailyStats map[string]DailyStats `json:"daily_stats"`
	BotState   BotState              `json:"bot_state"`
	SavedAt    time.Time             `json:"saved_at"`
}

// Store persists and restores a Snapshot. FileStore is the default
// implementation; a Postgres-backed one could satisfy the same shape.
type Store interface {
	Load() (*Snapshot, error)
	Save(Snapshot) error
}

// TradeRepository is the narrow consumed interface spec.md §6 names
// for durable trade storage, independent of the on-disk snapshot.
type TradeRepository interface {
	Append(ctx context.Context, rec TradeRecord) error
}

// Journal owns trade history, daily stats, and bot state in memory,
// persisting every mutation through Store and, when configured, also
// appending each closed trade to a TradeRepository.
type Journal struct {
	mu         sync.Mutex
	trades     []TradeRecord
	dailyStats map[string]DailyStats
	botState   BotState
	store      Store
	repo       TradeRepository
	now        func() time.Time
}

// New constructs a Journal, loading any existing snapshot from store.
// A nil repo is valid — the journal then persists only to store.
func New(store Store, repo TradeRepository, now func() time.Time) *Journal {
	j := &Journal{
		dailyStats: make(map[string]DailyStats),
		botState:   BotState{StartedAt: now()},
		store:      store,
		repo:       repo,
		now:        now,
	}

	if snap, err := store.Load(); err == nil && snap != nil {
		j.trades = snap.Trades
		if snap.DailyStats != nil {
			j.dailyStats = snap.DailyStats
		}
		j.botState = snap.BotState
	}

	return j
}

// RecordTrade appends a completed trade, updates its day's stats, and
// persists the snapshot. If a TradeRepository is configured the trade
// is also appended there; a repository failure is swallowed (per
// spec.md §7, persistence failure is a DataError that must not abort
// the tick) and does not prevent the in-memory/on-disk record.
func (j *Journal) RecordTrade(ctx context.Context, trade TradeRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.trades = append(j.trades, trade)
	j.botState.TotalTrades = len(j.trades)

	day := trade.ExitTime.UTC().Format("2006-01-02")
	stats := j.dailyStats[day]
	stats.Trades++
	stats.PnL += trade.PnLPercent
	if trade.PnLPercent > 0 {
		stats.Wins++
	} else if trade.PnLPercent < 0 {
		stats.Losses++
	}
	j.dailyStats[day] = stats

	if j.repo != nil {
		_ = j.repo.Append(ctx, trade)
	}

	return j.save()
}

// GetDailyStats returns the stats recorded for date (YYYY-MM-DD); an
// unrecorded date returns a zero-value DailyStats.
func (j *Journal) GetDailyStats(date string) DailyStats {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.dailyStats[date]
}

// LogError records a runtime error, bounded to the most recent 100.
func (j *Journal) LogError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.botState.Errors = append(j.botState.Errors, ErrorEntry{Time: j.now(), Error: err})
	if len(j.botState.Errors) > errorHistoryLimit {
		j.botState.Errors = j.botState.Errors[len(j.botState.Errors)-errorHistoryLimit:]
	}
	_ = j.save()
}

// UpdateLastRun stamps the bot_state.last_run field to now.
func (j *Journal) UpdateLastRun() {
	j.mu.Lock()
	defer j.mu.Unlock()
	at := j.now()
	j.botState.LastRun = &at
	_ = j.save()
}

// AllTrades returns every recorded trade, oldest first.
func (j *Journal) AllTrades() []TradeRecord {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]TradeRecord, len(j.trades))
	copy(out, j.trades)
	return out
}

// RecentTrades returns up to the last n trades, oldest first.
func (j *Journal) RecentTrades(n int) []TradeRecord {
	j.mu.Lock()
	defer j.mu.Unlock()
	if n > len(j.trades) {
		n = len(j.trades)
	}
	start := len(j.trades) - n
	out := make([]TradeRecord, n)
	copy(out, j.trades[start:])
	return out
}

// save must be called with j.mu held.
func (j *Journal) save() error {
	return j.store.Save(Snapshot{
		Trades:     j.trades,
		DailyStats: j.dailyStats,
		BotState:   j.botState,
		SavedAt:    j.now(),
	})
}
