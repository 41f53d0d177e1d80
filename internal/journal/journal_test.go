package journal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	snap *Snapshot
}

func (m *memStore) Load() (*Snapshot, error) { return m.snap, nil }
func (m *memStore) Save(s Snapshot) error {
	m.snap = &s
	return nil
}

type memRepo struct {
	appended []TradeRecord
}

func (m *memRepo) Append(_ context.Context, rec TradeRecord) error {
	m.appended = append(m.appended, rec)
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestRecordTradeUpdatesDailyStatsAndRepository(t *testing.T) {
	now := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	store := &memStore{}
	repo := &memRepo{}
	j := New(store, repo, fixedClock(now))

	trade := TradeRecord{TradeID: "t1", Symbol: "BTCUSDT", ExitTime: now, PnLPercent: 1.5}
	require.NoError(t, j.RecordTrade(context.Background(), trade))

	stats := j.GetDailyStats("2026-07-31")
	assert.Equal(t, 1, stats.Trades)
	assert.Equal(t, 1, stats.Wins)
	assert.Equal(t, 1.5, stats.PnL)

	assert.Len(t, repo.appended, 1)
	assert.Len(t, j.AllTrades(), 1)
	assert.NotNil(t, store.snap)
}

func TestRecordTradeLossIncrementsLossCount(t *testing.T) {
	now := time.Now().UTC()
	j := New(&memStore{}, nil, fixedClock(now))

	require.NoError(t, j.RecordTrade(context.Background(), TradeRecord{ExitTime: now, PnLPercent: -2.0}))
	stats := j.GetDailyStats(now.Format("2006-01-02"))
	assert.Equal(t, 1, stats.Losses)
}

func TestLogErrorCapsHistoryAtLimit(t *testing.T) {
	j := New(&memStore{}, nil, fixedClock(time.Now().UTC()))
	for i := 0; i < errorHistoryLimit+10; i++ {
		j.LogError("boom")
	}
	assert.Len(t, j.botState.Errors, errorHistoryLimit)
}

func TestRecentTradesReturnsLastNInOrder(t *testing.T) {
	now := time.Now().UTC()
	j := New(&memStore{}, nil, fixedClock(now))
	for i := 0; i < 5; i++ {
		require.NoError(t, j.RecordTrade(context.Background(), TradeRecord{TradeID: string(rune('a' + i)), ExitTime: now}))
	}

	recent := j.RecentTrades(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "d", recent[0].TradeID)
	assert.Equal(t, "e", recent[1].TradeID)
}

func TestNewRestoresFromExistingSnapshot(t *testing.T) {
	existing := Snapshot{
		Trades:     []TradeRecord{{TradeID: "old"}},
		DailyStats: map[string]DailyStats{"2026-01-01": {Trades: 1}},
		BotState:   BotState{TotalTrades: 1},
	}
	store := &memStore{snap: &existing}
	j := New(store, nil, fixedClock(time.Now().UTC()))

	assert.Len(t, j.AllTrades(), 1)
	assert.Equal(t, 1, j.GetDailyStats("2026-01-01").Trades)
}
