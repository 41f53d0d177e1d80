package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradecore/internal/circuit"
	"tradecore/internal/clock"
	"tradecore/internal/events"
	"tradecore/internal/exchange"
	"tradecore/internal/journal"
	"tradecore/internal/killswitch"
	"tradecore/internal/ohlcv"
	"tradecore/internal/position"
	"tradecore/internal/risk"
	"tradecore/internal/safety"
)

type memStore struct{ snap *journal.Snapshot }

func (m *memStore) Load() (*journal.Snapshot, error) { return m.snap, nil }
func (m *memStore) Save(s journal.Snapshot) error    { m.snap = &s; return nil }

func seedCandles(n int, base float64) []ohlcv.Candle {
	out := make([]ohlcv.Candle, n)
	t := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		out[i] = ohlcv.Candle{
			Timestamp: t.Add(time.Duration(i) * time.Hour),
			Open:      base, High: base + 1, Low: base - 1, Close: base, Volume: 10,
		}
	}
	return out
}

func newTestOrchestrator(t *testing.T, adapter exchange.Adapter, ks *killswitch.Switch, breaker *circuit.Breaker) *Orchestrator {
	t.Helper()
	candles1h, err := ohlcv.NewBuffer(200)
	require.NoError(t, err)
	candles5m, err := ohlcv.NewBuffer(100)
	require.NoError(t, err)

	j := journal.New(&memStore{}, nil, func() time.Time { return time.Now().UTC() })

	cfg := Config{
		Symbol:               "BTCUSDT",
		IntervalSeconds:      60,
		EMAFast:              50,
		EMASlow:              200,
		EMAPullback:          20,
		RSIPeriod:            14,
		ATRPeriod:            14,
		ATRStopMultiplier:    1.5,
		MaxPositionHoldHours: 72,
		RiskLimits:           risk.DefaultHardRiskLimits(),
	}

	return New(
		cfg,
		adapter,
		candles1h, candles5m,
		nil, nil,
		position.NewManager(),
		breaker,
		ks,
		safety.New(safety.DefaultConfig(), clock.Real),
		j,
		events.New(),
		func() time.Time { return time.Now().UTC() },
		"USDT",
	)
}

func TestTickSkipsWhenKillSwitchActive(t *testing.T) {
	ks := killswitch.New(nil)
	ks.Trigger("manual test halt", "operator", time.Now().UTC())
	breaker := circuit.New(circuit.DefaultConfig(), nil)

	ex := exchange.NewPaperExchange(exchange.PaperExchangeConfig{}, clock.Real, nil)
	o := newTestOrchestrator(t, ex, ks, breaker)

	require.NoError(t, o.Tick(context.Background()))
	assert.Empty(t, ex.Fills())
}

func TestTickSkipsWhenCircuitBreakerTripped(t *testing.T) {
	ks := killswitch.New(nil)
	breaker := circuit.New(circuit.DefaultConfig(), nil)
	breaker.CheckAndTrip(circuit.SystemState{APIConsecutiveFailures: 999})

	ex := exchange.NewPaperExchange(exchange.PaperExchangeConfig{}, clock.Real, nil)
	o := newTestOrchestrator(t, ex, ks, breaker)

	require.NoError(t, o.Tick(context.Background()))
	assert.Empty(t, ex.Fills())
}

func TestTickRunsFullCycleWithoutError(t *testing.T) {
	ks := killswitch.New(nil)
	breaker := circuit.New(circuit.DefaultConfig(), nil)

	ex := exchange.NewPaperExchange(exchange.PaperExchangeConfig{}, clock.Real, map[string]exchange.AssetBalance{
		"USDT": {Free: 10000, Total: 10000},
	})
	ex.SetPrice("BTCUSDT", 50000)
	ex.SeedCandles("BTCUSDT", "1h", seedCandles(210, 50000))
	ex.SeedCandles("BTCUSDT", "5m", seedCandles(110, 50000))

	o := newTestOrchestrator(t, ex, ks, breaker)

	require.NoError(t, o.Tick(context.Background()))
}

func TestShutdownDrainsOpenPositionsWhenKillSwitchActive(t *testing.T) {
	ks := killswitch.New(nil)
	breaker := circuit.New(circuit.DefaultConfig(), nil)

	ex := exchange.NewPaperExchange(exchange.PaperExchangeConfig{}, clock.Real, map[string]exchange.AssetBalance{
		"USDT": {Free: 10000, Total: 10000},
	})
	ex.SetPrice("BTCUSDT", 50000)

	o := newTestOrchestrator(t, ex, ks, breaker)
	pos := position.New("BTCUSDT", position.Long, 49000, 0.1, 48000, 50000, 51000, 500, time.Now().UTC())
	o.positions.Open(pos)

	ks.Trigger("test", "operator", time.Now().UTC())
	o.shutdown(context.Background())

	assert.Empty(t, o.positions.OpenPositions())
	assert.NotEmpty(t, ex.Fills())
}
