// Package orchestrator sequences one trading tick end to end: emergency
// checks, data ingestion, indicators and trend, the advisory committee,
// exit management for every open position, entry evaluation and sizing,
// and trade-state persistence. Grounded on main.py's run_cycle and on
// spec.md §4.11/§5's ordering and single-writer guarantees; wired the
// way the teacher's cmd/bot wires its own tick loop around a central
// struct of collaborators.
package orchestrator

import (
	"context"
	"time"

	"tradecore/internal/advisory"
	"tradecore/internal/cache"
	"tradecore/internal/circuit"
	"tradecore/internal/events"
	"tradecore/internal/exchange"
	"tradecore/internal/indicator"
	"tradecore/internal/journal"
	"tradecore/internal/killswitch"
	"tradecore/internal/logging"
	"tradecore/internal/ohlcv"
	"tradecore/internal/position"
	"tradecore/internal/repository"
	"tradecore/internal/risk"
	"tradecore/internal/safety"
	"tradecore/internal/signal"
	"tradecore/internal/trend"
)

// Config holds the knobs Tick and Run need, converted from the
// process config.Config by the caller (avoids an import cycle into
// config).
type Config struct {
	Symbol               string
	IntervalSeconds      int
	EMAFast              int
	EMASlow              int
	EMAPullback          int
	RSIPeriod            int
	ATRPeriod            int
	ATRStopMultiplier    float64
	MaxPositionHoldHours float64
	RiskLimits           risk.HardRiskLimits
	SafetyCfg            safety.Config
}

// trendConfig converts the orchestrator's flat Config into the trend
// detector's tunable periods, sourced from config.SignalConfig's
// EMA_FAST/EMA_SLOW keys per spec.md §6.
func (c Config) trendConfig() trend.Config {
	return trend.Config{FastPeriod: c.EMAFast, SlowPeriod: c.EMASlow}
}

// signalConfig converts the orchestrator's flat Config into the Entry
// Evaluator's tunable periods and stop/take-profit multiplier, sourced
// from config.SignalConfig's EMA_PULLBACK/RSI_PERIOD/ATR_PERIOD/
// ATR_STOP_MULTIPLIER keys per spec.md §6.
func (c Config) signalConfig() signal.Config {
	return signal.Config{
		EMAPullbackPeriod: c.EMAPullback,
		RSIPeriod:         c.RSIPeriod,
		ATRPeriod:         c.ATRPeriod,
		ATRStopMultiplier: c.ATRStopMultiplier,
	}
}

// Orchestrator owns every collaborator a tick needs and the single
// logical task that drives them. Nothing here is safe for concurrent
// Tick calls — by design, only one tick ever runs at a time.
type Orchestrator struct {
	cfg Config

	exchange   exchange.Adapter
	candles1h  *ohlcv.Buffer
	candles5m  *ohlcv.Buffer
	candleRepo repository.CandleRepository
	candleCache *cache.CandleCache

	positions *position.Manager
	breaker   *circuit.Breaker
	killSwitch *killswitch.Switch
	safety    *safety.Constraints
	session   safety.Session

	journal *journal.Journal
	bus     *events.Bus

	now          func() time.Time
	balanceAsset string
	peakBalance  float64
}

// New wires a fresh Orchestrator. Every collaborator is constructed by
// the caller (cmd/tradecore/main.go) and passed in, following the
// teacher's explicit-dependency-injection constructor style rather than
// a service locator.
func New(
	cfg Config,
	adapter exchange.Adapter,
	candles1h, candles5m *ohlcv.Buffer,
	candleRepo repository.CandleRepository,
	candleCache *cache.CandleCache,
	positions *position.Manager,
	breaker *circuit.Breaker,
	killSwitch *killswitch.Switch,
	safetyChecker *safety.Constraints,
	j *journal.Journal,
	bus *events.Bus,
	now func() time.Time,
	balanceAsset string,
) *Orchestrator {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Orchestrator{
		cfg:          cfg,
		exchange:     adapter,
		candles1h:    candles1h,
		candles5m:    candles5m,
		candleRepo:   candleRepo,
		candleCache:  candleCache,
		positions:    positions,
		breaker:      breaker,
		killSwitch:   killSwitch,
		safety:       safetyChecker,
		journal:      j,
		bus:          bus,
		now:          now,
		balanceAsset: balanceAsset,
	}
}

// Run drives the periodic loop until ctx is canceled, honoring
// spec.md's backpressure rule: the next tick begins `interval` after
// the previous tick ends, never queuing a missed tick.
func (o *Orchestrator) Run(ctx context.Context) {
	interval := time.Duration(o.cfg.IntervalSeconds) * time.Second

	for {
		select {
		case <-ctx.Done():
			o.shutdown(context.Background())
			return
		default:
		}

		tickCtx, _, traceLogger := logging.WithTrace(ctx)
		if err := o.Tick(tickCtx); err != nil {
			traceLogger.Error().Err(err).Msg("tick failed")
			o.journal.LogError(err.Error())
		}

		select {
		case <-ctx.Done():
			o.shutdown(context.Background())
			return
		case <-time.After(interval):
		}
	}
}

// shutdown drains open positions with market-close orders if the
// emergency stop is active or the circuit breaker is tripped, per
// spec.md §5's cancellation policy.
func (o *Orchestrator) shutdown(ctx context.Context) {
	if !o.killSwitch.Active() && !o.breaker.IsTripped() {
		return
	}
	for _, p := range o.positions.OpenPositions() {
		ticker, err := o.exchange.FetchTicker(ctx, p.Symbol)
		if err != nil {
			continue
		}
		o.closePosition(ctx, p.ID, ticker.Last, "SHUTDOWN_DRAIN")
	}
}

// Tick runs the eight-step sequence exactly once. It never panics out
// to the caller — every step's error is logged and swallowed so one bad
// tick cannot crash the loop, per spec.md §7's propagation policy.
func (o *Orchestrator) Tick(ctx context.Context) error {
	logger := logging.FromContext(ctx)

	// Steps 1-2: emergency short-circuits.
	if o.killSwitch.Active() {
		logger.Debug().Msg("tick skipped: emergency stop active")
		return nil
	}
	if o.breaker.IsTripped() {
		logger.Debug().Msg("tick skipped: circuit breaker tripped")
		return nil
	}

	// Step 3: fetch OHLCV, update buffers.
	candles1h, candles5m, err := o.fetchCandles(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("candle fetch failed, using buffered data")
	}

	// Step 4: indicators + trend.
	trendBias := trend.Detect(candles1h, o.cfg.trendConfig())
	o.bus.Publish(events.NewEvent(events.TrendDetected, "orchestrator", map[string]any{
		"bias": string(trendBias),
	}))

	// Step 5: advisory committee.
	verdict := o.runAdvisory(candles1h, candles5m)

	// Step 6: exit management for every open position, before entries.
	o.manageExits(ctx, candles5m)

	// Step 7: entry evaluation, sizing, risk gate, execution. The
	// account snapshot is taken only now, after exits are committed, so
	// the Hard Risk Validator observes post-exit consecutive-loss,
	// daily-PnL, and open-position counts per spec.md §5.
	acct := o.accountSnapshot(ctx)
	if o.positions.Count() < o.cfg.RiskLimits.MaxOpenPositions && verdict.Tradeable {
		o.evaluateEntry(ctx, candles5m, trendBias, verdict, acct)
	}

	// Step 8: trade state persistence.
	o.journal.UpdateLastRun()
	return nil
}

func (o *Orchestrator) fetchCandles(ctx context.Context) ([]ohlcv.Candle, []ohlcv.Candle, error) {
	candles1h, err1 := o.exchange.FetchOHLCV(ctx, o.cfg.Symbol, "1h", 200)
	if err1 == nil {
		o.candles1h.Extend(candles1h)
	}
	candles5m, err2 := o.exchange.FetchOHLCV(ctx, o.cfg.Symbol, "5m", 100)
	if err2 == nil {
		o.candles5m.Extend(candles5m)
		o.bus.Publish(events.NewEvent(events.CandleReceived, "orchestrator", map[string]any{
			"symbol": o.cfg.Symbol,
			"count":  len(candles5m),
		}))
	}

	if o.candleRepo != nil {
		if err1 == nil {
			_ = o.candleRepo.SaveCandles(ctx, o.cfg.Symbol, "1h", candles1h)
		}
		if err2 == nil {
			_ = o.candleRepo.SaveCandles(ctx, o.cfg.Symbol, "5m", candles5m)
		}
	}
	if o.candleCache != nil && err2 == nil {
		o.candleCache.SetCandles(ctx, o.cfg.Symbol, "5m", candles5m)
	}

	if err1 != nil {
		return o.candles1h.Snapshot(), o.candles5m.Snapshot(), err1
	}
	if err2 != nil {
		return o.candles1h.Snapshot(), o.candles5m.Snapshot(), err2
	}
	return o.candles1h.Snapshot(), o.candles5m.Snapshot(), nil
}

func (o *Orchestrator) runAdvisory(candles1h, candles5m []ohlcv.Candle) advisory.Verdict {
	closes1h := ohlcv.Closes(candles1h)
	highs1h := ohlcv.Highs(candles1h)
	lows1h := ohlcv.Lows(candles1h)

	regimeIn := advisory.RegimeInput{}
	if atr, err := indicator.ATR(highs1h, lows1h, closes1h, o.cfg.ATRPeriod); err == nil && len(atr) > 0 {
		latest, _ := indicator.Latest(atr)
		regimeIn.ATRPercentile = indicator.VolatilityPercentile(atr, latest)
	}
	if ema50, err := indicator.EMA(closes1h, 50); err == nil && len(ema50) > 0 {
		if ema200, err := indicator.EMA(closes1h, 200); err == nil && len(ema200) > 0 {
			fast, _ := indicator.Latest(ema50)
			slow, _ := indicator.Latest(ema200)
			if slow != 0 {
				regimeIn.EMASpreadPercent = (fast - slow) / slow * 100.0
			}
		}
	}
	if len(closes1h) > 0 {
		regimeIn.RecentPriceRange = priceRangePercent(closes1h)
	}

	governorIn := advisory.GovernorInput{
		DailyPnLPercent:   o.session.DailyPnLPercent,
		ConsecutiveLosses: o.positions.ConsecutiveLosses(),
		TradesToday:       o.session.TradesToday,
		MaxTradesPerDay:   o.cfg.RiskLimits.MaxTradesPerDay,
	}

	sentinelIn := advisory.SentinelInput{
		ExchangeStatus: "NORMAL",
	}

	return advisory.Analyze(regimeIn, governorIn, sentinelIn, o.bus)
}

func priceRangePercent(closes []float64) float64 {
	if len(closes) == 0 {
		return 0
	}
	high, low := closes[0], closes[0]
	for _, c := range closes {
		if c > high {
			high = c
		}
		if c < low {
			low = c
		}
	}
	if low == 0 {
		return 0
	}
	return (high - low) / low * 100.0
}
