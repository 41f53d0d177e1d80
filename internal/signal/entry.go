// Package signal implements the pullback entry gate and the staged-exit
// state machine, grounded on strategy/entry_logic.py and
// strategy/exit_logic.py. Both evaluators are pure: they read candles and
// a position snapshot and return a signal or nil, never mutating state
// themselves.
package signal

import (
	"math"

	"tradecore/internal/indicator"
	"tradecore/internal/ohlcv"
	"tradecore/internal/position"
	"tradecore/internal/trend"
)

// AIGateStatus is the advisory committee's tradeability gate.
type AIGateStatus string

const (
	GateOpen     AIGateStatus = "OPEN"
	GateCooldown AIGateStatus = "COOLDOWN"
	GateHalt     AIGateStatus = "HALT"
)

const (
	pullbackFrac = 0.003
	longRSIMin   = 45.0
	shortRSIMax  = 55.0
)

// Config holds the Entry Evaluator's tunable periods and ATR stop
// multiplier, sourced from config.SignalConfig's EMA_PULLBACK/
// RSI_PERIOD/ATR_PERIOD/ATR_STOP_MULTIPLIER keys per spec.md §6.
// TakeProfit1 uses the same multiplier as the stop and TakeProfit2 uses
// double it, preserving spec.md §4.4's 1.5/1.5/3.0 ATR relationship
// under a single configurable multiplier.
type Config struct {
	EMAPullbackPeriod int
	RSIPeriod         int
	ATRPeriod         int
	ATRStopMultiplier float64
}

// DefaultConfig mirrors spec.md §6's EMA_PULLBACK=20/RSI_PERIOD=14/
// ATR_PERIOD=14/ATR_STOP_MULTIPLIER=1.5 defaults.
func DefaultConfig() Config {
	return Config{
		EMAPullbackPeriod: 20,
		RSIPeriod:         14,
		ATRPeriod:         14,
		ATRStopMultiplier: 1.5,
	}
}

// EntrySignal is an actionable trade proposal. For LONG:
// stop_loss < entry_price < take_profit_1 < take_profit_2; mirrored for
// SHORT.
type EntrySignal struct {
	Side          position.Side
	EntryPrice    float64
	StopLoss      float64
	TakeProfit1   float64
	TakeProfit2   float64
	ATR           float64
}

// EvaluateEntry implements the spec's evaluate_entry contract: gated by
// the advisory status, trend bias, and open-position headroom, then a
// pullback-to-EMA20 proximity check, then an RSI+price confirmation split
// by trend direction.
func EvaluateEntry(candles5m []ohlcv.Candle, trendBias trend.Bias, gate AIGateStatus, currentPositions, maxPositions int, cfg Config) (*EntrySignal, error) {
	if gate != GateOpen {
		return nil, nil
	}
	if trendBias == trend.Neutral {
		return nil, nil
	}
	if currentPositions >= maxPositions {
		return nil, nil
	}

	closes := ohlcv.Closes(candles5m)
	highs := ohlcv.Highs(candles5m)
	lows := ohlcv.Lows(candles5m)

	ema20, err := indicator.EMA(closes, cfg.EMAPullbackPeriod)
	if err != nil || len(ema20) == 0 {
		return nil, nil
	}
	rsi, err := indicator.RSI(closes, cfg.RSIPeriod)
	if err != nil || len(rsi) == 0 {
		return nil, nil
	}
	atr, err := indicator.ATR(highs, lows, closes, cfg.ATRPeriod)
	if err != nil || len(atr) == 0 {
		return nil, nil
	}

	price, _ := indicator.Latest(closes)
	curEMA20, _ := indicator.Latest(ema20)
	curRSI, _ := indicator.Latest(rsi)
	curATR, _ := indicator.Latest(atr)

	pullbackThreshold := curEMA20 * pullbackFrac
	if math.Abs(price-curEMA20) >= pullbackThreshold {
		return nil, nil
	}

	stopMult := cfg.ATRStopMultiplier
	tp2Mult := 2.0 * stopMult

	switch trendBias {
	case trend.Bullish:
		if curRSI > longRSIMin && price > curEMA20 {
			return &EntrySignal{
				Side:        position.Long,
				EntryPrice:  price,
				StopLoss:    price - stopMult*curATR,
				TakeProfit1: price + stopMult*curATR,
				TakeProfit2: price + tp2Mult*curATR,
				ATR:         curATR,
			}, nil
		}
	case trend.Bearish:
		if curRSI < shortRSIMax && price < curEMA20 {
			return &EntrySignal{
				Side:        position.Short,
				EntryPrice:  price,
				StopLoss:    price + stopMult*curATR,
				TakeProfit1: price - stopMult*curATR,
				TakeProfit2: price - tp2Mult*curATR,
				ATR:         curATR,
			}, nil
		}
	}
	return nil, nil
}
