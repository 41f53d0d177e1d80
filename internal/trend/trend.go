// Package trend derives a bias from 1h candles using an EMA50/EMA200
// hysteresis band, grounded on strategy/trend_follower.py.
package trend

import (
	"tradecore/internal/indicator"
	"tradecore/internal/ohlcv"
)

// Bias is a derived, stateless trend classification.
type Bias string

const (
	Bullish Bias = "BULLISH"
	Bearish Bias = "BEARISH"
	Neutral Bias = "NEUTRAL"
)

const hysteresisFrac = 0.005

// Config holds the trend detector's tunable EMA periods, sourced from
// config.SignalConfig's EMA_FAST/EMA_SLOW keys per spec.md §6.
type Config struct {
	FastPeriod int
	SlowPeriod int
}

// DefaultConfig mirrors spec.md §6's EMA_FAST=50/EMA_SLOW=200 defaults.
func DefaultConfig() Config {
	return Config{FastPeriod: 50, SlowPeriod: 200}
}

// Detect computes Bias from 1h candles. Fewer than two closes, or either
// EMA coming back empty, yields Neutral.
func Detect(candles1h []ohlcv.Candle, cfg Config) Bias {
	closes := ohlcv.Closes(candles1h)
	if len(closes) < 2 {
		return Neutral
	}

	ema50, err := indicator.EMA(closes, cfg.FastPeriod)
	if err != nil || len(ema50) == 0 {
		return Neutral
	}
	ema200, err := indicator.EMA(closes, cfg.SlowPeriod)
	if err != nil || len(ema200) == 0 {
		return Neutral
	}

	latest50, _ := indicator.Latest(ema50)
	latest200, _ := indicator.Latest(ema200)
	threshold := latest200 * hysteresisFrac

	switch {
	case latest50 > latest200+threshold:
		return Bullish
	case latest50 < latest200-threshold:
		return Bearish
	default:
		return Neutral
	}
}
