// Package indicator computes the technical indicators the trend detector
// and signal evaluators are built on: EMA (simple-average seed, smoothing
// factor 2/(period+1)) and RSI and ATR (Wilder seeding and smoothing).
// Every function is a pure slice-in/slice-out
// transform with no shared state, grounded on
// paid_trading_bot/data/indicators.py rather than the teacher's
// internal/strategy/indicators.go, whose MACD/ADX are scaled
// approximations unsuited to this module's exact invariants.
package indicator

import (
	"math"

	"tradecore/internal/xerrors"
)

// EMA computes the exponential moving average of values over period,
// seeding with a simple average of the first `period` values (or of all
// of them, if fewer than period are supplied, in which case that mean is
// the only value returned) the way the original does.
func EMA(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, xerrors.NewDataError("ema: period must be > 0", nil)
	}
	if len(values) == 0 {
		return nil, nil
	}

	k := 2.0 / (float64(period) + 1.0)

	var seed float64
	var startIdx int
	if len(values) < period {
		seed = mean(values)
		startIdx = len(values)
	} else {
		seed = mean(values[:period])
		startIdx = period
	}

	out := make([]float64, 0, len(values)-startIdx+1)
	out = append(out, seed)
	prev := seed
	for _, v := range values[startIdx:] {
		prev = (v-prev)*k + prev
		out = append(out, prev)
	}
	return out, nil
}

// Latest returns the last element of an indicator series, or (0, false) if
// it is empty. The entry evaluator, the trend detector and the
// orchestrator read the last value of an indicator series through it.
func Latest(series []float64) (float64, bool) {
	if len(series) == 0 {
		return 0, false
	}
	return series[len(series)-1], true
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// RSI computes the relative strength index over period using Wilder
// smoothing of average gains/losses. Returns nil if fewer than period+1
// closes are supplied.
func RSI(closes []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, xerrors.NewDataError("rsi: period must be > 0", nil)
	}
	if len(closes) < 2 {
		return nil, nil
	}

	gains := make([]float64, 0, len(closes)-1)
	losses := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		gains = append(gains, math.Max(delta, 0))
		losses = append(losses, math.Max(-delta, 0))
	}

	if len(gains) < period {
		return nil, nil
	}

	avgGain := sumN(gains, period) / float64(period)
	avgLoss := sumN(losses, period) / float64(period)

	out := make([]float64, 0, len(gains)-period+1)
	out = append(out, rsiValue(avgGain, avgLoss))

	for i := period; i < len(gains); i++ {
		avgGain = (avgGain*float64(period-1) + gains[i]) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + losses[i]) / float64(period)
		out = append(out, rsiValue(avgGain, avgLoss))
	}
	return out, nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}

func sumN(values []float64, n int) float64 {
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += values[i]
	}
	return sum
}

// ATR computes the average true range over period using Wilder smoothing
// of the true range series. highs, lows, and closes must be the same
// length.
func ATR(highs, lows, closes []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, xerrors.NewDataError("atr: period must be > 0", nil)
	}
	if len(highs) != len(lows) || len(highs) != len(closes) {
		return nil, xerrors.NewDataError("atr: highs/lows/closes length mismatch", nil)
	}
	if len(closes) < 2 {
		return nil, nil
	}

	trueRanges := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		highLow := highs[i] - lows[i]
		highPrevClose := math.Abs(highs[i] - closes[i-1])
		lowPrevClose := math.Abs(lows[i] - closes[i-1])
		trueRanges = append(trueRanges, math.Max(highLow, math.Max(highPrevClose, lowPrevClose)))
	}

	if len(trueRanges) < period {
		return nil, nil
	}

	seed := sumN(trueRanges, period) / float64(period)
	out := make([]float64, 0, len(trueRanges)-period+1)
	out = append(out, seed)

	prev := seed
	for i := period; i < len(trueRanges); i++ {
		prev = (prev*float64(period-1) + trueRanges[i]) / float64(period)
		out = append(out, prev)
	}
	return out, nil
}

// VolatilityPercentile buckets the latest ATR value's position within the
// trailing window of ATR values supplied, expressed 0-100. Used by the
// advisory regime classifier's `current_atr_percentile` input. Returns 0
// for an empty window.
func VolatilityPercentile(window []float64, latest float64) float64 {
	if len(window) == 0 {
		return 0
	}
	below := 0
	for _, v := range window {
		if v <= latest {
			below++
		}
	}
	return float64(below) / float64(len(window)) * 100.0
}
