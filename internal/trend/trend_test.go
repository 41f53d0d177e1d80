package trend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tradecore/internal/ohlcv"
)

func buildCandles(n int, start, step float64) []ohlcv.Candle {
	out := make([]ohlcv.Candle, n)
	base := time.Now().UTC()
	price := start
	for i := 0; i < n; i++ {
		out[i] = ohlcv.Candle{Timestamp: base.Add(time.Duration(i) * time.Hour), Close: price}
		price += step
	}
	return out
}

func TestDetectBullishOnSteadyRise(t *testing.T) {
	candles := buildCandles(250, 100, 0.5)
	assert.Equal(t, Bullish, Detect(candles, DefaultConfig()))
}

func TestDetectBearishOnSteadyFall(t *testing.T) {
	candles := buildCandles(250, 500, -0.5)
	assert.Equal(t, Bearish, Detect(candles, DefaultConfig()))
}

func TestDetectNeutralOnInsufficientData(t *testing.T) {
	candles := buildCandles(1, 100, 1)
	assert.Equal(t, Neutral, Detect(candles, DefaultConfig()))
}

func TestDetectNeutralOnFlatPrice(t *testing.T) {
	candles := buildCandles(250, 100, 0)
	assert.Equal(t, Neutral, Detect(candles, DefaultConfig()))
}

func TestDetectUsesConfiguredPeriods(t *testing.T) {
	candles := buildCandles(30, 100, 0.5)
	assert.Equal(t, Neutral, Detect(candles, DefaultConfig()))
	assert.Equal(t, Bullish, Detect(candles, Config{FastPeriod: 5, SlowPeriod: 20}))
}
