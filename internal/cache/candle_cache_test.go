package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCandleKeyFormatsSymbolAndTimeframe(t *testing.T) {
	assert.Equal(t, "candles:BTCUSDT:5m", candleKey("BTCUSDT", "5m"))
}

func TestNewCacheDegradesGracefullyWithoutRedis(t *testing.T) {
	cc := New(Config{Address: "127.0.0.1:1"}, 0)
	assert.False(t, cc.IsHealthy())

	candles, ok := cc.GetCandles(context.Background(), "BTCUSDT", "5m")
	assert.False(t, ok)
	assert.Nil(t, candles)
}
