package exchange

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradecore/internal/clock"
	"tradecore/internal/ohlcv"
)

func TestCreateOrderMarketFillsAtSeededPrice(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	ex := NewPaperExchange(PaperExchangeConfig{}, clock.Fixed(now), nil)
	ex.SetPrice("BTCUSDT", 50000)

	res, err := ex.CreateOrder(context.Background(), "BTCUSDT", OrderMarket, Buy, 0.1, OrderParams{})
	require.NoError(t, err)
	assert.Equal(t, "paper-1", res.ID)
	assert.Equal(t, 50000.0, res.AveragePrice)
	assert.Equal(t, StatusClosed, res.Status)
	assert.Equal(t, 0.1, res.FilledAmount)

	fills := ex.Fills()
	require.Len(t, fills, 1)
	assert.Equal(t, now, fills[0].Timestamp)
}

func TestCreateOrderMarketWithoutSeededPriceFails(t *testing.T) {
	ex := NewPaperExchange(PaperExchangeConfig{}, clock.Real, nil)
	_, err := ex.CreateOrder(context.Background(), "ETHUSDT", OrderMarket, Sell, 1, OrderParams{})
	assert.Error(t, err)
}

func TestCreateOrderLimitUsesRequestedPrice(t *testing.T) {
	ex := NewPaperExchange(PaperExchangeConfig{}, clock.Real, nil)
	res, err := ex.CreateOrder(context.Background(), "BTCUSDT", OrderLimit, Buy, 1, OrderParams{Price: 49000})
	require.NoError(t, err)
	assert.Equal(t, 49000.0, res.AveragePrice)
}

func TestCreateOrderChargesConfiguredFee(t *testing.T) {
	ex := NewPaperExchange(PaperExchangeConfig{FeeRatePercent: 0.1}, clock.Real, nil)
	ex.SetPrice("BTCUSDT", 1000)

	_, err := ex.CreateOrder(context.Background(), "BTCUSDT", OrderMarket, Buy, 2, OrderParams{})
	require.NoError(t, err)

	fills := ex.Fills()
	require.Len(t, fills, 1)
	assert.InDelta(t, 2.0, fills[0].Fee, 0.0001)
}

func TestCreateOrderRejectsNonPositiveAmount(t *testing.T) {
	ex := NewPaperExchange(PaperExchangeConfig{}, clock.Real, nil)
	_, err := ex.CreateOrder(context.Background(), "BTCUSDT", OrderMarket, Buy, 0, OrderParams{})
	assert.Error(t, err)
}

func TestFetchBalanceReturnsDefensiveCopy(t *testing.T) {
	ex := NewPaperExchange(PaperExchangeConfig{}, clock.Real, map[string]AssetBalance{
		"USDT": {Free: 1000, Total: 1000},
	})

	balances, err := ex.FetchBalance(context.Background())
	require.NoError(t, err)
	balances["USDT"] = AssetBalance{Free: 0}

	fresh, _ := ex.FetchBalance(context.Background())
	assert.Equal(t, 1000.0, fresh["USDT"].Free)
}

func TestFetchOHLCVRespectsLimit(t *testing.T) {
	ex := NewPaperExchange(PaperExchangeConfig{}, clock.Real, nil)
	candles := []ohlcv.Candle{{Close: 1}, {Close: 2}, {Close: 3}}
	ex.SeedCandles("BTCUSDT", "1h", candles)

	got, err := ex.FetchOHLCV(context.Background(), "BTCUSDT", "1h", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 2.0, got[0].Close)
	assert.Equal(t, 3.0, got[1].Close)
}

func TestCancelOrderAlwaysSucceeds(t *testing.T) {
	ex := NewPaperExchange(PaperExchangeConfig{}, clock.Real, nil)
	ok, err := ex.CancelOrder(context.Background(), "anything", "BTCUSDT")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFetchTickerReturnsSeededPrice(t *testing.T) {
	ex := NewPaperExchange(PaperExchangeConfig{}, clock.Real, nil)
	ex.SetPrice("BTCUSDT", 42000)
	ticker, err := ex.FetchTicker(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, 42000.0, ticker.Last)
}
