package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"

	"tradecore/internal/ohlcv"
)

func TestReverseRestoresChronologicalOrder(t *testing.T) {
	candles := []ohlcv.Candle{
		{Timestamp: time.Unix(3, 0)},
		{Timestamp: time.Unix(2, 0)},
		{Timestamp: time.Unix(1, 0)},
	}
	reverse(candles)
	assert.Equal(t, time.Unix(1, 0), candles[0].Timestamp)
	assert.Equal(t, time.Unix(3, 0), candles[2].Timestamp)
}

func TestReverseHandlesEmptyAndSingleElement(t *testing.T) {
	assert.NotPanics(t, func() { reverse(nil) })
	single := []ohlcv.Candle{{Open: 1}}
	reverse(single)
	assert.Equal(t, 1.0, single[0].Open)
}

func TestIsNoRowsDetectsPgxSentinel(t *testing.T) {
	assert.True(t, isNoRows(pgx.ErrNoRows))
	assert.True(t, isNoRows(errors.Join(errors.New("wrapped"), pgx.ErrNoRows)))
	assert.False(t, isNoRows(errors.New("some other error")))
}
