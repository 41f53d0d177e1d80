package ohlcv

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferEvictsOldestOnOverflow(t *testing.T) {
	buf, err := NewBuffer(3)
	require.NoError(t, err)

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		buf.Append(Candle{Timestamp: base.Add(time.Duration(i) * time.Minute), Close: float64(i)})
	}

	snap := buf.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, 2.0, snap[0].Close)
	assert.Equal(t, 3.0, snap[1].Close)
	assert.Equal(t, 4.0, snap[2].Close)
}

func TestBufferLatestEmpty(t *testing.T) {
	buf, err := NewBuffer(2)
	require.NoError(t, err)
	_, ok := buf.Latest()
	assert.False(t, ok)
}

func TestNewBufferRejectsNonPositiveMaxLen(t *testing.T) {
	_, err := NewBuffer(0)
	assert.Error(t, err)
}

func TestFromRawConvertsMillis(t *testing.T) {
	c := FromRaw(1700000000000, 1, 2, 0.5, 1.5, 100)
	assert.Equal(t, int64(1700000000), c.Timestamp.Unix())
}
