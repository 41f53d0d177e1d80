package safety

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tradecore/internal/clock"
)

func TestCheckAllPassesCleanRequest(t *testing.T) {
	c := New(DefaultConfig(), clock.Fixed(time.Now().UTC()))
	session := Session{}
	req := Request{Symbol: "BTCUSDT", NotionalUSD: 100, AccountBalance: 10000, CurrentDrawdown: 0}

	results := c.CheckAll(session, req)
	assert.True(t, AllPassed(results))
}

func TestCheckDailyTradeLimitBlocks(t *testing.T) {
	c := New(DefaultConfig(), clock.Fixed(time.Now().UTC()))
	session := Session{TradesToday: 6}
	req := Request{Symbol: "BTCUSDT", NotionalUSD: 100, AccountBalance: 10000}

	results := c.CheckAll(session, req)
	assert.False(t, AllPassed(results))
}

func TestCheckTimeBetweenTradesBlocksTooSoon(t *testing.T) {
	now := time.Now().UTC()
	c := New(DefaultConfig(), clock.Fixed(now))
	session := Session{LastTradeTime: now.Add(-10 * time.Second)}
	req := Request{Symbol: "BTCUSDT", NotionalUSD: 100, AccountBalance: 10000}

	results := c.CheckAll(session, req)
	assert.False(t, AllPassed(results))
}

func TestCheckCorrelationExposureBlocksConcentration(t *testing.T) {
	c := New(DefaultConfig(), clock.Fixed(time.Now().UTC()))
	session := Session{}
	req := Request{
		Symbol:         "BTCUSDT",
		NotionalUSD:    4000,
		AccountBalance: 10000,
		OpenPositions:  []OpenPosition{{Symbol: "BTCUSDC", NotionalUSD: 4000}},
	}

	results := c.CheckAll(session, req)
	assert.False(t, AllPassed(results))
}

func TestCheckPositionSizeBlocksOversizedPosition(t *testing.T) {
	c := New(DefaultConfig(), clock.Fixed(time.Now().UTC()))
	session := Session{}
	req := Request{Symbol: "BTCUSDT", NotionalUSD: 3000, AccountBalance: 10000}

	results := c.CheckAll(session, req)
	assert.False(t, AllPassed(results))
}

func TestManualResetDailyRequiresLongToken(t *testing.T) {
	assert.False(t, ManualResetDaily("short"))
	assert.True(t, ManualResetDaily("a-long-enough-token"))
}

func TestCheckHoldTimeFlagsOverdue(t *testing.T) {
	now := time.Now().UTC()
	c := New(DefaultConfig(), clock.Fixed(now))
	assert.True(t, c.CheckHoldTime(now.Add(-73*time.Hour)))
	assert.False(t, c.CheckHoldTime(now.Add(-10*time.Hour)))
}
