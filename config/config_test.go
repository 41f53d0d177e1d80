package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadAppliesDefaultsWithoutEnv(t *testing.T) {
	cfg := Load(testLogger())
	assert.Equal(t, 1.0, cfg.Risk.MaxRiskPerTradePercent)
	assert.Equal(t, 6, cfg.Risk.MaxTradesPerDay)
	assert.Equal(t, 200, cfg.Signal.EMASlow)
	assert.True(t, cfg.PaperTrading)
}

func TestLoadClampsValueAboveAbsoluteCap(t *testing.T) {
	os.Setenv("MAX_RISK_PER_TRADE", "99")
	defer os.Unsetenv("MAX_RISK_PER_TRADE")

	cfg := Load(testLogger())
	assert.Equal(t, capMaxRiskPerTradePercent, cfg.Risk.MaxRiskPerTradePercent)
}

func TestLoadPassesThroughValueUnderCap(t *testing.T) {
	os.Setenv("MAX_OPEN_POSITIONS", "1")
	defer os.Unsetenv("MAX_OPEN_POSITIONS")

	cfg := Load(testLogger())
	assert.Equal(t, 1, cfg.Risk.MaxOpenPositions)
}

func TestHardRiskLimitsConvertsConfig(t *testing.T) {
	cfg := Load(testLogger())
	limits := cfg.HardRiskLimits()
	assert.Equal(t, cfg.Risk.MaxRiskPerTradePercent, limits.MaxRiskPerTradePercent)
	assert.Equal(t, 0.5, limits.MinRiskPerTradePercent)
}

func TestLoadClampsMaxPositionHoldHoursAboveCap(t *testing.T) {
	os.Setenv("MAX_POSITION_HOLD_HOURS", "100000")
	defer os.Unsetenv("MAX_POSITION_HOLD_HOURS")

	cfg := Load(testLogger())
	assert.Equal(t, capMaxPositionHoldHours, cfg.Loop.MaxPositionHoldHours)
}

func TestLoadClampsMinTimeBetweenTradesBelowFloor(t *testing.T) {
	os.Setenv("MIN_TIME_BETWEEN_TRADES", "0")
	defer os.Unsetenv("MIN_TIME_BETWEEN_TRADES")

	cfg := Load(testLogger())
	assert.Equal(t, capMinTimeBetweenTradesSeconds, cfg.Safety.MinTimeBetweenTradesSeconds)
}

func TestLoadPassesThroughMinTimeBetweenTradesAboveFloor(t *testing.T) {
	os.Setenv("MIN_TIME_BETWEEN_TRADES", "600")
	defer os.Unsetenv("MIN_TIME_BETWEEN_TRADES")

	cfg := Load(testLogger())
	assert.Equal(t, 600, cfg.Safety.MinTimeBetweenTradesSeconds)
}
