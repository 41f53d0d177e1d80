package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradecore/internal/auth"
)

// S6 — breaker trips on drawdown.
func TestCheckAndTripOnEmergencyDrawdown(t *testing.T) {
	b := New(DefaultConfig(), auth.NonEmptyVerifier{})

	tripped := b.CheckAndTrip(SystemState{DrawdownPercent: 10.0})
	require.True(t, tripped)

	reason, _ := b.TripInfo()
	assert.Equal(t, ReasonEmergencyDrawdown, reason)

	assert.False(t, b.ManualReset(""))
	assert.True(t, b.IsTripped())

	assert.True(t, b.ManualReset("x"))
	assert.False(t, b.IsTripped())
}

func TestCheckAndTripIdempotentOnceTripped(t *testing.T) {
	b := New(DefaultConfig(), auth.NonEmptyVerifier{})
	assert.True(t, b.CheckAndTrip(SystemState{SentinelStatus: SentinelCritical}))

	reasonBefore, tsBefore := b.TripInfo()
	assert.True(t, b.CheckAndTrip(SystemState{})) // clean state, still latched
	reasonAfter, tsAfter := b.TripInfo()

	assert.Equal(t, reasonBefore, reasonAfter)
	assert.Equal(t, tsBefore, tsAfter)
}

func TestCheckAndTripOnAPIFailures(t *testing.T) {
	b := New(DefaultConfig(), auth.NonEmptyVerifier{})
	assert.False(t, b.CheckAndTrip(SystemState{APIConsecutiveFailures: 4}))
	assert.True(t, b.CheckAndTrip(SystemState{APIConsecutiveFailures: 5}))

	reason, _ := b.TripInfo()
	assert.Equal(t, ReasonAPIFailures, reason)
}

func TestCheckAndTripOnBalanceMismatch(t *testing.T) {
	b := New(DefaultConfig(), auth.NonEmptyVerifier{})
	assert.False(t, b.CheckAndTrip(SystemState{BalanceDiscrepancyPercent: 1.0}))
	assert.True(t, b.CheckAndTrip(SystemState{BalanceDiscrepancyPercent: 1.01}))
}

func TestManualResetFailsWithoutVerifier(t *testing.T) {
	b := New(DefaultConfig(), nil)
	b.CheckAndTrip(SystemState{DrawdownPercent: 20})
	assert.False(t, b.ManualReset("anything"))
	assert.True(t, b.IsTripped())
}

func TestOnTripCallbackFires(t *testing.T) {
	b := New(DefaultConfig(), auth.NonEmptyVerifier{})
	var gotReason TripReason
	b.OnTrip(func(reason TripReason, _ time.Time) {
		gotReason = reason
	})

	b.CheckAndTrip(SystemState{DrawdownPercent: 15})
	assert.Equal(t, ReasonEmergencyDrawdown, gotReason)
}
