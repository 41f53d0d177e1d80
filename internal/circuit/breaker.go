// Package circuit implements the process-wide trading circuit breaker: a
// latch over SystemState predicates that only an authenticated admin
// reset can clear, grounded on risk/circuit_breaker.py. The mutex-guarded
// struct and OnTrip/OnReset callback registration are carried over from
// the teacher's internal/circuit/breaker.go idiom; the trip-predicate set
// and manual-reset semantics are replaced to match this module's system.
package circuit

import (
	"sync"
	"time"
)

// TripReason identifies which predicate tripped the breaker.
type TripReason string

const (
	ReasonEmergencyDrawdown TripReason = "EMERGENCY_DRAWDOWN"
	ReasonSentinelCritical  TripReason = "SENTINEL_CRITICAL"
	ReasonAPIFailures       TripReason = "API_FAILURES"
	ReasonBalanceMismatch   TripReason = "BALANCE_MISMATCH"
)

// Config holds the trip thresholds, with the original's defaults.
type Config struct {
	EmergencyDrawdownPercent  float64
	MaxAPIFailures            int
	BalanceTolerancePercent   float64
}

// DefaultConfig mirrors CircuitBreakerConfig's dataclass defaults.
func DefaultConfig() Config {
	return Config{
		EmergencyDrawdownPercent: 10.0,
		MaxAPIFailures:           5,
		BalanceTolerancePercent:  1.0,
	}
}

// SentinelStatus is the subset of the advisory Sentinel's status the
// breaker reacts to.
type SentinelStatus string

const (
	SentinelOK       SentinelStatus = "OK"
	SentinelWarning  SentinelStatus = "WARNING"
	SentinelCritical SentinelStatus = "CRITICAL"
)

// SystemState is the snapshot the breaker's predicates evaluate.
type SystemState struct {
	DrawdownPercent            float64
	SentinelStatus             SentinelStatus
	SentinelReason             string
	APIConsecutiveFailures     int
	BalanceDiscrepancyPercent  float64
}

// AdminVerifier authenticates a manual reset request. Satisfied by
// internal/auth's JWTManager or StaticTokenVerifier.
type AdminVerifier interface {
	Verify(token, purpose string) bool
}

const resetPurpose = "circuit_breaker_reset"

// Breaker is a latch: once tripped, CheckAndTrip keeps returning true
// until Reset succeeds.
type Breaker struct {
	mu            sync.RWMutex
	cfg           Config
	verifier      AdminVerifier
	tripped       bool
	tripReason    TripReason
	tripTimestamp time.Time
	onTrip        func(reason TripReason, at time.Time)
	onReset       func()
}

// New constructs a closed breaker. verifier may be nil, in which case
// Reset always fails (fail-safe: no verifier configured means no reset
// path).
func New(cfg Config, verifier AdminVerifier) *Breaker {
	return &Breaker{cfg: cfg, verifier: verifier}
}

// OnTrip registers a callback fired the instant the breaker trips.
func (b *Breaker) OnTrip(handler func(reason TripReason, at time.Time)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onTrip = handler
}

// OnReset registers a callback fired on a successful manual reset.
func (b *Breaker) OnReset(handler func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onReset = handler
}

// IsTripped reports the current latch state.
func (b *Breaker) IsTripped() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tripped
}

// CheckAndTrip evaluates the trip predicates in fixed order against
// state. If already tripped, it returns true idempotently without
// re-evaluating (matching the original's is_tripped short-circuit).
func (b *Breaker) CheckAndTrip(state SystemState) bool {
	b.mu.Lock()
	if b.tripped {
		b.mu.Unlock()
		return true
	}

	reason, trip := evaluate(state, b.cfg)
	if !trip {
		b.mu.Unlock()
		return false
	}

	b.tripped = true
	b.tripReason = reason
	b.tripTimestamp = time.Now().UTC()
	onTrip := b.onTrip
	at := b.tripTimestamp
	b.mu.Unlock()

	if onTrip != nil {
		onTrip(reason, at)
	}
	return true
}

func evaluate(state SystemState, cfg Config) (TripReason, bool) {
	switch {
	case state.DrawdownPercent >= cfg.EmergencyDrawdownPercent:
		return ReasonEmergencyDrawdown, true
	case state.SentinelStatus == SentinelCritical:
		return ReasonSentinelCritical, true
	case state.APIConsecutiveFailures >= cfg.MaxAPIFailures:
		return ReasonAPIFailures, true
	case state.BalanceDiscrepancyPercent > cfg.BalanceTolerancePercent:
		return ReasonBalanceMismatch, true
	default:
		return "", false
	}
}

// TripInfo reports the current trip reason and timestamp, zero values if
// not tripped.
func (b *Breaker) TripInfo() (TripReason, time.Time) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tripReason, b.tripTimestamp
}

// ManualReset clears the latch if adminToken authenticates for the
// circuit-breaker-reset purpose. This is the only transition out of
// TRIPPED.
func (b *Breaker) ManualReset(adminToken string) bool {
	b.mu.Lock()
	if b.verifier == nil || !b.verifier.Verify(adminToken, resetPurpose) {
		b.mu.Unlock()
		return false
	}

	b.tripped = false
	b.tripReason = ""
	b.tripTimestamp = time.Time{}
	onReset := b.onReset
	b.mu.Unlock()

	if onReset != nil {
		onReset()
	}
	return true
}
