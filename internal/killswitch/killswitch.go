// Package killswitch implements the manually triggerable emergency stop:
// a kill switch orthogonal to the circuit breaker (an operator may flip
// it even when every metric is fine). Grounded on
// src/risk/emergency_stop.py, which the teacher has no equivalent for —
// its circuit breaker conflates both concerns — so this package is
// adapted straight from the original rather than from teacher code.
package killswitch

import (
	"sync"
	"time"
)

const historyLimit = 100

// Event is one trigger or release, kept for audit.
type Event struct {
	At         time.Time
	Action     string // "TRIGGER" or "RELEASE"
	Reason     string
	ActorToken string
}

// AdminVerifier authenticates a release request.
type AdminVerifier interface {
	Verify(token, purpose string) bool
}

const releasePurpose = "emergency_stop_release"

// Switch is the process-wide kill switch. Active() gates the
// orchestrator's tick: while active, every tick is a no-op and existing
// positions are left open (closure-on-shutdown is a separate path).
type Switch struct {
	mu       sync.RWMutex
	active   bool
	reason   string
	verifier AdminVerifier
	history  []Event
}

// New builds an inactive switch.
func New(verifier AdminVerifier) *Switch {
	return &Switch{verifier: verifier}
}

// Trigger activates the switch unconditionally; any caller with process
// access may trigger (no auth required to make trading safer), but only
// an authenticated Release may clear it.
func (s *Switch) Trigger(reason, actorToken string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = true
	s.reason = reason
	s.record(Event{At: at, Action: "TRIGGER", Reason: reason, ActorToken: actorToken})
}

// Release clears the switch if token authenticates for the
// emergency-stop-release purpose.
func (s *Switch) Release(token string, at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.verifier == nil || !s.verifier.Verify(token, releasePurpose) {
		return false
	}
	s.active = false
	s.reason = ""
	s.record(Event{At: at, Action: "RELEASE", ActorToken: token})
	return true
}

func (s *Switch) record(e Event) {
	s.history = append(s.history, e)
	if len(s.history) > historyLimit {
		s.history = s.history[len(s.history)-historyLimit:]
	}
}

// Active reports whether the switch is currently engaged.
func (s *Switch) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Status reports the active flag, reason, and the last N history events,
// mirroring get_status's last-10 history.
type Status struct {
	Active  bool
	Reason  string
	History []Event
}

// GetStatus returns the current status with the last 10 history events.
func (s *Switch) GetStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.history)
	start := 0
	if n > 10 {
		start = n - 10
	}
	historyCopy := make([]Event, n-start)
	copy(historyCopy, s.history[start:])

	return Status{Active: s.active, Reason: s.reason, History: historyCopy}
}
