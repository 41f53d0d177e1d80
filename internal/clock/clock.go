// Package clock provides an injectable time source so daily-reset and
// cooldown logic can be tested deterministically, per the original
// design note that the calendar-day boundary check needs an injectable
// clock.
package clock

import "time"

// Clock returns the current time. A plain function type rather than an
// interface, matching the teacher's functional-option style elsewhere.
type Clock func() time.Time

// Real is the production clock.
func Real() time.Time { return time.Now().UTC() }

// Fixed returns a Clock that always reports t, for deterministic tests.
func Fixed(t time.Time) Clock {
	return func() time.Time { return t }
}

// SameUTCDay reports whether a and b fall on the same calendar day in UTC.
func SameUTCDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
