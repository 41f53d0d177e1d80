package killswitch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradecore/internal/auth"
)

func TestTriggerAndReleaseRoundTrip(t *testing.T) {
	s := New(auth.NonEmptyVerifier{})
	now := time.Now().UTC()

	assert.False(t, s.Active())
	s.Trigger("manual halt", "operator-1", now)
	assert.True(t, s.Active())

	require.False(t, s.Release("", now))
	assert.True(t, s.Active())

	require.True(t, s.Release("ok", now))
	assert.False(t, s.Active())
}

func TestGetStatusCapsHistoryAtTen(t *testing.T) {
	s := New(auth.NonEmptyVerifier{})
	now := time.Now().UTC()
	for i := 0; i < 15; i++ {
		s.Trigger("reason", "actor", now)
		s.Release("ok", now)
	}

	status := s.GetStatus()
	assert.Len(t, status.History, 10)
}

func TestReleaseFailsWithoutVerifier(t *testing.T) {
	s := New(nil)
	s.Trigger("r", "a", time.Now().UTC())
	assert.False(t, s.Release("anything", time.Now().UTC()))
}
