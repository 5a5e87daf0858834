package timekeeper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"practicetimer/internal/core/model"
	"practicetimer/internal/core/phase"
)

var epoch = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func configFor(practiceSeconds, restSeconds int) model.TimerConfig {
	config := model.DefaultTimerConfig()
	config.Practice = model.PhaseDuration{Minutes: practiceSeconds / 60, Seconds: practiceSeconds % 60}
	config.Rest = model.PhaseDuration{Minutes: restSeconds / 60, Seconds: restSeconds % 60}
	return config
}

func resolverFor(practiceSeconds, restSeconds int) phase.Resolver {
	return phase.NewResolver(configFor(practiceSeconds, restSeconds))
}

func TestSessionStartRejectsZeroDurations(t *testing.T) {
	resolver := resolverFor(0, 0)
	session := NewSession(resolver)

	kind, err := session.Start(epoch, resolver)
	require.ErrorIs(t, err, ErrCannotStart)
	assert.Equal(t, StartRejected, kind)
	assert.Equal(t, StateStopped, session.State())
	assert.True(t, session.PhaseEndAt().IsZero())
}

func TestNewSessionShowsPhaseThatWouldStart(t *testing.T) {
	resolver := resolverFor(0, 7)
	session := NewSession(resolver)
	assert.Equal(t, StateStopped, session.State())
	assert.Equal(t, phase.Rest, session.Phase())
	assert.Equal(t, 7, session.Remaining())

	session.Reset(resolver)
	assert.Equal(t, phase.Practice, session.Phase())
	assert.Equal(t, 0, session.Remaining())

	empty := NewSession(resolverFor(0, 0))
	assert.Equal(t, phase.Practice, empty.Phase())
	assert.Equal(t, 0, empty.Remaining())
}

func TestSessionFreshStartPicksFirstNonZeroPhase(t *testing.T) {
	resolver := resolverFor(0, 7)
	session := NewSession(resolver)

	kind, err := session.Start(epoch, resolver)
	require.NoError(t, err)
	assert.Equal(t, StartFresh, kind)
	assert.Equal(t, phase.Rest, session.Phase())
	assert.Equal(t, 1, session.Cycle())
	assert.Equal(t, 7, session.Remaining())
	assert.Equal(t, epoch.Add(7*time.Second), session.PhaseEndAt())
}

func TestSessionPracticeOnlyRepeatsAndCounts(t *testing.T) {
	resolver := resolverFor(5, 0)
	session := NewSession(resolver)
	_, err := session.Start(epoch, resolver)
	require.NoError(t, err)

	for i := 1; i <= 4; i++ {
		transitions := session.Advance(epoch.Add(time.Duration(5*i)*time.Second), resolver, 500*time.Millisecond)
		require.Len(t, transitions, 1)
		assert.Equal(t, phase.Practice, transitions[0].To)
		assert.Equal(t, i+1, session.Cycle())
		assert.Equal(t, 5, session.Remaining())
	}
}

func TestSessionAlternatesAndCountsOnlyOnReturnToPractice(t *testing.T) {
	resolver := resolverFor(5, 3)
	session := NewSession(resolver)
	_, err := session.Start(epoch, resolver)
	require.NoError(t, err)
	assert.Equal(t, 5, session.Remaining())

	transitions := session.Advance(epoch.Add(5*time.Second), resolver, 500*time.Millisecond)
	require.Len(t, transitions, 1)
	assert.Equal(t, phase.Rest, session.Phase())
	assert.Equal(t, 1, session.Cycle())
	assert.Equal(t, 3, session.Remaining())

	transitions = session.Advance(epoch.Add(8*time.Second), resolver, 500*time.Millisecond)
	require.Len(t, transitions, 1)
	assert.Equal(t, phase.Practice, session.Phase())
	assert.Equal(t, 2, session.Cycle())
	assert.Equal(t, 5, session.Remaining())
}

func TestSessionRemainingIsCeilingOfPhaseEnd(t *testing.T) {
	resolver := resolverFor(5, 3)
	session := NewSession(resolver)
	_, err := session.Start(epoch, resolver)
	require.NoError(t, err)

	session.Advance(epoch.Add(250*time.Millisecond), resolver, 500*time.Millisecond)
	assert.Equal(t, 5, session.Remaining())

	session.Advance(epoch.Add(4001*time.Millisecond), resolver, 500*time.Millisecond)
	assert.Equal(t, 1, session.Remaining())
}

func TestSessionCatchUpAnchorsOnMissedEnd(t *testing.T) {
	resolver := resolverFor(5, 5)
	session := NewSession(resolver)
	_, err := session.Start(epoch, resolver)
	require.NoError(t, err)

	transitions := session.Advance(epoch.Add(23*time.Second), resolver, 500*time.Millisecond)
	require.Len(t, transitions, 4)
	for _, transition := range transitions {
		assert.False(t, transition.Cue)
	}
	assert.Equal(t, 2, session.Remaining())
	assert.Equal(t, phase.Practice, session.Phase())
	assert.Equal(t, 3, session.Cycle())
	assert.Equal(t, epoch.Add(25*time.Second), session.PhaseEndAt())
}

func TestSessionCatchUpWithUnequalDurations(t *testing.T) {
	resolver := resolverFor(5, 3)
	session := NewSession(resolver)
	_, err := session.Start(epoch, resolver)
	require.NoError(t, err)

	// Ends fall at 5, 8, 13, 16; the next one is due at 21.
	transitions := session.Advance(epoch.Add(20*time.Second), resolver, 500*time.Millisecond)
	require.Len(t, transitions, 4)
	assert.Equal(t, []phase.Phase{phase.Rest, phase.Practice, phase.Rest, phase.Practice},
		[]phase.Phase{transitions[0].To, transitions[1].To, transitions[2].To, transitions[3].To})
	assert.Equal(t, 1, session.Remaining())
	assert.Equal(t, 3, session.Cycle())
}

func TestSessionLiveExpiryAnchorsOnNow(t *testing.T) {
	resolver := resolverFor(5, 3)
	session := NewSession(resolver)
	_, err := session.Start(epoch, resolver)
	require.NoError(t, err)

	now := epoch.Add(5300 * time.Millisecond)
	transitions := session.Advance(now, resolver, 500*time.Millisecond)
	require.Len(t, transitions, 1)
	assert.True(t, transitions[0].Cue)
	assert.Equal(t, now.Add(3*time.Second), session.PhaseEndAt())
	assert.Equal(t, 3, session.Remaining())
}

func TestSessionPauseFreezesRemaining(t *testing.T) {
	resolver := resolverFor(10, 3)
	session := NewSession(resolver)
	_, err := session.Start(epoch, resolver)
	require.NoError(t, err)

	session.Advance(epoch.Add(5*time.Second), resolver, 500*time.Millisecond)
	require.True(t, session.Pause(epoch.Add(5*time.Second)))
	assert.Equal(t, StatePaused, session.State())
	assert.Equal(t, 5, session.Remaining())
	assert.True(t, session.PhaseEndAt().IsZero())
	assert.False(t, session.Pause(epoch.Add(6*time.Second)))

	resumeAt := epoch.Add(15 * time.Second)
	kind, err := session.Start(resumeAt, resolver)
	require.NoError(t, err)
	assert.Equal(t, StartResumed, kind)
	assert.Equal(t, 5, session.Remaining())
	assert.Equal(t, resumeAt.Add(5*time.Second), session.PhaseEndAt())

	session.Advance(resumeAt, resolver, 500*time.Millisecond)
	assert.Equal(t, 5, session.Remaining())
}

func TestSessionResumeWithNothingLeftAdvancesFirst(t *testing.T) {
	resolver := resolverFor(5, 3)
	session := NewSession(resolver)
	_, err := session.Start(epoch, resolver)
	require.NoError(t, err)
	require.True(t, session.Pause(epoch.Add(5*time.Second)))
	require.Equal(t, 0, session.Remaining())

	resumeAt := epoch.Add(6 * time.Second)
	kind, err := session.Start(resumeAt, resolver)
	require.NoError(t, err)
	assert.Equal(t, StartResumed, kind)
	assert.Equal(t, phase.Rest, session.Phase())
	assert.Equal(t, 3, session.Remaining())
	assert.Equal(t, resumeAt.Add(3*time.Second), session.PhaseEndAt())
}

func TestSessionResumeWithNothingLeftAndNoPhaseStops(t *testing.T) {
	resolver := resolverFor(5, 3)
	session := NewSession(resolver)
	_, err := session.Start(epoch, resolver)
	require.NoError(t, err)
	require.True(t, session.Pause(epoch.Add(5*time.Second)))

	empty := resolverFor(0, 0)
	_, err = session.Start(epoch.Add(6*time.Second), empty)
	require.ErrorIs(t, err, ErrCannotStart)
	assert.Equal(t, StateStopped, session.State())
}

func TestSessionStopsWhenNoPhaseFollows(t *testing.T) {
	resolver := resolverFor(5, 3)
	session := NewSession(resolver)
	_, err := session.Start(epoch, resolver)
	require.NoError(t, err)

	empty := resolverFor(0, 0)
	transitions := session.Advance(epoch.Add(5*time.Second), empty, 500*time.Millisecond)
	require.Len(t, transitions, 1)
	assert.True(t, transitions[0].Stopped)
	assert.Equal(t, StateStopped, session.State())
	assert.Equal(t, phase.Practice, session.Phase())
}

func TestSessionRefreshOnlyWhileStopped(t *testing.T) {
	session := NewSession(resolverFor(5, 3))
	session.Refresh(resolverFor(42, 3))
	assert.Equal(t, 42, session.Remaining())

	_, err := session.Start(epoch, resolverFor(42, 3))
	require.NoError(t, err)
	session.Refresh(resolverFor(7, 3))
	assert.Equal(t, 42, session.Remaining())
}
