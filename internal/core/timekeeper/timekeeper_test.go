package timekeeper

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"practicetimer/internal/clock"
	"practicetimer/internal/core/phase"
)

type transitionRecorder struct {
	mu          sync.Mutex
	transitions []Transition
}

func (recorder *transitionRecorder) record(transition Transition) {
	recorder.mu.Lock()
	recorder.transitions = append(recorder.transitions, transition)
	recorder.mu.Unlock()
}

func (recorder *transitionRecorder) all() []Transition {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	return append([]Transition(nil), recorder.transitions...)
}

func newTestKeeper(t *testing.T, practiceSeconds, restSeconds int) (*TimeKeeper, *clock.Manual, *transitionRecorder) {
	t.Helper()
	manual := clock.NewManual(epoch)
	recorder := &transitionRecorder{}
	keeper := New(configFor(practiceSeconds, restSeconds), Config{
		TickInterval: DefaultTickInterval,
		Clock:        manual,
		OnTransition: recorder.record,
	})
	t.Cleanup(keeper.Close)
	return keeper, manual, recorder
}

func TestTimeKeeperCannotStartWithZeroDurations(t *testing.T) {
	keeper, _, _ := newTestKeeper(t, 0, 0)
	events := keeper.Subscribe(4)

	_, err := keeper.Start()
	require.ErrorIs(t, err, ErrCannotStart)

	snapshot := keeper.Snapshot()
	assert.Equal(t, StateStopped, snapshot.State)
	assert.Equal(t, "Set a duration", snapshot.Status())

	event := <-events
	assert.Equal(t, EventCannotStart, event.Type)
}

func TestTimeKeeperScenarioPracticeThenRest(t *testing.T) {
	keeper, manual, recorder := newTestKeeper(t, 5, 3)

	kind, err := keeper.Start()
	require.NoError(t, err)
	assert.Equal(t, StartFresh, kind)
	snapshot := keeper.Snapshot()
	assert.Equal(t, phase.Practice, snapshot.Phase)
	assert.Equal(t, 5, snapshot.Remaining)
	assert.Equal(t, phase.Rest, snapshot.NextPhase)

	manual.Advance(5 * time.Second)
	keeper.Sync()
	snapshot = keeper.Snapshot()
	assert.Equal(t, phase.Rest, snapshot.Phase)
	assert.Equal(t, 1, snapshot.Cycle)
	assert.Equal(t, 3, snapshot.Remaining)

	manual.Advance(3 * time.Second)
	keeper.Sync()
	snapshot = keeper.Snapshot()
	assert.Equal(t, phase.Practice, snapshot.Phase)
	assert.Equal(t, 2, snapshot.Cycle)
	assert.Equal(t, 5, snapshot.Remaining)

	transitions := recorder.all()
	require.Len(t, transitions, 2)
	assert.True(t, transitions[0].Cue)
	assert.True(t, transitions[1].Cue)
}

func TestTimeKeeperCatchUpIsSilent(t *testing.T) {
	keeper, manual, recorder := newTestKeeper(t, 5, 5)
	_, err := keeper.Start()
	require.NoError(t, err)

	manual.Advance(23 * time.Second)
	keeper.Sync()

	transitions := recorder.all()
	require.Len(t, transitions, 4)
	for _, transition := range transitions {
		assert.False(t, transition.Cue)
	}
	assert.Equal(t, 2, keeper.Snapshot().Remaining)
}

func TestTimeKeeperCatchUpEventsDescribeEachPhase(t *testing.T) {
	keeper, manual, _ := newTestKeeper(t, 5, 5)
	events := keeper.Subscribe(16)
	_, err := keeper.Start()
	require.NoError(t, err)

	manual.Advance(23 * time.Second)
	keeper.Sync()

	var entered []Snapshot
	for drained := false; !drained; {
		select {
		case event := <-events:
			if event.Type == EventPhaseChange {
				entered = append(entered, event.Snapshot)
			}
		default:
			drained = true
		}
	}

	require.Len(t, entered, 4)
	phases := []phase.Phase{phase.Rest, phase.Practice, phase.Rest, phase.Practice}
	cycles := []int{1, 2, 2, 3}
	remaining := []int{5, 5, 5, 2}
	for i, snapshot := range entered {
		assert.Equal(t, phases[i], snapshot.Phase, "event %d", i)
		assert.Equal(t, cycles[i], snapshot.Cycle, "event %d", i)
		assert.Equal(t, remaining[i], snapshot.Remaining, "event %d", i)
		assert.Equal(t, phases[i].Opposite(), snapshot.NextPhase, "event %d", i)
	}
}

func TestTimeKeeperPauseResumeDoesNotCountPausedTime(t *testing.T) {
	keeper, manual, _ := newTestKeeper(t, 10, 3)
	_, err := keeper.Start()
	require.NoError(t, err)

	manual.Advance(5 * time.Second)
	require.True(t, keeper.Pause())
	snapshot := keeper.Snapshot()
	assert.Equal(t, StatePaused, snapshot.State)
	assert.Equal(t, 5, snapshot.Remaining)

	manual.Advance(10 * time.Second)
	keeper.Sync()
	assert.Equal(t, 5, keeper.Snapshot().Remaining)

	kind, err := keeper.Start()
	require.NoError(t, err)
	assert.Equal(t, StartResumed, kind)
	keeper.Sync()
	snapshot = keeper.Snapshot()
	assert.Equal(t, StateRunning, snapshot.State)
	assert.Equal(t, 5, snapshot.Remaining)
	assert.Equal(t, phase.Practice, snapshot.Phase)
}

func TestTimeKeeperPauseProcessesPendingExpiry(t *testing.T) {
	keeper, manual, recorder := newTestKeeper(t, 5, 3)
	_, err := keeper.Start()
	require.NoError(t, err)

	manual.Advance(6 * time.Second)
	require.True(t, keeper.Pause())

	snapshot := keeper.Snapshot()
	assert.Equal(t, phase.Rest, snapshot.Phase)
	assert.Equal(t, 2, snapshot.Remaining)
	assert.Len(t, recorder.all(), 1)
}

func TestTimeKeeperStopIsIdempotent(t *testing.T) {
	keeper, manual, _ := newTestKeeper(t, 5, 3)
	_, err := keeper.Start()
	require.NoError(t, err)
	manual.Advance(6 * time.Second)
	keeper.Sync()

	assert.True(t, keeper.Stop())
	first := keeper.Snapshot()
	assert.False(t, keeper.Stop())
	second := keeper.Snapshot()

	assert.Equal(t, first, second)
	assert.Equal(t, StateStopped, second.State)
	assert.Equal(t, phase.Practice, second.Phase)
	assert.Equal(t, 5, second.Remaining)
	assert.Equal(t, 1, second.Cycle)
}

func TestTimeKeeperUpdateConfigWhileStoppedRefreshesRemaining(t *testing.T) {
	keeper, _, _ := newTestKeeper(t, 5, 3)
	keeper.UpdateConfig(configFor(90, 3))
	assert.Equal(t, 90, keeper.Snapshot().Remaining)
	assert.Equal(t, "01:30", keeper.Snapshot().Display().FormattedRemaining)
}

func TestTimeKeeperStopsWhenDurationsClearedMidRun(t *testing.T) {
	keeper, manual, recorder := newTestKeeper(t, 5, 3)
	_, err := keeper.Start()
	require.NoError(t, err)

	keeper.UpdateConfig(configFor(0, 0))
	manual.Advance(5 * time.Second)
	keeper.Sync()

	assert.Equal(t, StateStopped, keeper.Snapshot().State)
	transitions := recorder.all()
	require.Len(t, transitions, 1)
	assert.True(t, transitions[0].Stopped)
}

func TestTimeKeeperPublishesProgress(t *testing.T) {
	keeper, manual, _ := newTestKeeper(t, 5, 3)
	events := keeper.Subscribe(8)

	_, err := keeper.Start()
	require.NoError(t, err)
	started := <-events
	assert.Equal(t, EventStateChange, started.Type)
	assert.True(t, started.Cue)

	manual.Advance(1500 * time.Millisecond)
	keeper.Sync()

	var progress Event
	require.Eventually(t, func() bool {
		select {
		case progress = <-events:
			return progress.Type == EventProgress && progress.Snapshot.Remaining == 4
		default:
			return false
		}
	}, time.Second, time.Millisecond)
	assert.Equal(t, "00:04 · Practice", progress.Snapshot.Title("Practice Timer"))
}

func TestTimeKeeperLoopReleasedOnStopAndPause(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	keeper := New(configFor(5, 3), Config{TickInterval: 5 * time.Millisecond})
	_, err := keeper.Start()
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)
	require.True(t, keeper.Pause())

	_, err = keeper.Start()
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)
	keeper.Stop()
	keeper.Stop()
	keeper.Close()
}
