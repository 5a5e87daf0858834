package timekeeper

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"practicetimer/internal/core/phase"
)

func TestSnapshotDisplay(t *testing.T) {
	snapshot := Snapshot{
		State:     StatePaused,
		Phase:     phase.Rest,
		NextPhase: phase.Practice,
		Cycle:     3,
		Remaining: 125,
		Startable: true,
	}
	assert.Equal(t, Display{
		FormattedRemaining: "02:05",
		PhaseLabel:         "Rest",
		NextPhaseLabel:     "Practice",
		Cycle:              3,
		Status:             "Paused",
	}, snapshot.Display())
}

func TestSnapshotStatus(t *testing.T) {
	tests := []struct {
		name     string
		snapshot Snapshot
		want     string
	}{
		{"running", Snapshot{State: StateRunning, Startable: true}, "Running"},
		{"paused", Snapshot{State: StatePaused, Startable: true}, "Paused"},
		{"stopped", Snapshot{State: StateStopped, Startable: true}, "Stopped"},
		{"nothing to run", Snapshot{State: StateStopped}, "Set a duration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.snapshot.Status())
		})
	}
}

func TestSnapshotControls(t *testing.T) {
	assert.Equal(t, Controls{Start: true}, Snapshot{State: StateStopped}.Controls())
	assert.Equal(t, Controls{Pause: true, Stop: true}, Snapshot{State: StateRunning}.Controls())
	assert.Equal(t, Controls{Start: true, Stop: true}, Snapshot{State: StatePaused}.Controls())
}

func TestSnapshotTitle(t *testing.T) {
	running := Snapshot{State: StateRunning, Phase: phase.Practice, Remaining: 61}
	assert.Equal(t, "01:01 · Practice", running.Title("Practice Timer"))
	running.State = StatePaused
	assert.Equal(t, "Practice Timer", running.Title("Practice Timer"))
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "00:00", FormatSeconds(-4))
	assert.Equal(t, "00:59", FormatSeconds(59))
	assert.Equal(t, "59:59", FormatSeconds(3599))
}
