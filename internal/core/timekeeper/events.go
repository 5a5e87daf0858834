package timekeeper

import (
	"fmt"
	"time"

	"practicetimer/internal/core/phase"
)

// State represents the run state of the timer.
type State string

const (
	StateStopped State = "stopped"
	StateRunning State = "running"
	StatePaused  State = "paused"
)

// EventType defines the type of TimeKeeper event.
type EventType string

const (
	EventStateChange EventType = "state_change"
	EventPhaseChange EventType = "phase_change"
	EventProgress    EventType = "progress"
	EventCannotStart EventType = "cannot_start"
)

// Event represents a TimeKeeper update for observers.
type Event struct {
	Type     EventType
	Snapshot Snapshot
	Cue      bool
	Message  string
	At       time.Time
}

// Snapshot is a copy of the session taken after a recomputation.
type Snapshot struct {
	State     State
	Phase     phase.Phase
	NextPhase phase.Phase
	Cycle     int
	Remaining int
	Startable bool
}

// Display is the presentational form of a Snapshot.
type Display struct {
	FormattedRemaining string
	PhaseLabel         string
	NextPhaseLabel     string
	Cycle              int
	Status             string
}

// Display formats the snapshot for a display sink.
func (snapshot Snapshot) Display() Display {
	return Display{
		FormattedRemaining: FormatSeconds(snapshot.Remaining),
		PhaseLabel:         snapshot.Phase.Label(),
		NextPhaseLabel:     snapshot.NextPhase.Label(),
		Cycle:              snapshot.Cycle,
		Status:             snapshot.Status(),
	}
}

// Status returns the loop status text.
func (snapshot Snapshot) Status() string {
	switch snapshot.State {
	case StateRunning:
		return "Running"
	case StatePaused:
		return "Paused"
	}
	if !snapshot.Startable {
		return "Set a duration"
	}
	return "Stopped"
}

// Controls reports which transport controls are usable.
type Controls struct {
	Start bool
	Pause bool
	Stop  bool
}

// Controls derives control enablement from the run state.
func (snapshot Snapshot) Controls() Controls {
	return Controls{
		Start: snapshot.State != StateRunning,
		Pause: snapshot.State == StateRunning,
		Stop:  snapshot.State != StateStopped,
	}
}

// Title returns "mm:ss · Phase" while running and base otherwise.
func (snapshot Snapshot) Title(base string) string {
	if snapshot.State != StateRunning {
		return base
	}
	return fmt.Sprintf("%s · %s", FormatSeconds(snapshot.Remaining), snapshot.Phase.Label())
}

// FormatSeconds renders whole seconds as mm:ss.
func FormatSeconds(total int) string {
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
