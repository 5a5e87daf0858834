package timekeeper

import (
	"errors"
	"time"

	"practicetimer/internal/core/phase"
)

// ErrCannotStart indicates both phase durations are zero.
var ErrCannotStart = errors.New("cannot start: both phase durations are zero")

// StartKind reports what Start did.
type StartKind int

const (
	StartRejected StartKind = iota
	StartFresh
	StartResumed
	StartAlreadyRunning
)

// Transition is one phase advance processed by Session.Advance.
type Transition struct {
	From      phase.Phase
	To        phase.Phase
	Cycle     int
	Remaining int
	// Cue is true when the expiry was observed close to when it happened.
	// Transitions replayed after a long stall have Cue false.
	Cue bool
	// Stopped is true when no phase could follow and the session stopped.
	Stopped bool
	At      time.Time
}

// Session is the phase/cycle state machine. It is not safe for concurrent use;
// TimeKeeper owns it exclusively.
type Session struct {
	state      State
	phase      phase.Phase
	cycle      int
	remaining  int
	phaseEndAt time.Time
}

// NewSession returns a stopped session positioned on the phase a fresh start
// would run, or on Practice with nothing to run when neither phase can.
func NewSession(resolver phase.Resolver) *Session {
	session := &Session{}
	session.Reset(resolver)
	if startPhase, duration, ok := resolver.StartPhase(); ok {
		session.phase = startPhase
		session.remaining = duration
	}
	return session
}

// State returns the run state.
func (session *Session) State() State { return session.state }

// Phase returns the current phase.
func (session *Session) Phase() phase.Phase { return session.phase }

// Cycle returns the cycle counter.
func (session *Session) Cycle() int { return session.cycle }

// Remaining returns the last computed whole seconds left in the phase.
func (session *Session) Remaining() int { return session.remaining }

// PhaseEndAt returns the armed phase end, or the zero time when unset.
func (session *Session) PhaseEndAt() time.Time { return session.phaseEndAt }

// Reset returns the session to its stopped initial values.
func (session *Session) Reset(resolver phase.Resolver) {
	session.state = StateStopped
	session.phase = phase.Practice
	session.cycle = 1
	session.remaining = resolver.Duration(phase.Practice)
	session.phaseEndAt = time.Time{}
}

// Refresh re-reads the current phase duration while stopped.
func (session *Session) Refresh(resolver phase.Resolver) {
	if session.state != StateStopped {
		return
	}
	session.remaining = resolver.Duration(session.phase)
}

// Start begins a fresh session or resumes a paused one.
func (session *Session) Start(now time.Time, resolver phase.Resolver) (StartKind, error) {
	switch session.state {
	case StateRunning:
		return StartAlreadyRunning, nil

	case StatePaused:
		if session.remaining <= 0 {
			next, ok := resolver.Next(session.phase)
			if !ok {
				session.Reset(resolver)
				return StartRejected, ErrCannotStart
			}
			session.enter(next)
		}
		session.arm(now)
		session.state = StateRunning
		return StartResumed, nil

	default:
		startPhase, duration, ok := resolver.StartPhase()
		if !ok {
			session.Reset(resolver)
			return StartRejected, ErrCannotStart
		}
		session.phase = startPhase
		session.cycle = 1
		session.remaining = duration
		session.arm(now)
		session.state = StateRunning
		return StartFresh, nil
	}
}

// Pause freezes the remaining time as of now and clears the phase end.
func (session *Session) Pause(now time.Time) bool {
	if session.state != StateRunning {
		return false
	}
	if !session.phaseEndAt.IsZero() {
		session.remaining = remainingUntil(session.phaseEndAt, now)
	}
	session.phaseEndAt = time.Time{}
	session.state = StatePaused
	return true
}

// Advance processes every phase expiry up to now. Expiries whose lag is within
// liveWindow are anchored on now and marked for a cue; older ones are anchored
// on the missed phase end so cumulative durations stay exact.
func (session *Session) Advance(now time.Time, resolver phase.Resolver, liveWindow time.Duration) []Transition {
	if session.state != StateRunning {
		return nil
	}
	if session.phaseEndAt.IsZero() {
		session.arm(now)
	}

	var transitions []Transition
	for !now.Before(session.phaseEndAt) {
		lag := now.Sub(session.phaseEndAt)
		live := lag <= liveWindow
		anchor := session.phaseEndAt
		if live {
			anchor = now
		}

		from := session.phase
		next, ok := resolver.Next(from)
		if !ok {
			session.Reset(resolver)
			transitions = append(transitions, Transition{
				From:    from,
				To:      session.phase,
				Cycle:   session.cycle,
				Stopped: true,
				At:      anchor,
			})
			return transitions
		}

		session.enter(next)
		session.phaseEndAt = anchor.Add(time.Duration(next.Duration) * time.Second)
		transitions = append(transitions, Transition{
			From:      from,
			To:        next.Phase,
			Cycle:     session.cycle,
			Remaining: next.Duration,
			Cue:       live,
			At:        anchor,
		})
	}

	session.remaining = remainingUntil(session.phaseEndAt, now)
	return transitions
}

func (session *Session) enter(next phase.Transition) {
	session.phase = next.Phase
	if next.IncrementCycle {
		session.cycle++
	}
	session.remaining = next.Duration
}

func (session *Session) arm(now time.Time) {
	session.phaseEndAt = now.Add(time.Duration(session.remaining) * time.Second)
}

// remainingUntil returns ceil((end-now)/1s), floored at zero.
func remainingUntil(end, now time.Time) int {
	left := end.Sub(now)
	if left <= 0 {
		return 0
	}
	return int((left + time.Second - 1) / time.Second)
}
