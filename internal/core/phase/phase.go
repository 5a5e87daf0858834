// Package phase resolves phase durations and the practice/rest transition
// policy from the current configuration.
package phase

import "practicetimer/internal/core/model"

// Phase is one of the two timed segments.
type Phase string

const (
	Practice Phase = "practice"
	Rest     Phase = "rest"
)

// Label returns the display name of the phase.
func (phase Phase) Label() string {
	if phase == Rest {
		return "Rest"
	}
	return "Practice"
}

// Opposite returns the other phase.
func (phase Phase) Opposite() Phase {
	if phase == Practice {
		return Rest
	}
	return Practice
}

// Transition describes the phase entered after the current one expires.
type Transition struct {
	Phase          Phase
	Duration       int
	IncrementCycle bool
}

// Resolver derives durations in whole seconds from a configuration. It holds
// no state beyond the two durations and is safe to copy.
type Resolver struct {
	practice int
	rest     int
}

// NewResolver builds a resolver for config.
func NewResolver(config model.TimerConfig) Resolver {
	return Resolver{
		practice: config.Practice.TotalSeconds(),
		rest:     config.Rest.TotalSeconds(),
	}
}

// Duration returns the configured length of phase in seconds.
func (resolver Resolver) Duration(phase Phase) int {
	if phase == Rest {
		return resolver.rest
	}
	return resolver.practice
}

// Startable reports whether at least one phase has a non-zero duration.
func (resolver Resolver) Startable() bool {
	return resolver.practice > 0 || resolver.rest > 0
}

// StartPhase returns the first phase with a non-zero duration, checking
// Practice before Rest.
func (resolver Resolver) StartPhase() (Phase, int, bool) {
	if resolver.practice > 0 {
		return Practice, resolver.practice, true
	}
	if resolver.rest > 0 {
		return Rest, resolver.rest, true
	}
	return Practice, 0, false
}

// Next returns the transition out of current. The second value is false when
// both durations are zero and the caller must stop.
func (resolver Resolver) Next(current Phase) (Transition, bool) {
	if !resolver.Startable() {
		return Transition{}, false
	}

	if current == Practice {
		if resolver.rest > 0 {
			return Transition{Phase: Rest, Duration: resolver.rest}, true
		}
		return Transition{Phase: Practice, Duration: resolver.practice, IncrementCycle: true}, true
	}

	if resolver.practice > 0 {
		return Transition{Phase: Practice, Duration: resolver.practice, IncrementCycle: true}, true
	}
	return Transition{Phase: Rest, Duration: resolver.rest}, true
}
