// Package metronome schedules click events against the audio clock while the
// gate allows it.
package metronome

import "practicetimer/internal/core/phase"

// GateInput is everything the gate looks at.
type GateInput struct {
	Enabled      bool
	AutoMuteRest bool
	Running      bool
	Phase        phase.Phase
}

// Gate reports whether the metronome may sound.
func Gate(input GateInput) bool {
	if !input.Enabled || !input.Running {
		return false
	}
	return !(input.AutoMuteRest && input.Phase == phase.Rest)
}
