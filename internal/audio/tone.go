// Package audio renders scheduled tones and exposes the audio clock they are
// scheduled against.
package audio

import (
	"errors"

	"practicetimer/internal/clock"
)

// ErrUnavailable indicates no audio output could be opened.
var ErrUnavailable = errors.New("audio output unavailable")

// Waveform is the oscillator shape of a tone.
type Waveform string

const (
	Sine     Waveform = "sine"
	Square   Waveform = "square"
	Triangle Waveform = "triangle"
	Sawtooth Waveform = "sawtooth"
)

// Tone is a fire-and-forget request to sound a note at an absolute time on the
// audio clock.
type Tone struct {
	Frequency float64 // Hz
	Duration  float64 // seconds
	Waveform  Waveform
	Volume    int     // 0-100
	At        float64 // audio clock seconds; past times sound immediately
}

// Output schedules tones and reports the audio clock they are scheduled on.
type Output interface {
	clock.AudioClock
	EmitTone(Tone)
}

// Silent is the output used when no device is available. Its clock keeps
// running so the metronome scheduler still has a timeline; tones are dropped.
type Silent struct {
	clock *clock.Monotonic
}

// NewSilent returns a silent output.
func NewSilent() *Silent {
	return &Silent{clock: clock.NewMonotonic()}
}

// Now returns the monotonic time since creation.
func (silent *Silent) Now() float64 {
	return silent.clock.Now()
}

// EmitTone drops the tone.
func (silent *Silent) EmitTone(Tone) {}
