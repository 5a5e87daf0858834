package practice

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"practicetimer/internal/audio"
	"practicetimer/internal/core/metronome"
	"practicetimer/internal/core/phase"
)

func TestCueTones(t *testing.T) {
	practice := CueTones(phase.Practice, 1.5, 40)
	assert.Equal(t, []float64{740, 980}, frequencies(practice))
	assert.Equal(t, audio.Tone{Frequency: 740, Duration: 0.18, Waveform: audio.Triangle, Volume: 40, At: 1.5}, practice[0])
	assert.InDelta(t, 1.59, practice[1].At, 1e-9)

	rest := CueTones(phase.Rest, 1.5, 40)
	assert.Equal(t, []float64{980, 740}, frequencies(rest))
	assert.Equal(t, practice[1].At, rest[1].At)
}

func TestClickTone(t *testing.T) {
	accent := ClickTone(metronome.Click{At: 3, Beat: 0, Accent: true, Volume: 55})
	assert.Equal(t, audio.Tone{Frequency: 1100, Duration: 0.06, Waveform: audio.Square, Volume: 55, At: 3}, accent)

	beat := ClickTone(metronome.Click{At: 3.5, Beat: 1, Volume: 55})
	assert.Equal(t, audio.Tone{Frequency: 820, Duration: 0.06, Waveform: audio.Triangle, Volume: 55, At: 3.5}, beat)
}
