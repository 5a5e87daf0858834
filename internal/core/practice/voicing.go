package practice

import (
	"practicetimer/internal/audio"
	"practicetimer/internal/core/metronome"
	"practicetimer/internal/core/phase"
)

const (
	lowCueFrequency  = 740
	highCueFrequency = 980
	cueNoteDuration  = 0.18
	cueNoteSpacing   = 0.09

	accentFrequency = 1100
	beatFrequency   = 820
	clickDuration   = 0.06
)

// CueTones returns the two-note phase entry cue: rising into Practice,
// falling into Rest.
func CueTones(entered phase.Phase, startAt float64, volume int) []audio.Tone {
	first, second := float64(lowCueFrequency), float64(highCueFrequency)
	if entered == phase.Rest {
		first, second = second, first
	}
	return []audio.Tone{
		{Frequency: first, Duration: cueNoteDuration, Waveform: audio.Triangle, Volume: volume, At: startAt},
		{Frequency: second, Duration: cueNoteDuration, Waveform: audio.Triangle, Volume: volume, At: startAt + cueNoteSpacing},
	}
}

// ClickTone voices a metronome click.
func ClickTone(click metronome.Click) audio.Tone {
	if click.Accent {
		return audio.Tone{Frequency: accentFrequency, Duration: clickDuration, Waveform: audio.Square, Volume: click.Volume, At: click.At}
	}
	return audio.Tone{Frequency: beatFrequency, Duration: clickDuration, Waveform: audio.Triangle, Volume: click.Volume, At: click.At}
}
