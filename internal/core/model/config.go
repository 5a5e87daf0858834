package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Bounds applied to every configuration value.
const (
	MinuteSecondMin = 0
	MinuteSecondMax = 59
	VolumeMin       = 0
	VolumeMax       = 100
	TempoMin        = 30
	TempoMax        = 300

	DefaultSignature   = "4/4"
	DefaultBeatsPerBar = 4
)

// PhaseDuration is a minutes+seconds pair as entered by the user.
type PhaseDuration struct {
	Minutes int
	Seconds int
}

// TotalSeconds returns minutes*60 + seconds with both parts clamped to [0,59].
func (duration PhaseDuration) TotalSeconds() int {
	minutes := Clamp(duration.Minutes, MinuteSecondMin, MinuteSecondMax)
	seconds := Clamp(duration.Seconds, MinuteSecondMin, MinuteSecondMax)
	return minutes*60 + seconds
}

// MetronomeConfig holds the metronome settings.
type MetronomeConfig struct {
	Enabled      bool
	AutoMuteRest bool
	Signature    string
	Tempo        int
	Volume       int
}

// BeatsPerBar returns the numerator of the time signature.
func (metronome MetronomeConfig) BeatsPerBar() int {
	return ParseBeatsPerBar(metronome.Signature)
}

// TimerConfig contains every user-editable setting. Values are expected to
// have passed through Normalize.
type TimerConfig struct {
	Practice    PhaseDuration
	Rest        PhaseDuration
	TimerVolume int
	Metronome   MetronomeConfig
}

// DefaultTimerConfig returns the settings used when nothing was persisted.
func DefaultTimerConfig() TimerConfig {
	return TimerConfig{
		Practice:    PhaseDuration{Minutes: 5},
		Rest:        PhaseDuration{Minutes: 1},
		TimerVolume: 80,
		Metronome: MetronomeConfig{
			Enabled:      false,
			AutoMuteRest: true,
			Signature:    DefaultSignature,
			Tempo:        100,
			Volume:       70,
		},
	}
}

// Normalize clamps every field to its valid range. Invalid values are replaced
// by the nearest boundary rather than rejected.
func (config TimerConfig) Normalize() TimerConfig {
	config.Practice = config.Practice.normalize()
	config.Rest = config.Rest.normalize()
	config.TimerVolume = Clamp(config.TimerVolume, VolumeMin, VolumeMax)
	config.Metronome.Tempo = Clamp(config.Metronome.Tempo, TempoMin, TempoMax)
	config.Metronome.Volume = Clamp(config.Metronome.Volume, VolumeMin, VolumeMax)
	config.Metronome.Signature = NormalizeSignature(config.Metronome.Signature)
	return config
}

func (duration PhaseDuration) normalize() PhaseDuration {
	return PhaseDuration{
		Minutes: Clamp(duration.Minutes, MinuteSecondMin, MinuteSecondMax),
		Seconds: Clamp(duration.Seconds, MinuteSecondMin, MinuteSecondMax),
	}
}

// Clamp bounds value to [min, max].
func Clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// ClampText parses raw as an integer and clamps it. Non-numeric input yields
// min, matching how the form inputs fail soft.
func ClampText(raw string, min, max int) int {
	value, ok := ParseNumber(raw)
	if !ok {
		return min
	}
	return Clamp(value, min, max)
}

// ParseNumber parses an integer, accepting a decimal value truncated toward
// zero.
func ParseNumber(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	if value, err := strconv.Atoi(raw); err == nil {
		return value, true
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) {
		return 0, false
	}
	if value > math.MaxInt32 {
		return math.MaxInt32, true
	}
	if value < math.MinInt32 {
		return math.MinInt32, true
	}
	return int(value), true
}

// ParseBeatsPerBar reads the numerator of an "N/M" signature. Anything that is
// not a positive integer falls back to DefaultBeatsPerBar.
func ParseBeatsPerBar(signature string) int {
	numerator, _, _ := strings.Cut(strings.TrimSpace(signature), "/")
	beats, err := strconv.Atoi(strings.TrimSpace(numerator))
	if err != nil || beats <= 0 {
		return DefaultBeatsPerBar
	}
	return beats
}

// NormalizeSignature returns signature in canonical "N/M" form, or the default
// signature if it cannot be read.
func NormalizeSignature(signature string) string {
	numerator, denominator, found := strings.Cut(strings.TrimSpace(signature), "/")
	if !found {
		return DefaultSignature
	}
	beats, err := strconv.Atoi(strings.TrimSpace(numerator))
	if err != nil || beats <= 0 {
		return DefaultSignature
	}
	unit, err := strconv.Atoi(strings.TrimSpace(denominator))
	if err != nil || unit <= 0 {
		return DefaultSignature
	}
	return fmt.Sprintf("%d/%d", beats, unit)
}

// CommitTempo resolves an edited tempo field. Unparsable input keeps current;
// anything else is clamped to the tempo range.
func CommitTempo(raw string, current int) int {
	value, ok := ParseNumber(raw)
	if !ok {
		return current
	}
	return Clamp(value, TempoMin, TempoMax)
}
