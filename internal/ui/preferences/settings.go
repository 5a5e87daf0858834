package preferences

import (
	"math"
	"strconv"

	"practicetimer/internal/core/model"
)

// Signatures are the time signatures offered by the form.
var Signatures = []string{"2/4", "3/4", "4/4", "5/4", "6/8", "7/8"}

// Fields is the raw state of the form inputs.
type Fields struct {
	PracticeMinutes string
	PracticeSeconds string
	RestMinutes     string
	RestSeconds     string
	TimerVolume     float64

	MetronomeEnabled bool
	AutoMuteRest     bool
	Signature        string
	Tempo            string
	MetronomeVolume  float64
}

// FieldsFromConfig fills the form inputs from config.
func FieldsFromConfig(config model.TimerConfig) Fields {
	return Fields{
		PracticeMinutes:  strconv.Itoa(config.Practice.Minutes),
		PracticeSeconds:  strconv.Itoa(config.Practice.Seconds),
		RestMinutes:      strconv.Itoa(config.Rest.Minutes),
		RestSeconds:      strconv.Itoa(config.Rest.Seconds),
		TimerVolume:      float64(config.TimerVolume),
		MetronomeEnabled: config.Metronome.Enabled,
		AutoMuteRest:     config.Metronome.AutoMuteRest,
		Signature:        config.Metronome.Signature,
		Tempo:            strconv.Itoa(config.Metronome.Tempo),
		MetronomeVolume:  float64(config.Metronome.Volume),
	}
}

// Config converts the inputs into a normalized configuration. Unreadable
// minute and second fields fall to zero; an unreadable tempo keeps the one in
// current.
func (fields Fields) Config(current model.TimerConfig) model.TimerConfig {
	config := model.TimerConfig{
		Practice: model.PhaseDuration{
			Minutes: model.ClampText(fields.PracticeMinutes, model.MinuteSecondMin, model.MinuteSecondMax),
			Seconds: model.ClampText(fields.PracticeSeconds, model.MinuteSecondMin, model.MinuteSecondMax),
		},
		Rest: model.PhaseDuration{
			Minutes: model.ClampText(fields.RestMinutes, model.MinuteSecondMin, model.MinuteSecondMax),
			Seconds: model.ClampText(fields.RestSeconds, model.MinuteSecondMin, model.MinuteSecondMax),
		},
		TimerVolume: int(math.Round(fields.TimerVolume)),
		Metronome: model.MetronomeConfig{
			Enabled:      fields.MetronomeEnabled,
			AutoMuteRest: fields.AutoMuteRest,
			Signature:    fields.Signature,
			Tempo:        model.CommitTempo(fields.Tempo, current.Metronome.Tempo),
			Volume:       int(math.Round(fields.MetronomeVolume)),
		},
	}
	return config.Normalize()
}
