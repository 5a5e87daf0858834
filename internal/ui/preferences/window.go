package preferences

import (
	"fmt"
	"slices"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"practicetimer/internal/core/model"
)

// Window handles the preferences UI.
type Window struct {
	window   fyne.Window
	config   model.TimerConfig
	onSave   func(model.TimerConfig)
	onCancel func()

	practiceMinutes *widget.Entry
	practiceSeconds *widget.Entry
	restMinutes     *widget.Entry
	restSeconds     *widget.Entry
	timerVolume     *widget.Slider
	timerVolumeText *widget.Label

	metronome       *widget.Check
	autoMute        *widget.Check
	signature       *widget.Select
	tempo           *widget.Entry
	metronomeVolume *widget.Slider
	metronomeText   *widget.Label

	saveButton   *widget.Button
	cancelButton *widget.Button
}

// New creates a preferences window.
func New(app fyne.App, config model.TimerConfig, onSave func(model.TimerConfig)) *Window {
	window := app.NewWindow("Practice Timer Settings")

	prefs := &Window{
		window:          window,
		config:          config,
		onSave:          onSave,
		practiceMinutes: newNumberEntry(),
		practiceSeconds: newNumberEntry(),
		restMinutes:     newNumberEntry(),
		restSeconds:     newNumberEntry(),
		timerVolume:     widget.NewSlider(model.VolumeMin, model.VolumeMax),
		timerVolumeText: widget.NewLabel(""),
		metronome:       widget.NewCheck("Metronome", nil),
		autoMute:        widget.NewCheck("Mute during rest", nil),
		signature:       widget.NewSelect(Signatures, nil),
		tempo:           newNumberEntry(),
		metronomeVolume: widget.NewSlider(model.VolumeMin, model.VolumeMax),
		metronomeText:   widget.NewLabel(""),
	}

	prefs.timerVolume.Step = 1
	prefs.timerVolume.OnChanged = func(value float64) {
		prefs.timerVolumeText.SetText(volumeText(value))
	}
	prefs.metronomeVolume.Step = 1
	prefs.metronomeVolume.OnChanged = func(value float64) {
		prefs.metronomeText.SetText(volumeText(value))
	}
	prefs.tempo.OnSubmitted = func(string) {
		prefs.commitTempo()
	}

	form := container.NewVBox(
		widget.NewLabelWithStyle("Timer", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Practice"), prefs.practiceMinutes, widget.NewLabel("min"), prefs.practiceSeconds, widget.NewLabel("sec")),
		container.NewHBox(widget.NewLabel("Rest"), prefs.restMinutes, widget.NewLabel("min"), prefs.restSeconds, widget.NewLabel("sec")),
		container.NewBorder(nil, nil, widget.NewLabel("Cue volume"), prefs.timerVolumeText, prefs.timerVolume),
		widget.NewLabelWithStyle("Metronome", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		prefs.metronome,
		prefs.autoMute,
		container.NewHBox(widget.NewLabel("Signature"), prefs.signature, widget.NewLabel("Tempo"), prefs.tempo, widget.NewLabel("BPM")),
		container.NewBorder(nil, nil, widget.NewLabel("Click volume"), prefs.metronomeText, prefs.metronomeVolume),
	)

	prefs.saveButton = widget.NewButton("Save", prefs.handleSave)
	prefs.cancelButton = widget.NewButton("Cancel", func() {
		window.Hide()
		prefs.UpdateConfig(prefs.config)
		if prefs.onCancel != nil {
			prefs.onCancel()
		}
	})
	buttons := container.NewHBox(prefs.saveButton, layout.NewSpacer(), prefs.cancelButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, form))
	window.Resize(fyne.NewSize(440, 380))
	window.SetCloseIntercept(func() {
		window.Hide()
	})

	prefs.UpdateConfig(config)
	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// SetOnCancel sets the handler run after Cancel.
func (prefs *Window) SetOnCancel(handler func()) {
	prefs.onCancel = handler
}

// UpdateConfig replaces window values.
func (prefs *Window) UpdateConfig(config model.TimerConfig) {
	prefs.config = config
	fields := FieldsFromConfig(config)
	prefs.practiceMinutes.SetText(fields.PracticeMinutes)
	prefs.practiceSeconds.SetText(fields.PracticeSeconds)
	prefs.restMinutes.SetText(fields.RestMinutes)
	prefs.restSeconds.SetText(fields.RestSeconds)
	prefs.timerVolume.SetValue(fields.TimerVolume)
	prefs.timerVolumeText.SetText(volumeText(fields.TimerVolume))
	prefs.metronome.SetChecked(fields.MetronomeEnabled)
	prefs.autoMute.SetChecked(fields.AutoMuteRest)
	if !slices.Contains(prefs.signature.Options, fields.Signature) {
		prefs.signature.Options = append(slices.Clone(prefs.signature.Options), fields.Signature)
	}
	prefs.signature.SetSelected(fields.Signature)
	prefs.tempo.SetText(fields.Tempo)
	prefs.metronomeVolume.SetValue(fields.MetronomeVolume)
	prefs.metronomeText.SetText(volumeText(fields.MetronomeVolume))
}

func (prefs *Window) fields() Fields {
	return Fields{
		PracticeMinutes:  prefs.practiceMinutes.Text,
		PracticeSeconds:  prefs.practiceSeconds.Text,
		RestMinutes:      prefs.restMinutes.Text,
		RestSeconds:      prefs.restSeconds.Text,
		TimerVolume:      prefs.timerVolume.Value,
		MetronomeEnabled: prefs.metronome.Checked,
		AutoMuteRest:     prefs.autoMute.Checked,
		Signature:        prefs.signature.Selected,
		Tempo:            prefs.tempo.Text,
		MetronomeVolume:  prefs.metronomeVolume.Value,
	}
}

func (prefs *Window) commitTempo() {
	tempo := model.CommitTempo(prefs.tempo.Text, prefs.config.Metronome.Tempo)
	prefs.tempo.SetText(strconv.Itoa(tempo))
}

func (prefs *Window) handleSave() {
	config := prefs.fields().Config(prefs.config)
	prefs.UpdateConfig(config)
	if prefs.onSave != nil {
		prefs.onSave(config)
	}
	prefs.window.Hide()
}

func newNumberEntry() *widget.Entry {
	entry := widget.NewEntry()
	entry.SetPlaceHolder("0")
	return entry
}

func volumeText(value float64) string {
	return fmt.Sprintf("%d%%", int(value))
}
