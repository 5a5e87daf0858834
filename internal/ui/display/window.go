// Package display renders the timer state in the main window.
package display

import (
	"context"
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"practicetimer/internal/core/phase"
	"practicetimer/internal/core/timekeeper"
	"practicetimer/internal/ui/animation"
)

// Callbacks defines the window's control handlers.
type Callbacks struct {
	OnStart       func()
	OnPause       func()
	OnStop        func()
	OnPreferences func()
}

// Window is the main timer window.
type Window struct {
	window     fyne.Window
	baseTitle  string
	callbacks  Callbacks
	background *canvas.Rectangle
	timerLabel *canvas.Text
	phaseLabel *canvas.Text
	nextLabel  *canvas.Text
	cycleLabel *canvas.Text
	status     *widget.Label
	flasher    *animation.Engine

	startButton *widget.Button
	pauseButton *widget.Button
	stopButton  *widget.Button
	prefsButton *widget.Button
}

var (
	practiceColor = color.NRGBA{R: 232, G: 190, B: 66, A: 255}
	restColor     = color.NRGBA{R: 96, G: 178, B: 222, A: 255}
	textColor     = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	backdrop      = color.NRGBA{R: 24, G: 24, B: 28, A: 255}
)

// New creates the main window. It is not shown until Show is called.
func New(app fyne.App, title string, callbacks Callbacks) *Window {
	window := app.NewWindow(title)
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}

	timerLabel := canvas.NewText("--:--", practiceColor)
	timerLabel.Alignment = fyne.TextAlignCenter
	timerLabel.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	timerLabel.TextSize = 64

	phaseLabel := canvas.NewText("", textColor)
	phaseLabel.Alignment = fyne.TextAlignCenter
	phaseLabel.TextStyle = fyne.TextStyle{Bold: true}
	phaseLabel.TextSize = 22

	nextLabel := canvas.NewText("", textColor)
	nextLabel.Alignment = fyne.TextAlignCenter
	nextLabel.TextSize = 14

	cycleLabel := canvas.NewText("", textColor)
	cycleLabel.Alignment = fyne.TextAlignCenter
	cycleLabel.TextSize = 14

	display := &Window{
		window:     window,
		baseTitle:  title,
		callbacks:  callbacks,
		background: canvas.NewRectangle(backdrop),
		timerLabel: timerLabel,
		phaseLabel: phaseLabel,
		nextLabel:  nextLabel,
		cycleLabel: cycleLabel,
		status:     widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Italic: true}),
	}

	display.flasher = animation.New(animation.DefaultConfig(), func(fill color.Color) {
		fyne.Do(func() {
			display.background.FillColor = fill
			display.background.Refresh()
		})
	})

	display.startButton = widget.NewButtonWithIcon("Start", theme.MediaPlayIcon(), func() {
		if display.callbacks.OnStart != nil {
			display.callbacks.OnStart()
		}
	})
	display.pauseButton = widget.NewButtonWithIcon("Pause", theme.MediaPauseIcon(), func() {
		if display.callbacks.OnPause != nil {
			display.callbacks.OnPause()
		}
	})
	display.stopButton = widget.NewButtonWithIcon("Stop", theme.MediaStopIcon(), func() {
		if display.callbacks.OnStop != nil {
			display.callbacks.OnStop()
		}
	})
	display.prefsButton = widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		if display.callbacks.OnPreferences != nil {
			display.callbacks.OnPreferences()
		}
	})

	face := container.New(&faceLayout{}, phaseLabel, timerLabel, nextLabel, cycleLabel)
	controls := container.NewGridWithColumns(4, display.startButton, display.pauseButton, display.stopButton, display.prefsButton)
	content := container.NewBorder(nil, container.NewVBox(display.status, controls), nil, nil, face)

	window.SetContent(container.NewStack(display.background, container.NewPadded(content)))
	window.Resize(fyne.NewSize(360, 300))
	return display
}

// Show displays and focuses the window.
func (display *Window) Show() {
	display.window.Show()
	display.window.RequestFocus()
}

// SetOnClose replaces the close behaviour.
func (display *Window) SetOnClose(handler func()) {
	display.window.SetCloseIntercept(handler)
}

// Hide hides the window.
func (display *Window) Hide() {
	display.window.Hide()
}

// Window returns the underlying fyne window.
func (display *Window) Window() fyne.Window {
	return display.window
}

// SetSnapshot schedules an update on the UI goroutine.
func (display *Window) SetSnapshot(snapshot timekeeper.Snapshot) {
	fyne.Do(func() {
		display.applyUnsafe(snapshot)
	})
}

// Flash briefly highlights the window in the colour of the phase just entered.
func (display *Window) Flash(entered phase.Phase) {
	display.flasher.Flash(context.Background(), animation.FlashSpec{
		Highlight: dim(phaseColor(entered)),
		Rest:      backdrop,
	})
}

// Close stops any running flash.
func (display *Window) Close() {
	display.flasher.Stop()
}

// SetMessage overrides the status text until the next snapshot.
func (display *Window) SetMessage(message string) {
	fyne.Do(func() {
		display.status.SetText(message)
	})
}

func (display *Window) applyUnsafe(snapshot timekeeper.Snapshot) {
	view := snapshot.Display()

	display.timerLabel.Text = view.FormattedRemaining
	display.timerLabel.Color = phaseColor(snapshot.Phase)
	display.timerLabel.Refresh()

	display.phaseLabel.Text = view.PhaseLabel
	display.phaseLabel.Refresh()
	display.nextLabel.Text = "Next: " + view.NextPhaseLabel
	display.nextLabel.Refresh()
	display.cycleLabel.Text = fmt.Sprintf("Cycle %d", view.Cycle)
	display.cycleLabel.Refresh()
	display.status.SetText(view.Status)

	controls := snapshot.Controls()
	setEnabled(display.startButton, controls.Start)
	setEnabled(display.pauseButton, controls.Pause)
	setEnabled(display.stopButton, controls.Stop)

	display.window.SetTitle(snapshot.Title(display.baseTitle))
}

func phaseColor(p phase.Phase) color.Color {
	if p == phase.Rest {
		return restColor
	}
	return practiceColor
}

func dim(c color.Color) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 10), G: uint8(g >> 10), B: uint8(b >> 10), A: 255}
}

func setEnabled(button *widget.Button, enabled bool) {
	if enabled {
		button.Enable()
		return
	}
	button.Disable()
}

// faceLayout stacks phase, timer, next phase and cycle, centred vertically.
type faceLayout struct{}

func (layout *faceLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	if len(objects) < 4 {
		return
	}

	total := float32(0)
	for _, object := range objects {
		total += object.MinSize().Height
	}
	gap := size.Height * 0.04
	y := (size.Height - total - gap*float32(len(objects)-1)) / 2
	if y < 0 {
		y = 0
	}

	for _, object := range objects {
		height := object.MinSize().Height
		object.Move(fyne.NewPos(0, y))
		object.Resize(fyne.NewSize(size.Width, height))
		y += height + gap
	}
}

func (layout *faceLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	width := float32(0)
	height := float32(0)
	for _, object := range objects {
		minSize := object.MinSize()
		if minSize.Width > width {
			width = minSize.Width
		}
		height += minSize.Height
	}
	return fyne.NewSize(width+20, height+30)
}
