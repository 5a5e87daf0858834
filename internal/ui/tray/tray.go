package tray

import (
	"fmt"

	"fyne.io/fyne/v2"

	"practicetimer/internal/core/timekeeper"
)

// MenuHost is the part of desktop.App the tray needs.
type MenuHost interface {
	SetSystemTrayMenu(menu *fyne.Menu)
}

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnShow            func()
	OnToggle          func()
	OnStop            func()
	OnToggleMetronome func()
	OnPreferences     func()
	OnQuit            func()
}

// Manager handles system tray state.
type Manager struct {
	host          MenuHost
	callbacks     Callbacks
	statusItem    *fyne.MenuItem
	toggleItem    *fyne.MenuItem
	stopItem      *fyne.MenuItem
	metronomeItem *fyne.MenuItem
}

// New creates a tray manager and installs its menu.
func New(host MenuHost, callbacks Callbacks) *Manager {
	manager := &Manager{
		host:      host,
		callbacks: callbacks,
	}

	manager.statusItem = fyne.NewMenuItem("Stopped", nil)
	manager.statusItem.Disabled = true
	manager.toggleItem = fyne.NewMenuItem("Start", invoke(&manager.callbacks.OnToggle))
	manager.stopItem = fyne.NewMenuItem("Stop", invoke(&manager.callbacks.OnStop))
	manager.stopItem.Disabled = true
	manager.metronomeItem = fyne.NewMenuItem("Metronome", invoke(&manager.callbacks.OnToggleMetronome))

	manager.refreshMenu()
	return manager
}

// SetSnapshot updates the status line and the transport items.
func (manager *Manager) SetSnapshot(snapshot timekeeper.Snapshot) {
	view := snapshot.Display()
	switch snapshot.State {
	case timekeeper.StateStopped:
		manager.statusItem.Label = view.Status
	default:
		manager.statusItem.Label = fmt.Sprintf("%s %s · Cycle %d (%s)", view.PhaseLabel, view.FormattedRemaining, view.Cycle, view.Status)
	}

	controls := snapshot.Controls()
	if controls.Pause {
		manager.toggleItem.Label = "Pause"
	} else if snapshot.State == timekeeper.StatePaused {
		manager.toggleItem.Label = "Resume"
	} else {
		manager.toggleItem.Label = "Start"
	}
	manager.stopItem.Disabled = !controls.Stop
	manager.refreshMenu()
}

// SetMetronome updates the metronome check mark.
func (manager *Manager) SetMetronome(enabled bool) {
	manager.metronomeItem.Checked = enabled
	manager.refreshMenu()
}

func (manager *Manager) refreshMenu() {
	if manager.host == nil {
		return
	}
	manager.host.SetSystemTrayMenu(fyne.NewMenu("Practice Timer",
		manager.statusItem,
		fyne.NewMenuItemSeparator(),
		manager.toggleItem,
		manager.stopItem,
		manager.metronomeItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Show timer", invoke(&manager.callbacks.OnShow)),
		fyne.NewMenuItem("Preferences", invoke(&manager.callbacks.OnPreferences)),
		fyne.NewMenuItem("Quit", invoke(&manager.callbacks.OnQuit)),
	))
}

func invoke(handler *func()) func() {
	return func() {
		if *handler != nil {
			(*handler)()
		}
	}
}
