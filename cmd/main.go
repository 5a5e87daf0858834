package main

import (
	"errors"
	"os"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/rs/zerolog"

	"practicetimer/internal/audio"
	"practicetimer/internal/core/model"
	"practicetimer/internal/core/practice"
	"practicetimer/internal/core/timekeeper"
	xlog "practicetimer/internal/log"
	"practicetimer/internal/platform"
	"practicetimer/internal/storage"
	"practicetimer/internal/ui/display"
	"practicetimer/internal/ui/preferences"
	"practicetimer/internal/ui/tray"
	"practicetimer/resources"
)

const (
	appName  = "PracticeTimer"
	appID    = "com.practicetimer.app"
	appTitle = "Practice Timer"
)

func main() {
	xlog.Configure(xlog.Config{Service: "practicetimer"})
	logger := xlog.WithComponent("main")

	activate := make(chan struct{}, 1)
	guard, err := platform.AcquireSingleInstance(appName, func() {
		select {
		case activate <- struct{}{}:
		default:
		}
	})
	if errors.Is(err, platform.ErrAlreadyRunning) {
		logger.Info().Str("event", "app.already_running").Msg("activated running instance")
		return
	}
	if err != nil {
		logger.Warn().Err(err).Str("event", "app.single_instance").Msg("single instance guard unavailable")
	}
	defer func() {
		_ = guard.Release()
	}()

	store := openStore(logger)
	config, err := store.Load()
	if err != nil {
		logger.Warn().Err(err).Str("event", "settings.load_failed").Str("path", store.Path()).Msg("using defaults")
	}
	saver := storage.NewSaver(store, storage.DefaultSaveDelay)
	defer func() {
		_ = saver.Close()
	}()

	output := openAudio(logger)
	if closer, ok := output.(*audio.Device); ok {
		defer func() {
			_ = closer.Close()
		}()
	}

	controller := practice.New(config, output, practice.Options{Persister: saver})
	defer controller.Close()

	fyneApp := app.NewWithID(appID)
	fyneApp.SetIcon(resources.AppIcon())
	desktopApp, hasTray := fyneApp.(desktop.App)

	var (
		mainWindow  *display.Window
		prefsWindow *preferences.Window
		trayManager *tray.Manager
	)

	refreshMetronome := func(enabled bool) {
		if trayManager != nil {
			trayManager.SetMetronome(enabled)
		}
	}
	toggleMetronome := func() {
		updated := controller.Config()
		updated.Metronome.Enabled = !updated.Metronome.Enabled
		controller.UpdateConfig(updated)
		prefsWindow.UpdateConfig(controller.Config())
		refreshMetronome(controller.Config().Metronome.Enabled)
	}
	start := func() {
		// A missing duration is reported through EventCannotStart.
		_, _ = controller.Start()
	}

	mainWindow = display.New(fyneApp, appTitle, display.Callbacks{
		OnStart:       start,
		OnPause:       func() { controller.Pause() },
		OnStop:        func() { controller.Stop() },
		OnPreferences: func() { prefsWindow.Show() },
	})
	mainWindow.SetOnClose(func() {
		if hasTray {
			mainWindow.Hide()
			return
		}
		fyneApp.Quit()
	})
	defer mainWindow.Close()

	prefsWindow = preferences.New(fyneApp, controller.Config(), func(updated model.TimerConfig) {
		controller.UpdateConfig(updated)
		refreshMetronome(controller.Config().Metronome.Enabled)
	})

	if hasTray {
		trayManager = tray.New(desktopApp, tray.Callbacks{
			OnShow: mainWindow.Show,
			OnToggle: func() {
				_ = controller.Toggle()
			},
			OnStop:            func() { controller.Stop() },
			OnToggleMetronome: toggleMetronome,
			OnPreferences:     prefsWindow.Show,
			OnQuit:            fyneApp.Quit,
		})
		trayManager.SetMetronome(controller.Config().Metronome.Enabled)
		desktopApp.SetSystemTrayIcon(resources.AppIcon())
	}

	watcher, err := storage.Watch(store, storage.DefaultReloadDelay, func(updated model.TimerConfig) {
		if !controller.Reload(updated) {
			return
		}
		fyne.Do(func() {
			prefsWindow.UpdateConfig(controller.Config())
			refreshMetronome(controller.Config().Metronome.Enabled)
		})
	})
	if err != nil {
		logger.Warn().Err(err).Str("event", "settings.watch_failed").Msg("settings hot reload disabled")
	} else {
		defer func() {
			_ = watcher.Close()
		}()
	}

	fyneApp.Lifecycle().SetOnEnteredForeground(controller.Sync)

	events := controller.Subscribe(16)
	go func() {
		for event := range events {
			mainWindow.SetSnapshot(event.Snapshot)
			switch event.Type {
			case timekeeper.EventCannotStart:
				mainWindow.SetMessage(event.Message)
			case timekeeper.EventPhaseChange:
				if event.Cue {
					mainWindow.Flash(event.Snapshot.Phase)
				}
			}
			if trayManager != nil {
				snapshot := event.Snapshot
				fyne.Do(func() {
					trayManager.SetSnapshot(snapshot)
					desktopApp.SetSystemTrayIcon(resources.StateIcon(snapshot))
				})
			}
		}
	}()

	go func() {
		for range activate {
			fyne.Do(mainWindow.Show)
		}
	}()

	mainWindow.SetSnapshot(controller.Snapshot())
	mainWindow.Show()
	fyneApp.Run()
}

func openStore(logger zerolog.Logger) *storage.Store {
	store, err := storage.DefaultStore(appName)
	if err == nil {
		return store
	}
	fallback := filepath.Join(os.TempDir(), appName, storage.SettingsFileName)
	logger.Warn().Err(err).Str("event", "settings.dir_unavailable").Str("path", fallback).Msg("using temporary settings file")
	return storage.NewStore(fallback)
}

func openAudio(logger zerolog.Logger) audio.Output {
	device, err := audio.Open(audio.DefaultSampleRate)
	if err != nil {
		logger.Warn().Err(err).Str("event", "audio.unavailable").Msg("continuing without sound")
		return audio.NewSilent()
	}
	return device
}
