package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"practicetimer/internal/audio"
	"practicetimer/internal/core/model"
	"practicetimer/internal/core/practice"
	xlog "practicetimer/internal/log"
	"practicetimer/internal/storage"
	"practicetimer/internal/ui/terminal"
)

const appName = "PracticeTimer"

func main() {
	logPath := flag.String("log", "", "write logs to this file instead of discarding them")
	settingsPath := flag.String("settings", "", "settings file (defaults to the user config dir)")
	mute := flag.Bool("mute", false, "run without opening the audio device")
	flag.Parse()

	if err := run(*logPath, *settingsPath, *mute); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(logPath, settingsPath string, mute bool) error {
	var logOutput io.Writer = io.Discard
	if logPath != "" {
		file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer file.Close()
		logOutput = file
	}
	xlog.Configure(xlog.Config{Output: logOutput, Service: "practicetimer-tui"})
	logger := xlog.WithComponent("main")

	store, err := openStore(settingsPath)
	if err != nil {
		return err
	}
	config, err := store.Load()
	if err != nil {
		logger.Warn().Err(err).Str("event", "settings.load_failed").Str("path", store.Path()).Msg("using defaults")
	}
	saver := storage.NewSaver(store, storage.DefaultSaveDelay)
	defer func() {
		_ = saver.Close()
	}()

	var output audio.Output = audio.NewSilent()
	if !mute {
		device, err := audio.Open(audio.DefaultSampleRate)
		if err != nil {
			logger.Warn().Err(err).Str("event", "audio.unavailable").Msg("continuing without sound")
		} else {
			defer func() {
				_ = device.Close()
			}()
			output = device
		}
	}

	controller := practice.New(config, output, practice.Options{Persister: saver})
	defer controller.Close()

	watcher, err := storage.Watch(store, storage.DefaultReloadDelay, func(updated model.TimerConfig) {
		controller.Reload(updated)
	})
	if err != nil {
		logger.Warn().Err(err).Str("event", "settings.watch_failed").Msg("settings hot reload disabled")
	} else {
		defer func() {
			_ = watcher.Close()
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(terminal.New(controller), tea.WithAltScreen(), tea.WithReportFocus())
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		defer cancel()
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("run terminal ui: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		reloadOnSignal(ctx, logger, store, controller)
		program.Quit()
		return nil
	})
	return group.Wait()
}

// reloadOnSignal re-reads the settings file on each reload signal until ctx
// is done.
func reloadOnSignal(ctx context.Context, logger zerolog.Logger, store *storage.Store, controller *practice.Controller) {
	reload := make(chan os.Signal, 1)
	if len(reloadSignals) > 0 {
		signal.Notify(reload, reloadSignals...)
		defer signal.Stop(reload)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-reload:
			logger.Info().Str("event", "settings.reload_signal").Str("signal", sig.String()).Msg("reloading settings")
			config, err := store.Load()
			if err != nil {
				logger.Warn().Err(err).Str("event", "settings.reload_failed").Msg("keeping current settings")
				continue
			}
			controller.Reload(config)
		}
	}
}

func openStore(path string) (*storage.Store, error) {
	if path != "" {
		return storage.NewStore(path), nil
	}
	store, err := storage.DefaultStore(appName)
	if err != nil {
		return nil, fmt.Errorf("locate settings: %w", err)
	}
	return store, nil
}
