// Package log provides structured logging utilities.
package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config captures options for configuring the process logger.
type Config struct {
	Level   string    // optional log level ("debug", "info", etc.)
	Output  io.Writer // optional writer (defaults to os.Stderr)
	Service string    // optional service name attached to every entry
}

var (
	once sync.Once
	mu   sync.RWMutex
	base zerolog.Logger
)

// Configure initialises the process logger. Only the first call has effect.
func Configure(cfg Config) {
	once.Do(func() {
		level := zerolog.InfoLevel
		if cfg.Level != "" {
			if parsed, err := zerolog.ParseLevel(cfg.Level); err == nil {
				level = parsed
			}
		} else if env := os.Getenv("LOG_LEVEL"); env != "" {
			if parsed, err := zerolog.ParseLevel(env); err == nil {
				level = parsed
			}
		}
		zerolog.SetGlobalLevel(level)
		zerolog.TimeFieldFormat = time.RFC3339Nano

		writer := cfg.Output
		if writer == nil {
			writer = os.Stderr
		}

		service := cfg.Service
		if service == "" {
			service = "practicetimer"
		}

		mu.Lock()
		base = zerolog.New(writer).With().
			Timestamp().
			Str("service", service).
			Logger()
		mu.Unlock()
	})
}

func logger() zerolog.Logger {
	Configure(Config{})
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// Base returns the configured base logger.
func Base() zerolog.Logger {
	return logger()
}

// WithComponent returns a child logger annotated with the component name.
func WithComponent(component string) zerolog.Logger {
	return logger().With().Str("component", component).Logger()
}
