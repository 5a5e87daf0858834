package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"practicetimer/internal/core/model"
	"practicetimer/internal/platform"
)

// SettingsFileName is the name of the settings file inside the app config dir.
const SettingsFileName = "settings.yaml"

type yamlDuration struct {
	Minutes int `yaml:"minutes"`
	Seconds int `yaml:"seconds"`
}

type yamlMetronome struct {
	Enabled      bool   `yaml:"enabled"`
	AutoMuteRest bool   `yaml:"auto_mute_rest"`
	Signature    string `yaml:"signature"`
	Tempo        int    `yaml:"tempo"`
	Volume       int    `yaml:"volume"`
}

type yamlSettings struct {
	Practice    yamlDuration  `yaml:"practice"`
	Rest        yamlDuration  `yaml:"rest"`
	TimerVolume int           `yaml:"timer_volume"`
	Metronome   yamlMetronome `yaml:"metronome"`
}

// Store reads and writes the settings file at a fixed path.
type Store struct {
	path string
}

// NewStore returns a store for the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultStore returns the store under the user config dir for appName.
func DefaultStore(appName string) (*Store, error) {
	configDir, err := platform.AppConfigDir(appName)
	if err != nil {
		return nil, fmt.Errorf("resolve settings path: %w", err)
	}
	return NewStore(filepath.Join(configDir, SettingsFileName)), nil
}

// Path returns the settings file path.
func (store *Store) Path() string {
	return store.path
}

// Load reads the settings. A missing file yields the defaults; keys absent
// from the file keep their default values. The result is normalized.
func (store *Store) Load() (model.TimerConfig, error) {
	defaults := model.DefaultTimerConfig()

	rawData, err := os.ReadFile(store.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaults, nil
		}
		return defaults, fmt.Errorf("read settings file: %w", err)
	}

	fileData := toYAML(defaults)
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return defaults, fmt.Errorf("parse settings yaml: %w", err)
	}

	return fromYAML(fileData).Normalize(), nil
}

// Save writes the settings atomically.
func (store *Store) Save(config model.TimerConfig) error {
	if err := os.MkdirAll(filepath.Dir(store.path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	serialized, err := yaml.Marshal(toYAML(config.Normalize()))
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := writeFileAtomic(store.path, serialized); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	return nil
}

func toYAML(config model.TimerConfig) yamlSettings {
	return yamlSettings{
		Practice:    yamlDuration{Minutes: config.Practice.Minutes, Seconds: config.Practice.Seconds},
		Rest:        yamlDuration{Minutes: config.Rest.Minutes, Seconds: config.Rest.Seconds},
		TimerVolume: config.TimerVolume,
		Metronome: yamlMetronome{
			Enabled:      config.Metronome.Enabled,
			AutoMuteRest: config.Metronome.AutoMuteRest,
			Signature:    config.Metronome.Signature,
			Tempo:        config.Metronome.Tempo,
			Volume:       config.Metronome.Volume,
		},
	}
}

func fromYAML(fileData yamlSettings) model.TimerConfig {
	return model.TimerConfig{
		Practice:    model.PhaseDuration{Minutes: fileData.Practice.Minutes, Seconds: fileData.Practice.Seconds},
		Rest:        model.PhaseDuration{Minutes: fileData.Rest.Minutes, Seconds: fileData.Rest.Seconds},
		TimerVolume: fileData.TimerVolume,
		Metronome: model.MetronomeConfig{
			Enabled:      fileData.Metronome.Enabled,
			AutoMuteRest: fileData.Metronome.AutoMuteRest,
			Signature:    fileData.Metronome.Signature,
			Tempo:        fileData.Metronome.Tempo,
			Volume:       fileData.Metronome.Volume,
		},
	}
}
