package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConfigDir returns the OS-standard configuration directory, falling back to
// the conventional location under the home directory.
func ConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err == nil && configDir != "" {
		return configDir, nil
	}

	homeDir, homeErr := os.UserHomeDir()
	if homeErr != nil {
		if err != nil {
			return "", fmt.Errorf("get config dir: %w", err)
		}
		return "", fmt.Errorf("get config dir: %w", homeErr)
	}

	return fallbackConfigDir(homeDir), nil
}

// AppConfigDir returns the configuration directory for appName.
func AppConfigDir(appName string) (string, error) {
	configDir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, appName), nil
}
