// Package resources embeds the application icons.
package resources

import (
	"embed"
	"fmt"
	"sync"

	"fyne.io/fyne/v2"

	"practicetimer/internal/core/phase"
	"practicetimer/internal/core/timekeeper"
)

const iconDir = "icons/"

//go:embed icons/*.svg
var iconFS embed.FS

var iconCache sync.Map

// Icon returns a Fyne resource for the given icon file.
func Icon(fileName string) (fyne.Resource, error) {
	return loadResource(iconFS, iconDir+fileName, &iconCache)
}

// MustIcon returns a Fyne resource or panics on error.
func MustIcon(fileName string) fyne.Resource {
	resource, err := Icon(fileName)
	if err != nil {
		panic(err)
	}
	return resource
}

// AppIcon is the neutral application icon.
func AppIcon() fyne.Resource {
	return MustIcon("idle.svg")
}

// StateIcon picks the tray icon for a timer snapshot: the phase colour while
// running, the neutral icon otherwise.
func StateIcon(snapshot timekeeper.Snapshot) fyne.Resource {
	if snapshot.State != timekeeper.StateRunning {
		return AppIcon()
	}
	if snapshot.Phase == phase.Rest {
		return MustIcon("rest.svg")
	}
	return MustIcon("practice.svg")
}

func loadResource(fs embed.FS, path string, cache *sync.Map) (fyne.Resource, error) {
	if cached, ok := cache.Load(path); ok {
		return cached.(fyne.Resource), nil
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load resource %s: %w", path, err)
	}

	resource := fyne.NewStaticResource(path, data)
	cache.Store(path, resource)
	return resource, nil
}
