//go:build !windows

package storage

import (
	"fmt"

	"github.com/google/renameio/v2"
)

// writeFileAtomic replaces path with data: temp file, fsync, rename.
func writeFileAtomic(path string, data []byte) error {
	pendingFile, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending settings file: %w", err)
	}
	defer func() {
		_ = pendingFile.Cleanup()
	}()

	if _, err := pendingFile.Write(data); err != nil {
		return fmt.Errorf("write pending settings file: %w", err)
	}

	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace settings file: %w", err)
	}
	return nil
}
