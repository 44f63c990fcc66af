package app

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
)

// writeFileAtomic writes data to a temp file next to path and renames it into place.
// With backup set, the previous file is kept as path+BackupSuffix.
func writeFileAtomic(path string, data []byte, perm fs.FileMode, backup bool) error {
	if err := os.MkdirAll(filepath.Dir(path), DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Write to temp file first
	tmpFile := path + TmpSuffix
	if err := os.WriteFile(tmpFile, data, perm); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmpFile, err)
	}

	if backup {
		if err := copyFile(path, path+BackupSuffix, perm); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Printf("⚠️  Warning: failed to create backup of %s: %v", path, err)
		}
	}

	// Rename temp file to actual file
	if err := os.Rename(tmpFile, path); err != nil {
		if rmErr := os.Remove(tmpFile); rmErr != nil {
			log.Printf("Error removing temp file %s: %v", tmpFile, rmErr)
		}
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// readFileIfExists returns (nil, nil) when path does not exist; any other read error is returned
func readFileIfExists(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func copyFile(src, dst string, perm fs.FileMode) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, perm)
}
