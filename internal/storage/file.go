package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFile writes data as a whole-file overwrite, creating the parent
// directory first. A failed write removes any partially written file.
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		os.Remove(path)
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return nil
}
