// Package fsutil writes files so that readers see either the old or the new
// content, never a torn write.
package fsutil

import (
	"os"
	"path/filepath"

	"github.com/juju/errors"
)

const FileMode os.FileMode = 0o600

// WriteFile atomically replaces filename with data, creating parent
// directories as needed.
func WriteFile(filename string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return errors.Annotatef(err, "create directory for %s", filename)
	}
	if err := writeFile(filename, data, FileMode); err != nil {
		return errors.Annotatef(err, "write %s", filename)
	}
	return nil
}
