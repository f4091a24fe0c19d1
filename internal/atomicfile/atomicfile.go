// Package atomicfile provides atomic whole-file writes for snapshot and diff
// serialization.
package atomicfile

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/RecursiveG/fsnapshot/internal/logging"
)

// temporaryNamePrefix is the prefix used for intermediate temporary files
// created during an atomic write.
const temporaryNamePrefix = ".fsnapshot-atomic-write"

// WriteFile writes data to path in an atomic fashion: it is written to a
// temporary sibling file first, which is then renamed into place. This
// ensures that a reader never observes a partially-written file at path, and
// that a failed write never corrupts an existing file at path.
func WriteFile(path string, data []byte, permissions os.FileMode, logger *logging.Logger) error {
	directory := filepath.Dir(path)

	temporary, err := os.CreateTemp(directory, temporaryNamePrefix)
	if err != nil {
		return errors.Wrap(err, "unable to create temporary file")
	}
	temporaryName := temporary.Name()

	if _, err := temporary.Write(data); err != nil {
		closeAndRemove(temporary, temporaryName, logger)
		return errors.Wrap(err, "unable to write data to temporary file")
	}

	if err := temporary.Close(); err != nil {
		removeTemporary(temporaryName, logger)
		return errors.Wrap(err, "unable to close temporary file")
	}

	if err := os.Chmod(temporaryName, permissions); err != nil {
		removeTemporary(temporaryName, logger)
		return errors.Wrap(err, "unable to set temporary file permissions")
	}

	if err := os.Rename(temporaryName, path); err != nil {
		removeTemporary(temporaryName, logger)
		return errors.Wrap(err, "unable to rename temporary file into place")
	}

	return nil
}

func closeAndRemove(f *os.File, name string, logger *logging.Logger) {
	if err := f.Close(); err != nil {
		logger.Warnf("unable to close temporary file %q: %v", name, err)
	}
	removeTemporary(name, logger)
}

func removeTemporary(name string, logger *logging.Logger) {
	if err := os.Remove(name); err != nil {
		logger.Warnf("unable to remove temporary file %q: %v", name, err)
	}
}
