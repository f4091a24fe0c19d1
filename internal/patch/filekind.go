package patch

import (
	"os"
	"syscall"

	"github.com/pkg/errors"
)

// fsKind identifies what currently occupies a destination path on disk. It is
// distinct from core.Kind because it additionally distinguishes "other"
// (neither a regular file nor a directory -- e.g. a symbolic link left over
// from some other process) from a clean absence.
type fsKind int

const (
	fsAbsent fsKind = iota
	fsFile
	fsDir
	fsOther
)

// statKind inspects path and reports what currently exists there. It does not
// follow symbolic links at path itself (Lstat), since the Applier must be
// able to detect and rename aside a symbolic link obstruction without
// accidentally operating on whatever it points to.
//
// An ENOTDIR error (an ancestor component of path is a plain file, not a
// directory) is treated the same as a clean absence rather than a hard
// failure: Phase A can kind-flip a directory to a file before Phase B's
// descendant removal Changes for that same former directory run, and those
// descendants are legitimately gone the moment their ancestor became a file.
func statKind(path string) (fsKind, error) {
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) || errors.Is(err, syscall.ENOTDIR) {
			return fsAbsent, nil
		}
		return fsAbsent, errors.Wrapf(err, "unable to stat %q", path)
	}
	switch {
	case info.IsDir():
		return fsDir, nil
	case info.Mode().IsRegular():
		return fsFile, nil
	default:
		return fsOther, nil
	}
}
