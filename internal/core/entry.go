package core

import (
	"errors"
	"strings"

	"github.com/RecursiveG/fsnapshot/internal/fingerprint"
)

// Kind identifies the type of filesystem object an Entry (or the endpoints of
// a Change) represents.
type Kind uint8

// The supported entry kinds. Absent only ever appears as one side of a
// Change; it never appears inside a Snapshot.
const (
	KindAbsent Kind = iota
	KindFile
	KindDir
)

// String returns the literal token used for Kind in audit log lines and JSON
// serialization.
func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	default:
		return "unknown"
	}
}

// Entry represents a single file or directory in a Snapshot. A nil *Entry
// represents the absence of content at a path (used only within Change, never
// within a Snapshot).
type Entry struct {
	// Kind is the entry's type: KindFile or KindDir (never KindAbsent for an
	// entry actually stored in a Snapshot).
	Kind Kind
	// Size is the file size in bytes. Zero and meaningless for directories.
	Size int64
	// ModificationTime is the file's modification time, in integer seconds
	// since the Unix epoch. Zero and meaningless for directories.
	ModificationTime int64
	// Digest is the file's content fingerprint. Zero and meaningless for
	// directories.
	Digest fingerprint.Digest
}

// NewFileEntry constructs a file Entry.
func NewFileEntry(size, modificationTime int64, digest fingerprint.Digest) *Entry {
	return &Entry{Kind: KindFile, Size: size, ModificationTime: modificationTime, Digest: digest}
}

// NewDirEntry constructs a directory Entry.
func NewDirEntry() *Entry {
	return &Entry{Kind: KindDir}
}

// EnsureValid ensures that the Entry's invariants are respected. A nil Entry
// is always considered valid, since it represents an explicit absence.
func (e *Entry) EnsureValid() error {
	if e == nil {
		return nil
	}
	switch e.Kind {
	case KindFile:
		return nil
	case KindDir:
		if e.Size != 0 || e.ModificationTime != 0 || !e.Digest.IsZero() {
			return errors.New("directory entry carries file-only metadata")
		}
		return nil
	default:
		return errors.New("entry has invalid kind")
	}
}

// Equal reports whether two Entries represent the same content for diffing
// purposes. For files, only the content digest is compared: modification time
// and size are reuse-acceleration metadata, not identity (see Snapshot
// Builder reuse rules), so they are deliberately excluded here. For
// directories, all directory entries at any path are considered equal to each
// other, since a directory carries no content of its own -- only its children
// (tracked as separate Entries) can differ.
func (e *Entry) Equal(other *Entry) bool {
	if e == nil || other == nil {
		return e == other
	}
	if e.Kind != other.Kind {
		return false
	}
	if e.Kind == KindFile {
		return e.Digest == other.Digest
	}
	return true
}

// validateComponentName reports an error if name is not a valid single path
// component (non-empty, no separator, not "." or "..").
func validateComponentName(name string) error {
	if name == "" {
		return errors.New("empty path component")
	} else if name == "." || name == ".." {
		return errors.New("dot path component")
	} else if strings.IndexByte(name, '/') != -1 {
		return errors.New("path component contains separator")
	}
	return nil
}
