package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/RecursiveG/fsnapshot/internal/treepath"
)

// FormatVersion identifies the version of the snapshot document format
// produced by this package.
const FormatVersion = 1

// Snapshot is a path-keyed map of every file and directory below (not
// including) a declared root. The empty path denotes the root itself and is
// never stored as an entry.
type Snapshot struct {
	// Version is the snapshot document format version.
	Version int
	// CapturedRoot is the root's absolute-at-capture-time path. It is
	// informational only: it is never used for matching or equality.
	CapturedRoot string
	// RunID is an optional correlation identifier for the build invocation
	// that produced this snapshot. Informational only.
	RunID string
	// Entries maps relative path to Entry. It never contains an entry keyed
	// by the empty (root) path.
	Entries map[string]*Entry
}

// New constructs an empty Snapshot rooted at capturedRoot.
func New(capturedRoot string) *Snapshot {
	return &Snapshot{
		Version:      FormatVersion,
		CapturedRoot: capturedRoot,
		Entries:      make(map[string]*Entry),
	}
}

// Kind returns the Kind of the entry at path p, or KindAbsent if no entry
// exists there (including for the root path, which is never stored).
func (s *Snapshot) Kind(p string) Kind {
	entry := s.Entries[p]
	if entry == nil {
		return KindAbsent
	}
	return entry.Kind
}

// Get returns the entry at path p, or nil if no entry exists there.
func (s *Snapshot) Get(p string) *Entry {
	return s.Entries[p]
}

// EnsureValid ensures that the Snapshot's invariants are respected:
//   - no entry is keyed by the empty (root) path;
//   - every strict, nonempty prefix of a stored path is itself a directory
//     entry;
//   - every individual Entry is itself valid.
func (s *Snapshot) EnsureValid() error {
	if s == nil {
		return fmt.Errorf("nil snapshot")
	}
	for p, entry := range s.Entries {
		if p == "" {
			return fmt.Errorf("snapshot contains an entry keyed by the root path")
		}
		if entry == nil {
			return fmt.Errorf("snapshot entry at %q is nil", p)
		}
		if err := entry.EnsureValid(); err != nil {
			return fmt.Errorf("invalid entry at %q: %w", p, err)
		}
		for _, component := range strings.Split(p, "/") {
			if err := validateComponentName(component); err != nil {
				return fmt.Errorf("invalid path %q: %w", p, err)
			}
		}
		for prefix := treepath.Dir(p); prefix != ""; prefix = treepath.Dir(prefix) {
			parent := s.Entries[prefix]
			if parent == nil || parent.Kind != KindDir {
				return fmt.Errorf("path %q is missing ancestor directory entry at %q", p, prefix)
			}
		}
	}
	return nil
}

// Equal reports whether two Snapshots describe the same set of paths with
// equal entries. Comparison is sort-insensitive: it operates directly on the
// path-keyed maps, so Go's unordered map iteration is never observable.
// CapturedRoot, RunID, and Version are diagnostic metadata and are not
// compared.
func (s *Snapshot) Equal(other *Snapshot) bool {
	if s == nil || other == nil {
		return s == other
	}
	if len(s.Entries) != len(other.Entries) {
		return false
	}
	for p, entry := range s.Entries {
		otherEntry, ok := other.Entries[p]
		if !ok {
			return false
		}
		if entry.Kind != otherEntry.Kind {
			return false
		}
		if entry.Kind == KindFile {
			if entry.Size != otherEntry.Size ||
				entry.ModificationTime != otherEntry.ModificationTime ||
				entry.Digest != otherEntry.Digest {
				return false
			}
		}
	}
	return true
}

// Paths returns the sorted list of every path stored in the Snapshot. It is
// intended for deterministic iteration (e.g. when serializing or printing),
// not for the Differ, which treats ordering as insignificant.
func (s *Snapshot) Paths() []string {
	paths := make([]string, 0, len(s.Entries))
	for p := range s.Entries {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool {
		return treepath.Less(paths[i], paths[j])
	})
	return paths
}
