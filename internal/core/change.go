package core

import (
	"errors"
	"fmt"
)

// Change represents a single per-path transition between entry kinds. Old and
// New are nil exactly when FromKind and ToKind (respectively) are KindAbsent.
type Change struct {
	// Path is the root-relative path at which the transition occurs.
	Path string
	// FromKind is the entry kind before the change (KindAbsent if the path
	// did not exist in the "before" snapshot).
	FromKind Kind
	// ToKind is the entry kind after the change (KindAbsent if the path no
	// longer exists in the "after" snapshot).
	ToKind Kind
	// Old is the before-side entry, present iff FromKind != KindAbsent.
	Old *Entry
	// New is the after-side entry, present iff ToKind != KindAbsent.
	New *Entry
}

// EnsureValid ensures that the Change's invariants are respected.
func (c *Change) EnsureValid() error {
	if c == nil {
		return errors.New("nil change")
	}
	if c.FromKind == KindAbsent && c.ToKind == KindAbsent {
		return errors.New("change has no effect (absent to absent)")
	}
	if c.FromKind == KindDir && c.ToKind == KindDir {
		return errors.New("directory-to-directory change carries no content to apply")
	}
	if (c.FromKind == KindAbsent) != (c.Old == nil) {
		return errors.New("change from-kind does not match presence of old entry")
	}
	if (c.ToKind == KindAbsent) != (c.New == nil) {
		return errors.New("change to-kind does not match presence of new entry")
	}
	if c.Old != nil {
		if c.Old.Kind != c.FromKind {
			return fmt.Errorf("old entry kind %s does not match from-kind %s", c.Old.Kind, c.FromKind)
		}
		if err := c.Old.EnsureValid(); err != nil {
			return fmt.Errorf("invalid old entry: %w", err)
		}
	}
	if c.New != nil {
		if c.New.Kind != c.ToKind {
			return fmt.Errorf("new entry kind %s does not match to-kind %s", c.New.Kind, c.ToKind)
		}
		if err := c.New.EnsureValid(); err != nil {
			return fmt.Errorf("invalid new entry: %w", err)
		}
	}
	return nil
}

// IsKindFlip reports whether the change replaces one non-absent kind with a
// different non-absent kind at the same path (file<->dir).
func (c *Change) IsKindFlip() bool {
	return c.FromKind != KindAbsent && c.ToKind != KindAbsent && c.FromKind != c.ToKind
}

// IsRemoval reports whether the change removes a path entirely.
func (c *Change) IsRemoval() bool {
	return c.FromKind != KindAbsent && c.ToKind == KindAbsent
}

// IsAddition reports whether the change adds a path that did not exist
// before.
func (c *Change) IsAddition() bool {
	return c.FromKind == KindAbsent && c.ToKind != KindAbsent
}

// IsContentModification reports whether the change represents a same-kind
// file content update.
func (c *Change) IsContentModification() bool {
	return c.FromKind == KindFile && c.ToKind == KindFile
}

// Diff is an ordered sequence of Changes produced by the Differ. The order in
// which Changes appear here reflects emission order only; the Patch Applier
// is responsible for imposing the semantically significant application
// order.
type Diff struct {
	Changes []*Change
}
