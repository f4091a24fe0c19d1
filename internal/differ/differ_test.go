package differ

import (
	"strings"
	"testing"

	"github.com/RecursiveG/fsnapshot/internal/core"
	"github.com/RecursiveG/fsnapshot/internal/fingerprint"
)

func digest(t *testing.T, s string) fingerprint.Digest {
	t.Helper()
	d, err := fingerprint.Of(strings.NewReader(s))
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func changeByPath(diff *core.Diff, path string) *core.Change {
	for _, c := range diff.Changes {
		if c.Path == path {
			return c
		}
	}
	return nil
}

// TestDiffIdentity verifies property 4: diff(S, S) is empty.
func TestDiffIdentity(t *testing.T) {
	snap := core.New("/root")
	snap.Entries["a"] = core.NewDirEntry()
	snap.Entries["a/f"] = core.NewFileEntry(1, 100, digest(t, "x"))

	result := Diff(snap, snap)
	if len(result.Changes) != 0 {
		t.Errorf("expected no changes diffing a snapshot against itself, got %d", len(result.Changes))
	}
}

// TestDiffIgnoresMetadataOnlyChanges verifies that mtime/size changes alone
// (fingerprint unchanged) do not produce a Change.
func TestDiffIgnoresMetadataOnlyChanges(t *testing.T) {
	before := core.New("/root")
	before.Entries["f"] = core.NewFileEntry(1, 100, digest(t, "x"))

	after := core.New("/root")
	after.Entries["f"] = core.NewFileEntry(999, 999999, digest(t, "x"))

	result := Diff(before, after)
	if len(result.Changes) != 0 {
		t.Errorf("expected no changes when only mtime/size differ, got %d", len(result.Changes))
	}
}

// TestDiffDetectsContentChange verifies a file->file change on differing
// fingerprints.
func TestDiffDetectsContentChange(t *testing.T) {
	before := core.New("/root")
	before.Entries["f"] = core.NewFileEntry(1, 100, digest(t, "x"))

	after := core.New("/root")
	after.Entries["f"] = core.NewFileEntry(1, 100, digest(t, "y"))

	result := Diff(before, after)
	if len(result.Changes) != 1 {
		t.Fatalf("expected exactly one change, got %d", len(result.Changes))
	}
	c := result.Changes[0]
	if c.Path != "f" || c.FromKind != core.KindFile || c.ToKind != core.KindFile {
		t.Errorf("unexpected change: %+v", c)
	}
}

// TestDiffDirAddedAndRemoved verifies directory addition and removal
// Changes.
func TestDiffDirAddedAndRemoved(t *testing.T) {
	before := core.New("/root")
	before.Entries["gone"] = core.NewDirEntry()

	after := core.New("/root")
	after.Entries["new"] = core.NewDirEntry()

	result := Diff(before, after)
	if len(result.Changes) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(result.Changes))
	}

	gone := changeByPath(result, "gone")
	if gone == nil || gone.FromKind != core.KindDir || gone.ToKind != core.KindAbsent {
		t.Errorf("unexpected 'gone' change: %+v", gone)
	}
	added := changeByPath(result, "new")
	if added == nil || added.FromKind != core.KindAbsent || added.ToKind != core.KindDir {
		t.Errorf("unexpected 'new' change: %+v", added)
	}
}

// TestDiffKindFlip verifies that a path changing kind produces a single
// Change carrying both entries.
func TestDiffKindFlip(t *testing.T) {
	before := core.New("/root")
	before.Entries["f2"] = core.NewFileEntry(1, 1, digest(t, "x"))

	after := core.New("/root")
	after.Entries["f2"] = core.NewDirEntry()

	result := Diff(before, after)
	if len(result.Changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(result.Changes))
	}
	c := result.Changes[0]
	if !c.IsKindFlip() || c.FromKind != core.KindFile || c.ToKind != core.KindDir {
		t.Errorf("expected file->dir kind flip, got %+v", c)
	}
}

// TestSummarize verifies DiffStats aggregation.
func TestSummarize(t *testing.T) {
	diff := &core.Diff{Changes: []*core.Change{
		{FromKind: core.KindAbsent, ToKind: core.KindFile},
		{FromKind: core.KindAbsent, ToKind: core.KindDir},
		{FromKind: core.KindFile, ToKind: core.KindAbsent},
		{FromKind: core.KindDir, ToKind: core.KindAbsent},
		{FromKind: core.KindFile, ToKind: core.KindFile},
		{FromKind: core.KindFile, ToKind: core.KindDir},
	}}
	stats := Summarize(diff)
	want := DiffStats{FilesAdded: 1, DirsAdded: 1, FilesRemoved: 1, DirsRemoved: 1, FilesModified: 1, KindFlips: 1}
	if stats != want {
		t.Errorf("Summarize = %+v, want %+v", stats, want)
	}
}
