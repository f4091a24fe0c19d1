// Package differ computes a structural Diff between two Snapshots.
package differ

import "github.com/RecursiveG/fsnapshot/internal/core"

// Diff performs a diff operation between a before and after Snapshot and
// returns a Diff that, if applied to before, would transform it into after.
//
// The algorithm forms the union of all paths present in either snapshot and,
// for each path, compares the entry kind on each side:
//   - (file, file): a Change is emitted iff the content fingerprints differ;
//     modification time and size are reuse-acceleration metadata, not
//     identity, so they never factor into this comparison.
//   - (dir, dir): nothing is emitted, since a directory carries no content of
//     its own.
//   - any other combination (including either side being absent): a Change is
//     emitted carrying whichever entries are non-absent.
//
// The returned Diff's order reflects Go map iteration order and carries no
// semantic meaning; the Patch Applier is responsible for imposing application
// order.
func Diff(before, after *core.Snapshot) *core.Diff {
	seen := make(map[string]struct{}, len(before.Entries)+len(after.Entries))
	var changes []*core.Change

	visit := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}

		beforeEntry := before.Get(p)
		afterEntry := after.Get(p)
		beforeKind := before.Kind(p)
		afterKind := after.Kind(p)

		if beforeKind == afterKind {
			if beforeKind == core.KindDir {
				return
			}
			if beforeKind == core.KindFile && beforeEntry.Equal(afterEntry) {
				return
			}
		}

		changes = append(changes, &core.Change{
			Path:     p,
			FromKind: beforeKind,
			ToKind:   afterKind,
			Old:      beforeEntry,
			New:      afterEntry,
		})
	}

	for p := range before.Entries {
		visit(p)
	}
	for p := range after.Entries {
		visit(p)
	}

	return &core.Diff{Changes: changes}
}

// DiffStats summarizes a Diff's contents by category, for reporting purposes.
type DiffStats struct {
	FilesAdded    int
	FilesRemoved  int
	FilesModified int
	DirsAdded     int
	DirsRemoved   int
	KindFlips     int
}

// Summarize computes aggregate counts over a Diff's changes.
func Summarize(diff *core.Diff) DiffStats {
	var stats DiffStats
	for _, c := range diff.Changes {
		switch {
		case c.IsKindFlip():
			stats.KindFlips++
		case c.IsAddition() && c.ToKind == core.KindFile:
			stats.FilesAdded++
		case c.IsAddition() && c.ToKind == core.KindDir:
			stats.DirsAdded++
		case c.IsRemoval() && c.FromKind == core.KindFile:
			stats.FilesRemoved++
		case c.IsRemoval() && c.FromKind == core.KindDir:
			stats.DirsRemoved++
		case c.IsContentModification():
			stats.FilesModified++
		}
	}
	return stats
}
