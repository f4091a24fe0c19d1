// Package patch applies a core.Diff onto a live destination tree, producing
// a per-entry audit log. Its design is grounded in mutagen-io/mutagen's
// pkg/synchronization/core/transition_test.go fixture vocabulary (the
// transition engine under test there is absent from this retrieval, but the
// fixtures make its ordering and conflict behavior explicit) together with
// SPEC_FULL §9's phase ordering and conflict protocol.
package patch

import (
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/RecursiveG/fsnapshot/internal/core"
	"github.com/RecursiveG/fsnapshot/internal/fingerprint"
	"github.com/RecursiveG/fsnapshot/internal/logging"
	"github.com/RecursiveG/fsnapshot/internal/treepath"
)

// Options configures an Apply invocation.
type Options struct {
	// VerifySource, when true, re-hashes each source file before copying it
	// into dst and fails the Change's IO (distinct from a logical conflict)
	// if the source no longer matches the after-Entry's fingerprint. Off by
	// default, matching the engine's default trust posture toward the
	// snapshot.
	VerifySource bool
	// Logger receives, after each Change is applied, a Debug line for a
	// non-conflicting status or a Warn line for a conflict status, in
	// application order.
	Logger *logging.Logger
	// AuditWriter, if non-nil, receives each audit line as it is produced,
	// in application order, in addition to the returned slice.
	AuditWriter io.Writer
}

// Apply mutates dst to realize diff, reading added/changed file content from
// src. It returns the audit log, one line per Change, in application order.
//
// Apply does its best to finish the whole Diff even when individual Changes
// hit logical conflicts (handled via rename-aside); it returns an error for
// an invalid Change (before anything is applied) or for an IO failure, which
// aborts all remaining Changes. The lines produced so far are returned along
// with the error.
func Apply(diff *core.Diff, dst, src string, opts Options) ([]string, error) {
	phases, err := classify(diff.Changes)
	if err != nil {
		return nil, err
	}

	a := &applier{dst: dst, src: src, opts: opts}
	var audit []string
	for _, phase := range phases {
		for _, change := range phase {
			entry, err := a.apply(change)
			if err != nil {
				return audit, err
			}
			line := entry.Line()
			audit = append(audit, line)
			if opts.AuditWriter != nil {
				io.WriteString(opts.AuditWriter, line+"\n")
			}
			if entry.Status == statusOK || entry.Status == statusOKExists ||
				entry.Status == statusOKUnchanged || entry.Status == statusOKAdded ||
				entry.Status == statusOKChanged {
				opts.Logger.Debugf("applied %s", line)
			} else {
				opts.Logger.Warnf("conflict: %s", line)
			}
		}
	}
	return audit, nil
}

// classify splits changes into the four ordered phases of SPEC_FULL §9.1:
// A) kind-flips, B) removals (deepest-first), C) additions (dirs before
// files, each shallowest-first), D) content modifications.
func classify(changes []*core.Change) ([][]*core.Change, error) {
	var kindFlips, removals, dirAdds, fileAdds, modifications []*core.Change

	for _, c := range changes {
		if err := c.EnsureValid(); err != nil {
			return nil, errors.Wrap(err, "invalid change")
		}
		switch {
		case c.IsKindFlip():
			kindFlips = append(kindFlips, c)
		case c.IsRemoval():
			removals = append(removals, c)
		case c.IsAddition():
			if c.ToKind == core.KindDir {
				dirAdds = append(dirAdds, c)
			} else {
				fileAdds = append(fileAdds, c)
			}
		case c.IsContentModification():
			modifications = append(modifications, c)
		default:
			return nil, errors.Errorf("change at %q matches no known phase", c.Path)
		}
	}

	// Phase B: file removals before their enclosing directory removals, i.e.
	// deepest paths first.
	sort.SliceStable(removals, func(i, j int) bool {
		return treepath.Depth(removals[i].Path) > treepath.Depth(removals[j].Path)
	})
	// Phase C: shallowest paths first, within each of the two sub-passes.
	sort.SliceStable(dirAdds, func(i, j int) bool {
		return treepath.Depth(dirAdds[i].Path) < treepath.Depth(dirAdds[j].Path)
	})
	sort.SliceStable(fileAdds, func(i, j int) bool {
		return treepath.Depth(fileAdds[i].Path) < treepath.Depth(fileAdds[j].Path)
	})

	return [][]*core.Change{kindFlips, removals, dirAdds, fileAdds, modifications}, nil
}

const (
	statusOK           = "ok"
	statusOKExists     = "ok_exists"
	statusOKUnchanged  = "ok_unchanged"
	statusOKAdded      = "ok_added"
	statusOKChanged    = "ok_changed"
	statusContentConf  = "content_conflict"
	statusTypeConf     = "type_conflict"
	statusNonemptyConf = "conflict_nonempty"
)

// applier holds the fixed (dst, src) roots for a single Apply invocation.
type applier struct {
	dst, src string
	opts     Options
}

func (a *applier) full(root, p string) string {
	return filepath.Join(root, filepath.FromSlash(p))
}

func (a *applier) apply(c *core.Change) (Entry, error) {
	switch {
	case c.FromKind == core.KindAbsent && c.ToKind == core.KindFile:
		return a.addFile(c)
	case c.FromKind == core.KindAbsent && c.ToKind == core.KindDir:
		return a.addDir(c)
	case c.FromKind == core.KindFile && c.ToKind == core.KindAbsent:
		return a.removeFile(c)
	case c.FromKind == core.KindDir && c.ToKind == core.KindAbsent:
		return a.removeDir(c)
	case c.FromKind == core.KindFile && c.ToKind == core.KindFile:
		return a.modifyFile(c)
	case c.FromKind == core.KindFile && c.ToKind == core.KindDir:
		return a.flipKind(c, core.KindFile, core.KindDir)
	case c.FromKind == core.KindDir && c.ToKind == core.KindFile:
		return a.flipKind(c, core.KindDir, core.KindFile)
	default:
		return Entry{}, errors.Errorf("change at %q has unsupported transition %s->%s", c.Path, c.FromKind, c.ToKind)
	}
}

// addFile implements the absent->file branch of §9.2.
func (a *applier) addFile(c *core.Change) (Entry, error) {
	dstPath := a.full(a.dst, c.Path)
	e := Entry{From: "absent", To: "file", Path: c.Path}

	kind, err := statKind(dstPath)
	if err != nil {
		return e, err
	}
	switch kind {
	case fsAbsent:
		if err := a.copyFile(c.Path, c.New.Digest); err != nil {
			return e, err
		}
		e.Status = statusOK
	case fsFile:
		same, err := a.destMatches(dstPath, c.New.Digest)
		if err != nil {
			return e, err
		}
		if same {
			e.Status = statusOKUnchanged
			return e, nil
		}
		alt, err := a.renameAside(c.Path)
		if err != nil {
			return e, err
		}
		e.AltPath = alt
		if err := a.copyFile(c.Path, c.New.Digest); err != nil {
			return e, err
		}
		e.Status = statusContentConf
	default: // directory or other obstruction
		alt, err := a.renameAside(c.Path)
		if err != nil {
			return e, err
		}
		e.AltPath = alt
		if err := a.copyFile(c.Path, c.New.Digest); err != nil {
			return e, err
		}
		e.Status = statusTypeConf
	}
	return e, nil
}

// addDir implements the absent->dir branch of §9.2.
func (a *applier) addDir(c *core.Change) (Entry, error) {
	dstPath := a.full(a.dst, c.Path)
	e := Entry{From: "absent", To: "dir", Path: c.Path}

	kind, err := statKind(dstPath)
	if err != nil {
		return e, err
	}
	switch kind {
	case fsAbsent:
		if err := os.MkdirAll(dstPath, 0755); err != nil {
			return e, errors.Wrapf(err, "unable to create directory %q", dstPath)
		}
		e.Status = statusOK
	case fsDir:
		e.Status = statusOKExists
	default:
		alt, err := a.renameAside(c.Path)
		if err != nil {
			return e, err
		}
		e.AltPath = alt
		if err := os.MkdirAll(dstPath, 0755); err != nil {
			return e, errors.Wrapf(err, "unable to create directory %q", dstPath)
		}
		e.Status = statusTypeConf
	}
	return e, nil
}

// removeFile implements the file->absent branch of §9.2.
func (a *applier) removeFile(c *core.Change) (Entry, error) {
	dstPath := a.full(a.dst, c.Path)
	e := Entry{From: "file", To: "absent", Path: c.Path}

	kind, err := statKind(dstPath)
	if err != nil {
		return e, err
	}
	switch kind {
	case fsAbsent:
		e.Status = statusOK
	case fsFile:
		same, err := a.destMatches(dstPath, c.Old.Digest)
		if err != nil {
			return e, err
		}
		if same {
			if err := os.Remove(dstPath); err != nil {
				return e, errors.Wrapf(err, "unable to remove %q", dstPath)
			}
			e.Status = statusOK
			return e, nil
		}
		alt, err := a.renameAside(c.Path)
		if err != nil {
			return e, err
		}
		e.AltPath = alt
		e.Status = statusContentConf
	default:
		alt, err := a.renameAside(c.Path)
		if err != nil {
			return e, err
		}
		e.AltPath = alt
		e.Status = statusTypeConf
	}
	return e, nil
}

// removeDir implements the dir->absent branch of §9.2. By the time Phase B
// runs, all descendant Changes (file removals, deeper directory removals)
// have already executed, so an empty directory here reflects no surviving
// tracked descendants.
func (a *applier) removeDir(c *core.Change) (Entry, error) {
	dstPath := a.full(a.dst, c.Path)
	e := Entry{From: "dir", To: "absent", Path: c.Path}

	kind, err := statKind(dstPath)
	if err != nil {
		return e, err
	}
	switch kind {
	case fsAbsent:
		e.Status = statusOK
	case fsDir:
		empty, err := dirIsEmpty(dstPath)
		if err != nil {
			return e, err
		}
		if empty {
			if err := os.Remove(dstPath); err != nil {
				return e, errors.Wrapf(err, "unable to remove directory %q", dstPath)
			}
			e.Status = statusOK
			return e, nil
		}
		alt, err := a.renameAside(c.Path)
		if err != nil {
			return e, err
		}
		e.AltPath = alt
		e.Status = statusNonemptyConf
	default:
		alt, err := a.renameAside(c.Path)
		if err != nil {
			return e, err
		}
		e.AltPath = alt
		e.Status = statusTypeConf
	}
	return e, nil
}

// modifyFile implements the file->file branch of §9.2.
func (a *applier) modifyFile(c *core.Change) (Entry, error) {
	dstPath := a.full(a.dst, c.Path)
	e := Entry{From: "file", To: "file", Path: c.Path}

	kind, err := statKind(dstPath)
	if err != nil {
		return e, err
	}
	switch kind {
	case fsAbsent:
		if err := a.copyFile(c.Path, c.New.Digest); err != nil {
			return e, err
		}
		e.Status = statusOKAdded
		return e, nil
	case fsFile:
		matchesAfter, err := a.destMatches(dstPath, c.New.Digest)
		if err != nil {
			return e, err
		}
		if matchesAfter {
			e.Status = statusOKUnchanged
			return e, nil
		}
		matchesBefore, err := a.destMatches(dstPath, c.Old.Digest)
		if err != nil {
			return e, err
		}
		if matchesBefore {
			if err := a.copyFile(c.Path, c.New.Digest); err != nil {
				return e, err
			}
			e.Status = statusOKChanged
			return e, nil
		}
		alt, err := a.renameAside(c.Path)
		if err != nil {
			return e, err
		}
		e.AltPath = alt
		if err := a.copyFile(c.Path, c.New.Digest); err != nil {
			return e, err
		}
		e.Status = statusContentConf
	default:
		alt, err := a.renameAside(c.Path)
		if err != nil {
			return e, err
		}
		e.AltPath = alt
		if err := a.copyFile(c.Path, c.New.Digest); err != nil {
			return e, err
		}
		e.Status = statusTypeConf
	}
	return e, nil
}

// flipKind implements the file->dir and dir->file branches of §9.2. oldKind
// is the expected prior on-disk kind; the opposite of newKind.
func (a *applier) flipKind(c *core.Change, oldKind, newKind core.Kind) (Entry, error) {
	dstPath := a.full(a.dst, c.Path)
	e := Entry{From: oldKind.String(), To: newKind.String(), Path: c.Path}

	kind, err := statKind(dstPath)
	if err != nil {
		return e, err
	}

	wantsOld := (oldKind == core.KindFile && kind == fsFile) || (oldKind == core.KindDir && kind == fsDir)
	wantsNew := (newKind == core.KindFile && kind == fsFile) || (newKind == core.KindDir && kind == fsDir)

	switch {
	case kind == fsAbsent:
		e.Status = statusOK
		return a.createNewKind(c, newKind, dstPath, e)
	case wantsOld:
		if oldKind == core.KindDir {
			// A non-empty directory here is the expected, non-conflicting
			// state: Phase A runs before Phase B, so the directory's
			// descendant removal Changes have not executed yet. Replace it
			// outright rather than treating its current children as a
			// conflict; os.Lstat on any path beneath it afterward reports
			// ENOTDIR, which statKind treats as absent, so the pending
			// per-descendant removal Changes resolve as no-ops.
			if err := os.RemoveAll(dstPath); err != nil {
				return e, errors.Wrapf(err, "unable to remove directory %q", dstPath)
			}
		} else {
			if err := os.Remove(dstPath); err != nil {
				return e, errors.Wrapf(err, "unable to remove %q", dstPath)
			}
		}
		e.Status = statusOK
		return a.createNewKind(c, newKind, dstPath, e)
	case wantsNew:
		e.Status = statusOKExists
		return e, nil
	default:
		alt, err := a.renameAside(c.Path)
		if err != nil {
			return e, err
		}
		e.AltPath = alt
		e.Status = statusTypeConf
		return a.createNewKind(c, newKind, dstPath, e)
	}
}

func (a *applier) createNewKind(c *core.Change, newKind core.Kind, dstPath string, e Entry) (Entry, error) {
	if newKind == core.KindDir {
		if err := os.MkdirAll(dstPath, 0755); err != nil {
			return e, errors.Wrapf(err, "unable to create directory %q", dstPath)
		}
		return e, nil
	}
	if err := a.copyFile(c.Path, c.New.Digest); err != nil {
		return e, err
	}
	return e, nil
}

// destMatches reports whether the file at dstPath has the given content
// digest.
func (a *applier) destMatches(dstPath string, want fingerprint.Digest) (bool, error) {
	file, err := os.Open(dstPath)
	if err != nil {
		return false, errors.Wrapf(err, "unable to open %q", dstPath)
	}
	defer file.Close()

	got, err := fingerprint.Of(file)
	if err != nil {
		return false, errors.Wrapf(err, "unable to hash %q", dstPath)
	}
	return got == want, nil
}

// copyFile copies the source file at relative path p into dst, optionally
// verifying its content digest first per Options.VerifySource.
func (a *applier) copyFile(p string, wantDigest fingerprint.Digest) error {
	srcPath := a.full(a.src, p)

	in, err := os.Open(srcPath)
	if err != nil {
		return errors.Wrapf(err, "unable to open source %q", srcPath)
	}
	defer in.Close()

	if a.opts.VerifySource {
		got, err := fingerprint.Of(in)
		if err != nil {
			return errors.Wrapf(err, "unable to verify source %q", srcPath)
		}
		if got != wantDigest {
			return errors.Errorf("source %q fingerprint mismatch: snapshot does not match data source", srcPath)
		}
		if _, err := in.Seek(0, io.SeekStart); err != nil {
			return errors.Wrapf(err, "unable to rewind source %q", srcPath)
		}
	}

	dstPath := a.full(a.dst, p)
	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return errors.Wrapf(err, "unable to create parent directory for %q", dstPath)
	}

	out, err := os.CreateTemp(filepath.Dir(dstPath), ".fsnapshot-patch-*")
	if err != nil {
		return errors.Wrapf(err, "unable to create temporary file for %q", dstPath)
	}
	tempName := out.Name()

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tempName)
		return errors.Wrapf(err, "unable to write %q", dstPath)
	}
	if err := out.Close(); err != nil {
		os.Remove(tempName)
		return errors.Wrapf(err, "unable to finalize %q", dstPath)
	}
	if err := os.Rename(tempName, dstPath); err != nil {
		os.Remove(tempName)
		return errors.Wrapf(err, "unable to install %q", dstPath)
	}
	return nil
}

func dirIsEmpty(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return false, errors.Wrapf(err, "unable to list directory %q", path)
	}
	return len(entries) == 0, nil
}
