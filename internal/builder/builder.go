// Package builder walks a directory tree and produces a core.Snapshot,
// optionally reusing content fingerprints from a prior Snapshot when
// filesystem metadata proves a file is unchanged.
package builder

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/RecursiveG/fsnapshot/internal/core"
	"github.com/RecursiveG/fsnapshot/internal/fingerprint"
	"github.com/RecursiveG/fsnapshot/internal/logging"
	"github.com/RecursiveG/fsnapshot/internal/treepath"
)

// Options configures a Build invocation.
type Options struct {
	// Prior is an optional previously-captured Snapshot of the same tree. If
	// a file's relative path, size, and modification time all match an entry
	// in Prior, that entry's fingerprint is reused instead of re-hashing the
	// file.
	Prior *core.Snapshot
	// TimeOverride, if non-nil, replaces every emitted file's modification
	// time with the given constant, for bit-exact test fixtures. It does not
	// affect reuse decisions against Prior: reuse is still judged against the
	// real on-disk modification time.
	TimeOverride *int64
	// Progress, if non-nil, is invoked periodically during the hashing pass
	// with (bytesHashed, totalBytes). Progress is advisory: it never affects
	// the resulting Snapshot.
	Progress func(bytesHashed, totalBytes uint64)
	// RunID is an optional correlation identifier stamped onto the resulting
	// Snapshot for diagnostic/log-correlation purposes only.
	RunID string
	// Logger receives Debug-level lines for skipped (untracked) filesystem
	// entries. Failures are returned as errors, not logged. A nil Logger
	// discards all output.
	Logger *logging.Logger
}

// Build walks root and produces a Snapshot describing every file and
// directory beneath it. Symbolic links, sockets, devices, and any other
// non-regular, non-directory filesystem object are treated as untracked: they
// are omitted from the Snapshot and logged at Debug level rather than failing
// the build, per SPEC_FULL §7.
//
// Build fails, without emitting a partial Snapshot, if any directory cannot
// be listed or any file cannot be read.
func Build(root string, opts Options) (*core.Snapshot, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrap(err, "unable to stat snapshot root")
	}
	if !info.IsDir() {
		return nil, errors.Errorf("snapshot root %q is not a directory", root)
	}

	b := &buildState{
		root:   root,
		prior:  opts.Prior,
		logger: opts.Logger,
	}

	if opts.Progress != nil {
		total, err := b.estimateHashableBytes("")
		if err != nil {
			return nil, err
		}
		b.progress = opts.Progress
		b.totalBytes = total
	}

	snapshot := core.New(absPathOrEmpty(root))
	snapshot.RunID = opts.RunID
	if err := b.walk("", snapshot, opts.TimeOverride); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// buildState carries the mutable state of a single Build invocation.
type buildState struct {
	root       string
	prior      *core.Snapshot
	logger     *logging.Logger
	progress   func(bytesHashed, totalBytes uint64)
	totalBytes uint64
	hashed     uint64
}

func absPathOrEmpty(root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		return root
	}
	return abs
}

// canReuse reports whether a prior Entry's cached fingerprint can be adopted
// for a file with the given current size and modification time.
func canReuse(prior *core.Entry, size, modTime int64) bool {
	return prior != nil &&
		prior.Kind == core.KindFile &&
		prior.Size == size &&
		prior.ModificationTime == modTime
}

// estimateHashableBytes performs the first progress-reporting pass: it sums
// the sizes of every file beneath path that will NOT be reuse-eligible
// against the prior Snapshot, since those are the only files Build will
// actually stream through the hasher.
func (b *buildState) estimateHashableBytes(path string) (uint64, error) {
	dirPath := filepath.Join(b.root, filepath.FromSlash(path))
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return 0, errors.Wrapf(err, "unable to list directory %q", dirPath)
	}

	var total uint64
	for _, entry := range entries {
		childPath := treepath.Join(path, entry.Name())
		if entry.IsDir() {
			sub, err := b.estimateHashableBytes(childPath)
			if err != nil {
				return 0, err
			}
			total += sub
			continue
		}
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return 0, errors.Wrapf(err, "unable to stat %q", childPath)
		}
		var priorEntry *core.Entry
		if b.prior != nil {
			priorEntry = b.prior.Get(childPath)
		}
		if !canReuse(priorEntry, info.Size(), info.ModTime().Unix()) {
			total += uint64(info.Size())
		}
	}
	return total, nil
}

// walk performs the actual (second pass, when progress reporting is enabled)
// depth-first traversal, populating snapshot.
func (b *buildState) walk(path string, snapshot *core.Snapshot, timeOverride *int64) error {
	dirPath := filepath.Join(b.root, filepath.FromSlash(path))
	osEntries, err := os.ReadDir(dirPath)
	if err != nil {
		return errors.Wrapf(err, "unable to list directory %q", dirPath)
	}

	// Sort for deterministic traversal order; this has no effect on the
	// resulting Snapshot's content, only on the order work is performed in
	// (relevant for progress reporting and test reproducibility).
	sort.Slice(osEntries, func(i, j int) bool { return osEntries[i].Name() < osEntries[j].Name() })

	for _, osEntry := range osEntries {
		childPath := treepath.Join(path, osEntry.Name())

		switch {
		case osEntry.IsDir():
			snapshot.Entries[childPath] = core.NewDirEntry()
			if err := b.walk(childPath, snapshot, timeOverride); err != nil {
				return err
			}
		case osEntry.Type().IsRegular():
			entry, err := b.buildFileEntry(childPath, timeOverride)
			if err != nil {
				return err
			}
			snapshot.Entries[childPath] = entry
		default:
			b.logger.Debugf("skipping untracked filesystem entry %q (mode %s)", childPath, osEntry.Type())
		}
	}
	return nil
}

// buildFileEntry computes (or reuses) the Entry for a single file.
func (b *buildState) buildFileEntry(path string, timeOverride *int64) (*core.Entry, error) {
	fullPath := filepath.Join(b.root, filepath.FromSlash(path))
	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to stat %q", fullPath)
	}

	size := info.Size()
	modTime := info.ModTime().Unix()

	var priorEntry *core.Entry
	if b.prior != nil {
		priorEntry = b.prior.Get(path)
	}

	var digest fingerprint.Digest
	if canReuse(priorEntry, size, modTime) {
		digest = priorEntry.Digest
	} else {
		digest, err = b.hashFile(fullPath)
		if err != nil {
			return nil, err
		}
		if b.progress != nil {
			b.hashed += uint64(size)
			b.progress(b.hashed, b.totalBytes)
		}
	}

	emittedModTime := modTime
	if timeOverride != nil {
		emittedModTime = *timeOverride
	}
	return core.NewFileEntry(size, emittedModTime, digest), nil
}

func (b *buildState) hashFile(path string) (fingerprint.Digest, error) {
	file, err := os.Open(path)
	if err != nil {
		return fingerprint.Digest{}, errors.Wrapf(err, "unable to open %q", path)
	}
	defer file.Close()

	digest, err := fingerprint.Of(file)
	if err != nil {
		return fingerprint.Digest{}, errors.Wrapf(err, "unable to read %q", path)
	}
	return digest, nil
}
