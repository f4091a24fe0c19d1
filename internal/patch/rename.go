package patch

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"github.com/RecursiveG/fsnapshot/internal/treepath"
)

// renameAside implements the suffix-selection rule of SPEC_FULL §9.3: it
// renames the object at the tree-relative path relPath to the first
// available sibling of the form base.bak, base.bak2, base.bak3, … within the
// same parent directory, and returns the chosen sibling's tree-relative path
// (the form recorded in Entry.AltPath and emitted in the audit log). The
// renamed object keeps its kind untouched; renameAside only moves it.
func (a *applier) renameAside(relPath string) (string, error) {
	fullPath := a.full(a.dst, relPath)
	parentRel := treepath.Dir(relPath)
	base := treepath.Base(relPath)

	for n := 1; ; n++ {
		candidateName := treepath.ShortenComponent(base, bakSuffix(n))
		candidateRel := treepath.Join(parentRel, candidateName)
		candidatePath := filepath.Join(a.dst, filepath.FromSlash(candidateRel))

		kind, err := statKind(candidatePath)
		if err != nil {
			return "", err
		}
		if kind == fsAbsent {
			if err := os.Rename(fullPath, candidatePath); err != nil {
				return "", errors.Wrapf(err, "unable to rename %q aside to %q", fullPath, candidatePath)
			}
			return candidateRel, nil
		}
	}
}

// bakSuffix renders the nth rename-aside suffix: ".bak" for n==1, ".bak2" for
// n==2, ".bak3" for n==3, and so on.
func bakSuffix(n int) string {
	if n <= 1 {
		return ".bak"
	}
	return ".bak" + strconv.Itoa(n)
}
