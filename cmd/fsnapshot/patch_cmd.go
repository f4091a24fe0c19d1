package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"

	"github.com/RecursiveG/fsnapshot/internal/encoding"
	"github.com/RecursiveG/fsnapshot/internal/logging"
	"github.com/RecursiveG/fsnapshot/internal/patch"
)

// runPatch implements `fsnapshot --apply_patch=<diff.json> --patch_on=<dst_dir> --data_source=<src_dir>`.
func runPatch(logger *logging.Logger) {
	if rootConfiguration.patchOn == "" {
		fail(errors.New("--patch_on is required with --apply_patch"))
	}
	if rootConfiguration.dataSource == "" {
		fail(errors.New("--data_source is required with --apply_patch"))
	}

	diff, err := encoding.LoadDiff(rootConfiguration.applyPatch)
	if err != nil {
		fail(errors.Wrap(err, "unable to load diff"))
	}

	auditLog, applyErr := patch.Apply(diff, rootConfiguration.patchOn, rootConfiguration.dataSource, patch.Options{
		VerifySource: rootConfiguration.verifySource,
		Logger:       logger,
	})
	for _, line := range auditLog {
		printAuditLine(line)
	}
	if applyErr != nil {
		fail(errors.Wrap(applyErr, "patch application failed"))
	}
}

// printAuditLine colorizes an audit log line by its status token: conflict
// statuses (content_conflict, type_conflict, conflict_nonempty) in yellow,
// everything else in the default color.
func printAuditLine(line string) {
	if isConflictLine(line) {
		fmt.Println(color.YellowString(line))
	} else {
		fmt.Println(line)
	}
}

func isConflictLine(line string) bool {
	for _, token := range []string{":content_conflict:", ":type_conflict:", ":conflict_nonempty:"} {
		if strings.Contains(line, token) {
			return true
		}
	}
	return false
}
