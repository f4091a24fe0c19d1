// Command fsnapshot is the command line front end for the snapshot/diff/patch
// engine. It dispatches to one of three modes based on which top-level flag
// is present, mirroring a "mode flag" CLI shape rather than a subcommand
// tree, since each mode consumes a disjoint set of flags and only one runs
// per invocation.
package main

import (
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/RecursiveG/fsnapshot/internal/logging"
)

var rootCommand = &cobra.Command{
	Use:   "fsnapshot",
	Short: "Snapshot, diff, and patch directory trees by content fingerprint",
	Run:   rootMain,
}

var rootConfiguration struct {
	// takeSnapshot is the directory to walk and snapshot.
	takeSnapshot string
	// snapshotOut is the destination path for a captured snapshot.
	snapshotOut string
	// snapshotIn is either the prior snapshot to enable reuse against (build
	// mode) or the "after" snapshot to diff against (diff mode).
	snapshotIn string
	// noProgressBar disables the progress bar during snapshot building.
	noProgressBar bool
	// testonlyJSONTimeOverride replaces every built file's modification time
	// with a fixed value, for deterministic test fixtures.
	testonlyJSONTimeOverride int64
	// hasTimeOverride records whether testonlyJSONTimeOverride was actually
	// set, since 0 is a valid override value.
	hasTimeOverride bool

	// diffSnapshot is the "before" snapshot path for diff mode.
	diffSnapshot string

	// applyPatch is the diff document path for patch mode.
	applyPatch string
	// patchOn is the destination root to mutate in patch mode.
	patchOn string
	// dataSource is the root from which added/changed file bytes are read in
	// patch mode.
	dataSource string
	// verifySource enables re-hashing source files before copying them.
	verifySource bool

	help bool
}

func init() {
	flags := rootCommand.Flags()
	flags.SortFlags = false

	flags.StringVar(&rootConfiguration.takeSnapshot, "take_snapshot", "", "Walk the given directory and build a snapshot")
	flags.StringVar(&rootConfiguration.snapshotOut, "snapshot_out", "", "Write the built snapshot to the given file")
	flags.StringVar(&rootConfiguration.snapshotIn, "snapshot_in", "", "Prior snapshot (build mode) or after-snapshot (diff mode)")
	flags.BoolVar(&rootConfiguration.noProgressBar, "noprogress_bar", false, "Disable the snapshot-building progress bar")
	flags.Int64Var(&rootConfiguration.testonlyJSONTimeOverride, "testonly_json_time_override", 0, "Override every file's recorded modification time (testing only)")

	flags.StringVar(&rootConfiguration.diffSnapshot, "diff_snapshot", "", "Before-snapshot to diff against --snapshot_in")

	flags.StringVar(&rootConfiguration.applyPatch, "apply_patch", "", "Diff document describing the patch to apply")
	flags.StringVar(&rootConfiguration.patchOn, "patch_on", "", "Destination directory to mutate")
	flags.StringVar(&rootConfiguration.dataSource, "data_source", "", "Root directory supplying bytes for additions and content changes")
	flags.BoolVar(&rootConfiguration.verifySource, "verify_source", false, "Re-hash source files before copying them during patch")

	flags.BoolVarP(&rootConfiguration.help, "help", "h", false, "Show help information")

	rootCommand.PreRun = func(command *cobra.Command, arguments []string) {
		rootConfiguration.hasTimeOverride = command.Flags().Changed("testonly_json_time_override")
	}
}

func rootMain(command *cobra.Command, arguments []string) {
	correlationID := uuid.New().String()
	logger := logging.RootLogger.Sublogger(correlationID)

	switch {
	case rootConfiguration.takeSnapshot != "":
		runSnapshot(logger, correlationID)
	case rootConfiguration.diffSnapshot != "":
		runDiff(logger)
	case rootConfiguration.applyPatch != "":
		runPatch(logger)
	default:
		command.Help()
	}
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		os.Exit(1)
	}
}
