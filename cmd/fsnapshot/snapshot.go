package main

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/RecursiveG/fsnapshot/internal/builder"
	"github.com/RecursiveG/fsnapshot/internal/encoding"
	"github.com/RecursiveG/fsnapshot/internal/logging"
)

// runSnapshot implements `fsnapshot --take_snapshot=<dir> --snapshot_out=<file>`.
func runSnapshot(logger *logging.Logger, correlationID string) {
	if rootConfiguration.snapshotOut == "" {
		fail(errors.New("--snapshot_out is required with --take_snapshot"))
	}

	opts := builder.Options{
		RunID:  correlationID,
		Logger: logger,
	}

	if rootConfiguration.snapshotIn != "" {
		priorSnapshot, err := encoding.LoadSnapshot(rootConfiguration.snapshotIn)
		if err != nil {
			fail(errors.Wrap(err, "unable to load prior snapshot"))
		}
		opts.Prior = priorSnapshot
	}
	if rootConfiguration.hasTimeOverride {
		override := rootConfiguration.testonlyJSONTimeOverride
		opts.TimeOverride = &override
	}

	bar := newProgressBar()
	opts.Progress = bar.update

	snapshot, err := builder.Build(rootConfiguration.takeSnapshot, opts)
	bar.finish()
	if err != nil {
		fail(errors.Wrap(err, "unable to build snapshot"))
	}

	if err := encoding.SaveSnapshot(rootConfiguration.snapshotOut, snapshot, logger); err != nil {
		fail(errors.Wrap(err, "unable to save snapshot"))
	}

	fmt.Printf("Snapshot of %q written to %q (%d entries)\n",
		rootConfiguration.takeSnapshot, rootConfiguration.snapshotOut, len(snapshot.Entries))
}
