// Package core defines the data model shared by the Snapshot Builder,
// Snapshot Differ, and Patch Applier: Entry, Kind, Snapshot, Change, and
// Diff, along with their invariants and canonical JSON serialization.
package core
