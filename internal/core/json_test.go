package core

import (
	"encoding/json"
	"testing"
)

func TestSnapshotJSONRoundTrip(t *testing.T) {
	original := New("/tmp/source")
	original.RunID = "abc-123"
	original.Entries["dir"] = NewDirEntry()
	original.Entries["dir/file.txt"] = NewFileEntry(42, 1000, digestOf(t, "hello"))

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var restored Snapshot
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if !original.Equal(&restored) {
		t.Errorf("round-tripped snapshot does not equal original")
	}
	if restored.CapturedRoot != "/tmp/source" || restored.RunID != "abc-123" {
		t.Errorf("diagnostic fields not preserved: %+v", restored)
	}
}

func TestSnapshotJSONKeyOrderInsensitive(t *testing.T) {
	a := New("/root")
	a.Entries["x"] = NewDirEntry()
	a.Entries["y"] = NewDirEntry()

	b := New("/root")
	b.Entries["y"] = NewDirEntry()
	b.Entries["x"] = NewDirEntry()

	dataA, _ := json.Marshal(a)
	dataB, _ := json.Marshal(b)

	var restoredA, restoredB Snapshot
	if err := json.Unmarshal(dataA, &restoredA); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(dataB, &restoredB); err != nil {
		t.Fatal(err)
	}
	if !restoredA.Equal(&restoredB) {
		t.Error("snapshots built in different map-insertion orders should compare equal")
	}
}

func TestDiffJSONRoundTrip(t *testing.T) {
	original := &Diff{Changes: []*Change{
		{Path: "new.txt", FromKind: KindAbsent, ToKind: KindFile, New: NewFileEntry(3, 5, digestOf(t, "abc"))},
		{Path: "old.txt", FromKind: KindFile, ToKind: KindAbsent, Old: NewFileEntry(3, 5, digestOf(t, "xyz"))},
	}}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var restored Diff
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if len(restored.Changes) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(restored.Changes))
	}
	for i, c := range restored.Changes {
		if err := c.EnsureValid(); err != nil {
			t.Errorf("restored change %d invalid: %v", i, err)
		}
	}
	if restored.Changes[0].Path != "new.txt" || restored.Changes[0].New.Digest != original.Changes[0].New.Digest {
		t.Errorf("change 0 did not round-trip correctly: %+v", restored.Changes[0])
	}
}
