package core

import (
	"encoding/json"
	"fmt"

	"github.com/RecursiveG/fsnapshot/internal/fingerprint"
)

// jsonEntry is the wire representation of an Entry, matching SPEC_FULL §11:
// kind plus, for files, size/mtime/hash.
type jsonEntry struct {
	Kind  string `json:"kind"`
	Size  int64  `json:"size,omitempty"`
	MTime int64  `json:"mtime,omitempty"`
	Hash  string `json:"hash,omitempty"`
}

func entryToJSON(e *Entry) *jsonEntry {
	if e == nil {
		return nil
	}
	je := &jsonEntry{Kind: e.Kind.String()}
	if e.Kind == KindFile {
		je.Size = e.Size
		je.MTime = e.ModificationTime
		je.Hash = e.Digest.String()
	}
	return je
}

func entryFromJSON(je *jsonEntry) (*Entry, error) {
	if je == nil {
		return nil, nil
	}
	switch je.Kind {
	case "file":
		digest, err := fingerprint.ParseDigest(je.Hash)
		if err != nil {
			return nil, fmt.Errorf("invalid hash: %w", err)
		}
		return NewFileEntry(je.Size, je.MTime, digest), nil
	case "dir":
		return NewDirEntry(), nil
	default:
		return nil, fmt.Errorf("unknown entry kind %q", je.Kind)
	}
}

// jsonSnapshot is the wire representation of a Snapshot.
type jsonSnapshot struct {
	Version      int                   `json:"version"`
	CapturedRoot string                `json:"capturedRoot"`
	RunID        string                `json:"runID,omitempty"`
	Entries      map[string]*jsonEntry `json:"entries"`
}

// MarshalJSON implements json.Marshaler.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	out := jsonSnapshot{
		Version:      s.Version,
		CapturedRoot: s.CapturedRoot,
		RunID:        s.RunID,
		Entries:      make(map[string]*jsonEntry, len(s.Entries)),
	}
	for p, e := range s.Entries {
		out.Entries[p] = entryToJSON(e)
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var in jsonSnapshot
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	s.Version = in.Version
	s.CapturedRoot = in.CapturedRoot
	s.RunID = in.RunID
	s.Entries = make(map[string]*Entry, len(in.Entries))
	for p, je := range in.Entries {
		entry, err := entryFromJSON(je)
		if err != nil {
			return fmt.Errorf("path %q: %w", p, err)
		}
		s.Entries[p] = entry
	}
	return nil
}

// jsonChange is the wire representation of a Change.
type jsonChange struct {
	Path string     `json:"path"`
	From string     `json:"from"`
	To   string     `json:"to"`
	Old  *jsonEntry `json:"old,omitempty"`
	New  *jsonEntry `json:"new,omitempty"`
}

// jsonDiff is the wire representation of a Diff.
type jsonDiff struct {
	Changes []jsonChange `json:"changes"`
}

// MarshalJSON implements json.Marshaler.
func (d *Diff) MarshalJSON() ([]byte, error) {
	out := jsonDiff{Changes: make([]jsonChange, len(d.Changes))}
	for i, c := range d.Changes {
		out.Changes[i] = jsonChange{
			Path: c.Path,
			From: c.FromKind.String(),
			To:   c.ToKind.String(),
			Old:  entryToJSON(c.Old),
			New:  entryToJSON(c.New),
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Diff) UnmarshalJSON(data []byte) error {
	var in jsonDiff
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	d.Changes = make([]*Change, len(in.Changes))
	for i, jc := range in.Changes {
		oldEntry, err := entryFromJSON(jc.Old)
		if err != nil {
			return fmt.Errorf("change %q: %w", jc.Path, err)
		}
		newEntry, err := entryFromJSON(jc.New)
		if err != nil {
			return fmt.Errorf("change %q: %w", jc.Path, err)
		}
		fromKind, err := kindFromString(jc.From)
		if err != nil {
			return fmt.Errorf("change %q: %w", jc.Path, err)
		}
		toKind, err := kindFromString(jc.To)
		if err != nil {
			return fmt.Errorf("change %q: %w", jc.Path, err)
		}
		d.Changes[i] = &Change{
			Path:     jc.Path,
			FromKind: fromKind,
			ToKind:   toKind,
			Old:      oldEntry,
			New:      newEntry,
		}
	}
	return nil
}

func kindFromString(s string) (Kind, error) {
	switch s {
	case "absent":
		return KindAbsent, nil
	case "file":
		return KindFile, nil
	case "dir":
		return KindDir, nil
	default:
		return KindAbsent, fmt.Errorf("unknown kind %q", s)
	}
}
