// Package history implements the undo/redo engine: an append-only,
// prunable sequence of snapshots backing a single open document. Entries
// are either full snapshots (a pixel-free document copy plus the encoded
// pixels of every pixel layer) or delta entries (the compact per-layer
// changes since the previous state). Reconstruction replays deltas
// forward from the nearest full snapshot.
package history

import (
	"time"

	"github.com/halfpix/pentimento/codec"
	"github.com/halfpix/pentimento/delta"
	"github.com/halfpix/pentimento/doc"
)

// SnapshotType distinguishes full snapshots from delta entries.
type SnapshotType uint8

// Snapshot types.
const (
	// SnapshotFull anchors replay: a complete document state.
	SnapshotFull SnapshotType = iota
	// SnapshotDelta records only what changed since the previous entry.
	SnapshotDelta
)

// String returns a human-readable name for the snapshot type.
func (t SnapshotType) String() string {
	switch t {
	case SnapshotFull:
		return "full"
	case SnapshotDelta:
		return "delta"
	default:
		return "Unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so snapshot types persist
// as "full"/"delta" rather than raw integers.
func (t SnapshotType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *SnapshotType) UnmarshalText(text []byte) error {
	if string(text) == "delta" {
		*t = SnapshotDelta
	} else {
		*t = SnapshotFull
	}
	return nil
}

// Snapshot is one history entry.
//
// Full snapshots carry Content, a pixel-free deep copy of the document,
// plus PixelData mapping each pixel layer id to its encoded buffer. Raw
// pixels never travel inline; the split keeps the serialized form small
// while still letting reconstruction rebuild every buffer exactly.
//
// Delta entries carry Deltas and Patch, computed against the entry before
// them, and name the full snapshot they chain back to via BaseSnapshotID.
type Snapshot struct {
	ID        string       `json:"id"`
	Type      SnapshotType `json:"type"`
	Timestamp time.Time    `json:"timestamp"`
	Label     string       `json:"label"`
	Change    ChangeKind   `json:"change"`

	// EstimatedSize is the in-memory footprint in bytes, fixed at
	// creation time and used for budget accounting.
	EstimatedSize int `json:"estimatedSize"`

	Content   *doc.EditorContent          `json:"content,omitempty"`
	PixelData map[string]*codec.ImageDiff `json:"pixelData,omitempty"`

	Deltas         []delta.LayerDelta  `json:"deltas,omitempty"`
	Patch          *delta.ContentPatch `json:"patch,omitempty"`
	BaseSnapshotID string              `json:"baseSnapshotId,omitempty"`
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := *s
	out.Content = s.Content.Clone()
	if s.PixelData != nil {
		out.PixelData = make(map[string]*codec.ImageDiff, len(s.PixelData))
		for id, diff := range s.PixelData {
			out.PixelData[id] = diff.Clone()
		}
	}
	if s.Deltas != nil {
		out.Deltas = make([]delta.LayerDelta, len(s.Deltas))
		for i := range s.Deltas {
			d := s.Deltas[i]
			d.DataDiff = d.DataDiff.Clone()
			d.FullLayer = d.FullLayer.Clone()
			d.Props = d.Props.Clone()
			if d.Reorder != nil {
				reorder := *d.Reorder
				d.Reorder = &reorder
			}
			out.Deltas[i] = d
		}
	}
	out.Patch = s.Patch.Clone()
	return &out
}
