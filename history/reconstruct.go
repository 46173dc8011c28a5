package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/halfpix/pentimento"
	"github.com/halfpix/pentimento/codec"
	"github.com/halfpix/pentimento/delta"
	"github.com/halfpix/pentimento/doc"
)

// ErrNoSnapshot means no full snapshot exists at or before the requested
// index. Reconstruction fails loudly rather than returning a partial
// document; a visible error beats a silently wrong undo.
var ErrNoSnapshot = errors.New("history: no full snapshot at or before index")

// restoreLocked rebuilds the document at target: scan backward to the
// nearest full snapshot, materialize it, then replay every delta entry
// through target. The snapshot interval bounds the backward scan.
func (s *Store) restoreLocked(ctx context.Context, target int) (*doc.EditorContent, error) {
	base := -1
	for i := target; i >= 0; i-- {
		if s.entries[i].Type == SnapshotFull {
			base = i
			break
		}
	}
	if base < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNoSnapshot, target)
	}

	content, err := materialize(ctx, s.entries[base])
	if err != nil {
		return nil, err
	}
	for i := base + 1; i <= target; i++ {
		if err := applyEntry(ctx, content, s.entries[i]); err != nil {
			return nil, fmt.Errorf("history: replay entry %d: %w", i, err)
		}
	}
	return content, nil
}

// materialize turns a full snapshot back into a live document: clone the
// pixel-free content, decode each stored buffer onto its layer, and give
// any remaining pixel layer a 1x1 placeholder for later deltas to
// overwrite.
func materialize(ctx context.Context, snap *Snapshot) (*doc.EditorContent, error) {
	content := snap.Content.Clone()
	for id, diff := range snap.PixelData {
		px, err := codec.ApplyImageDiff(ctx, nil, diff)
		if err != nil {
			return nil, fmt.Errorf("history: decode layer %q: %w", id, err)
		}
		content.Layers = doc.WithLayerUpdated(content.Layers, id, func(l *doc.Layer) *doc.Layer {
			l.Data = px
			return l
		})
	}
	fillPlaceholders(content.Layers)
	return content, nil
}

func fillPlaceholders(layers []*doc.Layer) {
	for _, l := range layers {
		if l.Kind == doc.KindPixel && l.Data == nil {
			l.Data = pentimento.NewPixmap(1, 1)
		}
		fillPlaceholders(l.Children)
	}
}

// applyEntry replays one delta entry onto the document. Structural
// deltas are applied too: created layers are inserted at their recorded
// placement, deleted layers dissolved, and moved layers re-homed, so
// replay reproduces exactly what a full snapshot at the same index
// would hold.
func applyEntry(ctx context.Context, content *doc.EditorContent, snap *Snapshot) error {
	for i := range snap.Deltas {
		d := &snap.Deltas[i]
		switch d.Change {
		case delta.ChangeDeleted:
			// Dissolving keeps the children of a deleted group in the
			// tree; the ones deleted with it carry their own deltas, and
			// the survivors are re-homed by their move deltas.
			content.Layers = doc.WithLayerDissolved(content.Layers, d.LayerID)

		case delta.ChangeCreated:
			l := d.FullLayer.Clone()
			if d.DataDiff != nil {
				px, err := codec.ApplyImageDiff(ctx, nil, d.DataDiff)
				if err != nil {
					return fmt.Errorf("layer %q: %w", d.LayerID, err)
				}
				l.Data = px
			} else if l.Kind == doc.KindPixel {
				l.Data = pentimento.NewPixmap(1, 1)
			}
			content.Layers = doc.WithLayerInserted(content.Layers, d.ParentID, d.Index, l)

		case delta.ChangeProperties:
			content.Layers = doc.WithLayerUpdated(content.Layers, d.LayerID, func(l *doc.Layer) *doc.Layer {
				d.Props.ApplyTo(l)
				return l
			})

		case delta.ChangeData:
			var applyErr error
			content.Layers = doc.WithLayerUpdated(content.Layers, d.LayerID, func(l *doc.Layer) *doc.Layer {
				px, err := codec.ApplyImageDiff(ctx, l.Data, d.DataDiff)
				if err != nil {
					applyErr = err
					return l
				}
				l.Data = px
				return l
			})
			if applyErr != nil {
				return fmt.Errorf("layer %q: %w", d.LayerID, applyErr)
			}

		case delta.ChangeMoved:
			rest, moved := doc.WithLayerDetached(content.Layers, d.LayerID)
			if moved != nil {
				content.Layers = doc.WithLayerInserted(rest, d.ParentID, d.Index, moved)
			}

		case delta.ChangeReordered:
			if d.Reorder != nil {
				content.Layers = moveTopLevel(content.Layers, d.LayerID, d.Reorder.NewIndex)
			}
		}
	}
	snap.Patch.ApplyTo(content)
	return nil
}

func moveTopLevel(layers []*doc.Layer, id string, newIndex int) []*doc.Layer {
	idx := -1
	for i, l := range layers {
		if l.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return layers
	}
	moved := layers[idx]
	rest := make([]*doc.Layer, 0, len(layers)-1)
	rest = append(rest, layers[:idx]...)
	rest = append(rest, layers[idx+1:]...)
	if newIndex < 0 {
		newIndex = 0
	}
	if newIndex > len(rest) {
		newIndex = len(rest)
	}
	out := make([]*doc.Layer, 0, len(layers))
	out = append(out, rest[:newIndex]...)
	out = append(out, moved)
	out = append(out, rest[newIndex:]...)
	return out
}
