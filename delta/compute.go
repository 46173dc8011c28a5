package delta

import (
	"context"
	"errors"
	"fmt"

	"github.com/halfpix/pentimento/codec"
	"github.com/halfpix/pentimento/doc"
)

// ErrLayerEncode wraps a codec failure while diffing one layer's pixels.
// Callers treat it as "delta computation unavailable for this edit" and
// fall back to a full snapshot rather than recording corrupt history.
var ErrLayerEncode = errors.New("delta: layer pixel encode failed")

// Result is the complete diff between two document states: the per-layer
// deltas plus the document-level patch.
type Result struct {
	Deltas []LayerDelta
	Patch  *ContentPatch
}

// Empty reports whether the result records no change at all.
func (r *Result) Empty() bool {
	return r == nil || (len(r.Deltas) == 0 && r.Patch.Empty())
}

// placement locates a layer inside its parent for created-layer replay.
type placement struct {
	parentID string
	index    int
}

func placements(layers []*doc.Layer) map[string]placement {
	out := make(map[string]placement)
	var walk func(layers []*doc.Layer, parentID string)
	walk = func(layers []*doc.Layer, parentID string) {
		for i, l := range layers {
			out[l.ID] = placement{parentID: parentID, index: i}
			walk(l.Children, l.ID)
		}
	}
	walk(layers, "")
	return out
}

// Compute produces the deltas that turn before into after. Deltas are
// ordered: deletions first (a deleted group dissolves during replay, so
// its surviving children stay in the tree), then creations (outer groups
// before their children), then per-layer property/data/placement changes,
// then top-level reorders.
func Compute(ctx context.Context, before, after *doc.EditorContent, enc *codec.Encoder) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	beforeByID, beforeOrder := doc.Flatten(before.Layers)
	afterByID, afterOrder := doc.Flatten(after.Layers)
	beforePlacement := placements(before.Layers)
	afterPlacement := placements(after.Layers)
	topExact := topLevelSetsMatch(before.Layers, after.Layers)

	var deltas []LayerDelta

	// Deletions: present before, absent after. The pixel-free layer
	// travels along for labeling; the layer's pixels already live in
	// earlier entries, so none are re-encoded here.
	for _, id := range beforeOrder {
		if _, ok := afterByID[id]; ok {
			continue
		}
		deltas = append(deltas, LayerDelta{
			LayerID:   id,
			Change:    ChangeDeleted,
			FullLayer: beforeByID[id].CloneLight(),
		})
	}

	// Creations: absent before, present after. Traversal order puts outer
	// groups before their children, so replay can insert top-down.
	for _, id := range afterOrder {
		if _, ok := beforeByID[id]; ok {
			continue
		}
		l := afterByID[id]
		place := afterPlacement[id]
		d := LayerDelta{
			LayerID:   id,
			Change:    ChangeCreated,
			FullLayer: l.CloneLight(),
			ParentID:  place.parentID,
			Index:     place.index,
		}
		// A created group's children arrive via their own created deltas.
		d.FullLayer.Children = nil
		if l.Data != nil {
			diff, err := enc.ComputeImageDiff(ctx, nil, l.Data)
			if err != nil {
				return nil, fmt.Errorf("%w: layer %q: %w", ErrLayerEncode, id, err)
			}
			d.DataDiff = diff
		}
		deltas = append(deltas, d)
	}

	// Survivors: property, pixel and placement changes.
	for _, id := range afterOrder {
		b, ok := beforeByID[id]
		if !ok {
			continue
		}
		a := afterByID[id]

		// A reparented or re-indexed survivor gets a move delta carrying
		// its new placement; index-only shuffles at the top level are left
		// to the reorder pass when the id sets there match exactly.
		bp, ap := beforePlacement[id], afterPlacement[id]
		if bp.parentID != ap.parentID ||
			(bp.index != ap.index && !(ap.parentID == "" && topExact)) {
			deltas = append(deltas, LayerDelta{
				LayerID:  id,
				Change:   ChangeMoved,
				ParentID: ap.parentID,
				Index:    ap.index,
			})
		}

		if props := diffProps(b, a); !props.Empty() {
			deltas = append(deltas, LayerDelta{
				LayerID: id,
				Change:  ChangeProperties,
				Props:   props,
			})
		}

		if a.Data != nil {
			diff, err := enc.ComputeImageDiff(ctx, b.Data, a.Data)
			if err != nil {
				return nil, fmt.Errorf("%w: layer %q: %w", ErrLayerEncode, id, err)
			}
			if !diff.Empty() {
				deltas = append(deltas, LayerDelta{
					LayerID:  id,
					Change:   ChangeData,
					DataDiff: diff,
				})
			}
		}
	}

	// Best-effort top-level reorder detection: only when the top-level id
	// sets match exactly and the order differs.
	deltas = append(deltas, topLevelReorders(before.Layers, after.Layers)...)

	return &Result{
		Deltas: deltas,
		Patch:  diffContent(before, after),
	}, nil
}

func diffProps(b, a *doc.Layer) *PropertyChanges {
	p := &PropertyChanges{}
	if b.Name != a.Name {
		v := a.Name
		p.Name = &v
	}
	if b.Visible != a.Visible {
		v := a.Visible
		p.Visible = &v
	}
	if b.Locked != a.Locked {
		v := a.Locked
		p.Locked = &v
	}
	if b.Opacity != a.Opacity {
		v := a.Opacity
		p.Opacity = &v
	}
	if b.Blend != a.Blend {
		v := a.Blend
		p.Blend = &v
	}
	if b.X != a.X {
		v := a.X
		p.X = &v
	}
	if b.Y != a.Y {
		v := a.Y
		p.Y = &v
	}
	if b.Expanded != a.Expanded {
		v := a.Expanded
		p.Expanded = &v
	}
	if b.Text != a.Text {
		v := a.Text
		p.Text = &v
	}
	if !b.Style.Equal(a.Style) {
		p.Style = a.Style.Clone()
	}
	if !b.Shape.Equal(a.Shape) {
		p.Shape = a.Shape.Clone()
	}
	if !doc.FiltersEqual(b.Filters, a.Filters) {
		p.Filters = doc.CloneFilters(a.Filters)
		p.FiltersSet = true
	}
	return p
}

// topLevelSetsMatch reports whether the top-level layer id sets are
// identical; only then is an index change a pure reorder.
func topLevelSetsMatch(before, after []*doc.Layer) bool {
	if len(before) != len(after) {
		return false
	}
	ids := make(map[string]bool, len(before))
	for _, l := range before {
		ids[l.ID] = true
	}
	for _, l := range after {
		if !ids[l.ID] {
			return false
		}
	}
	return true
}

func topLevelReorders(before, after []*doc.Layer) []LayerDelta {
	if !topLevelSetsMatch(before, after) {
		return nil
	}
	beforeIdx := make(map[string]int, len(before))
	for i, l := range before {
		beforeIdx[l.ID] = i
	}
	var deltas []LayerDelta
	for newIdx, l := range after {
		oldIdx := beforeIdx[l.ID]
		if oldIdx != newIdx {
			deltas = append(deltas, LayerDelta{
				LayerID: l.ID,
				Change:  ChangeReordered,
				Reorder: &ReorderInfo{OldIndex: oldIdx, NewIndex: newIdx},
			})
		}
	}
	return deltas
}

func diffContent(before, after *doc.EditorContent) *ContentPatch {
	p := &ContentPatch{}
	if before.ActiveLayerID != after.ActiveLayerID {
		v := after.ActiveLayerID
		p.ActiveLayerID = &v
	}
	if before.ActivePathID != after.ActivePathID {
		v := after.ActivePathID
		p.ActivePathID = &v
	}
	if before.CanvasSize != after.CanvasSize {
		v := after.CanvasSize
		p.CanvasSize = &v
	}
	if !before.Selection.Equal(after.Selection) {
		p.Selection = after.Selection.Clone()
		p.SelectionSet = true
	}
	if !guidesEqual(before.Guides, after.Guides) {
		p.Guides = append([]doc.Guide(nil), after.Guides...)
		p.GuidesSet = true
	}
	if !pathsEqual(before.Paths, after.Paths) {
		p.Paths = make([]*doc.Path, len(after.Paths))
		for i, path := range after.Paths {
			p.Paths[i] = path.Clone()
		}
		p.PathsSet = true
	}
	return p
}

func guidesEqual(a, b []doc.Guide) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func pathsEqual(a, b []*doc.Path) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
