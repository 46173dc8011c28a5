// Package delta computes the compact list of per-layer changes between two
// document states. Deltas key on stable layer ids, so the computation is a
// set of independent per-layer comparisons rather than a tree diff — layer
// identity never changes and the tree is shallow in practice.
package delta

import (
	"github.com/halfpix/pentimento/codec"
	"github.com/halfpix/pentimento/doc"
)

// ChangeType classifies what one LayerDelta changes.
type ChangeType uint8

// Change type constants.
const (
	// ChangeData is a pixel-content change carried as an ImageDiff.
	ChangeData ChangeType = iota
	// ChangeProperties is a scalar/structural property change.
	ChangeProperties
	// ChangeCreated introduces a layer absent from the previous state.
	ChangeCreated
	// ChangeDeleted removes a layer present in the previous state.
	ChangeDeleted
	// ChangeReordered moves a top-level layer to a new z-position.
	ChangeReordered
	// ChangeMoved re-homes a surviving layer to a new parent or index.
	ChangeMoved
)

// String returns a human-readable name for the change type.
func (t ChangeType) String() string {
	switch t {
	case ChangeData:
		return "Data"
	case ChangeProperties:
		return "Properties"
	case ChangeCreated:
		return "Created"
	case ChangeDeleted:
		return "Deleted"
	case ChangeReordered:
		return "Reordered"
	case ChangeMoved:
		return "Moved"
	default:
		return "Unknown"
	}
}

// PropertyChanges carries only the layer properties that changed; nil
// fields are untouched. This is what keeps property deltas small.
type PropertyChanges struct {
	Name     *string        `json:"name,omitempty"`
	Visible  *bool          `json:"visible,omitempty"`
	Locked   *bool          `json:"locked,omitempty"`
	Opacity  *int           `json:"opacity,omitempty"`
	Blend    *doc.BlendMode `json:"blend,omitempty"`
	X        *int           `json:"x,omitempty"`
	Y        *int           `json:"y,omitempty"`
	Expanded *bool          `json:"expanded,omitempty"`
	Text     *string        `json:"text,omitempty"`
	Style    *doc.TextStyle `json:"style,omitempty"`
	Shape    *doc.ShapeData `json:"shape,omitempty"`

	// Filters replaces the whole filter list when FiltersSet is true;
	// the flag disambiguates "unchanged" from "cleared".
	Filters    []doc.Filter `json:"filters,omitempty"`
	FiltersSet bool         `json:"filtersSet,omitempty"`
}

// Empty reports whether no property changed.
func (p *PropertyChanges) Empty() bool {
	if p == nil {
		return true
	}
	return p.Name == nil && p.Visible == nil && p.Locked == nil &&
		p.Opacity == nil && p.Blend == nil && p.X == nil && p.Y == nil &&
		p.Expanded == nil && p.Text == nil && p.Style == nil &&
		p.Shape == nil && !p.FiltersSet
}

// Clone returns a deep copy of the changes.
func (p *PropertyChanges) Clone() *PropertyChanges {
	if p == nil {
		return nil
	}
	out := *p
	out.Name = cloneScalar(p.Name)
	out.Visible = cloneScalar(p.Visible)
	out.Locked = cloneScalar(p.Locked)
	out.Opacity = cloneScalar(p.Opacity)
	out.Blend = cloneScalar(p.Blend)
	out.X = cloneScalar(p.X)
	out.Y = cloneScalar(p.Y)
	out.Expanded = cloneScalar(p.Expanded)
	out.Text = cloneScalar(p.Text)
	out.Style = p.Style.Clone()
	out.Shape = p.Shape.Clone()
	out.Filters = doc.CloneFilters(p.Filters)
	return &out
}

func cloneScalar[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// ApplyTo merges the changed fields into a layer in place.
func (p *PropertyChanges) ApplyTo(l *doc.Layer) {
	if p == nil || l == nil {
		return
	}
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.Visible != nil {
		l.Visible = *p.Visible
	}
	if p.Locked != nil {
		l.Locked = *p.Locked
	}
	if p.Opacity != nil {
		l.Opacity = *p.Opacity
	}
	if p.Blend != nil {
		l.Blend = *p.Blend
	}
	if p.X != nil {
		l.X = *p.X
	}
	if p.Y != nil {
		l.Y = *p.Y
	}
	if p.Expanded != nil {
		l.Expanded = *p.Expanded
	}
	if p.Text != nil {
		l.Text = *p.Text
	}
	if p.Style != nil {
		l.Style = p.Style.Clone()
	}
	if p.Shape != nil {
		l.Shape = p.Shape.Clone()
	}
	if p.FiltersSet {
		l.Filters = doc.CloneFilters(p.Filters)
	}
}

// ReorderInfo records a top-level z-order move.
type ReorderInfo struct {
	OldIndex int `json:"oldIndex"`
	NewIndex int `json:"newIndex"`
}

// LayerDelta is one per-layer change. Exactly one payload field is
// populated, selected by Change:
//
//   - ChangeData: DataDiff
//   - ChangeProperties: Props
//   - ChangeCreated: FullLayer (pixel-free) + ParentID/Index placement,
//     plus DataDiff when the created layer carries pixels
//   - ChangeDeleted: FullLayer (pixel-free); earlier entries hold the
//     layer's pixels, so none travel here
//   - ChangeReordered: Reorder
//   - ChangeMoved: ParentID/Index, the layer's new placement
type LayerDelta struct {
	LayerID   string           `json:"layerId"`
	Change    ChangeType       `json:"change"`
	DataDiff  *codec.ImageDiff `json:"dataDiff,omitempty"`
	Props     *PropertyChanges `json:"props,omitempty"`
	FullLayer *doc.Layer       `json:"fullLayer,omitempty"`
	ParentID  string           `json:"parentId,omitempty"`
	Index     int              `json:"index,omitempty"`
	Reorder   *ReorderInfo     `json:"reorder,omitempty"`
}

// ContentPatch carries document-level state that changed alongside the
// layer deltas: selection, guides, paths, canvas size, and focus ids.
// Without it, a delta entry could not replay edits that touch state
// outside the layer tree. Nil fields (and false Set flags) are untouched.
type ContentPatch struct {
	ActiveLayerID *string   `json:"activeLayerId,omitempty"`
	ActivePathID  *string   `json:"activePathId,omitempty"`
	CanvasSize    *doc.Size `json:"canvasSize,omitempty"`

	Selection    *doc.Selection `json:"selection,omitempty"`
	SelectionSet bool           `json:"selectionSet,omitempty"`

	Guides    []doc.Guide `json:"guides,omitempty"`
	GuidesSet bool        `json:"guidesSet,omitempty"`

	Paths    []*doc.Path `json:"paths,omitempty"`
	PathsSet bool        `json:"pathsSet,omitempty"`
}

// Clone returns a deep copy of the patch.
func (p *ContentPatch) Clone() *ContentPatch {
	if p == nil {
		return nil
	}
	out := *p
	out.ActiveLayerID = cloneScalar(p.ActiveLayerID)
	out.ActivePathID = cloneScalar(p.ActivePathID)
	out.CanvasSize = cloneScalar(p.CanvasSize)
	out.Selection = p.Selection.Clone()
	if p.Guides != nil {
		out.Guides = append([]doc.Guide(nil), p.Guides...)
	}
	if p.Paths != nil {
		out.Paths = make([]*doc.Path, len(p.Paths))
		for i, path := range p.Paths {
			out.Paths[i] = path.Clone()
		}
	}
	return &out
}

// Empty reports whether the patch changes nothing.
func (p *ContentPatch) Empty() bool {
	if p == nil {
		return true
	}
	return p.ActiveLayerID == nil && p.ActivePathID == nil &&
		p.CanvasSize == nil && !p.SelectionSet && !p.GuidesSet && !p.PathsSet
}

// ApplyTo merges the patch into a content in place.
func (p *ContentPatch) ApplyTo(c *doc.EditorContent) {
	if p == nil || c == nil {
		return
	}
	if p.ActiveLayerID != nil {
		c.ActiveLayerID = *p.ActiveLayerID
	}
	if p.ActivePathID != nil {
		c.ActivePathID = *p.ActivePathID
	}
	if p.CanvasSize != nil {
		c.CanvasSize = *p.CanvasSize
	}
	if p.SelectionSet {
		c.Selection = p.Selection.Clone()
	}
	if p.GuidesSet {
		c.Guides = append([]doc.Guide(nil), p.Guides...)
	}
	if p.PathsSet {
		c.Paths = make([]*doc.Path, len(p.Paths))
		for i, path := range p.Paths {
			c.Paths[i] = path.Clone()
		}
	}
}

// deltaMetadataSize is the flat per-delta estimate for memory accounting;
// property and structural deltas are cheap compared to pixel payloads.
const deltaMetadataSize = 1536

// EstimateSize returns the approximate in-memory footprint of a delta set
// in bytes: exact blob sizes plus a flat metadata rate per delta.
func EstimateSize(deltas []LayerDelta) int {
	size := 0
	for i := range deltas {
		size += deltaMetadataSize
		size += deltas[i].DataDiff.Size()
	}
	return size
}
