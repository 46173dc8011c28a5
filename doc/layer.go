package doc

import (
	pentimento "github.com/halfpix/pentimento"
)

// LayerKind identifies the variant of a layer node.
type LayerKind uint8

// Layer kind constants.
const (
	// KindPixel is a raster layer owning a pixel buffer.
	KindPixel LayerKind = iota

	// KindGroup is a container of child layers; it owns no pixels.
	KindGroup

	// KindText renders a string; its pixel buffer is derived on demand
	// and never persisted.
	KindText

	// KindShape owns vector shapes rendered by the shape tool.
	KindShape
)

// String returns a human-readable name for the layer kind.
func (k LayerKind) String() string {
	switch k {
	case KindPixel:
		return "Pixel"
	case KindGroup:
		return "Group"
	case KindText:
		return "Text"
	case KindShape:
		return "Shape"
	default:
		return unknownStr
	}
}

// Layer is one node in the document's layer tree, a tagged variant over
// pixel, group, text, and shape layers. Exactly one of Data, Children,
// Text/Style, Shape is meaningful, selected by Kind; constructors enforce
// this. ID is assigned at creation and never changes for the layer's
// lifetime — history deltas key on it.
type Layer struct {
	ID      string    `json:"id"`
	Kind    LayerKind `json:"kind"`
	Name    string    `json:"name"`
	Visible bool      `json:"visible"`
	Locked  bool      `json:"locked"`
	Opacity int       `json:"opacity"` // 0..100
	Blend   BlendMode `json:"blend"`
	X       int       `json:"x"`
	Y       int       `json:"y"`
	Filters []Filter  `json:"filters,omitempty"`

	// Data is the pixel buffer of a KindPixel layer. It is deliberately
	// excluded from serialization: history stores pixels as compressed
	// diffs, never inline.
	Data *pentimento.Pixmap `json:"-"`

	// Children and Expanded belong to KindGroup layers.
	Children []*Layer `json:"children,omitempty"`
	Expanded bool     `json:"expanded,omitempty"`

	// Text and Style belong to KindText layers.
	Text  string     `json:"text,omitempty"`
	Style *TextStyle `json:"style,omitempty"`

	// Shape belongs to KindShape layers.
	Shape *ShapeData `json:"shape,omitempty"`
}

// NewPixelLayer creates a raster layer with the given pixel buffer.
// A nil buffer is allowed: the layer has no content yet.
func NewPixelLayer(name string, data *pentimento.Pixmap) *Layer {
	return &Layer{
		ID:      NewID(),
		Kind:    KindPixel,
		Name:    name,
		Visible: true,
		Opacity: 100,
		Data:    data,
	}
}

// NewGroup creates an empty group layer.
func NewGroup(name string) *Layer {
	return &Layer{
		ID:       NewID(),
		Kind:     KindGroup,
		Name:     name,
		Visible:  true,
		Opacity:  100,
		Expanded: true,
	}
}

// NewTextLayer creates a text layer with the default style.
func NewTextLayer(name, text string) *Layer {
	return &Layer{
		ID:      NewID(),
		Kind:    KindText,
		Name:    name,
		Visible: true,
		Opacity: 100,
		Text:    text,
		Style:   DefaultTextStyle(),
	}
}

// NewShapeLayer creates a shape layer with an empty shape list.
func NewShapeLayer(name string) *Layer {
	return &Layer{
		ID:      NewID(),
		Kind:    KindShape,
		Name:    name,
		Visible: true,
		Opacity: 100,
		Shape:   &ShapeData{},
	}
}

// Clone returns a deep copy of the layer and, for groups, its subtree.
// Pixel buffers are copied by value.
func (l *Layer) Clone() *Layer {
	if l == nil {
		return nil
	}
	out := *l
	out.Filters = CloneFilters(l.Filters)
	if l.Data != nil {
		out.Data = l.Data.Clone()
	}
	if l.Children != nil {
		out.Children = make([]*Layer, len(l.Children))
		for i, child := range l.Children {
			out.Children[i] = child.Clone()
		}
	}
	out.Style = l.Style.Clone()
	out.Shape = l.Shape.Clone()
	return &out
}

// CloneLight returns a copy with every pixel buffer in the subtree dropped.
// Used for full-snapshot serialization, which never embeds raw pixels.
func (l *Layer) CloneLight() *Layer {
	if l == nil {
		return nil
	}
	out := *l
	out.Data = nil
	out.Filters = CloneFilters(l.Filters)
	if l.Children != nil {
		out.Children = make([]*Layer, len(l.Children))
		for i, child := range l.Children {
			out.Children[i] = child.CloneLight()
		}
	}
	out.Style = l.Style.Clone()
	out.Shape = l.Shape.Clone()
	return &out
}

// PropsEqual reports whether the scalar and structural properties of two
// layers match: everything except the pixel buffer and children.
func (l *Layer) PropsEqual(other *Layer) bool {
	if l == nil || other == nil {
		return l == other
	}
	return l.ID == other.ID &&
		l.Kind == other.Kind &&
		l.Name == other.Name &&
		l.Visible == other.Visible &&
		l.Locked == other.Locked &&
		l.Opacity == other.Opacity &&
		l.Blend == other.Blend &&
		l.X == other.X &&
		l.Y == other.Y &&
		l.Expanded == other.Expanded &&
		l.Text == other.Text &&
		FiltersEqual(l.Filters, other.Filters) &&
		l.Style.Equal(other.Style) &&
		l.Shape.Equal(other.Shape)
}

// Equal reports deep value equality of two layers including pixel content
// (by value, not by pointer identity) and group subtrees.
func (l *Layer) Equal(other *Layer) bool {
	if l == nil || other == nil {
		return l == other
	}
	if !l.PropsEqual(other) {
		return false
	}
	if !l.Data.Equal(other.Data) {
		return false
	}
	if len(l.Children) != len(other.Children) {
		return false
	}
	for i := range l.Children {
		if !l.Children[i].Equal(other.Children[i]) {
			return false
		}
	}
	return true
}

// EstimateSize returns a rough in-memory footprint of the layer subtree
// in bytes, counting pixel data exactly and metadata at a flat rate.
func (l *Layer) EstimateSize() int {
	if l == nil {
		return 0
	}
	size := layerMetadataSize
	if l.Data != nil {
		size += len(l.Data.Data())
	}
	size += len(l.Text)
	if l.Shape != nil {
		size += len(l.Shape.Shapes) * shapeMetadataSize
	}
	size += len(l.Filters) * filterMetadataSize
	for _, child := range l.Children {
		size += child.EstimateSize()
	}
	return size
}

// Flat per-node estimates for memory accounting. Precision does not matter
// here; pixel buffers dominate and those are counted exactly.
const (
	layerMetadataSize  = 1024
	shapeMetadataSize  = 256
	filterMetadataSize = 128
)
