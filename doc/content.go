package doc

import (
	"errors"
	"fmt"
)

// Validation errors.
var (
	// ErrCanvasSize is returned when canvas dimensions are not positive.
	ErrCanvasSize = errors.New("doc: canvas dimensions must be positive")

	// ErrDuplicateID is returned when two layers in one tree share an id.
	ErrDuplicateID = errors.New("doc: duplicate layer id")
)

// Size is the canvas size in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// EditorContent is the full editable state of one open image at one point
// in time: the layer tree plus paths, guides, and selection. It is pure
// data. Each committed edit replaces the content wholesale; the previous
// value feeds delta computation and is then discarded by the caller.
type EditorContent struct {
	// Layers is the ordered layer forest. Index 0 is the topmost layer
	// (most recently added layers sort toward the front).
	Layers []*Layer `json:"layers"`

	// ActiveLayerID references the focused layer by id; empty when no
	// layer has focus. Always an id lookup, never a live pointer.
	ActiveLayerID string `json:"activeLayerId,omitempty"`

	CanvasSize Size       `json:"canvasSize"`
	Selection  *Selection `json:"selection,omitempty"`
	Guides     []Guide    `json:"guides,omitempty"`

	// Paths is the ordered list of vector paths, independent of layers.
	Paths        []*Path `json:"paths,omitempty"`
	ActivePathID string  `json:"activePathId,omitempty"`
}

// NewContent creates an empty document with the given canvas size.
func NewContent(width, height int) *EditorContent {
	return &EditorContent{
		CanvasSize: Size{Width: width, Height: height},
	}
}

// Validate checks the structural invariants: positive canvas dimensions
// and unique layer ids across the whole tree.
func (c *EditorContent) Validate() error {
	if c.CanvasSize.Width <= 0 || c.CanvasSize.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrCanvasSize, c.CanvasSize.Width, c.CanvasSize.Height)
	}
	seen := make(map[string]struct{})
	var walk func(layers []*Layer) error
	walk = func(layers []*Layer) error {
		for _, l := range layers {
			if _, dup := seen[l.ID]; dup {
				return fmt.Errorf("%w: %q", ErrDuplicateID, l.ID)
			}
			seen[l.ID] = struct{}{}
			if err := walk(l.Children); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(c.Layers)
}

// Clone returns a deep copy of the content, pixel buffers included.
func (c *EditorContent) Clone() *EditorContent {
	if c == nil {
		return nil
	}
	out := &EditorContent{
		ActiveLayerID: c.ActiveLayerID,
		CanvasSize:    c.CanvasSize,
		Selection:     c.Selection.Clone(),
		ActivePathID:  c.ActivePathID,
	}
	if c.Layers != nil {
		out.Layers = make([]*Layer, len(c.Layers))
		for i, l := range c.Layers {
			out.Layers[i] = l.Clone()
		}
	}
	if c.Guides != nil {
		out.Guides = append([]Guide(nil), c.Guides...)
	}
	if c.Paths != nil {
		out.Paths = make([]*Path, len(c.Paths))
		for i, p := range c.Paths {
			out.Paths[i] = p.Clone()
		}
	}
	return out
}

// CloneLight returns a deep copy with every pixel buffer dropped.
// This is the serializable form full snapshots carry.
func (c *EditorContent) CloneLight() *EditorContent {
	if c == nil {
		return nil
	}
	out := c.Clone()
	var strip func(layers []*Layer)
	strip = func(layers []*Layer) {
		for _, l := range layers {
			l.Data = nil
			strip(l.Children)
		}
	}
	strip(out.Layers)
	return out
}

// Equal reports deep value equality of two contents. Pixel buffers compare
// by value; object identity never matters.
func (c *EditorContent) Equal(other *EditorContent) bool {
	if c == nil || other == nil {
		return c == other
	}
	if c.ActiveLayerID != other.ActiveLayerID ||
		c.CanvasSize != other.CanvasSize ||
		c.ActivePathID != other.ActivePathID ||
		!c.Selection.Equal(other.Selection) {
		return false
	}
	if len(c.Guides) != len(other.Guides) {
		return false
	}
	for i := range c.Guides {
		if c.Guides[i] != other.Guides[i] {
			return false
		}
	}
	if len(c.Paths) != len(other.Paths) {
		return false
	}
	for i := range c.Paths {
		if !c.Paths[i].Equal(other.Paths[i]) {
			return false
		}
	}
	if len(c.Layers) != len(other.Layers) {
		return false
	}
	for i := range c.Layers {
		if !c.Layers[i].Equal(other.Layers[i]) {
			return false
		}
	}
	return true
}

// Flatten walks the layer forest depth-first and returns an id-keyed map
// of every layer plus the ids in traversal order. Group children follow
// their parent. The returned layers are the live nodes, not copies.
func Flatten(layers []*Layer) (map[string]*Layer, []string) {
	byID := make(map[string]*Layer)
	var order []string
	var walk func(layers []*Layer)
	walk = func(layers []*Layer) {
		for _, l := range layers {
			byID[l.ID] = l
			order = append(order, l.ID)
			walk(l.Children)
		}
	}
	walk(layers)
	return byID, order
}

// FindLayer returns the layer with the given id anywhere in the tree,
// or nil if absent.
func (c *EditorContent) FindLayer(id string) *Layer {
	if c == nil || id == "" {
		return nil
	}
	var find func(layers []*Layer) *Layer
	find = func(layers []*Layer) *Layer {
		for _, l := range layers {
			if l.ID == id {
				return l
			}
			if found := find(l.Children); found != nil {
				return found
			}
		}
		return nil
	}
	return find(c.Layers)
}

// ActiveLayer resolves ActiveLayerID, or nil when unset or dangling.
func (c *EditorContent) ActiveLayer() *Layer {
	return c.FindLayer(c.ActiveLayerID)
}

// EstimateSize returns a rough in-memory footprint in bytes.
func (c *EditorContent) EstimateSize() int {
	if c == nil {
		return 0
	}
	size := layerMetadataSize // content-level metadata
	for _, l := range c.Layers {
		size += l.EstimateSize()
	}
	for _, p := range c.Paths {
		size += len(p.Points)*8 + len(p.Verbs)
	}
	size += len(c.Guides) * 16
	return size
}
