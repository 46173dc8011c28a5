package doc

// ShapeKind identifies the geometric kind of a vector shape.
type ShapeKind uint8

// Shape kind constants.
const (
	ShapeRect ShapeKind = iota
	ShapeEllipse
	ShapeLine
	ShapePolygon
	ShapeStar
)

// String returns a human-readable name for the shape kind.
func (k ShapeKind) String() string {
	switch k {
	case ShapeRect:
		return "Rect"
	case ShapeEllipse:
		return "Ellipse"
	case ShapeLine:
		return "Line"
	case ShapePolygon:
		return "Polygon"
	case ShapeStar:
		return "Star"
	default:
		return unknownStr
	}
}

// Paint describes how a shape is filled or stroked.
// Color is an RGBA hex string ("#rrggbbaa") so it survives JSON untouched.
type Paint struct {
	Color   string  `json:"color"`
	Width   float64 `json:"width,omitempty"` // stroke only
	Enabled bool    `json:"enabled"`
}

// VectorShape is one shape inside a shape layer.
// Points are (x, y) pairs in layer-local coordinates; their meaning depends
// on Kind (corners for rects/lines, vertices for polygons/stars).
type VectorShape struct {
	ID     string    `json:"id"`
	Kind   ShapeKind `json:"kind"`
	Points []float64 `json:"points,omitempty"`
	Fill   *Paint    `json:"fill,omitempty"`
	Stroke *Paint    `json:"stroke,omitempty"`
	// Rotation in degrees around the shape's center.
	Rotation float64 `json:"rotation,omitempty"`
}

// Clone returns a deep copy of the shape.
func (s VectorShape) Clone() VectorShape {
	out := s
	if s.Points != nil {
		out.Points = append([]float64(nil), s.Points...)
	}
	if s.Fill != nil {
		f := *s.Fill
		out.Fill = &f
	}
	if s.Stroke != nil {
		st := *s.Stroke
		out.Stroke = &st
	}
	return out
}

// Equal reports deep value equality of two shapes.
func (s VectorShape) Equal(other VectorShape) bool {
	if s.ID != other.ID || s.Kind != other.Kind || s.Rotation != other.Rotation {
		return false
	}
	if len(s.Points) != len(other.Points) {
		return false
	}
	for i := range s.Points {
		if s.Points[i] != other.Points[i] {
			return false
		}
	}
	return paintEqual(s.Fill, other.Fill) && paintEqual(s.Stroke, other.Stroke)
}

func paintEqual(a, b *Paint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// ShapeData is the payload of a shape layer: its shapes plus the editing
// focus state the shape tool needs between edits.
type ShapeData struct {
	Shapes           []VectorShape `json:"shapes"`
	ActiveShapeID    string        `json:"activeShapeId,omitempty"`
	SelectedShapeIDs []string      `json:"selectedShapeIds,omitempty"`
	GlobalFill       *Paint        `json:"globalFill,omitempty"`
	GlobalStroke     *Paint        `json:"globalStroke,omitempty"`
}

// Clone returns a deep copy of the shape data.
func (d *ShapeData) Clone() *ShapeData {
	if d == nil {
		return nil
	}
	out := &ShapeData{
		ActiveShapeID: d.ActiveShapeID,
	}
	if d.Shapes != nil {
		out.Shapes = make([]VectorShape, len(d.Shapes))
		for i, s := range d.Shapes {
			out.Shapes[i] = s.Clone()
		}
	}
	if d.SelectedShapeIDs != nil {
		out.SelectedShapeIDs = append([]string(nil), d.SelectedShapeIDs...)
	}
	if d.GlobalFill != nil {
		f := *d.GlobalFill
		out.GlobalFill = &f
	}
	if d.GlobalStroke != nil {
		s := *d.GlobalStroke
		out.GlobalStroke = &s
	}
	return out
}

// Equal reports deep value equality of two shape data payloads.
func (d *ShapeData) Equal(other *ShapeData) bool {
	if d == nil || other == nil {
		return d == other
	}
	if d.ActiveShapeID != other.ActiveShapeID {
		return false
	}
	if len(d.Shapes) != len(other.Shapes) {
		return false
	}
	for i := range d.Shapes {
		if !d.Shapes[i].Equal(other.Shapes[i]) {
			return false
		}
	}
	if len(d.SelectedShapeIDs) != len(other.SelectedShapeIDs) {
		return false
	}
	for i := range d.SelectedShapeIDs {
		if d.SelectedShapeIDs[i] != other.SelectedShapeIDs[i] {
			return false
		}
	}
	return paintEqual(d.GlobalFill, other.GlobalFill) &&
		paintEqual(d.GlobalStroke, other.GlobalStroke)
}
