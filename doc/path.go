package doc

// PathVerb represents a path construction command.
type PathVerb uint8

// Path verb constants.
const (
	// VerbMoveTo moves the current point without drawing.
	VerbMoveTo PathVerb = iota
	// VerbLineTo draws a line to the specified point.
	VerbLineTo
	// VerbQuadTo draws a quadratic Bezier curve.
	VerbQuadTo
	// VerbCubicTo draws a cubic Bezier curve.
	VerbCubicTo
	// VerbClose closes the current subpath.
	VerbClose
)

// String returns a human-readable name for the verb.
func (v PathVerb) String() string {
	switch v {
	case VerbMoveTo:
		return "MoveTo"
	case VerbLineTo:
		return "LineTo"
	case VerbQuadTo:
		return "QuadTo"
	case VerbCubicTo:
		return "CubicTo"
	case VerbClose:
		return "Close"
	default:
		return unknownStr
	}
}

// PointCount returns the number of coordinates this verb consumes.
func (v PathVerb) PointCount() int {
	switch v {
	case VerbMoveTo, VerbLineTo:
		return 2 // x, y
	case VerbQuadTo:
		return 4 // cx, cy, x, y
	case VerbCubicTo:
		return 6 // c1x, c1y, c2x, c2y, x, y
	default:
		return 0
	}
}

// Path is one vector path in the document, independent of the layer tree.
// Verbs and coordinate data are stored in separate flat slices, verbs in
// drawing order with their coordinates packed sequentially into Points.
type Path struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Verbs  []PathVerb `json:"verbs,omitempty"`
	Points []float64  `json:"points,omitempty"`
}

// Clone returns a deep copy of the path.
func (p *Path) Clone() *Path {
	if p == nil {
		return nil
	}
	out := &Path{ID: p.ID, Name: p.Name}
	if p.Verbs != nil {
		out.Verbs = append([]PathVerb(nil), p.Verbs...)
	}
	if p.Points != nil {
		out.Points = append([]float64(nil), p.Points...)
	}
	return out
}

// Equal reports deep value equality of two paths.
func (p *Path) Equal(other *Path) bool {
	if p == nil || other == nil {
		return p == other
	}
	if p.ID != other.ID || p.Name != other.Name {
		return false
	}
	if len(p.Verbs) != len(other.Verbs) || len(p.Points) != len(other.Points) {
		return false
	}
	for i := range p.Verbs {
		if p.Verbs[i] != other.Verbs[i] {
			return false
		}
	}
	for i := range p.Points {
		if p.Points[i] != other.Points[i] {
			return false
		}
	}
	return true
}

// Valid reports whether the verb list and coordinate data are consistent:
// every verb's coordinates are present and no trailing data remains.
func (p *Path) Valid() bool {
	if p == nil {
		return false
	}
	want := 0
	for _, v := range p.Verbs {
		want += v.PointCount()
	}
	return want == len(p.Points)
}
