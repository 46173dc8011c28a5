package doc

import pentimento "github.com/halfpix/pentimento"

// SelectionKind identifies the geometry of an active selection.
type SelectionKind uint8

// Selection kind constants.
const (
	// SelectionRect is an axis-aligned rectangular marquee.
	SelectionRect SelectionKind = iota
	// SelectionEllipse is an elliptical marquee inscribed in Bounds.
	SelectionEllipse
	// SelectionPath is an arbitrary region described by PathID.
	SelectionPath
)

// String returns a human-readable name for the selection kind.
func (k SelectionKind) String() string {
	switch k {
	case SelectionRect:
		return "Rect"
	case SelectionEllipse:
		return "Ellipse"
	case SelectionPath:
		return "Path"
	default:
		return unknownStr
	}
}

// Selection is the active selected region, in canvas coordinates.
// A nil *Selection means nothing is selected.
type Selection struct {
	Kind   SelectionKind   `json:"kind"`
	Bounds pentimento.Rect `json:"bounds"`
	// PathID references a document path when Kind is SelectionPath.
	PathID string `json:"pathId,omitempty"`
}

// Clone returns a copy of the selection. Nil stays nil.
func (s *Selection) Clone() *Selection {
	if s == nil {
		return nil
	}
	out := *s
	return &out
}

// Equal reports value equality of two selections.
func (s *Selection) Equal(other *Selection) bool {
	if s == nil || other == nil {
		return s == other
	}
	return *s == *other
}

// Guide is one ruler guide: a horizontal or vertical line at Position
// (canvas pixels from the top or left edge respectively).
type Guide struct {
	Horizontal bool `json:"horizontal"`
	Position   int  `json:"position"`
}
