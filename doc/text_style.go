package doc

// TextAlign is the horizontal alignment of a text layer.
type TextAlign uint8

// Text alignment constants.
const (
	AlignLeft TextAlign = iota
	AlignCenter
	AlignRight
)

// String returns a human-readable name for the alignment.
func (a TextAlign) String() string {
	switch a {
	case AlignLeft:
		return "Left"
	case AlignCenter:
		return "Center"
	case AlignRight:
		return "Right"
	default:
		return unknownStr
	}
}

// TextStyle describes how a text layer renders its content.
// It is pure data; rasterization lives in the text package.
type TextStyle struct {
	Family        string    `json:"family"`
	SizePx        float64   `json:"sizePx"`
	Fill          string    `json:"fill"` // "#rrggbbaa"
	Align         TextAlign `json:"align"`
	Bold          bool      `json:"bold,omitempty"`
	Italic        bool      `json:"italic,omitempty"`
	Underline     bool      `json:"underline,omitempty"`
	Strikethrough bool      `json:"strikethrough,omitempty"`
	// LineHeight is a multiplier of SizePx; 0 means the default (1.2).
	LineHeight float64 `json:"lineHeight,omitempty"`
}

// DefaultTextStyle returns the style applied to newly created text layers.
func DefaultTextStyle() *TextStyle {
	return &TextStyle{
		Family: "sans-serif",
		SizePx: 16,
		Fill:   "#000000ff",
		Align:  AlignLeft,
	}
}

// Clone returns a copy of the style. Nil stays nil.
func (s *TextStyle) Clone() *TextStyle {
	if s == nil {
		return nil
	}
	out := *s
	return &out
}

// Equal reports value equality of two styles.
func (s *TextStyle) Equal(other *TextStyle) bool {
	if s == nil || other == nil {
		return s == other
	}
	return *s == *other
}
