package history

import "strings"

// ChangeKind groups history entries into coarse categories for display
// and filtering. Classification is keyword matching against the entry
// label, so unrecognized labels land in ChangeOther rather than failing.
type ChangeKind string

// Change kinds.
const (
	ChangePaint     ChangeKind = "paint"
	ChangeFill      ChangeKind = "fill"
	ChangeCanvas    ChangeKind = "canvas"
	ChangeStructure ChangeKind = "structure"
	ChangeTransform ChangeKind = "transform"
	ChangeText      ChangeKind = "text"
	ChangeShape     ChangeKind = "shape"
	ChangeFilter    ChangeKind = "filter"
	ChangeSelection ChangeKind = "selection"
	ChangeOther     ChangeKind = "other"
)

// labelKeywords maps label substrings to change kinds, checked in order.
// Earlier rows win, so the more specific phrases come first ("layer
// moved" is structure, not transform).
var labelKeywords = []struct {
	keyword string
	kind    ChangeKind
}{
	{"layer", ChangeStructure},
	{"group", ChangeStructure},
	{"merge", ChangeStructure},
	{"paint", ChangePaint},
	{"brush", ChangePaint},
	{"stroke", ChangePaint},
	{"pencil", ChangePaint},
	{"erase", ChangePaint},
	{"fill", ChangeFill},
	{"gradient", ChangeFill},
	{"crop", ChangeCanvas},
	{"canvas", ChangeCanvas},
	{"resize", ChangeCanvas},
	{"text", ChangeText},
	{"type", ChangeText},
	{"shape", ChangeShape},
	{"path", ChangeShape},
	{"filter", ChangeFilter},
	{"adjust", ChangeFilter},
	{"blur", ChangeFilter},
	{"select", ChangeSelection},
	{"transform", ChangeTransform},
	{"rotate", ChangeTransform},
	{"flip", ChangeTransform},
	{"scale", ChangeTransform},
	{"move", ChangeTransform},
}

// ClassifyLabel maps a human-readable edit label to a ChangeKind.
// Matching is case-insensitive.
func ClassifyLabel(label string) ChangeKind {
	lower := strings.ToLower(label)
	for _, row := range labelKeywords {
		if strings.Contains(lower, row.keyword) {
			return row.kind
		}
	}
	return ChangeOther
}
