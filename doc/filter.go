package doc

// FilterType identifies a non-destructive filter attached to a layer.
// The engine records and diffs filter descriptors; the actual kernels run
// in the rendering pipeline, outside this module.
type FilterType uint8

// Filter type constants.
const (
	FilterNone FilterType = iota
	FilterBlur
	FilterSharpen
	FilterBrightness
	FilterContrast
	FilterSaturate
	FilterHueRotate
	FilterGrayscale
	FilterInvert
	FilterDropShadow
	FilterNoise
)

// String returns a human-readable name for the filter type.
func (ft FilterType) String() string {
	switch ft {
	case FilterNone:
		return "None"
	case FilterBlur:
		return "Blur"
	case FilterSharpen:
		return "Sharpen"
	case FilterBrightness:
		return "Brightness"
	case FilterContrast:
		return "Contrast"
	case FilterSaturate:
		return "Saturate"
	case FilterHueRotate:
		return "HueRotate"
	case FilterGrayscale:
		return "Grayscale"
	case FilterInvert:
		return "Invert"
	case FilterDropShadow:
		return "DropShadow"
	case FilterNoise:
		return "Noise"
	default:
		return unknownStr
	}
}

// Filter is one non-destructive filter descriptor in a layer's filter list.
// Params hold filter-specific scalar settings keyed by name
// (e.g. "radius" for blur, "amount" for brightness).
type Filter struct {
	Type    FilterType         `json:"type"`
	Enabled bool               `json:"enabled"`
	Params  map[string]float64 `json:"params,omitempty"`
}

// Clone returns a deep copy of the filter.
func (f Filter) Clone() Filter {
	out := f
	if f.Params != nil {
		out.Params = make(map[string]float64, len(f.Params))
		for k, v := range f.Params {
			out.Params[k] = v
		}
	}
	return out
}

// Equal reports whether two filters have identical type, state, and params.
func (f Filter) Equal(other Filter) bool {
	if f.Type != other.Type || f.Enabled != other.Enabled {
		return false
	}
	if len(f.Params) != len(other.Params) {
		return false
	}
	for k, v := range f.Params {
		ov, ok := other.Params[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// CloneFilters deep-copies a filter list. Nil stays nil.
func CloneFilters(filters []Filter) []Filter {
	if filters == nil {
		return nil
	}
	out := make([]Filter, len(filters))
	for i, f := range filters {
		out[i] = f.Clone()
	}
	return out
}

// FiltersEqual reports whether two filter lists are element-wise equal.
func FiltersEqual(a, b []Filter) bool {
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
