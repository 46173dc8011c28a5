package doc

// BlendMode represents a layer compositing blend mode.
type BlendMode uint8

// Blend mode constants, the set an editor exposes in its layer panel.
const (
	BlendNormal BlendMode = iota
	BlendMultiply
	BlendScreen
	BlendOverlay
	BlendDarken
	BlendLighten
	BlendColorDodge
	BlendColorBurn
	BlendHardLight
	BlendSoftLight
	BlendDifference
	BlendExclusion
	BlendHue
	BlendSaturation
	BlendColor
	BlendLuminosity
)

// unknownStr is the string returned for unknown enum values.
const unknownStr = "Unknown"

// String returns a human-readable name for the blend mode.
func (mode BlendMode) String() string {
	switch mode {
	case BlendNormal:
		return "Normal"
	case BlendMultiply:
		return "Multiply"
	case BlendScreen:
		return "Screen"
	case BlendOverlay:
		return "Overlay"
	case BlendDarken:
		return "Darken"
	case BlendLighten:
		return "Lighten"
	case BlendColorDodge:
		return "ColorDodge"
	case BlendColorBurn:
		return "ColorBurn"
	case BlendHardLight:
		return "HardLight"
	case BlendSoftLight:
		return "SoftLight"
	case BlendDifference:
		return "Difference"
	case BlendExclusion:
		return "Exclusion"
	case BlendHue:
		return "Hue"
	case BlendSaturation:
		return "Saturation"
	case BlendColor:
		return "Color"
	case BlendLuminosity:
		return "Luminosity"
	default:
		return unknownStr
	}
}

// Valid reports whether the blend mode is one of the defined constants.
func (mode BlendMode) Valid() bool {
	return mode <= BlendLuminosity
}
