package text

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/halfpix/pentimento"
	"github.com/halfpix/pentimento/doc"
)

// defaultLineHeight is the line advance multiplier when the style leaves
// LineHeight unset.
const defaultLineHeight = 1.2

// Rasterize renders text into a tightly sized pixel buffer using the
// layer's style. Lines are split on '\n'; the buffer is as wide as the
// widest line. Bold is synthesized by double-striking one pixel apart;
// italics need a true italic face and are not synthesized.
func Rasterize(content string, style *doc.TextStyle, src *Source) (*pentimento.Pixmap, error) {
	if src == nil {
		return nil, ErrEmptyFontData
	}
	if style == nil {
		style = doc.DefaultTextStyle()
	}
	size := style.SizePx
	if size <= 0 {
		size = doc.DefaultTextStyle().SizePx
	}

	face, err := opentype.NewFace(src.raster, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("text: create face: %w", err)
	}
	defer face.Close()

	lineHeight := style.LineHeight
	if lineHeight <= 0 {
		lineHeight = defaultLineHeight
	}
	lineAdvance := int(math.Ceil(size * lineHeight))

	metrics := face.Metrics()
	ascent := metrics.Ascent.Ceil()
	descent := metrics.Descent.Ceil()

	lines := strings.Split(content, "\n")
	widths := make([]int, len(lines))
	width := 1
	for i, line := range lines {
		widths[i] = font.MeasureString(face, line).Ceil()
		if style.Bold {
			widths[i]++
		}
		if widths[i] > width {
			width = widths[i]
		}
	}
	height := ascent + descent + (len(lines)-1)*lineAdvance
	if height < 1 {
		height = 1
	}

	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	fill := parseHexColor(style.Fill)
	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(fill),
		Face: face,
	}

	for i, line := range lines {
		x := 0
		switch style.Align {
		case doc.AlignCenter:
			x = (width - widths[i]) / 2
		case doc.AlignRight:
			x = width - widths[i]
		}
		baseline := ascent + i*lineAdvance

		drawer.Dot = fixed.P(x, baseline)
		drawer.DrawString(line)
		if style.Bold {
			drawer.Dot = fixed.P(x+1, baseline)
			drawer.DrawString(line)
		}

		thickness := int(math.Max(1, size/14))
		if style.Underline {
			fillSpan(dst, x, x+widths[i], baseline+thickness, thickness, fill)
		}
		if style.Strikethrough {
			fillSpan(dst, x, x+widths[i], baseline-ascent*4/10, thickness, fill)
		}
	}

	return pentimento.FromImage(dst), nil
}

func fillSpan(dst *image.NRGBA, x0, x1, y, thickness int, c color.NRGBA) {
	bounds := dst.Bounds()
	for yy := y; yy < y+thickness; yy++ {
		for xx := x0; xx < x1; xx++ {
			if image.Pt(xx, yy).In(bounds) {
				dst.SetNRGBA(xx, yy, c)
			}
		}
	}
}

// parseHexColor parses "#rgb", "#rrggbb" or "#rrggbbaa". Unparseable
// strings fall back to opaque black, matching how the editor treats a
// broken style: visible, not fatal.
func parseHexColor(s string) color.NRGBA {
	out := color.NRGBA{A: 0xff}
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(hex) {
	case 3:
		if n, err := parseNibbles(hex); err == nil {
			out.R, out.G, out.B = n[0]*17, n[1]*17, n[2]*17
		}
	case 6, 8:
		if n, err := parseNibbles(hex); err == nil {
			out.R = n[0]<<4 | n[1]
			out.G = n[2]<<4 | n[3]
			out.B = n[4]<<4 | n[5]
			if len(hex) == 8 {
				out.A = n[6]<<4 | n[7]
			}
		}
	}
	return out
}

func parseNibbles(hex string) ([]uint8, error) {
	out := make([]uint8, len(hex))
	for i := 0; i < len(hex); i++ {
		c := hex[i]
		switch {
		case c >= '0' && c <= '9':
			out[i] = c - '0'
		case c >= 'a' && c <= 'f':
			out[i] = c - 'a' + 10
		case c >= 'A' && c <= 'F':
			out[i] = c - 'A' + 10
		default:
			return nil, fmt.Errorf("text: invalid hex digit %q", c)
		}
	}
	return out, nil
}
