package text

import (
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/bidi"
)

// Glyph is one positioned glyph produced by shaping.
type Glyph struct {
	ID      font.GID
	Cluster int

	// Offsets and advances in pixels relative to the pen position.
	XOffset  float64
	YOffset  float64
	XAdvance float64
	YAdvance float64
}

// Shaper turns strings into positioned glyphs with HarfBuzz shaping:
// kerning, ligatures, and right-to-left runs all apply.
//
// Shaper is safe for concurrent use. HarfbuzzShaper instances hold
// mutable buffers and are pooled per call; font.Face instances are not
// concurrent-safe and are created per call from the shared font.
type Shaper struct {
	pool sync.Pool
}

// NewShaper creates a Shaper.
func NewShaper() *Shaper {
	return &Shaper{
		pool: sync.Pool{
			New: func() any { return &shaping.HarfbuzzShaper{} },
		},
	}
}

// Shape lays out text at the given pixel size.
func (sh *Shaper) Shape(src *Source, text string, sizePx float64) []Glyph {
	if src == nil || text == "" {
		return nil
	}
	runes := []rune(text)
	dir := detectDirection(runes)

	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: dir,
		Face:      font.NewFace(src.shaped),
		Size:      floatToFixed(sizePx),
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	}

	hb := sh.pool.Get().(*shaping.HarfbuzzShaper)
	output := hb.Shape(input)
	sh.pool.Put(hb)

	glyphs := make([]Glyph, len(output.Glyphs))
	for i, g := range output.Glyphs {
		glyphs[i] = Glyph{
			ID:      g.GlyphID,
			Cluster: g.TextIndex(),
			XOffset: fixedToFloat(g.XOffset),
			YOffset: fixedToFloat(g.YOffset),
		}
		if dir.IsVertical() {
			glyphs[i].YAdvance = fixedToFloat(g.Advance)
		} else {
			glyphs[i].XAdvance = fixedToFloat(g.Advance)
		}
	}
	return glyphs
}

// Measure returns the advance width of text in pixels at the given size.
func (sh *Shaper) Measure(src *Source, text string, sizePx float64) float64 {
	width := 0.0
	for _, g := range sh.Shape(src, text, sizePx) {
		width += g.XAdvance
	}
	if width < 0 {
		width = -width
	}
	return width
}

// detectDirection picks the run direction from the first strong rune.
func detectDirection(runes []rune) di.Direction {
	for _, r := range runes {
		props, _ := bidi.LookupRune(r)
		switch props.Class() {
		case bidi.L:
			return di.DirectionLTR
		case bidi.R, bidi.AL:
			return di.DirectionRTL
		}
	}
	return di.DirectionLTR
}

// detectScript returns the script of the first non-space rune. Simple
// heuristic; mixed-script text should be split into runs before shaping.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
