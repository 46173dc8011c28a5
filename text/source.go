// Package text derives pixel buffers for text layers. Buffers are
// rendered on demand from the layer's string and style; the history
// engine never persists them.
package text

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/go-text/typesetting/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// ErrEmptyFontData is returned when a source is created from no bytes.
var ErrEmptyFontData = errors.New("text: empty font data")

// Source is a loaded font file. One Source serves both shaping and
// rasterization and should be shared across the application; the parsed
// forms are read-only and safe for concurrent use.
type Source struct {
	data   []byte
	shaped *font.Font // go-text font, drives shaping
	raster *sfnt.Font // x/image font, drives rasterization
	name   string
}

// NewSource parses TTF or OTF font data. The slice is copied and can be
// reused after this call.
func NewSource(data []byte) (*Source, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}
	buf := make([]byte, len(data))
	copy(buf, data)

	face, err := font.ParseTTF(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("text: parse font: %w", err)
	}
	sf, err := opentype.Parse(buf)
	if err != nil {
		return nil, fmt.Errorf("text: parse font: %w", err)
	}

	s := &Source{data: buf, shaped: face.Font, raster: sf}
	if name, err := sf.Name(nil, sfnt.NameIDFamily); err == nil {
		s.name = name
	}
	return s, nil
}

// NewSourceFromFile loads a Source from a font file on disk.
func NewSourceFromFile(path string) (*Source, error) {
	data, err := os.ReadFile(path) //nolint:gosec // font path is caller-provided
	if err != nil {
		return nil, fmt.Errorf("text: read font %s: %w", path, err)
	}
	return NewSource(data)
}

// Name returns the font's family name, or "" when the name table is
// missing.
func (s *Source) Name() string {
	return s.name
}
