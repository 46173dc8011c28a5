package pentimento

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
)

// Color is a non-premultiplied RGBA color with 8 bits per channel.
// Pixel buffers store channels in this order, interleaved.
type Color struct {
	R, G, B, A uint8
}

// Transparent is fully transparent black, the zero value of Color.
var Transparent = Color{}

// Color converts to the standard library color type.
func (c Color) Color() color.Color {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// FromColor converts a standard library color to a Color.
func FromColor(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{R: n.R, G: n.G, B: n.B, A: n.A}
}

// Pixmap represents a rectangular pixel buffer.
// Data is interleaved non-premultiplied RGBA, 4 bytes per pixel, row-major.
type Pixmap struct {
	width  int
	height int
	data   []uint8
}

// NewPixmap creates a new pixmap with the given dimensions.
// Dimensions are clamped to a minimum of 1x1.
func NewPixmap(width, height int) *Pixmap {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return &Pixmap{
		width:  width,
		height: height,
		data:   make([]uint8, width*height*4),
	}
}

// Width returns the width of the pixmap.
func (p *Pixmap) Width() int {
	return p.width
}

// Height returns the height of the pixmap.
func (p *Pixmap) Height() int {
	return p.height
}

// Data returns the raw pixel data (RGBA format).
// The returned slice aliases the pixmap's storage.
func (p *Pixmap) Data() []uint8 {
	return p.data
}

// SetPixel sets the color of a single pixel.
// Out-of-bounds coordinates are ignored.
func (p *Pixmap) SetPixel(x, y int, c Color) {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return
	}
	i := (y*p.width + x) * 4
	p.data[i+0] = c.R
	p.data[i+1] = c.G
	p.data[i+2] = c.B
	p.data[i+3] = c.A
}

// GetPixel returns the color of a single pixel.
// Out-of-bounds coordinates return Transparent.
func (p *Pixmap) GetPixel(x, y int) Color {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return Transparent
	}
	i := (y*p.width + x) * 4
	return Color{
		R: p.data[i+0],
		G: p.data[i+1],
		B: p.data[i+2],
		A: p.data[i+3],
	}
}

// Fill sets every pixel to the given color.
func (p *Pixmap) Fill(c Color) {
	for i := 0; i < len(p.data); i += 4 {
		p.data[i+0] = c.R
		p.data[i+1] = c.G
		p.data[i+2] = c.B
		p.data[i+3] = c.A
	}
}

// FillRect sets every pixel inside r to the given color.
// The rectangle is clamped to the pixmap bounds.
func (p *Pixmap) FillRect(r Rect, c Color) {
	r = r.Intersect(Rect{W: p.width, H: p.height})
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			i := (y*p.width + x) * 4
			p.data[i+0] = c.R
			p.data[i+1] = c.G
			p.data[i+2] = c.B
			p.data[i+3] = c.A
		}
	}
}

// Clone returns a deep copy of the pixmap.
func (p *Pixmap) Clone() *Pixmap {
	out := &Pixmap{
		width:  p.width,
		height: p.height,
		data:   make([]uint8, len(p.data)),
	}
	copy(out.data, p.data)
	return out
}

// SubPixmap returns a copy of the region r. The rectangle is clamped to
// the pixmap bounds; an empty intersection yields a 1x1 transparent pixmap.
func (p *Pixmap) SubPixmap(r Rect) *Pixmap {
	r = r.Intersect(Rect{W: p.width, H: p.height})
	if r.Empty() {
		return NewPixmap(1, 1)
	}
	out := NewPixmap(r.W, r.H)
	for y := 0; y < r.H; y++ {
		srcOff := ((r.Y+y)*p.width + r.X) * 4
		dstOff := y * r.W * 4
		copy(out.data[dstOff:dstOff+r.W*4], p.data[srcOff:srcOff+r.W*4])
	}
	return out
}

// Blit copies src into p with src's top-left corner at (x, y),
// overwriting destination pixels (no blending). Rows and columns that
// fall outside p are clipped.
func (p *Pixmap) Blit(src *Pixmap, x, y int) {
	if src == nil {
		return
	}
	dst := Rect{X: x, Y: y, W: src.width, H: src.height}.Intersect(Rect{W: p.width, H: p.height})
	if dst.Empty() {
		return
	}
	for row := 0; row < dst.H; row++ {
		srcOff := ((dst.Y-y+row)*src.width + (dst.X - x)) * 4
		dstOff := ((dst.Y+row)*p.width + dst.X) * 4
		copy(p.data[dstOff:dstOff+dst.W*4], src.data[srcOff:srcOff+dst.W*4])
	}
}

// Equal reports whether two pixmaps have identical dimensions and
// identical pixel values. Nil pixmaps are equal only to nil.
func (p *Pixmap) Equal(other *Pixmap) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.width == other.width &&
		p.height == other.height &&
		bytes.Equal(p.data, other.data)
}

// ToImage converts the pixmap to an image.NRGBA sharing no storage.
func (p *Pixmap) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, p.width, p.height))
	copy(img.Pix, p.data)
	return img
}

// FromImage creates a pixmap from an image.
func FromImage(img image.Image) *Pixmap {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	// Fast path: NRGBA matches the pixmap layout byte for byte.
	if n, ok := img.(*image.NRGBA); ok && n.Stride == width*4 && bounds.Min == (image.Point{}) {
		pm := NewPixmap(width, height)
		copy(pm.data, n.Pix)
		return pm
	}

	pm := NewPixmap(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := img.At(bounds.Min.X+x, bounds.Min.Y+y)
			pm.SetPixel(x, y, FromColor(c))
		}
	}
	return pm
}

// SavePNG saves the pixmap to a PNG file.
func (p *Pixmap) SavePNG(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	return png.Encode(f, p.ToImage())
}

// At implements the image.Image interface.
func (p *Pixmap) At(x, y int) color.Color {
	return p.GetPixel(x, y).Color()
}

// Bounds implements the image.Image interface.
func (p *Pixmap) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.width, p.height)
}

// ColorModel implements the image.Image interface.
func (p *Pixmap) ColorModel() color.Model {
	return color.NRGBAModel
}
