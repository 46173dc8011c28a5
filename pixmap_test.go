package pentimento

import (
	"image"
	"image/color"
	"testing"
)

func TestNewPixmap(t *testing.T) {
	pm := NewPixmap(16, 8)
	if pm.Width() != 16 || pm.Height() != 8 {
		t.Fatalf("dimensions = %dx%d, want 16x8", pm.Width(), pm.Height())
	}
	if len(pm.Data()) != 16*8*4 {
		t.Fatalf("data length = %d, want %d", len(pm.Data()), 16*8*4)
	}
}

func TestNewPixmapClampsDimensions(t *testing.T) {
	pm := NewPixmap(0, -3)
	if pm.Width() != 1 || pm.Height() != 1 {
		t.Errorf("dimensions = %dx%d, want 1x1", pm.Width(), pm.Height())
	}
}

func TestPixmapSetGetPixel(t *testing.T) {
	pm := NewPixmap(4, 4)
	c := Color{R: 255, G: 128, B: 64, A: 200}
	pm.SetPixel(2, 3, c)

	if got := pm.GetPixel(2, 3); got != c {
		t.Errorf("GetPixel = %+v, want %+v", got, c)
	}

	// Out of bounds reads return Transparent; writes are ignored.
	if got := pm.GetPixel(-1, 0); got != Transparent {
		t.Errorf("out-of-bounds GetPixel = %+v, want Transparent", got)
	}
	pm.SetPixel(10, 10, c) // must not panic
}

func TestPixmapFillRect(t *testing.T) {
	pm := NewPixmap(10, 10)
	blue := Color{B: 255, A: 255}
	pm.FillRect(Rect{X: 2, Y: 2, W: 3, H: 3}, blue)

	if got := pm.GetPixel(2, 2); got != blue {
		t.Errorf("inside = %+v, want %+v", got, blue)
	}
	if got := pm.GetPixel(5, 5); got != Transparent {
		t.Errorf("outside = %+v, want Transparent", got)
	}

	// Clamped to bounds.
	pm.FillRect(Rect{X: 8, Y: 8, W: 10, H: 10}, blue)
	if got := pm.GetPixel(9, 9); got != blue {
		t.Errorf("clamped fill corner = %+v, want %+v", got, blue)
	}
}

func TestPixmapClone(t *testing.T) {
	pm := NewPixmap(3, 3)
	pm.SetPixel(1, 1, Color{R: 9, A: 255})

	clone := pm.Clone()
	if !pm.Equal(clone) {
		t.Fatal("clone differs from original")
	}

	clone.SetPixel(0, 0, Color{G: 1, A: 1})
	if pm.Equal(clone) {
		t.Error("mutating clone affected original")
	}
}

func TestPixmapSubPixmap(t *testing.T) {
	pm := NewPixmap(10, 10)
	red := Color{R: 255, A: 255}
	pm.FillRect(Rect{X: 4, Y: 4, W: 2, H: 2}, red)

	sub := pm.SubPixmap(Rect{X: 4, Y: 4, W: 2, H: 2})
	if sub.Width() != 2 || sub.Height() != 2 {
		t.Fatalf("sub dimensions = %dx%d, want 2x2", sub.Width(), sub.Height())
	}
	if got := sub.GetPixel(0, 0); got != red {
		t.Errorf("sub pixel = %+v, want %+v", got, red)
	}

	// Fully out-of-bounds crop yields the 1x1 placeholder.
	empty := pm.SubPixmap(Rect{X: 50, Y: 50, W: 5, H: 5})
	if empty.Width() != 1 || empty.Height() != 1 {
		t.Errorf("empty crop = %dx%d, want 1x1", empty.Width(), empty.Height())
	}
}

func TestPixmapBlit(t *testing.T) {
	dst := NewPixmap(10, 10)
	src := NewPixmap(2, 2)
	green := Color{G: 255, A: 255}
	src.Fill(green)

	dst.Blit(src, 3, 4)
	if got := dst.GetPixel(3, 4); got != green {
		t.Errorf("blitted pixel = %+v, want %+v", got, green)
	}
	if got := dst.GetPixel(5, 6); got != Transparent {
		t.Errorf("pixel past blit = %+v, want Transparent", got)
	}

	// Partially off-canvas blit clips instead of panicking.
	dst.Blit(src, 9, 9)
	if got := dst.GetPixel(9, 9); got != green {
		t.Errorf("clipped blit corner = %+v, want %+v", got, green)
	}
}

func TestPixmapBlitSubPixmapRoundTrip(t *testing.T) {
	a := NewPixmap(20, 20)
	a.Fill(Color{R: 10, G: 20, B: 30, A: 255})
	region := Rect{X: 5, Y: 6, W: 7, H: 8}
	a.FillRect(region, Color{R: 200, A: 255})

	sub := a.SubPixmap(region)
	b := NewPixmap(20, 20)
	b.Fill(Color{R: 10, G: 20, B: 30, A: 255})
	b.Blit(sub, region.X, region.Y)

	if !a.Equal(b) {
		t.Error("SubPixmap followed by Blit did not reproduce source")
	}
}

func TestPixmapImageRoundTrip(t *testing.T) {
	pm := NewPixmap(5, 5)
	pm.SetPixel(1, 2, Color{R: 11, G: 22, B: 33, A: 255})

	back := FromImage(pm.ToImage())
	if !pm.Equal(back) {
		t.Error("ToImage/FromImage round trip changed pixels")
	}
}

func TestFromImageGeneric(t *testing.T) {
	// A non-NRGBA image exercises the slow per-pixel path.
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})

	pm := FromImage(img)
	if got := pm.GetPixel(0, 0); got != (Color{R: 255, A: 255}) {
		t.Errorf("converted pixel = %+v, want opaque red", got)
	}
}
