package codec

import (
	pentimento "github.com/halfpix/pentimento"
)

// boundsPadding is added on every side of a detected change region so that
// lossy edges and anti-aliased fringes land inside the stored rect.
const boundsPadding = 4

// sampleStride picks how coarsely ChangedBounds samples a buffer.
// Larger images get a coarser stride to bound comparison cost; the stride
// width is later folded back into the rect expansion so a change between
// samples is still covered once any sample inside it differs.
func sampleStride(width, height int) int {
	area := width * height
	switch {
	case area <= 256*256:
		return 1
	case area <= 1024*1024:
		return 2
	case area <= 2048*2048:
		return 4
	default:
		return 8
	}
}

// ChangedBounds returns the rectangular region in which before and after
// differ, expanded by padding plus one stride width, or nil when no sampled
// pixel differs. A nil before or a dimension mismatch means no comparison
// is possible and the full frame of after is returned.
//
// Sampling is an accuracy/performance trade-off: a change smaller than the
// stride that happens to fall entirely between sample points is missed.
// Callers treat a nil result as "no change" with that caveat.
func ChangedBounds(before, after *pentimento.Pixmap) *pentimento.Rect {
	if after == nil {
		return nil
	}
	w, h := after.Width(), after.Height()
	if before == nil || before.Width() != w || before.Height() != h {
		full := pentimento.Rect{W: w, H: h}
		return &full
	}

	stride := sampleStride(w, h)
	bd, ad := before.Data(), after.Data()

	minX, minY := w, h
	maxX, maxY := -1, -1
	for y := 0; y < h; y += stride {
		row := y * w * 4
		for x := 0; x < w; x += stride {
			i := row + x*4
			if bd[i] != ad[i] || bd[i+1] != ad[i+1] || bd[i+2] != ad[i+2] || bd[i+3] != ad[i+3] {
				if x < minX {
					minX = x
				}
				if x > maxX {
					maxX = x
				}
				if y < minY {
					minY = y
				}
				if y > maxY {
					maxY = y
				}
			}
		}
	}

	if maxX < 0 {
		return nil
	}

	grow := boundsPadding + stride
	r := pentimento.Rect{
		X: minX - grow,
		Y: minY - grow,
		W: maxX - minX + 1 + 2*grow,
		H: maxY - minY + 1 + 2*grow,
	}.Intersect(pentimento.Rect{W: w, H: h})
	return &r
}
