package codec

import (
	"context"
	"errors"
	"fmt"

	pentimento "github.com/halfpix/pentimento"
)

// fullFrameThreshold is the fraction of changed pixels past which a diff
// stores the whole frame: the cropping overhead would exceed the savings.
const fullFrameThreshold = 0.70

// ErrApplyDiff wraps failures while applying an image diff to a base.
var ErrApplyDiff = errors.New("codec: apply diff failed")

// DiffType identifies how much of the frame an ImageDiff carries.
type DiffType uint8

// Diff type constants.
const (
	// DiffBBox stores only the rectangular region that changed.
	DiffBBox DiffType = iota
	// DiffFull stores the entire frame.
	DiffFull
)

// String returns a human-readable name for the diff type.
func (t DiffType) String() string {
	switch t {
	case DiffBBox:
		return "BBox"
	case DiffFull:
		return "Full"
	default:
		return "Unknown"
	}
}

// ImageDiff is the compressed pixel-level difference between two versions
// of one layer's buffer. A nil Blob means nothing changed. For DiffBBox
// the Rect locates the encoded sub-image inside the frame; for DiffFull
// the Rect spans the whole frame.
type ImageDiff struct {
	Type DiffType        `json:"type"`
	Rect pentimento.Rect `json:"rect"`
	Blob *EncodedBlob    `json:"blob,omitempty"`
}

// Empty reports whether the diff records no change.
func (d *ImageDiff) Empty() bool {
	return d == nil || d.Blob == nil
}

// Size returns the encoded payload size in bytes.
func (d *ImageDiff) Size() int {
	if d == nil {
		return 0
	}
	return d.Blob.Size()
}

// Clone returns a deep copy of the diff. Nil stays nil.
func (d *ImageDiff) Clone() *ImageDiff {
	if d == nil {
		return nil
	}
	out := *d
	out.Blob = d.Blob.Clone()
	return &out
}

// ComputeImageDiff produces the diff that turns before into after.
// When no sampled pixel differs the diff is empty (nil Blob). When more
// than fullFrameThreshold of the frame changed, the whole frame is encoded
// as a DiffFull; otherwise only the changed rect is cropped and encoded.
func (e *Encoder) ComputeImageDiff(ctx context.Context, before, after *pentimento.Pixmap) (*ImageDiff, error) {
	if after == nil {
		return nil, fmt.Errorf("%w: nil after buffer", ErrEncode)
	}

	bounds := ChangedBounds(before, after)
	if bounds == nil {
		return &ImageDiff{Type: DiffBBox}, nil
	}

	frame := pentimento.Rect{W: after.Width(), H: after.Height()}
	if float64(bounds.Area()) > fullFrameThreshold*float64(frame.Area()) {
		blob, err := e.Compress(ctx, after)
		if err != nil {
			return nil, err
		}
		return &ImageDiff{Type: DiffFull, Rect: frame, Blob: blob}, nil
	}

	blob, err := e.Compress(ctx, after.SubPixmap(*bounds))
	if err != nil {
		return nil, err
	}
	return &ImageDiff{Type: DiffBBox, Rect: *bounds, Blob: blob}, nil
}

// ApplyImageDiff reconstructs the "after" buffer from a base and a diff.
//
// An empty diff returns the base unchanged, or a 1x1 placeholder when the
// base is also nil ("nothing to show"). A DiffFull, or any diff against a
// nil base, decodes the blob directly. Otherwise the decoded sub-image is
// blitted onto a copy of the base at the diff's offset; the base itself is
// never mutated.
func ApplyImageDiff(ctx context.Context, base *pentimento.Pixmap, diff *ImageDiff) (*pentimento.Pixmap, error) {
	if diff.Empty() {
		if base == nil {
			return pentimento.NewPixmap(1, 1), nil
		}
		return base, nil
	}

	decoded, err := Decompress(ctx, diff.Blob)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrApplyDiff, err)
	}

	if diff.Type == DiffFull || base == nil {
		return decoded, nil
	}

	out := base.Clone()
	out.Blit(decoded, diff.Rect.X, diff.Rect.Y)
	return out, nil
}
