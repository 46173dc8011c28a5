// Package codec converts raw pixel buffers to and from compressed encoded
// blobs, and computes the minimal rectangular region that changed between
// two buffers. It is the compression backbone of the history engine: pixel
// history is stored as encoded diffs, never as raw buffers.
package codec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/jpeg"
	"image/png"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/image/bmp"

	pentimento "github.com/halfpix/pentimento"
)

// Codec errors.
var (
	// ErrEncode wraps any failure while compressing a pixel buffer.
	ErrEncode = errors.New("codec: encode failed")

	// ErrDecode wraps any failure while decompressing a blob.
	ErrDecode = errors.New("codec: decode failed")

	// ErrDimensionMismatch is returned when a decoded image does not match
	// the dimensions recorded in its blob.
	ErrDimensionMismatch = errors.New("codec: decoded dimensions do not match blob")
)

// Format identifies the encoding of a blob.
type Format uint8

// Format constants.
const (
	// FormatZstdRaw is zstd-compressed raw RGBA. Lossless and by far the
	// fastest; the default for history deltas.
	FormatZstdRaw Format = iota

	// FormatPNG is lossless PNG.
	FormatPNG

	// FormatJPEG is lossy JPEG. Quality applies only here. JPEG carries
	// no alpha channel, so decoded pixels come back fully opaque.
	FormatJPEG

	// FormatBMP is uncompressed BMP, lossless.
	FormatBMP
)

// String returns a human-readable name for the format.
func (f Format) String() string {
	switch f {
	case FormatZstdRaw:
		return "ZstdRaw"
	case FormatPNG:
		return "PNG"
	case FormatJPEG:
		return "JPEG"
	case FormatBMP:
		return "BMP"
	default:
		return "Unknown"
	}
}

// Lossless reports whether decoding reproduces exact pixel values.
func (f Format) Lossless() bool {
	return f != FormatJPEG
}

// EncodedBlob is a compressed pixel buffer. Width and Height record the
// dimensions the blob decodes to; Data is the encoded payload.
type EncodedBlob struct {
	Format Format `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Data   []byte `json:"data"`
}

// Size returns the payload size in bytes.
func (b *EncodedBlob) Size() int {
	if b == nil {
		return 0
	}
	return len(b.Data)
}

// Clone returns a deep copy of the blob. Nil stays nil.
func (b *EncodedBlob) Clone() *EncodedBlob {
	if b == nil {
		return nil
	}
	out := *b
	out.Data = append([]byte(nil), b.Data...)
	return &out
}

// Shared zstd encoder/decoder. Both are documented by the library as safe
// for concurrent use when driven through EncodeAll/DecodeAll.
var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	zstdDecoder, _ = zstd.NewReader(nil)
)

// DefaultQuality is used for lossy formats when the caller passes a
// quality outside 1..100.
const DefaultQuality = 85

// Encoder compresses pixel buffers with a fixed format and quality.
// The zero value encodes lossless zstd raw; use NewEncoder for clamping.
type Encoder struct {
	Format  Format
	Quality int // 1..100, lossy formats only
}

// NewEncoder creates an encoder, clamping quality into 1..100.
func NewEncoder(format Format, quality int) *Encoder {
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}
	return &Encoder{Format: format, Quality: quality}
}

// Compress encodes a pixel buffer. The returned blob decodes to exactly
// the input dimensions; pixel values may differ under lossy formats.
func (e *Encoder) Compress(ctx context.Context, p *pentimento.Pixmap) (*EncodedBlob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: nil pixmap", ErrEncode)
	}

	blob := &EncodedBlob{
		Format: e.Format,
		Width:  p.Width(),
		Height: p.Height(),
	}

	switch e.Format {
	case FormatZstdRaw:
		blob.Data = zstdEncoder.EncodeAll(p.Data(), nil)
		return blob, nil

	case FormatPNG:
		var buf bytes.Buffer
		if err := png.Encode(&buf, p.ToImage()); err != nil {
			return nil, fmt.Errorf("%w: png: %w", ErrEncode, err)
		}
		blob.Data = buf.Bytes()
		return blob, nil

	case FormatJPEG:
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, p.ToImage(), &jpeg.Options{Quality: e.Quality}); err != nil {
			return nil, fmt.Errorf("%w: jpeg: %w", ErrEncode, err)
		}
		blob.Data = buf.Bytes()
		return blob, nil

	case FormatBMP:
		var buf bytes.Buffer
		if err := bmp.Encode(&buf, p.ToImage()); err != nil {
			return nil, fmt.Errorf("%w: bmp: %w", ErrEncode, err)
		}
		blob.Data = buf.Bytes()
		return blob, nil

	default:
		return nil, fmt.Errorf("%w: unknown format %d", ErrEncode, e.Format)
	}
}

// Decompress decodes a blob back into a pixel buffer with exactly the
// dimensions recorded in the blob.
func Decompress(ctx context.Context, blob *EncodedBlob) (*pentimento.Pixmap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if blob == nil {
		return nil, fmt.Errorf("%w: nil blob", ErrDecode)
	}

	switch blob.Format {
	case FormatZstdRaw:
		raw, err := zstdDecoder.DecodeAll(blob.Data, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %w", ErrDecode, err)
		}
		if len(raw) != blob.Width*blob.Height*4 {
			return nil, fmt.Errorf("%w: raw payload is %d bytes, want %d",
				ErrDimensionMismatch, len(raw), blob.Width*blob.Height*4)
		}
		p := pentimento.NewPixmap(blob.Width, blob.Height)
		copy(p.Data(), raw)
		return p, nil

	case FormatPNG:
		img, err := png.Decode(bytes.NewReader(blob.Data))
		if err != nil {
			return nil, fmt.Errorf("%w: png: %w", ErrDecode, err)
		}
		return checkedFromImage(blob, pentimento.FromImage(img))

	case FormatJPEG:
		img, err := jpeg.Decode(bytes.NewReader(blob.Data))
		if err != nil {
			return nil, fmt.Errorf("%w: jpeg: %w", ErrDecode, err)
		}
		return checkedFromImage(blob, pentimento.FromImage(img))

	case FormatBMP:
		img, err := bmp.Decode(bytes.NewReader(blob.Data))
		if err != nil {
			return nil, fmt.Errorf("%w: bmp: %w", ErrDecode, err)
		}
		return checkedFromImage(blob, pentimento.FromImage(img))

	default:
		return nil, fmt.Errorf("%w: unknown format %d", ErrDecode, blob.Format)
	}
}

func checkedFromImage(blob *EncodedBlob, p *pentimento.Pixmap) (*pentimento.Pixmap, error) {
	if p.Width() != blob.Width || p.Height() != blob.Height {
		return nil, fmt.Errorf("%w: got %dx%d, want %dx%d",
			ErrDimensionMismatch, p.Width(), p.Height(), blob.Width, blob.Height)
	}
	return p, nil
}
