// Package snapshot stores full copies of raster pixel data for undo history.
//
// A Pixels value always holds the complete buffer, never a diff. When
// compression is requested the bytes are stored as a zstd frame, which is
// typically a large saving for pixel art with wide flat regions.
package snapshot

import (
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// ErrSizeMismatch is returned when unpacked data does not match the recorded
// dimensions.
var ErrSizeMismatch = errors.New("snapshot: size mismatch")

var (
	codecOnce sync.Once
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
	codecErr  error
)

// codec lazily creates the shared encoder and decoder. Both are safe for
// concurrent EncodeAll/DecodeAll calls.
func codec() (*zstd.Encoder, *zstd.Decoder, error) {
	codecOnce.Do(func() {
		encoder, codecErr = zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedFastest),
			zstd.WithEncoderConcurrency(1))
		if codecErr != nil {
			return
		}
		decoder, codecErr = zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	})
	return encoder, decoder, codecErr
}

// Pixels is an immutable packed copy of a RGBA8 pixel buffer.
type Pixels struct {
	width      int
	height     int
	data       []byte
	compressed bool
}

// Pack copies pix into a new snapshot. If compress is true and the encoder
// is available, the copy is zstd-compressed; otherwise it is stored raw.
func Pack(pix []byte, width, height int, compress bool) Pixels {
	if compress {
		if enc, _, err := codec(); err == nil {
			return Pixels{
				width:      width,
				height:     height,
				data:       enc.EncodeAll(pix, make([]byte, 0, len(pix)/8)),
				compressed: true,
			}
		}
	}
	data := make([]byte, len(pix))
	copy(data, pix)
	return Pixels{width: width, height: height, data: data}
}

// Width returns the width of the captured buffer in pixels.
func (p Pixels) Width() int { return p.width }

// Height returns the height of the captured buffer in pixels.
func (p Pixels) Height() int { return p.height }

// Compressed reports whether the snapshot is stored as a zstd frame.
func (p Pixels) Compressed() bool { return p.compressed }

// StoredSize returns the number of bytes retained by the snapshot.
func (p Pixels) StoredSize() int { return len(p.data) }

// Unpack returns a fresh copy of the captured pixel buffer.
func (p Pixels) Unpack() ([]byte, error) {
	want := p.width * p.height * 4
	if !p.compressed {
		if len(p.data) != want {
			return nil, fmt.Errorf("%w: have %d bytes, want %d", ErrSizeMismatch, len(p.data), want)
		}
		out := make([]byte, len(p.data))
		copy(out, p.data)
		return out, nil
	}

	_, dec, err := codec()
	if err != nil {
		return nil, fmt.Errorf("snapshot: decoder: %w", err)
	}
	out, err := dec.DecodeAll(p.data, make([]byte, 0, want))
	if err != nil {
		return nil, fmt.Errorf("snapshot: decode: %w", err)
	}
	if len(out) != want {
		return nil, fmt.Errorf("%w: have %d bytes, want %d", ErrSizeMismatch, len(out), want)
	}
	return out, nil
}
