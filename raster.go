package pixed

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
)

// Raster is an owned rectangular RGBA8 pixel buffer.
//
// Pixels are stored with straight (non-premultiplied) alpha, 4 bytes per
// pixel, rows packed without padding. Every Raster owns its buffer: Clone
// and the snapshot paths copy, they never alias.
type Raster struct {
	width  int
	height int
	pix    []uint8
}

// NewRaster creates a fully transparent raster. Negative dimensions are
// treated as zero.
func NewRaster(width, height int) *Raster {
	width = max(width, 0)
	height = max(height, 0)
	return &Raster{
		width:  width,
		height: height,
		pix:    make([]uint8, width*height*4),
	}
}

// newRasterFromPix wraps pix without copying. The caller hands over ownership.
func newRasterFromPix(width, height int, pix []uint8) *Raster {
	return &Raster{width: width, height: height, pix: pix}
}

// Width returns the width of the raster.
func (r *Raster) Width() int {
	return r.width
}

// Height returns the height of the raster.
func (r *Raster) Height() int {
	return r.height
}

// Stride returns the number of bytes per row.
func (r *Raster) Stride() int {
	return r.width * 4
}

// Pix returns the raw pixel data. Writes through the returned slice modify
// the raster.
func (r *Raster) Pix() []uint8 {
	return r.pix
}

// InBounds reports whether (x, y) addresses a pixel of the raster.
func (r *Raster) InBounds(x, y int) bool {
	return x >= 0 && x < r.width && y >= 0 && y < r.height
}

// Pixel returns the color at (x, y), or Transparent when out of bounds.
func (r *Raster) Pixel(x, y int) Color {
	if !r.InBounds(x, y) {
		return Transparent
	}
	i := (y*r.width + x) * 4
	return Color{R: r.pix[i], G: r.pix[i+1], B: r.pix[i+2], A: r.pix[i+3]}
}

// SetPixel sets the color at (x, y). Out-of-bounds writes are ignored.
func (r *Raster) SetPixel(x, y int, c Color) {
	if !r.InBounds(x, y) {
		return
	}
	i := (y*r.width + x) * 4
	r.pix[i+0] = c.R
	r.pix[i+1] = c.G
	r.pix[i+2] = c.B
	r.pix[i+3] = c.A
}

// Clear fills the entire raster with a color.
func (r *Raster) Clear(c Color) {
	for i := 0; i < len(r.pix); i += 4 {
		r.pix[i+0] = c.R
		r.pix[i+1] = c.G
		r.pix[i+2] = c.B
		r.pix[i+3] = c.A
	}
}

// Clone returns an independent copy of the raster.
func (r *Raster) Clone() *Raster {
	pix := make([]uint8, len(r.pix))
	copy(pix, r.pix)
	return newRasterFromPix(r.width, r.height, pix)
}

// crop returns a copy of the top-left width x height region, clipped to r.
func (r *Raster) crop(width, height int) *Raster {
	width, height = min(width, r.width), min(height, r.height)
	dst := NewRaster(width, height)
	n := width * 4
	for y := 0; y < height; y++ {
		copy(dst.pix[y*n:(y+1)*n], r.pix[y*r.Stride():])
	}
	return dst
}

// CopyFrom overwrites r with the pixels of src. Both rasters must have the
// same dimensions.
func (r *Raster) CopyFrom(src *Raster) error {
	if src.width != r.width || src.height != r.height {
		return fmt.Errorf("%w: copy %dx%d into %dx%d", ErrInvalidSize, src.width, src.height, r.width, r.height)
	}
	copy(r.pix, src.pix)
	return nil
}

// Equal reports whether both rasters have the same size and pixels.
func (r *Raster) Equal(other *Raster) bool {
	if other == nil {
		return false
	}
	return r.width == other.width && r.height == other.height && bytes.Equal(r.pix, other.pix)
}

// FlipHorizontal mirrors the raster around its vertical axis in place.
func (r *Raster) FlipHorizontal() {
	stride := r.Stride()
	for y := 0; y < r.height; y++ {
		row := r.pix[y*stride : (y+1)*stride]
		for l, h := 0, r.width-1; l < h; l, h = l+1, h-1 {
			li, hi := l*4, h*4
			for k := 0; k < 4; k++ {
				row[li+k], row[hi+k] = row[hi+k], row[li+k]
			}
		}
	}
}

// Rotated returns a copy of the raster rotated clockwise by deg degrees.
// deg must be a multiple of 90; it is normalized into [0, 360).
func (r *Raster) Rotated(deg int) (*Raster, error) {
	deg, err := normalizeAngle(deg)
	if err != nil {
		return nil, err
	}

	w, h := r.width, r.height
	var dst *Raster
	var at func(x, y int) int // destination byte offset for source (x, y)

	switch deg {
	case 0:
		return r.Clone(), nil
	case 90:
		dst = NewRaster(h, w)
		at = func(x, y int) int { return (x*h + (h - 1 - y)) * 4 }
	case 180:
		dst = NewRaster(w, h)
		at = func(x, y int) int { return ((h-1-y)*w + (w - 1 - x)) * 4 }
	default: // 270
		dst = NewRaster(h, w)
		at = func(x, y int) int { return ((w-1-x)*h + y) * 4 }
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			si := (y*w + x) * 4
			copy(dst.pix[at(x, y):at(x, y)+4], r.pix[si:si+4])
		}
	}
	return dst, nil
}

// Resized returns a copy of the raster scaled to width x height with
// nearest-neighbour sampling, the only scaling that keeps pixel art crisp.
func (r *Raster) Resized(width, height int) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	dst := NewRaster(width, height)
	if r.width == 0 || r.height == 0 {
		return dst, nil
	}
	if width == r.width && height == r.height {
		copy(dst.pix, r.pix)
		return dst, nil
	}

	// Both sides are viewed as *image.RGBA so the scaler copies bytes
	// verbatim instead of converting straight alpha through premultiplied
	// color.RGBA64, which loses precision for translucent pixels.
	dv := dst.rgbaView()
	xdraw.NearestNeighbor.Scale(dv, dv.Bounds(), r.rgbaView(), r.rgbaView().Bounds(), xdraw.Src, nil)
	return dst, nil
}

// rgbaView exposes the pixel buffer as an *image.RGBA without copying. The
// bytes are not premultiplied, so the view is only valid for byte-copying
// operations (Src compositing, nearest-neighbour scaling).
func (r *Raster) rgbaView() *image.RGBA {
	return &image.RGBA{Pix: r.pix, Stride: r.Stride(), Rect: image.Rect(0, 0, r.width, r.height)}
}

// ToImage converts the raster to an image.NRGBA sharing no memory with it.
func (r *Raster) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, r.width, r.height))
	copy(img.Pix, r.pix)
	return img
}

// FromImage creates a raster from an image.
func FromImage(img image.Image) *Raster {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	r := NewRaster(width, height)

	if n, ok := img.(*image.NRGBA); ok {
		for y := 0; y < height; y++ {
			src := n.Pix[n.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
			copy(r.pix[y*r.Stride():(y+1)*r.Stride()], src[:r.Stride()])
		}
		return r
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r.SetPixel(x, y, FromColor(img.At(bounds.Min.X+x, bounds.Min.Y+y)))
		}
	}
	return r
}

// At implements the image.Image interface.
func (r *Raster) At(x, y int) color.Color {
	return r.Pixel(x, y).NRGBA()
}

// Bounds implements the image.Image interface.
func (r *Raster) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.width, r.height)
}

// ColorModel implements the image.Image interface.
func (r *Raster) ColorModel() color.Model {
	return color.NRGBAModel
}

// normalizeAngle maps deg into {0, 90, 180, 270}.
func normalizeAngle(deg int) (int, error) {
	if deg%90 != 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidAngle, deg)
	}
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return deg, nil
}
