package pixed

import (
	"github.com/gogpu/pixed/internal/blend"
)

// ComposeLayers flattens layers[from..to] (inclusive) into a new width x
// height raster.
//
// Index 0 is the topmost layer, so the range is drawn from the highest index
// down. Hidden layers are skipped and every other layer is blended
// source-over with its opacity. Layers of a different size are anchored at
// the top-left corner and clipped.
//
// The range is clamped to the slice. An empty slice or an empty range yields
// a fully transparent raster. A non-positive width or height falls back to
// DefaultCanvasSize.
func ComposeLayers(width, height int, layers []*Layer, from, to int) *Raster {
	dst := NewRaster(canvasSize(width), canvasSize(height))
	from, to, ok := clampRange(from, to, len(layers))
	if !ok {
		return dst
	}
	for i := to; i >= from; i-- {
		l := layers[i]
		if l == nil || !l.visible {
			continue
		}
		drawOver(dst, l.raster, blend.Opacity(l.opacity))
	}
	return dst
}

// ComposeFrames flattens frames[from..to] (inclusive) into a new width x
// height raster. Each frame is first flattened from its own layers, then
// blended with the frame opacity following the same rules as ComposeLayers.
// It is used for onion skinning and frame previews.
func ComposeFrames(width, height int, frames []*Frame, from, to int) *Raster {
	dst := NewRaster(canvasSize(width), canvasSize(height))
	from, to, ok := clampRange(from, to, len(frames))
	if !ok {
		return dst
	}
	for i := to; i >= from; i-- {
		f := frames[i]
		if f == nil || !f.visible {
			continue
		}
		drawOver(dst, f.Flatten(), blend.Opacity(f.opacity))
	}
	return dst
}

// drawOver blends src over dst anchored at the origin, clipped to both.
func drawOver(dst, src *Raster, opacity byte) {
	drawOverAt(dst, src, 0, 0, opacity)
}

// drawOverAt blends src over dst with src's origin at (x, y) in dst.
func drawOverAt(dst, src *Raster, x, y int, opacity byte) {
	if opacity == 0 || src == nil {
		return
	}
	x0, y0 := max(x, 0), max(y, 0)
	x1 := min(x+src.width, dst.width)
	y1 := min(y+src.height, dst.height)
	if x0 >= x1 || y0 >= y1 {
		return
	}
	n := (x1 - x0) * 4
	for py := y0; py < y1; py++ {
		d := (py*dst.width + x0) * 4
		s := ((py-y)*src.width + (x0 - x)) * 4
		blend.OverRow(dst.pix[d:d+n], src.pix[s:s+n], opacity)
	}
}

// clampRange clamps an inclusive [from, to] range to a slice of length n.
func clampRange(from, to, n int) (int, int, bool) {
	if n == 0 {
		return 0, 0, false
	}
	from = max(from, 0)
	to = min(to, n-1)
	if from > to {
		return 0, 0, false
	}
	return from, to, true
}

func canvasSize(v int) int {
	if v <= 0 {
		return DefaultCanvasSize
	}
	return v
}
