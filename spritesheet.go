package pixed

import (
	"fmt"
)

// SpriteSheet tiles cells row-major into a rows x cols grid over a solid
// background. Every cell has the size of the first non-nil raster; cells are
// composited over the background, anchored at the top-left of their slot.
//
// Grid slots without a raster stay background. Rasters beyond rows*cols are
// ignored. rows or cols <= 0 return ErrInvalidGrid.
func SpriteSheet(cells []*Raster, rows, cols int, bg Color) (*Raster, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidGrid, rows, cols)
	}
	cw, ch := DefaultCanvasSize, DefaultCanvasSize
	for _, c := range cells {
		if c != nil {
			cw, ch = c.width, c.height
			break
		}
	}
	return spriteSheet(cells, rows, cols, cw, ch, bg), nil
}

func spriteSheet(cells []*Raster, rows, cols, cw, ch int, bg Color) *Raster {
	sheet := NewRaster(cols*cw, rows*ch)
	sheet.Clear(bg)
	for i, c := range cells {
		if i >= rows*cols {
			break
		}
		if c == nil {
			continue
		}
		// Clip to the slot so an oversized cell never bleeds into its neighbours.
		slot := c
		if c.width > cw || c.height > ch {
			slot = c.crop(cw, ch)
		}
		drawOverAt(sheet, slot, (i%cols)*cw, (i/cols)*ch, 255)
	}
	return sheet
}

// FrameSheet flattens frames[from..to] and tiles them with SpriteSheet.
// The cell size is the project canvas size.
func (p *Project) FrameSheet(from, to, rows, cols int, bg Color) (*Raster, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidGrid, rows, cols)
	}
	var cells []*Raster
	if from, to, ok := clampRange(from, to, len(p.frames)); ok {
		for _, f := range p.frames[from : to+1] {
			cells = append(cells, f.Flatten())
		}
	}
	return spriteSheet(cells, rows, cols, p.width, p.height, bg), nil
}

// LayerSheet tiles the layers of frame f, one per cell, top layer first.
// Layer opacity and visibility are ignored; each cell shows raw pixels.
func (f *Frame) LayerSheet(rows, cols int, bg Color) (*Raster, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidGrid, rows, cols)
	}
	cells := make([]*Raster, len(f.layers))
	for i, l := range f.layers {
		cells[i] = l.raster
	}
	return spriteSheet(cells, rows, cols, f.width, f.height, bg), nil
}
