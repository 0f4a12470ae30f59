package pixed

import (
	"fmt"
	"slices"
)

// Tool is a paint tool driven by pointer gestures in canvas coordinates.
// Tools edit the active layer of the active frame and record history
// through Project.SaveState before they touch pixels.
type Tool interface {
	// Name identifies the tool inside a Toolbox.
	Name() string

	// Press starts a gesture at (x, y).
	Press(p *Project, x, y int) error

	// Drag continues the gesture to (x, y).
	Drag(p *Project, x, y int) error

	// Release ends the gesture at (x, y).
	Release(p *Project, x, y int) error
}

// Pencil paints single pixels of a solid colour and connects drag positions
// with straight lines. A whole stroke is one undo step.
type Pencil struct {
	Color Color

	name string
	last point
	down bool
}

// NewPencil creates a pencil drawing with c.
func NewPencil(c Color) *Pencil {
	return &Pencil{Color: c, name: "pencil"}
}

// NewEraser creates a pencil that writes transparent pixels.
func NewEraser() *Pencil {
	return &Pencil{Color: Transparent, name: "eraser"}
}

// Name implements Tool.
func (t *Pencil) Name() string { return t.name }

// Press implements Tool.
func (t *Pencil) Press(p *Project, x, y int) error {
	p.BeginGesture()
	t.down = true
	t.last = point{x, y}
	return t.plot(p, x, y, x, y)
}

// Drag implements Tool.
func (t *Pencil) Drag(p *Project, x, y int) error {
	if !t.down {
		return nil
	}
	from := t.last
	t.last = point{x, y}
	return t.plot(p, from.x, from.y, x, y)
}

// Release implements Tool.
func (t *Pencil) Release(p *Project, x, y int) error {
	if !t.down {
		return nil
	}
	err := t.Drag(p, x, y)
	t.down = false
	p.EndGesture()
	return err
}

// plot draws the segment (x0, y0)-(x1, y1) on the active layer.
func (t *Pencil) plot(p *Project, x0, y0, x1, y1 int) error {
	f := p.ActiveFrame()
	l := f.ActiveLayer()
	if l == nil {
		return nil
	}
	if err := p.SaveState(OpLayerPixels, f.ActiveIndex()); err != nil {
		return err
	}
	line(x0, y0, x1, y1, func(x, y int) {
		l.raster.SetPixel(x, y, t.Color)
	})
	l.Invalidate()
	return nil
}

// line calls plot for every pixel of the Bresenham line from (x0, y0) to
// (x1, y1), both ends included.
func line(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Bucket flood-fills the 4-connected region under the pointer.
type Bucket struct {
	Color Color
}

// NewBucket creates a bucket filling with c.
func NewBucket(c Color) *Bucket {
	return &Bucket{Color: c}
}

// Name implements Tool.
func (t *Bucket) Name() string { return "bucket" }

// Press implements Tool. Clicking outside the canvas or on a pixel that
// already has the fill colour records nothing.
func (t *Bucket) Press(p *Project, x, y int) error {
	f := p.ActiveFrame()
	l := f.ActiveLayer()
	if l == nil || !l.raster.InBounds(x, y) || l.raster.Pixel(x, y) == t.Color {
		return nil
	}
	if err := p.SaveState(OpLayerPixels, f.ActiveIndex()); err != nil {
		return err
	}
	if FloodFill(l.raster, x, y, t.Color) {
		l.Invalidate()
	}
	return nil
}

// Drag implements Tool.
func (t *Bucket) Drag(*Project, int, int) error { return nil }

// Release implements Tool.
func (t *Bucket) Release(*Project, int, int) error { return nil }

// ColorReplacer recolours every pixel of the active layer that matches the
// pixel under the pointer.
type ColorReplacer struct {
	Color Color
}

// NewColorReplacer creates a replacer writing c.
func NewColorReplacer(c Color) *ColorReplacer {
	return &ColorReplacer{Color: c}
}

// Name implements Tool.
func (t *ColorReplacer) Name() string { return "replace" }

// Press implements Tool.
func (t *ColorReplacer) Press(p *Project, x, y int) error {
	f := p.ActiveFrame()
	l := f.ActiveLayer()
	if l == nil || !l.raster.InBounds(x, y) {
		return nil
	}
	target := l.raster.Pixel(x, y)
	if target == t.Color {
		return nil
	}
	if err := p.SaveState(OpLayerPixels, f.ActiveIndex()); err != nil {
		return err
	}
	ReplaceColor(l.raster, target, t.Color)
	l.Invalidate()
	return nil
}

// Drag implements Tool.
func (t *ColorReplacer) Drag(*Project, int, int) error { return nil }

// Release implements Tool.
func (t *ColorReplacer) Release(*Project, int, int) error { return nil }

// Toolbox is a per-session registry of named tools with one selected tool.
// Pointer events are forwarded to the selected tool.
type Toolbox struct {
	project *Project
	tools   map[string]Tool
	current Tool
}

// NewToolbox creates a toolbox bound to p holding the given tools. The
// first tool is selected.
func NewToolbox(p *Project, tools ...Tool) *Toolbox {
	tb := &Toolbox{project: p, tools: make(map[string]Tool)}
	for _, t := range tools {
		tb.Register(t)
	}
	return tb
}

// NewDefaultToolbox creates a toolbox with a black pencil, an eraser, a
// black bucket and a black colour replacer. The pencil is selected.
func NewDefaultToolbox(p *Project) *Toolbox {
	return NewToolbox(p, NewPencil(Black), NewEraser(), NewBucket(Black), NewColorReplacer(Black))
}

// Register adds t, replacing any tool with the same name. The first
// registered tool becomes the selected one.
func (tb *Toolbox) Register(t Tool) {
	tb.tools[t.Name()] = t
	if tb.current == nil || tb.current.Name() == t.Name() {
		tb.current = t
	}
}

// Select makes the named tool current.
func (tb *Toolbox) Select(name string) error {
	t, ok := tb.tools[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	tb.current = t
	return nil
}

// Current returns the selected tool, or nil for an empty toolbox.
func (tb *Toolbox) Current() Tool { return tb.current }

// Tool returns the named tool.
func (tb *Toolbox) Tool(name string) (Tool, bool) {
	t, ok := tb.tools[name]
	return t, ok
}

// Names returns the registered tool names in sorted order.
func (tb *Toolbox) Names() []string {
	names := make([]string, 0, len(tb.tools))
	for n := range tb.tools {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Press forwards to the selected tool.
func (tb *Toolbox) Press(x, y int) error {
	if tb.current == nil {
		return nil
	}
	return tb.current.Press(tb.project, x, y)
}

// Drag forwards to the selected tool.
func (tb *Toolbox) Drag(x, y int) error {
	if tb.current == nil {
		return nil
	}
	return tb.current.Drag(tb.project, x, y)
}

// Release forwards to the selected tool.
func (tb *Toolbox) Release(x, y int) error {
	if tb.current == nil {
		return nil
	}
	return tb.current.Release(tb.project, x, y)
}
