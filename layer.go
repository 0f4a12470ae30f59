package pixed

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// Layer is a named raster with opacity and visibility, owned by exactly one
// Frame.
//
// Mutations through Layer methods notify listeners but are not recorded in
// the undo history; the history-recording variants live on Frame.
type Layer struct {
	id       uuid.UUID
	name     string
	raster   *Raster
	opacity  float64
	visible  bool
	owner    *Frame
	revision uint64
	obs      listeners
}

// NewLayer creates a visible, fully opaque layer with a transparent raster.
func NewLayer(name string, width, height int) *Layer {
	return &Layer{
		id:      uuid.New(),
		name:    cleanName(name, "Layer"),
		raster:  NewRaster(width, height),
		opacity: 1,
		visible: true,
	}
}

// ID returns the layer identity. Snapshots and clones keep it.
func (l *Layer) ID() uuid.UUID {
	return l.id
}

// Name returns the layer name.
func (l *Layer) Name() string {
	return l.name
}

// Raster returns the live pixel buffer. Callers that write to it directly
// must call Invalidate afterwards.
func (l *Layer) Raster() *Raster {
	return l.raster
}

// Width returns the raster width.
func (l *Layer) Width() int {
	return l.raster.width
}

// Height returns the raster height.
func (l *Layer) Height() int {
	return l.raster.height
}

// Opacity returns the layer opacity in [0, 1].
func (l *Layer) Opacity() float64 {
	return l.opacity
}

// Visible reports whether the layer takes part in compositing.
func (l *Layer) Visible() bool {
	return l.visible
}

// Revision returns a counter bumped on every change to the layer.
func (l *Layer) Revision() uint64 {
	return l.revision
}

// SetName renames the layer. Names are trimmed and NFC-normalized; an empty
// name keeps the current one.
func (l *Layer) SetName(name string) {
	l.name = cleanName(name, l.name)
	l.changed(EventProperties)
}

// SetOpacity sets the opacity, clamped to [0, 1].
func (l *Layer) SetOpacity(opacity float64) {
	l.opacity = clampUnit(opacity)
	l.changed(EventProperties)
}

// SetVisible shows or hides the layer.
func (l *Layer) SetVisible(visible bool) {
	l.visible = visible
	l.changed(EventProperties)
}

// SetPixel writes one pixel and notifies listeners.
func (l *Layer) SetPixel(x, y int, c Color) {
	l.raster.SetPixel(x, y, c)
	l.changed(EventPixels)
}

// Invalidate reports a direct modification of the raster.
func (l *Layer) Invalidate() {
	l.changed(EventPixels)
}

// AddListener registers fn to be called after every change to the layer.
func (l *Layer) AddListener(fn func(Event)) ListenerID {
	return l.obs.add(fn)
}

// RemoveListener unregisters a listener. It reports whether id was found.
func (l *Layer) RemoveListener(id ListenerID) bool {
	return l.obs.remove(id)
}

// Clone returns a deep copy with the same identity, detached from any frame.
func (l *Layer) Clone() *Layer {
	return &Layer{
		id:      l.id,
		name:    l.name,
		raster:  l.raster.Clone(),
		opacity: l.opacity,
		visible: l.visible,
	}
}

// Duplicate returns a deep copy with a new identity.
func (l *Layer) Duplicate() *Layer {
	c := l.Clone()
	c.id = uuid.New()
	c.name = l.name + " copy"
	return c
}

func (l *Layer) changed(kind EventKind) {
	l.revision++
	l.obs.emit(Event{Kind: kind, Index: -1})
	if l.owner != nil {
		l.owner.touch()
	}
}

// cleanName trims and NFC-normalizes name, falling back when it is empty.
func cleanName(name, fallback string) string {
	name = norm.NFC.String(strings.TrimSpace(name))
	if name == "" {
		return fallback
	}
	return name
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
