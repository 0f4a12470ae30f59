package pixed

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/gogpu/pixed/history"
)

// Frame is one animation frame: an ordered list of layers where index 0 is
// the topmost layer.
//
// Editing methods on Frame record their undo step in the frame's history
// scope when the frame belongs to a Project. A detached frame edits without
// history.
//
// Frame also acts as the restore handler for LayerMemento and
// LayerListMemento values saved from it.
type Frame struct {
	id       uuid.UUID
	name     string
	width    int
	height   int
	layers   []*Layer
	active   int
	opacity  float64
	visible  bool
	layerSeq int
	project  *Project
	revision uint64
	obs      listeners
}

// NewFrame creates a detached frame with a single transparent layer.
func NewFrame(name string, width, height int) *Frame {
	f := newEmptyFrame(name, width, height)
	f.attachLayer(0, f.newLayer(""))
	return f
}

func newEmptyFrame(name string, width, height int) *Frame {
	return &Frame{
		id:      uuid.New(),
		name:    cleanName(name, "Frame"),
		width:   max(width, 0),
		height:  max(height, 0),
		opacity: 1,
		visible: true,
	}
}

// ID returns the frame identity. It is also the key of the frame's history
// scope.
func (f *Frame) ID() uuid.UUID { return f.id }

// Name returns the frame name.
func (f *Frame) Name() string { return f.name }

// Width returns the canvas width of the frame.
func (f *Frame) Width() int { return f.width }

// Height returns the canvas height of the frame.
func (f *Frame) Height() int { return f.height }

// Opacity returns the frame opacity used when frames are composited.
func (f *Frame) Opacity() float64 { return f.opacity }

// Visible reports whether the frame takes part in frame compositing.
func (f *Frame) Visible() bool { return f.visible }

// Revision returns a counter bumped on every change to the frame or its layers.
func (f *Frame) Revision() uint64 { return f.revision }

// Project returns the owning project, or nil for a detached frame.
func (f *Frame) Project() *Project { return f.project }

// LayerCount returns the number of layers.
func (f *Frame) LayerCount() int { return len(f.layers) }

// Layer returns the layer at index i, or nil when out of range.
func (f *Frame) Layer(i int) *Layer {
	if i < 0 || i >= len(f.layers) {
		return nil
	}
	return f.layers[i]
}

// Layers returns the layers from top to bottom. The slice is a copy; the
// layers are live.
func (f *Frame) Layers() []*Layer {
	out := make([]*Layer, len(f.layers))
	copy(out, f.layers)
	return out
}

// ActiveIndex returns the index of the active layer.
func (f *Frame) ActiveIndex() int { return f.active }

// ActiveLayer returns the active layer, or nil for a frame without layers.
func (f *Frame) ActiveLayer() *Layer { return f.Layer(f.active) }

// SetActiveLayer selects the layer tools draw on.
func (f *Frame) SetActiveLayer(i int) error {
	if err := f.checkIndex(i); err != nil {
		return err
	}
	if f.active != i {
		f.active = i
		f.emit(EventActive, i)
	}
	return nil
}

// SetName renames the frame.
func (f *Frame) SetName(name string) {
	f.name = cleanName(name, f.name)
	f.changed(EventProperties, -1)
}

// SetOpacity sets the frame opacity, clamped to [0, 1].
func (f *Frame) SetOpacity(opacity float64) {
	f.opacity = clampUnit(opacity)
	f.changed(EventProperties, -1)
}

// SetVisible shows or hides the frame in frame compositing.
func (f *Frame) SetVisible(visible bool) {
	f.visible = visible
	f.changed(EventProperties, -1)
}

// AddListener registers fn to be called after every change to the frame.
func (f *Frame) AddListener(fn func(Event)) ListenerID { return f.obs.add(fn) }

// RemoveListener unregisters a listener. It reports whether id was found.
func (f *Frame) RemoveListener(id ListenerID) bool { return f.obs.remove(id) }

// Flatten composites every layer of the frame into a new raster.
func (f *Frame) Flatten() *Raster {
	return ComposeLayers(f.width, f.height, f.layers, 0, len(f.layers)-1)
}

// Clone returns a deep copy with the same identities, detached from any
// project.
func (f *Frame) Clone() *Frame {
	c := &Frame{
		id:       f.id,
		name:     f.name,
		width:    f.width,
		height:   f.height,
		layers:   make([]*Layer, len(f.layers)),
		active:   f.active,
		opacity:  f.opacity,
		visible:  f.visible,
		layerSeq: f.layerSeq,
		revision: f.revision,
	}
	for i, l := range f.layers {
		lc := l.Clone()
		lc.owner = c
		c.layers[i] = lc
	}
	return c
}

// Duplicate returns a deep copy where the frame and every layer get new
// identities.
func (f *Frame) Duplicate() *Frame {
	c := f.Clone()
	c.id = uuid.New()
	c.name = f.name + " copy"
	for _, l := range c.layers {
		l.id = uuid.New()
	}
	return c
}

// AddLayer inserts a new transparent layer above the active layer and makes
// it active.
func (f *Frame) AddLayer(name string) (*Layer, error) {
	l := f.newLayer(name)
	index := min(max(f.active, 0), len(f.layers))
	if err := f.save(newLayerMemento(OpAddLayer, f, index, l)); err != nil {
		return nil, err
	}
	f.attachLayer(index, l)
	f.active = index
	f.changed(EventLayers, index)
	return l, nil
}

// DuplicateLayer inserts a copy of layer i directly above it and makes the
// copy active.
func (f *Frame) DuplicateLayer(i int) (*Layer, error) {
	if err := f.checkIndex(i); err != nil {
		return nil, err
	}
	d := f.layers[i].Duplicate()
	if err := f.save(newLayerMemento(OpDuplicateLayer, f, i, d)); err != nil {
		return nil, err
	}
	f.attachLayer(i, d)
	f.active = i
	f.changed(EventLayers, i)
	return d, nil
}

// RemoveLayer deletes layer i. The last remaining layer cannot be removed.
func (f *Frame) RemoveLayer(i int) error {
	if err := f.checkIndex(i); err != nil {
		return err
	}
	if len(f.layers) == 1 {
		return ErrLastLayer
	}
	if err := f.save(newLayerMemento(OpRemoveLayer, f, i, f.layers[i])); err != nil {
		return err
	}
	f.detachLayer(i)
	f.changed(EventLayers, i)
	return nil
}

// MoveLayerUp swaps layer i with the layer above it (towards index 0).
func (f *Frame) MoveLayerUp(i int) error {
	if err := f.checkIndex(i); err != nil {
		return err
	}
	if i == 0 {
		return fmt.Errorf("%w: layer %d is already on top", ErrIndexOutOfRange, i)
	}
	if err := f.save(f.listMemento(OpMoveLayerUp, i-1, 0)); err != nil {
		return err
	}
	f.moveLayer(i, i-1)
	f.changed(EventLayers, i-1)
	return nil
}

// MoveLayerDown swaps layer i with the layer below it.
func (f *Frame) MoveLayerDown(i int) error {
	if err := f.checkIndex(i); err != nil {
		return err
	}
	if i == len(f.layers)-1 {
		return fmt.Errorf("%w: layer %d is already at the bottom", ErrIndexOutOfRange, i)
	}
	if err := f.save(f.listMemento(OpMoveLayerDown, i+1, 0)); err != nil {
		return err
	}
	f.moveLayer(i, i+1)
	f.changed(EventLayers, i+1)
	return nil
}

// MergeDown merges layer i into the layer above it (index i-1): the target
// receives the composite of both layers as they currently appear and layer
// i is removed. One undo restores the target's pixels and re-inserts the
// consumed layer.
func (f *Frame) MergeDown(i int) error {
	if err := f.checkIndex(i); err != nil {
		return err
	}
	if i == 0 {
		return fmt.Errorf("%w: no layer above %d to merge into", ErrIndexOutOfRange, i)
	}
	target := f.layers[i-1]
	m := history.Chain(
		newLayerMemento(OpMergeDown, f, i-1, target),
		newLayerMemento(OpRemoveLayer, f, i, f.layers[i]),
	)
	if err := f.save(m); err != nil {
		return err
	}

	merged := ComposeLayers(f.width, f.height, f.layers, i-1, i)
	target.raster = merged
	target.opacity = 1
	target.visible = true
	target.revision++
	f.detachLayer(i)
	f.active = i - 1
	f.changed(EventLayers, i-1)
	return nil
}

// SetLayerOpacity changes the opacity of layer i and records the change.
func (f *Frame) SetLayerOpacity(i int, opacity float64) error {
	return f.editProperties(i, func(l *Layer) { l.opacity = clampUnit(opacity) })
}

// SetLayerVisible shows or hides layer i and records the change.
func (f *Frame) SetLayerVisible(i int, visible bool) error {
	return f.editProperties(i, func(l *Layer) { l.visible = visible })
}

// RenameLayer renames layer i and records the change.
func (f *Frame) RenameLayer(i int, name string) error {
	return f.editProperties(i, func(l *Layer) { l.name = cleanName(name, l.name) })
}

func (f *Frame) editProperties(i int, apply func(*Layer)) error {
	if err := f.SaveState(OpLayerProperties, i); err != nil {
		return err
	}
	l := f.layers[i]
	apply(l)
	l.changed(EventProperties)
	f.emit(EventProperties, i)
	return nil
}

// Mirror flips every layer of the frame horizontally.
func (f *Frame) Mirror() error {
	if err := f.save(f.listMemento(OpMirror, f.active, 0)); err != nil {
		return err
	}
	f.mirror()
	return nil
}

// Rotate rotates every layer of the frame clockwise by deg degrees. deg must
// be a multiple of 90; a full turn is a no-op and records nothing.
func (f *Frame) Rotate(deg int) error {
	deg, err := normalizeAngle(deg)
	if err != nil {
		return err
	}
	if deg == 0 {
		return nil
	}
	if err := f.save(f.listMemento(OpRotate, f.active, deg)); err != nil {
		return err
	}
	return f.rotate(deg)
}

// Resize scales every layer of the frame to width x height with
// nearest-neighbour sampling.
func (f *Frame) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if width == f.width && height == f.height {
		return nil
	}
	if err := f.save(f.listMemento(OpResize, f.active, 0)); err != nil {
		return err
	}
	return f.resize(width, height)
}

// SaveState records the current state for op at layer index. It is the
// entry point paint tools use before mutating pixels:
//
//	if err := frame.SaveState(pixed.OpLayerPixels, frame.ActiveIndex()); err != nil {
//	    return err
//	}
//	// ... modify frame.ActiveLayer().Raster() ...
//
// Layer snapshot codes capture layer index in full. OpMirror, OpResize and
// the move codes capture the list context. OpRotate needs an angle and is
// only recorded by Rotate.
func (f *Frame) SaveState(op OpCode, index int) error {
	switch op {
	case OpLayerPixels, OpLayerProperties, OpAddLayer, OpRemoveLayer,
		OpDuplicateLayer, OpUnduplicateLayer, OpMergeDown, OpUnmergeDown:
		if err := f.checkIndex(index); err != nil {
			return err
		}
		return f.save(newLayerMemento(op, f, index, f.layers[index]))
	case OpMirror, OpResize, OpMoveLayerUp, OpMoveLayerDown:
		return f.save(f.listMemento(op, index, 0))
	default:
		return fmt.Errorf("%w: cannot save %v on a frame", ErrUnsupportedOp, op)
	}
}

// HandleRestore applies a LayerMemento or LayerListMemento to the frame and
// returns the complementary memento.
func (f *Frame) HandleRestore(m history.Memento) (history.Memento, error) {
	switch m := m.(type) {
	case *LayerMemento:
		return f.restoreLayer(m)
	case *LayerListMemento:
		return f.restoreLayerList(m)
	default:
		return nil, fmt.Errorf("%w: frame cannot restore %T", ErrUnsupportedOp, m)
	}
}

func (f *Frame) restoreLayer(m *LayerMemento) (history.Memento, error) {
	switch m.op {
	case OpLayerPixels, OpLayerProperties, OpMergeDown, OpUnmergeDown:
		if err := f.checkIndex(m.index); err != nil {
			return nil, err
		}
		current := f.layers[m.index]
		complement := newLayerMemento(m.op.Complement(), f, m.index, current)
		r, err := m.raster()
		if err != nil {
			return nil, err
		}
		current.id = m.id
		current.name = m.name
		current.opacity = m.opacity
		current.visible = m.visible
		current.raster = r
		current.changed(EventPixels)
		f.emit(EventProperties, m.index)
		return complement, nil

	case OpAddLayer, OpDuplicateLayer:
		if err := f.checkIndex(m.index); err != nil {
			return nil, err
		}
		complement := newLayerMemento(m.op.Complement(), f, m.index, f.layers[m.index])
		f.detachLayer(m.index)
		f.changed(EventLayers, m.index)
		return complement, nil

	case OpRemoveLayer, OpUnduplicateLayer:
		if m.index < 0 || m.index > len(f.layers) {
			return nil, fmt.Errorf("%w: insert at %d of %d", ErrIndexOutOfRange, m.index, len(f.layers))
		}
		l, err := m.layer()
		if err != nil {
			return nil, err
		}
		f.attachLayer(m.index, l)
		f.active = m.index
		f.changed(EventLayers, m.index)
		return newLayerMemento(m.op.Complement(), f, m.index, l), nil

	default:
		return nil, fmt.Errorf("%w: layer memento %v", ErrUnsupportedOp, m.op)
	}
}

func (f *Frame) restoreLayerList(m *LayerListMemento) (history.Memento, error) {
	switch m.op {
	case OpMoveLayerUp:
		// The layer now sits at m.index; send it back down.
		if err := f.checkIndex(m.index); err != nil {
			return nil, err
		}
		if err := f.checkIndex(m.index + 1); err != nil {
			return nil, err
		}
		f.moveLayer(m.index, m.index+1)
		f.changed(EventLayers, f.active)
		return f.listMemento(OpMoveLayerDown, f.active, 0), nil

	case OpMoveLayerDown:
		if err := f.checkIndex(m.index); err != nil {
			return nil, err
		}
		if err := f.checkIndex(m.index - 1); err != nil {
			return nil, err
		}
		f.moveLayer(m.index, m.index-1)
		f.changed(EventLayers, f.active)
		return f.listMemento(OpMoveLayerUp, f.active, 0), nil

	case OpMirror:
		f.selectRecorded(m.index)
		f.mirror()
		return f.listMemento(OpMirror, f.active, 0), nil

	case OpRotate, OpRotateBack:
		back := (360 - m.angle) % 360
		f.selectRecorded(m.index)
		// Capture the pre-restore size before rotating.
		complement := f.listMemento(m.op.Complement(), f.active, back)
		if err := f.rotate(back); err != nil {
			return nil, err
		}
		complement.index = f.active
		return complement, nil

	case OpResize:
		if m.width <= 0 || m.height <= 0 {
			return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, m.width, m.height)
		}
		f.selectRecorded(m.index)
		complement := f.listMemento(OpResize, f.active, 0)
		if err := f.resize(m.width, m.height); err != nil {
			return nil, err
		}
		complement.index = f.active
		return complement, nil

	default:
		return nil, fmt.Errorf("%w: layer list memento %v", ErrUnsupportedOp, m.op)
	}
}

// replaceContent takes over the content of src, which must not be used
// afterwards. The frame keeps its identity and project.
func (f *Frame) replaceContent(src *Frame) {
	f.name = src.name
	f.width, f.height = src.width, src.height
	f.layers = src.layers
	for _, l := range f.layers {
		l.owner = f
	}
	f.active = src.active
	f.opacity = src.opacity
	f.visible = src.visible
	f.layerSeq = src.layerSeq
	f.changed(EventLayers, -1)
}

// listMemento captures the current canvas size with the given index.
func (f *Frame) listMemento(op OpCode, index, angle int) *LayerListMemento {
	return &LayerListMemento{op: op, handler: f, index: index, width: f.width, height: f.height, angle: angle}
}

// selectRecorded makes the recorded index active when it still exists.
func (f *Frame) selectRecorded(i int) {
	if i >= 0 && i < len(f.layers) {
		f.active = i
	}
}

func (f *Frame) mirror() {
	for _, l := range f.layers {
		l.raster.FlipHorizontal()
		l.revision++
	}
	f.changed(EventGeometry, -1)
}

func (f *Frame) rotate(deg int) error {
	rotated := make([]*Raster, len(f.layers))
	for i, l := range f.layers {
		r, err := l.raster.Rotated(deg)
		if err != nil {
			return err
		}
		rotated[i] = r
	}
	for i, l := range f.layers {
		l.raster = rotated[i]
		l.revision++
	}
	if deg == 90 || deg == 270 {
		f.width, f.height = f.height, f.width
	}
	f.changed(EventGeometry, -1)
	return nil
}

func (f *Frame) resize(width, height int) error {
	resized := make([]*Raster, len(f.layers))
	for i, l := range f.layers {
		r, err := l.raster.Resized(width, height)
		if err != nil {
			return err
		}
		resized[i] = r
	}
	for i, l := range f.layers {
		l.raster = resized[i]
		l.revision++
	}
	f.width, f.height = width, height
	f.changed(EventGeometry, -1)
	return nil
}

// newLayer creates a layer sized to the frame with a sequential default name.
func (f *Frame) newLayer(name string) *Layer {
	f.layerSeq++
	return NewLayer(cleanName(name, "Layer "+strconv.Itoa(f.layerSeq)), f.width, f.height)
}

// attachLayer inserts l at index i and takes ownership of it.
func (f *Frame) attachLayer(i int, l *Layer) {
	l.owner = f
	f.layers = append(f.layers, nil)
	copy(f.layers[i+1:], f.layers[i:])
	f.layers[i] = l
}

// detachLayer removes the layer at index i and keeps the active index valid.
func (f *Frame) detachLayer(i int) *Layer {
	l := f.layers[i]
	copy(f.layers[i:], f.layers[i+1:])
	f.layers[len(f.layers)-1] = nil
	f.layers = f.layers[:len(f.layers)-1]
	l.owner = nil
	if f.active > i {
		f.active--
	}
	if f.active >= len(f.layers) {
		f.active = max(len(f.layers)-1, 0)
	}
	return l
}

// moveLayer moves the layer at from to to; the moved layer becomes active.
func (f *Frame) moveLayer(from, to int) {
	l := f.layers[from]
	if from < to {
		copy(f.layers[from:to], f.layers[from+1:to+1])
	} else {
		copy(f.layers[to+1:from+1], f.layers[to:from])
	}
	f.layers[to] = l
	f.active = to
}

func (f *Frame) checkIndex(i int) error {
	if i < 0 || i >= len(f.layers) {
		return fmt.Errorf("%w: layer %d of %d", ErrIndexOutOfRange, i, len(f.layers))
	}
	return nil
}

// save routes a memento to the frame's history scope.
func (f *Frame) save(m history.Memento) error {
	if f.project == nil {
		return nil
	}
	return f.project.save(f.id, m)
}

func (f *Frame) compressSnapshots() bool {
	return f.project != nil && f.project.opts.compress
}

// touch records a change made through one of the frame's layers.
func (f *Frame) touch() {
	f.revision++
}

func (f *Frame) changed(kind EventKind, index int) {
	f.revision++
	f.emit(kind, index)
}

func (f *Frame) emit(kind EventKind, index int) {
	f.obs.emit(Event{Kind: kind, Index: index})
}
