package pixed

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/gogpu/pixed/history"
	"github.com/gogpu/pixed/internal/snapshot"
)

// OpCode tags a memento with the operation that was performed. Restoring the
// memento undoes that operation. Structurally inverse operations are encoded
// by negation; self-paired operations restore into a memento with the same
// code.
type OpCode int

// Layer snapshot operations (LayerMemento).
const (
	OpLayerPixels      OpCode = 1
	OpLayerProperties  OpCode = 2
	OpAddLayer         OpCode = 3
	OpRemoveLayer             = -OpAddLayer
	OpDuplicateLayer   OpCode = 4
	OpUnduplicateLayer        = -OpDuplicateLayer
	OpMergeDown        OpCode = 5
	OpUnmergeDown             = -OpMergeDown
)

// Layer list transforms (LayerListMemento). These never carry pixels.
const (
	OpMoveLayerUp   OpCode = 10
	OpMoveLayerDown        = -OpMoveLayerUp
	OpMirror        OpCode = 11
	OpRotate        OpCode = 12
	OpRotateBack           = -OpRotate
	OpResize        OpCode = 13
)

// Frame list operations (FrameMemento).
const (
	OpAddFrame         OpCode = 20
	OpRemoveFrame             = -OpAddFrame
	OpDuplicateFrame   OpCode = 21
	OpUnduplicateFrame        = -OpDuplicateFrame
	OpMoveFrameUp      OpCode = 22
	OpMoveFrameDown           = -OpMoveFrameUp
	OpMergeFrame       OpCode = 23
	OpUnmergeFrame            = -OpMergeFrame
)

// SelfPaired reports whether restoring op yields a memento with the same code.
func (op OpCode) SelfPaired() bool {
	switch op {
	case OpLayerPixels, OpLayerProperties, OpMirror, OpResize:
		return true
	}
	return false
}

// Complement returns the code of the memento produced by restoring op.
func (op OpCode) Complement() OpCode {
	if op.SelfPaired() {
		return op
	}
	return -op
}

// String returns a readable name for the operation.
func (op OpCode) String() string {
	if s, ok := opNames[op]; ok {
		return s
	}
	return fmt.Sprintf("OpCode(%d)", int(op))
}

var opNames = map[OpCode]string{
	OpLayerPixels:      "LayerPixels",
	OpLayerProperties:  "LayerProperties",
	OpAddLayer:         "AddLayer",
	OpRemoveLayer:      "RemoveLayer",
	OpDuplicateLayer:   "DuplicateLayer",
	OpUnduplicateLayer: "UnduplicateLayer",
	OpMergeDown:        "MergeDown",
	OpUnmergeDown:      "UnmergeDown",
	OpMoveLayerUp:      "MoveLayerUp",
	OpMoveLayerDown:    "MoveLayerDown",
	OpMirror:           "Mirror",
	OpRotate:           "Rotate",
	OpRotateBack:       "RotateBack",
	OpResize:           "Resize",
	OpAddFrame:         "AddFrame",
	OpRemoveFrame:      "RemoveFrame",
	OpDuplicateFrame:   "DuplicateFrame",
	OpUnduplicateFrame: "UnduplicateFrame",
	OpMoveFrameUp:      "MoveFrameUp",
	OpMoveFrameDown:    "MoveFrameDown",
	OpMergeFrame:       "MergeFrame",
	OpUnmergeFrame:     "UnmergeFrame",
}

// LayerMemento is a full snapshot of one layer: pixels, name, opacity and
// visibility, taken at save time.
type LayerMemento struct {
	op      OpCode
	handler *Frame
	index   int
	id      uuid.UUID
	name    string
	opacity float64
	visible bool
	pixels  snapshot.Pixels
}

func newLayerMemento(op OpCode, handler *Frame, index int, l *Layer) *LayerMemento {
	r := l.raster
	return &LayerMemento{
		op:      op,
		handler: handler,
		index:   index,
		id:      l.id,
		name:    l.name,
		opacity: l.opacity,
		visible: l.visible,
		pixels:  snapshot.Pack(r.pix, r.width, r.height, handler.compressSnapshots()),
	}
}

// Op implements history.Memento.
func (m *LayerMemento) Op() int { return int(m.op) }

// Code returns the typed operation code.
func (m *LayerMemento) Code() OpCode { return m.op }

// Index returns the layer index the snapshot was taken at.
func (m *LayerMemento) Index() int { return m.index }

// Restore implements history.Memento by delegating to the owning frame.
func (m *LayerMemento) Restore() (history.Memento, error) {
	return m.handler.HandleRestore(m)
}

// layer rebuilds a detached layer from the snapshot.
func (m *LayerMemento) layer() (*Layer, error) {
	r, err := m.raster()
	if err != nil {
		return nil, err
	}
	return &Layer{id: m.id, name: m.name, raster: r, opacity: m.opacity, visible: m.visible}, nil
}

func (m *LayerMemento) raster() (*Raster, error) {
	pix, err := m.pixels.Unpack()
	if err != nil {
		return nil, err
	}
	return newRasterFromPix(m.pixels.Width(), m.pixels.Height(), pix), nil
}

// LayerListMemento records a structural transform of a frame's layer list.
// It stores the active index and the canvas size, never pixel data: every
// transform it supports can be inverted geometrically.
type LayerListMemento struct {
	op      OpCode
	handler *Frame
	index   int
	width   int
	height  int
	angle   int
}

// Op implements history.Memento.
func (m *LayerListMemento) Op() int { return int(m.op) }

// Code returns the typed operation code.
func (m *LayerListMemento) Code() OpCode { return m.op }

// Index returns the active layer index recorded with the transform.
func (m *LayerListMemento) Index() int { return m.index }

// Size returns the canvas size recorded with the transform.
func (m *LayerListMemento) Size() (width, height int) { return m.width, m.height }

// Angle returns the clockwise rotation applied by the operation.
func (m *LayerListMemento) Angle() int { return m.angle }

// Restore implements history.Memento by delegating to the owning frame.
func (m *LayerListMemento) Restore() (history.Memento, error) {
	return m.handler.HandleRestore(m)
}

// FrameMemento is a frame index plus a deep clone of the whole frame.
type FrameMemento struct {
	op      OpCode
	handler *Project
	index   int
	frame   *Frame
}

func newFrameMemento(op OpCode, handler *Project, index int, f *Frame) *FrameMemento {
	return &FrameMemento{op: op, handler: handler, index: index, frame: f.Clone()}
}

// Op implements history.Memento.
func (m *FrameMemento) Op() int { return int(m.op) }

// Code returns the typed operation code.
func (m *FrameMemento) Code() OpCode { return m.op }

// Index returns the frame index the snapshot was taken at.
func (m *FrameMemento) Index() int { return m.index }

// Restore implements history.Memento by delegating to the owning project.
func (m *FrameMemento) Restore() (history.Memento, error) {
	return m.handler.HandleRestore(m)
}
