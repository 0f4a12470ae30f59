package pixed

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"github.com/gogpu/pixed/history"
)

// DefaultCanvasSize is the width and height used when a non-positive canvas
// size is requested.
const DefaultCanvasSize = 32

// Project is an editing session: an ordered list of frames, the active frame,
// and the undo history of every frame.
//
// History is kept per scope. Each frame owns a scope keyed by its ID that
// holds layer and layer-list mementos; the project owns one more scope keyed
// by the project ID that holds frame-list mementos. Undo and Redo act on the
// active frame, UndoFrames and RedoFrames on the frame list.
//
// Thread safety: Project is not safe for concurrent use. A Player that reads
// a project from another goroutine must share a sync.Locker with the editor
// (see WithLocker).
type Project struct {
	id       uuid.UUID
	name     string
	width    int
	height   int
	frames   []*Frame
	active   int
	frameSeq int
	history  *history.Manager[uuid.UUID]
	gesture  gesture
	opts     projectOptions
	logger   *slog.Logger
	obs      listeners
}

// gesture suppresses every save after the first one while a drag is in
// progress, so a whole stroke undoes in one step.
type gesture struct {
	active bool
	saved  bool
}

// NewProject creates a project with one frame holding one transparent layer.
// A non-positive width or height falls back to DefaultCanvasSize.
func NewProject(width, height int, opts ...ProjectOption) *Project {
	o := defaultProjectOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if width <= 0 {
		width = DefaultCanvasSize
	}
	if height <= 0 {
		height = DefaultCanvasSize
	}

	p := newEmptyProject(o.name, width, height, o)
	f := p.newFrame("")
	f.attachLayer(0, f.newLayer(""))
	p.attachFrame(0, f)
	p.active = 0
	p.syncActiveScope()
	return p
}

func newEmptyProject(name string, width, height int, o projectOptions) *Project {
	p := &Project{
		id:     uuid.New(),
		name:   cleanName(name, "Untitled"),
		width:  width,
		height: height,
		opts:   o,
		logger: o.logger,
	}
	if p.logger == nil {
		p.logger = Logger()
	}
	factory := o.factory
	if factory == nil {
		factory = p.defaultCaretaker
	}
	p.history = history.NewManager[uuid.UUID](factory)
	p.history.Init(p.id)
	return p
}

func (p *Project) defaultCaretaker() *history.Caretaker {
	return history.NewCaretaker(
		history.WithCapacity(p.opts.capacity),
		history.WithErrorHandler(p.historyError),
		history.WithLogger(p.logger),
	)
}

// ID returns the project identity. It is also the key of the frame-list
// history scope.
func (p *Project) ID() uuid.UUID { return p.id }

// Name returns the project name.
func (p *Project) Name() string { return p.name }

// SetName renames the project.
func (p *Project) SetName(name string) {
	p.name = cleanName(name, p.name)
	p.emit(EventProperties, -1)
}

// Width returns the canvas width new frames are created with.
func (p *Project) Width() int { return p.width }

// Height returns the canvas height new frames are created with.
func (p *Project) Height() int { return p.height }

// FrameCount returns the number of frames.
func (p *Project) FrameCount() int { return len(p.frames) }

// Frame returns the frame at index i, or nil when out of range.
func (p *Project) Frame(i int) *Frame {
	if i < 0 || i >= len(p.frames) {
		return nil
	}
	return p.frames[i]
}

// Frames returns the frames in order. The slice is a copy; the frames are live.
func (p *Project) Frames() []*Frame {
	out := make([]*Frame, len(p.frames))
	copy(out, p.frames)
	return out
}

// ActiveIndex returns the index of the active frame.
func (p *Project) ActiveIndex() int { return p.active }

// ActiveFrame returns the active frame.
func (p *Project) ActiveFrame() *Frame { return p.Frame(p.active) }

// ActiveLayer returns the active layer of the active frame.
func (p *Project) ActiveLayer() *Layer {
	f := p.ActiveFrame()
	if f == nil {
		return nil
	}
	return f.ActiveLayer()
}

// SetActiveFrame selects the frame that is edited and whose history Undo and
// Redo act on.
func (p *Project) SetActiveFrame(i int) error {
	if err := p.checkIndex(i); err != nil {
		return err
	}
	if p.active != i {
		p.active = i
		p.syncActiveScope()
		p.emit(EventActive, i)
	}
	return nil
}

// History returns the scope manager. It is exposed for inspection; editing
// methods keep it consistent.
func (p *Project) History() *history.Manager[uuid.UUID] { return p.history }

// AddListener registers fn to be called after frame-list changes, active
// frame changes and history failures.
func (p *Project) AddListener(fn func(Event)) ListenerID { return p.obs.add(fn) }

// RemoveListener unregisters a listener. It reports whether id was found.
func (p *Project) RemoveListener(id ListenerID) bool { return p.obs.remove(id) }

// AddFrame inserts a new frame with one transparent layer after the active
// frame and makes it active.
func (p *Project) AddFrame(name string) (*Frame, error) {
	f := p.newFrame(name)
	f.attachLayer(0, f.newLayer(""))
	index := min(p.active+1, len(p.frames))
	if err := p.save(p.id, newFrameMemento(OpAddFrame, p, index, f)); err != nil {
		return nil, err
	}
	p.attachFrame(index, f)
	p.active = index
	p.framesChanged(index)
	return f, nil
}

// DuplicateFrame inserts a deep copy of frame i directly after it and makes
// the copy active. The copy and its layers get new identities.
func (p *Project) DuplicateFrame(i int) (*Frame, error) {
	if err := p.checkIndex(i); err != nil {
		return nil, err
	}
	d := p.frames[i].Duplicate()
	if err := p.save(p.id, newFrameMemento(OpDuplicateFrame, p, i+1, d)); err != nil {
		return nil, err
	}
	p.attachFrame(i+1, d)
	p.active = i + 1
	p.framesChanged(i + 1)
	return d, nil
}

// RemoveFrame deletes frame i together with its history scope. The last
// remaining frame cannot be removed.
func (p *Project) RemoveFrame(i int) error {
	if err := p.checkIndex(i); err != nil {
		return err
	}
	if len(p.frames) == 1 {
		return ErrLastFrame
	}
	if err := p.save(p.id, newFrameMemento(OpRemoveFrame, p, i, p.frames[i])); err != nil {
		return err
	}
	p.detachFrame(i)
	p.framesChanged(i)
	return nil
}

// MoveFrameUp swaps frame i with the frame before it.
func (p *Project) MoveFrameUp(i int) error {
	if err := p.checkIndex(i); err != nil {
		return err
	}
	if i == 0 {
		return fmt.Errorf("%w: frame %d is already first", ErrIndexOutOfRange, i)
	}
	if err := p.save(p.id, newFrameMemento(OpMoveFrameUp, p, i-1, p.frames[i])); err != nil {
		return err
	}
	p.moveFrame(i, i-1)
	p.framesChanged(i - 1)
	return nil
}

// MoveFrameDown swaps frame i with the frame after it.
func (p *Project) MoveFrameDown(i int) error {
	if err := p.checkIndex(i); err != nil {
		return err
	}
	if i == len(p.frames)-1 {
		return fmt.Errorf("%w: frame %d is already last", ErrIndexOutOfRange, i)
	}
	if err := p.save(p.id, newFrameMemento(OpMoveFrameDown, p, i+1, p.frames[i])); err != nil {
		return err
	}
	p.moveFrame(i, i+1)
	p.framesChanged(i + 1)
	return nil
}

// MergeFrames merges frame i into the frame before it: the layers of frame i
// are appended below the layers of frame i-1 (scaled to its size when the
// sizes differ) and frame i is removed. One UndoFrames restores both frames.
//
// Merging replaces the target's content, so the target's own layer history
// is cleared.
func (p *Project) MergeFrames(i int) error {
	if err := p.checkIndex(i); err != nil {
		return err
	}
	if i == 0 {
		return fmt.Errorf("%w: no frame before %d to merge into", ErrIndexOutOfRange, i)
	}
	target, consumed := p.frames[i-1], p.frames[i]

	moved := make([]*Layer, 0, len(consumed.layers))
	for _, l := range consumed.layers {
		c := l.Clone()
		if c.Width() != target.width || c.Height() != target.height {
			r, err := c.raster.Resized(target.width, target.height)
			if err != nil {
				return err
			}
			c.raster = r
		}
		moved = append(moved, c)
	}

	m := history.Chain(
		newFrameMemento(OpMergeFrame, p, i-1, target),
		newFrameMemento(OpRemoveFrame, p, i, consumed),
	)
	if err := p.save(p.id, m); err != nil {
		return err
	}

	for _, l := range moved {
		target.attachLayer(len(target.layers), l)
	}
	target.changed(EventLayers, -1)
	p.clearScope(target.id)
	p.detachFrame(i)
	p.active = i - 1
	p.framesChanged(i - 1)
	return nil
}

// SaveState records the current state for op before the caller mutates it.
// Frame-list codes snapshot frame index in the project scope; every other
// code is forwarded to the active frame with index as the layer index.
//
// While a gesture is in progress only the first call is recorded.
func (p *Project) SaveState(op OpCode, index int) error {
	switch op {
	case OpAddFrame, OpRemoveFrame, OpDuplicateFrame, OpUnduplicateFrame,
		OpMoveFrameUp, OpMoveFrameDown, OpMergeFrame, OpUnmergeFrame:
		if err := p.checkIndex(index); err != nil {
			return err
		}
		return p.save(p.id, newFrameMemento(op, p, index, p.frames[index]))
	}
	f := p.ActiveFrame()
	if f == nil {
		return fmt.Errorf("%w: no active frame", ErrIndexOutOfRange)
	}
	return f.SaveState(op, index)
}

// Undo reverts the most recent change to the active frame. It is a no-op
// when there is nothing to undo.
func (p *Project) Undo() error {
	p.logger.Debug("pixed: undo", "frame", p.active)
	return p.history.Undo()
}

// Redo reapplies the most recently undone change to the active frame.
func (p *Project) Redo() error {
	p.logger.Debug("pixed: redo", "frame", p.active)
	return p.history.Redo()
}

// UndoFrames reverts the most recent frame-list change.
func (p *Project) UndoFrames() error {
	p.logger.Debug("pixed: undo frames")
	return p.history.UndoIn(p.id)
}

// RedoFrames reapplies the most recently undone frame-list change.
func (p *Project) RedoFrames() error {
	p.logger.Debug("pixed: redo frames")
	return p.history.RedoIn(p.id)
}

// CanUndo reports whether the active frame has history to undo.
func (p *Project) CanUndo() bool {
	c, err := p.history.ActiveCaretaker()
	return err == nil && c.CanUndo()
}

// CanRedo reports whether the active frame has history to redo.
func (p *Project) CanRedo() bool {
	c, err := p.history.ActiveCaretaker()
	return err == nil && c.CanRedo()
}

// ClearHistory drops the history of every scope.
func (p *Project) ClearHistory() {
	p.history.ClearAll()
}

// SetUndoCapacity sets the undo depth of every scope, including scopes
// created later. Existing history is cleared. Values <= 0 are ignored.
func (p *Project) SetUndoCapacity(n int) {
	if n <= 0 {
		return
	}
	p.opts.capacity = n
	p.history.SetCapacity(n)
}

// BeginGesture starts a gesture: the first save that follows is recorded,
// later ones are suppressed until EndGesture.
func (p *Project) BeginGesture() {
	p.gesture = gesture{active: true}
}

// EndGesture ends the current gesture.
func (p *Project) EndGesture() {
	p.gesture = gesture{}
}

// InGesture reports whether a gesture is in progress.
func (p *Project) InGesture() bool { return p.gesture.active }

// HandleRestore applies a FrameMemento to the project and returns the
// complementary memento.
func (p *Project) HandleRestore(m history.Memento) (history.Memento, error) {
	fm, ok := m.(*FrameMemento)
	if !ok {
		return nil, fmt.Errorf("%w: project cannot restore %T", ErrUnsupportedOp, m)
	}

	switch fm.op {
	case OpAddFrame, OpDuplicateFrame:
		if err := p.checkIndex(fm.index); err != nil {
			return nil, err
		}
		if len(p.frames) == 1 {
			return nil, ErrLastFrame
		}
		complement := newFrameMemento(fm.op.Complement(), p, fm.index, p.frames[fm.index])
		p.detachFrame(fm.index)
		p.framesChanged(fm.index)
		return complement, nil

	case OpRemoveFrame, OpUnduplicateFrame:
		if fm.index < 0 || fm.index > len(p.frames) {
			return nil, fmt.Errorf("%w: insert at %d of %d", ErrIndexOutOfRange, fm.index, len(p.frames))
		}
		f := fm.frame.Clone()
		p.attachFrame(fm.index, f)
		p.active = fm.index
		p.framesChanged(fm.index)
		return newFrameMemento(fm.op.Complement(), p, fm.index, f), nil

	case OpMoveFrameUp:
		if err := p.checkIndex(fm.index + 1); err != nil {
			return nil, err
		}
		if err := p.checkIndex(fm.index); err != nil {
			return nil, err
		}
		p.moveFrame(fm.index, fm.index+1)
		p.framesChanged(p.active)
		return newFrameMemento(OpMoveFrameDown, p, p.active, p.frames[p.active]), nil

	case OpMoveFrameDown:
		if err := p.checkIndex(fm.index - 1); err != nil {
			return nil, err
		}
		if err := p.checkIndex(fm.index); err != nil {
			return nil, err
		}
		p.moveFrame(fm.index, fm.index-1)
		p.framesChanged(p.active)
		return newFrameMemento(OpMoveFrameUp, p, p.active, p.frames[p.active]), nil

	case OpMergeFrame, OpUnmergeFrame:
		if err := p.checkIndex(fm.index); err != nil {
			return nil, err
		}
		current := p.frames[fm.index]
		complement := newFrameMemento(fm.op.Complement(), p, fm.index, current)
		current.replaceContent(fm.frame.Clone())
		p.clearScope(current.id)
		p.active = fm.index
		p.framesChanged(fm.index)
		return complement, nil

	default:
		return nil, fmt.Errorf("%w: frame memento %v", ErrUnsupportedOp, fm.op)
	}
}

// save records m in the scope key, honouring the gesture lock.
func (p *Project) save(key uuid.UUID, m history.Memento) error {
	if p.gesture.active {
		if p.gesture.saved {
			return nil
		}
		p.gesture.saved = true
	}
	if err := p.history.SaveIn(key, m); err != nil {
		return err
	}
	p.logger.Debug("pixed: save", "op", OpCode(m.Op()), "scope", key)
	return nil
}

func (p *Project) historyError(err error) {
	p.obs.emit(Event{Kind: EventHistory, Index: -1, Err: err})
}

func (p *Project) clearScope(key uuid.UUID) {
	if err := p.history.ClearIn(key); err != nil && !errors.Is(err, history.ErrUnknownScope) {
		p.logger.Warn("pixed: clear history", "scope", key, "error", err)
	}
}

// newFrame creates a detached empty frame sized to the canvas.
func (p *Project) newFrame(name string) *Frame {
	p.frameSeq++
	return newEmptyFrame(cleanName(name, "Frame "+strconv.Itoa(p.frameSeq)), p.width, p.height)
}

// attachFrame inserts f at index i and registers its history scope.
func (p *Project) attachFrame(i int, f *Frame) {
	f.project = p
	p.frames = append(p.frames, nil)
	copy(p.frames[i+1:], p.frames[i:])
	p.frames[i] = f
	p.history.Init(f.id)
}

// detachFrame removes the frame at index i and drops its history scope.
func (p *Project) detachFrame(i int) *Frame {
	f := p.frames[i]
	copy(p.frames[i:], p.frames[i+1:])
	p.frames[len(p.frames)-1] = nil
	p.frames = p.frames[:len(p.frames)-1]
	if err := p.history.Remove(f.id); err != nil {
		p.logger.Warn("pixed: remove history scope", "frame", f.id, "error", err)
	}
	f.project = nil
	if p.active > i {
		p.active--
	}
	if p.active >= len(p.frames) {
		p.active = max(len(p.frames)-1, 0)
	}
	return f
}

// moveFrame moves the frame at from to to; the moved frame becomes active.
func (p *Project) moveFrame(from, to int) {
	f := p.frames[from]
	if from < to {
		copy(p.frames[from:to], p.frames[from+1:to+1])
	} else {
		copy(p.frames[to+1:from+1], p.frames[to:from])
	}
	p.frames[to] = f
	p.active = to
}

// framesChanged keeps the active history scope on the active frame and
// notifies listeners.
func (p *Project) framesChanged(index int) {
	p.syncActiveScope()
	p.emit(EventFrames, index)
}

func (p *Project) syncActiveScope() {
	f := p.ActiveFrame()
	if f == nil {
		return
	}
	if err := p.history.SetActive(f.id); err != nil {
		p.logger.Warn("pixed: activate history scope", "frame", f.id, "error", err)
	}
}

func (p *Project) checkIndex(i int) error {
	if i < 0 || i >= len(p.frames) {
		return fmt.Errorf("%w: frame %d of %d", ErrIndexOutOfRange, i, len(p.frames))
	}
	return nil
}

func (p *Project) emit(kind EventKind, index int) {
	p.obs.emit(Event{Kind: kind, Index: index})
}
