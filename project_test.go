package pixed

import (
	"errors"
	"reflect"
	"testing"

	"github.com/gogpu/pixed/history"
)

// framedProject returns a 3x3 project with two painted frames and an empty
// history.
func framedProject(t *testing.T, opts ...ProjectOption) *Project {
	t.Helper()
	p := NewProject(3, 3, opts...)
	if _, err := p.AddFrame("second"); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Frame(1).AddLayer("ink"); err != nil {
		t.Fatal(err)
	}
	for i, f := range p.Frames() {
		for j, l := range f.Layers() {
			paint(l.Raster(), uint8(60*i+20*j+3))
		}
	}
	p.ClearHistory()
	return p
}

func TestNewProject(t *testing.T) {
	p := NewProject(0, -4)
	if p.Width() != DefaultCanvasSize || p.Height() != DefaultCanvasSize {
		t.Errorf("size = %dx%d, want default", p.Width(), p.Height())
	}
	if p.FrameCount() != 1 || p.ActiveFrame().LayerCount() != 1 {
		t.Fatal("new project should have one frame with one layer")
	}
	if p.Name() != "Untitled" {
		t.Errorf("Name() = %q", p.Name())
	}

	keys := p.History().Keys()
	if len(keys) != 2 || keys[0] != p.ID() || keys[1] != p.ActiveFrame().ID() {
		t.Errorf("history scopes = %v, want project then frame", keys)
	}
	if active, _ := p.History().Active(); active != p.ActiveFrame().ID() {
		t.Error("active history scope is not the active frame")
	}
}

func TestProjectFrameOperationsRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		op   func(p *Project) error
	}{
		{"add frame", func(p *Project) error { _, err := p.AddFrame("x"); return err }},
		{"duplicate frame", func(p *Project) error { _, err := p.DuplicateFrame(0); return err }},
		{"remove first frame", func(p *Project) error { return p.RemoveFrame(0) }},
		{"remove last frame", func(p *Project) error { return p.RemoveFrame(1) }},
		{"move frame up", func(p *Project) error { return p.MoveFrameUp(1) }},
		{"move frame down", func(p *Project) error { return p.MoveFrameDown(0) }},
		{"merge frames", func(p *Project) error { return p.MergeFrames(1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := framedProject(t)
			before := state(p)

			if err := tt.op(p); err != nil {
				t.Fatalf("op = %v", err)
			}
			after := state(p)
			if reflect.DeepEqual(before, after) {
				t.Fatal("operation changed nothing")
			}

			for cycle := 0; cycle < 2; cycle++ {
				if err := p.UndoFrames(); err != nil {
					t.Fatalf("UndoFrames() = %v", err)
				}
				if !reflect.DeepEqual(state(p), before) {
					t.Fatalf("cycle %d: UndoFrames did not restore the original state", cycle)
				}
				if err := p.RedoFrames(); err != nil {
					t.Fatalf("RedoFrames() = %v", err)
				}
				if !reflect.DeepEqual(state(p), after) {
					t.Fatalf("cycle %d: RedoFrames did not reapply the operation", cycle)
				}
			}
		})
	}
}

func TestProjectMergeFrames(t *testing.T) {
	p := framedProject(t)
	target, consumed := p.Frame(0), p.Frame(1)
	want := len(target.layers) + len(consumed.layers)

	// Give the target some layer history that the merge will invalidate.
	if err := target.Mirror(); err != nil {
		t.Fatal(err)
	}
	if err := p.MergeFrames(1); err != nil {
		t.Fatal(err)
	}
	if p.FrameCount() != 1 || target.LayerCount() != want {
		t.Fatalf("after merge: %d frames, %d layers; want 1, %d", p.FrameCount(), target.LayerCount(), want)
	}
	if got := target.Layer(want - 1).ID(); got != consumed.Layer(consumed.LayerCount()-1).ID() {
		t.Error("consumed layers should sit below the target's layers")
	}
	if c, _ := p.History().Caretaker(target.ID()); c.CanUndo() {
		t.Error("merge should clear the target's layer history")
	}
	if p.History().Has(consumed.ID()) {
		t.Error("consumed frame kept its history scope")
	}

	if err := p.UndoFrames(); err != nil {
		t.Fatal(err)
	}
	if p.FrameCount() != 2 || p.Frame(1).ID() != consumed.ID() {
		t.Error("one UndoFrames did not restore both frames")
	}
	if p.Frame(0) != target {
		t.Error("the target frame object should survive the undo")
	}
}

func TestProjectMergeFramesResizesLayers(t *testing.T) {
	p := framedProject(t)
	if err := p.Frame(1).Resize(6, 6); err != nil {
		t.Fatal(err)
	}
	if err := p.MergeFrames(1); err != nil {
		t.Fatal(err)
	}
	for i, l := range p.Frame(0).Layers() {
		if l.Width() != 3 || l.Height() != 3 {
			t.Errorf("layer %d is %dx%d, want 3x3", i, l.Width(), l.Height())
		}
	}
}

func TestProjectScopeLifecycle(t *testing.T) {
	p := framedProject(t)
	removed := p.Frame(0)

	if err := p.RemoveFrame(0); err != nil {
		t.Fatal(err)
	}
	if p.History().Has(removed.ID()) {
		t.Error("removed frame kept its history scope")
	}
	if active, _ := p.History().Active(); active != p.ActiveFrame().ID() {
		t.Error("active scope does not follow the active frame after removal")
	}

	if err := p.UndoFrames(); err != nil {
		t.Fatal(err)
	}
	if !p.History().Has(removed.ID()) {
		t.Error("re-inserted frame has no history scope")
	}
	if active, _ := p.History().Active(); active != removed.ID() {
		t.Error("re-inserted frame should be active")
	}

	// The re-inserted frame records and undoes edits in its own scope.
	f := p.ActiveFrame()
	if _, err := f.AddLayer("new"); err != nil {
		t.Fatal(err)
	}
	if err := p.Undo(); err != nil {
		t.Fatal(err)
	}
	if f.LayerCount() != removed.LayerCount() {
		t.Error("undo in the re-inserted frame failed")
	}
}

func TestProjectUndoFollowsActiveFrame(t *testing.T) {
	p := framedProject(t)
	a, b := p.Frame(0), p.Frame(1)

	if err := p.SetActiveFrame(0); err != nil {
		t.Fatal(err)
	}
	if _, err := a.AddLayer(""); err != nil {
		t.Fatal(err)
	}
	if err := p.SetActiveFrame(1); err != nil {
		t.Fatal(err)
	}
	if err := b.Mirror(); err != nil {
		t.Fatal(err)
	}

	nA, nB := a.LayerCount(), b.Flatten()
	if err := p.Undo(); err != nil {
		t.Fatal(err)
	}
	if a.LayerCount() != nA {
		t.Error("Undo touched the inactive frame")
	}
	if b.Flatten().Equal(nB) {
		t.Error("Undo did not revert the active frame")
	}

	if err := p.SetActiveFrame(0); err != nil {
		t.Fatal(err)
	}
	if err := p.Undo(); err != nil {
		t.Fatal(err)
	}
	if a.LayerCount() != nA-1 {
		t.Error("Undo after switching frames did not revert frame 0")
	}
}

func TestProjectHistoryRoundTrip(t *testing.T) {
	p := framedProject(t)
	if err := p.SetActiveFrame(0); err != nil {
		t.Fatal(err)
	}
	f := p.ActiveFrame()

	steps := []func() error{
		func() error { _, err := f.AddLayer("a"); return err },
		func() error { return f.SetLayerOpacity(0, 0.3) },
		func() error { return f.Rotate(90) },
		func() error { return f.MoveLayerDown(0) },
		func() error {
			if err := p.SaveState(OpLayerPixels, 0); err != nil {
				return err
			}
			FloodFill(f.Layer(0).Raster(), 0, 0, Green)
			return nil
		},
		func() error { return f.MergeDown(1) },
		func() error { return f.Mirror() },
		func() error { return f.Resize(6, 9) },
		func() error { _, err := f.DuplicateLayer(0); return err },
		func() error { return f.RemoveLayer(1) },
	}

	states := []ProjectData{state(p)}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d = %v", i, err)
		}
		states = append(states, state(p))
	}

	for i := len(steps) - 1; i >= 0; i-- {
		if err := p.Undo(); err != nil {
			t.Fatalf("Undo() = %v", err)
		}
		if !reflect.DeepEqual(state(p), states[i]) {
			t.Fatalf("after undoing step %d the state differs", i)
		}
	}
	if p.CanUndo() {
		t.Error("history should be exhausted")
	}
	for i := 1; i <= len(steps); i++ {
		if err := p.Redo(); err != nil {
			t.Fatalf("Redo() = %v", err)
		}
		if !reflect.DeepEqual(state(p), states[i]) {
			t.Fatalf("after redoing step %d the state differs", i-1)
		}
	}
}

func TestProjectCompressedSnapshots(t *testing.T) {
	p := layeredProject(t, WithSnapshotCompression(true))
	f := p.ActiveFrame()
	before := state(p)
	if err := f.MergeDown(1); err != nil {
		t.Fatal(err)
	}
	if err := p.Undo(); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(state(p), before) {
		t.Error("compressed snapshots did not restore the state")
	}
}

func TestProjectUndoCapacity(t *testing.T) {
	p := NewProject(2, 2, WithUndoCapacity(3))
	for i := 0; i < 5; i++ {
		if err := p.SaveState(OpLayerPixels, 0); err != nil {
			t.Fatal(err)
		}
	}
	c, _ := p.History().ActiveCaretaker()
	if c.UndoLen() != 3 {
		t.Errorf("UndoLen() = %d, want 3", c.UndoLen())
	}

	p.SetUndoCapacity(2)
	if c.UndoLen() != 0 || c.Capacity() != 2 {
		t.Errorf("SetUndoCapacity: len %d cap %d, want 0 and 2", c.UndoLen(), c.Capacity())
	}
	// Scopes created later inherit the capacity.
	f, _ := p.AddFrame("")
	nc, _ := p.History().Caretaker(f.ID())
	if nc.Capacity() != 2 {
		t.Errorf("new scope capacity = %d, want 2", nc.Capacity())
	}
}

func TestProjectSaveClearsRedo(t *testing.T) {
	p := NewProject(2, 2)
	if err := p.SaveState(OpLayerPixels, 0); err != nil {
		t.Fatal(err)
	}
	if err := p.Undo(); err != nil {
		t.Fatal(err)
	}
	if !p.CanRedo() {
		t.Fatal("CanRedo() = false after Undo")
	}
	if err := p.SaveState(OpLayerProperties, 0); err != nil {
		t.Fatal(err)
	}
	if p.CanRedo() {
		t.Error("save did not clear redo")
	}
}

func TestProjectGestureLock(t *testing.T) {
	p := NewProject(2, 2)
	p.BeginGesture()
	if !p.InGesture() {
		t.Fatal("InGesture() = false")
	}
	for i := 0; i < 4; i++ {
		if err := p.SaveState(OpLayerPixels, 0); err != nil {
			t.Fatal(err)
		}
	}
	p.EndGesture()
	if err := p.SaveState(OpLayerPixels, 0); err != nil {
		t.Fatal(err)
	}

	c, _ := p.History().ActiveCaretaker()
	if c.UndoLen() != 2 {
		t.Errorf("UndoLen() = %d, want 2 (one per gesture plus one after)", c.UndoLen())
	}
}

type brokenMemento struct{ err error }

func (m brokenMemento) Op() int                           { return int(OpLayerPixels) }
func (m brokenMemento) Restore() (history.Memento, error) { return nil, m.err }

func TestProjectCorruptedHistory(t *testing.T) {
	p := NewProject(2, 2)
	var events []Event
	p.AddListener(func(e Event) {
		if e.Kind == EventHistory {
			events = append(events, e)
		}
	})

	if err := p.SaveState(OpLayerPixels, 0); err != nil {
		t.Fatal(err)
	}
	cause := errors.New("disk gone")
	if err := p.History().Save(brokenMemento{err: cause}); err != nil {
		t.Fatal(err)
	}

	err := p.Undo()
	if !errors.Is(err, history.ErrHistoryCorrupted) || !errors.Is(err, cause) {
		t.Fatalf("Undo() = %v, want ErrHistoryCorrupted wrapping the cause", err)
	}
	if p.CanUndo() || p.CanRedo() {
		t.Error("corrupted scope should be cleared")
	}
	if len(events) != 1 || !errors.Is(events[0].Err, cause) {
		t.Errorf("history events = %+v, want one carrying the cause", events)
	}
}

func TestProjectErrors(t *testing.T) {
	p := NewProject(2, 2)
	if err := p.RemoveFrame(0); !errors.Is(err, ErrLastFrame) {
		t.Errorf("RemoveFrame(only) = %v, want ErrLastFrame", err)
	}
	if err := p.MergeFrames(0); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("MergeFrames(0) = %v, want ErrIndexOutOfRange", err)
	}
	if err := p.MoveFrameUp(0); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("MoveFrameUp(0) = %v, want ErrIndexOutOfRange", err)
	}
	if err := p.SetActiveFrame(4); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("SetActiveFrame(4) = %v, want ErrIndexOutOfRange", err)
	}
	if err := p.SaveState(OpAddFrame, 3); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("SaveState(OpAddFrame, 3) = %v, want ErrIndexOutOfRange", err)
	}
	if _, err := p.HandleRestore(brokenMemento{}); !errors.Is(err, ErrUnsupportedOp) {
		t.Errorf("HandleRestore(foreign) = %v, want ErrUnsupportedOp", err)
	}
	// Undo with nothing recorded is a no-op.
	if err := p.Undo(); err != nil {
		t.Errorf("Undo() on empty history = %v", err)
	}
}

func TestProjectListeners(t *testing.T) {
	p := NewProject(2, 2)
	var kinds []EventKind
	id := p.AddListener(func(e Event) { kinds = append(kinds, e.Kind) })

	if _, err := p.AddFrame(""); err != nil {
		t.Fatal(err)
	}
	if err := p.SetActiveFrame(0); err != nil {
		t.Fatal(err)
	}
	p.RemoveListener(id)
	if _, err := p.AddFrame(""); err != nil {
		t.Fatal(err)
	}

	if want := []EventKind{EventFrames, EventActive}; !reflect.DeepEqual(kinds, want) {
		t.Errorf("events = %v, want %v", kinds, want)
	}
}

func TestOpCode(t *testing.T) {
	tests := []struct {
		op   OpCode
		want OpCode
		name string
	}{
		{OpLayerPixels, OpLayerPixels, "LayerPixels"},
		{OpMirror, OpMirror, "Mirror"},
		{OpResize, OpResize, "Resize"},
		{OpAddLayer, OpRemoveLayer, "AddLayer"},
		{OpRemoveLayer, OpAddLayer, "RemoveLayer"},
		{OpMoveLayerUp, OpMoveLayerDown, "MoveLayerUp"},
		{OpRotate, OpRotateBack, "Rotate"},
		{OpMergeFrame, OpUnmergeFrame, "MergeFrame"},
		{OpCode(99), OpCode(-99), "OpCode(99)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.op.Complement(); got != tt.want {
				t.Errorf("Complement() = %v, want %v", got, tt.want)
			}
			if got := tt.op.String(); got != tt.name {
				t.Errorf("String() = %q, want %q", got, tt.name)
			}
		})
	}
}
