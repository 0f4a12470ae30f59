// Package pixed is a headless pixel-art editing engine.
//
// # Overview
//
// pixed models a project as an ordered list of animation frames, each frame
// as an ordered stack of layers, and each layer as an RGBA8 raster with
// opacity and visibility. Every editing operation records a memento in a
// per-frame undo history, so the whole session can be undone and redone
// step by step.
//
// # Quick Start
//
//	import "github.com/gogpu/pixed"
//
//	p := pixed.NewProject(32, 32)
//	tools := pixed.NewDefaultToolbox(p)
//
//	// One stroke, one undo step
//	_ = tools.Press(2, 2)
//	_ = tools.Drag(10, 2)
//	_ = tools.Release(10, 10)
//
//	_ = p.Undo()
//	_ = p.Redo()
//
//	// Flatten and save
//	_ = pixed.WriteFile("frame.png", p.ActiveFrame().Flatten())
//
// # History
//
// The undo engine lives in the history package. A Project keeps one scope
// per frame, keyed by frame ID, plus one scope for the frame list keyed by
// the project ID. Undo and Redo act on the active frame; UndoFrames and
// RedoFrames act on the frame list. Multi-step operations such as MergeDown
// are recorded as one chained memento and undo atomically.
//
// # Compositing
//
// Layer index 0 is the topmost layer. ComposeLayers and ComposeFrames draw a
// range from the bottom up with source-over blending on straight alpha;
// hidden entries are skipped and opacity scales the source alpha.
//
// # Coordinate System
//
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down
//   - Rotations are clockwise in multiples of 90 degrees
package pixed

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
