package pixed

import "errors"

// Common errors returned by editing operations.
var (
	// ErrIndexOutOfRange is returned when a layer or frame index does not exist.
	ErrIndexOutOfRange = errors.New("pixed: index out of range")

	// ErrLastLayer is returned when removing or merging would leave a frame
	// without layers.
	ErrLastLayer = errors.New("pixed: frame must keep at least one layer")

	// ErrLastFrame is returned when removing or merging would leave a project
	// without frames.
	ErrLastFrame = errors.New("pixed: project must keep at least one frame")

	// ErrInvalidAngle is returned for rotations that are not a multiple of 90 degrees.
	ErrInvalidAngle = errors.New("pixed: rotation must be a multiple of 90 degrees")

	// ErrInvalidSize is returned for non-positive or mismatched dimensions.
	ErrInvalidSize = errors.New("pixed: invalid size")

	// ErrInvalidGrid is returned for sprite sheets with non-positive rows or columns.
	ErrInvalidGrid = errors.New("pixed: invalid sprite sheet grid")

	// ErrUnsupportedOp is returned when a memento carries an operation code its
	// handler does not know.
	ErrUnsupportedOp = errors.New("pixed: unsupported operation")

	// ErrInvalidData is returned when a serializable model is inconsistent.
	ErrInvalidData = errors.New("pixed: invalid data")

	// ErrUnknownTool is returned by Toolbox.Select for unregistered names.
	ErrUnknownTool = errors.New("pixed: unknown tool")

	// ErrUnsupportedFormat is returned by Encode for unknown image formats.
	ErrUnsupportedFormat = errors.New("pixed: unsupported format")
)
