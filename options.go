package pixed

import (
	"log/slog"

	"github.com/gogpu/pixed/config"
	"github.com/gogpu/pixed/history"
)

// ProjectOption configures a Project during creation.
//
// Example:
//
//	// Deep history with compressed snapshots
//	p := pixed.NewProject(64, 64,
//	    pixed.WithUndoCapacity(200),
//	    pixed.WithSnapshotCompression(true),
//	)
type ProjectOption func(*projectOptions)

// projectOptions holds optional configuration for Project creation.
type projectOptions struct {
	name     string
	capacity int
	compress bool
	logger   *slog.Logger
	factory  history.Factory
}

func defaultProjectOptions() projectOptions {
	return projectOptions{
		capacity: history.DefaultCapacity,
	}
}

// WithName sets the project name.
func WithName(name string) ProjectOption {
	return func(o *projectOptions) {
		o.name = name
	}
}

// WithUndoCapacity sets the undo depth of every history scope. Values <= 0
// keep the default.
func WithUndoCapacity(n int) ProjectOption {
	return func(o *projectOptions) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithSnapshotCompression stores layer snapshots zstd-compressed. It trades
// CPU time on every save and restore for a smaller history footprint, which
// pays off on large canvases with deep history.
func WithSnapshotCompression(enabled bool) ProjectOption {
	return func(o *projectOptions) {
		o.compress = enabled
	}
}

// WithLogger sets the logger used by the project and its caretakers instead
// of the package default.
func WithLogger(l *slog.Logger) ProjectOption {
	return func(o *projectOptions) {
		o.logger = l
	}
}

// WithCaretakerFactory replaces the default caretaker construction. Use it
// to inject caretakers with custom error handlers or loggers.
//
// Example:
//
//	p := pixed.NewProject(32, 32, pixed.WithCaretakerFactory(func() *history.Caretaker {
//	    return history.NewCaretaker(history.WithCapacity(10))
//	}))
//
// Caretakers built by a custom factory do not report failures through
// EventHistory unless the factory wires an error handler itself.
func WithCaretakerFactory(f history.Factory) ProjectOption {
	return func(o *projectOptions) {
		o.factory = f
	}
}

// WithSettings applies the history-related fields of s.
func WithSettings(s config.Settings) ProjectOption {
	return func(o *projectOptions) {
		if s.UndoCapacity > 0 {
			o.capacity = s.UndoCapacity
		}
		o.compress = s.CompressSnapshots
	}
}
