package pixed

import "slices"

// EventKind identifies what changed in an entity.
type EventKind int

// Event kinds.
const (
	// EventPixels is emitted when a layer's raster contents change.
	EventPixels EventKind = iota + 1

	// EventProperties is emitted when a name, opacity or visibility changes.
	EventProperties

	// EventLayers is emitted when a frame's layer list changes structure.
	EventLayers

	// EventGeometry is emitted when a frame is mirrored, rotated or resized.
	EventGeometry

	// EventFrames is emitted when a project's frame list changes structure.
	EventFrames

	// EventActive is emitted when the active layer or frame changes.
	EventActive

	// EventHistory is emitted when a history scope was cleared after a
	// failed restore. Event.Err carries the cause.
	EventHistory
)

// String returns a readable name for the event kind.
func (k EventKind) String() string {
	switch k {
	case EventPixels:
		return "Pixels"
	case EventProperties:
		return "Properties"
	case EventLayers:
		return "Layers"
	case EventGeometry:
		return "Geometry"
	case EventFrames:
		return "Frames"
	case EventActive:
		return "Active"
	case EventHistory:
		return "History"
	default:
		return "Unknown"
	}
}

// Event describes a change notification.
type Event struct {
	Kind EventKind

	// Index is the affected layer or frame index, or -1 when the change is
	// not tied to a single entry.
	Index int

	// Err is set for EventHistory.
	Err error
}

// ListenerID identifies a registered listener for later removal.
type ListenerID uint64

type listenerEntry struct {
	id ListenerID
	fn func(Event)
}

// listeners is the registry embedded in every observable entity. Callbacks
// run synchronously in registration order.
type listeners struct {
	next    ListenerID
	entries []listenerEntry
}

func (l *listeners) add(fn func(Event)) ListenerID {
	l.next++
	l.entries = append(l.entries, listenerEntry{id: l.next, fn: fn})
	return l.next
}

func (l *listeners) remove(id ListenerID) bool {
	n := len(l.entries)
	l.entries = slices.DeleteFunc(l.entries, func(e listenerEntry) bool { return e.id == id })
	return len(l.entries) != n
}

func (l *listeners) emit(ev Event) {
	for _, e := range l.entries {
		e.fn(ev)
	}
}
