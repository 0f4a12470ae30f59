package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// DefaultCapacity is the undo depth used when no capacity is configured.
const DefaultCapacity = 50

// Common history errors.
var (
	// ErrNilMemento is returned by Save when given a nil memento.
	ErrNilMemento = errors.New("history: nil memento")

	// ErrHistoryCorrupted is returned by Undo and Redo when a restore fails or
	// produces no complement. Both stacks of the scope are cleared.
	ErrHistoryCorrupted = errors.New("history: restore failed, history cleared")
)

// ErrorHandler receives errors signalled by a Caretaker.
type ErrorHandler func(err error)

// CaretakerOption configures a Caretaker.
type CaretakerOption func(*Caretaker)

// WithCapacity sets the maximum number of undo entries. Values <= 0 are ignored.
func WithCapacity(n int) CaretakerOption {
	return func(c *Caretaker) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithErrorHandler installs a callback invoked whenever the caretaker
// signals an error (nil saves and corrupted restores).
func WithErrorHandler(h ErrorHandler) CaretakerOption {
	return func(c *Caretaker) {
		c.onError = h
	}
}

// WithLogger sets the logger used for diagnostics. nil disables logging.
func WithLogger(l *slog.Logger) CaretakerOption {
	return func(c *Caretaker) {
		c.logger = l
	}
}

// Caretaker owns a bounded undo stack and an unbounded redo stack for one
// editing scope.
//
// The undo stack evicts its oldest entry once capacity is exceeded. Every
// Save clears the redo stack.
//
// Thread safety: Caretaker is not safe for concurrent use.
type Caretaker struct {
	capacity int
	undo     []Memento
	redo     []Memento
	onError  ErrorHandler
	logger   *slog.Logger
}

// NewCaretaker creates an empty caretaker.
func NewCaretaker(opts ...CaretakerOption) *Caretaker {
	c := &Caretaker{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Capacity returns the maximum undo depth.
func (c *Caretaker) Capacity() int {
	return c.capacity
}

// UndoLen returns the number of entries that can be undone.
func (c *Caretaker) UndoLen() int {
	return len(c.undo)
}

// RedoLen returns the number of entries that can be redone.
func (c *Caretaker) RedoLen() int {
	return len(c.redo)
}

// CanUndo reports whether Undo has anything to restore.
func (c *Caretaker) CanUndo() bool {
	return len(c.undo) > 0
}

// CanRedo reports whether Redo has anything to restore.
func (c *Caretaker) CanRedo() bool {
	return len(c.redo) > 0
}

// Save records m as the most recent undoable step and discards the redo
// history.
func (c *Caretaker) Save(m Memento) error {
	if m == nil {
		c.signal(ErrNilMemento)
		return ErrNilMemento
	}

	c.undo = append(c.undo, m)
	if over := len(c.undo) - c.capacity; over > 0 {
		// Drop references so evicted snapshots can be collected.
		clear(c.undo[:over])
		c.undo = c.undo[over:]
	}
	c.clearRedo()

	c.debug("history save", slog.Int("op", m.Op()), slog.Int("undo", len(c.undo)))
	return nil
}

// Undo restores the most recent step and moves its complement to the redo
// stack. Undo on an empty stack does nothing.
func (c *Caretaker) Undo() error {
	if len(c.undo) == 0 {
		return nil
	}
	m := pop(&c.undo)
	r, err := m.Restore()
	if err != nil || r == nil {
		return c.corrupted("undo", m, err)
	}
	c.redo = append(c.redo, r)

	c.debug("history undo", slog.Int("op", m.Op()), slog.Int("undo", len(c.undo)), slog.Int("redo", len(c.redo)))
	return nil
}

// Redo restores the most recently undone step and moves its complement back
// to the undo stack. Redo on an empty stack does nothing.
func (c *Caretaker) Redo() error {
	if len(c.redo) == 0 {
		return nil
	}
	m := pop(&c.redo)
	r, err := m.Restore()
	if err != nil || r == nil {
		return c.corrupted("redo", m, err)
	}
	c.undo = append(c.undo, r)

	c.debug("history redo", slog.Int("op", m.Op()), slog.Int("undo", len(c.undo)), slog.Int("redo", len(c.redo)))
	return nil
}

// Clear empties both stacks.
func (c *Caretaker) Clear() {
	clear(c.undo)
	c.undo = c.undo[:0]
	c.clearRedo()
}

// SetCapacity changes the undo depth and clears the history so no entry
// beyond the new bound survives. Values <= 0 are ignored.
func (c *Caretaker) SetCapacity(n int) {
	if n <= 0 {
		return
	}
	c.capacity = n
	c.Clear()
}

// corrupted clears both stacks after a failed restore. No partial repair is
// attempted: the remaining entries may reference state that no longer exists.
func (c *Caretaker) corrupted(dir string, m Memento, cause error) error {
	c.Clear()
	var err error
	if cause != nil {
		err = fmt.Errorf("%w: %s op %d: %w", ErrHistoryCorrupted, dir, m.Op(), cause)
	} else {
		err = fmt.Errorf("%w: %s op %d: no complementary memento", ErrHistoryCorrupted, dir, m.Op())
	}
	if c.logger != nil {
		c.logger.Warn("history cleared", slog.String("direction", dir), slog.Int("op", m.Op()), slog.Any("error", err))
	}
	c.signal(err)
	return err
}

func (c *Caretaker) clearRedo() {
	clear(c.redo)
	c.redo = c.redo[:0]
}

func (c *Caretaker) signal(err error) {
	if c.onError != nil {
		c.onError(err)
	}
}

func (c *Caretaker) debug(msg string, attrs ...slog.Attr) {
	if c.logger == nil {
		return
	}
	c.logger.LogAttrs(context.Background(), slog.LevelDebug, msg, attrs...)
}

func pop(s *[]Memento) Memento {
	n := len(*s) - 1
	m := (*s)[n]
	(*s)[n] = nil
	*s = (*s)[:n]
	return m
}
