// Package history implements bounded undo/redo histories built on mementos.
//
// A Memento is an immutable snapshot tagged with an operation code. Restoring
// a memento mutates the live state it was taken from and returns the
// complementary memento: the one whose restoration reverts that mutation.
// Undo pushes the complement onto the redo stack, Redo pushes it back onto
// the undo stack.
//
// Operation codes come in inverse pairs by negation: restoring an "add" yields
// a "remove" (code -op) and vice versa. Operations without a structural
// inverse (pixel edits, property changes, mirroring) are self-paired and
// yield a memento with the same code.
//
// A Caretaker owns the undo/redo pair for one editing scope. A Manager keeps
// one Caretaker per scope key and routes calls to the active scope.
package history

// Memento is a restorable snapshot of live editing state.
type Memento interface {
	// Op returns the non-zero operation code the memento was saved with.
	Op() int

	// Restore applies the memento to the live state and returns the
	// complementary memento. A nil complement or a non-nil error means the
	// history can no longer be trusted.
	Restore() (Memento, error)
}

// chained bundles two mementos into one atomic undo step.
type chained struct {
	primary   Memento
	secondary Memento
}

// Chain returns a memento that restores primary and then secondary as a
// single step. The complement of a chain is itself a chain of the two
// complements, so the composite action also redoes atomically.
//
// If secondary is nil, Chain returns primary unchanged.
func Chain(primary, secondary Memento) Memento {
	if secondary == nil {
		return primary
	}
	if primary == nil {
		return secondary
	}
	return &chained{primary: primary, secondary: secondary}
}

// Op returns the operation code of the primary memento.
func (c *chained) Op() int {
	return c.primary.Op()
}

// Restore restores both mementos in order.
func (c *chained) Restore() (Memento, error) {
	first, err := c.primary.Restore()
	if err != nil {
		return nil, err
	}
	if first == nil {
		return nil, nil
	}
	second, err := c.secondary.Restore()
	if err != nil {
		return nil, err
	}
	if second == nil {
		return nil, nil
	}
	return &chained{primary: first, secondary: second}, nil
}

// Secondary returns the memento chained behind m, or nil when m carries none.
func Secondary(m Memento) Memento {
	if c, ok := m.(*chained); ok {
		return c.secondary
	}
	return nil
}

// Primary returns the leading memento of m. For plain mementos this is m.
func Primary(m Memento) Memento {
	if c, ok := m.(*chained); ok {
		return c.primary
	}
	return m
}
