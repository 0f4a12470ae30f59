package history

import (
	"errors"
	"fmt"
	"slices"
)

// Scope registry errors.
var (
	// ErrUnknownScope is returned for operations against an unregistered key.
	ErrUnknownScope = errors.New("history: unknown scope")

	// ErrNoActiveScope is returned when routing to the active scope while no
	// scope is registered.
	ErrNoActiveScope = errors.New("history: no active scope")
)

// Factory creates the Caretaker for a newly registered scope.
type Factory func() *Caretaker

// Manager keeps one Caretaker per scope key and tracks the active scope.
//
// Caretakers are created on demand by the injected Factory, so a Manager
// needs no global registry: independent projects (or tests) each own their
// own Manager.
//
// Thread safety: Manager is not safe for concurrent use.
type Manager[K comparable] struct {
	factory    Factory
	caretakers map[K]*Caretaker
	order      []K
	active     K
	hasActive  bool
	capacity   int
}

// NewManager creates an empty manager. If factory is nil, scopes use
// NewCaretaker with default options.
func NewManager[K comparable](factory Factory) *Manager[K] {
	if factory == nil {
		factory = func() *Caretaker { return NewCaretaker() }
	}
	return &Manager[K]{
		factory:    factory,
		caretakers: make(map[K]*Caretaker),
	}
}

// Init registers a scope. It is idempotent: an existing key keeps its
// history and Init reports false. The first scope ever registered (or the
// first after all scopes were removed) becomes active.
func (m *Manager[K]) Init(key K) bool {
	if _, ok := m.caretakers[key]; ok {
		return false
	}
	c := m.factory()
	if m.capacity > 0 {
		c.SetCapacity(m.capacity)
	}
	m.caretakers[key] = c
	m.order = append(m.order, key)
	if !m.hasActive {
		m.active = key
		m.hasActive = true
	}
	return true
}

// Remove deletes a scope and its history. If the removed scope was active,
// the earliest registered remaining scope becomes active.
func (m *Manager[K]) Remove(key K) error {
	c, ok := m.caretakers[key]
	if !ok {
		return fmt.Errorf("%w: %v", ErrUnknownScope, key)
	}
	c.Clear()
	delete(m.caretakers, key)
	m.order = slices.DeleteFunc(m.order, func(k K) bool { return k == key })

	if m.hasActive && m.active == key {
		var zero K
		m.active, m.hasActive = zero, false
		if len(m.order) > 0 {
			m.active, m.hasActive = m.order[0], true
		}
	}
	return nil
}

// Has reports whether key is registered.
func (m *Manager[K]) Has(key K) bool {
	_, ok := m.caretakers[key]
	return ok
}

// Keys returns the registered keys in registration order.
func (m *Manager[K]) Keys() []K {
	return slices.Clone(m.order)
}

// Len returns the number of registered scopes.
func (m *Manager[K]) Len() int {
	return len(m.order)
}

// Active returns the active key. ok is false when no scope is registered.
func (m *Manager[K]) Active() (key K, ok bool) {
	return m.active, m.hasActive
}

// SetActive makes key the active scope. The key must be registered.
func (m *Manager[K]) SetActive(key K) error {
	if _, ok := m.caretakers[key]; !ok {
		return fmt.Errorf("%w: %v", ErrUnknownScope, key)
	}
	m.active = key
	m.hasActive = true
	return nil
}

// Caretaker returns the caretaker registered for key.
func (m *Manager[K]) Caretaker(key K) (*Caretaker, error) {
	c, ok := m.caretakers[key]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownScope, key)
	}
	return c, nil
}

// ActiveCaretaker returns the caretaker of the active scope.
func (m *Manager[K]) ActiveCaretaker() (*Caretaker, error) {
	if !m.hasActive {
		return nil, ErrNoActiveScope
	}
	return m.Caretaker(m.active)
}

// Save records mem in the active scope.
func (m *Manager[K]) Save(mem Memento) error {
	c, err := m.ActiveCaretaker()
	if err != nil {
		return err
	}
	return c.Save(mem)
}

// SaveIn records mem in the scope identified by key.
func (m *Manager[K]) SaveIn(key K, mem Memento) error {
	c, err := m.Caretaker(key)
	if err != nil {
		return err
	}
	return c.Save(mem)
}

// Undo undoes the last step of the active scope.
func (m *Manager[K]) Undo() error {
	c, err := m.ActiveCaretaker()
	if err != nil {
		return err
	}
	return c.Undo()
}

// UndoIn undoes the last step of the scope identified by key.
func (m *Manager[K]) UndoIn(key K) error {
	c, err := m.Caretaker(key)
	if err != nil {
		return err
	}
	return c.Undo()
}

// Redo redoes the last undone step of the active scope.
func (m *Manager[K]) Redo() error {
	c, err := m.ActiveCaretaker()
	if err != nil {
		return err
	}
	return c.Redo()
}

// RedoIn redoes the last undone step of the scope identified by key.
func (m *Manager[K]) RedoIn(key K) error {
	c, err := m.Caretaker(key)
	if err != nil {
		return err
	}
	return c.Redo()
}

// Clear empties the history of the active scope.
func (m *Manager[K]) Clear() error {
	c, err := m.ActiveCaretaker()
	if err != nil {
		return err
	}
	c.Clear()
	return nil
}

// ClearIn empties the history of the scope identified by key.
func (m *Manager[K]) ClearIn(key K) error {
	c, err := m.Caretaker(key)
	if err != nil {
		return err
	}
	c.Clear()
	return nil
}

// ClearAll empties the history of every scope.
func (m *Manager[K]) ClearAll() {
	for _, c := range m.caretakers {
		c.Clear()
	}
}

// SetCapacity applies n to every registered scope and to scopes registered
// later. Values <= 0 are ignored.
func (m *Manager[K]) SetCapacity(n int) {
	if n <= 0 {
		return
	}
	m.capacity = n
	for _, c := range m.caretakers {
		c.SetCapacity(n)
	}
}
