package history

import (
	"errors"

	"SketchBoard/internal/element"
)

// ErrNoGesture is returned by UpdateGesture and EndGesture when no gesture
// was begun.
var ErrNoGesture = errors.New("no gesture in progress")

// Manager is a linear undo/redo history of element stores with a cursor.
// It is the only writer of canvas state: everything else reads Current.
//
// A gesture takes exactly one entry. BeginGesture pushes it, UpdateGesture
// overwrites it in place while the pointer moves, EndGesture writes the
// final state and seals it. Pushing while the cursor is behind the tip
// drops the redo tail.
//
// Manager is not safe for concurrent use; a session's event loop owns it.
type Manager struct {
	snapshots []element.Store
	cursor    int
	inGesture bool
	limit     int
}

// Option configures a Manager.
type Option func(*Manager)

// WithLimit caps the number of kept snapshots. Oldest ones are dropped
// first. Values below 2 mean no limit.
func WithLimit(n int) Option {
	return func(m *Manager) {
		if n >= 2 {
			m.limit = n
		}
	}
}

// New starts a history whose only entry is initial.
func New(initial element.Store, opts ...Option) *Manager {
	m := &Manager{snapshots: []element.Store{initial}}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Current returns the store at the cursor.
func (m *Manager) Current() element.Store { return m.snapshots[m.cursor] }

// Len returns the number of snapshots.
func (m *Manager) Len() int { return len(m.snapshots) }

// Cursor returns the index of the current snapshot.
func (m *Manager) Cursor() int { return m.cursor }

// InGesture reports whether a gesture entry is open.
func (m *Manager) InGesture() bool { return m.inGesture }

// Snapshots returns all snapshots, oldest first.
func (m *Manager) Snapshots() []element.Store {
	out := make([]element.Store, len(m.snapshots))
	copy(out, m.snapshots)
	return out
}

// Commit records s as a new discrete entry.
func (m *Manager) Commit(s element.Store) {
	m.inGesture = false
	m.push(s)
}

// BeginGesture records s as a new entry that following UpdateGesture calls
// will overwrite.
func (m *Manager) BeginGesture(s element.Store) {
	m.push(s)
	m.inGesture = true
}

// UpdateGesture overwrites the open gesture entry with s.
func (m *Manager) UpdateGesture(s element.Store) error {
	if !m.inGesture {
		return ErrNoGesture
	}
	m.snapshots[m.cursor] = s
	return nil
}

// EndGesture writes the final state of the gesture and seals its entry.
func (m *Manager) EndGesture(s element.Store) error {
	if err := m.UpdateGesture(s); err != nil {
		return err
	}
	m.inGesture = false
	return nil
}

// Seal closes an open gesture keeping whatever it last wrote.
func (m *Manager) Seal() { m.inGesture = false }

// CanUndo reports whether Undo would move the cursor.
func (m *Manager) CanUndo() bool { return m.cursor > 0 }

// CanRedo reports whether Redo would move the cursor.
func (m *Manager) CanRedo() bool { return m.cursor < len(m.snapshots)-1 }

// Undo steps the cursor back. At the oldest entry it does nothing and
// returns false.
func (m *Manager) Undo() bool {
	m.Seal()
	if !m.CanUndo() {
		return false
	}
	m.cursor--
	return true
}

// Redo steps the cursor forward. At the newest entry it does nothing and
// returns false.
func (m *Manager) Redo() bool {
	m.Seal()
	if !m.CanRedo() {
		return false
	}
	m.cursor++
	return true
}

func (m *Manager) push(s element.Store) {
	m.snapshots = append(m.snapshots[:m.cursor+1], s)
	m.cursor++
	if m.limit > 0 && len(m.snapshots) > m.limit {
		drop := len(m.snapshots) - m.limit
		m.snapshots = append([]element.Store(nil), m.snapshots[drop:]...)
		m.cursor -= drop
	}
}
