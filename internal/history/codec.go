package history

import (
	"encoding/json"
	"errors"
	"fmt"

	"SketchBoard/internal/element"
)

// ErrInvalidCursor is returned when a serialized history points outside
// its own snapshots.
var ErrInvalidCursor = errors.New("history cursor out of range")

// Document is the wire form of a history, as exchanged with the canvas
// persistence API.
type Document struct {
	History [][]element.Element `json:"history"`
	Index   int                 `json:"index"`
}

// ToDocument converts m to its wire form.
func ToDocument(m *Manager) Document {
	doc := Document{History: make([][]element.Element, len(m.snapshots)), Index: m.cursor}
	for i, s := range m.snapshots {
		doc.History[i] = s.Elements()
	}
	return doc
}

// FromDocument rebuilds a Manager, validating every element kind and the
// cursor. An empty document gives a fresh history.
func FromDocument(doc Document, opts ...Option) (*Manager, error) {
	if len(doc.History) == 0 {
		if doc.Index != 0 {
			return nil, fmt.Errorf("%w: %d of 0", ErrInvalidCursor, doc.Index)
		}
		return New(element.Store{}, opts...), nil
	}
	if doc.Index < 0 || doc.Index >= len(doc.History) {
		return nil, fmt.Errorf("%w: %d of %d", ErrInvalidCursor, doc.Index, len(doc.History))
	}
	m := &Manager{snapshots: make([]element.Store, len(doc.History)), cursor: doc.Index}
	for i, els := range doc.History {
		s, err := element.NewStore(els)
		if err != nil {
			return nil, fmt.Errorf("snapshot %d: %w", i, err)
		}
		m.snapshots[i] = s
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Marshal serializes m.
func Marshal(m *Manager) ([]byte, error) {
	return json.Marshal(ToDocument(m))
}

// Unmarshal parses a history produced by Marshal.
func Unmarshal(data []byte, opts ...Option) (*Manager, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return FromDocument(doc, opts...)
}
