package element

import (
	"fmt"
	"sort"
)

// Store is the ordered element sequence of one canvas. A Store is a value:
// every mutator returns a new Store and leaves the receiver untouched, so a
// history can hold Stores by reference without copying them. The zero Store
// is empty and ready to use.
type Store struct {
	elements []Element
	nextID   ID
}

// NewStore builds a store from elements in creation order. Ids must be
// strictly increasing and every kind recognized, which holds for anything
// this package produced; it exists to validate deserialized data.
func NewStore(elements []Element) (Store, error) {
	s := Store{elements: make([]Element, 0, len(elements))}
	for i, e := range elements {
		if _, err := ParseKind(string(e.Type)); err != nil {
			return Store{}, fmt.Errorf("element %d: %w", e.ID, err)
		}
		if i > 0 && e.ID <= elements[i-1].ID {
			return Store{}, fmt.Errorf("element %d out of order after %d", e.ID, elements[i-1].ID)
		}
		s.elements = append(s.elements, e.Clone())
		s.nextID = e.ID + 1
	}
	return s, nil
}

// Len returns the number of elements.
func (s Store) Len() int { return len(s.elements) }

// NextID is the id the next appended element will get.
func (s Store) NextID() ID { return s.nextID }

// Elements returns the elements in creation order. The slice is a copy;
// point slices are shared but no Store ever writes to them.
func (s Store) Elements() []Element {
	out := make([]Element, len(s.elements))
	copy(out, s.elements)
	return out
}

// Last returns the most recently created element.
func (s Store) Last() (Element, bool) {
	if len(s.elements) == 0 {
		return Element{}, false
	}
	return s.elements[len(s.elements)-1], true
}

func (s Store) index(id ID) (int, error) {
	i := sort.Search(len(s.elements), func(i int) bool { return s.elements[i].ID >= id })
	if i == len(s.elements) || s.elements[i].ID != id {
		return 0, fmt.Errorf("%w: %d", ErrStoreIndexOutOfRange, id)
	}
	return i, nil
}

// Get returns the element with the given id.
func (s Store) Get(id ID) (Element, error) {
	i, err := s.index(id)
	if err != nil {
		return Element{}, err
	}
	return s.elements[i], nil
}

// Append creates a kind k element with both endpoints at (x,y) under the
// next id and returns the grown store with it.
func (s Store) Append(k Kind, x, y float64) (Store, Element, error) {
	e, err := Create(s.nextID, x, y, x, y, k)
	if err != nil {
		return s, Element{}, err
	}
	next := Store{
		elements: make([]Element, len(s.elements), len(s.elements)+1),
		nextID:   s.nextID + 1,
	}
	copy(next.elements, s.elements)
	next.elements = append(next.elements, e)
	return next, e, nil
}

// Replace swaps in e for the element with the same id.
func (s Store) Replace(e Element) (Store, error) {
	i, err := s.index(e.ID)
	if err != nil {
		return s, err
	}
	next := Store{elements: s.Elements(), nextID: s.nextID}
	next.elements[i] = e
	return next, nil
}

// Update applies new geometry to element id. Lines and rectangles are
// rebuilt from the endpoints. Freedraw strokes only grow: (x2,y2) is
// appended and (x1,y1) is ignored. An element of another kind is replaced
// by a new stroke from (x1,y1) to (x2,y2).
func (s Store) Update(id ID, x1, y1, x2, y2 float64, k Kind) (Store, Element, error) {
	cur, err := s.Get(id)
	if err != nil {
		return s, Element{}, err
	}
	var e Element
	switch k {
	case KindLine, KindRectangle:
		e, err = Create(id, x1, y1, x2, y2, k)
		if err != nil {
			return s, Element{}, err
		}
	case KindFreedraw:
		if cur.Type != KindFreedraw {
			cur = NewFreedraw(id, x1, y1)
		}
		e = cur.WithPoint(x2, y2)
	default:
		return s, Element{}, fmt.Errorf("update element %d: %w %q", id, ErrUnrecognizedElementType, k)
	}
	next, err := s.Replace(e)
	return next, e, err
}
