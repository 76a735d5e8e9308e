package element

import (
	"errors"
	"fmt"

	"SketchBoard/internal/geometry"
)

var (
	// ErrUnrecognizedElementType is returned when a kind tag is outside
	// {line, rectangle, freedraw}. It signals a defect in the caller or
	// malformed input from the wire, never a user mistake.
	ErrUnrecognizedElementType = errors.New("unrecognized element type")
	// ErrStoreIndexOutOfRange is returned when an id is not in the store.
	ErrStoreIndexOutOfRange = errors.New("element id not in store")
)

// Kind tags an Element variant.
type Kind string

const (
	KindLine      Kind = "line"
	KindRectangle Kind = "rectangle"
	KindFreedraw  Kind = "freedraw"
)

// ParseKind validates a kind tag coming from outside the process.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindLine, KindRectangle, KindFreedraw:
		return k, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnrecognizedElementType, s)
}

// NeedsNormalization reports whether coordinates of k are order sensitive
// and should be normalized when a drawing or resizing gesture ends.
func NeedsNormalization(k Kind) bool {
	return k == KindLine || k == KindRectangle
}

// ID identifies an element for the life of its canvas. Ids come from a
// per-store counter and are never reused.
type ID int

// Element is one drawable primitive. Line and rectangle use the coordinate
// fields; freedraw uses Points.
type Element struct {
	ID     ID               `json:"id"`
	Type   Kind             `json:"type"`
	X1     float64          `json:"x1,omitempty"`
	Y1     float64          `json:"y1,omitempty"`
	X2     float64          `json:"x2,omitempty"`
	Y2     float64          `json:"y2,omitempty"`
	Points []geometry.Point `json:"points,omitempty"`
}

// NewLine builds a line element.
func NewLine(id ID, c geometry.Coords) Element {
	return Element{ID: id, Type: KindLine, X1: c.X1, Y1: c.Y1, X2: c.X2, Y2: c.Y2}
}

// NewRectangle builds a rectangle element from two opposite corners.
func NewRectangle(id ID, c geometry.Coords) Element {
	return Element{ID: id, Type: KindRectangle, X1: c.X1, Y1: c.Y1, X2: c.X2, Y2: c.Y2}
}

// NewFreedraw starts a single point stroke.
func NewFreedraw(id ID, x, y float64) Element {
	return Element{ID: id, Type: KindFreedraw, Points: []geometry.Point{{X: x, Y: y}}}
}

// Create builds an element of kind k. Freedraw ignores (x2,y2) and starts
// a stroke at (x1,y1).
func Create(id ID, x1, y1, x2, y2 float64, k Kind) (Element, error) {
	c := geometry.Coords{X1: x1, Y1: y1, X2: x2, Y2: y2}
	switch k {
	case KindLine:
		return NewLine(id, c), nil
	case KindRectangle:
		return NewRectangle(id, c), nil
	case KindFreedraw:
		return NewFreedraw(id, x1, y1), nil
	}
	return Element{}, fmt.Errorf("create element %d: %w %q", id, ErrUnrecognizedElementType, k)
}

// Coords returns the defining corners of a line or rectangle.
func (e Element) Coords() geometry.Coords {
	return geometry.Coords{X1: e.X1, Y1: e.Y1, X2: e.X2, Y2: e.Y2}
}

// WithPoint returns a copy of a freedraw element with (x,y) appended.
// The receiver's point slice is never written to.
func (e Element) WithPoint(x, y float64) Element {
	pts := make([]geometry.Point, len(e.Points), len(e.Points)+1)
	copy(pts, e.Points)
	e.Points = append(pts, geometry.Point{X: x, Y: y})
	return e
}

// WithPoints returns a copy of e whose stroke is replaced by pts.
func (e Element) WithPoints(pts []geometry.Point) Element {
	e.Points = append([]geometry.Point(nil), pts...)
	return e
}

// Clone returns a deep copy of e.
func (e Element) Clone() Element {
	if e.Points != nil {
		e.Points = append([]geometry.Point(nil), e.Points...)
	}
	return e
}

// Normalize returns the coordinates of e reordered for its kind without
// changing the rendered shape. Freedraw coordinates are returned as is.
func Normalize(e Element) geometry.Coords {
	switch e.Type {
	case KindRectangle:
		return geometry.NormalizeRect(e.Coords())
	case KindLine:
		return geometry.NormalizeLine(e.Coords())
	}
	return e.Coords()
}

// Position locates (x,y) on e.
func (e Element) Position(x, y float64) geometry.Position {
	switch e.Type {
	case KindRectangle:
		return geometry.PositionInRect(x, y, e.Coords())
	case KindLine:
		return geometry.PositionOnLine(x, y, e.Coords())
	case KindFreedraw:
		return geometry.PositionOnPolyline(x, y, e.Points)
	}
	return geometry.None
}

// Hit is the result of a successful hit test.
type Hit struct {
	Element  Element
	Position geometry.Position
}

// HitTest returns the most recently created element under (x,y).
func HitTest(x, y float64, elements []Element) (Hit, bool) {
	for i := len(elements) - 1; i >= 0; i-- {
		if pos := elements[i].Position(x, y); pos != geometry.None {
			return Hit{Element: elements[i], Position: pos}, true
		}
	}
	return Hit{}, false
}
