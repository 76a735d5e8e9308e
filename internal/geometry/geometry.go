package geometry

import "math"

// Tolerance is the pixel distance within which a point counts as touching
// a handle, a line, or a freehand stroke.
const Tolerance = 5.0

// Point is a canvas position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Coords holds the two defining corners (or endpoints) of a line or rectangle.
type Coords struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Position says where on an element a point landed.
type Position string

const (
	None        Position = ""
	Inside      Position = "inside"
	TopLeft     Position = "tl"
	TopRight    Position = "tr"
	BottomLeft  Position = "bl"
	BottomRight Position = "br"
	Start       Position = "start"
	End         Position = "end"
)

// IsHandle reports whether p is a resize handle rather than the body.
func (p Position) IsHandle() bool {
	switch p {
	case TopLeft, TopRight, BottomLeft, BottomRight, Start, End:
		return true
	}
	return false
}

// Cursor is the pointer symbol shown while hovering.
type Cursor string

const (
	CursorDefault Cursor = "default"
	CursorMove    Cursor = "move"
	CursorNWSE    Cursor = "nwse-resize"
	CursorNESW    Cursor = "nesw-resize"
)

// CursorForPosition maps a hit position to the cursor that hints the drag it starts.
func CursorForPosition(p Position) Cursor {
	switch p {
	case TopLeft, BottomRight, Start, End:
		return CursorNWSE
	case TopRight, BottomLeft:
		return CursorNESW
	case Inside:
		return CursorMove
	}
	return CursorDefault
}

func nearPoint(x, y, px, py float64, name Position) Position {
	if math.Abs(x-px) <= Tolerance && math.Abs(y-py) <= Tolerance {
		return name
	}
	return None
}

// PositionInRect tests (x,y) against a rectangle given by two opposite corners
// in any order. Corner handles win over the interior.
func PositionInRect(x, y float64, c Coords) Position {
	if p := nearPoint(x, y, c.X1, c.Y1, TopLeft); p != None {
		return p
	}
	if p := nearPoint(x, y, c.X2, c.Y1, TopRight); p != None {
		return p
	}
	if p := nearPoint(x, y, c.X1, c.Y2, BottomLeft); p != None {
		return p
	}
	if p := nearPoint(x, y, c.X2, c.Y2, BottomRight); p != None {
		return p
	}
	minX, maxX := math.Min(c.X1, c.X2), math.Max(c.X1, c.X2)
	minY, maxY := math.Min(c.Y1, c.Y2), math.Max(c.Y1, c.Y2)
	if x >= minX && x <= maxX && y >= minY && y <= maxY {
		return Inside
	}
	return None
}

// PositionOnLine tests (x,y) against the segment (x1,y1)-(x2,y2).
func PositionOnLine(x, y float64, c Coords) Position {
	if p := nearPoint(x, y, c.X1, c.Y1, Start); p != None {
		return p
	}
	if p := nearPoint(x, y, c.X2, c.Y2, End); p != None {
		return p
	}
	if SegmentDistance(Point{x, y}, Point{c.X1, c.Y1}, Point{c.X2, c.Y2}) <= Tolerance {
		return Inside
	}
	return None
}

// PositionOnPolyline tests (x,y) against a freehand stroke. Strokes have no
// handles, so the result is Inside or None.
func PositionOnPolyline(x, y float64, points []Point) Position {
	p := Point{x, y}
	switch len(points) {
	case 0:
		return None
	case 1:
		if Distance(p, points[0]) <= Tolerance {
			return Inside
		}
		return None
	}
	for i := 1; i < len(points); i++ {
		if SegmentDistance(p, points[i-1], points[i]) <= Tolerance {
			return Inside
		}
	}
	return None
}

// Distance is the euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// SegmentDistance is the shortest distance from p to the segment a-b.
func SegmentDistance(p, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return Distance(p, a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return Distance(p, Point{a.X + t*dx, a.Y + t*dy})
}

// ResizedCoords moves the corner named by pos to (x,y) and keeps the
// opposite corner anchored. Unknown positions return orig unchanged.
func ResizedCoords(x, y float64, pos Position, orig Coords) Coords {
	switch pos {
	case TopLeft, Start:
		return Coords{X1: x, Y1: y, X2: orig.X2, Y2: orig.Y2}
	case TopRight:
		return Coords{X1: orig.X1, Y1: y, X2: x, Y2: orig.Y2}
	case BottomLeft:
		return Coords{X1: x, Y1: orig.Y1, X2: orig.X2, Y2: y}
	case BottomRight, End:
		return Coords{X1: orig.X1, Y1: orig.Y1, X2: x, Y2: y}
	}
	return orig
}

// NormalizeRect returns the same rectangle with x1<=x2 and y1<=y2.
func NormalizeRect(c Coords) Coords {
	return Coords{
		X1: math.Min(c.X1, c.X2),
		Y1: math.Min(c.Y1, c.Y2),
		X2: math.Max(c.X1, c.X2),
		Y2: math.Max(c.Y1, c.Y2),
	}
}

// NormalizeLine orders the endpoints so the start is the smaller point
// (x first, then y). The segment itself does not change.
func NormalizeLine(c Coords) Coords {
	if c.X1 < c.X2 || (c.X1 == c.X2 && c.Y1 <= c.Y2) {
		return c
	}
	return Coords{X1: c.X2, Y1: c.Y2, X2: c.X1, Y2: c.Y1}
}

// Translate shifts c by (dx,dy).
func (c Coords) Translate(dx, dy float64) Coords {
	return Coords{X1: c.X1 + dx, Y1: c.Y1 + dy, X2: c.X2 + dx, Y2: c.Y2 + dy}
}
