package element

import (
	"math"

	"SketchBoard/internal/geometry"
)

// StrokeSize is the diameter of a rendered freehand stroke.
const StrokeSize = 10.0

// Drawable is the render descriptor derived from an element's geometry.
// It is recomputed on every call and never stored or sent over the wire.
type Drawable struct {
	Fill   bool // fill Path as a polygon instead of stroking it
	Closed bool
	Path   []geometry.Point
}

// Drawable derives the render descriptor for e.
func (e Element) Drawable() Drawable {
	switch e.Type {
	case KindLine:
		return Drawable{Path: []geometry.Point{{X: e.X1, Y: e.Y1}, {X: e.X2, Y: e.Y2}}}
	case KindRectangle:
		return Drawable{Closed: true, Path: []geometry.Point{
			{X: e.X1, Y: e.Y1},
			{X: e.X2, Y: e.Y1},
			{X: e.X2, Y: e.Y2},
			{X: e.X1, Y: e.Y2},
		}}
	case KindFreedraw:
		return Drawable{Fill: true, Closed: true, Path: strokeOutline(e.Points, StrokeSize/2)}
	}
	return Drawable{}
}

// strokeOutline turns a centre line into a closed polygon of half width r:
// the left offsets walked forward followed by the right offsets walked back.
func strokeOutline(points []geometry.Point, r float64) []geometry.Point {
	pts := dedupe(points)
	switch len(pts) {
	case 0:
		return nil
	case 1:
		return circle(pts[0], r, 12)
	}

	left := make([]geometry.Point, len(pts))
	right := make([]geometry.Point, len(pts))
	for i, p := range pts {
		prev, next := pts[max(i-1, 0)], pts[min(i+1, len(pts)-1)]
		dx, dy := next.X-prev.X, next.Y-prev.Y
		l := math.Hypot(dx, dy)
		nx, ny := -dy/l*r, dx/l*r
		left[i] = geometry.Point{X: p.X + nx, Y: p.Y + ny}
		right[i] = geometry.Point{X: p.X - nx, Y: p.Y - ny}
	}

	outline := make([]geometry.Point, 0, 2*len(pts))
	outline = append(outline, left...)
	for i := len(right) - 1; i >= 0; i-- {
		outline = append(outline, right[i])
	}
	return outline
}

func dedupe(points []geometry.Point) []geometry.Point {
	out := make([]geometry.Point, 0, len(points))
	for _, p := range points {
		if len(out) > 0 && out[len(out)-1] == p {
			continue
		}
		out = append(out, p)
	}
	return out
}

func circle(c geometry.Point, r float64, n int) []geometry.Point {
	pts := make([]geometry.Point, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = geometry.Point{X: c.X + r*math.Cos(a), Y: c.Y + r*math.Sin(a)}
	}
	return pts
}
