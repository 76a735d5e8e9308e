package render

import (
	"SketchBoard/internal/element"
	"SketchBoard/internal/geometry"
)

// Surface is a 2D drawing target.
type Surface interface {
	Clear()
	// StrokePath draws the outline through points, back to the first
	// point when closed is set.
	StrokePath(points []geometry.Point, closed bool)
	// FillPath fills the polygon described by points.
	FillPath(points []geometry.Point)
}

// Flusher is implemented by surfaces that buffer a frame and present it
// once Paint has drawn every element.
type Flusher interface {
	Flush()
}

// Paint clears s and draws every element once, oldest first, so newer
// elements end up on top.
func Paint(s Surface, elements []element.Element) {
	s.Clear()
	for _, e := range elements {
		d := e.Drawable()
		if len(d.Path) == 0 {
			continue
		}
		if d.Fill {
			s.FillPath(d.Path)
		} else {
			s.StrokePath(d.Path, d.Closed)
		}
	}
	if f, ok := s.(Flusher); ok {
		f.Flush()
	}
}

// Recorder is a Surface that keeps the calls made to it.
type Recorder struct {
	Clears  int
	Strokes [][]geometry.Point
	Fills   [][]geometry.Point
	Flushes int
}

func (r *Recorder) Clear() {
	r.Clears++
	r.Strokes = nil
	r.Fills = nil
}

func (r *Recorder) StrokePath(points []geometry.Point, closed bool) {
	if closed {
		points = append(append([]geometry.Point(nil), points...), points[0])
	}
	r.Strokes = append(r.Strokes, points)
}

func (r *Recorder) FillPath(points []geometry.Point) {
	r.Fills = append(r.Fills, points)
}

func (r *Recorder) Flush() { r.Flushes++ }

// Drawn returns how many elements the last Paint produced.
func (r *Recorder) Drawn() int { return len(r.Strokes) + len(r.Fills) }
