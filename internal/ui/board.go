package ui

import (
	"image/color"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"

	"SketchBoard/internal/geometry"
)

// The session paints from its own goroutine. Strokes and fills collect in
// frame and Flush swaps the finished frame in on the UI thread.

var ink color.Color = color.NRGBA{A: 255}

const strokeWidth = 2

func (b *BoardWidget) Clear() {
	b.mu.Lock()
	b.frame = nil
	b.mu.Unlock()
}

func (b *BoardWidget) StrokePath(points []geometry.Point, closed bool) {
	if len(points) == 0 {
		return
	}
	if closed {
		points = append(append([]geometry.Point(nil), points...), points[0])
	}
	lines := make([]fyne.CanvasObject, 0, len(points))
	for i := 1; i < len(points); i++ {
		line := canvas.NewLine(ink)
		line.StrokeWidth = strokeWidth
		line.Position1 = toPos(points[i-1])
		line.Position2 = toPos(points[i])
		lines = append(lines, line)
	}
	b.mu.Lock()
	b.frame = append(b.frame, lines...)
	b.mu.Unlock()
}

func (b *BoardWidget) FillPath(points []geometry.Point) {
	if len(points) < 3 {
		return
	}
	obj := fillObject(points)
	b.mu.Lock()
	b.frame = append(b.frame, obj)
	b.mu.Unlock()
}

// Flush implements render.Flusher.
func (b *BoardWidget) Flush() {
	b.mu.Lock()
	b.shown = b.frame
	b.frame = nil
	b.mu.Unlock()
	fyne.Do(b.Refresh)
}

func toPos(p geometry.Point) fyne.Position {
	return fyne.NewPos(float32(p.X), float32(p.Y))
}

// fillObject rasterises a polygon over its bounding box.
func fillObject(points []geometry.Point) fyne.CanvasObject {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minX, minY = math.Min(minX, p.X), math.Min(minY, p.Y)
		maxX, maxY = math.Max(maxX, p.X), math.Max(maxY, p.Y)
	}
	w, h := maxX-minX, maxY-minY

	r := canvas.NewRasterWithPixels(func(px, py, pw, ph int) color.Color {
		if pw == 0 || ph == 0 {
			return color.Transparent
		}
		x := minX + (float64(px)+0.5)*w/float64(pw)
		y := minY + (float64(py)+0.5)*h/float64(ph)
		if insidePolygon(points, x, y) {
			return ink
		}
		return color.Transparent
	})
	r.Move(fyne.NewPos(float32(minX), float32(minY)))
	r.Resize(fyne.NewSize(float32(w), float32(h)))
	return r
}

// insidePolygon is the even-odd rule.
func insidePolygon(points []geometry.Point, x, y float64) bool {
	in := false
	j := len(points) - 1
	for i := range points {
		pi, pj := points[i], points[j]
		if (pi.Y > y) != (pj.Y > y) && x < (pj.X-pi.X)*(y-pi.Y)/(pj.Y-pi.Y)+pi.X {
			in = !in
		}
		j = i
	}
	return in
}
