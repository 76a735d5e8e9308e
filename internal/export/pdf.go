package export

import (
	"fmt"
	"io"
	"math"

	"github.com/jung-kurt/gofpdf"

	"SketchBoard/internal/element"
	"SketchBoard/internal/geometry"
	"SketchBoard/internal/render"
)

// pxPerMM maps canvas pixels to PDF millimetres.
const pxPerMM = 3.0

// PDFSurface draws on a gofpdf document. It implements render.Surface.
type PDFSurface struct {
	pdf *gofpdf.Fpdf
}

// NewPDFSurface starts an A4 landscape document.
func NewPDFSurface() *PDFSurface {
	p := gofpdf.New("L", "mm", "A4", "")
	p.SetDrawColor(0, 128, 0)
	p.SetFillColor(0, 0, 0)
	p.SetLineWidth(0.5)
	return &PDFSurface{pdf: p}
}

// Clear starts a fresh page.
func (s *PDFSurface) Clear() {
	s.pdf.AddPage()
}

func (s *PDFSurface) StrokePath(points []geometry.Point, closed bool) {
	if len(points) == 0 {
		return
	}
	if closed {
		s.pdf.Polygon(toPDF(points), "D")
		return
	}
	pts := toPDF(points)
	for i := 1; i < len(pts); i++ {
		s.pdf.Line(pts[i-1].X, pts[i-1].Y, pts[i].X, pts[i].Y)
	}
}

func (s *PDFSurface) FillPath(points []geometry.Point) {
	if len(points) == 0 {
		return
	}
	s.pdf.Polygon(toPDF(points), "F")
}

// Write finishes the document into path.
func (s *PDFSurface) Write(path string) error {
	if s.pdf.PageCount() == 0 {
		s.pdf.AddPage()
	}
	if err := s.pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf %s: %w", path, err)
	}
	return nil
}

// Output finishes the document into w.
func (s *PDFSurface) Output(w io.Writer) error {
	if s.pdf.PageCount() == 0 {
		s.pdf.AddPage()
	}
	if err := s.pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func toPDF(points []geometry.Point) []gofpdf.PointType {
	out := make([]gofpdf.PointType, len(points))
	for i, p := range points {
		out[i] = gofpdf.PointType{X: p.X / pxPerMM, Y: p.Y / pxPerMM}
	}
	return out
}

// ExportPDF renders elements into a one page PDF at path. The drawing is
// shifted so its top-left element corner sits at the page margin.
func ExportPDF(path string, elements []element.Element) error {
	s := NewPDFSurface()
	render.Paint(s, shiftToOrigin(elements, 10*pxPerMM))
	return s.Write(path)
}

// WritePDF is ExportPDF for an open writer, such as a file picked in a
// save dialog.
func WritePDF(w io.Writer, elements []element.Element) error {
	s := NewPDFSurface()
	render.Paint(s, shiftToOrigin(elements, 10*pxPerMM))
	return s.Output(w)
}

func shiftToOrigin(elements []element.Element, margin float64) []element.Element {
	minX, minY := math.Inf(1), math.Inf(1)
	for _, e := range elements {
		for _, p := range e.Drawable().Path {
			minX, minY = math.Min(minX, p.X), math.Min(minY, p.Y)
		}
	}
	if math.IsInf(minX, 1) {
		return elements
	}
	dx, dy := margin-minX, margin-minY
	out := make([]element.Element, len(elements))
	for i, e := range elements {
		if e.Type == element.KindFreedraw {
			pts := make([]geometry.Point, len(e.Points))
			for j, p := range e.Points {
				pts[j] = geometry.Point{X: p.X + dx, Y: p.Y + dy}
			}
			out[i] = e.WithPoints(pts)
			continue
		}
		c := e.Coords().Translate(dx, dy)
		e.X1, e.Y1, e.X2, e.Y2 = c.X1, c.Y1, c.X2, c.Y2
		out[i] = e
	}
	return out
}
