package ui

import (
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"SketchBoard/internal/geometry"
	"SketchBoard/internal/session"
)

// BoardWidget is the drawing area. It forwards pointer input to OnEvent
// and shows whatever the session paints on it.
type BoardWidget struct {
	widget.BaseWidget

	// OnEvent receives every input event, usually a session's Post.
	OnEvent func(session.Event)

	mu     sync.Mutex
	frame  []fyne.CanvasObject // being painted
	shown  []fyne.CanvasObject
	cursor desktop.Cursor

	pressed bool
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)
var _ desktop.Hoverable = (*BoardWidget)(nil)
var _ desktop.Cursorable = (*BoardWidget)(nil)

func NewBoardWidget() *BoardWidget {
	b := &BoardWidget{cursor: desktop.DefaultCursor}
	b.ExtendBaseWidget(b)
	return b
}

func (b *BoardWidget) post(ev session.Event) {
	if b.OnEvent != nil {
		b.OnEvent(ev)
	}
}

func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	b.pressed = true
	b.post(session.PointerDown{X: float64(e.Position.X), Y: float64(e.Position.Y)})
}

func (b *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	b.release()
}

func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	b.post(session.PointerMove{X: float64(e.Position.X), Y: float64(e.Position.Y)})
}

// DragEnd can arrive before or after MouseUp depending on the driver; only
// the first one ends the gesture.
func (b *BoardWidget) DragEnd() {
	b.release()
}

func (b *BoardWidget) release() {
	if !b.pressed {
		return
	}
	b.pressed = false
	b.post(session.PointerUp{})
}

func (b *BoardWidget) MouseIn(*desktop.MouseEvent) {}

// MouseMoved covers hovering. Moves with the button held come in through
// Dragged.
func (b *BoardWidget) MouseMoved(e *desktop.MouseEvent) {
	if b.pressed {
		return
	}
	b.post(session.PointerMove{X: float64(e.Position.X), Y: float64(e.Position.Y)})
}

func (b *BoardWidget) MouseOut() {}

// SetCursor implements session.CursorSurface. Desktop drivers have no
// diagonal resize cursors, so both corners share the crosshair.
func (b *BoardWidget) SetCursor(c geometry.Cursor) {
	var dc desktop.Cursor
	switch c {
	case geometry.CursorMove:
		dc = desktop.PointerCursor
	case geometry.CursorNWSE, geometry.CursorNESW:
		dc = desktop.CrosshairCursor
	default:
		dc = desktop.DefaultCursor
	}
	b.mu.Lock()
	b.cursor = dc
	b.mu.Unlock()
}

func (b *BoardWidget) Cursor() desktop.Cursor {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cursor
}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &boardWidgetRenderer{board: b}
	r.background = canvas.NewRectangle(color.White)
	return r
}

type boardWidgetRenderer struct {
	board      *BoardWidget
	background *canvas.Rectangle
}

func (r *boardWidgetRenderer) Objects() []fyne.CanvasObject {
	r.board.mu.Lock()
	defer r.board.mu.Unlock()
	objects := make([]fyne.CanvasObject, 0, len(r.board.shown)+1)
	objects = append(objects, r.background)
	return append(objects, r.board.shown...)
}

func (r *boardWidgetRenderer) Refresh() {
	r.background.Refresh()
	canvas.Refresh(r.board)
}

func (r *boardWidgetRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)
}

func (r *boardWidgetRenderer) MinSize() fyne.Size {
	return fyne.NewSize(300, 300)
}

func (r *boardWidgetRenderer) Destroy() {}
