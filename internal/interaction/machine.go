package interaction

import (
	"fmt"

	"SketchBoard/internal/element"
	"SketchBoard/internal/geometry"
	"SketchBoard/internal/history"
)

// Mode is what the pointer is currently doing.
type Mode string

const (
	ModeIdle     Mode = "idle"
	ModeDrawing  Mode = "drawing"
	ModeMoving   Mode = "moving"
	ModeResizing Mode = "resizing"
)

// Tool is the active toolbar choice.
type Tool string

const (
	ToolLine      Tool = "line"
	ToolRectangle Tool = "rectangle"
	ToolFreedraw  Tool = "freedraw"
	ToolSelect    Tool = "select"
)

// ParseTool validates a tool name from the command line or a UI binding.
func ParseTool(s string) (Tool, error) {
	switch t := Tool(s); t {
	case ToolLine, ToolRectangle, ToolFreedraw, ToolSelect:
		return t, nil
	}
	return "", fmt.Errorf("unknown tool %q", s)
}

// kind maps a drawing tool to the element it creates.
func (t Tool) kind() (element.Kind, bool) {
	switch t {
	case ToolLine:
		return element.KindLine, true
	case ToolRectangle:
		return element.KindRectangle, true
	case ToolFreedraw:
		return element.KindFreedraw, true
	}
	return "", false
}

// selection is the element a gesture works on, as it was when grabbed.
type selection struct {
	grabbed  element.Element
	position geometry.Position
	// offset from the pointer to (x1,y1) for line and rectangle
	offset geometry.Point
	// offset from the pointer to every stroke point for freedraw
	offsets []geometry.Point
	// whether the gesture has an entry in history yet
	begun bool
}

// Machine turns pointer events into history commits. It holds no element
// state of its own; it reads and writes the canvas only through history.
type Machine struct {
	history *history.Manager
	mode    Mode
	tool    Tool
	sel     *selection
	cursor  geometry.Cursor
}

// New returns an idle machine with the line tool.
func New(h *history.Manager) *Machine {
	return &Machine{history: h, mode: ModeIdle, tool: ToolLine, cursor: geometry.CursorDefault}
}

func (m *Machine) Mode() Mode              { return m.mode }
func (m *Machine) Tool() Tool              { return m.tool }
func (m *Machine) Cursor() geometry.Cursor { return m.cursor }

// Selected returns the element under manipulation, as currently stored.
func (m *Machine) Selected() (element.Element, bool) {
	if m.sel == nil {
		return element.Element{}, false
	}
	e, err := m.history.Current().Get(m.sel.grabbed.ID)
	return e, err == nil
}

// SetTool switches tools, finishing any gesture in progress first.
func (m *Machine) SetTool(t Tool) (changed bool, err error) {
	if m.mode != ModeIdle {
		changed, err = m.PointerUp()
	}
	m.tool = t
	m.cursor = geometry.CursorDefault
	return changed, err
}

// PointerDown starts a gesture. It reports whether the canvas changed.
func (m *Machine) PointerDown(x, y float64) (bool, error) {
	var changed bool
	if m.mode != ModeIdle {
		// a missed pointer up; close the stale gesture before starting over
		c, err := m.PointerUp()
		if err != nil {
			return c, err
		}
		changed = c
	}

	if k, ok := m.tool.kind(); ok {
		s, e, err := m.history.Current().Append(k, x, y)
		if err != nil {
			return changed, err
		}
		m.history.BeginGesture(s)
		m.sel = &selection{grabbed: e, begun: true}
		m.mode = ModeDrawing
		return true, nil
	}

	hit, ok := element.HitTest(x, y, m.history.Current().Elements())
	if !ok {
		return changed, nil
	}
	sel := &selection{grabbed: hit.Element, position: hit.Position}
	if hit.Element.Type == element.KindFreedraw {
		sel.offsets = make([]geometry.Point, len(hit.Element.Points))
		for i, p := range hit.Element.Points {
			sel.offsets[i] = geometry.Point{X: x - p.X, Y: y - p.Y}
		}
	} else {
		sel.offset = geometry.Point{X: x - hit.Element.X1, Y: y - hit.Element.Y1}
	}
	m.sel = sel
	if hit.Position == geometry.Inside {
		m.mode = ModeMoving
	} else {
		m.mode = ModeResizing
	}
	m.cursor = geometry.CursorForPosition(hit.Position)
	return changed, nil
}

// PointerMove feeds a pointer position. When idle with the select tool it
// only updates the hover cursor. It returns the cursor to show and whether
// the canvas changed.
func (m *Machine) PointerMove(x, y float64) (geometry.Cursor, bool, error) {
	if m.mode == ModeIdle {
		if m.tool == ToolSelect {
			m.cursor = geometry.CursorDefault
			if hit, ok := element.HitTest(x, y, m.history.Current().Elements()); ok {
				m.cursor = geometry.CursorForPosition(hit.Position)
			}
		}
		return m.cursor, false, nil
	}

	next, err := m.step(x, y)
	if err != nil {
		m.abort()
		return m.cursor, false, err
	}
	if m.sel.begun {
		if err := m.history.UpdateGesture(next); err != nil {
			m.abort()
			return m.cursor, false, err
		}
	} else {
		m.history.BeginGesture(next)
		m.sel.begun = true
	}
	return m.cursor, true, nil
}

// step computes the store after moving the pointer to (x,y).
func (m *Machine) step(x, y float64) (element.Store, error) {
	cur := m.history.Current()
	g := m.sel.grabbed

	switch m.mode {
	case ModeDrawing:
		e, err := cur.Get(g.ID)
		if err != nil {
			return cur, err
		}
		next, _, err := cur.Update(e.ID, e.X1, e.Y1, x, y, e.Type)
		return next, err

	case ModeMoving:
		if g.Type == element.KindFreedraw {
			pts := make([]geometry.Point, len(m.sel.offsets))
			for i, o := range m.sel.offsets {
				pts[i] = geometry.Point{X: x - o.X, Y: y - o.Y}
			}
			return cur.Replace(g.WithPoints(pts))
		}
		c := g.Coords().Translate(x-m.sel.offset.X-g.X1, y-m.sel.offset.Y-g.Y1)
		next, _, err := cur.Update(g.ID, c.X1, c.Y1, c.X2, c.Y2, g.Type)
		return next, err

	case ModeResizing:
		c := geometry.ResizedCoords(x, y, m.sel.position, g.Coords())
		next, _, err := cur.Update(g.ID, c.X1, c.Y1, c.X2, c.Y2, g.Type)
		return next, err
	}
	return cur, fmt.Errorf("pointer move in mode %s", m.mode)
}

// PointerUp ends the gesture. Drawing and resizing of lines and rectangles
// normalize the coordinates as the gesture's final write; moving never
// reorders coordinates so it just seals.
func (m *Machine) PointerUp() (bool, error) {
	defer m.reset()
	if m.sel == nil || !m.sel.begun {
		return false, nil
	}

	if (m.mode == ModeDrawing || m.mode == ModeResizing) && element.NeedsNormalization(m.sel.grabbed.Type) {
		cur := m.history.Current()
		e, err := cur.Get(m.sel.grabbed.ID)
		if err != nil {
			m.history.Seal()
			return false, err
		}
		c := element.Normalize(e)
		next, _, err := cur.Update(e.ID, c.X1, c.Y1, c.X2, c.Y2, e.Type)
		if err != nil {
			m.history.Seal()
			return false, err
		}
		if err := m.history.EndGesture(next); err != nil {
			return false, err
		}
		return true, nil
	}

	m.history.Seal()
	return false, nil
}

// Undo finishes any gesture and steps history back.
func (m *Machine) Undo() (bool, error) {
	changed, err := m.PointerUp()
	if err != nil {
		return changed, err
	}
	return m.history.Undo() || changed, nil
}

// Redo finishes any gesture and steps history forward.
func (m *Machine) Redo() (bool, error) {
	changed, err := m.PointerUp()
	if err != nil {
		return changed, err
	}
	return m.history.Redo() || changed, nil
}

// abort drops the gesture without a final write. Whatever history holds
// for it stays as the sealed entry.
func (m *Machine) abort() {
	m.history.Seal()
	m.reset()
}

func (m *Machine) reset() {
	m.mode = ModeIdle
	m.sel = nil
	if m.tool != ToolSelect {
		m.cursor = geometry.CursorDefault
	}
}
