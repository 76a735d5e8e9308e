package session

import (
	"context"
	"errors"
	"log"

	"SketchBoard/internal/broadcast"
	"SketchBoard/internal/element"
	"SketchBoard/internal/geometry"
	"SketchBoard/internal/history"
	"SketchBoard/internal/interaction"
	"SketchBoard/internal/render"
)

// Event is one input to a session's loop.
type Event interface{ isEvent() }

type (
	PointerDown struct{ X, Y float64 }
	PointerMove struct{ X, Y float64 }
	PointerUp   struct{}
	SelectTool  struct{ Tool interaction.Tool }
	Undo        struct{}
	Redo        struct{}
	// Remote is a message that arrived on the real-time channel.
	Remote struct{ Msg broadcast.Message }

	snapshot struct{ reply chan history.Document }
)

func (PointerDown) isEvent() {}
func (PointerMove) isEvent() {}
func (PointerUp) isEvent()   {}
func (SelectTool) isEvent()  {}
func (Undo) isEvent()        {}
func (Redo) isEvent()        {}
func (Remote) isEvent()      {}
func (snapshot) isEvent()    {}

// ErrStopped is returned when a request reaches a session whose loop has
// exited.
var ErrStopped = errors.New("session stopped")

// CursorSurface is implemented by surfaces that can show a pointer cursor.
type CursorSurface interface {
	SetCursor(geometry.Cursor)
}

// Saver persists a canvas history.
type Saver interface {
	Save(ctx context.Context, canvasID string, doc history.Document) error
}

// Options configure a Session.
type Options struct {
	CanvasID string
	// History to resume; a fresh one is started when nil.
	History *history.Manager
	Channel broadcast.Channel
	Surface render.Surface
	Saver   Saver
}

// Session is one client's editing session on one canvas. All state is
// owned by the goroutine running Run; other goroutines talk to it through
// Post, which keeps the core free of locks.
type Session struct {
	canvasID string
	history  *history.Manager
	machine  *interaction.Machine
	bc       *broadcast.Broadcaster
	surface  render.Surface
	saver    Saver

	events chan Event
	done   chan struct{}
}

// New builds a session. Call Run to start processing events.
func New(opts Options) *Session {
	h := opts.History
	if h == nil {
		h = history.New(element.Store{})
	}
	surface := opts.Surface
	if surface == nil {
		surface = &render.Recorder{}
	}
	return &Session{
		canvasID: opts.CanvasID,
		history:  h,
		machine:  interaction.New(h),
		bc:       broadcast.New(opts.CanvasID, opts.Channel),
		surface:  surface,
		saver:    opts.Saver,
		events:   make(chan Event, 256),
		done:     make(chan struct{}),
	}
}

func (s *Session) CanvasID() string                    { return s.canvasID }
func (s *Session) Origin() string                      { return s.bc.Origin() }
func (s *Session) History() *history.Manager           { return s.history }
func (s *Session) Machine() *interaction.Machine       { return s.machine }
func (s *Session) Broadcaster() *broadcast.Broadcaster { return s.bc }

// Post queues ev for the loop. It drops the event if the loop has exited.
func (s *Session) Post(ev Event) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

// Run paints the current canvas and processes events until ctx ends.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.done)
	render.Paint(s.surface, s.history.Current().Elements())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-s.events:
			s.Dispatch(ctx, ev)
		}
	}
}

// Dispatch handles one event. Only the goroutine running Run may call it,
// or any goroutine when no loop is running.
func (s *Session) Dispatch(ctx context.Context, ev Event) {
	var (
		changed bool
		err     error
	)
	switch ev := ev.(type) {
	case PointerDown:
		changed, err = s.machine.PointerDown(ev.X, ev.Y)
	case PointerMove:
		var cur geometry.Cursor
		cur, changed, err = s.machine.PointerMove(ev.X, ev.Y)
		if cs, ok := s.surface.(CursorSurface); ok {
			cs.SetCursor(cur)
		}
	case PointerUp:
		changed, err = s.machine.PointerUp()
	case SelectTool:
		changed, err = s.machine.SetTool(ev.Tool)
	case Undo:
		changed, err = s.machine.Undo()
	case Redo:
		changed, err = s.machine.Redo()
	case Remote:
		s.receive(ev.Msg)
		return
	case snapshot:
		ev.reply <- history.ToDocument(s.history)
		return
	}
	if err != nil {
		log.Printf("[SESSION] %s: gesture aborted: %v", s.canvasID, err)
	}
	if changed {
		s.publish(ctx)
	}
}

// publish renders the local state, then sends it.
func (s *Session) publish(ctx context.Context) {
	elements := s.history.Current().Elements()
	render.Paint(s.surface, elements)
	if err := s.bc.Emit(ctx, elements); err != nil {
		log.Printf("[SESSION] %s: broadcast failed: %v", s.canvasID, err)
	}
}

// receive renders a remote snapshot. History is left alone.
func (s *Session) receive(msg broadcast.Message) {
	elements, ok, err := s.bc.Receive(msg)
	if err != nil {
		log.Printf("[SESSION] %s: dropped remote update: %v", s.canvasID, err)
		return
	}
	if ok {
		render.Paint(s.surface, elements)
	}
}

// Document returns the history in wire form. It goes through the loop so
// it is safe to call from any goroutine while Run is active.
func (s *Session) Document(ctx context.Context) (history.Document, error) {
	reply := make(chan history.Document, 1)
	select {
	case s.events <- snapshot{reply: reply}:
	case <-s.done:
		return history.Document{}, ErrStopped
	case <-ctx.Done():
		return history.Document{}, ctx.Err()
	}
	select {
	case doc := <-reply:
		return doc, nil
	case <-s.done:
		return history.Document{}, ErrStopped
	case <-ctx.Done():
		return history.Document{}, ctx.Err()
	}
}

// Save hands the current history to the configured Saver.
func (s *Session) Save(ctx context.Context) error {
	if s.saver == nil {
		return nil
	}
	doc, err := s.Document(ctx)
	if err != nil {
		return err
	}
	if err := s.saver.Save(ctx, s.canvasID, doc); err != nil {
		return err
	}
	log.Printf("[SESSION] %s: saved %d snapshots at %d", s.canvasID, len(doc.History), doc.Index)
	return nil
}
