package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SketchBoard/internal/broadcast"
	"SketchBoard/internal/element"
	"SketchBoard/internal/geometry"
	"SketchBoard/internal/history"
	"SketchBoard/internal/interaction"
	"SketchBoard/internal/render"
)

// loopRelay delivers every message to every joined session, the sender
// included, the way a naive relay echoes.
type loopRelay struct {
	sessions []*Session
}

func (r *loopRelay) Send(ctx context.Context, msg broadcast.Message) error {
	for _, s := range r.sessions {
		s.Dispatch(ctx, Remote{Msg: msg})
	}
	return nil
}

type cursorRecorder struct {
	render.Recorder
	cursor geometry.Cursor
}

func (c *cursorRecorder) SetCursor(cur geometry.Cursor) { c.cursor = cur }

func TestRemoteUpdateRendersWithoutHistory(t *testing.T) {
	ctx := context.Background()
	relay := &loopRelay{}
	surfA, surfB := &render.Recorder{}, &render.Recorder{}
	a := New(Options{CanvasID: "board", Channel: relay, Surface: surfA})
	b := New(Options{CanvasID: "board", Channel: relay, Surface: surfB})
	relay.sessions = []*Session{a, b}

	a.Dispatch(ctx, SelectTool{Tool: interaction.ToolRectangle})
	a.Dispatch(ctx, PointerDown{X: 10, Y: 10})
	a.Dispatch(ctx, PointerMove{X: 60, Y: 40})
	a.Dispatch(ctx, PointerUp{})

	assert.Equal(t, 1, surfB.Drawn(), "B renders exactly one element")
	assert.Len(t, surfB.Strokes[0], 5)
	assert.Equal(t, 1, b.History().Len(), "B's history is untouched")
	assert.Equal(t, 0, b.History().Current().Len())

	assert.Equal(t, 1, surfA.Drawn(), "A is not repainted by its own echo")
	assert.Equal(t, 2, a.History().Len())
}

func TestRemoteForOtherCanvasIgnored(t *testing.T) {
	ctx := context.Background()
	surf := &render.Recorder{}
	s := New(Options{CanvasID: "mine", Surface: surf})

	s.Dispatch(ctx, Remote{Msg: broadcast.Message{
		Type:     broadcast.TypeUpdate,
		CanvasID: "theirs",
		Origin:   "x",
		Elements: []element.Element{element.NewLine(0, geometry.Coords{X2: 1})},
	}})
	assert.Equal(t, 0, surf.Clears)
}

func TestUndoRepaintsAndBroadcasts(t *testing.T) {
	ctx := context.Background()
	relay := &loopRelay{}
	surfA, surfB := &render.Recorder{}, &render.Recorder{}
	a := New(Options{CanvasID: "c", Channel: relay, Surface: surfA})
	b := New(Options{CanvasID: "c", Channel: relay, Surface: surfB})
	relay.sessions = []*Session{a, b}

	a.Dispatch(ctx, PointerDown{X: 0, Y: 0})
	a.Dispatch(ctx, PointerMove{X: 10, Y: 10})
	a.Dispatch(ctx, PointerUp{})
	require.Equal(t, 1, surfB.Drawn())

	a.Dispatch(ctx, Undo{})
	assert.Equal(t, 0, surfA.Drawn())
	assert.Equal(t, 0, surfB.Drawn(), "an emptied canvas is still broadcast")

	clears := surfA.Clears
	a.Dispatch(ctx, Undo{})
	assert.Equal(t, clears, surfA.Clears, "undo at the boundary does not repaint")
}

func TestHoverSetsCursor(t *testing.T) {
	ctx := context.Background()
	surf := &cursorRecorder{}
	s := New(Options{CanvasID: "c", Surface: surf})

	s.Dispatch(ctx, SelectTool{Tool: interaction.ToolRectangle})
	s.Dispatch(ctx, PointerDown{X: 10, Y: 10})
	s.Dispatch(ctx, PointerMove{X: 50, Y: 50})
	s.Dispatch(ctx, PointerUp{})
	s.Dispatch(ctx, SelectTool{Tool: interaction.ToolSelect})
	s.Dispatch(ctx, PointerMove{X: 30, Y: 30})

	assert.Equal(t, geometry.CursorMove, surf.cursor)
}

type memorySaver struct {
	mu   sync.Mutex
	docs map[string]history.Document
}

func (m *memorySaver) Save(_ context.Context, id string, doc history.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.docs == nil {
		m.docs = make(map[string]history.Document)
	}
	m.docs[id] = doc
	return nil
}

func (m *memorySaver) get(id string) (history.Document, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	return doc, ok
}

func TestRunLoopAndSave(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	saver := &memorySaver{}
	s := New(Options{CanvasID: "c", Saver: saver})

	errc := make(chan error, 1)
	go func() { errc <- s.Run(ctx) }()

	s.Post(SelectTool{Tool: interaction.ToolFreedraw})
	s.Post(PointerDown{X: 0, Y: 0})
	s.Post(PointerMove{X: 5, Y: 5})
	s.Post(PointerMove{X: 10, Y: 2})
	s.Post(PointerUp{})

	require.NoError(t, s.Save(ctx))
	doc, ok := saver.get("c")
	require.True(t, ok)
	assert.Equal(t, 1, doc.Index)
	require.Len(t, doc.History, 2)
	require.Len(t, doc.History[1], 1)
	assert.Len(t, doc.History[1][0].Points, 3)

	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)

	_, err := s.Document(context.Background())
	assert.ErrorIs(t, err, ErrStopped)
}

func TestAutosave(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	saver := &memorySaver{}
	s := New(Options{CanvasID: "auto", Saver: saver})
	go s.Run(ctx)

	_, err := StartAutosave(ctx, "not a schedule", s)
	assert.Error(t, err)

	_, err = StartAutosave(ctx, "@every 1s", s)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		_, ok := saver.get("auto")
		return ok
	}, 3*time.Second, 50*time.Millisecond)
}
