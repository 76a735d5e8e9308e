package net

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SketchBoard/internal/broadcast"
	"SketchBoard/internal/element"
	"SketchBoard/internal/geometry"
	"SketchBoard/internal/history"
	"SketchBoard/internal/storage"
)

func newTestServer(t *testing.T) (*httptest.Server, *PeerManager) {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "board.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	pm := NewPeerManager()
	srv := httptest.NewServer(NewServer(storage.NewCanvasStore(db), pm))
	t.Cleanup(srv.Close)
	return srv, pm
}

func listen(t *testing.T, ctx context.Context, c *Conn) <-chan broadcast.Message {
	t.Helper()
	got := make(chan broadcast.Message, 8)
	go c.Listen(ctx, func(m broadcast.Message) { got <- m })
	return got
}

func TestRelayFansOutWithinCanvas(t *testing.T) {
	srv, pm := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a, err := Dial(ctx, srv.URL, "board")
	require.NoError(t, err)
	defer a.Close()
	b, err := Dial(ctx, srv.URL, "board")
	require.NoError(t, err)
	defer b.Close()
	other, err := Dial(ctx, srv.URL, "elsewhere")
	require.NoError(t, err)
	defer other.Close()

	require.Eventually(t, func() bool { return pm.Count("board") == 2 }, time.Second, 10*time.Millisecond)

	gotA, gotB, gotOther := listen(t, ctx, a), listen(t, ctx, b), listen(t, ctx, other)

	rect := element.NewRectangle(0, geometry.Coords{X1: 1, Y1: 1, X2: 9, Y2: 9})
	require.NoError(t, a.Send(ctx, broadcast.Message{
		Type:     broadcast.TypeUpdate,
		CanvasID: "spoofed",
		Origin:   "a",
		Elements: []element.Element{rect},
	}))

	select {
	case msg := <-gotB:
		assert.Equal(t, "board", msg.CanvasID, "relay pins the room")
		assert.Equal(t, []element.Element{rect}, msg.Elements)
	case <-ctx.Done():
		t.Fatal("b never got the update")
	}

	select {
	case <-gotA:
		t.Fatal("sender got its own update back")
	case <-gotOther:
		t.Fatal("update leaked to another canvas")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRelayReplaysLastUpdate(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a, err := Dial(ctx, srv.URL, "board")
	require.NoError(t, err)
	defer a.Close()
	require.NoError(t, a.Send(ctx, broadcast.Message{Type: broadcast.TypeUpdate, Origin: "a", Elements: []element.Element{}}))
	require.NoError(t, a.Send(ctx, broadcast.Message{
		Type:     broadcast.TypeUpdate,
		Origin:   "a",
		Elements: []element.Element{element.NewLine(0, geometry.Coords{X2: 3, Y2: 4})},
	}))

	// The relay handles frames in order; give it a moment before joining.
	time.Sleep(100 * time.Millisecond)
	late, err := Dial(ctx, srv.URL, "board")
	require.NoError(t, err)
	defer late.Close()

	select {
	case msg := <-listen(t, ctx, late):
		assert.Len(t, msg.Elements, 1)
	case <-ctx.Done():
		t.Fatal("late joiner got nothing")
	}
}

func TestRelayForgetsEmptyRoom(t *testing.T) {
	srv, pm := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a, err := Dial(ctx, srv.URL, "board")
	require.NoError(t, err)
	require.NoError(t, a.Send(ctx, broadcast.Message{
		Type:     broadcast.TypeUpdate,
		Origin:   "a",
		Elements: []element.Element{element.NewLine(0, geometry.Coords{X2: 3, Y2: 4})},
	}))
	require.Eventually(t, func() bool {
		pm.mu.RLock()
		defer pm.mu.RUnlock()
		return pm.last["board"] != nil
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, a.Close())
	require.Eventually(t, func() bool {
		pm.mu.RLock()
		defer pm.mu.RUnlock()
		_, ok := pm.last["board"]
		return pm.Count("board") == 0 && !ok
	}, time.Second, 10*time.Millisecond)
}

func TestRelayNeedsCanvas(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/ws")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCanvasAPI(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()
	api := NewAPIClient(srv.URL + "/")

	h := history.New(element.Store{})
	s, _, err := h.Current().Append(element.KindRectangle, 5, 5)
	require.NoError(t, err)
	h.Commit(s)

	c, err := api.CreateCanvas(ctx, "plan", history.ToDocument(h))
	require.NoError(t, err)
	require.NotEmpty(t, c.ID)
	assert.Equal(t, "plan", c.Name)

	h.Undo()
	require.NoError(t, api.Save(ctx, c.ID, history.ToDocument(h)))

	got, err := api.GetCanvas(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Index)
	assert.Len(t, got.History, 2)

	_, err = api.GetCanvas(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrCanvasNotFound)

	_, err = api.UpdateCanvas(ctx, c.ID, history.Document{
		History: [][]element.Element{{{ID: 0, Type: "star"}}},
	})
	assert.Error(t, err)

	_, err = api.UpdateCanvas(ctx, c.ID, history.Document{History: [][]element.Element{{}}, Index: 3})
	assert.Error(t, err)
}

func TestCanvasAPISavesLargeHistory(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()
	api := NewAPIClient(srv.URL)

	pts := make([]geometry.Point, 10000)
	for i := range pts {
		pts[i] = geometry.Point{X: 1000.125 + float64(i), Y: 2000.375 + float64(i)}
	}
	h := history.New(element.Store{})
	for i := 0; i < 40; i++ {
		s, err := element.NewStore([]element.Element{element.NewFreedraw(0, 0, 0).WithPoints(pts)})
		require.NoError(t, err)
		h.Commit(s)
	}
	data, err := history.Marshal(h)
	require.NoError(t, err)
	require.Greater(t, len(data), maxMessageSize, "history is bigger than one relay frame")

	c, err := api.CreateCanvas(ctx, "big", history.Document{})
	require.NoError(t, err)
	require.NoError(t, api.Save(ctx, c.ID, history.ToDocument(h)))

	got, err := api.GetCanvas(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, got.Index)
	require.Len(t, got.History, 41)
	assert.Len(t, got.History[40][0].Points, len(pts))
}

func TestShareLink(t *testing.T) {
	link := ShareLink("192.168.1.20", 8888, "abc-123")
	assert.Equal(t, "sketchboard://192.168.1.20:8888/abc-123", link)

	server, canvas, err := ParseShareLink(link)
	require.NoError(t, err)
	assert.Equal(t, "http://192.168.1.20:8888", server)
	assert.Equal(t, "abc-123", canvas)

	_, _, err = ParseShareLink("localboard://x:1/y")
	assert.Error(t, err)
	_, _, err = ParseShareLink("sketchboard://host:1")
	assert.Error(t, err)
}

func TestWSURL(t *testing.T) {
	u, err := wsURL("https://example.com/board/", "c 1")
	require.NoError(t, err)
	assert.Equal(t, "wss://example.com/board/ws?canvas=c+1", u)

	_, err = wsURL("ftp://x", "c")
	assert.Error(t, err)
}
