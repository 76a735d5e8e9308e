package net

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"SketchBoard/internal/broadcast"
	"SketchBoard/internal/history"
	"SketchBoard/internal/storage"
)

const writeWait = 10 * time.Second

// Conn is a client's websocket to the relay, scoped to one canvas. It
// implements broadcast.Channel.
type Conn struct {
	ws       *websocket.Conn
	canvasID string
	mu       sync.Mutex // gorilla allows one concurrent writer
}

// Dial joins canvasID on the relay at serverURL (http, https, ws or wss).
func Dial(ctx context.Context, serverURL, canvasID string) (*Conn, error) {
	u, err := wsURL(serverURL, canvasID)
	if err != nil {
		return nil, err
	}
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u, err)
	}
	ws.SetReadLimit(maxMessageSize)
	return &Conn{ws: ws, canvasID: canvasID}, nil
}

func wsURL(serverURL, canvasID string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	u.RawQuery = url.Values{"canvas": {canvasID}}.Encode()
	return u.String(), nil
}

// Send writes msg to the relay.
func (c *Conn) Send(ctx context.Context, msg broadcast.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	c.ws.SetWriteDeadline(deadline)
	return c.ws.WriteJSON(msg)
}

// Listen reads messages until the connection closes or ctx ends, passing
// each to handle. It returns nil on a clean shutdown.
func (c *Conn) Listen(ctx context.Context, handle func(broadcast.Message)) error {
	stop := context.AfterFunc(ctx, func() { c.ws.Close() })
	defer stop()
	for {
		var msg broadcast.Message
		if err := c.ws.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("read from relay: %w", err)
		}
		handle(msg)
	}
}

// Close says goodbye to the relay and closes the socket.
func (c *Conn) Close() error {
	c.mu.Lock()
	c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.mu.Unlock()
	return c.ws.Close()
}

// APIClient talks to the canvas persistence API.
type APIClient struct {
	base string
	http *http.Client
}

func NewAPIClient(serverURL string) *APIClient {
	return &APIClient{
		base: strings.TrimSuffix(serverURL, "/"),
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

// CreateCanvas stores a new canvas and returns it with its id.
func (c *APIClient) CreateCanvas(ctx context.Context, name string, doc history.Document) (*storage.Canvas, error) {
	return c.do(ctx, http.MethodPost, "/api/v1/canvas/create-canvas", canvasRequest{Name: name, Document: doc})
}

// UpdateCanvas replaces the history of canvas id.
func (c *APIClient) UpdateCanvas(ctx context.Context, id string, doc history.Document) (*storage.Canvas, error) {
	return c.do(ctx, http.MethodPatch, "/api/v1/canvas/update-canvas/"+url.PathEscape(id), canvasRequest{Document: doc})
}

// GetCanvas loads canvas id.
func (c *APIClient) GetCanvas(ctx context.Context, id string) (*storage.Canvas, error) {
	return c.do(ctx, http.MethodGet, "/api/v1/canvas/"+url.PathEscape(id), nil)
}

// Save implements session.Saver.
func (c *APIClient) Save(ctx context.Context, canvasID string, doc history.Document) error {
	_, err := c.UpdateCanvas(ctx, canvasID, doc)
	return err
}

func (c *APIClient) do(ctx context.Context, method, path string, body any) (*storage.Canvas, error) {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s %s: %w", method, path, storage.ErrCanvasNotFound)
	case resp.StatusCode >= 300:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, strings.TrimSpace(string(msg)))
	}
	var canvas storage.Canvas
	if err := json.NewDecoder(resp.Body).Decode(&canvas); err != nil {
		return nil, fmt.Errorf("decode canvas: %w", err)
	}
	return &canvas, nil
}
