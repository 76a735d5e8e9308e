package net

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"SketchBoard/internal/history"
	"SketchBoard/internal/storage"
)

// CanvasStore is what the persistence API needs from storage.
type CanvasStore interface {
	Create(ctx context.Context, name string, doc history.Document) (*storage.Canvas, error)
	Update(ctx context.Context, id string, doc history.Document) (*storage.Canvas, error)
	Get(ctx context.Context, id string) (*storage.Canvas, error)
	List(ctx context.Context) ([]*storage.Canvas, error)
}

// maxHistorySize bounds a create-canvas or update-canvas body. A saved
// history holds every snapshot, so it is far larger than one update frame.
const maxHistorySize = 512 << 20

// canvasRequest is the body of create-canvas and update-canvas.
type canvasRequest struct {
	Name string `json:"name,omitempty"`
	history.Document
}

// NewServer routes the real-time relay and the canvas persistence API.
func NewServer(store CanvasStore, pm *PeerManager) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /ws", NewRelay(pm))

	api := &canvasAPI{store: store}
	mux.HandleFunc("POST /api/v1/canvas/create-canvas", api.create)
	mux.HandleFunc("PATCH /api/v1/canvas/update-canvas/{id}", api.update)
	mux.HandleFunc("GET /api/v1/canvas/{id}", api.get)
	mux.HandleFunc("GET /api/v1/canvas", api.list)
	return mux
}

type canvasAPI struct {
	store CanvasStore
}

func (a *canvasAPI) create(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCanvas(w, r)
	if !ok {
		return
	}
	c, err := a.store.Create(r.Context(), req.Name, req.Document)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (a *canvasAPI) update(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCanvas(w, r)
	if !ok {
		return
	}
	c, err := a.store.Update(r.Context(), r.PathValue("id"), req.Document)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *canvasAPI) get(w http.ResponseWriter, r *http.Request) {
	c, err := a.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *canvasAPI) list(w http.ResponseWriter, r *http.Request) {
	list, err := a.store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []*storage.Canvas{}
	}
	writeJSON(w, http.StatusOK, list)
}

// decodeCanvas reads a request body and rejects histories that would not
// load: unknown element kinds, unordered ids or a cursor out of range.
func decodeCanvas(w http.ResponseWriter, r *http.Request) (canvasRequest, bool) {
	var req canvasRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxHistorySize)).Decode(&req); err != nil {
		http.Error(w, "invalid body: "+err.Error(), http.StatusBadRequest)
		return req, false
	}
	if _, err := history.FromDocument(req.Document); err != nil {
		http.Error(w, "invalid history: "+err.Error(), http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrCanvasNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	log.Printf("[API] %v", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[API] encode response: %v", err)
	}
}
