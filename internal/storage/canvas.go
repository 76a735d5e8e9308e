package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"SketchBoard/internal/element"
	"SketchBoard/internal/history"
)

// ErrCanvasNotFound is returned for an unknown canvas id.
var ErrCanvasNotFound = errors.New("canvas not found")

// Canvas is a stored drawing: its full undo history and cursor.
type Canvas struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	history.Document
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CanvasStore persists canvases in SQLite.
type CanvasStore struct {
	db *DB
}

func NewCanvasStore(db *DB) *CanvasStore {
	return &CanvasStore{db: db}
}

// Create stores a new canvas under a fresh id.
func (s *CanvasStore) Create(ctx context.Context, name string, doc history.Document) (*Canvas, error) {
	if doc.History == nil {
		doc.History = [][]element.Element{}
	}
	data, err := json.Marshal(doc.History)
	if err != nil {
		return nil, fmt.Errorf("encode history: %w", err)
	}
	now := time.Now().UTC()
	c := &Canvas{ID: uuid.NewString(), Name: name, Document: doc, CreatedAt: now, UpdatedAt: now}

	_, err = s.db.Conn().ExecContext(ctx,
		`INSERT INTO canvases (id, name, history_json, cursor, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, string(data), doc.Index, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert canvas: %w", err)
	}
	log.Printf("[STORE] created canvas %s (%q)", c.ID, name)
	return c, nil
}

// Update replaces the history of canvas id.
func (s *CanvasStore) Update(ctx context.Context, id string, doc history.Document) (*Canvas, error) {
	if doc.History == nil {
		doc.History = [][]element.Element{}
	}
	data, err := json.Marshal(doc.History)
	if err != nil {
		return nil, fmt.Errorf("encode history: %w", err)
	}
	res, err := s.db.Conn().ExecContext(ctx,
		`UPDATE canvases SET history_json = ?, cursor = ?, updated_at = ? WHERE id = ?`,
		string(data), doc.Index, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update canvas: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("update %s: %w", id, ErrCanvasNotFound)
	}
	return s.Get(ctx, id)
}

// Get loads canvas id.
func (s *CanvasStore) Get(ctx context.Context, id string) (*Canvas, error) {
	var (
		c    Canvas
		data string
	)
	err := s.db.Conn().QueryRowContext(ctx,
		`SELECT id, name, history_json, cursor, created_at, updated_at FROM canvases WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &data, &c.Index, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get %s: %w", id, ErrCanvasNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get canvas: %w", err)
	}
	if err := json.Unmarshal([]byte(data), &c.History); err != nil {
		return nil, fmt.Errorf("decode history of %s: %w", id, err)
	}
	return &c, nil
}

// List returns canvas metadata, most recently updated first. Histories
// are left empty.
func (s *CanvasStore) List(ctx context.Context) ([]*Canvas, error) {
	rows, err := s.db.Conn().QueryContext(ctx,
		`SELECT id, name, cursor, created_at, updated_at FROM canvases ORDER BY updated_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list canvases: %w", err)
	}
	defer rows.Close()

	var out []*Canvas
	for rows.Next() {
		var c Canvas
		if err := rows.Scan(&c.ID, &c.Name, &c.Index, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan canvas: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
