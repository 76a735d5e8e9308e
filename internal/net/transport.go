package net

import (
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// sendBuffer is how many outgoing frames a slow peer may lag behind before
// frames to it are dropped.
const sendBuffer = 64

// Peer is one websocket client joined to a canvas room.
type Peer struct {
	ID       string
	CanvasID string
	conn     *websocket.Conn
	send     chan []byte
}

func newPeer(conn *websocket.Conn, canvasID string) *Peer {
	return &Peer{
		ID:       uuid.NewString(),
		CanvasID: canvasID,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
	}
}

// writeLoop is the only writer to the peer's connection.
func (p *Peer) writeLoop() {
	for data := range p.send {
		if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("[RELAY] write to %s: %v", p.ID, err)
			p.conn.Close()
			for range p.send {
			}
			return
		}
	}
	p.conn.Close()
}

// PeerManager tracks the peers of every canvas room and the last update
// seen in each, so late joiners start from the current picture. The last
// update is forgotten once a room empties; a client that opens the canvas
// afterwards loads it from storage.
type PeerManager struct {
	rooms map[string]map[*Peer]bool
	last  map[string][]byte
	mu    sync.RWMutex
}

// NewPeerManager creates a new manager.
func NewPeerManager() *PeerManager {
	return &PeerManager{
		rooms: make(map[string]map[*Peer]bool),
		last:  make(map[string][]byte),
	}
}

// Add joins a peer to its canvas room and queues the room's last update.
func (pm *PeerManager) Add(p *Peer) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	room := pm.rooms[p.CanvasID]
	if room == nil {
		room = make(map[*Peer]bool)
		pm.rooms[p.CanvasID] = room
	}
	room[p] = true
	if data, ok := pm.last[p.CanvasID]; ok {
		p.send <- data
	}
	log.Printf("[RELAY] %s joined canvas %s (%d peers)", p.ID, p.CanvasID, len(room))
}

// Remove drops a peer and stops its writer.
func (pm *PeerManager) Remove(p *Peer) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	room := pm.rooms[p.CanvasID]
	if !room[p] {
		return
	}
	delete(room, p)
	close(p.send)
	if len(room) == 0 {
		delete(pm.rooms, p.CanvasID)
		delete(pm.last, p.CanvasID)
	}
	log.Printf("[RELAY] %s left canvas %s", p.ID, p.CanvasID)
}

// Broadcast queues data for every peer of canvasID except exclude and
// remembers it as the room's latest update.
func (pm *PeerManager) Broadcast(canvasID string, data []byte, exclude *Peer) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.last[canvasID] = data
	for p := range pm.rooms[canvasID] {
		if p == exclude {
			continue
		}
		select {
		case p.send <- data:
		default:
			log.Printf("[RELAY] %s is too slow, dropping update", p.ID)
		}
	}
}

// Count returns the number of peers in a canvas room.
func (pm *PeerManager) Count(canvasID string) int {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return len(pm.rooms[canvasID])
}
