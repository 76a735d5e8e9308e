package net

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"SketchBoard/internal/broadcast"
)

// maxMessageSize bounds one update frame.
const maxMessageSize = 8 << 20

// Relay upgrades /ws requests and fans update messages out to the other
// peers of the same canvas. It does not interpret or merge the elements:
// whatever arrives last is what everyone sees.
type Relay struct {
	peers    *PeerManager
	upgrader websocket.Upgrader
}

// NewRelay returns a relay over pm.
func NewRelay(pm *PeerManager) *Relay {
	return &Relay{
		peers: pm,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (r *Relay) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	canvasID := req.URL.Query().Get("canvas")
	if canvasID == "" {
		http.Error(w, "missing canvas parameter", http.StatusBadRequest)
		return
	}
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		log.Printf("[RELAY] upgrade from %s: %v", req.RemoteAddr, err)
		return
	}
	conn.SetReadLimit(maxMessageSize)

	peer := newPeer(conn, canvasID)
	go peer.writeLoop()
	r.peers.Add(peer)
	defer r.peers.Remove(peer)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[RELAY] %s disconnected: %v", peer.ID, err)
			}
			return
		}
		var msg broadcast.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("[RELAY] bad frame from %s: %v", peer.ID, err)
			continue
		}
		if msg.Type != broadcast.TypeUpdate {
			continue
		}
		// A peer only ever talks to the room it joined.
		msg.CanvasID = canvasID
		out, err := json.Marshal(msg)
		if err != nil {
			log.Printf("[RELAY] re-encode from %s: %v", peer.ID, err)
			continue
		}
		r.peers.Broadcast(canvasID, out, peer)
	}
}
