package broadcast

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"SketchBoard/internal/element"
)

// TypeUpdate carries a full element sequence.
const TypeUpdate = "update"

// Message is what travels over the real-time channel. Render descriptors
// are not sent; receivers derive them from the geometry.
type Message struct {
	Type     string            `json:"type"`
	CanvasID string            `json:"canvas_id"`
	Origin   string            `json:"origin"`
	Elements []element.Element `json:"elements"`
}

// Channel sends messages to the other viewers of a canvas.
type Channel interface {
	Send(ctx context.Context, msg Message) error
}

// Broadcaster publishes local edits of one canvas and filters what comes
// back. Messages are tagged with a per-session origin so a client never
// renders its own echo as a foreign edit.
type Broadcaster struct {
	canvasID string
	origin   string
	channel  Channel
}

// New returns a Broadcaster for canvasID. ch may be nil for an offline
// session, in which case Emit does nothing.
func New(canvasID string, ch Channel) *Broadcaster {
	return &Broadcaster{canvasID: canvasID, origin: uuid.NewString(), channel: ch}
}

// Origin is the id stamped on outgoing messages.
func (b *Broadcaster) Origin() string { return b.origin }

// CanvasID is the canvas this broadcaster is scoped to.
func (b *Broadcaster) CanvasID() string { return b.canvasID }

// SetChannel swaps the outgoing channel, e.g. after a reconnect.
func (b *Broadcaster) SetChannel(ch Channel) { b.channel = ch }

// Emit sends the full current element sequence.
func (b *Broadcaster) Emit(ctx context.Context, elements []element.Element) error {
	if b.channel == nil {
		return nil
	}
	if elements == nil {
		elements = []element.Element{}
	}
	msg := Message{Type: TypeUpdate, CanvasID: b.canvasID, Origin: b.origin, Elements: elements}
	if err := b.channel.Send(ctx, msg); err != nil {
		return fmt.Errorf("emit canvas %s: %w", b.canvasID, err)
	}
	return nil
}

// Receive decides whether msg should be rendered. It returns false for
// other message types, other canvases and this session's own echoes.
// Elements with an unknown kind make the whole message invalid.
func (b *Broadcaster) Receive(msg Message) ([]element.Element, bool, error) {
	if msg.Type != TypeUpdate || msg.CanvasID != b.canvasID || msg.Origin == b.origin {
		return nil, false, nil
	}
	s, err := element.NewStore(msg.Elements)
	if err != nil {
		return nil, false, fmt.Errorf("update from %s: %w", msg.Origin, err)
	}
	return s.Elements(), true, nil
}
