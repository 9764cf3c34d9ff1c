// Package videocall runs consultation calls between a doctor and a patient
// over a pluggable media transport.
package videocall

import (
	"context"
	"errors"
	"sync"

	"github.com/giygas/telehealth-api/logging"
)

// EventType names a room notification
type EventType string

const (
	EventStreamAdded   EventType = "stream-added"
	EventStreamRemoved EventType = "stream-removed"
)

// StreamEvent announces a remote stream appearing or leaving a room
type StreamEvent struct {
	Type     EventType `json:"type"`
	Room     string    `json:"room"`
	StreamID string    `json:"stream_id"`
	UserID   string    `json:"user_id"`
}

// Transport is the media collaborator a call drives. Connect joins a room
// and returns the streams already published there.
type Transport interface {
	Connect(ctx context.Context, room, userID string) ([]string, error)
	Publish(ctx context.Context, streamID string) error
	Subscribe(ctx context.Context) (<-chan StreamEvent, error)
	Teardown(ctx context.Context) error
}

var ErrNotConnected = errors.New("transport not connected")

const eventBuffer = 16

// Hub routes events between SimulatedTransports in the same process
type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[*SimulatedTransport]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*SimulatedTransport]struct{})}
}

func (h *Hub) join(room string, t *SimulatedTransport) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*SimulatedTransport]struct{})
		h.rooms[room] = members
	}

	var streams []string
	for m := range members {
		if s := m.streamID(); s != "" {
			streams = append(streams, s)
		}
	}
	members[t] = struct{}{}
	return streams
}

func (h *Hub) leave(room string, t *SimulatedTransport) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.rooms[room], t)
	if len(h.rooms[room]) == 0 {
		delete(h.rooms, room)
	}
}

// broadcast delivers ev to every member of the room except the sender
func (h *Hub) broadcast(sender *SimulatedTransport, ev StreamEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for m := range h.rooms[ev.Room] {
		if m != sender {
			m.deliver(ev)
		}
	}
}

// Participants returns how many transports are in the room
func (h *Hub) Participants(room string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[room])
}

// SimulatedTransport is an in-process Transport bound to a Hub
type SimulatedTransport struct {
	hub *Hub

	mu        sync.Mutex
	room      string
	userID    string
	published string
	events    chan StreamEvent
}

var _ Transport = (*SimulatedTransport)(nil)

func NewSimulatedTransport(hub *Hub) *SimulatedTransport {
	return &SimulatedTransport{hub: hub}
}

func (t *SimulatedTransport) Connect(ctx context.Context, room, userID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.Lock()
	t.room = room
	t.userID = userID
	t.published = ""
	t.events = make(chan StreamEvent, eventBuffer)
	t.mu.Unlock()

	return t.hub.join(room, t), nil
}

func (t *SimulatedTransport) Publish(ctx context.Context, streamID string) error {
	t.mu.Lock()
	if t.room == "" {
		t.mu.Unlock()
		return ErrNotConnected
	}
	t.published = streamID
	ev := StreamEvent{Type: EventStreamAdded, Room: t.room, StreamID: streamID, UserID: t.userID}
	t.mu.Unlock()

	t.hub.broadcast(t, ev)
	return nil
}

func (t *SimulatedTransport) Subscribe(ctx context.Context) (<-chan StreamEvent, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.events == nil {
		return nil, ErrNotConnected
	}
	return t.events, nil
}

// Teardown unpublishes, leaves the room and closes the event channel
func (t *SimulatedTransport) Teardown(ctx context.Context) error {
	t.mu.Lock()
	room, published, user := t.room, t.published, t.userID
	t.mu.Unlock()

	if room == "" {
		return nil
	}

	t.hub.leave(room, t)
	if published != "" {
		t.hub.broadcast(t, StreamEvent{Type: EventStreamRemoved, Room: room, StreamID: published, UserID: user})
	}

	t.mu.Lock()
	close(t.events)
	t.events = nil
	t.room = ""
	t.published = ""
	t.mu.Unlock()
	return nil
}

func (t *SimulatedTransport) streamID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.published
}

// deliver is called with the hub lock held
func (t *SimulatedTransport) deliver(ev StreamEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.events == nil {
		return
	}
	select {
	case t.events <- ev:
	default:
		logging.Warn("Dropping stream event, subscriber is not keeping up",
			"room", ev.Room, "type", ev.Type, "stream_id", ev.StreamID)
	}
}
