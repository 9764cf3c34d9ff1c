package videocall

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/giygas/telehealth-api/logging"
)

// State is the lifecycle of a call
type State string

const (
	StateIdle       State = "idle"
	StateConnecting State = "connecting"
	StateConnected  State = "connected"
	StateEnded      State = "ended"
)

var ErrCallActive = errors.New("call already active")

// RoomID is the room shared by both participants of an appointment
func RoomID(appointmentID string) string {
	return "med-" + appointmentID
}

// StreamID identifies one publication of a user's media
func StreamID(userID string, at time.Time) string {
	return fmt.Sprintf("%s-%d", userID, at.UnixMilli())
}

// Info is a read-only view of a call
type Info struct {
	ID            string    `json:"id"`
	AppointmentID string    `json:"appointment_id"`
	Room          string    `json:"room"`
	UserID        string    `json:"user_id"`
	State         State     `json:"state"`
	VideoEnabled  bool      `json:"video_enabled"`
	AudioEnabled  bool      `json:"audio_enabled"`
	LocalStream   string    `json:"local_stream,omitempty"`
	RemoteStreams []string  `json:"remote_streams"`
	StartedAt     time.Time `json:"started_at,omitzero"`
}

// Call is one participant's side of a consultation
type Call struct {
	id            string
	appointmentID string
	userID        string
	transport     Transport
	now           func() time.Time

	mu        sync.Mutex
	state     State
	video     bool
	audio     bool
	local     string
	remote    []string
	startedAt time.Time
	done      chan struct{}
}

func NewCall(id, appointmentID, userID string, transport Transport) *Call {
	return &Call{
		id:            id,
		appointmentID: appointmentID,
		userID:        userID,
		transport:     transport,
		now:           time.Now,
		state:         StateIdle,
		video:         true,
		audio:         true,
	}
}

func (c *Call) ID() string { return c.id }

// Start joins the appointment room, plays any stream already there and
// publishes the local stream. A call that is connecting or connected is
// rejected with ErrCallActive; an ended call can be started again.
func (c *Call) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateConnecting || c.state == StateConnected {
		c.mu.Unlock()
		return ErrCallActive
	}
	c.state = StateConnecting
	c.mu.Unlock()

	room := RoomID(c.appointmentID)
	existing, err := c.transport.Connect(ctx, room, c.userID)
	if err != nil {
		c.setState(StateIdle)
		return fmt.Errorf("failed to connect to room %s: %w", room, err)
	}

	events, err := c.transport.Subscribe(ctx)
	if err != nil {
		_ = c.transport.Teardown(ctx)
		c.setState(StateIdle)
		return fmt.Errorf("failed to subscribe to room %s: %w", room, err)
	}

	now := c.now()
	local := StreamID(c.userID, now)
	if err := c.transport.Publish(ctx, local); err != nil {
		_ = c.transport.Teardown(ctx)
		c.setState(StateIdle)
		return fmt.Errorf("failed to publish stream: %w", err)
	}

	done := make(chan struct{})

	c.mu.Lock()
	c.state = StateConnected
	c.local = local
	c.remote = slices.Clone(existing)
	c.startedAt = now
	c.done = done
	c.mu.Unlock()

	go c.consume(events, done)

	logging.Info("Call connected", "call_id", c.id, "room", room, "user_id", c.userID, "remote_streams", len(existing))
	return nil
}

func (c *Call) consume(events <-chan StreamEvent, done chan struct{}) {
	defer close(done)

	for ev := range events {
		c.mu.Lock()
		switch ev.Type {
		case EventStreamAdded:
			if !slices.Contains(c.remote, ev.StreamID) {
				c.remote = append(c.remote, ev.StreamID)
			}
		case EventStreamRemoved:
			c.remote = slices.DeleteFunc(c.remote, func(s string) bool { return s == ev.StreamID })
		}
		c.mu.Unlock()
	}
}

// End tears the transport down. It does nothing when no call is active.
func (c *Call) End(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateConnected {
		c.mu.Unlock()
		return nil
	}
	done := c.done
	c.mu.Unlock()

	if err := c.transport.Teardown(ctx); err != nil {
		return fmt.Errorf("failed to tear down call %s: %w", c.id, err)
	}
	<-done

	c.mu.Lock()
	c.state = StateEnded
	c.local = ""
	c.remote = nil
	c.mu.Unlock()

	logging.Info("Call ended", "call_id", c.id, "user_id", c.userID)
	return nil
}

// ToggleVideo flips the local camera and returns the new value
func (c *Call) ToggleVideo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.video = !c.video
	return c.video
}

// ToggleAudio flips the local microphone and returns the new value
func (c *Call) ToggleAudio() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.audio = !c.audio
	return c.audio
}

func (c *Call) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Call) Info() Info {
	c.mu.Lock()
	defer c.mu.Unlock()

	remote := slices.Clone(c.remote)
	if remote == nil {
		remote = []string{}
	}
	return Info{
		ID:            c.id,
		AppointmentID: c.appointmentID,
		Room:          RoomID(c.appointmentID),
		UserID:        c.userID,
		State:         c.state,
		VideoEnabled:  c.video,
		AudioEnabled:  c.audio,
		LocalStream:   c.local,
		RemoteStreams: remote,
		StartedAt:     c.startedAt,
	}
}

func (c *Call) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}
