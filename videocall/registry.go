package videocall

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

var ErrCallNotFound = errors.New("call not found")

// Registry tracks active calls by id. Each call gets its own transport.
type Registry struct {
	newTransport func() Transport

	mu    sync.RWMutex
	calls map[string]*Call
}

func NewRegistry(newTransport func() Transport) *Registry {
	return &Registry{
		newTransport: newTransport,
		calls:        make(map[string]*Call),
	}
}

// NewSimulatedRegistry wires every call to the same in-process hub
func NewSimulatedRegistry(hub *Hub) *Registry {
	return NewRegistry(func() Transport { return NewSimulatedTransport(hub) })
}

// Start creates and starts a call for the user in the appointment room
func (r *Registry) Start(ctx context.Context, appointmentID, userID string) (*Call, error) {
	c := NewCall(uuid.NewString(), appointmentID, userID, r.newTransport())
	if err := c.Start(ctx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.calls[c.ID()] = c
	r.mu.Unlock()
	return c, nil
}

func (r *Registry) Get(id string) (*Call, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.calls[id]
	if !ok {
		return nil, ErrCallNotFound
	}
	return c, nil
}

// End ends the call and forgets it
func (r *Registry) End(ctx context.Context, id string) (Info, error) {
	r.mu.Lock()
	c, ok := r.calls[id]
	delete(r.calls, id)
	r.mu.Unlock()

	if !ok {
		return Info{}, ErrCallNotFound
	}
	if err := c.End(ctx); err != nil {
		return Info{}, err
	}
	return c.Info(), nil
}

// EndAll is used on shutdown
func (r *Registry) EndAll(ctx context.Context) {
	r.mu.Lock()
	calls := r.calls
	r.calls = make(map[string]*Call)
	r.mu.Unlock()

	for _, c := range calls {
		_ = c.End(ctx)
	}
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.calls)
}
