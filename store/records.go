package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/giygas/telehealth-api/entities"
)

const (
	usersKey       = "users"
	currentUserKey = "currentUser:"
	currentUserTTL = 24 * time.Hour
)

var ErrUserNotFound = errors.New("user not found")

// Records reads and writes typed records over a KV
type Records struct {
	kv KV
}

func NewRecords(kv KV) *Records {
	return &Records{kv: kv}
}

// Users returns the stored users list, empty when nothing was saved yet
func (r *Records) Users(ctx context.Context) ([]entities.User, error) {
	raw, err := r.kv.Get(ctx, usersKey)
	if errors.Is(err, ErrMiss) {
		return []entities.User{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}

	var users []entities.User
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

func (r *Records) SaveUsers(ctx context.Context, users []entities.User) error {
	raw, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("failed to encode users: %w", err)
	}
	if err := r.kv.Set(ctx, usersKey, string(raw), 0); err != nil {
		return fmt.Errorf("failed to write users: %w", err)
	}
	return nil
}

// UserByID looks the user up in the users list
func (r *Records) UserByID(ctx context.Context, id string) (entities.User, error) {
	users, err := r.Users(ctx)
	if err != nil {
		return entities.User{}, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return entities.User{}, fmt.Errorf("%w: %s", ErrUserNotFound, id)
}

// CurrentUser returns the logged-in user snapshot for a session
func (r *Records) CurrentUser(ctx context.Context, sessionID string) (entities.User, error) {
	raw, err := r.kv.Get(ctx, currentUserKey+sessionID)
	if errors.Is(err, ErrMiss) {
		return entities.User{}, ErrUserNotFound
	}
	if err != nil {
		return entities.User{}, fmt.Errorf("failed to read current user: %w", err)
	}

	var u entities.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return entities.User{}, fmt.Errorf("failed to decode current user: %w", err)
	}
	return u, nil
}

func (r *Records) SetCurrentUser(ctx context.Context, sessionID string, u entities.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to encode current user: %w", err)
	}
	if err := r.kv.Set(ctx, currentUserKey+sessionID, string(raw), currentUserTTL); err != nil {
		return fmt.Errorf("failed to write current user: %w", err)
	}
	return nil
}

// ClearCurrentUser logs the session out
func (r *Records) ClearCurrentUser(ctx context.Context, sessionID string) error {
	if err := r.kv.Delete(ctx, currentUserKey+sessionID); err != nil {
		return fmt.Errorf("failed to clear current user: %w", err)
	}
	return nil
}
