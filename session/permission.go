package session

import (
	"errors"
	"fmt"
	"strings"
)

// PermissionState is the visitor's answer to the camera prompt
type PermissionState string

const (
	PermissionUnasked PermissionState = "unasked"
	PermissionGranted PermissionState = "granted"
	PermissionDenied  PermissionState = "denied"
)

// PermissionAction is a button on the camera prompts
type PermissionAction string

const (
	ActionGrant PermissionAction = "grant"
	ActionDeny  PermissionAction = "deny"
	ActionRetry PermissionAction = "retry"
)

var ErrRetryNotDenied = errors.New("retry is only available after a denial")

func ParsePermissionAction(s string) (PermissionAction, error) {
	switch a := PermissionAction(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionGrant, ActionDeny, ActionRetry:
		return a, nil
	}
	return "", fmt.Errorf("unknown permission action %q", s)
}

// Permission returns the current state
func (s *Session) Permission() PermissionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.permission
}

// ShouldPrompt is true until the visitor has answered once
func (s *Session) ShouldPrompt() bool {
	return s.Permission() == PermissionUnasked
}

// ApplyPermission records a prompt answer. Retry from the denied popup
// switches to granted; it is rejected in any other state.
func (s *Session) ApplyPermission(action PermissionAction) (PermissionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch action {
	case ActionGrant:
		s.permission = PermissionGranted
	case ActionDeny:
		s.permission = PermissionDenied
	case ActionRetry:
		if s.permission != PermissionDenied {
			return s.permission, ErrRetryNotDenied
		}
		s.permission = PermissionGranted
	default:
		return s.permission, fmt.Errorf("unknown permission action %q", action)
	}
	return s.permission, nil
}

func (s *Session) Grant() PermissionState {
	state, _ := s.ApplyPermission(ActionGrant)
	return state
}

func (s *Session) Deny() PermissionState {
	state, _ := s.ApplyPermission(ActionDeny)
	return state
}

// Retry is the "try again" button of the denied popup
func (s *Session) Retry() (PermissionState, error) {
	return s.ApplyPermission(ActionRetry)
}
