package session

import (
	"errors"
	"testing"
	"time"

	"github.com/giygas/telehealth-api/cart"
	"github.com/giygas/telehealth-api/entities"
)

var amoxicillin = entities.MedicineRecord{ID: 5, Name: "Amoxicillin", Company: "Mox", Price: 100}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestManager(ttl time.Duration) (*Manager, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
	m := NewManager(ttl)
	m.now = clock.now
	return m, clock
}

func TestCreateAndGet(t *testing.T) {
	m, _ := newTestManager(time.Hour)

	s := m.Create()
	if s.ID == "" {
		t.Fatal("Expected a session id")
	}

	got, err := m.Get(s.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != s {
		t.Fatal("Expected the same session back")
	}
	if m.Count() != 1 {
		t.Fatalf("Expected 1 session, got %d", m.Count())
	}
}

func TestGetUnknown(t *testing.T) {
	m, _ := newTestManager(time.Hour)

	if _, err := m.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	m, _ := newTestManager(time.Hour)
	a := m.Create()
	b := m.Create()

	if _, _, err := a.AddToCart(amoxicillin); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if a.CartSummary().ItemCount != 1 {
		t.Fatalf("Expected 1 item in a, got %d", a.CartSummary().ItemCount)
	}
	if b.CartSummary().ItemCount != 0 {
		t.Fatalf("Expected b to stay empty, got %d", b.CartSummary().ItemCount)
	}
}

func TestAddToCartUsesSelectedQuantity(t *testing.T) {
	m, _ := newTestManager(time.Hour)
	s := m.Create()

	s.ChangeQuantity(amoxicillin.ID, 1)
	s.ChangeQuantity(amoxicillin.ID, 1)

	line, added, err := s.AddToCart(amoxicillin)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if added != 3 {
		t.Fatalf("Expected 3 added, got %d", added)
	}
	if line.Quantity != 3 {
		t.Fatalf("Expected quantity 3, got %d", line.Quantity)
	}
	if s.CartSummary().Total != 300 {
		t.Fatalf("Expected total 300, got %v", s.CartSummary().Total)
	}
}

func TestAddToCartQuantityRejectsZero(t *testing.T) {
	m, _ := newTestManager(time.Hour)
	s := m.Create()

	if _, err := s.AddToCartQuantity(amoxicillin, 0); !errors.Is(err, cart.ErrInvalidQuantity) {
		t.Fatalf("Expected ErrInvalidQuantity, got %v", err)
	}
}

func TestSweepDropsIdleSessions(t *testing.T) {
	m, clock := newTestManager(30 * time.Minute)

	stale := m.Create()
	clock.t = clock.t.Add(20 * time.Minute)
	fresh := m.Create()

	clock.t = clock.t.Add(15 * time.Minute)
	if removed := m.Sweep(clock.t); removed != 1 {
		t.Fatalf("Expected 1 removed, got %d", removed)
	}

	if _, err := m.Get(stale.ID); !errors.Is(err, ErrNotFound) {
		t.Fatal("Expected stale session to be gone")
	}
	if _, err := m.Get(fresh.ID); err != nil {
		t.Fatalf("Expected fresh session to survive: %v", err)
	}
}

func TestGetRefreshesIdleTimer(t *testing.T) {
	m, clock := newTestManager(30 * time.Minute)
	s := m.Create()

	clock.t = clock.t.Add(25 * time.Minute)
	if _, err := m.Get(s.ID); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	clock.t = clock.t.Add(25 * time.Minute)
	if removed := m.Sweep(clock.t); removed != 0 {
		t.Fatalf("Expected no removal, got %d", removed)
	}
}

func TestDelete(t *testing.T) {
	m, _ := newTestManager(time.Hour)
	s := m.Create()

	m.Delete(s.ID)
	if m.Count() != 0 {
		t.Fatalf("Expected 0 sessions, got %d", m.Count())
	}
}

func TestPermissionFlow(t *testing.T) {
	m, _ := newTestManager(time.Hour)
	s := m.Create()

	if !s.ShouldPrompt() {
		t.Fatal("Expected a prompt for a new session")
	}

	if _, err := s.ApplyPermission(ActionRetry); !errors.Is(err, ErrRetryNotDenied) {
		t.Fatalf("Expected ErrRetryNotDenied, got %v", err)
	}

	if state := s.Deny(); state != PermissionDenied {
		t.Fatalf("Expected denied, got %s", state)
	}
	if s.ShouldPrompt() {
		t.Fatal("Expected no prompt after an answer")
	}

	state, err := s.Retry()
	if err != nil || state != PermissionGranted {
		t.Fatalf("Expected granted after retry, got %s (%v)", state, err)
	}
}

func TestParsePermissionAction(t *testing.T) {
	tests := []struct {
		in      string
		want    PermissionAction
		wantErr bool
	}{
		{"grant", ActionGrant, false},
		{" DENY ", ActionDeny, false},
		{"retry", ActionRetry, false},
		{"maybe", "", true},
	}

	for _, tt := range tests {
		got, err := ParsePermissionAction(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePermissionAction(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePermissionAction(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
