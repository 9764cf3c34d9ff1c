// Package session holds the per-visitor application state that the page
// scripts kept in globals: the cart, the quantity selections, the logged-in
// user and the camera permission answer.
package session

import (
	"sync"
	"time"

	"github.com/giygas/telehealth-api/cart"
	"github.com/giygas/telehealth-api/entities"
)

// Session is owned by the HTTP layer and passed explicitly to handlers. All
// methods are safe for concurrent use.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	mu         sync.Mutex
	lastSeen   time.Time
	cart       *cart.Cart
	selector   *cart.Selector
	userID     string
	permission PermissionState
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		ID:         id,
		CreatedAt:  now,
		lastSeen:   now,
		cart:       cart.New(),
		selector:   cart.NewSelector(),
		permission: PermissionUnasked,
	}
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// AddToCart adds the medicine using the currently selected quantity and
// reports the quantity that was added
func (s *Session) AddToCart(record entities.MedicineRecord) (entities.CartLine, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	qty := s.selector.Get(record.ID)
	line, err := s.cart.Add(record, qty)
	return line, qty, err
}

// AddToCartQuantity adds an explicit quantity, bypassing the selector
func (s *Session) AddToCartQuantity(record entities.MedicineRecord, qty int) (entities.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Add(record, qty)
}

// ChangeQuantity moves the selector for medicineID by delta
func (s *Session) ChangeQuantity(medicineID, delta int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selector.Change(medicineID, delta)
}

func (s *Session) CartSummary() cart.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Summary()
}

// UserID returns the id of the logged-in user, empty when logged out
func (s *Session) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

func (s *Session) SetUserID(id string) {
	s.mu.Lock()
	s.userID = id
	s.mu.Unlock()
}
