package cart

import (
	"errors"
	"strings"
	"testing"

	"github.com/giygas/telehealth-api/entities"
)

var (
	paracetamol = entities.MedicineRecord{ID: 2, Name: "Paracetamol", Company: "Crocin", Price: 25}
	cetirizine  = entities.MedicineRecord{ID: 1, Name: "Cetirizine", Company: "Zyrtec", Price: 120}
)

func TestAddIncrementsExistingLine(t *testing.T) {
	c := New()

	if _, err := c.Add(paracetamol, 1); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	line, err := c.Add(paracetamol, 2)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if c.Len() != 1 {
		t.Fatalf("Expected one line, got %d", c.Len())
	}
	if line.Quantity != 3 {
		t.Errorf("Expected quantity 3, got %d", line.Quantity)
	}
	if c.Lines()[0].Quantity != 3 {
		t.Errorf("Stored line has quantity %d, want 3", c.Lines()[0].Quantity)
	}
}

func TestAddKeepsInsertionOrder(t *testing.T) {
	c := New()
	_, _ = c.Add(paracetamol, 1)
	_, _ = c.Add(cetirizine, 1)
	_, _ = c.Add(paracetamol, 1)

	lines := c.Lines()
	if len(lines) != 2 || lines[0].ID != 2 || lines[1].ID != 1 {
		t.Errorf("Unexpected lines: %+v", lines)
	}
}

func TestAddRejectsNonPositiveQuantity(t *testing.T) {
	c := New()

	for _, qty := range []int{0, -3} {
		_, err := c.Add(paracetamol, qty)
		if !errors.Is(err, ErrInvalidQuantity) {
			t.Errorf("Add with qty %d: expected ErrInvalidQuantity, got %v", qty, err)
		}
	}
	if c.Len() != 0 {
		t.Error("Rejected adds must not create lines")
	}
}

func TestSummary(t *testing.T) {
	c := New()

	empty := c.Summary()
	if empty.CheckoutEnabled || empty.ItemCount != 0 || empty.Total != 0 {
		t.Errorf("Unexpected empty summary: %+v", empty)
	}
	if empty.Lines == nil {
		t.Error("Empty summary should carry an empty slice, not nil")
	}

	_, _ = c.Add(paracetamol, 2)
	_, _ = c.Add(cetirizine, 1)

	s := c.Summary()
	if s.ItemCount != 3 {
		t.Errorf("Expected 3 items, got %d", s.ItemCount)
	}
	if s.Total != 170 {
		t.Errorf("Expected total 170, got %v", s.Total)
	}
	if !s.CheckoutEnabled {
		t.Error("Checkout should be enabled with items")
	}
	if !strings.Contains(s.FormattedTotal, "₹") || !strings.Contains(s.FormattedTotal, "170") {
		t.Errorf("Unexpected formatted total %q", s.FormattedTotal)
	}
}

func TestLinesReturnsCopy(t *testing.T) {
	c := New()
	_, _ = c.Add(paracetamol, 1)

	lines := c.Lines()
	lines[0].Quantity = 99

	if c.Lines()[0].Quantity != 1 {
		t.Error("Lines leaked internal storage")
	}
}

func TestSelectorClampsAtOne(t *testing.T) {
	s := NewSelector()

	if got := s.Get(7); got != 1 {
		t.Errorf("Default selection should be 1, got %d", got)
	}
	if got := s.Change(7, -1); got != 1 {
		t.Errorf("Expected clamp to 1, got %d", got)
	}
	if got := s.Change(7, 1); got != 2 {
		t.Errorf("Expected 2, got %d", got)
	}
	if got := s.Change(7, 100); got != 102 {
		t.Errorf("No upper bound expected, got %d", got)
	}
	if got := s.Change(7, -500); got != 1 {
		t.Errorf("Expected clamp to 1, got %d", got)
	}

	s.Change(8, 4)
	s.Reset(8)
	if got := s.Get(8); got != 1 {
		t.Errorf("Reset should restore default, got %d", got)
	}
}
