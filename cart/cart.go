// Package cart implements the per-session medicine cart and the quantity
// selector shown next to each recommendation.
package cart

import (
	"errors"
	"fmt"
	"slices"

	"github.com/giygas/telehealth-api/entities"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrInvalidQuantity is returned when adding less than one unit
var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// Cart is an ordered list of lines, unique by medicine id. It is not safe for
// concurrent use; the owning session serializes access.
type Cart struct {
	lines []entities.CartLine
}

func New() *Cart {
	return &Cart{}
}

// Add puts qty units of record in the cart. A line that already exists for
// the id is incremented, never overwritten.
func (c *Cart) Add(record entities.MedicineRecord, qty int) (entities.CartLine, error) {
	if qty < 1 {
		return entities.CartLine{}, fmt.Errorf("%w: got %d", ErrInvalidQuantity, qty)
	}

	for i := range c.lines {
		if c.lines[i].ID == record.ID {
			c.lines[i].Quantity += qty
			return c.lines[i], nil
		}
	}

	line := entities.CartLine{MedicineRecord: record, Quantity: qty}
	c.lines = append(c.lines, line)
	return line, nil
}

// Lines returns a copy of the cart lines in insertion order
func (c *Cart) Lines() []entities.CartLine {
	return slices.Clone(c.lines)
}

func (c *Cart) Len() int {
	return len(c.lines)
}

// Summary is what the cart panel displays
type Summary struct {
	Lines           []entities.CartLine `json:"lines"`
	ItemCount       int                 `json:"item_count"`
	Total           float64             `json:"total"`
	FormattedTotal  string              `json:"formatted_total"`
	CheckoutEnabled bool                `json:"checkout_enabled"`
}

var printer = message.NewPrinter(language.English)

// FormatPrice renders an amount in Indian rupees with two decimals
func FormatPrice(amount float64) string {
	return printer.Sprintf("%v", currency.Symbol(currency.INR.Amount(amount)))
}

// Summary totals the cart
func (c *Cart) Summary() Summary {
	s := Summary{Lines: c.Lines()}
	if s.Lines == nil {
		s.Lines = []entities.CartLine{}
	}
	for _, l := range c.lines {
		s.ItemCount += l.Quantity
		s.Total += l.Subtotal()
	}
	s.FormattedTotal = FormatPrice(s.Total)
	s.CheckoutEnabled = len(c.lines) > 0
	return s
}
