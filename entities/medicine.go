// Package entities holds the records shared by the catalog, the cart and the
// doctor dashboard.
package entities

// MedicineRecord is one medicine recommended for a diagnosis. IDs are unique
// inside one diagnosis list but the same id may appear under several
// diagnoses.
type MedicineRecord struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Company     string  `json:"company"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Dosage      string  `json:"dosage"`
	Type        string  `json:"type"`
}

// CartLine is a medicine with the quantity the user put in the cart
type CartLine struct {
	MedicineRecord
	Quantity int `json:"quantity"`
}

// Subtotal returns price times quantity for the line
func (l CartLine) Subtotal() float64 {
	return l.Price * float64(l.Quantity)
}
