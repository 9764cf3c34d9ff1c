package cart

// Selector holds the quantity picked for each medicine card. Unset ids read
// as 1 and the value never drops below 1.
type Selector struct {
	quantities map[int]int
}

func NewSelector() *Selector {
	return &Selector{quantities: make(map[int]int)}
}

// Get returns the selected quantity for id
func (s *Selector) Get(id int) int {
	if q, ok := s.quantities[id]; ok {
		return q
	}
	return 1
}

// Change adds delta to the selected quantity, clamping at 1
func (s *Selector) Change(id, delta int) int {
	q := s.Get(id) + delta
	if q < 1 {
		q = 1
	}
	s.quantities[id] = q
	return q
}

// Reset forgets the selection for id
func (s *Selector) Reset(id int) {
	delete(s.quantities, id)
}
