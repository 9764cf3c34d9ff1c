// Package diagnosis resolves free-text diagnoses against a fixed
// disease → medicine catalog and returns the recommended medicines.
package diagnosis

import (
	"fmt"
	"slices"
	"strings"

	"github.com/giygas/telehealth-api/entities"
)

// Entry is one diagnosis label with its ordered medicine list
type Entry struct {
	Label     string                    `json:"label"`
	Medicines []entities.MedicineRecord `json:"medicines"`
}

// Catalog is read-only reference data. Entry order is the definition order
// used by the substring step of Resolve.
type Catalog struct {
	entries []Entry
	index   map[string]int
}

// NewCatalog copies entries into a catalog. Labels must be non-empty and
// unique.
func NewCatalog(entries []Entry) (*Catalog, error) {
	c := &Catalog{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}

	for _, e := range entries {
		label := strings.TrimSpace(e.Label)
		if label == "" {
			return nil, fmt.Errorf("catalog entry with empty label")
		}
		if _, dup := c.index[label]; dup {
			return nil, fmt.Errorf("duplicate catalog label %q", label)
		}
		c.index[label] = len(c.entries)
		c.entries = append(c.entries, Entry{Label: label, Medicines: slices.Clone(e.Medicines)})
	}

	return c, nil
}

// Labels returns the diagnosis labels in definition order
func (c *Catalog) Labels() []string {
	labels := make([]string, len(c.entries))
	for i, e := range c.entries {
		labels[i] = e.Label
	}
	return labels
}

// Entries returns a copy of the catalog entries
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	for i, e := range c.entries {
		out[i] = Entry{Label: e.Label, Medicines: slices.Clone(e.Medicines)}
	}
	return out
}

func (c *Catalog) Len() int {
	return len(c.entries)
}

// Has reports whether label is a canonical catalog label
func (c *Catalog) Has(label string) bool {
	_, ok := c.index[label]
	return ok
}

// Recommend returns the medicines of a resolved label verbatim, in catalog
// order. An unknown label yields an empty list.
func (c *Catalog) Recommend(label string) []entities.MedicineRecord {
	i, ok := c.index[label]
	if !ok {
		return []entities.MedicineRecord{}
	}
	return slices.Clone(c.entries[i].Medicines)
}

// FindMedicine returns the first medicine with the given id, scanning
// diagnoses in definition order
func (c *Catalog) FindMedicine(id int) (entities.MedicineRecord, bool) {
	for _, e := range c.entries {
		for _, m := range e.Medicines {
			if m.ID == id {
				return m, true
			}
		}
	}
	return entities.MedicineRecord{}, false
}

// MedicineCount returns the number of medicine records across all diagnoses
func (c *Catalog) MedicineCount() int {
	n := 0
	for _, e := range c.entries {
		n += len(e.Medicines)
	}
	return n
}
