package diagnosis

import (
	"maps"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MatchMethod tells which resolution step found the label
type MatchMethod string

const (
	MatchExact     MatchMethod = "exact"
	MatchSubstring MatchMethod = "substring"
	MatchAlias     MatchMethod = "alias"
)

// Match is a resolved diagnosis label
type Match struct {
	Label  string      `json:"label"`
	Method MatchMethod `json:"method"`
}

// DefaultAliases maps lay terms to canonical labels of DefaultCatalog
func DefaultAliases() map[string]string {
	return map[string]string{
		"flu":                 "Flu",
		"cold":                "Common Cold",
		"headache":            "Migraine Headache",
		"allergy":             "Allergic Rhinitis",
		"strep":               "Strep Throat",
		"uti":                 "Urinary Tract Infection",
		"gerd":                "Acid Reflux/GERD",
		"diarrhoea":           "Diarrhea",
		"diarrhea":            "Diarrhea",
		"bronchitis":          "Bronchitis",
		"high blood pressure": "Hypertension",
		"hypertension":        "Hypertension",
		"diabetes":            "Type 2 Diabetes",
		"vitamin deficiency":  "Vitamin Deficiency",
	}
}

// Resolver matches free text against a catalog. It precomputes lower-cased
// keys and is safe for concurrent use.
type Resolver struct {
	catalog *Catalog
	keys    []string
	aliases map[string]string
}

// NewResolver builds a resolver over catalog with the given alias table.
// Alias keys are normalized the same way as inputs.
func NewResolver(catalog *Catalog, aliases map[string]string) *Resolver {
	r := &Resolver{
		catalog: catalog,
		keys:    make([]string, len(catalog.entries)),
		aliases: make(map[string]string, len(aliases)),
	}
	for i, e := range catalog.entries {
		r.keys[i] = normalize(e.Label)
	}
	for k, v := range aliases {
		r.aliases[normalize(k)] = v
	}
	return r
}

// normalize trims and lower-cases s with the root locale. This is plain
// lower-casing, not case folding: "ß" stays "ß" and does not match "ss".
// A Caser keeps state, so one is made per call.
func normalize(s string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(s))
}

func (r *Resolver) Catalog() *Catalog {
	return r.catalog
}

// Aliases returns a copy of the alias table
func (r *Resolver) Aliases() map[string]string {
	return maps.Clone(r.aliases)
}

// Resolve finds the catalog label for text. Steps, in order: exact match on
// the lower-cased label, first label (definition order) whose lower-cased
// form contains the lower-cased input, exact alias lookup. ok is false when
// nothing matches, when the input is blank, or when the alias points outside
// the catalog.
func (r *Resolver) Resolve(text string) (Match, bool) {
	input := normalize(text)
	if input == "" {
		return Match{}, false
	}

	for i, key := range r.keys {
		if key == input {
			return Match{Label: r.catalog.entries[i].Label, Method: MatchExact}, true
		}
	}

	for i, key := range r.keys {
		if strings.Contains(key, input) {
			return Match{Label: r.catalog.entries[i].Label, Method: MatchSubstring}, true
		}
	}

	if label, ok := r.aliases[input]; ok && r.catalog.Has(label) {
		return Match{Label: label, Method: MatchAlias}, true
	}

	return Match{}, false
}
