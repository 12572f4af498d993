package ingest

import "strings"

// NotFound marks a mapping whose sentinel matched no task header cell.
const NotFound = -1

// Mapping binds one task-header column to the task it produces for every
// country row.
type Mapping struct {
	Column       int
	Sentinel     string // substring identifying the column in the task header
	Name         string
	Section      string
	Suffix       string   // id suffix, e.g. "gc8-1"
	Dependencies []string // id suffixes within the same country
}

// DefaultMappings returns the mappings for the country support sheet with
// every column unresolved.
func DefaultMappings() []Mapping {
	return []Mapping{
		{Column: NotFound, Sentinel: "Malaria Program Reviews", Name: "Malaria Program Review", Section: "gc8", Suffix: "gc8-1"},
		{Column: NotFound, Sentinel: "Midterm Reviews of NMSPs", Name: "NSP at Mid-Level completed?", Section: "gc8", Suffix: "gc8-2", Dependencies: []string{"gc8-1"}},
		{Column: NotFound, Sentinel: "Sub National Tailoring", Name: "Sub National Tailoring", Section: "gc8", Suffix: "gc8-3", Dependencies: []string{"gc8-2"}},
		{Column: NotFound, Sentinel: "Addendum to Strategic Plan", Name: "Malaria Matchbox – if priority country", Section: "gc8", Suffix: "gc8-4", Dependencies: []string{"gc8-3"}},
		{Column: NotFound, Sentinel: "National Malaria Strategic Planning", Name: "Research", Section: "nsp", Suffix: "nsp-1"},
		{Column: NotFound, Sentinel: "Epi Stratificaton", Name: "Costing", Section: "nsp", Suffix: "nsp-2", Dependencies: []string{"nsp-1"}},
		{Column: NotFound, Sentinel: "Coop Development", Name: "Operation Plan", Section: "nsp", Suffix: "nsp-3", Dependencies: []string{"nsp-2"}},
	}
}

// ScopeKey lower-cases name and replaces every character outside [a-z0-9]
// with a hyphen.
func ScopeKey(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('-')
	}
	return b.String()
}
