package domain

import (
	"time"

	"github.com/patrimoine/wealth-audit/pkg/dateutil"
)

// Person represents a parent or child of the household. The name is the
// identity key; age is always derived from the birth date.
type Person struct {
	Name      string    `yaml:"name" json:"name"`
	BirthDate time.Time `yaml:"birth_date" json:"birth_date"`
}

// Age calculates the age of the person at a given date
func (p *Person) Age(atDate time.Time) int {
	return dateutil.Age(p.BirthDate, atDate)
}

// Household groups the family members owning the audited patrimoine.
// A projection is only valid with at least one named parent.
type Household struct {
	Parents  []Person `yaml:"parents" json:"parents"`
	Children []Person `yaml:"children" json:"children"`
}

// NamedParents returns the parents carrying a non-empty name, in declaration
// order. Half-filled UI state routinely produces unnamed parents; they are
// ignored everywhere.
func (h *Household) NamedParents() []Person {
	parents := make([]Person, 0, len(h.Parents))
	for _, p := range h.Parents {
		if p.Name != "" {
			parents = append(parents, p)
		}
	}
	return parents
}

// IsSingleParent reports whether the household has exactly one named parent
func (h *Household) IsSingleParent() bool {
	return len(h.NamedParents()) == 1
}
