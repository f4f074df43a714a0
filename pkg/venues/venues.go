package venues

import (
	"golang.org/x/text/cases"
)

// Venues is an ordered collection of venue records.
type Venues []Venue

var nameFolder = cases.Fold()

// NameKey returns the case-folded form of a venue name, the identity used
// for de-duplication across collections.
func NameKey(name string) string {
	return nameFolder.String(name)
}

// FindByID returns the venue with the given id, or nil if absent.
func (vs Venues) FindByID(id string) *Venue {
	for i := range vs {
		if vs[i].ID == id {
			return &vs[i]
		}
	}
	return nil
}

// IndexByID returns the position of the venue with the given id, or -1.
func (vs Venues) IndexByID(id string) int {
	for i := range vs {
		if vs[i].ID == id {
			return i
		}
	}
	return -1
}

// HasName reports whether a venue with the given name (case-insensitive)
// is present.
func (vs Venues) HasName(name string) bool {
	key := NameKey(name)
	for i := range vs {
		if NameKey(vs[i].Name) == key {
			return true
		}
	}
	return false
}

// NameSet returns the case-folded names of every venue in the collection.
func (vs Venues) NameSet() map[string]struct{} {
	set := make(map[string]struct{}, len(vs))
	for i := range vs {
		set[NameKey(vs[i].Name)] = struct{}{}
	}
	return set
}

// Copy returns a new collection sharing no backing array with the receiver.
func (vs Venues) Copy() Venues {
	if vs == nil {
		return nil
	}
	out := make(Venues, len(vs))
	copy(out, vs)
	return out
}

// ByCategory groups the collection by tier, preserving record order within
// each group.
func (vs Venues) ByCategory() map[Category]Venues {
	groups := make(map[Category]Venues)
	for i := range vs {
		groups[vs[i].Category] = append(groups[vs[i].Category], vs[i])
	}
	return groups
}
