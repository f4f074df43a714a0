// Package reconcile holds the pure merge and lifecycle operations over venue
// collections. Every function takes collection values and returns new
// collection values: no mutation in place, no I/O. The controller serializes
// calls, so these functions carry the whole concurrency story.
//
// Identity is two-layered: record ids are opaque and unique across the
// committed collection and the found-set, while the case-insensitive name is
// the de-duplication key when new batches arrive.
package reconcile

import (
	"time"

	"github.com/brewmap/brewmap/pkg/errors"
	"github.com/brewmap/brewmap/pkg/venues"
)

// MergeImported appends every incoming record whose name does not already
// appear (case-insensitively) in existing. Colliding records are dropped
// silently; only the aggregate count of additions is reported.
func MergeImported(existing, incoming venues.Venues) (venues.Venues, int) {
	names := existing.NameSet()
	merged := existing.Copy()

	added := 0
	for i := range incoming {
		key := venues.NameKey(incoming[i].Name)
		if _, exists := names[key]; exists {
			continue
		}
		names[key] = struct{}{}
		merged = append(merged, incoming[i])
		added++
	}
	return merged, added
}

// StageDiscovered filters incoming against existing by the same name rule
// and returns the survivors as the new found-set. The previous found-set is
// replaced outright; staging never accumulates across searches.
func StageDiscovered(existing, incoming venues.Venues) venues.Venues {
	names := existing.NameSet()

	var staged venues.Venues
	for i := range incoming {
		key := venues.NameKey(incoming[i].Name)
		if _, exists := names[key]; exists {
			continue
		}
		names[key] = struct{}{}
		staged = append(staged, incoming[i])
	}
	return staged
}

// Promote moves the record with the given id out of staged and appends it to
// existing. When the id is not staged, both inputs are returned unchanged, so
// promoting twice is a no-op.
func Promote(existing, staged venues.Venues, id string) (venues.Venues, venues.Venues) {
	idx := staged.IndexByID(id)
	if idx < 0 {
		return existing, staged
	}

	promoted := staged[idx]

	newStaged := make(venues.Venues, 0, len(staged)-1)
	newStaged = append(newStaged, staged[:idx]...)
	newStaged = append(newStaged, staged[idx+1:]...)

	newExisting := existing.Copy()
	newExisting = append(newExisting, promoted)

	return newExisting, newStaged
}

// Discard removes the record with the given id from staged, leaving no
// trace. Absent ids are a no-op.
func Discard(staged venues.Venues, id string) venues.Venues {
	idx := staged.IndexByID(id)
	if idx < 0 {
		return staged
	}
	out := make(venues.Venues, 0, len(staged)-1)
	out = append(out, staged[:idx]...)
	out = append(out, staged[idx+1:]...)
	return out
}

// Patch is a partial venue update. Nil fields are left untouched by
// ApplyEdit; the id, alive status and check timestamp are never patched
// through this path.
type Patch struct {
	Name        *string
	Description *string
	Category    *venues.Category
	Coordinates *venues.Coordinates
	Address     *string
	Website     *string
	MapsURI     *string
}

// ApplyEdit overlays patch onto the record with the given id and replaces it
// if the resulting record still validates (non-empty name, finite
// coordinates). On a failed validation or an unknown id the input collection
// is returned unchanged alongside the error; there is no partial write.
func ApplyEdit(collection venues.Venues, id string, patch Patch) (venues.Venues, error) {
	idx := collection.IndexByID(id)
	if idx < 0 {
		return collection, errors.NewNotFoundError("venue", id)
	}

	edited := collection[idx]
	if patch.Name != nil {
		edited.Name = *patch.Name
	}
	if patch.Description != nil {
		edited.Description = *patch.Description
	}
	if patch.Category != nil {
		edited.Category = *patch.Category
	}
	if patch.Coordinates != nil {
		edited.Coordinates = *patch.Coordinates
	}
	if patch.Address != nil {
		edited.Address = *patch.Address
	}
	if patch.Website != nil {
		edited.Website = *patch.Website
	}
	if patch.MapsURI != nil {
		edited.MapsURI = *patch.MapsURI
	}

	if err := edited.Validate(); err != nil {
		return collection, err
	}

	out := collection.Copy()
	out[idx] = edited
	return out, nil
}

// HealthUpdate sets only the alive status and last-checked timestamp of the
// matching record. Every other field is untouched. Absent ids return the
// collection unchanged with a not-found error.
func HealthUpdate(collection venues.Venues, id string, status venues.AliveStatus, checkedAt time.Time) (venues.Venues, error) {
	idx := collection.IndexByID(id)
	if idx < 0 {
		return collection, errors.NewNotFoundError("venue", id)
	}

	out := collection.Copy()
	out[idx].AliveStatus = status
	ts := checkedAt
	out[idx].LastCheckedAt = &ts
	return out, nil
}
