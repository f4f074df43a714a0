// Package store is the persistence gateway: load and save of the committed
// venue collection as one serialized blob in a local SQLite database. The
// found-set is deliberately never persisted.
package store

import (
	"context"

	"github.com/brewmap/brewmap/pkg/venues"
)

// Store persists the committed collection. Corruption or absence on load is
// "no data", never a fatal error; save is last-write-wins.
type Store interface {
	// Load returns the committed collection, or an empty collection when
	// nothing usable is stored.
	Load(ctx context.Context) (venues.Venues, error)

	// Save replaces the stored collection.
	Save(ctx context.Context, vs venues.Venues) error

	// Close releases the underlying storage handle.
	Close() error
}
