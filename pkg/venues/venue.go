// Package venues defines the brewery venue domain model: the Venue record,
// the closed category and alive-status vocabularies, and the normalization
// rules shared by the KML codec and the discovery gateway.
package venues

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brewmap/brewmap/pkg/errors"
)

// Coordinates is a WGS84 position in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether both axes are finite numbers. A venue with
// non-finite coordinates cannot exist in any collection.
func (c Coordinates) Valid() bool {
	return !math.IsNaN(c.Lat) && !math.IsInf(c.Lat, 0) &&
		!math.IsNaN(c.Lng) && !math.IsInf(c.Lng, 0)
}

// Venue is a single point-of-interest record. IDs are generated client-side
// on creation and never reused; the case-insensitive name is the identity
// used for de-duplication across collections.
type Venue struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Description   string      `json:"description,omitempty"`
	Category      Category    `json:"category"`
	Coordinates   Coordinates `json:"coordinates"`
	Address       string      `json:"address,omitempty"`
	Website       string      `json:"website,omitempty"`
	MapsURI       string      `json:"mapsUri,omitempty"`
	AliveStatus   AliveStatus `json:"aliveStatus"`
	LastCheckedAt *time.Time  `json:"lastCheckedAt,omitempty"`
}

// NewID returns a fresh opaque venue identifier.
func NewID() string {
	return uuid.NewString()
}

// Validate checks the invariants every stored venue must hold: a non-empty
// name and finite coordinates.
func (v *Venue) Validate() error {
	if strings.TrimSpace(v.Name) == "" {
		return &errors.ValidationError{Field: "name", Message: "name is required"}
	}
	if !v.Coordinates.Valid() {
		return &errors.ValidationError{Field: "coordinates", Message: "latitude and longitude must be finite"}
	}
	return nil
}
