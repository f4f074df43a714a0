// Package embedded carries the default venue catalog shipped with the
// binary. It is imported silently on startup; a venue already present by
// name is never duplicated, and any failure here is non-fatal.
package embedded

import (
	"embed"
)

//go:embed breweries.kml
var fs embed.FS

// DefaultKML returns the bundled bootstrap catalog, or nil when it cannot be
// read (callers treat that as "no bootstrap data").
func DefaultKML() []byte {
	data, err := fs.ReadFile("breweries.kml")
	if err != nil {
		return nil
	}
	return data
}
