package kml

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/brewmap/brewmap/pkg/errors"
	"github.com/brewmap/brewmap/pkg/logging"
	"github.com/brewmap/brewmap/pkg/venues"
)

// Known ExtendedData field names per venue field, matched case-insensitively.
// Multiple generations of exporters named these differently; the lists are
// ordered but membership is what matters, precedence lives in the strategy
// order of decodePlacemark.
var (
	websiteAliases = []string{"website", "web", "url", "site", "gx_media_links"}
	mapsAliases    = []string{"googlemapsuri", "google_maps_uri", "maps_link", "map_link", "google_maps"}
	addressAliases = []string{"address", "direccion", "dirección", "location"}
	statusAliases  = []string{"alivestatus", "status", "active"}
)

// Parse decodes a KML document into venue records.
//
// Folder names select the category of the placemarks they contain, via the
// same normalization as venues.ParseCategory. A document without folders is
// decoded as one ungrouped pass with every placemark defaulting to Common.
// Invalid placemarks (no name, no parseable point) are skipped without
// aborting the rest of the document; only an unparseable XML document is an
// error.
func Parse(data []byte) (venues.Venues, error) {
	var doc document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewParseError("kml", "", "invalid XML document", err)
	}

	var out venues.Venues

	folders := collectFolders(doc.Document.Folders)
	if len(folders) == 0 {
		// Fallback pass: no grouping elements at all, everything is Common.
		for _, p := range doc.Document.Placemarks {
			if v, ok := decodePlacemark(p, venues.CategoryCommon); ok {
				out = append(out, v)
			}
		}
		return out, nil
	}

	for _, f := range folders {
		category := venues.ParseCategory(f.Name)
		for _, p := range f.Placemarks {
			if v, ok := decodePlacemark(p, category); ok {
				out = append(out, v)
			}
		}
	}
	return out, nil
}

// collectFolders flattens nested folders into one list. Each folder keeps
// its own label, so a sub-folder maps its own category.
func collectFolders(fs []folder) []folder {
	var out []folder
	for _, f := range fs {
		out = append(out, f)
		out = append(out, collectFolders(f.Folders)...)
	}
	return out
}

// decodePlacemark decodes a single placemark. It reports ok=false for
// records that cannot become a venue: a missing name or a point whose
// coordinates do not parse to finite numbers.
func decodePlacemark(p placemark, category venues.Category) (venues.Venue, bool) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		logging.Debug().Msg("skipping placemark without a name")
		return venues.Venue{}, false
	}

	coords, ok := parseCoordinates(p.Point.Coordinates)
	if !ok {
		logging.Debug().Str("placemark", name).Msg("skipping placemark without a parseable point")
		return venues.Venue{}, false
	}

	v := venues.Venue{
		ID:          venues.NewID(),
		Name:        name,
		Category:    category,
		Coordinates: coords,
		AliveStatus: venues.StatusUnknown,
		Description: SanitizeDescription(p.Description),
	}

	// Strategy (a): typed Data pairs.
	applyFields(&v, dataPairFields(p.ExtendedData.Data))

	// Strategy (b): flat SchemaData entries; never overwrites (a).
	applyFields(&v, schemaDataFields(p.ExtendedData.SchemaData))

	// Strategy (c): scrape anchors from the raw description HTML for the
	// link fields still empty after (a) and (b).
	if v.Website == "" || v.MapsURI == "" {
		mapsURI, website := scrapeLinks(p.Description)
		if v.MapsURI == "" {
			v.MapsURI = mapsURI
		}
		if v.Website == "" {
			v.Website = website
		}
	}

	return v, true
}

// fieldValues holds what one extraction strategy produced. Empty strings
// mean the strategy abstained for that field.
type fieldValues struct {
	website string
	mapsURI string
	address string
	status  string
}

// applyFields overlays produced values onto the venue without overwriting
// anything already found by an earlier strategy.
func applyFields(v *venues.Venue, fv fieldValues) {
	if v.Website == "" {
		v.Website = fv.website
	}
	if v.MapsURI == "" {
		v.MapsURI = fv.mapsURI
	}
	if v.Address == "" {
		v.Address = fv.address
	}
	if fv.status != "" && v.AliveStatus == venues.StatusUnknown {
		v.AliveStatus = venues.ParseAliveStatus(fv.status)
	}
}

func dataPairFields(pairs []dataPair) fieldValues {
	var fv fieldValues
	for _, pair := range pairs {
		fv.take(pair.Name, pair.Value)
	}
	return fv
}

func schemaDataFields(schemas []schemaData) fieldValues {
	var fv fieldValues
	for _, sd := range schemas {
		for _, entry := range sd.SimpleData {
			fv.take(entry.Name, entry.Value)
		}
	}
	return fv
}

// take records a name/value pair under the first alias list it matches,
// keeping the first value seen per field.
func (fv *fieldValues) take(name, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	switch {
	case fv.website == "" && matchesAlias(name, websiteAliases):
		fv.website = value
	case fv.mapsURI == "" && matchesAlias(name, mapsAliases):
		fv.mapsURI = value
	case fv.address == "" && matchesAlias(name, addressAliases):
		fv.address = value
	case fv.status == "" && matchesAlias(name, statusAliases):
		fv.status = value
	}
}

func matchesAlias(name string, aliases []string) bool {
	name = strings.TrimSpace(name)
	for _, alias := range aliases {
		if strings.EqualFold(name, alias) {
			return true
		}
	}
	return false
}

// parseCoordinates reads a "longitude,latitude[,altitude]" tuple. Altitude
// is ignored. Anything that does not produce two finite numbers fails.
func parseCoordinates(raw string) (venues.Coordinates, bool) {
	parts := strings.Split(strings.TrimSpace(raw), ",")
	if len(parts) < 2 {
		return venues.Coordinates{}, false
	}

	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return venues.Coordinates{}, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return venues.Coordinates{}, false
	}

	coords := venues.Coordinates{Lat: lat, Lng: lng}
	if !coords.Valid() {
		return venues.Coordinates{}, false
	}
	return coords, true
}
