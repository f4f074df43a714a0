package kml

import (
	"encoding/xml"
	"strconv"

	"github.com/brewmap/brewmap/pkg/errors"
	"github.com/brewmap/brewmap/pkg/venues"
)

// Encode-side document shape. Name and description are emitted as CDATA so
// embedded markup survives as opaque text.
type exportDocument struct {
	XMLName  xml.Name     `xml:"kml"`
	Xmlns    string       `xml:"xmlns,attr"`
	Document exportFolder `xml:"Document"`
}

type exportFolder struct {
	Name       string            `xml:"name"`
	Folders    []exportGroup     `xml:"Folder,omitempty"`
	Placemarks []exportPlacemark `xml:"Placemark,omitempty"`
}

type exportGroup struct {
	Name       string            `xml:"name"`
	Placemarks []exportPlacemark `xml:"Placemark"`
}

type exportPlacemark struct {
	Name         cdata               `xml:"name"`
	Description  *cdata              `xml:"description,omitempty"`
	ExtendedData *exportExtendedData `xml:"ExtendedData,omitempty"`
	Point        exportPoint         `xml:"Point"`
}

type cdata struct {
	Value string `xml:",cdata"`
}

type exportExtendedData struct {
	Data []dataPair `xml:"Data"`
}

type exportPoint struct {
	Coordinates string `xml:"coordinates"`
}

// Serialize encodes the collection as a KML document: one folder per
// category in the fixed tier order, empty tiers omitted. Optional fields are
// emitted as ExtendedData entries only when present, so the decoder's
// alias matching round-trips them exactly.
func Serialize(vs venues.Venues) ([]byte, error) {
	doc := exportDocument{
		Xmlns: Namespace,
		Document: exportFolder{
			Name: "Breweries",
		},
	}

	groups := vs.ByCategory()
	for _, category := range venues.Categories {
		members := groups[category]
		if len(members) == 0 {
			continue
		}
		group := exportGroup{Name: category.String()}
		for i := range members {
			group.Placemarks = append(group.Placemarks, encodePlacemark(&members[i]))
		}
		doc.Document.Folders = append(doc.Document.Folders, group)
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.WrapParse("kml", "", err)
	}
	return append([]byte(xml.Header), body...), nil
}

func encodePlacemark(v *venues.Venue) exportPlacemark {
	p := exportPlacemark{
		Name:  cdata{Value: v.Name},
		Point: exportPoint{Coordinates: formatCoordinates(v.Coordinates)},
	}
	if v.Description != "" {
		p.Description = &cdata{Value: v.Description}
	}

	var data []dataPair
	if v.Address != "" {
		data = append(data, dataPair{Name: "address", Value: v.Address})
	}
	if v.Website != "" {
		data = append(data, dataPair{Name: "website", Value: v.Website})
	}
	if v.MapsURI != "" {
		data = append(data, dataPair{Name: "google_maps_uri", Value: v.MapsURI})
	}
	if v.AliveStatus != "" && v.AliveStatus != venues.StatusUnknown {
		data = append(data, dataPair{Name: "aliveStatus", Value: v.AliveStatus.String()})
	}
	if len(data) > 0 {
		p.ExtendedData = &exportExtendedData{Data: data}
	}

	return p
}

// formatCoordinates renders "longitude,latitude,0" with shortest exact
// float formatting so coordinates round-trip without precision loss.
func formatCoordinates(c venues.Coordinates) string {
	return strconv.FormatFloat(c.Lng, 'f', -1, 64) + "," +
		strconv.FormatFloat(c.Lat, 'f', -1, 64) + ",0"
}
