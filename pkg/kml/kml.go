// Package kml maps venue collections to and from KML 2.2 documents.
//
// The decoder is tolerant by design: placemarks written by several legacy
// tools use different ExtendedData field names, links are sometimes buried
// in description HTML, and a single malformed placemark must never abort an
// import. Each placemark is decoded independently through an ordered list of
// extraction strategies per field; a strategy either produces a value or
// abstains, and the first produced value wins.
package kml

import (
	"encoding/xml"
	"fmt"
	"time"
)

// Namespace is the KML 2.2 XML namespace.
const Namespace = "http://www.opengis.net/kml/2.2"

// document is the decode-side shape of a KML file. Only the elements the
// importer cares about are mapped; everything else is ignored.
type document struct {
	XMLName  xml.Name  `xml:"kml"`
	Document container `xml:"Document"`
}

type container struct {
	Name       string      `xml:"name"`
	Folders    []folder    `xml:"Folder"`
	Placemarks []placemark `xml:"Placemark"`
}

type folder struct {
	Name       string      `xml:"name"`
	Folders    []folder    `xml:"Folder"`
	Placemarks []placemark `xml:"Placemark"`
}

type placemark struct {
	Name         string       `xml:"name"`
	Description  string       `xml:"description"`
	ExtendedData extendedData `xml:"ExtendedData"`
	Point        point        `xml:"Point"`
}

type point struct {
	Coordinates string `xml:"coordinates"`
}

type extendedData struct {
	Data       []dataPair   `xml:"Data"`
	SchemaData []schemaData `xml:"SchemaData"`
}

// dataPair is a typed <Data name="..."><value>...</value></Data> entry.
type dataPair struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value"`
}

// schemaData is the flatter <SchemaData><SimpleData name="..."> scheme some
// exporters emit instead of Data pairs.
type schemaData struct {
	SimpleData []simpleData `xml:"SimpleData"`
}

type simpleData struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

// ExportFilename returns the conventional export name, encoding the record
// count and the given date: breweries_<count>_<YYYY-MM-DD>.kml.
func ExportFilename(count int, now time.Time) string {
	return fmt.Sprintf("breweries_%d_%s.kml", count, now.Format("2006-01-02"))
}
