package kml_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brewmap/brewmap/pkg/kml"
	"github.com/brewmap/brewmap/pkg/venues"
)

const folderedDoc = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
  <Document>
    <name>Breweries</name>
    <Folder>
      <name>Lúpulo de Oro</name>
      <Placemark>
        <name>Fábrica Maravillas</name>
        <description><![CDATA[Brewpub in Malasaña.<br><a href="https://fmaravillas.com">web</a>]]></description>
        <ExtendedData>
          <Data name="address"><value>Calle de Valverde 29</value></Data>
        </ExtendedData>
        <Point><coordinates>-3.7009,40.4235,0</coordinates></Point>
      </Placemark>
    </Folder>
    <Folder>
      <name>Mítico</name>
      <Placemark>
        <name>Cervecera Vieja</name>
        <ExtendedData>
          <Data name="aliveStatus"><value>inactive</value></Data>
        </ExtendedData>
        <Point><coordinates>-3.70,40.42</coordinates></Point>
      </Placemark>
    </Folder>
  </Document>
</kml>`

func TestParseFolderSelectsCategory(t *testing.T) {
	got, err := kml.Parse([]byte(folderedDoc))
	require.NoError(t, err)
	require.Len(t, got, 2)

	gold := got[0]
	assert.Equal(t, "Fábrica Maravillas", gold.Name)
	assert.Equal(t, venues.CategoryGold, gold.Category)
	assert.Equal(t, venues.Coordinates{Lat: 40.4235, Lng: -3.7009}, gold.Coordinates)
	assert.Equal(t, "Calle de Valverde 29", gold.Address)
	assert.Equal(t, venues.StatusUnknown, gold.AliveStatus)
	assert.NotEmpty(t, gold.ID)

	mythic := got[1]
	assert.Equal(t, venues.CategoryMythic, mythic.Category)
	assert.Equal(t, venues.StatusInactive, mythic.AliveStatus)
}

func TestParseUngroupedDefaultsToCommon(t *testing.T) {
	doc := `<kml xmlns="http://www.opengis.net/kml/2.2"><Document>
	  <Placemark><name>Loose One</name><Point><coordinates>-3.5,40.1,0</coordinates></Point></Placemark>
	</Document></kml>`

	got, err := kml.Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, venues.CategoryCommon, got[0].Category)
}

func TestParseSkipsBadPlacemarksKeepsSiblings(t *testing.T) {
	doc := `<kml xmlns="http://www.opengis.net/kml/2.2"><Document><Folder>
	  <name>Silver</name>
	  <Placemark><name>Bad Coords</name><Point><coordinates>notanumber,40.1</coordinates></Point></Placemark>
	  <Placemark><Point><coordinates>-3.5,40.1</coordinates></Point></Placemark>
	  <Placemark><name>Good One</name><Point><coordinates>-3.5,40.1</coordinates></Point></Placemark>
	</Folder></Document></kml>`

	got, err := kml.Parse([]byte(doc))
	require.NoError(t, err, "bad placemarks are skipped, not fatal")
	require.Len(t, got, 1)
	assert.Equal(t, "Good One", got[0].Name)
	assert.Equal(t, venues.CategorySilver, got[0].Category)
}

func TestParseRejectsOnlyBrokenXML(t *testing.T) {
	_, err := kml.Parse([]byte(`<kml><Document><Folder>`))
	require.Error(t, err)
}

func TestParseFieldAliasesAndPrecedence(t *testing.T) {
	// Data pairs beat SchemaData, which beat links scraped from the
	// description. The maps alias list spans legacy spellings.
	doc := `<kml xmlns="http://www.opengis.net/kml/2.2"><Document><Folder>
	  <name>Gold</name>
	  <Placemark>
	    <name>Alias Test</name>
	    <description><![CDATA[<a href="https://maps.app.goo.gl/xyz">map</a><a href="https://scraped.example">site</a>]]></description>
	    <ExtendedData>
	      <Data name="Web"><value>https://typed.example</value></Data>
	      <SchemaData>
	        <SimpleData name="maps_link">https://maps.google.com/schema</SimpleData>
	        <SimpleData name="direccion">Gran Vía 1</SimpleData>
	      </SchemaData>
	    </ExtendedData>
	    <Point><coordinates>-3.5,40.1,0</coordinates></Point>
	  </Placemark>
	</Folder></Document></kml>`

	got, err := kml.Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, got, 1)

	v := got[0]
	assert.Equal(t, "https://typed.example", v.Website, "typed Data pair wins")
	assert.Equal(t, "https://maps.google.com/schema", v.MapsURI, "SchemaData fills what Data left empty")
	assert.Equal(t, "Gran Vía 1", v.Address)
}

func TestParseScrapesLinksFromDescription(t *testing.T) {
	doc := `<kml xmlns="http://www.opengis.net/kml/2.2"><Document><Folder>
	  <name>Common</name>
	  <Placemark>
	    <name>Scrape Me</name>
	    <description><![CDATA[Great taps.<br/><a href="https://goo.gl/maps/abc">Maps</a> <a href="https://brewery.example">Home</a>]]></description>
	    <Point><coordinates>-3.5,40.1</coordinates></Point>
	  </Placemark>
	</Folder></Document></kml>`

	got, err := kml.Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, got, 1)

	v := got[0]
	assert.Equal(t, "https://goo.gl/maps/abc", v.MapsURI)
	assert.Equal(t, "https://brewery.example", v.Website)
	assert.Equal(t, "Great taps.\nMaps Home", v.Description, "description keeps text, drops markup")
}

func TestSanitizeDescription(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"line one<br>line two<BR/>line three", "line one\nline two\nline three"},
		{"<b>bold</b> &amp; <i>proud</i>", "bold & proud"},
		{"  padded  ", "padded"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, kml.SanitizeDescription(tt.in), "input %q", tt.in)
	}
}
