package kml

import (
	"html"
	"regexp"
	"strings"
)

var (
	brTagPattern      = regexp.MustCompile(`(?i)<br\s*/?\s*>`)
	htmlTagPattern    = regexp.MustCompile(`(?s)<[^>]*>`)
	anchorHrefPattern = regexp.MustCompile(`(?is)<a\b[^>]*\bhref\s*=\s*["']([^"']+)["']`)
)

// mapsDomains are the substrings that mark a link as a Google Maps link
// rather than a venue website.
var mapsDomains = []string{
	"google.com/maps",
	"maps.google.",
	"maps.app.goo.gl",
	"goo.gl/maps",
}

// SanitizeDescription converts description HTML into plain text for storage:
// <br> variants become newlines, every other tag is stripped, entities are
// unescaped and surrounding whitespace is trimmed. Plain text passes through
// unchanged.
func SanitizeDescription(raw string) string {
	s := brTagPattern.ReplaceAllString(raw, "\n")
	s = htmlTagPattern.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return strings.TrimSpace(s)
}

// scrapeLinks scans anchor tags in raw description HTML. The first link
// containing a maps-domain substring becomes the maps link and the first
// non-maps link becomes the website; later matches never overwrite earlier
// ones.
func scrapeLinks(raw string) (mapsURI, website string) {
	for _, match := range anchorHrefPattern.FindAllStringSubmatch(raw, -1) {
		href := strings.TrimSpace(match[1])
		if href == "" {
			continue
		}
		if isMapsLink(href) {
			if mapsURI == "" {
				mapsURI = href
			}
		} else if website == "" {
			website = href
		}
		if mapsURI != "" && website != "" {
			break
		}
	}
	return mapsURI, website
}

func isMapsLink(href string) bool {
	lower := strings.ToLower(href)
	for _, domain := range mapsDomains {
		if strings.Contains(lower, domain) {
			return true
		}
	}
	return false
}
