package discovery

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/brewmap/brewmap/pkg/kml"
	"github.com/brewmap/brewmap/pkg/logging"
	"github.com/brewmap/brewmap/pkg/venues"
)

// searchPayload is the shape the model is asked to produce. It is decoded
// leniently: models wrap JSON in code fences, quote numbers, or drop fields.
type searchPayload struct {
	Message   string         `json:"message"`
	Breweries []rawCandidate `json:"breweries"`
}

type rawCandidate struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Address     string      `json:"address"`
	Lat         looseNumber `json:"lat"`
	Lng         looseNumber `json:"lng"`
	Category    string      `json:"category"`
}

type healthPayload struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// looseNumber accepts a JSON number or a numeric string and records whether
// anything usable arrived.
type looseNumber struct {
	value float64
	ok    bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *looseNumber) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		// Leave the candidate coordinate unset; the venue is dropped later.
		return nil
	}
	n.value = f
	n.ok = true
	return nil
}

// parseSearchPayload coerces raw model output into a Result. Unparseable
// output yields zero candidates with the raw text preserved as the summary,
// so the user still sees what came back.
func parseSearchPayload(raw string) *Result {
	body, ok := extractJSON(raw)
	if !ok {
		return &Result{Summary: strings.TrimSpace(raw)}
	}

	var payload searchPayload
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		logging.Debug().Err(err).Msg("discovery payload is not the expected shape")
		return &Result{Summary: strings.TrimSpace(raw)}
	}

	result := &Result{Summary: strings.TrimSpace(payload.Message)}
	for _, rc := range payload.Breweries {
		if v, ok := coerceCandidate(rc); ok {
			result.Candidates = append(result.Candidates, v)
		}
	}
	return result
}

// parseHealthPayload coerces raw model output into a status. Anything that
// does not parse is unknown.
func parseHealthPayload(raw string) venues.AliveStatus {
	body, ok := extractJSON(raw)
	if !ok {
		return venues.StatusUnknown
	}
	var payload healthPayload
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return venues.StatusUnknown
	}
	return venues.ParseAliveStatus(payload.Status)
}

// coerceCandidate validates one untrusted candidate into a Venue: a name and
// finite coordinates are required, the category label goes through the
// normalization of the domain model, and the description is sanitized the
// same way imported KML descriptions are.
func coerceCandidate(rc rawCandidate) (venues.Venue, bool) {
	name := strings.TrimSpace(rc.Name)
	if name == "" || !rc.Lat.ok || !rc.Lng.ok {
		return venues.Venue{}, false
	}

	coords := venues.Coordinates{Lat: rc.Lat.value, Lng: rc.Lng.value}
	if !coords.Valid() {
		return venues.Venue{}, false
	}

	return venues.Venue{
		ID:          venues.NewID(),
		Name:        name,
		Description: kml.SanitizeDescription(rc.Description),
		Category:    venues.ParseCategory(rc.Category),
		Coordinates: coords,
		Address:     strings.TrimSpace(rc.Address),
		AliveStatus: venues.StatusUnknown,
	}, true
}

// extractJSON pulls the first JSON object out of raw model text, tolerating
// markdown code fences and surrounding prose.
func extractJSON(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	if idx := strings.Index(s, "```"); idx >= 0 {
		rest := s[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end >= 0 {
			s = rest[:end]
		} else {
			s = rest
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
