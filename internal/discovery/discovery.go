// Package discovery is the gateway to the generative-AI search and
// health-check capability. The model's output is an untrusted payload; it is
// validated and coerced into venue candidates here, and nothing of its raw
// shape leaks past this package.
package discovery

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"google.golang.org/genai"

	"github.com/brewmap/brewmap/pkg/errors"
	"github.com/brewmap/brewmap/pkg/logging"
	"github.com/brewmap/brewmap/pkg/venues"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.0-flash"

// Result is the outcome of a discovery search. Candidates have already been
// through coordinate validation and category normalization; Summary carries
// the model's free-text message, or the raw response when the structured
// payload could not be parsed.
type Result struct {
	Summary    string
	Candidates venues.Venues
	Sources    []string
}

// Gateway is the async capability surface the controller consumes.
type Gateway interface {
	// Search asks the service for venues matching a natural-language query,
	// optionally biased toward an origin position.
	Search(ctx context.Context, query string, origin *venues.Coordinates) (*Result, error)

	// CheckHealth estimates whether the named venue is still operating.
	// It never fails: any error or malformed payload yields StatusUnknown.
	CheckHealth(ctx context.Context, name string) (venues.AliveStatus, time.Time)
}

// Client implements Gateway against the Gemini API.
type Client struct {
	genai *genai.Client
	model string
}

// NewClient creates a Gemini-backed discovery client.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, &errors.ConfigError{
			Component: "discovery",
			Message:   "no API key configured - set GEMINI_API_KEY",
		}
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  apiKey,
	})
	if err != nil {
		return nil, &errors.APIError{
			Service:   "gemini",
			Operation: "client",
			Message:   "creating client",
			Err:       err,
		}
	}

	return &Client{genai: client, model: model}, nil
}

// Search implements Gateway.
func (c *Client) Search(ctx context.Context, query string, origin *venues.Coordinates) (*Result, error) {
	prompt := searchPrompt(query, origin)

	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	}

	resp, err := c.genai.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		return nil, &errors.APIError{
			Service:   "gemini",
			Operation: "search",
			Message:   "generate content failed",
			Err:       err,
		}
	}

	raw := resp.Text()
	result := parseSearchPayload(raw)
	result.Sources = citations(resp)

	logging.Debug().
		Int("candidates", len(result.Candidates)).
		Int("sources", len(result.Sources)).
		Msg("discovery search complete")

	return result, nil
}

// CheckHealth implements Gateway. Failures of any kind degrade to unknown.
func (c *Client) CheckHealth(ctx context.Context, name string) (venues.AliveStatus, time.Time) {
	now := time.Now().UTC()

	resp, err := c.genai.Models.GenerateContent(ctx, c.model, genai.Text(healthPrompt(name)), nil)
	if err != nil {
		logging.Warn().Err(err).Str("venue", name).Msg("health check failed, recording unknown")
		return venues.StatusUnknown, now
	}

	return parseHealthPayload(resp.Text()), now
}

// searchPrompt renders the discovery request. The response contract is a
// single JSON object: {"message": string, "breweries": [{name, description,
// address, lat, lng, category}]}.
func searchPrompt(query string, origin *venues.Coordinates) string {
	prompt := "You are a craft-beer venue scout. Find real, currently operating craft-beer venues for this request: " +
		query + "\n" +
		"Respond with a single JSON object, no surrounding prose, shaped as " +
		`{"message": "short summary", "breweries": [{"name": "", "description": "", "address": "", "lat": 0.0, "lng": 0.0, "category": ""}]}. ` +
		"Category must be one of Mythic, Gold, Silver, Common, TapRoom. " +
		"Only include venues whose coordinates you are confident about."
	if origin != nil {
		prompt += fmt.Sprintf(" Prefer venues near latitude %s, longitude %s.",
			strconv.FormatFloat(origin.Lat, 'f', -1, 64),
			strconv.FormatFloat(origin.Lng, 'f', -1, 64))
	}
	return prompt
}

// healthPrompt renders the health-check request. The response contract is
// JSON {"status": "active"|"inactive"|"unknown", "reason": string}.
func healthPrompt(name string) string {
	return "Is the craft-beer venue named \"" + name + "\" still operating? " +
		`Respond with a single JSON object, no surrounding prose, shaped as {"status": "active"|"inactive"|"unknown", "reason": ""}.`
}

// citations collects grounding source URIs when the model attaches them.
func citations(resp *genai.GenerateContentResponse) []string {
	var sources []string
	for _, cand := range resp.Candidates {
		if cand == nil || cand.GroundingMetadata == nil {
			continue
		}
		for _, chunk := range cand.GroundingMetadata.GroundingChunks {
			if chunk != nil && chunk.Web != nil && chunk.Web.URI != "" {
				sources = append(sources, chunk.Web.URI)
			}
		}
	}
	return sources
}
