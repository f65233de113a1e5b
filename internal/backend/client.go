package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/joeblew999/geovraag/internal/feature"
)

const (
	// DefaultTimeout is the per-request timeout for query calls.
	DefaultTimeout = 60 * time.Second

	// maxResponseBytes caps the response body at 32 MB to prevent OOM on a
	// misbehaving backend.
	maxResponseBytes = 32 << 20
)

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithHTTPClient overrides the HTTP client (useful for testing).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// Client posts chat queries to the backend endpoint. One request is in
// flight per chat turn and there is no retry: a failed request surfaces
// as a single error message and the turn ends.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient creates a query client for the given endpoint URL, e.g.
// "http://localhost:5000/api/query".
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EchoFeature is a display feature as echoed back to the backend so it can
// answer follow-up questions about what is on screen.
type EchoFeature struct {
	ID         int               `json:"id"`
	Name       string            `json:"name"`
	Lat        float64           `json:"lat"`
	Lon        float64           `json:"lon"`
	Geometry   *geojson.Geometry `json:"geometry,omitempty"`
	Properties map[string]any    `json:"properties,omitempty"`
}

// Request is the outbound query payload.
type Request struct {
	Query           string        `json:"query"`
	CurrentFeatures []EchoFeature `json:"current_features,omitempty"`
	MapCenter       *[2]float64   `json:"map_center,omitempty"` // [lon, lat]
	MapZoom         float64       `json:"map_zoom,omitempty"`
}

// Echo converts display features into their echo-back form.
func Echo(features []feature.Display) []EchoFeature {
	if len(features) == 0 {
		return nil
	}
	out := make([]EchoFeature, len(features))
	for i, d := range features {
		out[i] = EchoFeature{
			ID:         d.ID,
			Name:       d.Name,
			Lat:        d.Lat,
			Lon:        d.Lon,
			Geometry:   geojson.NewGeometry(d.Geometry),
			Properties: d.Properties,
		}
	}
	return out
}

// Query posts one question and reconciles the answer. Transport failures,
// non-2xx statuses and unreadable bodies are returned as errors; anything
// the backend manages to send back is parsed best-effort via ParseResponse.
func (c *Client) Query(ctx context.Context, req Request) (*Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("query: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("query: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("query: backend returned %s: %s", resp.Status, snippet(body))
	}

	return ParseResponse(body), nil
}

// snippet trims a body for inclusion in an error message.
func snippet(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
