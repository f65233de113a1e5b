// Package session runs chat turns end to end and owns the canonical
// models: display features, legend, statistics and search location. The
// models are replaced wholesale on each feature-bearing turn, never
// patched, so the map, legend and statistics panel can never show a
// partially updated mix.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/joeblew999/geovraag/internal/backend"
	"github.com/joeblew999/geovraag/internal/classify"
	"github.com/joeblew999/geovraag/internal/feature"
	"github.com/joeblew999/geovraag/internal/legend"
	"github.com/joeblew999/geovraag/internal/location"
	"github.com/joeblew999/geovraag/internal/stats"
)

// ErrTurnInFlight is returned while a previous query is still outstanding.
// Submission is disabled during a turn; there is no request queuing and no
// cancellation of the in-flight request.
var ErrTurnInFlight = errors.New("a query is already in flight")

// Querier is the backend boundary, satisfied by *backend.Client.
type Querier interface {
	Query(ctx context.Context, req backend.Request) (*backend.Response, error)
}

// Message is one chat transcript entry.
type Message struct {
	Role string    `json:"role"` // "user" or "assistant"
	Text string    `json:"text"`
	Time time.Time `json:"time"`
}

// Models bundles the canonical state owned by the session.
type Models struct {
	Features   []feature.Display        `json:"-"`
	LayerType  classify.LayerType       `json:"layer_type"`
	Dimension  classify.Dimension       `json:"dimension"`
	Legend     *legend.Model            `json:"legend,omitempty"`
	Statistics stats.Model              `json:"statistics"`
	Location   *location.SearchLocation `json:"location,omitempty"`
}

// TurnResult is what one completed chat turn hands to the UI.
type TurnResult struct {
	Text   string `json:"response"`
	Models Models `json:"models"`
}

// Config wires a session's collaborators. Zero fields get defaults.
type Config struct {
	Client     Querier
	Normalizer *feature.Normalizer
	Classifier *classify.Classifier
	Resolver   location.Resolver
	Bus        *Bus
	MapZoom    float64 // zoom hint echoed to the backend
}

// Session coordinates one chat conversation. It is safe for concurrent
// use; concurrent Ask calls beyond the first fail with ErrTurnInFlight.
type Session struct {
	client     Querier
	normalizer *feature.Normalizer
	classifier *classify.Classifier
	legends    *legend.Builder
	resolver   location.Resolver
	bus        *Bus
	mapZoom    float64

	mu       sync.RWMutex
	inFlight bool
	turn     int
	history  []Message
	models   Models
}

// New creates a session.
func New(cfg Config) *Session {
	if cfg.Normalizer == nil {
		cfg.Normalizer = feature.NewNormalizer(feature.DefaultBound)
	}
	if cfg.Classifier == nil {
		cfg.Classifier = classify.New()
	}
	if cfg.Resolver == nil {
		cfg.Resolver = location.NewResolver(cfg.Normalizer.InBounds)
	}
	if cfg.Bus == nil {
		cfg.Bus = NewBus()
	}
	if cfg.MapZoom == 0 {
		cfg.MapZoom = 8
	}
	return &Session{
		client:     cfg.Client,
		normalizer: cfg.Normalizer,
		classifier: cfg.Classifier,
		legends:    legend.NewBuilder(cfg.Classifier),
		resolver:   cfg.Resolver,
		bus:        cfg.Bus,
		mapZoom:    cfg.MapZoom,
		models:     emptyModels(),
	}
}

// Bus returns the session's event bus for SSE subscribers.
func (s *Session) Bus() *Bus {
	return s.bus
}

// Classifier returns the shared classifier instance backing both styling
// and the legend.
func (s *Session) Classifier() *classify.Classifier {
	return s.classifier
}

// Ask runs one chat turn: send the question, reconcile the answer, rebuild
// the models. Backend and transport failures are converted into a single
// assistant-style error message and clear the feature models, so a failed
// turn never leaves a stale map behind. Only ErrTurnInFlight is returned
// as an error.
func (s *Session) Ask(ctx context.Context, text string) (*TurnResult, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil, ErrTurnInFlight
	}
	s.inFlight = true
	s.history = append(s.history, Message{Role: "user", Text: text, Time: time.Now()})
	req := backend.Request{
		Query:           text,
		CurrentFeatures: backend.Echo(s.models.Features),
		MapZoom:         s.mapZoom,
	}
	if lat, lon, ok := feature.Centroid(s.models.Features); ok {
		req.MapCenter = &[2]float64{lon, lat}
	}
	s.mu.Unlock()

	resp, err := s.client.Query(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	s.turn++

	var result *TurnResult
	switch {
	case err != nil:
		result = s.failTurn(fmt.Sprintf("Error: %v", err))
	case resp.Shape == backend.ShapeError:
		result = s.failTurn("Error: " + resp.Text)
	case resp.Features != nil:
		result = s.featureTurn(text, resp)
	default:
		result = s.textTurn(text, resp.Text)
	}

	s.history = append(s.history, Message{Role: "assistant", Text: result.Text, Time: time.Now()})
	s.bus.Publish(Event{Kind: "turn", Turn: s.turn})
	return result, nil
}

// featureTurn rebuilds every canonical model from a feature-bearing answer
// and swaps them in atomically.
func (s *Session) featureTurn(queryText string, resp *backend.Response) *TurnResult {
	features := s.normalizer.Normalize(resp.Features)
	layerType := classify.ParseLayerType(resp.LayerType)
	dimension := s.classifier.ActiveDimension(features, layerType)

	lg := s.legends.Build(features, layerType)
	if lg != nil && resp.LegendTitle != "" {
		lg.Title = resp.LegendTitle
	}

	s.models = Models{
		Features:   features,
		LayerType:  layerType,
		Dimension:  dimension,
		Legend:     lg,
		Statistics: stats.Aggregate(features),
		Location:   s.resolver.Resolve(resp.Location, queryText, features),
	}
	return &TurnResult{Text: resp.Text, Models: s.models}
}

// textTurn keeps the current map for answers that carry no feature
// payload; only the location pin is re-resolved for the new question.
func (s *Session) textTurn(queryText, text string) *TurnResult {
	s.models.Location = s.resolver.Resolve(nil, queryText, s.models.Features)
	return &TurnResult{Text: text, Models: s.models}
}

// emptyModels is the canonical "nothing on the map" state.
func emptyModels() Models {
	return Models{
		LayerType:  classify.Generic,
		Dimension:  classify.ByNone,
		Statistics: stats.Aggregate(nil),
	}
}

// failTurn clears the feature models so a failed turn leaves a cleanly
// empty map rather than a stale layer.
func (s *Session) failTurn(text string) *TurnResult {
	s.models = emptyModels()
	return &TurnResult{Text: text, Models: s.models}
}

// Clear resets all canonical models and the transcript.
func (s *Session) Clear() {
	s.mu.Lock()
	s.models = emptyModels()
	s.history = nil
	turn := s.turn
	s.mu.Unlock()
	s.bus.Publish(Event{Kind: "clear", Turn: turn})
}

// Models returns a snapshot of the canonical models. The contained slices
// are never mutated after a turn completes, so sharing them is safe.
func (s *Session) Models() Models {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.models
}

// StyledGeoJSON renders the current features as a GeoJSON
// FeatureCollection with a per-feature "style" property derived from the
// shared classifier, ready for the map renderer.
func (s *Session) StyledGeoJSON() *geojson.FeatureCollection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fc := feature.Collection(s.models.Features)
	for i, d := range s.models.Features {
		fc.Features[i].Properties["style"] = s.classifier.Style(d, s.models.Dimension)
	}
	return fc
}

// History returns a copy of the chat transcript.
func (s *Session) History() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, len(s.history))
	copy(out, s.history)
	return out
}

// Loading reports whether a turn is currently in flight.
func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inFlight
}
