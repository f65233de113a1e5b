// Package api defines the Huma REST routes: the chat turn endpoint and
// read access to the canonical models for the map and side panels.
package api

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/geovraag/internal/classify"
	"github.com/joeblew999/geovraag/internal/legend"
	"github.com/joeblew999/geovraag/internal/location"
	"github.com/joeblew999/geovraag/internal/session"
	"github.com/joeblew999/geovraag/internal/stats"
)

// Handler holds the REST API handlers.
type Handler struct {
	session *session.Session
}

// NewHandler creates the REST handler around the shared session.
func NewHandler(s *session.Session) *Handler {
	return &Handler{session: s}
}

// RegisterRoutes registers all REST routes with Huma.
func (h *Handler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
	huma.Get(api, "/api/v1/info", h.GetInfo, huma.OperationTags("health"))

	huma.Post(api, "/api/v1/chat", h.PostChat, huma.OperationTags("chat"))
	huma.Post(api, "/api/v1/clear", h.PostClear, huma.OperationTags("chat"))
	huma.Get(api, "/api/v1/history", h.GetHistory, huma.OperationTags("chat"))

	huma.Get(api, "/api/v1/features", h.GetFeatures, huma.OperationTags("models"))
	huma.Get(api, "/api/v1/legend", h.GetLegend, huma.OperationTags("models"))
	huma.Get(api, "/api/v1/statistics", h.GetStatistics, huma.OperationTags("models"))
	huma.Get(api, "/api/v1/location", h.GetLocation, huma.OperationTags("models"))
}

// Types

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"1.0.0"`
}

type InfoBody struct {
	Name     string   `json:"name" doc:"Service name"`
	Version  string   `json:"version" doc:"Service version"`
	Loading  bool     `json:"loading" doc:"Whether a query turn is in flight"`
	Features []string `json:"features" doc:"Available capabilities"`
}

type ChatInput struct {
	Body struct {
		Query string `json:"query" required:"true" minLength:"1" doc:"Natural-language question" example:"Show buildings near Groningen"`
	}
}

// ChatBody is one completed chat turn. The feature list itself is fetched
// separately as GeoJSON from /api/v1/features.
type ChatBody struct {
	Response     string                   `json:"response" doc:"Assistant reply text"`
	FeatureCount int                      `json:"feature_count" doc:"Number of display features on the map"`
	LayerType    classify.LayerType       `json:"layer_type" doc:"Normalized layer type"`
	Dimension    classify.Dimension       `json:"dimension" doc:"Active classification dimension"`
	Legend       *legend.Model            `json:"legend,omitempty" doc:"Legend, absent when nothing is classifiable"`
	Statistics   stats.Model              `json:"statistics" doc:"Summary statistics"`
	Location     *location.SearchLocation `json:"location,omitempty" doc:"Resolved search location pin"`
}

type MessageBody struct {
	Message string `json:"message" doc:"Result message"`
}

// Handlers

func (h *Handler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: "1.0.0"}}, nil
}

func (h *Handler) GetInfo(ctx context.Context, input *struct{}) (*struct{ Body InfoBody }, error) {
	return &struct{ Body InfoBody }{Body: InfoBody{
		Name:     "geovraag",
		Version:  "0.1.0",
		Loading:  h.session.Loading(),
		Features: []string{"chat", "legend", "statistics", "location", "geojson"},
	}}, nil
}

func (h *Handler) PostChat(ctx context.Context, input *ChatInput) (*struct{ Body ChatBody }, error) {
	result, err := h.session.Ask(ctx, input.Body.Query)
	if errors.Is(err, session.ErrTurnInFlight) {
		return nil, huma.Error409Conflict("a query is already in flight")
	}
	if err != nil {
		return nil, huma.Error500InternalServerError("chat turn failed", err)
	}

	m := result.Models
	return &struct{ Body ChatBody }{Body: ChatBody{
		Response:     result.Text,
		FeatureCount: len(m.Features),
		LayerType:    m.LayerType,
		Dimension:    m.Dimension,
		Legend:       m.Legend,
		Statistics:   m.Statistics,
		Location:     m.Location,
	}}, nil
}

func (h *Handler) PostClear(ctx context.Context, input *struct{}) (*struct{ Body MessageBody }, error) {
	h.session.Clear()
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "Cleared"}}, nil
}

func (h *Handler) GetHistory(ctx context.Context, input *struct{}) (*struct{ Body []session.Message }, error) {
	return &struct{ Body []session.Message }{Body: h.session.History()}, nil
}

// FeaturesOutput is raw GeoJSON: a FeatureCollection whose features carry
// a "style" property derived from the shared classifier, so the map
// renderer needs no classification logic of its own.
type FeaturesOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

func (h *Handler) GetFeatures(ctx context.Context, input *struct{}) (*FeaturesOutput, error) {
	body, err := json.Marshal(h.session.StyledGeoJSON())
	if err != nil {
		return nil, huma.Error500InternalServerError("encode features", err)
	}
	return &FeaturesOutput{ContentType: "application/geo+json", Body: body}, nil
}

type LegendOutput struct {
	Body struct {
		Legend *legend.Model `json:"legend,omitempty" doc:"Legend, absent when no legend is shown"`
	}
}

func (h *Handler) GetLegend(ctx context.Context, input *struct{}) (*LegendOutput, error) {
	out := &LegendOutput{}
	out.Body.Legend = h.session.Models().Legend
	return out, nil
}

func (h *Handler) GetStatistics(ctx context.Context, input *struct{}) (*struct{ Body stats.Model }, error) {
	return &struct{ Body stats.Model }{Body: h.session.Models().Statistics}, nil
}

type LocationOutput struct {
	Body struct {
		Location *location.SearchLocation `json:"location,omitempty" doc:"Pin for the current turn, absent when none resolved"`
	}
}

func (h *Handler) GetLocation(ctx context.Context, input *struct{}) (*LocationOutput, error) {
	out := &LocationOutput{}
	out.Body.Location = h.session.Models().Location
	return out, nil
}
