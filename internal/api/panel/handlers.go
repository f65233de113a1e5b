package panel

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/geovraag/internal/session"
	"github.com/joeblew999/geovraag/internal/templates"
)

// Handler serves the Datastar side-panel endpoints.
type Handler struct {
	session  *session.Session
	renderer *templates.Renderer
}

// NewHandler creates the panel handler.
func NewHandler(s *session.Session, renderer *templates.Renderer) *Handler {
	return &Handler{session: s, renderer: renderer}
}

// RegisterRoutes registers the panel SSE routes.
func (h *Handler) RegisterRoutes(api huma.API) {
	huma.Post(api, "/api/v1/panel/chat", h.Chat, huma.OperationTags("panel"))
	huma.Get(api, "/api/v1/panel/events", h.Events, huma.OperationTags("panel"))
	huma.Get(api, "/api/v1/panel/refresh", h.Refresh, huma.OperationTags("panel"))
}

// patchPanels re-renders the legend, statistics and transcript fragments
// from the current canonical models.
func (h *Handler) patchPanels(sse *SSE) {
	models := h.session.Models()
	sse.Patch(h.renderer.MustRender("legend", models.Legend), "#legend-panel")
	sse.Patch(h.renderer.MustRender("statistics", models.Statistics), "#stats-panel")
	sse.Patch(h.renderer.MustRender("chatlog", h.session.History()), "#chat-log")
}

// Chat runs one chat turn from a Datastar form submission. The question
// arrives as the "query" signal; panels are re-patched when the turn
// completes.
func (h *Handler) Chat(ctx context.Context, input *SignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	query := signals.String("query")
	if query == "" {
		return nil, huma.Error400BadRequest("Query is required")
	}

	return &huma.StreamResponse{
		Body: func(humaCtx huma.Context) {
			sse := NewSSE(humaCtx)
			sse.Signals(map[string]any{"loading": true})

			result, err := h.session.Ask(ctx, query)
			if errors.Is(err, session.ErrTurnInFlight) {
				sse.Error("A query is already running")
				sse.Signals(map[string]any{"loading": false})
				return
			}

			h.patchPanels(sse)
			sse.Signals(map[string]any{
				"loading":  false,
				"query":    "",
				"response": result.Text,
			})
		},
	}, nil
}

// Events streams panel updates driven by session events, so panels opened
// in other tabs follow along.
func (h *Handler) Events(ctx context.Context, input *EmptyInput) (*huma.StreamResponse, error) {
	return &huma.StreamResponse{
		Body: func(humaCtx huma.Context) {
			sse := NewSSE(humaCtx)
			ch := h.session.Bus().Subscribe()
			defer h.session.Bus().Unsubscribe(ch)

			for {
				select {
				case <-ctx.Done():
					return
				case <-ch:
					h.patchPanels(sse)
				}
			}
		},
	}, nil
}

// Refresh patches the panels once from current state, used on page load.
func (h *Handler) Refresh(ctx context.Context, input *EmptyInput) (*huma.StreamResponse, error) {
	return &huma.StreamResponse{
		Body: func(humaCtx huma.Context) {
			h.patchPanels(NewSSE(humaCtx))
		},
	}, nil
}
