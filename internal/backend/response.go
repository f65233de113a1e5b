// Package backend talks to the natural-language query endpoint. The
// endpoint is a black box that answers in one of several JSON shapes;
// this package reconciles them into a single Response.
package backend

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/joeblew999/geovraag/internal/feature"
	"github.com/joeblew999/geovraag/internal/location"
)

// Shape identifies which response variant the backend produced.
type Shape string

const (
	ShapeCombined     Shape = "combined"      // response text + geojson_data
	ShapeFeatureArray Shape = "feature_array" // legacy bare RawFeature array
	ShapeTextOnly     Shape = "text_only"     // {"response": "..."}
	ShapeError        Shape = "error"         // {"error": "..."}
	ShapeVerbatim     Shape = "verbatim"      // anything else, shown as-is
)

// Response is the reconciled backend answer for one turn.
type Response struct {
	Shape       Shape
	Text        string
	Features    []feature.Raw
	LayerType   string
	Location    *location.Candidate
	LegendTitle string
}

// combined mirrors the preferred response object. legend_data beyond the
// title is ignored: the legend is always rebuilt locally from the shared
// classifier so map and legend colors cannot drift apart.
type combined struct {
	Response       string              `json:"response"`
	GeoJSONData    []feature.Raw       `json:"geojson_data"`
	LayerType      string              `json:"layer_type"`
	SearchLocation *location.Candidate `json:"search_location"`
	LegendData     *struct {
		Title string `json:"title"`
	} `json:"legend_data"`
	Error string `json:"error"`
}

// ParseResponse classifies a backend response body, in priority order:
// combined object, legacy bare feature array, text-only, error object, and
// finally a verbatim dump so the user always sees something. It never
// fails: an unrecognized body becomes a ShapeVerbatim response.
func ParseResponse(body []byte) *Response {
	trimmed := strings.TrimSpace(string(body))

	var c combined
	if err := json.Unmarshal(body, &c); err == nil && strings.HasPrefix(trimmed, "{") {
		switch {
		case c.Error != "":
			return &Response{Shape: ShapeError, Text: c.Error}
		case c.GeoJSONData != nil:
			r := &Response{
				Shape:     ShapeCombined,
				Text:      c.Response,
				Features:  c.GeoJSONData,
				LayerType: c.LayerType,
				Location:  c.SearchLocation,
			}
			if r.Text == "" {
				r.Text = fmt.Sprintf("Found %d features.", len(c.GeoJSONData))
			}
			if c.LegendData != nil {
				r.LegendTitle = c.LegendData.Title
			}
			return r
		case c.Response != "":
			return &Response{Shape: ShapeTextOnly, Text: c.Response}
		}
	}

	var arr []feature.Raw
	if err := json.Unmarshal(body, &arr); err == nil && strings.HasPrefix(trimmed, "[") {
		if len(arr) > 0 && looksLikeFeature(arr[0]) {
			return &Response{
				Shape:    ShapeFeatureArray,
				Text:     fmt.Sprintf("Found %d features.", len(arr)),
				Features: arr,
			}
		}
	}

	var s string
	if err := json.Unmarshal(body, &s); err == nil {
		return &Response{Shape: ShapeVerbatim, Text: s}
	}

	return &Response{Shape: ShapeVerbatim, Text: trimmed}
}

// looksLikeFeature guards the legacy array shape: the first element must
// carry a name and coordinates to count as a feature list.
func looksLikeFeature(r feature.Raw) bool {
	return r.Name != "" && r.Lat != 0 && r.Lon != 0
}
