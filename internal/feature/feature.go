// Package feature defines the canonical display feature and the normalizer
// that derives it from untrusted backend payloads.
package feature

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Raw is a single untrusted feature as the query backend delivers it.
// Any field may be missing, zero, or malformed; Geometry is kept as the
// decoded JSON value so it can be repaired before use.
type Raw struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Lat         float64        `json:"lat"`
	Lon         float64        `json:"lon"`
	Geometry    any            `json:"geometry,omitempty"`
	Properties  map[string]any `json:"properties,omitempty"`
}

// Display is the canonical, validated feature every downstream consumer
// works with. Instances are built once per query response and never
// mutated; the whole list is replaced on the next turn.
type Display struct {
	ID          int            `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Lat         float64        `json:"lat"`
	Lon         float64        `json:"lon"`
	Geometry    orb.Geometry   `json:"-"`
	Properties  map[string]any `json:"properties"`
}

// GeoJSON converts the feature to a geojson.Feature for the map renderer.
// Identity and coordinates ride along in the properties so the renderer
// needs nothing beyond the feature itself.
func (d Display) GeoJSON() *geojson.Feature {
	f := geojson.NewFeature(d.Geometry)
	f.ID = d.ID
	f.Properties = geojson.Properties{
		"id":   d.ID,
		"name": d.Name,
		"lat":  d.Lat,
		"lon":  d.Lon,
	}
	if d.Description != "" {
		f.Properties["description"] = d.Description
	}
	for k, v := range d.Properties {
		f.Properties[k] = v
	}
	return f
}

// Collection converts a display list to a GeoJSON FeatureCollection.
func Collection(features []Display) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, d := range features {
		fc.Append(d.GeoJSON())
	}
	return fc
}

// Centroid returns the arithmetic mean of the features' lat/lon pairs.
// ok is false for an empty list.
func Centroid(features []Display) (lat, lon float64, ok bool) {
	if len(features) == 0 {
		return 0, 0, false
	}
	for _, d := range features {
		lat += d.Lat
		lon += d.Lon
	}
	n := float64(len(features))
	return lat / n, lon / n, true
}

// NumericProperty reads a property as float64, accepting the numeric and
// stringified-number forms that the backend mixes freely.
func (d Display) NumericProperty(key string) (float64, bool) {
	return numeric(d.Properties[key])
}

// StringProperty reads a property as a string.
func (d Display) StringProperty(key string) (string, bool) {
	v, ok := d.Properties[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
