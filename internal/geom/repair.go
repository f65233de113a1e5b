package geom

import (
	"encoding/json"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// PointAt builds a Point geometry from a feature's scalar coordinates.
// GeoJSON coordinate order is (lon, lat).
func PointAt(lat, lon float64) orb.Geometry {
	return orb.Point{lon, lat}
}

// Repair turns an untrusted geometry payload into a valid orb geometry.
// The payload is coerced first (see Coerce), then decoded through
// orb/geojson. When the payload is absent, malformed, or fails to decode,
// Repair falls back to a Point at (lon, lat) so that a broken geometry is
// never handed to the rendering side. The boolean reports whether the
// original payload survived.
func Repair(raw any, lat, lon float64) (orb.Geometry, bool) {
	if raw == nil {
		return PointAt(lat, lon), false
	}

	coerced := Coerce(raw)
	data, err := json.Marshal(coerced)
	if err != nil {
		return PointAt(lat, lon), false
	}

	g, err := geojson.UnmarshalGeometry(data)
	if err != nil || g.Geometry() == nil {
		return PointAt(lat, lon), false
	}
	return g.Geometry(), true
}
