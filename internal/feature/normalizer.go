package feature

import (
	"log"
	"math"
	"strconv"

	"github.com/paulmach/orb"

	"github.com/joeblew999/geovraag/internal/geom"
)

// DefaultBound is the Netherlands bounding box used to reject clearly
// invalid coordinates: 50.5–53.8 °N, 3.0–7.5 °E. Bound coordinates are
// (lon, lat) per orb convention.
var DefaultBound = orb.Bound{
	Min: orb.Point{3.0, 50.5},
	Max: orb.Point{7.5, 53.8},
}

// Normalizer validates and filters raw backend features into display
// features. It is stateless and safe for concurrent use.
type Normalizer struct {
	bound orb.Bound
}

// NewNormalizer creates a normalizer restricted to the given bounding box.
func NewNormalizer(bound orb.Bound) *Normalizer {
	return &Normalizer{bound: bound}
}

// Bound returns the normalizer's bounding box.
func (n *Normalizer) Bound() orb.Bound {
	return n.bound
}

// InBounds reports whether a lat/lon pair is finite, non-zero and inside
// the bounding box.
func (n *Normalizer) InBounds(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return false
	}
	if lat == 0 || lon == 0 {
		return false
	}
	return n.bound.Contains(orb.Point{lon, lat})
}

// Normalize converts a raw feature list into display features. Each raw
// feature is validated in order and dropped silently on the first failure:
// geometry and coordinates must be present, coordinates must be non-zero
// and inside the bounding box. A feature whose geometry payload fails to
// parse is kept with a Point geometry at its scalar coordinates, never
// dropped. Output order follows input order with ids assigned from 0; the
// input is never mutated.
func (n *Normalizer) Normalize(raws []Raw) []Display {
	out := make([]Display, 0, len(raws))
	dropped := 0

	for _, r := range raws {
		if r.Geometry == nil {
			dropped++
			continue
		}
		if !n.InBounds(r.Lat, r.Lon) {
			dropped++
			continue
		}

		g, _ := geom.Repair(r.Geometry, r.Lat, r.Lon)

		props := make(map[string]any, len(r.Properties))
		for k, v := range r.Properties {
			props[k] = v
		}

		out = append(out, Display{
			ID:          len(out),
			Name:        r.Name,
			Description: r.Description,
			Lat:         r.Lat,
			Lon:         r.Lon,
			Geometry:    g,
			Properties:  props,
		})
	}

	if dropped > 0 {
		log.Printf("normalize: dropped %d of %d features", dropped, len(raws))
	}
	return out
}

// numeric coerces a property value to float64. The backend mixes JSON
// numbers with stringified numbers, so both are accepted.
func numeric(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
