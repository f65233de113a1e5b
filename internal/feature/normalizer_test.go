package feature

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pointGeometry(lon, lat float64) map[string]any {
	return map[string]any{
		"type":        "Point",
		"coordinates": []any{lon, lat},
	}
}

func TestNormalizeValidFeature(t *testing.T) {
	n := NewNormalizer(DefaultBound)

	out := n.Normalize([]Raw{
		{
			Name:       "A",
			Lat:        53.2,
			Lon:        6.5,
			Geometry:   pointGeometry(6.5, 53.2),
			Properties: map[string]any{"bouwjaar": 1875.0},
		},
	})

	require.Len(t, out, 1)
	assert.Equal(t, 0, out[0].ID)
	assert.Equal(t, "A", out[0].Name)
	assert.Equal(t, orb.Point{6.5, 53.2}, out[0].Geometry)
	assert.Equal(t, 1875.0, out[0].Properties["bouwjaar"])
}

func TestNormalizeEmptyList(t *testing.T) {
	n := NewNormalizer(DefaultBound)

	out := n.Normalize(nil)

	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestNormalizeDropsOutOfBounds(t *testing.T) {
	n := NewNormalizer(DefaultBound)

	// 60°N is north of the Netherlands bounding box.
	out := n.Normalize([]Raw{
		{Name: "Oslo", Lat: 60, Lon: 5, Geometry: pointGeometry(5, 60)},
	})

	assert.Empty(t, out)
}

func TestNormalizeDropsZeroCoordinates(t *testing.T) {
	n := NewNormalizer(DefaultBound)

	out := n.Normalize([]Raw{
		{Name: "no lat", Lat: 0, Lon: 5.5, Geometry: pointGeometry(5.5, 0)},
		{Name: "no lon", Lat: 52.0, Lon: 0, Geometry: pointGeometry(0, 52.0)},
	})

	assert.Empty(t, out)
}

func TestNormalizeDropsMissingGeometry(t *testing.T) {
	n := NewNormalizer(DefaultBound)

	out := n.Normalize([]Raw{
		{Name: "no geom", Lat: 52.0, Lon: 5.0},
	})

	assert.Empty(t, out)
}

func TestNormalizeDegradesBadGeometryToPoint(t *testing.T) {
	n := NewNormalizer(DefaultBound)

	out := n.Normalize([]Raw{
		{
			Name:     "broken",
			Lat:      52.4,
			Lon:      4.9,
			Geometry: map[string]any{"type": "Polygon", "coordinates": "garbage"},
		},
	})

	require.Len(t, out, 1)
	assert.Equal(t, orb.Point{4.9, 52.4}, out[0].Geometry)
}

func TestNormalizeKeepsInputOrderAndReassignsIDs(t *testing.T) {
	n := NewNormalizer(DefaultBound)

	out := n.Normalize([]Raw{
		{Name: "a", Lat: 52.0, Lon: 5.0, Geometry: pointGeometry(5.0, 52.0)},
		{Name: "dropped", Lat: 60, Lon: 5, Geometry: pointGeometry(5, 60)},
		{Name: "b", Lat: 52.1, Lon: 5.1, Geometry: pointGeometry(5.1, 52.1)},
	})

	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].Name)
	assert.Equal(t, 0, out[0].ID)
	assert.Equal(t, "b", out[1].Name)
	assert.Equal(t, 1, out[1].ID)
}

func TestCentroid(t *testing.T) {
	lat, lon, ok := Centroid([]Display{
		{Lat: 52.0, Lon: 5.0},
		{Lat: 53.0, Lon: 6.0},
	})

	require.True(t, ok)
	assert.InDelta(t, 52.5, lat, 1e-9)
	assert.InDelta(t, 5.5, lon, 1e-9)

	_, _, ok = Centroid(nil)
	assert.False(t, ok)
}

func TestNumericProperty(t *testing.T) {
	d := Display{Properties: map[string]any{
		"area_m2":  250.0,
		"bouwjaar": "1932",
		"label":    "x",
	}}

	v, ok := d.NumericProperty("area_m2")
	require.True(t, ok)
	assert.Equal(t, 250.0, v)

	v, ok = d.NumericProperty("bouwjaar")
	require.True(t, ok)
	assert.Equal(t, 1932.0, v)

	_, ok = d.NumericProperty("label")
	assert.False(t, ok)
	_, ok = d.NumericProperty("missing")
	assert.False(t, ok)
}

func TestGeoJSONCollection(t *testing.T) {
	n := NewNormalizer(DefaultBound)
	out := n.Normalize([]Raw{
		{Name: "A", Description: "d", Lat: 53.2, Lon: 6.5, Geometry: pointGeometry(6.5, 53.2),
			Properties: map[string]any{"bouwjaar": 1875.0}},
	})

	fc := Collection(out)

	require.Len(t, fc.Features, 1)
	f := fc.Features[0]
	assert.Equal(t, "A", f.Properties["name"])
	assert.Equal(t, "d", f.Properties["description"])
	assert.Equal(t, 1875.0, f.Properties["bouwjaar"])
	assert.Equal(t, orb.Point{6.5, 53.2}, f.Geometry)
}
