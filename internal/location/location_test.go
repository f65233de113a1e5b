package location

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/geovraag/internal/feature"
)

func testBounds(lat, lon float64) bool {
	return lat >= 50.5 && lat <= 53.8 && lon >= 3.0 && lon <= 7.5
}

func inBoundsFeatures() []feature.Display {
	return []feature.Display{
		{Lat: 53.1, Lon: 6.4},
		{Lat: 53.3, Lon: 6.6},
	}
}

func TestResolveBackendProvided(t *testing.T) {
	r := NewResolver(testBounds)

	loc := r.Resolve(&Candidate{Lat: 52.37, Lon: 4.89, Name: "Amsterdam"}, "irrelevant", nil)

	require.NotNil(t, loc)
	assert.Equal(t, SourceBackend, loc.Source)
	assert.Equal(t, 52.37, loc.Lat)
	assert.Equal(t, "Amsterdam", loc.Name)
}

func TestResolveBackendOutOfBoundsFallsThrough(t *testing.T) {
	r := NewResolver(testBounds)

	loc := r.Resolve(&Candidate{Lat: 60, Lon: 5, Name: "Oslo"}, "Show buildings near Groningen", inBoundsFeatures())

	require.NotNil(t, loc)
	assert.Equal(t, SourceCentroid, loc.Source)
	assert.Equal(t, "Groningen", loc.Name)
}

func TestResolveBackendZeroCoordinatesFallsThrough(t *testing.T) {
	r := NewResolver(testBounds)

	loc := r.Resolve(&Candidate{Lat: 0, Lon: 0, Name: "nowhere"}, "no place here", nil)

	assert.Nil(t, loc)
}

func TestResolveCentroidFallback(t *testing.T) {
	r := NewResolver(testBounds)

	loc := r.Resolve(nil, "Show buildings near Groningen", inBoundsFeatures())

	require.NotNil(t, loc)
	assert.Equal(t, "Groningen", loc.Name)
	assert.Equal(t, SourceCentroid, loc.Source)
	assert.InDelta(t, 53.2, loc.Lat, 1e-9)
	assert.InDelta(t, 6.5, loc.Lon, 1e-9)
}

func TestResolveNoFeaturesNoPin(t *testing.T) {
	r := NewResolver(testBounds)

	loc := r.Resolve(nil, "Show buildings near Groningen", nil)

	assert.Nil(t, loc)
}

func TestResolveNoMatchNoPin(t *testing.T) {
	r := NewResolver(testBounds)

	loc := r.Resolve(nil, "show me everything nearby", inBoundsFeatures())

	assert.Nil(t, loc)
}

func TestExtractName(t *testing.T) {
	cases := map[string]string{
		"Show buildings near Groningen":         "Groningen",
		"toon gebouwen in Den Haag":             "Den Haag",
		"monuments in the Utrecht province":     "Utrecht",
		"parcels around Amsterdam-Zuid":         "Amsterdam-Zuid",
		"Show Amsterdam buildings":              "Amsterdam",
		"show me everything nearby":             "",
		"":                                      "",
		"Hoeveel agrarisch land is er bij Emmen": "Emmen",
	}
	for in, want := range cases {
		assert.Equal(t, want, ExtractName(in), "query %q", in)
	}
}
