package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/geovraag/internal/feature"
)

func withProps(props map[string]any) feature.Display {
	return feature.Display{Properties: props}
}

func TestAggregateAreas(t *testing.T) {
	m := Aggregate([]feature.Display{
		withProps(map[string]any{"area_m2": 100.0}),
		withProps(map[string]any{"area_m2": 300.0}),
		withProps(map[string]any{"area_m2": 1000.0}),
	})

	assert.Equal(t, 3, m.Count)
	require.NotNil(t, m.Area)
	assert.Equal(t, 100.0, m.Area.Min)
	assert.Equal(t, 1000.0, m.Area.Max)
	assert.Equal(t, 467.0, m.Area.Average)
	assert.Nil(t, m.Distance)
	assert.Nil(t, m.Year)
}

func TestAggregateEmptyList(t *testing.T) {
	m := Aggregate(nil)

	assert.Equal(t, 0, m.Count)
	assert.Nil(t, m.Area)
	assert.Nil(t, m.Distance)
	assert.Nil(t, m.Year)
}

func TestAggregateYearFiltersSentinels(t *testing.T) {
	m := Aggregate([]feature.Display{
		withProps(map[string]any{"bouwjaar": 1005.0}), // registry sentinel
		withProps(map[string]any{"bouwjaar": 1875.0}),
		withProps(map[string]any{"bouwjaar": 1925.0}),
	})

	assert.Equal(t, 3, m.Count)
	require.NotNil(t, m.Year)
	assert.Equal(t, 1875.0, m.Year.Min)
	assert.Equal(t, 1925.0, m.Year.Max)
	assert.Equal(t, 1900.0, m.Year.Average)
}

func TestAggregateDistanceRounding(t *testing.T) {
	m := Aggregate([]feature.Display{
		withProps(map[string]any{"distance_km": 1.0}),
		withProps(map[string]any{"distance_km": 2.0}),
		withProps(map[string]any{"distance_km": 2.0005}),
	})

	require.NotNil(t, m.Distance)
	assert.Equal(t, 1.667, m.Distance.Average)
}

func TestAggregateAreaFallbackOrder(t *testing.T) {
	m := Aggregate([]feature.Display{
		withProps(map[string]any{"oppervlakte_max": 200.0}),
		withProps(map[string]any{"oppervlakte_min": 400.0}),
	})

	require.NotNil(t, m.Area)
	assert.Equal(t, 200.0, m.Area.Min)
	assert.Equal(t, 400.0, m.Area.Max)
	assert.Equal(t, 300.0, m.Area.Average)
}

func TestAggregateScenarioSingleBuilding(t *testing.T) {
	m := Aggregate([]feature.Display{
		withProps(map[string]any{"bouwjaar": 1875.0, "area_m2": 1200.0}),
	})

	assert.Equal(t, 1, m.Count)
	require.NotNil(t, m.Area)
	assert.Equal(t, Summary{Min: 1200, Max: 1200, Average: 1200}, *m.Area)
	require.NotNil(t, m.Year)
	assert.Equal(t, Summary{Min: 1875, Max: 1875, Average: 1875}, *m.Year)
}
