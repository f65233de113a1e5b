// Package stats computes summary statistics over a display feature list.
package stats

import (
	"math"

	"github.com/joeblew999/geovraag/internal/classify"
	"github.com/joeblew999/geovraag/internal/feature"
)

// Summary holds min/max/average for one attribute dimension.
type Summary struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Average float64 `json:"average"`
}

// Model is the statistics block for one feature list. A dimension is nil
// when no feature carries a valid value for it; Count is always present.
type Model struct {
	Count    int      `json:"count"`
	Area     *Summary `json:"area,omitempty"`
	Distance *Summary `json:"distance,omitempty"`
	Year     *Summary `json:"year,omitempty"`
}

// minPlausibleYear filters out sentinel construction years (0, 1005, ...)
// that the registry uses for unknown dates.
const minPlausibleYear = 1800

// Aggregate computes the statistics model for a feature list. Area uses
// the same property fallback order as classification; distance reads
// distance_km; year reads bouwjaar filtered to plausible values. Averages
// are rounded to the nearest integer for area and year, and to three
// decimals for distance.
func Aggregate(features []feature.Display) Model {
	m := Model{Count: len(features)}

	var areas, distances, years []float64
	for _, d := range features {
		if v, ok := classify.AreaOf(d); ok {
			areas = append(areas, v)
		}
		if v, ok := d.NumericProperty("distance_km"); ok && v > 0 {
			distances = append(distances, v)
		}
		if v, ok := classify.YearOf(d); ok && v > minPlausibleYear {
			years = append(years, v)
		}
	}

	m.Area = summarize(areas, roundInt)
	m.Distance = summarize(distances, roundMilli)
	m.Year = summarize(years, roundInt)
	return m
}

func summarize(values []float64, round func(float64) float64) *Summary {
	if len(values) == 0 {
		return nil
	}
	min, max, sum := values[0], values[0], 0.0
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}
	return &Summary{
		Min:     min,
		Max:     max,
		Average: round(sum / float64(len(values))),
	}
}

func roundInt(v float64) float64 {
	return math.Round(v)
}

func roundMilli(v float64) float64 {
	return math.Round(v*1000) / 1000
}
