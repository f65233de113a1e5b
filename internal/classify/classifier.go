package classify

import (
	"fmt"
	"strings"

	"github.com/joeblew999/geovraag/internal/feature"
)

// Dimension identifies which attribute a feature set is classified by.
// It is decided once per feature set (see ActiveDimension) and then shared
// by styling and legend generation.
type Dimension string

const (
	ByArea       Dimension = "area"
	ByYear       Dimension = "year"
	ByParcelSize Dimension = "parcel_size"
	ByLandUse    Dimension = "land_use"
	ByProtected  Dimension = "protected"
	ByNone       Dimension = "none"
)

// Category is one classification bucket with its display color. Categories
// for a dimension are mutually exclusive and exhaustive; the trailing
// "unknown" bucket absorbs features lacking the relevant attribute.
type Category struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Color string `json:"color"`
	Range string `json:"range,omitempty"`

	match func(feature.Display) bool
}

// Unknown reports whether this is a dimension's absorbing fallback bucket.
func (c Category) Unknown() bool {
	return c.match == nil
}

// areaProperties is the fixed priority order for reading a feature's floor
// area; the first present positive value wins.
var areaProperties = []string{"area_m2", "oppervlakte_max", "oppervlakte_min"}

// AreaOf returns a feature's floor area in m², if any.
func AreaOf(d feature.Display) (float64, bool) {
	for _, key := range areaProperties {
		if v, ok := d.NumericProperty(key); ok && v > 0 {
			return v, true
		}
	}
	return 0, false
}

// YearOf returns a feature's construction year, if any.
func YearOf(d feature.Display) (float64, bool) {
	return d.NumericProperty("bouwjaar")
}

// HectaresOf returns a parcel's size in hectares, if any.
// kadastraleGrootteWaarde is recorded in m².
func HectaresOf(d feature.Display) (float64, bool) {
	v, ok := d.NumericProperty("kadastraleGrootteWaarde")
	if !ok || v <= 0 {
		return 0, false
	}
	return v / 10000, true
}

// landUseLabel returns the feature's free-text land-use label, if any.
func landUseLabel(d feature.Display) (string, bool) {
	for _, key := range []string{"bodemgebruik", "hoofdklasse"} {
		if s, ok := d.StringProperty(key); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

func landUseContains(substr string) func(feature.Display) bool {
	return func(d feature.Display) bool {
		s, ok := landUseLabel(d)
		return ok && strings.Contains(strings.ToLower(s), substr)
	}
}

func areaAbove(min float64) func(feature.Display) bool {
	return func(d feature.Display) bool {
		v, ok := AreaOf(d)
		return ok && v > min
	}
}

func yearBelow(limit float64) func(feature.Display) bool {
	return func(d feature.Display) bool {
		v, ok := YearOf(d)
		return ok && v < limit
	}
}

func hectaresAbove(min float64) func(feature.Display) bool {
	return func(d feature.Display) bool {
		v, ok := HectaresOf(d)
		return ok && v > min
	}
}

// defaultTables holds the static category configuration per dimension.
// Table order is display order; classification is first match wins, so the
// broad bucket of an open-ended threshold chain must come first.
func defaultTables() map[Dimension][]Category {
	return map[Dimension][]Category{
		ByYear: {
			{Key: "historic", Label: "Historic (before 1900)", Color: "#8b0000", Range: "< 1900", match: yearBelow(1900)},
			{Key: "pre_war", Label: "Pre-war (1900-1949)", Color: "#d2691e", Range: "1900 - 1949", match: yearBelow(1950)},
			{Key: "post_war", Label: "Post-war (1950-1979)", Color: "#ffa500", Range: "1950 - 1979", match: yearBelow(1980)},
			{Key: "late_20th", Label: "Late 20th century (1980-1999)", Color: "#9acd32", Range: "1980 - 1999", match: yearBelow(2000)},
			{Key: "modern", Label: "Modern (2000+)", Color: "#2e8b57", Range: ">= 2000", match: func(d feature.Display) bool {
				_, ok := YearOf(d)
				return ok
			}},
			{Key: "unknown", Label: "Unknown age", Color: "#808080"},
		},
		ByArea: {
			{Key: "large", Label: "Large (> 1000 m²)", Color: "#b91c1c", Range: "> 1000 m²", match: areaAbove(1000)},
			{Key: "medium", Label: "Medium (500-1000 m²)", Color: "#ea580c", Range: "500 - 1000 m²", match: areaAbove(500)},
			{Key: "standard", Label: "Standard (200-500 m²)", Color: "#f59e0b", Range: "200 - 500 m²", match: areaAbove(200)},
			{Key: "small", Label: "Small (< 200 m²)", Color: "#fbbf24", Range: "< 200 m²", match: areaAbove(0)},
			{Key: "unknown", Label: "No area data", Color: "#808080"},
		},
		ByParcelSize: {
			{Key: "large", Label: "Large parcel (> 5 ha)", Color: "#166534", Range: "> 5 ha", match: hectaresAbove(5)},
			{Key: "medium", Label: "Medium parcel (1-5 ha)", Color: "#4d7c0f", Range: "1 - 5 ha", match: hectaresAbove(1)},
			{Key: "small", Label: "Small parcel (<= 1 ha)", Color: "#a3e635", Range: "<= 1 ha", match: hectaresAbove(0)},
			{Key: "unknown", Label: "Unknown size", Color: "#808080"},
		},
		ByLandUse: {
			{Key: "agricultural", Label: "Agricultural", Color: "#84cc16", match: landUseContains("agrarisch")},
			{Key: "built_up", Label: "Built-up", Color: "#ef4444", match: landUseContains("bebouwd")},
			{Key: "forest", Label: "Forest", Color: "#15803d", match: landUseContains("bos")},
			{Key: "water", Label: "Water", Color: "#3b82f6", match: landUseContains("water")},
			{Key: "unclassified", Label: "Unclassified", Color: "#808080"},
		},
		ByProtected: {
			{Key: "protected", Label: "Protected area", Color: "#15803d", match: func(feature.Display) bool { return true }},
		},
		ByNone: {
			{Key: "default", Label: "Features", Color: "#3388ff", match: func(feature.Display) bool { return true }},
		},
	}
}

// Classifier assigns categories to features. A single instance is shared by
// the style callback and the legend builder; classification is pure and
// deterministic.
type Classifier struct {
	tables map[Dimension][]Category
}

// New creates a classifier with the built-in category tables.
func New() *Classifier {
	return &Classifier{tables: defaultTables()}
}

// NewWithColors creates a classifier with per-category color overrides,
// keyed "<dimension>.<category>" (e.g. "area.large").
func NewWithColors(overrides map[string]string) (*Classifier, error) {
	c := New()
	for key, color := range overrides {
		dim, cat, ok := strings.Cut(key, ".")
		if !ok {
			return nil, fmt.Errorf("color override %q: want <dimension>.<category>", key)
		}
		table, ok := c.tables[Dimension(dim)]
		if !ok {
			return nil, fmt.Errorf("color override %q: unknown dimension %q", key, dim)
		}
		found := false
		for i := range table {
			if table[i].Key == cat {
				table[i].Color = color
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("color override %q: unknown category %q", key, cat)
		}
	}
	return c, nil
}

// Categories returns the ordered category table for a dimension.
func (c *Classifier) Categories(dim Dimension) []Category {
	return c.tables[dim]
}

// ActiveDimension decides, once per feature set, which attribute drives
// classification. Parcels, land use and protected areas have fixed
// dimensions. For buildings and generic features, area classification takes
// priority over age whenever any feature carries a usable area value; this
// single decision feeds both map styling and the legend.
func (c *Classifier) ActiveDimension(features []feature.Display, lt LayerType) Dimension {
	switch lt {
	case Parcels:
		return ByParcelSize
	case LandUse:
		return ByLandUse
	case Protected:
		return ByProtected
	}

	for _, d := range features {
		if _, ok := AreaOf(d); ok {
			return ByArea
		}
	}
	for _, d := range features {
		if _, ok := YearOf(d); ok {
			return ByYear
		}
	}
	return ByNone
}

// Classify assigns a feature to exactly one category of the given
// dimension, first match wins; features matching nothing fall into the
// dimension's absorbing bucket.
func (c *Classifier) Classify(d feature.Display, dim Dimension) Category {
	table := c.tables[dim]
	for _, cat := range table {
		if cat.match != nil && cat.match(d) {
			return cat
		}
	}
	// The last entry of every table is the absorbing bucket.
	return table[len(table)-1]
}
