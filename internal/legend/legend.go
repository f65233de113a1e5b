// Package legend derives the display legend from a classified feature list.
package legend

import (
	"github.com/joeblew999/geovraag/internal/classify"
	"github.com/joeblew999/geovraag/internal/feature"
	"github.com/joeblew999/geovraag/internal/stats"
)

// Entry is one legend line: a category that actually occurs in the
// current feature list.
type Entry struct {
	Label string `json:"label"`
	Color string `json:"color"`
	Count int    `json:"count"`
	Range string `json:"range,omitempty"`
}

// Model is the legend for one feature list, rebuilt wholesale per turn.
type Model struct {
	Title      string             `json:"title"`
	LayerType  classify.LayerType `json:"layer_type"`
	Dimension  classify.Dimension `json:"dimension"`
	Categories []Entry            `json:"categories"`
	Statistics stats.Model        `json:"statistics"`
}

var titles = map[classify.Dimension]string{
	classify.ByArea:       "Buildings by floor area",
	classify.ByYear:       "Buildings by construction year",
	classify.ByParcelSize: "Parcels by size",
	classify.ByLandUse:    "Land use",
	classify.ByProtected:  "Protected areas",
	classify.ByNone:       "Features",
}

// Builder turns a feature list into a legend using the shared classifier,
// so legend colors are the same colors the map styles with.
type Builder struct {
	classifier *classify.Classifier
}

// NewBuilder creates a legend builder around the shared classifier.
func NewBuilder(c *classify.Classifier) *Builder {
	return &Builder{classifier: c}
}

// Build derives the legend for a feature list. The active dimension is the
// classifier's single shared decision (area beats age). Categories with no
// matching feature are omitted rather than listed with a zero count. Build
// returns nil, meaning no legend is shown, when the list is empty or when
// no feature lands outside the dimension's absorbing bucket; the
// statistics block still reports the total count whenever a legend is
// produced.
func (b *Builder) Build(features []feature.Display, lt classify.LayerType) *Model {
	if len(features) == 0 {
		return nil
	}

	dim := b.classifier.ActiveDimension(features, lt)
	if dim == classify.ByNone {
		// Nothing classifiable: the map draws in the default style and no
		// legend is shown.
		return nil
	}

	counts := make(map[string]int)
	classified := 0
	for _, d := range features {
		cat := b.classifier.Classify(d, dim)
		counts[cat.Key]++
		if !cat.Unknown() {
			classified++
		}
	}
	if classified == 0 {
		return nil
	}

	var entries []Entry
	for _, cat := range b.classifier.Categories(dim) {
		n := counts[cat.Key]
		if n == 0 {
			continue
		}
		entries = append(entries, Entry{
			Label: cat.Label,
			Color: cat.Color,
			Count: n,
			Range: cat.Range,
		})
	}

	return &Model{
		Title:      titles[dim],
		LayerType:  lt,
		Dimension:  dim,
		Categories: entries,
		Statistics: stats.Aggregate(features),
	}
}
