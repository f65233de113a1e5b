package classify

import "github.com/joeblew999/geovraag/internal/feature"

// StyleDescriptor tells the map renderer how to draw one feature. The
// renderer needs no classification knowledge; color decisions stay in the
// classifier.
type StyleDescriptor struct {
	Category string  `json:"category"`
	Fill     string  `json:"fill"`
	Stroke   string  `json:"stroke"`
	Opacity  float64 `json:"opacity"`
	Radius   float64 `json:"radius,omitempty"`
}

const (
	defaultOpacity = 0.7
	pointRadius    = 6
)

// Style derives the render style for a feature under the given dimension.
// It calls the same Classify that backs the legend, so map colors and
// legend colors always agree.
func (c *Classifier) Style(d feature.Display, dim Dimension) StyleDescriptor {
	cat := c.Classify(d, dim)
	return StyleDescriptor{
		Category: cat.Key,
		Fill:     cat.Color,
		Stroke:   cat.Color,
		Opacity:  defaultOpacity,
		Radius:   pointRadius,
	}
}
