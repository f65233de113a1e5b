// Package location resolves the single "search location" pin for a query
// turn. The free-text extraction is a best-effort heuristic kept behind the
// Resolver interface so a real geocoder can replace it without touching the
// classification pipeline.
package location

import (
	"regexp"
	"strings"

	"github.com/joeblew999/geovraag/internal/feature"
)

// Source says where a resolved location came from.
type Source string

const (
	SourceBackend  Source = "backend_provided"
	SourceCentroid Source = "feature_centroid"
)

// SearchLocation is the pin to show for the current turn. It is replaced
// or cleared wholesale each turn, never carried over.
type SearchLocation struct {
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Name   string  `json:"name"`
	Source Source  `json:"source"`
}

// Candidate is a backend-supplied location suggestion, taken verbatim when
// its coordinates hold up.
type Candidate struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Name string  `json:"name"`
}

// Resolver produces at most one search location per turn.
type Resolver interface {
	Resolve(backend *Candidate, queryText string, features []feature.Display) *SearchLocation
}

// BoundsFunc reports whether a lat/lon pair is acceptable for a pin.
type BoundsFunc func(lat, lon float64) bool

// HeuristicResolver implements the fallback chain: backend candidate,
// then regex extraction from the query text combined with the feature
// centroid, then nothing.
type HeuristicResolver struct {
	inBounds BoundsFunc
}

// NewResolver creates a resolver that validates coordinates with inBounds.
func NewResolver(inBounds BoundsFunc) *HeuristicResolver {
	return &HeuristicResolver{inBounds: inBounds}
}

// namePatterns extract a plausible place name from free text, tried in
// order. The first two anchor on prepositions and area words; the bare
// capitalized token is the last resort.
var namePatterns = []*regexp.Regexp{
	// "... in Groningen", "near Amsterdam-Zuid", "rond Den Haag"
	regexp.MustCompile(`(?:\bin|\bnear|\bnaar|\bbij|\brond|\bte|\bvan|\baround|\bat)\s+((?:[A-Z][a-zA-Z'-]*)(?:\s+[A-Z][a-zA-Z'-]*)*)`),
	// "Utrecht province", "Veluwe area", "Leiden city"
	regexp.MustCompile(`\b((?:[A-Z][a-zA-Z'-]*)(?:\s+[A-Z][a-zA-Z'-]*)*)\s+(?:province|provincie|area|gebied|city|stad|region|regio)\b`),
	// Bare capitalized token, skipping the sentence start.
	regexp.MustCompile(`\S\s+([A-Z][a-zA-Z'-]{2,})`),
}

// noiseWords are capitalized tokens the patterns must not mistake for a
// place name.
var noiseWords = map[string]bool{
	"Show": true, "Find": true, "List": true, "Give": true, "What": true,
	"Where": true, "How": true, "The": true, "Toon": true, "Laat": true,
	"Zoek": true, "Welke": true, "Hoeveel": true, "Waar": true, "Geef": true,
}

// ExtractName pulls a place-name token from the query text, or "" when no
// pattern matches.
func ExtractName(queryText string) string {
	for _, pat := range namePatterns {
		for _, m := range pat.FindAllStringSubmatch(queryText, -1) {
			name := strings.TrimSpace(m[1])
			if name == "" || noiseWords[firstWord(name)] {
				continue
			}
			return name
		}
	}
	return ""
}

func firstWord(s string) string {
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i]
	}
	return s
}

// Resolve walks the fallback chain. First success wins:
//
//  1. a backend candidate with finite, non-zero, in-bounds coordinates is
//     used verbatim;
//  2. a place name extracted from the query text, pinned at the arithmetic
//     mean of the in-bounds features' coordinates;
//  3. nil: no pin for this turn, and wholesale model replacement clears
//     any pin from a prior turn.
func (r *HeuristicResolver) Resolve(backend *Candidate, queryText string, features []feature.Display) *SearchLocation {
	if backend != nil && r.inBounds(backend.Lat, backend.Lon) {
		return &SearchLocation{
			Lat:    backend.Lat,
			Lon:    backend.Lon,
			Name:   backend.Name,
			Source: SourceBackend,
		}
	}

	if name := ExtractName(queryText); name != "" && len(features) > 0 {
		lat, lon, ok := feature.Centroid(features)
		if ok {
			return &SearchLocation{
				Lat:    lat,
				Lon:    lon,
				Name:   name,
				Source: SourceCentroid,
			}
		}
	}

	return nil
}
