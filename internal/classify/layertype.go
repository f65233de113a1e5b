// Package classify maps display features to discrete categories and colors.
//
// One Classifier instance backs both the map styling callback and the
// legend, so the two can never disagree on a feature's category or color.
package classify

import "strings"

// LayerType is the closed set of data categories a query can target.
type LayerType string

const (
	Buildings LayerType = "buildings"
	Parcels   LayerType = "parcels"
	LandUse   LayerType = "landuse"
	Protected LayerType = "protected"
	Generic   LayerType = "generic"
)

// layerSynonyms normalizes the ad-hoc layer-type strings different backend
// versions emit into the closed LayerType set.
var layerSynonyms = map[string]LayerType{
	"buildings":       Buildings,
	"building":        Buildings,
	"bag":             Buildings,
	"panden":          Buildings,
	"pand":            Buildings,
	"parcels":         Parcels,
	"parcel":          Parcels,
	"cadastral":       Parcels,
	"kadaster":        Parcels,
	"kadastraal":      Parcels,
	"percelen":        Parcels,
	"landuse":         LandUse,
	"land_use":        LandUse,
	"land use":        LandUse,
	"bodemgebruik":    LandUse,
	"protected":       Protected,
	"protected_areas": Protected,
	"natura2000":      Protected,
	"natura 2000":     Protected,
	"natuur":          Protected,
}

// ParseLayerType normalizes a backend-supplied layer-type string at the
// system boundary. Unknown or empty strings map to Generic.
func ParseLayerType(s string) LayerType {
	if lt, ok := layerSynonyms[strings.ToLower(strings.TrimSpace(s))]; ok {
		return lt
	}
	return Generic
}
