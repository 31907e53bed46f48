package entity

import (
	"fmt"
	"strings"
)

const (
	// DefaultRadiusMeters is the fixed nearby-search radius.
	DefaultRadiusMeters = 5000
	// DefaultResultLimit caps how many provider results are kept per query.
	DefaultResultLimit = 12
	// DefaultPlaceType is queried whenever a view mode is entered.
	DefaultPlaceType = "tourist_attraction"
)

// Query describes one place search.
type Query struct {
	PlaceType    string  `json:"place_type"`
	Keyword      string  `json:"keyword"`
	Center       LatLng  `json:"center"`
	RadiusMeters float64 `json:"radius_meters"`
	ResultLimit  int     `json:"result_limit"`
}

// NewQuery builds a query with the fixed radius and result limit.
func NewQuery(placeType, keyword string, center LatLng) Query {
	return Query{
		PlaceType:    strings.TrimSpace(placeType),
		Keyword:      strings.TrimSpace(keyword),
		Center:       center,
		RadiusMeters: DefaultRadiusMeters,
		ResultLimit:  DefaultResultLimit,
	}
}

// ViewMode selects which renderer branch runs.
type ViewMode string

const (
	ModeMap  ViewMode = "map"
	ModeList ViewMode = "list"
)

// ParseViewMode accepts "map" or "list", case-insensitively.
func ParseViewMode(value string) (ViewMode, error) {
	switch ViewMode(strings.ToLower(strings.TrimSpace(value))) {
	case ModeMap:
		return ModeMap, nil
	case ModeList:
		return ModeList, nil
	default:
		return "", fmt.Errorf("unsupported view mode: %q", value)
	}
}
