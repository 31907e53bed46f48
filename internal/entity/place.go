package entity

import (
	"fmt"
	"strconv"
	"strings"
)

// LatLng is a WGS84 coordinate.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the coordinate lies within the WGS84 bounds.
func (l LatLng) Valid() bool {
	return l.Lat >= -90 && l.Lat <= 90 && l.Lng >= -180 && l.Lng <= 180
}

// String renders the coordinate as "lat,lng".
func (l LatLng) String() string {
	return strconv.FormatFloat(l.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(l.Lng, 'f', -1, 64)
}

// ParseLatLng parses a "lat,lng" pair.
func ParseLatLng(value string) (LatLng, error) {
	parts := strings.Split(value, ",")
	if len(parts) != 2 {
		return LatLng{}, fmt.Errorf("expected format <lat>,<lng>, got %q", value)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return LatLng{}, fmt.Errorf("invalid latitude: %v", parts[0])
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return LatLng{}, fmt.Errorf("invalid longitude: %v", parts[1])
	}
	ll := LatLng{Lat: lat, Lng: lng}
	if !ll.Valid() {
		return LatLng{}, fmt.Errorf("coordinate out of range: %s", value)
	}
	return ll, nil
}

// Place is a single search result. Optional fields are nil when the provider did not supply them.
type Place struct {
	ID       string   `json:"id,omitempty"`
	Name     string   `json:"name"`
	Location LatLng   `json:"location"`
	Address  *string  `json:"address,omitempty"`
	Rating   *float64 `json:"rating,omitempty"`
	PhotoRef *string  `json:"photo_ref,omitempty"`
	Phone    *string  `json:"phone,omitempty"`
	Website  *string  `json:"website,omitempty"`
	Types    []string `json:"types,omitempty"`
}
