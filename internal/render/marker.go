package render

import (
	"html"
	"sync"

	"github.com/octobees/placefinder/internal/entity"
)

// Marker is a map pin with its click popup.
type Marker struct {
	ID        string        `json:"id,omitempty"`
	Position  entity.LatLng `json:"position"`
	Title     string        `json:"title"`
	PopupHTML string        `json:"popup_html"`
}

// NewMarker builds the marker for place.
func NewMarker(place entity.Place) Marker {
	return Marker{
		ID:        place.ID,
		Position:  place.Location,
		Title:     place.Name,
		PopupHTML: PopupHTML(place),
	}
}

// PopupHTML is the escaped info window body: name heading, then address or placeholder.
func PopupHTML(place entity.Place) string {
	return "<h4>" + html.EscapeString(place.Name) + "</h4><p>" + html.EscapeString(addressOrPlaceholder(place.Address)) + "</p>"
}

// MarkerSet holds the markers currently on the map, in placement order.
type MarkerSet struct {
	mu      sync.Mutex
	markers []Marker
}

// Reset removes every marker.
func (s *MarkerSet) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers = nil
}

// Add places a marker after the existing ones.
func (s *MarkerSet) Add(m Marker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers = append(s.markers, m)
}

// Markers returns a copy of the placed markers.
func (s *MarkerSet) Markers() []Marker {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Marker, len(s.markers))
	copy(out, s.markers)
	return out
}

// Len reports how many markers are placed.
func (s *MarkerSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.markers)
}
