// Package render turns place results into map markers or list cards.
package render

import (
	"github.com/octobees/placefinder/internal/entity"
)

// DefaultZoom is the zoom level a map is (re)initialized with.
const DefaultZoom = 12

// Regions tells the page which containers are visible.
type Regions struct {
	Map  bool `json:"map"`
	List bool `json:"list"`
}

// RegionsFor returns the visibility of the map and list containers in mode.
func RegionsFor(mode entity.ViewMode) Regions {
	if mode == entity.ModeList {
		return Regions{List: true}
	}
	return Regions{Map: true}
}

// MapView is the map state the page paints. A new Generation means the page
// must rebuild its map instance around Center.
type MapView struct {
	Center     entity.LatLng `json:"center"`
	Zoom       int           `json:"zoom"`
	Generation uint64        `json:"generation"`
	Markers    []Marker      `json:"markers"`
}

// Frame is one complete render pass.
type Frame struct {
	Seq       uint64          `json:"seq"`
	Mode      entity.ViewMode `json:"mode"`
	PlaceType string          `json:"place_type"`
	Keyword   string          `json:"keyword"`
	Regions   Regions         `json:"regions"`
	Map       *MapView        `json:"map,omitempty"`
	Cards     []Card          `json:"cards"`
}

// Renderer renders results for one page. It owns that page's marker set.
type Renderer struct {
	markers *MarkerSet
}

// NewRenderer returns a renderer with an empty marker set.
func NewRenderer() *Renderer {
	return &Renderer{markers: &MarkerSet{}}
}

// Markers exposes the renderer's marker set.
func (r *Renderer) Markers() *MarkerSet {
	return r.markers
}

// Clear removes all placed markers.
func (r *Renderer) Clear() {
	r.markers.Reset()
}

// RenderMap replaces the marker set with one marker per place.
func (r *Renderer) RenderMap(places []entity.Place) []Marker {
	r.markers.Reset()
	for _, place := range places {
		r.markers.Add(NewMarker(place))
	}
	return r.markers.Markers()
}

// RenderList builds a fresh card list.
func (r *Renderer) RenderList(places []entity.Place) []Card {
	cards := make([]Card, 0, len(places))
	for _, place := range places {
		cards = append(cards, NewCard(place))
	}
	return cards
}

// Render produces the frame for mode. In map mode view supplies center and
// generation; its markers are replaced.
func (r *Renderer) Render(mode entity.ViewMode, places []entity.Place, view MapView) Frame {
	frame := Frame{
		Mode:    mode,
		Regions: RegionsFor(mode),
		Cards:   []Card{},
	}
	if mode == entity.ModeList {
		r.Clear()
		frame.Cards = r.RenderList(places)
		return frame
	}
	if view.Zoom == 0 {
		view.Zoom = DefaultZoom
	}
	view.Markers = r.RenderMap(places)
	frame.Map = &view
	return frame
}
