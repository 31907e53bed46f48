package dto

// PlacesRequest captures the query parameters of a one-shot place search.
// Lat and Lng are optional but must be given together.
type PlacesRequest struct {
	Type    string `query:"type"`
	Keyword string `query:"keyword"`
	Lat     string `query:"lat"`
	Lng     string `query:"lng"`
	Mode    string `query:"mode"`
}

// PhotoRequest captures the size bounds of a photo lookup.
type PhotoRequest struct {
	MaxWidth  int `query:"maxWidth"`
	MaxHeight int `query:"maxHeight"`
}

// PlaceType is one catalog entry.
type PlaceType struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// PlaceTypesResponse lists the searchable categories.
type PlaceTypesResponse struct {
	Default string      `json:"default"`
	Types   []PlaceType `json:"types"`
}

// SessionMessage is the envelope pushed to websocket clients.
type SessionMessage struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}
