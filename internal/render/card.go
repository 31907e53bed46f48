package render

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/octobees/placefinder/internal/entity"
)

const (
	// DefaultPhotoPath is shown for places without photos.
	DefaultPhotoPath = "/static/img/default-place.svg"
	// PhotoPathPrefix is where the photo handler is mounted.
	PhotoPathPrefix = "/api/photos/"

	PhotoMaxWidth  = 400
	PhotoMaxHeight = 400

	NoAddress       = "No address"
	CardClickNotice = "Place details are not available yet."
)

// Card is the list-mode view model of one place.
type Card struct {
	ID          string     `json:"id,omitempty"`
	PhotoURL    string     `json:"photo_url"`
	Name        string     `json:"name"`
	Stars       StarRating `json:"stars"`
	Address     string     `json:"address"`
	Phone       string     `json:"phone,omitempty"`
	Website     string     `json:"website,omitempty"`
	ClickNotice string     `json:"click_notice"`
}

// NewCard builds the card for place.
func NewCard(place entity.Place) Card {
	card := Card{
		ID:          place.ID,
		PhotoURL:    PhotoURL(place.PhotoRef),
		Name:        place.Name,
		Stars:       Stars(place.Rating),
		Address:     addressOrPlaceholder(place.Address),
		ClickNotice: CardClickNotice,
	}
	if place.Phone != nil {
		card.Phone = *place.Phone
	}
	if place.Website != nil {
		card.Website = *place.Website
	}
	return card
}

// PhotoURL points at the bounded-size photo endpoint, or at the default image when
// there is no reference.
func PhotoURL(photoRef *string) string {
	if photoRef == nil {
		return DefaultPhotoPath
	}
	ref := strings.Trim(strings.TrimSpace(*photoRef), "/")
	if ref == "" {
		return DefaultPhotoPath
	}
	segments := strings.Split(ref, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return fmt.Sprintf("%s%s?maxWidth=%d&maxHeight=%d", PhotoPathPrefix, strings.Join(segments, "/"), PhotoMaxWidth, PhotoMaxHeight)
}

func addressOrPlaceholder(address *string) string {
	if address == nil || strings.TrimSpace(*address) == "" {
		return NoAddress
	}
	return *address
}
