// Package googleplaces implements provider.Provider on top of the Google Places API (New).
package googleplaces

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	places "google.golang.org/api/places/v1"

	"github.com/octobees/placefinder/internal/entity"
	"github.com/octobees/placefinder/internal/provider"
)

const (
	searchFieldMask  = "places.id,places.displayName,places.location,places.shortFormattedAddress,places.formattedAddress,places.rating,places.photos,places.internationalPhoneNumber,places.websiteUri,places.types"
	geocodeFieldMask = "places.location"

	// maxProviderResults is the largest page the Places API returns per search.
	maxProviderResults = 20
)

// Options configures the Places client.
type Options struct {
	APIKey       string
	BaseURL      string
	LanguageCode string
	HTTPClient   *http.Client
}

// Client talks to places.googleapis.com.
type Client struct {
	svc          *places.Service
	languageCode string
}

var _ provider.Provider = (*Client)(nil)

// New builds a Places client. When HTTPClient is set it is used as-is and the API key
// option is ignored by the transport, which is how tests point the client at a fake server.
func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" && opts.HTTPClient == nil {
		return nil, provider.ErrNotConfigured
	}

	clientOpts := []option.ClientOption{option.WithAPIKey(opts.APIKey)}
	if opts.HTTPClient != nil {
		clientOpts = append(clientOpts, option.WithHTTPClient(opts.HTTPClient))
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(strings.TrimRight(opts.BaseURL, "/")+"/"))
	}

	svc, err := places.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create places service: %w", err)
	}
	return &Client{svc: svc, languageCode: opts.LanguageCode}, nil
}

// Geocode resolves free text to the location of the best matching place.
func (c *Client) Geocode(ctx context.Context, address string) (entity.LatLng, provider.Status, error) {
	req := &places.GoogleMapsPlacesV1SearchTextRequest{
		TextQuery:      address,
		LanguageCode:   c.languageCode,
		MaxResultCount: 1,
	}
	resp, err := c.svc.Places.SearchText(req).Fields(geocodeFieldMask).Context(ctx).Do()
	if err != nil {
		return entity.LatLng{}, provider.StatusError, describe("geocode", err)
	}
	for _, p := range resp.Places {
		if p != nil && p.Location != nil {
			return entity.LatLng{Lat: p.Location.Latitude, Lng: p.Location.Longitude}, provider.StatusOK, nil
		}
	}
	return entity.LatLng{}, provider.StatusZeroResults, nil
}

// NearbySearch runs a category search around a location. A keyword that differs from
// the category turns the request into a text search biased to the same circle, since
// the nearby endpoint has no keyword filter.
func (c *Client) NearbySearch(ctx context.Context, req provider.NearbyRequest) ([]provider.RawPlace, provider.Status, error) {
	maxResults := int64(req.MaxResults)
	if maxResults <= 0 || maxResults > maxProviderResults {
		maxResults = maxProviderResults
	}
	circle := &places.GoogleMapsPlacesV1Circle{
		Center: &places.GoogleTypeLatLng{Latitude: req.Location.Lat, Longitude: req.Location.Lng},
		Radius: req.RadiusMeters,
	}

	var found []*places.GoogleMapsPlacesV1Place
	keyword := strings.TrimSpace(req.Keyword)
	if keyword == "" || strings.EqualFold(keyword, req.Type) {
		body := &places.GoogleMapsPlacesV1SearchNearbyRequest{
			LanguageCode:        c.languageCode,
			MaxResultCount:      maxResults,
			LocationRestriction: &places.GoogleMapsPlacesV1SearchNearbyRequestLocationRestriction{Circle: circle},
		}
		if req.Type != "" {
			body.IncludedTypes = []string{req.Type}
		}
		resp, err := c.svc.Places.SearchNearby(body).Fields(searchFieldMask).Context(ctx).Do()
		if err != nil {
			return nil, provider.StatusError, describe("nearby search", err)
		}
		found = resp.Places
	} else {
		body := &places.GoogleMapsPlacesV1SearchTextRequest{
			TextQuery:      keyword,
			IncludedType:   req.Type,
			LanguageCode:   c.languageCode,
			MaxResultCount: maxResults,
			LocationBias:   &places.GoogleMapsPlacesV1SearchTextRequestLocationBias{Circle: circle},
		}
		resp, err := c.svc.Places.SearchText(body).Fields(searchFieldMask).Context(ctx).Do()
		if err != nil {
			return nil, provider.StatusError, describe("keyword search", err)
		}
		found = resp.Places
	}

	results := make([]provider.RawPlace, 0, len(found))
	for _, p := range found {
		if p == nil {
			continue
		}
		results = append(results, toRawPlace(p))
	}
	if len(results) == 0 {
		return nil, provider.StatusZeroResults, nil
	}
	return results, provider.StatusOK, nil
}

// PhotoMediaURL resolves a photo resource name to a short-lived, size-bounded image URL.
func (c *Client) PhotoMediaURL(ctx context.Context, photoRef string, maxWidth, maxHeight int) (string, error) {
	photoRef = strings.Trim(strings.TrimSpace(photoRef), "/")
	if photoRef == "" {
		return "", provider.ErrEmptyPhotoRef
	}
	if !strings.HasPrefix(photoRef, "places/") || !strings.Contains(photoRef, "/photos/") {
		return "", provider.ErrInvalidPhotoRef
	}

	media, err := c.svc.Places.Photos.GetMedia(photoRef + "/media").
		MaxWidthPx(int64(maxWidth)).
		MaxHeightPx(int64(maxHeight)).
		SkipHttpRedirect(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", describe("photo media", err)
	}
	if media.PhotoUri == "" {
		return "", fmt.Errorf("photo media: empty photo uri for %s", photoRef)
	}
	return media.PhotoUri, nil
}

func toRawPlace(p *places.GoogleMapsPlacesV1Place) provider.RawPlace {
	raw := provider.RawPlace{
		ID:      p.Id,
		Address: p.ShortFormattedAddress,
		Phone:   p.InternationalPhoneNumber,
		Website: p.WebsiteUri,
		Types:   p.Types,
	}
	if raw.Address == "" {
		raw.Address = p.FormattedAddress
	}
	if p.DisplayName != nil {
		raw.Name = p.DisplayName.Text
	}
	if p.Location != nil {
		raw.Lat = p.Location.Latitude
		raw.Lng = p.Location.Longitude
		raw.HasLoc = true
	}
	// The API omits rating for unrated places, which decodes as zero.
	if p.Rating > 0 {
		rating := p.Rating
		raw.Rating = &rating
	}
	for _, photo := range p.Photos {
		if photo != nil && photo.Name != "" {
			raw.PhotoRef = photo.Name
			break
		}
	}
	return raw
}

func describe(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: places api status %d: %s", op, apiErr.Code, apiErr.Message)
	}
	return fmt.Errorf("%s: %w", op, err)
}
