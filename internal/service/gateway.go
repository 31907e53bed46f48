package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/octobees/placefinder/internal/entity"
	"github.com/octobees/placefinder/internal/logger"
	"github.com/octobees/placefinder/internal/provider"
)

const defaultProviderTimeout = 10 * time.Second

// PlacesGateway runs place searches against the injected provider. Every provider
// failure is logged and reported to callers as an empty result.
type PlacesGateway struct {
	provider  provider.Provider
	sanitizer *Sanitizer
	log       *logger.Logger
	timeout   time.Duration
}

// GatewayOption configures optional gateway dependencies.
type GatewayOption func(*PlacesGateway)

// WithProviderTimeout bounds every provider call.
func WithProviderTimeout(timeout time.Duration) GatewayOption {
	return func(g *PlacesGateway) {
		if timeout > 0 {
			g.timeout = timeout
		}
	}
}

// WithSanitizer overrides the default boundary sanitizer.
func WithSanitizer(s *Sanitizer) GatewayOption {
	return func(g *PlacesGateway) {
		if s != nil {
			g.sanitizer = s
		}
	}
}

// NewPlacesGateway creates a gateway over p.
func NewPlacesGateway(p provider.Provider, log *logger.Logger, opts ...GatewayOption) *PlacesGateway {
	if log == nil {
		log = logger.Nop()
	}
	g := &PlacesGateway{
		provider:  p,
		sanitizer: NewSanitizer(defaultPhoneRegion),
		log:       log,
		timeout:   defaultProviderTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// SearchPlaces returns at most entity.DefaultResultLimit places of placeType. A non-empty
// keyword is geocoded first and the search is centered on the match instead of center.
func (g *PlacesGateway) SearchPlaces(ctx context.Context, placeType string, center entity.LatLng, keyword string) []entity.Place {
	query := entity.NewQuery(placeType, keyword, center)
	if query.Keyword != "" {
		loc, ok := g.ResolveKeywordToLocation(ctx, query.Keyword)
		if !ok {
			return []entity.Place{}
		}
		query.Center = loc
	}
	return g.Search(ctx, query)
}

// Search runs a nearby search for an already resolved query.
func (g *PlacesGateway) Search(ctx context.Context, query entity.Query) []entity.Place {
	keyword := query.Keyword
	if keyword == "" {
		keyword = query.PlaceType
	}
	limit := query.ResultLimit
	if limit <= 0 {
		limit = entity.DefaultResultLimit
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	raws, status, err := g.provider.NearbySearch(callCtx, provider.NearbyRequest{
		Location:     query.Center,
		RadiusMeters: query.RadiusMeters,
		Type:         query.PlaceType,
		Keyword:      keyword,
		MaxResults:   limit,
	})
	if err != nil || status != provider.StatusOK {
		g.logSearchFailure(ctx, query, status, err)
		return []entity.Place{}
	}

	places := g.sanitizer.Places(raws)
	if len(places) > limit {
		places = places[:limit]
	}
	g.log.Debugw("nearby search completed",
		"place_type", query.PlaceType,
		"keyword", query.Keyword,
		"center", query.Center.String(),
		"received", len(raws),
		"returned", len(places),
	)
	return places
}

// ResolveKeywordToLocation geocodes a free-text place name.
func (g *PlacesGateway) ResolveKeywordToLocation(ctx context.Context, keyword string) (entity.LatLng, bool) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return entity.LatLng{}, false
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	loc, status, err := g.provider.Geocode(callCtx, keyword)
	if err == nil && status == provider.StatusOK && loc.Valid() {
		return loc, true
	}
	if ctx.Err() != nil {
		return entity.LatLng{}, false
	}
	reason := string(status)
	if err != nil {
		reason = err.Error()
	}
	g.log.Errorw("geocoding failed", "keyword", keyword, "status", status, "reason", reason)
	return entity.LatLng{}, false
}

// PhotoURL resolves a photo reference to a bounded-size image URL.
func (g *PlacesGateway) PhotoURL(ctx context.Context, photoRef string, maxWidth, maxHeight int) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	uri, err := g.provider.PhotoMediaURL(callCtx, photoRef, maxWidth, maxHeight)
	if err != nil {
		if !errors.Is(err, provider.ErrEmptyPhotoRef) && !errors.Is(err, provider.ErrInvalidPhotoRef) {
			g.log.Errorw("photo resolution failed", "photo_ref", photoRef, "error", err)
		}
		return "", err
	}
	return uri, nil
}

func (g *PlacesGateway) logSearchFailure(ctx context.Context, query entity.Query, status provider.Status, err error) {
	// A query superseded by its caller is not a provider failure.
	if ctx.Err() != nil {
		g.log.Debugw("nearby search cancelled", "place_type", query.PlaceType, "keyword", query.Keyword)
		return
	}
	if err == nil && status == "" {
		status = provider.StatusError
	}
	fields := []any{
		"place_type", query.PlaceType,
		"keyword", query.Keyword,
		"center", query.Center.String(),
		"status", status,
	}
	if err != nil {
		fields = append(fields, "error", err)
	}
	g.log.Errorw("nearby search failed", fields...)
	if status == provider.StatusZeroResults {
		g.log.Warnw("no places found", "place_type", query.PlaceType, "keyword", query.Keyword)
	}
}
