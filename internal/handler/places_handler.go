package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/placefinder/internal/dto"
	"github.com/octobees/placefinder/internal/entity"
	"github.com/octobees/placefinder/internal/provider"
	"github.com/octobees/placefinder/internal/render"
	"github.com/octobees/placefinder/internal/web"
)

const maxPhotoPx = 1600

// PlacesGateway is the search surface the handlers depend on.
type PlacesGateway interface {
	SearchPlaces(ctx context.Context, placeType string, center entity.LatLng, keyword string) []entity.Place
	PhotoURL(ctx context.Context, photoRef string, maxWidth, maxHeight int) (string, error)
}

// PlacesHandler serves one-shot searches, photo redirects and the category catalog.
type PlacesHandler struct {
	gateway       PlacesGateway
	placeTypes    []string
	allowed       map[string]struct{}
	defaultCenter entity.LatLng
}

// NewPlacesHandler creates a handler restricted to the given catalog.
func NewPlacesHandler(gateway PlacesGateway, placeTypes []string, defaultCenter entity.LatLng) *PlacesHandler {
	allowed := make(map[string]struct{}, len(placeTypes))
	for _, t := range placeTypes {
		allowed[t] = struct{}{}
	}
	return &PlacesHandler{
		gateway:       gateway,
		placeTypes:    placeTypes,
		allowed:       allowed,
		defaultCenter: defaultCenter,
	}
}

// Search handles GET /api/places and returns a rendered frame.
func (h *PlacesHandler) Search(c echo.Context) error {
	var req dto.PlacesRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid query parameters")
	}

	placeType := strings.ToLower(strings.TrimSpace(req.Type))
	if placeType == "" {
		placeType = entity.DefaultPlaceType
	}
	if _, ok := h.allowed[placeType]; !ok {
		return Error(c, http.StatusBadRequest, "unsupported place type")
	}

	mode := entity.ModeMap
	if strings.TrimSpace(req.Mode) != "" {
		parsed, err := entity.ParseViewMode(req.Mode)
		if err != nil {
			return Error(c, http.StatusBadRequest, "mode must be map or list")
		}
		mode = parsed
	}

	center, err := h.parseCenter(req.Lat, req.Lng)
	if err != nil {
		return Error(c, http.StatusBadRequest, err.Error())
	}

	keyword := strings.TrimSpace(req.Keyword)
	places := h.gateway.SearchPlaces(c.Request().Context(), placeType, center, keyword)

	view := render.MapView{Center: center, Zoom: render.DefaultZoom, Generation: 1}
	if mode == entity.ModeMap && len(places) > 0 {
		view.Center = places[0].Location
	}
	frame := render.NewRenderer().Render(mode, places, view)
	frame.PlaceType = placeType
	frame.Keyword = keyword

	return Success(c, http.StatusOK, "", frame)
}

// Photo handles GET /api/photos/* by redirecting to a bounded-size image.
func (h *PlacesHandler) Photo(c echo.Context) error {
	var req dto.PhotoRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid photo size")
	}

	ref, err := url.PathUnescape(c.Param("*"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid photo reference")
	}

	uri, err := h.gateway.PhotoURL(c.Request().Context(), ref, clampPx(req.MaxWidth, render.PhotoMaxWidth), clampPx(req.MaxHeight, render.PhotoMaxHeight))
	if err != nil {
		switch {
		case errors.Is(err, provider.ErrEmptyPhotoRef):
			return Error(c, http.StatusNotFound, "photo not found")
		case errors.Is(err, provider.ErrInvalidPhotoRef):
			return Error(c, http.StatusBadRequest, "invalid photo reference")
		default:
			return Error(c, http.StatusBadGateway, "photo lookup failed")
		}
	}
	return c.Redirect(http.StatusFound, uri)
}

// PlaceTypes handles GET /api/place-types.
func (h *PlacesHandler) PlaceTypes(c echo.Context) error {
	resp := dto.PlaceTypesResponse{
		Default: entity.DefaultPlaceType,
		Types:   make([]dto.PlaceType, 0, len(h.placeTypes)),
	}
	for _, t := range h.placeTypes {
		resp.Types = append(resp.Types, dto.PlaceType{Value: t, Label: web.PlaceTypeLabel(t)})
	}
	return Success(c, http.StatusOK, "", resp)
}

func (h *PlacesHandler) parseCenter(lat, lng string) (entity.LatLng, error) {
	lat, lng = strings.TrimSpace(lat), strings.TrimSpace(lng)
	if lat == "" && lng == "" {
		return h.defaultCenter, nil
	}
	if lat == "" || lng == "" {
		return entity.LatLng{}, errors.New("lat and lng must be provided together")
	}
	return entity.ParseLatLng(lat + "," + lng)
}

func clampPx(v, fallback int) int {
	switch {
	case v <= 0:
		return fallback
	case v > maxPhotoPx:
		return maxPhotoPx
	default:
		return v
	}
}

// Health handles GET /healthz.
func Health(c echo.Context) error {
	return Success(c, http.StatusOK, "ok", map[string]string{"status": "ok"})
}
