package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/octobees/placefinder/internal/config"
	"github.com/octobees/placefinder/internal/entity"
	"github.com/octobees/placefinder/internal/handler"
	"github.com/octobees/placefinder/internal/logger"
	"github.com/octobees/placefinder/internal/provider"
	"github.com/octobees/placefinder/internal/service"
	"github.com/octobees/placefinder/internal/web"
)

type emptyProvider struct{}

func (emptyProvider) Geocode(ctx context.Context, address string) (entity.LatLng, provider.Status, error) {
	return entity.LatLng{}, provider.StatusZeroResults, nil
}

func (emptyProvider) NearbySearch(ctx context.Context, req provider.NearbyRequest) ([]provider.RawPlace, provider.Status, error) {
	return nil, provider.StatusZeroResults, nil
}

func (emptyProvider) PhotoMediaURL(ctx context.Context, ref string, w, h int) (string, error) {
	return "https://img.example/" + ref, nil
}

func newTestServer(t *testing.T, limit config.RateLimitConfig) *echo.Echo {
	t.Helper()
	tmpl, err := web.Load()
	if err != nil {
		t.Fatalf("load templates: %v", err)
	}
	cfg := &config.Config{RateLimitSearch: limit, PlaceTypes: []string{"tourist_attraction"}}
	gateway := service.NewPlacesGateway(emptyProvider{}, logger.Nop())

	e := echo.New()
	e.Renderer = tmpl
	Register(e, cfg, Handlers{
		Page:    handler.NewPageHandler(web.NewPageData("", cfg.PlaceTypes)),
		Places:  handler.NewPlacesHandler(gateway, cfg.PlaceTypes, cfg.DefaultCenter),
		Session: handler.NewSessionHandler(gateway, cfg.DefaultCenter, cfg.PlaceTypes, logger.Nop()),
	})
	return e
}

func TestRegisterServesRoutes(t *testing.T) {
	e := newTestServer(t, config.RateLimitConfig{})

	tests := map[string]int{
		"/healthz":                            http.StatusOK,
		"/":                                   http.StatusOK,
		"/static/app.js":                      http.StatusOK,
		"/static/img/default-place.svg":       http.StatusOK,
		"/api/place-types":                    http.StatusOK,
		"/api/places?type=tourist_attraction": http.StatusOK,
		"/api/photos/places/p/photos/x":       http.StatusFound,
		"/missing":                            http.StatusNotFound,
	}
	for target, want := range tests {
		t.Run(target, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
			if rec.Code != want {
				t.Fatalf("expected %d, got %d", want, rec.Code)
			}
		})
	}
}

func TestRegisterRateLimitsSearches(t *testing.T) {
	e := newTestServer(t, config.RateLimitConfig{Requests: 1, Interval: time.Minute})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/places", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected first search to pass, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/places", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second search to be limited, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/place-types", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("catalog must not be limited, got %d", rec.Code)
	}
}
