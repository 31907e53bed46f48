package router

import (
	"github.com/labstack/echo/v4"

	"github.com/octobees/placefinder/internal/config"
	"github.com/octobees/placefinder/internal/handler"
	middlewarepkg "github.com/octobees/placefinder/internal/middleware"
	"github.com/octobees/placefinder/internal/web"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Page    *handler.PageHandler
	Places  *handler.PlacesHandler
	Session *handler.SessionHandler
}

// Register wires all HTTP routes.
func Register(e *echo.Echo, cfg *config.Config, handlers Handlers) {
	e.GET("/healthz", handler.Health)
	e.StaticFS("/static", web.Static())

	e.GET("/", handlers.Page.Index)
	e.GET("/ws", handlers.Session.Serve)

	api := e.Group("/api")
	api.GET("/places", handlers.Places.Search, middlewarepkg.SearchRateLimiter(cfg.RateLimitSearch, "/api/places"))
	api.GET("/photos/*", handlers.Places.Photo, middlewarepkg.SearchRateLimiter(cfg.RateLimitPhoto, "/api/photos"))
	api.GET("/place-types", handlers.Places.PlaceTypes)
}
