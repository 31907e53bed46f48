package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/octobees/placefinder/internal/config"
	"github.com/octobees/placefinder/internal/handler"
	"github.com/octobees/placefinder/internal/logger"
	middlewarepkg "github.com/octobees/placefinder/internal/middleware"
	"github.com/octobees/placefinder/internal/provider/googleplaces"
	"github.com/octobees/placefinder/internal/router"
	"github.com/octobees/placefinder/internal/service"
	"github.com/octobees/placefinder/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalf("failed to load config: %v", err)
	}
	log := logger.Get(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	templates, err := web.Load()
	if err != nil {
		log.Fatalw("page template failed validation", "err", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	places, err := googleplaces.New(ctx, googleplaces.Options{
		APIKey:       cfg.GooglePlacesAPIKey,
		BaseURL:      cfg.PlacesBaseURL,
		LanguageCode: cfg.LanguageCode,
	})
	if err != nil {
		log.Fatalw("failed to create places client, is GOOGLE_PLACES_API_KEY set?", "err", err)
	}

	gateway := service.NewPlacesGateway(places, log.With("component", "gateway"),
		service.WithProviderTimeout(cfg.ProviderTimeout),
		service.WithSanitizer(service.NewSanitizer(cfg.PhoneRegion)),
	)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = templates

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging(log.With("component", "http")))
	e.Use(echoMiddleware.Recover())

	router.Register(e, cfg, router.Handlers{
		Page:    handler.NewPageHandler(web.NewPageData(cfg.MapsJSAPIKey, cfg.PlaceTypes)),
		Places:  handler.NewPlacesHandler(gateway, cfg.PlaceTypes, cfg.DefaultCenter),
		Session: handler.NewSessionHandler(gateway, cfg.DefaultCenter, cfg.PlaceTypes, log.With("component", "session")),
	})

	serverErr := make(chan error, 1)
	go func() {
		log.Infow("server starting", "port", cfg.Port)
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Infow("shutting down", "signal", sig.String())
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server error", "err", err)
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Errorw("graceful shutdown failed", "err", err)
	}
}
