package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/octobees/placefinder/internal/logger"
)

// Logging writes a concise structured line for each HTTP request.
func Logging(log *logger.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = logger.Nop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			latency := time.Since(start)

			if err != nil {
				c.Error(err)
			}

			fields := []any{
				"request_id", RequestIDFromContext(c),
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"latency", latency,
			}
			if err != nil {
				log.Errorw("http request", append(fields, "error", err)...)
			} else {
				log.Infow("http request", fields...)
			}

			return err
		}
	}
}
