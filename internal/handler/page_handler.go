package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/placefinder/internal/web"
)

// PageHandler serves the single page UI.
type PageHandler struct {
	data web.PageData
}

// NewPageHandler creates a page handler rendering data.
func NewPageHandler(data web.PageData) *PageHandler {
	return &PageHandler{data: data}
}

// Index handles GET /.
func (h *PageHandler) Index(c echo.Context) error {
	return c.Render(http.StatusOK, web.PageTemplate, h.data)
}
