// Package web holds the embedded page and assets and checks the page's DOM contract.
package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/net/html"

	"github.com/octobees/placefinder/internal/entity"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// PageTemplate is the name the index page is rendered under.
const PageTemplate = "index.html"

// RequiredIDs are the elements the page script binds to at load time.
var RequiredIDs = []string{"map", "place-list", "mode-toggle", "place-type", "search-box"}

// ErrMissingElement is returned when the page lacks a required element.
var ErrMissingElement = errors.New("web: required page element missing")

// PlaceTypeOption is one entry of the category select.
type PlaceTypeOption struct {
	Value string
	Label string
}

// PageData feeds the index template.
type PageData struct {
	Title            string
	MapsAPIKey       string
	PlaceTypes       []PlaceTypeOption
	DefaultPlaceType string
}

// NewPageData builds page data for the configured catalog.
func NewPageData(mapsAPIKey string, placeTypes []string) PageData {
	options := make([]PlaceTypeOption, 0, len(placeTypes))
	for _, t := range placeTypes {
		options = append(options, PlaceTypeOption{Value: t, Label: PlaceTypeLabel(t)})
	}
	return PageData{
		Title:            "Place Finder",
		MapsAPIKey:       mapsAPIKey,
		PlaceTypes:       options,
		DefaultPlaceType: entity.DefaultPlaceType,
	}
}

// PlaceTypeLabel turns "tourist_attraction" into "Tourist attraction".
func PlaceTypeLabel(placeType string) string {
	label := strings.ReplaceAll(strings.TrimSpace(placeType), "_", " ")
	if label == "" {
		return ""
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

// Templates renders the embedded pages for echo.
type Templates struct {
	templates *template.Template
}

var _ echo.Renderer = (*Templates)(nil)

// Render implements echo.Renderer.
func (t *Templates) Render(w io.Writer, name string, data any, c echo.Context) error {
	return t.templates.ExecuteTemplate(w, name, data)
}

// Load parses the embedded templates and verifies the index page renders every
// required element.
func Load() (*Templates, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	t := &Templates{templates: tmpl}

	var buf bytes.Buffer
	sample := NewPageData("", []string{entity.DefaultPlaceType})
	if err := tmpl.ExecuteTemplate(&buf, PageTemplate, sample); err != nil {
		return nil, fmt.Errorf("render %s: %w", PageTemplate, err)
	}
	if err := ValidateDOM(&buf); err != nil {
		return nil, err
	}
	return t, nil
}

// Static returns the embedded asset tree rooted at static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// ValidateDOM checks that an HTML document contains every required element id and that
// the mode toggle offers both view modes.
func ValidateDOM(r io.Reader) error {
	found := make(map[string]string, len(RequiredIDs))
	modes := make(map[string]bool)
	inToggle := false

	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != nil && !errors.Is(err, io.EOF) {
				return fmt.Errorf("parse page: %w", err)
			}
			return checkFound(found, modes)
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			id := attr(tok, "id")
			if id != "" {
				found[id] = tok.Data
			}
			if tok.Data == "select" {
				inToggle = id == "mode-toggle"
			}
			if inToggle && tok.Data == "option" {
				modes[attr(tok, "value")] = true
			}
		case html.EndTagToken:
			if z.Token().Data == "select" {
				inToggle = false
			}
		}
	}
}

func checkFound(found map[string]string, modes map[string]bool) error {
	var missing []string
	for _, id := range RequiredIDs {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingElement, strings.Join(missing, ", "))
	}
	if found["mode-toggle"] != "select" || found["place-type"] != "select" {
		return fmt.Errorf("%w: mode-toggle and place-type must be select elements", ErrMissingElement)
	}
	for _, mode := range []entity.ViewMode{entity.ModeMap, entity.ModeList} {
		if !modes[string(mode)] {
			return fmt.Errorf("%w: mode-toggle option %q", ErrMissingElement, mode)
		}
	}
	return nil
}

func attr(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
