// Package view drives one page session: it keeps the Map/List mode, turns UI events
// into place searches and pushes rendered frames in query order.
package view

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/octobees/placefinder/internal/entity"
	"github.com/octobees/placefinder/internal/logger"
	"github.com/octobees/placefinder/internal/render"
)

const frameBuffer = 8

var (
	// ErrClosed is returned for events applied after Close.
	ErrClosed = errors.New("view: controller closed")
	// ErrUnknownPlaceType is returned for categories outside the configured catalog.
	ErrUnknownPlaceType = errors.New("view: unknown place type")
)

// Searcher runs a place search. service.PlacesGateway satisfies it.
type Searcher interface {
	SearchPlaces(ctx context.Context, placeType string, center entity.LatLng, keyword string) []entity.Place
}

// EventType names a UI input event.
type EventType string

const (
	EventMode      EventType = "mode"
	EventPlaceType EventType = "place_type"
	EventSearch    EventType = "search"
)

// Event is one UI input. Mode is read for EventMode; PlaceType and Keyword carry the
// current select and search box values for the other events.
type Event struct {
	Type      EventType `json:"type"`
	Mode      string    `json:"mode,omitempty"`
	PlaceType string    `json:"place_type,omitempty"`
	Keyword   string    `json:"keyword,omitempty"`
}

// Options configures a Controller.
type Options struct {
	Center     entity.LatLng
	PlaceTypes []string
	Logger     *logger.Logger
}

// Controller is the Map/List state machine of a single session.
type Controller struct {
	searcher Searcher
	renderer *render.Renderer
	log      *logger.Logger
	allowed  map[string]struct{}

	ctx    context.Context
	stop   context.CancelFunc
	frames chan render.Frame
	wg     sync.WaitGroup

	mu         sync.Mutex
	mode       entity.ViewMode
	placeType  string
	keyword    string
	center     entity.LatLng
	generation uint64
	seq        uint64
	cancel     context.CancelFunc
	closed     bool
}

// New creates a controller in Map mode. Nothing is searched until Init.
func New(searcher Searcher, opts Options) *Controller {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	ctx, stop := context.WithCancel(context.Background())
	c := &Controller{
		searcher:  searcher,
		renderer:  render.NewRenderer(),
		log:       log,
		ctx:       ctx,
		stop:      stop,
		frames:    make(chan render.Frame, frameBuffer),
		mode:      entity.ModeMap,
		placeType: entity.DefaultPlaceType,
		center:    opts.Center,
	}
	if len(opts.PlaceTypes) > 0 {
		c.allowed = make(map[string]struct{}, len(opts.PlaceTypes))
		for _, t := range opts.PlaceTypes {
			c.allowed[t] = struct{}{}
		}
	}
	return c
}

// Frames delivers rendered frames. It is closed by Close.
func (c *Controller) Frames() <-chan render.Frame {
	return c.frames
}

// Mode returns the current view mode.
func (c *Controller) Mode() entity.ViewMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Center returns the current search center.
func (c *Controller) Center() entity.LatLng {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.center
}

// Init enters the initial mode and issues the default query. It returns the query's
// sequence number.
func (c *Controller) Init() (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, ErrClosed
	}
	return c.enterLocked(c.mode), nil
}

// Apply handles one UI event and returns the sequence number of the query it issued.
func (c *Controller) Apply(ev Event) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, ErrClosed
	}

	switch ev.Type {
	case EventMode:
		mode, err := entity.ParseViewMode(ev.Mode)
		if err != nil {
			return 0, err
		}
		return c.enterLocked(mode), nil
	case EventPlaceType, EventSearch:
		placeType := strings.ToLower(strings.TrimSpace(ev.PlaceType))
		if placeType == "" {
			placeType = c.placeType
		}
		if !c.isAllowed(placeType) {
			return 0, fmt.Errorf("%w: %s", ErrUnknownPlaceType, placeType)
		}
		c.placeType = placeType
		c.keyword = strings.TrimSpace(ev.Keyword)
		return c.issueLocked(), nil
	default:
		return 0, fmt.Errorf("view: unsupported event type %q", ev.Type)
	}
}

// Close cancels in-flight queries, waits for them and closes Frames.
func (c *Controller) Close() {
	// Unblocks a completion waiting on a full frame buffer while holding mu.
	c.stop()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()

	c.wg.Wait()
	close(c.frames)
}

func (c *Controller) isAllowed(placeType string) bool {
	if c.allowed == nil {
		return true
	}
	_, ok := c.allowed[placeType]
	return ok
}

// enterLocked switches region visibility, initializes the mode and issues the default query.
func (c *Controller) enterLocked(mode entity.ViewMode) uint64 {
	c.mode = mode
	if mode == entity.ModeMap {
		c.generation++
	} else {
		c.renderer.Clear()
	}
	c.placeType = entity.DefaultPlaceType
	c.keyword = ""
	c.log.Debugw("view mode entered", "mode", mode, "generation", c.generation)
	return c.issueLocked()
}

func (c *Controller) issueLocked() uint64 {
	if c.cancel != nil {
		c.cancel()
	}
	c.seq++
	ctx, cancel := context.WithCancel(c.ctx)
	c.cancel = cancel

	seq, placeType, keyword, center := c.seq, c.placeType, c.keyword, c.center
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()
		places := c.searcher.SearchPlaces(ctx, placeType, center, keyword)
		c.complete(seq, placeType, keyword, places)
	}()
	return seq
}

func (c *Controller) complete(seq uint64, placeType, keyword string, places []entity.Place) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if seq != c.seq {
		c.log.Debugw("discarding superseded results", "seq", seq, "latest", c.seq)
		return
	}

	if c.mode == entity.ModeMap && len(places) > 0 {
		c.center = places[0].Location
		c.generation++
	}
	frame := c.renderer.Render(c.mode, places, render.MapView{
		Center:     c.center,
		Zoom:       render.DefaultZoom,
		Generation: c.generation,
	})
	frame.Seq = seq
	frame.PlaceType = placeType
	frame.Keyword = keyword

	select {
	case c.frames <- frame:
	case <-c.ctx.Done():
	}
}
