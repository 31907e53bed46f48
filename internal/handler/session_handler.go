package handler

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/octobees/placefinder/internal/dto"
	"github.com/octobees/placefinder/internal/entity"
	"github.com/octobees/placefinder/internal/logger"
	"github.com/octobees/placefinder/internal/middleware"
	"github.com/octobees/placefinder/internal/view"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 12
)

// SessionHandler runs one view controller per websocket connection.
type SessionHandler struct {
	searcher   view.Searcher
	center     entity.LatLng
	placeTypes []string
	log        *logger.Logger
	upgrader   websocket.Upgrader
}

// NewSessionHandler creates a websocket session handler.
func NewSessionHandler(searcher view.Searcher, center entity.LatLng, placeTypes []string, log *logger.Logger) *SessionHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &SessionHandler{
		searcher:   searcher,
		center:     center,
		placeTypes: placeTypes,
		log:        log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

// Serve handles GET /ws. Frames are written by this goroutine only; a reader
// goroutine applies client events to the controller.
func (h *SessionHandler) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.log.Warnw("ws_upgrade_failed", "request_id", middleware.RequestIDFromContext(c), "err", err)
		return nil
	}
	defer func() { _ = conn.Close() }()

	log := h.log.With("session_id", uuid.NewString(), "request_id", middleware.RequestIDFromContext(c))
	ctrl := view.New(h.searcher, view.Options{Center: h.center, PlaceTypes: h.placeTypes, Logger: log})
	defer ctrl.Close()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	stop := make(chan struct{})
	defer close(stop)
	done := make(chan struct{})
	replies := make(chan dto.SessionMessage, 4)
	go h.readEvents(conn, ctrl, replies, stop, done, log)

	if _, err := ctrl.Init(); err != nil {
		log.Errorw("ws_init_failed", "err", err)
		return nil
	}
	log.Infow("ws_session_started")

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-done:
			log.Infow("ws_session_closed")
			return nil
		case <-c.Request().Context().Done():
			return nil
		case frame, ok := <-ctrl.Frames():
			if !ok {
				return nil
			}
			if err := writeMessage(conn, dto.SessionMessage{Type: "frame", Data: frame}); err != nil {
				log.Infow("ws_write_failed", "err", err)
				return nil
			}
		case msg := <-replies:
			if err := writeMessage(conn, msg); err != nil {
				log.Infow("ws_write_failed", "err", err)
				return nil
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Infow("ws_ping_failed", "err", err)
				return nil
			}
		}
	}
}

// readEvents decodes client events until the connection closes. Bad events are
// answered with an error message and the session stays open.
func (h *SessionHandler) readEvents(conn *websocket.Conn, ctrl *view.Controller, replies chan<- dto.SessionMessage, stop <-chan struct{}, done chan<- struct{}, log *logger.Logger) {
	defer close(done)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Infow("ws_read_closed", "err", err)
			}
			return
		}

		var ev view.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			if !reply(replies, stop, dto.SessionMessage{Type: "error", Error: "invalid message"}) {
				return
			}
			continue
		}
		if _, err := ctrl.Apply(ev); err != nil {
			log.Debugw("ws_event_rejected", "type", ev.Type, "err", err)
			if !reply(replies, stop, dto.SessionMessage{Type: "error", Error: err.Error()}) {
				return
			}
		}
	}
}

func reply(replies chan<- dto.SessionMessage, stop <-chan struct{}, msg dto.SessionMessage) bool {
	select {
	case replies <- msg:
		return true
	case <-stop:
		return false
	}
}

func writeMessage(conn *websocket.Conn, msg dto.SessionMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}

