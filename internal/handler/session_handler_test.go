package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/octobees/placefinder/internal/entity"
	"github.com/octobees/placefinder/internal/render"
)

type recordingSearcher struct {
	mu     sync.Mutex
	calls  []searchArgs
	places []entity.Place
}

func (s *recordingSearcher) SearchPlaces(ctx context.Context, placeType string, center entity.LatLng, keyword string) []entity.Place {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, searchArgs{placeType: placeType, center: center, keyword: keyword})
	return s.places
}

type sessionEnvelope struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func dialSession(t *testing.T, searcher *recordingSearcher) *websocket.Conn {
	t.Helper()
	e := echo.New()
	h := NewSessionHandler(searcher, testCenter, testCatalog, nil)
	e.GET("/ws", h.Serve)

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) sessionEnvelope {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env sessionEnvelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read: %v", err)
	}
	return env
}

func readFrame(t *testing.T, conn *websocket.Conn) render.Frame {
	t.Helper()
	env := readEnvelope(t, conn)
	if env.Type != "frame" {
		t.Fatalf("expected frame, got %+v", env)
	}
	var frame render.Frame
	if err := json.Unmarshal(env.Data, &frame); err != nil {
		t.Fatalf("unmarshal frame: %v", err)
	}
	return frame
}

func TestSessionHandler_InitialFrameAndModeSwitch(t *testing.T) {
	searcher := &recordingSearcher{places: []entity.Place{{Name: "Fort", Location: entity.LatLng{Lat: 23, Lng: 120.16}}}}
	conn := dialSession(t, searcher)

	frame := readFrame(t, conn)
	if frame.Seq != 1 || frame.Mode != entity.ModeMap || frame.PlaceType != entity.DefaultPlaceType {
		t.Fatalf("unexpected initial frame: %+v", frame)
	}
	if frame.Map == nil || len(frame.Map.Markers) != 1 {
		t.Fatalf("expected one marker, got %+v", frame.Map)
	}

	if err := conn.WriteJSON(map[string]string{"type": "mode", "mode": "list"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	frame = readFrame(t, conn)
	if frame.Seq != 2 || frame.Mode != entity.ModeList || len(frame.Cards) != 1 || frame.Map != nil {
		t.Fatalf("unexpected list frame: %+v", frame)
	}

	if err := conn.WriteJSON(map[string]string{"type": "search", "place_type": "cafe", "keyword": "latte"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	frame = readFrame(t, conn)
	if frame.PlaceType != "cafe" || frame.Keyword != "latte" {
		t.Fatalf("unexpected search frame: %+v", frame)
	}

	searcher.mu.Lock()
	defer searcher.mu.Unlock()
	if len(searcher.calls) != 3 || searcher.calls[2].keyword != "latte" {
		t.Fatalf("unexpected searches: %+v", searcher.calls)
	}
}

func TestSessionHandler_RejectsBadMessages(t *testing.T) {
	conn := dialSession(t, &recordingSearcher{})
	readFrame(t, conn)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if env := readEnvelope(t, conn); env.Type != "error" || env.Error != "invalid message" {
		t.Fatalf("expected invalid message error, got %+v", env)
	}

	if err := conn.WriteJSON(map[string]string{"type": "place_type", "place_type": "bank"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if env := readEnvelope(t, conn); env.Type != "error" || !strings.Contains(env.Error, "bank") {
		t.Fatalf("expected unknown place type error, got %+v", env)
	}

	// The session stays usable after rejected messages.
	if err := conn.WriteJSON(map[string]string{"type": "place_type", "place_type": "cafe"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if frame := readFrame(t, conn); frame.PlaceType != "cafe" {
		t.Fatalf("unexpected frame: %+v", frame)
	}
}
