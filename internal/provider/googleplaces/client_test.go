package googleplaces

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/octobees/placefinder/internal/entity"
	"github.com/octobees/placefinder/internal/provider"
)

type recordedRequest struct {
	path   string
	fields string
	body   map[string]any
}

func newTestClient(t *testing.T, handler func(w http.ResponseWriter, r *http.Request, rec recordedRequest)) (*Client, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{path: r.URL.Path, fields: r.URL.Query().Get("fields")}
		if r.Body != nil && r.Method == http.MethodPost {
			_ = json.NewDecoder(r.Body).Decode(&rec.body)
		}
		requests = append(requests, rec)
		w.Header().Set("Content-Type", "application/json")
		handler(w, r, rec)
	}))
	t.Cleanup(server.Close)

	client, err := New(context.Background(), Options{
		APIKey:       "test-key",
		BaseURL:      server.URL,
		LanguageCode: "zh-TW",
		HTTPClient:   server.Client(),
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client, &requests
}

func TestNew_RequiresCredentials(t *testing.T) {
	if _, err := New(context.Background(), Options{}); !errors.Is(err, provider.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestClient_NearbySearch(t *testing.T) {
	client, requests := newTestClient(t, func(w http.ResponseWriter, r *http.Request, rec recordedRequest) {
		_, _ = w.Write([]byte(`{"places":[
			{"id":"p1","displayName":{"text":"Chihkan Tower"},"location":{"latitude":22.9975,"longitude":120.2025},
			 "shortFormattedAddress":"No. 212, Chikan St","rating":4.4,"photos":[{"name":"places/p1/photos/ph1"}],
			 "internationalPhoneNumber":"+886 6 220 5647","websiteUri":"https://example.com","types":["tourist_attraction"]},
			{"id":"p2","displayName":{"text":"Unrated"},"location":{"latitude":23,"longitude":120.2}}
		]}`))
	})

	results, status, err := client.NearbySearch(context.Background(), provider.NearbyRequest{
		Location:     entity.LatLng{Lat: 22.99, Lng: 120.20},
		RadiusMeters: 5000,
		Type:         "tourist_attraction",
		Keyword:      "tourist_attraction",
		MaxResults:   50,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != provider.StatusOK || len(results) != 2 {
		t.Fatalf("unexpected result: status=%s len=%d", status, len(results))
	}

	req := (*requests)[0]
	if req.path != "/v1/places:searchNearby" {
		t.Fatalf("expected nearby endpoint, got %s", req.path)
	}
	if !strings.Contains(req.fields, "places.photos") {
		t.Fatalf("expected field mask to be sent, got %q", req.fields)
	}
	if req.body["maxResultCount"] != float64(20) {
		t.Fatalf("expected max result count clamped to 20, got %v", req.body["maxResultCount"])
	}
	restriction := req.body["locationRestriction"].(map[string]any)["circle"].(map[string]any)
	if restriction["radius"] != float64(5000) {
		t.Fatalf("expected radius 5000, got %v", restriction["radius"])
	}

	first := results[0]
	if first.Name != "Chihkan Tower" || !first.HasLoc || first.PhotoRef != "places/p1/photos/ph1" {
		t.Fatalf("unexpected first place: %+v", first)
	}
	if first.Rating == nil || *first.Rating != 4.4 {
		t.Fatalf("expected rating 4.4, got %v", first.Rating)
	}
	if results[1].Rating != nil || results[1].PhotoRef != "" {
		t.Fatalf("expected optional fields absent, got %+v", results[1])
	}
}

func TestClient_NearbySearch_KeywordUsesTextSearch(t *testing.T) {
	client, requests := newTestClient(t, func(w http.ResponseWriter, r *http.Request, rec recordedRequest) {
		_, _ = w.Write([]byte(`{}`))
	})

	results, status, err := client.NearbySearch(context.Background(), provider.NearbyRequest{
		Location:     entity.LatLng{Lat: 22.99, Lng: 120.20},
		RadiusMeters: 5000,
		Type:         "restaurant",
		Keyword:      "beef soup",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != provider.StatusZeroResults || len(results) != 0 {
		t.Fatalf("expected zero results, got status=%s len=%d", status, len(results))
	}
	req := (*requests)[0]
	if req.path != "/v1/places:searchText" {
		t.Fatalf("expected text search endpoint, got %s", req.path)
	}
	if req.body["textQuery"] != "beef soup" || req.body["includedType"] != "restaurant" {
		t.Fatalf("unexpected text search body: %+v", req.body)
	}
}

func TestClient_NearbySearch_APIError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request, rec recordedRequest) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`))
	})

	_, status, err := client.NearbySearch(context.Background(), provider.NearbyRequest{Type: "cafe"})
	if err == nil || status != provider.StatusError {
		t.Fatalf("expected error status, got status=%s err=%v", status, err)
	}
	if !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected status code in error, got %v", err)
	}
}

func TestClient_Geocode(t *testing.T) {
	tests := map[string]struct {
		body       string
		wantStatus provider.Status
	}{
		"found":     {body: `{"places":[{"location":{"latitude":25.04,"longitude":121.51}}]}`, wantStatus: provider.StatusOK},
		"not found": {body: `{}`, wantStatus: provider.StatusZeroResults},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			client, requests := newTestClient(t, func(w http.ResponseWriter, r *http.Request, rec recordedRequest) {
				_, _ = w.Write([]byte(tt.body))
			})
			loc, status, err := client.Geocode(context.Background(), "Taipei Main Station")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if status != tt.wantStatus {
				t.Fatalf("expected %s, got %s", tt.wantStatus, status)
			}
			if status == provider.StatusOK && (loc.Lat != 25.04 || loc.Lng != 121.51) {
				t.Fatalf("unexpected location: %+v", loc)
			}
			if (*requests)[0].body["textQuery"] != "Taipei Main Station" {
				t.Fatalf("expected address as text query")
			}
		})
	}
}

func TestClient_PhotoMediaURL(t *testing.T) {
	client, requests := newTestClient(t, func(w http.ResponseWriter, r *http.Request, rec recordedRequest) {
		if r.URL.Query().Get("skipHttpRedirect") != "true" || r.URL.Query().Get("maxWidthPx") != "400" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"name":"places/p1/photos/ph1/media","photoUri":"https://lh3.example.com/photo.jpg"}`))
	})

	uri, err := client.PhotoMediaURL(context.Background(), "places/p1/photos/ph1", 400, 400)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if uri != "https://lh3.example.com/photo.jpg" {
		t.Fatalf("unexpected uri: %s", uri)
	}
	if (*requests)[0].path != "/v1/places/p1/photos/ph1/media" {
		t.Fatalf("unexpected media path: %s", (*requests)[0].path)
	}

	if _, err := client.PhotoMediaURL(context.Background(), "  ", 400, 400); !errors.Is(err, provider.ErrEmptyPhotoRef) {
		t.Fatalf("expected ErrEmptyPhotoRef, got %v", err)
	}
	if _, err := client.PhotoMediaURL(context.Background(), "../../etc/passwd", 400, 400); !errors.Is(err, provider.ErrInvalidPhotoRef) {
		t.Fatalf("expected ErrInvalidPhotoRef, got %v", err)
	}
}
