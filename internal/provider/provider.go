// Package provider defines the capability surface of the external places service.
package provider

import (
	"context"
	"errors"

	"github.com/octobees/placefinder/internal/entity"
)

// Status classifies the outcome of a provider call.
type Status string

const (
	StatusOK          Status = "OK"
	StatusZeroResults Status = "ZERO_RESULTS"
	StatusError       Status = "ERROR"
)

var (
	// ErrEmptyPhotoRef is returned when a photo lookup has no reference.
	ErrEmptyPhotoRef = errors.New("provider: empty photo reference")
	// ErrInvalidPhotoRef is returned when a photo reference is not a provider photo resource.
	ErrInvalidPhotoRef = errors.New("provider: invalid photo reference")
	// ErrNotConfigured is returned by providers created without credentials.
	ErrNotConfigured = errors.New("provider: missing API key")
)

// NearbyRequest is a nearby-place search around a location.
type NearbyRequest struct {
	Location     entity.LatLng
	RadiusMeters float64
	Type         string
	Keyword      string
	MaxResults   int
}

// RawPlace is a provider record before boundary validation.
type RawPlace struct {
	ID       string
	Name     string
	Lat      float64
	Lng      float64
	HasLoc   bool
	Address  string
	Rating   *float64
	PhotoRef string
	Phone    string
	Website  string
	Types    []string
}

// Provider is the external geocoding/places capability consumed by the gateway.
type Provider interface {
	Geocode(ctx context.Context, address string) (entity.LatLng, Status, error)
	NearbySearch(ctx context.Context, req NearbyRequest) ([]RawPlace, Status, error)
	PhotoMediaURL(ctx context.Context, photoRef string, maxWidth, maxHeight int) (string, error)
}
