package service

import (
	"errors"
	"math"
	"net/url"
	"strings"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/net/idna"

	"github.com/octobees/placefinder/internal/entity"
	"github.com/octobees/placefinder/internal/provider"
)

var idnaProfile = idna.Lookup

const (
	trackingPrefix     = "utm_"
	defaultPhoneRegion = "TW"
	maxRating          = 5.0
)

// Sanitizer validates provider records before they enter the pipeline.
type Sanitizer struct {
	DefaultRegion string
}

// NewSanitizer builds a sanitizer that parses local phone numbers against region.
func NewSanitizer(region string) *Sanitizer {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = defaultPhoneRegion
	}
	return &Sanitizer{DefaultRegion: region}
}

// Places converts raw records, dropping those without a name or a usable location.
// Provider order is preserved.
func (s *Sanitizer) Places(raws []provider.RawPlace) []entity.Place {
	places := make([]entity.Place, 0, len(raws))
	for _, raw := range raws {
		place, ok := s.Place(raw)
		if !ok {
			continue
		}
		places = append(places, place)
	}
	return places
}

// Place converts a single raw record.
func (s *Sanitizer) Place(raw provider.RawPlace) (entity.Place, bool) {
	name := strings.TrimSpace(raw.Name)
	if name == "" || !raw.HasLoc {
		return entity.Place{}, false
	}
	loc := entity.LatLng{Lat: raw.Lat, Lng: raw.Lng}
	if math.IsNaN(loc.Lat) || math.IsNaN(loc.Lng) || !loc.Valid() {
		return entity.Place{}, false
	}

	place := entity.Place{
		ID:       strings.TrimSpace(raw.ID),
		Name:     name,
		Location: loc,
		Address:  optional(raw.Address),
		Rating:   cleanRating(raw.Rating),
		PhotoRef: optional(raw.PhotoRef),
		Types:    cleanTypes(raw.Types),
	}
	if phone := normalizePhone(raw.Phone, s.DefaultRegion); phone != "" {
		place.Phone = &phone
	}
	if website := sanitizeWebsite(raw.Website); website != "" {
		place.Website = &website
	}
	return place, true
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func cleanRating(rating *float64) *float64 {
	if rating == nil {
		return nil
	}
	r := *rating
	if math.IsNaN(r) || r < 0 || r > maxRating {
		return nil
	}
	return &r
}

func cleanTypes(types []string) []string {
	if len(types) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(types))
	cleaned := make([]string, 0, len(types))
	for _, raw := range types {
		t := strings.ToLower(strings.TrimSpace(raw))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		cleaned = append(cleaned, t)
	}
	if len(cleaned) == 0 {
		return nil
	}
	return cleaned
}

func normalizePhone(raw, region string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if region == "" {
		region = defaultPhoneRegion
	}
	number, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return ""
	}
	if !phonenumbers.IsPossibleNumber(number) || !phonenumbers.IsValidNumber(number) {
		return ""
	}
	return phonenumbers.Format(number, phonenumbers.INTERNATIONAL)
}

func sanitizeWebsite(raw string) string {
	u, err := parseWebsite(raw)
	if err != nil {
		return ""
	}
	stripTracking(u)
	return u.String()
}

func parseWebsite(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("empty url")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, errors.New("invalid url")
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.New("unsupported scheme")
	}
	host, err := idnaProfile.ToASCII(strings.Trim(u.Hostname(), "."))
	if err != nil || host == "" {
		return nil, errors.New("invalid host")
	}
	if port := u.Port(); port != "" {
		host += ":" + port
	}
	u.Host = host
	u.User = nil
	return u, nil
}

func stripTracking(u *url.URL) {
	if u == nil {
		return
	}
	query := u.Query()
	changed := false
	for key := range query {
		if strings.HasPrefix(strings.ToLower(key), trackingPrefix) {
			query.Del(key)
			changed = true
		}
	}
	if changed {
		u.RawQuery = query.Encode()
	}
}
