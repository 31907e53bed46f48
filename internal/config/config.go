package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/octobees/placefinder/internal/entity"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// Config aggregates application-wide configuration values.
type Config struct {
	Port               string
	GooglePlacesAPIKey string
	MapsJSAPIKey       string
	PlacesBaseURL      string
	LanguageCode       string
	PhoneRegion        string
	LogLevel           string
	ProviderTimeout    time.Duration
	RateLimitSearch    RateLimitConfig
	RateLimitPhoto     RateLimitConfig
	DefaultCenter      entity.LatLng
	PlaceTypes         []string
}

var defaultPlaceTypes = []string{
	entity.DefaultPlaceType,
	"restaurant",
	"cafe",
	"museum",
	"park",
	"lodging",
	"shopping_mall",
	"amusement_park",
}

// Load reads configuration from configs/config.yml (optional) and environment variables,
// environment taking precedence, and applies sane defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("LANGUAGE_CODE", "zh-TW")
	v.SetDefault("PHONE_REGION", "TW")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PROVIDER_TIMEOUT", "10s")
	v.SetDefault("RATE_LIMIT_SEARCH", "30/min")
	v.SetDefault("RATE_LIMIT_PHOTO", "300/min")
	v.SetDefault("DEFAULT_CENTER", "22.99651782738241,120.2034743572298")
	v.AutomaticEnv()

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:               v.GetString("PORT"),
		GooglePlacesAPIKey: v.GetString("GOOGLE_PLACES_API_KEY"),
		MapsJSAPIKey:       v.GetString("MAPS_JS_API_KEY"),
		PlacesBaseURL:      strings.TrimSpace(v.GetString("PLACES_BASE_URL")),
		LanguageCode:       v.GetString("LANGUAGE_CODE"),
		PhoneRegion:        strings.ToUpper(v.GetString("PHONE_REGION")),
		LogLevel:           strings.ToLower(v.GetString("LOG_LEVEL")),
		ProviderTimeout:    parseDuration(v.GetString("PROVIDER_TIMEOUT")),
		PlaceTypes:         parsePlaceTypes(v.Get("PLACE_TYPES")),
	}

	rl, err := parseRateLimit(v.GetString("RATE_LIMIT_SEARCH"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_SEARCH value: %w", err)
	}
	cfg.RateLimitSearch = rl

	rl, err = parseRateLimit(v.GetString("RATE_LIMIT_PHOTO"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PHOTO value: %w", err)
	}
	cfg.RateLimitPhoto = rl

	center, err := entity.ParseLatLng(v.GetString("DEFAULT_CENTER"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_CENTER value: %w", err)
	}
	cfg.DefaultCenter = center

	return cfg, nil
}

// readConfigFile loads CONFIG_FILE when set, otherwise configs/config.yml if present.
func readConfigFile(v *viper.Viper) error {
	if path := strings.TrimSpace(v.GetString("CONFIG_FILE")); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("configs")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	return nil
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func parseDuration(input string) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// parsePlaceTypes accepts a YAML list or a comma separated env value.
func parsePlaceTypes(raw any) []string {
	var items []string
	switch val := raw.(type) {
	case string:
		items = strings.Split(val, ",")
	case []string:
		items = val
	case []any:
		for _, item := range val {
			items = append(items, fmt.Sprint(item))
		}
	}

	seen := make(map[string]struct{}, len(items))
	types := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.ToLower(strings.TrimSpace(item))
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		types = append(types, item)
	}
	if len(types) == 0 {
		return append([]string(nil), defaultPlaceTypes...)
	}
	return types
}
