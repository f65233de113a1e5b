// Package config loads the service configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"

	"github.com/joeblew999/geovraag/internal/feature"
)

// BoundingBox is the lat/lon rectangle accepted for features and pins.
type BoundingBox struct {
	MinLat float64 `yaml:"minLat" json:"minLat"`
	MaxLat float64 `yaml:"maxLat" json:"maxLat"`
	MinLon float64 `yaml:"minLon" json:"minLon"`
	MaxLon float64 `yaml:"maxLon" json:"maxLon"`
}

// Bound converts to an orb bound ((lon, lat) order).
func (b BoundingBox) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.MinLon, b.MinLat},
		Max: orb.Point{b.MaxLon, b.MaxLat},
	}
}

// BackendConfig points at the black-box natural-language query endpoint.
type BackendConfig struct {
	URL            string `yaml:"url" json:"url"`
	TimeoutSeconds int    `yaml:"timeoutSeconds,omitempty" json:"timeoutSeconds,omitempty"`
}

// Timeout returns the configured request timeout.
func (b BackendConfig) Timeout() time.Duration {
	if b.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// Config is the full service configuration file.
type Config struct {
	Backend BackendConfig `yaml:"backend" json:"backend"`
	// Bounds defaults to the Netherlands bounding box when omitted.
	Bounds *BoundingBox `yaml:"bounds,omitempty" json:"bounds,omitempty"`
	// Colors overrides category colors, keyed "<dimension>.<category>",
	// e.g. "area.large: '#ff0000'".
	Colors  map[string]string `yaml:"colors,omitempty" json:"colors,omitempty"`
	MapZoom float64           `yaml:"mapZoom,omitempty" json:"mapZoom,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{URL: "http://localhost:5000/api/query"},
	}
}

// Bound returns the configured bounding box, falling back to the
// Netherlands box.
func (c *Config) Bound() orb.Bound {
	if c.Bounds == nil {
		return feature.DefaultBound
	}
	return c.Bounds.Bound()
}

// Load reads and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	if cfg.Backend.URL == "" {
		return nil, fmt.Errorf("backend.url is required")
	}
	if b := cfg.Bounds; b != nil {
		if b.MinLat >= b.MaxLat || b.MinLon >= b.MaxLon {
			return nil, fmt.Errorf("bounds: min must be below max")
		}
	}

	return &cfg, nil
}
