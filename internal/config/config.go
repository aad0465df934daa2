// Package config loads the map configuration from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/joeblew999/plat-map/internal/geo"
	"github.com/joeblew999/plat-map/internal/layer"
	"github.com/joeblew999/plat-map/internal/zoom"
)

// ErrInvalid is returned for configuration that cannot drive a map.
var ErrInvalid = errors.New("invalid configuration")

const (
	APIBing    = "bing"
	APILeaflet = "leaflet"

	DefaultServer = "https://www.nps.gov/npmap"
	DefaultZoom   = 4
)

// DefaultCenter is the center used when none is configured.
var DefaultCenter = geo.LatLng{Lat: 39, Lng: -96}

// APIs lists the supported providers.
var APIs = []string{APIBing, APILeaflet}

// Tools toggles map input tools.
type Tools struct {
	Keyboard bool `json:"keyboard" yaml:"keyboard" doc:"Enable keyboard panning and zooming"`
}

// Config is the map configuration.
type Config struct {
	API          string             `json:"api" yaml:"api" enum:"bing,leaflet" doc:"Map provider"`
	Div          string             `json:"div,omitempty" yaml:"div,omitempty" doc:"Container element id"`
	Server       string             `json:"server" yaml:"server" doc:"Asset base URL for default marker icons"`
	Center       geo.LatLng         `json:"center" yaml:"center"`
	Zoom         float64            `json:"zoom" yaml:"zoom"`
	RestrictZoom *zoom.Restrict     `json:"restrictZoom,omitempty" yaml:"restrictZoom,omitempty"`
	Tools        Tools              `json:"tools" yaml:"tools"`
	BaseLayers   []layer.BaseConfig `json:"baseLayers,omitempty" yaml:"baseLayers,omitempty"`
	Layers       []layer.Config     `json:"layers,omitempty" yaml:"layers,omitempty"`
}

// Default returns the configuration used for absent keys.
func Default() Config {
	return Config{
		API:    APIBing,
		Server: DefaultServer,
		Center: DefaultCenter,
		Zoom:   DefaultZoom,
		Tools:  Tools{Keyboard: true},
	}
}

// Load reads and validates the file at path. An empty path returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	cfg, err := Read(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	return Read(bytes.NewReader(data))
}

// Read decodes YAML from r over the defaults and validates the result.
func Read(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the fields a map cannot start without. Layer definitions are
// checked when they are added.
func (c Config) Validate() error {
	if !slices.Contains(APIs, c.API) {
		return fmt.Errorf("%w: unsupported api %q", ErrInvalid, c.API)
	}
	if !c.Center.Valid() || math.Abs(c.Center.Lat) > 90 {
		return fmt.Errorf("%w: center %v", ErrInvalid, c.Center)
	}
	if math.IsNaN(c.Zoom) || math.IsInf(c.Zoom, 0) || c.Zoom < 0 {
		return fmt.Errorf("%w: zoom %v", ErrInvalid, c.Zoom)
	}
	for i, b := range c.BaseLayers {
		if b.Code == "" {
			return fmt.Errorf("%w: baseLayers[%d] has no code", ErrInvalid, i)
		}
	}
	return nil
}

// Marshal encodes the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
