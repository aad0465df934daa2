// Package layer owns layer identity: unique names, the active base layer, handler
// metadata and the add/remove lifecycle.
package layer

import (
	"errors"

	"github.com/joeblew999/plat-map/internal/geo"
	"github.com/joeblew999/plat-map/internal/provider"
	"github.com/joeblew999/plat-map/internal/style"
)

var (
	ErrDuplicateName     = errors.New("layer names must be unique")
	ErrMissingType       = errors.New("layer type is required")
	ErrUnknownType       = errors.New("unknown layer type")
	ErrMissingDimensions = errors.New("height and width are required")
	ErrInvalidDimensions = errors.New("height and width must be positive and at most 8388608")
	ErrMissingURL        = errors.New("url is required")
	ErrNoHandler         = errors.New("no handler registered for layer type")
	ErrNotFound          = errors.New("layer not found")
	ErrInvalidData       = errors.New("invalid layer data")
)

// Config describes an overlay layer.
type Config struct {
	ID          string             `json:"id,omitempty" yaml:"id,omitempty" doc:"Layer id, generated when absent"`
	Name        string             `json:"name,omitempty" yaml:"name,omitempty" doc:"Unique layer name, generated when absent"`
	Type        string             `json:"type" yaml:"type" doc:"Handler type" example:"GeoJson"`
	Style       *style.VectorStyle `json:"style,omitempty" yaml:"style,omitempty" doc:"Vector style merged with the defaults"`
	Visible     *bool              `json:"visible,omitempty" yaml:"visible,omitempty" doc:"Visible unless false"`
	ZIndex      *int               `json:"zIndex,omitempty" yaml:"zIndex,omitempty"`
	Attribution string             `json:"attribution,omitempty" yaml:"attribution,omitempty"`

	// Raster layers.
	URL        string   `json:"url,omitempty" yaml:"url,omitempty" doc:"Tile URL template ({x} {y} {z} {s}) or Zoomify image base"`
	Subdomains []string `json:"subdomains,omitempty" yaml:"subdomains,omitempty"`
	Opacity    *float64 `json:"opacity,omitempty" yaml:"opacity,omitempty" minimum:"0" maximum:"1"`
	Height     *float64 `json:"height,omitempty" yaml:"height,omitempty" doc:"Zoomify image height in pixels"`
	Width      *float64 `json:"width,omitempty" yaml:"width,omitempty" doc:"Zoomify image width in pixels"`

	// Vector layers.
	Data   any           `json:"data,omitempty" yaml:"data,omitempty" doc:"GeoJSON FeatureCollection"`
	Shapes []NativeShape `json:"shapes,omitempty" yaml:"shapes,omitempty" doc:"NativeVectors geometries"`

	// ResolvedStyle holds the provider's options for Style.
	ResolvedStyle style.Resolved `json:"-" yaml:"-"`
	// Handle is what the handler created on the map.
	Handle any `json:"-" yaml:"-"`
	// OnClick is called when a click is routed to this layer.
	OnClick func(cfg *Config, e *provider.PointerEvent) `json:"-" yaml:"-"`
}

// IsVisible reports whether Visible is unset or true.
func (c *Config) IsVisible() bool { return c.Visible == nil || *c.Visible }

// Shapes returns the shapes a vector handler drew.
func (c *Config) DrawnShapes() []provider.Shape {
	shapes, _ := c.Handle.([]provider.Shape)
	return shapes
}

// NativeShape is one NativeVectors geometry.
type NativeShape struct {
	Kind         string         `json:"kind" yaml:"kind" enum:"marker,line,polygon"`
	Points       []geo.LatLng   `json:"points" yaml:"points"`
	OverIcon     string         `json:"overIcon,omitempty" yaml:"overIcon,omitempty"`
	ClickThrough bool           `json:"clickThrough,omitempty" yaml:"clickThrough,omitempty"`
	Properties   map[string]any `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// BaseConfig describes a base layer.
type BaseConfig struct {
	Code    string `json:"code" yaml:"code" doc:"Provider imagery code" example:"aerial"`
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Type    string `json:"type,omitempty" yaml:"type,omitempty" doc:"Handler type for custom base layers"`
	Visible *bool  `json:"visible,omitempty" yaml:"visible,omitempty"`
	ZIndex  *int   `json:"zIndex,omitempty" yaml:"zIndex,omitempty"`
}

// IsVisible reports whether Visible is unset or true.
func (b *BaseConfig) IsVisible() bool { return b.Visible == nil || *b.Visible }

// Entry is a base or overlay layer.
type Entry interface {
	LayerName() string
	LayerType() string
	IsVisible() bool
}

func (c *Config) LayerName() string     { return c.Name }
func (c *Config) LayerType() string     { return c.Type }
func (b *BaseConfig) LayerName() string { return b.Name }
func (b *BaseConfig) LayerType() string { return b.Type }

func boolPtr(v bool) *bool { return &v }
