// Package style describes vector styles independently of any map provider.
//
// Colors are six-digit hex strings and opacities run from 0 to 255. Every scalar
// is optional and a pointer, so an explicit zero is never mistaken for "unset".
package style

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ErrInvalidColor is returned for hex colors that are not six hex digits.
var ErrInvalidColor = errors.New("invalid hex color")

// Anchor is the icon pixel placed on the marker position.
type Anchor struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// LineStyle styles polylines.
type LineStyle struct {
	Color   string   `json:"color,omitempty" yaml:"color,omitempty" doc:"Stroke color (hex)"`
	Opacity *int     `json:"opacity,omitempty" yaml:"opacity,omitempty" minimum:"0" maximum:"255" doc:"Stroke opacity (0-255)"`
	Width   *float64 `json:"width,omitempty" yaml:"width,omitempty" doc:"Stroke width in pixels"`
}

// MarkerStyle styles point markers with a hosted icon.
type MarkerStyle struct {
	URL     string   `json:"url,omitempty" yaml:"url,omitempty" doc:"Icon URL"`
	OverURL string   `json:"overUrl,omitempty" yaml:"overUrl,omitempty" doc:"Icon shown while hovered"`
	Height  *float64 `json:"height,omitempty" yaml:"height,omitempty" doc:"Icon height in pixels"`
	Width   *float64 `json:"width,omitempty" yaml:"width,omitempty" doc:"Icon width in pixels"`
	Anchor  *Anchor  `json:"anchor,omitempty" yaml:"anchor,omitempty" doc:"Icon anchor in pixels"`
}

// PolygonStyle styles filled polygons.
type PolygonStyle struct {
	FillColor     string   `json:"fillColor,omitempty" yaml:"fillColor,omitempty" doc:"Fill color (hex)"`
	FillOpacity   *int     `json:"fillOpacity,omitempty" yaml:"fillOpacity,omitempty" minimum:"0" maximum:"255" doc:"Fill opacity (0-255)"`
	StrokeColor   string   `json:"strokeColor,omitempty" yaml:"strokeColor,omitempty" doc:"Stroke color (hex)"`
	StrokeOpacity *int     `json:"strokeOpacity,omitempty" yaml:"strokeOpacity,omitempty" minimum:"0" maximum:"255" doc:"Stroke opacity (0-255)"`
	StrokeWidth   *float64 `json:"strokeWidth,omitempty" yaml:"strokeWidth,omitempty" doc:"Stroke width in pixels"`
}

// VectorStyle groups the styles of one vector layer.
type VectorStyle struct {
	Line    *LineStyle    `json:"line,omitempty" yaml:"line,omitempty"`
	Marker  *MarkerStyle  `json:"marker,omitempty" yaml:"marker,omitempty"`
	Polygon *PolygonStyle `json:"polygon,omitempty" yaml:"polygon,omitempty"`
}

// Resolved holds provider-native options produced by a Translator.
type Resolved struct {
	Line    any `json:"-"`
	Marker  any `json:"-"`
	Polygon any `json:"-"`
}

// Translator converts canonical styles into a provider's option objects.
type Translator interface {
	ConvertLine(LineStyle) any
	ConvertMarker(MarkerStyle) any
	ConvertPolygon(PolygonStyle) any
}

// Translate runs every part of s through t.
func Translate(t Translator, s VectorStyle) Resolved {
	var r Resolved
	if s.Line != nil {
		r.Line = t.ConvertLine(*s.Line)
	}
	if s.Marker != nil {
		r.Marker = t.ConvertMarker(*s.Marker)
	}
	if s.Polygon != nil {
		r.Polygon = t.ConvertPolygon(*s.Polygon)
	}
	return r
}

// ParseHex parses "5e7630" or "#5e7630" into an opaque color.
func ParseHex(hex string) (color.RGBA, error) {
	h := strings.TrimPrefix(hex, "#")
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, hex)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, hex)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// Opacity returns *o, or 255 when unset. Values are clamped to 0..255.
func Opacity(o *int) uint8 {
	if o == nil {
		return 255
	}
	switch {
	case *o < 0:
		return 0
	case *o > 255:
		return 255
	}
	return uint8(*o)
}

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }
