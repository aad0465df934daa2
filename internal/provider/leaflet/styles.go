package leaflet

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/joeblew999/plat-map/internal/style"
)

// Styles converts canonical styles into Leaflet options.
type Styles struct {
	Log zerolog.Logger
}

var _ style.Translator = Styles{}

// ConvertLine returns PathOptions.
func (s Styles) ConvertLine(l style.LineStyle) any {
	o := PathOptions{Stroke: true, Color: s.css(l.Color), Opacity: fraction(l.Opacity), Weight: 1}
	if l.Width != nil {
		o.Weight = *l.Width
	}
	return o
}

// ConvertMarker returns MarkerOptions.
func (s Styles) ConvertMarker(m style.MarkerStyle) any {
	icon := IconOptions{IconURL: m.URL}
	if m.Height != nil && m.Width != nil {
		icon.IconSize = &Point{X: *m.Width, Y: *m.Height}
	}
	if m.Anchor != nil {
		icon.IconAnchor = &Point{X: m.Anchor.X, Y: m.Anchor.Y}
	}
	return MarkerOptions{Icon: icon}
}

// ConvertPolygon returns PathOptions.
func (s Styles) ConvertPolygon(p style.PolygonStyle) any {
	o := PathOptions{
		Stroke:      p.StrokeColor != "",
		Color:       s.css(p.StrokeColor),
		Opacity:     fraction(p.StrokeOpacity),
		Fill:        p.FillColor != "",
		FillColor:   s.css(p.FillColor),
		FillOpacity: fraction(p.FillOpacity),
		Weight:      1,
	}
	if p.StrokeWidth != nil {
		o.Weight = *p.StrokeWidth
	}
	return o
}

func (s Styles) css(hex string) string {
	if hex == "" {
		return ""
	}
	if _, err := style.ParseHex(hex); err != nil {
		s.Log.Warn().Err(err).Msg("ignoring color")
		return ""
	}
	return "#" + strings.ToLower(strings.TrimPrefix(hex, "#"))
}

func fraction(opacity *int) float64 {
	return float64(style.Opacity(opacity)) / 255
}
