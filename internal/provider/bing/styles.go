package bing

import (
	"github.com/rs/zerolog"

	"github.com/joeblew999/plat-map/internal/style"
)

// Styles converts canonical styles into Bing entity options.
type Styles struct {
	Log zerolog.Logger
}

var _ style.Translator = Styles{}

// ConvertLine returns PolylineOptions.
func (s Styles) ConvertLine(l style.LineStyle) any {
	var o PolylineOptions
	o.StrokeColor = s.color(l.Color, l.Opacity)
	if l.Width != nil {
		o.StrokeThickness = *l.Width
	}
	return o
}

// ConvertMarker returns PushpinOptions. Missing dimensions are left for CreateMarker to probe.
func (s Styles) ConvertMarker(m style.MarkerStyle) any {
	o := PushpinOptions{Icon: m.URL}
	if m.Height != nil {
		o.Height = *m.Height
	}
	if m.Width != nil {
		o.Width = *m.Width
	}
	if m.Anchor != nil {
		o.Anchor = &Point{X: m.Anchor.X, Y: m.Anchor.Y}
	}
	return o
}

// ConvertPolygon returns PolygonOptions.
func (s Styles) ConvertPolygon(p style.PolygonStyle) any {
	var o PolygonOptions
	o.FillColor = s.color(p.FillColor, p.FillOpacity)
	o.StrokeColor = s.color(p.StrokeColor, p.StrokeOpacity)
	if p.StrokeWidth != nil {
		o.StrokeThickness = *p.StrokeWidth
	}
	return o
}

func (s Styles) color(hex string, opacity *int) *Color {
	if hex == "" {
		return nil
	}
	rgb, err := style.ParseHex(hex)
	if err != nil {
		s.Log.Warn().Err(err).Msg("ignoring color")
		return nil
	}
	return &Color{A: style.Opacity(opacity), R: rgb.R, G: rgb.G, B: rgb.B}
}
