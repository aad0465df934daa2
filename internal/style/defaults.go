package style

import "strings"

const defaultColor = "5e7630"

// Defaults returns the built-in vector style. server is the asset host serving the
// default marker icon.
func Defaults(server string) VectorStyle {
	return VectorStyle{
		Line: &LineStyle{
			Color:   defaultColor,
			Opacity: Int(200),
			Width:   Float(1),
		},
		Marker: &MarkerStyle{
			URL:    strings.TrimSuffix(server, "/") + "/resources/img/markers/brown-circle-13x13.png",
			Height: Float(13),
			Width:  Float(13),
			Anchor: &Anchor{X: 6.5, Y: 0},
		},
		Polygon: &PolygonStyle{
			FillColor:     defaultColor,
			FillOpacity:   Int(174),
			StrokeColor:   defaultColor,
			StrokeOpacity: Int(200),
			StrokeWidth:   Float(1),
		},
	}
}

// Merge overlays a caller style on the defaults.
//
// A caller marker only applies when it names an icon URL. With both dimensions and no
// anchor, the anchor becomes the bottom-centre {width/2, 0}; with a dimension missing
// the marker is kept as-is and sized later by a Prober. Line and polygon styles replace
// the defaults wholesale.
func Merge(user *VectorStyle, defaults VectorStyle) VectorStyle {
	out := defaults
	if user == nil {
		return out
	}
	if user.Line != nil {
		l := *user.Line
		out.Line = &l
	}
	if m := user.Marker; m != nil && m.URL != "" {
		mc := *m
		if mc.Height != nil && mc.Width != nil && mc.Anchor == nil {
			mc.Anchor = &Anchor{X: *mc.Width / 2, Y: 0}
		}
		out.Marker = &mc
	}
	if user.Polygon != nil {
		p := *user.Polygon
		out.Polygon = &p
	}
	return out
}
