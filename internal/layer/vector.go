package layer

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/joeblew999/plat-map/internal/geo"
	"github.com/joeblew999/plat-map/internal/provider"
)

// feature is one geometry to draw with its shape data.
type feature struct {
	geom         orb.Geometry
	props        map[string]any
	overIcon     string
	clickThrough bool
}

// vectorHandler draws features as provider shapes.
type vectorHandler struct {
	p      provider.Provider
	decode func(cfg *Config) ([]feature, error)
}

// NewGeoJSON returns the handler for GeoJson layers. Data holds a FeatureCollection.
func NewGeoJSON(p provider.Provider) Handler {
	return &vectorHandler{p: p, decode: decodeGeoJSON}
}

// NewNativeVectors returns the handler for NativeVectors layers.
func NewNativeVectors(p provider.Provider) Handler {
	return &vectorHandler{p: p, decode: decodeNative}
}

func (h *vectorHandler) Validate(cfg *Config) error {
	_, err := h.decode(cfg)
	return err
}

func (h *vectorHandler) Create(cfg *Config) error {
	features, err := h.decode(cfg)
	if err != nil {
		return err
	}
	var over string
	if cfg.Style != nil && cfg.Style.Marker != nil {
		over = cfg.Style.Marker.OverURL
	}
	var shapes []provider.Shape
	for _, f := range features {
		if f.overIcon == "" {
			f.overIcon = over
		}
		for _, s := range h.draw(f.geom, cfg) {
			d := s.Data()
			d.Layer, d.Properties = cfg.Name, f.props
			d.OverIcon, d.ClickThrough = f.overIcon, f.clickThrough
			h.p.AddShape(s)
			if !cfg.IsVisible() {
				h.p.SetShapeVisible(s, false)
			}
			shapes = append(shapes, s)
		}
	}
	cfg.Handle = shapes
	return nil
}

func (h *vectorHandler) draw(g orb.Geometry, cfg *Config) []provider.Shape {
	res := cfg.ResolvedStyle
	switch g := g.(type) {
	case orb.Point:
		return []provider.Shape{h.p.CreateMarker(geo.FromPoint(g), res.Marker)}
	case orb.MultiPoint:
		var out []provider.Shape
		for _, p := range g {
			out = append(out, h.draw(p, cfg)...)
		}
		return out
	case orb.LineString:
		return []provider.Shape{h.p.CreateLine(latLngs(g), res.Line)}
	case orb.MultiLineString:
		var out []provider.Shape
		for _, l := range g {
			out = append(out, h.draw(l, cfg)...)
		}
		return out
	case orb.Ring:
		return []provider.Shape{h.p.CreatePolygon(latLngs(g), res.Polygon)}
	case orb.Polygon:
		if len(g) == 0 {
			return nil
		}
		// holes are not drawn
		return h.draw(g[0], cfg)
	case orb.MultiPolygon:
		var out []provider.Shape
		for _, p := range g {
			out = append(out, h.draw(p, cfg)...)
		}
		return out
	case orb.Bound:
		return h.draw(g.ToRing(), cfg)
	case orb.Collection:
		var out []provider.Shape
		for _, c := range g {
			out = append(out, h.draw(c, cfg)...)
		}
		return out
	}
	return nil
}

func latLngs[T ~[]orb.Point](pts T) []geo.LatLng {
	out := make([]geo.LatLng, len(pts))
	for i, p := range pts {
		out[i] = geo.FromPoint(p)
	}
	return out
}

func (h *vectorHandler) Remove(cfg *Config) {
	for _, s := range cfg.DrawnShapes() {
		h.p.RemoveShape(s)
	}
	cfg.Handle = nil
}

func (h *vectorHandler) SetVisible(cfg *Config, visible bool) {
	for _, s := range cfg.DrawnShapes() {
		h.p.SetShapeVisible(s, visible)
	}
}

func (h *vectorHandler) HandleClick(cfg *Config, e *provider.PointerEvent) {
	if e.Target == nil || cfg.OnClick == nil || e.Target.Data().Layer != cfg.Name {
		return
	}
	cfg.OnClick(cfg, e)
}

func decodeGeoJSON(cfg *Config) ([]feature, error) {
	var raw []byte
	switch d := cfg.Data.(type) {
	case nil:
		return nil, fmt.Errorf("%w: data is required", ErrInvalidData)
	case string:
		raw = []byte(d)
	case []byte:
		raw = d
	case json.RawMessage:
		raw = d
	default:
		b, err := json.Marshal(d)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
		}
		raw = b
	}
	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	out := make([]feature, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		out = append(out, feature{geom: f.Geometry, props: f.Properties})
	}
	return out, nil
}

func decodeNative(cfg *Config) ([]feature, error) {
	out := make([]feature, 0, len(cfg.Shapes))
	for i, v := range cfg.Shapes {
		if len(v.Points) == 0 {
			return nil, fmt.Errorf("%w: shape %d has no points", ErrInvalidData, i)
		}
		pts := make([]orb.Point, len(v.Points))
		for j, ll := range v.Points {
			pts[j] = ll.Point()
		}
		var g orb.Geometry
		switch v.Kind {
		case "marker":
			g = orb.MultiPoint(pts)
		case "line":
			g = orb.LineString(pts)
		case "polygon":
			g = orb.Ring(pts)
		default:
			return nil, fmt.Errorf("%w: shape %d has kind %q", ErrInvalidData, i, v.Kind)
		}
		out = append(out, feature{geom: g, props: v.Properties, overIcon: v.OverIcon, clickThrough: v.ClickThrough})
	}
	return out, nil
}
