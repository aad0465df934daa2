package sim

import (
	"slices"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-map/internal/geo"
	"github.com/joeblew999/plat-map/internal/provider"
	"github.com/joeblew999/plat-map/internal/provider/leaflet"
)

var leafletPointerNames = map[provider.PointerKind]string{
	provider.Click:      "click",
	provider.DblClick:   "dblclick",
	provider.MouseDown:  "mousedown",
	provider.MouseMove:  "mousemove",
	provider.MouseUp:    "mouseup",
	provider.MouseOut:   "mouseout",
	provider.MouseOver:  "mouseover",
	provider.RightClick: "contextmenu",
}

var leafletViewNames = map[provider.ViewPhase]string{
	provider.ViewStart:    "movestart",
	provider.ViewChanging: "move",
	provider.ViewEnd:      "moveend",
}

// LeafletMap exposes an Engine through the Leaflet SDK surface.
type LeafletMap struct {
	e        *Engine
	handlers map[string][]func(*leaflet.MouseEvent)
}

var _ leaflet.SDK = (*LeafletMap)(nil)

// NewLeaflet wraps e.
func NewLeaflet(e *Engine) *LeafletMap {
	m := &LeafletMap{e: e, handlers: make(map[string][]func(*leaflet.MouseEvent))}
	e.Listen(Listener{Pointer: m.pointer, View: m.view})
	return m
}

func (m *LeafletMap) GetCenter() orb.Point                 { return m.e.Center().Point() }
func (m *LeafletMap) GetZoom() float64                     { return m.e.Zoom() }
func (m *LeafletMap) GetBounds() orb.Bound                 { return m.e.Bounds().Bound() }
func (m *LeafletMap) InvalidateSize(width, height float64) { m.e.Resize(width, height) }
func (m *LeafletMap) Attributions() []string               { return m.e.Copyrights() }
func (m *LeafletMap) AddLayer(l leaflet.Layer)             { m.e.Add(leafletItem{layer: l}) }
func (m *LeafletMap) RemoveLayer(l leaflet.Layer)          { m.e.Remove(leafletItem{layer: l}) }
func (m *LeafletMap) HasLayer(l leaflet.Layer) bool        { return m.e.Has(leafletItem{layer: l}) }
func (m *LeafletMap) On(event string, fn func(*leaflet.MouseEvent)) {
	m.handlers[event] = append(m.handlers[event], fn)
}

func (m *LeafletMap) Fire(event string, e *leaflet.MouseEvent) { m.fire(event, e) }

func (m *LeafletMap) SetView(center orb.Point, zoom float64, o leaflet.ZoomPanOptions) {
	c := geo.FromPoint(center)
	m.e.SetView(provider.View{Center: &c, Zoom: &zoom, Animate: o.Animate})
}

func (m *LeafletMap) FitBounds(b orb.Bound, o leaflet.FitBoundsOptions) {
	bounds := geo.FromBound(b)
	m.e.SetView(provider.View{Bounds: &bounds, Padding: o.Padding.X, Animate: o.Animate})
}

// PanBy moves the view by offset, so the content moves the other way.
func (m *LeafletMap) PanBy(offset leaflet.Point, o leaflet.ZoomPanOptions) {
	c := m.e.Center()
	m.e.SetView(provider.View{Center: &c, CenterOffset: &geo.Pixel{X: -offset.X, Y: -offset.Y}, Animate: o.Animate})
}

func (m *LeafletMap) LatLngToContainerPoint(p orb.Point) leaflet.Point {
	px := m.e.LatLngToPixel(geo.FromPoint(p))
	return leaflet.Point{X: px.X, Y: px.Y}
}

func (m *LeafletMap) ContainerPointToLatLng(p leaflet.Point) orb.Point {
	return m.e.PixelToLatLng(geo.Pixel{X: p.X, Y: p.Y}).Point()
}

func (m *LeafletMap) Project(p orb.Point, zoom float64) leaflet.Point {
	x, y := world(geo.FromPoint(p), zoom)
	return leaflet.Point{X: x, Y: y}
}

func (m *LeafletMap) Unproject(p leaflet.Point, zoom float64) orb.Point {
	return fromWorld(p.X, p.Y, zoom).Point()
}

func (m *LeafletMap) fire(name string, ev *leaflet.MouseEvent) {
	hs := slices.Clone(m.handlers[name])
	for _, h := range hs {
		h(ev)
	}
}

func (m *LeafletMap) view(p provider.ViewPhase) {
	m.fire(leafletViewNames[p], &leaflet.MouseEvent{Type: leafletViewNames[p]})
}

func (m *LeafletMap) pointer(kind provider.PointerKind, px geo.Pixel, d provider.DOMEvent, target Item) bool {
	name := leafletPointerNames[kind]
	ev := &leaflet.MouseEvent{
		Type:           name,
		LatLng:         m.e.PixelToLatLng(px).Point(),
		ContainerPoint: leaflet.Point{X: px.X, Y: px.Y},
		OriginalEvent:  &d,
	}
	if it, ok := target.(leafletItem); ok {
		ev.Target = it.layer
	}
	m.fire(name, ev)
	return ev.DefaultPrevented
}

// leafletItem hit-tests a Leaflet layer. Leaflet hides layers by removing them,
// so anything on the map is visible.
type leafletItem struct {
	layer leaflet.Layer
}

func (leafletItem) Visible() bool { return true }

func (l leafletItem) Hit(e *Engine, px geo.Pixel) bool {
	switch ly := l.layer.(type) {
	case *leaflet.Marker:
		icon := ly.Options().Icon
		var w, h float64
		if icon.IconSize != nil {
			w, h = icon.IconSize.X, icon.IconSize.Y
		}
		anchor := geo.Pixel{X: w / 2, Y: h / 2}
		if icon.IconAnchor != nil {
			anchor = geo.Pixel{X: icon.IconAnchor.X, Y: icon.IconAnchor.Y}
		}
		return hitIcon(e, geo.FromPoint(ly.GetLatLng()), w, h, anchor, px)
	case *leaflet.Polygon:
		return hitRing(e, ly.GetLatLngs(), px)
	case *leaflet.Polyline:
		return hitPath(e, ly.GetLatLngs(), px)
	}
	return false
}
