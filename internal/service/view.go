package service

import (
	"math"

	"github.com/joeblew999/plat-map/internal/event"
	"github.com/joeblew999/plat-map/internal/geo"
	"github.com/joeblew999/plat-map/internal/provider"
)

// Center pans the map to ll.
func (m *Map) Center(ll geo.LatLng) {
	m.p.SetView(provider.View{Center: &ll, Animate: true})
}

// CenterAndZoom moves the map to ll at zoom z. When cb is set it is called
// SettleDelay after the resulting view change ends, or at once when the map is
// already there.
func (m *Map) CenterAndZoom(ll geo.LatLng, z float64, cb func()) {
	if geo.Equal(m.p.Center(), ll) && m.p.Zoom() == z {
		if cb != nil {
			cb()
		}
		return
	}
	if cb != nil {
		var sub event.Subscription
		sub = m.bus.On(event.TopicMap, event.ViewChangeEnd, func(event.Event) {
			m.bus.Off(sub)
			m.loop.AfterFunc(SettleDelay, cb)
		})
	}
	m.p.SetView(provider.View{Center: &ll, Zoom: &z, Animate: true})
}

// Zoom sets the zoom level.
func (m *Map) Zoom(z float64) {
	m.p.SetView(provider.View{Zoom: &z, Animate: true})
}

// ZoomIn zooms in one level. With toDot the map also centers on the click dot.
func (m *Map) ZoomIn(toDot bool) {
	z := m.p.Zoom() + 1
	v := provider.View{Zoom: &z, Animate: true}
	if toDot {
		ll := m.p.PixelToLatLng(m.clickDot())
		v.Center = &ll
	}
	m.p.SetView(v)
}

// clickDot returns the center of the click dot in container pixels.
func (m *Map) clickDot() geo.Pixel {
	dot := m.r.ElementOffset(ClickDotID)
	origin := m.r.ElementOffset(m.container)
	w, h := m.r.OuterDimensions(ClickDotID)
	return geo.Pixel{X: dot.X - origin.X + w/2, Y: dot.Y - origin.Y + h/2}
}

// PositionClickDot moves the click dot onto ll.
func (m *Map) PositionClickDot(ll geo.LatLng) {
	m.placeClickDot(m.p.LatLngToPixel(ll), 0)
}

// PositionClickDotOnMarker moves the click dot onto marker s, raised by the
// marker's anchor so it sits on the icon. It reports false for other shapes.
func (m *Map) PositionClickDotOnMarker(s provider.Shape) bool {
	ll, ok := m.p.MarkerLatLng(s)
	if !ok {
		return false
	}
	anchor, _ := m.p.MarkerAnchor(s)
	m.placeClickDot(m.p.LatLngToPixel(ll), anchor.Y)
	return true
}

func (m *Map) placeClickDot(px geo.Pixel, anchorY float64) {
	if math.IsNaN(px.X) || math.IsNaN(px.Y) {
		m.log.Debug().Msg("click dot target is off the map")
		return
	}
	origin := m.r.ElementOffset(m.container)
	m.r.MoveElement(ClickDotID, geo.Pixel{X: origin.X + px.X, Y: origin.Y + px.Y - anchorY})
}

// ClickDotLatLng returns the position under the click dot's top-left corner.
func (m *Map) ClickDotLatLng() geo.LatLng {
	dot := m.r.ElementOffset(ClickDotID)
	origin := m.r.ElementOffset(m.container)
	return m.p.PixelToLatLng(geo.Pixel{X: dot.X - origin.X, Y: dot.Y - origin.Y})
}

// ZoomOut zooms out one level.
func (m *Map) ZoomOut() {
	z := m.p.Zoom() - 1
	m.p.SetView(provider.View{Zoom: &z, Animate: true})
}

// ToBounds fits the map to b.
func (m *Map) ToBounds(b geo.Bounds) {
	m.p.SetView(provider.View{Bounds: &b, Padding: BoundsPadding, Animate: true})
}

// ToLatLngs fits the map to the bounds of lls. An empty slice is ignored.
func (m *Map) ToLatLngs(lls []geo.LatLng) {
	if len(lls) == 0 {
		return
	}
	m.ToBounds(geo.BoundsOf(lls))
}

// ToMarkers fits the map to the positions of markers. Other shapes are skipped.
func (m *Map) ToMarkers(markers []provider.Shape) {
	var lls []geo.LatLng
	for _, s := range markers {
		if ll, ok := m.p.MarkerLatLng(s); ok {
			lls = append(lls, ll)
		}
	}
	m.ToLatLngs(lls)
}

// ToInitialExtent returns to the configured center and zoom.
func (m *Map) ToInitialExtent() {
	m.CenterAndZoom(m.initial.Center, m.initial.Zoom, nil)
}

// PanByPixels moves the map content by dx, dy pixels. With cb the pan is
// immediate and cb is called straight after.
func (m *Map) PanByPixels(dx, dy float64, cb func()) {
	m.p.PanBy(geo.Pixel{X: dx, Y: dy}, cb == nil)
	if cb != nil {
		cb()
	}
}

// GetBounds returns the visible bounds.
func (m *Map) GetBounds() geo.Bounds { return m.p.Bounds() }

// GetCenter returns the view center.
func (m *Map) GetCenter() geo.LatLng { return m.p.Center() }

// GetZoom returns the zoom rounded to a whole level.
func (m *Map) GetZoom() float64 { return math.Round(m.p.Zoom()) }

// GetMaxZoom returns the effective maximum zoom.
func (m *Map) GetMaxZoom() float64 { return m.guard.Range().Max }

// GetMinZoom returns the effective minimum zoom.
func (m *Map) GetMinZoom() float64 { return m.guard.Range().Min }

// IsLatLngWithinMapBounds reports whether ll is inside the visible bounds.
func (m *Map) IsLatLngWithinMapBounds(ll geo.LatLng) bool {
	return m.p.Bounds().Contains(ll)
}

// HandleResize resizes the map to its container.
func (m *Map) HandleResize() {
	w, h := m.r.OuterDimensions(m.container)
	if w <= 0 || h <= 0 {
		m.log.Warn().Str("container", m.container).Msg("container has no size")
		return
	}
	m.p.SetSize(w, h)
}

// TriggerEvent dispatches a synthetic pointer event on the map. It goes through
// the provider's SDK, so the gesture handlers see it like a real one.
func (m *Map) TriggerEvent(kind provider.PointerKind, e *provider.PointerEvent) {
	m.p.Trigger(kind, e)
}

// EventLatLng returns the position of a pointer event.
func (m *Map) EventLatLng(e *provider.PointerEvent) geo.LatLng {
	return m.p.PixelToLatLng(e.Pixel)
}
