package sim

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-map/internal/geo"
	"github.com/joeblew999/plat-map/internal/provider"
	"github.com/joeblew999/plat-map/internal/provider/bing"
)

var bingPointerNames = map[provider.PointerKind]string{
	provider.Click:      "click",
	provider.DblClick:   "dblclick",
	provider.MouseDown:  "mousedown",
	provider.MouseMove:  "mousemove",
	provider.MouseUp:    "mouseup",
	provider.MouseOut:   "mouseout",
	provider.MouseOver:  "mouseover",
	provider.RightClick: "rightclick",
}

var bingViewNames = map[provider.ViewPhase]string{
	provider.ViewStart:    "viewchangestart",
	provider.ViewChanging: "viewchange",
	provider.ViewEnd:      "viewchangeend",
}

type bingHandler struct {
	id bing.HandlerID
	fn func(*bing.MouseEvent)
}

// BingMap exposes an Engine through the Bing SDK surface.
type BingMap struct {
	e        *Engine
	entities *bingEntities
	handlers map[string][]bingHandler
	nextID   bing.HandlerID
}

var _ bing.SDK = (*BingMap)(nil)

// NewBing wraps e.
func NewBing(e *Engine) *BingMap {
	m := &BingMap{e: e, entities: &bingEntities{e: e}, handlers: make(map[string][]bingHandler)}
	e.Listen(Listener{Pointer: m.pointer, View: m.view})
	return m
}

func (m *BingMap) GetCenter() bing.Location {
	c := m.e.Center()
	return bing.Location{Latitude: c.Lat, Longitude: c.Lng}
}

func (m *BingMap) GetZoom() float64 { return m.e.Zoom() }

func (m *BingMap) GetBounds() bing.LocationRect {
	b := m.e.Bounds()
	return bing.LocationRectFromEdges(b.N, b.W, b.S, b.E)
}

func (m *BingMap) GetMapTypeID() bing.MapTypeID      { return bing.MapTypeID(m.e.MapType()) }
func (m *BingMap) SetMapType(id bing.MapTypeID)      { m.e.SetMapType(string(id)) }
func (m *BingMap) SetOptions(o bing.MapOptions)      { m.e.Resize(o.Width, o.Height) }
func (m *BingMap) Entities() bing.EntityCollection   { return m.entities }
func (m *BingMap) GetCopyrights(fn func([][]string)) { fn([][]string{m.e.Copyrights()}) }

// SetView animates unless Animate is explicitly false.
func (m *BingMap) SetView(o bing.ViewOptions) {
	v := provider.View{Zoom: o.Zoom, Padding: o.Padding, Animate: o.Animate == nil || *o.Animate}
	if o.Center != nil {
		v.Center = &geo.LatLng{Lat: o.Center.Latitude, Lng: o.Center.Longitude}
	}
	if o.Bounds != nil {
		v.Bounds = &geo.Bounds{N: o.Bounds.North(), S: o.Bounds.South(), E: o.Bounds.East(), W: o.Bounds.West()}
	}
	if o.CenterOffset != nil {
		v.CenterOffset = &geo.Pixel{X: o.CenterOffset.X, Y: o.CenterOffset.Y}
	}
	m.e.SetView(v)
}

func (m *BingMap) TryLocationToPixel(l bing.Location) (bing.Point, bool) {
	p := m.e.LatLngToPixel(geo.LatLng{Lat: l.Latitude, Lng: l.Longitude})
	if math.IsNaN(p.X) || math.IsNaN(p.Y) {
		return bing.Point{}, false
	}
	return bing.Point{X: p.X, Y: p.Y}, true
}

func (m *BingMap) TryPixelToLocation(p bing.Point) (bing.Location, bool) {
	ll := m.e.PixelToLatLng(geo.Pixel{X: p.X, Y: p.Y})
	if !ll.Valid() {
		return bing.Location{}, false
	}
	return bing.Location{Latitude: ll.Lat, Longitude: ll.Lng}, true
}

func (m *BingMap) AddHandler(event string, fn func(*bing.MouseEvent)) bing.HandlerID {
	m.nextID++
	m.handlers[event] = append(m.handlers[event], bingHandler{id: m.nextID, fn: fn})
	return m.nextID
}

func (m *BingMap) RemoveHandler(id bing.HandlerID) {
	for name, hs := range m.handlers {
		for i, h := range hs {
			if h.id == id {
				m.handlers[name] = append(hs[:i:i], hs[i+1:]...)
				return
			}
		}
	}
}

func (m *BingMap) Invoke(event string, e *bing.MouseEvent) { m.fire(event, e) }

func (m *BingMap) fire(name string, ev *bing.MouseEvent) {
	hs := append([]bingHandler(nil), m.handlers[name]...)
	for _, h := range hs {
		h.fn(ev)
	}
}

func (m *BingMap) view(p provider.ViewPhase) {
	m.fire(bingViewNames[p], &bing.MouseEvent{EventName: bingViewNames[p], TargetType: "map"})
}

func (m *BingMap) pointer(kind provider.PointerKind, px geo.Pixel, d provider.DOMEvent, target Item) bool {
	name := bingPointerNames[kind]
	ev := &bing.MouseEvent{
		EventName:     name,
		TargetType:    "map",
		IsPrimary:     d.Button == 0,
		OriginalEvent: &d,
		X:             px.X,
		Y:             px.Y,
	}
	if it, ok := target.(bingItem); ok {
		ev.Target = it.entity
		ev.TargetType = it.targetType()
	}
	m.fire(name, ev)
	return ev.Handled
}

// bingItem hit-tests a Bing entity.
type bingItem struct {
	entity bing.Entity
}

func (b bingItem) Visible() bool { return b.entity.GetVisible() }

func (b bingItem) targetType() string {
	switch b.entity.(type) {
	case *bing.Pushpin:
		return "pushpin"
	case *bing.Polygon:
		return "polygon"
	case *bing.Polyline:
		return "polyline"
	}
	return "map"
}

func (b bingItem) Hit(e *Engine, px geo.Pixel) bool {
	switch ent := b.entity.(type) {
	case *bing.Pushpin:
		o := ent.Options()
		loc := ent.GetLocation()
		anchor := geo.Pixel{X: o.Width / 2, Y: o.Height / 2}
		if o.Anchor != nil {
			anchor = geo.Pixel{X: o.Anchor.X, Y: o.Anchor.Y}
		}
		return hitIcon(e, geo.LatLng{Lat: loc.Latitude, Lng: loc.Longitude}, o.Width, o.Height, anchor, px)
	case *bing.Polygon:
		return hitRing(e, orb.Ring(bingPath(ent.GetLocations())), px)
	case *bing.Polyline:
		return hitPath(e, bingPath(ent.GetLocations()), px)
	}
	return false
}

func bingPath(locs []bing.Location) orb.LineString {
	out := make(orb.LineString, len(locs))
	for i, l := range locs {
		out[i] = orb.Point{l.Longitude, l.Latitude}
	}
	return out
}

// bingEntities is the map's entity collection.
type bingEntities struct {
	e    *Engine
	list []bing.Entity
}

func (c *bingEntities) Push(ent bing.Entity) {
	c.list = append(c.list, ent)
	c.e.Add(bingItem{entity: ent})
}

func (c *bingEntities) RemoveAt(i int) {
	if i < 0 || i >= len(c.list) {
		return
	}
	c.e.Remove(bingItem{entity: c.list[i]})
	c.list = append(c.list[:i:i], c.list[i+1:]...)
}

func (c *bingEntities) IndexOf(ent bing.Entity) int {
	for i, x := range c.list {
		if x == ent {
			return i
		}
	}
	return -1
}

func (c *bingEntities) Get(i int) bing.Entity { return c.list[i] }
func (c *bingEntities) GetLength() int        { return len(c.list) }
