// Package bing adapts a Bing Maps shaped SDK to the provider contract.
package bing

import (
	"math"

	"github.com/paulmach/orb/maptile"
	"github.com/rs/zerolog"

	"github.com/joeblew999/plat-map/internal/geo"
	"github.com/joeblew999/plat-map/internal/provider"
	"github.com/joeblew999/plat-map/internal/style"
)

// Name identifies the adapter in configuration.
const Name = "bing"

var pointerEvents = map[string]provider.PointerKind{
	"click":      provider.Click,
	"dblclick":   provider.DblClick,
	"mousedown":  provider.MouseDown,
	"mousemove":  provider.MouseMove,
	"mouseup":    provider.MouseUp,
	"mouseout":   provider.MouseOut,
	"mouseover":  provider.MouseOver,
	"rightclick": provider.RightClick,
}

var viewEvents = map[string]provider.ViewPhase{
	"viewchangestart": provider.ViewStart,
	"viewchange":      provider.ViewChanging,
	"viewchangeend":   provider.ViewEnd,
}

// Options configures an Adapter.
type Options struct {
	// Prober resolves icon dimensions for markers created without them. Nil disables probing.
	Prober *style.Prober
	Logger zerolog.Logger
}

// Adapter implements provider.Provider on a Bing SDK.
type Adapter struct {
	sdk    SDK
	coords Coordinates
	styles Styles
	prober *style.Prober
	probes map[*Pushpin]*style.Probe
	log    zerolog.Logger
}

var _ provider.Provider = (*Adapter)(nil)

// New creates an Adapter.
func New(sdk SDK, opts Options) *Adapter {
	log := opts.Logger.With().Str("provider", Name).Logger()
	return &Adapter{
		sdk:    sdk,
		styles: Styles{Log: log},
		prober: opts.Prober,
		probes: make(map[*Pushpin]*style.Probe),
		log:    log,
	}
}

func (a *Adapter) Name() string                { return Name }
func (a *Adapter) Styles() style.Translator    { return a.styles }
func (a *Adapter) Coordinates() Coordinates    { return a.coords }
func (a *Adapter) Center() geo.LatLng          { return a.coords.LatLngFromAPI(a.sdk.GetCenter()) }
func (a *Adapter) Zoom() float64               { return a.sdk.GetZoom() }
func (a *Adapter) Bounds() geo.Bounds          { return a.coords.BoundsFromAPI(a.sdk.GetBounds()) }
func (a *Adapter) BaseLayerUnrestricted() bool { return a.sdk.GetMapTypeID() == Birdseye }

func (a *Adapter) SetView(v provider.View) {
	animate := v.Animate
	o := ViewOptions{Animate: &animate, Zoom: v.Zoom, Padding: v.Padding}
	if v.Bounds != nil {
		r := a.coords.BoundsToAPI(*v.Bounds)
		o.Bounds = &r
		o.Zoom = nil
	} else if v.Center != nil {
		c := a.coords.LatLngToAPI(*v.Center)
		o.Center = &c
	}
	if v.CenterOffset != nil {
		p := a.coords.PixelToAPI(*v.CenterOffset)
		o.CenterOffset = &p
	}
	a.sdk.SetView(o)
}

func (a *Adapter) PanBy(offset geo.Pixel, animate bool) {
	center := a.sdk.GetCenter()
	p := a.coords.PixelToAPI(offset)
	a.sdk.SetView(ViewOptions{Animate: &animate, Center: &center, CenterOffset: &p})
}

func (a *Adapter) SetSize(width, height float64) {
	a.sdk.SetOptions(MapOptions{Height: height, Width: width})
}

func (a *Adapter) LatLngToPixel(ll geo.LatLng) geo.Pixel {
	p, ok := a.sdk.TryLocationToPixel(a.coords.LatLngToAPI(ll))
	if !ok {
		return geo.Pixel{X: math.NaN(), Y: math.NaN()}
	}
	return a.coords.PixelFromAPI(p)
}

func (a *Adapter) PixelToLatLng(px geo.Pixel) geo.LatLng {
	l, ok := a.sdk.TryPixelToLocation(a.coords.PixelToAPI(px))
	if !ok {
		return geo.LatLng{Lat: math.NaN(), Lng: math.NaN()}
	}
	return a.coords.LatLngFromAPI(l)
}

// CreateMarker builds a Pushpin. A marker with an icon but no dimensions is probed:
// a cached size pre-seeds the options, otherwise the pushpin is updated once the
// icon loads.
func (a *Adapter) CreateMarker(ll geo.LatLng, opts any) provider.Shape {
	o, _ := opts.(PushpinOptions)
	var (
		pin   *Pushpin
		probe *style.Probe
	)
	if o.Anchor == nil || o.Height == 0 || o.Width == 0 {
		switch {
		case o.Height > 0 && o.Width > 0:
			o.Anchor = &Point{X: o.Width / 2, Y: o.Height / 2}
		case o.Icon != "" && a.prober != nil:
			anchor := o.Anchor
			probe = a.prober.Resolve(o.Icon, func(s style.Size) {
				update := PushpinOptions{Height: s.Height, Width: s.Width, Anchor: anchor}
				if update.Anchor == nil {
					update.Anchor = &Point{X: s.Width / 2, Y: s.Height / 2}
				}
				if pin == nil {
					o.Height, o.Width, o.Anchor = update.Height, update.Width, update.Anchor
					return
				}
				pin.SetOptions(update)
				delete(a.probes, pin)
			})
		}
	}
	pin = NewPushpin(a.coords.LatLngToAPI(ll), o)
	if probe != nil && !isDone(probe) {
		a.probes[pin] = probe
	}
	return pin
}

func isDone(p *style.Probe) bool {
	select {
	case <-p.Done():
		return true
	default:
		return false
	}
}

func (a *Adapter) CreateLine(lls []geo.LatLng, opts any) provider.Shape {
	o, _ := opts.(PolylineOptions)
	return NewPolyline(a.coords.LatLngsToAPI(lls), o)
}

func (a *Adapter) CreatePolygon(lls []geo.LatLng, opts any) provider.Shape {
	o, _ := opts.(PolygonOptions)
	return NewPolygon(a.coords.LatLngsToAPI(lls), o)
}

func (a *Adapter) AddShape(s provider.Shape) {
	if e, ok := s.(Entity); ok {
		a.sdk.Entities().Push(e)
	}
}

func (a *Adapter) RemoveShape(s provider.Shape) {
	if pin, ok := s.(*Pushpin); ok {
		if probe := a.probes[pin]; probe != nil {
			probe.Cancel()
			delete(a.probes, pin)
		}
	}
	a.remove(s)
}

func (a *Adapter) remove(v any) {
	e, ok := v.(Entity)
	if !ok {
		return
	}
	entities := a.sdk.Entities()
	if i := entities.IndexOf(e); i >= 0 {
		entities.RemoveAt(i)
	}
}

func (a *Adapter) SetShapeVisible(s provider.Shape, v bool) {
	if a.ShapeVisible(s) == v {
		return
	}
	switch e := s.(type) {
	case *Pushpin:
		e.SetOptions(PushpinOptions{Visible: &v})
	case *Polyline:
		e.SetVisible(v)
	case *Polygon:
		e.SetVisible(v)
	}
}

func (a *Adapter) ShapeVisible(s provider.Shape) bool {
	e, ok := s.(Entity)
	return ok && e.GetVisible()
}

func (a *Adapter) MarkerLatLng(s provider.Shape) (geo.LatLng, bool) {
	pin, ok := s.(*Pushpin)
	if !ok {
		return geo.LatLng{}, false
	}
	return a.coords.LatLngFromAPI(pin.GetLocation()), true
}

func (a *Adapter) MarkerIcon(s provider.Shape) string {
	if pin, ok := s.(*Pushpin); ok {
		return pin.GetIcon()
	}
	return ""
}

func (a *Adapter) SetMarkerIcon(s provider.Shape, url string) {
	if pin, ok := s.(*Pushpin); ok {
		pin.SetOptions(PushpinOptions{Icon: url})
	}
}

// SetMarkerOptions maps o onto the pushpin's own options. The class becomes the
// pushpin's type name and the label its text.
func (a *Adapter) SetMarkerOptions(s provider.Shape, o provider.MarkerOptions) {
	pin, ok := s.(*Pushpin)
	if !ok {
		return
	}
	var valid PushpinOptions
	if o.Class != nil {
		valid.TypeName = *o.Class
	}
	if o.Icon != nil {
		valid.Icon = *o.Icon
	}
	if o.Label != nil {
		valid.Text = *o.Label
	}
	valid.Visible = o.Visible
	if o.ZIndex != nil {
		valid.ZIndex = *o.ZIndex
	}
	pin.SetOptions(valid)
}

func (a *Adapter) MarkerAnchor(s provider.Shape) (geo.Pixel, bool) {
	pin, ok := s.(*Pushpin)
	if !ok {
		return geo.Pixel{}, false
	}
	return a.coords.PixelFromAPI(pin.GetAnchor()), true
}

func (a *Adapter) CreateTileLayer(src provider.TileSource) provider.TileLayer {
	opacity := src.Opacity
	if opacity == 0 {
		opacity = 1
	}
	return &TileLayer{
		opts: TileLayerOptions{
			Mercator: TileSource{URIConstructor: func(t TileID) string {
				return src.URL(maptile.New(t.X, t.Y, maptile.Zoom(t.LevelOfDetail)))
			}},
			Opacity: opacity,
		},
		source: src,
	}
}

func (a *Adapter) AddTileLayer(l provider.TileLayer) {
	if e, ok := l.(Entity); ok {
		a.sdk.Entities().Push(e)
	}
}

func (a *Adapter) RemoveTileLayer(l provider.TileLayer) { a.remove(l) }

func (a *Adapter) SetTileLayerVisible(l provider.TileLayer, v bool) {
	if t, ok := l.(*TileLayer); ok {
		t.SetVisible(v)
	}
}

// SetBaseLayer switches imagery. Codes without Bing imagery fall back to mercator.
func (a *Adapter) SetBaseLayer(code string) error {
	id, ok := MapTypes[code]
	if !ok {
		a.log.Debug().Str("code", code).Msg("no bing imagery for base layer, using mercator")
		id = Mercator
	}
	a.sdk.SetMapType(id)
	return nil
}

func (a *Adapter) MatchBaseLayer(code string) (provider.BaseLayer, bool) {
	id, ok := MapTypes[code]
	if !ok {
		return provider.BaseLayer{}, false
	}
	return provider.BaseLayer{Code: code, Native: string(id)}, true
}

func (a *Adapter) Attributions(fn func([]string)) {
	a.sdk.GetCopyrights(func(groups [][]string) {
		var out []string
		for _, g := range groups {
			out = append(out, g...)
		}
		fn(out)
	})
}

// Listen registers l for every raw pointer and view callback.
func (a *Adapter) Listen(l provider.Listener) {
	if l.Pointer != nil {
		for name, kind := range pointerEvents {
			kind := kind
			a.sdk.AddHandler(name, func(e *MouseEvent) {
				if e == nil {
					return
				}
				pe := a.pointerEvent(e)
				l.Pointer(kind, pe)
				if pe.Handled {
					e.Handled = true
				}
			})
		}
	}
	if l.View != nil {
		for name, phase := range viewEvents {
			phase := phase
			a.sdk.AddHandler(name, func(*MouseEvent) { l.View(phase) })
		}
	}
}

func (a *Adapter) pointerEvent(e *MouseEvent) *provider.PointerEvent {
	px := geo.Pixel{X: e.X, Y: e.Y}
	pe := &provider.PointerEvent{
		Pixel:   px,
		LatLng:  a.PixelToLatLng(px),
		OnMap:   e.TargetType == "map",
		Primary: e.IsPrimary,
		Native:  e.OriginalEvent,
	}
	if s, ok := e.Target.(provider.Shape); ok && !pe.OnMap {
		pe.Target = s
	}
	return pe
}

// Trigger invokes the SDK handlers for kind with the map as the event target.
func (a *Adapter) Trigger(kind provider.PointerKind, e *provider.PointerEvent) {
	name, ok := eventName(kind)
	if !ok || e == nil {
		a.log.Warn().Stringer("kind", kind).Msg("cannot trigger pointer event")
		return
	}
	me := &MouseEvent{
		EventName:     name,
		TargetType:    "map",
		IsPrimary:     e.Primary,
		OriginalEvent: e.Native,
		X:             e.Pixel.X,
		Y:             e.Pixel.Y,
	}
	a.sdk.Invoke(name, me)
	e.Handled = e.Handled || me.Handled
}

func eventName(kind provider.PointerKind) (string, bool) {
	for name, k := range pointerEvents {
		if k == kind {
			return name, true
		}
	}
	return "", false
}
