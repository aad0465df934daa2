// Package leaflet adapts a Leaflet shaped SDK to the provider contract.
package leaflet

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/rs/zerolog"

	"github.com/joeblew999/plat-map/internal/geo"
	"github.com/joeblew999/plat-map/internal/provider"
	"github.com/joeblew999/plat-map/internal/style"
)

// Name identifies the adapter in configuration.
const Name = "leaflet"

var pointerEvents = map[string]provider.PointerKind{
	"click":       provider.Click,
	"dblclick":    provider.DblClick,
	"mousedown":   provider.MouseDown,
	"mousemove":   provider.MouseMove,
	"mouseup":     provider.MouseUp,
	"mouseout":    provider.MouseOut,
	"mouseover":   provider.MouseOver,
	"contextmenu": provider.RightClick,
}

var viewEvents = map[string]provider.ViewPhase{
	"movestart": provider.ViewStart,
	"move":      provider.ViewChanging,
	"moveend":   provider.ViewEnd,
}

// BaseLayers maps base layer codes to tile templates.
var BaseLayers = map[string]string{
	"auto":     "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
	"mercator": "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
	"road":     "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
	"topo":     "https://{s}.tile.opentopomap.org/{z}/{x}/{y}.png",
}

var baseSubdomains = []string{"a", "b", "c"}

// Options configures an Adapter.
type Options struct {
	Prober *style.Prober
	Logger zerolog.Logger
}

// Adapter implements provider.Provider on a Leaflet SDK.
type Adapter struct {
	sdk    SDK
	coords Coordinates
	styles Styles
	prober *style.Prober
	probes map[*Marker]*style.Probe
	hidden map[Layer]bool
	base   *TileLayer
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
		probes: make(map[*Marker]*style.Probe),
		hidden: make(map[Layer]bool),
		log:    log,
	}
}

func (a *Adapter) Name() string                { return Name }
func (a *Adapter) Styles() style.Translator    { return a.styles }
func (a *Adapter) Coordinates() Coordinates    { return a.coords }
func (a *Adapter) Center() geo.LatLng          { return a.coords.LatLngFromAPI(a.sdk.GetCenter()) }
func (a *Adapter) Zoom() float64               { return a.sdk.GetZoom() }
func (a *Adapter) Bounds() geo.Bounds          { return a.coords.BoundsFromAPI(a.sdk.GetBounds()) }
func (a *Adapter) BaseLayerUnrestricted() bool { return false }

func (a *Adapter) SetView(v provider.View) {
	if v.Bounds != nil {
		a.sdk.FitBounds(a.coords.BoundsToAPI(*v.Bounds), FitBoundsOptions{
			Padding: Point{X: v.Padding, Y: v.Padding},
			Animate: v.Animate,
		})
		return
	}
	center, zoom := a.sdk.GetCenter(), a.sdk.GetZoom()
	if v.Center != nil {
		center = a.coords.LatLngToAPI(*v.Center)
	}
	if v.Zoom != nil {
		zoom = *v.Zoom
	}
	if v.CenterOffset == nil {
		a.sdk.SetView(center, zoom, ZoomPanOptions{Animate: v.Animate})
		return
	}
	// Leaflet has no center offset: shift the center in world pixels at the target zoom.
	px := a.sdk.Project(center, zoom)
	px = Point{X: px.X - v.CenterOffset.X, Y: px.Y - v.CenterOffset.Y}
	a.sdk.SetView(a.sdk.Unproject(px, zoom), zoom, ZoomPanOptions{Animate: v.Animate})
}

// PanBy moves the map content by offset. Leaflet pans the view, so the sign flips.
func (a *Adapter) PanBy(offset geo.Pixel, animate bool) {
	a.sdk.PanBy(Point{X: -offset.X, Y: -offset.Y}, ZoomPanOptions{Animate: animate})
}

func (a *Adapter) SetSize(width, height float64) { a.sdk.InvalidateSize(width, height) }

func (a *Adapter) LatLngToPixel(ll geo.LatLng) geo.Pixel {
	return a.coords.PixelFromAPI(a.sdk.LatLngToContainerPoint(a.coords.LatLngToAPI(ll)))
}

func (a *Adapter) PixelToLatLng(px geo.Pixel) geo.LatLng {
	return a.coords.LatLngFromAPI(a.sdk.ContainerPointToLatLng(a.coords.PixelToAPI(px)))
}

// CreateMarker builds a Marker, probing the icon when its size is unknown.
func (a *Adapter) CreateMarker(ll geo.LatLng, opts any) provider.Shape {
	o, _ := opts.(MarkerOptions)
	var (
		m     *Marker
		probe *style.Probe
	)
	icon := o.Icon
	switch {
	case icon.IconSize != nil && icon.IconAnchor == nil:
		o.Icon.IconAnchor = &Point{X: icon.IconSize.X / 2, Y: icon.IconSize.Y / 2}
	case icon.IconSize == nil && icon.IconURL != "" && a.prober != nil:
		probe = a.prober.Resolve(icon.IconURL, func(s style.Size) {
			resolved := icon
			resolved.IconSize = &Point{X: s.Width, Y: s.Height}
			if resolved.IconAnchor == nil {
				resolved.IconAnchor = &Point{X: s.Width / 2, Y: s.Height / 2}
			}
			if m == nil {
				o.Icon = resolved
				return
			}
			m.SetIcon(resolved)
			delete(a.probes, m)
		})
	}
	m = NewMarker(a.coords.LatLngToAPI(ll), o)
	if probe != nil {
		select {
		case <-probe.Done():
		default:
			a.probes[m] = probe
		}
	}
	return m
}

func (a *Adapter) CreateLine(lls []geo.LatLng, opts any) provider.Shape {
	o, _ := opts.(PathOptions)
	return NewPolyline(a.coords.LatLngsToAPI(lls), o)
}

func (a *Adapter) CreatePolygon(lls []geo.LatLng, opts any) provider.Shape {
	o, _ := opts.(PathOptions)
	return NewPolygon(orb.Ring(a.coords.LatLngsToAPI(lls)), o)
}

func (a *Adapter) AddShape(s provider.Shape) {
	if l, ok := s.(Layer); ok {
		a.add(l)
	}
}

func (a *Adapter) RemoveShape(s provider.Shape) {
	if m, ok := s.(*Marker); ok {
		if probe := a.probes[m]; probe != nil {
			probe.Cancel()
			delete(a.probes, m)
		}
	}
	if l, ok := s.(Layer); ok {
		a.remove(l)
	}
}

func (a *Adapter) add(l Layer) {
	if a.hidden[l] {
		return
	}
	a.sdk.AddLayer(l)
}

func (a *Adapter) remove(l Layer) {
	delete(a.hidden, l)
	if a.sdk.HasLayer(l) {
		a.sdk.RemoveLayer(l)
	}
}

// setVisible hides a layer by taking it off the map, which is how Leaflet hides layers.
func (a *Adapter) setVisible(l Layer, v bool) {
	switch {
	case v && a.hidden[l]:
		delete(a.hidden, l)
		a.sdk.AddLayer(l)
	case !v && !a.hidden[l]:
		a.hidden[l] = true
		if a.sdk.HasLayer(l) {
			a.sdk.RemoveLayer(l)
		}
	}
}

func (a *Adapter) SetShapeVisible(s provider.Shape, v bool) {
	if l, ok := s.(Layer); ok {
		a.setVisible(l, v)
	}
}

func (a *Adapter) ShapeVisible(s provider.Shape) bool {
	l, ok := s.(Layer)
	return ok && !a.hidden[l]
}

func (a *Adapter) MarkerLatLng(s provider.Shape) (geo.LatLng, bool) {
	m, ok := s.(*Marker)
	if !ok {
		return geo.LatLng{}, false
	}
	return a.coords.LatLngFromAPI(m.GetLatLng()), true
}

func (a *Adapter) MarkerIcon(s provider.Shape) string {
	if m, ok := s.(*Marker); ok {
		return m.Options().Icon.IconURL
	}
	return ""
}

func (a *Adapter) SetMarkerIcon(s provider.Shape, url string) {
	if m, ok := s.(*Marker); ok {
		icon := m.Options().Icon
		icon.IconURL = url
		m.SetIcon(icon)
	}
}

// SetMarkerOptions applies o to the marker. Visibility uses the same map
// membership as SetShapeVisible.
func (a *Adapter) SetMarkerOptions(s provider.Shape, o provider.MarkerOptions) {
	m, ok := s.(*Marker)
	if !ok {
		return
	}
	if o.Class != nil || o.Icon != nil {
		icon := m.Options().Icon
		if o.Class != nil {
			icon.ClassName = *o.Class
		}
		if o.Icon != nil {
			icon.IconURL = *o.Icon
		}
		m.SetIcon(icon)
	}
	if o.Label != nil {
		m.SetTitle(*o.Label)
	}
	if o.ZIndex != nil {
		m.SetZIndexOffset(*o.ZIndex)
	}
	if o.Visible != nil {
		a.setVisible(m, *o.Visible)
	}
}

// MarkerAnchor returns the icon anchor, or the origin while the icon size is unknown.
func (a *Adapter) MarkerAnchor(s provider.Shape) (geo.Pixel, bool) {
	m, ok := s.(*Marker)
	if !ok {
		return geo.Pixel{}, false
	}
	anchor := m.Options().Icon.IconAnchor
	if anchor == nil {
		return geo.Pixel{}, true
	}
	return a.coords.PixelFromAPI(*anchor), true
}

func (a *Adapter) CreateTileLayer(src provider.TileSource) provider.TileLayer {
	opacity := src.Opacity
	if opacity == 0 {
		opacity = 1
	}
	return &TileLayer{opts: TileLayerOptions{Opacity: opacity, ZIndex: src.ZIndex}, source: src}
}

func (a *Adapter) AddTileLayer(l provider.TileLayer) {
	if t, ok := l.(*TileLayer); ok {
		a.add(t)
	}
}

func (a *Adapter) RemoveTileLayer(l provider.TileLayer) {
	if t, ok := l.(*TileLayer); ok {
		a.remove(t)
	}
}

func (a *Adapter) SetTileLayerVisible(l provider.TileLayer, v bool) {
	if t, ok := l.(*TileLayer); ok {
		a.setVisible(t, v)
	}
}

// SetBaseLayer swaps the basemap tile layer.
func (a *Adapter) SetBaseLayer(code string) error {
	tmpl, ok := BaseLayers[code]
	if !ok {
		return fmt.Errorf("%w: base layer %q", provider.ErrUnsupported, code)
	}
	if a.base != nil {
		a.remove(a.base)
	}
	a.base = &TileLayer{
		template: tmpl,
		opts:     TileLayerOptions{Opacity: 1},
		source:   provider.TileSource{URL: provider.TemplateURL(tmpl, baseSubdomains), Opacity: 1},
	}
	a.sdk.AddLayer(a.base)
	return nil
}

func (a *Adapter) MatchBaseLayer(code string) (provider.BaseLayer, bool) {
	tmpl, ok := BaseLayers[code]
	if !ok {
		return provider.BaseLayer{}, false
	}
	return provider.BaseLayer{Code: code, Native: tmpl}, true
}

func (a *Adapter) Attributions(fn func([]string)) { fn(a.sdk.Attributions()) }

// Listen registers l for every raw pointer and view callback.
func (a *Adapter) Listen(l provider.Listener) {
	if l.Pointer != nil {
		for name, kind := range pointerEvents {
			kind := kind
			a.sdk.On(name, func(e *MouseEvent) {
				if e == nil {
					return
				}
				pe := a.pointerEvent(e)
				l.Pointer(kind, pe)
				if pe.Handled {
					e.DefaultPrevented = true
				}
			})
		}
	}
	if l.View != nil {
		for name, phase := range viewEvents {
			phase := phase
			a.sdk.On(name, func(*MouseEvent) { l.View(phase) })
		}
	}
}

func (a *Adapter) pointerEvent(e *MouseEvent) *provider.PointerEvent {
	pe := &provider.PointerEvent{
		Pixel:   a.coords.PixelFromAPI(e.ContainerPoint),
		LatLng:  a.coords.LatLngFromAPI(e.LatLng),
		OnMap:   e.Target == nil,
		Primary: e.OriginalEvent == nil || e.OriginalEvent.Button == 0,
		Native:  e.OriginalEvent,
	}
	if s, ok := e.Target.(provider.Shape); ok {
		pe.Target = s
	}
	return pe
}

// Trigger fires kind on the SDK map with no target layer.
func (a *Adapter) Trigger(kind provider.PointerKind, e *provider.PointerEvent) {
	name, ok := eventName(kind)
	if !ok || e == nil {
		a.log.Warn().Stringer("kind", kind).Msg("cannot trigger pointer event")
		return
	}
	cp := a.coords.PixelToAPI(e.Pixel)
	me := &MouseEvent{
		Type:           name,
		LatLng:         a.sdk.ContainerPointToLatLng(cp),
		ContainerPoint: cp,
		OriginalEvent:  e.Native,
	}
	a.sdk.Fire(name, me)
	e.Handled = e.Handled || me.DefaultPrevented
}

func eventName(kind provider.PointerKind) (string, bool) {
	for name, k := range pointerEvents {
		if k == kind {
			return name, true
		}
	}
	return "", false
}
