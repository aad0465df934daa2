// Package sim is a headless map engine that stands in for a browser mapping SDK.
//
// The Engine owns the view and the drawn items and raises raw pointer and view
// callbacks on a loop. BingMap and LeafletMap expose it through each SDK's native
// API so the real adapters can be driven without a browser.
package sim

import (
	"math"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
	"github.com/rs/zerolog"

	"github.com/joeblew999/plat-map/internal/geo"
	"github.com/joeblew999/plat-map/internal/loop"
	"github.com/joeblew999/plat-map/internal/provider"
)

const (
	TileSize = 256
	// FrameInterval is the spacing of animated view-change frames.
	FrameInterval   = 16 * time.Millisecond
	AnimationFrames = 5
	NativeMinZoom   = 1
	NativeMaxZoom   = 21
	// MaxLatitude is the Web Mercator cutoff.
	MaxLatitude = 85.05112878
)

var circumference = 2 * math.Pi * orb.EarthRadius

// Item is something drawn on the map that can be hit by the pointer.
type Item interface {
	Visible() bool
	Hit(e *Engine, px geo.Pixel) bool
}

// Listener receives the engine's raw callbacks. Pointer returns whether the event was handled.
type Listener struct {
	Pointer func(kind provider.PointerKind, px geo.Pixel, dom provider.DOMEvent, target Item) bool
	View    func(provider.ViewPhase)
}

// Options configures an Engine.
type Options struct {
	Loop    loop.Loop
	Center  geo.LatLng
	Zoom    float64
	Width   float64
	Height  float64
	MapType string
	// Copyrights lists attribution strings per map type.
	Copyrights map[string][]string
	Logger     zerolog.Logger
}

// Engine is a simulated map viewport.
type Engine struct {
	loop       loop.Loop
	center     geo.LatLng
	zoom       float64
	width      float64
	height     float64
	mapType    string
	copyrights map[string][]string
	items      []Item
	listeners  []Listener
	active     *transition
	log        zerolog.Logger
}

// New creates an Engine.
func New(opts Options) *Engine {
	if opts.Width == 0 {
		opts.Width = 800
	}
	if opts.Height == 0 {
		opts.Height = 600
	}
	return &Engine{
		loop:       opts.Loop,
		center:     opts.Center,
		zoom:       clampZoom(opts.Zoom),
		width:      opts.Width,
		height:     opts.Height,
		mapType:    opts.MapType,
		copyrights: opts.Copyrights,
		log:        opts.Logger.With().Str("component", "sim").Logger(),
	}
}

func (e *Engine) Center() geo.LatLng           { return e.center }
func (e *Engine) Zoom() float64                { return e.zoom }
func (e *Engine) Size() (w, h float64)         { return e.width, e.height }
func (e *Engine) MapType() string              { return e.mapType }
func (e *Engine) SetMapType(t string)          { e.mapType = t }
func (e *Engine) Copyrights() []string         { return e.copyrights[e.mapType] }
func (e *Engine) Listen(l Listener)            { e.listeners = append(e.listeners, l) }
func (e *Engine) Items() []Item                { return e.items }
func (e *Engine) Add(it Item)                  { e.items = append(e.items, it) }
func (e *Engine) Resize(width, height float64) { e.width, e.height = width, height }

// Remove takes it off the map.
func (e *Engine) Remove(it Item) {
	for i, x := range e.items {
		if x == it {
			e.items = append(e.items[:i:i], e.items[i+1:]...)
			return
		}
	}
}

// Has reports whether it is on the map.
func (e *Engine) Has(it Item) bool {
	for _, x := range e.items {
		if x == it {
			return true
		}
	}
	return false
}

func clampZoom(z float64) float64 {
	return math.Max(NativeMinZoom, math.Min(NativeMaxZoom, z))
}

func worldSize(zoom float64) float64 { return TileSize * math.Exp2(zoom) }

// world returns the Web Mercator world pixel of ll at zoom.
func world(ll geo.LatLng, zoom float64) (x, y float64) {
	ll.Lat = math.Max(-MaxLatitude, math.Min(MaxLatitude, ll.Lat))
	m := project.Point(ll.Point(), project.WGS84.ToMercator)
	ws := worldSize(zoom)
	return (m[0]/circumference + 0.5) * ws, (0.5 - m[1]/circumference) * ws
}

func fromWorld(x, y, zoom float64) geo.LatLng {
	ws := worldSize(zoom)
	x = math.Mod(x, ws)
	if x < 0 {
		x += ws
	}
	m := orb.Point{(x/ws - 0.5) * circumference, (0.5 - y/ws) * circumference}
	ll := geo.FromPoint(project.Point(m, project.Mercator.ToWGS84))
	ll.Lat = math.Max(-MaxLatitude, math.Min(MaxLatitude, ll.Lat))
	return ll
}

// LatLngToPixel projects ll into container pixels, taking the shortest way around the world.
func (e *Engine) LatLngToPixel(ll geo.LatLng) geo.Pixel {
	cx, cy := world(e.center, e.zoom)
	x, y := world(ll, e.zoom)
	ws := worldSize(e.zoom)
	dx := x - cx
	if dx > ws/2 {
		dx -= ws
	} else if dx < -ws/2 {
		dx += ws
	}
	return geo.Pixel{X: e.width/2 + dx, Y: e.height/2 + y - cy}
}

// PixelToLatLng unprojects a container pixel.
func (e *Engine) PixelToLatLng(px geo.Pixel) geo.LatLng {
	cx, cy := world(e.center, e.zoom)
	return fromWorld(cx+px.X-e.width/2, cy+px.Y-e.height/2, e.zoom)
}

// Bounds returns the visible area.
func (e *Engine) Bounds() geo.Bounds {
	nw := e.PixelToLatLng(geo.Pixel{})
	se := e.PixelToLatLng(geo.Pixel{X: e.width, Y: e.height})
	return geo.Bounds{N: nw.Lat, S: se.Lat, E: se.Lng, W: nw.Lng}
}

// target resolves a view request into a center and zoom.
func (e *Engine) target(v provider.View) (geo.LatLng, float64) {
	center, zoom := e.center, e.zoom
	if v.Bounds != nil {
		center = v.Bounds.Center()
		zoom = e.fitZoom(*v.Bounds, v.Padding)
	} else {
		if v.Center != nil {
			center = *v.Center
		}
		if v.Zoom != nil {
			zoom = *v.Zoom
		}
	}
	zoom = clampZoom(zoom)
	if v.CenterOffset != nil {
		x, y := world(center, zoom)
		center = fromWorld(x-v.CenterOffset.X, y-v.CenterOffset.Y, zoom)
	}
	return center, zoom
}

// fitZoom returns the largest whole zoom at which b fits inside the padded viewport.
func (e *Engine) fitZoom(b geo.Bounds, padding float64) float64 {
	wx, ny := world(geo.LatLng{Lat: b.N, Lng: b.W}, 0)
	ex, sy := world(geo.LatLng{Lat: b.S, Lng: b.E}, 0)
	dx := ex - wx
	if dx < 0 {
		dx += TileSize
	}
	dy := sy - ny
	availW, availH := math.Max(e.width-2*padding, 1), math.Max(e.height-2*padding, 1)
	z := NativeMaxZoom * 1.0
	if dx > 0 {
		z = math.Min(z, math.Log2(availW/dx))
	}
	if dy > 0 {
		z = math.Min(z, math.Log2(availH/dy))
	}
	return math.Floor(z)
}

type step struct {
	delay time.Duration
	fn    func()
}

// transition is one raw view-change gesture: a start, frames, and an end.
type transition struct {
	steps   []step
	timer   loop.Timer
	started bool
}

// SetView moves the view. A non-animated change applies in a single continuing
// callback; an animated one interpolates across AnimationFrames frames. A request
// made while a gesture is in progress replaces its remaining frames and extends it.
func (e *Engine) SetView(v provider.View) {
	toC, toZ := e.target(v)
	fromC, fromZ := e.center, e.zoom

	tr := e.active
	if tr == nil {
		tr = &transition{}
		e.active = tr
	} else if tr.timer != nil {
		tr.timer.Stop()
		tr.timer = nil
	}

	var steps []step
	if !tr.started {
		steps = append(steps, step{fn: func() {
			tr.started = true
			e.emitView(provider.ViewStart)
		}})
	}
	if v.Animate {
		for i := 1; i <= AnimationFrames; i++ {
			f := float64(i) / AnimationFrames
			steps = append(steps, step{delay: FrameInterval, fn: func() {
				e.center = lerp(fromC, toC, f)
				e.zoom = fromZ + (toZ-fromZ)*f
				e.emitView(provider.ViewChanging)
			}})
		}
	} else {
		steps = append(steps, step{fn: func() {
			e.center, e.zoom = toC, toZ
			e.emitView(provider.ViewChanging)
		}})
	}
	steps = append(steps, step{fn: func() {
		e.active = nil
		e.emitView(provider.ViewEnd)
	}})
	tr.steps = steps
	e.next(tr)
}

func (e *Engine) next(tr *transition) {
	if len(tr.steps) == 0 {
		return
	}
	s := tr.steps[0]
	tr.steps = tr.steps[1:]
	tr.timer = e.loop.AfterFunc(s.delay, func() {
		tr.timer = nil
		s.fn()
		// fn may have issued a new SetView, which schedules its own steps.
		if e.active == tr && tr.timer == nil {
			e.next(tr)
		}
	})
}

// Animating reports whether a view change is in progress.
func (e *Engine) Animating() bool { return e.active != nil }

func lerp(a, b geo.LatLng, f float64) geo.LatLng {
	dLng := b.Lng - a.Lng
	if dLng > 180 {
		dLng -= 360
	} else if dLng < -180 {
		dLng += 360
	}
	lng := a.Lng + dLng*f
	if lng > 180 {
		lng -= 360
	} else if lng < -180 {
		lng += 360
	}
	return geo.LatLng{Lat: a.Lat + (b.Lat-a.Lat)*f, Lng: lng}
}

func (e *Engine) emitView(p provider.ViewPhase) {
	e.log.Trace().Stringer("phase", p).Float64("zoom", e.zoom).Msg("view")
	for _, l := range e.listeners {
		if l.View != nil {
			l.View(p)
		}
	}
}

// HitTest returns the topmost visible item under px.
func (e *Engine) HitTest(px geo.Pixel) Item {
	for i := len(e.items) - 1; i >= 0; i-- {
		if it := e.items[i]; it.Visible() && it.Hit(e, px) {
			return it
		}
	}
	return nil
}

// Pointer raises a raw pointer callback at px and reports whether a listener handled it.
func (e *Engine) Pointer(kind provider.PointerKind, px geo.Pixel, dom provider.DOMEvent) bool {
	if dom.Type == "" {
		dom.Type = kind.String()
	}
	target := e.HitTest(px)
	handled := false
	for _, l := range e.listeners {
		if l.Pointer != nil && l.Pointer(kind, px, dom, target) {
			handled = true
		}
	}
	return handled
}
