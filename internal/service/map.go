// Package service contains the map adapter: one provider wired to the gesture
// trackers, the zoom guard and the layer registry behind the canonical map operations.
package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/joeblew999/plat-map/internal/event"
	"github.com/joeblew999/plat-map/internal/geo"
	"github.com/joeblew999/plat-map/internal/gesture"
	"github.com/joeblew999/plat-map/internal/layer"
	"github.com/joeblew999/plat-map/internal/loop"
	"github.com/joeblew999/plat-map/internal/provider"
	"github.com/joeblew999/plat-map/internal/style"
	"github.com/joeblew999/plat-map/internal/zoom"
)

const (
	// SettleDelay is how long CenterAndZoom waits after the view settles before calling back.
	SettleDelay = 200 * time.Millisecond
	// BoundsPadding is the pixel padding ToBounds leaves around the bounds.
	BoundsPadding = 30
	// ClickDotID is the element marking the last clicked position.
	ClickDotID = "npmap-clickdot"
	// ContainerID is the default map container element.
	ContainerID = "npmap-map"
)

// Options configures a Map.
type Options struct {
	Provider provider.Provider
	Renderer provider.Renderer
	Loop     loop.Loop
	// Bus receives canonical events. Nil creates one.
	Bus          *event.Bus
	Center       geo.LatLng
	Zoom         float64
	RestrictZoom *zoom.Restrict
	// Server is the asset base URL for default marker icons.
	Server     string
	BaseLayers []layer.BaseConfig
	Layers     []layer.Config
	// Container is the id of the map's element. Empty means ContainerID.
	Container string
	// ClickDelay overrides the click suppression window.
	ClickDelay time.Duration
	// Keyboard enables HandleKey.
	Keyboard bool
	Now      func() time.Time
	Logger   zerolog.Logger
}

// Map drives one provider through the canonical operations. All methods must run on
// the map's loop; other goroutines enter through Do.
type Map struct {
	p         provider.Provider
	r         provider.Renderer
	loop      loop.Loop
	bus       *event.Bus
	guard     *zoom.Guard
	layers    *layer.Registry
	tracker   *gesture.Tracker
	clicks    *gesture.Clicks
	click     gesture.ClickState
	defaults  style.VectorStyle
	initial   gesture.ViewState
	container string
	keyboard  bool
	log       zerolog.Logger

	attribution []string
}

// New wires the provider, applies the initial view and base layer and adds the
// configured overlays. Call it before the loop starts or from a loop callback.
func New(opts Options) (*Map, error) {
	m := &Map{
		p:         opts.Provider,
		r:         opts.Renderer,
		loop:      opts.Loop,
		bus:       opts.Bus,
		defaults:  style.Defaults(opts.Server),
		initial:   gesture.ViewState{Center: opts.Center, Zoom: opts.Zoom},
		container: opts.Container,
		keyboard:  opts.Keyboard,
		log:       opts.Logger.With().Str("provider", opts.Provider.Name()).Logger(),
	}
	if m.bus == nil {
		m.bus = event.NewBus()
	}
	if m.container == "" {
		m.container = ContainerID
	}
	now := opts.Now
	if now == nil {
		now = m.loop.Now
	}

	m.guard = zoom.NewGuard(m.log)
	rng := m.guard.Configure(opts.RestrictZoom, opts.Zoom)
	m.log.Debug().Float64("min", rng.Min).Float64("max", rng.Max).Msg("zoom range")

	m.layers = layer.New(layer.Options{
		Bus:         m.bus,
		Styles:      m.p.Styles(),
		Server:      opts.Server,
		BaseLayers:  opts.BaseLayers,
		Attribution: m.refreshAttribution,
		Now:         now,
		Logger:      m.log,
	})
	m.layers.RegisterDefaults(m.p)

	m.tracker = gesture.NewTracker(gesture.TrackerOptions{
		View:        m.p,
		Bus:         m.bus,
		Guard:       m.guard,
		Click:       &m.click,
		Attribution: m.refreshAttribution,
		Logger:      m.log,
	})
	m.clicks = gesture.NewClicks(gesture.ClicksOptions{
		Loop:     m.loop,
		Bus:      m.bus,
		Renderer: m.r,
		Markers:  m.p,
		State:    &m.click,
		Delay:    opts.ClickDelay,
		Logger:   m.log,
	})
	m.p.Listen(provider.Listener{Pointer: m.clicks.Handle, View: m.tracker.Handle})

	center, z := opts.Center, opts.Zoom
	m.p.SetView(provider.View{Center: &center, Zoom: &z})
	if opts.RestrictZoom.HasAuto() {
		m.resolveAutoZoom(opts.RestrictZoom)
	}
	if err := m.p.SetBaseLayer(m.layers.ActiveBase().Code); err != nil {
		m.layers.Close()
		return nil, fmt.Errorf("base layer: %w", err)
	}
	for i := range opts.Layers {
		cfg := opts.Layers[i]
		if err := m.AddLayer(&cfg); err != nil {
			m.layers.Close()
			return nil, err
		}
	}
	m.refreshAttribution()
	return m, nil
}

// resolveAutoZoom reconfigures the guard from the provider's zoom once the
// initial view has been applied, since the provider may clamp or snap it.
func (m *Map) resolveAutoZoom(r *zoom.Restrict) {
	var sub event.Subscription
	sub = m.bus.On(event.TopicMap, event.ViewChangeEnd, func(event.Event) {
		m.bus.Off(sub)
		rng := m.guard.Configure(r, m.p.Zoom())
		m.log.Debug().Float64("min", rng.Min).Float64("max", rng.Max).Msg("zoom range resolved")
	})
}

// Close stops routing events to layers.
func (m *Map) Close() { m.layers.Close() }

// Do runs fn on the map's loop and waits for it.
func (m *Map) Do(ctx context.Context, fn func(*Map) error) error {
	return loop.Call(ctx, m.loop, func() error { return fn(m) })
}

// Bus returns the canonical event bus.
func (m *Map) Bus() *event.Bus { return m.bus }

// Provider returns the wrapped provider.
func (m *Map) Provider() provider.Provider { return m.p }

// Container returns the id of the map's element.
func (m *Map) Container() string { return m.container }

// Layers returns the layer registry.
func (m *Map) Layers() *layer.Registry { return m.layers }

// State returns the gesture and click flags.
func (m *Map) State() State {
	return State{
		Provider: m.p.Name(),
		Center:   m.p.Center(),
		Zoom:     m.p.Zoom(),
		Bounds:   m.p.Bounds(),
		Range:    m.guard.Range(),
		Snapshot: m.tracker.Snapshot(),
		Gesture:  m.tracker.State(),
		Click:    m.click,
		Base:     m.layers.ActiveBase().Code,
	}
}

// Attribution returns the provider's copyrights followed by the attributions of visible overlays.
func (m *Map) Attribution() []string { return slices.Clone(m.attribution) }

func (m *Map) refreshAttribution() {
	m.p.Attributions(func(parts []string) {
		var out []string
		add := func(s string) {
			if s != "" && !slices.Contains(out, s) {
				out = append(out, s)
			}
		}
		for _, s := range parts {
			add(s)
		}
		m.layers.EachOverlay(func(c *layer.Config) {
			if c.IsVisible() {
				add(c.Attribution)
			}
		})
		m.attribution = out
	})
}
