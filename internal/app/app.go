// Package app assembles a map from configuration: a simulated engine behind
// the configured provider adapter, driven by a service.Map.
package app

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/joeblew999/plat-map/internal/config"
	"github.com/joeblew999/plat-map/internal/event"
	"github.com/joeblew999/plat-map/internal/geo"
	"github.com/joeblew999/plat-map/internal/loop"
	"github.com/joeblew999/plat-map/internal/provider"
	"github.com/joeblew999/plat-map/internal/provider/bing"
	"github.com/joeblew999/plat-map/internal/provider/leaflet"
	"github.com/joeblew999/plat-map/internal/provider/sim"
	"github.com/joeblew999/plat-map/internal/service"
	"github.com/joeblew999/plat-map/internal/style"
)

// Copyrights are the simulated attribution strings per imagery type. Leaflet
// does not switch imagery types, so it reads the empty key.
var Copyrights = map[string][]string{
	"":                    {"© OpenStreetMap contributors"},
	string(bing.Auto):     {"© Microsoft Corporation"},
	string(bing.Road):     {"© Microsoft Corporation", "© HERE"},
	string(bing.Mercator): {"© Microsoft Corporation", "© HERE"},
	string(bing.Aerial):   {"© Microsoft Corporation", "© Maxar"},
	string(bing.Birdseye): {"© Microsoft Corporation", "© Pictometry"},
}

// Options configures New.
type Options struct {
	Loop loop.Loop
	// Bus receives canonical events. Nil creates one.
	Bus *event.Bus
	// Prober resolves marker icon sizes. Nil disables probing.
	Prober *style.Prober
	Width  float64
	Height float64
	Logger zerolog.Logger
}

// App is an assembled map.
type App struct {
	Config config.Config
	Engine *sim.Engine
	Page   *sim.Renderer
	Map    *service.Map
}

// New builds the map described by cfg. Like service.New it must run before
// the loop starts or on the loop.
func New(cfg config.Config, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := sim.New(sim.Options{
		Loop:       opts.Loop,
		Center:     cfg.Center,
		Zoom:       cfg.Zoom,
		Width:      opts.Width,
		Height:     opts.Height,
		Copyrights: Copyrights,
		Logger:     opts.Logger,
	})
	container := cfg.Div
	if container == "" {
		container = service.ContainerID
	}
	w, h := e.Size()
	page := sim.NewRenderer()
	page.SetElement(container, geo.Pixel{}, w, h)

	var p provider.Provider
	switch cfg.API {
	case config.APIBing:
		p = bing.New(sim.NewBing(e), bing.Options{Prober: opts.Prober, Logger: opts.Logger})
	case config.APILeaflet:
		p = leaflet.New(sim.NewLeaflet(e), leaflet.Options{Prober: opts.Prober, Logger: opts.Logger})
	default:
		return nil, fmt.Errorf("%w: unsupported api %q", config.ErrInvalid, cfg.API)
	}

	m, err := service.New(service.Options{
		Provider:     p,
		Renderer:     page,
		Loop:         opts.Loop,
		Bus:          opts.Bus,
		Center:       cfg.Center,
		Zoom:         cfg.Zoom,
		RestrictZoom: cfg.RestrictZoom,
		Server:       cfg.Server,
		BaseLayers:   cfg.BaseLayers,
		Layers:       cfg.Layers,
		Container:    container,
		Keyboard:     cfg.Tools.Keyboard,
		Logger:       opts.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("map: %w", err)
	}
	return &App{Config: cfg, Engine: e, Page: page, Map: m}, nil
}

// Close stops the map's layer routing.
func (a *App) Close() { a.Map.Close() }
