package layer

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/joeblew999/plat-map/internal/event"
	"github.com/joeblew999/plat-map/internal/provider"
	"github.com/joeblew999/plat-map/internal/style"
)

// DefaultBaseCode is the base layer used when none is configured visible.
const DefaultBaseCode = "auto"

// Handler draws one layer type on the map.
type Handler interface {
	Create(cfg *Config) error
	Remove(cfg *Config)
	SetVisible(cfg *Config, visible bool)
	HandleClick(cfg *Config, e *provider.PointerEvent)
}

// Validator is implemented by handlers that check a config before it is accepted.
type Validator interface {
	Validate(cfg *Config) error
}

// Options configures a Registry.
type Options struct {
	Bus    *event.Bus
	Styles style.Translator
	// Server is the asset base URL of the default marker icon.
	Server     string
	BaseLayers []BaseConfig
	// Attribution is called after every add and remove.
	Attribution func()
	Now         func() time.Time
	// Rand returns the collision suffix of generated names.
	Rand   func() int
	Logger zerolog.Logger
}

// Registry tracks base and overlay layers and keeps their names unique.
// It is not safe for concurrent use; drive it from the map's loop.
type Registry struct {
	bus         *event.Bus
	styles      style.Translator
	defaults    style.VectorStyle
	attribution func()
	now         func() time.Time
	rand        func() int
	log         zerolog.Logger

	bases    []*BaseConfig
	active   int
	overlays []*Config
	names    map[string]struct{}
	handlers map[string]Handler
	subs     []event.Subscription
}

// New creates a Registry, selects the active base layer and starts routing clicks.
func New(opts Options) *Registry {
	r := &Registry{
		bus:         opts.Bus,
		styles:      opts.Styles,
		defaults:    style.Defaults(opts.Server),
		attribution: opts.Attribution,
		now:         opts.Now,
		rand:        opts.Rand,
		log:         opts.Logger.With().Str("component", "layers").Logger(),
		names:       make(map[string]struct{}),
		handlers:    make(map[string]Handler),
		active:      -1,
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.rand == nil {
		r.rand = func() int { return rand.IntN(1_000_000_000) }
	}
	for i := range opts.BaseLayers {
		b := opts.BaseLayers[i]
		r.bases = append(r.bases, &b)
		if b.Name != "" {
			r.names[b.Name] = struct{}{}
		}
		if r.active < 0 && b.IsVisible() {
			r.active = i
		}
	}
	if r.active < 0 {
		r.bases = append(r.bases, &BaseConfig{Code: DefaultBaseCode, Visible: boolPtr(true)})
		r.active = len(r.bases) - 1
	}
	r.markActive()
	r.subs = append(r.subs,
		r.bus.On(event.TopicMap, event.Click, func(ev event.Event) { r.route(Raster, ev) }),
		r.bus.On(event.TopicMap, event.ShapeClick, func(ev event.Event) { r.route(Vector, ev) }),
	)
	return r
}

// Close stops click routing.
func (r *Registry) Close() {
	for _, s := range r.subs {
		r.bus.Off(s)
	}
	r.subs = nil
}

// Register installs the handler for a layer type.
func (r *Registry) Register(typ string, h Handler) error {
	if _, err := Lookup(typ); err != nil {
		return err
	}
	r.handlers[typ] = h
	return nil
}

// Handler returns the handler registered for a layer type.
func (r *Registry) Handler(typ string) (Handler, error) {
	h, ok := r.handlers[typ]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoHandler, typ)
	}
	return h, nil
}

type prepared struct {
	name     string
	id       string
	style    *style.VectorStyle
	resolved style.Resolved
}

// prepare validates cfg and computes what BeforeAdd assigns, without touching cfg or the registry.
func (r *Registry) prepare(cfg *Config) (prepared, error) {
	if cfg.Type == "" {
		return prepared{}, ErrMissingType
	}
	meta, err := Lookup(cfg.Type)
	if err != nil {
		return prepared{}, err
	}
	if h, ok := r.handlers[cfg.Type].(Validator); ok {
		if err := h.Validate(cfg); err != nil {
			return prepared{}, fmt.Errorf("%s layer: %w", cfg.Type, err)
		}
	}
	p := prepared{name: cfg.Name, id: cfg.ID, style: cfg.Style, resolved: cfg.ResolvedStyle}
	switch {
	case p.name == "":
		p.name = r.generateName()
	case r.taken(p.name):
		return prepared{}, fmt.Errorf("%w: %q", ErrDuplicateName, p.name)
	}
	if p.id == "" {
		p.id = uuid.NewString()
	}
	if meta.Kind == Vector {
		merged := style.Merge(cfg.Style, r.defaults)
		p.style = &merged
		if r.styles != nil {
			p.resolved = style.Translate(r.styles, merged)
		}
	}
	return p, nil
}

func (p prepared) apply(cfg *Config) {
	cfg.Name, cfg.ID = p.name, p.id
	cfg.Style, cfg.ResolvedStyle = p.style, p.resolved
}

// BeforeAdd validates cfg, assigns its name and id and resolves its vector style.
// On error cfg and the registry are unchanged. The name is not reserved until Added.
func (r *Registry) BeforeAdd(cfg *Config) error {
	p, err := r.prepare(cfg)
	if err != nil {
		return err
	}
	p.apply(cfg)
	return nil
}

// Added registers cfg's name and refreshes attribution.
func (r *Registry) Added(cfg *Config) {
	r.overlays = append(r.overlays, cfg)
	r.names[cfg.Name] = struct{}{}
	r.log.Info().Str("name", cfg.Name).Str("type", cfg.Type).Msg("layer added")
	r.refresh()
}

// Removed deregisters cfg's name and refreshes attribution.
func (r *Registry) Removed(cfg *Config) {
	r.overlays = slices.DeleteFunc(r.overlays, func(c *Config) bool { return c == cfg })
	delete(r.names, cfg.Name)
	r.log.Info().Str("name", cfg.Name).Str("type", cfg.Type).Msg("layer removed")
	r.refresh()
}

// Add runs the full add lifecycle: validation, beforeadd, drawing, added.
// When drawing fails cfg is restored, addfailed is emitted and nothing is registered.
func (r *Registry) Add(cfg *Config) error {
	p, err := r.prepare(cfg)
	if err != nil {
		return err
	}
	h, err := r.Handler(cfg.Type)
	if err != nil {
		return err
	}
	orig := *cfg
	p.apply(cfg)
	r.bus.Emit(event.TopicLayer, event.BeforeAdd, cfg)
	if err := h.Create(cfg); err != nil {
		name := cfg.Name
		h.Remove(cfg)
		*cfg = orig
		r.log.Warn().Err(err).Str("name", name).Str("type", cfg.Type).Msg("layer not drawn")
		r.bus.Emit(event.TopicLayer, event.AddFailed, cfg)
		return fmt.Errorf("create layer %q: %w", name, err)
	}
	r.Added(cfg)
	r.bus.Emit(event.TopicLayer, event.Added, cfg)
	return nil
}

// Remove runs the full remove lifecycle for the named overlay.
func (r *Registry) Remove(name string) (*Config, error) {
	cfg, ok := r.ByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	r.bus.Emit(event.TopicLayer, event.BeforeRemove, cfg)
	if h, ok := r.handlers[cfg.Type]; ok {
		h.Remove(cfg)
	}
	r.Removed(cfg)
	r.bus.Emit(event.TopicLayer, event.Removed, cfg)
	return cfg, nil
}

// SetVisible shows or hides the named overlay.
func (r *Registry) SetVisible(name string, visible bool) (*Config, error) {
	cfg, ok := r.ByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	cfg.Visible = boolPtr(visible)
	if h, ok := r.handlers[cfg.Type]; ok {
		h.SetVisible(cfg, visible)
	}
	return cfg, nil
}

func (r *Registry) refresh() {
	if r.attribution != nil {
		r.attribution()
	}
}

func (r *Registry) taken(name string) bool {
	_, ok := r.names[name]
	return ok
}

func (r *Registry) generateName() string {
	name := "Layer_" + strconv.FormatInt(r.now().UnixMilli(), 10)
	base := name
	for r.taken(name) {
		name = base + strconv.Itoa(r.rand())
	}
	return name
}

// ActiveBase returns the active base layer.
func (r *Registry) ActiveBase() *BaseConfig { return r.bases[r.active] }

// Base returns the base layer with code.
func (r *Registry) Base(code string) (*BaseConfig, bool) {
	i := slices.IndexFunc(r.bases, func(b *BaseConfig) bool { return b.Code == code })
	if i < 0 {
		return nil, false
	}
	return r.bases[i], true
}

// SetActiveBase makes the base layer with code active.
func (r *Registry) SetActiveBase(code string) (*BaseConfig, error) {
	i := slices.IndexFunc(r.bases, func(b *BaseConfig) bool { return b.Code == code })
	if i < 0 {
		return nil, fmt.Errorf("%w: base layer %q", ErrNotFound, code)
	}
	r.active = i
	r.markActive()
	r.refresh()
	return r.bases[i], nil
}

func (r *Registry) markActive() {
	for i, b := range r.bases {
		b.Visible = boolPtr(i == r.active)
	}
}

// Bases returns the base layers in configuration order.
func (r *Registry) Bases() []*BaseConfig { return slices.Clone(r.bases) }

// Overlays returns the overlay layers in add order.
func (r *Registry) Overlays() []*Config { return slices.Clone(r.overlays) }

// EachBase calls fn for every base layer.
func (r *Registry) EachBase(fn func(*BaseConfig)) {
	for _, b := range r.bases {
		fn(b)
	}
}

// EachOverlay calls fn for every overlay layer.
func (r *Registry) EachOverlay(fn func(*Config)) {
	for _, c := range slices.Clone(r.overlays) {
		fn(c)
	}
}

// EachLayer calls fn for every base layer and then every overlay.
func (r *Registry) EachLayer(fn func(Entry)) {
	r.EachBase(func(b *BaseConfig) { fn(b) })
	r.EachOverlay(func(c *Config) { fn(c) })
}

// ActiveLayerTypes returns the distinct types of visible layers, bases first.
func (r *Registry) ActiveLayerTypes() []string {
	var types []string
	r.EachLayer(func(e Entry) {
		if t := e.LayerType(); t != "" && e.IsVisible() && !slices.Contains(types, t) {
			types = append(types, t)
		}
	})
	return types
}

// VisibleLayers returns every visible base and overlay layer.
func (r *Registry) VisibleLayers() []Entry {
	var out []Entry
	r.EachLayer(func(e Entry) {
		if e.IsVisible() {
			out = append(out, e)
		}
	})
	return out
}

// ByID returns the first overlay with id.
func (r *Registry) ByID(id string) (*Config, bool) {
	for _, c := range r.overlays {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// ByName returns the first overlay named name.
func (r *Registry) ByName(name string) (*Config, bool) {
	for _, c := range r.overlays {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// route dispatches a map click to clickable layers of kind.
func (r *Registry) route(kind Kind, ev event.Event) {
	e, ok := ev.Payload.(*provider.PointerEvent)
	if !ok {
		return
	}
	r.EachOverlay(func(c *Config) {
		meta, err := Lookup(c.Type)
		if err != nil || meta.Kind != kind || !meta.Clickable {
			return
		}
		if h, ok := r.handlers[c.Type]; ok {
			h.HandleClick(c, e)
		}
	})
}
