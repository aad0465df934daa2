package layer

import (
	"fmt"
	"math"
	"slices"

	"github.com/paulmach/orb/maptile"

	"github.com/joeblew999/plat-map/internal/provider"
)

// ZoomifyTileSize is the edge of a Zoomify tile in pixels.
const ZoomifyTileSize = 256

// ZoomifyMaxDimension bounds image height and width so tile counts fit in uint32.
const ZoomifyMaxDimension = 1 << 23

// tileHandler draws raster layers as provider tile layers.
type tileHandler struct {
	p        provider.Provider
	validate func(cfg *Config) error
	url      func(cfg *Config) func(maptile.Tile) string
	// clickable layers pass map clicks to OnClick while visible.
	clickable bool
}

// NewTiled returns the handler for Tiled layers. URL is a template with {x} {y} {z} and {s}.
func NewTiled(p provider.Provider) Handler {
	return &tileHandler{
		p: p,
		validate: func(cfg *Config) error {
			if cfg.URL == "" {
				return ErrMissingURL
			}
			return nil
		},
		url:       func(cfg *Config) func(maptile.Tile) string { return provider.TemplateURL(cfg.URL, cfg.Subdomains) },
		clickable: true,
	}
}

// NewZoomify returns the handler for Zoomify image layers. Height and Width are required.
func NewZoomify(p provider.Provider) Handler {
	return &tileHandler{
		p: p,
		validate: func(cfg *Config) error {
			if cfg.Height == nil || cfg.Width == nil {
				return ErrMissingDimensions
			}
			if !validDimension(*cfg.Height) || !validDimension(*cfg.Width) {
				return fmt.Errorf("%w: %v x %v", ErrInvalidDimensions, *cfg.Width, *cfg.Height)
			}
			if cfg.URL == "" {
				return ErrMissingURL
			}
			return nil
		},
		url: func(cfg *Config) func(maptile.Tile) string {
			return NewZoomifyGrid(cfg.URL, *cfg.Width, *cfg.Height).URL
		},
	}
}

func (h *tileHandler) Validate(cfg *Config) error { return h.validate(cfg) }

func (h *tileHandler) Create(cfg *Config) error {
	if err := h.validate(cfg); err != nil {
		return err
	}
	src := provider.TileSource{URL: h.url(cfg), Opacity: 1}
	if cfg.Opacity != nil {
		src.Opacity = *cfg.Opacity
	}
	if cfg.ZIndex != nil {
		src.ZIndex = *cfg.ZIndex
	}
	tl := h.p.CreateTileLayer(src)
	h.p.AddTileLayer(tl)
	if !cfg.IsVisible() {
		h.p.SetTileLayerVisible(tl, false)
	}
	cfg.Handle = tl
	return nil
}

func (h *tileHandler) Remove(cfg *Config) {
	if tl, ok := cfg.Handle.(provider.TileLayer); ok {
		h.p.RemoveTileLayer(tl)
	}
	cfg.Handle = nil
}

func (h *tileHandler) SetVisible(cfg *Config, visible bool) {
	if tl, ok := cfg.Handle.(provider.TileLayer); ok {
		h.p.SetTileLayerVisible(tl, visible)
	}
}

func (h *tileHandler) HandleClick(cfg *Config, e *provider.PointerEvent) {
	if h.clickable && cfg.IsVisible() && cfg.OnClick != nil {
		cfg.OnClick(cfg, e)
	}
}

// ZoomifyGrid addresses the tiles of a Zoomify image pyramid.
type ZoomifyGrid struct {
	base string
	// tiers holds columns and rows per zoom level, smallest first.
	tiers [][2]uint32
	// offsets holds the number of tiles below each tier.
	offsets []uint32
}

func validDimension(v float64) bool {
	return v > 0 && v <= ZoomifyMaxDimension
}

// NewZoomifyGrid computes the tiers of a width x height image served from base.
// Dimensions outside (0, ZoomifyMaxDimension] are clamped into it.
func NewZoomifyGrid(base string, width, height float64) *ZoomifyGrid {
	width, height = clampDimension(width), clampDimension(height)
	g := &ZoomifyGrid{base: base}
	for w, h := width, height; ; w, h = w/2, h/2 {
		cols := uint32(math.Ceil(w / ZoomifyTileSize))
		rows := uint32(math.Ceil(h / ZoomifyTileSize))
		g.tiers = append(g.tiers, [2]uint32{max(cols, 1), max(rows, 1)})
		if w <= ZoomifyTileSize && h <= ZoomifyTileSize {
			break
		}
	}
	slices.Reverse(g.tiers)
	var n uint32
	for _, t := range g.tiers {
		g.offsets = append(g.offsets, n)
		n += t[0] * t[1]
	}
	return g
}

func clampDimension(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 1:
		return 1
	case v > ZoomifyMaxDimension:
		return ZoomifyMaxDimension
	}
	return v
}

// Tiers returns the number of zoom levels.
func (g *ZoomifyGrid) Tiers() int { return len(g.tiers) }

// URL returns the tile's image URL, or "" outside the image.
func (g *ZoomifyGrid) URL(t maptile.Tile) string {
	z := int(t.Z)
	if z >= len(g.tiers) {
		return ""
	}
	cols, rows := g.tiers[z][0], g.tiers[z][1]
	if t.X >= cols || t.Y >= rows {
		return ""
	}
	idx := g.offsets[z] + t.Y*cols + t.X
	return fmt.Sprintf("%s/TileGroup%d/%d-%d-%d.jpg", g.base, idx/ZoomifyTileSize, t.Z, t.X, t.Y)
}

// RegisterDefaults installs the GeoJson, NativeVectors, Tiled and Zoomify handlers drawing on p.
func (r *Registry) RegisterDefaults(p provider.Provider) {
	r.handlers[TypeGeoJson] = NewGeoJSON(p)
	r.handlers[TypeNativeVectors] = NewNativeVectors(p)
	r.handlers[TypeTiled] = NewTiled(p)
	r.handlers[TypeZoomify] = NewZoomify(p)
}
