package zoom

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/joeblew999/plat-map/internal/geo"
)

const (
	DefaultMin = 0
	DefaultMax = 20
	// MinFloor is the lowest minimum a restriction may configure.
	MinFloor = 3
)

// Range is an inclusive zoom interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Viewer is the part of a provider the guard reads and corrects.
type Viewer interface {
	Zoom() float64
	// Reset moves the map to center/zoom without animation.
	Reset(center geo.LatLng, zoom float64)
	// Unrestricted reports whether the active base layer ignores the maximum.
	Unrestricted() bool
}

// Guard holds the effective range and re-zooms the map when it strays outside.
type Guard struct {
	rng Range
	log zerolog.Logger
}

// NewGuard creates a guard with the default range.
func NewGuard(log zerolog.Logger) *Guard {
	return &Guard{rng: Range{Min: DefaultMin, Max: DefaultMax}, log: log}
}

// Configure computes the effective range. current resolves "auto" limits.
// A nil restriction restores the defaults.
func (g *Guard) Configure(r *Restrict, current float64) Range {
	g.rng = Range{Min: DefaultMin, Max: DefaultMax}
	if r == nil {
		return g.rng
	}
	if r.Max.IsSet() {
		g.rng.Max = r.Max.Resolve(current)
	}
	if r.Min.IsSet() {
		g.rng.Min = math.Max(r.Min.Resolve(current), MinFloor)
	}
	return g.rng
}

// Range returns the effective range.
func (g *Guard) Range() Range { return g.rng }

// Correct re-zooms v to the nearest bound, centred on center, when its zoom is out of range.
// It reports whether a correction was issued.
func (g *Guard) Correct(v Viewer, center geo.LatLng) bool {
	z := v.Zoom()
	if math.IsNaN(z) {
		return false
	}
	switch {
	case z < g.rng.Min:
		g.log.Debug().Float64("zoom", z).Float64("min", g.rng.Min).Msg("zoom below range")
		v.Reset(center, g.rng.Min)
		return true
	case z > g.rng.Max && !v.Unrestricted():
		g.log.Debug().Float64("zoom", z).Float64("max", g.rng.Max).Msg("zoom above range")
		v.Reset(center, g.rng.Max)
		return true
	}
	return false
}
