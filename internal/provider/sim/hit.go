package sim

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/joeblew999/plat-map/internal/geo"
)

// LineTolerance is how far from a line, in pixels, a pointer still hits it.
const LineTolerance = 4

// markerRadius is used for markers whose icon size is not known yet.
const markerRadius = 6

// hitIcon tests px against an icon of size w×h whose anchor sits on ll.
func hitIcon(e *Engine, ll geo.LatLng, w, h float64, anchor geo.Pixel, px geo.Pixel) bool {
	p := e.LatLngToPixel(ll)
	if w <= 0 || h <= 0 {
		dx, dy := px.X-p.X, px.Y-p.Y
		return dx*dx+dy*dy <= markerRadius*markerRadius
	}
	left, top := p.X-anchor.X, p.Y-anchor.Y
	return px.X >= left && px.X <= left+w && px.Y >= top && px.Y <= top+h
}

func hitRing(e *Engine, ring orb.Ring, px geo.Pixel) bool {
	if len(ring) < 3 {
		return false
	}
	return planar.PolygonContains(orb.Polygon{ring}, e.PixelToLatLng(px).Point())
}

func hitPath(e *Engine, path orb.LineString, px geo.Pixel) bool {
	if len(path) == 0 {
		return false
	}
	screen := make(orb.LineString, len(path))
	for i, p := range path {
		s := e.LatLngToPixel(geo.FromPoint(p))
		screen[i] = orb.Point{s.X, s.Y}
	}
	return planar.DistanceFrom(screen, orb.Point{px.X, px.Y}) <= LineTolerance
}
