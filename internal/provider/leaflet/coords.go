package leaflet

import (
	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-map/internal/geo"
)

// Coordinates converts between canonical types and Leaflet's orb-backed ones.
// Bounds are stored as south-west/north-east corners.
type Coordinates struct{}

func (Coordinates) LatLngFromAPI(p orb.Point) geo.LatLng { return geo.FromPoint(p) }
func (Coordinates) LatLngToAPI(ll geo.LatLng) orb.Point  { return ll.Point() }
func (Coordinates) BoundsFromAPI(b orb.Bound) geo.Bounds { return geo.FromBound(b) }
func (Coordinates) BoundsToAPI(b geo.Bounds) orb.Bound   { return b.Bound() }
func (Coordinates) PixelFromAPI(p Point) geo.Pixel       { return geo.Pixel{X: p.X, Y: p.Y} }
func (Coordinates) PixelToAPI(p geo.Pixel) Point         { return Point{X: p.X, Y: p.Y} }

// LatLngsToAPI converts a path.
func (c Coordinates) LatLngsToAPI(lls []geo.LatLng) orb.LineString {
	out := make(orb.LineString, len(lls))
	for i, ll := range lls {
		out[i] = c.LatLngToAPI(ll)
	}
	return out
}
