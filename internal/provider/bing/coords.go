package bing

import "github.com/joeblew999/plat-map/internal/geo"

// Coordinates converts between canonical and Bing coordinate types.
type Coordinates struct{}

func (Coordinates) LatLngFromAPI(l Location) geo.LatLng {
	return geo.LatLng{Lat: l.Latitude, Lng: l.Longitude}
}

func (Coordinates) LatLngToAPI(ll geo.LatLng) Location {
	return Location{Latitude: ll.Lat, Longitude: ll.Lng}
}

func (Coordinates) BoundsFromAPI(r LocationRect) geo.Bounds {
	return geo.Bounds{N: r.North(), S: r.South(), E: r.East(), W: r.West()}
}

func (Coordinates) BoundsToAPI(b geo.Bounds) LocationRect {
	return LocationRectFromEdges(b.N, b.W, b.S, b.E)
}

func (Coordinates) PixelFromAPI(p Point) geo.Pixel {
	return geo.Pixel{X: p.X, Y: p.Y}
}

func (Coordinates) PixelToAPI(p geo.Pixel) Point {
	return Point{X: p.X, Y: p.Y}
}

// LatLngsToAPI converts a path.
func (c Coordinates) LatLngsToAPI(lls []geo.LatLng) []Location {
	out := make([]Location, len(lls))
	for i, ll := range lls {
		out[i] = c.LatLngToAPI(ll)
	}
	return out
}
