// Package geo holds the canonical coordinate model shared by every provider adapter.
package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// Tolerance is the largest difference, in degrees, at which two coordinates are still equal.
const Tolerance = 1e-9

// ErrInvalidLatLng is returned when a latitude/longitude string cannot be parsed.
var ErrInvalidLatLng = errors.New("invalid lat/lng")

// LatLng is a WGS84 position.
type LatLng struct {
	Lat float64 `json:"lat" yaml:"lat" doc:"Latitude in degrees" example:"39"`
	Lng float64 `json:"lng" yaml:"lng" doc:"Longitude in degrees" example:"-96"`
}

// Pixel is a screen position relative to the map container.
type Pixel struct {
	X float64 `json:"x" yaml:"x" doc:"Horizontal offset in pixels"`
	Y float64 `json:"y" yaml:"y" doc:"Vertical offset in pixels"`
}

// Bounds is a lat/lng box described by its four edges.
type Bounds struct {
	N float64 `json:"n" yaml:"n" doc:"Northern edge"`
	S float64 `json:"s" yaml:"s" doc:"Southern edge"`
	E float64 `json:"e" yaml:"e" doc:"Eastern edge"`
	W float64 `json:"w" yaml:"w" doc:"Western edge"`
}

// Valid reports whether both components are finite numbers.
func (ll LatLng) Valid() bool {
	return !math.IsNaN(ll.Lat) && !math.IsNaN(ll.Lng) && !math.IsInf(ll.Lat, 0) && !math.IsInf(ll.Lng, 0)
}

// String formats the position as "lat,lng".
func (ll LatLng) String() string {
	return strconv.FormatFloat(ll.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(ll.Lng, 'f', -1, 64)
}

// Point returns the position as an orb point (x = lng, y = lat).
func (ll LatLng) Point() orb.Point {
	return orb.Point{ll.Lng, ll.Lat}
}

// FromPoint converts an orb point (x = lng, y = lat) to a LatLng.
func FromPoint(p orb.Point) LatLng {
	return LatLng{Lat: p.Lat(), Lng: p.Lon()}
}

// ParseLatLng parses a "latitude,longitude" string.
func ParseLatLng(s string) (LatLng, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return LatLng{}, fmt.Errorf("%w: %q", ErrInvalidLatLng, s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return LatLng{}, fmt.Errorf("%w: %q", ErrInvalidLatLng, s)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return LatLng{}, fmt.Errorf("%w: %q", ErrInvalidLatLng, s)
	}
	return LatLng{Lat: lat, Lng: lng}, nil
}

// Equal compares two positions within Tolerance. Longitudes -180 and 180 are the same meridian.
func Equal(a, b LatLng) bool {
	if math.Abs(a.Lat-b.Lat) > Tolerance {
		return false
	}
	d := math.Abs(a.Lng - b.Lng)
	return d <= Tolerance || math.Abs(d-360) <= Tolerance
}

// BoundsOf returns the smallest box containing every position.
func BoundsOf(lls []LatLng) Bounds {
	if len(lls) == 0 {
		return Bounds{}
	}
	b := Bounds{N: lls[0].Lat, S: lls[0].Lat, E: lls[0].Lng, W: lls[0].Lng}
	for _, ll := range lls[1:] {
		b.N = math.Max(b.N, ll.Lat)
		b.S = math.Min(b.S, ll.Lat)
		b.E = math.Max(b.E, ll.Lng)
		b.W = math.Min(b.W, ll.Lng)
	}
	return b
}

// Contains reports whether ll falls inside the box. Boxes whose western edge is east of
// their eastern edge cross the antimeridian.
func (b Bounds) Contains(ll LatLng) bool {
	if ll.Lat > b.N || ll.Lat < b.S {
		return false
	}
	if b.W <= b.E {
		return ll.Lng >= b.W && ll.Lng <= b.E
	}
	return ll.Lng >= b.W || ll.Lng <= b.E
}

// Center returns the midpoint of the box.
func (b Bounds) Center() LatLng {
	lng := (b.E + b.W) / 2
	if b.W > b.E {
		lng += 180
		if lng > 180 {
			lng -= 360
		}
	}
	return LatLng{Lat: (b.N + b.S) / 2, Lng: lng}
}

// NorthEast returns the north-east corner.
func (b Bounds) NorthEast() LatLng { return LatLng{Lat: b.N, Lng: b.E} }

// SouthWest returns the south-west corner.
func (b Bounds) SouthWest() LatLng { return LatLng{Lat: b.S, Lng: b.W} }

// Bound returns the box as an orb bound (Min = south-west, Max = north-east).
func (b Bounds) Bound() orb.Bound {
	return orb.Bound{Min: b.SouthWest().Point(), Max: b.NorthEast().Point()}
}

// FromBound converts an orb bound to edge form.
func FromBound(b orb.Bound) Bounds {
	return Bounds{N: b.Max.Lat(), S: b.Min.Lat(), E: b.Max.Lon(), W: b.Min.Lon()}
}
