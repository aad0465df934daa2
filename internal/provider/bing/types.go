package bing

import (
	"fmt"
	"math"

	"github.com/joeblew999/plat-map/internal/provider"
)

// Location is a Bing latitude/longitude pair.
type Location struct {
	Latitude  float64
	Longitude float64
}

// Point is a Bing pixel position relative to the map control.
type Point struct {
	X float64
	Y float64
}

// LocationRect is a Bing bounding box stored as a center and spans in degrees.
type LocationRect struct {
	Center Location
	Width  float64
	Height float64
}

// LocationRectFromEdges builds a rect from its edges. A west edge east of the east
// edge spans the antimeridian.
func LocationRectFromEdges(north, west, south, east float64) LocationRect {
	width := east - west
	if width < 0 {
		width += 360
	}
	return LocationRect{
		Center: Location{Latitude: (north + south) / 2, Longitude: normalizeLng(west + width/2)},
		Width:  width,
		Height: north - south,
	}
}

// LocationRectFromLocations returns the smallest rect holding locs.
func LocationRectFromLocations(locs ...Location) LocationRect {
	if len(locs) == 0 {
		return LocationRect{}
	}
	n, s := locs[0].Latitude, locs[0].Latitude
	e, w := locs[0].Longitude, locs[0].Longitude
	for _, l := range locs[1:] {
		n = math.Max(n, l.Latitude)
		s = math.Min(s, l.Latitude)
		e = math.Max(e, l.Longitude)
		w = math.Min(w, l.Longitude)
	}
	return LocationRectFromEdges(n, w, s, e)
}

func (r LocationRect) North() float64 { return r.Center.Latitude + r.Height/2 }
func (r LocationRect) South() float64 { return r.Center.Latitude - r.Height/2 }
func (r LocationRect) East() float64  { return normalizeLng(r.Center.Longitude + r.Width/2) }
func (r LocationRect) West() float64  { return normalizeLng(r.Center.Longitude - r.Width/2) }

// Contains reports whether l lies inside the rect.
func (r LocationRect) Contains(l Location) bool {
	if l.Latitude > r.North() || l.Latitude < r.South() {
		return false
	}
	d := math.Abs(normalizeLng(l.Longitude - r.Center.Longitude))
	return d <= r.Width/2
}

func normalizeLng(lng float64) float64 {
	for lng > 180 {
		lng -= 360
	}
	for lng < -180 {
		lng += 360
	}
	return lng
}

// Color is an alpha-first color.
type Color struct {
	A, R, G, B uint8
}

// ToHex formats the color without alpha.
func (c Color) ToHex() string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

// MapTypeID selects Bing imagery.
type MapTypeID string

const (
	Aerial   MapTypeID = "a"
	Auto     MapTypeID = "auto"
	Birdseye MapTypeID = "be"
	Mercator MapTypeID = "m"
	Road     MapTypeID = "r"
)

// MapTypes maps base layer codes to imagery.
var MapTypes = map[string]MapTypeID{
	"aerial":   Aerial,
	"auto":     Auto,
	"birdseye": Birdseye,
	"mercator": Mercator,
	"road":     Road,
}

// PushpinOptions configures a Pushpin. Zero Height or Width means unset.
type PushpinOptions struct {
	Icon     string
	Height   float64
	Width    float64
	Anchor   *Point
	Text     string
	TypeName string
	Visible  *bool
	ZIndex   int
}

// PolylineOptions configures a Polyline.
type PolylineOptions struct {
	StrokeColor     *Color
	StrokeThickness float64
	Visible         *bool
}

// PolygonOptions configures a Polygon.
type PolygonOptions struct {
	FillColor       *Color
	StrokeColor     *Color
	StrokeThickness float64
	Visible         *bool
}

func visible(v *bool) bool { return v == nil || *v }

// Entity is anything held in the map's entity collection.
type Entity interface {
	GetVisible() bool
}

// Pushpin is a Bing marker.
type Pushpin struct {
	location Location
	opts     PushpinOptions
	data     provider.ShapeData
}

// NewPushpin creates a Pushpin.
func NewPushpin(loc Location, opts PushpinOptions) *Pushpin {
	return &Pushpin{location: loc, opts: opts}
}

func (p *Pushpin) GetLocation() Location     { return p.location }
func (p *Pushpin) GetIcon() string           { return p.opts.Icon }
func (p *Pushpin) GetVisible() bool          { return visible(p.opts.Visible) }
func (p *Pushpin) Options() PushpinOptions   { return p.opts }
func (p *Pushpin) Kind() provider.ShapeKind  { return provider.KindMarker }
func (p *Pushpin) Data() *provider.ShapeData { return &p.data }

// GetAnchor returns the anchor, or the origin when unset.
func (p *Pushpin) GetAnchor() Point {
	if p.opts.Anchor == nil {
		return Point{}
	}
	return *p.opts.Anchor
}

// SetOptions overwrites the options that are set in o.
func (p *Pushpin) SetOptions(o PushpinOptions) {
	if o.Icon != "" {
		p.opts.Icon = o.Icon
	}
	if o.Height != 0 {
		p.opts.Height = o.Height
	}
	if o.Width != 0 {
		p.opts.Width = o.Width
	}
	if o.Anchor != nil {
		p.opts.Anchor = o.Anchor
	}
	if o.Text != "" {
		p.opts.Text = o.Text
	}
	if o.TypeName != "" {
		p.opts.TypeName = o.TypeName
	}
	if o.Visible != nil {
		p.opts.Visible = o.Visible
	}
	if o.ZIndex != 0 {
		p.opts.ZIndex = o.ZIndex
	}
}

// Polyline is a Bing line.
type Polyline struct {
	locations []Location
	opts      PolylineOptions
	data      provider.ShapeData
}

// NewPolyline creates a Polyline.
func NewPolyline(locs []Location, opts PolylineOptions) *Polyline {
	return &Polyline{locations: locs, opts: opts}
}

func (p *Polyline) GetLocations() []Location  { return p.locations }
func (p *Polyline) GetVisible() bool          { return visible(p.opts.Visible) }
func (p *Polyline) Options() PolylineOptions  { return p.opts }
func (p *Polyline) Kind() provider.ShapeKind  { return provider.KindLine }
func (p *Polyline) Data() *provider.ShapeData { return &p.data }

// SetVisible shows or hides the line.
func (p *Polyline) SetVisible(v bool) { p.opts.Visible = &v }

// Polygon is a Bing polygon.
type Polygon struct {
	locations []Location
	opts      PolygonOptions
	data      provider.ShapeData
}

// NewPolygon creates a Polygon.
func NewPolygon(locs []Location, opts PolygonOptions) *Polygon {
	return &Polygon{locations: locs, opts: opts}
}

func (p *Polygon) GetLocations() []Location  { return p.locations }
func (p *Polygon) GetVisible() bool          { return visible(p.opts.Visible) }
func (p *Polygon) Options() PolygonOptions   { return p.opts }
func (p *Polygon) Kind() provider.ShapeKind  { return provider.KindPolygon }
func (p *Polygon) Data() *provider.ShapeData { return &p.data }

// SetVisible shows or hides the polygon.
func (p *Polygon) SetVisible(v bool) { p.opts.Visible = &v }

// TileID addresses a tile.
type TileID struct {
	X, Y          uint32
	LevelOfDetail uint32
}

// TileSource builds tile URIs.
type TileSource struct {
	URIConstructor func(TileID) string
}

// TileLayerOptions configures a TileLayer.
type TileLayerOptions struct {
	Mercator TileSource
	Opacity  float64
	Visible  *bool
}

// TileLayer is a Bing raster overlay.
type TileLayer struct {
	opts   TileLayerOptions
	source provider.TileSource
}

func (t *TileLayer) GetVisible() bool            { return visible(t.opts.Visible) }
func (t *TileLayer) Options() TileLayerOptions   { return t.opts }
func (t *TileLayer) Source() provider.TileSource { return t.source }
func (t *TileLayer) SetVisible(v bool)           { t.opts.Visible = &v }
func (t *TileLayer) URI(id TileID) string        { return t.opts.Mercator.URIConstructor(id) }

// ViewOptions is a Bing setView request. Nil fields keep their current value.
type ViewOptions struct {
	Animate      *bool
	Center       *Location
	CenterOffset *Point
	Zoom         *float64
	Bounds       *LocationRect
	Padding      float64
}

// MapOptions resizes the map control.
type MapOptions struct {
	Height float64
	Width  float64
}

// MouseEvent is the argument of Bing pointer handlers.
type MouseEvent struct {
	EventName string
	// TargetType is "map" when the map background was hit.
	TargetType    string
	Target        Entity
	IsPrimary     bool
	OriginalEvent *provider.DOMEvent
	Handled       bool
	X, Y          float64
}

// HandlerID identifies a registered handler.
type HandlerID int

// EntityCollection holds the shapes and tile layers drawn on the map.
type EntityCollection interface {
	Push(Entity)
	RemoveAt(i int)
	IndexOf(Entity) int
	Get(i int) Entity
	GetLength() int
}

// SDK is the subset of the Bing Maps control the adapter drives.
type SDK interface {
	GetCenter() Location
	GetZoom() float64
	GetBounds() LocationRect
	GetMapTypeID() MapTypeID
	SetMapType(MapTypeID)
	SetView(ViewOptions)
	SetOptions(MapOptions)
	TryLocationToPixel(Location) (Point, bool)
	TryPixelToLocation(Point) (Location, bool)
	Entities() EntityCollection
	// GetCopyrights passes the copyright strings of the visible imagery to fn.
	GetCopyrights(fn func([][]string))
	AddHandler(event string, fn func(*MouseEvent)) HandlerID
	RemoveHandler(HandlerID)
	// Invoke calls the handlers registered for event with e.
	Invoke(event string, e *MouseEvent)
}
