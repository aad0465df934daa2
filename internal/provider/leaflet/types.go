package leaflet

import (
	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-map/internal/provider"
)

// Point is a Leaflet pixel position relative to the map container.
type Point struct {
	X float64
	Y float64
}

// PathOptions styles lines and polygons.
type PathOptions struct {
	Stroke      bool
	Color       string
	Opacity     float64
	Weight      float64
	Fill        bool
	FillColor   string
	FillOpacity float64
}

// IconOptions describes a marker icon. Nil sizes are filled in by the browser.
type IconOptions struct {
	IconURL    string
	IconSize   *Point
	IconAnchor *Point
	ClassName  string
}

// MarkerOptions configures a Marker.
type MarkerOptions struct {
	Icon         IconOptions
	Title        string
	ZIndexOffset int
}

// Layer is anything added to the map.
type Layer interface {
	layer()
}

// Marker is a Leaflet marker.
type Marker struct {
	latLng orb.Point
	opts   MarkerOptions
	data   provider.ShapeData
}

// NewMarker creates a Marker.
func NewMarker(ll orb.Point, opts MarkerOptions) *Marker {
	return &Marker{latLng: ll, opts: opts}
}

func (*Marker) layer()                      {}
func (m *Marker) GetLatLng() orb.Point      { return m.latLng }
func (m *Marker) Options() MarkerOptions    { return m.opts }
func (m *Marker) SetIcon(icon IconOptions)  { m.opts.Icon = icon }
func (m *Marker) SetTitle(title string)     { m.opts.Title = title }
func (m *Marker) SetZIndexOffset(z int)     { m.opts.ZIndexOffset = z }
func (m *Marker) Kind() provider.ShapeKind  { return provider.KindMarker }
func (m *Marker) Data() *provider.ShapeData { return &m.data }

// Polyline is a Leaflet line.
type Polyline struct {
	latLngs orb.LineString
	opts    PathOptions
	data    provider.ShapeData
}

// NewPolyline creates a Polyline.
func NewPolyline(lls orb.LineString, opts PathOptions) *Polyline {
	return &Polyline{latLngs: lls, opts: opts}
}

func (*Polyline) layer()                       {}
func (p *Polyline) GetLatLngs() orb.LineString { return p.latLngs }
func (p *Polyline) Options() PathOptions       { return p.opts }
func (p *Polyline) Kind() provider.ShapeKind   { return provider.KindLine }
func (p *Polyline) Data() *provider.ShapeData  { return &p.data }

// Polygon is a Leaflet polygon.
type Polygon struct {
	latLngs orb.Ring
	opts    PathOptions
	data    provider.ShapeData
}

// NewPolygon creates a Polygon. The ring is closed if needed.
func NewPolygon(ring orb.Ring, opts PathOptions) *Polygon {
	if len(ring) > 0 && !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return &Polygon{latLngs: ring, opts: opts}
}

func (*Polygon) layer()                      {}
func (p *Polygon) GetLatLngs() orb.Ring      { return p.latLngs }
func (p *Polygon) Options() PathOptions      { return p.opts }
func (p *Polygon) Kind() provider.ShapeKind  { return provider.KindPolygon }
func (p *Polygon) Data() *provider.ShapeData { return &p.data }

// TileLayerOptions configures a TileLayer.
type TileLayerOptions struct {
	Opacity float64
	ZIndex  int
}

// TileLayer is a Leaflet raster layer.
type TileLayer struct {
	template string
	opts     TileLayerOptions
	source   provider.TileSource
}

func (*TileLayer) layer()                        {}
func (t *TileLayer) Template() string            { return t.template }
func (t *TileLayer) Options() TileLayerOptions   { return t.opts }
func (t *TileLayer) Source() provider.TileSource { return t.source }

// ZoomPanOptions controls view animation.
type ZoomPanOptions struct {
	Animate bool
}

// FitBoundsOptions controls FitBounds.
type FitBoundsOptions struct {
	Padding Point
	Animate bool
}

// MouseEvent is the argument of Leaflet pointer handlers.
type MouseEvent struct {
	Type           string
	LatLng         orb.Point
	ContainerPoint Point
	// Target is the layer under the pointer, nil for the map itself.
	Target           Layer
	OriginalEvent    *provider.DOMEvent
	DefaultPrevented bool
}

// SDK is the subset of a Leaflet map the adapter drives.
type SDK interface {
	GetCenter() orb.Point
	GetZoom() float64
	GetBounds() orb.Bound
	SetView(center orb.Point, zoom float64, opts ZoomPanOptions)
	FitBounds(b orb.Bound, opts FitBoundsOptions)
	PanBy(offset Point, opts ZoomPanOptions)
	InvalidateSize(width, height float64)
	LatLngToContainerPoint(orb.Point) Point
	ContainerPointToLatLng(Point) orb.Point
	// Project returns the world pixel of a point at zoom.
	Project(p orb.Point, zoom float64) Point
	Unproject(p Point, zoom float64) orb.Point
	AddLayer(Layer)
	RemoveLayer(Layer)
	HasLayer(Layer) bool
	// Attributions returns the attribution control's entries.
	Attributions() []string
	On(event string, fn func(*MouseEvent))
	// Fire calls the handlers registered for event with e.
	Fire(event string, e *MouseEvent)
}
