// Package provider defines the capability contract every mapping SDK adapter implements.
//
// Adapters translate between the canonical model in package geo and their SDK's native
// types, and forward the SDK's raw callbacks through a Listener. They hold no gesture
// state; that lives in package gesture.
package provider

import (
	"errors"

	"github.com/paulmach/orb/maptile"

	"github.com/joeblew999/plat-map/internal/geo"
	"github.com/joeblew999/plat-map/internal/style"
)

// ErrUnsupported is returned by operations an adapter cannot express on its SDK.
var ErrUnsupported = errors.New("operation not supported by provider")

// View is a view change request. Nil fields keep their current value.
// Bounds takes precedence over Center and Zoom.
type View struct {
	Center       *geo.LatLng
	Zoom         *float64
	Bounds       *geo.Bounds
	Padding      float64
	CenterOffset *geo.Pixel
	Animate      bool
}

// ShapeKind identifies a vector primitive.
type ShapeKind int

const (
	KindMarker ShapeKind = iota
	KindLine
	KindPolygon
)

func (k ShapeKind) String() string {
	switch k {
	case KindMarker:
		return "marker"
	case KindLine:
		return "line"
	case KindPolygon:
		return "polygon"
	}
	return "unknown"
}

// ShapeData is application data attached to a shape.
type ShapeData struct {
	// ClickThrough makes clicks on the shape behave as map clicks.
	ClickThrough bool
	// Handler is invoked when the shape is clicked.
	Handler func(Shape)
	// OverIcon replaces a marker's icon while the pointer hovers it.
	OverIcon   string
	Layer      string
	Properties map[string]any
}

// Shape is a provider-native marker, line or polygon.
type Shape interface {
	Kind() ShapeKind
	Data() *ShapeData
}

// MarkerOptions updates an existing marker. Nil fields are left unchanged.
type MarkerOptions struct {
	// Class is the CSS class of the marker element.
	Class   *string
	Icon    *string
	Label   *string
	Visible *bool
	ZIndex  *int
}

// BaseLayer is one of a provider's built-in basemaps.
type BaseLayer struct {
	Code string
	// Native is the provider's own identifier for the imagery.
	Native string
}

// TileSource describes a raster tile layer.
type TileSource struct {
	URL     func(t maptile.Tile) string
	Opacity float64
	ZIndex  int
}

// TileLayer is a provider-native tile layer.
type TileLayer interface {
	Source() TileSource
}

// DOMEvent is the browser event behind a pointer callback.
type DOMEvent struct {
	Type     string  `json:"type"`
	PageX    float64 `json:"pageX"`
	PageY    float64 `json:"pageY"`
	Button   int     `json:"button"`
	ShiftKey bool    `json:"shiftKey,omitempty"`
}

// PointerKind identifies a raw pointer callback.
type PointerKind int

const (
	Click PointerKind = iota
	DblClick
	MouseDown
	MouseMove
	MouseUp
	MouseOut
	MouseOver
	RightClick
)

var pointerNames = [...]string{"click", "dblclick", "mousedown", "mousemove", "mouseup", "mouseout", "mouseover", "rightclick"}

func (k PointerKind) String() string {
	if int(k) < len(pointerNames) {
		return pointerNames[k]
	}
	return "unknown"
}

// PointerEvent is a raw pointer callback in canonical form.
type PointerEvent struct {
	// Pixel is relative to the map container's top-left corner.
	Pixel  geo.Pixel
	LatLng geo.LatLng
	// OnMap is true when the map background was the target.
	OnMap   bool
	Target  Shape
	Primary bool
	Native  *DOMEvent
	// Handled suppresses the SDK's default behaviour for the event.
	Handled bool
}

// ViewPhase identifies a raw view-change callback.
type ViewPhase int

const (
	ViewStart ViewPhase = iota
	ViewChanging
	ViewEnd
)

func (p ViewPhase) String() string {
	switch p {
	case ViewStart:
		return "start"
	case ViewChanging:
		return "changing"
	case ViewEnd:
		return "end"
	}
	return "unknown"
}

// Listener receives raw SDK callbacks. Nil funcs are skipped.
type Listener struct {
	Pointer func(PointerKind, *PointerEvent)
	View    func(ViewPhase)
}

// Provider is the capability set the map adapter drives.
type Provider interface {
	Name() string
	Styles() style.Translator

	Center() geo.LatLng
	Zoom() float64
	Bounds() geo.Bounds
	SetView(View)
	// PanBy moves the map content by offset pixels.
	PanBy(offset geo.Pixel, animate bool)
	SetSize(width, height float64)

	LatLngToPixel(geo.LatLng) geo.Pixel
	PixelToLatLng(geo.Pixel) geo.LatLng

	// CreateMarker builds a marker from options produced by Styles().ConvertMarker.
	CreateMarker(ll geo.LatLng, opts any) Shape
	CreateLine(lls []geo.LatLng, opts any) Shape
	CreatePolygon(lls []geo.LatLng, opts any) Shape
	AddShape(Shape)
	RemoveShape(Shape)
	SetShapeVisible(s Shape, visible bool)
	ShapeVisible(Shape) bool
	MarkerLatLng(Shape) (geo.LatLng, bool)
	MarkerIcon(Shape) string
	SetMarkerIcon(s Shape, url string)
	SetMarkerOptions(s Shape, o MarkerOptions)
	// MarkerAnchor returns the icon pixel placed on the marker's position.
	MarkerAnchor(Shape) (geo.Pixel, bool)

	CreateTileLayer(TileSource) TileLayer
	AddTileLayer(TileLayer)
	RemoveTileLayer(TileLayer)
	SetTileLayerVisible(l TileLayer, visible bool)

	// SetBaseLayer switches the basemap imagery to a provider code.
	SetBaseLayer(code string) error
	// BaseLayerUnrestricted reports whether the active basemap may exceed the maximum zoom.
	BaseLayerUnrestricted() bool
	// MatchBaseLayer returns the built-in basemap with code.
	MatchBaseLayer(code string) (BaseLayer, bool)
	// Attributions fetches the SDK's copyright strings and passes them to fn.
	Attributions(fn func([]string))

	Listen(Listener)
	// Trigger dispatches a synthetic pointer event through the SDK with the map as target.
	Trigger(kind PointerKind, e *PointerEvent)
}

// Renderer is the page the map is drawn into.
type Renderer interface {
	// ElementOffset returns an element's top-left position on the page.
	ElementOffset(id string) geo.Pixel
	OuterDimensions(id string) (width, height float64)
	// MoveElement places an element's top-left corner at offset on the page.
	MoveElement(id string, offset geo.Pixel)
	SetCursor(cursor string)
	Cursor() string
}
