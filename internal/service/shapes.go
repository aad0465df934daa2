package service

import (
	"fmt"

	"github.com/joeblew999/plat-map/internal/geo"
	"github.com/joeblew999/plat-map/internal/provider"
	"github.com/joeblew999/plat-map/internal/style"
)

// CreateMarker builds a marker at ll. Unset style fields fall back to the defaults.
func (m *Map) CreateMarker(ll geo.LatLng, s *style.MarkerStyle) provider.Shape {
	merged := style.Merge(&style.VectorStyle{Marker: s}, m.defaults)
	return m.p.CreateMarker(ll, m.p.Styles().ConvertMarker(*merged.Marker))
}

// CreateLine builds a polyline through lls.
func (m *Map) CreateLine(lls []geo.LatLng, s *style.LineStyle) provider.Shape {
	merged := style.Merge(&style.VectorStyle{Line: s}, m.defaults)
	return m.p.CreateLine(lls, m.p.Styles().ConvertLine(*merged.Line))
}

// CreatePolygon builds a polygon with the ring lls.
func (m *Map) CreatePolygon(lls []geo.LatLng, s *style.PolygonStyle) provider.Shape {
	merged := style.Merge(&style.VectorStyle{Polygon: s}, m.defaults)
	return m.p.CreatePolygon(lls, m.p.Styles().ConvertPolygon(*merged.Polygon))
}

func (m *Map) AddShape(s provider.Shape)    { m.p.AddShape(s) }
func (m *Map) RemoveShape(s provider.Shape) { m.p.RemoveShape(s) }
func (m *Map) ShowShape(s provider.Shape)   { m.p.SetShapeVisible(s, true) }
func (m *Map) HideShape(s provider.Shape)   { m.p.SetShapeVisible(s, false) }

// SetMarkerOptions updates an existing marker. Nil fields are left unchanged.
func (m *Map) SetMarkerOptions(s provider.Shape, o provider.MarkerOptions) {
	m.p.SetMarkerOptions(s, o)
}

// MarkerAnchor returns the icon pixel placed on marker s's position.
func (m *Map) MarkerAnchor(s provider.Shape) (geo.Pixel, bool) { return m.p.MarkerAnchor(s) }

// AddTileLayer creates a tile layer from src and adds it to the map.
func (m *Map) AddTileLayer(src provider.TileSource) provider.TileLayer {
	tl := m.p.CreateTileLayer(src)
	m.p.AddTileLayer(tl)
	return tl
}

func (m *Map) RemoveTileLayer(tl provider.TileLayer) { m.p.RemoveTileLayer(tl) }
func (m *Map) ShowTileLayer(tl provider.TileLayer)   { m.p.SetTileLayerVisible(tl, true) }
func (m *Map) HideTileLayer(tl provider.TileLayer)   { m.p.SetTileLayerVisible(tl, false) }

// ReloadTileLayer is not supported by any provider.
func (m *Map) ReloadTileLayer(provider.TileLayer) error {
	return fmt.Errorf("reload tile layer: %w", provider.ErrUnsupported)
}
