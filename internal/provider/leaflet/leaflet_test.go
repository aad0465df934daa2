package leaflet_test

import (
	"errors"
	"testing"
	"time"

	"github.com/paulmach/orb/maptile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-map/internal/geo"
	"github.com/joeblew999/plat-map/internal/loop"
	"github.com/joeblew999/plat-map/internal/provider"
	"github.com/joeblew999/plat-map/internal/provider/leaflet"
	"github.com/joeblew999/plat-map/internal/provider/sim"
	"github.com/joeblew999/plat-map/internal/style"
)

func newAdapter(t *testing.T) (*leaflet.Adapter, *sim.LeafletMap, *sim.Engine, *loop.Manual) {
	t.Helper()
	l := loop.NewManual(time.Unix(0, 0))
	e := sim.New(sim.Options{Loop: l, Zoom: 4, Copyrights: map[string][]string{"": {"© OpenStreetMap contributors"}}})
	sdk := sim.NewLeaflet(e)
	prober := style.NewProber(style.ProberOptions{
		Loop:   l,
		Loader: &style.FixedLoader{Sizes: map[string]style.Size{"pin.png": {Width: 12, Height: 24}}, Polls: 1},
	})
	return leaflet.New(sdk, leaflet.Options{Prober: prober}), sdk, e, l
}

func TestCoordinates(t *testing.T) {
	var c leaflet.Coordinates
	for _, ll := range []geo.LatLng{{Lat: 90, Lng: 0}, {Lat: -90, Lng: -180}, {Lat: 45.25, Lng: 179.5}} {
		assert.Equal(t, ll, c.LatLngFromAPI(c.LatLngToAPI(ll)))
	}
	b := geo.Bounds{N: 10, S: -10, E: -170, W: 170}
	assert.Equal(t, b, c.BoundsFromAPI(c.BoundsToAPI(b)))

	path := c.LatLngsToAPI([]geo.LatLng{{Lat: 1, Lng: 2}, {Lat: 3, Lng: 4}})
	require.Len(t, path, 2)
	assert.Equal(t, 2.0, path[0].Lon())
	assert.Equal(t, 3.0, path[1].Lat())
}

func TestCoordinatesAtTheEdges(t *testing.T) {
	var c leaflet.Coordinates
	for _, ll := range []geo.LatLng{
		{Lat: 89.9999999, Lng: 0},
		{Lat: -89.9999999, Lng: -179.9999999},
		{Lat: 0, Lng: 180},
		{Lat: 0, Lng: -180},
	} {
		assert.Equal(t, ll, c.LatLngFromAPI(c.LatLngToAPI(ll)), ll.String())
	}

	for _, b := range []geo.Bounds{
		{N: 90, S: 80, E: 10, W: -10},
		{N: -80, S: -90, E: 60, W: 30},
		{N: 1, S: -1, E: -179.5, W: 179.5},
		{N: 5, S: -5, E: 180, W: 170},
		{N: 5, S: -5, E: -170, W: -180},
	} {
		ob := c.BoundsToAPI(b)
		assert.Equal(t, b.S, ob.Min.Lat())
		assert.Equal(t, b.W, ob.Min.Lon())
		assert.Equal(t, b.N, ob.Max.Lat())
		assert.Equal(t, b.E, ob.Max.Lon())
		assert.Equal(t, b, c.BoundsFromAPI(ob))
	}

	t.Run("pixels", func(t *testing.T) {
		a, _, _, _ := newAdapter(t)
		for _, ll := range []geo.LatLng{{Lat: 85, Lng: 179.9}, {Lat: -85, Lng: -179.9}} {
			got := a.PixelToLatLng(a.LatLngToPixel(ll))
			assert.InDelta(t, ll.Lat, got.Lat, 1e-6, ll.String())
			assert.InDelta(t, ll.Lng, got.Lng, 1e-6, ll.String())
		}
		// beyond the mercator limit latitudes clamp
		got := a.PixelToLatLng(a.LatLngToPixel(geo.LatLng{Lat: 89.9, Lng: 10}))
		assert.InDelta(t, sim.MaxLatitude, got.Lat, 1e-6)
		got = a.PixelToLatLng(a.LatLngToPixel(geo.LatLng{Lat: -89.9, Lng: 10}))
		assert.InDelta(t, -sim.MaxLatitude, got.Lat, 1e-6)
	})
}

func TestStyles(t *testing.T) {
	s := leaflet.Styles{}

	line := s.ConvertLine(style.LineStyle{Color: "#FF0000", Opacity: style.Int(51)}).(leaflet.PathOptions)
	assert.Equal(t, "#ff0000", line.Color)
	assert.InDelta(t, 0.2, line.Opacity, 1e-9)
	assert.Equal(t, 1.0, line.Weight)

	poly := s.ConvertPolygon(style.PolygonStyle{FillColor: "00ff00", StrokeWidth: style.Float(0)}).(leaflet.PathOptions)
	assert.True(t, poly.Fill)
	assert.False(t, poly.Stroke)
	assert.Equal(t, "#00ff00", poly.FillColor)
	assert.Equal(t, 1.0, poly.FillOpacity)
	assert.Equal(t, 0.0, poly.Weight)

	marker := s.ConvertMarker(style.MarkerStyle{URL: "pin.png", Height: style.Float(10)}).(leaflet.MarkerOptions)
	assert.Nil(t, marker.Icon.IconSize)
}

func TestCreateMarker(t *testing.T) {
	a, _, _, l := newAdapter(t)

	sized := a.CreateMarker(geo.LatLng{}, leaflet.MarkerOptions{Icon: leaflet.IconOptions{
		IconURL: "x.png", IconSize: &leaflet.Point{X: 8, Y: 16},
	}}).(*leaflet.Marker)
	assert.Equal(t, &leaflet.Point{X: 4, Y: 8}, sized.Options().Icon.IconAnchor)

	probed := a.CreateMarker(geo.LatLng{}, leaflet.MarkerOptions{Icon: leaflet.IconOptions{IconURL: "pin.png"}}).(*leaflet.Marker)
	assert.Nil(t, probed.Options().Icon.IconSize)
	l.Advance(time.Second)
	assert.Equal(t, &leaflet.Point{X: 12, Y: 24}, probed.Options().Icon.IconSize)
	assert.Equal(t, &leaflet.Point{X: 6, Y: 12}, probed.Options().Icon.IconAnchor)

	cached := a.CreateMarker(geo.LatLng{}, leaflet.MarkerOptions{Icon: leaflet.IconOptions{IconURL: "pin.png"}}).(*leaflet.Marker)
	assert.Equal(t, &leaflet.Point{X: 12, Y: 24}, cached.Options().Icon.IconSize)

	t.Run("remove cancels the icon lookup", func(t *testing.T) {
		a, _, _, l := newAdapter(t)
		m := a.CreateMarker(geo.LatLng{}, leaflet.MarkerOptions{Icon: leaflet.IconOptions{IconURL: "pin.png"}})
		a.RemoveShape(m)
		assert.Equal(t, 0, l.Pending())
	})
}

func TestVisibility(t *testing.T) {
	a, sdk, _, _ := newAdapter(t)
	poly := a.CreatePolygon([]geo.LatLng{{Lat: 0, Lng: 0}, {Lat: 1, Lng: 0}, {Lat: 1, Lng: 1}}, nil)
	a.AddShape(poly)
	require.True(t, sdk.HasLayer(poly.(leaflet.Layer)))

	a.SetShapeVisible(poly, false)
	assert.False(t, sdk.HasLayer(poly.(leaflet.Layer)))
	assert.False(t, a.ShapeVisible(poly))

	a.SetShapeVisible(poly, true)
	assert.True(t, sdk.HasLayer(poly.(leaflet.Layer)))

	t.Run("hidden shapes stay off the map when added", func(t *testing.T) {
		a, sdk, _, _ := newAdapter(t)
		line := a.CreateLine([]geo.LatLng{{Lat: 0, Lng: 0}, {Lat: 1, Lng: 1}}, nil)
		a.SetShapeVisible(line, false)
		a.AddShape(line)
		assert.False(t, sdk.HasLayer(line.(leaflet.Layer)))
		a.RemoveShape(line)
		assert.True(t, a.ShapeVisible(line))
	})

	ring := poly.(*leaflet.Polygon).GetLatLngs()
	assert.Equal(t, ring[0], ring[len(ring)-1])
}

func TestMarkerOptions(t *testing.T) {
	a, sdk, _, _ := newAdapter(t)
	m := a.CreateMarker(geo.LatLng{Lat: 1, Lng: 2}, leaflet.MarkerOptions{Icon: leaflet.IconOptions{
		IconURL: "x.png", IconSize: &leaflet.Point{X: 8, Y: 16}, IconAnchor: &leaflet.Point{X: 4, Y: 16},
	}})
	a.AddShape(m)

	anchor, ok := a.MarkerAnchor(m)
	require.True(t, ok)
	assert.Equal(t, geo.Pixel{X: 4, Y: 16}, anchor)

	class, icon, label, hidden, z := "park", "y.png", "Visitor center", false, 3
	a.SetMarkerOptions(m, provider.MarkerOptions{Class: &class, Icon: &icon, Label: &label, Visible: &hidden, ZIndex: &z})
	o := m.(*leaflet.Marker).Options()
	assert.Equal(t, "park", o.Icon.ClassName)
	assert.Equal(t, "y.png", o.Icon.IconURL)
	assert.Equal(t, &leaflet.Point{X: 8, Y: 16}, o.Icon.IconSize)
	assert.Equal(t, "Visitor center", o.Title)
	assert.Equal(t, 3, o.ZIndexOffset)
	assert.False(t, sdk.HasLayer(m.(leaflet.Layer)))

	visible := true
	a.SetMarkerOptions(m, provider.MarkerOptions{Visible: &visible})
	assert.True(t, sdk.HasLayer(m.(leaflet.Layer)))
	assert.Equal(t, "y.png", a.MarkerIcon(m))

	t.Run("unsized icons anchor at the origin", func(t *testing.T) {
		a, _, _, _ := newAdapter(t)
		m := a.CreateMarker(geo.LatLng{}, leaflet.MarkerOptions{Icon: leaflet.IconOptions{IconURL: "unknown.png"}})
		anchor, ok := a.MarkerAnchor(m)
		assert.True(t, ok)
		assert.Equal(t, geo.Pixel{}, anchor)
	})
}

func TestView(t *testing.T) {
	t.Run("pan moves content by offset", func(t *testing.T) {
		a, _, _, l := newAdapter(t)
		origin := a.Center()
		a.PanBy(geo.Pixel{X: -30, Y: 20}, true)
		l.Advance(time.Second)
		px := a.LatLngToPixel(origin)
		assert.InDelta(t, 370, px.X, 1e-6)
		assert.InDelta(t, 320, px.Y, 1e-6)
	})

	t.Run("center offset", func(t *testing.T) {
		a, _, _, l := newAdapter(t)
		target := geo.LatLng{Lat: 20, Lng: 30}
		z := 6.0
		a.SetView(provider.View{Center: &target, Zoom: &z, CenterOffset: &geo.Pixel{X: 100, Y: -50}})
		l.Advance(time.Second)
		px := a.LatLngToPixel(target)
		assert.InDelta(t, 500, px.X, 1e-6)
		assert.InDelta(t, 250, px.Y, 1e-6)
	})

	t.Run("fit bounds", func(t *testing.T) {
		a, _, _, l := newAdapter(t)
		a.SetView(provider.View{Bounds: &geo.Bounds{N: 10, S: -10, E: 10, W: -10}})
		l.Advance(time.Second)
		assert.Equal(t, 5.0, a.Zoom())
	})
}

func TestListen(t *testing.T) {
	a, _, e, _ := newAdapter(t)
	m := a.CreateMarker(geo.LatLng{}, leaflet.MarkerOptions{Icon: leaflet.IconOptions{IconURL: "x.png", IconSize: &leaflet.Point{X: 10, Y: 10}}})
	a.AddShape(m)

	var kinds []provider.PointerKind
	var last *provider.PointerEvent
	a.Listen(provider.Listener{Pointer: func(k provider.PointerKind, ev *provider.PointerEvent) {
		kinds = append(kinds, k)
		last = ev
	}})

	e.RightClick(geo.Pixel{X: 402, Y: 298})
	require.NotNil(t, last)
	assert.Equal(t, []provider.PointerKind{provider.RightClick}, kinds)
	assert.Same(t, m, last.Target)
	assert.False(t, last.OnMap)
	assert.False(t, last.Primary)

	e.MouseMove(geo.Pixel{X: 10, Y: 10})
	assert.True(t, last.OnMap)
	assert.Equal(t, geo.Pixel{X: 10, Y: 10}, last.Pixel)
}

func TestTrigger(t *testing.T) {
	a, _, _, _ := newAdapter(t)
	m := a.CreateMarker(geo.LatLng{}, leaflet.MarkerOptions{Icon: leaflet.IconOptions{IconURL: "x.png", IconSize: &leaflet.Point{X: 10, Y: 10}}})
	a.AddShape(m)

	var kinds []provider.PointerKind
	var last *provider.PointerEvent
	a.Listen(provider.Listener{Pointer: func(k provider.PointerKind, ev *provider.PointerEvent) {
		kinds = append(kinds, k)
		last = ev
		ev.Handled = k == provider.RightClick
	}})

	a.Trigger(provider.Click, &provider.PointerEvent{Pixel: geo.Pixel{X: 400, Y: 300}})
	require.NotNil(t, last)
	assert.True(t, last.OnMap)
	assert.Nil(t, last.Target)
	assert.True(t, last.Primary)
	assert.InDelta(t, 0, last.LatLng.Lat, 1e-9)
	assert.InDelta(t, 0, last.LatLng.Lng, 1e-9)

	e := &provider.PointerEvent{Pixel: geo.Pixel{X: 10, Y: 10}, Native: &provider.DOMEvent{Type: "contextmenu", Button: 2}}
	a.Trigger(provider.RightClick, e)
	assert.Equal(t, []provider.PointerKind{provider.Click, provider.RightClick}, kinds)
	assert.False(t, last.Primary)
	assert.True(t, e.Handled)
}

func TestBaseLayer(t *testing.T) {
	a, sdk, _, _ := newAdapter(t)

	err := a.SetBaseLayer("birdseye")
	assert.True(t, errors.Is(err, provider.ErrUnsupported))

	require.NoError(t, a.SetBaseLayer("road"))
	require.NoError(t, a.SetBaseLayer("topo"))
	assert.False(t, a.BaseLayerUnrestricted())

	b, ok := a.MatchBaseLayer("topo")
	require.True(t, ok)
	assert.Equal(t, "topo", b.Code)
	assert.Equal(t, leaflet.BaseLayers["topo"], b.Native)
	_, ok = a.MatchBaseLayer("aerial")
	assert.False(t, ok)

	tl := a.CreateTileLayer(provider.TileSource{URL: provider.TemplateURL("https://{s}.t/{z}/{x}/{y}", []string{"a", "b"})})
	a.AddTileLayer(tl)
	assert.True(t, sdk.HasLayer(tl.(*leaflet.TileLayer)))
	a.SetTileLayerVisible(tl, false)
	assert.False(t, sdk.HasLayer(tl.(*leaflet.TileLayer)))

	url := tl.Source().URL
	assert.Equal(t, "https://a.t/2/1/3", url(maptile.New(1, 3, 2)))
	assert.Equal(t, "https://b.t/2/1/3", url(maptile.New(1, 3, 2)))

	var got []string
	a.Attributions(func(s []string) { got = s })
	assert.Equal(t, []string{"© OpenStreetMap contributors"}, got)
}
