package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-map/internal/event"
	"github.com/joeblew999/plat-map/internal/geo"
	"github.com/joeblew999/plat-map/internal/layer"
	"github.com/joeblew999/plat-map/internal/loop"
	"github.com/joeblew999/plat-map/internal/provider"
	"github.com/joeblew999/plat-map/internal/provider/bing"
	"github.com/joeblew999/plat-map/internal/provider/sim"
	"github.com/joeblew999/plat-map/internal/service"
	"github.com/joeblew999/plat-map/internal/style"
	"github.com/joeblew999/plat-map/internal/zoom"
)

var home = geo.LatLng{Lat: 39, Lng: -96}

type fixture struct {
	m      *service.Map
	loop   *loop.Manual
	engine *sim.Engine
	page   *sim.Renderer
	events []event.Name
}

func newMap(t *testing.T, mutate func(*service.Options)) *fixture {
	t.Helper()
	l := loop.NewManual(time.Unix(0, 0))
	e := sim.New(sim.Options{
		Loop: l,
		Zoom: 4,
		Copyrights: map[string][]string{
			string(bing.Auto):   {"© Microsoft"},
			string(bing.Road):   {"© Microsoft", "© HERE"},
			string(bing.Aerial): {"© Maxar"},
		},
	})
	page := sim.NewRenderer()
	page.SetElement(service.ContainerID, geo.Pixel{X: 10, Y: 20}, 800, 600)
	opts := service.Options{
		Provider: bing.New(sim.NewBing(e), bing.Options{}),
		Renderer: page,
		Loop:     l,
		Center:   home,
		Zoom:     4,
		Server:   "https://example.test",
		Logger:   zerolog.Nop(),
	}
	if mutate != nil {
		mutate(&opts)
	}
	m, err := service.New(opts)
	require.NoError(t, err)
	t.Cleanup(m.Close)
	l.Advance(time.Second)

	f := &fixture{m: m, loop: l, engine: e, page: page}
	for _, n := range []event.Name{
		event.Click, event.ShapeClick, event.DblClick,
		event.PanStart, event.PanEnd, event.ZoomStart, event.ZoomEnd,
		event.ViewChangeStart, event.ViewChangeEnd,
	} {
		m.Bus().On(event.TopicMap, n, func(ev event.Event) { f.events = append(f.events, ev.Name) })
	}
	for _, n := range []event.Name{event.BeforeAdd, event.Added, event.BeforeRemove, event.Removed} {
		m.Bus().On(event.TopicLayer, n, func(ev event.Event) { f.events = append(f.events, ev.Name) })
	}
	return f
}

func TestNew(t *testing.T) {
	f := newMap(t, nil)

	assert.InDelta(t, home.Lat, f.m.GetCenter().Lat, 1e-9)
	assert.InDelta(t, home.Lng, f.m.GetCenter().Lng, 1e-9)
	assert.Equal(t, 4.0, f.m.GetZoom())
	assert.Equal(t, 0.0, f.m.GetMinZoom())
	assert.Equal(t, 20.0, f.m.GetMaxZoom())
	assert.Equal(t, string(bing.Auto), f.engine.MapType())
	assert.Equal(t, []string{"© Microsoft"}, f.m.Attribution())

	st := f.m.State()
	assert.Equal(t, bing.Name, st.Provider)
	assert.Equal(t, layer.DefaultBaseCode, st.Base)
	assert.Equal(t, 4.0, st.Snapshot.Zoom)
	assert.False(t, st.Gesture.ZoomStartReported)

	t.Run("bad initial layer", func(t *testing.T) {
		l := loop.NewManual(time.Unix(0, 0))
		e := sim.New(sim.Options{Loop: l})
		_, err := service.New(service.Options{
			Provider: bing.New(sim.NewBing(e), bing.Options{}),
			Renderer: sim.NewRenderer(),
			Loop:     l,
			Layers:   []layer.Config{{Type: layer.TypeZoomify, URL: "https://img"}},
			Logger:   zerolog.Nop(),
		})
		assert.ErrorIs(t, err, layer.ErrMissingDimensions)
	})
}

func TestRestrictZoom(t *testing.T) {
	f := newMap(t, func(o *service.Options) {
		o.Zoom = 10
		o.RestrictZoom = &zoom.Restrict{Min: zoom.Level(2), Max: zoom.Auto()}
	})
	assert.Equal(t, 3.0, f.m.GetMinZoom())
	assert.Equal(t, 10.0, f.m.GetMaxZoom())

	f.engine.ZoomTo(15)
	f.loop.Advance(time.Second)
	assert.Equal(t, 10.0, f.engine.Zoom())
	assert.Equal(t, 1, count(f.events, event.ZoomStart))

	f.events = nil
	f.m.Zoom(1)
	f.loop.Advance(time.Second)
	assert.Equal(t, 3.0, f.engine.Zoom())
	assert.Equal(t, 1, count(f.events, event.ViewChangeEnd))

	t.Run("auto resolves from the applied zoom", func(t *testing.T) {
		f := newMap(t, func(o *service.Options) {
			o.Zoom = 25
			o.RestrictZoom = &zoom.Restrict{Max: zoom.Auto()}
		})
		assert.Equal(t, float64(sim.NativeMaxZoom), f.engine.Zoom())
		assert.Equal(t, float64(sim.NativeMaxZoom), f.m.GetMaxZoom())
	})
}

func count(names []event.Name, n event.Name) int {
	c := 0
	for _, x := range names {
		if x == n {
			c++
		}
	}
	return c
}

func TestCenterAndZoom(t *testing.T) {
	f := newMap(t, nil)

	calls := 0
	cb := func() { calls++ }

	f.m.CenterAndZoom(f.m.GetCenter(), 4, cb)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, f.loop.Pending())

	target := geo.LatLng{Lat: 40, Lng: -100}
	f.m.CenterAndZoom(target, 6, cb)
	f.loop.Advance(sim.AnimationFrames * sim.FrameInterval)
	assert.False(t, f.engine.Animating())
	assert.Equal(t, 1, calls)

	f.loop.Advance(service.SettleDelay - time.Millisecond)
	assert.Equal(t, 1, calls)
	f.loop.Advance(time.Millisecond)
	assert.Equal(t, 2, calls)
	assert.InDelta(t, target.Lat, f.m.GetCenter().Lat, 1e-6)
	assert.Equal(t, 6.0, f.m.GetZoom())

	// the callback fires once, not on later view changes
	f.m.ZoomOut()
	f.loop.Advance(time.Second)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 5.0, f.m.GetZoom())

	f.m.ToInitialExtent()
	f.loop.Advance(time.Second)
	assert.Equal(t, 4.0, f.m.GetZoom())
	assert.InDelta(t, home.Lng, f.m.GetCenter().Lng, 1e-6)
}

func TestZoomIn(t *testing.T) {
	f := newMap(t, nil)

	f.m.ZoomIn(false)
	f.loop.Advance(time.Second)
	assert.Equal(t, 5.0, f.m.GetZoom())
	assert.InDelta(t, home.Lng, f.m.GetCenter().Lng, 1e-6)

	f.page.SetElement(service.ClickDotID, geo.Pixel{X: 410, Y: 120}, 10, 10)
	want := f.m.Provider().PixelToLatLng(geo.Pixel{X: 405, Y: 105})
	f.m.ZoomIn(true)
	f.loop.Advance(time.Second)
	assert.Equal(t, 6.0, f.m.GetZoom())
	assert.InDelta(t, want.Lat, f.m.GetCenter().Lat, 1e-6)
	assert.InDelta(t, want.Lng, f.m.GetCenter().Lng, 1e-6)
}

func assertPixel(t *testing.T, want, got geo.Pixel) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-6)
	assert.InDelta(t, want.Y, got.Y, 1e-6)
}

func TestClickDot(t *testing.T) {
	f := newMap(t, nil)

	f.m.PositionClickDot(home)
	assertPixel(t, geo.Pixel{X: 410, Y: 320}, f.page.ElementOffset(service.ClickDotID))
	ll := f.m.ClickDotLatLng()
	assert.InDelta(t, home.Lat, ll.Lat, 1e-6)
	assert.InDelta(t, home.Lng, ll.Lng, 1e-6)

	marker := f.m.CreateMarker(home, &style.MarkerStyle{URL: "pin.png", Height: style.Float(20), Width: style.Float(10)})
	f.m.AddShape(marker)
	anchor, ok := f.m.MarkerAnchor(marker)
	require.True(t, ok)
	assert.Equal(t, geo.Pixel{X: 5, Y: 10}, anchor)
	require.True(t, f.m.PositionClickDotOnMarker(marker))
	assertPixel(t, geo.Pixel{X: 410, Y: 310}, f.page.ElementOffset(service.ClickDotID))
	above := f.m.Provider().PixelToLatLng(geo.Pixel{X: 400, Y: 290})
	ll = f.m.ClickDotLatLng()
	assert.InDelta(t, above.Lat, ll.Lat, 1e-6)
	assert.Greater(t, ll.Lat, home.Lat)

	line := f.m.CreateLine([]geo.LatLng{{Lat: 0, Lng: 0}, {Lat: 1, Lng: 1}}, nil)
	assert.False(t, f.m.PositionClickDotOnMarker(line))
	assertPixel(t, geo.Pixel{X: 410, Y: 310}, f.page.ElementOffset(service.ClickDotID))

	t.Run("zoom to the positioned dot", func(t *testing.T) {
		f := newMap(t, nil)
		f.page.SetElement(service.ClickDotID, geo.Pixel{}, 0, 0)
		target := geo.LatLng{Lat: 41, Lng: -92}
		f.m.PositionClickDot(target)
		f.m.ZoomIn(true)
		f.loop.Advance(time.Second)
		assert.InDelta(t, target.Lat, f.m.GetCenter().Lat, 1e-6)
		assert.InDelta(t, target.Lng, f.m.GetCenter().Lng, 1e-6)
	})
}

func TestMarkerOptions(t *testing.T) {
	f := newMap(t, nil)
	marker := f.m.CreateMarker(home, nil)
	f.m.AddShape(marker)

	icon, hidden := "over.png", false
	f.m.SetMarkerOptions(marker, provider.MarkerOptions{Icon: &icon, Visible: &hidden})
	assert.Equal(t, "over.png", f.m.Provider().MarkerIcon(marker))
	assert.False(t, f.m.Provider().ShapeVisible(marker))
}

func TestTriggerEvent(t *testing.T) {
	f := newMap(t, nil)
	f.events = nil

	f.m.TriggerEvent(provider.Click, &provider.PointerEvent{Pixel: geo.Pixel{X: 400, Y: 300}, Primary: true})
	assert.Empty(t, f.events)
	f.loop.Advance(time.Second)
	assert.Equal(t, []event.Name{event.Click}, f.events)

	e := &provider.PointerEvent{Pixel: geo.Pixel{X: 400, Y: 300}}
	f.m.TriggerEvent(provider.RightClick, e)
	assert.True(t, e.Handled)
}

func TestFit(t *testing.T) {
	t.Run("bounds", func(t *testing.T) {
		f := newMap(t, nil)
		f.m.ToBounds(geo.Bounds{N: 10, S: -10, E: 10, W: -10})
		f.loop.Advance(time.Second)
		assert.Equal(t, 5.0, f.m.GetZoom())
		assert.True(t, f.m.IsLatLngWithinMapBounds(geo.LatLng{}))
		assert.False(t, f.m.IsLatLngWithinMapBounds(geo.LatLng{Lat: 60}))
	})

	t.Run("markers", func(t *testing.T) {
		f := newMap(t, nil)
		shapes := []provider.Shape{
			f.m.CreateMarker(geo.LatLng{Lat: 10, Lng: 10}, nil),
			f.m.CreateLine([]geo.LatLng{{Lat: 60, Lng: 60}, {Lat: 61, Lng: 61}}, nil),
			f.m.CreateMarker(geo.LatLng{Lat: -10, Lng: -10}, nil),
		}
		f.m.ToMarkers(shapes)
		f.loop.Advance(time.Second)
		assert.Equal(t, 5.0, f.m.GetZoom())
		assert.InDelta(t, 0, f.m.GetCenter().Lng, 1e-6)
	})

	t.Run("no points", func(t *testing.T) {
		f := newMap(t, nil)
		f.m.ToLatLngs(nil)
		assert.Equal(t, 0, f.loop.Pending())
	})
}

func TestPanByPixels(t *testing.T) {
	f := newMap(t, nil)
	origin := f.m.GetCenter()

	done := false
	f.m.PanByPixels(50, 0, func() { done = true })
	assert.True(t, done)
	f.loop.Advance(time.Second)
	assert.InDelta(t, 450, f.m.Provider().LatLngToPixel(origin).X, 1e-6)

	f.events = nil
	f.m.PanByPixels(0, -40, nil)
	f.loop.Advance(time.Second)
	px := f.m.Provider().LatLngToPixel(origin)
	assert.InDelta(t, 450, px.X, 1e-6)
	assert.InDelta(t, 260, px.Y, 1e-6)
	assert.Equal(t, []event.Name{event.ViewChangeStart, event.PanStart, event.PanEnd, event.ViewChangeEnd}, f.events)
}

func TestShapes(t *testing.T) {
	f := newMap(t, nil)
	p := f.m.Provider()

	marker := f.m.CreateMarker(home, nil)
	assert.Equal(t, "https://example.test/resources/img/markers/brown-circle-13x13.png", p.MarkerIcon(marker))
	custom := f.m.CreateMarker(home, &style.MarkerStyle{URL: "pin.png", Height: style.Float(10), Width: style.Float(10)})
	assert.Equal(t, "pin.png", p.MarkerIcon(custom))

	poly := f.m.CreatePolygon([]geo.LatLng{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}, {Lat: 1, Lng: 1}}, &style.PolygonStyle{FillColor: "ff0000"})
	for _, s := range []provider.Shape{marker, poly} {
		f.m.AddShape(s)
	}
	assert.Len(t, f.engine.Items(), 2)

	f.m.HideShape(poly)
	assert.False(t, p.ShapeVisible(poly))
	f.m.ShowShape(poly)
	assert.True(t, p.ShapeVisible(poly))

	f.m.RemoveShape(marker)
	assert.Len(t, f.engine.Items(), 1)
}

func TestTileLayers(t *testing.T) {
	f := newMap(t, nil)

	tl := f.m.AddTileLayer(provider.TileSource{URL: provider.TemplateURL("https://t/{z}/{x}/{y}.png", nil), Opacity: 0.5})
	assert.Len(t, f.engine.Items(), 1)
	f.m.HideTileLayer(tl)
	f.m.ShowTileLayer(tl)
	assert.ErrorIs(t, f.m.ReloadTileLayer(tl), provider.ErrUnsupported)
	f.m.RemoveTileLayer(tl)
	assert.Empty(t, f.engine.Items())
}

func TestLayers(t *testing.T) {
	f := newMap(t, nil)

	cfg := &layer.Config{
		Type:        layer.TypeNativeVectors,
		Attribution: "National Park Service",
		Shapes:      []layer.NativeShape{{Kind: "marker", Points: []geo.LatLng{home}}},
	}
	require.NoError(t, f.m.AddLayer(cfg))
	assert.Regexp(t, `^Layer_\d+$`, cfg.Name)
	assert.Equal(t, []event.Name{event.BeforeAdd, event.Added}, f.events)
	assert.Equal(t, []string{"© Microsoft", "National Park Service"}, f.m.Attribution())

	_, err := f.m.HideLayer(cfg.Name)
	require.NoError(t, err)
	assert.Equal(t, []string{"© Microsoft"}, f.m.Attribution())
	_, err = f.m.ShowLayer(cfg.Name)
	require.NoError(t, err)

	err = f.m.AddLayer(&layer.Config{Type: layer.TypeGeoJson, Name: cfg.Name, Data: `{"type":"FeatureCollection","features":[]}`})
	assert.ErrorIs(t, err, layer.ErrDuplicateName)

	f.events = nil
	_, err = f.m.RemoveLayer(cfg.Name)
	require.NoError(t, err)
	assert.Equal(t, []event.Name{event.BeforeRemove, event.Removed}, f.events)
	assert.Equal(t, []string{"© Microsoft"}, f.m.Attribution())
	assert.Empty(t, f.engine.Items())

	_, err = f.m.HideLayer(cfg.Name)
	assert.ErrorIs(t, err, layer.ErrNotFound)
}

func TestSwitchBaseLayer(t *testing.T) {
	hidden := false
	f := newMap(t, func(o *service.Options) {
		o.BaseLayers = []layer.BaseConfig{{Code: "road"}, {Code: "aerial", Visible: &hidden}}
	})
	assert.Equal(t, string(bing.Road), f.engine.MapType())
	assert.Equal(t, []string{"© Microsoft", "© HERE"}, f.m.Attribution())

	b, err := f.m.SwitchBaseLayer("aerial")
	require.NoError(t, err)
	assert.Equal(t, "aerial", b.Code)
	assert.Equal(t, string(bing.Aerial), f.engine.MapType())
	assert.Equal(t, []string{"© Maxar"}, f.m.Attribution())

	_, err = f.m.SwitchBaseLayer("birdseye")
	assert.ErrorIs(t, err, layer.ErrNotFound)
	assert.Equal(t, string(bing.Aerial), f.engine.MapType())

	native, ok := f.m.MatchBaseLayer("birdseye")
	require.True(t, ok)
	assert.Equal(t, string(bing.Birdseye), native.Native)
	_, ok = f.m.MatchBaseLayer("topo")
	assert.False(t, ok)
}

func TestClicks(t *testing.T) {
	f := newMap(t, nil)
	center := geo.Pixel{X: 400, Y: 300}

	var routed []*provider.PointerEvent
	require.NoError(t, f.m.AddLayer(&layer.Config{
		Type: layer.TypeTiled, URL: "https://t/{z}/{x}/{y}.png",
		OnClick: func(_ *layer.Config, e *provider.PointerEvent) { routed = append(routed, e) },
	}))
	f.events = nil

	f.engine.Click(center)
	f.loop.Advance(349 * time.Millisecond)
	assert.Empty(t, f.events)
	f.loop.Advance(time.Millisecond)
	assert.Equal(t, []event.Name{event.Click}, f.events)
	require.Len(t, routed, 1)
	ll := f.m.EventLatLng(routed[0])
	assert.InDelta(t, home.Lat, ll.Lat, 1e-6)
	assert.InDelta(t, home.Lng, ll.Lng, 1e-6)

	f.events = nil
	f.engine.DoubleClick(center)
	f.loop.Advance(time.Second)
	assert.Equal(t, 1, count(f.events, event.DblClick))
	assert.Zero(t, count(f.events, event.Click))
	assert.Equal(t, 5.0, f.m.GetZoom())
	assert.Len(t, routed, 1)
}

func TestHandleResize(t *testing.T) {
	f := newMap(t, nil)
	f.page.SetElement(service.ContainerID, geo.Pixel{}, 1024, 768)
	f.m.HandleResize()
	w, h := f.engine.Size()
	assert.Equal(t, 1024.0, w)
	assert.Equal(t, 768.0, h)
}

func TestDo(t *testing.T) {
	f := newMap(t, nil)
	var z float64
	err := f.m.Do(context.Background(), func(m *service.Map) error {
		z = m.GetZoom()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 4.0, z)
}

func TestHandleKey(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		f := newMap(t, nil)
		assert.False(t, f.m.HandleKey("ArrowUp"))
		assert.Zero(t, f.loop.Pending())
	})

	f := newMap(t, func(o *service.Options) { o.Keyboard = true })
	origin := f.m.GetCenter()

	assert.True(t, f.m.HandleKey("ArrowUp"))
	f.loop.Advance(time.Second)
	px := f.m.Provider().LatLngToPixel(origin)
	assert.InDelta(t, 400, px.X, 1e-6)
	assert.InDelta(t, 300+service.KeyPanStep, px.Y, 1e-6)
	assert.Greater(t, f.m.GetCenter().Lat, origin.Lat)

	assert.True(t, f.m.HandleKey("+"))
	f.loop.Advance(time.Second)
	assert.Equal(t, 5.0, f.m.GetZoom())

	assert.True(t, f.m.HandleKey("-"))
	f.loop.Advance(time.Second)
	assert.Equal(t, 4.0, f.m.GetZoom())

	assert.False(t, f.m.HandleKey("q"))
}
