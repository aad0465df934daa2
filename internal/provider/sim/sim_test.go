package sim

import (
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-map/internal/geo"
	"github.com/joeblew999/plat-map/internal/loop"
	"github.com/joeblew999/plat-map/internal/provider"
	"github.com/joeblew999/plat-map/internal/provider/bing"
	"github.com/joeblew999/plat-map/internal/provider/leaflet"
)

func newEngine(t *testing.T) (*Engine, *loop.Manual) {
	t.Helper()
	l := loop.NewManual(time.Unix(0, 0))
	return New(Options{Loop: l, Zoom: 3}), l
}

func recordPhases(e *Engine) *[]provider.ViewPhase {
	var got []provider.ViewPhase
	e.Listen(Listener{View: func(p provider.ViewPhase) { got = append(got, p) }})
	return &got
}

func TestProjection(t *testing.T) {
	e, _ := newEngine(t)

	assert.Equal(t, geo.Pixel{X: 400, Y: 300}, e.LatLngToPixel(geo.LatLng{}))

	for _, ll := range []geo.LatLng{{Lat: 51.5, Lng: -0.12}, {Lat: -33.9, Lng: 18.4}, {Lat: 40, Lng: 100}} {
		got := e.PixelToLatLng(e.LatLngToPixel(ll))
		assert.InDelta(t, ll.Lat, got.Lat, 1e-6, ll.String())
		assert.InDelta(t, ll.Lng, got.Lng, 1e-6, ll.String())
	}

	t.Run("shortest way round", func(t *testing.T) {
		e, _ := newEngine(t)
		e.center = geo.LatLng{Lng: 179}
		px := e.LatLngToPixel(geo.LatLng{Lng: -179})
		assert.Greater(t, px.X, 400.0)
		assert.Less(t, px.X, 450.0)
	})

	t.Run("latitude clamps at the mercator limit", func(t *testing.T) {
		assert.InDelta(t, MaxLatitude, e.PixelToLatLng(geo.Pixel{X: 400, Y: -1e6}).Lat, 1e-9)
	})
}

func TestSetView(t *testing.T) {
	t.Run("immediate", func(t *testing.T) {
		e, l := newEngine(t)
		phases := recordPhases(e)
		z := 5.0
		e.SetView(provider.View{Center: &geo.LatLng{Lat: 10, Lng: 20}, Zoom: &z})

		assert.Equal(t, 3.0, e.Zoom())
		assert.True(t, e.Animating())
		l.Advance(0)
		assert.Equal(t, 5.0, e.Zoom())
		assert.Equal(t, []provider.ViewPhase{provider.ViewStart, provider.ViewChanging, provider.ViewEnd}, *phases)
		assert.False(t, e.Animating())
		assert.Equal(t, 0, l.Pending())
	})

	t.Run("animated", func(t *testing.T) {
		e, l := newEngine(t)
		phases := recordPhases(e)
		z := 6.0
		e.SetView(provider.View{Zoom: &z, Animate: true})

		l.Advance(FrameInterval)
		assert.Greater(t, e.Zoom(), 3.0)
		assert.Less(t, e.Zoom(), 6.0)

		l.Advance(AnimationFrames * FrameInterval)
		assert.Equal(t, 6.0, e.Zoom())
		require.Len(t, *phases, AnimationFrames+2)
		assert.Equal(t, provider.ViewStart, (*phases)[0])
		assert.Equal(t, provider.ViewEnd, (*phases)[AnimationFrames+1])
	})

	t.Run("request during a gesture replaces its frames", func(t *testing.T) {
		e, l := newEngine(t)
		var phases []provider.ViewPhase
		corrected := false
		e.Listen(Listener{View: func(p provider.ViewPhase) {
			phases = append(phases, p)
			if p == provider.ViewChanging && !corrected {
				corrected = true
				z := 10.0
				e.SetView(provider.View{Zoom: &z})
			}
		}})
		z := 15.0
		e.SetView(provider.View{Zoom: &z, Animate: true})
		l.Advance(time.Second)

		assert.Equal(t, []provider.ViewPhase{
			provider.ViewStart, provider.ViewChanging, provider.ViewChanging, provider.ViewEnd,
		}, phases)
		assert.Equal(t, 10.0, e.Zoom())
	})

	t.Run("fit bounds", func(t *testing.T) {
		e, l := newEngine(t)
		e.SetView(provider.View{Bounds: &geo.Bounds{N: 10, S: -10, E: 10, W: -10}})
		l.Advance(0)
		assert.Equal(t, 5.0, e.Zoom())
		assert.InDelta(t, 0, e.Center().Lat, 1e-9)
		assert.InDelta(t, 0, e.Center().Lng, 1e-9)
	})

	t.Run("zoom clamps to the native range", func(t *testing.T) {
		e, l := newEngine(t)
		z := 40.0
		e.SetView(provider.View{Zoom: &z})
		l.Advance(0)
		assert.Equal(t, float64(NativeMaxZoom), e.Zoom())
	})
}

func TestInput(t *testing.T) {
	t.Run("drag moves content by delta", func(t *testing.T) {
		e, l := newEngine(t)
		var kinds []provider.PointerKind
		e.Listen(Listener{Pointer: func(k provider.PointerKind, _ geo.Pixel, _ provider.DOMEvent, _ Item) bool {
			kinds = append(kinds, k)
			return false
		}})
		origin := e.Center()
		e.Drag(geo.Pixel{X: 400, Y: 300}, geo.Pixel{X: 100})
		l.Advance(time.Second)

		assert.Less(t, e.Center().Lng, 0.0)
		px := e.LatLngToPixel(origin)
		assert.InDelta(t, 500, px.X, 1e-6)
		assert.InDelta(t, 300, px.Y, 1e-6)
		assert.Equal(t, []provider.PointerKind{provider.MouseDown, provider.MouseMove, provider.MouseUp}, kinds)
	})

	t.Run("double click zooms in unless handled", func(t *testing.T) {
		e, l := newEngine(t)
		e.DoubleClick(geo.Pixel{X: 400, Y: 300})
		l.Advance(time.Second)
		assert.Equal(t, 4.0, e.Zoom())

		e.Listen(Listener{Pointer: func(k provider.PointerKind, _ geo.Pixel, _ provider.DOMEvent, _ Item) bool {
			return k == provider.DblClick
		}})
		e.DoubleClick(geo.Pixel{X: 400, Y: 300})
		l.Advance(time.Second)
		assert.Equal(t, 4.0, e.Zoom())
	})
}

func TestHitTest(t *testing.T) {
	t.Run("bing", func(t *testing.T) {
		e, _ := newEngine(t)
		m := NewBing(e)
		square := bing.NewPolygon([]bing.Location{
			{Latitude: 5, Longitude: -5}, {Latitude: 5, Longitude: 5},
			{Latitude: -5, Longitude: 5}, {Latitude: -5, Longitude: -5},
		}, bing.PolygonOptions{})
		pin := bing.NewPushpin(bing.Location{}, bing.PushpinOptions{Height: 20, Width: 10})
		m.Entities().Push(square)
		m.Entities().Push(pin)

		var got *bing.MouseEvent
		m.AddHandler("click", func(ev *bing.MouseEvent) { got = ev })

		e.Click(geo.Pixel{X: 404, Y: 308})
		require.NotNil(t, got)
		assert.Equal(t, "pushpin", got.TargetType)
		assert.Same(t, pin, got.Target)

		e.Click(geo.Pixel{X: 410, Y: 300})
		assert.Equal(t, "polygon", got.TargetType)

		e.Click(geo.Pixel{X: 10, Y: 10})
		assert.Equal(t, "map", got.TargetType)
		assert.Nil(t, got.Target)

		square.SetVisible(false)
		e.Click(geo.Pixel{X: 410, Y: 300})
		assert.Equal(t, "map", got.TargetType)
	})

	t.Run("leaflet", func(t *testing.T) {
		e, _ := newEngine(t)
		m := NewLeaflet(e)
		line := leaflet.NewPolyline(orb.LineString{{-20, 0}, {20, 0}}, leaflet.PathOptions{})
		m.AddLayer(line)

		var got *leaflet.MouseEvent
		m.On("contextmenu", func(ev *leaflet.MouseEvent) { got = ev })

		e.RightClick(geo.Pixel{X: 450, Y: 302})
		require.NotNil(t, got)
		assert.Same(t, line, got.Target)
		assert.Equal(t, 2, got.OriginalEvent.Button)

		e.RightClick(geo.Pixel{X: 450, Y: 320})
		assert.Nil(t, got.Target)

		m.RemoveLayer(line)
		assert.False(t, m.HasLayer(line))
		e.RightClick(geo.Pixel{X: 450, Y: 302})
		assert.Nil(t, got.Target)
	})
}

func TestLeafletHandlersAddedDuringDispatch(t *testing.T) {
	e, _ := newEngine(t)
	m := NewLeaflet(e)

	var first, late int
	m.On("contextmenu", func(*leaflet.MouseEvent) {
		first++
		if first == 1 {
			m.On("contextmenu", func(*leaflet.MouseEvent) { late++ })
		}
	})

	e.RightClick(geo.Pixel{X: 10, Y: 10})
	assert.Equal(t, 1, first)
	assert.Zero(t, late)

	e.RightClick(geo.Pixel{X: 10, Y: 10})
	assert.Equal(t, 2, first)
	assert.Equal(t, 1, late)
}

func TestSyntheticEvents(t *testing.T) {
	e, _ := newEngine(t)

	b := NewBing(e)
	var bingGot []*bing.MouseEvent
	b.AddHandler("click", func(ev *bing.MouseEvent) { bingGot = append(bingGot, ev) })
	b.Invoke("click", &bing.MouseEvent{EventName: "click", TargetType: "map", X: 5})
	b.Invoke("dblclick", &bing.MouseEvent{EventName: "dblclick"})
	require.Len(t, bingGot, 1)
	assert.Equal(t, 5.0, bingGot[0].X)

	l := NewLeaflet(e)
	var leafletGot []*leaflet.MouseEvent
	l.On("contextmenu", func(ev *leaflet.MouseEvent) {
		leafletGot = append(leafletGot, ev)
		ev.DefaultPrevented = true
	})
	ev := &leaflet.MouseEvent{Type: "contextmenu"}
	l.Fire("contextmenu", ev)
	require.Len(t, leafletGot, 1)
	assert.True(t, ev.DefaultPrevented)
}

func TestRenderer(t *testing.T) {
	r := NewRenderer()
	assert.Equal(t, "auto", r.Cursor())
	r.SetElement("map", geo.Pixel{X: 20, Y: 30}, 640, 480)
	assert.Equal(t, geo.Pixel{X: 20, Y: 30}, r.ElementOffset("map"))
	w, h := r.OuterDimensions("map")
	assert.Equal(t, 640.0, w)
	assert.Equal(t, 480.0, h)

	r.MoveElement("map", geo.Pixel{X: 5, Y: 6})
	assert.Equal(t, geo.Pixel{X: 5, Y: 6}, r.ElementOffset("map"))
	w, h = r.OuterDimensions("map")
	assert.Equal(t, 640.0, w)
	assert.Equal(t, 480.0, h)

	r.MoveElement("dot", geo.Pixel{X: 1, Y: 2})
	assert.Equal(t, geo.Pixel{X: 1, Y: 2}, r.ElementOffset("dot"))
	w, _ = r.OuterDimensions("dot")
	assert.Zero(t, w)

	r.SetCursor("pointer")
	r.SetCursor("")
	assert.Equal(t, []string{"pointer", ""}, r.CursorHistory())
}
