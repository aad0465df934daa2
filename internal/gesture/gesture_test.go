package gesture

import (
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-map/internal/event"
	"github.com/joeblew999/plat-map/internal/geo"
	"github.com/joeblew999/plat-map/internal/loop"
	"github.com/joeblew999/plat-map/internal/provider"
	"github.com/joeblew999/plat-map/internal/provider/sim"
	"github.com/joeblew999/plat-map/internal/zoom"
)

type fakeView struct {
	center       geo.LatLng
	zoom         float64
	unrestricted bool
	sets         []provider.View
}

func (f *fakeView) Center() geo.LatLng          { return f.center }
func (f *fakeView) Zoom() float64               { return f.zoom }
func (f *fakeView) BaseLayerUnrestricted() bool { return f.unrestricted }

func (f *fakeView) SetView(v provider.View) {
	f.sets = append(f.sets, v)
	if v.Center != nil {
		f.center = *v.Center
	}
	if v.Zoom != nil {
		f.zoom = *v.Zoom
	}
}

var viewNames = []event.Name{
	event.PanStart, event.Panning, event.PanEnd,
	event.ZoomStart, event.Zooming, event.ZoomEnd,
	event.ViewChangeStart, event.ViewChanging, event.ViewChangeEnd,
}

var pointerNames = []event.Name{
	event.Click, event.ShapeClick, event.DblClick, event.MouseDown, event.MouseMove,
	event.MouseOut, event.MouseOver, event.MouseUp, event.RightClick,
}

func record(bus *event.Bus, names []event.Name) *[]event.Event {
	var got []event.Event
	for _, n := range names {
		bus.On(event.TopicMap, n, func(e event.Event) { got = append(got, e) })
	}
	return &got
}

func names(evs []event.Event) []event.Name {
	out := make([]event.Name, len(evs))
	for i, e := range evs {
		out[i] = e.Name
	}
	return out
}

func newTracker(v *fakeView, guard *zoom.Guard) (*Tracker, *[]event.Event, *ClickState, *int) {
	bus := event.NewBus()
	got := record(bus, viewNames)
	click := &ClickState{}
	refreshed := 0
	t := NewTracker(TrackerOptions{
		View:        v,
		Bus:         bus,
		Guard:       guard,
		Click:       click,
		Attribution: func() { refreshed++ },
	})
	return t, got, click, &refreshed
}

func TestTrackerPan(t *testing.T) {
	v := &fakeView{center: geo.LatLng{Lat: 39, Lng: -96}, zoom: 4}
	tr, got, click, refreshed := newTracker(v, nil)

	tr.Handle(provider.ViewStart)
	for i := 1; i <= 3; i++ {
		v.center.Lng = -96 + float64(i)
		tr.Handle(provider.ViewChanging)
	}
	assert.True(t, tr.State().PanStartReported)
	assert.False(t, tr.State().ZoomStartReported)
	tr.Handle(provider.ViewEnd)

	assert.Equal(t, []event.Name{
		event.ViewChangeStart,
		event.PanStart, event.Panning, event.ViewChanging,
		event.Panning, event.ViewChanging,
		event.Panning, event.ViewChanging,
		event.PanEnd, event.ViewChangeEnd,
	}, names(*got))
	assert.Equal(t, GestureState{}, tr.State())
	assert.Equal(t, ViewState{Center: geo.LatLng{Lat: 39, Lng: -93}, Zoom: 4}, tr.Snapshot())
	assert.True(t, click.ViewChanged)
	assert.Equal(t, 1, *refreshed)

	last := (*got)[len(*got)-1]
	assert.Equal(t, ViewState{Center: geo.LatLng{Lat: 39, Lng: -93}, Zoom: 4}, last.Payload)
}

func TestTrackerZoom(t *testing.T) {
	v := &fakeView{center: geo.LatLng{Lat: 39, Lng: -96}, zoom: 4}
	tr, got, _, _ := newTracker(v, nil)

	tr.Handle(provider.ViewStart)
	v.zoom = 4.5
	tr.Handle(provider.ViewChanging)
	v.zoom, v.center.Lat = 5, 40
	tr.Handle(provider.ViewChanging)
	tr.Handle(provider.ViewEnd)

	assert.Equal(t, []event.Name{
		event.ViewChangeStart,
		event.ZoomStart, event.Zooming, event.ViewChanging,
		event.Zooming, event.ViewChanging,
		event.ZoomEnd, event.ViewChangeEnd,
	}, names(*got))

	t.Run("flags reset so the next gesture starts again", func(t *testing.T) {
		*got = nil
		tr.Handle(provider.ViewStart)
		v.zoom = 6
		tr.Handle(provider.ViewChanging)
		tr.Handle(provider.ViewEnd)
		assert.Equal(t, []event.Name{
			event.ViewChangeStart, event.ZoomStart, event.Zooming, event.ViewChanging, event.ZoomEnd, event.ViewChangeEnd,
		}, names(*got))
	})
}

func TestTrackerNoMovement(t *testing.T) {
	v := &fakeView{center: geo.LatLng{Lat: 1, Lng: 2}, zoom: 7}
	tr, got, _, _ := newTracker(v, nil)

	tr.Handle(provider.ViewStart)
	v.center.Lat += 1e-12
	tr.Handle(provider.ViewChanging)
	tr.Handle(provider.ViewEnd)
	assert.Equal(t, []event.Name{event.ViewChangeStart, event.ViewChanging, event.ViewChangeEnd}, names(*got))
}

func TestTrackerIgnoresUndefinedView(t *testing.T) {
	v := &fakeView{center: geo.LatLng{Lat: 1, Lng: 2}, zoom: 7}
	tr, got, _, _ := newTracker(v, nil)

	tr.Handle(provider.ViewStart)
	v.zoom = math.NaN()
	tr.Handle(provider.ViewChanging)
	tr.Handle(provider.ViewEnd)
	assert.Equal(t, []event.Name{event.ViewChangeStart}, names(*got))
	assert.Equal(t, 7.0, tr.Snapshot().Zoom)
}

func TestTrackerGuard(t *testing.T) {
	newGuard := func(current float64) *zoom.Guard {
		g := zoom.NewGuard(zerolog.Nop())
		g.Configure(&zoom.Restrict{Min: zoom.Level(2), Max: zoom.Auto()}, current)
		return g
	}

	t.Run("above max resets to max around the old center", func(t *testing.T) {
		v := &fakeView{center: geo.LatLng{Lat: 39, Lng: -96}, zoom: 10}
		tr, _, _, _ := newTracker(v, newGuard(10))

		tr.Handle(provider.ViewStart)
		v.zoom, v.center = 15, geo.LatLng{Lat: 41, Lng: -90}
		tr.Handle(provider.ViewChanging)

		require.Len(t, v.sets, 1)
		assert.Equal(t, 10.0, *v.sets[0].Zoom)
		assert.Equal(t, geo.LatLng{Lat: 39, Lng: -96}, *v.sets[0].Center)
		assert.False(t, v.sets[0].Animate)

		tr.Handle(provider.ViewChanging)
		assert.Len(t, v.sets, 1, "in range is a no-op")
	})

	t.Run("below min", func(t *testing.T) {
		v := &fakeView{zoom: 10}
		tr, _, _, _ := newTracker(v, newGuard(10))
		tr.Handle(provider.ViewStart)
		v.zoom = 1
		tr.Handle(provider.ViewChanging)
		require.Len(t, v.sets, 1)
		assert.Equal(t, 3.0, v.zoom)
	})

	t.Run("unrestricted base layer may exceed max", func(t *testing.T) {
		v := &fakeView{zoom: 10, unrestricted: true}
		tr, _, _, _ := newTracker(v, newGuard(10))
		tr.Handle(provider.ViewStart)
		v.zoom = 19
		tr.Handle(provider.ViewChanging)
		assert.Empty(t, v.sets)
	})
}

type testShape struct {
	data provider.ShapeData
	icon string
}

func (s *testShape) Kind() provider.ShapeKind  { return provider.KindMarker }
func (s *testShape) Data() *provider.ShapeData { return &s.data }

type icons struct{}

func (icons) MarkerIcon(s provider.Shape) string         { return s.(*testShape).icon }
func (icons) SetMarkerIcon(s provider.Shape, url string) { s.(*testShape).icon = url }

func newClicks() (*Clicks, *loop.Manual, *sim.Renderer, *[]event.Event) {
	l := loop.NewManual(time.Unix(0, 0))
	bus := event.NewBus()
	got := record(bus, pointerNames)
	r := sim.NewRenderer()
	c := NewClicks(ClicksOptions{Loop: l, Bus: bus, Renderer: r, Markers: icons{}})
	return c, l, r, got
}

func onMap() *provider.PointerEvent {
	return &provider.PointerEvent{OnMap: true, Primary: true, Native: &provider.DOMEvent{Type: "click"}}
}

func TestClick(t *testing.T) {
	t.Run("single click fires once after the window", func(t *testing.T) {
		c, l, _, got := newClicks()
		c.Handle(provider.MouseDown, onMap())
		c.Handle(provider.MouseUp, onMap())
		c.Handle(provider.Click, onMap())

		l.Advance(SuppressDelay - time.Millisecond)
		assert.NotContains(t, names(*got), event.Click)
		l.Advance(time.Millisecond)
		assert.Equal(t, []event.Name{event.MouseDown, event.MouseUp, event.Click}, names(*got))
	})

	t.Run("double click suppresses the click", func(t *testing.T) {
		c, l, _, got := newClicks()
		c.Handle(provider.Click, onMap())
		l.Advance(100 * time.Millisecond)
		c.Handle(provider.Click, onMap())
		c.Handle(provider.DblClick, onMap())
		l.Advance(time.Second)
		assert.Equal(t, []event.Name{event.DblClick}, names(*got))
	})

	t.Run("view change suppresses the click", func(t *testing.T) {
		c, l, _, got := newClicks()
		c.Handle(provider.MouseDown, onMap())
		c.Handle(provider.Click, onMap())
		c.State().ViewChanged = true
		l.Advance(time.Second)
		assert.NotContains(t, names(*got), event.Click)
	})

	t.Run("secondary pointer is ignored", func(t *testing.T) {
		c, l, _, got := newClicks()
		e := onMap()
		e.Primary = false
		c.Handle(provider.Click, e)
		l.Advance(time.Second)
		assert.Empty(t, *got)
	})

	t.Run("shape click runs the handler", func(t *testing.T) {
		c, l, _, got := newClicks()
		var clicked provider.Shape
		s := &testShape{data: provider.ShapeData{Handler: func(s provider.Shape) { clicked = s }}}
		c.Handle(provider.Click, &provider.PointerEvent{Target: s, Primary: true})
		l.Advance(time.Second)
		assert.Same(t, s, clicked)
		assert.Equal(t, []event.Name{event.ShapeClick}, names(*got))
	})

	t.Run("click-through shape behaves as the map", func(t *testing.T) {
		c, l, _, got := newClicks()
		s := &testShape{data: provider.ShapeData{ClickThrough: true}}
		c.Handle(provider.Click, &provider.PointerEvent{Target: s, Primary: true})
		l.Advance(time.Second)
		assert.Equal(t, []event.Name{event.Click}, names(*got))
	})
}

func TestPointerCursor(t *testing.T) {
	c, _, r, got := newClicks()
	s := &testShape{icon: "pin.png", data: provider.ShapeData{OverIcon: "pin-over.png"}}

	c.Handle(provider.MouseMove, &provider.PointerEvent{Target: s, Primary: true})
	assert.Equal(t, CursorPointer, r.Cursor())
	assert.Equal(t, "pin-over.png", s.icon)

	c.Handle(provider.MouseMove, onMap())
	assert.Equal(t, CursorAuto, r.Cursor())
	assert.Equal(t, "pin.png", s.icon)

	down := onMap()
	down.Native.ShiftKey = true
	c.Handle(provider.MouseDown, down)
	assert.True(t, down.Handled)
	assert.Equal(t, CursorMove, r.Cursor())

	c.Handle(provider.MouseMove, &provider.PointerEvent{Target: s, Primary: true})
	assert.Equal(t, CursorMove, r.Cursor())
	assert.Equal(t, "pin.png", s.icon)

	c.Handle(provider.MouseUp, onMap())
	assert.Equal(t, CursorAuto, r.Cursor())
	assert.False(t, c.State().MouseDown)

	right := onMap()
	c.Handle(provider.RightClick, right)
	assert.True(t, right.Handled)

	c.Handle(provider.MouseOut, onMap())
	c.Handle(provider.MouseOver, onMap())
	assert.Equal(t, []event.Name{
		event.MouseMove, event.MouseMove, event.MouseDown, event.MouseMove, event.MouseUp,
		event.RightClick, event.MouseOut, event.MouseOver,
	}, names(*got))
}
