package gesture

import (
	"github.com/rs/zerolog"

	"github.com/joeblew999/plat-map/internal/event"
	"github.com/joeblew999/plat-map/internal/geo"
	"github.com/joeblew999/plat-map/internal/provider"
	"github.com/joeblew999/plat-map/internal/zoom"
)

// Viewport is the part of a provider the tracker reads and corrects.
type Viewport interface {
	Center() geo.LatLng
	Zoom() float64
	SetView(provider.View)
	BaseLayerUnrestricted() bool
}

// guardView lets the zoom guard drive a Viewport.
type guardView struct{ Viewport }

func (g guardView) Reset(center geo.LatLng, z float64) {
	g.SetView(provider.View{Center: &center, Zoom: &z})
}

func (g guardView) Unrestricted() bool { return g.BaseLayerUnrestricted() }

// TrackerOptions configures a Tracker.
type TrackerOptions struct {
	View Viewport
	Bus  *event.Bus
	// Guard corrects out-of-range zoom on every start and continuing callback. Nil disables it.
	Guard *zoom.Guard
	Click *ClickState
	// Attribution is called at the end of every gesture.
	Attribution func()
	Logger      zerolog.Logger
}

// Tracker synthesizes gesture events from raw view-change callbacks.
type Tracker struct {
	view        Viewport
	bus         *event.Bus
	guard       *zoom.Guard
	click       *ClickState
	attribution func()
	log         zerolog.Logger

	old   ViewState
	state GestureState
}

// NewTracker creates a Tracker and snapshots the current view.
func NewTracker(opts TrackerOptions) *Tracker {
	t := &Tracker{
		view:        opts.View,
		bus:         opts.Bus,
		guard:       opts.Guard,
		click:       opts.Click,
		attribution: opts.Attribution,
		log:         opts.Logger.With().Str("component", "tracker").Logger(),
	}
	if t.click == nil {
		t.click = &ClickState{}
	}
	t.old = t.current()
	return t
}

// Handle processes one raw view-change callback.
func (t *Tracker) Handle(p provider.ViewPhase) {
	cur := t.current()
	if !cur.valid() {
		t.log.Warn().Stringer("phase", p).Msg("ignoring view callback with undefined view")
		return
	}
	switch p {
	case provider.ViewStart:
		t.start(cur)
	case provider.ViewChanging:
		t.changing(cur)
	case provider.ViewEnd:
		t.end(cur)
	}
}

// State returns the gesture flags.
func (t *Tracker) State() GestureState { return t.state }

// Snapshot returns the view recorded at the last gesture boundary.
func (t *Tracker) Snapshot() ViewState { return t.old }

func (t *Tracker) current() ViewState {
	return ViewState{Center: t.view.Center(), Zoom: t.view.Zoom()}
}

func (t *Tracker) start(cur ViewState) {
	t.old = cur
	t.click.ViewChanged = true
	t.correct()
	t.emit(event.ViewChangeStart)
}

func (t *Tracker) changing(cur ViewState) {
	switch {
	case cur.Zoom != t.old.Zoom:
		if !t.state.ZoomStartReported {
			t.state.ZoomStartReported = true
			t.log.Debug().Float64("from", t.old.Zoom).Float64("to", cur.Zoom).Msg("zoom started")
			t.emit(event.ZoomStart)
		}
		t.emit(event.Zooming)
	case !geo.Equal(cur.Center, t.old.Center):
		if !t.state.PanStartReported {
			t.state.PanStartReported = true
			t.log.Debug().Stringer("from", t.old.Center).Msg("pan started")
			t.emit(event.PanStart)
		}
		t.emit(event.Panning)
	}
	t.click.ViewChanged = true
	t.correct()
	t.emit(event.ViewChanging)
}

func (t *Tracker) end(cur ViewState) {
	switch {
	case cur.Zoom != t.old.Zoom:
		t.emit(event.ZoomEnd)
	case !geo.Equal(cur.Center, t.old.Center):
		t.emit(event.PanEnd)
	}
	t.old = t.current()
	t.state = GestureState{}
	if t.attribution != nil {
		t.attribution()
	}
	t.emit(event.ViewChangeEnd)
}

func (t *Tracker) correct() {
	if t.guard != nil {
		t.guard.Correct(guardView{t.view}, t.old.Center)
	}
}

func (t *Tracker) emit(name event.Name) {
	t.bus.Emit(event.TopicMap, name, t.current())
}
