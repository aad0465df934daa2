package gesture

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/joeblew999/plat-map/internal/event"
	"github.com/joeblew999/plat-map/internal/loop"
	"github.com/joeblew999/plat-map/internal/provider"
)

// SuppressDelay is how long a click waits for a double-click before it is reported.
const SuppressDelay = 350 * time.Millisecond

// Cursors set while the pointer moves.
const (
	CursorAuto    = "auto"
	CursorMove    = "move"
	CursorPointer = "pointer"
)

// MarkerIcons reads and swaps marker icons for hover effects.
type MarkerIcons interface {
	MarkerIcon(provider.Shape) string
	SetMarkerIcon(s provider.Shape, url string)
}

// ClicksOptions configures Clicks.
type ClicksOptions struct {
	Loop     loop.Scheduler
	Bus      *event.Bus
	Renderer provider.Renderer
	// Markers enables hover icons. Nil disables them.
	Markers MarkerIcons
	State   *ClickState
	Delay   time.Duration // zero means SuppressDelay
	Logger  zerolog.Logger
}

// Clicks interprets raw pointer callbacks.
type Clicks struct {
	loop     loop.Scheduler
	bus      *event.Bus
	renderer provider.Renderer
	markers  MarkerIcons
	state    *ClickState
	delay    time.Duration
	log      zerolog.Logger

	// base is the cursor restored after clicks and mouse-up.
	base      string
	hover     provider.Shape
	hoverIcon string
}

// NewClicks creates Clicks. The renderer's current cursor becomes the base cursor.
func NewClicks(opts ClicksOptions) *Clicks {
	c := &Clicks{
		loop:     opts.Loop,
		bus:      opts.Bus,
		renderer: opts.Renderer,
		markers:  opts.Markers,
		state:    opts.State,
		delay:    opts.Delay,
		log:      opts.Logger.With().Str("component", "clicks").Logger(),
	}
	if c.state == nil {
		c.state = &ClickState{}
	}
	if c.delay <= 0 {
		c.delay = SuppressDelay
	}
	c.base = c.renderer.Cursor()
	return c
}

// State returns the shared click state.
func (c *Clicks) State() *ClickState { return c.state }

// Handle processes one raw pointer callback.
func (c *Clicks) Handle(kind provider.PointerKind, e *provider.PointerEvent) {
	if e == nil {
		c.log.Warn().Stringer("kind", kind).Msg("ignoring pointer callback without event")
		return
	}
	switch kind {
	case provider.Click:
		c.click(e)
	case provider.DblClick:
		c.state.DoubleClicked = true
		c.renderer.SetCursor(c.base)
		c.emit(event.DblClick, e)
	case provider.MouseDown:
		c.state.MouseDown = true
		c.state.ViewChanged = false
		c.renderer.SetCursor(CursorMove)
		c.emit(event.MouseDown, e)
		if e.Native != nil && e.Native.ShiftKey {
			e.Handled = true
		}
	case provider.MouseMove:
		c.move(e)
	case provider.MouseUp:
		c.state.MouseDown = false
		c.renderer.SetCursor(c.base)
		c.emit(event.MouseUp, e)
	case provider.MouseOut:
		c.emit(event.MouseOut, e)
	case provider.MouseOver:
		c.emit(event.MouseOver, e)
	case provider.RightClick:
		c.emit(event.RightClick, e)
		e.Handled = true
	}
}

func (c *Clicks) click(e *provider.PointerEvent) {
	c.state.DoubleClicked = false
	c.renderer.SetCursor(c.base)
	c.loop.AfterFunc(c.delay, func() {
		// Flags may have changed since the click was scheduled.
		if c.state.DoubleClicked || c.state.ViewChanged || !e.Primary {
			c.log.Debug().Bool("doubleClicked", c.state.DoubleClicked).Bool("viewChanged", c.state.ViewChanged).Msg("click suppressed")
			return
		}
		if throughToMap(e) {
			c.emit(event.Click, e)
			return
		}
		if h := e.Target.Data().Handler; h != nil {
			h(e.Target)
		}
		c.emit(event.ShapeClick, e)
	})
}

func throughToMap(e *provider.PointerEvent) bool {
	return e.OnMap || e.Target == nil || e.Target.Data().ClickThrough
}

func (c *Clicks) move(e *provider.PointerEvent) {
	if c.state.MouseDown {
		c.renderer.SetCursor(CursorMove)
		c.emit(event.MouseMove, e)
		return
	}
	c.renderer.SetCursor(CursorAuto)
	c.restoreIcon()
	if !throughToMap(e) {
		c.renderer.SetCursor(CursorPointer)
		if over := e.Target.Data().OverIcon; over != "" && c.markers != nil {
			c.hover, c.hoverIcon = e.Target, c.markers.MarkerIcon(e.Target)
			if c.hoverIcon != over {
				c.markers.SetMarkerIcon(e.Target, over)
			}
		}
	}
	c.base = c.renderer.Cursor()
	c.emit(event.MouseMove, e)
}

func (c *Clicks) restoreIcon() {
	if c.hover == nil {
		return
	}
	c.markers.SetMarkerIcon(c.hover, c.hoverIcon)
	c.hover, c.hoverIcon = nil, ""
}

func (c *Clicks) emit(name event.Name, e *provider.PointerEvent) {
	c.bus.Emit(event.TopicMap, name, e)
}
