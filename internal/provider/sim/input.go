package sim

import (
	"time"

	"github.com/joeblew999/plat-map/internal/geo"
	"github.com/joeblew999/plat-map/internal/provider"
)

func dom(px geo.Pixel, button int) provider.DOMEvent {
	return provider.DOMEvent{PageX: px.X, PageY: px.Y, Button: button}
}

// Click presses and releases the primary button at px.
func (e *Engine) Click(px geo.Pixel) {
	e.Pointer(provider.MouseDown, px, dom(px, 0))
	e.Pointer(provider.MouseUp, px, dom(px, 0))
	e.Pointer(provider.Click, px, dom(px, 0))
}

// DoubleClick clicks twice and raises a double-click. Unless a listener handles
// it, the map zooms in one level around px.
func (e *Engine) DoubleClick(px geo.Pixel) {
	e.Click(px)
	e.Click(px)
	if e.Pointer(provider.DblClick, px, dom(px, 0)) {
		return
	}
	z := e.zoom + 1
	ll := e.PixelToLatLng(px)
	e.SetView(provider.View{Center: &ll, Zoom: &z, Animate: true})
}

// RightClick raises a secondary-button click.
func (e *Engine) RightClick(px geo.Pixel) {
	e.Pointer(provider.RightClick, px, dom(px, 2))
}

// MouseMove moves the pointer to px.
func (e *Engine) MouseMove(px geo.Pixel) {
	e.Pointer(provider.MouseMove, px, dom(px, 0))
}

// Drag presses at from, pans the map content by delta and releases once the pan settles.
func (e *Engine) Drag(from, delta geo.Pixel) {
	e.Pointer(provider.MouseDown, from, dom(from, 0))
	center := e.center
	e.SetView(provider.View{Center: &center, CenterOffset: &delta, Animate: true})
	to := geo.Pixel{X: from.X + delta.X, Y: from.Y + delta.Y}
	e.loop.AfterFunc(time.Duration(AnimationFrames+1)*FrameInterval, func() {
		e.Pointer(provider.MouseMove, to, dom(to, 0))
		e.Pointer(provider.MouseUp, to, dom(to, 0))
	})
}

// ZoomTo animates to zoom z around the current center, as a scroll wheel would.
func (e *Engine) ZoomTo(z float64) {
	e.SetView(provider.View{Zoom: &z, Animate: true})
}
