// Package gesture turns raw provider callbacks into canonical map events.
//
// Tracker derives pan/zoom start, continuing and end events from view-change
// callbacks. Clicks separates single clicks from double clicks and keeps the
// cursor in step with the pointer. Both run on the map's loop and share one
// ClickState.
package gesture

import (
	"math"

	"github.com/joeblew999/plat-map/internal/geo"
)

// ViewState is the view at a gesture boundary. It is the payload of view events.
type ViewState struct {
	Center geo.LatLng `json:"center"`
	Zoom   float64    `json:"zoom"`
}

func (v ViewState) valid() bool {
	return !math.IsNaN(v.Zoom) && !math.IsNaN(v.Center.Lat) && !math.IsNaN(v.Center.Lng)
}

// GestureState holds the one-shot flags of the gesture in progress.
type GestureState struct {
	PanStartReported  bool `json:"panStartReported"`
	ZoomStartReported bool `json:"zoomStartReported"`
}

// ClickState is shared by Tracker and Clicks.
type ClickState struct {
	MouseDown     bool `json:"mouseDown"`
	DoubleClicked bool `json:"doubleClicked"`
	// ViewChanged is set by any view change since the last mouse-down.
	ViewChanged bool `json:"viewChanged"`
}
