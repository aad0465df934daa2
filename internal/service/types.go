package service

import (
	"github.com/joeblew999/plat-map/internal/geo"
	"github.com/joeblew999/plat-map/internal/gesture"
	"github.com/joeblew999/plat-map/internal/zoom"
)

// State is a read-only view of the map for API responses and replays.
type State struct {
	Provider string               `json:"provider" doc:"Active provider" example:"bing"`
	Center   geo.LatLng           `json:"center" doc:"View center"`
	Zoom     float64              `json:"zoom" doc:"Current zoom level" example:"4"`
	Bounds   geo.Bounds           `json:"bounds" doc:"Visible bounds"`
	Range    zoom.Range           `json:"range" doc:"Effective zoom range"`
	Snapshot gesture.ViewState    `json:"snapshot" doc:"View at the last gesture boundary"`
	Gesture  gesture.GestureState `json:"gesture" doc:"One-shot gesture flags"`
	Click    gesture.ClickState   `json:"click" doc:"Click disambiguation flags"`
	Base     string               `json:"base" doc:"Active base layer code" example:"aerial"`
}
