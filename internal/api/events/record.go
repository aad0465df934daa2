// Package events streams canonical map events to browsers over Datastar SSE.
package events

import (
	"github.com/joeblew999/plat-map/internal/event"
	"github.com/joeblew999/plat-map/internal/geo"
	"github.com/joeblew999/plat-map/internal/gesture"
	"github.com/joeblew999/plat-map/internal/layer"
	"github.com/joeblew999/plat-map/internal/provider"
)

// Record is the JSON form of an event.
type Record struct {
	Topic   event.Topic        `json:"topic" doc:"Event topic" example:"map"`
	Name    event.Name         `json:"name" doc:"Event name" example:"click"`
	View    *gesture.ViewState `json:"view,omitempty" doc:"View payload of pan, zoom and view-change events"`
	Pointer *Pointer           `json:"pointer,omitempty" doc:"Pointer payload"`
	Layer   *Layer             `json:"layer,omitempty" doc:"Layer lifecycle payload"`
}

// Pointer summarises a pointer event.
type Pointer struct {
	Pixel   geo.Pixel  `json:"pixel"`
	LatLng  geo.LatLng `json:"latLng"`
	OnMap   bool       `json:"onMap"`
	Primary bool       `json:"primary"`
	Shape   string     `json:"shape,omitempty" doc:"Kind of the target shape"`
	Layer   string     `json:"layer,omitempty" doc:"Layer that drew the target shape"`
}

// Layer summarises a layer lifecycle event.
type Layer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Visible bool   `json:"visible"`
}

// NewRecord converts ev. Unknown payloads are left out.
func NewRecord(ev event.Event) Record {
	rec := Record{Topic: ev.Topic, Name: ev.Name}
	switch p := ev.Payload.(type) {
	case gesture.ViewState:
		rec.View = &p
	case *provider.PointerEvent:
		ptr := &Pointer{Pixel: p.Pixel, LatLng: p.LatLng, OnMap: p.OnMap, Primary: p.Primary}
		if p.Target != nil {
			ptr.Shape = p.Target.Kind().String()
			if d := p.Target.Data(); d != nil {
				ptr.Layer = d.Layer
			}
		}
		rec.Pointer = ptr
	case *layer.Config:
		rec.Layer = &Layer{ID: p.ID, Name: p.Name, Type: p.Type, Visible: p.IsVisible()}
	}
	return rec
}
