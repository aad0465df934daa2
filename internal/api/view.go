package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-map/internal/geo"
	"github.com/joeblew999/plat-map/internal/service"
)

type ViewOutput struct {
	Body service.State
}

type ViewRequest struct {
	Center geo.LatLng `json:"center" doc:"Target center"`
	Zoom   float64    `json:"zoom" doc:"Target zoom" minimum:"0" example:"8"`
}

type ZoomInInput struct {
	ToDot bool `query:"toDot" doc:"Also center on the click dot"`
}

type PanRequest struct {
	DX        float64 `json:"dx" doc:"Horizontal content offset in pixels"`
	DY        float64 `json:"dy" doc:"Vertical content offset in pixels"`
	Immediate bool    `json:"immediate,omitempty" doc:"Move without animating"`
}

type BoundsRequest struct {
	Bounds *geo.Bounds  `json:"bounds,omitempty" doc:"Bounds to fit"`
	Points []geo.LatLng `json:"points,omitempty" doc:"Positions to fit when bounds is absent"`
}

type ClickDotBody struct {
	LatLng geo.LatLng `json:"latLng" doc:"Position under the click dot"`
}

type ClickDotOutput struct {
	Body ClickDotBody
}

func (h *APIHandler) state(ctx context.Context, fn func(*service.Map) error) (*ViewOutput, error) {
	out := &ViewOutput{}
	err := h.do(ctx, func(m *service.Map) error {
		if fn != nil {
			if err := fn(m); err != nil {
				return err
			}
		}
		out.Body = m.State()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (h *APIHandler) GetView(ctx context.Context, input *struct{}) (*ViewOutput, error) {
	return h.state(ctx, nil)
}

// PutView centers and zooms the map. The response shows the view when the
// change was requested; watch the event stream for the result.
func (h *APIHandler) PutView(ctx context.Context, input *struct{ Body ViewRequest }) (*ViewOutput, error) {
	if !input.Body.Center.Valid() {
		return nil, huma.Error400BadRequest("center must be finite")
	}
	return h.state(ctx, func(m *service.Map) error {
		m.CenterAndZoom(input.Body.Center, input.Body.Zoom, nil)
		return nil
	})
}

func (h *APIHandler) ZoomIn(ctx context.Context, input *ZoomInInput) (*ViewOutput, error) {
	return h.state(ctx, func(m *service.Map) error {
		m.ZoomIn(input.ToDot)
		return nil
	})
}

func (h *APIHandler) ZoomOut(ctx context.Context, input *struct{}) (*ViewOutput, error) {
	return h.state(ctx, func(m *service.Map) error {
		m.ZoomOut()
		return nil
	})
}

func (h *APIHandler) Pan(ctx context.Context, input *struct{ Body PanRequest }) (*ViewOutput, error) {
	b := input.Body
	return h.state(ctx, func(m *service.Map) error {
		var cb func()
		if b.Immediate {
			cb = func() {}
		}
		m.PanByPixels(b.DX, b.DY, cb)
		return nil
	})
}

func (h *APIHandler) FitBounds(ctx context.Context, input *struct{ Body BoundsRequest }) (*ViewOutput, error) {
	b := input.Body
	if b.Bounds == nil && len(b.Points) == 0 {
		return nil, huma.Error400BadRequest("bounds or points are required")
	}
	return h.state(ctx, func(m *service.Map) error {
		if b.Bounds != nil {
			m.ToBounds(*b.Bounds)
		} else {
			m.ToLatLngs(b.Points)
		}
		return nil
	})
}

func (h *APIHandler) InitialExtent(ctx context.Context, input *struct{}) (*ViewOutput, error) {
	return h.state(ctx, func(m *service.Map) error {
		m.ToInitialExtent()
		return nil
	})
}

func (h *APIHandler) GetClickDot(ctx context.Context, input *struct{}) (*ClickDotOutput, error) {
	out := &ClickDotOutput{}
	err := h.do(ctx, func(m *service.Map) error {
		out.Body.LatLng = m.ClickDotLatLng()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PutClickDot moves the click dot onto a position.
func (h *APIHandler) PutClickDot(ctx context.Context, input *struct{ Body ClickDotBody }) (*ClickDotOutput, error) {
	if !input.Body.LatLng.Valid() {
		return nil, huma.Error400BadRequest("latLng must be finite")
	}
	out := &ClickDotOutput{}
	err := h.do(ctx, func(m *service.Map) error {
		m.PositionClickDot(input.Body.LatLng)
		out.Body.LatLng = m.ClickDotLatLng()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
