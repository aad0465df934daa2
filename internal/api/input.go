package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-map/internal/geo"
	"github.com/joeblew999/plat-map/internal/provider/sim"
	"github.com/joeblew999/plat-map/internal/service"
)

type PointerInput struct {
	Kind string `path:"kind" enum:"click,dblclick,rightclick,mousemove,drag" doc:"Raw input to simulate"`
	Body PointerRequest
}

type PointerRequest struct {
	X  float64 `json:"x" doc:"Container x in pixels"`
	Y  float64 `json:"y" doc:"Container y in pixels"`
	DX float64 `json:"dx,omitempty" doc:"Drag offset x"`
	DY float64 `json:"dy,omitempty" doc:"Drag offset y"`
}

type KeyRequest struct {
	Key string `json:"key" doc:"Key name" example:"ArrowUp"`
}

type KeyBody struct {
	Handled bool `json:"handled" doc:"Whether the key was used"`
}

func (h *APIHandler) engine() (*sim.Engine, error) {
	if h.svc == nil || h.svc.Engine == nil {
		return nil, huma.Error501NotImplemented("simulated input is not available")
	}
	return h.svc.Engine, nil
}

// Pointer raises raw pointer callbacks on the simulated engine. Canonical
// events follow on the event stream.
func (h *APIHandler) Pointer(ctx context.Context, input *PointerInput) (*struct{ Body MessageBody }, error) {
	e, err := h.engine()
	if err != nil {
		return nil, err
	}
	px := geo.Pixel{X: input.Body.X, Y: input.Body.Y}
	err = h.do(ctx, func(*service.Map) error {
		switch input.Kind {
		case "click":
			e.Click(px)
		case "dblclick":
			e.DoubleClick(px)
		case "rightclick":
			e.RightClick(px)
		case "mousemove":
			e.MouseMove(px)
		case "drag":
			e.Drag(px, geo.Pixel{X: input.Body.DX, Y: input.Body.DY})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &struct{ Body MessageBody }{Body: MessageBody{Message: input.Kind + " sent"}}, nil
}

func (h *APIHandler) Key(ctx context.Context, input *struct{ Body KeyRequest }) (*struct{ Body KeyBody }, error) {
	out := &struct{ Body KeyBody }{}
	err := h.do(ctx, func(m *service.Map) error {
		out.Body.Handled = m.HandleKey(input.Body.Key)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
