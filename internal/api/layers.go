package api

import (
	"context"

	"github.com/joeblew999/plat-map/internal/layer"
	"github.com/joeblew999/plat-map/internal/service"
	"github.com/joeblew999/plat-map/internal/style"
)

type NameInput struct {
	Name string `path:"name" doc:"Layer name" example:"Trails"`
}

type LayerOutput struct {
	Body layer.Config
}

type LayersBody struct {
	Base     []layer.BaseConfig `json:"base" doc:"Configured base layers"`
	Active   string             `json:"active" doc:"Active base layer code"`
	Overlays []layer.Config     `json:"overlays" doc:"Overlay layers in add order"`
}

type CreatedLayerBody struct {
	ID      string       `json:"id" doc:"Generated layer ID"`
	Layer   layer.Config `json:"layer" doc:"Created layer configuration"`
	Message string       `json:"message" doc:"Result message"`
}

type VisibilityRequest struct {
	Visible bool `json:"visible"`
}

type BaseLayerRequest struct {
	Code string `json:"code" doc:"Configured base layer code" example:"aerial"`
}

type AttributionBody struct {
	Attribution []string `json:"attribution" doc:"Provider copyrights then overlay attributions"`
}

func (h *APIHandler) GetLayers(ctx context.Context, input *struct{}) (*struct{ Body LayersBody }, error) {
	out := &struct{ Body LayersBody }{Body: LayersBody{Base: []layer.BaseConfig{}, Overlays: []layer.Config{}}}
	err := h.do(ctx, func(m *service.Map) error {
		reg := m.Layers()
		reg.EachBase(func(b *layer.BaseConfig) { out.Body.Base = append(out.Body.Base, *b) })
		reg.EachOverlay(func(c *layer.Config) { out.Body.Overlays = append(out.Body.Overlays, *copyLayer(c)) })
		out.Body.Active = reg.ActiveBase().Code
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (h *APIHandler) CreateLayer(ctx context.Context, input *struct{ Body layer.Config }) (*struct{ Body CreatedLayerBody }, error) {
	cfg := input.Body
	err := h.do(ctx, func(m *service.Map) error {
		if err := m.AddLayer(&cfg); err != nil {
			return err
		}
		cfg = *copyLayer(&cfg)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &struct{ Body CreatedLayerBody }{Body: CreatedLayerBody{
		ID: cfg.ID, Layer: cfg, Message: "Layer created",
	}}, nil
}

func (h *APIHandler) GetLayer(ctx context.Context, input *NameInput) (*LayerOutput, error) {
	out := &LayerOutput{}
	err := h.do(ctx, func(m *service.Map) error {
		cfg, ok := m.Layers().ByName(input.Name)
		if !ok {
			return layer.ErrNotFound
		}
		out.Body = *copyLayer(cfg)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (h *APIHandler) DeleteLayer(ctx context.Context, input *NameInput) (*struct{ Body MessageBody }, error) {
	err := h.do(ctx, func(m *service.Map) error {
		_, err := m.RemoveLayer(input.Name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "Layer deleted"}}, nil
}

func (h *APIHandler) PutVisibility(ctx context.Context, input *struct {
	NameInput
	Body VisibilityRequest
}) (*LayerOutput, error) {
	out := &LayerOutput{}
	err := h.do(ctx, func(m *service.Map) error {
		var (
			cfg *layer.Config
			err error
		)
		if input.Body.Visible {
			cfg, err = m.ShowLayer(input.Name)
		} else {
			cfg, err = m.HideLayer(input.Name)
		}
		if err != nil {
			return err
		}
		out.Body = *copyLayer(cfg)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (h *APIHandler) PutBaseLayer(ctx context.Context, input *struct{ Body BaseLayerRequest }) (*struct{ Body layer.BaseConfig }, error) {
	out := &struct{ Body layer.BaseConfig }{}
	err := h.do(ctx, func(m *service.Map) error {
		b, err := m.SwitchBaseLayer(input.Body.Code)
		if err != nil {
			return err
		}
		out.Body = *b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (h *APIHandler) GetAttribution(ctx context.Context, input *struct{}) (*struct{ Body AttributionBody }, error) {
	out := &struct{ Body AttributionBody }{}
	err := h.do(ctx, func(m *service.Map) error {
		out.Body.Attribution = m.Attribution()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out.Body.Attribution == nil {
		out.Body.Attribution = []string{}
	}
	return out, nil
}

// copyLayer returns cfg without the fields owned by the map loop.
func copyLayer(cfg *layer.Config) *layer.Config {
	c := *cfg
	c.Handle = nil
	c.ResolvedStyle = style.Resolved{}
	c.OnClick = nil
	return &c
}
