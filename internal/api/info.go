package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
)

type InfoHandler struct {
	svc *Services
}

func NewInfoHandler(svc *Services) *InfoHandler {
	return &InfoHandler{svc: svc}
}

func (h *InfoHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/info", h.GetInfo, huma.OperationTags("health"))
}

type InfoBody struct {
	Name     string   `json:"name" doc:"Service name"`
	Version  string   `json:"version" doc:"Service version"`
	Provider string   `json:"provider" doc:"Active map provider" example:"bing"`
	Features []string `json:"features" doc:"Available features"`
}

func (h *InfoHandler) GetInfo(ctx context.Context, input *struct{}) (*struct{ Body InfoBody }, error) {
	body := InfoBody{
		Name:     "plat-map",
		Version:  Version,
		Features: []string{"view", "layers", "events"},
	}
	if h.svc != nil && h.svc.Map != nil {
		body.Provider = h.svc.Map.Provider().Name()
	}
	if h.svc != nil && h.svc.Engine != nil {
		body.Features = append(body.Features, "input")
	}
	return &struct{ Body InfoBody }{Body: body}, nil
}
