// Package api defines the Huma API routes and handlers.
package api

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-map/internal/layer"
	"github.com/joeblew999/plat-map/internal/loop"
	"github.com/joeblew999/plat-map/internal/provider/sim"
	"github.com/joeblew999/plat-map/internal/service"
)

// Version is reported by /health and /api/v1/info.
const Version = "0.1.0"

// Services holds the dependencies for API handlers.
type Services struct {
	Map *service.Map
	// Engine receives simulated input. Nil disables the input routes.
	Engine *sim.Engine
}

type MessageBody struct {
	Message string `json:"message" doc:"Result message"`
}

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"0.1.0"`
}

// APIHandler holds all REST API handlers. Methods named Register* are
// auto-discovered by huma.AutoRegister.
type APIHandler struct {
	svc *Services
}

func NewAPIHandler(svc *Services) *APIHandler {
	return &APIHandler{svc: svc}
}

// RegisterRoutes registers every REST route.
func RegisterRoutes(api huma.API, svc *Services) {
	huma.AutoRegister(api, NewAPIHandler(svc))
	NewInfoHandler(svc).RegisterRoutes(api)
}

// RegisterHealth registers health check routes.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
}

// RegisterView registers view routes.
func (h *APIHandler) RegisterView(api huma.API) {
	huma.Get(api, "/api/v1/view", h.GetView, huma.OperationTags("view"))
	huma.Put(api, "/api/v1/view", h.PutView, huma.OperationTags("view"), accepted)
	huma.Post(api, "/api/v1/view/zoom-in", h.ZoomIn, huma.OperationTags("view"), accepted)
	huma.Post(api, "/api/v1/view/zoom-out", h.ZoomOut, huma.OperationTags("view"), accepted)
	huma.Post(api, "/api/v1/view/pan", h.Pan, huma.OperationTags("view"), accepted)
	huma.Post(api, "/api/v1/view/bounds", h.FitBounds, huma.OperationTags("view"), accepted)
	huma.Post(api, "/api/v1/view/initial-extent", h.InitialExtent, huma.OperationTags("view"), accepted)
	huma.Get(api, "/api/v1/view/click-dot", h.GetClickDot, huma.OperationTags("view"))
	huma.Put(api, "/api/v1/view/click-dot", h.PutClickDot, huma.OperationTags("view"))
}

// RegisterLayers registers layer routes.
func (h *APIHandler) RegisterLayers(api huma.API) {
	huma.Get(api, "/api/v1/layers", h.GetLayers, huma.OperationTags("layers"))
	huma.Post(api, "/api/v1/layers", h.CreateLayer, huma.OperationTags("layers"), created)
	huma.Get(api, "/api/v1/layers/{name}", h.GetLayer, huma.OperationTags("layers"))
	huma.Delete(api, "/api/v1/layers/{name}", h.DeleteLayer, huma.OperationTags("layers"))
	huma.Put(api, "/api/v1/layers/{name}/visibility", h.PutVisibility, huma.OperationTags("layers"))
	huma.Put(api, "/api/v1/base-layer", h.PutBaseLayer, huma.OperationTags("layers"))
	huma.Get(api, "/api/v1/attribution", h.GetAttribution, huma.OperationTags("layers"))
}

// RegisterInput registers simulated input routes.
func (h *APIHandler) RegisterInput(api huma.API) {
	huma.Post(api, "/api/v1/input/key", h.Key, huma.OperationTags("input"))
	huma.Post(api, "/api/v1/input/{kind}", h.Pointer, huma.OperationTags("input"), accepted)
}

func accepted(o *huma.Operation) { o.DefaultStatus = 202 }
func created(o *huma.Operation)  { o.DefaultStatus = 201 }

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: Version}}, nil
}

// do runs fn on the map loop and converts its error for the client.
func (h *APIHandler) do(ctx context.Context, fn func(*service.Map) error) error {
	if h.svc == nil || h.svc.Map == nil {
		return huma.Error503ServiceUnavailable("map not available")
	}
	return httpError(h.svc.Map.Do(ctx, fn))
}

func httpError(err error) error {
	var se huma.StatusError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &se):
		return err
	case errors.Is(err, layer.ErrNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, layer.ErrDuplicateName):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, loop.ErrStopped), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return huma.Error503ServiceUnavailable(err.Error())
	}
	return huma.Error400BadRequest(err.Error())
}
