// Package server wires the map API onto an HTTP mux.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/rs/zerolog"

	"github.com/joeblew999/plat-map/internal/api"
	"github.com/joeblew999/plat-map/internal/api/events"
	"github.com/joeblew999/plat-map/internal/provider/sim"
	"github.com/joeblew999/plat-map/internal/service"
)

// Config holds the server configuration.
type Config struct {
	Host string
	Port string
}

// Server is the map HTTP server.
type Server struct {
	config   Config
	mux      *http.ServeMux
	humaAPI  huma.API
	services *api.Services
	log      zerolog.Logger
}

// New creates a server for m. A non-nil engine enables the simulated input routes.
func New(cfg Config, m *service.Map, engine *sim.Engine, log zerolog.Logger) *Server {
	mux := http.NewServeMux()

	humaConfig := NewConfig(cfg)
	humaAPI := humago.New(mux, humaConfig)

	s := &Server{
		config:   cfg,
		mux:      mux,
		humaAPI:  humaAPI,
		services: &api.Services{Map: m, Engine: engine},
		log:      log,
	}
	s.routes()
	return s
}

// NewConfig returns the Huma configuration shared by the server and the OpenAPI export.
func NewConfig(cfg Config) huma.Config {
	humaConfig := huma.DefaultConfig("plat-map API", api.Version)
	humaConfig.Info.Description = "Cross-provider map adapter: view control, layers and canonical map events."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	// Disable $schema property in responses (cleaner JSON)
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}
	humaConfig.Transformers = append(humaConfig.Transformers, api.LinkTransformer())
	return humaConfig
}

// API returns the Huma API, for exporting the OpenAPI document.
func (s *Server) API() huma.API { return s.humaAPI }

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) routes() {
	api.RegisterRoutes(s.humaAPI, s.services)

	if s.services.Map != nil {
		events.NewHandler(s.services.Map.Bus(), s.log).RegisterRoutes(s.humaAPI)
	}

	s.mux.HandleFunc("/", s.handleRoot)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"service": "plat-map",
		"status":  "running",
	})
}
