package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/joeblew999/plat-map/internal/app"
	"github.com/joeblew999/plat-map/internal/config"
	"github.com/joeblew999/plat-map/internal/logging"
	"github.com/joeblew999/plat-map/internal/loop"
	"github.com/joeblew999/plat-map/internal/replay"
	"github.com/joeblew999/plat-map/internal/server"
	"github.com/joeblew999/plat-map/internal/style"
)

// Options defines all CLI flags and env vars for the map server.
// Flags: --host, --port, --config, --log-level, --pretty
// Env vars: SERVICE_HOST, SERVICE_PORT, SERVICE_CONFIG, SERVICE_LOG_LEVEL, SERVICE_PRETTY
type Options struct {
	Host     string `doc:"Host to bind to" default:"0.0.0.0"`
	Port     int    `doc:"Port to listen on" short:"p" default:"8086"`
	Config   string `doc:"Map configuration file (YAML)" short:"c"`
	LogLevel string `doc:"Log level (debug, info, warn, error)" default:"info"`
	Pretty   bool   `doc:"Human-readable log output"`
}

func newLogger(opts *Options) zerolog.Logger {
	return logging.New(logging.Options{Level: opts.LogLevel, Pretty: opts.Pretty, Service: "mapsim"})
}

func serverConfig(opts *Options) server.Config {
	return server.Config{Host: opts.Host, Port: fmt.Sprintf("%d", opts.Port)}
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		log := newLogger(opts)
		ctx, cancel := context.WithCancel(context.Background())
		var httpSrv *http.Server

		hooks.OnStart(func() {
			cfg, err := config.Load(opts.Config)
			if err != nil {
				log.Fatal().Err(err).Msg("load config")
			}

			l := loop.New()
			prober := style.NewProber(style.ProberOptions{
				Loop:   l,
				Loader: style.NewHTTPLoader(),
				Logger: log,
			})
			a, err := app.New(cfg, app.Options{Loop: l, Prober: prober, Logger: log})
			if err != nil {
				log.Fatal().Err(err).Msg("build map")
			}
			defer a.Close()
			go l.Run(ctx)

			addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
			displayHost := opts.Host
			if displayHost == "0.0.0.0" {
				displayHost = "localhost"
			}
			baseURL := fmt.Sprintf("http://%s:%d", displayHost, opts.Port)

			fmt.Println()
			fmt.Printf("plat-map API server starting...\n")
			fmt.Printf("  Server:   %s\n", baseURL)
			fmt.Printf("  Provider: %s\n", cfg.API)
			fmt.Println()
			fmt.Printf("  Events:   %s/api/v1/events\n", baseURL)
			fmt.Printf("  Docs:     %s/docs\n", baseURL)
			fmt.Printf("  OpenAPI:  %s/openapi.json\n", baseURL)
			fmt.Println()

			httpSrv = &http.Server{
				Addr:              addr,
				Handler:           server.New(serverConfig(opts), a.Map, a.Engine, log),
				ReadHeaderTimeout: 10 * time.Second,
			}
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal().Err(err).Msg("server error")
			}
		})

		hooks.OnStop(func() {
			defer cancel()
			if httpSrv == nil {
				return
			}
			shutdown, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			if err := httpSrv.Shutdown(shutdown); err != nil {
				log.Warn().Err(err).Msg("shutdown")
			}
		})
	})

	cli.Root().Use = "mapsim"
	cli.Root().Short = "Cross-provider map adapter running on a simulated map engine"
	cli.Root().Version = "0.1.0"

	// spec subcommand: export OpenAPI spec
	specCmd := &cobra.Command{
		Use:   "spec",
		Short: "Export OpenAPI spec (JSON by default, --yaml for YAML)",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			srv := server.New(serverConfig(opts), nil, nil, zerolog.Nop())
			spec := srv.API().OpenAPI()

			useYAML, _ := cmd.Flags().GetBool("yaml")

			var output []byte
			var err error
			if useYAML {
				output, err = yaml.Marshal(spec)
			} else {
				output, err = json.MarshalIndent(spec, "", "  ")
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error marshaling spec: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(output))
		}),
	}
	specCmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	cli.Root().AddCommand(specCmd)

	// replay subcommand: run a scripted input sequence on a virtual clock
	replayCmd := &cobra.Command{
		Use:   "replay <script.yaml>",
		Short: "Replay scripted map input and print canonical events as JSON lines",
		Args:  cobra.ExactArgs(1),
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			log := newLogger(opts)
			cfg, err := config.Load(opts.Config)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
				os.Exit(1)
			}
			script, err := replay.Load(args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error loading script: %v\n", err)
				os.Exit(1)
			}
			if err := replay.Run(script, cfg, cmd.OutOrStdout(), log); err != nil {
				fmt.Fprintf(os.Stderr, "Replay failed: %v\n", err)
				os.Exit(1)
			}
		}),
	}
	cli.Root().AddCommand(replayCmd)

	cli.Run()
}
