// Package replay drives a map through a scripted sequence of raw input on a
// virtual clock and writes the canonical events it produces as JSON lines.
package replay

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/joeblew999/plat-map/internal/api/events"
	"github.com/joeblew999/plat-map/internal/app"
	"github.com/joeblew999/plat-map/internal/config"
	"github.com/joeblew999/plat-map/internal/event"
	"github.com/joeblew999/plat-map/internal/geo"
	"github.com/joeblew999/plat-map/internal/layer"
	"github.com/joeblew999/plat-map/internal/loop"
)

// Settle is how long the clock runs after the last step.
const Settle = 2 * time.Second

// Epoch is the virtual start time.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Script is a replay file.
type Script struct {
	// Config replaces the map configuration when set.
	Config *config.Config `yaml:"config,omitempty"`
	Steps  []Step         `yaml:"steps"`
}

// Step runs its actions in field order, then advances the clock by Wait.
type Step struct {
	Click       *geo.Pixel    `yaml:"click,omitempty"`
	DblClick    *geo.Pixel    `yaml:"dblclick,omitempty"`
	RightClick  *geo.Pixel    `yaml:"rightclick,omitempty"`
	Move        *geo.Pixel    `yaml:"move,omitempty"`
	Drag        *Drag         `yaml:"drag,omitempty"`
	ZoomTo      *float64      `yaml:"zoomTo,omitempty"`
	Key         string        `yaml:"key,omitempty"`
	View        *View         `yaml:"view,omitempty"`
	Pan         *geo.Pixel    `yaml:"pan,omitempty"`
	Resize      *Size         `yaml:"resize,omitempty"`
	AddLayer    *layer.Config `yaml:"addLayer,omitempty"`
	RemoveLayer string        `yaml:"removeLayer,omitempty"`
	ShowLayer   string        `yaml:"showLayer,omitempty"`
	HideLayer   string        `yaml:"hideLayer,omitempty"`
	BaseLayer   string        `yaml:"baseLayer,omitempty"`
	Wait        time.Duration `yaml:"wait,omitempty"`
}

// Drag presses at From and moves the content By pixels.
type Drag struct {
	From geo.Pixel `yaml:"from"`
	By   geo.Pixel `yaml:"by"`
}

// View is a centerAndZoom request.
type View struct {
	Center geo.LatLng `yaml:"center"`
	Zoom   float64    `yaml:"zoom"`
}

// Size is a container size.
type Size struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Line is one output record.
type Line struct {
	// T is the virtual time in milliseconds since the start.
	T int64 `json:"t"`
	events.Record
}

// Load reads a script file.
func Load(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("read script: %w", err)
	}
	return Parse(data)
}

// Parse decodes a script. An embedded config is decoded over the defaults.
func Parse(data []byte) (Script, error) {
	var raw struct {
		Config yaml.Node `yaml:"config"`
		Steps  []Step    `yaml:"steps"`
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return Script{}, fmt.Errorf("parse script: %w", err)
	}
	s := Script{Steps: raw.Steps}
	if !raw.Config.IsZero() {
		out, err := yaml.Marshal(&raw.Config)
		if err != nil {
			return Script{}, fmt.Errorf("script config: %w", err)
		}
		cfg, err := config.Parse(out)
		if err != nil {
			return Script{}, fmt.Errorf("script config: %w", err)
		}
		s.Config = &cfg
	}
	return s, nil
}

// Run replays s against a map built from cfg, or from s.Config when set, and
// writes every canonical event to w.
func Run(s Script, cfg config.Config, w io.Writer, log zerolog.Logger) error {
	if s.Config != nil {
		cfg = *s.Config
	}
	l := loop.NewManual(Epoch)
	bus := event.NewBus()

	enc := json.NewEncoder(w)
	var writeErr error
	bus.OnAll(func(ev event.Event) {
		if writeErr != nil {
			return
		}
		writeErr = enc.Encode(Line{T: l.Now().Sub(Epoch).Milliseconds(), Record: events.NewRecord(ev)})
	})

	a, err := app.New(cfg, app.Options{Loop: l, Bus: bus, Logger: log})
	if err != nil {
		return err
	}
	defer a.Close()
	l.Advance(0)

	for i, step := range s.Steps {
		if err := apply(a, step); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		l.Advance(step.Wait)
		if writeErr != nil {
			return writeErr
		}
	}
	l.Advance(Settle)
	log.Debug().Int("steps", len(s.Steps)).Msg("replay finished")
	return writeErr
}

func apply(a *app.App, s Step) error {
	e, m := a.Engine, a.Map
	if s.Click != nil {
		e.Click(*s.Click)
	}
	if s.DblClick != nil {
		e.DoubleClick(*s.DblClick)
	}
	if s.RightClick != nil {
		e.RightClick(*s.RightClick)
	}
	if s.Move != nil {
		e.MouseMove(*s.Move)
	}
	if s.Drag != nil {
		e.Drag(s.Drag.From, s.Drag.By)
	}
	if s.ZoomTo != nil {
		e.ZoomTo(*s.ZoomTo)
	}
	if s.Key != "" && !m.HandleKey(s.Key) {
		return fmt.Errorf("key %q not handled", s.Key)
	}
	if s.View != nil {
		m.CenterAndZoom(s.View.Center, s.View.Zoom, nil)
	}
	if s.Pan != nil {
		m.PanByPixels(s.Pan.X, s.Pan.Y, nil)
	}
	if s.Resize != nil {
		container := m.Container()
		a.Page.SetElement(container, a.Page.ElementOffset(container), s.Resize.Width, s.Resize.Height)
		m.HandleResize()
	}
	if s.AddLayer != nil {
		cfg := *s.AddLayer
		if err := m.AddLayer(&cfg); err != nil {
			return err
		}
	}
	for _, op := range []struct {
		name string
		fn   func(string) (*layer.Config, error)
	}{
		{s.RemoveLayer, m.RemoveLayer},
		{s.ShowLayer, m.ShowLayer},
		{s.HideLayer, m.HideLayer},
	} {
		if op.name == "" {
			continue
		}
		if _, err := op.fn(op.name); err != nil {
			return err
		}
	}
	if s.BaseLayer != "" {
		if _, err := m.SwitchBaseLayer(s.BaseLayer); err != nil {
			return err
		}
	}
	return nil
}
