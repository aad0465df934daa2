package service

import (
	"fmt"

	"github.com/joeblew999/plat-map/internal/layer"
	"github.com/joeblew999/plat-map/internal/provider"
)

// AddLayer validates cfg and draws it. On error nothing is registered; only a failed
// draw emits addfailed after beforeadd.
func (m *Map) AddLayer(cfg *layer.Config) error {
	if err := m.layers.Add(cfg); err != nil {
		m.log.Warn().Err(err).Str("type", cfg.Type).Msg("layer rejected")
		return err
	}
	return nil
}

// RemoveLayer removes the named overlay.
func (m *Map) RemoveLayer(name string) (*layer.Config, error) {
	return m.layers.Remove(name)
}

// ShowLayer makes the named overlay visible.
func (m *Map) ShowLayer(name string) (*layer.Config, error) {
	cfg, err := m.layers.SetVisible(name, true)
	if err == nil {
		m.refreshAttribution()
	}
	return cfg, err
}

// HideLayer hides the named overlay.
func (m *Map) HideLayer(name string) (*layer.Config, error) {
	cfg, err := m.layers.SetVisible(name, false)
	if err == nil {
		m.refreshAttribution()
	}
	return cfg, err
}

// MatchBaseLayer returns the provider's built-in basemap with code.
func (m *Map) MatchBaseLayer(code string) (provider.BaseLayer, bool) {
	return m.p.MatchBaseLayer(code)
}

// SwitchBaseLayer activates the configured base layer with code.
func (m *Map) SwitchBaseLayer(code string) (*layer.BaseConfig, error) {
	if _, ok := m.layers.Base(code); !ok {
		return nil, fmt.Errorf("%w: base layer %q", layer.ErrNotFound, code)
	}
	if err := m.p.SetBaseLayer(code); err != nil {
		return nil, err
	}
	return m.layers.SetActiveBase(code)
}
