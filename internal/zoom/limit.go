// Package zoom keeps the map inside its configured zoom range.
package zoom

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ErrInvalidLimit is returned when a zoom limit is neither a number nor "auto".
var ErrInvalidLimit = errors.New(`zoom limit must be a number or "auto"`)

const auto = "auto"

// Limit is one end of a zoom restriction: unset, a literal level, or "auto"
// (the map's zoom when the restriction is applied).
type Limit struct {
	set   bool
	auto  bool
	value float64
}

// Level returns a literal limit.
func Level(z float64) Limit { return Limit{set: true, value: z} }

// Auto returns a limit resolved from the current zoom.
func Auto() Limit { return Limit{set: true, auto: true} }

// IsSet reports whether the limit was configured.
func (l Limit) IsSet() bool { return l.set }

// IsAuto reports whether the limit is "auto".
func (l Limit) IsAuto() bool { return l.auto }

// Resolve returns the limit's level given the current zoom.
func (l Limit) Resolve(current float64) float64 {
	if l.auto {
		return current
	}
	return l.value
}

// String formats the limit as it appears in configuration.
func (l Limit) String() string {
	switch {
	case !l.set:
		return ""
	case l.auto:
		return auto
	}
	return strconv.FormatFloat(l.value, 'f', -1, 64)
}

func parseLimit(s string) (Limit, error) {
	if s == auto {
		return Auto(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Limit{}, fmt.Errorf("%w: %q", ErrInvalidLimit, s)
	}
	return Level(v), nil
}

// UnmarshalYAML accepts a number or "auto".
func (l *Limit) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: line %d", ErrInvalidLimit, n.Line)
	}
	parsed, err := parseLimit(n.Value)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// MarshalYAML writes the configured form.
func (l Limit) MarshalYAML() (any, error) {
	switch {
	case !l.set:
		return nil, nil
	case l.auto:
		return auto, nil
	}
	return l.value, nil
}

// UnmarshalJSON accepts a number, "auto", or null.
func (l *Limit) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*l = Limit{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		parsed, err := parseLimit(s)
		if err != nil {
			return err
		}
		*l = parsed
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidLimit, b)
	}
	*l = Level(v)
	return nil
}

// MarshalJSON writes the configured form.
func (l Limit) MarshalJSON() ([]byte, error) {
	v, _ := l.MarshalYAML()
	return json.Marshal(v)
}

// Restrict is the configured zoom restriction.
type Restrict struct {
	Min Limit `json:"min" yaml:"min"`
	Max Limit `json:"max" yaml:"max"`
}

// HasAuto reports whether either limit is "auto".
func (r *Restrict) HasAuto() bool {
	return r != nil && (r.Min.IsAuto() || r.Max.IsAuto())
}
