package config

import (
	"fmt"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration read from config.yaml. It accepts Go duration
// strings ("90s", "10m") and plain integers, which count seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", value.Line)
	}

	var v time.Duration
	if value.Tag == "!!int" {
		secs, err := strconv.ParseInt(value.Value, 0, 64)
		if err != nil {
			return fmt.Errorf("line %d: invalid duration %q", value.Line, value.Value)
		}
		v = time.Duration(secs) * time.Second
	} else {
		parsed, err := time.ParseDuration(value.Value)
		if err != nil {
			return fmt.Errorf("line %d: invalid duration %q", value.Line, value.Value)
		}
		v = parsed
	}
	if v < 0 {
		return fmt.Errorf("line %d: negative duration %q", value.Line, value.Value)
	}
	*d = Duration(v)
	return nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }
