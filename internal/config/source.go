package config

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/lanikai/mosaic/internal/composite"
)

// SourceConfig binds one input channel to a canvas region. In a file it is
// either a mapping or the one-line form "channel, x, y, width, height".
type SourceConfig struct {
	Channel string `yaml:"channel" toml:"channel"`
	X       int    `yaml:"x" toml:"x"`
	Y       int    `yaml:"y" toml:"y"`
	Width   int    `yaml:"width" toml:"width"`
	Height  int    `yaml:"height" toml:"height"`
}

func (s SourceConfig) Region() composite.Region {
	return composite.Region{X: s.X, Y: s.Y, Width: s.Width, Height: s.Height}
}

func (s SourceConfig) String() string {
	return s.Channel + ", " + strconv.Itoa(s.X) + ", " + strconv.Itoa(s.Y) + ", " +
		strconv.Itoa(s.Width) + ", " + strconv.Itoa(s.Height)
}

// ParseSource parses "channel, x, y, width, height". The channel may itself
// contain commas; the last four fields are the region.
func ParseSource(line string) (SourceConfig, error) {
	parts := strings.Split(line, ",")
	if len(parts) < 5 {
		return SourceConfig{}, errors.Errorf("source %q: want \"channel, x, y, width, height\"", line)
	}

	n := len(parts) - 4
	s := SourceConfig{Channel: strings.TrimSpace(strings.Join(parts[:n], ","))}
	fields := []*int{&s.X, &s.Y, &s.Width, &s.Height}
	for i, p := range parts[n:] {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return SourceConfig{}, errors.Errorf("source %q: bad number %q", line, strings.TrimSpace(p))
		}
		*fields[i] = v
	}
	return s, nil
}

func (s *SourceConfig) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		parsed, err := ParseSource(value.Value)
		if err != nil {
			return err
		}
		*s = parsed
		return nil
	}

	type plain SourceConfig
	return value.Decode((*plain)(s))
}

// UnmarshalTOML receives either a string or a table.
func (s *SourceConfig) UnmarshalTOML(v interface{}) error {
	switch v := v.(type) {
	case string:
		parsed, err := ParseSource(v)
		if err != nil {
			return err
		}
		*s = parsed
		return nil

	case map[string]interface{}:
		var out SourceConfig
		for key, val := range v {
			if key == "channel" {
				str, ok := val.(string)
				if !ok {
					return errors.Errorf("source channel: want string, got %T", val)
				}
				out.Channel = str
				continue
			}

			n, ok := val.(int64)
			if !ok {
				return errors.Errorf("source %s: want integer, got %T", key, val)
			}
			switch key {
			case "x":
				out.X = int(n)
			case "y":
				out.Y = int(n)
			case "width":
				out.Width = int(n)
			case "height":
				out.Height = int(n)
			default:
				return errors.Errorf("unknown source key %q", key)
			}
		}
		*s = out
		return nil
	}
	return errors.Errorf("source: unexpected %T", v)
}
