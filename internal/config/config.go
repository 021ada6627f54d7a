// Package config loads the daemon configuration from a YAML or TOML file and
// command-line flags.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/lanikai/mosaic/internal/composite"
	"github.com/lanikai/mosaic/internal/media"
)

type Config struct {
	Output       OutputConfig   `yaml:"output" toml:"output"`
	InitialStart bool           `yaml:"initial_start" toml:"initial_start"`
	Sources      []SourceConfig `yaml:"sources" toml:"sources"`
	Buffer       BufferConfig   `yaml:"buffer" toml:"buffer"`
	API          APIConfig      `yaml:"api" toml:"api"`
	MQTT         MQTTConfig     `yaml:"mqtt" toml:"mqtt"`
	Logging      LoggingConfig  `yaml:"logging" toml:"logging"`
}

// OutputConfig describes the canvas and where it goes.
type OutputConfig struct {
	Width  int    `yaml:"width" toml:"width"`
	Height int    `yaml:"height" toml:"height"`
	FPS    int    `yaml:"fps" toml:"fps"`
	Format string `yaml:"format" toml:"format"` // fourcc, e.g. MJPG

	// File path template; "[timestamp]" is replaced at start. Empty: no file.
	Path string `yaml:"path" toml:"path"`

	// Broadcast channels: "ws:<name>" serves /live, "mqtt:<topic>" publishes.
	Broadcast []string `yaml:"broadcast" toml:"broadcast"`

	Quality       int    `yaml:"quality" toml:"quality"`
	Interpolation string `yaml:"interpolation" toml:"interpolation"`
	Overlay       bool   `yaml:"overlay" toml:"overlay"`
}

type BufferConfig struct {
	// Frames retained per source.
	Capacity int `yaml:"capacity" toml:"capacity"`
}

type APIConfig struct {
	Listen         string `yaml:"listen" toml:"listen"`
	MaxConnections int    `yaml:"max_connections" toml:"max_connections"`
}

type MQTTConfig struct {
	Broker   string `yaml:"broker" toml:"broker"`
	ClientID string `yaml:"client_id" toml:"client_id"`
	Username string `yaml:"username" toml:"username"`
	Password string `yaml:"password" toml:"password"`

	// Control topics are <prefix>/start and <prefix>/stop.
	ControlPrefix string `yaml:"control_prefix" toml:"control_prefix"`
}

type LoggingConfig struct {
	Level string `yaml:"level" toml:"level"`
}

// Default returns the configuration used for anything a file or flag leaves
// unset.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Width:         640,
			Height:        480,
			FPS:           30,
			Format:        "MJPG",
			Quality:       90,
			Interpolation: composite.DefaultInterpolation,
		},
		Buffer: BufferConfig{
			Capacity: media.DefaultCapacity,
		},
		API: APIConfig{
			Listen:         ":8080",
			MaxConnections: 64,
		},
		MQTT: MQTTConfig{
			ClientID:      "mosaicd",
			ControlPrefix: "mosaic",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFile reads path over the defaults. The format follows the extension:
// .toml is TOML, anything else YAML.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read config")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), c); err != nil {
			return errors.Wrapf(err, "parse %s", path)
		}
	default:
		if err := yaml.Unmarshal(data, c); err != nil {
			return errors.Wrapf(err, "parse %s", path)
		}
	}
	return nil
}

// Validate rejects configurations the daemon cannot run with.
func (c *Config) Validate() error {
	o := &c.Output
	if o.Width <= 0 || o.Height <= 0 {
		return errors.Errorf("invalid canvas size %dx%d", o.Width, o.Height)
	}
	if o.FPS <= 0 {
		return errors.Errorf("invalid fps %d", o.FPS)
	}
	if o.Quality < 1 || o.Quality > 100 {
		return errors.Errorf("invalid quality %d", o.Quality)
	}
	if _, err := composite.ParseInterpolation(o.Interpolation); err != nil {
		return err
	}
	for _, b := range o.Broadcast {
		tag, name, _ := strings.Cut(b, ":")
		if (tag != "ws" && tag != "mqtt") || name == "" {
			return errors.Errorf("invalid broadcast channel %q", b)
		}
		if tag == "mqtt" && c.MQTT.Broker == "" {
			return errors.Errorf("broadcast %q needs an MQTT broker", b)
		}
	}

	if len(c.Sources) == 0 {
		return errors.New("no sources configured")
	}
	for i, s := range c.Sources {
		if s.Channel == "" {
			return errors.Errorf("source %d: missing channel", i)
		}
		if err := s.Region().Validate(o.Width, o.Height); err != nil {
			return errors.Wrapf(err, "source %d (%s)", i, s.Channel)
		}
	}

	if c.Buffer.Capacity < 0 {
		return errors.Errorf("invalid buffer capacity %d", c.Buffer.Capacity)
	}
	return nil
}
