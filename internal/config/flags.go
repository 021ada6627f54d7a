package config

import (
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// Flags are the command-line overrides of a Config. Only flags given on the
// command line replace file values.
type Flags struct {
	fs *pflag.FlagSet

	path           string
	width          int
	height         int
	fps            int
	format         string
	output         string
	broadcast      []string
	initialStart   bool
	sources        []string
	interpolation  string
	quality        int
	overlay        bool
	listen         string
	mqttBroker     string
	bufferCapacity int
	logLevel       string
}

// BindFlags defines the configuration flags on fs.
func BindFlags(fs *pflag.FlagSet) *Flags {
	d := Default()
	f := &Flags{fs: fs}

	fs.StringVarP(&f.path, "config", "c", "", "configuration file (.yaml or .toml)")
	fs.IntVar(&f.width, "width", d.Output.Width, "canvas width in pixels")
	fs.IntVar(&f.height, "height", d.Output.Height, "canvas height in pixels")
	fs.IntVar(&f.fps, "fps", d.Output.FPS, "output frames per second")
	fs.StringVar(&f.format, "format", d.Output.Format, "output fourcc")
	fs.StringVarP(&f.output, "output", "o", "", "output file template, e.g. rec_[timestamp].avi")
	fs.StringSliceVar(&f.broadcast, "broadcast", nil, "broadcast channel (ws:<name> or mqtt:<topic>)")
	fs.BoolVar(&f.initialStart, "initial-start", false, "start recording immediately")
	fs.StringArrayVarP(&f.sources, "source", "s", nil, `source "channel, x, y, width, height" (repeatable)`)
	fs.StringVar(&f.interpolation, "interpolation", d.Output.Interpolation, "resize interpolation (nearest, approx-bilinear, bilinear, catmull-rom)")
	fs.IntVar(&f.quality, "quality", d.Output.Quality, "JPEG quality 1-100")
	fs.BoolVar(&f.overlay, "overlay", false, "draw the tick time on the canvas")
	fs.StringVar(&f.listen, "listen", d.API.Listen, "control API listen address")
	fs.StringVar(&f.mqttBroker, "mqtt-broker", "", "MQTT broker address")
	fs.IntVar(&f.bufferCapacity, "buffer-capacity", d.Buffer.Capacity, "frames retained per source")
	fs.StringVar(&f.logLevel, "log-level", d.Logging.Level, "default log level")
	return f
}

// Load builds the configuration: defaults, then the file, then flags.
func (f *Flags) Load() (*Config, error) {
	cfg := Default()
	if f.path != "" {
		if err := cfg.loadFile(f.path); err != nil {
			return nil, err
		}
	}
	if err := f.apply(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

func (f *Flags) apply(cfg *Config) error {
	changed := f.fs.Changed
	if changed("width") {
		cfg.Output.Width = f.width
	}
	if changed("height") {
		cfg.Output.Height = f.height
	}
	if changed("fps") {
		cfg.Output.FPS = f.fps
	}
	if changed("format") {
		cfg.Output.Format = f.format
	}
	if changed("output") {
		cfg.Output.Path = f.output
	}
	if changed("broadcast") {
		cfg.Output.Broadcast = f.broadcast
	}
	if changed("initial-start") {
		cfg.InitialStart = f.initialStart
	}
	if changed("source") {
		cfg.Sources = nil
		for _, line := range f.sources {
			s, err := ParseSource(line)
			if err != nil {
				return err
			}
			cfg.Sources = append(cfg.Sources, s)
		}
	}
	if changed("interpolation") {
		cfg.Output.Interpolation = f.interpolation
	}
	if changed("quality") {
		cfg.Output.Quality = f.quality
	}
	if changed("overlay") {
		cfg.Output.Overlay = f.overlay
	}
	if changed("listen") {
		cfg.API.Listen = f.listen
	}
	if changed("mqtt-broker") {
		cfg.MQTT.Broker = f.mqttBroker
	}
	if changed("buffer-capacity") {
		cfg.Buffer.Capacity = f.bufferCapacity
	}
	if changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	return nil
}
