//////////////////////////////////////////////////////////////////////////////
//
// Config contains configuration data for Recorder
//
// Copyright 2019 Lanikai Labs. All rights reserved.
//
//////////////////////////////////////////////////////////////////////////////

package mosaic

import (
	"github.com/pkg/errors"

	"github.com/lanikai/mosaic/internal/composite"
	"github.com/lanikai/mosaic/internal/sink"
)

type Config struct {
	// Canvas size in pixels.
	Width  int
	Height int

	// Output ticks per second.
	FPS int

	// Four character code of the file codec, e.g. "MJPG".
	Format string

	// JPEG quality for file and broadcast encoding.
	Quality int

	// Output file path. "[timestamp]" is replaced by the local time at Start,
	// formatted YYYYMMDD_HHMMSS. Empty means no file is written.
	OutputPath string

	// Begin recording as soon as Run is called.
	InitialStart bool

	// Sources in drawing order.
	Bindings []composite.Binding

	CompositorOptions []composite.Option

	// Time source for the tick loop. Defaults to the system clock.
	Clock Clock

	// Opens the file sink at Start. Defaults to sink.OpenFile.
	OpenFile func(path string, opts sink.FileOptions) (sink.FileSink, error)
}

func (c *Config) validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.Errorf("invalid canvas size %dx%d", c.Width, c.Height)
	}
	if c.FPS <= 0 {
		return errors.Errorf("invalid frame rate %d", c.FPS)
	}
	if len(c.Bindings) == 0 {
		return errNoSources
	}
	return nil
}

func (c *Config) fileOptions() sink.FileOptions {
	return sink.FileOptions{
		Format:  c.Format,
		Width:   c.Width,
		Height:  c.Height,
		FPS:     c.FPS,
		Quality: c.Quality,
	}
}
