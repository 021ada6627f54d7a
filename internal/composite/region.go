//////////////////////////////////////////////////////////////////////////////
//
// Canvas regions and source bindings
//
// Copyright 2019 Lanikai Labs. All rights reserved.
//
//////////////////////////////////////////////////////////////////////////////

package composite

import (
	"image"

	"github.com/pkg/errors"

	"github.com/lanikai/mosaic/internal/media"
)

// A Region is the rectangle of the canvas one source is drawn into.
type Region struct {
	X      int `yaml:"x" toml:"x" json:"x"`
	Y      int `yaml:"y" toml:"y" json:"y"`
	Width  int `yaml:"width" toml:"width" json:"width"`
	Height int `yaml:"height" toml:"height" json:"height"`
}

func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Validate checks that r is non-empty and lies within a width x height canvas.
func (r Region) Validate(width, height int) error {
	switch {
	case r.X < 0 || r.Y < 0:
		return errors.Errorf("region %v has a negative origin", r)
	case r.Width <= 0 || r.Height <= 0:
		return errors.Errorf("region %v is empty", r)
	case r.X+r.Width > width || r.Y+r.Height > height:
		return errors.Errorf("region %v exceeds %dx%d canvas", r, width, height)
	}
	return nil
}

// A Binding ties one source's buffer to its region. Bindings are fixed once the
// compositor is configured.
type Binding struct {
	Name   string
	Buffer *media.Buffer
	Region Region
}
