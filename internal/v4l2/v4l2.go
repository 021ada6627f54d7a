// Package v4l2 captures MJPEG or YUYV frames from Video4Linux devices.
package v4l2

import (
	"github.com/lanikai/mosaic/internal/logging"
	"github.com/lanikai/mosaic/internal/media"
)

var log = logging.DefaultLogger.WithTag("v4l2")

func init() {
	media.RegisterSourceType("v4l2", func(spec media.Spec) (media.Source, error) {
		dev, cfg, err := ParseSpecPath(spec.Path)
		if err != nil {
			return nil, err
		}
		return Open(dev, cfg)
	})
}
