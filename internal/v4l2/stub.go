//go:build !linux || !(amd64 || arm64)

package v4l2

import (
	"github.com/pkg/errors"

	"github.com/lanikai/mosaic/internal/media"
)

func Open(devpath string, cfg Config) (media.Source, error) {
	return nil, errors.New("V4L2 capture not supported on this platform")
}
