package v4l2

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Pixel formats a capture device may be asked for.
const (
	FormatMJPEG = "mjpeg"
	FormatYUYV  = "yuyv"
)

type Config struct {
	Format string // Pixel format, FormatMJPEG or FormatYUYV
	Width  int    // Requested width in pixels; the driver may pick another
	Height int    // Requested height in pixels

	HFlip bool // Flip video horizontally
	VFlip bool // Flip video vertically
}

var DefaultConfig = Config{
	Format: FormatMJPEG,
	Width:  640,
	Height: 480,
}

// ParseSpecPath splits a source path such as
//
//	/dev/video0?format=yuyv&width=1280&height=720&hflip=1
//
// into the device path and its capture configuration.
func ParseSpecPath(path string) (string, Config, error) {
	cfg := DefaultConfig
	dev, query, _ := strings.Cut(path, "?")
	if dev == "" {
		dev = "/dev/video0"
	}

	values, err := url.ParseQuery(query)
	if err != nil {
		return "", cfg, errors.Wrap(err, "v4l2 options")
	}
	for key := range values {
		v := values.Get(key)
		switch key {
		case "format":
			cfg.Format = strings.ToLower(v)
			if cfg.Format != FormatMJPEG && cfg.Format != FormatYUYV {
				return "", cfg, errors.Errorf("unsupported v4l2 format %q", v)
			}
		case "width", "height":
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return "", cfg, errors.Errorf("invalid %s %q", key, v)
			}
			if key == "width" {
				cfg.Width = n
			} else {
				cfg.Height = n
			}
		case "hflip", "vflip":
			on, err := strconv.ParseBool(v)
			if err != nil {
				return "", cfg, errors.Errorf("invalid %s %q", key, v)
			}
			if key == "hflip" {
				cfg.HFlip = on
			} else {
				cfg.VFlip = on
			}
		default:
			return "", cfg, errors.Errorf("unknown v4l2 option %q", key)
		}
	}
	return dev, cfg, nil
}
