//go:build linux && (amd64 || arm64)

package v4l2

import (
	"io"

	"github.com/pkg/errors"

	"github.com/lanikai/mosaic/internal/color"
	"github.com/lanikai/mosaic/internal/media"
)

// Open a V4L2 capture device (usually /dev/video0).
func Open(devpath string, cfg Config) (media.Source, error) {
	dev, err := openDevice(devpath)
	if err != nil {
		return nil, err
	}

	pixfmt := V4L2_PIX_FMT_MJPEG
	if cfg.Format == FormatYUYV {
		pixfmt = V4L2_PIX_FMT_YUYV
	}
	f, err := dev.SetPixelFormat(cfg.Width, cfg.Height, pixfmt)
	if err != nil {
		dev.Close()
		return nil, errors.Wrap(err, "set pixel format")
	}
	if f.pixelformat != pixfmt {
		dev.Close()
		return nil, errors.Errorf("%s does not support %s capture", devpath, cfg.Format)
	}
	if f.width != cfg.Width || f.height != cfg.Height {
		log.Info("%s: driver chose %dx%d instead of %dx%d", devpath, f.width, f.height, cfg.Width, cfg.Height)
	}

	if err := dev.SetFlip(cfg.HFlip, cfg.VFlip); err != nil {
		log.Warn("%s: flip not supported: %v", devpath, err)
	}

	return &captureSource{
		cfg: cfg,
		fmt: f,
		dev: dev,
	}, nil
}

// A media.Source wrapping a V4L2 device.
type captureSource struct {
	cfg  Config
	fmt  format
	dev  *device
	loop *media.Loop
}

func (s *captureSource) Start(buf *media.Buffer) error {
	if err := s.dev.Start(); err != nil {
		return errors.Wrapf(err, "start capture on %s", s.dev.path)
	}

	s.loop = media.NewLoop("v4l2 "+s.dev.path, func(quit <-chan struct{}) error {
		// ReadFrame blocks in the kernel; stopping the stream releases it.
		go func() {
			<-quit
			if err := s.dev.Stop(); err != nil {
				log.Warn("%s: stop: %v", s.dev.path, err)
			}
		}()

		for {
			data, err := s.dev.ReadFrame()
			if err != nil {
				select {
				case <-quit:
					return nil
				default:
				}
				if err == io.EOF {
					return errors.Errorf("%s: capture ended", s.dev.path)
				}
				return err
			}
			s.deliver(buf, data)
		}
	})
	return s.loop.Start()
}

func (s *captureSource) deliver(buf *media.Buffer, data []byte) {
	if s.cfg.Format != FormatYUYV {
		media.Ingest(buf, s.dev.path, data)
		return
	}

	img, err := color.WrapYUYV(data, s.fmt.width, s.fmt.height, s.fmt.bytesperline)
	if err != nil {
		log.Warn("Dropping frame from %s: %v", s.dev.path, err)
		return
	}
	buf.Put(img.ToYCbCr())
}

func (s *captureSource) Close() error {
	var err error
	if s.loop != nil {
		err = s.loop.Stop()
	}
	if cerr := s.dev.Close(); err == nil {
		err = cerr
	}
	return err
}
