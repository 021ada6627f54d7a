package sink

import (
	"image"

	"github.com/icza/mjpeg"
)

func init() {
	RegisterWriter("MJPG", openMJPEG)
}

// mjpegFile writes an AVI container of JPEG-compressed frames.
type mjpegFile struct {
	aw      mjpeg.AviWriter
	quality int
	frames  int
}

func openMJPEG(path string, opts FileOptions) (FileSink, error) {
	aw, err := mjpeg.New(path, int32(opts.Width), int32(opts.Height), int32(opts.FPS))
	if err != nil {
		return nil, err
	}
	return &mjpegFile{aw: aw, quality: opts.Quality}, nil
}

func (f *mjpegFile) WriteFrame(img image.Image) error {
	data, err := encodeJPEG(img, f.quality)
	if err != nil {
		return err
	}
	if err := f.aw.AddFrame(data); err != nil {
		return err
	}
	f.frames++
	return nil
}

func (f *mjpegFile) Close() error {
	log.Debug("Closing MJPEG file after %d frames", f.frames)
	return f.aw.Close()
}
