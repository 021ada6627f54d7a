// Package sink holds the destinations of composited canvases: video files written
// once per tick, and live broadcast publishers.
package sink

import (
	"bytes"
	"image"
	"image/jpeg"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/lanikai/mosaic/internal/logging"
	"github.com/lanikai/mosaic/internal/media"
)

var log = logging.DefaultLogger.WithTag("sink")

// DefaultQuality is the JPEG quality used when none is configured.
const DefaultQuality = 90

// A FileSink receives one canvas per tick. Close finalizes the file and is called
// exactly once.
type FileSink interface {
	WriteFrame(img image.Image) error
	Close() error
}

// A Publisher re-broadcasts canvases live. Publish failures are not fatal to the
// caller.
type Publisher interface {
	Publish(t time.Time, img image.Image) error
	Close() error
}

type FileOptions struct {
	// Four character code of the output codec, e.g. "MJPG".
	Format  string
	Width   int
	Height  int
	FPS     int
	Quality int
}

// OpenFunc opens a file sink for one codec.
type OpenFunc func(path string, opts FileOptions) (FileSink, error)

var (
	writers   = map[string]OpenFunc{}
	writersMu sync.RWMutex

	// Used for codecs without a dedicated writer, when a build provides one.
	fallbackWriter OpenFunc
)

// RegisterWriter makes a codec available to OpenFile.
func RegisterWriter(fourcc string, open OpenFunc) {
	writersMu.Lock()
	defer writersMu.Unlock()
	writers[normalizeFourCC(fourcc)] = open
}

func normalizeFourCC(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" || s == "MJPEG" {
		return "MJPG"
	}
	return s
}

var errUnsupportedFormat = errors.New("unsupported output format")

// OpenFile creates the output file at path for the configured codec.
func OpenFile(path string, opts FileOptions) (FileSink, error) {
	opts.Format = normalizeFourCC(opts.Format)
	if opts.Quality <= 0 {
		opts.Quality = DefaultQuality
	}
	if opts.Width <= 0 || opts.Height <= 0 || opts.FPS <= 0 {
		return nil, errors.Errorf("invalid output geometry %dx%d@%d", opts.Width, opts.Height, opts.FPS)
	}

	writersMu.RLock()
	open, ok := writers[opts.Format]
	writersMu.RUnlock()
	if !ok {
		open = fallbackWriter
	}
	if open == nil {
		return nil, errors.Wrapf(errUnsupportedFormat, "%s", opts.Format)
	}

	fs, err := open(path, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s writer for %s", opts.Format, path)
	}
	return fs, nil
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var b bytes.Buffer
	if err := jpeg.Encode(&b, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// EncodeEnvelope wraps img as a JPEG Envelope for broadcast. seq numbers the
// envelopes of one publisher.
func EncodeEnvelope(seq uint64, t time.Time, img image.Image, quality int) ([]byte, error) {
	data, err := encodeJPEG(img, quality)
	if err != nil {
		return nil, errors.Wrap(err, "encode jpeg")
	}
	b := img.Bounds()
	e := &media.Envelope{
		Seq:    seq,
		Time:   t.UnixNano(),
		Width:  b.Dx(),
		Height: b.Dy(),
		Format: "jpeg",
		Data:   data,
	}
	return e.Marshal()
}
