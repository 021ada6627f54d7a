package media

import (
	"bytes"
	"image"

	// Formats accepted from ingest sources.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/pkg/errors"
)

// DecodePayload turns one ingest message into an image. The message is either an
// encoded picture (JPEG, PNG, GIF, BMP, TIFF or WebP) or an Envelope wrapping one.
func DecodePayload(p []byte) (image.Image, error) {
	if len(p) == 0 {
		return nil, errEmptyPayload
	}

	if isEnvelope(p) {
		e, err := UnmarshalEnvelope(p)
		if err != nil {
			return nil, err
		}
		if len(e.Data) == 0 {
			return nil, errEmptyPayload
		}
		p = e.Data
	}

	img, format, err := image.Decode(bytes.NewReader(p))
	if err != nil {
		return nil, errors.Wrap(err, "decode image")
	}
	log.Trace(5, "Decoded %s %v", format, img.Bounds())
	return img, nil
}

// Ingest decodes p and appends it to buf. A payload that cannot be decoded is
// logged and dropped; buf is left untouched.
func Ingest(buf *Buffer, name string, p []byte) bool {
	img, err := DecodePayload(p)
	if err != nil {
		log.Warn("Dropping frame from %s: %v", name, err)
		return false
	}
	buf.Put(img)
	return true
}
