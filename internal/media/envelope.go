package media

import (
	"bytes"
	"time"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// An Envelope carries one encoded picture with its metadata. Broadcast sinks send
// envelopes, and ingest sources accept them alongside bare image bytes, so one
// compositor's output can feed another.
type Envelope struct {
	Seq    uint64 `msgpack:"seq"`
	Time   int64  `msgpack:"ts"` // Unix nanoseconds.
	Width  int    `msgpack:"w"`
	Height int    `msgpack:"h"`
	Format string `msgpack:"fmt"`
	Data   []byte `msgpack:"data"`
}

func (e *Envelope) Timestamp() time.Time {
	return time.Unix(0, e.Time)
}

func (e *Envelope) Marshal() ([]byte, error) {
	return msgpack.Marshal(e)
}

func UnmarshalEnvelope(p []byte) (*Envelope, error) {
	e := new(Envelope)
	if err := msgpack.Unmarshal(p, e); err != nil {
		return nil, errors.Wrap(err, "decode envelope")
	}
	return e, nil
}

// Leading bytes of the image formats accepted from ingest sources. PNG starts
// with 0x89, which is also a msgpack fixmap marker.
var imageMagic = [][]byte{
	[]byte("\x89PNG\r\n\x1a\n"),
	[]byte("\xff\xd8"),
	[]byte("GIF8"),
	[]byte("BM"),
	[]byte("II*\x00"),
	[]byte("MM\x00*"),
}

func hasImageMagic(p []byte) bool {
	for _, m := range imageMagic {
		if bytes.HasPrefix(p, m) {
			return true
		}
	}
	// WebP: "RIFF" size "WEBP".
	return len(p) >= 12 && bytes.HasPrefix(p, []byte("RIFF")) && bytes.Equal(p[8:12], []byte("WEBP"))
}

// Envelopes are msgpack maps. Known image signatures win over the map marker.
func isEnvelope(p []byte) bool {
	if len(p) == 0 || hasImageMagic(p) {
		return false
	}
	b := p[0]
	return (b >= 0x80 && b <= 0x8f) || b == 0xde || b == 0xdf
}
