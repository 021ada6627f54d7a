package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopSource struct{ spec Spec }

func (nopSource) Start(*Buffer) error { return nil }
func (nopSource) Close() error        { return nil }

func TestParseSpec(t *testing.T) {
	s := ParseSpec(" v4l2:/dev/video0 ")
	assert.Equal(t, "v4l2", s.Tag)
	assert.Equal(t, "/dev/video0", s.Path)

	s = ParseSpec("http://cam.local/video.mjpg")
	assert.Equal(t, "http", s.Tag)
	assert.Equal(t, "http://cam.local/video.mjpg", s.Raw)

	s = ParseSpec("bare")
	assert.Equal(t, "bare", s.Tag)
	assert.Empty(t, s.Path)
}

func TestOpenSource(t *testing.T) {
	RegisterSourceType("nop", func(spec Spec) (Source, error) {
		return nopSource{spec}, nil
	})

	src, err := OpenSource("nop:thing")
	require.NoError(t, err)
	assert.Equal(t, "thing", src.(nopSource).spec.Path)
	assert.Contains(t, SourceTypes(), "nop")

	_, err = OpenSource("nosuch:thing")
	assert.Error(t, err)
}
