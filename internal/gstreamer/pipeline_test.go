package gstreamer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPipelineDescriptionRTSP(t *testing.T) {
	desc := pipelineDescription("rtsp://cam.local:554/stream1", 0)
	assert.Equal(t,
		`rtspsrc location="rtsp://cam.local:554/stream1" protocols=tcp latency=200 ! decodebin ! videoconvert ! jpegenc quality=85 ! appsink name=mosaicsink sync=false max-buffers=1 drop=true`,
		desc)
}

func TestPipelineDescriptionURI(t *testing.T) {
	desc := pipelineDescription("file:///tmp/clip.mp4", 70)
	assert.Equal(t,
		`uridecodebin uri="file:///tmp/clip.mp4" ! videoconvert ! jpegenc quality=70 ! appsink name=mosaicsink sync=false max-buffers=1 drop=true`,
		desc)
}
