// Package gstreamer ingests network streams (RTSP and anything else decodebin
// understands) through a GStreamer pipeline that re-encodes each decoded picture
// as JPEG. The pipeline itself is only built with the "gst" build tag.
package gstreamer

import (
	"fmt"
	"strings"

	"github.com/lanikai/mosaic/internal/logging"
)

var log = logging.DefaultLogger.WithTag("gst")

// Name of the appsink element in every pipeline.
const sinkName = "mosaicsink"

const defaultQuality = 85

// pipelineDescription returns a gst-launch style pipeline for url. Decoded
// pictures leave the pipeline as JPEG so they go through the common ingest path.
func pipelineDescription(url string, quality int) string {
	if quality <= 0 || quality > 100 {
		quality = defaultQuality
	}

	var src string
	if strings.HasPrefix(url, "rtsp://") || strings.HasPrefix(url, "rtsps://") {
		// TCP interleaving keeps working behind NAT and through most proxies.
		src = fmt.Sprintf("rtspsrc location=%q protocols=tcp latency=200", url)
	} else {
		src = fmt.Sprintf("uridecodebin uri=%q", url)
	}

	parts := []string{
		src,
		"decodebin",
		"videoconvert",
		fmt.Sprintf("jpegenc quality=%d", quality),
		fmt.Sprintf("appsink name=%s sync=false max-buffers=1 drop=true", sinkName),
	}
	if !strings.HasPrefix(src, "rtspsrc") {
		// uridecodebin already decodes.
		parts = append(parts[:1], parts[2:]...)
	}
	return strings.Join(parts, " ! ")
}
