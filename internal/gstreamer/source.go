//go:build gst

package gstreamer

import (
	"time"

	"github.com/pkg/errors"
	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"

	"github.com/lanikai/mosaic/internal/media"
)

// Delay between pipeline restarts after an error or end of stream.
var restartDelay = 2 * time.Second

func init() {
	gst.Init(nil)

	open := func(spec media.Spec) (media.Source, error) {
		return NewSource(spec.Raw, defaultQuality), nil
	}
	media.RegisterSourceType("rtsp", open)
	media.RegisterSourceType("rtsps", open)
	media.RegisterSourceType("gst", func(spec media.Spec) (media.Source, error) {
		return NewSource(spec.Path, defaultQuality), nil
	})
}

// Source runs a GStreamer pipeline for one URL and restarts it when it fails.
type Source struct {
	url     string
	quality int
	loop    *media.Loop
}

func NewSource(url string, quality int) *Source {
	return &Source{url: url, quality: quality}
}

func (s *Source) Start(buf *media.Buffer) error {
	s.loop = media.NewLoop("gst "+s.url, func(quit <-chan struct{}) error {
		for {
			err := s.run(buf, quit)
			select {
			case <-quit:
				return nil
			default:
			}
			log.Warn("Pipeline for %s stopped: %v", s.url, err)

			select {
			case <-quit:
				return nil
			case <-time.After(restartDelay):
			}
		}
	})
	return s.loop.Start()
}

// run plays one pipeline until quit, an error, or end of stream.
func (s *Source) run(buf *media.Buffer, quit <-chan struct{}) error {
	pipeline, err := gst.NewPipelineFromString(pipelineDescription(s.url, s.quality))
	if err != nil {
		return errors.Wrap(err, "create pipeline")
	}
	defer pipeline.SetState(gst.StateNull)

	elem, err := pipeline.GetElementByName(sinkName)
	if err != nil {
		return errors.Wrap(err, "find appsink")
	}
	sink := app.SinkFromElement(elem)
	sink.SetCallbacks(&app.SinkCallbacks{
		NewSampleFunc: func(sink *app.Sink) gst.FlowReturn {
			sample := sink.PullSample()
			if sample == nil {
				return gst.FlowOK
			}
			buffer := sample.GetBuffer()
			if buffer == nil {
				return gst.FlowOK
			}
			mapInfo := buffer.Map(gst.MapRead)
			// Copy, GStreamer reuses the buffer.
			data := append([]byte(nil), mapInfo.Bytes()...)
			buffer.Unmap()

			media.Ingest(buf, s.url, data)
			return gst.FlowOK
		},
	})

	if err := pipeline.SetState(gst.StatePlaying); err != nil {
		return errors.Wrap(err, "play")
	}
	log.Info("Playing %s", s.url)

	bus := pipeline.GetPipelineBus()
	for {
		select {
		case <-quit:
			return nil
		default:
		}

		msg := bus.TimedPop(50 * time.Millisecond)
		if msg == nil {
			continue
		}
		switch msg.Type() {
		case gst.MessageEOS:
			return errors.New("end of stream")
		case gst.MessageError:
			gerr := msg.ParseError()
			return errors.Errorf("%s (%s)", gerr.Error(), gerr.DebugString())
		}
	}
}

func (s *Source) Close() error {
	if s.loop == nil {
		return nil
	}
	return s.loop.Stop()
}
