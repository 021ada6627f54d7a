package broker

import (
	"image"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/lanikai/mosaic/internal/sink"
)

// Publisher sends each canvas as a JPEG envelope to one topic, QoS 0.
type Publisher struct {
	client  Client
	topic   string
	quality int
	seq     uint64
}

func NewPublisher(c Client, topic string, quality int) *Publisher {
	if quality <= 0 {
		quality = sink.DefaultQuality
	}
	return &Publisher{client: c, topic: topic, quality: quality}
}

func (p *Publisher) Publish(t time.Time, img image.Image) error {
	payload, err := sink.EncodeEnvelope(atomic.AddUint64(&p.seq, 1), t, img, p.quality)
	if err != nil {
		return err
	}
	if err := wait(p.client.Publish(p.topic, 0, false, payload), publishTimeout); err != nil {
		return errors.Wrapf(err, "publish %s", p.topic)
	}
	return nil
}

// Close leaves the shared client connected.
func (p *Publisher) Close() error {
	return nil
}
