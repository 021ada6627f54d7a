package broker

import (
	"github.com/pkg/errors"

	"github.com/lanikai/mosaic/internal/media"
)

// Register makes "mqtt:<topic>" sources available, subscribing through c.
func Register(c Client) {
	media.RegisterSourceType("mqtt", func(spec media.Spec) (media.Source, error) {
		if spec.Path == "" {
			return nil, errors.New("mqtt source without topic")
		}
		return NewSource(c, spec.Path), nil
	})
}

// Source ingests every message published on one topic as a frame.
type Source struct {
	client Client
	topic  string
}

func NewSource(c Client, topic string) *Source {
	return &Source{client: c, topic: topic}
}

func (s *Source) Start(buf *media.Buffer) error {
	return Subscribe(s.client, s.topic, func(topic string, payload []byte) {
		media.Ingest(buf, "mqtt:"+topic, payload)
	})
}

func (s *Source) Close() error {
	return Unsubscribe(s.client, s.topic)
}
