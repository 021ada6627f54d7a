package media

import (
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Delay between reconnection attempts of an HTTP stream.
var reconnectDelay = time.Second

func init() {
	open := func(spec Spec) (Source, error) {
		return NewMJPEGSource(spec.Raw, http.DefaultClient), nil
	}
	RegisterSourceType("http", open)
	RegisterSourceType("https", open)
}

// MJPEGSource pulls a multipart/x-mixed-replace stream, as served by most IP
// cameras, and delivers each part as a frame. The stream is reopened after errors.
type MJPEGSource struct {
	url    string
	client *http.Client
	loop   *Loop
}

func NewMJPEGSource(url string, client *http.Client) *MJPEGSource {
	return &MJPEGSource{url: url, client: client}
}

func (s *MJPEGSource) Start(buf *Buffer) error {
	s.loop = NewLoop("mjpeg "+s.url, func(quit <-chan struct{}) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			<-quit
			cancel()
		}()

		for {
			err := s.stream(ctx, buf)
			if ctx.Err() != nil {
				return nil
			}
			log.Warn("MJPEG stream %s interrupted: %v", s.url, err)

			select {
			case <-quit:
				return nil
			case <-time.After(reconnectDelay):
			}
		}
	})
	return s.loop.Start()
}

func (s *MJPEGSource) stream(ctx context.Context, buf *Buffer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("unexpected status %s", resp.Status)
	}

	mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		return errors.Wrap(err, "content type")
	}
	if !strings.HasPrefix(mediaType, "multipart/") {
		return errors.Errorf("not a multipart stream: %s", mediaType)
	}
	boundary := params["boundary"]
	if boundary == "" {
		return errNoBoundary
	}

	r := multipart.NewReader(resp.Body, strings.TrimPrefix(boundary, "--"))
	for {
		part, err := r.NextPart()
		if err != nil {
			if err == io.EOF {
				return io.ErrUnexpectedEOF
			}
			return err
		}
		data, err := readPart(part)
		part.Close()
		if err != nil {
			return err
		}
		Ingest(buf, s.url, data)
	}
}

// readPart returns the body of one part. With a Content-Length header it returns
// as soon as the frame is in, without waiting for the next boundary.
func readPart(part *multipart.Part) ([]byte, error) {
	if n, err := strconv.Atoi(part.Header.Get("Content-Length")); err == nil && n > 0 {
		data := make([]byte, n)
		if _, err := io.ReadFull(part, data); err != nil {
			return nil, errors.Wrap(err, "read part")
		}
		return data, nil
	}
	return io.ReadAll(part)
}

func (s *MJPEGSource) Close() error {
	if s.loop == nil {
		return nil
	}
	return s.loop.Stop()
}
