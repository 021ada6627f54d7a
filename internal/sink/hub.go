package sink

import (
	"image"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lanikai/mosaic/internal/media"
)

const (
	// Envelopes queued per viewer before the oldest is dropped.
	viewerBacklog = 4

	writeWait = 5 * time.Second
)

// Hub re-broadcasts canvases to websocket viewers. Each message is a binary
// msgpack Envelope carrying a JPEG.
type Hub struct {
	flow    media.Flow
	quality int
	seq     uint64
	closed  int32

	upgrader websocket.Upgrader
}

func NewHub(quality int) *Hub {
	if quality <= 0 {
		quality = DefaultQuality
	}
	return &Hub{
		quality: quality,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Publish encodes img only when somebody is watching.
func (h *Hub) Publish(t time.Time, img image.Image) error {
	if atomic.LoadInt32(&h.closed) != 0 || h.flow.NumSubscribers() == 0 {
		return nil
	}

	p, err := EncodeEnvelope(atomic.AddUint64(&h.seq, 1), t, img, h.quality)
	if err != nil {
		return err
	}
	_, err = h.flow.Write(p)
	return err
}

// Subscribe returns a channel of encoded envelopes. Release it with Unsubscribe.
func (h *Hub) Subscribe() <-chan []byte {
	return h.flow.Subscribe(viewerBacklog)
}

func (h *Hub) Unsubscribe(ch <-chan []byte) {
	h.flow.Unsubscribe(ch)
}

func (h *Hub) Viewers() int {
	return h.flow.NumSubscribers()
}

// ServeHTTP upgrades the request to a websocket and streams envelopes until the
// viewer goes away or the hub is closed.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if atomic.LoadInt32(&h.closed) != 0 {
		http.Error(w, "broadcast closed", http.StatusServiceUnavailable)
		return
	}
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("upgrade: %v", err)
		return
	}
	defer ws.Close()

	ch := h.Subscribe()
	defer h.Unsubscribe(ch)
	log.Info("Viewer %s connected", r.RemoteAddr)

	// Viewers never send anything useful, but reading is needed to notice a close.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := ws.NextReader(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case p, ok := <-ch:
			if !ok {
				ws.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
					time.Now().Add(writeWait))
				return
			}
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.BinaryMessage, p); err != nil {
				log.Debug("Viewer %s write failed: %v", r.RemoteAddr, err)
				return
			}
		case <-gone:
			log.Info("Viewer %s disconnected", r.RemoteAddr)
			return
		}
	}
}

func (h *Hub) Close() error {
	if !atomic.CompareAndSwapInt32(&h.closed, 0, 1) {
		return nil
	}
	return h.flow.Close()
}
