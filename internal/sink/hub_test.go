package sink

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanikai/mosaic/internal/media"
)

func dialHub(t *testing.T, h *Hub) (*websocket.Conn, func()) {
	srv := httptest.NewServer(h)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return ws, func() {
		ws.Close()
		srv.Close()
	}
}

func TestHubPublishWithoutViewers(t *testing.T) {
	h := NewHub(0)
	defer h.Close()

	assert.NoError(t, h.Publish(time.Now(), canvas(4, 4, color.Black)))
	assert.Equal(t, uint64(0), h.seq, "nothing encoded")
}

func TestHubBroadcast(t *testing.T) {
	h := NewHub(90)
	defer h.Close()

	ws, done := dialHub(t, h)
	defer done()
	require.Eventually(t, func() bool { return h.Viewers() == 1 }, time.Second, 5*time.Millisecond)

	ts := time.Unix(1700000000, 0)
	require.NoError(t, h.Publish(ts, canvas(16, 8, color.RGBA{0, 0, 255, 255})))

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	typ, p, err := ws.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, typ)

	e, err := media.UnmarshalEnvelope(p)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), e.Seq)
	assert.True(t, ts.Equal(e.Timestamp()))

	img, err := jpeg.Decode(bytes.NewReader(e.Data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 16, 8), img.Bounds())
}

func TestHubViewerDisconnect(t *testing.T) {
	h := NewHub(90)
	defer h.Close()

	ws, done := dialHub(t, h)
	defer done()
	require.Eventually(t, func() bool { return h.Viewers() == 1 }, time.Second, 5*time.Millisecond)

	ws.Close()
	assert.Eventually(t, func() bool { return h.Viewers() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHubCloseEndsStreams(t *testing.T) {
	h := NewHub(90)

	ws, done := dialHub(t, h)
	defer done()
	require.Eventually(t, func() bool { return h.Viewers() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, h.Close())
	assert.NoError(t, h.Close())
	assert.NoError(t, h.Publish(time.Now(), canvas(4, 4, color.Black)))

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := ws.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}

func TestHubSubscribeAfterClose(t *testing.T) {
	h := NewHub(0)
	require.NoError(t, h.Close())

	ch := h.Subscribe()
	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription after close left open")
	}
	assert.Equal(t, 0, h.Viewers())
}
