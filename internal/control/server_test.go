package control

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanikai/mosaic"
	"github.com/lanikai/mosaic/internal/broker/brokertest"
	"github.com/lanikai/mosaic/internal/media"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeController follows the recorder's state machine without recording.
type fakeController struct {
	mu       sync.Mutex
	state    mosaic.State
	starts   int
	stops    int
	startErr error
}

func (c *fakeController) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.starts++
	if c.startErr != nil {
		return c.startErr
	}
	if c.state == mosaic.Idle {
		c.state = mosaic.Recording
	}
	return nil
}

func (c *fakeController) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stops++
	if c.state == mosaic.Recording {
		c.state = mosaic.Stopped
	}
	return nil
}

func (c *fakeController) Status() mosaic.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return mosaic.Status{Session: "test", State: c.state}
}

func request(t *testing.T, h http.Handler, method, path string) (int, map[string]interface{}) {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, path, nil))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestStartStopStatus(t *testing.T) {
	ctrl := &fakeController{}
	h := NewServer(ctrl).Handler()

	code, body := request(t, h, http.MethodGet, "/status")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "idle", body["state"])

	for i := 0; i < 2; i++ {
		code, body = request(t, h, http.MethodPost, "/start")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "recording", body["state"])
	}

	for i := 0; i < 2; i++ {
		code, body = request(t, h, http.MethodPost, "/stop")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "stopped", body["state"])
	}
	assert.Equal(t, 2, ctrl.starts)
	assert.Equal(t, 2, ctrl.stops)
}

func TestStartFailure(t *testing.T) {
	ctrl := &fakeController{startErr: errors.New("cannot open /nope/out.avi")}
	h := NewServer(ctrl).Handler()

	code, body := request(t, h, http.MethodPost, "/start")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Contains(t, body["error"], "/nope/out.avi")
}

func TestMethodNotRouted(t *testing.T) {
	h := NewServer(&fakeController{}).Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/start", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClient(t *testing.T) {
	ctrl := &fakeController{}
	srv := httptest.NewServer(NewServer(ctrl).Handler())
	defer srv.Close()

	c := NewClient(strings.TrimPrefix(srv.URL, "http://"))
	ctx := context.Background()

	s, err := c.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, mosaic.Idle, s.State)

	s, err = c.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, mosaic.Recording, s.State)
	assert.Equal(t, "test", s.Session)

	s, err = c.Stop(ctx)
	require.NoError(t, err)
	assert.Equal(t, mosaic.Stopped, s.State)
}

func TestClientReportsServerError(t *testing.T) {
	ctrl := &fakeController{startErr: errors.New("unsupported output format")}
	srv := httptest.NewServer(NewServer(ctrl).Handler())
	defer srv.Close()

	_, err := NewClient(srv.URL).Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestServeShutsDownOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewServer(&fakeController{}).Serve(ctx, l) }()

	_, err = NewClient(l.Addr().String()).Status(context.Background())
	require.NoError(t, err)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestLiveRoute(t *testing.T) {
	live := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := NewServer(&fakeController{}, WithLive(live)).Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
}

func pngBytes(t *testing.T) []byte {
	var b bytes.Buffer
	require.NoError(t, png.Encode(&b, image.NewGray(image.Rect(0, 0, 4, 3))))
	return b.Bytes()
}

func TestWebsocketIngest(t *testing.T) {
	in := NewIngest()
	in.Register()

	src, err := media.OpenSource("ws:cam1")
	require.NoError(t, err)
	buf := media.NewBuffer(0)
	require.NoError(t, src.Start(buf))
	defer src.Close()

	srv := httptest.NewServer(NewServer(&fakeController{}, WithIngest(in)).Handler())
	defer srv.Close()
	base := "ws" + strings.TrimPrefix(srv.URL, "http")

	ws, _, err := websocket.DefaultDialer.Dial(base+"/ingest/cam1", nil)
	require.NoError(t, err)
	require.NoError(t, ws.WriteMessage(websocket.BinaryMessage, pngBytes(t)))
	require.NoError(t, ws.WriteMessage(websocket.BinaryMessage, []byte("garbage")))
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("hello")))
	require.NoError(t, ws.WriteMessage(websocket.BinaryMessage, pngBytes(t)))
	ws.Close()

	assert.Eventually(t, func() bool { return buf.Len() == 2 }, 2*time.Second, 5*time.Millisecond)

	_, resp, err := websocket.DefaultDialer.Dial(base+"/ingest/unknown", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebsocketSourceBoundOnce(t *testing.T) {
	in := NewIngest()
	in.Register()

	a, err := media.OpenSource("ws:dup")
	require.NoError(t, err)
	require.NoError(t, a.Start(media.NewBuffer(0)))

	b, err := media.OpenSource("ws:dup")
	require.NoError(t, err)
	assert.Error(t, b.Start(media.NewBuffer(0)))

	require.NoError(t, a.Close())
	assert.NoError(t, b.Start(media.NewBuffer(0)))

	_, err = media.OpenSource("ws:")
	assert.Error(t, err)
}

func TestMQTTControl(t *testing.T) {
	c := brokertest.NewClient()
	ctrl := &fakeController{}
	require.NoError(t, SubscribeMQTT(c, "studio", ctrl))

	c.Publish("studio/start", 0, false, nil)
	c.Publish("studio/start", 0, false, []byte("ignored"))
	c.Publish("studio/stop", 0, false, nil)

	assert.Equal(t, 2, ctrl.starts)
	assert.Equal(t, 1, ctrl.stops)

	var last map[string]interface{}
	for _, m := range c.Published() {
		if m.Topic() == "studio/status" {
			require.NoError(t, json.Unmarshal(m.Payload(), &last))
		}
	}
	assert.Equal(t, "stopped", last["state"])
}
