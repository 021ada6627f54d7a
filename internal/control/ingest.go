package control

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/lanikai/mosaic/internal/media"
)

// Largest accepted ingest message.
const maxIngestMessage = 16 << 20

// Ingest routes websocket frame pushes to "ws:<name>" sources. Every binary
// message is one encoded picture or envelope.
type Ingest struct {
	mu      sync.RWMutex
	buffers map[string]*media.Buffer

	upgrader websocket.Upgrader
}

func NewIngest() *Ingest {
	return &Ingest{
		buffers: make(map[string]*media.Buffer),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Register makes "ws:<name>" sources available.
func (in *Ingest) Register() {
	media.RegisterSourceType("ws", func(spec media.Spec) (media.Source, error) {
		if spec.Path == "" {
			return nil, errors.New("ws source without name")
		}
		return &wsSource{ingest: in, name: spec.Path}, nil
	})
}

func (in *Ingest) buffer(name string) *media.Buffer {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.buffers[name]
}

// ServeName accepts a websocket pushing frames for the named source.
func (in *Ingest) ServeName(w http.ResponseWriter, r *http.Request, name string) {
	buf := in.buffer(name)
	if buf == nil {
		http.Error(w, "unknown source "+name, http.StatusNotFound)
		return
	}

	ws, err := in.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("upgrade: %v", err)
		return
	}
	defer ws.Close()
	ws.SetReadLimit(maxIngestMessage)
	log.Info("Ingest %s connected from %s", name, r.RemoteAddr)

	for {
		typ, p, err := ws.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("Ingest %s: %v", name, err)
			}
			return
		}
		if typ != websocket.BinaryMessage {
			log.Debug("Ingest %s: ignoring message type %d", name, typ)
			continue
		}
		media.Ingest(buf, "ws:"+name, p)
	}
}

type wsSource struct {
	ingest *Ingest
	name   string
}

func (s *wsSource) Start(buf *media.Buffer) error {
	s.ingest.mu.Lock()
	defer s.ingest.mu.Unlock()
	if _, exists := s.ingest.buffers[s.name]; exists {
		return errors.Errorf("ws source %q already bound", s.name)
	}
	s.ingest.buffers[s.name] = buf
	return nil
}

func (s *wsSource) Close() error {
	s.ingest.mu.Lock()
	defer s.ingest.mu.Unlock()
	delete(s.ingest.buffers, s.name)
	return nil
}
