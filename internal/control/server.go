// Package control exposes a Recorder to operators: an HTTP API with start, stop
// and status, websocket endpoints for frame ingest and live viewing, and the
// same commands over MQTT.
package control

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"golang.org/x/net/netutil"

	"github.com/lanikai/mosaic"
	"github.com/lanikai/mosaic/internal/logging"
)

var log = logging.DefaultLogger.WithTag("control")

const shutdownTimeout = 5 * time.Second

// Controller is the part of mosaic.Recorder driven by the control surface.
type Controller interface {
	Start() error
	Stop() error
	Status() mosaic.Status
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server is the HTTP control API.
type Server struct {
	ctrl   Controller
	router *gin.Engine
}

type Option func(*Server)

// WithLive serves live canvases from h on GET /live.
func WithLive(h http.Handler) Option {
	return func(s *Server) {
		s.router.GET("/live", gin.WrapH(h))
	}
}

// WithIngest accepts websocket frame pushes on GET /ingest/:name.
func WithIngest(in *Ingest) Option {
	return func(s *Server) {
		s.router.GET("/ingest/:name", func(c *gin.Context) {
			in.ServeName(c.Writer, c.Request, c.Param("name"))
		})
	}
}

func NewServer(ctrl Controller, opts ...Option) *Server {
	router := gin.New()
	router.Use(gin.LoggerWithWriter(log.Writer(logging.Debug)))
	router.Use(gin.Recovery())

	s := &Server{ctrl: ctrl, router: router}
	router.POST("/start", s.handleStart)
	router.POST("/stop", s.handleStop)
	router.GET("/status", s.handleStatus)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start succeeds when recording, including when it already was. It fails only
// when the output file cannot be opened.
func (s *Server) handleStart(c *gin.Context) {
	if err := s.ctrl.Start(); err != nil {
		log.Error("Start failed: %v", err)
		c.JSON(http.StatusInternalServerError, errorResponse{err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.ctrl.Status())
}

func (s *Server) handleStop(c *gin.Context) {
	if err := s.ctrl.Stop(); err != nil {
		log.Error("Stop failed: %v", err)
		c.JSON(http.StatusInternalServerError, errorResponse{err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.ctrl.Status())
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.ctrl.Status())
}

// ListenAndServe serves the API on addr until ctx is cancelled, accepting at
// most maxConns connections at a time (0 means no limit).
func (s *Server) ListenAndServe(ctx context.Context, addr string, maxConns int) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrap(err, "control listen")
	}
	if maxConns > 0 {
		l = netutil.LimitListener(l, maxConns)
	}
	return s.Serve(ctx, l)
}

func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{Handler: s.router}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(l)
	}()
	log.Info("Control API listening on %s", l.Addr())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != http.ErrServerClosed {
		return err
	}
	return nil
}
