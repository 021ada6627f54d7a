// Package mosaic records several independently timed frame sources as one video.
// At a fixed output rate it samples the most recent frame of every source,
// composites them into their regions of one canvas, and hands the canvas to a
// file sink and to live publishers.
package mosaic

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/lanikai/mosaic/internal/composite"
	"github.com/lanikai/mosaic/internal/logging"
	"github.com/lanikai/mosaic/internal/sink"
)

var log = logging.DefaultLogger.WithTag("mosaic")

// How often an idle recorder reports that it is waiting for Start.
const idleLogInterval = time.Second

// A Recorder owns one recording session: it drives the fixed-rate tick loop and
// the Idle → Recording → Stopped state machine. A session runs at most once per
// Recorder.
type Recorder struct {
	cfg   Config
	comp  *composite.Compositor
	clock Clock

	publishers []sink.Publisher

	// Guards the session state and the file sink. Writes and Close both happen
	// under it, so a tick never writes to a closed file.
	mu         sync.Mutex
	state      State
	session    string
	startTime  time.Time
	endTime    time.Time
	outputFile string
	file       sink.FileSink
	ticks      uint64
	overruns   uint64
	writeErrs  uint64

	publishErrs uint64 // atomic

	// Closed on Idle → Recording.
	started chan struct{}

	// Closed on Recording → Stopped.
	quit chan struct{}

	running int32
}

func NewRecorder(cfg Config) (*Recorder, error) {
	if err := cfg.validate(); err != nil {
		return nil, errors.Wrap(err, "recorder config")
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock
	}
	if cfg.OpenFile == nil {
		cfg.OpenFile = sink.OpenFile
	}

	comp, err := composite.New(cfg.Width, cfg.Height, cfg.Bindings, cfg.CompositorOptions...)
	if err != nil {
		return nil, errors.Wrap(err, "recorder config")
	}

	return &Recorder{
		cfg:     cfg,
		comp:    comp,
		clock:   cfg.Clock,
		state:   Idle,
		started: make(chan struct{}),
		quit:    make(chan struct{}),
	}, nil
}

// AddPublisher registers a live publisher. Call before Run.
func (r *Recorder) AddPublisher(p sink.Publisher) {
	r.publishers = append(r.publishers, p)
}

// Interval returns the duration of one tick.
func (r *Recorder) Interval() time.Duration {
	return time.Second / time.Duration(r.cfg.FPS)
}

// deadline of tick n relative to the session start. Integer arithmetic keeps
// tick n at exactly n/fps seconds, with no accumulated rounding.
func (r *Recorder) deadline(start time.Time, n int64) time.Time {
	return start.Add(time.Duration(n) * time.Second / time.Duration(r.cfg.FPS))
}

// Start moves an idle session to Recording. The output file, if configured, is
// opened here; failing to open it leaves the session idle and is returned.
// Starting a recording or stopped session is logged and ignored.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case Recording:
		log.Info("Record already started")
		return nil
	case Stopped:
		log.Info("Record already stopped, not restarting")
		return nil
	}

	now := r.clock.Now()
	var path string
	var file sink.FileSink
	if r.cfg.OutputPath != "" {
		path = ResolveOutputPath(r.cfg.OutputPath, now)
		f, err := r.cfg.OpenFile(path, r.cfg.fileOptions())
		if err != nil {
			return errors.Wrap(err, "start recording")
		}
		file = f
	}

	r.state = Recording
	r.session = uuid.NewString()
	r.startTime = now
	r.outputFile = path
	r.file = file
	close(r.started)

	log.Info("Record started file=%s session=%s", path, r.session)
	return nil
}

// Stop moves a recording session to Stopped and finalizes the output file. The
// tick loop exits before its next tick. Stopping a session that is not recording
// is logged and ignored.
func (r *Recorder) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case Idle:
		log.Info("Record not started")
		return nil
	case Stopped:
		log.Info("Record already stopped")
		return nil
	}

	r.state = Stopped
	r.endTime = r.clock.Now()
	close(r.quit)
	log.Info("Record stopped session=%s ticks=%d", r.session, r.ticks)

	return r.closeFile()
}

// closeFile must be called with mu held.
func (r *Recorder) closeFile() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	if err != nil {
		return errors.Wrapf(err, "finalize %s", r.outputFile)
	}
	log.Info("Video saved file=%s", r.outputFile)
	return nil
}

// Run waits for the session to start, then produces one canvas per tick until
// Stop. Cancelling ctx stops a recording session the same way Stop does. Run
// returns an error only if the initial start fails.
func (r *Recorder) Run(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&r.running, 0, 1) {
		return errAlreadyRunning
	}
	defer atomic.StoreInt32(&r.running, 0)

	if r.cfg.InitialStart {
		if err := r.Start(); err != nil {
			return err
		}
	}

	if !r.waitStart(ctx) {
		return nil
	}

	r.mu.Lock()
	start := r.startTime
	r.mu.Unlock()

	for n := int64(0); ; n++ {
		// State is only checked between ticks, never mid-composition.
		select {
		case <-r.quit:
			return nil
		case <-ctx.Done():
			return r.shutdown()
		default:
		}

		r.tick(r.deadline(start, n))

		wait := r.deadline(start, n+1).Sub(r.clock.Now())
		if wait <= 0 {
			// Overrun: go straight to the next tick. No tick is skipped.
			r.mu.Lock()
			r.overruns++
			r.mu.Unlock()
			log.Trace(2, "Tick %d overran by %v", n, -wait)
			continue
		}

		select {
		case <-r.clock.After(wait):
		case <-r.quit:
			return nil
		case <-ctx.Done():
			return r.shutdown()
		}
	}
}

// waitStart blocks until the session starts. It returns false if ctx ends first.
func (r *Recorder) waitStart(ctx context.Context) bool {
	ticker := time.NewTicker(idleLogInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.started:
			return true
		case <-ctx.Done():
			return false
		case <-ticker.C:
			log.Debug("Record waiting")
		}
	}
}

func (r *Recorder) shutdown() error {
	log.Info("Interrupted while recording, finalizing")
	if err := r.Stop(); err != nil {
		log.Error("%v", err)
	}
	return nil
}

// tick composes the canvas for sample time t and delivers it to every sink.
func (r *Recorder) tick(t time.Time) {
	canvas := r.comp.Compose(t)

	r.mu.Lock()
	if r.state != Recording {
		r.mu.Unlock()
		return
	}
	r.ticks++
	if r.file != nil {
		if err := r.file.WriteFrame(canvas); err != nil {
			r.writeErrs++
			log.Warn("Write to %s failed: %v", r.outputFile, err)
		}
	}
	r.mu.Unlock()

	for _, p := range r.publishers {
		if err := p.Publish(t, canvas); err != nil {
			atomic.AddUint64(&r.publishErrs, 1)
			log.Warn("Publish failed: %v", err)
		}
	}
}

func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Recorder) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Status{
		Session:       r.session,
		State:         r.state,
		OutputFile:    r.outputFile,
		Ticks:         r.ticks,
		Overruns:      r.overruns,
		WriteErrors:   r.writeErrs,
		PublishErrors: atomic.LoadUint64(&r.publishErrs),
	}
	if !r.startTime.IsZero() {
		t := r.startTime
		s.StartTime = &t
	}
	if !r.endTime.IsZero() {
		t := r.endTime
		s.EndTime = &t
	}
	return s
}

// Close stops a recording in progress and closes every publisher.
func (r *Recorder) Close() error {
	err := r.Stop()
	for _, p := range r.publishers {
		if perr := p.Close(); perr != nil && err == nil {
			err = perr
		}
	}
	return err
}
