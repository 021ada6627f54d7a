package media

import (
	"sync"
)

// A LoopFunc is a long-running function, e.g. a read loop. It should terminate
// promptly when the quit channel is closed.
type LoopFunc func(quit <-chan struct{}) error

// A Loop runs a LoopFunc in a single goroutine. Pull-style sources (cameras, HTTP
// streams, generators) use it as their producer context.
type Loop struct {
	name string
	run  LoopFunc

	// Closed when Stop() is requested, to trigger run loop exit.
	quit chan struct{}

	// Closed when run loop actually terminates.
	terminated chan struct{}

	err error

	sync.Mutex
}

func NewLoop(name string, run LoopFunc) *Loop {
	return &Loop{name: name, run: run}
}

// Start launches the loop. Starting a running loop is an error.
func (l *Loop) Start() error {
	l.Lock()
	defer l.Unlock()

	if l.quit != nil {
		return errAlreadyRunning
	}
	l.quit = make(chan struct{})
	l.terminated = make(chan struct{})
	l.err = nil

	go func(quit <-chan struct{}, terminated chan<- struct{}) {
		log.Debug("Starting loop: %s", l.name)
		err := l.run(quit)
		if err != nil {
			log.Warn("Loop %s exited: %v", l.name, err)
		}
		l.Lock()
		l.err = err
		l.Unlock()
		// Close terminated channel to unblock Stop().
		close(terminated)
	}(l.quit, l.terminated)
	return nil
}

// Stop requests loop exit, waits for it, and returns the loop's error. Stopping a
// loop that is not running does nothing.
func (l *Loop) Stop() error {
	l.Lock()
	quit, terminated := l.quit, l.terminated
	l.quit, l.terminated = nil, nil
	l.Unlock()

	if quit == nil {
		return nil
	}

	log.Debug("Stopping loop: %s", l.name)
	close(quit)
	<-terminated

	l.Lock()
	defer l.Unlock()
	return l.err
}

// Done is closed when the current run terminates on its own or via Stop. It is nil
// before the first Start.
func (l *Loop) Done() <-chan struct{} {
	l.Lock()
	defer l.Unlock()
	return l.terminated
}
