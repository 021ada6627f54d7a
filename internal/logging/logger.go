package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

const timestampFormat = "2006-01-02 15:04:05.000"

type Logger struct {
	// Tag used to filter and classify log messages.
	Tag string

	// Explicit level for this logger. When nil the logger follows the default
	// level, which configuration may change after package initialization.
	level *Level

	// Destination shared by all derived loggers. Its mutex prevents messages from
	// different goroutines from interleaving.
	out *destination
}

type destination struct {
	w io.Writer
	sync.Mutex
}

// Write to stderr by default.
var DefaultLogger = &Logger{out: &destination{w: os.Stderr}}

// Override the destination for this logger and every logger derived from it.
func (log *Logger) SetDestination(w io.Writer) {
	log.out.Lock()
	log.out.w = w
	log.out.Unlock()
}

// Level reports the level at which this logger logs. Messages intended for a higher
// (more verbose) level are ignored.
func (log *Logger) Level() Level {
	if log.level != nil {
		return *log.level
	}
	configMu.Lock()
	defer configMu.Unlock()
	return defaultLevel
}

// SetLevel pins the level of this logger, detaching it from the default level.
func (log *Logger) SetLevel(level Level) {
	log.level = &level
}

// Derive a new logger with the given tag. A LOGLEVEL directive for the tag pins its
// level; otherwise it follows the default.
func (log *Logger) WithTag(tag string) *Logger {
	derived := &Logger{Tag: tag, level: log.level, out: log.out}
	if level := determineLevel(tag, -100); level != -100 {
		derived.level = &level
	}
	return derived
}

// Wrapper for []byte that implements io.Writer. Simpler and cheaper than
// bytes.Buffer.
type buffer []byte

func (b *buffer) Write(p []byte) (int, error) {
	*b = append(*b, p...)
	return len(p), nil
}

func (b *buffer) writeByte(c byte) {
	*b = append(*b, c)
}

// A global buffer pool, shared across all loggers.
var bufPool = sync.Pool{
	New: func() interface{} {
		return make(buffer, 0, 256)
	},
}

// Log a message at the given level. Include the file and line number from
// 'calldepth' steps up the call stack.
func (log *Logger) Log(level Level, calldepth int, format string, a ...interface{}) {
	if level > log.Level() {
		return
	}

	buf := bufPool.Get().(buffer)
	defer func() { bufPool.Put(buf[:0]) }()

	buf = time.Now().AppendFormat(buf, timestampFormat)
	buf.writeByte(' ')
	buf = append(buf, level.color().Sprintf("%c/%s", level.letter(), log.Tag)...)

	// Get the caller of Error()/Warn()/Info()/etc.
	_, file, line, ok := runtime.Caller(calldepth + 1)
	if !ok {
		file = "?"
	}
	fmt.Fprintf(&buf, "[%s:%d] ", filepath.Base(file), line)
	fmt.Fprintf(&buf, format, a...)

	if n := len(format); n == 0 || format[n-1] != '\n' {
		buf.writeByte('\n')
	}

	log.out.Lock()
	defer log.out.Unlock()
	if _, err := log.out.w.Write(buf); err != nil {
		panic(fmt.Sprintf("Failed to log to %v: %v", log.out.w, err))
	}
}

func (log *Logger) Error(format string, a ...interface{}) {
	log.Log(Error, 1, format, a...)
}

func (log *Logger) Warn(format string, a ...interface{}) {
	log.Log(Warn, 1, format, a...)
}

func (log *Logger) Info(format string, a ...interface{}) {
	log.Log(Info, 1, format, a...)
}

func (log *Logger) Debug(format string, a ...interface{}) {
	log.Log(Debug, 1, format, a...)
}

func (log *Logger) Trace(n int, format string, a ...interface{}) {
	log.Log(Level(n), 1, format, a...)
}

// Writer returns an io.Writer that logs each write as one message at the given
// level. Used to route third-party library output through the tagged logger.
func (log *Logger) Writer(level Level) io.Writer {
	return writerFunc(func(p []byte) (int, error) {
		log.Log(level, 2, "%s", p)
		return len(p), nil
	})
}

type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }
