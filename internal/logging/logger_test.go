package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for s, want := range map[string]Level{
		"e":     Error,
		"WARN":  Warn,
		"info":  Info,
		"D":     Debug,
		"trace": MaxLevel,
		"5":     Level(5),
	} {
		level, err := ParseLevel(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, level, s)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
	_, err = ParseLevel("10")
	assert.Error(t, err)
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var out bytes.Buffer
	log := &Logger{Tag: "test", out: &destination{w: &out}}
	log.SetLevel(Warn)

	log.Info("hidden %d", 1)
	assert.Zero(t, out.Len())

	log.Warn("shown %d", 2)
	assert.Contains(t, out.String(), "shown 2")
	assert.Contains(t, out.String(), "logger_test.go")
	assert.Equal(t, byte('\n'), out.Bytes()[out.Len()-1])
}

func TestWithTagInheritsDestination(t *testing.T) {
	var out bytes.Buffer
	parent := &Logger{out: &destination{w: &out}}
	parent.SetLevel(Debug)

	child := parent.WithTag("child")
	child.Debug("hello")
	assert.Contains(t, out.String(), "child")
	assert.Contains(t, out.String(), "hello")
}

func TestWriterLogsEachWrite(t *testing.T) {
	var out bytes.Buffer
	log := &Logger{Tag: "w", out: &destination{w: &out}}
	log.SetLevel(Info)

	n, err := log.Writer(Info).Write([]byte("from a library\n"))
	require.NoError(t, err)
	assert.Equal(t, 15, n)
	assert.Contains(t, out.String(), "from a library")
}

func TestSetDefaultLevel(t *testing.T) {
	configMu.Lock()
	saved, savedEnv := defaultLevel, envDefault
	envDefault = false
	configMu.Unlock()
	defer func() {
		configMu.Lock()
		defaultLevel, envDefault = saved, savedEnv
		configMu.Unlock()
	}()

	derived := DefaultLogger.WithTag("follows-default")
	SetDefaultLevel(Debug)
	assert.Equal(t, Debug, DefaultLogger.Level())
	assert.Equal(t, Debug, derived.Level())

	pinned := DefaultLogger.WithTag("pinned")
	pinned.SetLevel(Error)
	SetDefaultLevel(Warn)
	assert.Equal(t, Warn, DefaultLogger.Level())
	assert.Equal(t, Error, pinned.Level())
}
