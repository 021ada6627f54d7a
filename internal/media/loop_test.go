package media

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopStartStop(t *testing.T) {
	started := make(chan struct{})
	l := NewLoop("test", func(quit <-chan struct{}) error {
		close(started)
		<-quit
		return nil
	})

	require.NoError(t, l.Start())
	<-started
	assert.Equal(t, errAlreadyRunning, l.Start())
	assert.NoError(t, l.Stop())
	assert.NoError(t, l.Stop(), "stopping twice is harmless")
}

func TestLoopReportsError(t *testing.T) {
	boom := errors.New("boom")
	l := NewLoop("failing", func(quit <-chan struct{}) error {
		<-quit
		return boom
	})
	require.NoError(t, l.Start())
	assert.Equal(t, boom, l.Stop())
}

func TestLoopDoneOnOwnExit(t *testing.T) {
	l := NewLoop("short", func(quit <-chan struct{}) error {
		return nil
	})
	require.NoError(t, l.Start())
	<-l.Done()
	assert.NoError(t, l.Stop())
}
