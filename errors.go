package mosaic

import "errors"

var (
	errAlreadyRunning = errors.New("recorder loop already running")
	errNoSources      = errors.New("no sources configured")
)
