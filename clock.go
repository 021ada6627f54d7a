//////////////////////////////////////////////////////////////////////////////
//
// Time source of the tick loop and output path templating
//
// Copyright 2019 Lanikai Labs. All rights reserved.
//
//////////////////////////////////////////////////////////////////////////////

package mosaic

import (
	"strings"
	"time"
)

// Clock is the time source of the tick loop.
type Clock interface {
	Now() time.Time

	// After waits for the duration to elapse and then sends the current time.
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time                         { return time.Now() }
func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// SystemClock reads the local wall clock, with its monotonic reading.
var SystemClock Clock = systemClock{}

const (
	timestampPlaceholder = "[timestamp]"
	timestampLayout      = "20060102_150405"
)

// ResolveOutputPath substitutes every "[timestamp]" in template with t.
func ResolveOutputPath(template string, t time.Time) string {
	return strings.ReplaceAll(template, timestampPlaceholder, t.Format(timestampLayout))
}
