//////////////////////////////////////////////////////////////////////////////
//
// Frame: one decoded picture and its arrival time
//
// Copyright 2019 Lanikai Labs. All rights reserved.
//
//////////////////////////////////////////////////////////////////////////////

package media

import (
	"image"
	"time"
)

// A Frame is one decoded picture from a source, stamped with its arrival time.
// A Frame is read-only once it has been appended to a Buffer.
type Frame struct {
	// Arrival time. Carries a monotonic clock reading when taken from time.Now.
	Time time.Time

	Image image.Image

	// Position of the frame within its Buffer, starting at 1. Assigned by Append.
	Seq uint64
}

// IsZero reports whether f is the zero Frame.
func (f Frame) IsZero() bool {
	return f.Image == nil && f.Seq == 0
}
