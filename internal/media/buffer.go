package media

import (
	"image"
	"sync"
	"time"
)

// DefaultCapacity bounds a Buffer when no capacity is configured.
const DefaultCapacity = 64

// A Buffer always has room for the served head plus one newer frame.
const minCapacity = 2

// A Buffer stores the most recent frames of one source, ordered by arrival time.
// One producer appends and one consumer queries; both may run concurrently.
//
// Queries trim the buffer: once a frame has been returned, everything older than
// it is discarded, but the returned frame itself is kept at the head so a stalled
// source keeps being served its last frame rather than nothing.
type Buffer struct {
	mu sync.Mutex

	frames   []Frame
	capacity int

	seq      uint64
	appended uint64
	evicted  uint64

	now func() time.Time
}

// BufferStats is a snapshot of a Buffer's counters.
type BufferStats struct {
	Len      int
	Appended uint64
	Evicted  uint64
}

// NewBuffer returns an empty Buffer holding at most capacity frames. A capacity of
// zero or less selects DefaultCapacity; a capacity of one is raised to two.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if capacity < minCapacity {
		capacity = minCapacity
	}
	return &Buffer{
		frames:   make([]Frame, 0, capacity),
		capacity: capacity,
		now:      time.Now,
	}
}

// Put appends img stamped with the current time.
func (b *Buffer) Put(img image.Image) Frame {
	return b.Append(Frame{Time: b.now(), Image: img})
}

// Append adds f at the tail and returns it with its sequence number assigned.
//
// A timestamp older than the current tail is raised to the tail's timestamp so the
// buffer stays ordered. When the buffer is full the oldest frame after the head is
// evicted; the head survives because it may be the frame last served.
func (b *Buffer) Append(f Frame) Frame {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n := len(b.frames); n > 0 && f.Time.Before(b.frames[n-1].Time) {
		f.Time = b.frames[n-1].Time
	}

	if n := len(b.frames); n >= b.capacity {
		copy(b.frames[1:], b.frames[2:])
		b.frames[n-1] = Frame{}
		b.frames = b.frames[:n-1]
		b.evicted++
	}

	b.seq++
	b.appended++
	f.Seq = b.seq
	b.frames = append(b.frames, f)
	return f
}

// LatestAtOrBefore returns the most recent frame whose timestamp is not after t.
// The boolean is false when every stored frame is newer than t, or none is stored;
// this is the normal result for a source slower than the caller.
//
// If trim is set, every frame older than the returned one is discarded.
func (b *Buffer) LatestAtOrBefore(t time.Time, trim bool) (Frame, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := len(b.frames) - 1
	for i >= 0 && b.frames[i].Time.After(t) {
		i--
	}
	if i < 0 {
		return Frame{}, false
	}

	f := b.frames[i]
	if trim && i > 0 {
		n := copy(b.frames, b.frames[i:])
		clear(b.frames[n:])
		b.frames = b.frames[:n]
	}
	return f, true
}

// Len returns the number of stored frames.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.frames)
}

func (b *Buffer) Stats() BufferStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BufferStats{
		Len:      len(b.frames),
		Appended: b.appended,
		Evicted:  b.evicted,
	}
}
