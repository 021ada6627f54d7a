package media

import (
	"sync"
)

// Flow fans out byte slices (encoded frames) to any number of subscribers. A slow
// subscriber never blocks the writer: when its channel is full the oldest slice is
// dropped in favour of the newest.
type Flow struct {
	subscribers []chan []byte
	missed      uint64
	closed      bool

	sync.Mutex
}

// Subscribe returns a channel receiving every subsequent Write. After Close the
// returned channel is already closed.
func (f *Flow) Subscribe(capacity int) <-chan []byte {
	f.Lock()
	defer f.Unlock()

	if capacity == 0 {
		panic("media.Flow: receiver capacity must be nonzero")
	}

	s := make(chan []byte, capacity)
	if f.closed {
		close(s)
		return s
	}
	f.subscribers = append(f.subscribers, s)
	return s
}

// Unsubscribe removes s and closes it. Unknown channels are ignored.
func (f *Flow) Unsubscribe(s <-chan []byte) {
	f.Lock()
	defer f.Unlock()

	// See https://github.com/golang/go/wiki/SliceTricks
	for i, subscriber := range f.subscribers {
		if s == subscriber {
			subs := f.subscribers
			close(subs[i])
			subs[len(subs)-1], subs[i] = subs[i], subs[len(subs)-1]
			f.subscribers = subs[:len(subs)-1]
			break
		}
	}
}

// NumSubscribers lets writers skip encoding work nobody will receive.
func (f *Flow) NumSubscribers() int {
	f.Lock()
	defer f.Unlock()
	return len(f.subscribers)
}

func (f *Flow) Write(p []byte) (n int, err error) {
	f.Lock()
	defer f.Unlock()

	for _, subscriber := range f.subscribers {
		select {
		case subscriber <- p:
			continue
		default:
		}

		// Full. Drop the oldest slice, unless the subscriber drained it meanwhile.
		select {
		case <-subscriber:
		default:
		}
		select {
		case subscriber <- p:
		default:
		}
		f.missed++
		log.Debug("media.Flow: subscriber missed a buffer (%d total)", f.missed)
	}

	return len(p), nil
}

// Missed returns how many slices were dropped across all subscribers.
func (f *Flow) Missed() uint64 {
	f.Lock()
	defer f.Unlock()
	return f.missed
}

func (f *Flow) Close() error {
	f.Lock()
	defer f.Unlock()

	f.closed = true
	for _, subscriber := range f.subscribers {
		close(subscriber)
	}
	f.subscribers = nil
	return nil
}
