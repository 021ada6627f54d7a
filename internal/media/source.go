package media

// A Source delivers frames from one external stream into a Buffer. Decoding
// failures are the source's own business: it logs them and drops the frame.
type Source interface {
	// Start begins delivery into buf and returns without waiting for frames.
	Start(buf *Buffer) error

	// Close stops delivery and frees any resources held by the source.
	Close() error
}
