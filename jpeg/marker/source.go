package marker

// Source supplies compressed bytes to a Reader.
//
// The restart point is the first byte the Reader has not committed to. A
// Source must keep every byte from the restart point on available in Window
// until Advance moves the restart point past it.
type Source interface {
	// Window returns the buffered bytes starting at the restart point.
	Window() []byte
	// Fill buffers more bytes after the current window. It returns false
	// with a nil error when no more bytes are available yet, which makes
	// the Reader suspend. Any error is fatal.
	Fill() (bool, error)
	// Advance moves the restart point over n buffered bytes.
	Advance(n int)
	// Skip discards n bytes past the restart point, buffered or not.
	Skip(n int64) error
	// Position returns the stream offset of the restart point.
	Position() int64
}
