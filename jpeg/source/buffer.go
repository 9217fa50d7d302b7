package source

import "io"

// Buffer is a suspending byte source fed through Write. When the buffered
// bytes run out, Fill reports that the consumer has to suspend until more
// data is written. After Close, running out of bytes is an error.
type Buffer struct {
	data   []byte // bytes from the restart point on
	pos    int64  // stream offset of data[0]
	skip   int64  // bytes still to be dropped from future writes
	closed bool
}

// NewBuffer creates an empty Buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Write appends p to the buffered bytes.
func (b *Buffer) Write(p []byte) (int, error) {
	if b.closed {
		return 0, ErrClosed
	}
	n := len(p)
	if b.skip > 0 {
		drop := b.skip
		if drop > int64(len(p)) {
			drop = int64(len(p))
		}
		p = p[drop:]
		b.skip -= drop
	}
	b.data = append(b.data, p...)
	return n, nil
}

// Close marks the end of the input.
func (b *Buffer) Close() error {
	b.closed = true
	return nil
}

// Window returns the bytes buffered past the restart point.
func (b *Buffer) Window() []byte {
	return b.data
}

// Fill never has more bytes than Window already exposes: it asks the
// consumer to suspend, or reports the end of input after Close.
func (b *Buffer) Fill() (bool, error) {
	if b.closed {
		return false, io.ErrUnexpectedEOF
	}
	return false, nil
}

// Advance moves the restart point over n buffered bytes.
func (b *Buffer) Advance(n int) {
	b.data = b.data[n:]
	b.pos += int64(n)
}

// Skip drops n bytes past the restart point. Bytes that have not been
// written yet are dropped as they arrive.
func (b *Buffer) Skip(n int64) error {
	if n < 0 {
		return ErrNegativeSkip
	}
	b.pos += n
	if n <= int64(len(b.data)) {
		b.data = b.data[n:]
		return nil
	}
	b.skip += n - int64(len(b.data))
	b.data = nil
	return nil
}

// Position returns the stream offset of the restart point.
func (b *Buffer) Position() int64 {
	return b.pos
}

// Buffered returns the number of bytes written but not yet consumed.
func (b *Buffer) Buffered() int {
	return len(b.data)
}
