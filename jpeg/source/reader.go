package source

import (
	"errors"
	"io"
)

// DefaultBufferSize is the read-ahead size of a Reader.
const DefaultBufferSize = 4096

const maxEmptyReads = 100

// Reader is a byte source pulling from an io.Reader. It never suspends: Fill
// blocks in the underlying Read, and the end of the input is reported as
// io.ErrUnexpectedEOF.
type Reader struct {
	r     io.Reader
	buf   []byte
	start int // restart point within buf
	end   int
	pos   int64 // stream offset of buf[start]
	err   error
}

// NewReader creates a Reader with the default buffer size
func NewReader(r io.Reader) *Reader {
	return NewReaderSize(r, DefaultBufferSize)
}

// NewReaderSize creates a Reader that reads at most size bytes per Fill.
func NewReaderSize(r io.Reader, size int) *Reader {
	if size < 1 {
		size = 1
	}
	return &Reader{r: r, buf: make([]byte, size)}
}

// Window returns the bytes buffered past the restart point.
func (r *Reader) Window() []byte {
	return r.buf[r.start:r.end]
}

// Fill reads more bytes after the current window.
func (r *Reader) Fill() (bool, error) {
	if r.err != nil {
		return false, r.err
	}

	if r.start > 0 {
		copy(r.buf, r.buf[r.start:r.end])
		r.end -= r.start
		r.start = 0
	}
	if r.end == len(r.buf) {
		grown := make([]byte, 2*len(r.buf))
		copy(grown, r.buf[:r.end])
		r.buf = grown
	}

	for i := 0; i < maxEmptyReads; i++ {
		n, err := r.r.Read(r.buf[r.end:])
		r.end += n
		if err != nil {
			r.err = err
			if errors.Is(err, io.EOF) {
				r.err = io.ErrUnexpectedEOF
			}
		}
		if n > 0 {
			return true, nil
		}
		if r.err != nil {
			return false, r.err
		}
	}
	r.err = io.ErrNoProgress
	return false, r.err
}

// Advance moves the restart point over n buffered bytes.
func (r *Reader) Advance(n int) {
	r.start += n
	r.pos += int64(n)
}

// Skip skips n bytes past the restart point. Buffered bytes are dropped
// first; the rest is seeked over when the underlying reader is an
// io.Seeker and copied to io.Discard otherwise.
func (r *Reader) Skip(n int64) error {
	if n < 0 {
		return ErrNegativeSkip
	}
	buffered := int64(r.end - r.start)
	if n <= buffered {
		r.Advance(int(n))
		return nil
	}
	r.pos += n
	r.start, r.end = 0, 0
	n -= buffered

	if s, ok := r.r.(io.Seeker); ok {
		if _, err := s.Seek(n, io.SeekCurrent); err == nil {
			return nil
		}
	}
	if _, err := io.CopyN(io.Discard, r.r, n); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		r.err = err
		return err
	}
	return nil
}

// Position returns the stream offset of the restart point.
func (r *Reader) Position() int64 {
	return r.pos
}
