package marker

import "errors"

// errSuspend unwinds a segment decoder when the source ran dry. Nothing read
// since the last sync is committed, so the decoder is re-entered from the
// last sync point on the next call.
var errSuspend = errors.New("suspend")

// cursor reads ahead of the source restart point. Bytes it has read are
// returned to the source only by sync.
type cursor struct {
	src Source
	win []byte
	off int
}

func newCursor(src Source) cursor {
	return cursor{src: src, win: src.Window()}
}

func (c *cursor) byte() (byte, error) {
	for c.off >= len(c.win) {
		ok, err := c.src.Fill()
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, errSuspend
		}
		c.win = c.src.Window()
	}
	b := c.win[c.off]
	c.off++
	return b, nil
}

func (c *cursor) uint16() (int, error) {
	hi, err := c.byte()
	if err != nil {
		return 0, err
	}
	lo, err := c.byte()
	if err != nil {
		return 0, err
	}
	return int(hi)<<8 | int(lo), nil
}

func (c *cursor) read(p []byte) error {
	for i := range p {
		b, err := c.byte()
		if err != nil {
			return err
		}
		p[i] = b
	}
	return nil
}

// sync commits everything read so far.
func (c *cursor) sync() {
	if c.off > 0 {
		c.src.Advance(c.off)
	}
	c.win = c.src.Window()
	c.off = 0
}

// skip commits the bytes read so far and drops n more.
func (c *cursor) skip(n int) error {
	c.sync()
	if n <= 0 {
		return nil
	}
	err := c.src.Skip(int64(n))
	c.win = c.src.Window()
	return err
}
