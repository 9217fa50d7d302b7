package marker

import (
	"fmt"

	"github.com/cocosip/go-jpeg-markers/jpeg/common"
)

// FirstMarkerError is returned when a stream does not start with SOI.
type FirstMarkerError struct {
	First, Second byte
}

func (e *FirstMarkerError) Error() string {
	return fmt.Sprintf("%v: starts with 0x%02x 0x%02x", common.ErrInvalidSOI, e.First, e.Second)
}

func (e *FirstMarkerError) Unwrap() error {
	return common.ErrInvalidSOI
}

// firstMarker reads the two bytes that must open every stream. Garbage is
// not skipped here, so a file that is not a JPEG is rejected immediately.
func (r *Reader) firstMarker() error {
	c := newCursor(r.src)
	b0, err := c.byte()
	if err != nil {
		return err
	}
	b1, err := c.byte()
	if err != nil {
		return err
	}
	if b0 != 0xFF || common.Marker(b1) != common.SOI {
		return &FirstMarkerError{First: b0, Second: b1}
	}
	r.pending = common.SOI
	c.sync()
	return nil
}

// nextMarker finds the next marker and makes it pending. Every byte skipped
// on the way is committed and counted as it goes, so the count stays right
// across suspensions.
func (r *Reader) nextMarker() error {
	c := newCursor(r.src)
	st := r.state
	var b byte
	for {
		var err error
		if b, err = c.byte(); err != nil {
			return err
		}
		for b != 0xFF {
			st.Discarded++
			c.sync()
			if b, err = c.byte(); err != nil {
				return err
			}
		}
		// Any number of fill bytes may precede the marker code.
		for b == 0xFF {
			if b, err = c.byte(); err != nil {
				return err
			}
		}
		if b != 0 {
			break
		}
		// FF 00 is a stuffed data byte.
		st.Discarded += 2
		c.sync()
	}

	m := common.Marker(b)
	if st.Discarded != 0 {
		r.Warn(Warning{Code: WarnExtraneousData, Marker: m, Count: st.Discarded})
		st.Discarded = 0
	}
	r.pending = m
	c.sync()
	return nil
}
