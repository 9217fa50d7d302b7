package marker

import (
	"bytes"
	"fmt"

	"github.com/cocosip/go-jpeg-markers/jpeg/common"
	"github.com/golang/glog"
)

type handlerKind int

const (
	handleSkip handlerKind = iota
	handleRecognize
	handleCustom
)

// Segment is the part of an APPn or COM segment handed to a Handler.
type Segment struct {
	Marker common.Marker
	// Length is the declared payload length, excluding the length field.
	Length int
	// Data holds the leading payload bytes the handler asked for.
	Data []byte
}

// HandlerFunc processes a segment. Bytes of the payload beyond seg.Data are
// skipped after it returns.
type HandlerFunc func(r *Reader, seg *Segment) error

// Handler selects how an APPn or COM segment is processed. The zero value
// skips the segment.
type Handler struct {
	kind      handlerKind
	signature []byte
	size      int
	fn        HandlerFunc
}

// SkipHandler skips the segment payload without looking at it.
func SkipHandler() Handler {
	return Handler{}
}

// RecognizeHandler reads the first size payload bytes and calls fn when they
// start with signature. Shorter or unmatched segments are skipped.
func RecognizeHandler(signature []byte, size int, fn HandlerFunc) Handler {
	if size < len(signature) {
		size = len(signature)
	}
	return Handler{kind: handleRecognize, signature: signature, size: size, fn: fn}
}

// CustomHandler hands up to limit payload bytes of every segment to fn.
func CustomHandler(limit int, fn HandlerFunc) Handler {
	if limit < 0 {
		limit = 0
	}
	return Handler{kind: handleCustom, size: limit, fn: fn}
}

// readHandled processes the APPn or COM segment that follows m using h. The
// payload prefix is read completely before fn runs, so a suspension leaves no
// trace in the state.
func (r *Reader) readHandled(m common.Marker, h Handler) error {
	c := newCursor(r.src)
	length, err := c.uint16()
	if err != nil {
		return err
	}
	if length < 2 {
		return fmt.Errorf("%w: %v length %d", common.ErrBadLength, m, length)
	}
	length -= 2

	switch h.kind {
	case handleRecognize:
		if length < h.size {
			glog.V(1).Infof("%v marker, length %d", m, length)
			return c.skip(length)
		}
		seg := &Segment{Marker: m, Length: length, Data: make([]byte, h.size)}
		if err := c.read(seg.Data); err != nil {
			return err
		}
		if !bytes.HasPrefix(seg.Data, h.signature) {
			glog.V(1).Infof("%v marker, length %d", m, length)
		} else if err := h.fn(r, seg); err != nil {
			return err
		}
		return c.skip(length - h.size)

	case handleCustom:
		n := length
		if n > h.size {
			n = h.size
		}
		seg := &Segment{Marker: m, Length: length, Data: make([]byte, n)}
		if err := c.read(seg.Data); err != nil {
			return err
		}
		if err := h.fn(r, seg); err != nil {
			return err
		}
		return c.skip(length - n)

	default:
		glog.V(1).Infof("Miscellaneous marker 0x%02x, length %d", uint8(m), length+2)
		return c.skip(length)
	}
}

const (
	jfifLength  = 14
	adobeLength = 12
)

// JFIFHandler recognizes the JFIF APP0 segment.
func JFIFHandler() Handler {
	return RecognizeHandler([]byte("JFIF\x00"), jfifLength, readJFIF)
}

// AdobeHandler recognizes the Adobe APP14 segment.
func AdobeHandler() Handler {
	return RecognizeHandler([]byte("Adobe"), adobeLength, readAdobe)
}

func readJFIF(r *Reader, seg *Segment) error {
	b := seg.Data
	major, minor := int(b[5]), int(b[6])
	if major != 1 {
		r.Warn(Warning{Code: WarnJFIFMajor, Marker: seg.Marker, Major: major, Minor: minor})
	} else if minor > 2 {
		glog.V(1).Infof("Unknown JFIF minor revision number %d.%02d", major, minor)
	}

	st := r.state
	st.SawJFIF = true
	st.JFIFMajor, st.JFIFMinor = major, minor
	st.DensityUnit = int(b[7])
	st.XDensity = int(b[8])<<8 | int(b[9])
	st.YDensity = int(b[10])<<8 | int(b[11])
	glog.V(1).Infof("JFIF APP0 marker: version %d.%02d, density %dx%d  %d", major, minor, st.XDensity, st.YDensity, st.DensityUnit)

	w, h := int(b[12]), int(b[13])
	if w|h != 0 {
		glog.V(1).Infof("    with %d x %d thumbnail image", w, h)
	}
	if remaining := seg.Length - jfifLength; remaining != w*h*3 {
		r.Warn(Warning{Code: WarnJFIFThumbnailSize, Marker: seg.Marker, Count: remaining})
	}
	return nil
}

func readAdobe(r *Reader, seg *Segment) error {
	b := seg.Data
	version := int(b[5])<<8 | int(b[6])
	flags0 := int(b[7])<<8 | int(b[8])
	flags1 := int(b[9])<<8 | int(b[10])
	transform := int(b[11])
	glog.V(1).Infof("Adobe APP14 marker: version %d, flags 0x%04x 0x%04x, transform %d", version, flags0, flags1, transform)

	r.state.SawAdobe = true
	r.state.AdobeTransform = transform
	return nil
}
