package marker

import (
	"errors"
	"fmt"
	"io"

	"github.com/cocosip/go-jpeg-markers/jpeg/common"
	"github.com/golang/glog"
)

// Status is the outcome of a ReadMarkers call.
type Status int

const (
	// Suspended means the source ran dry; call again once it has more bytes.
	Suspended Status = iota
	// ReachedScanStart means an SOS segment was read and entropy-coded data follows.
	ReachedScanStart
	// ReachedEndOfStream means EOI was read.
	ReachedEndOfStream
	// FatalError means the stream is unusable; the error says why.
	FatalError
)

func (s Status) String() string {
	switch s {
	case Suspended:
		return "Suspended"
	case ReachedScanStart:
		return "ReachedScanStart"
	case ReachedEndOfStream:
		return "ReachedEndOfStream"
	case FatalError:
		return "FatalError"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Phase is the position of a Reader in the stream structure.
type Phase int

const (
	AwaitingStartOfImage Phase = iota
	HaveStartOfImage
	HaveFrameHeader
	InScan
	Ended
)

func (p Phase) String() string {
	switch p {
	case AwaitingStartOfImage:
		return "AwaitingStartOfImage"
	case HaveStartOfImage:
		return "HaveStartOfImage"
	case HaveFrameHeader:
		return "HaveFrameHeader"
	case InScan:
		return "InScan"
	case Ended:
		return "Ended"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Options configures a Reader.
type Options struct {
	// APP holds the handlers for APP0 through APP15. A zero Handler skips
	// the segment.
	APP [16]Handler
	// COM handles comment segments.
	COM Handler
	// Warn receives recoverable conditions. Nil logs them with glog.
	Warn WarnFunc
	// Resync recovers from unexpected restart markers. Nil selects
	// ResyncToRestart.
	Resync ResyncFunc
}

// DefaultOptions recognizes JFIF APP0 and Adobe APP14 segments and skips
// every other APPn and COM segment.
func DefaultOptions() Options {
	var o Options
	o.APP[0] = JFIFHandler()
	o.APP[14] = AdobeHandler()
	return o
}

// Reader parses the marker structure of a JPEG stream from a Source into a
// State. Every call either completes a step or suspends without consuming
// anything it has not fully processed, so calls can be repeated as the
// source receives more bytes.
//
// A Reader is not safe for concurrent use.
type Reader struct {
	src     Source
	state   *State
	opts    Options
	pending common.Marker
	phase   Phase
	err     error
}

// NewReader creates a Reader that stores what it parses in st. A nil st
// allocates a fresh State and nil opts selects DefaultOptions.
func NewReader(src Source, st *State, opts *Options) *Reader {
	if st == nil {
		st = new(State)
	}
	o := DefaultOptions()
	if opts != nil {
		o = *opts
	}
	if o.Resync == nil {
		o.Resync = ResyncToRestart
	}
	return &Reader{src: src, state: st, opts: o}
}

// State returns the state the Reader fills.
func (r *Reader) State() *State {
	return r.state
}

// Phase returns where the Reader is in the stream structure.
func (r *Reader) Phase() Phase {
	return r.phase
}

// Err returns the fatal error that stopped the Reader, if any.
func (r *Reader) Err() error {
	return r.err
}

// PendingMarker returns the marker read but not yet processed, or 0.
func (r *Reader) PendingMarker() common.Marker {
	return r.pending
}

// SetPendingMarker hands a marker met inside entropy-coded data back to the
// Reader. The marker bytes must already be consumed from the source.
func (r *Reader) SetPendingMarker(m common.Marker) {
	r.pending = m
}

// Warn reports a recoverable condition.
func (r *Reader) Warn(w Warning) {
	if r.opts.Warn != nil {
		r.opts.Warn(w)
		return
	}
	logWarning(w)
}

// Reset prepares the Reader for a new stream from its source. Table storage
// in the State survives.
func (r *Reader) Reset() {
	r.state.Reset()
	r.pending = 0
	r.phase = AwaitingStartOfImage
	r.err = nil
}

// result converts a step error into the status returned to the caller.
func (r *Reader) result(err error) (Status, error) {
	if errors.Is(err, errSuspend) {
		return Suspended, nil
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		err = fmt.Errorf("%w: %w", common.ErrUnexpectedEOF, err)
	}
	r.err = err
	return FatalError, err
}

// ReadMarkers processes markers until a scan starts, the stream ends, the
// source runs dry or the stream turns out to be unusable. After a fatal
// error every call returns the same error until Reset.
func (r *Reader) ReadMarkers() (Status, error) {
	if r.err != nil {
		return FatalError, r.err
	}
	for {
		if r.pending == 0 {
			var err error
			if !r.state.SawSOI {
				err = r.firstMarker()
			} else {
				err = r.nextMarker()
			}
			if err != nil {
				return r.result(err)
			}
		}

		m := r.pending
		var err error
		switch m {
		case common.SOI:
			err = r.readSOI()
			if err == nil {
				r.phase = HaveStartOfImage
			}

		case common.SOF0, common.SOF1:
			err = r.readSOF(m, false, false)
		case common.SOF2:
			err = r.readSOF(m, true, false)
		case common.SOF9:
			err = r.readSOF(m, false, true)
		case common.SOF10:
			err = r.readSOF(m, true, true)

		case common.SOF3, common.SOF5, common.SOF6, common.SOF7, common.JPG,
			common.SOF11, common.SOF13, common.SOF14, common.SOF15:
			err = fmt.Errorf("%w: %v", common.ErrUnsupportedSOF, m)

		case common.SOS:
			if err = r.readSOS(); err != nil {
				return r.result(err)
			}
			r.pending = 0
			r.phase = InScan
			return ReachedScanStart, nil

		case common.EOI:
			glog.V(1).Info("End Of Image")
			r.pending = 0
			r.phase = Ended
			return ReachedEndOfStream, nil

		case common.DAC:
			err = r.readDAC()
		case common.DHT:
			err = r.readDHT()
		case common.DQT:
			err = r.readDQT()
		case common.DRI:
			err = r.readDRI()

		case common.COM:
			err = r.readHandled(m, r.opts.COM)

		case common.RST0, common.RST1, common.RST2, common.RST3,
			common.RST4, common.RST5, common.RST6, common.RST7, common.TEM:
			glog.V(1).Infof("Unexpected marker 0x%02x", uint8(m))

		case common.DNL:
			// Line counts redefined by DNL are not supported.
			err = r.skipVariable(m)

		default:
			if common.IsAPP(m) {
				err = r.readHandled(m, r.opts.APP[m-common.APP0])
			} else {
				err = fmt.Errorf("%w: 0x%02x", common.ErrUnknownMarker, uint8(m))
			}
		}
		if err != nil {
			return r.result(err)
		}
		if r.state.SawSOF {
			r.phase = HaveFrameHeader
		}
		r.pending = 0
	}
}

// SkipScanData consumes entropy-coded data up to the next marker that is not
// a restart marker and makes it pending. Stuffed zero bytes and fill bytes
// are part of the data. It returns false with a nil error when the source
// runs dry before such a marker.
func (r *Reader) SkipScanData() (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	if r.pending != 0 {
		return true, nil
	}
	c := newCursor(r.src)
	for {
		b, err := c.byte()
		if err != nil {
			return r.skipResult(err)
		}
		if b != 0xFF {
			c.sync()
			continue
		}
		for b == 0xFF {
			if b, err = c.byte(); err != nil {
				return r.skipResult(err)
			}
		}
		m := common.Marker(b)
		if m == 0 || common.IsRST(m) {
			if m != 0 {
				glog.V(3).Infof("scan data: %v", m)
			}
			c.sync()
			continue
		}
		r.pending = m
		c.sync()
		return true, nil
	}
}

func (r *Reader) skipResult(err error) (bool, error) {
	_, err = r.result(err)
	return false, err
}
