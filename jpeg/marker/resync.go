package marker

import (
	"fmt"

	"github.com/cocosip/go-jpeg-markers/jpeg/common"
	"github.com/golang/glog"
)

// ResyncAction is a recovery step taken when the marker found at a restart
// boundary is not the expected one.
type ResyncAction int

const (
	// ResyncDiscard drops the marker; entropy decoding resumes right after it.
	ResyncDiscard ResyncAction = iota + 1
	// ResyncScanForward skips data up to the next marker and decides again.
	ResyncScanForward
	// ResyncLeaveUnread keeps the marker pending, so the entropy decoder
	// sees an empty interval and the marker is processed later.
	ResyncLeaveUnread
)

func (a ResyncAction) String() string {
	switch a {
	case ResyncDiscard:
		return "discard"
	case ResyncScanForward:
		return "scan forward"
	case ResyncLeaveUnread:
		return "leave unread"
	default:
		return fmt.Sprintf("ResyncAction(%d)", int(a))
	}
}

// ResyncFunc positions the stream at the next data interval after
// ReadRestartMarker found r.PendingMarker() instead of RST<desired>. It
// returns false with a nil error when it has to suspend.
type ResyncFunc func(r *Reader, desired int) (bool, error)

// ClassifyRestart decides how to recover when marker shows up where
// RST<desired> was expected. Restart markers up to two counts ahead are kept
// for later, up to two counts behind are skipped past, and anything farther
// away is dropped. Invalid codes below SOF0 are skipped past and any other
// marker is kept.
func ClassifyRestart(marker common.Marker, desired int) ResyncAction {
	rst := func(n int) common.Marker {
		return common.RST0 + common.Marker(n&7)
	}
	switch {
	case marker < common.SOF0:
		return ResyncScanForward
	case !common.IsRST(marker):
		return ResyncLeaveUnread
	case marker == rst(desired+1) || marker == rst(desired+2):
		return ResyncLeaveUnread
	case marker == rst(desired-1) || marker == rst(desired-2):
		return ResyncScanForward
	default:
		return ResyncDiscard
	}
}

// ResyncToRestart is the default ResyncFunc. It never backs up in the
// stream: it only drops the pending marker, scans forward or leaves the
// marker pending, as ClassifyRestart decides.
func ResyncToRestart(r *Reader, desired int) (bool, error) {
	m := r.pending
	r.Warn(Warning{Code: WarnMustResync, Marker: m, Desired: desired})

	for {
		action := ClassifyRestart(m, desired)
		glog.V(4).Infof("At marker 0x%02x, recovery action %d (%v)", uint8(m), int(action), action)
		switch action {
		case ResyncDiscard:
			r.pending = 0
			return true, nil
		case ResyncScanForward:
			if err := r.nextMarker(); err != nil {
				return r.skipResult(err)
			}
			m = r.pending
		default:
			return true, nil
		}
	}
}

// ReadRestartMarker consumes the restart marker expected after a restart
// interval, recovering through the configured ResyncFunc when another marker
// is found. It returns false with a nil error when it has to suspend; the
// call must then be repeated.
func (r *Reader) ReadRestartMarker() (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	st := r.state
	if r.pending == 0 {
		if err := r.nextMarker(); err != nil {
			return r.skipResult(err)
		}
	}

	if r.pending == common.RST0+common.Marker(st.NextRestart) {
		glog.V(3).Infof("RST%d", st.NextRestart)
		r.pending = 0
	} else {
		ok, err := r.opts.Resync(r, st.NextRestart)
		if err != nil {
			r.err = err
			return false, err
		}
		if !ok {
			return false, nil
		}
	}

	st.NextRestart = (st.NextRestart + 1) & 7
	return true, nil
}
