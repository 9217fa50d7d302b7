package marker

import (
	"fmt"

	"github.com/cocosip/go-jpeg-markers/jpeg/common"
	"github.com/golang/glog"
)

// WarningCode identifies a recoverable condition.
type WarningCode int

const (
	// WarnExtraneousData reports bytes skipped before a marker.
	WarnExtraneousData WarningCode = iota + 1
	// WarnJFIFMajor reports a JFIF major version other than 1.
	WarnJFIFMajor
	// WarnJFIFThumbnailSize reports an APP0 length that does not match the
	// declared thumbnail dimensions.
	WarnJFIFThumbnailSize
	// WarnMustResync reports a restart marker other than the expected one.
	WarnMustResync
)

// Warning describes a recoverable condition met while reading markers.
type Warning struct {
	Code   WarningCode
	Marker common.Marker
	// Count is the number of discarded bytes for WarnExtraneousData and the
	// remaining segment length for WarnJFIFThumbnailSize.
	Count int
	// Desired is the expected restart index for WarnMustResync.
	Desired int
	// Major and Minor carry the JFIF version for WarnJFIFMajor.
	Major, Minor int
}

func (w Warning) String() string {
	switch w.Code {
	case WarnExtraneousData:
		return fmt.Sprintf("corrupt JPEG data: %d extraneous bytes before marker 0x%02x", w.Count, uint8(w.Marker))
	case WarnJFIFMajor:
		return fmt.Sprintf("warning: unknown JFIF revision number %d.%02d", w.Major, w.Minor)
	case WarnJFIFThumbnailSize:
		return fmt.Sprintf("warning: thumbnail image size does not match data length %d", w.Count)
	case WarnMustResync:
		return fmt.Sprintf("corrupt JPEG data: found marker 0x%02x instead of RST%d", uint8(w.Marker), w.Desired)
	default:
		return fmt.Sprintf("warning %d", int(w.Code))
	}
}

// WarnFunc receives recoverable conditions.
type WarnFunc func(Warning)

func logWarning(w Warning) {
	glog.Warning(w.String())
}
