// Package dicom maps JPEG frame headers to the DICOM transfer syntaxes that
// carry them.
package dicom

import (
	"errors"
	"fmt"

	"github.com/cocosip/go-dicom/pkg/dicom/transfer"
	"github.com/cocosip/go-jpeg-markers/jpeg/common"
	"github.com/cocosip/go-jpeg-markers/jpeg/marker"
)

var (
	// ErrNoFrame is returned when no frame header has been parsed yet
	ErrNoFrame = errors.New("no JPEG frame header")

	// ErrNoTransferSyntax is returned when the JPEG process has no DICOM transfer syntax
	ErrNoTransferSyntax = errors.New("no DICOM transfer syntax for JPEG process")

	// ErrSuspended is returned when a source ran dry before the first scan
	ErrSuspended = errors.New("source suspended before first scan")
)

// TransferSyntax returns the DICOM transfer syntax describing the frame
// parsed into st: 8-bit baseline frames map to JPEG Baseline (Process 1),
// other 8- and 12-bit sequential Huffman frames to JPEG Extended
// (Process 2 & 4).
func TransferSyntax(st *marker.State) (*transfer.Syntax, error) {
	if !st.SawSOF {
		return nil, ErrNoFrame
	}
	if st.Progressive || st.Arithmetic {
		return nil, fmt.Errorf("%w: %v", ErrNoTransferSyntax, st.FrameMarker)
	}
	switch {
	case st.FrameMarker == common.SOF0 && st.Precision == 8:
		return transfer.JPEGBaseline8Bit, nil
	case st.Precision == 8 || st.Precision == 12:
		return transfer.JPEGExtended12Bit, nil
	}
	return nil, fmt.Errorf("%w: %v with %d-bit samples", ErrNoTransferSyntax, st.FrameMarker, st.Precision)
}

// ReadTransferSyntax parses the stream headers from src up to the first scan
// and returns the matching transfer syntax together with the parsed state.
// src must not suspend.
func ReadTransferSyntax(src marker.Source) (*transfer.Syntax, *marker.State, error) {
	r := marker.NewReader(src, nil, nil)
	status, err := r.ReadMarkers()
	switch {
	case err != nil:
		return nil, r.State(), err
	case status == marker.Suspended:
		return nil, r.State(), ErrSuspended
	}
	ts, err := TransferSyntax(r.State())
	return ts, r.State(), err
}
