package common

import "errors"

// Marker reader errors. Decoders wrap them with the offending values, so
// callers compare with errors.Is.
var (
	ErrInvalidSOI         = errors.New("not a JPEG file: missing SOI marker")
	ErrDuplicateSOI       = errors.New("duplicate SOI marker")
	ErrDuplicateSOF       = errors.New("duplicate SOF marker")
	ErrInvalidSOF         = errors.New("invalid Start of Frame")
	ErrUnsupportedSOF     = errors.New("unsupported JPEG process")
	ErrInvalidDimensions  = errors.New("invalid image dimensions")
	ErrSOSNoSOF           = errors.New("SOS marker before SOF")
	ErrBadComponentID     = errors.New("scan component not in frame")
	ErrBadLength          = errors.New("bogus marker length")
	ErrBadTableIndex      = errors.New("table index out of range")
	ErrDQTIndex           = errors.New("bogus DQT index")
	ErrDHTIndex           = errors.New("bogus DHT index")
	ErrDHTCounts          = errors.New("bogus Huffman table definition")
	ErrDACIndex           = errors.New("bogus DAC index")
	ErrDACValue           = errors.New("bogus DAC value")
	ErrUnknownMarker      = errors.New("unsupported marker type")
	ErrUnexpectedEOF      = errors.New("unexpected end of file")
	ErrInvalidHuffmanCode = errors.New("Huffman table has more codes than its bit lengths allow")
)
