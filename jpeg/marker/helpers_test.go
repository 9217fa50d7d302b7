package marker

import (
	"errors"
	"testing"

	"github.com/cocosip/go-jpeg-markers/jpeg/common"
	"github.com/cocosip/go-jpeg-markers/jpeg/source"
)

var (
	_ Source = (*source.Buffer)(nil)
	_ Source = (*source.Reader)(nil)
	_ Source = (*source.File)(nil)
)

func segment(m common.Marker, payload ...byte) []byte {
	n := len(payload) + 2
	return append([]byte{0xFF, byte(m), byte(n >> 8), byte(n)}, payload...)
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func soi() []byte { return []byte{0xFF, byte(common.SOI)} }
func eoi() []byte { return []byte{0xFF, byte(common.EOI)} }

func jfifSegment(major, minor byte, thumbW, thumbH byte, extra int) []byte {
	payload := []byte{'J', 'F', 'I', 'F', 0, major, minor, 1, 0, 72, 0, 96, thumbW, thumbH}
	payload = append(payload, make([]byte, extra)...)
	return segment(common.APP0, payload...)
}

func adobeSegment(transform byte) []byte {
	return segment(common.APP14, 'A', 'd', 'o', 'b', 'e', 0, 100, 0, 0, 0, 0, transform)
}

// dqtSegment emits table, given in natural order, in zigzag order.
func dqtSegment(index int, table [64]uint16, sixteen bool) []byte {
	pq := byte(0)
	if sixteen {
		pq = 1
	}
	payload := []byte{pq<<4 | byte(index)}
	for i := 0; i < 64; i++ {
		v := table[common.NaturalOrder[i]]
		if sixteen {
			payload = append(payload, byte(v>>8))
		}
		payload = append(payload, byte(v))
	}
	return segment(common.DQT, payload...)
}

func dhtTable(class, index int, bits [16]int, values []byte) []byte {
	out := []byte{byte(class<<4 | index)}
	for _, b := range bits {
		out = append(out, byte(b))
	}
	return append(out, values...)
}

func sof0Segment() []byte {
	return segment(common.SOF0,
		8, 0, 8, 0, 16, 3,
		1, 0x22, 0,
		2, 0x11, 1,
		3, 0x11, 1,
	)
}

func sosSegment() []byte {
	return segment(common.SOS, 3, 1, 0x00, 2, 0x11, 3, 0x11, 0, 63, 0)
}

func scanData() []byte {
	return []byte{0x12, 0x34, 0xFF, 0x00, 0x56, 0xFF, 0xD0, 0x78, 0xFF, 0xFF, 0xD1, 0x9A}
}

// baselineHeaders returns everything from the first segment after SOI to the
// end of the stream.
func baselineHeaders() []byte {
	return concat(
		jfifSegment(1, 2, 0, 0, 0),
		adobeSegment(1),
		segment(common.COM, []byte("hello")...),
		dqtSegment(0, common.DefaultLuminanceQuantTable, false),
		dqtSegment(1, common.DefaultChrominanceQuantTable, true),
		sof0Segment(),
		segment(common.DHT, dhtTable(0, 0, common.StandardDCLuminanceBits, common.StandardDCLuminanceValues)...),
		segment(common.DHT, dhtTable(1, 0, common.StandardACLuminanceBits, common.StandardACLuminanceValues)...),
		segment(common.DHT, concat(
			dhtTable(0, 1, common.StandardDCChrominanceBits, common.StandardDCChrominanceValues),
			dhtTable(1, 1, common.StandardACChrominanceBits, common.StandardACChrominanceValues),
		)...),
		segment(common.DRI, 0, 4),
		sosSegment(),
		scanData(),
		eoi(),
	)
}

func baselineStream() []byte {
	return concat(soi(), baselineHeaders())
}

type recorder struct {
	warnings []Warning
}

func (r *recorder) warn(w Warning) {
	r.warnings = append(r.warnings, w)
}

type outcome struct {
	state    *State
	events   []Status
	warnings []Warning
	err      error
}

// drive feeds data to a Reader in chunks of the given size, skips scan data
// and stops at the end of the stream or the first error.
func drive(data []byte, chunk int, opts *Options) outcome {
	buf := source.NewBuffer()
	rec := &recorder{}
	o := DefaultOptions()
	if opts != nil {
		o = *opts
	}
	o.Warn = rec.warn
	r := NewReader(buf, nil, &o)

	out := outcome{state: r.State()}
	fed := 0
	inScan := false
	for steps := 0; steps < 10*len(data)+10; steps++ {
		var err error
		suspended := false
		if inScan {
			var done bool
			done, err = r.SkipScanData()
			if done {
				inScan = false
				continue
			}
			suspended = err == nil
		} else {
			var st Status
			st, err = r.ReadMarkers()
			switch st {
			case ReachedScanStart:
				out.events = append(out.events, st)
				inScan = true
				continue
			case ReachedEndOfStream:
				out.events = append(out.events, st)
				out.warnings = rec.warnings
				return out
			case Suspended:
				suspended = true
			}
		}
		if err != nil {
			out.err = err
			out.warnings = rec.warnings
			return out
		}
		if suspended {
			if fed == len(data) {
				buf.Close()
				continue
			}
			end := min(fed+chunk, len(data))
			buf.Write(data[fed:end])
			fed = end
		}
	}
	out.err = errors.New("reader made no progress")
	out.warnings = rec.warnings
	return out
}

func mustDrive(t *testing.T, data []byte, chunk int, opts *Options) outcome {
	t.Helper()
	out := drive(data, chunk, opts)
	if out.err != nil {
		t.Fatalf("drive(chunk=%d) error: %v", chunk, out.err)
	}
	return out
}
