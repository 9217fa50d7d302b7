package marker

import (
	"errors"
	"reflect"
	"testing"

	"github.com/cocosip/go-jpeg-markers/jpeg/common"
	"github.com/cocosip/go-jpeg-markers/jpeg/source"
)

func TestReadMarkersBaseline(t *testing.T) {
	out := mustDrive(t, baselineStream(), len(baselineStream()), nil)
	st := out.state

	if want := []Status{ReachedScanStart, ReachedEndOfStream}; !reflect.DeepEqual(out.events, want) {
		t.Fatalf("events = %v, want %v", out.events, want)
	}
	if len(out.warnings) != 0 {
		t.Errorf("unexpected warnings: %v", out.warnings)
	}

	if st.FrameMarker != common.SOF0 || st.Progressive || st.Arithmetic {
		t.Errorf("frame = %v progressive=%v arithmetic=%v", st.FrameMarker, st.Progressive, st.Arithmetic)
	}
	if st.Width != 16 || st.Height != 8 || st.Precision != 8 {
		t.Errorf("frame size = %dx%d@%d, want 16x8@8", st.Width, st.Height, st.Precision)
	}

	wantComps := []Component{
		{Index: 0, ID: 1, H: 2, V: 2, QuantTable: 0, DCTable: 0, ACTable: 0},
		{Index: 1, ID: 2, H: 1, V: 1, QuantTable: 1, DCTable: 1, ACTable: 1},
		{Index: 2, ID: 3, H: 1, V: 1, QuantTable: 1, DCTable: 1, ACTable: 1},
	}
	if !reflect.DeepEqual(st.Components, wantComps) {
		t.Errorf("components = %+v, want %+v", st.Components, wantComps)
	}
	if !reflect.DeepEqual(st.ScanComponents, []int{0, 1, 2}) || st.Ss != 0 || st.Se != 63 || st.Ah != 0 || st.Al != 0 {
		t.Errorf("scan = %v Ss=%d Se=%d Ah=%d Al=%d", st.ScanComponents, st.Ss, st.Se, st.Ah, st.Al)
	}

	if st.Quant[0] == nil || st.Quant[0].Values != common.DefaultLuminanceQuantTable || st.Quant[0].Precision != 0 {
		t.Errorf("quant table 0 = %+v", st.Quant[0])
	}
	if st.Quant[1] == nil || st.Quant[1].Values != common.DefaultChrominanceQuantTable || st.Quant[1].Precision != 1 {
		t.Errorf("quant table 1 = %+v", st.Quant[1])
	}
	if st.Quant[2] != nil || st.Quant[3] != nil {
		t.Error("undefined quant tables were allocated")
	}

	huff := []struct {
		name   string
		table  *common.HuffmanTable
		bits   [16]int
		values []byte
	}{
		{"DC0", st.DCHuffman[0], common.StandardDCLuminanceBits, common.StandardDCLuminanceValues},
		{"AC0", st.ACHuffman[0], common.StandardACLuminanceBits, common.StandardACLuminanceValues},
		{"DC1", st.DCHuffman[1], common.StandardDCChrominanceBits, common.StandardDCChrominanceValues},
		{"AC1", st.ACHuffman[1], common.StandardACChrominanceBits, common.StandardACChrominanceValues},
	}
	for _, h := range huff {
		if h.table == nil {
			t.Errorf("%s not defined", h.name)
			continue
		}
		if h.table.Bits != h.bits || !reflect.DeepEqual(h.table.Values, h.values) {
			t.Errorf("%s not stored verbatim", h.name)
		}
	}

	if st.RestartInterval != 4 {
		t.Errorf("RestartInterval = %d, want 4", st.RestartInterval)
	}
	if st.ScanCount != 1 {
		t.Errorf("ScanCount = %d, want 1", st.ScanCount)
	}
	if !st.SawJFIF || st.JFIFMajor != 1 || st.JFIFMinor != 2 || st.DensityUnit != 1 || st.XDensity != 72 || st.YDensity != 96 {
		t.Errorf("JFIF = saw %v %d.%d unit %d %dx%d", st.SawJFIF, st.JFIFMajor, st.JFIFMinor, st.DensityUnit, st.XDensity, st.YDensity)
	}
	if !st.SawAdobe || st.AdobeTransform != 1 {
		t.Errorf("Adobe = saw %v transform %d", st.SawAdobe, st.AdobeTransform)
	}
	if st.ArithDCL != [4]uint8{} || st.ArithDCU != [4]uint8{1, 1, 1, 1} || st.ArithACK != [4]uint8{5, 5, 5, 5} {
		t.Errorf("arithmetic defaults = %v %v %v", st.ArithDCL, st.ArithDCU, st.ArithACK)
	}
	if got := st.InferColorSpace(); got != ColorYCbCr {
		t.Errorf("InferColorSpace() = %v, want %v", got, ColorYCbCr)
	}
}

func TestReadMarkersChunking(t *testing.T) {
	data := baselineStream()
	ref := mustDrive(t, data, len(data), nil)

	for chunk := 1; chunk < len(data); chunk++ {
		got := mustDrive(t, data, chunk, nil)
		if !reflect.DeepEqual(got.state, ref.state) {
			t.Fatalf("chunk %d: state differs from single-buffer parse", chunk)
		}
		if !reflect.DeepEqual(got.events, ref.events) {
			t.Fatalf("chunk %d: events = %v, want %v", chunk, got.events, ref.events)
		}
		if len(got.warnings) != len(ref.warnings) {
			t.Fatalf("chunk %d: %d warnings, want %d", chunk, len(got.warnings), len(ref.warnings))
		}
	}
}

func TestReadMarkersGarbage(t *testing.T) {
	tests := []struct {
		name    string
		garbage []byte
		want    int
	}{
		{"sixteen bytes", []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}, 16},
		{"stuffed zero counts twice", []byte{1, 2, 0xFF, 0x00, 3}, 5},
		{"fill bytes are free", []byte{7, 0xFF, 0xFF, 0xFF}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := concat(soi(), tt.garbage, baselineHeaders())
			for _, chunk := range []int{1, 3, len(data)} {
				out := mustDrive(t, data, chunk, nil)
				if len(out.warnings) != 1 {
					t.Fatalf("chunk %d: %d warnings, want 1: %v", chunk, len(out.warnings), out.warnings)
				}
				w := out.warnings[0]
				if w.Code != WarnExtraneousData || w.Count != tt.want || w.Marker != common.APP0 {
					t.Errorf("chunk %d: warning = %+v, want %d bytes before APP0", chunk, w, tt.want)
				}
				if out.state.Discarded != 0 {
					t.Errorf("Discarded = %d after warning, want 0", out.state.Discarded)
				}
				if !out.state.SawJFIF {
					t.Error("JFIF segment lost after garbage")
				}
			}
		})
	}
}

func TestReadMarkersFirstMarker(t *testing.T) {
	tests := []struct {
		name          string
		data          []byte
		first, second byte
	}{
		{"missing FF", []byte{0x00, 0xD8, 0xFF, 0xD9}, 0x00, 0xD8},
		{"EOI first", []byte{0xFF, 0xD9}, 0xFF, 0xD9},
		{"GIF", []byte("GIF89a"), 'G', 'I'},
		{"leading fill byte", []byte{0xFF, 0xFF, 0xD8}, 0xFF, 0xFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := source.NewBuffer()
			buf.Write(tt.data)
			r := NewReader(buf, nil, nil)

			st, err := r.ReadMarkers()
			if st != FatalError {
				t.Fatalf("status = %v, want %v", st, FatalError)
			}
			if !errors.Is(err, common.ErrInvalidSOI) {
				t.Fatalf("error = %v, want %v", err, common.ErrInvalidSOI)
			}
			var fm *FirstMarkerError
			if !errors.As(err, &fm) {
				t.Fatalf("error %T is not a *FirstMarkerError", err)
			}
			if fm.First != tt.first || fm.Second != tt.second {
				t.Errorf("bytes = 0x%02x 0x%02x, want 0x%02x 0x%02x", fm.First, fm.Second, tt.first, tt.second)
			}

			// The reader stays failed.
			if st, err2 := r.ReadMarkers(); st != FatalError || err2 != err {
				t.Errorf("second call = %v, %v", st, err2)
			}
		})
	}
}

func TestReadMarkersSuspendKeepsPending(t *testing.T) {
	buf := source.NewBuffer()
	r := NewReader(buf, nil, nil)

	buf.Write([]byte{0xFF})
	if st, err := r.ReadMarkers(); st != Suspended || err != nil {
		t.Fatalf("ReadMarkers() = %v, %v, want Suspended", st, err)
	}
	if r.Phase() != AwaitingStartOfImage {
		t.Errorf("phase = %v", r.Phase())
	}

	// SOI followed by the first byte of a DQT length.
	buf.Write([]byte{0xD8, 0xFF, byte(common.DQT), 0x00})
	if st, err := r.ReadMarkers(); st != Suspended || err != nil {
		t.Fatalf("ReadMarkers() = %v, %v, want Suspended", st, err)
	}
	if r.PendingMarker() != common.DQT {
		t.Errorf("PendingMarker() = %v, want DQT", r.PendingMarker())
	}
	if r.Phase() != HaveStartOfImage {
		t.Errorf("phase = %v, want %v", r.Phase(), HaveStartOfImage)
	}
	if buf.Position() != 4 {
		t.Errorf("restart point = %d, want 4", buf.Position())
	}
}

func TestReadMarkersQuantSixteenBit(t *testing.T) {
	var zigzag [64]uint16
	for i := range zigzag {
		zigzag[i] = uint16(1000 + i)
	}
	payload := []byte{0x13}
	for _, v := range zigzag {
		payload = append(payload, byte(v>>8), byte(v))
	}
	data := concat(soi(), segment(common.DQT, payload...), eoi())

	out := mustDrive(t, data, 5, nil)
	q := out.state.Quant[3]
	if q == nil {
		t.Fatal("table 3 not defined")
	}
	if q.Precision != 1 {
		t.Errorf("Precision = %d, want 1", q.Precision)
	}
	for i, v := range zigzag {
		if got := q.Values[common.NaturalOrder[i]]; got != v {
			t.Fatalf("zigzag %d stored as %d, want %d", i, got, v)
		}
	}
	// Third transmitted value lands at row 1, column 0.
	if q.Values[8] != 1002 {
		t.Errorf("Values[8] = %d, want 1002", q.Values[8])
	}
}

func TestReadMarkersSOSBeforeSOF(t *testing.T) {
	buf := source.NewBuffer()
	buf.Write(concat(soi(), sosSegment()))
	st := &State{NextRestart: 5}
	r := NewReader(buf, st, nil)

	status, err := r.ReadMarkers()
	if status != FatalError || !errors.Is(err, common.ErrSOSNoSOF) {
		t.Fatalf("ReadMarkers() = %v, %v, want %v", status, err, common.ErrSOSNoSOF)
	}
	if st.ScanCount != 0 || st.NextRestart != 5 {
		t.Errorf("ScanCount = %d, NextRestart = %d; want 0 and 5", st.ScanCount, st.NextRestart)
	}
}

func TestReadMarkersErrors(t *testing.T) {
	// dht declares count one-bit codes followed by values.
	dht := func(index, count byte, values ...byte) []byte {
		payload := make([]byte, 17)
		payload[0], payload[1] = index, count
		return segment(common.DHT, append(payload, values...)...)
	}

	tests := []struct {
		name    string
		body    []byte
		wantErr error
	}{
		{"duplicate SOI", soi(), common.ErrDuplicateSOI},
		{"duplicate SOF", concat(sof0Segment(), sof0Segment()), common.ErrDuplicateSOF},
		{"zero width", segment(common.SOF0, 8, 0, 8, 0, 0, 1, 1, 0x11, 0), common.ErrInvalidDimensions},
		{"zero components", segment(common.SOF1, 8, 0, 8, 0, 8, 0), common.ErrInvalidDimensions},
		{"SOF length", segment(common.SOF0, 8, 0, 8, 0, 8, 2, 1, 0x11, 0), common.ErrBadLength},
		{"sampling factor", segment(common.SOF0, 8, 0, 8, 0, 8, 1, 1, 0x51, 0), common.ErrInvalidSOF},
		{"SOF quant index", segment(common.SOF0, 8, 0, 8, 0, 8, 1, 1, 0x11, 4), common.ErrBadTableIndex},
		{"lossless", segment(common.SOF3, 8, 0, 8, 0, 8, 1, 1, 0x11, 0), common.ErrUnsupportedSOF},
		{"differential", segment(common.SOF15, 8, 0, 8, 0, 8, 1, 1, 0x11, 0), common.ErrUnsupportedSOF},
		{"JPG", segment(common.JPG), common.ErrUnsupportedSOF},
		{"reserved marker", segment(common.DHP), common.ErrUnknownMarker},
		{"JPGn", segment(common.JPG13), common.ErrUnknownMarker},
		{"DQT index", segment(common.DQT, append([]byte{0x04}, make([]byte, 64)...)...), common.ErrDQTIndex},
		{"DQT short", segment(common.DQT, append([]byte{0x10}, make([]byte, 64)...)...), common.ErrBadLength},
		{"DHT AC index", dht(0x14, 1, 0), common.ErrDHTIndex},
		{"DHT counts", dht(0x00, 2), common.ErrDHTCounts},
		{"DHT oversubscribed", dht(0x00, 3, 1, 2, 3), common.ErrDHTCounts},
		{"DAC index", segment(common.DAC, 8, 0), common.ErrDACIndex},
		{"DAC value", segment(common.DAC, 0, 0x12), common.ErrDACValue},
		{"DAC odd", segment(common.DAC, 0, 0x10, 1), common.ErrBadLength},
		{"DRI length", segment(common.DRI, 0, 4, 0), common.ErrBadLength},
		{"SOS length", concat(sof0Segment(), segment(common.SOS, 1, 1, 0, 0, 63)), common.ErrBadLength},
		{"SOS five components", concat(sof0Segment(), segment(common.SOS, 5, 1, 0, 2, 0, 3, 0, 1, 0, 2, 0, 0, 63, 0)), common.ErrBadLength},
		{"SOS selector", concat(sof0Segment(), segment(common.SOS, 1, 9, 0, 0, 63, 0)), common.ErrBadComponentID},
		{"SOS table index", concat(sof0Segment(), segment(common.SOS, 1, 1, 0x40, 0, 63, 0)), common.ErrBadTableIndex},
		{"APP length", []byte{0xFF, byte(common.APP1), 0, 1}, common.ErrBadLength},
		{"truncated", []byte{0xFF, byte(common.DQT), 0, 67, 0}, common.ErrUnexpectedEOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := concat(soi(), tt.body)
			for _, chunk := range []int{1, len(data)} {
				out := drive(data, chunk, nil)
				if !errors.Is(out.err, tt.wantErr) {
					t.Errorf("chunk %d: error = %v, want %v", chunk, out.err, tt.wantErr)
				}
			}
		})
	}
}

func TestReadMarkersMultiScan(t *testing.T) {
	prog := segment(common.SOF2,
		8, 0, 8, 0, 8, 1,
		1, 0x11, 0,
	)
	scan := func(ss, se, ahal byte) []byte {
		return segment(common.SOS, 1, 1, 0x00, ss, se, ahal)
	}
	data := concat(
		soi(),
		dqtSegment(0, common.DefaultLuminanceQuantTable, false),
		prog,
		segment(common.DHT, dhtTable(0, 0, common.StandardDCLuminanceBits, common.StandardDCLuminanceValues)...),
		scan(0, 0, 0x01), []byte{0x01, 0x02},
		segment(common.DHT, dhtTable(1, 0, common.StandardACLuminanceBits, common.StandardACLuminanceValues)...),
		scan(1, 63, 0x00), []byte{0x03},
		scan(0, 0, 0x10), []byte{0x04},
		eoi(),
	)

	out := mustDrive(t, data, 2, nil)
	st := out.state
	want := []Status{ReachedScanStart, ReachedScanStart, ReachedScanStart, ReachedEndOfStream}
	if !reflect.DeepEqual(out.events, want) {
		t.Fatalf("events = %v, want %v", out.events, want)
	}
	if !st.Progressive || st.Arithmetic {
		t.Errorf("progressive = %v, arithmetic = %v", st.Progressive, st.Arithmetic)
	}
	if st.ScanCount != 3 || st.Ah != 1 || st.Al != 0 {
		t.Errorf("ScanCount = %d, Ah = %d, Al = %d", st.ScanCount, st.Ah, st.Al)
	}
	if got := st.InferColorSpace(); got != ColorGrayscale {
		t.Errorf("InferColorSpace() = %v", got)
	}
}

func TestReaderReset(t *testing.T) {
	tables := concat(soi(), dqtSegment(0, common.DefaultLuminanceQuantTable, false), eoi())
	image := concat(
		soi(),
		segment(common.SOF1, 12, 0, 8, 0, 8, 1, 1, 0x11, 0),
		segment(common.DAC, 0, 0x21, 4, 9),
		eoi(),
	)

	buf := source.NewBuffer()
	buf.Write(tables)
	r := NewReader(buf, nil, nil)
	if st, err := r.ReadMarkers(); st != ReachedEndOfStream || err != nil {
		t.Fatalf("tables stream: %v, %v", st, err)
	}
	q := r.State().Quant[0]

	r.Reset()
	if r.State().SawSOI || r.State().Components != nil || r.Phase() != AwaitingStartOfImage {
		t.Fatal("Reset() kept per-stream state")
	}

	buf.Write(image)
	if st, err := r.ReadMarkers(); st != ReachedEndOfStream || err != nil {
		t.Fatalf("image stream: %v, %v", st, err)
	}
	st := r.State()
	if st.Quant[0] != q || st.Quant[0].Values != common.DefaultLuminanceQuantTable {
		t.Error("quantization table did not survive Reset")
	}
	if st.Precision != 12 || st.FrameMarker != common.SOF1 {
		t.Errorf("frame = %v@%d", st.FrameMarker, st.Precision)
	}
	if st.ArithDCL[0] != 1 || st.ArithDCU[0] != 2 || st.ArithACK[0] != 9 {
		t.Errorf("DAC = L %d U %d K %d", st.ArithDCL[0], st.ArithDCU[0], st.ArithACK[0])
	}
}
