package marker

import (
	"fmt"

	"github.com/cocosip/go-jpeg-markers/jpeg/common"
	"github.com/golang/glog"
)

// Segment decoders read a whole segment into locals and commit to the state
// only after the last byte was read. Returning errSuspend before the commit
// leaves the state as it was.

func (r *Reader) readSOI() error {
	glog.V(1).Info("Start of Image")
	if r.state.SawSOI {
		return common.ErrDuplicateSOI
	}
	r.state.resetImage()
	return nil
}

func (r *Reader) readSOF(m common.Marker, progressive, arithmetic bool) error {
	st := r.state
	c := newCursor(r.src)

	length, err := c.uint16()
	if err != nil {
		return err
	}
	var hdr [6]byte
	if err := c.read(hdr[:]); err != nil {
		return err
	}
	precision := int(hdr[0])
	height := int(hdr[1])<<8 | int(hdr[2])
	width := int(hdr[3])<<8 | int(hdr[4])
	n := int(hdr[5])
	length -= 8

	glog.V(1).Infof("Start Of Frame 0x%02x: width=%d, height=%d, components=%d", uint8(m), width, height, n)

	if st.SawSOF {
		return common.ErrDuplicateSOF
	}
	if height <= 0 || width <= 0 || n <= 0 {
		return fmt.Errorf("%w: %dx%d with %d components", common.ErrInvalidDimensions, width, height, n)
	}
	if length != n*3 {
		return fmt.Errorf("%w: SOF length %d for %d components", common.ErrBadLength, length+8, n)
	}

	comps := make([]Component, n)
	for i := range comps {
		var b [3]byte
		if err := c.read(b[:]); err != nil {
			return err
		}
		comp := Component{
			Index:      i,
			ID:         int(b[0]),
			H:          int(b[1] >> 4),
			V:          int(b[1] & 0x0F),
			QuantTable: int(b[2]),
		}
		glog.V(1).Infof("    Component %d: %dhx%dv q=%d", comp.ID, comp.H, comp.V, comp.QuantTable)
		if comp.H < 1 || comp.H > 4 || comp.V < 1 || comp.V > 4 {
			return fmt.Errorf("%w: component %d sampling %dx%d", common.ErrInvalidSOF, comp.ID, comp.H, comp.V)
		}
		if comp.QuantTable >= NumTables {
			return fmt.Errorf("%w: component %d quantization table %d", common.ErrBadTableIndex, comp.ID, comp.QuantTable)
		}
		comps[i] = comp
	}

	st.FrameMarker = m
	st.Progressive = progressive
	st.Arithmetic = arithmetic
	st.Precision = precision
	st.Width, st.Height = width, height
	st.Components = comps
	st.SawSOF = true
	c.sync()
	return nil
}

func (r *Reader) readSOS() error {
	st := r.state
	if !st.SawSOF {
		return common.ErrSOSNoSOF
	}
	c := newCursor(r.src)

	length, err := c.uint16()
	if err != nil {
		return err
	}
	nb, err := c.byte()
	if err != nil {
		return err
	}
	n := int(nb)
	if length != n*2+6 || n < 1 || n > MaxScanComponents {
		return fmt.Errorf("%w: SOS length %d for %d components", common.ErrBadLength, length, n)
	}
	glog.V(1).Infof("Start Of Scan: %d components", n)

	scan := make([]int, n)
	var dc, ac [MaxScanComponents]int
	for i := 0; i < n; i++ {
		var b [2]byte
		if err := c.read(b[:]); err != nil {
			return err
		}
		comp, ok := st.Component(int(b[0]))
		if !ok {
			return fmt.Errorf("%w: selector %d", common.ErrBadComponentID, b[0])
		}
		dc[i], ac[i] = int(b[1]>>4), int(b[1]&0x0F)
		glog.V(1).Infof("    Component %d: dc=%d ac=%d", comp.ID, dc[i], ac[i])
		if dc[i] >= NumTables || ac[i] >= NumTables {
			return fmt.Errorf("%w: component %d tables dc=%d ac=%d", common.ErrBadTableIndex, comp.ID, dc[i], ac[i])
		}
		scan[i] = comp.Index
	}

	var tail [3]byte
	if err := c.read(tail[:]); err != nil {
		return err
	}
	glog.V(1).Infof("  Ss=%d, Se=%d, Ah=%d, Al=%d", tail[0], tail[1], tail[2]>>4, tail[2]&0x0F)

	for i, ci := range scan {
		st.Components[ci].DCTable = dc[i]
		st.Components[ci].ACTable = ac[i]
	}
	st.ScanComponents = scan
	st.Ss, st.Se = int(tail[0]), int(tail[1])
	st.Ah, st.Al = int(tail[2]>>4), int(tail[2]&0x0F)
	st.NextRestart = 0
	st.ScanCount++
	c.sync()
	return nil
}

func (r *Reader) readDAC() error {
	st := r.state
	c := newCursor(r.src)

	length, err := c.uint16()
	if err != nil {
		return err
	}
	length -= 2

	type entry struct{ index, val int }
	var entries []entry
	for length > 0 {
		if length < 2 {
			return fmt.Errorf("%w: DAC has %d trailing bytes", common.ErrBadLength, length)
		}
		var b [2]byte
		if err := c.read(b[:]); err != nil {
			return err
		}
		length -= 2
		index, val := int(b[0]), int(b[1])
		glog.V(1).Infof("Define Arithmetic Table 0x%02x: 0x%02x", index, val)

		if index >= 2*NumTables {
			return fmt.Errorf("%w: %d", common.ErrDACIndex, index)
		}
		if index < NumTables && val&0x0F > val>>4 {
			return fmt.Errorf("%w: %d", common.ErrDACValue, val)
		}
		entries = append(entries, entry{index, val})
	}

	for _, e := range entries {
		if e.index >= NumTables {
			st.ArithACK[e.index-NumTables] = uint8(e.val)
		} else {
			st.ArithDCL[e.index] = uint8(e.val & 0x0F)
			st.ArithDCU[e.index] = uint8(e.val >> 4)
		}
	}
	c.sync()
	return nil
}

func (r *Reader) readDHT() error {
	st := r.state
	c := newCursor(r.src)

	length, err := c.uint16()
	if err != nil {
		return err
	}
	length -= 2

	type definition struct {
		ac    bool
		index int
		table common.HuffmanTable
	}
	var defs []definition
	for length > 0 {
		ib, err := c.byte()
		if err != nil {
			return err
		}
		index := int(ib)
		glog.V(1).Infof("Define Huffman Table 0x%02x", index)

		var d definition
		count := 0
		for i := range d.table.Bits {
			b, err := c.byte()
			if err != nil {
				return err
			}
			d.table.Bits[i] = int(b)
			count += int(b)
		}
		length -= 1 + 16
		glog.V(2).Infof("          %v", d.table.Bits)

		if count > 256 || count > length {
			return fmt.Errorf("%w: %d symbols with %d bytes left", common.ErrDHTCounts, count, length)
		}
		d.table.Values = make([]byte, count)
		if err := c.read(d.table.Values); err != nil {
			return err
		}
		length -= count

		if index&0x10 != 0 {
			d.ac = true
			index -= 0x10
		}
		if index >= NumTables {
			return fmt.Errorf("%w: %d", common.ErrDHTIndex, index)
		}
		d.index = index
		if err := d.table.Build(); err != nil {
			return fmt.Errorf("%w: table 0x%02x: %v", common.ErrDHTCounts, ib, err)
		}
		defs = append(defs, d)
	}

	for _, d := range defs {
		bank := &st.DCHuffman
		if d.ac {
			bank = &st.ACHuffman
		}
		if bank[d.index] == nil {
			bank[d.index] = new(common.HuffmanTable)
		}
		*bank[d.index] = d.table
	}
	c.sync()
	return nil
}

func (r *Reader) readDQT() error {
	st := r.state
	c := newCursor(r.src)

	length, err := c.uint16()
	if err != nil {
		return err
	}
	length -= 2

	type definition struct {
		index int
		table QuantTable
	}
	var defs []definition
	for length > 0 {
		b, err := c.byte()
		if err != nil {
			return err
		}
		prec, n := int(b>>4), int(b&0x0F)
		glog.V(1).Infof("Define Quantization Table %d  precision %d", n, prec)

		if n >= NumTables {
			return fmt.Errorf("%w: %d", common.ErrDQTIndex, n)
		}
		size := 1 + 64
		if prec != 0 {
			size += 64
		}
		if size > length {
			return fmt.Errorf("%w: DQT table %d needs %d bytes, %d left", common.ErrBadLength, n, size, length)
		}

		d := definition{index: n}
		d.table.Precision = prec
		for i := 0; i < 64; i++ {
			var v int
			if prec != 0 {
				v, err = c.uint16()
			} else {
				var vb byte
				vb, err = c.byte()
				v = int(vb)
			}
			if err != nil {
				return err
			}
			d.table.Values[common.NaturalOrder[i]] = uint16(v)
		}
		if glog.V(2) {
			for i := 0; i < 64; i += 8 {
				glog.Infof("        %v", d.table.Values[i:i+8])
			}
		}
		length -= size
		defs = append(defs, d)
	}

	for _, d := range defs {
		if st.Quant[d.index] == nil {
			st.Quant[d.index] = new(QuantTable)
		}
		*st.Quant[d.index] = d.table
	}
	c.sync()
	return nil
}

func (r *Reader) readDRI() error {
	c := newCursor(r.src)
	length, err := c.uint16()
	if err != nil {
		return err
	}
	if length != 4 {
		return fmt.Errorf("%w: DRI length %d", common.ErrBadLength, length)
	}
	interval, err := c.uint16()
	if err != nil {
		return err
	}
	glog.V(1).Infof("Define Restart Interval %d", interval)

	r.state.RestartInterval = interval
	c.sync()
	return nil
}

// skipVariable skips a segment nobody is interested in.
func (r *Reader) skipVariable(m common.Marker) error {
	c := newCursor(r.src)
	length, err := c.uint16()
	if err != nil {
		return err
	}
	if length < 2 {
		return fmt.Errorf("%w: %v length %d", common.ErrBadLength, m, length)
	}
	glog.V(1).Infof("Miscellaneous marker 0x%02x, length %d", uint8(m), length)
	return c.skip(length - 2)
}
