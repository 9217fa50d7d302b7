package common

// HuffmanTable represents a Huffman coding table as defined by a DHT segment.
// Bits and Values hold the segment contents verbatim; the lookup fields are
// derived by Build for the entropy decoder.
type HuffmanTable struct {
	// Number of codes of each length (1-16 bits)
	Bits [16]int
	// Values for each code, in order of code length
	Values []byte

	minCode [16]int32
	maxCode [16]int32
	valPtr  [16]int32
	// value: (nbits << 8) | value, -1 if not found
	lookupTable [256]int16
}

// Build builds lookup tables for fast Huffman decoding
func (h *HuffmanTable) Build() error {
	total := 0
	for _, n := range h.Bits {
		total += n
	}
	if total > len(h.Values) {
		return ErrInvalidHuffmanCode
	}

	for i := range h.lookupTable {
		h.lookupTable[i] = -1
	}

	code := int32(0)
	p := 0
	for l := 0; l < 16; l++ {
		if h.Bits[l] == 0 {
			h.maxCode[l] = -1
			h.minCode[l] = 0
			h.valPtr[l] = 0
			code <<= 1
			continue
		}
		h.valPtr[l] = int32(p)
		h.minCode[l] = code
		for i := 0; i < h.Bits[l]; i++ {
			if code >= int32(1)<<uint(l+1) {
				return ErrInvalidHuffmanCode
			}
			if l < 8 {
				// Extend the code to 8 bits
				shift := uint(7 - l)
				base := int(code) << shift
				for j := 0; j < 1<<shift; j++ {
					h.lookupTable[base+j] = int16((l+1)<<8 | int(h.Values[p]))
				}
			}
			code++
			p++
		}
		h.maxCode[l] = code - 1
		code <<= 1
	}

	return nil
}

// Lookup resolves the code in the high bits of an 8-bit peek. It returns the
// symbol and code length, or a zero length when the code is longer than 8 bits.
func (h *HuffmanTable) Lookup(peek uint8) (value byte, length int) {
	e := h.lookupTable[peek]
	if e < 0 {
		return 0, 0
	}
	return byte(e & 0xFF), int(e >> 8)
}

// Symbols returns the number of symbols the table defines.
func (h *HuffmanTable) Symbols() int {
	n := 0
	for _, b := range h.Bits {
		n += b
	}
	return n
}
