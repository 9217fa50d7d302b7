package common

import "fmt"

// Marker is the code byte that follows 0xFF in a JPEG stream.
// The zero value means "no marker".
type Marker uint8

// JPEG marker codes
const (
	// Start of Frame markers
	SOF0  Marker = 0xC0 // Baseline DCT
	SOF1  Marker = 0xC1 // Extended Sequential DCT
	SOF2  Marker = 0xC2 // Progressive DCT
	SOF3  Marker = 0xC3 // Lossless (Sequential)
	DHT   Marker = 0xC4 // Define Huffman Table
	SOF5  Marker = 0xC5 // Differential Sequential DCT
	SOF6  Marker = 0xC6 // Differential Progressive DCT
	SOF7  Marker = 0xC7 // Differential Lossless
	JPG   Marker = 0xC8 // Reserved for JPEG extensions
	SOF9  Marker = 0xC9 // Extended Sequential DCT, Arithmetic coding
	SOF10 Marker = 0xCA // Progressive DCT, Arithmetic coding
	SOF11 Marker = 0xCB // Lossless, Arithmetic coding
	DAC   Marker = 0xCC // Define Arithmetic Conditioning
	SOF13 Marker = 0xCD // Differential Sequential DCT, Arithmetic coding
	SOF14 Marker = 0xCE // Differential Progressive DCT, Arithmetic coding
	SOF15 Marker = 0xCF // Differential Lossless, Arithmetic coding

	// Restart markers
	RST0 Marker = 0xD0
	RST1 Marker = 0xD1
	RST2 Marker = 0xD2
	RST3 Marker = 0xD3
	RST4 Marker = 0xD4
	RST5 Marker = 0xD5
	RST6 Marker = 0xD6
	RST7 Marker = 0xD7

	SOI Marker = 0xD8 // Start of Image
	EOI Marker = 0xD9 // End of Image
	SOS Marker = 0xDA // Start of Scan
	DQT Marker = 0xDB // Define Quantization Table
	DNL Marker = 0xDC // Define Number of Lines
	DRI Marker = 0xDD // Define Restart Interval
	DHP Marker = 0xDE
	EXP Marker = 0xDF

	// Application segments
	APP0  Marker = 0xE0
	APP1  Marker = 0xE1
	APP2  Marker = 0xE2
	APP14 Marker = 0xEE
	APP15 Marker = 0xEF

	JPG0  Marker = 0xF0
	JPG13 Marker = 0xFD
	COM   Marker = 0xFE // Comment

	TEM Marker = 0x01 // Temporary, arithmetic coding only
)

var markerNames [256]string

func init() {
	names := map[Marker]string{
		SOF0: "SOF0", SOF1: "SOF1", SOF2: "SOF2", SOF3: "SOF3",
		DHT: "DHT", SOF5: "SOF5", SOF6: "SOF6", SOF7: "SOF7",
		JPG: "JPG", SOF9: "SOF9", SOF10: "SOF10", SOF11: "SOF11",
		DAC: "DAC", SOF13: "SOF13", SOF14: "SOF14", SOF15: "SOF15",
		SOI: "SOI", EOI: "EOI", SOS: "SOS", DQT: "DQT", DNL: "DNL",
		DRI: "DRI", DHP: "DHP", EXP: "EXP", COM: "COM", TEM: "TEM",
	}
	for m, n := range names {
		markerNames[m] = n
	}
	for i := 0; i < 8; i++ {
		markerNames[RST0+Marker(i)] = fmt.Sprintf("RST%d", i)
	}
	for i := 0; i < 16; i++ {
		markerNames[APP0+Marker(i)] = fmt.Sprintf("APP%d", i)
	}
	for i := 0; i < 14; i++ {
		markerNames[JPG0+Marker(i)] = fmt.Sprintf("JPG%d", i)
	}
}

// String returns the mnemonic of the marker, or its hex code when it has none.
func (m Marker) String() string {
	if n := markerNames[m]; n != "" {
		return n
	}
	return fmt.Sprintf("0x%02X", uint8(m))
}

// IsSOF returns true if the marker is a Start of Frame marker
func IsSOF(m Marker) bool {
	return m >= SOF0 && m <= SOF15 && m != DHT && m != JPG && m != DAC
}

// IsRST returns true if the marker is a Restart marker
func IsRST(m Marker) bool {
	return m >= RST0 && m <= RST7
}

// IsAPP returns true for APP0 through APP15.
func IsAPP(m Marker) bool {
	return m >= APP0 && m <= APP15
}

// HasLength returns true if the marker is followed by a length field
func HasLength(m Marker) bool {
	// Parameterless: SOI, EOI, RSTn and TEM
	if m == SOI || m == EOI || m == TEM {
		return false
	}
	return !IsRST(m)
}
