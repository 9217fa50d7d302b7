package marker

import "github.com/cocosip/go-jpeg-markers/jpeg/common"

// NumTables is the number of table slots per class (quantization, DC and AC
// Huffman, arithmetic conditioning).
const NumTables = 4

// MaxScanComponents is the largest number of components in one scan.
const MaxScanComponents = 4

// Component describes one frame component.
type Component struct {
	Index      int // position in the frame header
	ID         int
	H          int // horizontal sampling factor
	V          int // vertical sampling factor
	QuantTable int
	// Entropy table selectors from the latest scan that included the component
	DCTable int
	ACTable int
}

// QuantTable holds 64 quantization coefficients in natural order.
type QuantTable struct {
	Values [64]uint16
	// Precision is 0 for 8-bit and 1 for 16-bit entries.
	Precision int
}

// ColorSpace is the color space of the encoded components.
type ColorSpace int

const (
	ColorUnknown ColorSpace = iota
	ColorGrayscale
	ColorYCbCr
	ColorRGB
	ColorCMYK
	ColorYCCK
)

func (c ColorSpace) String() string {
	switch c {
	case ColorGrayscale:
		return "Grayscale"
	case ColorYCbCr:
		return "YCbCr"
	case ColorRGB:
		return "RGB"
	case ColorCMYK:
		return "CMYK"
	case ColorYCCK:
		return "YCCK"
	default:
		return "Unknown"
	}
}

// State is the header and table state collected from a stream. It is owned by
// the caller and only modified by a Reader.
type State struct {
	SawSOI bool
	SawSOF bool

	// Frame header
	FrameMarker common.Marker
	Progressive bool
	Arithmetic  bool
	Precision   int
	Width       int
	Height      int
	Components  []Component

	// Current scan
	ScanComponents []int // indices into Components
	Ss, Se         int
	Ah, Al         int

	Quant     [NumTables]*QuantTable
	DCHuffman [NumTables]*common.HuffmanTable
	ACHuffman [NumTables]*common.HuffmanTable

	// Arithmetic coding conditioning
	ArithDCL [NumTables]uint8
	ArithDCU [NumTables]uint8
	ArithACK [NumTables]uint8

	RestartInterval int
	ScanCount       int
	NextRestart     int
	// Discarded counts bytes skipped while looking for the next marker.
	Discarded int

	ColorSpace ColorSpace
	CCIR601    bool

	SawJFIF     bool
	JFIFMajor   int
	JFIFMinor   int
	DensityUnit int
	XDensity    int
	YDensity    int

	SawAdobe       bool
	AdobeTransform int
}

// Reset prepares s for a new stream. Table storage is kept, so tables defined
// by an earlier tables-only stream stay usable.
func (s *State) Reset() {
	s.SawSOI = false
	s.SawSOF = false
	s.FrameMarker = 0
	s.Progressive = false
	s.Arithmetic = false
	s.Precision = 0
	s.Width, s.Height = 0, 0
	s.Components = nil
	s.ScanComponents = nil
	s.Ss, s.Se, s.Ah, s.Al = 0, 0, 0, 0
	s.ScanCount = 0
	s.NextRestart = 0
	s.Discarded = 0
}

// resetImage applies the per-image defaults taking effect at SOI.
func (s *State) resetImage() {
	for i := 0; i < NumTables; i++ {
		s.ArithDCL[i] = 0
		s.ArithDCU[i] = 1
		s.ArithACK[i] = 5
	}
	s.RestartInterval = 0
	s.ColorSpace = ColorUnknown
	s.CCIR601 = false

	s.SawJFIF = false
	s.JFIFMajor, s.JFIFMinor = 0, 0
	s.DensityUnit = 0
	s.XDensity, s.YDensity = 1, 1
	s.SawAdobe = false
	s.AdobeTransform = 0

	s.SawSOI = true
}

// Component returns the frame component with the given id.
func (s *State) Component(id int) (*Component, bool) {
	for i := range s.Components {
		if s.Components[i].ID == id {
			return &s.Components[i], true
		}
	}
	return nil, false
}

// InferColorSpace guesses the color space of the frame from its component
// count, the JFIF and Adobe segments and the component ids.
func (s *State) InferColorSpace() ColorSpace {
	switch len(s.Components) {
	case 1:
		return ColorGrayscale
	case 3:
		if s.SawJFIF {
			return ColorYCbCr
		}
		if s.SawAdobe {
			if s.AdobeTransform == 0 {
				return ColorRGB
			}
			return ColorYCbCr
		}
		c := s.Components
		if c[0].ID == 'R' && c[1].ID == 'G' && c[2].ID == 'B' {
			return ColorRGB
		}
		return ColorYCbCr
	case 4:
		if s.SawAdobe && s.AdobeTransform == 2 {
			return ColorYCCK
		}
		return ColorCMYK
	default:
		return ColorUnknown
	}
}
