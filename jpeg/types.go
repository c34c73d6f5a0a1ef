package jpeg

// Block is a single 8x8 data unit's 64 coefficients in natural (row-major)
// order.
type Block [64]int32

// Component describes one color component of a Frame: its sampling
// factors, its resolved quantization table, and the coefficient block grid
// filled in by the ScanDecoder.
type Component struct {
	ID       uint8
	H, V     uint8
	QuantIdx uint8
	quant    *QuantTable

	// blocksPerLine/blocksPerColumn are the visible block extents that size
	// a non-interleaved scan; blocksPerLineForMcu/blocksPerColumnForMcu are
	// the larger MCU-aligned extents actually allocated and reconstructed
	// by ComponentAssembler (spec section 3).
	blocksPerLine         int
	blocksPerColumn       int
	blocksPerLineForMcu   int
	blocksPerColumnForMcu int

	blocks []Block

	huffDC, huffAC *HuffmanTable
	pred           int32

	// lines holds one row of samples per scan line after IDCT, each
	// blocksPerLineForMcu*8 bytes wide.
	lines [][]uint8
}

func (c *Component) block(row, col int) *Block {
	return &c.blocks[row*c.blocksPerLineForMcu+col]
}

// Frame is the immutable frame description parsed from a single SOF
// segment.
type Frame struct {
	precision       int
	scanLines       int
	samplesPerLine  int
	progressive     bool
	extended        bool
	components      map[uint8]*Component
	componentsOrder []uint8
	maxH, maxV      int
	mcusPerLine     int
	mcusPerColumn   int
}

func (f *Frame) orderedComponents() []*Component {
	out := make([]*Component, len(f.componentsOrder))
	for i, id := range f.componentsOrder {
		out[i] = f.components[id]
	}
	return out
}

// JFIFInfo holds the fields of an APP0 "JFIF\0" segment.
type JFIFInfo struct {
	VersionMajor, VersionMinor uint8
	DensityUnits               uint8
	XDensity, YDensity         uint16
	ThumbWidth, ThumbHeight    uint8
	ThumbData                  []byte
}

// AdobeInfo holds the fields of an APP14 "Adobe\0" segment.
type AdobeInfo struct {
	Version       uint16
	Flags0        uint16
	Flags1        uint16
	TransformCode uint8
}

// scanComponentSpec binds one SOS component selector to its chosen DC/AC
// tables for the duration of one scan.
type scanComponentSpec struct {
	component *Component
}

// scanHeader is the transient per-SOS state described in spec section 3.
type scanHeader struct {
	components []scanComponentSpec
	ss, se     int
	ah, al     int
}

// DecoderState accumulates everything parsed out of a JPEG byte stream: the
// frame, the resolved tables, and application metadata. It is created fresh
// for every top-level Decode call.
type DecoderState struct {
	frame           *Frame
	quantTablesRaw  [4]*[64]uint16 // zig-zag order, pending resolution
	quantTables     [4]*QuantTable
	huffDC          [4]*HuffmanTable
	huffAC          [4]*HuffmanTable
	restartInterval int

	jfif      *JFIFInfo
	adobe     *AdobeInfo
	exifBytes []byte
	comments  []string

	budget *MemoryBudget
	opts   resolvedOptions

	malformedRecoveryUsed bool
	malformedFirstOffset  int64

	sawFrame bool
}

// DecoderOptions mirrors spec section 6's recognized decode options. All
// fields are optional; nil pointers take the documented default.
type DecoderOptions struct {
	ColorTransform    *bool
	FormatAsRGBA      *bool
	TolerantDecoding  *bool
	MaxResolutionMP   float64 // 0 means "use default" (100)
	MaxMemoryUsageMB  float64 // 0 means "use default" (512)
}

type resolvedOptions struct {
	colorTransform   *bool
	formatAsRGBA     bool
	tolerantDecoding bool
	maxResolutionMP  float64
	maxMemoryUsageMB float64
}

func resolveOptions(opts DecoderOptions) resolvedOptions {
	r := resolvedOptions{
		colorTransform:   opts.ColorTransform,
		formatAsRGBA:     true,
		tolerantDecoding: true,
		maxResolutionMP:  100,
		maxMemoryUsageMB: 512,
	}
	if opts.FormatAsRGBA != nil {
		r.formatAsRGBA = *opts.FormatAsRGBA
	}
	if opts.TolerantDecoding != nil {
		r.tolerantDecoding = *opts.TolerantDecoding
	}
	if opts.MaxResolutionMP > 0 {
		r.maxResolutionMP = opts.MaxResolutionMP
	}
	if opts.MaxMemoryUsageMB > 0 {
		r.maxMemoryUsageMB = opts.MaxMemoryUsageMB
	}
	return r
}

// DecodedImage is the result of a successful Decode call.
type DecodedImage struct {
	Width      int
	Height     int
	PixelData  []byte
	ExifBytes  []byte
	Comments   []string
	ColorSpace string
}

// BoolPtr is a small convenience helper for populating the pointer-typed
// fields of DecoderOptions, mirroring the option-builder helpers many Go
// client libraries expose for optional boolean fields.
func BoolPtr(v bool) *bool { return &v }
