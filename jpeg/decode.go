package jpeg

import "fmt"

const bytesPerMB = 1024 * 1024

// Decode parses a complete JPEG byte stream and reconstructs pixel data,
// running the full marker-parse, entropy-decode, inverse-DCT, and
// color-conversion pipeline described in spec sections 4.1 through 4.7.
func Decode(data []byte, opts DecoderOptions) (*DecodedImage, error) {
	resolved := resolveOptions(opts)
	budget := NewMemoryBudget(int64(resolved.maxMemoryUsageMB * bytesPerMB))

	state := &DecoderState{
		budget: budget,
		opts:   resolved,
	}

	if err := parseMarkers(data, state); err != nil {
		return nil, err
	}
	if state.frame == nil {
		return nil, fmt.Errorf("JPEG stream contained no SOF segment")
	}

	pixels, _, err := convertAndAssemble(state)
	if err != nil {
		return nil, err
	}

	return &DecodedImage{
		Width:      state.frame.samplesPerLine,
		Height:     state.frame.scanLines,
		PixelData:  pixels,
		ExifBytes:  state.exifBytes,
		Comments:   state.comments,
		ColorSpace: "srgb",
	}, nil
}

// Metadata is the result of ParseMetadata: everything Decode learns about a
// JPEG short of fully decoding its pixels.
type Metadata struct {
	Width, Height   int
	Progressive     bool
	NumComponents   int
	ColorSpace      string
	JFIF            *JFIFInfo
	Adobe           *AdobeInfo
	ExifBytes       []byte
	Comments        []string
	RestartInterval int
}

// ParseMetadata runs only the marker-parsing stage, skipping entropy
// decode and color conversion entirely. It is useful for callers that only
// need image dimensions or embedded metadata and want to avoid the cost
// (and memory budget) of a full decode.
func ParseMetadata(data []byte, opts DecoderOptions) (*Metadata, error) {
	resolved := resolveOptions(opts)
	budget := NewMemoryBudget(int64(resolved.maxMemoryUsageMB * bytesPerMB))

	state := &DecoderState{
		budget: budget,
		opts:   resolved,
	}

	if err := parseHeadersOnly(data, state); err != nil {
		return nil, err
	}
	if state.frame == nil {
		return nil, fmt.Errorf("JPEG stream contained no SOF segment")
	}

	colorSpace := "Unknown"
	switch len(state.frame.components) {
	case 1:
		colorSpace = "Grayscale"
	case 2:
		colorSpace = "GrayscaleAlpha"
	case 3:
		colorSpace = "YCbCr"
	case 4:
		colorSpace = "CMYK"
	}

	return &Metadata{
		Width:           state.frame.samplesPerLine,
		Height:          state.frame.scanLines,
		Progressive:     state.frame.progressive,
		NumComponents:   len(state.frame.components),
		ColorSpace:      colorSpace,
		JFIF:            state.jfif,
		Adobe:           state.adobe,
		ExifBytes:       state.exifBytes,
		Comments:        state.comments,
		RestartInterval: state.restartInterval,
	}, nil
}
