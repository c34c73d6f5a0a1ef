package jpeg

import "testing"

func makeTestRGBA(width, height int) []byte {
	buf := make([]byte, width*height*4)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := (y*width + x) * 4
			buf[i] = uint8((x * 255) / (width + 1))
			buf[i+1] = uint8((y * 255) / (height + 1))
			buf[i+2] = 128
			buf[i+3] = 255
		}
	}
	return buf
}

func TestParseMetadataReportsDimensions(t *testing.T) {
	rgba := makeTestRGBA(16, 16)
	encoded, err := Encode(rgba, 16, 16, 80)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	meta, err := ParseMetadata(encoded, DecoderOptions{})
	if err != nil {
		t.Fatalf("ParseMetadata: %v", err)
	}
	if meta.Width != 16 || meta.Height != 16 {
		t.Fatalf("got %dx%d, want 16x16", meta.Width, meta.Height)
	}
	if meta.NumComponents != 3 {
		t.Fatalf("got %d components, want 3", meta.NumComponents)
	}
	if meta.ColorSpace != "YCbCr" {
		t.Fatalf("got color space %q, want YCbCr", meta.ColorSpace)
	}
	if meta.JFIF == nil {
		t.Fatalf("expected a JFIF segment to be reported")
	}
}

func TestMissingSOIFails(t *testing.T) {
	_, err := Decode([]byte{0x00, 0x01, 0x02}, DecoderOptions{})
	if err == nil {
		t.Fatalf("expected an error for data lacking SOI")
	}
	ce, ok := AsCodecError(err)
	if !ok || ce.Kind != ErrMissingSOI {
		t.Fatalf("got %v, want ErrMissingSOI", err)
	}
}

func TestResolutionCeilingEnforced(t *testing.T) {
	rgba := makeTestRGBA(32, 32)
	encoded, err := Encode(rgba, 32, 32, 80)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	_, err = Decode(encoded, DecoderOptions{MaxResolutionMP: 0.0001})
	if err == nil {
		t.Fatalf("expected resolution ceiling to be exceeded")
	}
	ce, ok := AsCodecError(err)
	if !ok || ce.Kind != ErrResolutionExceeded {
		t.Fatalf("got %v, want ErrResolutionExceeded", err)
	}
}

func TestMemoryCeilingEnforced(t *testing.T) {
	rgba := makeTestRGBA(64, 64)
	encoded, err := Encode(rgba, 64, 64, 80)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	_, err = Decode(encoded, DecoderOptions{MaxMemoryUsageMB: 0.001})
	if err == nil {
		t.Fatalf("expected memory ceiling to be exceeded")
	}
	ce, ok := AsCodecError(err)
	if !ok || ce.Kind != ErrMemoryLimitExceeded {
		t.Fatalf("got %v, want ErrMemoryLimitExceeded", err)
	}
}

func TestUnknownMarkerRecoveryRewindsEscapedMarker(t *testing.T) {
	// A marker code straight off the end of SOI falls inside the
	// recognized marker-prefix range, so an unrecognized code there is
	// treated as an escaped marker and the parser resumes past it rather
	// than failing outright.
	data := []byte{0xFF, markerSOI, 0xFF, 0x02, 0xFF, markerEOI}
	if err := walkMarkers(data, &DecoderState{opts: resolveOptions(DecoderOptions{}), budget: NewMemoryBudget(1 << 20)}, true); err != nil {
		t.Fatalf("expected recovery to resume parsing, got %v", err)
	}
}
