package jpeg

import "testing"

func TestEncodeDecodeRoundTripStaysClose(t *testing.T) {
	widths := []int{8, 15, 17, 33}
	for _, dim := range widths {
		rgba := makeTestRGBA(dim, dim)
		encoded, err := Encode(rgba, dim, dim, 90)
		if err != nil {
			t.Fatalf("dim %d: Encode: %v", dim, err)
		}

		img, err := Decode(encoded, DecoderOptions{})
		if err != nil {
			t.Fatalf("dim %d: Decode: %v", dim, err)
		}
		if img.Width != dim || img.Height != dim {
			t.Fatalf("dim %d: got %dx%d", dim, img.Width, img.Height)
		}
		if len(img.PixelData) != dim*dim*4 {
			t.Fatalf("dim %d: got %d pixel bytes, want %d", dim, len(img.PixelData), dim*dim*4)
		}

		var maxDiff int
		for i := 0; i < len(rgba); i += 4 {
			for c := 0; c < 3; c++ {
				d := absDiff(int(rgba[i+c]), int(img.PixelData[i+c]))
				if d > maxDiff {
					maxDiff = d
				}
			}
		}
		// High-quality 4:4:4 round trip through a smooth gradient should stay
		// within a modest error budget; a much larger gap would point at a
		// pipeline bug (wrong scale factor, bad zig-zag order, etc.) rather
		// than ordinary quantization loss.
		if maxDiff > 40 {
			t.Fatalf("dim %d: round trip max channel diff %d too large", dim, maxDiff)
		}
	}
}

func TestParseMetadataAgreesWithDecode(t *testing.T) {
	rgba := makeTestRGBA(24, 24)
	encoded, err := Encode(rgba, 24, 24, 75)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	meta, err := ParseMetadata(encoded, DecoderOptions{})
	if err != nil {
		t.Fatalf("ParseMetadata: %v", err)
	}
	img, err := Decode(encoded, DecoderOptions{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if meta.Width != img.Width || meta.Height != img.Height {
		t.Fatalf("metadata %dx%d disagrees with decode %dx%d", meta.Width, meta.Height, img.Width, img.Height)
	}
}
