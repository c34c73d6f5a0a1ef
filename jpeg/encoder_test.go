package jpeg

import "testing"

func TestScaleQuantTableClampsAndOrders(t *testing.T) {
	q50 := scaleQuantTable(baseQuantLuma, 50)
	for i, base := range baseQuantLuma {
		if int(q50.at(zigZag[i])) != base {
			// at quality 50 the scale factor is 100, so scaled == base.
			t.Fatalf("entry %d: got %d, want base %d", i, q50.at(zigZag[i]), base)
		}
	}

	q1 := scaleQuantTable(baseQuantLuma, 1)
	for i := 0; i < 64; i++ {
		if v := q1.at(i); v < 1 || v > 255 {
			t.Fatalf("quality 1 entry %d out of range: %d", i, v)
		}
	}

	q100 := scaleQuantTable(baseQuantLuma, 100)
	for i := 0; i < 64; i++ {
		if v := q100.at(i); v != 1 {
			t.Fatalf("quality 100 entry %d = %d, want 1 (lossless floor)", i, v)
		}
	}
}

func TestBuildHuffEncodeTableMatchesDecodeTable(t *testing.T) {
	enc := buildHuffEncodeTable(stdDCLuma)
	dec, err := newHuffmanTable(stdDCLuma.counts, stdDCLuma.values)
	if err != nil {
		t.Fatalf("newHuffmanTable: %v", err)
	}

	for _, symbol := range stdDCLuma.values {
		hc := enc[symbol]
		if hc.size == 0 {
			continue
		}
		w := newBitWriter(1)
		w.write(hc.code, uint32(hc.size))
		// Pad with one-bits, the JPEG fill convention, so a short code at
		// the end of the buffer doesn't get misread as a longer one.
		w.write(0xFFFFFFFF, 32)
		w.pad()
		r := newBitReader(w.bytes(), 0)
		got, err := dec.decode(r)
		if err != nil {
			t.Fatalf("decoding symbol %d: %v", symbol, err)
		}
		if got != symbol {
			t.Fatalf("encoded symbol %d decoded back as %d", symbol, got)
		}
	}
}

func TestVLIBitsRoundTripsThroughReceiveAndExtend(t *testing.T) {
	cases := []int32{-255, -1, 1, 2, 17, 255, 1023, -1023}
	for _, v := range cases {
		size := bitLength(v)
		bits := vliBits(v, size)
		w := newBitWriter(1)
		w.write(bits, uint32(size))
		w.pad()
		r := newBitReader(w.bytes(), 0)
		got, err := r.receiveAndExtend(int(size))
		if err != nil {
			t.Fatalf("receiveAndExtend: %v", err)
		}
		if got != v {
			t.Fatalf("vliBits(%d) round trip = %d", v, got)
		}
	}
}

func TestEncodeProducesValidMarkerStructure(t *testing.T) {
	rgba := makeTestRGBA(16, 16)
	out, err := Encode(rgba, 16, 16, 80)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(out) < 4 || out[0] != 0xFF || out[1] != markerSOI {
		t.Fatalf("missing SOI marker")
	}
	if out[len(out)-2] != 0xFF || out[len(out)-1] != markerEOI {
		t.Fatalf("missing EOI marker")
	}
}

func TestEncodeRejectsMismatchedBufferLength(t *testing.T) {
	_, err := Encode(make([]byte, 10), 4, 4, 80)
	if err == nil {
		t.Fatalf("expected an error for a mismatched buffer length")
	}
}
