package jpeg

import "testing"

func TestHuffmanTableRoundTrip(t *testing.T) {
	table, err := newHuffmanTable(stdDCLuma.counts, stdDCLuma.values)
	if err != nil {
		t.Fatalf("newHuffmanTable: %v", err)
	}

	enc := buildHuffEncodeTable(stdDCLuma)
	for _, symbol := range stdDCLuma.values {
		hc := enc[symbol]
		w := newBitWriter(4)
		w.write(hc.code, uint32(hc.size))
		w.pad()

		r := newBitReader(w.bytes(), 0)
		got, err := table.decode(r)
		if err != nil {
			t.Fatalf("decode symbol %d: %v", symbol, err)
		}
		if got != symbol {
			t.Errorf("decoded %d, want %d", got, symbol)
		}
	}
}

func TestHuffmanTableRejectsOverflow(t *testing.T) {
	counts := [16]byte{}
	counts[0] = 2 // two 1-bit codes fill the whole code space, so the 2-bit code below overflows
	counts[1] = 1
	values := []byte{0, 1, 2}
	if _, err := newHuffmanTable(counts, values); err == nil {
		t.Fatalf("expected overflow error")
	}
}

func TestHuffmanTableRejectsCountMismatch(t *testing.T) {
	counts := [16]byte{1}
	values := []byte{0, 1}
	if _, err := newHuffmanTable(counts, values); err == nil {
		t.Fatalf("expected count-mismatch error")
	}
}

func TestHuffmanTableFastLookup(t *testing.T) {
	table, err := newHuffmanTable(stdACLuma.counts, stdACLuma.values)
	if err != nil {
		t.Fatalf("newHuffmanTable: %v", err)
	}
	enc := buildHuffEncodeTable(stdACLuma)

	// 0x01 is a short (2-bit) code in the Annex K luma AC table, well
	// within the 8-bit fast lookup path.
	hc := enc[0x01]
	if hc.size > 8 {
		t.Skip("expected symbol to have a short code for this test")
	}
	w := newBitWriter(4)
	w.write(hc.code, uint32(hc.size))
	w.pad()
	r := newBitReader(w.bytes(), 0)
	got, err := table.decode(r)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != 0x01 {
		t.Errorf("got %d, want 1", got)
	}
}
