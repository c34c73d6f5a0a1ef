package jpeg

import "testing"

func TestInverseDCTFlatDCBlock(t *testing.T) {
	qt := newQuantTableFromNatural([64]uint16{0: 8, 1: 1, 2: 1, 3: 1, 4: 1, 5: 1, 6: 1, 7: 1,
		8: 1, 9: 1, 10: 1, 11: 1, 12: 1, 13: 1, 14: 1, 15: 1,
		16: 1, 17: 1, 18: 1, 19: 1, 20: 1, 21: 1, 22: 1, 23: 1,
		24: 1, 25: 1, 26: 1, 27: 1, 28: 1, 29: 1, 30: 1, 31: 1,
		32: 1, 33: 1, 34: 1, 35: 1, 36: 1, 37: 1, 38: 1, 39: 1,
		40: 1, 41: 1, 42: 1, 43: 1, 44: 1, 45: 1, 46: 1, 47: 1,
		48: 1, 49: 1, 50: 1, 51: 1, 52: 1, 53: 1, 54: 1, 55: 1,
		56: 1, 57: 1, 58: 1, 59: 1, 60: 1, 61: 1, 62: 1, 63: 1})

	var blk Block
	blk[0] = 0 // DC coefficient 0 after dequantization should reconstruct mid-gray

	var out [64]uint8
	inverseDCT(&blk, qt, &out)

	for i, v := range out {
		if v != 128 {
			t.Fatalf("sample %d = %d, want 128 for an all-zero block", i, v)
		}
	}
}

func TestInverseDCTUniformDCShift(t *testing.T) {
	natural := [64]uint16{}
	for i := range natural {
		natural[i] = 1
	}
	qt := newQuantTableFromNatural(natural)

	var blk Block
	blk[0] = 512 // a nonzero DC should brighten the whole block uniformly

	var out [64]uint8
	inverseDCT(&blk, qt, &out)

	first := out[0]
	for i, v := range out {
		if v != first {
			t.Fatalf("sample %d = %d, want uniform %d for a DC-only block", i, v, first)
		}
	}
	if first <= 128 {
		t.Fatalf("expected a positive DC coefficient to brighten the block above 128, got %d", first)
	}
}

func TestInverseDCTSingleACCoefficient(t *testing.T) {
	natural := [64]uint16{}
	for i := range natural {
		natural[i] = 1
	}
	qt := newQuantTableFromNatural(natural)

	// A single horizontal-frequency-2 coefficient (zig-zag index 5, natural
	// index 2) with no vertical component produces the same cosine ripple
	// across every row: 128 + (100/(4*sqrt2))*cos((2x+1)*pi/8).
	var blk Block
	blk[2] = 100

	var out [64]uint8
	inverseDCT(&blk, qt, &out)

	want := [8]int{144, 135, 121, 112, 112, 121, 135, 144}
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			got := int(out[row*8+col])
			if absDiff(got, want[col]) > 2 {
				t.Fatalf("sample (row=%d,col=%d) = %d, want close to %d", row, col, got, want[col])
			}
		}
	}
}

func TestForwardThenInverseDCRoundTrip(t *testing.T) {
	natural := [64]uint16{}
	for i := range natural {
		natural[i] = 1
	}
	qt := newQuantTableFromNatural(natural)
	fdct := newForwardDCTTable(qt)

	var samples [64]uint8
	for i := range samples {
		samples[i] = 150
	}

	blk := quantizeBlock(&samples, fdct)

	var out [64]uint8
	inverseDCT(blk, qt, &out)

	for i, v := range out {
		diff := int(v) - 150
		if diff < -2 || diff > 2 {
			t.Fatalf("sample %d round-tripped to %d, want close to 150", i, v)
		}
	}
}
