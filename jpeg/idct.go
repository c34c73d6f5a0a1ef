package jpeg

// inverseDCT dequantizes a coefficient block and performs the separable
// 8x8 inverse DCT in place, writing clamped 8-bit samples into out (row
// major, 64 entries), per spec section 4.6. Each 1-D pass runs four
// butterfly stages with its own all-zero-AC shortcut; the row and column
// passes round at different shifts to preserve precision through both
// passes.
func inverseDCT(blk *Block, quant *QuantTable, out *[64]uint8) {
	var p [64]int32

	for i := 0; i < 64; i++ {
		p[i] = blk[i] * int32(quant.at(i))
	}

	for row := 0; row < 8; row++ {
		idctRowPass(p[row*8 : row*8+8])
	}
	for col := 0; col < 8; col++ {
		idctColPass(p[col:])
	}

	for i := 0; i < 64; i++ {
		sample := 128 + ((p[i] + 8) >> 4)
		out[i] = clampByte(int(sample))
	}
}

// idctRowPass runs one 8-point fixed-point inverse DCT butterfly over a row
// in place. Stage 4 and stage 3's cos6/sin6 rotation round at shift 8;
// stage 2's cos3/sin3 and cos1/sin1 rotations round at shift 12, per spec
// section 4.6.
func idctRowPass(row []int32) {
	if row[1] == 0 && row[2] == 0 && row[3] == 0 && row[4] == 0 && row[5] == 0 && row[6] == 0 && row[7] == 0 {
		t := (idctSqrt2*row[0] + 512) >> 10
		for i := 0; i < 8; i++ {
			row[i] = t
		}
		return
	}

	v0 := (idctSqrt2*row[0] + 128) >> 8
	v1 := (idctSqrt2*row[4] + 128) >> 8
	v2 := row[2]
	v3 := row[6]
	v4 := (idctSqrt1d2*(row[1]-row[7]) + 128) >> 8
	v7 := (idctSqrt1d2*(row[1]+row[7]) + 128) >> 8
	v5 := row[3] << 4
	v6 := row[5] << 4

	t := (v0 - v1 + 1) >> 1
	v0 = (v0 + v1 + 1) >> 1
	v1 = t

	t = (v2*idctSin6 + v3*idctCos6 + 128) >> 8
	v2 = (v2*idctCos6 - v3*idctSin6 + 128) >> 8
	v3 = t

	t = (v4 - v6 + 1) >> 1
	v4 = (v4 + v6 + 1) >> 1
	v6 = t

	t = (v7 + v5 + 1) >> 1
	v5 = (v7 - v5 + 1) >> 1
	v7 = t

	t = (v0 - v3 + 1) >> 1
	v0 = (v0 + v3 + 1) >> 1
	v3 = t

	t = (v1 - v2 + 1) >> 1
	v1 = (v1 + v2 + 1) >> 1
	v2 = t

	t = (v4*idctSin3 + v7*idctCos3 + 2048) >> 12
	v4 = (v4*idctCos3 - v7*idctSin3 + 2048) >> 12
	v7 = t

	t = (v5*idctSin1 + v6*idctCos1 + 2048) >> 12
	v5 = (v5*idctCos1 - v6*idctSin1 + 2048) >> 12
	v6 = t

	row[0] = v0 + v7
	row[7] = v0 - v7
	row[1] = v1 + v6
	row[6] = v1 - v6
	row[2] = v2 + v5
	row[5] = v2 - v5
	row[3] = v3 + v4
	row[4] = v3 - v4
}

// idctColPass runs the same butterfly down a column, addressed as p[0],
// p[8], ..., p[56] (p points at the column's top entry within the
// row-major block). Every rotation in the column pass rounds at shift 12,
// per spec section 4.6.
func idctColPass(p []int32) {
	at := func(row int) int32 { return p[row*8] }

	if at(1) == 0 && at(2) == 0 && at(3) == 0 && at(4) == 0 && at(5) == 0 && at(6) == 0 && at(7) == 0 {
		t := (idctSqrt2*at(0) + 8192) >> 14
		for row := 0; row < 8; row++ {
			p[row*8] = t
		}
		return
	}

	v0 := (idctSqrt2*at(0) + 2048) >> 12
	v1 := (idctSqrt2*at(4) + 2048) >> 12
	v2 := at(2)
	v3 := at(6)
	v4 := (idctSqrt1d2*(at(1)-at(7)) + 2048) >> 12
	v7 := (idctSqrt1d2*(at(1)+at(7)) + 2048) >> 12
	v5 := at(3)
	v6 := at(5)

	t := (v0 - v1 + 1) >> 1
	v0 = (v0 + v1 + 1) >> 1
	v1 = t

	t = (v2*idctSin6 + v3*idctCos6 + 2048) >> 12
	v2 = (v2*idctCos6 - v3*idctSin6 + 2048) >> 12
	v3 = t

	t = (v4 - v6 + 1) >> 1
	v4 = (v4 + v6 + 1) >> 1
	v6 = t

	t = (v7 + v5 + 1) >> 1
	v5 = (v7 - v5 + 1) >> 1
	v7 = t

	t = (v0 - v3 + 1) >> 1
	v0 = (v0 + v3 + 1) >> 1
	v3 = t

	t = (v1 - v2 + 1) >> 1
	v1 = (v1 + v2 + 1) >> 1
	v2 = t

	t = (v4*idctSin3 + v7*idctCos3 + 2048) >> 12
	v4 = (v4*idctCos3 - v7*idctSin3 + 2048) >> 12
	v7 = t

	t = (v5*idctSin1 + v6*idctCos1 + 2048) >> 12
	v5 = (v5*idctCos1 - v6*idctSin1 + 2048) >> 12
	v6 = t

	p[0*8] = v0 + v7
	p[7*8] = v0 - v7
	p[1*8] = v1 + v6
	p[6*8] = v1 - v6
	p[2*8] = v2 + v5
	p[5*8] = v2 - v5
	p[3*8] = v3 + v4
	p[4*8] = v3 - v4
}
