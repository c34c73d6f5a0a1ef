package jpeg

import "fmt"

// rgbYuvTable precomputes the fixed-point RGB->YCbCr contribution of each
// possible 8-bit channel value, the classic RGB_YUV_TABLE approach used by
// lightweight JS/Go JPEG encoders to avoid a float multiply per pixel.
var rgbYuvTable struct {
	yr, yg, yb   [256]int32
	cbr, cbg, cbb [256]int32
	crr, crg, crb [256]int32
}

func init() {
	for i := int32(0); i < 256; i++ {
		rgbYuvTable.yr[i] = i * 19595
		rgbYuvTable.yg[i] = i * 38470
		rgbYuvTable.yb[i] = i*7471 + 0x8000

		rgbYuvTable.cbr[i] = -i * 11059
		rgbYuvTable.cbg[i] = -i * 21709
		rgbYuvTable.cbb[i] = i*32768 + 0x807FFF

		rgbYuvTable.crr[i] = i*32768 + 0x807FFF
		rgbYuvTable.crg[i] = -i * 27439
		rgbYuvTable.crb[i] = -i * 5329
	}
}

func rgbToYCbCr(r, g, b uint8) (y, cb, cr uint8) {
	y = uint8((rgbYuvTable.yr[r] + rgbYuvTable.yg[g] + rgbYuvTable.yb[b]) >> 16)
	cb = uint8((rgbYuvTable.cbr[r] + rgbYuvTable.cbg[g] + rgbYuvTable.cbb[b]) >> 16)
	cr = uint8((rgbYuvTable.crr[r] + rgbYuvTable.crg[g] + rgbYuvTable.crb[b]) >> 16)
	return
}

// huffCode is one entry of a compiled Huffman encode table: the bit pattern
// and its length for a given symbol value.
type huffCode struct {
	code uint32
	size uint8
}

// buildHuffEncodeTable compiles a BITS/HUFFVAL spec into a 256-entry lookup
// indexed by symbol value, the inverse of newHuffmanTable's decode-side
// construction.
func buildHuffEncodeTable(spec huffmanSpec) [256]huffCode {
	var table [256]huffCode
	code := uint32(0)
	k := 0
	for length := 1; length <= 16; length++ {
		for i := 0; i < int(spec.counts[length-1]); i++ {
			table[spec.values[k]] = huffCode{code: code, size: uint8(length)}
			code++
			k++
		}
		code <<= 1
	}
	return table
}

// scaleQuantTable applies the standard IJG quality scaling formula to an
// Annex K base table (given in zig-zag order) and returns a natural-order
// QuantTable.
func scaleQuantTable(base [64]int, quality int) *QuantTable {
	if quality < 1 {
		quality = 1
	}
	if quality > 100 {
		quality = 100
	}
	var sf int
	if quality < 50 {
		sf = 5000 / quality
	} else {
		sf = 200 - quality*2
	}
	var zz [64]uint16
	for i, v := range base {
		scaled := (v*sf + 50) / 100
		if scaled < 1 {
			scaled = 1
		}
		if scaled > 255 {
			scaled = 255
		}
		zz[i] = uint16(scaled)
	}
	return newQuantTableFromZigZag(zz)
}

func bitLength(v int32) uint8 {
	if v < 0 {
		v = -v
	}
	var n uint8
	for v > 0 {
		n++
		v >>= 1
	}
	return n
}

// encodeState holds everything shared across blocks during one Encode call:
// the compiled tables and each component's running DC predictor.
type encodeState struct {
	w                     *bitWriter
	dcLuma, acLuma        [256]huffCode
	dcChroma, acChroma    [256]huffCode
	lumaDCT, chromaDCT    *forwardDCTTable
	predY, predCb, predCr int32
}

// Encode compresses an RGBA pixel buffer into a baseline JPEG using 4:4:4
// (no chroma subsampling) sampling and a single interleaved scan, per spec
// section 4.8.
func Encode(rgba []byte, width, height, quality int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", width, height)
	}
	if len(rgba) != width*height*4 {
		return nil, fmt.Errorf("pixel buffer length %d does not match %dx%d RGBA", len(rgba), width, height)
	}

	lumaQuant := scaleQuantTable(baseQuantLuma, quality)
	chromaQuant := scaleQuantTable(baseQuantChroma, quality)

	st := &encodeState{
		w:           newBitWriter(len(rgba) / 4),
		dcLuma:      buildHuffEncodeTable(stdDCLuma),
		acLuma:      buildHuffEncodeTable(stdACLuma),
		dcChroma:    buildHuffEncodeTable(stdDCChroma),
		acChroma:    buildHuffEncodeTable(stdACChroma),
		lumaDCT:     newForwardDCTTable(lumaQuant),
		chromaDCT:   newForwardDCTTable(chromaQuant),
	}

	out := make([]byte, 0, len(rgba)/3)
	out = append(out, 0xFF, markerSOI)
	out = writeJFIFSegment(out)
	out = writeDQTSegment(out, lumaQuant, chromaQuant)
	out = writeSOF0Segment(out, width, height)
	out = writeDHTSegment(out)
	out = writeSOSHeader(out)

	blocksPerLine := ceilDiv(width, 8)
	blocksPerColumn := ceilDiv(height, 8)

	var ySamples, cbSamples, crSamples [64]uint8
	for by := 0; by < blocksPerColumn; by++ {
		for bx := 0; bx < blocksPerLine; bx++ {
			fillBlockSamples(rgba, width, height, bx*8, by*8, &ySamples, &cbSamples, &crSamples)

			yBlk := quantizeBlock(&ySamples, st.lumaDCT)
			cbBlk := quantizeBlock(&cbSamples, st.chromaDCT)
			crBlk := quantizeBlock(&crSamples, st.chromaDCT)

			st.predY = encodeBlock(st.w, yBlk, st.predY, st.dcLuma, st.acLuma)
			st.predCb = encodeBlock(st.w, cbBlk, st.predCb, st.dcChroma, st.acChroma)
			st.predCr = encodeBlock(st.w, crBlk, st.predCr, st.dcChroma, st.acChroma)
		}
	}

	st.w.pad()
	out = append(out, st.w.bytes()...)
	out = append(out, 0xFF, markerEOI)
	return out, nil
}

// fillBlockSamples extracts one 8x8 block of Y/Cb/Cr samples from the RGBA
// buffer starting at (x0,y0), replicating the edge pixel when the block
// extends past the image bounds.
func fillBlockSamples(rgba []byte, width, height, x0, y0 int, y, cb, cr *[64]uint8) {
	for dy := 0; dy < 8; dy++ {
		sy := y0 + dy
		if sy >= height {
			sy = height - 1
		}
		for dx := 0; dx < 8; dx++ {
			sx := x0 + dx
			if sx >= width {
				sx = width - 1
			}
			i := (sy*width + sx) * 4
			yy, cbv, crv := rgbToYCbCr(rgba[i], rgba[i+1], rgba[i+2])
			idx := dy*8 + dx
			y[idx], cb[idx], cr[idx] = yy, cbv, crv
		}
	}
}

// encodeBlock Huffman-encodes one coefficient block's DC delta and RLE'd AC
// run, returning the new DC predictor.
func encodeBlock(w *bitWriter, blk *Block, pred int32, dcTable, acTable [256]huffCode) int32 {
	zz := toZigZag(blk)

	diff := zz[0] - pred
	size := bitLength(diff)
	hc := dcTable[size]
	w.write(hc.code, uint32(hc.size))
	if size > 0 {
		w.write(vliBits(diff, size), uint32(size))
	}

	run := 0
	for k := 1; k < 64; k++ {
		v := zz[k]
		if v == 0 {
			run++
			continue
		}
		for run > 15 {
			zrl := acTable[0xF0]
			w.write(zrl.code, uint32(zrl.size))
			run -= 16
		}
		s := bitLength(v)
		sym := byte(run<<4) | s
		hc := acTable[sym]
		w.write(hc.code, uint32(hc.size))
		w.write(vliBits(v, s), uint32(s))
		run = 0
	}
	if run > 0 {
		eob := acTable[0x00]
		w.write(eob.code, uint32(eob.size))
	}

	return zz[0]
}

// vliBits produces the variable-length-integer bit pattern for a signed
// coefficient: the magnitude bits unchanged if positive, one's complement
// if negative, matching receiveAndExtend's inverse on decode.
func vliBits(v int32, size uint8) uint32 {
	if v < 0 {
		v = v + (1 << size) - 1
	}
	return uint32(v)
}

func toZigZag(blk *Block) [64]int32 {
	var zz [64]int32
	for i := 0; i < 64; i++ {
		zz[i] = blk[zigZag[i]]
	}
	return zz
}
