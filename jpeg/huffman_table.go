package jpeg

// HuffmanTable is a canonical Huffman decode table built from the 17-byte
// BITS/HUFFVAL layout of a DHT segment: 16 code-length counts followed by
// the concatenated symbols. Decoding walks bit by bit using the classic
// MinCode/MaxCode/ValPtr tables; codes up to 8 bits are additionally
// resolved via a flat lookup table for the common case.
type HuffmanTable struct {
	counts  [17]uint8 // counts[1..16], counts[0] unused
	symbols []uint8

	fastLookup [256]int16 // packed (length<<8)|symbol, or -1 if no code that short
	minCode    [17]int32
	maxCode    [18]int32
	valPtr     [17]int32
}

// newHuffmanTable builds the canonical table, failing with
// InvalidHuffmanTable if the length counts and symbol count disagree or if
// the code space overflows (more codes of a given length than that length
// can represent).
func newHuffmanTable(counts [16]byte, symbols []byte) (*HuffmanTable, error) {
	h := &HuffmanTable{symbols: symbols}
	copy(h.counts[1:], counts[:])

	total := 0
	for i := 1; i <= 16; i++ {
		total += int(h.counts[i])
	}
	if total != len(symbols) {
		return nil, errInvalidHuffmanTable("BITS counts disagree with HUFFVAL length")
	}

	code := int32(0)
	symbolIdx := int32(0)
	for bits := 1; bits <= 16; bits++ {
		h.minCode[bits] = code
		h.valPtr[bits] = symbolIdx - code

		n := int32(h.counts[bits])
		if n > 0 {
			if code+n-1 >= int32(1)<<uint(bits) {
				return nil, errInvalidHuffmanTable("code space overflow")
			}
			h.maxCode[bits] = code + n - 1
			symbolIdx += n
		} else {
			h.maxCode[bits] = -1
		}
		code = (code + n) << 1
	}
	h.maxCode[17] = 0x7FFFFFFF

	for i := range h.fastLookup {
		h.fastLookup[i] = -1
	}
	code = 0
	symbolIdx = 0
	for bits := 1; bits <= 8; bits++ {
		for i := 0; i < int(h.counts[bits]); i++ {
			shift := 8 - bits
			base := int(code) << uint(shift)
			for j := 0; j < 1<<uint(shift); j++ {
				h.fastLookup[base+j] = int16(h.symbols[symbolIdx]) | int16(bits<<8)
			}
			code++
			symbolIdx++
		}
		code <<= 1
	}

	return h, nil
}

// decode walks the bit reader until a symbol leaf is reached, failing if
// the stream ends or traversal escapes the canonical table.
func (h *HuffmanTable) decode(r *BitReader) (uint8, error) {
	if peek, n := r.peek8(); n == 8 {
		if lookup := h.fastLookup[peek]; lookup >= 0 {
			length := int(lookup >> 8)
			for i := 0; i < length; i++ {
				if _, _, err := r.readBit(); err != nil {
					return 0, err
				}
			}
			return uint8(lookup & 0xFF), nil
		}
	}

	code := int32(0)
	for bits := 1; bits <= 16; bits++ {
		bit, ok, err := r.readBit()
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, errInvalidHuffmanSequence("restart marker encountered mid Huffman code")
		}
		code = (code << 1) | int32(bit)
		if code <= h.maxCode[bits] {
			idx := h.valPtr[bits] + code
			if idx < 0 || int(idx) >= len(h.symbols) {
				return 0, errInvalidHuffmanSequence("huffman decode walked off the table")
			}
			return h.symbols[idx], nil
		}
	}
	return 0, errInvalidHuffmanSequence("huffman code exceeds 16 bits")
}
