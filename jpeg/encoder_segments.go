package jpeg

// writeMarkerHeader appends a marker code and reserves space for its
// 2-byte length, returning the slice and the index of the length field so
// the caller can patch it in once the payload is known.
func writeMarkerHeader(out []byte, marker byte) ([]byte, int) {
	out = append(out, 0xFF, marker, 0, 0)
	return out, len(out) - 2
}

func patchLength(out []byte, lenPos int) {
	n := len(out) - lenPos
	out[lenPos] = byte(n >> 8)
	out[lenPos+1] = byte(n)
}

func writeJFIFSegment(out []byte) []byte {
	out, lenPos := writeMarkerHeader(out, markerAPP0)
	out = append(out, 'J', 'F', 'I', 'F', 0)
	out = append(out, 1, 1)    // version 1.1
	out = append(out, 0)       // density units: none
	out = append(out, 0, 1)    // xdensity
	out = append(out, 0, 1)    // ydensity
	out = append(out, 0, 0)    // no thumbnail
	patchLength(out, lenPos)
	return out
}

func writeDQTSegment(out []byte, luma, chroma *QuantTable) []byte {
	out, lenPos := writeMarkerHeader(out, markerDQT)
	out = appendQuantTable(out, 0, luma)
	out = appendQuantTable(out, 1, chroma)
	patchLength(out, lenPos)
	return out
}

func appendQuantTable(out []byte, dest byte, qt *QuantTable) []byte {
	out = append(out, dest) // precision 0 (8-bit) in upper nibble
	for i := 0; i < 64; i++ {
		out = append(out, byte(qt.at(zigZag[i])))
	}
	return out
}

func writeSOF0Segment(out []byte, width, height int) []byte {
	out, lenPos := writeMarkerHeader(out, markerSOF0)
	out = append(out, 8) // precision
	out = append(out, byte(height>>8), byte(height))
	out = append(out, byte(width>>8), byte(width))
	out = append(out, 3) // components
	out = append(out, 1, 0x11, 0)
	out = append(out, 2, 0x11, 1)
	out = append(out, 3, 0x11, 1)
	patchLength(out, lenPos)
	return out
}

func writeDHTSegment(out []byte) []byte {
	out, lenPos := writeMarkerHeader(out, markerDHT)
	out = appendHuffmanSpec(out, 0, 0, stdDCLuma)
	out = appendHuffmanSpec(out, 1, 0, stdACLuma)
	out = appendHuffmanSpec(out, 0, 1, stdDCChroma)
	out = appendHuffmanSpec(out, 1, 1, stdACChroma)
	patchLength(out, lenPos)
	return out
}

func appendHuffmanSpec(out []byte, class, dest byte, spec huffmanSpec) []byte {
	out = append(out, class<<4|dest)
	out = append(out, spec.counts[:]...)
	out = append(out, spec.values...)
	return out
}

func writeSOSHeader(out []byte) []byte {
	out, lenPos := writeMarkerHeader(out, markerSOS)
	out = append(out, 3)
	out = append(out, 1, 0x00)
	out = append(out, 2, 0x11)
	out = append(out, 3, 0x11)
	out = append(out, 0, 63, 0)
	patchLength(out, lenPos)
	return out
}
