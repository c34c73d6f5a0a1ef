package jpeg

import "fmt"

func readUint16BE(b []byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])
}

// parseMarkers walks the JPEG byte stream from the SOI marker through EOI,
// dispatching on segment markers, fully entropy-decoding every scan, and
// populating state. It stops (without error) once EOI is reached.
func parseMarkers(data []byte, state *DecoderState) error {
	return walkMarkers(data, state, false)
}

// parseHeadersOnly walks the same marker structure but skips over each
// scan's entropy-coded bytes without decoding them, for callers (such as
// ParseMetadata) that only need header information.
func parseHeadersOnly(data []byte, state *DecoderState) error {
	return walkMarkers(data, state, true)
}

func walkMarkers(data []byte, state *DecoderState, headersOnly bool) error {
	if len(data) < 2 || data[0] != 0xFF || data[1] != markerSOI {
		return errMissingSOI()
	}
	offset := 2

	for {
		if offset >= len(data) {
			return fmt.Errorf("truncated JPEG stream: no EOI marker")
		}
		if data[offset] != 0xFF {
			return errUnknownMarker(int64(offset), uint16(data[offset]))
		}
		// Consume a run of 0xFF fill bytes down to the marker code byte.
		markerFFPos := offset
		for offset < len(data) && data[offset] == 0xFF {
			offset++
		}
		if offset >= len(data) {
			return fmt.Errorf("truncated JPEG stream: no EOI marker")
		}
		marker := data[offset]
		offset++

		switch {
		case marker == markerEOI:
			return nil

		case marker == markerSOF0 || marker == markerSOF1 || marker == markerSOF2:
			n, payload, err := readSegment(data, offset)
			if err != nil {
				return err
			}
			if state.sawFrame {
				return errMultipleFrames()
			}
			if err := parseSOF(state, payload, marker); err != nil {
				return err
			}
			state.sawFrame = true
			offset += n

		case marker == markerDHT:
			n, payload, err := readSegment(data, offset)
			if err != nil {
				return err
			}
			if err := parseDHT(state, payload); err != nil {
				return err
			}
			offset += n

		case marker == markerDQT:
			n, payload, err := readSegment(data, offset)
			if err != nil {
				return err
			}
			if err := parseDQT(state, payload); err != nil {
				return err
			}
			offset += n

		case marker == markerDRI:
			n, payload, err := readSegment(data, offset)
			if err != nil {
				return err
			}
			if len(payload) >= 2 {
				state.restartInterval = int(readUint16BE(payload))
			}
			offset += n

		case marker == markerDNL:
			n, _, err := readSegment(data, offset)
			if err != nil {
				return err
			}
			offset += n

		case marker == markerCOM:
			n, payload, err := readSegment(data, offset)
			if err != nil {
				return err
			}
			state.comments = append(state.comments, decodeLatin1(payload))
			offset += n

		case isAPPn(marker):
			n, payload, err := readSegment(data, offset)
			if err != nil {
				return err
			}
			if err := parseAPPn(state, marker, payload, markerFFPos); err != nil {
				return err
			}
			offset += n

		case marker == markerSOS:
			n, payload, err := readSegment(data, offset)
			if err != nil {
				return err
			}
			sh, err := parseSOS(state, payload)
			if err != nil {
				return err
			}
			offset += n
			if headersOnly {
				offset += skipScanData(data[offset:])
			} else {
				consumed, err := decodeScan(data[offset:], state, sh)
				if err != nil {
					return err
				}
				offset += consumed
			}

		case isRSTn(marker):
			// Stray restart marker outside a scan; ignore and continue.

		default:
			if ok := tryUnknownMarkerRecovery(data, markerFFPos); ok {
				// The encoder ate a spurious escape: the 0xFF and the
				// unrecognized code byte were never a real marker, so
				// drop both and keep scanning from here.
				continue
			}
			return errUnknownMarker(int64(markerFFPos), 0xFF00|uint16(marker))
		}
	}
}

// readSegment reads a standard length-prefixed marker segment starting at
// offset (just after the marker code byte) and returns the number of bytes
// consumed (including the 2-byte length) plus the payload without the
// length prefix.
func readSegment(data []byte, offset int) (consumed int, payload []byte, err error) {
	if offset+2 > len(data) {
		return 0, nil, fmt.Errorf("truncated marker segment at offset %d", offset)
	}
	length := int(readUint16BE(data[offset:]))
	if length < 2 {
		return 0, nil, fmt.Errorf("marker segment length %d too short at offset %d", length, offset)
	}
	if offset+length > len(data) {
		return 0, nil, fmt.Errorf("marker segment of length %d exceeds available data at offset %d", length, offset)
	}
	return length, data[offset+2 : offset+length], nil
}

// tryUnknownMarkerRecovery implements the single documented recovery path:
// if the two bytes preceding the marker we failed to recognize are
// themselves a valid marker prefix, the encoder likely emitted a spurious
// escape; the caller drops the bogus marker and resumes scanning right
// after it rather than aborting the decode.
func tryUnknownMarkerRecovery(data []byte, markerFFPos int) bool {
	if markerFFPos < 2 {
		return false
	}
	prevFF := data[markerFFPos-2]
	prevCode := data[markerFFPos-1]
	return prevFF == 0xFF && prevCode >= 0xC0 && prevCode <= 0xFE
}

func decodeLatin1(b []byte) string {
	// One byte per char, no charset conversion, trimming a single
	// NUL terminator if present.
	if n := len(b); n > 0 && b[n-1] == 0 {
		b = b[:n-1]
	}
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}

func parseAPPn(state *DecoderState, marker byte, payload []byte, markerOffset int) error {
	switch marker {
	case markerAPP0:
		if len(payload) >= 5 && string(payload[:5]) == "JFIF\x00" {
			return parseJFIF(state, payload)
		}
	case markerAPP1:
		if len(payload) >= 5 && string(payload[:5]) == "Exif\x00" {
			if len(payload) >= 6 {
				state.exifBytes = append([]byte(nil), payload[6:]...)
			} else {
				state.exifBytes = []byte{}
			}
			return nil
		}
		return checkMisalignedAPP(state, markerOffset)
	case markerAPP14:
		if len(payload) >= 6 && string(payload[:6]) == "Adobe\x00" {
			return parseAdobe(state, payload)
		}
	}
	if marker == markerAPP0 {
		return checkMisalignedAPP(state, markerOffset)
	}
	return nil
}

// checkMisalignedAPP implements the malformed-APP0/APP1 recovery path: the
// first occurrence is tolerated and recorded, a second fails outright.
func checkMisalignedAPP(state *DecoderState, markerOffset int) error {
	if !state.malformedRecoveryUsed {
		state.malformedRecoveryUsed = true
		state.malformedFirstOffset = int64(markerOffset)
		return nil
	}
	return errDualMalformedMarker(state.malformedFirstOffset, int64(markerOffset), 0xFF00|uint16(markerAPP0))
}

func parseJFIF(state *DecoderState, payload []byte) error {
	if len(payload) < 14 {
		return fmt.Errorf("JFIF segment too short")
	}
	info := &JFIFInfo{
		VersionMajor: payload[5],
		VersionMinor: payload[6],
		DensityUnits: payload[7],
		XDensity:     readUint16BE(payload[8:10]),
		YDensity:     readUint16BE(payload[10:12]),
		ThumbWidth:   payload[12],
		ThumbHeight:  payload[13],
	}
	thumbLen := 3 * int(info.ThumbWidth) * int(info.ThumbHeight)
	if len(payload) >= 14+thumbLen {
		info.ThumbData = append([]byte(nil), payload[14:14+thumbLen]...)
	}
	state.jfif = info
	return nil
}

func parseAdobe(state *DecoderState, payload []byte) error {
	if len(payload) < 12 {
		return fmt.Errorf("Adobe segment too short")
	}
	state.adobe = &AdobeInfo{
		Version:       readUint16BE(payload[6:8]),
		Flags0:        readUint16BE(payload[8:10]),
		Flags1:        readUint16BE(payload[10:12]),
		TransformCode: payload[11],
	}
	return nil
}

func parseDQT(state *DecoderState, payload []byte) error {
	pos := 0
	for pos < len(payload) {
		precision := payload[pos] >> 4
		destID := payload[pos] & 0x0F
		pos++
		if precision != 0 && precision != 1 {
			return errInvalidQuantSpec(precision)
		}
		if destID > 3 {
			return fmt.Errorf("invalid quantization table destination %d", destID)
		}
		var zz [64]uint16
		if precision == 0 {
			if pos+64 > len(payload) {
				return fmt.Errorf("DQT segment too short")
			}
			for i := 0; i < 64; i++ {
				zz[i] = uint16(payload[pos+i])
			}
			pos += 64
		} else {
			if pos+128 > len(payload) {
				return fmt.Errorf("DQT segment too short")
			}
			for i := 0; i < 64; i++ {
				zz[i] = readUint16BE(payload[pos+i*2:])
			}
			pos += 128
		}
		if err := state.budget.request(64 * 4); err != nil {
			return err
		}
		state.quantTablesRaw[destID] = &zz
	}
	return nil
}

func parseDHT(state *DecoderState, payload []byte) error {
	pos := 0
	for pos < len(payload) {
		class := payload[pos] >> 4
		destID := payload[pos] & 0x0F
		pos++
		if destID > 3 {
			return errInvalidHuffmanTable("destination id out of range")
		}
		if pos+16 > len(payload) {
			return fmt.Errorf("DHT segment too short")
		}
		var counts [16]byte
		copy(counts[:], payload[pos:pos+16])
		pos += 16

		total := 0
		for _, c := range counts {
			total += int(c)
		}
		if pos+total > len(payload) {
			return fmt.Errorf("DHT segment too short for symbols")
		}
		symbols := append([]byte(nil), payload[pos:pos+total]...)
		pos += total

		if err := state.budget.request(int64(16 + total)); err != nil {
			return err
		}

		table, err := newHuffmanTable(counts, symbols)
		if err != nil {
			return err
		}
		if class == 0 {
			state.huffDC[destID] = table
		} else {
			state.huffAC[destID] = table
		}
	}
	return nil
}

// skipScanData advances past one scan's entropy-coded bytes without
// decoding them, honoring 0xFF/0x00 byte-stuffing and treating RSTn as
// ordinary scan content rather than a terminator.
func skipScanData(data []byte) int {
	i := 0
	for i < len(data) {
		if data[i] != 0xFF {
			i++
			continue
		}
		if i+1 >= len(data) {
			return i
		}
		next := data[i+1]
		if next == 0x00 || isRSTn(next) {
			i += 2
			continue
		}
		return i
	}
	return i
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func parseSOF(state *DecoderState, payload []byte, marker byte) error {
	if len(payload) < 6 {
		return fmt.Errorf("SOF segment too short")
	}
	precision := int(payload[0])
	height := int(readUint16BE(payload[1:3]))
	width := int(readUint16BE(payload[3:5]))
	numComponents := int(payload[5])

	pixels := float64(height) * float64(width)
	ceiling := state.opts.maxResolutionMP * 1e6
	if pixels > ceiling {
		return errResolutionExceeded((pixels - ceiling) / 1e6)
	}

	frame := &Frame{
		precision:      precision,
		scanLines:      height,
		samplesPerLine: width,
		progressive:    marker == markerSOF2,
		extended:       marker == markerSOF1,
		components:     make(map[uint8]*Component, numComponents),
	}

	pos := 6
	maxH, maxV := 0, 0
	type rawComp struct {
		id, h, v, q uint8
	}
	raws := make([]rawComp, numComponents)
	for i := 0; i < numComponents; i++ {
		if pos+3 > len(payload) {
			return fmt.Errorf("SOF segment too short for component %d", i)
		}
		id := payload[pos]
		h := payload[pos+1] >> 4
		v := payload[pos+1] & 0x0F
		q := payload[pos+2]
		pos += 3
		if h == 0 || v == 0 {
			return errInvalidSamplingFactor()
		}
		raws[i] = rawComp{id, h, v, q}
		if int(h) > maxH {
			maxH = int(h)
		}
		if int(v) > maxV {
			maxV = int(v)
		}
	}
	frame.maxH, frame.maxV = maxH, maxV
	frame.mcusPerLine = ceilDiv(ceilDiv(width, 8), maxH)
	frame.mcusPerColumn = ceilDiv(ceilDiv(height, 8), maxV)

	for _, rc := range raws {
		blocksPerLine := ceilDiv(ceilDiv(width, 8)*int(rc.h), maxH)
		blocksPerColumn := ceilDiv(ceilDiv(height, 8)*int(rc.v), maxV)
		blocksPerLineForMcu := frame.mcusPerLine * int(rc.h)
		blocksPerColumnForMcu := frame.mcusPerColumn * int(rc.v)

		if err := state.budget.request(int64(blocksPerLineForMcu) * int64(blocksPerColumnForMcu) * 64 * 4); err != nil {
			return err
		}

		comp := &Component{
			ID:                    rc.id,
			H:                     rc.h,
			V:                     rc.v,
			QuantIdx:              rc.q,
			blocksPerLine:         blocksPerLine,
			blocksPerColumn:       blocksPerColumn,
			blocksPerLineForMcu:   blocksPerLineForMcu,
			blocksPerColumnForMcu: blocksPerColumnForMcu,
			blocks:                make([]Block, blocksPerLineForMcu*blocksPerColumnForMcu),
		}
		frame.components[rc.id] = comp
		frame.componentsOrder = append(frame.componentsOrder, rc.id)
	}

	state.frame = frame
	return nil
}

func parseSOS(state *DecoderState, payload []byte) (*scanHeader, error) {
	if state.frame == nil {
		return nil, fmt.Errorf("SOS encountered before SOF")
	}
	if len(payload) < 1 {
		return nil, fmt.Errorf("SOS segment too short")
	}
	numComponents := int(payload[0])
	if numComponents == 0 {
		return nil, fmt.Errorf("SOS lists zero components")
	}
	sh := &scanHeader{components: make([]scanComponentSpec, numComponents)}

	pos := 1
	for i := 0; i < numComponents; i++ {
		if pos+2 > len(payload) {
			return nil, fmt.Errorf("SOS segment too short for component %d", i)
		}
		selector := payload[pos]
		dcIdx := payload[pos+1] >> 4
		acIdx := payload[pos+1] & 0x0F
		pos += 2

		comp, ok := state.frame.components[selector]
		if !ok {
			return nil, fmt.Errorf("SOS references undefined component id %d", selector)
		}
		if state.quantTables[comp.QuantIdx] == nil {
			if state.quantTablesRaw[comp.QuantIdx] == nil {
				return nil, fmt.Errorf("component %d references undefined quantization table %d", selector, comp.QuantIdx)
			}
			state.quantTables[comp.QuantIdx] = newQuantTableFromZigZag(*state.quantTablesRaw[comp.QuantIdx])
		}
		comp.quant = state.quantTables[comp.QuantIdx]
		comp.huffDC = state.huffDC[dcIdx]
		comp.huffAC = state.huffAC[acIdx]
		sh.components[i] = scanComponentSpec{component: comp}
	}

	if pos+3 > len(payload) {
		return nil, fmt.Errorf("SOS segment too short for spectral selection")
	}
	sh.ss = int(payload[pos])
	sh.se = int(payload[pos+1])
	sh.ah = int(payload[pos+2] >> 4)
	sh.al = int(payload[pos+2] & 0x0F)

	return sh, nil
}
