package jpeg

// reconstructSamples runs the inverse DCT over every allocated block of a
// component, populating comp.lines with one row of samples per scan line.
// Rows run out to blocksPerLineForMcu*8 so upsampling never reads past the
// allocated grid, matching spec section 4.6's decode-before-assemble order.
func reconstructSamples(comp *Component) {
	width := comp.blocksPerLineForMcu * 8
	height := comp.blocksPerColumnForMcu * 8
	comp.lines = make([][]uint8, height)
	for i := range comp.lines {
		comp.lines[i] = make([]uint8, width)
	}

	var out [64]uint8
	for br := 0; br < comp.blocksPerColumnForMcu; br++ {
		for bc := 0; bc < comp.blocksPerLineForMcu; bc++ {
			blk := comp.block(br, bc)
			inverseDCT(blk, comp.quant, &out)
			for y := 0; y < 8; y++ {
				copy(comp.lines[br*8+y][bc*8:bc*8+8], out[y*8:y*8+8])
			}
		}
	}
}

// sampleAt performs the nearest-neighbor upsampling described in spec
// section 4.7: a component sampled at h:v relative to the frame's maximum
// sampling factors is stretched back up to full frame resolution by
// repeating each sample maxH/h times horizontally and maxV/v times
// vertically.
func sampleAt(comp *Component, frame *Frame, x, y int) uint8 {
	sy := y * int(comp.V) / frame.maxV
	sx := x * int(comp.H) / frame.maxH
	if sy >= len(comp.lines) {
		sy = len(comp.lines) - 1
	}
	line := comp.lines[sy]
	if sx >= len(line) {
		sx = len(line) - 1
	}
	return line[sx]
}
