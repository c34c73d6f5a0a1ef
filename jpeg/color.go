package jpeg

import "fmt"

// ycbcrToRGB is the standard ITU-R BT.601 full-range conversion used by
// JFIF-flavored JPEG.
func ycbcrToRGB(y, cb, cr uint8) (r, g, b uint8) {
	yy := float64(y)
	cbf := float64(cb) - 128
	crf := float64(cr) - 128
	r = clampByte(int(yy + 1.402*crf))
	g = clampByte(int(yy - 0.344136*cbf - 0.714136*crf))
	b = clampByte(int(yy + 1.772*cbf))
	return
}

// cmykFromInk applies the naive overprint approximation used by most
// browser-grade JPEG decoders for Adobe CMYK/YCCK images, converting the
// ink amounts (with black already factored in) down to displayable RGB.
func cmykFromInk(c, m, y, k uint8) (r, g, b uint8) {
	r = clampByte(255 - min(255, int(c)+int(k)))
	g = clampByte(255 - min(255, int(m)+int(k)))
	b = clampByte(255 - min(255, int(y)+int(k)))
	return
}

// convertAndAssemble upsamples every component to full frame resolution
// and applies the color conversion appropriate to the component count and
// any Adobe APP14 transform override, per spec section 4.7.
func convertAndAssemble(state *DecoderState) ([]byte, string, error) {
	frame := state.frame
	comps := frame.orderedComponents()
	for _, c := range comps {
		reconstructSamples(c)
	}

	width, height := frame.samplesPerLine, frame.scanLines
	numComps := len(comps)

	transform := -1
	if state.adobe != nil {
		transform = int(state.adobe.TransformCode)
	}

	channels := numComps
	colorSpace := "Unknown"
	switch numComps {
	case 1:
		colorSpace = "Grayscale"
	case 2:
		colorSpace = "GrayscaleAlpha"
	case 3:
		colorSpace = "YCbCr"
	case 4:
		if state.adobe == nil {
			return nil, "", errUnsupportedColorMode("4 components without Adobe marker")
		}
		colorSpace = "CMYK"
	default:
		return nil, "", errUnsupportedColorMode(fmt.Sprintf("%d components", numComps))
	}
	if state.opts.formatAsRGBA {
		channels = 4
		colorSpace = "RGBA"
	}

	out := make([]byte, width*height*channels)
	if err := state.budget.request(int64(len(out))); err != nil {
		return nil, "", err
	}

	useColorTransform := func(def bool) bool {
		if state.opts.colorTransform != nil {
			return *state.opts.colorTransform
		}
		return def
	}

	for y := 0; y < height; y++ {
		row := out[y*width*channels : (y+1)*width*channels]
		for x := 0; x < width; x++ {
			px := row[x*channels : x*channels+channels]
			switch numComps {
			case 1:
				v := sampleAt(comps[0], frame, x, y)
				writeGray(px, v, state.opts.formatAsRGBA)

			case 2:
				v := sampleAt(comps[0], frame, x, y)
				a := sampleAt(comps[1], frame, x, y)
				if state.opts.formatAsRGBA {
					px[0], px[1], px[2], px[3] = v, v, v, a
				} else {
					px[0], px[1] = v, a
				}

			case 3:
				c0 := sampleAt(comps[0], frame, x, y)
				c1 := sampleAt(comps[1], frame, x, y)
				c2 := sampleAt(comps[2], frame, x, y)
				var r, g, b uint8
				if useColorTransform(transform != 0) {
					r, g, b = ycbcrToRGB(c0, c1, c2)
				} else {
					r, g, b = c0, c1, c2
				}
				if state.opts.formatAsRGBA {
					px[0], px[1], px[2], px[3] = r, g, b, 255
				} else {
					px[0], px[1], px[2] = r, g, b
				}

			case 4:
				c0 := sampleAt(comps[0], frame, x, y)
				c1 := sampleAt(comps[1], frame, x, y)
				c2 := sampleAt(comps[2], frame, x, y)
				k := sampleAt(comps[3], frame, x, y)

				c, m, yy := c0, c1, c2
				if useColorTransform(transform != 0) {
					r, g, b := ycbcrToRGB(c0, c1, c2)
					c, m, yy = 255-r, 255-g, 255-b
				}
				c, m, yy, k = 255-c, 255-m, 255-yy, 255-k
				if state.opts.formatAsRGBA {
					r, g, b := cmykFromInk(c, m, yy, k)
					px[0], px[1], px[2], px[3] = r, g, b, 255
				} else {
					px[0], px[1], px[2], px[3] = c, m, yy, k
				}
			}
		}
	}

	return out, colorSpace, nil
}

func writeGray(px []byte, v uint8, rgba bool) {
	if rgba {
		px[0], px[1], px[2], px[3] = v, v, v, 255
	} else {
		px[0] = v
	}
}
