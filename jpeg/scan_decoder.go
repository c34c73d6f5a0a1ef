package jpeg

// decodeFn decodes one block's worth of coefficients for one of the five
// scan modes described in spec section 4.5.
type decodeFn func(r *BitReader, comp *Component, blk *Block, sh *scanHeader, eobrun *int) error

// decodeScan consumes the entropy-coded segment immediately following a SOS
// header, dispatching every MCU (or, for non-interleaved scans, every block)
// through the mode selected by the scan header, honoring restart intervals
// along the way. It returns the number of bytes consumed from data.
func decodeScan(data []byte, state *DecoderState, sh *scanHeader) (int, error) {
	r := newBitReader(data, 0)
	frame := state.frame
	interleaved := len(sh.components) > 1

	var mcusPerLine, mcusPerColumn int
	if interleaved {
		mcusPerLine, mcusPerColumn = frame.mcusPerLine, frame.mcusPerColumn
	} else {
		c := sh.components[0].component
		mcusPerLine, mcusPerColumn = c.blocksPerLine, c.blocksPerColumn
	}

	for _, cs := range sh.components {
		cs.component.pred = 0
	}
	eobrun := 0

	decode, err := selectDecodeFn(frame, sh)
	if err != nil {
		return 0, err
	}

	restartsLeft := state.restartInterval
	totalMCUs := mcusPerLine * mcusPerColumn

	mcu := 0
	for mcuRow := 0; mcuRow < mcusPerColumn; mcuRow++ {
		for mcuCol := 0; mcuCol < mcusPerLine; mcuCol++ {
			if interleaved {
				for _, cs := range sh.components {
					comp := cs.component
					for v := 0; v < int(comp.V); v++ {
						for h := 0; h < int(comp.H); h++ {
							row := mcuRow*int(comp.V) + v
							col := mcuCol*int(comp.H) + h
							blk, err := blockAt(comp, row, col, state.opts.tolerantDecoding)
							if err != nil {
								return 0, err
							}
							if blk != nil {
								if err := decode(r, comp, blk, sh, &eobrun); err != nil {
									return 0, err
								}
							}
						}
					}
				}
			} else {
				comp := sh.components[0].component
				blk, err := blockAt(comp, mcuRow, mcuCol, state.opts.tolerantDecoding)
				if err != nil {
					return 0, err
				}
				if blk != nil {
					if err := decode(r, comp, blk, sh, &eobrun); err != nil {
						return 0, err
					}
				}
			}

			mcu++
			if state.restartInterval > 0 {
				restartsLeft--
				if restartsLeft == 0 && mcu < totalMCUs {
					r.alignToByte()
					if err := r.expectRestart(); err != nil {
						return 0, err
					}
					for _, cs := range sh.components {
						cs.component.pred = 0
					}
					eobrun = 0
					restartsLeft = state.restartInterval
				}
			}
		}
	}

	return r.offsetPos(), nil
}

// blockAt resolves the block at (row, col) within a component's allocated
// grid. Addressing outside that grid is a genuine bitstream error unless
// tolerant decoding is enabled, in which case the block is silently skipped.
func blockAt(comp *Component, row, col int, tolerant bool) (*Block, error) {
	if row < 0 || col < 0 || row >= comp.blocksPerColumnForMcu || col >= comp.blocksPerLineForMcu {
		if tolerant {
			return nil, nil
		}
		return nil, errBlockIndexOutOfRange()
	}
	return comp.block(row, col), nil
}

func selectDecodeFn(frame *Frame, sh *scanHeader) (decodeFn, error) {
	if !frame.progressive {
		return decodeBaseline, nil
	}
	if sh.ss == 0 {
		if sh.ah == 0 {
			return decodeDCFirst(sh.al), nil
		}
		return decodeDCSuccessive(sh.al), nil
	}
	if sh.ah == 0 {
		return decodeACFirst(sh.al), nil
	}
	return decodeACSuccessive(sh.al), nil
}

func decodeBaseline(r *BitReader, comp *Component, blk *Block, sh *scanHeader, eobrun *int) error {
	s, err := comp.huffDC.decode(r)
	if err != nil {
		return err
	}
	diff, err := r.receiveAndExtend(int(s))
	if err != nil {
		return err
	}
	comp.pred += diff
	blk[0] = comp.pred

	k := 1
	for k < 64 {
		rs, err := comp.huffAC.decode(r)
		if err != nil {
			return err
		}
		run := int(rs >> 4)
		size := rs & 0x0F
		if size == 0 {
			if run == 15 {
				k += 16
				continue
			}
			break // EOB
		}
		k += run
		if k >= 64 {
			return errInvalidAcEncoding()
		}
		val, err := r.receiveAndExtend(int(size))
		if err != nil {
			return err
		}
		blk[zigZag[k]] = val
		k++
	}
	return nil
}

func decodeDCFirst(al int) decodeFn {
	return func(r *BitReader, comp *Component, blk *Block, sh *scanHeader, eobrun *int) error {
		s, err := comp.huffDC.decode(r)
		if err != nil {
			return err
		}
		diff, err := r.receiveAndExtend(int(s))
		if err != nil {
			return err
		}
		comp.pred += diff
		blk[0] = comp.pred << uint(al)
		return nil
	}
}

func decodeDCSuccessive(al int) decodeFn {
	return func(r *BitReader, comp *Component, blk *Block, sh *scanHeader, eobrun *int) error {
		bit, err := r.receive(1)
		if err != nil {
			return err
		}
		blk[0] |= bit << uint(al)
		return nil
	}
}

func decodeACFirst(al int) decodeFn {
	return func(r *BitReader, comp *Component, blk *Block, sh *scanHeader, eobrun *int) error {
		if *eobrun > 0 {
			*eobrun--
			return nil
		}
		k := sh.ss
		for k <= sh.se {
			rs, err := comp.huffAC.decode(r)
			if err != nil {
				return err
			}
			run := int(rs >> 4)
			size := rs & 0x0F
			if size == 0 {
				if run < 15 {
					extra, err := r.receive(run)
					if err != nil {
						return err
					}
					*eobrun = (1 << uint(run)) - 1 + int(extra)
					return nil
				}
				k += 16
				continue
			}
			k += run
			if k > sh.se {
				return errInvalidAcEncoding()
			}
			val, err := r.receiveAndExtend(int(size))
			if err != nil {
				return err
			}
			blk[zigZag[k]] = val << uint(al)
			k++
		}
		return nil
	}
}

// decodeACSuccessive implements the T.81 Annex G refinement procedure: zero
// runs skip over untouched coefficients while correcting any nonzero
// coefficient they pass with one more bit of precision, and a pending EOB
// run corrects every remaining nonzero coefficient in the block.
func decodeACSuccessive(al int) decodeFn {
	return func(r *BitReader, comp *Component, blk *Block, sh *scanHeader, eobrun *int) error {
		k := sh.ss
		correct := func(coef *int32) error {
			bit, err := r.receive(1)
			if err != nil {
				return err
			}
			if bit != 0 && (*coef&(1<<uint(al))) == 0 {
				if *coef > 0 {
					*coef += 1 << uint(al)
				} else {
					*coef -= 1 << uint(al)
				}
			}
			return nil
		}

		if *eobrun == 0 {
			for k <= sh.se {
				rs, err := comp.huffAC.decode(r)
				if err != nil {
					return err
				}
				run := int(rs >> 4)
				size := rs & 0x0F
				var newVal int32
				if size == 0 {
					if run < 15 {
						extra, err := r.receive(run)
						if err != nil {
							return err
						}
						*eobrun = (1 << uint(run)) + int(extra)
						break
					}
					// ZRL: 15 zeros are counted down below and the
					// zero reached with run == 0 is the sixteenth.
					run = 15
				} else {
					if size != 1 {
						return errInvalidAcEncoding()
					}
					bit, err := r.receive(1)
					if err != nil {
						return err
					}
					if bit != 0 {
						newVal = 1 << uint(al)
					} else {
						newVal = -(1 << uint(al))
					}
				}

				for k <= sh.se {
					coef := &blk[zigZag[k]]
					if *coef != 0 {
						if err := correct(coef); err != nil {
							return err
						}
					} else {
						if run == 0 {
							if size != 0 {
								*coef = newVal
							}
							k++
							break
						}
						run--
					}
					k++
				}
			}
		}

		if *eobrun > 0 {
			for ; k <= sh.se; k++ {
				coef := &blk[zigZag[k]]
				if *coef != 0 {
					if err := correct(coef); err != nil {
						return err
					}
				}
			}
			*eobrun--
		}
		return nil
	}
}
