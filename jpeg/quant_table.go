package jpeg

// QuantTable holds one destination's 64 quantization values in natural
// (row-major) order.
type QuantTable struct {
	values [64]uint16
}

// newQuantTableFromZigZag deposits 64 zig-zag-ordered entries into natural
// order, as DQT segments store them.
func newQuantTableFromZigZag(zz [64]uint16) *QuantTable {
	qt := &QuantTable{}
	for i := 0; i < 64; i++ {
		qt.values[zigZag[i]] = zz[i]
	}
	return qt
}

// newQuantTableFromNatural wraps an already-natural-order table, used by the
// encoder where tables are built directly in natural order.
func newQuantTableFromNatural(natural [64]uint16) *QuantTable {
	qt := &QuantTable{}
	qt.values = natural
	return qt
}

func (qt *QuantTable) at(naturalIndex int) uint16 {
	return qt.values[naturalIndex]
}
