package jpeg

import "testing"

func TestBitReaderReceive(t *testing.T) {
	// 0xB5 = 1011 0101
	r := newBitReader([]byte{0xB5}, 0)
	v, err := r.receive(4)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if v != 0b1011 {
		t.Fatalf("got %b, want 1011", v)
	}
	v, err = r.receive(4)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if v != 0b0101 {
		t.Fatalf("got %b, want 0101", v)
	}
}

func TestBitReaderByteStuffing(t *testing.T) {
	// 0xFF 0x00 is a literal 0xFF byte in the entropy stream.
	r := newBitReader([]byte{0xFF, 0x00, 0xAA}, 0)
	v, err := r.receive(8)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if v != 0xFF {
		t.Fatalf("got %#x, want 0xFF", v)
	}
	v, err = r.receive(8)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if v != 0xAA {
		t.Fatalf("got %#x, want 0xAA", v)
	}
}

func TestBitReaderStopsAtRestartMarker(t *testing.T) {
	r := newBitReader([]byte{0xAA, 0xFF, 0xD0, 0x00}, 0)
	if _, err := r.receive(8); err != nil {
		t.Fatalf("receive: %v", err)
	}
	_, ok, err := r.readBit()
	if err != nil {
		t.Fatalf("readBit: %v", err)
	}
	if ok {
		t.Fatalf("expected readBit to report a restart marker, got ok=true")
	}
	if err := r.expectRestart(); err != nil {
		t.Fatalf("expectRestart: %v", err)
	}
}

func TestBitReaderUnexpectedMarkerFails(t *testing.T) {
	r := newBitReader([]byte{0xAA, 0xFF, 0xD9}, 0)
	if _, err := r.receive(8); err != nil {
		t.Fatalf("receive: %v", err)
	}
	_, _, err := r.readBit()
	if err == nil {
		t.Fatalf("expected error on unexpected marker")
	}
	ce, ok := AsCodecError(err)
	if !ok || ce.Kind != ErrUnexpectedMarker {
		t.Fatalf("got %v, want ErrUnexpectedMarker", err)
	}
}

func TestReceiveAndExtend(t *testing.T) {
	cases := []struct {
		bits []byte
		n    int
		want int32
	}{
		{[]byte{0b00000000}, 1, -1},
		{[]byte{0b10000000}, 1, 1},
		{[]byte{0b01000000}, 2, -2},
		{[]byte{0b11000000}, 2, 3},
	}
	for _, c := range cases {
		r := newBitReader(c.bits, 0)
		got, err := r.receiveAndExtend(c.n)
		if err != nil {
			t.Fatalf("receiveAndExtend(%d): %v", c.n, err)
		}
		if got != c.want {
			t.Errorf("receiveAndExtend(%d) = %d, want %d", c.n, got, c.want)
		}
	}
}
