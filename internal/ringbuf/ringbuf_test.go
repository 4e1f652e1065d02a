package ringbuf

import "testing"

func TestReadableBytes(t *testing.T) {
	tests := []struct {
		name       string
		head, tail uint32
		want       uint32
	}{
		{"empty", 0, 0, 0},
		{"no wrap", 100, 40, 60},
		{"wrapped", 40, RingSize - 100, 140},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReadableBytes(tt.head, tt.tail); got != tt.want {
				t.Errorf("ReadableBytes(%d, %d) = %d, want %d", tt.head, tt.tail, got, tt.want)
			}
		})
	}
}

func TestRingControl_SetTailRoundTrip(t *testing.T) {
	buf := make([]byte, ControlSize)
	c := wrapControl(buf)

	c.SetTail(5)
	if got := c.Tail(); got != 5 {
		t.Errorf("Tail() = %d, want 5", got)
	}
	if got := c.Head(); got != 0 {
		t.Errorf("Head() = %d, want 0 (kernel-owned, untouched)", got)
	}
}

func TestRingControl_Counters(t *testing.T) {
	buf := make([]byte, ControlSize)
	buf[offNumSyscalls] = 7 // little-endian: NumSyscalls == 7
	c := wrapControl(buf)

	got := c.Counters()
	if got.NumSyscalls != 7 {
		t.Errorf("NumSyscalls = %d, want 7", got.NumSyscalls)
	}
}
