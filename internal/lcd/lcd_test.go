package lcd

import (
	"errors"
	"testing"
	"time"
)

type recordingBus struct {
	writes []byte
	err    error
}

func (r *recordingBus) WriteBytes(addr byte, value []byte) error {
	if r.err != nil {
		return r.err
	}
	r.writes = append(r.writes, value...)
	return nil
}

func newTestDisplay() (*Display, *recordingBus) {
	bus := &recordingBus{}
	d := New(bus, DefaultAddr)
	d.sleep = func(time.Duration) {}
	return d, bus
}

func TestShowWritesLineAddressThenCharacters(t *testing.T) {
	d, bus := newTestDisplay()

	if err := d.Show("A", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []byte{
		0x88, 0x8C, 0x88, 0x08, 0x0C, 0x08, // command 0x80
		0x49, 0x4D, 0x49, 0x19, 0x1D, 0x19, // 'A'
	}
	for i, b := range want {
		if bus.writes[i] != b {
			t.Errorf("write %d: got 0x%02X, want 0x%02X", i, bus.writes[i], b)
		}
	}

	// Two lines, each one address command plus 16 characters, 6 writes per byte.
	if got, want := len(bus.writes), 2*(1+Width)*6; got != want {
		t.Errorf("total writes: got %d, want %d", got, want)
	}
}

func TestShowSkipsUnchangedLines(t *testing.T) {
	d, bus := newTestDisplay()

	d.Show("S=D P=1 A=1 D=1", "T=26 H=65 F=1")
	before := len(bus.writes)

	d.Show("S=D P=1 A=1 D=1", "T=27 H=65 F=1")
	if got, want := len(bus.writes)-before, (1+Width)*6; got != want {
		t.Errorf("writes for one changed line: got %d, want %d", got, want)
	}
}

func TestClearForcesRewrite(t *testing.T) {
	d, bus := newTestDisplay()

	d.Show("x", "y")
	d.Clear()
	before := len(bus.writes)
	d.Show("x", "y")

	if got, want := len(bus.writes)-before, 2*(1+Width)*6; got != want {
		t.Errorf("writes after clear: got %d, want %d", got, want)
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "                "},
		{"abc", "abc             "},
		{"0123456789abcdefXYZ", "0123456789abcdef"},
		{"T=26°", "T=26??          "},
	}
	for _, tt := range tests {
		if got := fit(tt.in); got != tt.want {
			t.Errorf("fit(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestInitSequence(t *testing.T) {
	d, bus := newTestDisplay()

	if err := d.Init(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 6 commands, 2 nibbles each, 3 writes per nibble.
	if got, want := len(bus.writes), 6*2*3; got != want {
		t.Errorf("writes: got %d, want %d", got, want)
	}
	// First nibble of 0x33 with backlight.
	if bus.writes[0] != 0x38 {
		t.Errorf("first write: got 0x%02X, want 0x38", bus.writes[0])
	}
}

func TestCloseTurnsBacklightOff(t *testing.T) {
	d, bus := newTestDisplay()

	if err := d.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if last := bus.writes[len(bus.writes)-1]; last != 0 {
		t.Errorf("last write: got 0x%02X, want 0x00", last)
	}
}

func TestShowBusError(t *testing.T) {
	d, bus := newTestDisplay()
	bus.err = errors.New("nack")

	if err := d.Show("a", "b"); !errors.Is(err, bus.err) {
		t.Errorf("got %v, want wrapped bus error", err)
	}
}
