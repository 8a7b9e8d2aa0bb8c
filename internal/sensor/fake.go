package sensor

import (
	"errors"
	"fmt"
)

// FakeBus is an in-memory I2C bus for tests.
type FakeBus struct {
	// Regs holds queued replies for ReadFromReg keyed by address and register.
	// Each read consumes one reply; the last one repeats.
	Regs map[[2]byte][][]byte

	// Bytes holds queued replies for ReadBytes keyed by address.
	Bytes map[byte][][]byte

	// Writes records every write as address, optional register, payload.
	Writes []FakeWrite

	// Err, if set, will be returned by every call.
	Err error
}

// FakeWrite is one recorded bus write. Reg is -1 for WriteBytes.
type FakeWrite struct {
	Addr byte
	Reg  int
	Data []byte
}

// NewFakeBus creates an empty FakeBus.
func NewFakeBus() *FakeBus {
	return &FakeBus{
		Regs:  make(map[[2]byte][][]byte),
		Bytes: make(map[byte][][]byte),
	}
}

// QueueReg appends a reply for ReadFromReg(addr, reg).
func (f *FakeBus) QueueReg(addr, reg byte, reply ...byte) {
	k := [2]byte{addr, reg}
	f.Regs[k] = append(f.Regs[k], reply)
}

// QueueBytes appends a reply for ReadBytes(addr).
func (f *FakeBus) QueueBytes(addr byte, reply ...byte) {
	f.Bytes[addr] = append(f.Bytes[addr], reply)
}

func (f *FakeBus) ReadFromReg(addr, reg byte, value []byte) error {
	if f.Err != nil {
		return f.Err
	}
	k := [2]byte{addr, reg}
	q := f.Regs[k]
	if len(q) == 0 {
		return fmt.Errorf("no reply queued for 0x%02X/0x%02X", addr, reg)
	}
	copy(value, q[0])
	if len(q) > 1 {
		f.Regs[k] = q[1:]
	}
	return nil
}

func (f *FakeBus) WriteToReg(addr, reg byte, value []byte) error {
	if f.Err != nil {
		return f.Err
	}
	f.Writes = append(f.Writes, FakeWrite{Addr: addr, Reg: int(reg), Data: append([]byte(nil), value...)})
	return nil
}

func (f *FakeBus) ReadBytes(addr byte, num int) ([]byte, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	q := f.Bytes[addr]
	if len(q) == 0 {
		return nil, fmt.Errorf("no reply queued for 0x%02X", addr)
	}
	out := q[0]
	if len(q) > 1 {
		f.Bytes[addr] = q[1:]
	}
	if len(out) > num {
		out = out[:num]
	}
	return out, nil
}

func (f *FakeBus) WriteBytes(addr byte, value []byte) error {
	if f.Err != nil {
		return f.Err
	}
	f.Writes = append(f.Writes, FakeWrite{Addr: addr, Reg: -1, Data: append([]byte(nil), value...)})
	return nil
}

// FakeBarometer returns a fixed reading.
type FakeBarometer struct {
	Reading BaroReading
	Err     error
	Reads   int
}

// Read returns the configured reading or error.
func (f *FakeBarometer) Read() (BaroReading, error) {
	f.Reads++
	if f.Err != nil {
		return BaroReading{}, f.Err
	}
	return f.Reading, nil
}

// FakeADC returns per-channel values.
type FakeADC struct {
	// Values maps channel to a queue of conversions; the last one repeats.
	Values map[int][]uint8
	Err    error
}

// NewFakeADC creates a FakeADC with no channels configured.
func NewFakeADC() *FakeADC {
	return &FakeADC{Values: make(map[int][]uint8)}
}

// Set queues conversions for a channel.
func (f *FakeADC) Set(ch int, values ...uint8) {
	f.Values[ch] = values
}

// ReadChannel returns the next queued conversion for ch.
func (f *FakeADC) ReadChannel(ch int) (uint8, error) {
	if f.Err != nil {
		return 0, f.Err
	}
	q := f.Values[ch]
	if len(q) == 0 {
		return 0, errors.New("channel not configured")
	}
	v := q[0]
	if len(q) > 1 {
		f.Values[ch] = q[1:]
	}
	return v, nil
}
