package gpio

import (
	"errors"

	"github.com/sweeney/plant-monitor/internal/dht"
)

// FakeLine is a DHT data line that replays scripted levels.
type FakeLine struct {
	// Levels are returned by Level() in order; the last one repeats.
	Levels []dht.Level

	// Calls records Drive/Release in order ("high", "low", "release").
	Calls []string

	// LevelError, if set, will be returned by Level().
	LevelError error

	pos int
}

// NewFakeLine creates a FakeLine with the given capture.
func NewFakeLine(levels []dht.Level) *FakeLine {
	return &FakeLine{Levels: levels}
}

// Drive records the start signal.
func (f *FakeLine) Drive(level dht.Level) error {
	if level == dht.High {
		f.Calls = append(f.Calls, "high")
	} else {
		f.Calls = append(f.Calls, "low")
	}
	return nil
}

// Release records the switch to input and rewinds the capture.
func (f *FakeLine) Release() error {
	f.Calls = append(f.Calls, "release")
	f.pos = 0
	return nil
}

// Level returns the next scripted level.
func (f *FakeLine) Level() (dht.Level, error) {
	if f.LevelError != nil {
		return dht.Low, f.LevelError
	}
	if len(f.Levels) == 0 {
		return dht.High, nil
	}
	lv := f.Levels[f.pos]
	if f.pos < len(f.Levels)-1 {
		f.pos++
	}
	return lv, nil
}

// FakeSoil returns scripted soil readings.
type FakeSoil struct {
	// Samples contains scripted dry values; each ReadSoil consumes one.
	// If samples are exhausted, the last one repeats.
	Samples []bool

	// ReadError, if set, will be returned by ReadSoil().
	ReadError error

	index int
}

// NewFakeSoil creates a FakeSoil with the given samples.
func NewFakeSoil(samples ...bool) *FakeSoil {
	return &FakeSoil{Samples: samples}
}

// ReadSoil returns the next scripted sample.
func (f *FakeSoil) ReadSoil() (bool, error) {
	if f.ReadError != nil {
		return false, f.ReadError
	}
	if len(f.Samples) == 0 {
		return false, errors.New("no samples configured")
	}
	dry := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return dry, nil
}

// FakeRelays records relay commands.
type FakeRelays struct {
	FanOn  bool
	PumpOn bool

	// History contains every Set call as [fan, pump].
	History [][2]bool

	// SetError, if set, will be returned by Set().
	SetError error

	// StateError, if set, will be returned by State().
	StateError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeRelays creates FakeRelays with both relays off.
func NewFakeRelays() *FakeRelays {
	return &FakeRelays{}
}

// Set records the command.
func (f *FakeRelays) Set(fanOn, pumpOn bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.FanOn, f.PumpOn = fanOn, pumpOn
	f.History = append(f.History, [2]bool{fanOn, pumpOn})
	return nil
}

// State returns the last commanded values.
func (f *FakeRelays) State() (bool, bool, error) {
	if f.StateError != nil {
		return false, false, f.StateError
	}
	return f.FanOn, f.PumpOn, nil
}

// Close switches both relays off and marks them closed.
func (f *FakeRelays) Close() error {
	f.FanOn, f.PumpOn = false, false
	f.Closed = true
	return nil
}
