//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/plant-monitor/internal/dht"
)

const consumer = "plant-monitor"

// Board owns every GPIO line the monitor uses on one chip.
type Board struct {
	chip      *gpiocdev.Chip
	dht       *gpiocdev.Line
	soil      *gpiocdev.Line
	fan       *gpiocdev.Line
	pump      *gpiocdev.Line
	activeLow bool
}

// Open requests all lines on the named chip. The relays are requested as
// outputs in the off state. If activeLow is set, the relay lines are flagged
// active-low so the kernel performs the inversion.
func Open(chipName string, pins Pins, activeLow bool) (*Board, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}
	b := &Board{chip: chip, activeLow: activeLow}

	b.dht, err = chip.RequestLine(pins.DHT, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("request DHT pin %d: %w", pins.DHT, err)
	}

	b.soil, err = chip.RequestLine(pins.Soil, gpiocdev.AsInput)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("request soil pin %d: %w", pins.Soil, err)
	}

	relayOpts := []gpiocdev.LineReqOption{gpiocdev.AsOutput(0)}
	if activeLow {
		relayOpts = append(relayOpts, gpiocdev.AsActiveLow)
	}

	b.fan, err = chip.RequestLine(pins.Fan, relayOpts...)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("request fan pin %d: %w", pins.Fan, err)
	}

	b.pump, err = chip.RequestLine(pins.Pump, relayOpts...)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("request pump pin %d: %w", pins.Pump, err)
	}

	return b, nil
}

// DHTLine returns the DHT11 data line.
func (b *Board) DHTLine() dht.Line {
	return &dhtLine{line: b.dht}
}

// ReadSoil returns true when the comparator reports dry soil.
func (b *Board) ReadSoil() (bool, error) {
	v, err := b.soil.Value()
	if err != nil {
		return false, fmt.Errorf("read soil pin: %w", err)
	}
	return v == 1, nil
}

// Set switches the relays. Values are logical: 1 energises the relay.
func (b *Board) Set(fanOn, pumpOn bool) error {
	if err := b.fan.SetValue(boolToValue(fanOn)); err != nil {
		return fmt.Errorf("set fan pin: %w", err)
	}
	if err := b.pump.SetValue(boolToValue(pumpOn)); err != nil {
		return fmt.Errorf("set pump pin: %w", err)
	}
	return nil
}

// State reads back the logical relay values.
func (b *Board) State() (bool, bool, error) {
	fan, err := b.fan.Value()
	if err != nil {
		return false, false, fmt.Errorf("read fan pin: %w", err)
	}
	pump, err := b.pump.Value()
	if err != nil {
		return false, false, fmt.Errorf("read pump pin: %w", err)
	}
	return fan == 1, pump == 1, nil
}

// Close switches the relays off and releases every line.
// Relay lines are left as pulled-up inputs so an active-low relay board
// stays de-energised while nothing drives it.
func (b *Board) Close() error {
	var errs []error

	for name, l := range map[string]*gpiocdev.Line{"fan": b.fan, "pump": b.pump} {
		if l == nil {
			continue
		}
		if err := l.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("switch off %s: %w", name, err))
		}
		if b.activeLow {
			if err := l.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullUp); err != nil {
				errs = append(errs, fmt.Errorf("reconfigure %s pin: %w", name, err))
			}
		}
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s pin: %w", name, err))
		}
	}
	for name, l := range map[string]*gpiocdev.Line{"dht": b.dht, "soil": b.soil} {
		if l == nil {
			continue
		}
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s pin: %w", name, err))
		}
	}
	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// dhtLine switches the DHT11 data line between driving the start signal and
// listening for the response.
type dhtLine struct {
	line *gpiocdev.Line
}

func (d *dhtLine) Drive(level dht.Level) error {
	return d.line.Reconfigure(gpiocdev.AsOutput(int(level)))
}

func (d *dhtLine) Release() error {
	return d.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullUp)
}

func (d *dhtLine) Level() (dht.Level, error) {
	v, err := d.line.Value()
	if err != nil {
		return dht.Low, err
	}
	return dht.Level(v), nil
}

func boolToValue(on bool) int {
	if on {
		return 1
	}
	return 0
}
