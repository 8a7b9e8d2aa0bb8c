// Package lcd drives a 16x2 HD44780 character display through a PCF8574 I2C
// backpack in 4-bit mode.
package lcd

import (
	"fmt"
	"time"
)

// Width is the number of characters per line.
const Width = 16

// DefaultAddr is the usual PCF8574 backpack address.
const DefaultAddr = 0x27

// PCF8574 pin mapping.
const (
	bitRS        = 0x01
	bitEnable    = 0x04
	bitBacklight = 0x08
)

// HD44780 commands.
const (
	cmdClear    = 0x01
	cmdEntry    = 0x06 // increment, no shift
	cmdDisplay  = 0x0C // display on, cursor off
	cmdFunction = 0x28 // 4-bit, 2 lines, 5x8
	cmdLine1    = 0x80
	cmdLine2    = 0xC0
)

// Bus is the subset of an I2C bus the display needs.
type Bus interface {
	WriteBytes(addr byte, value []byte) error
}

// Display is an HD44780 behind a PCF8574.
type Display struct {
	bus       Bus
	addr      byte
	backlight byte
	shown     [2]string
	sleep     func(time.Duration)
}

// New creates a display with the backlight on. Call Init before use.
func New(bus Bus, addr byte) *Display {
	return &Display{bus: bus, addr: addr, backlight: bitBacklight, sleep: time.Sleep}
}

// Init runs the 4-bit initialisation sequence and clears the screen.
func (d *Display) Init() error {
	for _, c := range []byte{0x33, 0x32, cmdFunction, cmdDisplay, cmdEntry} {
		if err := d.command(c); err != nil {
			return fmt.Errorf("lcd init: %w", err)
		}
	}
	return d.Clear()
}

// Show writes two lines, each truncated or padded to Width.
// Lines identical to what is already on screen are not rewritten.
func (d *Display) Show(line1, line2 string) error {
	for i, text := range [2]string{fit(line1), fit(line2)} {
		if d.shown[i] == text {
			continue
		}
		addr := byte(cmdLine1)
		if i == 1 {
			addr = cmdLine2
		}
		if err := d.command(addr); err != nil {
			return fmt.Errorf("lcd line %d: %w", i+1, err)
		}
		for j := 0; j < len(text); j++ {
			if err := d.write(text[j], bitRS); err != nil {
				return fmt.Errorf("lcd line %d: %w", i+1, err)
			}
		}
		d.shown[i] = text
	}
	return nil
}

// Clear blanks the screen.
func (d *Display) Clear() error {
	if err := d.command(cmdClear); err != nil {
		return fmt.Errorf("lcd clear: %w", err)
	}
	d.sleep(2 * time.Millisecond)
	d.shown = [2]string{}
	return nil
}

// Close clears the screen and switches the backlight off.
func (d *Display) Close() error {
	if err := d.Clear(); err != nil {
		return err
	}
	d.backlight = 0
	return d.bus.WriteBytes(d.addr, []byte{0})
}

func (d *Display) command(c byte) error {
	return d.write(c, 0)
}

func (d *Display) write(b, mode byte) error {
	if err := d.nibble(b&0xF0 | mode); err != nil {
		return err
	}
	return d.nibble(b<<4 | mode)
}

func (d *Display) nibble(data byte) error {
	data |= d.backlight
	for _, v := range []byte{data, data | bitEnable, data &^ bitEnable} {
		if err := d.bus.WriteBytes(d.addr, []byte{v}); err != nil {
			return err
		}
	}
	d.sleep(50 * time.Microsecond)
	return nil
}

// fit pads or truncates s to exactly Width bytes, replacing anything outside
// printable ASCII with '?'.
func fit(s string) string {
	b := make([]byte, Width)
	for i := range b {
		b[i] = ' '
	}
	for i := 0; i < len(s) && i < Width; i++ {
		c := s[i]
		if c < 0x20 || c > 0x7E {
			c = '?'
		}
		b[i] = c
	}
	return string(b)
}
