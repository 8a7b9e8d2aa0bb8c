package sensor

import "fmt"

const pcfControl = 0x40

// PCF8591 reads the four single-ended inputs of a PCF8591 ADC.
type PCF8591 struct {
	bus  Bus
	addr byte
}

// NewPCF8591 creates a driver for the ADC at addr.
func NewPCF8591(bus Bus, addr byte) *PCF8591 {
	return &PCF8591{bus: bus, addr: addr}
}

// ReadChannel returns the 8-bit conversion of channel 0-3.
// The first byte after selecting a channel holds the previous conversion and
// is discarded.
func (p *PCF8591) ReadChannel(ch int) (uint8, error) {
	if ch < 0 || ch > 3 {
		return 0, fmt.Errorf("pcf8591: channel %d out of range 0-3", ch)
	}
	if err := p.bus.WriteBytes(p.addr, []byte{pcfControl + byte(ch)}); err != nil {
		return 0, fmt.Errorf("pcf8591: select channel %d: %w", ch, err)
	}
	b, err := p.bus.ReadBytes(p.addr, 2)
	if err != nil {
		return 0, fmt.Errorf("pcf8591: read channel %d: %w", ch, err)
	}
	if len(b) != 2 {
		return 0, fmt.Errorf("pcf8591: short read (%d bytes)", len(b))
	}
	return b[1], nil
}
