// Package gpio provides the plant monitor's GPIO lines with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import "github.com/sweeney/plant-monitor/internal/dht"

// SoilReader reads the digital soil moisture comparator.
type SoilReader interface {
	// ReadSoil returns true when the soil is dry.
	// The comparator output is high for dry soil, low for wet.
	ReadSoil() (bool, error)
}

// Relays drives the fan and pump relays.
// The relay boards are active-low; implementations hide that, so true always
// means energised.
type Relays interface {
	// Set switches both relays.
	Set(fanOn, pumpOn bool) error

	// State reads back the current relay states.
	State() (fanOn, pumpOn bool, err error)

	// Close switches both relays off and releases the lines.
	Close() error
}

// Pins holds BCM line offsets.
type Pins struct {
	DHT  int
	Soil int
	Fan  int
	Pump int
}

// Default pin definitions (BCM numbering)
const (
	DefaultPinDHT  = 17 // DHT11 data
	DefaultPinSoil = 18 // soil comparator DO
	DefaultPinFan  = 24 // fan relay IN
	DefaultPinPump = 23 // pump relay IN
)

// DefaultPins returns the standard wiring.
func DefaultPins() Pins {
	return Pins{
		DHT:  DefaultPinDHT,
		Soil: DefaultPinSoil,
		Fan:  DefaultPinFan,
		Pump: DefaultPinPump,
	}
}

// DefaultChip is the GPIO chip of the Raspberry Pi header.
const DefaultChip = "gpiochip0"

var _ dht.Line = (*FakeLine)(nil)
