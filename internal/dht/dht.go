// Package dht decodes the DHT11 single-wire protocol.
//
// A read is three steps: the Sampler drives the start signal and captures the
// raw line levels, DecodePulses turns the levels into one pulse width per data
// bit, and ExtractFrame turns the widths into a checksummed 5-byte frame.
// Nothing here touches hardware directly; the line is supplied by the caller.
package dht

import (
	"errors"
	"fmt"
)

// Level is a sampled logic level of the data line.
type Level uint8

const (
	Low  Level = 0
	High Level = 1
)

// FrameBits is the number of data bits in one sensor transmission.
const FrameBits = 40

// ErrTimeout is returned when the line never goes idle within the sample cap.
var ErrTimeout = errors.New("dht: line did not settle before sample cap")

// FrameLengthError reports a capture that did not yield exactly FrameBits pulses.
type FrameLengthError struct {
	Got int
}

func (e *FrameLengthError) Error() string {
	return fmt.Sprintf("dht: decoded %d pulses, want %d", e.Got, FrameBits)
}

// ChecksumError reports a frame whose checksum byte does not match its data.
type ChecksumError struct {
	Got  byte
	Want byte
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("dht: checksum 0x%02x, want 0x%02x", e.Got, e.Want)
}

// Frame is a validated sensor frame:
// humidity integral, humidity fraction, temperature integral, temperature fraction, checksum.
type Frame [5]byte

// Humidity returns the integral relative humidity in percent.
func (f Frame) Humidity() int { return int(f[0]) }

// HumidityFrac returns the fractional humidity byte (always 0 on a DHT11).
func (f Frame) HumidityFrac() int { return int(f[1]) }

// Temperature returns the integral temperature in °C.
func (f Frame) Temperature() int { return int(f[2]) }

// TemperatureFrac returns the fractional temperature byte.
func (f Frame) TemperatureFrac() int { return int(f[3]) }

// Checksum returns the transmitted checksum byte.
func (f Frame) Checksum() byte { return f[4] }

// checksum is the sum of the four data bytes mod 256.
func checksum(b [5]byte) byte {
	return b[0] + b[1] + b[2] + b[3]
}

// Decode runs the pulse decoder and frame extractor over one capture.
func Decode(levels []Level) (Frame, error) {
	widths, err := DecodePulses(levels)
	if err != nil {
		return Frame{}, err
	}
	return ExtractFrame(widths)
}
