//go:build !linux

package gpio

import (
	"errors"

	"github.com/sweeney/plant-monitor/internal/dht"
)

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// Board is not available on non-Linux platforms.
type Board struct{}

// Open returns an error on non-Linux platforms.
func Open(chipName string, pins Pins, activeLow bool) (*Board, error) {
	return nil, errUnsupported
}

// DHTLine is not implemented on non-Linux platforms.
func (b *Board) DHTLine() dht.Line { return nil }

// ReadSoil is not implemented on non-Linux platforms.
func (b *Board) ReadSoil() (bool, error) { return false, errUnsupported }

// Set is not implemented on non-Linux platforms.
func (b *Board) Set(fanOn, pumpOn bool) error { return errUnsupported }

// State is not implemented on non-Linux platforms.
func (b *Board) State() (bool, bool, error) { return false, false, errUnsupported }

// Close is not implemented on non-Linux platforms.
func (b *Board) Close() error { return nil }
