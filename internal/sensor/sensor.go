// Package sensor reads the I2C peripherals of the plant monitor: a BMP085
// barometric sensor and a PCF8591 analog-to-digital converter.
package sensor

// Bus is the subset of an I2C bus the drivers need. It is satisfied by
// github.com/reef-pi/rpi/i2c.Bus.
type Bus interface {
	ReadFromReg(addr, reg byte, value []byte) error
	WriteToReg(addr, reg byte, value []byte) error
	ReadBytes(addr byte, num int) ([]byte, error)
	WriteBytes(addr byte, value []byte) error
}

// Default I2C addresses.
const (
	DefaultBMPAddr = 0x77
	DefaultADCAddr = 0x48
)
