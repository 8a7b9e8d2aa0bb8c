package sensor

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

const (
	bmpRegCalib   = 0xAA
	bmpRegControl = 0xF4
	bmpRegData    = 0xF6

	bmpCmdTemp     = 0x2E
	bmpCmdPressure = 0x34

	// SeaLevelPa is the reference pressure for altitude.
	SeaLevelPa = 101325.0
)

// Calibration holds the factory coefficients stored in the BMP085 EEPROM.
type Calibration struct {
	AC1, AC2, AC3 int16
	AC4, AC5, AC6 uint16
	B1, B2        int16
	MB, MC, MD    int16
}

func parseCalibration(b []byte) (Calibration, error) {
	if len(b) != 22 {
		return Calibration{}, fmt.Errorf("calibration: got %d bytes, want 22", len(b))
	}
	word := func(i int) uint16 { return binary.BigEndian.Uint16(b[i*2:]) }
	c := Calibration{
		AC1: int16(word(0)),
		AC2: int16(word(1)),
		AC3: int16(word(2)),
		AC4: word(3),
		AC5: word(4),
		AC6: word(5),
		B1:  int16(word(6)),
		B2:  int16(word(7)),
		MB:  int16(word(8)),
		MC:  int16(word(9)),
		MD:  int16(word(10)),
	}
	// An unwired or dead device reads back 0x0000 or 0xFFFF.
	for i := 0; i < 11; i++ {
		if w := word(i); w == 0 || w == 0xFFFF {
			return Calibration{}, fmt.Errorf("calibration: invalid coefficient %d (0x%04X)", i, w)
		}
	}
	return c, nil
}

// Compensate converts raw readings into temperature (0.1 °C) and pressure (Pa)
// using the integer algorithm from the BMP085 datasheet. Raw values that fall
// outside the range the algorithm is defined for are reported as an error.
func (c Calibration) Compensate(ut, up int64, oss uint) (temp, pressure int64, err error) {
	x1 := (ut - int64(c.AC6)) * int64(c.AC5) >> 15
	if x1+int64(c.MD) == 0 {
		return 0, 0, fmt.Errorf("raw temperature %d out of range", ut)
	}
	x2 := (int64(c.MC) << 11) / (x1 + int64(c.MD))
	b5 := x1 + x2
	temp = (b5 + 8) >> 4

	b6 := b5 - 4000
	x1 = (int64(c.B2) * (b6 * b6 >> 12)) >> 11
	x2 = int64(c.AC2) * b6 >> 11
	x3 := x1 + x2
	b3 := (((int64(c.AC1)*4 + x3) << oss) + 2) / 4

	x1 = int64(c.AC3) * b6 >> 13
	x2 = (int64(c.B1) * (b6 * b6 >> 12)) >> 16
	x3 = ((x1 + x2) + 2) >> 2
	b4 := int64(c.AC4) * (x3 + 32768) >> 15
	b7 := (up - b3) * (50000 >> oss)
	// The datasheet treats b4 and b7 as unsigned.
	if b4 <= 0 || b7 < 0 {
		return 0, 0, fmt.Errorf("raw pressure %d out of range", up)
	}

	var p int64
	if b7 < 0x80000000 {
		p = (b7 * 2) / b4
	} else {
		p = (b7 / b4) * 2
	}
	x1 = (p >> 8) * (p >> 8)
	x1 = (x1 * 3038) >> 16
	x2 = (-7357 * p) >> 16
	pressure = p + (x1+x2+3791)>>4
	if pressure <= 0 {
		return 0, 0, fmt.Errorf("raw pressure %d out of range", up)
	}
	return temp, pressure, nil
}

// BaroReading is one compensated BMP085 sample.
type BaroReading struct {
	TempC      float64
	PressurePa float64
}

// HPa returns the pressure in hectopascals.
func (r BaroReading) HPa() float64 {
	return r.PressurePa / 100
}

// Altitude returns the altitude in metres for the reading's pressure.
func (r BaroReading) Altitude() float64 {
	return Altitude(r.PressurePa)
}

// Altitude applies the international barometric formula against SeaLevelPa.
func Altitude(pa float64) float64 {
	return 44330 * (1 - math.Pow(pa/SeaLevelPa, 1/5.255))
}

// BMP085 drives a BMP085/BMP180 barometric sensor.
type BMP085 struct {
	bus   Bus
	addr  byte
	oss   uint
	cal   *Calibration
	sleep func(time.Duration)
}

// NewBMP085 creates a driver in standard oversampling mode.
// Calibration is loaded on the first Read.
func NewBMP085(bus Bus, addr byte) *BMP085 {
	return &BMP085{bus: bus, addr: addr, oss: 1, sleep: time.Sleep}
}

// Read triggers a temperature and a pressure conversion and returns the
// compensated result.
func (b *BMP085) Read() (BaroReading, error) {
	if b.cal == nil {
		raw := make([]byte, 22)
		if err := b.bus.ReadFromReg(b.addr, bmpRegCalib, raw); err != nil {
			return BaroReading{}, fmt.Errorf("bmp085: read calibration: %w", err)
		}
		cal, err := parseCalibration(raw)
		if err != nil {
			return BaroReading{}, fmt.Errorf("bmp085: %w", err)
		}
		b.cal = &cal
	}

	if err := b.bus.WriteToReg(b.addr, bmpRegControl, []byte{bmpCmdTemp}); err != nil {
		return BaroReading{}, fmt.Errorf("bmp085: start temperature: %w", err)
	}
	b.sleep(4500 * time.Microsecond)
	tb := make([]byte, 2)
	if err := b.bus.ReadFromReg(b.addr, bmpRegData, tb); err != nil {
		return BaroReading{}, fmt.Errorf("bmp085: read temperature: %w", err)
	}
	ut := int64(binary.BigEndian.Uint16(tb))

	if err := b.bus.WriteToReg(b.addr, bmpRegControl, []byte{bmpCmdPressure + byte(b.oss<<6)}); err != nil {
		return BaroReading{}, fmt.Errorf("bmp085: start pressure: %w", err)
	}
	b.sleep(time.Duration(2+(3<<b.oss)) * time.Millisecond)
	pb := make([]byte, 3)
	if err := b.bus.ReadFromReg(b.addr, bmpRegData, pb); err != nil {
		return BaroReading{}, fmt.Errorf("bmp085: read pressure: %w", err)
	}
	up := (int64(pb[0])<<16 | int64(pb[1])<<8 | int64(pb[2])) >> (8 - b.oss)

	t, p, err := b.cal.Compensate(ut, up, b.oss)
	if err != nil {
		return BaroReading{}, fmt.Errorf("bmp085: %w", err)
	}
	return BaroReading{TempC: float64(t) / 10, PressurePa: float64(p)}, nil
}
