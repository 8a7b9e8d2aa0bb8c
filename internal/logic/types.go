// Package logic contains the pure control logic of the plant monitor.
// This package has NO external dependencies (no GPIO, I2C, MQTT, SQL, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import (
	"fmt"
	"time"
)

// State is the reported state of an actuator.
type State string

const (
	StateOn      State = "ON"
	StateOff     State = "OFF"
	StateUnknown State = "UNKNOWN"
)

// Unknown is the sentinel stored and published for any value that could not be read.
const Unknown = -1

// Measure is an optional sensor value. The zero value is unknown.
type Measure struct {
	Value float64
	Valid bool
}

// Known returns a valid Measure.
func Known(v float64) Measure {
	return Measure{Value: v, Valid: true}
}

// OrUnknown returns the value, or the Unknown sentinel when not valid.
func (m Measure) OrUnknown() float64 {
	if !m.Valid {
		return Unknown
	}
	return m.Value
}

// Reading is one cycle's sensor snapshot.
type Reading struct {
	Time time.Time

	// DHT11
	Temperature Measure // °C
	Humidity    Measure // %RH

	// BMP085/BMP180
	BMPTemperature Measure // °C
	Pressure       Measure // hPa
	Altitude       Measure // m

	// PCF8591 photoresistor channel, 0-255
	Light Measure

	// Soil moisture. SoilDry is meaningful only when SoilValid is set.
	SoilDry   bool
	SoilValid bool
	// SoilLevel is the analog moisture level (analog mode only).
	SoilLevel Measure
}

// NewReading returns a Reading with every value unknown.
func NewReading(t time.Time) Reading {
	return Reading{Time: t}
}

// DisplayTemperature returns the temperature to show an operator: the DHT11
// value, or the barometer's temperature when the DHT11 read failed. The
// fallback is for display and logs only and never drives the fan.
func (r Reading) DisplayTemperature() Measure {
	if r.Temperature.Valid {
		return r.Temperature
	}
	return r.BMPTemperature
}

// ActuatorState is the commanded state of the two relays.
type ActuatorState struct {
	FanOn  bool
	PumpOn bool
}

// PublishStatus is the outcome of the publish step of one cycle.
type PublishStatus int

const (
	PublishSkipped PublishStatus = iota // not a decimation boundary
	PublishOK                           // payload accepted by the broker
	PublishFailed                       // publish attempted and failed; session torn down
	PublishOffline                      // boundary reached while disconnected
)

// Code returns the single-character status persisted as aws_status.
func (s PublishStatus) Code() string {
	switch s {
	case PublishOK:
		return "1"
	case PublishFailed:
		return "E"
	default:
		return "0"
	}
}

func (s PublishStatus) String() string {
	switch s {
	case PublishSkipped:
		return "skipped"
	case PublishOK:
		return "published"
	case PublishFailed:
		return "failed"
	case PublishOffline:
		return "offline"
	}
	return fmt.Sprintf("PublishStatus(%d)", int(s))
}

// PersistStatus is the outcome of the persistence step of one cycle.
type PersistStatus int

const (
	PersistPending PersistStatus = iota
	PersistOK
	PersistFailed
)

// Code returns the single-character status shown on the display.
func (s PersistStatus) Code() string {
	switch s {
	case PersistOK:
		return "1"
	case PersistFailed:
		return "E"
	default:
		return "0"
	}
}

func (s PersistStatus) String() string {
	switch s {
	case PersistPending:
		return "pending"
	case PersistOK:
		return "ok"
	case PersistFailed:
		return "failed"
	}
	return fmt.Sprintf("PersistStatus(%d)", int(s))
}

// CycleRecord is everything one control cycle observed and decided.
type CycleRecord struct {
	Cycle     int
	Time      time.Time
	Reading   Reading
	Actuators ActuatorState
	FanStatus State
	Persist   PersistStatus
	Publish   PublishStatus
}

// PumpStatus returns the pump state for records and payloads.
func (c CycleRecord) PumpStatus() State {
	return onOff(c.Actuators.PumpOn)
}

// FanRecordStatus returns the fan state as persisted: an unknown temperature
// records OFF because the relay is off.
func (c CycleRecord) FanRecordStatus() State {
	return onOff(c.Actuators.FanOn)
}

// SoilMoisture returns the persisted soil flag: 1 = dry, 0 = wet or unknown.
func (c CycleRecord) SoilMoisture() int {
	if c.Reading.SoilValid && c.Reading.SoilDry {
		return 1
	}
	return 0
}

func onOff(on bool) State {
	if on {
		return StateOn
	}
	return StateOff
}

// SensorError is a failed read of one sensor. It never leaves a cycle: the
// reading is recorded as unknown instead.
type SensorError struct {
	Sensor string
	Err    error
}

func (e *SensorError) Error() string {
	return fmt.Sprintf("sensor %s: %v", e.Sensor, e.Err)
}

func (e *SensorError) Unwrap() error { return e.Err }
