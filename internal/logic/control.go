package logic

import "fmt"

// DefaultFanOnC is the temperature at or above which the fan runs.
const DefaultFanOnC = 25

// DecideFan returns whether the fan should run and the status to report.
// An unknown temperature turns the fan off but reports StateUnknown, so that
// it can be told apart from an explicit off decision.
func DecideFan(temp Measure, onAtC float64) (bool, State) {
	if !temp.Valid {
		return false, StateUnknown
	}
	if temp.Value >= onAtC {
		return true, StateOn
	}
	return false, StateOff
}

// SoilMode selects how the pump is controlled.
type SoilMode string

const (
	// SoilDigital runs the pump whenever the soil comparator reports dry.
	SoilDigital SoilMode = "digital"
	// SoilAnalog runs the pump from an analog level with two thresholds.
	SoilAnalog SoilMode = "analog"
)

// ParseSoilMode validates a configured soil mode.
func ParseSoilMode(s string) (SoilMode, error) {
	switch SoilMode(s) {
	case SoilDigital, SoilAnalog:
		return SoilMode(s), nil
	}
	return "", fmt.Errorf("unknown soil mode %q (want %q or %q)", s, SoilDigital, SoilAnalog)
}

// PumpPolicy decides the pump state.
type PumpPolicy struct {
	Mode SoilMode
	// OnBelow turns the pump on when the analog level falls below it.
	OnBelow float64
	// OffAbove turns the pump off when the analog level rises above it.
	// Must be greater than OnBelow.
	OffAbove float64
}

// Decide returns the new pump state. current must be the state read back
// from the relay, not a per-cycle default: in analog mode the band between
// the thresholds holds it.
// An unknown soil reading turns the pump off.
func (p PumpPolicy) Decide(r Reading, current bool) bool {
	if p.Mode == SoilAnalog {
		if !r.SoilLevel.Valid {
			return false
		}
		switch {
		case r.SoilLevel.Value < p.OnBelow:
			return true
		case r.SoilLevel.Value > p.OffAbove:
			return false
		default:
			return current
		}
	}
	return r.SoilValid && r.SoilDry
}

// SoilDryFromLevel classifies an analog level for the persisted soil flag.
func (p PumpPolicy) SoilDryFromLevel(level float64) bool {
	return level < p.OnBelow
}
